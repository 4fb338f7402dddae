package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mitchellh/mapstructure"

	"github.com/aretw0/onboarding"
	"github.com/aretw0/onboarding/internal/logging"
	"github.com/aretw0/onboarding/pkg/domain"
	"github.com/aretw0/onboarding/pkg/validation"
)

// Sessions is the subset of session.Manager the HTTP layer drives.
type Sessions interface {
	Kinds() []string
	Start(ctx context.Context, kind string) (*domain.State, error)
	View(ctx context.Context, sessionID string) (domain.View, error)
	Render(state *domain.State) (domain.View, error)
	SetField(ctx context.Context, sessionID, name, value string) (*domain.State, error)
	Touch(ctx context.Context, sessionID, name string) (*domain.State, error)
	Advance(ctx context.Context, sessionID string) (*domain.State, domain.Progress, error)
	Back(ctx context.Context, sessionID string) (*domain.State, error)
	Reset(ctx context.Context, sessionID string) (*domain.State, error)
	Delete(ctx context.Context, sessionID string) error
}

// Server serves wizard sessions over HTTP.
type Server struct {
	Sessions Sessions
	Streams  *StreamManager

	logger  *slog.Logger
	metrics http.Handler
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithStreams shares a StreamManager with the session layer.
// Pass the same manager's Publish to session.WithChangeListener so that
// mutations reach /events subscribers.
func WithStreams(streams *StreamManager) Option {
	return func(s *Server) {
		if streams != nil {
			s.Streams = streams
		}
	}
}

// WithMetricsHandler mounts h on GET /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// NewServer builds a Server over sessions.
func NewServer(sessions Sessions, opts ...Option) *Server {
	s := &Server{
		Sessions: sessions,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.Streams == nil {
		s.Streams = NewStreamManager(s.logger)
	}
	return s
}

// NewHandler creates the HTTP handler for the session layer.
func NewHandler(sessions Sessions, opts ...Option) http.Handler {
	return NewServer(sessions, opts...).Routes()
}

// Routes returns the chi router with every endpoint mounted.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	r.Route("/wizards", func(r chi.Router) {
		r.Post("/", s.StartWizard)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.GetView)
			r.Delete("/", s.DeleteWizard)
			r.Put("/fields/{field}", s.SetField)
			r.Post("/fields/{field}/touch", s.TouchField)
			r.Post("/advance", s.Advance)
			r.Post("/back", s.Back)
			r.Post("/reset", s.Reset)
			r.Get("/events", s.SubscribeEvents)
		})
	})

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type startRequest struct {
	Kind string `mapstructure:"kind"`
}

type fieldRequest struct {
	Value string `mapstructure:"value"`
}

// AdvanceResponse is the body returned by POST /wizards/{id}/advance.
type AdvanceResponse struct {
	Progress domain.Progress `json:"progress"`
	View     domain.View     `json:"view"`
}

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error string `json:"error"`
}

// StartWizard creates a session: POST /wizards {"kind": "..."}.
func (s *Server) StartWizard(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	state, err := s.Sessions.Start(r.Context(), req.Kind)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeState(w, r, http.StatusCreated, state)
}

// GetView renders the active step of a session.
func (s *Server) GetView(w http.ResponseWriter, r *http.Request) {
	view, err := s.Sessions.View(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// SetField stores a field value: PUT /wizards/{id}/fields/{field} {"value": ...}.
func (s *Server) SetField(w http.ResponseWriter, r *http.Request) {
	var req fieldRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	value, err := validation.SanitizeValue(req.Value)
	if err != nil {
		s.writeError(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	state, err := s.Sessions.SetField(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "field"), value)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeState(w, r, http.StatusOK, state)
}

// TouchField marks a field as visited.
func (s *Server) TouchField(w http.ResponseWriter, r *http.Request) {
	state, err := s.Sessions.Touch(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "field"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeState(w, r, http.StatusOK, state)
}

// Advance submits the active step.
func (s *Server) Advance(w http.ResponseWriter, r *http.Request) {
	state, progress, err := s.Sessions.Advance(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	view, err := s.Sessions.Render(state)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, AdvanceResponse{Progress: progress, View: view})
}

// Back returns to the previous step.
func (s *Server) Back(w http.ResponseWriter, r *http.Request) {
	state, err := s.Sessions.Back(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeState(w, r, http.StatusOK, state)
}

// Reset returns the session to step 1.
func (s *Server) Reset(w http.ResponseWriter, r *http.Request) {
	state, err := s.Sessions.Reset(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeState(w, r, http.StatusOK, state)
}

// DeleteWizard tears a session down.
func (s *Server) DeleteWizard(w http.ResponseWriter, r *http.Request) {
	if err := s.Sessions.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetHealth reports liveness.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo reports the build version and the wizard kinds on offer.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"app":     "onboard-http",
		"version": strings.TrimSpace(onboarding.Version),
		"wizards": s.Sessions.Kinds(),
	})
}

// SubscribeEvents streams state diffs for a session as Server-Sent Events.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	if _, err := s.Sessions.View(r.Context(), sessionID); err != nil {
		s.writeError(w, r, err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := s.Streams.Subscribe(sessionID)
	defer cancel()

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

func (s *Server) writeState(w http.ResponseWriter, r *http.Request, status int, state *domain.State) {
	view, err := s.Sessions.Render(state)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, status, view)
}

var errBadRequest = errors.New("bad request")

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrSubmitting):
		return http.StatusConflict
	case errors.Is(err, domain.ErrUnknownWizard),
		errors.Is(err, domain.ErrUnknownField),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		s.logger.ErrorContext(r.Context(), "request failed",
			"method", r.Method, "path", r.URL.Path,
			"request_id", middleware.GetReqID(r.Context()), "err", err)
		msg = http.StatusText(status)
	}
	writeJSON(w, status, ErrorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decodeBody reads a JSON object and maps it onto out. Scalars are coerced to
// strings so that {"value": true} or {"value": 123456} are accepted.
func decodeBody(r *http.Request, out any) error {
	var raw map[string]any
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       boolToStringHook,
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(raw)
}

// boolToStringHook keeps checkbox values in the "true"/"false" form the
// engine expects; mapstructure's weak decoding would produce "1"/"0".
func boolToStringHook(from, to reflect.Type, data any) (any, error) {
	if from.Kind() == reflect.Bool && to.Kind() == reflect.String {
		return strconv.FormatBool(data.(bool)), nil
	}
	return data, nil
}
