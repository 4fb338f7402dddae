package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/aretw0/onboarding/internal/logging"
	"github.com/aretw0/onboarding/pkg/domain"
)

// streamBuffer is the per-subscriber backlog before messages are dropped.
const streamBuffer = 10

// StreamManager fans state diffs out to SSE subscribers, keyed by session.
type StreamManager struct {
	mu      sync.RWMutex
	clients map[string]map[chan string]struct{}
	logger  *slog.Logger
}

// NewStreamManager returns an empty StreamManager. A nil logger discards output.
func NewStreamManager(logger *slog.Logger) *StreamManager {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &StreamManager{
		clients: make(map[string]map[chan string]struct{}),
		logger:  logger,
	}
}

// Subscribe registers a listener for a session and returns its channel and a cancel func.
func (sm *StreamManager) Subscribe(sessionID string) (chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, streamBuffer)
	if sm.clients[sessionID] == nil {
		sm.clients[sessionID] = make(map[chan string]struct{})
	}
	sm.clients[sessionID][ch] = struct{}{}

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			sm.mu.Lock()
			defer sm.mu.Unlock()
			if subs, ok := sm.clients[sessionID]; ok {
				delete(subs, ch)
				if len(subs) == 0 {
					delete(sm.clients, sessionID)
				}
			}
			close(ch)
		})
	}
}

// Subscribers reports how many listeners are attached to a session.
func (sm *StreamManager) Subscribers(sessionID string) int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.clients[sessionID])
}

// Broadcast sends msg to every subscriber of the session.
// Slow subscribers lose messages instead of blocking the caller.
func (sm *StreamManager) Broadcast(sessionID, msg string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch := range sm.clients[sessionID] {
		select {
		case ch <- msg:
		default:
			sm.logger.Warn("dropping stream message", "session_id", sessionID)
		}
	}
}

// Publish matches session.ChangeFunc: it encodes the diff between two states
// and broadcasts it. Empty diffs are not sent.
func (sm *StreamManager) Publish(_ context.Context, old, next *domain.State) {
	diff := domain.Diff(old, next)
	if diff == nil {
		return
	}
	data, err := json.Marshal(diff)
	if err != nil {
		sm.logger.Error("failed to encode diff", "session_id", diff.SessionID, "err", err)
		return
	}
	sm.Broadcast(diff.SessionID, string(data))
}
