package memory

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/onboarding/internal/logging"
	"github.com/aretw0/onboarding/internal/otp"
	"github.com/aretw0/onboarding/internal/passhash"
	"github.com/aretw0/onboarding/pkg/domain"
	"github.com/aretw0/onboarding/pkg/ports"
)

// Messages returned by the reference gateways.
const (
	MsgUserIDTaken      = "User ID already exists"
	MsgEmailNotVerified = "Email is not verified"
	MsgAccountNotFound  = "No account found for this email"
)

type account struct {
	UserID       string
	FirstName    string
	LastName     string
	PasswordHash string
}

type codeRecord struct {
	hash      [32]byte
	expiresAt time.Time
	attempts  int
}

// Gateway is an in-process ports.Gateway backed by maps.
// It is the reference backend for development, the terminal runner and tests.
type Gateway struct {
	mu       sync.Mutex
	accounts map[string]account // by normalized email
	userIDs  map[string]string  // user ID -> email
	codes    map[string]codeRecord
	verified map[string]time.Time // email -> verification expiry

	sender      ports.CodeSender
	digits      int
	ttl         time.Duration
	maxAttempts int
	params      passhash.Params
	logger      *slog.Logger
	now         func() time.Time
}

// GatewayOption configures a Gateway.
type GatewayOption func(*Gateway)

// WithCodeSender sets where generated codes are delivered.
func WithCodeSender(s ports.CodeSender) GatewayOption {
	return func(g *Gateway) {
		g.sender = s
	}
}

// WithOTP sets the code length, lifetime and allowed wrong guesses.
func WithOTP(digits int, ttl time.Duration, maxAttempts int) GatewayOption {
	return func(g *Gateway) {
		if digits > 0 {
			g.digits = digits
		}
		if ttl > 0 {
			g.ttl = ttl
		}
		if maxAttempts > 0 {
			g.maxAttempts = maxAttempts
		}
	}
}

// WithPasswordParams sets the argon2id cost used for stored passwords.
func WithPasswordParams(p passhash.Params) GatewayOption {
	return func(g *Gateway) {
		g.params = p
	}
}

// WithGatewayLogger sets the logger.
func WithGatewayLogger(l *slog.Logger) GatewayOption {
	return func(g *Gateway) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithGatewayClock overrides the time source.
func WithGatewayClock(now func() time.Time) GatewayOption {
	return func(g *Gateway) {
		if now != nil {
			g.now = now
		}
	}
}

// NewGateway creates an empty in-memory gateway.
func NewGateway(opts ...GatewayOption) *Gateway {
	g := &Gateway{
		accounts:    make(map[string]account),
		userIDs:     make(map[string]string),
		codes:       make(map[string]codeRecord),
		verified:    make(map[string]time.Time),
		digits:      6,
		ttl:         10 * time.Minute,
		maxAttempts: 5,
		params:      passhash.DefaultParams,
		logger:      logging.NewNop(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func normalize(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// AddAccount registers an existing account, e.g. to exercise the password reset flow.
func (g *Gateway) AddAccount(ctx context.Context, email, userID, password string) error {
	hash, err := passhash.Hash(password, g.params)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	email = normalize(email)
	g.accounts[email] = account{UserID: userID, PasswordHash: hash}
	g.userIDs[userID] = email
	return nil
}

// CheckPassword reports whether password is the current password of email.
func (g *Gateway) CheckPassword(ctx context.Context, email, password string) (bool, error) {
	g.mu.Lock()
	acc, ok := g.accounts[normalize(email)]
	g.mu.Unlock()
	if !ok {
		return false, nil
	}
	return passhash.Verify(password, acc.PasswordHash)
}

// CheckIfEmailExists implements ports.Gateway.
func (g *Gateway) CheckIfEmailExists(ctx context.Context, email string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.accounts[normalize(email)]
	return ok, nil
}

// SendOTP implements ports.Gateway. It returns false when no sender is configured
// or the sender fails, so the user is asked to try again.
func (g *Gateway) SendOTP(ctx context.Context, email string) (bool, error) {
	if g.sender == nil {
		g.logger.WarnContext(ctx, "otp not sent: no code sender configured")
		return false, nil
	}

	code, err := otp.Generate(g.digits)
	if err != nil {
		return false, fmt.Errorf("failed to generate otp: %w", err)
	}

	email = normalize(email)
	g.mu.Lock()
	g.codes[email] = codeRecord{hash: otp.Hash(code), expiresAt: g.now().Add(g.ttl)}
	delete(g.verified, email)
	g.mu.Unlock()

	if err := g.sender.SendCode(ctx, email, code); err != nil {
		g.logger.ErrorContext(ctx, "otp delivery failed", "err", err)
		g.mu.Lock()
		delete(g.codes, email)
		g.mu.Unlock()
		return false, nil
	}
	return true, nil
}

// VerifyOTP implements ports.Gateway. A matching code is consumed and marks the
// email as verified until the code lifetime elapses. Each wrong guess counts
// against the attempt budget; exhausting it discards the code.
func (g *Gateway) VerifyOTP(ctx context.Context, email, code string) (bool, error) {
	email = normalize(email)
	now := g.now()

	g.mu.Lock()
	defer g.mu.Unlock()

	rec, ok := g.codes[email]
	if !ok {
		return false, nil
	}
	if now.After(rec.expiresAt) {
		delete(g.codes, email)
		return false, nil
	}
	if !otp.Equal(rec.hash, code) {
		rec.attempts++
		if rec.attempts >= g.maxAttempts {
			delete(g.codes, email)
			g.logger.WarnContext(ctx, "otp attempts exhausted")
			return false, nil
		}
		g.codes[email] = rec
		return false, nil
	}

	delete(g.codes, email)
	g.verified[email] = now.Add(g.ttl)
	return true, nil
}

// consumeVerification must be called with g.mu held.
func (g *Gateway) consumeVerification(email string) bool {
	until, ok := g.verified[email]
	delete(g.verified, email)
	return ok && !g.now().After(until)
}

// FinalizeSignup implements ports.Gateway.
func (g *Gateway) FinalizeSignup(ctx context.Context, req ports.SignupRequest) error {
	hash, err := passhash.Hash(req.Password, g.params)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	email := normalize(req.Email)
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, taken := g.userIDs[req.UserID]; taken {
		return domain.NewVerificationError("", MsgUserIDTaken)
	}
	if _, exists := g.accounts[email]; exists {
		return domain.NewVerificationError("", "Email already exists")
	}
	if !g.consumeVerification(email) {
		return domain.NewVerificationError("", MsgEmailNotVerified)
	}

	g.accounts[email] = account{
		UserID:       req.UserID,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PasswordHash: hash,
	}
	g.userIDs[req.UserID] = email
	g.logger.InfoContext(ctx, "account created", "user_id", req.UserID)
	return nil
}

// FinalizeReset implements ports.Gateway.
func (g *Gateway) FinalizeReset(ctx context.Context, req ports.ResetRequest) error {
	hash, err := passhash.Hash(req.Password, g.params)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	email := normalize(req.Email)
	g.mu.Lock()
	defer g.mu.Unlock()

	acc, ok := g.accounts[email]
	if !ok {
		return domain.NewVerificationError("", MsgAccountNotFound)
	}
	if !g.consumeVerification(email) {
		return domain.NewVerificationError("", MsgEmailNotVerified)
	}

	acc.PasswordHash = hash
	g.accounts[email] = acc
	g.logger.InfoContext(ctx, "password reset", "user_id", acc.UserID)
	return nil
}
