package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aretw0/onboarding/internal/logging"
	"github.com/aretw0/onboarding/internal/otp"
	"github.com/aretw0/onboarding/internal/passhash"
	"github.com/aretw0/onboarding/pkg/domain"
	"github.com/aretw0/onboarding/pkg/ports"
	backend "github.com/redis/go-redis/v9"
)

// Messages returned by the gateway.
const (
	MsgUserIDTaken      = "User ID already exists"
	MsgEmailNotVerified = "Email is not verified"
	MsgAccountNotFound  = "No account found for this email"
)

// errGatewayUnavailable wraps infrastructure failures.
var errGatewayUnavailable = errors.New("gateway redis unavailable")

// otpRecord is stored under "<prefix>otp:<email>" with the code lifetime as TTL.
type otpRecord struct {
	Hash     [32]byte `json:"h"`
	Attempts int      `json:"a"`
}

// Gateway is a ports.Gateway keeping accounts and one-time codes in Redis.
// Codes are stored hashed, carry an attempt counter and expire with the key.
type Gateway struct {
	client      *backend.Client
	prefix      string
	sender      ports.CodeSender
	digits      int
	ttl         time.Duration
	maxAttempts int
	params      passhash.Params
	logger      *slog.Logger
}

// GatewayOption configures a Gateway.
type GatewayOption func(*Gateway)

// WithGatewayPrefix sets the key prefix.
func WithGatewayPrefix(prefix string) GatewayOption {
	return func(g *Gateway) {
		g.prefix = prefix
	}
}

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

// NewGateway creates a gateway on an existing client.
func NewGateway(client *backend.Client, opts ...GatewayOption) *Gateway {
	g := &Gateway{
		client:      client,
		prefix:      DefaultPrefix,
		digits:      6,
		ttl:         10 * time.Minute,
		maxAttempts: 5,
		params:      passhash.DefaultParams,
		logger:      logging.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func normalize(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (g *Gateway) accountKey(email string) string  { return g.prefix + "account:" + email }
func (g *Gateway) userIDKey(userID string) string  { return g.prefix + "userid:" + userID }
func (g *Gateway) otpKey(email string) string      { return g.prefix + "otp:" + email }
func (g *Gateway) verifiedKey(email string) string { return g.prefix + "verified:" + email }

func unavailable(err error) error {
	return fmt.Errorf("%w: %v", errGatewayUnavailable, err)
}

// AddAccount registers an existing account.
func (g *Gateway) AddAccount(ctx context.Context, email, userID, password string) error {
	hash, err := passhash.Hash(password, g.params)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	email = normalize(email)

	pipe := g.client.TxPipeline()
	pipe.HSet(ctx, g.accountKey(email), "user_id", userID, "password_hash", hash)
	pipe.Set(ctx, g.userIDKey(userID), email, 0)
	if _, err := pipe.Exec(ctx); err != nil {
		return unavailable(err)
	}
	return nil
}

// CheckPassword reports whether password is the current password of email.
func (g *Gateway) CheckPassword(ctx context.Context, email, password string) (bool, error) {
	hash, err := g.client.HGet(ctx, g.accountKey(normalize(email)), "password_hash").Result()
	if errors.Is(err, backend.Nil) {
		return false, nil
	}
	if err != nil {
		return false, unavailable(err)
	}
	return passhash.Verify(password, hash)
}

// CheckIfEmailExists implements ports.Gateway.
func (g *Gateway) CheckIfEmailExists(ctx context.Context, email string) (bool, error) {
	n, err := g.client.Exists(ctx, g.accountKey(normalize(email))).Result()
	if err != nil {
		return false, unavailable(err)
	}
	return n > 0, nil
}

// SendOTP implements ports.Gateway. A new code replaces any pending one.
func (g *Gateway) SendOTP(ctx context.Context, email string) (bool, error) {
	if g.sender == nil {
		g.logger.WarnContext(ctx, "otp not sent: no code sender configured")
		return false, nil
	}

	code, err := otp.Generate(g.digits)
	if err != nil {
		return false, fmt.Errorf("failed to generate otp: %w", err)
	}
	data, err := json.Marshal(otpRecord{Hash: otp.Hash(code)})
	if err != nil {
		return false, err
	}

	email = normalize(email)
	pipe := g.client.TxPipeline()
	pipe.Set(ctx, g.otpKey(email), data, g.ttl)
	pipe.Del(ctx, g.verifiedKey(email))
	if _, err := pipe.Exec(ctx); err != nil {
		return false, unavailable(err)
	}

	if err := g.sender.SendCode(ctx, email, code); err != nil {
		g.logger.ErrorContext(ctx, "otp delivery failed", "err", err)
		_ = g.client.Del(ctx, g.otpKey(email)).Err()
		return false, nil
	}
	return true, nil
}

// VerifyOTP implements ports.Gateway. The record is read and updated inside a
// WATCH transaction so concurrent guesses cannot exceed the attempt budget.
func (g *Gateway) VerifyOTP(ctx context.Context, email, code string) (bool, error) {
	const maxRetries = 4
	email = normalize(email)
	key := g.otpKey(email)

	for range maxRetries {
		matched := false
		err := g.client.Watch(ctx, func(tx *backend.Tx) error {
			data, err := tx.Get(ctx, key).Bytes()
			if err != nil {
				return err
			}
			var rec otpRecord
			if err := json.Unmarshal(data, &rec); err != nil {
				return err
			}

			if otp.Equal(rec.Hash, code) {
				matched = true
				_, err = tx.TxPipelined(ctx, func(pipe backend.Pipeliner) error {
					pipe.Del(ctx, key)
					pipe.Set(ctx, g.verifiedKey(email), "1", g.ttl)
					return nil
				})
				return err
			}

			rec.Attempts++
			if rec.Attempts >= g.maxAttempts {
				g.logger.WarnContext(ctx, "otp attempts exhausted")
				_, err = tx.TxPipelined(ctx, func(pipe backend.Pipeliner) error {
					pipe.Del(ctx, key)
					return nil
				})
				return err
			}

			updated, err := json.Marshal(rec)
			if err != nil {
				return err
			}
			_, err = tx.TxPipelined(ctx, func(pipe backend.Pipeliner) error {
				pipe.Set(ctx, key, updated, backend.KeepTTL)
				return nil
			})
			return err
		}, key)

		switch {
		case errors.Is(err, backend.TxFailedErr):
			continue
		case errors.Is(err, backend.Nil):
			return false, nil
		case err != nil:
			return false, unavailable(err)
		}
		return matched, nil
	}
	return false, nil
}

// consumeVerification deletes the verified marker, reporting whether it existed.
func (g *Gateway) consumeVerification(ctx context.Context, email string) (bool, error) {
	err := g.client.GetDel(ctx, g.verifiedKey(email)).Err()
	if errors.Is(err, backend.Nil) {
		return false, nil
	}
	if err != nil {
		return false, unavailable(err)
	}
	return true, nil
}

// FinalizeSignup implements ports.Gateway. The user ID is claimed with SETNX and
// released again if the signup cannot complete.
func (g *Gateway) FinalizeSignup(ctx context.Context, req ports.SignupRequest) error {
	email := normalize(req.Email)

	claimed, err := g.client.SetNX(ctx, g.userIDKey(req.UserID), email, 0).Result()
	if err != nil {
		return unavailable(err)
	}
	if !claimed {
		return domain.NewVerificationError("", MsgUserIDTaken)
	}
	release := func() { _ = g.client.Del(ctx, g.userIDKey(req.UserID)).Err() }

	exists, err := g.CheckIfEmailExists(ctx, email)
	if err != nil {
		release()
		return err
	}
	if exists {
		release()
		return domain.NewVerificationError("", "Email already exists")
	}

	verified, err := g.consumeVerification(ctx, email)
	if err != nil {
		release()
		return err
	}
	if !verified {
		release()
		return domain.NewVerificationError("", MsgEmailNotVerified)
	}

	hash, err := passhash.Hash(req.Password, g.params)
	if err != nil {
		release()
		return fmt.Errorf("failed to hash password: %w", err)
	}
	err = g.client.HSet(ctx, g.accountKey(email),
		"user_id", req.UserID,
		"first_name", req.FirstName,
		"last_name", req.LastName,
		"password_hash", hash,
	).Err()
	if err != nil {
		release()
		return unavailable(err)
	}

	g.logger.InfoContext(ctx, "account created", "user_id", req.UserID)
	return nil
}

// FinalizeReset implements ports.Gateway.
func (g *Gateway) FinalizeReset(ctx context.Context, req ports.ResetRequest) error {
	email := normalize(req.Email)

	exists, err := g.CheckIfEmailExists(ctx, email)
	if err != nil {
		return err
	}
	if !exists {
		return domain.NewVerificationError("", MsgAccountNotFound)
	}

	verified, err := g.consumeVerification(ctx, email)
	if err != nil {
		return err
	}
	if !verified {
		return domain.NewVerificationError("", MsgEmailNotVerified)
	}

	hash, err := passhash.Hash(req.Password, g.params)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := g.client.HSet(ctx, g.accountKey(email), "password_hash", hash).Err(); err != nil {
		return unavailable(err)
	}

	g.logger.InfoContext(ctx, "password reset")
	return nil
}
