package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	goredis "github.com/redis/go-redis/v9"

	"github.com/aretw0/onboarding/internal/adapters/file"
	"github.com/aretw0/onboarding/internal/config"
	"github.com/aretw0/onboarding/pkg/adapters/memory"
	"github.com/aretw0/onboarding/pkg/adapters/redis"
	"github.com/aretw0/onboarding/pkg/persistence/middleware"
	"github.com/aretw0/onboarding/pkg/ports"
)

// backend bundles the adapters selected by the "store" setting.
type backend struct {
	Store   ports.StateStore
	Locker  ports.DistributedLocker
	Gateway ports.Gateway

	close func() error
}

func (b *backend) Close() error {
	if b.close == nil {
		return nil
	}
	return b.close()
}

// newBackend builds the store, locker and gateway for cfg. Codes issued by the
// gateway are handed to sender. The store is sealed when an encryption key is set.
func newBackend(ctx context.Context, cfg *config.Config, logger *slog.Logger, sender ports.CodeSender) (*backend, error) {
	b, err := openBackend(ctx, cfg, logger, sender)
	if err != nil {
		return nil, err
	}
	if cfg.Encryption.Key == "" {
		return b, nil
	}

	enc, err := encryptionMiddleware(cfg.Encryption)
	if err != nil {
		_ = b.Close()
		return nil, err
	}
	logger.Info("encrypting sessions at rest", "fallback_keys", len(cfg.Encryption.FallbackKeys))
	b.Store = middleware.Chain(b.Store, enc)
	return b, nil
}

func encryptionMiddleware(c config.Encryption) (middleware.Middleware, error) {
	active, err := middleware.DecodeKey(c.Key)
	if err != nil {
		return nil, fmt.Errorf("encryption.key: %w", err)
	}
	ec := middleware.EncryptionConfig{ActiveKey: active}
	for i, k := range c.FallbackKeys {
		key, err := middleware.DecodeKey(k)
		if err != nil {
			return nil, fmt.Errorf("encryption.fallback_keys[%d]: %w", i, err)
		}
		ec.FallbackKeys = append(ec.FallbackKeys, key)
	}
	return middleware.NewEncryptionMiddleware(ec)
}

func openBackend(ctx context.Context, cfg *config.Config, logger *slog.Logger, sender ports.CodeSender) (*backend, error) {
	gateway := func() ports.Gateway {
		return memory.NewGateway(
			memory.WithCodeSender(sender),
			memory.WithOTP(cfg.OTP.Digits, cfg.OTP.TTL, cfg.OTP.MaxAttempts),
			memory.WithGatewayLogger(logger),
		)
	}

	switch cfg.Store {
	case config.StoreRedis:
		client := goredis.NewClient(&goredis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Redis.Addr, err)
		}
		logger.Info("using redis backend", "addr", cfg.Redis.Addr, "prefix", cfg.Redis.Prefix)
		return &backend{
			Store: redis.NewFromClient(client,
				redis.WithPrefix(cfg.Redis.Prefix),
				redis.WithTTL(cfg.SessionTTL),
			),
			Locker: redis.NewLocker(client, cfg.Redis.Prefix),
			Gateway: redis.NewGateway(client,
				redis.WithGatewayPrefix(cfg.Redis.Prefix),
				redis.WithCodeSender(sender),
				redis.WithOTP(cfg.OTP.Digits, cfg.OTP.TTL, cfg.OTP.MaxAttempts),
				redis.WithGatewayLogger(logger),
			),
			close: client.Close,
		}, nil

	case config.StoreFile:
		logger.Info("using file backend", "dir", cfg.File.Dir)
		return &backend{
			Store:   file.New(cfg.File.Dir),
			Gateway: gateway(),
		}, nil

	default:
		logger.Info("using in-memory backend")
		return &backend{
			Store:   memory.NewStore(memory.WithStoreTTL(cfg.SessionTTL)),
			Gateway: gateway(),
		}, nil
	}
}

// consoleSender prints issued codes instead of mailing them.
func consoleSender(w io.Writer) ports.CodeSender {
	return ports.CodeSenderFunc(func(_ context.Context, email, code string) error {
		_, err := fmt.Fprintf(w, "\n  Verification code for %s: %s\n\n", email, code)
		return err
	})
}
