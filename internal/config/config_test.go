package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, StoreMemory, cfg.Store)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.Equal(t, 2*time.Minute, cfg.StaleSubmission)
	assert.True(t, cfg.ResetCodeDispatch)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, "onboard:", cfg.Redis.Prefix)
	assert.Equal(t, 6, cfg.OTP.Digits)
	assert.Equal(t, 10*time.Minute, cfg.OTP.TTL)
	assert.Equal(t, 5, cfg.OTP.MaxAttempts)
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "onboard.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
addr: ":9090"
store: redis
session_ttl: 1h
redis:
  addr: redis:6379
  prefix: "test:"
otp:
  digits: 8
`), 0o644))

	t.Setenv("ONBOARD_REDIS_ADDR", "cache:6380")
	t.Setenv("ONBOARD_LOG_LEVEL", "debug")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, StoreRedis, cfg.Store)
	assert.Equal(t, time.Hour, cfg.SessionTTL)
	assert.Equal(t, "cache:6380", cfg.Redis.Addr, "env wins over file")
	assert.Equal(t, "test:", cfg.Redis.Prefix)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 8, cfg.OTP.Digits)
	assert.Equal(t, 5, cfg.OTP.MaxAttempts, "unset keys keep defaults")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"store", func(c *Config) { c.Store = "postgres" }},
		{"log level", func(c *Config) { c.LogLevel = "loud" }},
		{"digits", func(c *Config) { c.OTP.Digits = 3 }},
		{"attempts", func(c *Config) { c.OTP.MaxAttempts = 0 }},
		{"ttl", func(c *Config) { c.OTP.TTL = 0 }},
		{"file dir", func(c *Config) { c.Store = StoreFile; c.File.Dir = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load("")
			require.NoError(t, err)
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestWrite_RoundTrip(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	cfg.Redis.Password = "hunter2"
	cfg.Encryption.Key = "c2VjcmV0"
	cfg.Addr = ":7000"

	path := filepath.Join(t.TempDir(), "out.yml")
	require.NoError(t, Write(path, cfg))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hunter2")
	assert.NotContains(t, string(data), "encryption")
	assert.Contains(t, string(data), "session_ttl: 30m0s")

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":7000", loaded.Addr)
	assert.Equal(t, cfg.SessionTTL, loaded.SessionTTL)
}

func TestLoad_FileStoreAndEncryption(t *testing.T) {
	t.Setenv("ONBOARD_STORE", "file")
	t.Setenv("ONBOARD_FILE_DIR", "/tmp/sessions")
	t.Setenv("ONBOARD_ENCRYPTION_KEY", "a2V5")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, StoreFile, cfg.Store)
	assert.Equal(t, "/tmp/sessions", cfg.File.Dir)
	assert.Equal(t, "a2V5", cfg.Encryption.Key)
	assert.Empty(t, cfg.Encryption.FallbackKeys)
	assert.NoError(t, cfg.Validate())
}
