// Package config loads the onboard settings using Viper.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/onboarding/internal/logging"
)

// EnvPrefix is prepended to every environment variable, e.g. ONBOARD_REDIS_ADDR.
const EnvPrefix = "ONBOARD"

// Store backends.
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
	StoreFile   = "file"
)

// Config holds every setting of the onboard binary.
type Config struct {
	Addr              string        `mapstructure:"addr" yaml:"addr"`
	LogLevel          string        `mapstructure:"log_level" yaml:"log_level"`
	LogJSON           bool          `mapstructure:"log_json" yaml:"log_json"`
	Store             string        `mapstructure:"store" yaml:"store"`
	SessionTTL        time.Duration `mapstructure:"session_ttl" yaml:"session_ttl"`
	StaleSubmission   time.Duration `mapstructure:"stale_submission" yaml:"stale_submission"`
	LockTTL           time.Duration `mapstructure:"lock_ttl" yaml:"lock_ttl"`
	ResetCodeDispatch bool          `mapstructure:"reset_code_dispatch" yaml:"reset_code_dispatch"`
	Metrics           bool          `mapstructure:"metrics" yaml:"metrics"`
	Redis             RedisConfig   `mapstructure:"redis" yaml:"redis"`
	File              FileConfig    `mapstructure:"file" yaml:"file"`
	OTP               OTPConfig     `mapstructure:"otp" yaml:"otp"`
	Encryption        Encryption    `mapstructure:"encryption" yaml:"-"`
}

// RedisConfig configures the Redis store, locker and gateway.
type RedisConfig struct {
	Addr     string `mapstructure:"addr" yaml:"addr"`
	Password string `mapstructure:"password" yaml:"-"`
	DB       int    `mapstructure:"db" yaml:"db"`
	Prefix   string `mapstructure:"prefix" yaml:"prefix"`
}

// FileConfig configures the file session store.
type FileConfig struct {
	Dir string `mapstructure:"dir" yaml:"dir"`
}

// Encryption holds base64 AES-256 keys for sealing stored sessions.
// An empty Key stores sessions in clear.
type Encryption struct {
	Key          string   `mapstructure:"key"`
	FallbackKeys []string `mapstructure:"fallback_keys"`
}

// OTPConfig configures the one-time codes issued by the reference gateways.
type OTPConfig struct {
	Digits      int           `mapstructure:"digits" yaml:"digits"`
	TTL         time.Duration `mapstructure:"ttl" yaml:"ttl"`
	MaxAttempts int           `mapstructure:"max_attempts" yaml:"max_attempts"`
}

var defaults = map[string]any{
	"addr":                ":8080",
	"log_level":           "info",
	"log_json":            false,
	"store":               StoreMemory,
	"session_ttl":         30 * time.Minute,
	"stale_submission":    2 * time.Minute,
	"lock_ttl":            30 * time.Second,
	"reset_code_dispatch": true,
	"metrics":             true,
	"redis.addr":          "localhost:6379",
	"redis.password":      "",
	"redis.db":            0,
	"redis.prefix":        "onboard:",
	"file.dir":            ".onboard/sessions",
	"otp.digits":          6,
	"otp.ttl":             10 * time.Minute,
	"otp.max_attempts":    5,

	// Base64 AES-256 keys. Empty disables encryption at rest.
	"encryption.key":           "",
	"encryption.fallback_keys": []string{},
}

// Load reads configuration with precedence ENV vars > config file > defaults.
// An empty path skips the file; a missing explicit file is an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key := range defaults {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("binding %s env: %w", key, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the binary cannot run with.
func (c *Config) Validate() error {
	switch c.Store {
	case StoreMemory, StoreRedis, StoreFile:
	default:
		return fmt.Errorf("invalid store %q: want %q, %q or %q", c.Store, StoreMemory, StoreRedis, StoreFile)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.Store == StoreFile && c.File.Dir == "" {
		return fmt.Errorf("file.dir is required for the %q store", StoreFile)
	}
	if c.OTP.Digits < 4 || c.OTP.Digits > 10 {
		return fmt.Errorf("invalid otp.digits %d: want 4..10", c.OTP.Digits)
	}
	if c.OTP.MaxAttempts < 1 {
		return fmt.Errorf("invalid otp.max_attempts %d", c.OTP.MaxAttempts)
	}
	if c.OTP.TTL <= 0 {
		return fmt.Errorf("invalid otp.ttl %s", c.OTP.TTL)
	}
	return nil
}

// YAML renders the effective configuration. Secrets are omitted.
func (c *Config) YAML() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshaling config: %w", err)
	}
	return data, nil
}

// Write stores the configuration as YAML at path.
func Write(path string, cfg *Config) error {
	data, err := cfg.YAML()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
