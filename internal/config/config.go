// Package config loads server settings from an optional YAML file and the
// environment. Environment variables win over the file, the file wins over
// defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mmynk/splitledger/internal/lock"
	"github.com/mmynk/splitledger/internal/money"
	"github.com/mmynk/splitledger/internal/retry"
	"github.com/mmynk/splitledger/internal/storage/postgres"
	"github.com/mmynk/splitledger/pkg/logging"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	LockMemory = "memory"
	LockRedis  = "redis"
)

// Config is the full server configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Log        LogConfig        `yaml:"log"`
	Auth       AuthConfig       `yaml:"auth"`
	Lock       LockConfig       `yaml:"lock"`
	Settlement SettlementConfig `yaml:"settlement"`

	// Currency is the ISO code used when rendering amounts.
	Currency string `yaml:"currency"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type DatabaseConfig struct {
	Driver string `yaml:"driver"`

	// Path is the SQLite file.
	Path string `yaml:"path"`

	// DSN is the Postgres connection string.
	DSN string `yaml:"dsn"`

	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// AuthConfig controls the JWT gate. An empty secret disables it.
type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
}

type LockConfig struct {
	Backend       string        `yaml:"backend"`
	Wait          time.Duration `yaml:"wait"`
	RedisAddr     string        `yaml:"redis_addr"`
	RedisPassword string        `yaml:"redis_password"`
	RedisDB       int           `yaml:"redis_db"`
	Expiry        time.Duration `yaml:"expiry"`
	Tries         int           `yaml:"tries"`
	RetryDelay    time.Duration `yaml:"retry_delay"`
}

type SettlementConfig struct {
	MaxAttempts int           `yaml:"max_attempts"`
	Backoff     time.Duration `yaml:"backoff"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	redis := lock.DefaultRedisOptions()
	policy := retry.DefaultPolicy()
	return Config{
		Server: ServerConfig{Addr: ":8080"},
		Database: DatabaseConfig{
			Driver:          DriverSQLite,
			Path:            "./data/ledger.db",
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: 30 * time.Minute,
		},
		Log:  LogConfig{Level: "info"},
		Auth: AuthConfig{TokenTTL: 24 * time.Hour},
		Lock: LockConfig{
			Backend:    LockMemory,
			Wait:       5 * time.Second,
			Expiry:     redis.Expiry,
			Tries:      redis.Tries,
			RetryDelay: redis.RetryDelay,
		},
		Settlement: SettlementConfig{
			MaxAttempts: policy.MaxAttempts,
			Backoff:     policy.Backoff,
		},
		Currency: "USD",
	}
}

// Load reads path (skipped when empty, falling back to SPLITLEDGER_CONFIG),
// applies environment overrides and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("SPLITLEDGER_CONFIG")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString(&c.Server.Addr, "SPLITLEDGER_ADDR")
	setString(&c.Database.Driver, "SPLITLEDGER_DB_DRIVER")
	setString(&c.Database.Path, "DB_PATH")
	setString(&c.Database.DSN, "SPLITLEDGER_DB_DSN")
	setString(&c.Log.Level, "LOG_LEVEL")
	setString(&c.Auth.JWTSecret, "SPLITLEDGER_JWT_SECRET")
	setString(&c.Lock.Backend, "SPLITLEDGER_LOCK_BACKEND")
	setString(&c.Lock.RedisAddr, "SPLITLEDGER_REDIS_ADDR")
	setString(&c.Lock.RedisPassword, "SPLITLEDGER_REDIS_PASSWORD")
	setString(&c.Currency, "SPLITLEDGER_CURRENCY")

	if err := setInt(&c.Settlement.MaxAttempts, "SPLITLEDGER_SETTLEMENT_MAX_ATTEMPTS"); err != nil {
		return err
	}
	if err := setDuration(&c.Settlement.Backoff, "SPLITLEDGER_SETTLEMENT_BACKOFF"); err != nil {
		return err
	}
	return setDuration(&c.Auth.TokenTTL, "SPLITLEDGER_TOKEN_TTL")
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error

	switch c.Database.Driver {
	case DriverSQLite:
		if c.Database.Path == "" {
			errs = append(errs, errors.New("database.path is required for sqlite"))
		}
	case DriverPostgres:
		if c.Database.DSN == "" {
			errs = append(errs, errors.New("database.dsn is required for postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown database.driver %q", c.Database.Driver))
	}

	switch c.Lock.Backend {
	case LockMemory:
	case LockRedis:
		if c.Lock.RedisAddr == "" {
			errs = append(errs, errors.New("lock.redis_addr is required for the redis backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown lock.backend %q", c.Lock.Backend))
	}

	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	if c.Settlement.MaxAttempts < 1 {
		errs = append(errs, errors.New("settlement.max_attempts must be at least 1"))
	}
	if c.Settlement.Backoff < 0 {
		errs = append(errs, errors.New("settlement.backoff must not be negative"))
	}
	if c.Auth.TokenTTL <= 0 {
		errs = append(errs, errors.New("auth.token_ttl must be positive"))
	}
	if !money.KnownCurrency(c.Currency) {
		errs = append(errs, fmt.Errorf("unknown currency %q", c.Currency))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// RetryPolicy is the bounded retry used by settlements and ledger updates.
func (c Config) RetryPolicy() retry.Policy {
	return retry.Policy{MaxAttempts: c.Settlement.MaxAttempts, Backoff: c.Settlement.Backoff}
}

func (c Config) RedisOptions() lock.RedisOptions {
	return lock.RedisOptions{
		Expiry:     c.Lock.Expiry,
		Tries:      c.Lock.Tries,
		RetryDelay: c.Lock.RetryDelay,
	}
}

func (c Config) PostgresOptions() postgres.Options {
	return postgres.Options{
		MaxOpenConns:    c.Database.MaxOpenConns,
		MaxIdleConns:    c.Database.MaxIdleConns,
		ConnMaxLifetime: c.Database.ConnMaxLifetime,
	}
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = n
	return nil
}

func setDuration(dst *time.Duration, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = d
	return nil
}
