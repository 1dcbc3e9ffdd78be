package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "splitledger.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SPLITLEDGER_CONFIG", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("DB_PATH", "")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Database.Driver != DriverSQLite {
		t.Errorf("driver = %q, want sqlite", cfg.Database.Driver)
	}
	if cfg.Lock.Backend != LockMemory {
		t.Errorf("lock backend = %q, want memory", cfg.Lock.Backend)
	}
	policy := cfg.RetryPolicy()
	if policy.MaxAttempts != 3 || policy.Backoff != 100*time.Millisecond {
		t.Errorf("retry policy = %+v, want 3 attempts 100ms apart", policy)
	}
	if cfg.Currency != "USD" {
		t.Errorf("currency = %q, want USD", cfg.Currency)
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := writeConfig(t, `
server:
  addr: ":9090"
database:
  driver: postgres
  dsn: postgres://ledger@localhost/ledger
lock:
  backend: redis
  redis_addr: localhost:6379
  expiry: 3s
settlement:
  max_attempts: 5
  backoff: 250ms
currency: EUR
`)
	t.Setenv("SPLITLEDGER_ADDR", ":7070")
	t.Setenv("SPLITLEDGER_SETTLEMENT_MAX_ATTEMPTS", "4")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Addr != ":7070" {
		t.Errorf("addr = %q, env should win", cfg.Server.Addr)
	}
	if cfg.Database.Driver != DriverPostgres || cfg.Database.DSN == "" {
		t.Errorf("database = %+v", cfg.Database)
	}
	if cfg.Lock.Expiry != 3*time.Second {
		t.Errorf("lock expiry = %v, want 3s", cfg.Lock.Expiry)
	}
	if got := cfg.RedisOptions().Expiry; got != 3*time.Second {
		t.Errorf("redis options expiry = %v", got)
	}
	if cfg.Settlement.MaxAttempts != 4 {
		t.Errorf("max attempts = %d, want 4", cfg.Settlement.MaxAttempts)
	}
	if cfg.Settlement.Backoff != 250*time.Millisecond {
		t.Errorf("backoff = %v, want 250ms", cfg.Settlement.Backoff)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("log level = %q", cfg.Log.Level)
	}
	if cfg.Currency != "EUR" {
		t.Errorf("currency = %q", cfg.Currency)
	}
}

func TestLoad_Errors(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	bad := writeConfig(t, "server: [not, a, map]")
	if _, err := Load(bad); err == nil {
		t.Error("expected error for malformed yaml")
	}

	t.Setenv("SPLITLEDGER_SETTLEMENT_BACKOFF", "soon")
	if _, err := Load(""); err == nil || !strings.Contains(err.Error(), "SPLITLEDGER_SETTLEMENT_BACKOFF") {
		t.Errorf("expected env parse error, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "defaults are valid", mutate: func(*Config) {}},
		{
			name:    "unknown driver",
			mutate:  func(c *Config) { c.Database.Driver = "mysql" },
			wantErr: "database.driver",
		},
		{
			name:    "postgres without dsn",
			mutate:  func(c *Config) { c.Database.Driver = DriverPostgres },
			wantErr: "database.dsn",
		},
		{
			name:    "redis without addr",
			mutate:  func(c *Config) { c.Lock.Backend = LockRedis },
			wantErr: "lock.redis_addr",
		},
		{
			name:    "zero attempts",
			mutate:  func(c *Config) { c.Settlement.MaxAttempts = 0 },
			wantErr: "max_attempts",
		},
		{
			name:    "unknown currency",
			mutate:  func(c *Config) { c.Currency = "ZZZ" },
			wantErr: "currency",
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.Log.Level = "loud" },
			wantErr: "log level",
		},
		{
			name: "reports every problem",
			mutate: func(c *Config) {
				c.Lock.Backend = "zookeeper"
				c.Auth.TokenTTL = 0
			},
			wantErr: "token_ttl",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()

			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}
