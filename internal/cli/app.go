package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/mmynk/splitledger/internal/auth"
	"github.com/mmynk/splitledger/internal/config"
	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/internal/lock"
	"github.com/mmynk/splitledger/internal/report"
	"github.com/mmynk/splitledger/internal/settlement"
	"github.com/mmynk/splitledger/internal/storage"
	"github.com/mmynk/splitledger/internal/storage/postgres"
	"github.com/mmynk/splitledger/internal/storage/sqlite"
)

// app holds the wired core for one process.
type app struct {
	cfg      config.Config
	store    storage.Store
	locker   lock.Locker
	ledger   *ledger.Ledger
	engine   *settlement.Engine
	reporter *report.Reporter

	// jwt is nil when auth.jwt_secret is empty.
	jwt *auth.JWTManager

	closers []func() error
}

func newApp(ctx context.Context, cfg config.Config) (*app, error) {
	a := &app{cfg: cfg}

	store, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.store = store
	a.closers = append(a.closers, store.Close)

	locker, closeLocker, err := newLocker(ctx, cfg)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.locker = locker
	if closeLocker != nil {
		a.closers = append(a.closers, closeLocker)
	}

	policy := cfg.RetryPolicy()
	a.ledger = ledger.New(store, locker, ledger.WithRetryPolicy(policy))
	a.engine = settlement.NewEngine(store, locker, settlement.WithRetryPolicy(policy))
	a.reporter = report.New(store)

	if cfg.Auth.JWTSecret != "" {
		a.jwt = auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	}
	return a, nil
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func openStore(ctx context.Context, cfg config.Config) (storage.Store, error) {
	switch cfg.Database.Driver {
	case config.DriverPostgres:
		store, err := postgres.New(ctx, cfg.Database.DSN, cfg.PostgresOptions())
		if err != nil {
			return nil, fmt.Errorf("failed to initialize postgres storage: %w", err)
		}
		slog.Info("Storage initialized", "driver", cfg.Database.Driver)
		return store, nil
	default:
		store, err := sqlite.New(cfg.Database.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize sqlite storage: %w", err)
		}
		slog.Info("Storage initialized", "driver", cfg.Database.Driver, "database", cfg.Database.Path)
		return store, nil
	}
}

func newLocker(ctx context.Context, cfg config.Config) (lock.Locker, func() error, error) {
	if cfg.Lock.Backend != config.LockRedis {
		return lock.NewMemoryLocker(cfg.Lock.Wait), nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Lock.RedisAddr,
		Password: cfg.Lock.RedisPassword,
		DB:       cfg.Lock.RedisDB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("failed to reach redis at %s: %w", cfg.Lock.RedisAddr, err)
	}
	slog.Info("Using redis pair locks", "addr", cfg.Lock.RedisAddr)
	return lock.NewRedisLocker(client, cfg.RedisOptions()), client.Close, nil
}
