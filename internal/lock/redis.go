package lock

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
)

// RedisOptions configures the redsync mutexes.
type RedisOptions struct {
	// Expiry is how long a lock lives if its holder dies.
	Expiry time.Duration

	// Tries is how many times acquisition is attempted.
	Tries int

	// RetryDelay is the pause between attempts.
	RetryDelay time.Duration

	// DriftFactor accounts for clock drift between Redis nodes.
	DriftFactor float64
}

// DefaultRedisOptions returns options sized for a settlement transaction.
func DefaultRedisOptions() RedisOptions {
	return RedisOptions{
		Expiry:      10 * time.Second,
		Tries:       32,
		RetryDelay:  50 * time.Millisecond,
		DriftFactor: 0.01,
	}
}

// RedisLocker is a Locker shared by every instance pointing at the same Redis.
type RedisLocker struct {
	redsync *redsync.Redsync
	opts    RedisOptions
}

// NewRedisLocker builds a RedisLocker over an existing client.
func NewRedisLocker(client redis.UniversalClient, opts RedisOptions) *RedisLocker {
	defaults := DefaultRedisOptions()
	if opts.Expiry <= 0 {
		opts.Expiry = defaults.Expiry
	}
	if opts.Tries <= 0 {
		opts.Tries = defaults.Tries
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = defaults.RetryDelay
	}
	if opts.DriftFactor <= 0 {
		opts.DriftFactor = defaults.DriftFactor
	}

	return &RedisLocker{
		redsync: redsync.New(goredis.NewPool(client)),
		opts:    opts,
	}
}

// Lock acquires key, retrying per the configured options.
func (l *RedisLocker) Lock(ctx context.Context, key string) (Unlocker, error) {
	mutex := l.redsync.NewMutex(
		key,
		redsync.WithExpiry(l.opts.Expiry),
		redsync.WithTries(l.opts.Tries),
		redsync.WithRetryDelay(l.opts.RetryDelay),
		redsync.WithDriftFactor(l.opts.DriftFactor),
	)

	slog.Debug("Attempting to acquire lock", "key", key)

	if err := mutex.LockContext(ctx); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrNotAcquired, key, err)
	}

	slog.Debug("Lock acquired", "key", key)
	return &redisUnlocker{mutex: mutex}, nil
}

type redisUnlocker struct {
	mutex *redsync.Mutex
}

func (u *redisUnlocker) Unlock(ctx context.Context) error {
	ok, err := u.mutex.UnlockContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to release lock %s: %w", u.mutex.Name(), err)
	}
	if !ok {
		return errors.New("lock " + u.mutex.Name() + " expired before release")
	}
	slog.Debug("Lock released", "key", u.mutex.Name())
	return nil
}
