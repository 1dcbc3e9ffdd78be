// Package lock serializes work on a (group, user pair) across request
// handlers. Locks are taken before a storage transaction begins and released
// after it ends, always in sorted key order so two callers never wait on
// each other in a cycle.
package lock

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
)

// ErrNotAcquired is returned when a lock could not be taken before the
// context ended or the retry budget ran out. It is transient.
var ErrNotAcquired = errors.New("lock not acquired")

// Locker hands out exclusive locks by key.
type Locker interface {
	Lock(ctx context.Context, key string) (Unlocker, error)
}

// Unlocker releases a held lock.
type Unlocker interface {
	Unlock(ctx context.Context) error
}

// PairKey names the lock guarding the edges between two users in a group.
// The pair is unordered: PairKey(g, a, b) == PairKey(g, b, a).
func PairKey(groupID, userA, userB string) string {
	if userB < userA {
		userA, userB = userB, userA
	}
	return fmt.Sprintf("splitledger:pair:%s:%s:%s", groupID, userA, userB)
}

// Release frees every lock taken by AcquireAll.
type Release func(ctx context.Context)

// AcquireAll takes every key in sorted order, skipping duplicates. If any
// acquisition fails the locks already held are released and the error is
// returned.
func AcquireAll(ctx context.Context, locker Locker, keys []string) (Release, error) {
	sorted := slices.Clone(keys)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	held := make([]Unlocker, 0, len(sorted))
	release := func(ctx context.Context) {
		for i := len(held) - 1; i >= 0; i-- {
			if err := held[i].Unlock(ctx); err != nil {
				slog.Warn("Failed to release lock", "key", sorted[i], "error", err)
			}
		}
	}

	for _, key := range sorted {
		u, err := locker.Lock(ctx, key)
		if err != nil {
			release(context.WithoutCancel(ctx))
			return nil, err
		}
		held = append(held, u)
	}

	return release, nil
}
