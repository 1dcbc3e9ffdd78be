package lock

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MemoryLocker is an in-process Locker for single-instance deployments.
type MemoryLocker struct {
	// Wait bounds how long Lock blocks. Zero waits until ctx is done.
	Wait time.Duration

	mu      sync.Mutex
	entries map[string]*memoryEntry
}

type memoryEntry struct {
	ch   chan struct{}
	refs int
}

// NewMemoryLocker returns a MemoryLocker that gives up after wait.
func NewMemoryLocker(wait time.Duration) *MemoryLocker {
	return &MemoryLocker{Wait: wait}
}

// Lock blocks until key is free or the wait expires.
func (l *MemoryLocker) Lock(ctx context.Context, key string) (Unlocker, error) {
	entry := l.acquireEntry(key)

	if l.Wait > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.Wait)
		defer cancel()
	}

	select {
	case entry.ch <- struct{}{}:
		return &memoryUnlocker{locker: l, key: key, entry: entry}, nil
	case <-ctx.Done():
		l.releaseEntry(key, entry)
		return nil, fmt.Errorf("%w: %s: %w", ErrNotAcquired, key, ctx.Err())
	}
}

func (l *MemoryLocker) acquireEntry(key string) *memoryEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.entries == nil {
		l.entries = make(map[string]*memoryEntry)
	}
	entry, ok := l.entries[key]
	if !ok {
		entry = &memoryEntry{ch: make(chan struct{}, 1)}
		l.entries[key] = entry
	}
	entry.refs++
	return entry
}

func (l *MemoryLocker) releaseEntry(key string, entry *memoryEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry.refs--
	if entry.refs == 0 {
		delete(l.entries, key)
	}
}

type memoryUnlocker struct {
	locker *MemoryLocker
	key    string
	entry  *memoryEntry
	once   sync.Once
}

func (u *memoryUnlocker) Unlock(context.Context) error {
	u.once.Do(func() {
		<-u.entry.ch
		u.locker.releaseEntry(u.key, u.entry)
	})
	return nil
}
