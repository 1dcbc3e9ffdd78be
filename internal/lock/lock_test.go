package lock

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPairKey_Unordered(t *testing.T) {
	assert.Equal(t, PairKey("g1", "alice", "bob"), PairKey("g1", "bob", "alice"))
	assert.NotEqual(t, PairKey("g1", "alice", "bob"), PairKey("g2", "alice", "bob"))
	assert.Equal(t, "splitledger:pair:g1:alice:bob", PairKey("g1", "bob", "alice"))
}

func TestMemoryLocker_Exclusive(t *testing.T) {
	locker := NewMemoryLocker(0)
	ctx := context.Background()

	var inside, maxInside atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			u, err := locker.Lock(ctx, "k")
			if !assert.NoError(t, err) {
				return
			}
			n := inside.Add(1)
			for {
				m := maxInside.Load()
				if n <= m || maxInside.CompareAndSwap(m, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			inside.Add(-1)
			assert.NoError(t, u.Unlock(ctx))
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxInside.Load())
	assert.Empty(t, locker.entries, "entries should be dropped once unused")
}

func TestMemoryLocker_WaitExpires(t *testing.T) {
	locker := NewMemoryLocker(20 * time.Millisecond)
	ctx := context.Background()

	held, err := locker.Lock(ctx, "k")
	require.NoError(t, err)

	_, err = locker.Lock(ctx, "k")
	assert.ErrorIs(t, err, ErrNotAcquired)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	require.NoError(t, held.Unlock(ctx))
	again, err := locker.Lock(ctx, "k")
	require.NoError(t, err)
	require.NoError(t, again.Unlock(ctx))
}

func TestMemoryLocker_DoubleUnlock(t *testing.T) {
	locker := NewMemoryLocker(0)
	ctx := context.Background()

	u, err := locker.Lock(ctx, "k")
	require.NoError(t, err)
	require.NoError(t, u.Unlock(ctx))
	require.NoError(t, u.Unlock(ctx))
}

func TestAcquireAll_SortedAndDeduplicated(t *testing.T) {
	rec := &recordingLocker{inner: NewMemoryLocker(0)}
	ctx := context.Background()

	release, err := AcquireAll(ctx, rec, []string{"c", "a", "b", "a"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, rec.order)

	release(ctx)
	assert.Empty(t, rec.inner.entries)
}

func TestAcquireAll_ReleasesOnFailure(t *testing.T) {
	locker := NewMemoryLocker(20 * time.Millisecond)
	ctx := context.Background()

	blocker, err := locker.Lock(ctx, "b")
	require.NoError(t, err)

	_, err = AcquireAll(ctx, locker, []string{"a", "b"})
	assert.ErrorIs(t, err, ErrNotAcquired)

	// "a" must have been released.
	u, err := locker.Lock(ctx, "a")
	require.NoError(t, err)
	require.NoError(t, u.Unlock(ctx))
	require.NoError(t, blocker.Unlock(ctx))
}

func setupTestRedis(t *testing.T) *redis.Client {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return client
}

func TestRedisLocker_LockUnlock(t *testing.T) {
	locker := NewRedisLocker(setupTestRedis(t), RedisOptions{})
	ctx := context.Background()

	u, err := locker.Lock(ctx, PairKey("g", "a", "b"))
	require.NoError(t, err)
	require.NoError(t, u.Unlock(ctx))

	u, err = locker.Lock(ctx, PairKey("g", "b", "a"))
	require.NoError(t, err)
	require.NoError(t, u.Unlock(ctx))
}

func TestRedisLocker_Contention(t *testing.T) {
	client := setupTestRedis(t)
	locker := NewRedisLocker(client, RedisOptions{Tries: 2, RetryDelay: 10 * time.Millisecond})
	ctx := context.Background()

	held, err := locker.Lock(ctx, "k")
	require.NoError(t, err)

	_, err = locker.Lock(ctx, "k")
	assert.ErrorIs(t, err, ErrNotAcquired)

	require.NoError(t, held.Unlock(ctx))

	u, err := locker.Lock(ctx, "k")
	require.NoError(t, err)
	require.NoError(t, u.Unlock(ctx))
}

func TestRedisLocker_Exclusive(t *testing.T) {
	locker := NewRedisLocker(setupTestRedis(t), RedisOptions{Tries: 200, RetryDelay: 5 * time.Millisecond})
	ctx := context.Background()

	var counter atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			u, err := locker.Lock(ctx, "counter")
			if !assert.NoError(t, err) {
				return
			}
			v := counter.Load()
			time.Sleep(2 * time.Millisecond)
			counter.Store(v + 1)
			assert.NoError(t, u.Unlock(ctx))
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(5), counter.Load())
}

type recordingLocker struct {
	inner *MemoryLocker
	order []string
}

func (r *recordingLocker) Lock(ctx context.Context, key string) (Unlocker, error) {
	r.order = append(r.order, key)
	return r.inner.Lock(ctx, key)
}
