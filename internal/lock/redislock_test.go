package lock

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) *redis.Client {
	t.Helper()
	srv := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: srv.Addr()})
}

func TestWithLockSerialisesCallers(t *testing.T) {
	client := newTestClient(t)
	locker := Locker{R: client, RetryBackoff: 5 * time.Millisecond}

	var mu sync.Mutex
	var active, maxActive int

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := locker.WithLock(context.Background(), "lock:order:1", time.Second, func(context.Context) error {
				mu.Lock()
				active++
				if active > maxActive {
					maxActive = active
				}
				mu.Unlock()

				time.Sleep(10 * time.Millisecond)

				mu.Lock()
				active--
				mu.Unlock()
				return nil
			})
			require.NoError(t, err)
		}()
	}
	wg.Wait()

	require.Equal(t, 1, maxActive, "lock must admit one caller at a time")
}

func TestWithLockReleasesOnError(t *testing.T) {
	client := newTestClient(t)
	locker := Locker{R: client, RetryBackoff: 5 * time.Millisecond}

	errBoom := context.DeadlineExceeded
	err := locker.WithLock(context.Background(), "lock:order:2", time.Second, func(context.Context) error {
		return errBoom
	})
	require.ErrorIs(t, err, errBoom)

	// The key must be gone so a second caller acquires immediately.
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	require.NoError(t, locker.WithLock(ctx, "lock:order:2", time.Second, func(context.Context) error {
		return nil
	}))
}
