package ctxsync_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/vinicius-lino-figueiredo/bucketdb/pkg/ctxsync"
)

// Multiple goroutines should not be able to acquire the same lock.
func TestLock(t *testing.T) {
	workers := 1000

	n := 0
	mu := ctxsync.NewMutex()

	getReady := sync.WaitGroup{} // called before locking on ch
	add := sync.WaitGroup{}      // called after adding 1 to n

	getReady.Add(workers)
	add.Add(workers)

	ch := make(chan struct{})

	for range workers {
		go func() {
			defer add.Done()
			getReady.Done()
			<-ch // released after all goroutines are waiting here
			mu.Lock()
			defer mu.Unlock()
			n++
		}()
	}

	getReady.Wait()
	close(ch)
	add.Wait()

	assert.Equal(t, workers, n)
}

// Should return error when context is canceled while waiting for the lock.
func TestCanceling(t *testing.T) {
	mu := ctxsync.NewMutex()
	mu.Lock()

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- mu.LockWithContext(ctx)
	}()

	time.Sleep(time.Millisecond)
	cancel()

	assert.ErrorIs(t, <-errCh, context.Canceled)

	mu.Unlock()
	assert.True(t, mu.TryLock())
	mu.Unlock()
}

// A canceled context never acquires the lock, even when it is free.
func TestCanceledContext(t *testing.T) {
	mu := ctxsync.NewMutex()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, mu.LockWithContext(ctx), context.Canceled)
	assert.True(t, mu.TryLock())
	mu.Unlock()
}

func TestTryLock(t *testing.T) {
	mu := ctxsync.NewMutex()

	assert.True(t, mu.TryLock())
	assert.False(t, mu.TryLock())
	mu.Unlock()
	assert.True(t, mu.TryLock())
	mu.Unlock()
}

func TestUnlockUnlocked(t *testing.T) {
	mu := ctxsync.NewMutex()
	assert.Panics(t, mu.Unlock)
}

func TestDo(t *testing.T) {
	mu := ctxsync.NewMutex()
	errFn := errors.New("fn error")

	err := mu.Do(context.Background(), func() error {
		assert.False(t, mu.TryLock())
		return errFn
	})
	assert.ErrorIs(t, err, errFn)
	assert.True(t, mu.TryLock())
	mu.Unlock()

	assert.Panics(t, func() {
		_ = mu.Do(context.Background(), func() error { panic("boom") })
	})
	assert.True(t, mu.TryLock())
	mu.Unlock()
}
