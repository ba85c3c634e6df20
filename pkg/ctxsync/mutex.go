// Package ctxsync provides synchronization primitives whose blocking calls
// can be abandoned through a [context.Context].
package ctxsync

import (
	"context"
)

// NewMutex creates a new instance of Mutex.
func NewMutex() *Mutex {
	return &Mutex{
		held: make(chan struct{}, 1),
	}
}

// A Mutex is a mutual exclusion lock. Unlike [sync.Mutex], waiting for it can
// be cancelled. The zero value is not usable; build it with [NewMutex].
type Mutex struct {
	held chan struct{}
}

// Lock locks the mutex with a context.Background()
func (m *Mutex) Lock() {
	_ = m.LockWithContext(context.Background())
}

// LockWithContext locks until Unlock is called or context is cancelled
func (m *Mutex) LockWithContext(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case m.held <- struct{}{}:
		return nil
	}
}

// TryLock tries to lock m and reports whether it succeeded.
func (m *Mutex) TryLock() bool {
	select {
	case m.held <- struct{}{}:
		return true
	default:
		return false
	}
}

// Unlock unlocks m.
func (m *Mutex) Unlock() {
	select {
	case <-m.held:
	default:
		panic("ctxsync: unlock of unlocked mutex")
	}
}

// Do runs fn while holding m. The lock is released when fn returns, even if it
// panics.
func (m *Mutex) Do(ctx context.Context, fn func() error) error {
	if err := m.LockWithContext(ctx); err != nil {
		return err
	}
	defer m.Unlock()
	return fn()
}
