// Package ctxsync provides synchronization primitives whose blocking
// operations can be abandoned through a [context.Context].
package ctxsync

import "context"

// A Mutex is a mutual exclusion lock. The zero value is not usable, use
// [NewMutex].
type Mutex struct {
	sem chan struct{}
}

// NewMutex returns an unlocked Mutex.
func NewMutex() *Mutex {
	return &Mutex{sem: make(chan struct{}, 1)}
}

// Lock blocks until m is locked.
func (m *Mutex) Lock() {
	m.sem <- struct{}{}
}

// LockWithContext blocks until m is locked or ctx is done. m is not locked
// when an error is returned.
func (m *Mutex) LockWithContext(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case m.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TryLock locks m if it is unlocked and reports whether it did.
func (m *Mutex) TryLock() bool {
	select {
	case m.sem <- struct{}{}:
		return true
	default:
		return false
	}
}

// Unlock unlocks m. It panics if m is not locked.
func (m *Mutex) Unlock() {
	select {
	case <-m.sem:
	default:
		panic("ctxsync: unlock of unlocked mutex")
	}
}
