package ctxsync

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type MutexTestSuite struct {
	suite.Suite
	mu *Mutex
}

func (s *MutexTestSuite) SetupTest() {
	s.mu = NewMutex()
}

// Concurrent increments are serialized.
func (s *MutexTestSuite) TestLock() {
	var wg sync.WaitGroup
	n := 0
	for range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.mu.Lock()
			defer s.mu.Unlock()
			n++
		}()
	}
	wg.Wait()
	s.Equal(100, n)
}

func (s *MutexTestSuite) TestLockWithContext() {
	s.NoError(s.mu.LockWithContext(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	s.ErrorIs(s.mu.LockWithContext(ctx), context.DeadlineExceeded)

	s.mu.Unlock()
	s.NoError(s.mu.LockWithContext(context.Background()))
	s.mu.Unlock()
}

// A done context is never granted the lock, even when it is free.
func (s *MutexTestSuite) TestLockCancelled() {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s.ErrorIs(s.mu.LockWithContext(ctx), context.Canceled)
	s.True(s.mu.TryLock())
}

// Waiting goroutines get the lock once it is released.
func (s *MutexTestSuite) TestWaiter() {
	s.mu.Lock()
	locked := make(chan struct{})
	go func() {
		s.NoError(s.mu.LockWithContext(context.Background()))
		close(locked)
	}()

	select {
	case <-locked:
		s.Fail("locked twice")
	case <-time.After(10 * time.Millisecond):
	}

	s.mu.Unlock()
	<-locked
	s.False(s.mu.TryLock())
	s.mu.Unlock()
}

func (s *MutexTestSuite) TestTryLock() {
	s.True(s.mu.TryLock())
	s.False(s.mu.TryLock())
	s.mu.Unlock()
	s.True(s.mu.TryLock())
}

func (s *MutexTestSuite) TestUnlockUnlocked() {
	s.PanicsWithValue("ctxsync: unlock of unlocked mutex", s.mu.Unlock)
}

func TestMutexTestSuite(t *testing.T) {
	suite.Run(t, new(MutexTestSuite))
}
