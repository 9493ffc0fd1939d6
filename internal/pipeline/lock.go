package pipeline

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
)

// Lock serializes processing runs. Acquire reports false when the lock is
// still held after timeout; it returns an error only when it could not find
// out.
type Lock interface {
	Acquire(ctx context.Context, timeout time.Duration) (bool, error)
	Release(ctx context.Context) error
}

// MutexLock is an in-process Lock backed by a one-slot channel.
type MutexLock struct {
	sem   chan struct{}
	clock clockwork.Clock
}

// NewMutexLock creates an unlocked MutexLock. A nil clock uses real time.
func NewMutexLock(clock clockwork.Clock) *MutexLock {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &MutexLock{sem: make(chan struct{}, 1), clock: clock}
}

func (l *MutexLock) Acquire(ctx context.Context, timeout time.Duration) (bool, error) {
	select {
	case l.sem <- struct{}{}:
		return true, nil
	default:
	}
	if timeout <= 0 {
		return false, nil
	}

	timer := l.clock.NewTimer(timeout)
	defer timer.Stop()

	select {
	case l.sem <- struct{}{}:
		return true, nil
	case <-timer.Chan():
		return false, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

// Release frees the lock. Releasing an unlocked MutexLock is a no-op.
func (l *MutexLock) Release(context.Context) error {
	select {
	case <-l.sem:
	default:
	}
	return nil
}
