package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"
)

// DefaultLockKey identifies the annotator run lock among advisory locks.
const DefaultLockKey int64 = 0x657677 // "evw"

const defaultPollInterval = time.Second

// Session is one dedicated connection. Advisory locks belong to the session
// that took them, so the lock keeps its session until release. Destroy
// closes the connection instead of pooling it, which drops any advisory lock
// it still holds.
type Session interface {
	DBTX
	Release()
	Destroy(ctx context.Context) error
}

type poolSession struct {
	*pgxpool.Conn
}

func (s poolSession) Destroy(ctx context.Context) error {
	return s.Hijack().Close(ctx)
}

// AdvisoryLock is a cross-process pipeline.Lock using pg_try_advisory_lock.
// Callers in the same process queue on a local slot first, then poll the
// database for the remainder of their timeout.
type AdvisoryLock struct {
	acquire      func(ctx context.Context) (Session, error)
	key          int64
	clock        clockwork.Clock
	pollInterval time.Duration

	slot chan struct{}
	held Session // owned by whoever holds slot
}

// NewAdvisoryLock creates a lock that takes sessions from pool. A nil
// clock uses real time.
func NewAdvisoryLock(pool *pgxpool.Pool, key int64, clock clockwork.Clock) *AdvisoryLock {
	return newAdvisoryLock(func(ctx context.Context) (Session, error) {
		conn, err := pool.Acquire(ctx)
		if err != nil {
			return nil, err
		}
		return poolSession{conn}, nil
	}, key, clock)
}

func newAdvisoryLock(acquire func(context.Context) (Session, error), key int64, clock clockwork.Clock) *AdvisoryLock {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &AdvisoryLock{
		acquire:      acquire,
		key:          key,
		clock:        clock,
		pollInterval: defaultPollInterval,
		slot:         make(chan struct{}, 1),
	}
}

func (l *AdvisoryLock) Acquire(ctx context.Context, timeout time.Duration) (bool, error) {
	deadline := l.clock.Now().Add(timeout)
	if ok, err := l.takeSlot(ctx, timeout); !ok || err != nil {
		return false, err
	}
	ok, err := l.poll(ctx, deadline)
	if !ok || err != nil {
		<-l.slot
	}
	return ok, err
}

func (l *AdvisoryLock) takeSlot(ctx context.Context, timeout time.Duration) (bool, error) {
	select {
	case l.slot <- struct{}{}:
		return true, nil
	default:
	}
	if timeout <= 0 {
		return false, nil
	}
	timer := l.clock.NewTimer(timeout)
	defer timer.Stop()
	select {
	case l.slot <- struct{}{}:
		return true, nil
	case <-timer.Chan():
		return false, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

func (l *AdvisoryLock) poll(ctx context.Context, deadline time.Time) (bool, error) {
	sess, err := l.acquire(ctx)
	if err != nil {
		return false, fmt.Errorf("acquire session: %w", err)
	}
	for {
		var ok bool
		if err := sess.QueryRow(ctx, "SELECT pg_try_advisory_lock($1)", l.key).Scan(&ok); err != nil {
			sess.Release()
			return false, fmt.Errorf("try advisory lock: %w", err)
		}
		if ok {
			l.held = sess
			return true, nil
		}

		wait := min(l.pollInterval, deadline.Sub(l.clock.Now()))
		if wait <= 0 {
			sess.Release()
			return false, nil
		}
		timer := l.clock.NewTimer(wait)
		select {
		case <-timer.Chan():
		case <-ctx.Done():
			timer.Stop()
			sess.Release()
			return false, ctx.Err()
		}
	}
}

// Release unlocks and returns the session to the pool. When the unlock
// fails the session is destroyed, so a lock stuck on it cannot outlive the
// connection. Releasing an unheld lock is a no-op.
func (l *AdvisoryLock) Release(ctx context.Context) error {
	sess := l.held
	if sess == nil {
		return nil
	}
	l.held = nil
	defer func() { <-l.slot }()

	if err := unlock(ctx, sess, l.key); err != nil {
		if derr := sess.Destroy(ctx); derr != nil {
			return errors.Join(err, fmt.Errorf("destroy session: %w", derr))
		}
		return err
	}
	sess.Release()
	return nil
}

func unlock(ctx context.Context, sess Session, key int64) error {
	var ok bool
	if err := sess.QueryRow(ctx, "SELECT pg_advisory_unlock($1)", key).Scan(&ok); err != nil {
		return fmt.Errorf("advisory unlock: %w", err)
	}
	if !ok {
		return errors.New("advisory unlock: lock was not held by this session")
	}
	return nil
}
