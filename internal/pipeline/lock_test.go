package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMutexLock_AcquireRelease(t *testing.T) {
	l := NewMutexLock(clockwork.NewFakeClock())
	ctx := context.Background()

	ok, err := l.Acquire(ctx, 0)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = l.Acquire(ctx, 0)
	require.NoError(t, err)
	assert.False(t, ok, "second acquire must fail while held")

	require.NoError(t, l.Release(ctx))
	ok, err = l.Acquire(ctx, 0)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMutexLock_ReleaseUnlockedIsNoop(t *testing.T) {
	l := NewMutexLock(nil)
	assert.NoError(t, l.Release(context.Background()))
}

func TestMutexLock_WaitsForRelease(t *testing.T) {
	fc := clockwork.NewFakeClock()
	l := NewMutexLock(fc)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ok, _ := l.Acquire(ctx, 0)
	require.True(t, ok)

	got := make(chan bool, 1)
	go func() {
		ok, _ := l.Acquire(ctx, time.Minute)
		got <- ok
	}()

	require.NoError(t, fc.BlockUntilContext(ctx, 1))
	require.NoError(t, l.Release(ctx))
	assert.True(t, <-got)
}

func TestMutexLock_Timeout(t *testing.T) {
	fc := clockwork.NewFakeClock()
	l := NewMutexLock(fc)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ok, _ := l.Acquire(ctx, 0)
	require.True(t, ok)

	got := make(chan bool, 1)
	go func() {
		ok, _ := l.Acquire(ctx, time.Minute)
		got <- ok
	}()

	require.NoError(t, fc.BlockUntilContext(ctx, 1))
	fc.Advance(time.Minute)
	assert.False(t, <-got)
}

func TestMutexLock_ContextCancelled(t *testing.T) {
	l := NewMutexLock(clockwork.NewFakeClock())
	ok, _ := l.Acquire(context.Background(), 0)
	require.True(t, ok)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ok, err := l.Acquire(ctx, time.Minute)
	assert.False(t, ok)
	assert.ErrorIs(t, err, context.Canceled)
}
