package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vncsmyrnk/assembly/internal/core/domain"
	"github.com/vncsmyrnk/assembly/internal/core/ports"
)

// flakySessions fails every other CloseExpired call.
type flakySessions struct {
	ports.SessionService
	calls atomic.Int32
}

func (f *flakySessions) CloseExpired(ctx context.Context) ([]uuid.UUID, error) {
	n := f.calls.Add(1)
	if n%2 == 1 {
		return nil, domain.ErrStoreUnavailable
	}
	return nil, nil
}

type deadlineSessions struct {
	ports.SessionService
	sawDeadline atomic.Bool
}

func (d *deadlineSessions) CloseExpired(ctx context.Context) ([]uuid.UUID, error) {
	_, ok := ctx.Deadline()
	d.sawDeadline.Store(ok)
	return nil, nil
}

func TestSweeperKeepsTickingAfterErrors(t *testing.T) {
	sessions := &flakySessions{}
	sweeper := NewSweeper(sessions, 5*time.Millisecond, time.Second, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sweeper.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return sessions.calls.Load() >= 4 }, 2*time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("sweeper did not stop after cancellation")
	}
}

func TestSweeperRunsImmediately(t *testing.T) {
	sessions := &flakySessions{}
	sweeper := NewSweeper(sessions, time.Hour, time.Second, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sweeper.Run(ctx)

	assert.Eventually(t, func() bool { return sessions.calls.Load() == 1 }, time.Second, time.Millisecond)
}

func TestSweepOnceIsBounded(t *testing.T) {
	sessions := &deadlineSessions{}
	sweeper := NewSweeper(sessions, 0, 0, discardLogger())

	_, err := sweeper.SweepOnce(context.Background())
	require.NoError(t, err)
	assert.True(t, sessions.sawDeadline.Load())
}

func TestSweepOnceReturnsErrors(t *testing.T) {
	sweeper := NewSweeper(&flakySessions{}, time.Second, time.Second, discardLogger())
	_, err := sweeper.SweepOnce(context.Background())
	assert.True(t, errors.Is(err, domain.ErrStoreUnavailable))
}
