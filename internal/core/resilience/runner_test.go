package resilience

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_ReturnsValue(t *testing.T) {
	r := NewRunner(2, nil)

	v, err := Run(context.Background(), r, time.Second, func(ctx context.Context) (string, error) {
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", v)
}

func TestRun_PropagatesTaskErrorUnchanged(t *testing.T) {
	r := NewRunner(2, nil)
	boom := errors.New("boom")

	_, err := Run(context.Background(), r, time.Second, func(ctx context.Context) (int, error) {
		return 0, boom
	})

	assert.Same(t, boom, err)
}

func TestRun_RecoversTaskPanic(t *testing.T) {
	r := NewRunner(1, nil)

	_, err := Run(context.Background(), r, time.Second, func(ctx context.Context) ([]int, error) {
		panic("makeslice: cap out of range")
	})

	require.ErrorIs(t, err, ErrTaskPanic)
	assert.Contains(t, err.Error(), "cap out of range")
	assert.False(t, DefaultRetryable(err))
	assert.Eventually(t, func() bool { return r.InFlight() == 0 }, time.Second, 5*time.Millisecond)

	// The slot is released, so the single-worker pool still serves work.
	v, err := Run(context.Background(), r, time.Second, func(ctx context.Context) (int, error) {
		return 7, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}

func TestRun_TimeoutUnblocksCaller(t *testing.T) {
	r := NewRunner(2, nil)
	release := make(chan struct{})
	defer close(release)

	start := time.Now()
	_, err := Run(context.Background(), r, 50*time.Millisecond, func(ctx context.Context) (int, error) {
		<-release // ignores ctx on purpose
		return 1, nil
	})

	assert.ErrorIs(t, err, ErrTimeout)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestRun_CancelsTaskContextOnTimeout(t *testing.T) {
	r := NewRunner(1, nil)
	stopped := make(chan struct{})

	_, err := Run(context.Background(), r, 20*time.Millisecond, func(ctx context.Context) (int, error) {
		<-ctx.Done()
		close(stopped)
		return 0, ctx.Err()
	})
	require.ErrorIs(t, err, ErrTimeout)

	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("task did not observe cancellation")
	}
}

func TestRun_ParentCancellationIsNotTimeout(t *testing.T) {
	r := NewRunner(1, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, r, time.Second, func(ctx context.Context) (int, error) {
		return 1, nil
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrTimeout)
}

func TestRun_IndependentClocks(t *testing.T) {
	r := NewRunner(4, nil)
	errs := make(chan error, 2)

	go func() {
		_, err := Run(context.Background(), r, 30*time.Millisecond, func(ctx context.Context) (int, error) {
			<-ctx.Done()
			return 0, ctx.Err()
		})
		errs <- err
	}()
	go func() {
		_, err := Run(context.Background(), r, time.Second, func(ctx context.Context) (int, error) {
			time.Sleep(80 * time.Millisecond)
			return 1, nil
		})
		errs <- err
	}()

	var timeouts, successes int
	for range 2 {
		if err := <-errs; err == nil {
			successes++
		} else if errors.Is(err, ErrTimeout) {
			timeouts++
		}
	}
	assert.Equal(t, 1, timeouts)
	assert.Equal(t, 1, successes)
}

func TestRun_SaturatedPoolWaitsUntilDeadline(t *testing.T) {
	r := NewRunner(1, nil)
	hold := make(chan struct{})
	started := make(chan struct{})

	go func() {
		_, _ = Run(context.Background(), r, time.Second, func(ctx context.Context) (int, error) {
			close(started)
			<-hold
			return 0, nil
		})
	}()
	<-started

	var ran atomic.Bool
	_, err := Run(context.Background(), r, 30*time.Millisecond, func(ctx context.Context) (int, error) {
		ran.Store(true)
		return 0, nil
	})
	close(hold)

	assert.ErrorIs(t, err, ErrTimeout)
	assert.False(t, ran.Load())
}

func TestRun_ReportsPoolOccupancy(t *testing.T) {
	var peak atomic.Int64
	r := NewRunner(2, &Hooks{OnPoolBusy: func(n int64) {
		if n > peak.Load() {
			peak.Store(n)
		}
	}})

	_, err := Run(context.Background(), r, time.Second, func(ctx context.Context) (int, error) {
		return 0, nil
	})

	require.NoError(t, err)
	assert.Equal(t, int64(1), peak.Load())
	assert.Eventually(t, func() bool { return r.InFlight() == 0 }, time.Second, 5*time.Millisecond)
}

func TestRunner_ShutdownRejectsNewWork(t *testing.T) {
	r := NewRunner(1, nil)
	require.NoError(t, r.Shutdown(context.Background()))

	_, err := Run(context.Background(), r, time.Second, func(ctx context.Context) (int, error) {
		return 1, nil
	})

	assert.ErrorIs(t, err, ErrPoolClosed)
}

func TestRunner_ShutdownDrainsAbandonedTasks(t *testing.T) {
	r := NewRunner(1, nil)
	var finished atomic.Bool

	_, err := Run(context.Background(), r, 10*time.Millisecond, func(ctx context.Context) (int, error) {
		time.Sleep(60 * time.Millisecond)
		finished.Store(true)
		return 0, nil
	})
	require.ErrorIs(t, err, ErrTimeout)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, r.Shutdown(ctx))
	assert.True(t, finished.Load())
}

func TestRunner_ShutdownHonoursDeadline(t *testing.T) {
	r := NewRunner(1, nil)
	hold := make(chan struct{})
	defer close(hold)

	_, _ = Run(context.Background(), r, 10*time.Millisecond, func(ctx context.Context) (int, error) {
		<-hold
		return 0, nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, r.Shutdown(ctx), context.DeadlineExceeded)
}
