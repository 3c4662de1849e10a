package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifequest/engine/internal/testing/leaktest"
)

func TestPool_ProcessesEnqueuedJobs(t *testing.T) {
	checker := leaktest.NewGoroutineChecker(t)

	pool := NewPool(2, 8)
	pool.Start()

	var mu sync.Mutex
	processed := 0
	done := make(chan struct{}, 4)
	for i := 0; i < 4; i++ {
		pool.Enqueue(JobFunc(func(ctx context.Context) error {
			mu.Lock()
			processed++
			mu.Unlock()
			done <- struct{}{}
			return nil
		}))
	}

	for i := 0; i < 4; i++ {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for jobs")
		}
	}
	pool.Stop()

	mu.Lock()
	assert.Equal(t, 4, processed)
	mu.Unlock()

	checker.Check(2)
}

func TestPool_FailingJobDoesNotKillWorkers(t *testing.T) {
	pool := NewPool(1, 4)
	pool.Start()
	defer pool.Stop()

	pool.Enqueue(JobFunc(func(ctx context.Context) error {
		return errors.New("boom")
	}))

	done := make(chan struct{})
	pool.Enqueue(JobFunc(func(ctx context.Context) error {
		close(done)
		return nil
	}))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker stopped processing after a failed job")
	}
}

func TestBaseWorker_ScheduleAfterFires(t *testing.T) {
	var w BaseWorker
	fired := make(chan struct{})

	w.ScheduleAfter(uuid.New(), 10*time.Millisecond, func(ctx context.Context) {
		close(fired)
	})

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduled function never ran")
	}
	require.NoError(t, w.Shutdown(context.Background(), "test worker"))
}

func TestBaseWorker_ReplacingTimerCancelsPrevious(t *testing.T) {
	var w BaseWorker
	id := uuid.New()

	var mu sync.Mutex
	var order []string
	fired := make(chan struct{})

	w.ScheduleAfter(id, 20*time.Millisecond, func(ctx context.Context) {
		mu.Lock()
		order = append(order, "first")
		mu.Unlock()
	})
	w.ScheduleAfter(id, 40*time.Millisecond, func(ctx context.Context) {
		mu.Lock()
		order = append(order, "second")
		mu.Unlock()
		close(fired)
	})

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("replacement timer never fired")
	}

	mu.Lock()
	assert.Equal(t, []string{"second"}, order)
	mu.Unlock()
	require.NoError(t, w.Shutdown(context.Background(), "test worker"))
}

func TestBaseWorker_CancelStopsTimer(t *testing.T) {
	var w BaseWorker
	id := uuid.New()

	fired := make(chan struct{}, 1)
	w.ScheduleAfter(id, 20*time.Millisecond, func(ctx context.Context) {
		fired <- struct{}{}
	})
	w.Cancel(id)

	select {
	case <-fired:
		t.Fatal("cancelled timer still fired")
	case <-time.After(100 * time.Millisecond):
	}
	require.NoError(t, w.Shutdown(context.Background(), "test worker"))
}

func TestBaseWorker_ShutdownCancelsPendingTimers(t *testing.T) {
	checker := leaktest.NewGoroutineChecker(t)

	var w BaseWorker
	fired := make(chan struct{}, 1)
	w.ScheduleAfter(uuid.New(), time.Hour, func(ctx context.Context) {
		fired <- struct{}{}
	})

	require.NoError(t, w.Shutdown(context.Background(), "test worker"))

	select {
	case <-fired:
		t.Fatal("timer fired after shutdown")
	case <-time.After(50 * time.Millisecond):
	}

	checker.Check(2)
}
