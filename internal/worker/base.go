package worker

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lifequest/engine/internal/logger"
)

// BaseWorker provides common functionality for background workers that manage
// one-shot timers keyed by id. Replacing a timer for the same id cancels the
// previous one, so a stale expiry can never fire after its successor is armed.
type BaseWorker struct {
	mu       sync.Mutex
	timers   map[uuid.UUID]*time.Timer
	shutdown chan struct{}
	wg       sync.WaitGroup
}

func (w *BaseWorker) init() {
	if w.timers == nil {
		w.timers = make(map[uuid.UUID]*time.Timer)
	}
	if w.shutdown == nil {
		w.shutdown = make(chan struct{})
	}
}

// ScheduleAfter arms a timer for the id, cancelling any existing one.
// fn runs on its own goroutine when the timer fires.
func (w *BaseWorker) ScheduleAfter(id uuid.UUID, d time.Duration, fn func(ctx context.Context)) {
	w.mu.Lock()
	w.init()
	if prev, ok := w.timers[id]; ok {
		prev.Stop()
	}
	timer := time.AfterFunc(d, func() {
		w.mu.Lock()
		select {
		case <-w.shutdown:
			w.mu.Unlock()
			return
		default:
		}
		delete(w.timers, id)
		w.wg.Add(1)
		w.mu.Unlock()

		defer w.wg.Done()
		fn(context.Background())
	})
	w.timers[id] = timer
	w.mu.Unlock()
}

// Cancel stops and removes the timer for the id, if armed
func (w *BaseWorker) Cancel(id uuid.UUID) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.init()
	if timer, ok := w.timers[id]; ok {
		timer.Stop()
		delete(w.timers, id)
	}
}

// Shutdown cancels pending timers and waits for in-flight executions
func (w *BaseWorker) Shutdown(ctx context.Context, workerName string) error {
	log := logger.FromContext(ctx)
	log.Info("Shutting down " + workerName)

	w.mu.Lock()
	w.init()
	close(w.shutdown)
	for id, timer := range w.timers {
		timer.Stop()
		log.Info("Cancelled pending "+workerName+" execution", "id", id)
	}
	w.timers = make(map[uuid.UUID]*time.Timer)
	w.mu.Unlock()

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Info(workerName + " shutdown complete")
		return nil
	case <-ctx.Done():
		log.Warn(workerName + " shutdown timeout")
		return ctx.Err()
	}
}
