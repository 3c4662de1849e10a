package event

import (
	"context"
	"encoding/json"
	"os"
	"sync"
	"time"

	"github.com/lifequest/engine/internal/logger"
)

// ResilientConfig configures the ResilientPublisher
type ResilientConfig struct {
	MaxRetries     int
	RetryDelay     time.Duration
	DeadLetterPath string
}

// ResilientPublisher wraps an Event Bus to add retry logic and dead letter
// queuing. Notification delivery is best-effort: a failed handler never
// propagates back into the progression core.
type ResilientPublisher struct {
	inner  Bus
	config ResilientConfig
	wg     sync.WaitGroup
	mu     sync.Mutex // Protects dead-letter file writes
}

// NewResilientPublisher creates a new ResilientPublisher
func NewResilientPublisher(inner Bus, config ResilientConfig) *ResilientPublisher {
	return &ResilientPublisher{
		inner:  inner,
		config: config,
	}
}

// PublishWithRetry attempts to publish an event. On failure it launches a
// background retry loop and returns immediately; the caller is never blocked
// on delivery.
func (p *ResilientPublisher) PublishWithRetry(ctx context.Context, event Event) {
	if err := p.inner.Publish(ctx, event); err == nil {
		return
	} else {
		logger.Warn("Failed to publish event, initiating async retry",
			"event_type", event.Type,
			"error", err,
			"retries", p.config.MaxRetries)
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.retryLoop(event)
	}()
}

func (p *ResilientPublisher) retryLoop(event Event) {
	// Detached context: the originating request may already be done
	ctx := context.Background()

	var lastErr error
	for i := 1; i <= p.config.MaxRetries; i++ {
		time.Sleep(p.config.RetryDelay * time.Duration(i)) // linear backoff

		lastErr = p.inner.Publish(ctx, event)
		if lastErr == nil {
			logger.Info("Successfully published event after retry",
				"event_type", event.Type,
				"attempt", i)
			return
		}

		logger.Warn("Retry failed",
			"event_type", event.Type,
			"attempt", i,
			"error", lastErr)
	}

	p.writeToDeadLetter(event, lastErr)
}

func (p *ResilientPublisher) writeToDeadLetter(event Event, lastErr error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	f, err := os.OpenFile(p.config.DeadLetterPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		logger.Error("Failed to open dead letter file", "error", err, "path", p.config.DeadLetterPath)
		return
	}
	defer f.Close()

	type deadLetterEntry struct {
		Timestamp time.Time `json:"timestamp"`
		Event     Event     `json:"event"`
		LastError string    `json:"last_error,omitempty"`
	}

	entry := deadLetterEntry{
		Timestamp: time.Now(),
		Event:     event,
	}
	if lastErr != nil {
		entry.LastError = lastErr.Error()
	}

	if err := json.NewEncoder(f).Encode(entry); err != nil {
		logger.Error("Failed to write to dead letter file", "error", err)
	} else {
		logger.Info("Event written to dead letter queue", "event_type", event.Type)
	}
}

// Subscribe delegates to the inner bus
func (p *ResilientPublisher) Subscribe(eventType Type, handler Handler) {
	p.inner.Subscribe(eventType, handler)
}

// Shutdown waits for in-flight retry loops to drain
func (p *ResilientPublisher) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
