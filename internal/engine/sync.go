package engine

import (
	"context"

	"github.com/lifequest/engine/internal/domain"
	"github.com/lifequest/engine/internal/event"
	"github.com/lifequest/engine/internal/logger"
)

// ExportSnapshot returns the full state tagged for the cloud sync layer
func (e *Engine) ExportSnapshot(deviceID string) *domain.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return &domain.Snapshot{
		State:     e.state.Clone(),
		DeviceID:  deviceID,
		Timestamp: e.clock.Now(),
	}
}

// ApplySnapshot atomically replaces all owned collections with an externally
// synced state, drops any pending undo, and runs the mandatory reconciliation
// pass so stale cycle windows settle immediately.
func (e *Engine) ApplySnapshot(ctx context.Context, snap *domain.Snapshot) error {
	if snap == nil || snap.State == nil || snap.State.Player == nil {
		return domain.ErrInvalidConfiguration
	}

	e.mu.Lock()
	e.state = snap.State.Clone()
	e.undo = nil
	e.mu.Unlock()

	e.undoWorker.Cancel(e.undoTimerID)

	if e.publisher != nil {
		e.publisher.PublishWithRetry(ctx, event.Event{
			Version: event.EventSchemaVersion,
			Type:    event.SnapshotApplied,
			Payload: map[string]interface{}{
				"device_id": snap.DeviceID,
				"timestamp": snap.Timestamp,
			},
		})
	}

	logger.FromContext(ctx).Info("Applied synced snapshot", "device_id", snap.DeviceID, "taken_at", snap.Timestamp)
	e.Reconcile(ctx)
	return nil
}
