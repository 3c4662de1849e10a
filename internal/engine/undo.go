package engine

import (
	"context"
	"fmt"

	"github.com/lifequest/engine/internal/domain"
	"github.com/lifequest/engine/internal/event"
	"github.com/lifequest/engine/internal/logger"
	"github.com/lifequest/engine/internal/metrics"
)

// UndoLastCompletion restores the full pre-completion state if a snapshot
// exists and its window has not elapsed. Only one undo is ever possible per
// completion; the second call in a row is a no-op reporting failure.
func (e *Engine) UndoLastCompletion(ctx context.Context) *UndoResult {
	e.mu.Lock()

	if e.undo == nil {
		e.mu.Unlock()
		return &UndoResult{Success: false, Message: domain.ErrMsgNothingToUndo}
	}
	if e.clock.Now().Sub(e.undo.CreatedAt) > e.undoWindow {
		e.undo = nil
		e.mu.Unlock()
		return &UndoResult{Success: false, Message: domain.ErrMsgUndoExpired}
	}

	title := e.undo.QuestTitle
	e.state = e.undo.State
	e.undo = nil
	e.logActivity(domain.ActivityUndo, fmt.Sprintf("Undid completion of %q", title))

	fx := &effects{}
	e.markSave(fx)
	fx.publish(event.Event{
		Version: event.EventSchemaVersion,
		Type:    event.QuestUndone,
		Payload: map[string]interface{}{"quest_title": title},
	})
	e.mu.Unlock()

	e.undoWorker.Cancel(e.undoTimerID)
	e.applyEffects(ctx, fx)
	metrics.UndosPerformed.Inc()

	logger.FromContext(ctx).Info("Quest completion undone", "title", title)
	return &UndoResult{Success: true, Message: "completion undone", QuestTitle: title}
}

// PendingUndo reports the currently open undo window, if any
func (e *Engine) PendingUndo() (*UndoInfo, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.undo == nil {
		return nil, false
	}
	return &UndoInfo{
		QuestTitle: e.undo.QuestTitle,
		CreatedAt:  e.undo.CreatedAt,
		ExpiresAt:  e.undo.CreatedAt.Add(e.undoWindow),
	}, true
}
