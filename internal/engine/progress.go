package engine

import (
	"context"

	"github.com/google/uuid"

	"github.com/lifequest/engine/internal/domain"
)

// SetQuestProgress folds an externally reported progress value into a quest.
// Values are clamped to [0,1]; reaching 1.0 runs the full completion pipeline.
// A quest already completed this cycle is left untouched (idempotent guard).
func (e *Engine) SetQuestProgress(ctx context.Context, id uuid.UUID, progress float64) *CompletionResult {
	if progress < 0 {
		progress = 0
	}
	if progress > 1 {
		progress = 1
	}

	e.mu.Lock()
	quest := e.findQuest(id)
	if quest == nil {
		e.mu.Unlock()
		return failedCompletion(domain.ErrMsgQuestNotFound)
	}
	if quest.Status == domain.QuestCompleted {
		e.mu.Unlock()
		return failedCompletion(domain.ErrMsgQuestAlreadyCompleted)
	}

	if progress < 1 {
		quest.Progress = progress
		if progress > 0 {
			quest.Status = domain.QuestInProgress
		} else {
			quest.Status = domain.QuestAvailable
		}
		fx := &effects{}
		e.markSave(fx)
		e.mu.Unlock()
		e.applyEffects(ctx, fx)
		return &CompletionResult{Success: true, Message: "progress updated", QuestTitle: quest.Title}
	}

	// Progress hit the target: complete with full rewards
	fx := &effects{}
	result := e.completeLocked(ctx, id, fx)
	e.mu.Unlock()

	e.applyEffects(ctx, fx)
	if result.Success {
		e.armUndoTimer()
	}
	return result
}
