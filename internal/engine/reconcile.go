package engine

import (
	"context"
	"time"

	"github.com/lifequest/engine/internal/cycle"
	"github.com/lifequest/engine/internal/domain"
	"github.com/lifequest/engine/internal/logger"
)

// Reconcile is the explicit catch-up entry point, run on launch, on a timer
// and after applying a synced snapshot. Order matters: rollover (with its
// batched penalty) settles every cycle window before goal retargeting and
// tracker sampling, so nothing completes against an expired cycle.
func (e *Engine) Reconcile(ctx context.Context) *ReconcileResult {
	return e.ReconcileAt(ctx, e.clock.Now())
}

// ReconcileAt runs a reconciliation pass against an explicit reference time
func (e *Engine) ReconcileAt(ctx context.Context, now time.Time) *ReconcileResult {
	log := logger.FromContext(ctx)
	result := &ReconcileResult{}

	e.mu.Lock()
	fx := &effects{}

	result.RolledOver, result.MissedQuests, result.GoalsRetargeted = e.reconcileLocked(now, fx)
	result.PenaltyApplied = result.MissedQuests > 0

	// Snapshot the automatically tracked quests so provider I/O happens
	// outside the mutation path: fetch first, then apply.
	var autoQuests []*domain.DailyQuest
	for _, q := range e.state.Quests {
		if q.TrackingMode.IsAutomatic() && q.Status != domain.QuestCompleted {
			autoQuests = append(autoQuests, q.Clone())
		}
	}

	e.markSave(fx)
	e.mu.Unlock()
	e.applyEffects(ctx, fx)

	if e.trackers != nil {
		for _, q := range autoQuests {
			progress, ok := e.trackers.Sample(ctx, q, now)
			if !ok {
				continue
			}
			res := e.SetQuestProgress(ctx, q.ID, progress)
			if res.Success && progress >= 1 {
				result.AutoCompleted++
			}
		}
	}

	log.Info("Reconciliation pass complete",
		"rolled_over", result.RolledOver,
		"missed", result.MissedQuests,
		"goals_retargeted", result.GoalsRetargeted,
		"auto_completed", result.AutoCompleted)
	return result
}

// reconcileLocked settles every lapsed cycle window: rollover with its
// batched penalty, then goal retargeting and penalty-quest expiry. The manual
// completion path also runs this when it finds a stale window, so rewards
// never land in an expired cycle. Callers hold the lock.
func (e *Engine) reconcileLocked(now time.Time, fx *effects) (rolledOver, missed, retargeted int) {
	rolledOver, missed = e.rolloverQuests(now)
	if missed > 0 {
		e.applyMissedQuestPenalty(missed, now, fx)
	}
	retargeted = e.retargetGoals(now)
	e.expirePenaltyQuests(now)
	return rolledOver, missed, retargeted
}

// rolloverQuests advances every quest past its expired cycle windows.
// A quest missing any number of cycles in one pass still counts as a single
// miss; the returned missed count is quests, not cycles. Callers hold the lock.
func (e *Engine) rolloverQuests(now time.Time) (rolledOver, missed int) {
	for _, q := range e.state.Quests {
		missedThis := false
		rolled := false
		for !q.ExpiresAt.After(now) {
			if q.Status != domain.QuestCompleted {
				missedThis = true
			}
			q.Status = domain.QuestAvailable
			q.Progress = 0
			q.ExpiresAt = cycle.NextReset(q.Frequency, q.ExpiresAt)
			rolled = true
		}
		if rolled {
			rolledOver++
		}
		if missedThis {
			missed++
		}
	}
	return rolledOver, missed
}

// expirePenaltyQuests drops penalty quests whose window has lapsed.
// Callers hold the lock.
func (e *Engine) expirePenaltyQuests(now time.Time) {
	open := e.state.PendingPenalties[:0]
	for _, p := range e.state.PendingPenalties {
		if !p.Completed && p.ExpiresAt.After(now) {
			open = append(open, p)
		}
	}
	e.state.PendingPenalties = open
}
