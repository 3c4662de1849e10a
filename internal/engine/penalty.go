package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lifequest/engine/internal/domain"
	"github.com/lifequest/engine/internal/event"
	"github.com/lifequest/engine/internal/metrics"
	"github.com/lifequest/engine/internal/reward"
)

// applyMissedQuestPenalty applies exactly one penalty event for a rollover
// pass, scaled by the number of quests missed in that pass. Resets the streak,
// damages HP (floored at zero) and issues one make-up penalty quest.
// HP loss is a warning mechanism: bottoming out escalates to the penalty zone
// and restores HP to max. Callers hold the lock.
func (e *Engine) applyMissedQuestPenalty(missed int, now time.Time, fx *effects) {
	player := e.state.Player
	player.CurrentStreak = 0

	damage := reward.MissedQuestDamage(missed)
	e.damagePlayer(damage, now, fx)
	player.PenaltiesTaken++

	e.state.PendingPenalties = append(e.state.PendingPenalties, &domain.PenaltyQuest{
		ID:          uuid.New(),
		Title:       fmt.Sprintf("Make up for %d missed quest(s)", missed),
		Description: "Complete a make-up task to clear the penalty",
		Category:    domain.PenaltyPhysical,
		Reason:      domain.ReasonMissedQuests,
		ExpiresAt:   now.Add(48 * time.Hour),
	})

	e.logActivity(domain.ActivityPenalty, fmt.Sprintf("Missed %d quest(s), lost %d HP", missed, damage))
	metrics.PenaltiesApplied.WithLabelValues(string(domain.ReasonMissedQuests)).Inc()
	metrics.CurrentStreak.Set(0)
	fx.publish(event.NewPenaltyAppliedEvent(string(domain.ReasonMissedQuests), missed, damage))
}

// damagePlayer subtracts HP, floored at zero. Reaching exactly zero enters
// the penalty zone and restores HP to max. Callers hold the lock.
func (e *Engine) damagePlayer(damage int, now time.Time, fx *effects) {
	player := e.state.Player
	player.CurrentHP -= damage
	if player.CurrentHP > 0 {
		return
	}
	player.CurrentHP = 0

	fx.publish(event.NewPenaltyZoneEvent(now))
	player.CurrentHP = player.MaxHP
}

// CompletePenaltyQuest clears one pending penalty quest
func (e *Engine) CompletePenaltyQuest(ctx context.Context, id uuid.UUID) error {
	e.mu.Lock()
	var target *domain.PenaltyQuest
	idx := -1
	for i, p := range e.state.PendingPenalties {
		if p.ID == id {
			target = p
			idx = i
			break
		}
	}
	if target == nil {
		e.mu.Unlock()
		return domain.ErrPenaltyNotFound
	}

	target.Completed = true
	e.state.PendingPenalties = append(e.state.PendingPenalties[:idx], e.state.PendingPenalties[idx+1:]...)
	e.logActivity(domain.ActivityPenalty, fmt.Sprintf("Cleared penalty %q", target.Title))

	fx := &effects{}
	e.markSave(fx)
	e.mu.Unlock()

	e.applyEffects(ctx, fx)
	return nil
}
