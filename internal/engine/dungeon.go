package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lifequest/engine/internal/domain"
	"github.com/lifequest/engine/internal/event"
	"github.com/lifequest/engine/internal/logger"
	"github.com/lifequest/engine/internal/metrics"
	"github.com/lifequest/engine/internal/reward"
)

// StartDungeon begins a timed focus session. Only one can be active.
func (e *Engine) StartDungeon(ctx context.Context, title string, duration time.Duration) (*domain.DungeonSession, error) {
	if title == "" || duration <= 0 {
		return nil, fmt.Errorf("%w: dungeon needs a title and positive duration", domain.ErrInvalidConfiguration)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.dungeon != nil && e.dungeon.Active {
		return nil, domain.ErrDungeonActive
	}

	e.dungeon = &domain.DungeonSession{
		ID:        uuid.New(),
		Title:     title,
		Duration:  duration,
		StartedAt: e.clock.Now(),
		Active:    true,
	}
	session := *e.dungeon

	logger.FromContext(ctx).Info("Dungeon session started", "title", title, "duration", duration)
	return &session, nil
}

// CompleteDungeon finishes the active session once its duration has elapsed,
// awarding session rewards.
func (e *Engine) CompleteDungeon(ctx context.Context) (*CompletionResult, error) {
	e.mu.Lock()
	if e.dungeon == nil || !e.dungeon.Active {
		e.mu.Unlock()
		return nil, domain.ErrNoActiveDungeon
	}
	now := e.clock.Now()
	if now.Before(e.dungeon.EndsAt()) {
		e.mu.Unlock()
		return nil, domain.ErrDungeonNotElapsed
	}

	title := e.dungeon.Title
	e.dungeon = nil

	fx := &effects{}
	xp := reward.QuestXP(domain.DifficultyMedium)
	gold := reward.QuestGold(domain.DifficultyMedium)
	levelUp := e.awardXP(xp, fx)
	e.state.Player.Gold += gold
	e.state.Player.SessionsCleared++
	e.logActivity(domain.ActivityDungeonCleared, fmt.Sprintf("Cleared focus session %q", title))
	fx.publish(event.NewDungeonClearedEvent(title, xp, gold))
	e.markSave(fx)

	result := &CompletionResult{
		Success:     true,
		Message:     fmt.Sprintf("Session %q cleared", title),
		QuestTitle:  title,
		XPAwarded:   xp,
		GoldAwarded: gold,
		LeveledUp:   levelUp != nil,
		LevelUp:     levelUp,
	}
	e.mu.Unlock()

	e.applyEffects(ctx, fx)
	return result, nil
}

// AbandonDungeon cancels the active session before its duration elapsed and
// applies a fixed penalty with its own reason, distinct from missed quests.
func (e *Engine) AbandonDungeon(ctx context.Context) error {
	e.mu.Lock()
	if e.dungeon == nil || !e.dungeon.Active {
		e.mu.Unlock()
		return domain.ErrNoActiveDungeon
	}

	title := e.dungeon.Title
	e.dungeon = nil
	now := e.clock.Now()

	fx := &effects{}
	e.damagePlayer(reward.DungeonPenaltyDamage, now, fx)
	e.state.Player.PenaltiesTaken++
	e.logActivity(domain.ActivityPenalty, fmt.Sprintf("Abandoned focus session %q", title))
	metrics.PenaltiesApplied.WithLabelValues(string(domain.ReasonDungeonAbandoned)).Inc()
	fx.publish(event.NewPenaltyAppliedEvent(string(domain.ReasonDungeonAbandoned), 0, reward.DungeonPenaltyDamage))
	e.markSave(fx)
	e.mu.Unlock()

	e.applyEffects(ctx, fx)
	return nil
}

// ActiveDungeon returns a copy of the active session, if any
func (e *Engine) ActiveDungeon() (*domain.DungeonSession, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.dungeon == nil || !e.dungeon.Active {
		return nil, false
	}
	session := *e.dungeon
	return &session, true
}
