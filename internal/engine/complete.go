package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lifequest/engine/internal/cycle"
	"github.com/lifequest/engine/internal/domain"
	"github.com/lifequest/engine/internal/event"
	"github.com/lifequest/engine/internal/logger"
	"github.com/lifequest/engine/internal/metrics"
	"github.com/lifequest/engine/internal/reward"
)

// CompleteQuest runs the full reward pipeline for a quest. The second call
// for the same quest id in a cycle fails without mutating anything.
func (e *Engine) CompleteQuest(ctx context.Context, id uuid.UUID) *CompletionResult {
	e.mu.Lock()
	fx := &effects{}
	result := e.completeLocked(ctx, id, fx)
	e.mu.Unlock()

	e.applyEffects(ctx, fx)
	if result.Success {
		e.armUndoTimer()
	}
	return result
}

// completeLocked runs the quest completion pipeline. Callers hold the lock.
func (e *Engine) completeLocked(ctx context.Context, id uuid.UUID, fx *effects) *CompletionResult {
	log := logger.FromContext(ctx)

	quest := e.findQuest(id)
	if quest == nil {
		return failedCompletion(domain.ErrMsgQuestNotFound)
	}

	now := e.clock.Now()

	// A completion never settles against an expired window. If the quest's
	// cycle lapsed since the last pass (app was closed, scheduler not yet
	// fired), reconcile first: the miss penalty lands and the completion
	// counts toward the fresh cycle.
	if !quest.ExpiresAt.After(now) {
		e.reconcileLocked(now, fx)
	}
	if quest.Status == domain.QuestCompleted {
		return failedCompletion(domain.ErrMsgQuestAlreadyCompleted)
	}

	player := e.state.Player

	// Snapshot first: the whole pre-completion state backs the undo window.
	// A new snapshot supersedes any prior one.
	e.undo = &domain.UndoSnapshot{
		State:      e.state.Clone(),
		QuestTitle: quest.Title,
		CreatedAt:  now,
	}

	quest.Status = domain.QuestCompleted
	quest.Progress = 1.0

	finalXP := int64(float64(reward.QuestXP(quest.Difficulty)) * reward.StreakMultiplier(player.CurrentStreak))
	gold := reward.QuestGold(quest.Difficulty)
	if quest.Optional {
		gold = 0
	}

	result := &CompletionResult{
		Success:     true,
		QuestTitle:  quest.Title,
		XPAwarded:   finalXP,
		GoldAwarded: gold,
		StatGains:   make(map[domain.StatType]int64, len(quest.TargetStats)),
	}

	if e.rnd() < reward.CritChance {
		result.IsCritical = true
		box := e.loot.Generate(quest.Difficulty, now)
		e.state.PendingLoot = append(e.state.PendingLoot, box)
		result.LootBox = box.Clone()
		fx.publish(event.NewLootGeneratedEvent(box.ID.String(), string(box.Rarity)))
		metrics.CriticalSuccesses.Inc()
		metrics.LootBoxesGenerated.WithLabelValues(string(box.Rarity)).Inc()
	}

	levelUp := e.awardXP(finalXP, fx)
	result.LeveledUp = levelUp != nil
	result.LevelUp = levelUp
	player.Gold += gold

	statXP := reward.StatXP(quest.Difficulty)
	for _, st := range quest.TargetStats {
		if stat, ok := player.Stats[st]; ok {
			stat.XP += statXP
			result.StatGains[st] = statXP
		}
	}

	player.QuestsCompleted++
	e.logActivity(domain.ActivityQuestCompleted, fmt.Sprintf("Completed %q (+%d XP, +%d gold)", quest.Title, finalXP, gold))

	e.propagateBossDamage(ctx, quest, fx)
	e.updateStreak(now)

	result.Message = fmt.Sprintf("Quest %q completed", quest.Title)

	metrics.QuestsCompleted.Inc()
	metrics.CurrentStreak.Set(float64(player.CurrentStreak))

	fx.publish(event.NewQuestCompletedEvent(quest.ID.String(), quest.Title, finalXP, gold, result.IsCritical))
	e.markSave(fx)

	log.Info("Quest completed",
		"quest_id", quest.ID,
		"title", quest.Title,
		"xp", finalXP,
		"gold", gold,
		"critical", result.IsCritical)
	return result
}

// armUndoTimer arms (or re-arms) the undo expiry. Scheduling under the same
// timer id cancels the stale timer, so only the latest completion is undoable.
func (e *Engine) armUndoTimer() {
	e.mu.Lock()
	if e.undo == nil {
		e.mu.Unlock()
		return
	}
	createdAt := e.undo.CreatedAt
	e.mu.Unlock()

	e.undoWorker.ScheduleAfter(e.undoTimerID, e.undoWindow, func(timerCtx context.Context) {
		e.mu.Lock()
		// Guard: discard only the snapshot this timer was armed for
		if e.undo != nil && e.undo.CreatedAt.Equal(createdAt) {
			logger.FromContext(timerCtx).Debug("Undo window expired", "quest", e.undo.QuestTitle)
			e.undo = nil
		}
		e.mu.Unlock()
	})
}

// updateStreak re-evaluates the daily streak. It only finalizes once every
// daily-cadence quest is completed for the cycle. Callers hold the lock.
func (e *Engine) updateStreak(now time.Time) {
	for _, q := range e.state.Quests {
		if q.Frequency == domain.FrequencyDaily && q.Status != domain.QuestCompleted {
			return
		}
	}

	player := e.state.Player
	switch {
	case player.LastActiveDate.IsZero():
		player.CurrentStreak = 1
	case cycle.SameCalendarDay(player.LastActiveDate, now):
		// already counted today
	case cycle.DaysBetween(player.LastActiveDate, now) == 1:
		player.CurrentStreak++
	default:
		player.CurrentStreak = 1
	}
	player.LastActiveDate = now

	if player.CurrentStreak > player.LongestStreak {
		player.LongestStreak = player.CurrentStreak
	}
}
