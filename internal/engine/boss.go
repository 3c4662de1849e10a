package engine

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/lifequest/engine/internal/cycle"
	"github.com/lifequest/engine/internal/domain"
	"github.com/lifequest/engine/internal/event"
	"github.com/lifequest/engine/internal/logger"
	"github.com/lifequest/engine/internal/metrics"
	"github.com/lifequest/engine/internal/reward"
)

// GoalInput configures a dynamic goal on a boss
type GoalInput struct {
	Kind        string  `validate:"required"`
	Cadence     string  `validate:"required,oneof=daily weekly monthly"`
	StartValue  float64
	TargetValue float64
	SubTarget   float64 `validate:"gt=0"`
	Unit        string  `validate:"max=30"`
}

// BossInput is the validated payload for creating a boss fight
type BossInput struct {
	Title       string     `validate:"required,max=120"`
	Description string     `validate:"max=500"`
	Difficulty  string     `validate:"required,oneof=trivial easy medium hard epic"`
	TargetStats []string   `validate:"max=3,dive,oneof=strength intellect discipline vitality charisma"`
	MaxHP       float64    `validate:"gt=0"`
	LinkedIDs   []uuid.UUID
	MicroTasks  []string   `validate:"dive,max=120"`
	Deadline    *time.Time
	Goal        *GoalInput
}

// AddBoss validates the input and adds a boss fight. A boss with a dynamic
// goal also gets an auto-generated manual mirror quest tracking the goal.
func (e *Engine) AddBoss(ctx context.Context, in BossInput) (*domain.BossFight, error) {
	if err := e.validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidConfiguration, err)
	}
	var goalKind domain.GoalKind
	if in.Goal != nil {
		kind, err := domain.ParseGoalKind(in.Goal.Kind)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidConfiguration, err)
		}
		goalKind = kind
		if in.Goal.StartValue == in.Goal.TargetValue {
			return nil, fmt.Errorf("%w: goal start and target are equal", domain.ErrInvalidConfiguration)
		}
	}

	stats := make([]domain.StatType, 0, len(in.TargetStats))
	for _, s := range in.TargetStats {
		stats = append(stats, domain.StatType(s))
	}

	e.mu.Lock()
	now := e.clock.Now()
	boss := &domain.BossFight{
		ID:          uuid.New(),
		Title:       in.Title,
		Description: in.Description,
		Difficulty:  domain.Difficulty(in.Difficulty),
		TargetStats: stats,
		MaxHP:       in.MaxHP,
		RemainingHP: in.MaxHP,
		LinkedIDs:   append([]uuid.UUID(nil), in.LinkedIDs...),
		Deadline:    in.Deadline,
		CreatedAt:   now,
	}
	for _, title := range in.MicroTasks {
		boss.MicroTasks = append(boss.MicroTasks, domain.MicroTask{
			ID:         uuid.New(),
			Title:      title,
			Difficulty: boss.Difficulty,
		})
	}

	// Record the linkage on both sides; defeat clears the quest side
	for _, q := range e.state.Quests {
		for _, linked := range boss.LinkedIDs {
			if q.ID == linked {
				q.BossID = &boss.ID
			}
		}
	}

	if in.Goal != nil {
		goal := &domain.DynamicBossGoal{
			Kind:          goalKind,
			Cadence:       domain.Cadence(in.Goal.Cadence),
			StartValue:    in.Goal.StartValue,
			TargetValue:   in.Goal.TargetValue,
			CurrentValue:  in.Goal.StartValue,
			SubTarget:     in.Goal.SubTarget,
			BaseSubTarget: in.Goal.SubTarget,
			Unit:          in.Goal.Unit,
		}

		mirror := &domain.DailyQuest{
			ID:           uuid.New(),
			Title:        fmt.Sprintf("%s progress", in.Title),
			Description:  fmt.Sprintf("Advance toward %q", in.Title),
			Difficulty:   boss.Difficulty,
			TargetStats:  stats,
			Frequency:    goal.Cadence.Frequency(),
			TrackingMode: domain.TrackingManual,
			Status:       domain.QuestAvailable,
			TargetValue:  goal.SubTarget,
			TargetUnit:   goal.Unit,
			CreatedAt:    now,
			ExpiresAt:    cycle.NextReset(goal.Cadence.Frequency(), now),
			GoalBossID:   &boss.ID,
		}
		e.state.Quests = append(e.state.Quests, mirror)
		goal.MirrorQuestID = &mirror.ID
		boss.Goal = goal
	}

	e.state.Bosses = append(e.state.Bosses, boss)
	fx := &effects{}
	e.markSave(fx)
	result := boss.Clone()
	e.mu.Unlock()

	e.applyEffects(ctx, fx)
	logger.FromContext(ctx).Info("Boss added", "boss_id", result.ID, "title", result.Title, "max_hp", result.MaxHP)
	return result, nil
}

// propagateBossDamage deals linked-quest damage to every eligible boss.
// Callers hold the lock.
func (e *Engine) propagateBossDamage(ctx context.Context, quest *domain.DailyQuest, fx *effects) {
	dmg := reward.BossDamage(quest.Difficulty, e.state.Player.Level)
	for _, boss := range e.state.Bosses {
		if boss.Defeated || !boss.LinksQuest(quest.ID) {
			continue
		}
		e.damageBoss(ctx, boss, dmg, fx)
	}
	e.removeDefeatedBosses()
}

// damageBoss subtracts damage and fires defeat handling exactly once when HP
// first reaches zero. Callers hold the lock.
func (e *Engine) damageBoss(ctx context.Context, boss *domain.BossFight, dmg float64, fx *effects) {
	boss.RemainingHP -= dmg
	if boss.RemainingHP > 0 {
		return
	}
	boss.RemainingHP = 0
	e.defeatBoss(ctx, boss, fx)
}

// defeatBoss is the idempotent defeat handler. Callers hold the lock.
func (e *Engine) defeatBoss(ctx context.Context, boss *domain.BossFight, fx *effects) {
	if boss.Defeated {
		return
	}
	boss.Defeated = true

	player := e.state.Player
	xp := int64(float64(reward.QuestXP(boss.Difficulty)) * reward.BossRewardMultiplier)
	gold := int(float64(reward.QuestGold(boss.Difficulty)) * reward.BossRewardMultiplier)
	statXP := int64(float64(reward.StatXP(boss.Difficulty)) * reward.BossRewardMultiplier)

	e.awardXP(xp, fx)
	player.Gold += gold
	for _, st := range boss.TargetStats {
		if stat, ok := player.Stats[st]; ok {
			stat.XP += statXP
		}
	}
	player.BossesDefeated++

	box := e.loot.GenerateForBoss(boss.Difficulty, e.clock.Now())
	e.state.PendingLoot = append(e.state.PendingLoot, box)
	fx.publish(event.NewLootGeneratedEvent(box.ID.String(), string(box.Rarity)))
	metrics.LootBoxesGenerated.WithLabelValues(string(box.Rarity)).Inc()
	metrics.BossesDefeated.Inc()

	// Remove the auto-generated mirror quest and clear stale quest linkage
	if boss.Goal != nil && boss.Goal.MirrorQuestID != nil {
		e.removeQuestLocked(*boss.Goal.MirrorQuestID)
	}
	for _, q := range e.state.Quests {
		if q.BossID != nil && *q.BossID == boss.ID {
			q.BossID = nil
		}
		if q.GoalBossID != nil && *q.GoalBossID == boss.ID {
			q.GoalBossID = nil
		}
	}

	e.logActivity(domain.ActivityBossDefeated, fmt.Sprintf("Defeated %q (+%d XP, +%d gold)", boss.Title, xp, gold))
	fx.publish(event.NewBossDefeatedEvent(boss.ID.String(), boss.Title, xp, gold))

	logger.FromContext(ctx).Info("Boss defeated", "boss_id", boss.ID, "title", boss.Title)
}

// removeDefeatedBosses drops defeated bosses from the active set.
// Callers hold the lock.
func (e *Engine) removeDefeatedBosses() {
	active := e.state.Bosses[:0]
	for _, b := range e.state.Bosses {
		if !b.Defeated {
			active = append(active, b)
		}
	}
	e.state.Bosses = active
}

// removeQuestLocked removes a quest by id without touching boss links.
// Callers hold the lock.
func (e *Engine) removeQuestLocked(id uuid.UUID) {
	for i, q := range e.state.Quests {
		if q.ID == id {
			e.state.Quests = append(e.state.Quests[:i], e.state.Quests[i+1:]...)
			return
		}
	}
}

// CompleteMicroTask performs a manual attack against a boss
func (e *Engine) CompleteMicroTask(ctx context.Context, bossID, taskID uuid.UUID) *DamageResult {
	e.mu.Lock()
	boss := e.findBoss(bossID)
	if boss == nil {
		e.mu.Unlock()
		return &DamageResult{Success: false, Message: domain.ErrMsgBossNotFound}
	}
	if boss.Defeated {
		e.mu.Unlock()
		return &DamageResult{Success: false, Message: domain.ErrMsgBossAlreadyDefeated}
	}

	var task *domain.MicroTask
	for i := range boss.MicroTasks {
		if boss.MicroTasks[i].ID == taskID {
			task = &boss.MicroTasks[i]
			break
		}
	}
	if task == nil {
		e.mu.Unlock()
		return &DamageResult{Success: false, Message: domain.ErrMsgTaskNotFound}
	}
	if task.Completed {
		e.mu.Unlock()
		return &DamageResult{Success: false, Message: domain.ErrMsgTaskAlreadyCompleted}
	}

	task.Completed = true
	dmg := reward.BossDamage(task.Difficulty, e.state.Player.Level)

	fx := &effects{}
	e.damageBoss(ctx, boss, dmg, fx)
	result := &DamageResult{
		Success:      true,
		Message:      fmt.Sprintf("Dealt %.0f damage to %q", dmg, boss.Title),
		Damage:       dmg,
		RemainingHP:  boss.RemainingHP,
		BossDefeated: boss.Defeated,
	}
	e.removeDefeatedBosses()
	e.markSave(fx)
	e.mu.Unlock()

	e.applyEffects(ctx, fx)
	return result
}

// UpdateDynamicGoalValue records a new measured value for a boss's dynamic
// goal. HP is derived from normalized progress, and the mirror quest (when
// manual) is synchronized to match.
func (e *Engine) UpdateDynamicGoalValue(ctx context.Context, bossID uuid.UUID, value float64) *DamageResult {
	e.mu.Lock()
	boss := e.findBoss(bossID)
	if boss == nil {
		e.mu.Unlock()
		return &DamageResult{Success: false, Message: domain.ErrMsgBossNotFound}
	}
	if boss.Defeated {
		e.mu.Unlock()
		return &DamageResult{Success: false, Message: domain.ErrMsgBossAlreadyDefeated}
	}
	if boss.Goal == nil {
		e.mu.Unlock()
		return &DamageResult{Success: false, Message: domain.ErrMsgNoDynamicGoal}
	}

	goal := boss.Goal
	goal.CurrentValue = value
	progress := goal.NormalizedProgress()

	prevHP := boss.RemainingHP
	boss.RemainingHP = (1 - progress) * boss.MaxHP

	e.syncMirrorQuest(boss)

	fx := &effects{}
	if boss.RemainingHP <= 0 {
		boss.RemainingHP = 0
		e.defeatBoss(ctx, boss, fx)
		e.removeDefeatedBosses()
	}

	result := &DamageResult{
		Success:      true,
		Message:      fmt.Sprintf("Goal updated to %.1f %s", value, goal.Unit),
		Damage:       prevHP - boss.RemainingHP,
		RemainingHP:  boss.RemainingHP,
		BossDefeated: boss.Defeated,
	}
	e.markSave(fx)
	e.mu.Unlock()

	e.applyEffects(ctx, fx)
	return result
}

// syncMirrorQuest mirrors goal progress onto the auto-generated quest when
// its tracking mode is manual. Callers hold the lock.
func (e *Engine) syncMirrorQuest(boss *domain.BossFight) {
	goal := boss.Goal
	if goal == nil || goal.MirrorQuestID == nil {
		return
	}
	mirror := e.findQuest(*goal.MirrorQuestID)
	if mirror == nil || mirror.TrackingMode != domain.TrackingManual {
		return
	}

	progress := goal.NormalizedProgress()
	mirror.Progress = progress
	switch {
	case progress >= 1:
		mirror.Status = domain.QuestCompleted
	case progress > 0:
		mirror.Status = domain.QuestInProgress
	default:
		mirror.Status = domain.QuestAvailable
	}
}

// retargetGoals recomputes each dynamic goal's per-cadence sub-target from
// the amount remaining and the periods left before its deadline, never going
// below the configured baseline, then redistributes the sub-target evenly
// across the goal's mirror quests rounded to one decimal place.
// Callers hold the lock. Returns how many goals were retargeted.
func (e *Engine) retargetGoals(now time.Time) int {
	count := 0
	for _, boss := range e.state.Bosses {
		goal := boss.Goal
		if boss.Defeated || goal == nil {
			continue
		}

		sub := goal.BaseSubTarget
		if boss.Deadline != nil {
			periods := cycle.PeriodsUntil(goal.Cadence, now, *boss.Deadline)
			needed := goal.Remaining() / float64(periods)
			if needed > sub {
				sub = needed
			}
		}
		goal.SubTarget = round1(sub)

		// Redistribute across however many quests currently mirror this goal
		var linked []*domain.DailyQuest
		for _, q := range e.state.Quests {
			if q.GoalBossID != nil && *q.GoalBossID == boss.ID {
				linked = append(linked, q)
			}
		}
		if len(linked) > 0 {
			per := round1(goal.SubTarget / float64(len(linked)))
			for _, q := range linked {
				q.TargetValue = per
			}
		}
		count++
	}
	return count
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
