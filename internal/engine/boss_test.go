package engine

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifequest/engine/internal/domain"
)

func addBoss(t *testing.T, eng *Engine, in BossInput) *domain.BossFight {
	t.Helper()
	boss, err := eng.AddBoss(context.Background(), in)
	require.NoError(t, err)
	return boss
}

func TestAddBoss_RejectsInvalidInput(t *testing.T) {
	eng, _ := newTestEngine(t, nil)
	ctx := context.Background()

	_, err := eng.AddBoss(ctx, BossInput{Title: "", Difficulty: "hard", MaxHP: 100})
	assert.ErrorIs(t, err, domain.ErrInvalidConfiguration)

	_, err = eng.AddBoss(ctx, BossInput{Title: "No HP", Difficulty: "hard", MaxHP: 0})
	assert.ErrorIs(t, err, domain.ErrInvalidConfiguration)

	_, err = eng.AddBoss(ctx, BossInput{
		Title:      "Mystery Goal",
		Difficulty: "hard",
		MaxHP:      100,
		Goal:       &GoalInput{Kind: "vibes", Cadence: "weekly", StartValue: 0, TargetValue: 10, SubTarget: 1},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidConfiguration)
}

func TestAddBoss_RejectsGoalWithEqualStartAndTarget(t *testing.T) {
	eng, _ := newTestEngine(t, nil)

	_, err := eng.AddBoss(context.Background(), BossInput{
		Title:      "Plateau",
		Difficulty: "hard",
		MaxHP:      100,
		Goal: &GoalInput{
			Kind:        "weight",
			Cadence:     "weekly",
			StartValue:  80,
			TargetValue: 80,
			SubTarget:   0.5,
			Unit:        "kg",
		},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidConfiguration)
}

func TestLinkedQuestCompletion_DamagesBoss(t *testing.T) {
	eng, _ := newTestEngine(t, nil)
	quest := addQuest(t, eng, dailyQuest("Morning workout", "medium"))
	boss := addBoss(t, eng, BossInput{
		Title:      "The Couch",
		Difficulty: "hard",
		MaxHP:      100,
		LinkedIDs:  []uuid.UUID{quest.ID},
	})

	// The linkage is recorded on the quest side too
	quests := eng.Quests()
	require.Len(t, quests, 1)
	require.NotNil(t, quests[0].BossID)
	assert.Equal(t, boss.ID, *quests[0].BossID)

	require.True(t, eng.CompleteQuest(context.Background(), quest.ID).Success)

	bosses := eng.Bosses()
	require.Len(t, bosses, 1)
	// Medium quest at level 1 deals 25
	assert.InDelta(t, 75, bosses[0].RemainingHP, 1e-9)
	assert.Equal(t, boss.ID, bosses[0].ID)
}

func TestBossDefeat_AwardsElevatedRewardsOnce(t *testing.T) {
	eng, _ := newTestEngine(t, nil)
	quest := addQuest(t, eng, dailyQuest("Morning workout", "medium"))
	addBoss(t, eng, BossInput{
		Title:      "The Couch",
		Difficulty: "easy",
		MaxHP:      20, // one medium hit (25) finishes it
		LinkedIDs:  []uuid.UUID{quest.ID},
	})

	result := eng.CompleteQuest(context.Background(), quest.ID)
	require.True(t, result.Success)

	player := eng.Player()
	// Quest rewards plus tripled boss rewards: 250 + 3*100 XP, 50 + 3*20 gold
	assert.Equal(t, int64(550), player.TotalXP)
	assert.Equal(t, 110, player.Gold)
	assert.Equal(t, int64(1), player.BossesDefeated)

	// Defeated bosses leave the active set, and boss loot is pending
	assert.Empty(t, eng.Bosses())
	assert.Len(t, eng.PendingLoot(), 1)

	// Defeat severs the stale link on the quest
	quests := eng.Quests()
	require.Len(t, quests, 1)
	assert.Nil(t, quests[0].BossID)
}

func TestCompleteMicroTask_DealsDamage(t *testing.T) {
	eng, _ := newTestEngine(t, nil)
	boss := addBoss(t, eng, BossInput{
		Title:      "Thesis Dragon",
		Difficulty: "medium",
		MaxHP:      100,
		MicroTasks: []string{"Write outline", "Draft chapter 1"},
	})
	ctx := context.Background()

	result := eng.CompleteMicroTask(ctx, boss.ID, boss.MicroTasks[0].ID)
	require.True(t, result.Success)
	assert.InDelta(t, 25, result.Damage, 1e-9)
	assert.InDelta(t, 75, result.RemainingHP, 1e-9)
	assert.False(t, result.BossDefeated)

	// Same task cannot be completed twice
	again := eng.CompleteMicroTask(ctx, boss.ID, boss.MicroTasks[0].ID)
	assert.False(t, again.Success)
	assert.Equal(t, domain.ErrMsgTaskAlreadyCompleted, again.Message)

	// The other task still works
	other := eng.CompleteMicroTask(ctx, boss.ID, boss.MicroTasks[1].ID)
	assert.True(t, other.Success)
	assert.InDelta(t, 50, other.RemainingHP, 1e-9)
}

func TestCompleteMicroTask_UnknownBossAndTask(t *testing.T) {
	eng, _ := newTestEngine(t, nil)
	boss := addBoss(t, eng, BossInput{
		Title:      "Thesis Dragon",
		Difficulty: "medium",
		MaxHP:      100,
		MicroTasks: []string{"Write outline"},
	})
	ctx := context.Background()

	res := eng.CompleteMicroTask(ctx, uuid.New(), boss.MicroTasks[0].ID)
	assert.Equal(t, domain.ErrMsgBossNotFound, res.Message)

	res = eng.CompleteMicroTask(ctx, boss.ID, uuid.New())
	assert.Equal(t, domain.ErrMsgTaskNotFound, res.Message)
}

func TestAddBoss_DynamicGoalCreatesMirrorQuest(t *testing.T) {
	eng, _ := newTestEngine(t, nil)
	boss := addBoss(t, eng, BossInput{
		Title:      "Weight Titan",
		Difficulty: "hard",
		MaxHP:      100,
		Goal: &GoalInput{
			Kind:        "weight",
			Cadence:     "weekly",
			StartValue:  90,
			TargetValue: 80,
			SubTarget:   0.5,
			Unit:        "kg",
		},
	})

	require.NotNil(t, boss.Goal)
	require.NotNil(t, boss.Goal.MirrorQuestID)

	quests := eng.Quests()
	require.Len(t, quests, 1)
	mirror := quests[0]
	assert.Equal(t, *boss.Goal.MirrorQuestID, mirror.ID)
	assert.Equal(t, "Weight Titan progress", mirror.Title)
	assert.Equal(t, domain.FrequencyWeekly, mirror.Frequency)
	assert.Equal(t, domain.TrackingManual, mirror.TrackingMode)
	require.NotNil(t, mirror.GoalBossID)
	assert.Equal(t, boss.ID, *mirror.GoalBossID)
}

func TestUpdateDynamicGoalValue_DerivesHPFromProgress(t *testing.T) {
	eng, _ := newTestEngine(t, nil)
	boss := addBoss(t, eng, BossInput{
		Title:      "Weight Titan",
		Difficulty: "hard",
		MaxHP:      100,
		Goal: &GoalInput{
			Kind:        "weight",
			Cadence:     "weekly",
			StartValue:  90,
			TargetValue: 80,
			SubTarget:   0.5,
			Unit:        "kg",
		},
	})
	ctx := context.Background()

	// Halfway to the target halves remaining HP
	result := eng.UpdateDynamicGoalValue(ctx, boss.ID, 85)
	require.True(t, result.Success)
	assert.InDelta(t, 50, result.RemainingHP, 1e-9)
	assert.False(t, result.BossDefeated)

	// Mirror quest reflects the same progress
	mirror := eng.Quests()[0]
	assert.InDelta(t, 0.5, mirror.Progress, 1e-9)
	assert.Equal(t, domain.QuestInProgress, mirror.Status)

	// Regression pushes HP back up
	result = eng.UpdateDynamicGoalValue(ctx, boss.ID, 88)
	require.True(t, result.Success)
	assert.InDelta(t, 80, result.RemainingHP, 1e-9)
}

func TestUpdateDynamicGoalValue_ReachingTargetDefeatsBoss(t *testing.T) {
	eng, _ := newTestEngine(t, nil)
	boss := addBoss(t, eng, BossInput{
		Title:      "Weight Titan",
		Difficulty: "hard",
		MaxHP:      100,
		Goal: &GoalInput{
			Kind:        "weight",
			Cadence:     "weekly",
			StartValue:  90,
			TargetValue: 80,
			SubTarget:   0.5,
			Unit:        "kg",
		},
	})
	ctx := context.Background()

	result := eng.UpdateDynamicGoalValue(ctx, boss.ID, 80)
	require.True(t, result.Success)
	assert.True(t, result.BossDefeated)
	assert.Zero(t, result.RemainingHP)

	// Defeat removes the boss and its auto-generated mirror quest
	assert.Empty(t, eng.Bosses())
	assert.Empty(t, eng.Quests())
	assert.Equal(t, int64(1), eng.Player().BossesDefeated)
}

func TestUpdateDynamicGoalValue_RequiresGoal(t *testing.T) {
	eng, _ := newTestEngine(t, nil)
	boss := addBoss(t, eng, BossInput{
		Title:      "Plain Boss",
		Difficulty: "medium",
		MaxHP:      100,
	})

	result := eng.UpdateDynamicGoalValue(context.Background(), boss.ID, 5)
	assert.False(t, result.Success)
	assert.Equal(t, domain.ErrMsgNoDynamicGoal, result.Message)
}

func TestRetargetGoals_RescalesTowardDeadline(t *testing.T) {
	eng, clock := newTestEngine(t, nil)
	deadline := testStart.Add(14 * 24 * time.Hour) // two weekly periods out
	boss := addBoss(t, eng, BossInput{
		Title:      "Weight Titan",
		Difficulty: "hard",
		MaxHP:      100,
		Deadline:   &deadline,
		Goal: &GoalInput{
			Kind:        "weight",
			Cadence:     "weekly",
			StartValue:  90,
			TargetValue: 80,
			SubTarget:   0.5,
			Unit:        "kg",
		},
	})
	ctx := context.Background()

	// 10 kg remaining over 2 periods needs 5.0 per week, above the 0.5 baseline
	eng.Reconcile(ctx)
	got := eng.Bosses()[0]
	assert.InDelta(t, 5.0, got.Goal.SubTarget, 1e-9)
	assert.InDelta(t, 5.0, eng.Quests()[0].TargetValue, 1e-9)

	// Progress shrinks the required pace but never below the baseline
	require.True(t, eng.UpdateDynamicGoalValue(ctx, boss.ID, 80.5).Success)
	clock.Advance(13 * 24 * time.Hour) // one weekly period left
	eng.Reconcile(ctx)
	got = eng.Bosses()[0]
	assert.InDelta(t, 0.5, got.Goal.SubTarget, 1e-9)
}
