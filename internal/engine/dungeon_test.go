package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifequest/engine/internal/domain"
	"github.com/lifequest/engine/internal/event"
)

func TestStartDungeon_ValidatesInput(t *testing.T) {
	eng, _ := newTestEngine(t, nil)
	ctx := context.Background()

	_, err := eng.StartDungeon(ctx, "", 25*time.Minute)
	assert.ErrorIs(t, err, domain.ErrInvalidConfiguration)

	_, err = eng.StartDungeon(ctx, "Deep work", 0)
	assert.ErrorIs(t, err, domain.ErrInvalidConfiguration)
}

func TestStartDungeon_OnlyOneActiveSession(t *testing.T) {
	eng, _ := newTestEngine(t, nil)
	ctx := context.Background()

	session, err := eng.StartDungeon(ctx, "Deep work", 25*time.Minute)
	require.NoError(t, err)
	assert.True(t, session.Active)
	assert.Equal(t, "Deep work", session.Title)

	_, err = eng.StartDungeon(ctx, "Another", 10*time.Minute)
	assert.ErrorIs(t, err, domain.ErrDungeonActive)

	active, ok := eng.ActiveDungeon()
	require.True(t, ok)
	assert.Equal(t, session.ID, active.ID)
}

func TestCompleteDungeon_BeforeElapsedIsRejected(t *testing.T) {
	eng, clock := newTestEngine(t, nil)
	ctx := context.Background()

	_, err := eng.StartDungeon(ctx, "Deep work", 25*time.Minute)
	require.NoError(t, err)

	clock.Advance(10 * time.Minute)
	_, err = eng.CompleteDungeon(ctx)
	assert.ErrorIs(t, err, domain.ErrDungeonNotElapsed)

	// The session survives a premature completion attempt
	_, ok := eng.ActiveDungeon()
	assert.True(t, ok)
}

func TestCompleteDungeon_AwardsSessionRewards(t *testing.T) {
	eng, clock := newTestEngine(t, nil)
	ctx := context.Background()

	_, err := eng.StartDungeon(ctx, "Deep work", 25*time.Minute)
	require.NoError(t, err)

	clock.Advance(25 * time.Minute)
	result, err := eng.CompleteDungeon(ctx)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "Deep work", result.QuestTitle)
	assert.Equal(t, int64(250), result.XPAwarded)
	assert.Equal(t, 50, result.GoldAwarded)

	player := eng.Player()
	assert.Equal(t, int64(250), player.TotalXP)
	assert.Equal(t, 50, player.Gold)
	assert.Equal(t, int64(1), player.SessionsCleared)

	_, ok := eng.ActiveDungeon()
	assert.False(t, ok)

	_, err = eng.CompleteDungeon(ctx)
	assert.ErrorIs(t, err, domain.ErrNoActiveDungeon)
}

func TestCompleteDungeon_PublishesClearedEvent(t *testing.T) {
	eng, clock, events := newBusEngine(t, []event.Type{event.DungeonCleared})
	ctx := context.Background()

	_, err := eng.StartDungeon(ctx, "Deep work", 25*time.Minute)
	require.NoError(t, err)

	clock.Advance(25 * time.Minute)
	result, err := eng.CompleteDungeon(ctx)
	require.NoError(t, err)

	got := events()
	require.Len(t, got, 1)
	payload, ok := got[0].Payload.(event.DungeonClearedPayloadV1)
	require.True(t, ok)
	assert.Equal(t, "Deep work", payload.Title)
	assert.Equal(t, result.XPAwarded, payload.XPAwarded)
	assert.Equal(t, result.GoldAwarded, payload.Gold)
}

func TestAbandonDungeon_AppliesFixedPenalty(t *testing.T) {
	eng, clock := newTestEngine(t, nil)
	quest := addQuest(t, eng, dailyQuest("Morning workout", "medium"))
	ctx := context.Background()

	// Build a streak first to show abandonment leaves it alone
	require.True(t, eng.CompleteQuest(ctx, quest.ID).Success)

	_, err := eng.StartDungeon(ctx, "Deep work", 25*time.Minute)
	require.NoError(t, err)

	clock.Advance(5 * time.Minute)
	require.NoError(t, eng.AbandonDungeon(ctx))

	player := eng.Player()
	assert.Equal(t, player.MaxHP-15, player.CurrentHP)
	assert.Equal(t, 1, player.CurrentStreak)
	assert.Equal(t, int64(1), player.PenaltiesTaken)
	assert.Zero(t, player.SessionsCleared)

	_, ok := eng.ActiveDungeon()
	assert.False(t, ok)

	assert.ErrorIs(t, eng.AbandonDungeon(ctx), domain.ErrNoActiveDungeon)
}
