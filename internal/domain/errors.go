package domain

import "errors"

// Error message string constants - single source of truth for error messages
// Use these in assert.Contains() checks when testing error messages
const (
	ErrMsgQuestNotFound         = "quest not found"
	ErrMsgQuestAlreadyCompleted = "quest already completed"
	ErrMsgBossNotFound          = "boss not found"
	ErrMsgBossAlreadyDefeated   = "boss already defeated"
	ErrMsgTaskNotFound          = "micro task not found"
	ErrMsgTaskAlreadyCompleted  = "micro task already completed"
	ErrMsgLootNotFound          = "loot box not found"
	ErrMsgLootAlreadyOpened     = "loot box already opened"
	ErrMsgPenaltyNotFound       = "penalty quest not found"
	ErrMsgNoDynamicGoal         = "boss has no dynamic goal"
	ErrMsgNoActiveDungeon       = "no active dungeon session"
	ErrMsgDungeonActive         = "a dungeon session is already active"
	ErrMsgDungeonNotElapsed     = "dungeon duration has not elapsed"
	ErrMsgNothingToUndo         = "nothing to undo"
	ErrMsgUndoExpired           = "undo window expired"
	ErrMsgInvalidInput          = "invalid input"
	ErrMsgInvalidConfiguration  = "invalid configuration"
	ErrMsgTrackerUnavailable    = "tracker unavailable"
)

// Common domain errors.
// Wrap these with fmt.Errorf("%w: %s", domain.ErrXxx, details) for context.
var (
	ErrQuestNotFound         = errors.New(ErrMsgQuestNotFound)
	ErrQuestAlreadyCompleted = errors.New(ErrMsgQuestAlreadyCompleted)
	ErrBossNotFound          = errors.New(ErrMsgBossNotFound)
	ErrBossAlreadyDefeated   = errors.New(ErrMsgBossAlreadyDefeated)
	ErrTaskNotFound          = errors.New(ErrMsgTaskNotFound)
	ErrTaskAlreadyCompleted  = errors.New(ErrMsgTaskAlreadyCompleted)
	ErrLootNotFound          = errors.New(ErrMsgLootNotFound)
	ErrLootAlreadyOpened     = errors.New(ErrMsgLootAlreadyOpened)
	ErrPenaltyNotFound       = errors.New(ErrMsgPenaltyNotFound)
	ErrNoDynamicGoal         = errors.New(ErrMsgNoDynamicGoal)
	ErrNoActiveDungeon       = errors.New(ErrMsgNoActiveDungeon)
	ErrDungeonActive         = errors.New(ErrMsgDungeonActive)
	ErrDungeonNotElapsed     = errors.New(ErrMsgDungeonNotElapsed)
	ErrNothingToUndo         = errors.New(ErrMsgNothingToUndo)
	ErrUndoExpired           = errors.New(ErrMsgUndoExpired)
	ErrInvalidInput          = errors.New(ErrMsgInvalidInput)
	ErrInvalidConfiguration  = errors.New(ErrMsgInvalidConfiguration)
	ErrTrackerUnavailable    = errors.New(ErrMsgTrackerUnavailable)
)
