package domain

import (
	"time"

	"github.com/google/uuid"
)

// PenaltyCategory buckets penalty quests by the kind of make-up work
type PenaltyCategory string

const (
	PenaltyPhysical PenaltyCategory = "physical"
	PenaltySocial   PenaltyCategory = "social"
	PenaltyOther    PenaltyCategory = "other"
)

// PenaltyReason distinguishes what triggered a penalty event
type PenaltyReason string

const (
	ReasonMissedQuests     PenaltyReason = "missed_quests"
	ReasonDungeonAbandoned PenaltyReason = "dungeon_abandoned"
)

// PenaltyQuest is a make-up task issued when the player takes a penalty
type PenaltyQuest struct {
	ID          uuid.UUID       `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Category    PenaltyCategory `json:"category"`
	Reason      PenaltyReason   `json:"reason"`
	Completed   bool            `json:"completed"`
	ExpiresAt   time.Time       `json:"expires_at"`
}

// Clone returns a copy of the penalty quest
func (p *PenaltyQuest) Clone() *PenaltyQuest {
	cp := *p
	return &cp
}

// DungeonSession is a timed focus session. Abandoning it before the duration
// elapses applies a fixed penalty.
type DungeonSession struct {
	ID        uuid.UUID     `json:"id"`
	Title     string        `json:"title"`
	Duration  time.Duration `json:"duration"`
	StartedAt time.Time     `json:"started_at"`
	Active    bool          `json:"active"`
}

// EndsAt returns the instant the session is allowed to complete
func (d *DungeonSession) EndsAt() time.Time {
	return d.StartedAt.Add(d.Duration)
}
