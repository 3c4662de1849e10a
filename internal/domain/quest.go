package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Difficulty tiers a quest or boss can be created at
type Difficulty string

const (
	DifficultyTrivial Difficulty = "trivial"
	DifficultyEasy    Difficulty = "easy"
	DifficultyMedium  Difficulty = "medium"
	DifficultyHard    Difficulty = "hard"
	DifficultyEpic    Difficulty = "epic"
)

func (d Difficulty) IsValid() bool {
	switch d {
	case DifficultyTrivial, DifficultyEasy, DifficultyMedium, DifficultyHard, DifficultyEpic:
		return true
	default:
		return false
	}
}

// ParseDifficulty parses user input into a Difficulty
func ParseDifficulty(input string) (Difficulty, error) {
	d := Difficulty(strings.TrimSpace(strings.ToLower(input)))
	if !d.IsValid() {
		return "", fmt.Errorf("%w: difficulty %q", ErrInvalidInput, input)
	}
	return d, nil
}

// Frequency is a quest's recurrence cadence
type Frequency string

const (
	FrequencyHourly     Frequency = "hourly"
	FrequencyDaily      Frequency = "daily"
	FrequencySemiWeekly Frequency = "semiweekly"
	FrequencyWeekly     Frequency = "weekly"
	FrequencyMonthly    Frequency = "monthly"
)

func (f Frequency) IsValid() bool {
	switch f {
	case FrequencyHourly, FrequencyDaily, FrequencySemiWeekly, FrequencyWeekly, FrequencyMonthly:
		return true
	default:
		return false
	}
}

// ParseFrequency parses user input into a Frequency
func ParseFrequency(input string) (Frequency, error) {
	f := Frequency(strings.TrimSpace(strings.ToLower(input)))
	if !f.IsValid() {
		return "", fmt.Errorf("%w: frequency %q", ErrInvalidInput, input)
	}
	return f, nil
}

// TrackingMode says where a quest's progress value comes from
type TrackingMode string

const (
	TrackingManual   TrackingMode = "manual"
	TrackingHealth   TrackingMode = "health"
	TrackingLocation TrackingMode = "location"
	TrackingScreen   TrackingMode = "screen"
)

func (m TrackingMode) IsValid() bool {
	switch m {
	case TrackingManual, TrackingHealth, TrackingLocation, TrackingScreen:
		return true
	default:
		return false
	}
}

// IsAutomatic reports whether progress is sampled from an external provider
func (m TrackingMode) IsAutomatic() bool {
	return m.IsValid() && m != TrackingManual
}

// QuestStatus is the lifecycle state of a quest within its current cycle
type QuestStatus string

const (
	QuestAvailable  QuestStatus = "available"
	QuestInProgress QuestStatus = "in_progress"
	QuestCompleted  QuestStatus = "completed"
)

// DailyQuest is a recurring trackable task.
// ExpiresAt is always the next unresolved reset instant for its frequency;
// a completed quest keeps Progress pinned at 1.0 until rollover.
type DailyQuest struct {
	ID           uuid.UUID    `json:"id"`
	Title        string       `json:"title"`
	Description  string       `json:"description"`
	Difficulty   Difficulty   `json:"difficulty"`
	TargetStats  []StatType   `json:"target_stats"`
	Frequency    Frequency    `json:"frequency"`
	TrackingMode TrackingMode `json:"tracking_mode"`
	Status       QuestStatus  `json:"status"`
	Progress     float64      `json:"progress"`
	TargetValue  float64      `json:"target_value"`
	TargetUnit   string       `json:"target_unit"`
	Optional     bool         `json:"optional"`
	CreatedAt    time.Time    `json:"created_at"`
	ExpiresAt    time.Time    `json:"expires_at"`
	BossID       *uuid.UUID   `json:"boss_id,omitempty"`
	GoalBossID   *uuid.UUID   `json:"goal_boss_id,omitempty"`
	Reminder     *time.Time   `json:"reminder,omitempty"`
}

// Clone returns a deep copy of the quest
func (q *DailyQuest) Clone() *DailyQuest {
	cp := *q
	cp.TargetStats = append([]StatType(nil), q.TargetStats...)
	if q.BossID != nil {
		id := *q.BossID
		cp.BossID = &id
	}
	if q.GoalBossID != nil {
		id := *q.GoalBossID
		cp.GoalBossID = &id
	}
	if q.Reminder != nil {
		t := *q.Reminder
		cp.Reminder = &t
	}
	return &cp
}
