package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// GoalKind identifies what external measurement drives a dynamic boss goal
type GoalKind string

const (
	GoalWeight           GoalKind = "weight"
	GoalBodyFat          GoalKind = "bodyfat"
	GoalSavings          GoalKind = "savings"
	GoalWorkoutCount     GoalKind = "workout_count"
	GoalScreenDiscipline GoalKind = "screen_discipline"
)

func (g GoalKind) IsValid() bool {
	switch g {
	case GoalWeight, GoalBodyFat, GoalSavings, GoalWorkoutCount, GoalScreenDiscipline:
		return true
	default:
		return false
	}
}

// ParseGoalKind parses user input into a GoalKind
func ParseGoalKind(input string) (GoalKind, error) {
	g := GoalKind(strings.TrimSpace(strings.ToLower(input)))
	if !g.IsValid() {
		return "", fmt.Errorf("%w: goal kind %q", ErrInvalidInput, input)
	}
	return g, nil
}

// Decreasing reports whether progress means the measured value going down
func (g GoalKind) Decreasing() bool {
	switch g {
	case GoalWeight, GoalBodyFat, GoalScreenDiscipline:
		return true
	default:
		return false
	}
}

// Cadence is the sub-target period for a dynamic goal
type Cadence string

const (
	CadenceDaily   Cadence = "daily"
	CadenceWeekly  Cadence = "weekly"
	CadenceMonthly Cadence = "monthly"
)

func (c Cadence) IsValid() bool {
	switch c {
	case CadenceDaily, CadenceWeekly, CadenceMonthly:
		return true
	default:
		return false
	}
}

// Frequency maps the cadence onto the matching quest recurrence
func (c Cadence) Frequency() Frequency {
	switch c {
	case CadenceWeekly:
		return FrequencyWeekly
	case CadenceMonthly:
		return FrequencyMonthly
	default:
		return FrequencyDaily
	}
}

// DynamicBossGoal tracks an external numeric objective for a boss.
// Boss HP is derived from NormalizedProgress, never stored independently.
type DynamicBossGoal struct {
	Kind          GoalKind   `json:"kind"`
	Cadence       Cadence    `json:"cadence"`
	StartValue    float64    `json:"start_value"`
	TargetValue   float64    `json:"target_value"`
	CurrentValue  float64    `json:"current_value"`
	SubTarget     float64    `json:"sub_target"`
	BaseSubTarget float64    `json:"base_sub_target"`
	Unit          string     `json:"unit"`
	MirrorQuestID *uuid.UUID `json:"mirror_quest_id,omitempty"`
}

// NormalizedProgress returns the goal's completion fraction clamped to [0,1],
// direction-aware for decrease-type goals.
func (g *DynamicBossGoal) NormalizedProgress() float64 {
	span := g.TargetValue - g.StartValue
	if span == 0 {
		return 1
	}
	p := (g.CurrentValue - g.StartValue) / span
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// Remaining returns the absolute measured amount still needed to hit the target
func (g *DynamicBossGoal) Remaining() float64 {
	var r float64
	if g.Kind.Decreasing() {
		r = g.CurrentValue - g.TargetValue
	} else {
		r = g.TargetValue - g.CurrentValue
	}
	if r < 0 {
		return 0
	}
	return r
}

// MicroTask is a manual attack against a boss
type MicroTask struct {
	ID         uuid.UUID  `json:"id"`
	Title      string     `json:"title"`
	Difficulty Difficulty `json:"difficulty"`
	Completed  bool       `json:"completed"`
}

// BossFight is a longer-running HP-pool objective.
// RemainingHP only ever decreases while the boss is active; defeat fires once.
type BossFight struct {
	ID          uuid.UUID        `json:"id"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Difficulty  Difficulty       `json:"difficulty"`
	TargetStats []StatType       `json:"target_stats"`
	MaxHP       float64          `json:"max_hp"`
	RemainingHP float64          `json:"remaining_hp"`
	LinkedIDs   []uuid.UUID      `json:"linked_quest_ids"`
	MicroTasks  []MicroTask      `json:"micro_tasks"`
	Deadline    *time.Time       `json:"deadline,omitempty"`
	Goal        *DynamicBossGoal `json:"goal,omitempty"`
	Defeated    bool             `json:"defeated"`
	CreatedAt   time.Time        `json:"created_at"`
}

// LinksQuest reports whether the quest id is in the boss's linked set
func (b *BossFight) LinksQuest(id uuid.UUID) bool {
	for _, l := range b.LinkedIDs {
		if l == id {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the boss fight
func (b *BossFight) Clone() *BossFight {
	cp := *b
	cp.TargetStats = append([]StatType(nil), b.TargetStats...)
	cp.LinkedIDs = append([]uuid.UUID(nil), b.LinkedIDs...)
	cp.MicroTasks = append([]MicroTask(nil), b.MicroTasks...)
	if b.Deadline != nil {
		t := *b.Deadline
		cp.Deadline = &t
	}
	if b.Goal != nil {
		g := *b.Goal
		if b.Goal.MirrorQuestID != nil {
			id := *b.Goal.MirrorQuestID
			g.MirrorQuestID = &id
		}
		cp.Goal = &g
	}
	return &cp
}
