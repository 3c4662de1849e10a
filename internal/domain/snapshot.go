package domain

import "time"

// GameState bundles the five collections the progression core owns.
// Clone copies are what cross the engine boundary; collaborators never
// receive the live collections.
type GameState struct {
	Player           *Player            `json:"player"`
	Quests           []*DailyQuest      `json:"quests"`
	Bosses           []*BossFight       `json:"bosses"`
	PendingLoot      []*LootBox         `json:"pending_loot"`
	PendingPenalties []*PenaltyQuest    `json:"pending_penalties"`
	ActivityLog      []ActivityLogEntry `json:"activity_log"`
}

// Clone returns a deep copy of the whole game state
func (g *GameState) Clone() *GameState {
	cp := &GameState{
		Player:           g.Player.Clone(),
		Quests:           make([]*DailyQuest, len(g.Quests)),
		Bosses:           make([]*BossFight, len(g.Bosses)),
		PendingLoot:      make([]*LootBox, len(g.PendingLoot)),
		PendingPenalties: make([]*PenaltyQuest, len(g.PendingPenalties)),
		ActivityLog:      append([]ActivityLogEntry(nil), g.ActivityLog...),
	}
	for i, q := range g.Quests {
		cp.Quests[i] = q.Clone()
	}
	for i, b := range g.Bosses {
		cp.Bosses[i] = b.Clone()
	}
	for i, l := range g.PendingLoot {
		cp.PendingLoot[i] = l.Clone()
	}
	for i, p := range g.PendingPenalties {
		cp.PendingPenalties[i] = p.Clone()
	}
	return cp
}

// UndoSnapshot is a full pre-completion copy of the game state.
// At most one exists at a time; superseded on new completion, timeout or reset.
type UndoSnapshot struct {
	State      *GameState `json:"state"`
	QuestTitle string     `json:"quest_title"`
	CreatedAt  time.Time  `json:"created_at"`
}

// Snapshot is the full-state export handed to the cloud sync layer
type Snapshot struct {
	State     *GameState `json:"state"`
	DeviceID  string     `json:"device_id"`
	Timestamp time.Time  `json:"timestamp"`
}

// QuestSummary is the companion-device projection of one quest
type QuestSummary struct {
	Title     string      `json:"title"`
	Status    QuestStatus `json:"status"`
	Progress  float64     `json:"progress"`
	Frequency Frequency   `json:"frequency"`
}

// CompanionMirror is the read-only projection regenerated after every save
type CompanionMirror struct {
	Level       int            `json:"level"`
	Rank        string         `json:"rank"`
	Gold        int            `json:"gold"`
	CurrentHP   int            `json:"current_hp"`
	MaxHP       int            `json:"max_hp"`
	Streak      int            `json:"streak"`
	Quests      []QuestSummary `json:"quests"`
	GeneratedAt time.Time      `json:"generated_at"`
}
