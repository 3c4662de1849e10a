package engine

import (
	"time"

	"github.com/lifequest/engine/internal/domain"
)

// CompletionResult is the user-facing outcome of a quest completion attempt.
// Failures carry Success=false and a short message; state is untouched.
type CompletionResult struct {
	Success     bool                      `json:"success"`
	Message     string                    `json:"message"`
	QuestTitle  string                    `json:"quest_title,omitempty"`
	XPAwarded   int64                     `json:"xp_awarded"`
	GoldAwarded int                       `json:"gold_awarded"`
	StatGains   map[domain.StatType]int64 `json:"stat_gains,omitempty"`
	IsCritical  bool                      `json:"is_critical"`
	LootBox     *domain.LootBox           `json:"loot_box,omitempty"`
	LeveledUp   bool                      `json:"leveled_up"`
	LevelUp     *LevelUpRecord            `json:"level_up,omitempty"`
}

// LevelUpRecord surfaces a level transition for the notification layer
type LevelUpRecord struct {
	OldLevel    int    `json:"old_level"`
	NewLevel    int    `json:"new_level"`
	OldRank     string `json:"old_rank"`
	NewRank     string `json:"new_rank"`
	RankChanged bool   `json:"rank_changed"`
}

// DamageResult is the outcome of a manual boss attack
type DamageResult struct {
	Success      bool    `json:"success"`
	Message      string  `json:"message"`
	Damage       float64 `json:"damage"`
	RemainingHP  float64 `json:"remaining_hp"`
	BossDefeated bool    `json:"boss_defeated"`
}

// UndoResult reports whether the last completion was rolled back
type UndoResult struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	QuestTitle string `json:"quest_title,omitempty"`
}

// ReconcileResult summarizes one reconciliation pass
type ReconcileResult struct {
	RolledOver      int  `json:"rolled_over"`
	MissedQuests    int  `json:"missed_quests"`
	PenaltyApplied  bool `json:"penalty_applied"`
	GoalsRetargeted int  `json:"goals_retargeted"`
	AutoCompleted   int  `json:"auto_completed"`
}

// UndoInfo describes the currently pending undo window, if any
type UndoInfo struct {
	QuestTitle string    `json:"quest_title"`
	CreatedAt  time.Time `json:"created_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// OpenLootResult is the outcome of opening a loot box
type OpenLootResult struct {
	Success bool                `json:"success"`
	Message string              `json:"message"`
	Rarity  domain.Rarity       `json:"rarity,omitempty"`
	Items   []domain.RewardItem `json:"items,omitempty"`
}

func failedCompletion(message string) *CompletionResult {
	return &CompletionResult{Success: false, Message: message}
}
