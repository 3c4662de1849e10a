// Package reward holds the pure formulas mapping difficulty, level and streak
// to XP, gold, damage and probability constants. No state lives here.
package reward

import (
	"math"

	"github.com/lifequest/engine/internal/domain"
)

const (
	// BaseXP is the per-level coefficient of the XP requirement curve:
	// XP to clear level N = BaseXP * (N ^ LevelExponent)
	BaseXP = 500.0

	// LevelExponent controls how steeply requirements grow
	LevelExponent = 1.5

	// CritChance is the fixed critical-success probability on quest completion
	CritChance = 0.10

	// BossRewardMultiplier scales boss defeat rewards above quest rewards
	BossRewardMultiplier = 3.0

	// StreakBonusRate is the per-day streak bonus (capped, see StreakMultiplier)
	StreakBonusRate = 0.02

	// StreakBonusCap caps the streak multiplier at +60%
	StreakBonusCap = 0.60

	// PenaltyDamagePerQuest is HP lost per missed quest in a rollover pass
	PenaltyDamagePerQuest = 10

	// DungeonPenaltyDamage is the fixed HP cost of abandoning a focus session
	DungeonPenaltyDamage = 15

	// DamageLevelBonusRate scales boss damage up with player level
	DamageLevelBonusRate = 0.05
)

// difficultyMultiplier is the common scale shared by XP, gold and damage
func difficultyMultiplier(d domain.Difficulty) float64 {
	switch d {
	case domain.DifficultyTrivial:
		return 1.0
	case domain.DifficultyEasy:
		return 2.0
	case domain.DifficultyMedium:
		return 5.0
	case domain.DifficultyHard:
		return 10.0
	case domain.DifficultyEpic:
		return 25.0
	default:
		return 1.0
	}
}

// QuestXP returns the base XP for completing a quest of the given difficulty
func QuestXP(d domain.Difficulty) int64 {
	return int64(50 * difficultyMultiplier(d))
}

// QuestGold returns the gold for completing a quest of the given difficulty
func QuestGold(d domain.Difficulty) int {
	return int(10 * difficultyMultiplier(d))
}

// StatXP returns the experience awarded to each of a quest's target stats
func StatXP(d domain.Difficulty) int64 {
	return int64(20 * difficultyMultiplier(d))
}

// StreakMultiplier scales quest XP by the current daily streak
func StreakMultiplier(streak int) float64 {
	if streak < 0 {
		streak = 0
	}
	bonus := float64(streak) * StreakBonusRate
	if bonus > StreakBonusCap {
		bonus = StreakBonusCap
	}
	return 1.0 + bonus
}

// XPForNextLevel returns the XP needed to clear the given level.
// Monotonically increasing in level; level 0 and below still cost BaseXP.
func XPForNextLevel(level int) int64 {
	if level < 1 {
		level = 1
	}
	return int64(math.Ceil(BaseXP * math.Pow(float64(level), LevelExponent)))
}

// RankForLevel maps a level onto its letter rank band
func RankForLevel(level int) domain.Rank {
	switch {
	case level >= 50:
		return domain.RankS
	case level >= 35:
		return domain.RankA
	case level >= 20:
		return domain.RankB
	case level >= 10:
		return domain.RankC
	case level >= 5:
		return domain.RankD
	default:
		return domain.RankE
	}
}

// BossDamage computes the damage a completed quest or micro task of the
// given difficulty deals, scaled up with player level so late-game bosses
// stay tractable.
func BossDamage(d domain.Difficulty, playerLevel int) float64 {
	if playerLevel < 1 {
		playerLevel = 1
	}
	base := 5 * difficultyMultiplier(d)
	return math.Round(base * (1 + DamageLevelBonusRate*float64(playerLevel-1)))
}

// MissedQuestDamage is the HP loss for a rollover pass that missed n quests
func MissedQuestDamage(missed int) int {
	if missed < 0 {
		missed = 0
	}
	return missed * PenaltyDamagePerQuest
}
