package domain

import "time"

// StatType identifies one of the player's trainable attributes
type StatType string

const (
	StatStrength   StatType = "strength"
	StatIntellect  StatType = "intellect"
	StatDiscipline StatType = "discipline"
	StatVitality   StatType = "vitality"
	StatCharisma   StatType = "charisma"
)

// AllStatTypes lists every stat in display order
var AllStatTypes = []StatType{StatStrength, StatIntellect, StatDiscipline, StatVitality, StatCharisma}

// IsValid reports whether the stat type is one of the known attributes
func (s StatType) IsValid() bool {
	switch s {
	case StatStrength, StatIntellect, StatDiscipline, StatVitality, StatCharisma:
		return true
	default:
		return false
	}
}

// Stat holds one attribute's base value, equipment/loot bonus and accumulated XP
type Stat struct {
	Base  int   `json:"base"`
	Bonus int   `json:"bonus"`
	XP    int64 `json:"xp"`
}

// Total returns the effective stat value
func (s Stat) Total() int {
	return s.Base + s.Bonus
}

// Rank is the letter rank derived from player level
type Rank string

const (
	RankE Rank = "E"
	RankD Rank = "D"
	RankC Rank = "C"
	RankB Rank = "B"
	RankA Rank = "A"
	RankS Rank = "S"
)

// Title returns the unlockable title attached to the rank
func (r Rank) Title() string {
	switch r {
	case RankE:
		return "Novice"
	case RankD:
		return "Apprentice"
	case RankC:
		return "Adept"
	case RankB:
		return "Veteran"
	case RankA:
		return "Elite"
	case RankS:
		return "Legend"
	default:
		return "Novice"
	}
}

// Player is the authoritative player record owned by the progression core
type Player struct {
	Level           int                `json:"level"`
	CurrentXP       int64              `json:"current_xp"`
	TotalXP         int64              `json:"total_xp"`
	Gold            int                `json:"gold"`
	CurrentHP       int                `json:"current_hp"`
	MaxHP           int                `json:"max_hp"`
	CurrentStreak   int                `json:"current_streak"`
	LongestStreak   int                `json:"longest_streak"`
	LastActiveDate  time.Time          `json:"last_active_date"`
	ActiveTitle     string             `json:"active_title"`
	UnlockedTitles  []string           `json:"unlocked_titles"`
	Stats           map[StatType]*Stat `json:"stats"`
	QuestsCompleted int64              `json:"quests_completed"`
	BossesDefeated  int64              `json:"bosses_defeated"`
	SessionsCleared int64              `json:"sessions_cleared"`
	PenaltiesTaken  int64              `json:"penalties_taken"`
}

// NewPlayer returns a fresh level-1 player with all stats initialized
func NewPlayer() *Player {
	stats := make(map[StatType]*Stat, len(AllStatTypes))
	for _, st := range AllStatTypes {
		stats[st] = &Stat{Base: 1}
	}
	return &Player{
		Level:          1,
		MaxHP:          100,
		CurrentHP:      100,
		ActiveTitle:    RankE.Title(),
		UnlockedTitles: []string{RankE.Title()},
		Stats:          stats,
	}
}

// HasTitle reports whether the title is already in the unlocked set
func (p *Player) HasTitle(title string) bool {
	for _, t := range p.UnlockedTitles {
		if t == title {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the player
func (p *Player) Clone() *Player {
	cp := *p
	cp.UnlockedTitles = append([]string(nil), p.UnlockedTitles...)
	cp.Stats = make(map[StatType]*Stat, len(p.Stats))
	for k, v := range p.Stats {
		stat := *v
		cp.Stats[k] = &stat
	}
	return &cp
}
