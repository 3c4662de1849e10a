package domain

import (
	"time"

	"github.com/google/uuid"
)

// Rarity is a loot box tier, ordered common to legendary
type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityUncommon  Rarity = "uncommon"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
)

// RarityOrder lists rarities from most to least common
var RarityOrder = []Rarity{RarityCommon, RarityUncommon, RarityRare, RarityEpic, RarityLegendary}

// Distance returns the rarity's offset from common, for threshold shifting
func (r Rarity) Distance() int {
	for i, tier := range RarityOrder {
		if tier == r {
			return i
		}
	}
	return 0
}

// RewardKind identifies what a loot item grants when the box is opened
type RewardKind string

const (
	RewardGold        RewardKind = "gold"
	RewardBonusXP     RewardKind = "bonus_xp"
	RewardStatBoost   RewardKind = "stat_boost"
	RewardTitle       RewardKind = "title"
	RewardCollectible RewardKind = "collectible"
)

// RewardItem is one reward resolved at loot box construction time
type RewardItem struct {
	Kind   RewardKind `json:"kind"`
	Name   string     `json:"name"`
	Amount int        `json:"amount"`
	Stat   StatType   `json:"stat,omitempty"`
}

// LootBox holds rewards resolved at construction; opening applies them once
type LootBox struct {
	ID        uuid.UUID    `json:"id"`
	Rarity    Rarity       `json:"rarity"`
	Opened    bool         `json:"opened"`
	Items     []RewardItem `json:"items"`
	CreatedAt time.Time    `json:"created_at"`
}

// Clone returns a deep copy of the loot box
func (l *LootBox) Clone() *LootBox {
	cp := *l
	cp.Items = append([]RewardItem(nil), l.Items...)
	return &cp
}
