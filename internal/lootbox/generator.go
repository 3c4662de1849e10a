// Package lootbox generates loot boxes. Rarity comes from a single roll
// against ordered thresholds shifted by source difficulty; reward items are
// resolved at construction time so opening a box is pure state application.
package lootbox

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/lifequest/engine/internal/domain"
)

type rarityThreshold struct {
	threshold float64
	rarity    domain.Rarity
}

// rarityThresholds is ordered rarest first; the order is critical.
var rarityThresholds = []rarityThreshold{
	{LegendaryThreshold, domain.RarityLegendary},
	{EpicThreshold, domain.RarityEpic},
	{RareThreshold, domain.RarityRare},
	{UncommonThreshold, domain.RarityUncommon},
}

// Generator creates loot boxes with difficulty-weighted rarity
type Generator struct {
	rnd func() float64
}

// NewGenerator returns a generator backed by math/rand
func NewGenerator() *Generator {
	return &Generator{rnd: rand.Float64} //nolint:gosec // Game randomness, not security critical
}

// NewGeneratorWithRand returns a generator with an injected RNG for tests
func NewGeneratorWithRand(rnd func() float64) *Generator {
	return &Generator{rnd: rnd}
}

// difficultyDistance shifts rarity thresholds per source difficulty tier
func difficultyDistance(d domain.Difficulty) int {
	switch d {
	case domain.DifficultyTrivial:
		return 0
	case domain.DifficultyEasy:
		return 1
	case domain.DifficultyMedium:
		return 2
	case domain.DifficultyHard:
		return 3
	case domain.DifficultyEpic:
		return 4
	default:
		return 0
	}
}

// RollRarity rolls a rarity tier for the given source difficulty.
// extraShift adds difficulty distance (boss loot passes BossRarityShift).
func (g *Generator) RollRarity(d domain.Difficulty, extraShift int) domain.Rarity {
	bonus := DistanceBonus * float64(difficultyDistance(d)+extraShift)

	rarity := domain.RarityCommon
	roll := g.rnd()
	for _, rt := range rarityThresholds {
		if roll <= rt.threshold+bonus {
			rarity = rt.rarity
			break
		}
	}

	if g.rnd() < CriticalUpgradeChance {
		rarity = nextRarity(rarity)
	}
	return rarity
}

func nextRarity(r domain.Rarity) domain.Rarity {
	d := r.Distance()
	if d >= len(domain.RarityOrder)-1 {
		return r
	}
	return domain.RarityOrder[d+1]
}

// Generate builds a loot box for a completed quest of the given difficulty
func (g *Generator) Generate(d domain.Difficulty, now time.Time) *domain.LootBox {
	return g.build(g.RollRarity(d, 0), now)
}

// GenerateForBoss builds an elevated-rarity box for a boss defeat
func (g *Generator) GenerateForBoss(d domain.Difficulty, now time.Time) *domain.LootBox {
	return g.build(g.RollRarity(d, BossRarityShift), now)
}

// build resolves the box's reward items up front
func (g *Generator) build(rarity domain.Rarity, now time.Time) *domain.LootBox {
	scale := rarity.Distance() + 1

	items := []domain.RewardItem{
		{Kind: domain.RewardGold, Name: "gold pouch", Amount: 25 * scale},
	}

	// Higher tiers stack extra rewards on top of the gold pouch
	if rarity.Distance() >= domain.RarityUncommon.Distance() {
		items = append(items, domain.RewardItem{Kind: domain.RewardBonusXP, Name: "experience tome", Amount: 100 * scale})
	}
	if rarity.Distance() >= domain.RarityRare.Distance() {
		stat := domain.AllStatTypes[int(g.rnd()*float64(len(domain.AllStatTypes)))%len(domain.AllStatTypes)]
		items = append(items, domain.RewardItem{Kind: domain.RewardStatBoost, Name: "training relic", Amount: scale - 1, Stat: stat})
	}
	if rarity.Distance() >= domain.RarityEpic.Distance() {
		items = append(items, domain.RewardItem{Kind: domain.RewardCollectible, Name: fmt.Sprintf("%s trophy", rarity)})
	}
	if rarity == domain.RarityLegendary {
		items = append(items, domain.RewardItem{Kind: domain.RewardTitle, Name: "Fortune's Favorite"})
	}

	return &domain.LootBox{
		ID:        uuid.New(),
		Rarity:    rarity,
		Items:     items,
		CreatedAt: now,
	}
}
