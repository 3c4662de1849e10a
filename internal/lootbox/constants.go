package lootbox

// Rarity roll thresholds, checked from rarest (lowest roll) to most common.

// LegendaryThreshold defines the maximum roll (<=2%) for LEGENDARY rarity.
const LegendaryThreshold = 0.02

// EpicThreshold defines the maximum roll (<=8%) for EPIC rarity.
const EpicThreshold = 0.08

// RareThreshold defines the maximum roll (<=22%) for RARE rarity.
const RareThreshold = 0.22

// UncommonThreshold defines the maximum roll (<=45%) for UNCOMMON rarity.
const UncommonThreshold = 0.45

// DistanceBonus is the per-tier threshold shift applied by quest difficulty:
// harder sources make rare tiers easier to hit.
const DistanceBonus = 0.04

// CriticalUpgradeChance is the probability that a generated box is upgraded
// one rarity tier.
const CriticalUpgradeChance = 0.05

// BossRarityShift is the extra difficulty distance applied to boss-defeat
// loot so it lands at elevated tiers.
const BossRarityShift = 2
