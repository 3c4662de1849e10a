// Package event is the typed in-process event surface between the progression
// core and the notification layer. The core publishes; collaborators subscribe.
package event

import (
	"context"
	"sync"
	"time"
)

// EventSchemaVersion is the current event payload schema version
const EventSchemaVersion = "1.0"

// Type represents the type of an event
type Type string

// Event types produced by the progression core
const (
	QuestCompleted  Type = "quest.completed"
	QuestUndone     Type = "quest.undone"
	LevelUp         Type = "player.level_up"
	BossDefeated    Type = "boss.defeated"
	PenaltyApplied  Type = "penalty.applied"
	PenaltyZone     Type = "penalty.zone_entered"
	LootGenerated   Type = "loot.generated"
	DungeonCleared  Type = "dungeon.cleared"
	SnapshotApplied Type = "sync.snapshot_applied"
)

// Event represents a generic event in the system
type Event struct {
	Version string      `json:"version"` // Event schema version (e.g., "1.0")
	Type    Type        `json:"type"`
	Payload interface{} `json:"payload"`
}

// Typed event payloads

// QuestCompletedPayloadV1 carries the user-facing outcome of a completion
type QuestCompletedPayloadV1 struct {
	QuestID    string `json:"quest_id"`
	Title      string `json:"title"`
	XPAwarded  int64  `json:"xp_awarded"`
	Gold       int    `json:"gold"`
	IsCritical bool   `json:"is_critical"`
}

// LevelUpPayloadV1 surfaces a level transition, including rank changes
type LevelUpPayloadV1 struct {
	OldLevel    int    `json:"old_level"`
	NewLevel    int    `json:"new_level"`
	OldRank     string `json:"old_rank"`
	NewRank     string `json:"new_rank"`
	RankChanged bool   `json:"rank_changed"`
}

// BossDefeatedPayloadV1 announces an idempotent boss defeat
type BossDefeatedPayloadV1 struct {
	BossID    string `json:"boss_id"`
	Title     string `json:"title"`
	XPAwarded int64  `json:"xp_awarded"`
	Gold      int    `json:"gold"`
}

// PenaltyAppliedPayloadV1 reports one batched penalty event
type PenaltyAppliedPayloadV1 struct {
	Reason       string `json:"reason"`
	MissedQuests int    `json:"missed_quests"`
	HPLost       int    `json:"hp_lost"`
}

// PenaltyZonePayloadV1 signals escalation when HP bottomed out
type PenaltyZonePayloadV1 struct {
	OccurredAt time.Time `json:"occurred_at"`
}

// LootGeneratedPayloadV1 announces a new unopened loot box
type LootGeneratedPayloadV1 struct {
	BoxID  string `json:"box_id"`
	Rarity string `json:"rarity"`
}

// DungeonClearedPayloadV1 reports a finished focus session and its rewards
type DungeonClearedPayloadV1 struct {
	Title     string `json:"title"`
	XPAwarded int64  `json:"xp_awarded"`
	Gold      int    `json:"gold"`
}

// Event constructors

func NewQuestCompletedEvent(questID, title string, xp int64, gold int, critical bool) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    QuestCompleted,
		Payload: QuestCompletedPayloadV1{
			QuestID:    questID,
			Title:      title,
			XPAwarded:  xp,
			Gold:       gold,
			IsCritical: critical,
		},
	}
}

func NewLevelUpEvent(oldLevel, newLevel int, oldRank, newRank string) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    LevelUp,
		Payload: LevelUpPayloadV1{
			OldLevel:    oldLevel,
			NewLevel:    newLevel,
			OldRank:     oldRank,
			NewRank:     newRank,
			RankChanged: oldRank != newRank,
		},
	}
}

func NewBossDefeatedEvent(bossID, title string, xp int64, gold int) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    BossDefeated,
		Payload: BossDefeatedPayloadV1{BossID: bossID, Title: title, XPAwarded: xp, Gold: gold},
	}
}

func NewPenaltyAppliedEvent(reason string, missed, hpLost int) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    PenaltyApplied,
		Payload: PenaltyAppliedPayloadV1{Reason: reason, MissedQuests: missed, HPLost: hpLost},
	}
}

func NewPenaltyZoneEvent(at time.Time) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    PenaltyZone,
		Payload: PenaltyZonePayloadV1{OccurredAt: at},
	}
}

func NewLootGeneratedEvent(boxID, rarity string) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    LootGenerated,
		Payload: LootGeneratedPayloadV1{BoxID: boxID, Rarity: rarity},
	}
}

func NewDungeonClearedEvent(title string, xp int64, gold int) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    DungeonCleared,
		Payload: DungeonClearedPayloadV1{Title: title, XPAwarded: xp, Gold: gold},
	}
}

// Handler processes a published event
type Handler func(ctx context.Context, event Event) error

// Bus is the publish/subscribe interface
type Bus interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(eventType Type, handler Handler)
}

// MemoryBus is an in-memory implementation of the Event Bus
type MemoryBus struct {
	handlers map[Type][]Handler
	mu       sync.RWMutex
}

// NewMemoryBus creates a new MemoryBus
func NewMemoryBus() *MemoryBus {
	return &MemoryBus{
		handlers: make(map[Type][]Handler),
	}
}

// Publish delivers an event to all subscribers synchronously.
// The first handler error aborts delivery and is returned to the caller.
func (b *MemoryBus) Publish(ctx context.Context, event Event) error {
	b.mu.RLock()
	handlers := b.handlers[event.Type]
	b.mu.RUnlock()

	for _, h := range handlers {
		if err := h(ctx, event); err != nil {
			return err
		}
	}
	return nil
}

// Subscribe registers a handler for an event type
func (b *MemoryBus) Subscribe(eventType Type, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], handler)
}
