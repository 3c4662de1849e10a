package sse

import (
	"context"

	"github.com/lifequest/engine/internal/event"
)

// Subscriber bridges the internal event bus to the stream hub
type Subscriber struct {
	hub *Hub
	bus event.Bus
}

// NewSubscriber creates a bus-to-stream bridge
func NewSubscriber(hub *Hub, bus event.Bus) *Subscriber {
	return &Subscriber{hub: hub, bus: bus}
}

// Subscribe forwards every engine event type onto the companion stream
func (s *Subscriber) Subscribe() {
	types := []event.Type{
		event.QuestCompleted,
		event.QuestUndone,
		event.LevelUp,
		event.BossDefeated,
		event.PenaltyApplied,
		event.PenaltyZone,
		event.LootGenerated,
		event.DungeonCleared,
		event.SnapshotApplied,
	}
	for _, t := range types {
		s.bus.Subscribe(t, s.forward)
	}
}

func (s *Subscriber) forward(ctx context.Context, ev event.Event) error {
	s.hub.Broadcast(string(ev.Type), ev.Payload)
	return nil
}
