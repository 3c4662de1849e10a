package main

import (
	"context"
	"log/slog"

	"github.com/lifequest/engine/internal/event"
)

// registerNotificationHandlers subscribes the local notification surface.
// The desktop build forwards these to the system tray; headless installs
// get structured log lines.
func registerNotificationHandlers(bus event.Bus) {
	bus.Subscribe(event.QuestCompleted, func(ctx context.Context, ev event.Event) error {
		if p, ok := ev.Payload.(event.QuestCompletedPayloadV1); ok {
			slog.Info("Quest completed",
				"title", p.Title,
				"xp", p.XPAwarded,
				"gold", p.Gold,
				"critical", p.IsCritical)
		}
		return nil
	})

	bus.Subscribe(event.LevelUp, func(ctx context.Context, ev event.Event) error {
		if p, ok := ev.Payload.(event.LevelUpPayloadV1); ok {
			slog.Info("Level up",
				"old_level", p.OldLevel,
				"new_level", p.NewLevel,
				"rank_changed", p.RankChanged,
				"rank", p.NewRank)
		}
		return nil
	})

	bus.Subscribe(event.BossDefeated, func(ctx context.Context, ev event.Event) error {
		if p, ok := ev.Payload.(event.BossDefeatedPayloadV1); ok {
			slog.Info("Boss defeated", "title", p.Title, "xp", p.XPAwarded, "gold", p.Gold)
		}
		return nil
	})

	bus.Subscribe(event.PenaltyApplied, func(ctx context.Context, ev event.Event) error {
		if p, ok := ev.Payload.(event.PenaltyAppliedPayloadV1); ok {
			slog.Warn("Penalty applied",
				"reason", p.Reason,
				"missed_quests", p.MissedQuests,
				"hp_lost", p.HPLost)
		}
		return nil
	})

	bus.Subscribe(event.PenaltyZone, func(ctx context.Context, ev event.Event) error {
		slog.Warn("Penalty zone entered")
		return nil
	})
}
