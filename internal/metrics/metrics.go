// Package metrics exposes prometheus collectors for the progression engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Engine metrics
var (
	QuestsCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "engine_quests_completed_total",
		Help: "Total quests completed",
	})

	CriticalSuccesses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "engine_critical_successes_total",
		Help: "Total critical-success quest completions",
	})

	LevelUps = promauto.NewCounter(prometheus.CounterOpts{
		Name: "engine_level_ups_total",
		Help: "Total player level ups",
	})

	BossesDefeated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "engine_bosses_defeated_total",
		Help: "Total bosses defeated",
	})

	PenaltiesApplied = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "engine_penalties_applied_total",
		Help: "Total penalty events, labeled by reason",
	}, []string{"reason"})

	UndosPerformed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "engine_undos_total",
		Help: "Total quest completions rolled back via the undo window",
	})

	LootBoxesGenerated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "engine_loot_boxes_generated_total",
		Help: "Total loot boxes generated, labeled by rarity",
	}, []string{"rarity"})

	PlayerLevel = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "engine_player_level",
		Help: "Current player level",
	})

	CurrentStreak = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "engine_current_streak_days",
		Help: "Current daily streak in days",
	})
)
