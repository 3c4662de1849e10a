package engine

import (
	"fmt"

	"github.com/lifequest/engine/internal/domain"
	"github.com/lifequest/engine/internal/event"
	"github.com/lifequest/engine/internal/metrics"
	"github.com/lifequest/engine/internal/reward"
)

// awardXP adds XP to both current and total, resolving as many level-ups as
// the amount covers. Current XP carries the remainder past each threshold and
// never goes negative; the level never decreases. Callers hold the lock.
func (e *Engine) awardXP(amount int64, fx *effects) *LevelUpRecord {
	if amount <= 0 {
		return nil
	}

	player := e.state.Player
	player.CurrentXP += amount
	player.TotalXP += amount

	oldLevel := player.Level
	for player.CurrentXP >= reward.XPForNextLevel(player.Level) {
		player.CurrentXP -= reward.XPForNextLevel(player.Level)
		player.Level++
	}

	if player.Level == oldLevel {
		return nil
	}

	oldRank := reward.RankForLevel(oldLevel)
	newRank := reward.RankForLevel(player.Level)
	record := &LevelUpRecord{
		OldLevel:    oldLevel,
		NewLevel:    player.Level,
		OldRank:     string(oldRank),
		NewRank:     string(newRank),
		RankChanged: oldRank != newRank,
	}

	if record.RankChanged {
		title := newRank.Title()
		player.ActiveTitle = title
		if !player.HasTitle(title) {
			player.UnlockedTitles = append(player.UnlockedTitles, title)
		}
	}

	e.logActivity(domain.ActivityLevelUp, fmt.Sprintf("Reached level %d", player.Level))
	metrics.LevelUps.Add(float64(player.Level - oldLevel))
	metrics.PlayerLevel.Set(float64(player.Level))
	fx.publish(event.NewLevelUpEvent(oldLevel, player.Level, string(oldRank), string(newRank)))
	return record
}
