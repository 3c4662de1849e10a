package domain

import "time"

// ActivityLogCap is the maximum number of entries retained, newest first
const ActivityLogCap = 100

// ActivityKind tags what produced a log entry
type ActivityKind string

const (
	ActivityQuestCompleted ActivityKind = "quest_completed"
	ActivityBossDefeated   ActivityKind = "boss_defeated"
	ActivityLevelUp        ActivityKind = "level_up"
	ActivityPenalty        ActivityKind = "penalty"
	ActivityLootOpened     ActivityKind = "loot_opened"
	ActivityDungeonCleared ActivityKind = "dungeon_cleared"
	ActivityUndo           ActivityKind = "undo"
)

// ActivityLogEntry is one append-only log record
type ActivityLogEntry struct {
	Kind       ActivityKind `json:"kind"`
	Message    string       `json:"message"`
	OccurredAt time.Time    `json:"occurred_at"`
}

// AppendActivity prepends an entry and trims the log to ActivityLogCap
func AppendActivity(log []ActivityLogEntry, entry ActivityLogEntry) []ActivityLogEntry {
	out := make([]ActivityLogEntry, 0, len(log)+1)
	out = append(out, entry)
	out = append(out, log...)
	if len(out) > ActivityLogCap {
		out = out[:ActivityLogCap]
	}
	return out
}
