// Package engine is the progression core: the single writer of the player,
// quest, boss, loot, penalty and activity-log collections, and the only place
// game-state invariants are enforced. Every mutating operation runs under one
// mutex and either fully commits or fully no-ops.
package engine

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/lifequest/engine/internal/domain"
	"github.com/lifequest/engine/internal/event"
	"github.com/lifequest/engine/internal/logger"
	"github.com/lifequest/engine/internal/lootbox"
	"github.com/lifequest/engine/internal/metrics"
	"github.com/lifequest/engine/internal/tracker"
	"github.com/lifequest/engine/internal/worker"
)

// DefaultUndoWindow is how long a completion stays undoable
const DefaultUndoWindow = 20 * time.Second

// Store is the persistence collaborator. Each collection is independently
// keyed; the engine saves them together and treats failures as best-effort.
type Store interface {
	LoadPlayer(ctx context.Context) (*domain.Player, error)
	SavePlayer(ctx context.Context, p *domain.Player) error
	LoadQuests(ctx context.Context) ([]*domain.DailyQuest, error)
	SaveQuests(ctx context.Context, quests []*domain.DailyQuest) error
	LoadBosses(ctx context.Context) ([]*domain.BossFight, error)
	SaveBosses(ctx context.Context, bosses []*domain.BossFight) error
	LoadLoot(ctx context.Context) ([]*domain.LootBox, error)
	SaveLoot(ctx context.Context, loot []*domain.LootBox) error
	LoadPenalties(ctx context.Context) ([]*domain.PenaltyQuest, error)
	SavePenalties(ctx context.Context, penalties []*domain.PenaltyQuest) error
	LoadActivityLog(ctx context.Context) ([]domain.ActivityLogEntry, error)
	SaveActivityLog(ctx context.Context, log []domain.ActivityLogEntry) error
}

// Clock abstracts wall time so reconciliation is testable
type Clock interface {
	Now() time.Time
}

// SystemClock is the production clock
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// Engine is the progression core
type Engine struct {
	mu    sync.Mutex
	state *domain.GameState

	dungeon *domain.DungeonSession
	undo    *domain.UndoSnapshot

	store     Store
	clock     Clock
	trackers  *tracker.Registry
	publisher *event.ResilientPublisher
	loot      *lootbox.Generator
	validate  *validator.Validate
	rnd       func() float64

	undoWorker  worker.BaseWorker
	undoTimerID uuid.UUID
	undoWindow  time.Duration
}

// Option customizes engine construction (tests inject clock and RNG)
type Option func(*Engine)

// WithClock overrides the engine clock
func WithClock(c Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// WithRand overrides the RNG used for critical and loot rolls
func WithRand(rnd func() float64) Option {
	return func(e *Engine) {
		e.rnd = rnd
		e.loot = lootbox.NewGeneratorWithRand(rnd)
	}
}

// WithUndoWindow overrides the undo window duration
func WithUndoWindow(d time.Duration) Option {
	return func(e *Engine) { e.undoWindow = d }
}

// New builds an engine, loading any persisted state from the store.
// A missing player record means a fresh game.
func New(ctx context.Context, store Store, trackers *tracker.Registry, publisher *event.ResilientPublisher, opts ...Option) (*Engine, error) {
	e := &Engine{
		store:       store,
		clock:       SystemClock{},
		trackers:    trackers,
		publisher:   publisher,
		loot:        lootbox.NewGenerator(),
		validate:    validator.New(),
		rnd:         rand.Float64, //nolint:gosec // Game randomness, not security critical
		undoTimerID: uuid.New(),
		undoWindow:  DefaultUndoWindow,
	}
	for _, opt := range opts {
		opt(e)
	}

	state, err := loadState(ctx, store)
	if err != nil {
		return nil, err
	}
	e.state = state

	metrics.PlayerLevel.Set(float64(state.Player.Level))
	metrics.CurrentStreak.Set(float64(state.Player.CurrentStreak))
	return e, nil
}

func loadState(ctx context.Context, store Store) (*domain.GameState, error) {
	player, err := store.LoadPlayer(ctx)
	if err != nil {
		return nil, err
	}
	if player == nil {
		player = domain.NewPlayer()
	}

	quests, err := store.LoadQuests(ctx)
	if err != nil {
		return nil, err
	}
	bosses, err := store.LoadBosses(ctx)
	if err != nil {
		return nil, err
	}
	loot, err := store.LoadLoot(ctx)
	if err != nil {
		return nil, err
	}
	penalties, err := store.LoadPenalties(ctx)
	if err != nil {
		return nil, err
	}
	activity, err := store.LoadActivityLog(ctx)
	if err != nil {
		return nil, err
	}

	return &domain.GameState{
		Player:           player,
		Quests:           quests,
		Bosses:           bosses,
		PendingLoot:      loot,
		PendingPenalties: penalties,
		ActivityLog:      activity,
	}, nil
}

// effects collects what a locked mutation wants done after the lock drops:
// persistence and event publication never hold the mutation path open.
type effects struct {
	save   *domain.GameState
	events []event.Event
}

func (fx *effects) publish(ev event.Event) {
	fx.events = append(fx.events, ev)
}

// apply persists and publishes outside the engine lock
func (e *Engine) applyEffects(ctx context.Context, fx *effects) {
	if fx.save != nil {
		e.persist(ctx, fx.save)
	}
	if e.publisher != nil {
		for _, ev := range fx.events {
			e.publisher.PublishWithRetry(ctx, ev)
		}
	}
}

// markSave captures a clone of the current state for post-lock persistence
func (e *Engine) markSave(fx *effects) {
	fx.save = e.state.Clone()
}

// persist writes every collection. Failures are logged, never surfaced: the
// engine's in-memory state stays authoritative.
func (e *Engine) persist(ctx context.Context, state *domain.GameState) {
	log := logger.FromContext(ctx)
	if err := e.store.SavePlayer(ctx, state.Player); err != nil {
		log.Error("Failed to save player", "error", err)
	}
	if err := e.store.SaveQuests(ctx, state.Quests); err != nil {
		log.Error("Failed to save quests", "error", err)
	}
	if err := e.store.SaveBosses(ctx, state.Bosses); err != nil {
		log.Error("Failed to save bosses", "error", err)
	}
	if err := e.store.SaveLoot(ctx, state.PendingLoot); err != nil {
		log.Error("Failed to save pending loot", "error", err)
	}
	if err := e.store.SavePenalties(ctx, state.PendingPenalties); err != nil {
		log.Error("Failed to save pending penalties", "error", err)
	}
	if err := e.store.SaveActivityLog(ctx, state.ActivityLog); err != nil {
		log.Error("Failed to save activity log", "error", err)
	}
}

// Save persists the current state on demand (used by the autosave job)
func (e *Engine) Save(ctx context.Context) {
	e.mu.Lock()
	state := e.state.Clone()
	e.mu.Unlock()
	e.persist(ctx, state)
}

// Shutdown cancels the undo timer and waits for in-flight work
func (e *Engine) Shutdown(ctx context.Context) error {
	return e.undoWorker.Shutdown(ctx, "undo worker")
}

// Player returns a copy of the player record
func (e *Engine) Player() *domain.Player {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Player.Clone()
}

// Quests returns copies of the quest list
func (e *Engine) Quests() []*domain.DailyQuest {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]*domain.DailyQuest, len(e.state.Quests))
	for i, q := range e.state.Quests {
		out[i] = q.Clone()
	}
	return out
}

// Bosses returns copies of the active boss list
func (e *Engine) Bosses() []*domain.BossFight {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]*domain.BossFight, len(e.state.Bosses))
	for i, b := range e.state.Bosses {
		out[i] = b.Clone()
	}
	return out
}

// PendingLoot returns copies of the unopened loot boxes
func (e *Engine) PendingLoot() []*domain.LootBox {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]*domain.LootBox, len(e.state.PendingLoot))
	for i, l := range e.state.PendingLoot {
		out[i] = l.Clone()
	}
	return out
}

// PendingPenalties returns copies of the open penalty quests
func (e *Engine) PendingPenalties() []*domain.PenaltyQuest {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]*domain.PenaltyQuest, len(e.state.PendingPenalties))
	for i, p := range e.state.PendingPenalties {
		out[i] = p.Clone()
	}
	return out
}

// ActivityLog returns a copy of the activity log, newest first
func (e *Engine) ActivityLog() []domain.ActivityLogEntry {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]domain.ActivityLogEntry(nil), e.state.ActivityLog...)
}

// CompanionMirror builds the read-only companion-device projection
func (e *Engine) CompanionMirror() *domain.CompanionMirror {
	e.mu.Lock()
	defer e.mu.Unlock()

	p := e.state.Player
	mirror := &domain.CompanionMirror{
		Level:       p.Level,
		Rank:        p.ActiveTitle,
		Gold:        p.Gold,
		CurrentHP:   p.CurrentHP,
		MaxHP:       p.MaxHP,
		Streak:      p.CurrentStreak,
		GeneratedAt: e.clock.Now(),
	}
	for _, q := range e.state.Quests {
		mirror.Quests = append(mirror.Quests, domain.QuestSummary{
			Title:     q.Title,
			Status:    q.Status,
			Progress:  q.Progress,
			Frequency: q.Frequency,
		})
	}
	return mirror
}

// findQuest returns the quest with the id, or nil. Callers hold the lock.
func (e *Engine) findQuest(id uuid.UUID) *domain.DailyQuest {
	for _, q := range e.state.Quests {
		if q.ID == id {
			return q
		}
	}
	return nil
}

// findBoss returns the boss with the id, or nil. Callers hold the lock.
func (e *Engine) findBoss(id uuid.UUID) *domain.BossFight {
	for _, b := range e.state.Bosses {
		if b.ID == id {
			return b
		}
	}
	return nil
}

// logActivity prepends an activity entry. Callers hold the lock.
func (e *Engine) logActivity(kind domain.ActivityKind, message string) {
	e.state.ActivityLog = domain.AppendActivity(e.state.ActivityLog, domain.ActivityLogEntry{
		Kind:       kind,
		Message:    message,
		OccurredAt: e.clock.Now(),
	})
}
