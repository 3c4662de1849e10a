package engine

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lifequest/engine/internal/domain"
	"github.com/lifequest/engine/internal/event"
	"github.com/lifequest/engine/internal/tracker"
)

// memStore is an in-memory Store double
type memStore struct {
	mu        sync.Mutex
	player    *domain.Player
	quests    []*domain.DailyQuest
	bosses    []*domain.BossFight
	loot      []*domain.LootBox
	penalties []*domain.PenaltyQuest
	activity  []domain.ActivityLogEntry
	saves     int
}

func (m *memStore) LoadPlayer(ctx context.Context) (*domain.Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.player, nil
}

func (m *memStore) SavePlayer(ctx context.Context, p *domain.Player) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.player = p
	m.saves++
	return nil
}

func (m *memStore) LoadQuests(ctx context.Context) ([]*domain.DailyQuest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.quests, nil
}

func (m *memStore) SaveQuests(ctx context.Context, quests []*domain.DailyQuest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.quests = quests
	return nil
}

func (m *memStore) LoadBosses(ctx context.Context) ([]*domain.BossFight, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.bosses, nil
}

func (m *memStore) SaveBosses(ctx context.Context, bosses []*domain.BossFight) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bosses = bosses
	return nil
}

func (m *memStore) LoadLoot(ctx context.Context) ([]*domain.LootBox, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loot, nil
}

func (m *memStore) SaveLoot(ctx context.Context, loot []*domain.LootBox) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loot = loot
	return nil
}

func (m *memStore) LoadPenalties(ctx context.Context) ([]*domain.PenaltyQuest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.penalties, nil
}

func (m *memStore) SavePenalties(ctx context.Context, penalties []*domain.PenaltyQuest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.penalties = penalties
	return nil
}

func (m *memStore) LoadActivityLog(ctx context.Context) ([]domain.ActivityLogEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.activity, nil
}

func (m *memStore) SaveActivityLog(ctx context.Context, log []domain.ActivityLogEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.activity = log
	return nil
}

// fakeClock is a settable Clock for deterministic cycle tests
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(now time.Time) *fakeClock {
	return &fakeClock{now: now}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// fixedRand always rolls the same value
func fixedRand(v float64) func() float64 {
	return func() float64 { return v }
}

// testStart is a Tuesday morning, away from any cycle boundary
var testStart = time.Date(2024, time.March, 12, 9, 0, 0, 0, time.UTC)

func newTestEngine(t *testing.T, st *memStore, opts ...Option) (*Engine, *fakeClock) {
	t.Helper()
	if st == nil {
		st = &memStore{}
	}

	trackers, err := tracker.NewRegistry()
	require.NoError(t, err)

	clock := newFakeClock(testStart)
	base := []Option{WithClock(clock), WithRand(fixedRand(0.99))}
	eng, err := New(context.Background(), st, trackers, nil, append(base, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = eng.Shutdown(context.Background()) })
	return eng, clock
}

// newBusEngine builds an engine whose events land on a live in-memory bus,
// recording every event of the given types. MemoryBus delivery is synchronous,
// so recorded events are visible as soon as the operation returns.
func newBusEngine(t *testing.T, types []event.Type, opts ...Option) (*Engine, *fakeClock, func() []event.Event) {
	t.Helper()

	bus := event.NewMemoryBus()
	var mu sync.Mutex
	var recorded []event.Event
	for _, typ := range types {
		bus.Subscribe(typ, func(ctx context.Context, ev event.Event) error {
			mu.Lock()
			recorded = append(recorded, ev)
			mu.Unlock()
			return nil
		})
	}
	publisher := event.NewResilientPublisher(bus, event.ResilientConfig{
		MaxRetries: 1,
		RetryDelay: time.Millisecond,
	})

	trackers, err := tracker.NewRegistry()
	require.NoError(t, err)

	clock := newFakeClock(testStart)
	base := []Option{WithClock(clock), WithRand(fixedRand(0.99))}
	eng, err := New(context.Background(), &memStore{}, trackers, publisher, append(base, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = eng.Shutdown(context.Background()) })

	events := func() []event.Event {
		mu.Lock()
		defer mu.Unlock()
		return append([]event.Event(nil), recorded...)
	}
	return eng, clock, events
}

func addQuest(t *testing.T, eng *Engine, in QuestInput) *domain.DailyQuest {
	t.Helper()
	quest, err := eng.AddQuest(context.Background(), in)
	require.NoError(t, err)
	return quest
}

func dailyQuest(title, difficulty string) QuestInput {
	return QuestInput{
		Title:        title,
		Difficulty:   difficulty,
		TargetStats:  []string{"strength", "vitality"},
		Frequency:    "daily",
		TrackingMode: "manual",
	}
}
