package sse

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifequest/engine/internal/event"
)

func waitForEvent(t *testing.T, ch chan Event) Event {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func TestHub_BroadcastReachesAllClients(t *testing.T) {
	hub := NewHub()
	hub.Start()
	defer hub.Stop()

	a := hub.Register(nil)
	b := hub.Register(nil)

	// Registration is async; wait until both are visible
	require.Eventually(t, func() bool { return hub.ClientCount() == 2 }, time.Second, 5*time.Millisecond)

	hub.Broadcast("player.level_up", map[string]int{"new_level": 2})

	for _, c := range []*Client{a, b} {
		ev := waitForEvent(t, c.EventChannel)
		assert.Equal(t, "player.level_up", ev.Type)
		assert.NotEmpty(t, ev.ID)
	}
}

func TestHub_EventFilterLimitsDelivery(t *testing.T) {
	hub := NewHub()
	hub.Start()
	defer hub.Stop()

	filtered := hub.Register([]string{"boss.defeated"})
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	hub.Broadcast("quest.completed", nil)
	hub.Broadcast("boss.defeated", nil)

	ev := waitForEvent(t, filtered.EventChannel)
	assert.Equal(t, "boss.defeated", ev.Type)
	assert.Empty(t, filtered.EventChannel)
}

func TestHub_UnregisterClosesChannel(t *testing.T) {
	hub := NewHub()
	hub.Start()
	defer hub.Stop()

	client := hub.Register(nil)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	hub.Unregister(client.ID)
	require.Eventually(t, func() bool { return hub.ClientCount() == 0 }, time.Second, 5*time.Millisecond)

	_, open := <-client.EventChannel
	assert.False(t, open)
}

func TestFormatSSEMessage(t *testing.T) {
	msg, err := FormatSSEMessage(Event{ID: "abc", Type: "quest.completed", Payload: map[string]string{"title": "Morning workout"}})
	require.NoError(t, err)

	text := string(msg)
	assert.True(t, strings.HasPrefix(text, "id: abc\n"))
	assert.Contains(t, text, "event: quest.completed\n")
	assert.Contains(t, text, `"title":"Morning workout"`)
	assert.True(t, strings.HasSuffix(text, "\n\n"))
}

func TestSubscriber_ForwardsBusEvents(t *testing.T) {
	hub := NewHub()
	hub.Start()
	defer hub.Stop()

	bus := event.NewMemoryBus()
	NewSubscriber(hub, bus).Subscribe()

	client := hub.Register(nil)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	err := bus.Publish(context.Background(), event.NewLevelUpEvent(1, 2, "E", "E"))
	require.NoError(t, err)

	ev := waitForEvent(t, client.EventChannel)
	assert.Equal(t, string(event.LevelUp), ev.Type)
}
