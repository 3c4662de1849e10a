package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifequest/engine/internal/engine"
	"github.com/lifequest/engine/internal/store"
	"github.com/lifequest/engine/internal/tracker"
)

func newTestHandler(t *testing.T) (http.Handler, *engine.Engine) {
	t.Helper()

	st, err := store.NewMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	trackers, err := tracker.NewRegistry()
	require.NoError(t, err)

	eng, err := engine.New(context.Background(), st, trackers, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = eng.Shutdown(context.Background()) })

	srv := NewServer(0, eng, st, nil)
	return srv.httpServer.Handler, eng
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(rec.Body).Decode(out))
}

func TestHealthz(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := doJSON(t, h, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp HealthResponse
	decodeBody(t, rec, &resp)
	assert.Equal(t, "ok", resp.Status)
}

type failingPinger struct{}

func (failingPinger) Ping(ctx context.Context) error { return errors.New("storage down") }

func TestReadyz_ReportsStorageState(t *testing.T) {
	h, eng := newTestHandler(t)
	rec := doJSON(t, h, http.MethodGet, "/readyz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	broken := NewServer(0, eng, failingPinger{}, nil)
	rec = doJSON(t, broken.httpServer.Handler, http.MethodGet, "/readyz", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestGetPlayer(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := doJSON(t, h, http.MethodGet, "/api/v1/player", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var player struct {
		Level int `json:"level"`
		MaxHP int `json:"max_hp"`
	}
	decodeBody(t, rec, &player)
	assert.Equal(t, 1, player.Level)
	assert.Equal(t, 100, player.MaxHP)
}

func TestQuestLifecycleOverHTTP(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := doJSON(t, h, http.MethodPost, "/api/v1/quests/", addQuestRequest{
		Title:        "Morning workout",
		Difficulty:   "medium",
		TargetStats:  []string{"strength"},
		Frequency:    "daily",
		TrackingMode: "manual",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var quest struct {
		ID string `json:"id"`
	}
	decodeBody(t, rec, &quest)
	require.NotEmpty(t, quest.ID)

	rec = doJSON(t, h, http.MethodGet, "/api/v1/quests/", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/api/v1/quests/"+quest.ID+"/complete", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var result struct {
		Success   bool  `json:"success"`
		XPAwarded int64 `json:"xp_awarded"`
	}
	decodeBody(t, rec, &result)
	assert.True(t, result.Success)
	assert.Equal(t, int64(250), result.XPAwarded)

	// Second completion inside the same cycle conflicts
	rec = doJSON(t, h, http.MethodPost, "/api/v1/quests/"+quest.ID+"/complete", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(t, h, http.MethodDelete, "/api/v1/quests/"+quest.ID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAddQuest_BadRequests(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := doJSON(t, h, http.MethodPost, "/api/v1/quests/", addQuestRequest{
		Title:        "Bad",
		Difficulty:   "impossible",
		TargetStats:  []string{"strength"},
		Frequency:    "daily",
		TrackingMode: "manual",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/quests/", bytes.NewBufferString("{not json"))
	rec2 := httptest.NewRecorder()
	h.ServeHTTP(rec2, req)
	assert.Equal(t, http.StatusBadRequest, rec2.Code)
}

func TestCompleteQuest_UnknownAndMalformedIDs(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := doJSON(t, h, http.MethodPost, "/api/v1/quests/00000000-0000-0000-0000-000000000001/complete", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/api/v1/quests/not-a-uuid/complete", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUndoOverHTTP(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := doJSON(t, h, http.MethodGet, "/api/v1/undo/", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/api/v1/quests/", addQuestRequest{
		Title:        "Morning workout",
		Difficulty:   "medium",
		TargetStats:  []string{"strength"},
		Frequency:    "daily",
		TrackingMode: "manual",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var quest struct {
		ID string `json:"id"`
	}
	decodeBody(t, rec, &quest)

	rec = doJSON(t, h, http.MethodPost, "/api/v1/quests/"+quest.ID+"/complete", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/api/v1/undo/", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/api/v1/undo/", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Nothing left to undo
	rec = doJSON(t, h, http.MethodPost, "/api/v1/undo/", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestDungeonOverHTTP(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := doJSON(t, h, http.MethodGet, "/api/v1/dungeon/", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/api/v1/dungeon/start", startDungeonRequest{Title: "Deep work", DurationMinutes: 25})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/api/v1/dungeon/start", startDungeonRequest{Title: "Another", DurationMinutes: 10})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/api/v1/dungeon/start", startDungeonRequest{Title: "No time", DurationMinutes: 0})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Duration has not elapsed yet
	rec = doJSON(t, h, http.MethodPost, "/api/v1/dungeon/complete", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/api/v1/dungeon/abandon", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/api/v1/dungeon/abandon", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBossOverHTTP(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := doJSON(t, h, http.MethodPost, "/api/v1/bosses/", addBossRequest{
		Title:      "Thesis Dragon",
		Difficulty: "medium",
		MaxHP:      100,
		MicroTasks: []string{"Write outline"},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var boss struct {
		ID         string `json:"id"`
		MicroTasks []struct {
			ID string `json:"id"`
		} `json:"micro_tasks"`
	}
	decodeBody(t, rec, &boss)
	require.Len(t, boss.MicroTasks, 1)

	rec = doJSON(t, h, http.MethodPost, "/api/v1/bosses/"+boss.ID+"/tasks/"+boss.MicroTasks[0].ID+"/complete", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// No dynamic goal configured
	rec = doJSON(t, h, http.MethodPost, "/api/v1/bosses/"+boss.ID+"/goal", updateGoalRequest{Value: 5})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/api/v1/bosses/", addBossRequest{Title: "", Difficulty: "medium", MaxHP: 10})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLootAndPenaltiesOverHTTP(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := doJSON(t, h, http.MethodGet, "/api/v1/loot/", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/api/v1/loot/00000000-0000-0000-0000-000000000001/open", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/api/v1/penalties/", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/api/v1/penalties/00000000-0000-0000-0000-000000000001/complete", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSyncOverHTTP(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := doJSON(t, h, http.MethodGet, "/api/v1/sync/export", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/api/v1/sync/export?device_id=phone-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.Bytes()

	var snap map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(body, &snap))
	assert.Contains(t, snap, "state")
	assert.Contains(t, snap, "device_id")

	// Round-trip the exported snapshot back through import
	req := httptest.NewRequest(http.MethodPost, "/api/v1/sync/import", bytes.NewReader(body))
	rec2 := httptest.NewRecorder()
	h.ServeHTTP(rec2, req)
	assert.Equal(t, http.StatusOK, rec2.Code)

	rec = doJSON(t, h, http.MethodPost, "/api/v1/sync/import", map[string]any{"state": nil})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReconcileOverHTTP(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := doJSON(t, h, http.MethodPost, "/api/v1/reconcile", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var result struct {
		RolledOver   int `json:"rolled_over"`
		MissedQuests int `json:"missed_quests"`
	}
	decodeBody(t, rec, &result)
	assert.Zero(t, result.MissedQuests)
}

func TestCompanionAndActivity(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := doJSON(t, h, http.MethodGet, "/api/v1/companion", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var mirror struct {
		Level int `json:"level"`
		MaxHP int `json:"max_hp"`
	}
	decodeBody(t, rec, &mirror)
	assert.Equal(t, 1, mirror.Level)

	rec = doJSON(t, h, http.MethodGet, "/api/v1/activity", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
