package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/lifequest/engine/internal/domain"
	"github.com/lifequest/engine/internal/engine"
	"github.com/lifequest/engine/internal/logger"
)

// HealthResponse represents the response for health endpoints
type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// handleHealthz provides a basic liveness check
func handleHealthz() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
	}
}

// handleReadyz provides a readiness check that validates storage connectivity
func handleReadyz(pinger Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := pinger.Ping(ctx); err != nil {
			logger.FromContext(r.Context()).Error("Readiness check failed", "error", err)
			respondJSON(w, http.StatusServiceUnavailable, HealthResponse{
				Status:  "unavailable",
				Message: "storage connection failed",
			})
			return
		}

		respondJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
	}
}

// urlID parses the {id} path parameter. Responds with 400 and returns false
// on a malformed id.
func urlID(w http.ResponseWriter, r *http.Request, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid id")
		return uuid.Nil, false
	}
	return id, true
}

// statusForMessage maps result-struct failure messages to HTTP status codes
func statusForMessage(message string) int {
	switch message {
	case domain.ErrMsgQuestNotFound, domain.ErrMsgBossNotFound,
		domain.ErrMsgTaskNotFound, domain.ErrMsgLootNotFound:
		return http.StatusNotFound
	default:
		return http.StatusConflict
	}
}

func handleGetPlayer(eng *engine.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, eng.Player())
	}
}

func handleGetCompanion(eng *engine.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, eng.CompanionMirror())
	}
}

func handleGetActivity(eng *engine.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, eng.ActivityLog())
	}
}

func handleListQuests(eng *engine.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, eng.Quests())
	}
}

type addQuestRequest struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Difficulty   string   `json:"difficulty"`
	TargetStats  []string `json:"target_stats"`
	Frequency    string   `json:"frequency"`
	TrackingMode string   `json:"tracking_mode"`
	TargetValue  float64  `json:"target_value"`
	TargetUnit   string   `json:"target_unit"`
	Optional     bool     `json:"optional"`
}

func handleAddQuest(eng *engine.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		var req addQuestRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Error("Failed to decode add quest request", "error", err)
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		quest, err := eng.AddQuest(r.Context(), engine.QuestInput{
			Title:        req.Title,
			Description:  req.Description,
			Difficulty:   req.Difficulty,
			TargetStats:  req.TargetStats,
			Frequency:    req.Frequency,
			TrackingMode: req.TrackingMode,
			TargetValue:  req.TargetValue,
			TargetUnit:   req.TargetUnit,
			Optional:     req.Optional,
		})
		if err != nil {
			log.Warn("Failed to add quest", "error", err, "title", req.Title)
			respondError(w, statusForError(err), err.Error())
			return
		}

		respondJSON(w, http.StatusCreated, quest)
	}
}

func handleRemoveQuest(eng *engine.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := urlID(w, r, "id")
		if !ok {
			return
		}

		if err := eng.RemoveQuest(r.Context(), id); err != nil {
			respondError(w, statusForError(err), err.Error())
			return
		}

		respondJSON(w, http.StatusOK, SuccessResponse{Message: "Quest removed"})
	}
}

func handleCompleteQuest(eng *engine.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := urlID(w, r, "id")
		if !ok {
			return
		}

		result := eng.CompleteQuest(r.Context(), id)
		if !result.Success {
			respondJSON(w, statusForMessage(result.Message), result)
			return
		}

		respondJSON(w, http.StatusOK, result)
	}
}

type setProgressRequest struct {
	Progress float64 `json:"progress"`
}

func handleSetProgress(eng *engine.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := urlID(w, r, "id")
		if !ok {
			return
		}

		var req setProgressRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		result := eng.SetQuestProgress(r.Context(), id, req.Progress)
		if !result.Success {
			respondJSON(w, statusForMessage(result.Message), result)
			return
		}

		respondJSON(w, http.StatusOK, result)
	}
}

func handleGetUndo(eng *engine.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		info, ok := eng.PendingUndo()
		if !ok {
			respondError(w, http.StatusNotFound, domain.ErrMsgNothingToUndo)
			return
		}
		respondJSON(w, http.StatusOK, info)
	}
}

func handleUndo(eng *engine.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result := eng.UndoLastCompletion(r.Context())
		if !result.Success {
			respondJSON(w, http.StatusConflict, result)
			return
		}
		respondJSON(w, http.StatusOK, result)
	}
}

func handleListBosses(eng *engine.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, eng.Bosses())
	}
}

type goalRequest struct {
	Kind        string  `json:"kind"`
	Cadence     string  `json:"cadence"`
	StartValue  float64 `json:"start_value"`
	TargetValue float64 `json:"target_value"`
	SubTarget   float64 `json:"sub_target"`
	Unit        string  `json:"unit"`
}

type addBossRequest struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Difficulty  string       `json:"difficulty"`
	TargetStats []string     `json:"target_stats"`
	MaxHP       float64      `json:"max_hp"`
	LinkedIDs   []uuid.UUID  `json:"linked_ids"`
	MicroTasks  []string     `json:"micro_tasks"`
	Deadline    *time.Time   `json:"deadline"`
	Goal        *goalRequest `json:"goal"`
}

func handleAddBoss(eng *engine.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		var req addBossRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Error("Failed to decode add boss request", "error", err)
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		in := engine.BossInput{
			Title:       req.Title,
			Description: req.Description,
			Difficulty:  req.Difficulty,
			TargetStats: req.TargetStats,
			MaxHP:       req.MaxHP,
			LinkedIDs:   req.LinkedIDs,
			MicroTasks:  req.MicroTasks,
			Deadline:    req.Deadline,
		}
		if req.Goal != nil {
			in.Goal = &engine.GoalInput{
				Kind:        req.Goal.Kind,
				Cadence:     req.Goal.Cadence,
				StartValue:  req.Goal.StartValue,
				TargetValue: req.Goal.TargetValue,
				SubTarget:   req.Goal.SubTarget,
				Unit:        req.Goal.Unit,
			}
		}

		boss, err := eng.AddBoss(r.Context(), in)
		if err != nil {
			log.Warn("Failed to add boss", "error", err, "title", req.Title)
			respondError(w, statusForError(err), err.Error())
			return
		}

		respondJSON(w, http.StatusCreated, boss)
	}
}

func handleCompleteMicroTask(eng *engine.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bossID, ok := urlID(w, r, "id")
		if !ok {
			return
		}
		taskID, ok := urlID(w, r, "taskID")
		if !ok {
			return
		}

		result := eng.CompleteMicroTask(r.Context(), bossID, taskID)
		if !result.Success {
			respondJSON(w, statusForMessage(result.Message), result)
			return
		}
		respondJSON(w, http.StatusOK, result)
	}
}

type updateGoalRequest struct {
	Value float64 `json:"value"`
}

func handleUpdateGoal(eng *engine.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bossID, ok := urlID(w, r, "id")
		if !ok {
			return
		}

		var req updateGoalRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		result := eng.UpdateDynamicGoalValue(r.Context(), bossID, req.Value)
		if !result.Success {
			respondJSON(w, statusForMessage(result.Message), result)
			return
		}
		respondJSON(w, http.StatusOK, result)
	}
}

func handleListLoot(eng *engine.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, eng.PendingLoot())
	}
}

func handleOpenLoot(eng *engine.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := urlID(w, r, "id")
		if !ok {
			return
		}

		result := eng.OpenLootBox(r.Context(), id)
		if !result.Success {
			respondJSON(w, statusForMessage(result.Message), result)
			return
		}
		respondJSON(w, http.StatusOK, result)
	}
}

func handleListPenalties(eng *engine.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, eng.PendingPenalties())
	}
}

func handleCompletePenalty(eng *engine.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := urlID(w, r, "id")
		if !ok {
			return
		}

		if err := eng.CompletePenaltyQuest(r.Context(), id); err != nil {
			respondError(w, statusForError(err), err.Error())
			return
		}
		respondJSON(w, http.StatusOK, SuccessResponse{Message: "Penalty quest completed"})
	}
}

func handleGetDungeon(eng *engine.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := eng.ActiveDungeon()
		if !ok {
			respondError(w, http.StatusNotFound, domain.ErrMsgNoActiveDungeon)
			return
		}
		respondJSON(w, http.StatusOK, session)
	}
}

type startDungeonRequest struct {
	Title           string `json:"title"`
	DurationMinutes int    `json:"duration_minutes"`
}

func handleStartDungeon(eng *engine.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req startDungeonRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.DurationMinutes <= 0 {
			respondError(w, http.StatusBadRequest, "duration_minutes must be positive")
			return
		}

		session, err := eng.StartDungeon(r.Context(), req.Title, time.Duration(req.DurationMinutes)*time.Minute)
		if err != nil {
			respondError(w, statusForError(err), err.Error())
			return
		}
		respondJSON(w, http.StatusCreated, session)
	}
}

func handleCompleteDungeon(eng *engine.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := eng.CompleteDungeon(r.Context())
		if err != nil {
			respondError(w, statusForError(err), err.Error())
			return
		}
		respondJSON(w, http.StatusOK, result)
	}
}

func handleAbandonDungeon(eng *engine.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := eng.AbandonDungeon(r.Context()); err != nil {
			respondError(w, statusForError(err), err.Error())
			return
		}
		respondJSON(w, http.StatusOK, SuccessResponse{Message: "Dungeon abandoned"})
	}
}

func handleExportSnapshot(eng *engine.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		deviceID := r.URL.Query().Get("device_id")
		if deviceID == "" {
			respondError(w, http.StatusBadRequest, "device_id is required")
			return
		}
		respondJSON(w, http.StatusOK, eng.ExportSnapshot(deviceID))
	}
}

func handleImportSnapshot(eng *engine.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		var snap domain.Snapshot
		if err := json.NewDecoder(r.Body).Decode(&snap); err != nil {
			log.Error("Failed to decode snapshot", "error", err)
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		if err := eng.ApplySnapshot(r.Context(), &snap); err != nil {
			log.Warn("Failed to apply snapshot", "error", err, "device_id", snap.DeviceID)
			respondError(w, statusForError(err), err.Error())
			return
		}

		respondJSON(w, http.StatusOK, SuccessResponse{Message: "Snapshot applied"})
	}
}

func handleReconcile(eng *engine.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, eng.Reconcile(r.Context()))
	}
}
