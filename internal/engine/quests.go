package engine

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/lifequest/engine/internal/config"
	"github.com/lifequest/engine/internal/cycle"
	"github.com/lifequest/engine/internal/domain"
	"github.com/lifequest/engine/internal/logger"
)

// QuestInput is the validated payload for creating a quest
type QuestInput struct {
	Title        string   `validate:"required,max=120"`
	Description  string   `validate:"max=500"`
	Difficulty   string   `validate:"required"`
	TargetStats  []string `validate:"required,min=1,max=3,dive,oneof=strength intellect discipline vitality charisma"`
	Frequency    string   `validate:"required"`
	TrackingMode string   `validate:"required,oneof=manual health location screen"`
	TargetValue  float64  `validate:"gte=0"`
	TargetUnit   string   `validate:"max=30"`
	Optional     bool
}

// AddQuest validates the input and adds a new quest, scheduled for its next
// recurrence boundary. Invalid configuration is rejected before any mutation.
func (e *Engine) AddQuest(ctx context.Context, in QuestInput) (*domain.DailyQuest, error) {
	if err := e.validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidConfiguration, err)
	}
	difficulty, err := domain.ParseDifficulty(in.Difficulty)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidConfiguration, err)
	}
	frequency, err := domain.ParseFrequency(in.Frequency)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidConfiguration, err)
	}

	stats := make([]domain.StatType, 0, len(in.TargetStats))
	for _, s := range in.TargetStats {
		stats = append(stats, domain.StatType(s))
	}

	e.mu.Lock()
	now := e.clock.Now()
	quest := &domain.DailyQuest{
		ID:           uuid.New(),
		Title:        in.Title,
		Description:  in.Description,
		Difficulty:   difficulty,
		TargetStats:  stats,
		Frequency:    frequency,
		TrackingMode: domain.TrackingMode(in.TrackingMode),
		Status:       domain.QuestAvailable,
		TargetValue:  in.TargetValue,
		TargetUnit:   in.TargetUnit,
		Optional:     in.Optional,
		CreatedAt:    now,
		ExpiresAt:    cycle.NextReset(frequency, now),
	}
	e.state.Quests = append(e.state.Quests, quest)
	fx := &effects{}
	e.markSave(fx)
	result := quest.Clone()
	e.mu.Unlock()

	e.applyEffects(ctx, fx)
	logger.FromContext(ctx).Info("Quest added", "quest_id", result.ID, "title", result.Title)
	return result, nil
}

// AddQuestFromTemplate creates a quest from a validated config template
func (e *Engine) AddQuestFromTemplate(ctx context.Context, tmpl config.QuestTemplate) (*domain.DailyQuest, error) {
	return e.AddQuest(ctx, QuestInput{
		Title:        tmpl.Title,
		Description:  tmpl.Description,
		Difficulty:   tmpl.Difficulty,
		TargetStats:  tmpl.TargetStats,
		Frequency:    tmpl.Frequency,
		TrackingMode: tmpl.TrackingMode,
		TargetValue:  tmpl.TargetValue,
		TargetUnit:   tmpl.TargetUnit,
		Optional:     tmpl.Optional,
	})
}

// RemoveQuest deletes a quest and clears any boss links pointing at it
func (e *Engine) RemoveQuest(ctx context.Context, id uuid.UUID) error {
	e.mu.Lock()
	idx := -1
	for i, q := range e.state.Quests {
		if q.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		e.mu.Unlock()
		return domain.ErrQuestNotFound
	}

	e.state.Quests = append(e.state.Quests[:idx], e.state.Quests[idx+1:]...)
	for _, b := range e.state.Bosses {
		for i, linked := range b.LinkedIDs {
			if linked == id {
				b.LinkedIDs = append(b.LinkedIDs[:i], b.LinkedIDs[i+1:]...)
				break
			}
		}
	}

	fx := &effects{}
	e.markSave(fx)
	e.mu.Unlock()

	e.applyEffects(ctx, fx)
	return nil
}
