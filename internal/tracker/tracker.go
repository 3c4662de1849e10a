// Package tracker connects automatically tracked quests to their external
// progress providers. The engine only ever consumes the normalized [0,1]
// value a provider reports; how it is measured is the provider's business.
package tracker

import (
	"context"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/lifequest/engine/internal/domain"
	"github.com/lifequest/engine/internal/logger"
)

// Provider reports a quest's normalized completion fraction for the current
// cycle window.
type Provider interface {
	Progress(ctx context.Context, quest *domain.DailyQuest) (float64, error)
}

// ProviderFunc adapts a function to the Provider interface
type ProviderFunc func(ctx context.Context, quest *domain.DailyQuest) (float64, error)

func (f ProviderFunc) Progress(ctx context.Context, quest *domain.DailyQuest) (float64, error) {
	return f(ctx, quest)
}

// sampleCacheSize bounds the per-quest sample cache
const sampleCacheSize = 256

// Sample is one cached provider reading
type Sample struct {
	Progress float64
	TakenAt  time.Time
}

// Registry maps tracking modes to providers and caches the latest sample per
// quest so readers can inspect tracker state without re-hitting providers.
type Registry struct {
	providers map[domain.TrackingMode]Provider
	samples   *lru.Cache[uuid.UUID, Sample]
}

// NewRegistry creates an empty provider registry
func NewRegistry() (*Registry, error) {
	cache, err := lru.New[uuid.UUID, Sample](sampleCacheSize)
	if err != nil {
		return nil, err
	}
	return &Registry{
		providers: make(map[domain.TrackingMode]Provider),
		samples:   cache,
	}, nil
}

// Register installs a provider for a tracking mode
func (r *Registry) Register(mode domain.TrackingMode, p Provider) {
	r.providers[mode] = p
}

// Sample fetches the current progress for an automatically tracked quest.
// A missing or failing provider is "no progress this cycle": ok is false and
// the quest is left alone.
func (r *Registry) Sample(ctx context.Context, quest *domain.DailyQuest, now time.Time) (float64, bool) {
	if !quest.TrackingMode.IsAutomatic() {
		return 0, false
	}

	provider, registered := r.providers[quest.TrackingMode]
	if !registered {
		return 0, false
	}

	progress, err := provider.Progress(ctx, quest)
	if err != nil {
		logger.FromContext(ctx).Warn("Tracker sample failed",
			"quest_id", quest.ID,
			"mode", quest.TrackingMode,
			"error", err)
		return 0, false
	}

	if progress < 0 {
		progress = 0
	}
	if progress > 1 {
		progress = 1
	}

	r.samples.Add(quest.ID, Sample{Progress: progress, TakenAt: now})
	return progress, true
}

// LastSample returns the cached reading for a quest, if any
func (r *Registry) LastSample(questID uuid.UUID) (Sample, bool) {
	return r.samples.Get(questID)
}
