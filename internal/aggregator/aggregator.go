package aggregator

import (
	"context"
	"time"

	"github.com/skillhive-hq/skill-digest/internal/domain"
	"github.com/skillhive-hq/skill-digest/internal/logger"
	"github.com/skillhive-hq/skill-digest/pkg/sources"
)

// Aggregator owns the durable skill pool: it refreshes the pool from the
// configured sources, merges by URL identity (first seen wins), and persists
// the result. Source and storage failures degrade gracefully; they never
// abort a cycle.
type Aggregator struct {
	store    *PoolStore
	registry sources.FetcherRegistry
	srcs     []sources.Source
	maxAge   time.Duration
	log      logger.Logger
	now      func() time.Time
}

// MergeStats reports the outcome of one FetchAndMerge pass.
type MergeStats struct {
	Total     int
	Added     int
	FromCache bool
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) {
		if now != nil {
			a.now = now
		}
	}
}

// New builds an aggregator over the given pool store, fetcher registry, and
// source configs.
func New(store *PoolStore, registry sources.FetcherRegistry, srcs []sources.Source, maxAge time.Duration, log logger.Logger, opts ...Option) *Aggregator {
	if log == nil {
		log = logger.NopLogger{}
	}
	a := &Aggregator{
		store:    store,
		registry: registry,
		srcs:     srcs,
		maxAge:   maxAge,
		log:      log,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Load returns the persisted pool, or an empty pool when the cache file is
// missing or unreadable.
func (a *Aggregator) Load() domain.Pool {
	return a.store.Load()
}

// IsFresh reports whether the pool was updated within the freshness window.
func (a *Aggregator) IsFresh(pool domain.Pool) bool {
	if pool.LastUpdated == nil {
		return false
	}
	return a.now().Sub(*pool.LastUpdated) < a.maxAge
}

// FetchAndMerge refreshes the pool from all sources and merges the results.
// When the cached pool is fresh and forceRefresh is false, no source is
// contacted and the cached skills are returned unchanged. A failing source
// contributes zero skills; a failing persist still returns the merged pool.
func (a *Aggregator) FetchAndMerge(ctx context.Context, forceRefresh bool) ([]domain.Skill, MergeStats) {
	pool := a.store.Load()

	if !forceRefresh && a.IsFresh(pool) {
		age := time.Duration(0)
		if pool.LastUpdated != nil {
			age = a.now().Sub(*pool.LastUpdated)
		}
		a.log.InfoObj("using cached skill pool", "cache_meta", map[string]any{
			"skills":    len(pool.Skills),
			"age_hours": age.Hours(),
		})
		return pool.Skills, MergeStats{Total: len(pool.Skills), FromCache: true}
	}

	a.log.InfoObj("refreshing skill pool", "refresh_meta", map[string]any{
		"sources":       len(a.srcs),
		"force_refresh": forceRefresh,
	})

	fetched := a.fetchAll(ctx)
	merged, added := mergeSkills(pool.Skills, fetched)

	now := a.now()
	pool.Skills = merged
	pool.LastUpdated = &now

	if err := a.store.Save(pool); err != nil {
		a.log.ErrorObj("persist skill pool failed", "error", err.Error())
	}

	stats := MergeStats{Total: len(merged), Added: added}
	a.log.InfoObj("skill pool merged", "merge_stats", map[string]any{
		"total": stats.Total,
		"added": stats.Added,
	})
	return merged, stats
}

// fetchAll collects skills from every source, isolating per-source failures.
func (a *Aggregator) fetchAll(ctx context.Context) []domain.Skill {
	var collected []domain.Skill

	for _, src := range a.srcs {
		fetcher, err := a.registry.FetcherFor(src)
		if err != nil {
			a.log.ErrorObj("source fetch failed", "source_error", map[string]any{
				"source_id": src.ID,
				"error":     err.Error(),
			})
			continue
		}

		skills, err := fetcher.Fetch(ctx, src)
		if err != nil {
			a.log.ErrorObj("source fetch failed", "source_error", map[string]any{
				"source_id": src.ID,
				"error":     err.Error(),
			})
			continue
		}

		a.log.InfoObj("source fetch completed", "source_result", map[string]any{
			"source_id": src.ID,
			"skills":    len(skills),
		})
		collected = append(collected, skills...)
	}

	return collected
}

// mergeSkills folds new skills into the existing list, keyed by URL.
// Earlier entries win; later duplicates never overwrite fields. Skills
// failing boundary validation are dropped.
func mergeSkills(existing, fetched []domain.Skill) ([]domain.Skill, int) {
	merged := make([]domain.Skill, 0, len(existing)+len(fetched))
	known := make(map[string]bool, len(existing))

	for _, skill := range existing {
		if !skill.Valid() || known[skill.URL] {
			continue
		}
		known[skill.URL] = true
		merged = append(merged, normalizeSkill(skill))
	}

	added := 0
	for _, skill := range fetched {
		if !skill.Valid() || known[skill.URL] {
			continue
		}
		known[skill.URL] = true
		merged = append(merged, normalizeSkill(skill))
		added++
	}

	return merged, added
}

func normalizeSkill(s domain.Skill) domain.Skill {
	if s.Category == "" {
		s.Category = domain.DefaultCategory
	}
	return s
}
