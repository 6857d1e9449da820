package app

import (
	"context"
	"fmt"

	"github.com/skillhive-hq/skill-digest/internal/aggregator"
	"github.com/skillhive-hq/skill-digest/internal/config"
	"github.com/skillhive-hq/skill-digest/internal/logger"
	"github.com/skillhive-hq/skill-digest/pkg/sources"
)

// Fetcher is the pool-refresh runtime used by the standalone fetch binary.
type Fetcher struct {
	agg *aggregator.Aggregator
	log logger.Logger
}

// NewFetcher builds a fetch-only runtime from config files.
func NewFetcher(cfg *config.Config, log logger.Logger) (*Fetcher, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = logger.NopLogger{}
	}

	sourceReg, err := sources.LoadRegistry(cfg.SourcesFile)
	if err != nil {
		return nil, fmt.Errorf("load sources registry: %w", err)
	}
	srcs := sourceReg.All()
	if len(srcs) == 0 {
		return nil, fmt.Errorf("no sources configured")
	}
	log.InfoObj("sources registry loaded", "sources_count", len(srcs))

	poolStore := aggregator.NewPoolStore(cfg.PoolPath, log)
	agg := aggregator.New(poolStore, sources.DefaultFetcherRegistry(nil), srcs, cfg.CacheMaxAge, log)

	return &Fetcher{agg: agg, log: log}, nil
}

// Run performs a single fetch-and-merge pass.
func (f *Fetcher) Run(ctx context.Context, forceRefresh bool) error {
	if f == nil || f.agg == nil {
		return fmt.Errorf("fetcher is not initialized")
	}

	skills, stats := f.agg.FetchAndMerge(ctx, forceRefresh)
	f.log.InfoObj("fetch completed", "fetch_stats", map[string]any{
		"total":      len(skills),
		"added":      stats.Added,
		"from_cache": stats.FromCache,
	})
	return nil
}
