package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/skillhive-hq/skill-digest/internal/aggregator"
	"github.com/skillhive-hq/skill-digest/internal/config"
	"github.com/skillhive-hq/skill-digest/internal/enrich"
	"github.com/skillhive-hq/skill-digest/internal/generator"
	"github.com/skillhive-hq/skill-digest/internal/ledger"
	"github.com/skillhive-hq/skill-digest/internal/logger"
	"github.com/skillhive-hq/skill-digest/internal/selector"
	"github.com/skillhive-hq/skill-digest/internal/storage"
	"github.com/skillhive-hq/skill-digest/pkg/publishers"
	"github.com/skillhive-hq/skill-digest/pkg/sources"
)

// Digest is the daily-cycle runtime. It refreshes the skill pool, selects
// one skill, generates an article, fans it out to the configured sinks, and
// records the publication only when at least one sink confirmed delivery.
type Digest struct {
	cfg       *config.Config
	agg       *aggregator.Aggregator
	led       *ledger.Ledger
	sel       *selector.Selector
	enricher  *enrich.Enricher
	generator generator.Generator
	fanout    *publishers.Fanout
	interval  time.Duration
	log       logger.Logger
	store     storage.Store
}

// NewDigest builds the digest runtime from config files.
func NewDigest(ctx context.Context, cfg *config.Config, log logger.Logger) (*Digest, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	sourceReg, err := sources.LoadRegistry(cfg.SourcesFile)
	if err != nil {
		return nil, fmt.Errorf("load sources registry: %w", err)
	}
	srcs := sourceReg.All()
	sourceIDs := make([]string, 0, len(srcs))
	for _, s := range srcs {
		sourceIDs = append(sourceIDs, s.ID)
	}
	log.InfoObj("sources registry loaded", "sources_meta", map[string]any{
		"count": len(sourceIDs),
		"ids":   sourceIDs,
	})

	publisherReg, err := publishers.LoadRegistry(cfg.PublishersFile)
	if err != nil {
		return nil, fmt.Errorf("load publishers registry: %w", err)
	}
	enabledPublishers := publisherReg.Enabled()
	if len(enabledPublishers) == 0 {
		return nil, fmt.Errorf("no publishers configured")
	}

	pubClients, err := publishers.BuildAll(ctx, publishers.DefaultRegistry(), enabledPublishers, log)
	if err != nil {
		return nil, fmt.Errorf("build publishers: %w", err)
	}
	fanout := publishers.NewFanout(pubClients)
	publisherSummaries := make([]map[string]string, 0, len(enabledPublishers))
	for _, pubCfg := range enabledPublishers {
		publisherSummaries = append(publisherSummaries, map[string]string{
			"id":   pubCfg.ID,
			"type": pubCfg.Type,
		})
	}
	log.InfoObj("publishers registry loaded", "publishers_meta", map[string]any{
		"count":      len(publisherSummaries),
		"publishers": publisherSummaries,
	})

	store, err := storage.NewStore("bbolt", cfg.DetailCachePath, storage.Options{
		DetailTTL:       cfg.DetailTTL,
		CleanupInterval: cfg.DetailCleanupInterval,
	})
	if err != nil {
		return nil, fmt.Errorf("init detail cache: %w", err)
	}

	poolStore := aggregator.NewPoolStore(cfg.PoolPath, log)
	agg := aggregator.New(poolStore, sources.DefaultFetcherRegistry(nil), srcs, cfg.CacheMaxAge, log)

	led := ledger.New(cfg.LedgerPath, log)
	sel := selector.New(led, log,
		selector.WithWeights(selector.Weights{
			Base:            cfg.ScoreBase,
			CategoryPenalty: cfg.ScoreCategoryPenalty,
			DescriptionBump: cfg.ScoreDescriptionBump,
			SourceBonus:     cfg.ScoreSourceBonus,
			JitterRange:     cfg.ScoreJitterRange,
		}),
		selector.WithWindows(cfg.RecentCategoryDays, cfg.ResetRetentionDays),
		selector.WithPrimarySource(cfg.PrimarySource),
	)

	gen := generator.NewOpenRouterGenerator(generator.OpenRouterConfig{
		APIKey:      cfg.OpenRouterAPIKey,
		URL:         cfg.OpenRouterURL,
		Model:       cfg.OpenRouterModel,
		BackupModel: cfg.OpenRouterBackupModel,
		Author:      cfg.ArticleAuthor,
	}, log)

	return &Digest{
		cfg:       cfg,
		agg:       agg,
		led:       led,
		sel:       sel,
		enricher:  enrich.New(nil, store, log),
		generator: gen,
		fanout:    fanout,
		interval:  cfg.DigestInterval,
		log:       log,
		store:     store,
	}, nil
}

// Run executes digest cycles until the context is cancelled.
func (d *Digest) Run(ctx context.Context) error {
	if d == nil || d.sel == nil {
		return fmt.Errorf("digest is not initialized")
	}
	defer d.closeStore()

	d.log.InfoObj("digest loop starting", "digest_state", map[string]any{
		"publishers_count": d.fanout.Size(),
		"interval":         d.interval.String(),
	})

	if err := d.RunOnce(ctx, false); err != nil {
		d.log.ErrorObj("initial digest cycle failed", "error", err.Error())
	}

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			d.log.InfoObj("digest loop exiting", "reason", ctx.Err())
			return nil
		case <-ticker.C:
			if err := d.RunOnce(ctx, false); err != nil {
				d.log.ErrorObj("digest cycle failed", "error", err.Error())
			}
		}
	}
}

// RunOnce performs a single digest cycle. An exhausted pool skips the cycle
// without error; a downstream generation/delivery failure returns an error
// and leaves the selected skill eligible for the next cycle.
func (d *Digest) RunOnce(ctx context.Context, forceRefresh bool) error {
	start := time.Now()

	skills, stats := d.agg.FetchAndMerge(ctx, forceRefresh)
	d.log.InfoObj("pool refreshed", "pool_stats", map[string]any{
		"total":      stats.Total,
		"added":      stats.Added,
		"from_cache": stats.FromCache,
	})

	result, err := d.sel.Select(skills)
	if err != nil {
		if errors.Is(err, selector.ErrNoCandidates) {
			d.log.WarnObj("digest cycle skipped", "reason", "no eligible skills")
			return nil
		}
		return fmt.Errorf("select skill: %w", err)
	}

	if err := selector.SaveResult(d.cfg.SelectionPath, result); err != nil {
		d.log.ErrorObj("persist selection failed", "error", err.Error())
	}

	detail := d.enricher.Detail(ctx, result.Skill)

	article, err := d.generator.Generate(ctx, result.Skill, detail)
	if err != nil {
		return fmt.Errorf("generate article: %w", err)
	}

	evt := publishers.NewEvent(result.Skill, article.Title, article.Markdown, article.Author)
	delivered, err := d.fanout.Publish(ctx, evt)
	if delivered == 0 {
		if err != nil {
			return fmt.Errorf("publish article: %w", err)
		}
		return fmt.Errorf("publish article: no publisher accepted the event")
	}
	if err != nil {
		d.log.WarnObj("partial publish failure", "publish_errors", err.Error())
	}

	if err := d.led.Record(result.Skill); err != nil {
		return fmt.Errorf("record publication: %w", err)
	}

	d.log.InfoObj("digest cycle completed", "cycle_meta", map[string]any{
		"skill":      result.Skill.Name,
		"score":      result.Score,
		"delivered":  delivered,
		"elapsed_ms": time.Since(start).Milliseconds(),
	})
	return nil
}

// closeStore safely closes the detail cache, logging any errors encountered.
func (d *Digest) closeStore() {
	if d == nil || d.store == nil {
		return
	}
	if err := d.store.Close(); err != nil {
		d.log.ErrorObj("detail cache close failed", "error", err.Error())
	}
}
