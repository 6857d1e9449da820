package sources

import (
	"context"

	"github.com/skillhive-hq/skill-digest/internal/domain"
	"github.com/skillhive-hq/skill-digest/pkg/httpclient"
)

// Fetcher retrieves and normalizes skills for one listing source.
// Concrete implementations live in source-specific files (e.g., awesome.go).
type Fetcher interface {
	ID() string
	Fetch(ctx context.Context, cfg Source) ([]domain.Skill, error)
}

// FetcherRegistry resolves the fetcher implementation for a given source config.
type FetcherRegistry interface {
	FetcherFor(cfg Source) (Fetcher, error)
}

// HTTPClient aliases the shared httpclient.Client interface for clarity within sources.
type HTTPClient = httpclient.Client
