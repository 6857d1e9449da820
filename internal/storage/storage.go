package storage

import (
	"fmt"
	"strings"
	"time"
)

// Package storage provides the local detail-text cache abstraction.

// Store caches fetched skill detail text keyed by skill URL.
type Store interface {
	Close() error
	GetDetail(url string) (string, bool, error)
	PutDetail(url, detail string) error
}

// Options controls retention characteristics for concrete store implementations.
type Options struct {
	DetailTTL       time.Duration
	CleanupInterval time.Duration
}

const (
	defaultDetailTTL       = 5 * 24 * time.Hour
	defaultCleanupInterval = 12 * time.Hour
)

// NewStore creates the configured storage backend.
func NewStore(typ, path string, opts Options) (Store, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))
	opts = normalizeOptions(opts)

	switch typ {
	case "", "none", "disabled":
		return noopStore{}, nil
	case "bbolt":
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt storage requires a path")
		}
		return openBolt(path, opts)
	default:
		return nil, fmt.Errorf("unsupported storage type %q", typ)
	}
}

func normalizeOptions(opts Options) Options {
	if opts.DetailTTL <= 0 {
		opts.DetailTTL = defaultDetailTTL
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = defaultCleanupInterval
	}
	return opts
}

type noopStore struct{}

func (noopStore) Close() error { return nil }

func (noopStore) GetDetail(string) (string, bool, error) { return "", false, nil }

func (noopStore) PutDetail(string, string) error { return nil }
