package aggregator

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/skillhive-hq/skill-digest/internal/domain"
	"github.com/skillhive-hq/skill-digest/internal/logger"
)

// PoolStore persists the skill pool as an indented JSON file so operators can
// inspect and hand-edit it.
type PoolStore struct {
	path string
	log  logger.Logger
}

// NewPoolStore builds a store over the given cache file path.
func NewPoolStore(path string, log logger.Logger) *PoolStore {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &PoolStore{path: path, log: log}
}

// Load reads the persisted pool. A missing or corrupt file degrades to an
// empty pool; it never returns an error to the caller.
func (s *PoolStore) Load() domain.Pool {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.WarnObj("skill pool unreadable, starting empty", "pool_error", map[string]any{
				"path":  s.path,
				"error": err.Error(),
			})
		}
		return domain.Pool{}
	}

	var pool domain.Pool
	if err := json.Unmarshal(raw, &pool); err != nil {
		s.log.WarnObj("skill pool corrupt, starting empty", "pool_error", map[string]any{
			"path":  s.path,
			"error": err.Error(),
		})
		return domain.Pool{}
	}
	return pool
}

// Save writes the pool atomically (temp file + rename).
func (s *PoolStore) Save(pool domain.Pool) error {
	dir := filepath.Dir(s.path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create pool directory: %w", err)
		}
	}

	raw, err := json.MarshalIndent(pool, "", "  ")
	if err != nil {
		return fmt.Errorf("encode pool: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("write pool: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace pool: %w", err)
	}
	return nil
}
