package ledger

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/skillhive-hq/skill-digest/internal/domain"
	"github.com/skillhive-hq/skill-digest/internal/logger"
)

// Ledger is the append-only publication history. It is the sole source of
// truth for "already published" and "recently published category" queries.
// The file is re-read per query; the pipeline runs one sequential cycle at a
// time so there is no caching layer to invalidate.
type Ledger struct {
	path string
	log  logger.Logger
	now  func() time.Time
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) {
		if now != nil {
			l.now = now
		}
	}
}

// New builds a ledger over the given history file path.
func New(path string, log logger.Logger, opts ...Option) *Ledger {
	if log == nil {
		log = logger.NopLogger{}
	}
	l := &Ledger{path: path, log: log, now: time.Now}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Record appends a publication entry for the skill and persists immediately.
// Callers invoke this only after downstream delivery is confirmed.
func (l *Ledger) Record(skill domain.Skill) error {
	file := l.load()

	now := l.now()
	file.Published = append(file.Published, domain.PublicationRecord{
		Name:     skill.Name,
		URL:      skill.URL,
		Category: skill.Category,
		Date:     now,
	})
	file.LastUpdated = &now

	if err := l.save(file); err != nil {
		return fmt.Errorf("record publication: %w", err)
	}
	l.log.InfoObj("publication recorded", "publication", map[string]any{
		"name": skill.Name,
		"url":  skill.URL,
	})
	return nil
}

// PublishedIdentities returns every URL ever recorded, as an exclusion set.
func (l *Ledger) PublishedIdentities() map[string]bool {
	file := l.load()
	out := make(map[string]bool, len(file.Published))
	for _, rec := range file.Published {
		if rec.URL != "" {
			out[rec.URL] = true
		}
	}
	return out
}

// RecentCategories returns the categories of entries published within the
// last N days, one element per publication.
func (l *Ledger) RecentCategories(days int) []string {
	file := l.load()
	cutoff := l.now().AddDate(0, 0, -days)

	var out []string
	for _, rec := range file.Published {
		if rec.Date.After(cutoff) && rec.Category != "" {
			out = append(out, rec.Category)
		}
	}
	return out
}

// Prune rewrites the ledger keeping only entries within the last N days.
// It returns how many entries were discarded. Used by the selector's reset
// policy when the pool is exhausted.
func (l *Ledger) Prune(days int) (int, error) {
	file := l.load()
	cutoff := l.now().AddDate(0, 0, -days)

	kept := make([]domain.PublicationRecord, 0, len(file.Published))
	for _, rec := range file.Published {
		if rec.Date.After(cutoff) {
			kept = append(kept, rec)
		}
	}

	removed := len(file.Published) - len(kept)
	if removed == 0 {
		return 0, nil
	}

	file.Published = kept
	now := l.now()
	file.LastUpdated = &now

	if err := l.save(file); err != nil {
		return 0, fmt.Errorf("prune ledger: %w", err)
	}
	l.log.InfoObj("ledger pruned", "prune_stats", map[string]any{
		"removed":        removed,
		"retained":       len(kept),
		"retention_days": days,
	})
	return removed, nil
}

// load reads the history file, degrading to an empty ledger on any failure.
func (l *Ledger) load() domain.LedgerFile {
	raw, err := os.ReadFile(l.path)
	if err != nil {
		if !os.IsNotExist(err) {
			l.log.WarnObj("ledger unreadable, treating as empty", "ledger_error", map[string]any{
				"path":  l.path,
				"error": err.Error(),
			})
		}
		return domain.LedgerFile{}
	}

	var file domain.LedgerFile
	if err := json.Unmarshal(raw, &file); err != nil {
		l.log.WarnObj("ledger corrupt, treating as empty", "ledger_error", map[string]any{
			"path":  l.path,
			"error": err.Error(),
		})
		return domain.LedgerFile{}
	}
	return file
}

func (l *Ledger) save(file domain.LedgerFile) error {
	dir := filepath.Dir(l.path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create ledger directory: %w", err)
		}
	}

	raw, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("encode ledger: %w", err)
	}

	tmp := l.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("write ledger: %w", err)
	}
	if err := os.Rename(tmp, l.path); err != nil {
		return fmt.Errorf("replace ledger: %w", err)
	}
	return nil
}
