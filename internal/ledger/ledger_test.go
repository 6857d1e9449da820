package ledger

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/skillhive-hq/skill-digest/internal/domain"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestRecordAppendsAndPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "published.json")
	now := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	led := New(path, nil, WithClock(fixedClock(now)))

	skill := domain.Skill{Name: "First", URL: "https://example.com/first", Category: "Testing"}
	if err := led.Record(skill); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := led.Record(domain.Skill{Name: "Second", URL: "https://example.com/second", Category: "Docs"}); err != nil {
		t.Fatalf("record: %v", err)
	}

	// A fresh ledger over the same file must see both entries.
	reread := New(path, nil)
	published := reread.PublishedIdentities()
	if len(published) != 2 {
		t.Fatalf("expected 2 published identities, got %d", len(published))
	}
	if !published["https://example.com/first"] || !published["https://example.com/second"] {
		t.Fatalf("missing identities: %v", published)
	}
}

func TestRecentCategoriesWindow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "published.json")
	now := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)

	// Record entries at different points in the past by shifting the clock.
	old := New(path, nil, WithClock(fixedClock(now.AddDate(0, 0, -10))))
	if err := old.Record(domain.Skill{Name: "Old", URL: "https://example.com/old", Category: "Testing"}); err != nil {
		t.Fatalf("record: %v", err)
	}

	recent := New(path, nil, WithClock(fixedClock(now.AddDate(0, 0, -2))))
	if err := recent.Record(domain.Skill{Name: "Recent", URL: "https://example.com/recent", Category: "Testing"}); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := recent.Record(domain.Skill{Name: "Other", URL: "https://example.com/other", Category: "Docs"}); err != nil {
		t.Fatalf("record: %v", err)
	}

	led := New(path, nil, WithClock(fixedClock(now)))
	categories := led.RecentCategories(7)
	if len(categories) != 2 {
		t.Fatalf("expected 2 recent categories, got %v", categories)
	}
	counts := map[string]int{}
	for _, c := range categories {
		counts[c]++
	}
	if counts["Testing"] != 1 || counts["Docs"] != 1 {
		t.Fatalf("unexpected category counts: %v", counts)
	}
}

func TestPruneDiscardsOldEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "published.json")
	now := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)

	old := New(path, nil, WithClock(fixedClock(now.AddDate(0, 0, -45))))
	if err := old.Record(domain.Skill{Name: "Ancient", URL: "https://example.com/ancient", Category: "Testing"}); err != nil {
		t.Fatalf("record: %v", err)
	}

	recent := New(path, nil, WithClock(fixedClock(now.AddDate(0, 0, -5))))
	if err := recent.Record(domain.Skill{Name: "Recent", URL: "https://example.com/recent", Category: "Testing"}); err != nil {
		t.Fatalf("record: %v", err)
	}

	led := New(path, nil, WithClock(fixedClock(now)))
	removed, err := led.Prune(30)
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 removed, got %d", removed)
	}

	published := led.PublishedIdentities()
	if published["https://example.com/ancient"] {
		t.Fatalf("ancient entry should be pruned")
	}
	if !published["https://example.com/recent"] {
		t.Fatalf("recent entry should survive prune")
	}
}

func TestPruneNoopWhenNothingExpired(t *testing.T) {
	path := filepath.Join(t.TempDir(), "published.json")
	now := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)

	led := New(path, nil, WithClock(fixedClock(now)))
	if err := led.Record(domain.Skill{Name: "Fresh", URL: "https://example.com/fresh", Category: "Testing"}); err != nil {
		t.Fatalf("record: %v", err)
	}

	before, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat ledger: %v", err)
	}

	removed, err := led.Prune(30)
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	if removed != 0 {
		t.Fatalf("expected no removals, got %d", removed)
	}

	after, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat ledger: %v", err)
	}
	if !after.ModTime().Equal(before.ModTime()) {
		t.Fatalf("no-op prune should not rewrite the file")
	}
}

func TestLoadMissingAndCorruptFiles(t *testing.T) {
	missing := New(filepath.Join(t.TempDir(), "missing.json"), nil)
	if got := missing.PublishedIdentities(); len(got) != 0 {
		t.Fatalf("missing file should read as empty ledger, got %v", got)
	}

	path := filepath.Join(t.TempDir(), "published.json")
	if err := os.WriteFile(path, []byte("[broken"), 0o644); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}
	corrupt := New(path, nil)
	if got := corrupt.PublishedIdentities(); len(got) != 0 {
		t.Fatalf("corrupt file should read as empty ledger, got %v", got)
	}
}
