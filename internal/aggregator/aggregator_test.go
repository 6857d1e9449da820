package aggregator

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/skillhive-hq/skill-digest/internal/domain"
	"github.com/skillhive-hq/skill-digest/pkg/sources"
)

// fakeFetcher returns preset skills or an error, counting calls.
type fakeFetcher struct {
	id     string
	skills []domain.Skill
	err    error
	calls  int
}

func (f *fakeFetcher) ID() string { return f.id }
func (f *fakeFetcher) Fetch(_ context.Context, _ sources.Source) ([]domain.Skill, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.skills, nil
}

// fakeRegistry maps source id to a fetcher.
type fakeRegistry struct {
	fetchers map[string]sources.Fetcher
}

func (f *fakeRegistry) FetcherFor(src sources.Source) (sources.Fetcher, error) {
	fetcher, ok := f.fetchers[src.ID]
	if !ok {
		return nil, errors.New("no fetcher for " + src.ID)
	}
	return fetcher, nil
}

func testSkill(name, url string) domain.Skill {
	return domain.Skill{Name: name, URL: url, Category: "Testing", Source: "test"}
}

func TestFetchAndMergeDeduplicatesByURL(t *testing.T) {
	dir := t.TempDir()
	store := NewPoolStore(filepath.Join(dir, "pool.json"), nil)

	fetcher := &fakeFetcher{id: "a", skills: []domain.Skill{
		testSkill("One", "https://example.com/one"),
		testSkill("One again", "https://example.com/one"),
		testSkill("Two", "https://example.com/two"),
	}}
	reg := &fakeRegistry{fetchers: map[string]sources.Fetcher{"a": fetcher}}
	srcs := []sources.Source{{ID: "a", Name: "A", Type: "test", SourceURL: "https://example.com"}}

	agg := New(store, reg, srcs, time.Hour, nil)

	skills, stats := agg.FetchAndMerge(context.Background(), false)
	if len(skills) != 2 {
		t.Fatalf("expected 2 skills after dedup, got %d", len(skills))
	}
	if stats.Added != 2 {
		t.Fatalf("expected 2 added, got %d", stats.Added)
	}
	if skills[0].Name != "One" {
		t.Fatalf("first-seen entry should win, got %q", skills[0].Name)
	}
}

func TestFetchAndMergeIdempotent(t *testing.T) {
	dir := t.TempDir()
	store := NewPoolStore(filepath.Join(dir, "pool.json"), nil)

	fetcher := &fakeFetcher{id: "a", skills: []domain.Skill{
		testSkill("One", "https://example.com/one"),
		testSkill("Two", "https://example.com/two"),
	}}
	reg := &fakeRegistry{fetchers: map[string]sources.Fetcher{"a": fetcher}}
	srcs := []sources.Source{{ID: "a", Name: "A", Type: "test", SourceURL: "https://example.com"}}

	agg := New(store, reg, srcs, time.Hour, nil)

	first, stats := agg.FetchAndMerge(context.Background(), true)
	if stats.Added != 2 {
		t.Fatalf("first merge: expected 2 added, got %d", stats.Added)
	}

	// Re-merging identical source output must change nothing.
	second, stats := agg.FetchAndMerge(context.Background(), true)
	if stats.Added != 0 {
		t.Fatalf("second merge: expected 0 added, got %d", stats.Added)
	}
	if len(second) != len(first) {
		t.Fatalf("pool size changed on re-merge: %d -> %d", len(first), len(second))
	}
}

func TestFetchAndMergeKeepsExistingFields(t *testing.T) {
	dir := t.TempDir()
	store := NewPoolStore(filepath.Join(dir, "pool.json"), nil)

	// Seed the pool with an entry, then re-fetch the same URL with a
	// different description. The original must survive.
	seeded := testSkill("Original", "https://example.com/one")
	seeded.Description = "the first description"
	stale := time.Now().Add(-48 * time.Hour)
	if err := store.Save(domain.Pool{Skills: []domain.Skill{seeded}, LastUpdated: &stale}); err != nil {
		t.Fatalf("seed pool: %v", err)
	}

	refetched := testSkill("Renamed", "https://example.com/one")
	refetched.Description = "a different description"
	fetcher := &fakeFetcher{id: "a", skills: []domain.Skill{refetched}}
	reg := &fakeRegistry{fetchers: map[string]sources.Fetcher{"a": fetcher}}
	srcs := []sources.Source{{ID: "a", Name: "A", Type: "test", SourceURL: "https://example.com"}}

	agg := New(store, reg, srcs, 24*time.Hour, nil)

	skills, stats := agg.FetchAndMerge(context.Background(), false)
	if len(skills) != 1 {
		t.Fatalf("expected 1 skill, got %d", len(skills))
	}
	if stats.Added != 0 {
		t.Fatalf("expected 0 added, got %d", stats.Added)
	}
	if skills[0].Name != "Original" || skills[0].Description != "the first description" {
		t.Fatalf("existing entry was overwritten: %+v", skills[0])
	}
}

func TestFetchAndMergeFreshPoolSkipsSources(t *testing.T) {
	dir := t.TempDir()
	store := NewPoolStore(filepath.Join(dir, "pool.json"), nil)

	now := time.Now()
	if err := store.Save(domain.Pool{
		Skills:      []domain.Skill{testSkill("Cached", "https://example.com/cached")},
		LastUpdated: &now,
	}); err != nil {
		t.Fatalf("seed pool: %v", err)
	}

	fetcher := &fakeFetcher{id: "a", skills: []domain.Skill{testSkill("Fresh", "https://example.com/fresh")}}
	reg := &fakeRegistry{fetchers: map[string]sources.Fetcher{"a": fetcher}}
	srcs := []sources.Source{{ID: "a", Name: "A", Type: "test", SourceURL: "https://example.com"}}

	agg := New(store, reg, srcs, 24*time.Hour, nil)

	skills, stats := agg.FetchAndMerge(context.Background(), false)
	if fetcher.calls != 0 {
		t.Fatalf("fresh pool should not contact sources, got %d calls", fetcher.calls)
	}
	if !stats.FromCache {
		t.Fatalf("expected FromCache stats, got %+v", stats)
	}
	if len(skills) != 1 || skills[0].Name != "Cached" {
		t.Fatalf("unexpected cached skills: %+v", skills)
	}
}

func TestFetchAndMergeForceRefreshBypassesFreshness(t *testing.T) {
	dir := t.TempDir()
	store := NewPoolStore(filepath.Join(dir, "pool.json"), nil)

	now := time.Now()
	if err := store.Save(domain.Pool{
		Skills:      []domain.Skill{testSkill("Cached", "https://example.com/cached")},
		LastUpdated: &now,
	}); err != nil {
		t.Fatalf("seed pool: %v", err)
	}

	fetcher := &fakeFetcher{id: "a", skills: []domain.Skill{testSkill("Fresh", "https://example.com/fresh")}}
	reg := &fakeRegistry{fetchers: map[string]sources.Fetcher{"a": fetcher}}
	srcs := []sources.Source{{ID: "a", Name: "A", Type: "test", SourceURL: "https://example.com"}}

	agg := New(store, reg, srcs, 24*time.Hour, nil)

	skills, stats := agg.FetchAndMerge(context.Background(), true)
	if fetcher.calls != 1 {
		t.Fatalf("force refresh should contact sources, got %d calls", fetcher.calls)
	}
	if stats.Added != 1 || len(skills) != 2 {
		t.Fatalf("expected cached+fresh merge, got %d skills (added %d)", len(skills), stats.Added)
	}
}

func TestFetchAndMergeIsolatesSourceFailures(t *testing.T) {
	dir := t.TempDir()
	store := NewPoolStore(filepath.Join(dir, "pool.json"), nil)

	good := &fakeFetcher{id: "good", skills: []domain.Skill{testSkill("Good", "https://example.com/good")}}
	bad := &fakeFetcher{id: "bad", err: errors.New("listing unavailable")}
	reg := &fakeRegistry{fetchers: map[string]sources.Fetcher{"good": good, "bad": bad}}
	srcs := []sources.Source{
		{ID: "bad", Name: "Bad", Type: "test", SourceURL: "https://example.com"},
		{ID: "good", Name: "Good", Type: "test", SourceURL: "https://example.com"},
		{ID: "unknown", Name: "Unknown", Type: "test", SourceURL: "https://example.com"},
	}

	agg := New(store, reg, srcs, time.Hour, nil)

	skills, stats := agg.FetchAndMerge(context.Background(), false)
	if len(skills) != 1 || skills[0].Name != "Good" {
		t.Fatalf("expected only the healthy source's skill, got %+v", skills)
	}
	if stats.Added != 1 {
		t.Fatalf("expected 1 added, got %d", stats.Added)
	}
}

func TestFetchAndMergeDropsInvalidSkills(t *testing.T) {
	dir := t.TempDir()
	store := NewPoolStore(filepath.Join(dir, "pool.json"), nil)

	fetcher := &fakeFetcher{id: "a", skills: []domain.Skill{
		{Name: "", URL: "https://example.com/nameless"},
		{Name: "No URL", URL: ""},
		testSkill("Valid", "https://example.com/valid"),
	}}
	reg := &fakeRegistry{fetchers: map[string]sources.Fetcher{"a": fetcher}}
	srcs := []sources.Source{{ID: "a", Name: "A", Type: "test", SourceURL: "https://example.com"}}

	agg := New(store, reg, srcs, time.Hour, nil)

	skills, _ := agg.FetchAndMerge(context.Background(), false)
	if len(skills) != 1 || skills[0].Name != "Valid" {
		t.Fatalf("invalid skills should be dropped, got %+v", skills)
	}
}

func TestFetchAndMergeAssignsDefaultCategory(t *testing.T) {
	dir := t.TempDir()
	store := NewPoolStore(filepath.Join(dir, "pool.json"), nil)

	fetcher := &fakeFetcher{id: "a", skills: []domain.Skill{
		{Name: "Uncategorized", URL: "https://example.com/one", Source: "test"},
	}}
	reg := &fakeRegistry{fetchers: map[string]sources.Fetcher{"a": fetcher}}
	srcs := []sources.Source{{ID: "a", Name: "A", Type: "test", SourceURL: "https://example.com"}}

	agg := New(store, reg, srcs, time.Hour, nil)

	skills, _ := agg.FetchAndMerge(context.Background(), false)
	if len(skills) != 1 || skills[0].Category != domain.DefaultCategory {
		t.Fatalf("expected default category %q, got %+v", domain.DefaultCategory, skills)
	}
}

func TestFetchAndMergePersistsPool(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pool.json")
	store := NewPoolStore(path, nil)

	fetcher := &fakeFetcher{id: "a", skills: []domain.Skill{testSkill("One", "https://example.com/one")}}
	reg := &fakeRegistry{fetchers: map[string]sources.Fetcher{"a": fetcher}}
	srcs := []sources.Source{{ID: "a", Name: "A", Type: "test", SourceURL: "https://example.com"}}

	agg := New(store, reg, srcs, time.Hour, nil)
	agg.FetchAndMerge(context.Background(), false)

	reloaded := store.Load()
	if len(reloaded.Skills) != 1 {
		t.Fatalf("expected persisted pool with 1 skill, got %+v", reloaded)
	}
	if reloaded.LastUpdated == nil {
		t.Fatalf("expected last_updated to be set")
	}
}

func TestPoolStoreLoadMissingFile(t *testing.T) {
	store := NewPoolStore(filepath.Join(t.TempDir(), "missing.json"), nil)
	pool := store.Load()
	if len(pool.Skills) != 0 || pool.LastUpdated != nil {
		t.Fatalf("missing file should load as empty pool, got %+v", pool)
	}
}

func TestPoolStoreLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pool.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}

	store := NewPoolStore(path, nil)
	pool := store.Load()
	if len(pool.Skills) != 0 {
		t.Fatalf("corrupt file should load as empty pool, got %+v", pool)
	}
}

func TestPoolStoreSaveCreatesDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "pool.json")
	store := NewPoolStore(path, nil)

	now := time.Now()
	pool := domain.Pool{Skills: []domain.Skill{testSkill("One", "https://example.com/one")}, LastUpdated: &now}
	if err := store.Save(pool); err != nil {
		t.Fatalf("save pool: %v", err)
	}

	reloaded := store.Load()
	if len(reloaded.Skills) != 1 || reloaded.Skills[0].URL != "https://example.com/one" {
		t.Fatalf("round trip failed: %+v", reloaded)
	}
}
