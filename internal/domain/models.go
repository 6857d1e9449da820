package domain

import "time"

// Domain contains core models shared across the pipeline.

// DefaultCategory is assigned to skills whose source reported no category.
const DefaultCategory = "General"

// Skill is the canonical record every source normalizes into.
// The URL is the identity: two records with the same URL are the same skill.
type Skill struct {
	Name        string    `json:"name"`
	URL         string    `json:"url"`
	Description string    `json:"description,omitempty"`
	Category    string    `json:"category"`
	Source      string    `json:"source"`
	FetchedAt   time.Time `json:"fetched_at"`
}

// Valid reports whether the skill may enter the pool.
func (s Skill) Valid() bool {
	return s.Name != "" && s.URL != ""
}

// Pool is the durable, URL-deduplicated set of all known skills.
type Pool struct {
	Skills      []Skill    `json:"skills"`
	LastUpdated *time.Time `json:"last_updated"`
}

// PublicationRecord is one append-only ledger entry.
type PublicationRecord struct {
	Name     string    `json:"name"`
	URL      string    `json:"url"`
	Category string    `json:"category"`
	Date     time.Time `json:"date"`
}

// LedgerFile is the persisted shape of the publication history.
type LedgerFile struct {
	Published   []PublicationRecord `json:"published"`
	LastUpdated *time.Time          `json:"last_updated"`
}

// SelectionResult captures one cycle's choice so downstream steps can
// recover it without re-running selection.
type SelectionResult struct {
	Skill      Skill     `json:"skill"`
	SelectedAt time.Time `json:"selected_at"`
	Score      float64   `json:"score"`
}
