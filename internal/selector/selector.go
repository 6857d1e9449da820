package selector

import (
	"errors"
	"math/rand"
	"time"

	"github.com/skillhive-hq/skill-digest/internal/domain"
	"github.com/skillhive-hq/skill-digest/internal/ledger"
	"github.com/skillhive-hq/skill-digest/internal/logger"
)

// ErrNoCandidates is returned when every known skill is excluded, even after
// the reset policy has pruned the publication history. Callers skip the cycle.
var ErrNoCandidates = errors.New("no eligible skills available")

// Excluded is the sentinel score for skills whose URL is already in the
// ledger; they never enter the candidate set.
const Excluded = -1.0

// Description length thresholds for the quality adjustment.
const (
	longDescriptionLen  = 50
	shortDescriptionLen = 10
)

// Weights are the scoring parameters. They are tuning constants without a
// deeper justification, so they are configuration rather than code.
type Weights struct {
	Base            float64
	CategoryPenalty float64
	DescriptionBump float64
	SourceBonus     float64
	JitterRange     float64
}

// DefaultWeights returns the weights the pipeline originally shipped with.
func DefaultWeights() Weights {
	return Weights{
		Base:            100,
		CategoryPenalty: 20,
		DescriptionBump: 10,
		SourceBonus:     5,
		JitterRange:     20,
	}
}

// Selector scores the pool against the publication ledger and picks one
// skill per cycle. It reads the ledger but never appends to it; marking a
// skill published is the caller's step after delivery is confirmed.
type Selector struct {
	ledger        *ledger.Ledger
	weights       Weights
	recentDays    int
	resetDays     int
	primarySource string
	rng           *rand.Rand
	now           func() time.Time
	log           logger.Logger
}

// Option configures a Selector.
type Option func(*Selector)

// WithWeights overrides the scoring weights.
func WithWeights(w Weights) Option {
	return func(s *Selector) { s.weights = w }
}

// WithWindows overrides the recent-category and reset-retention windows (days).
func WithWindows(recentDays, resetDays int) Option {
	return func(s *Selector) {
		if recentDays > 0 {
			s.recentDays = recentDays
		}
		if resetDays > 0 {
			s.resetDays = resetDays
		}
	}
}

// WithPrimarySource sets the source tag that earns the trust bonus.
func WithPrimarySource(tag string) Option {
	return func(s *Selector) { s.primarySource = tag }
}

// WithRand injects the jitter random source so tests can fix the seed.
func WithRand(rng *rand.Rand) Option {
	return func(s *Selector) {
		if rng != nil {
			s.rng = rng
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Selector) {
		if now != nil {
			s.now = now
		}
	}
}

// New builds a selector over the given ledger.
func New(led *ledger.Ledger, log logger.Logger, opts ...Option) *Selector {
	if log == nil {
		log = logger.NopLogger{}
	}
	s := &Selector{
		ledger:        led,
		weights:       DefaultWeights(),
		recentDays:    7,
		resetDays:     30,
		primarySource: "github-awesome",
		rng:           rand.New(rand.NewSource(time.Now().UnixNano())),
		now:           time.Now,
		log:           log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Score rates one skill against the exclusion set and the recent category
// counts. Already-published skills get the Excluded sentinel. The jitter
// term is drawn fresh per call so near-equal candidates rotate across runs.
func (s *Selector) Score(skill domain.Skill, published map[string]bool, categoryCounts map[string]int) float64 {
	if published[skill.URL] {
		return Excluded
	}

	score := s.weights.Base
	score -= float64(categoryCounts[skill.Category]) * s.weights.CategoryPenalty

	switch {
	case len(skill.Description) > longDescriptionLen:
		score += s.weights.DescriptionBump
	case len(skill.Description) < shortDescriptionLen:
		score -= s.weights.DescriptionBump
	}

	if skill.Source == s.primarySource {
		score += s.weights.SourceBonus
	}

	if s.weights.JitterRange > 0 {
		score += s.rng.Float64() * s.weights.JitterRange
	}

	return score
}

type scored struct {
	skill domain.Skill
	score float64
}

// Select picks the highest-scoring eligible skill from the pool. On an
// exhausted pool it prunes the ledger to the reset retention window and
// rescores once with the smaller exclusion set before giving up.
func (s *Selector) Select(pool []domain.Skill) (domain.SelectionResult, error) {
	if len(pool) == 0 {
		s.log.WarnObj("selection skipped", "reason", "empty pool")
		return domain.SelectionResult{}, ErrNoCandidates
	}

	published := s.ledger.PublishedIdentities()
	categoryCounts := countCategories(s.ledger.RecentCategories(s.recentDays))

	s.log.InfoObj("selection started", "selection_meta", map[string]any{
		"pool_size":         len(pool),
		"published":         len(published),
		"recent_categories": categoryCounts,
	})

	candidates := s.scoreAll(pool, published, categoryCounts)

	if len(candidates) == 0 {
		s.log.WarnObj("pool exhausted, resetting publication history", "reset_meta", map[string]any{
			"retention_days": s.resetDays,
		})
		if _, err := s.ledger.Prune(s.resetDays); err != nil {
			s.log.ErrorObj("ledger reset failed", "error", err.Error())
		}
		published = s.ledger.PublishedIdentities()
		candidates = s.scoreAll(pool, published, categoryCounts)
	}

	if len(candidates) == 0 {
		s.log.WarnObj("selection skipped", "reason", "no candidates after reset")
		return domain.SelectionResult{}, ErrNoCandidates
	}

	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.score > best.score {
			best = c
		}
	}

	result := domain.SelectionResult{
		Skill:      best.skill,
		SelectedAt: s.now(),
		Score:      best.score,
	}
	s.log.InfoObj("skill selected", "selection", map[string]any{
		"name":  best.skill.Name,
		"url":   best.skill.URL,
		"score": best.score,
	})
	return result, nil
}

// scoreAll keeps only candidates with non-negative scores.
func (s *Selector) scoreAll(pool []domain.Skill, published map[string]bool, categoryCounts map[string]int) []scored {
	candidates := make([]scored, 0, len(pool))
	for _, skill := range pool {
		if sc := s.Score(skill, published, categoryCounts); sc >= 0 {
			candidates = append(candidates, scored{skill: skill, score: sc})
		}
	}
	return candidates
}

func countCategories(categories []string) map[string]int {
	counts := make(map[string]int, len(categories))
	for _, c := range categories {
		counts[c]++
	}
	return counts
}
