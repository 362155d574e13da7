package engine

import (
	"math/rand"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/palate-app/palate/internal/domain"
)

// Engine runs complete aggregation passes. The zero-configuration engine
// is fully deterministic; an injected shuffle source adds tie-break
// randomization within equal-score runs only, so bounded tiers do not
// systematically favor candidate list order.
//
// Engines are stateless and safe for concurrent use across sessions as
// long as each configured shuffle source is not shared.
type Engine struct {
	rng *rand.Rand
}

// Option configures an Engine.
type Option func(*Engine)

// WithTieShuffle enables tie-break randomization backed by the given
// source. Tests leave it unset to keep aggregation idempotent.
func WithTieShuffle(src rand.Source) Option {
	return func(e *Engine) {
		e.rng = rand.New(src) // #nosec G404 -- tie-breaking only, not security sensitive
	}
}

// New creates an Engine. Without options every run is deterministic.
func New(opts ...Option) *Engine {
	e := &Engine{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Aggregate is the single entry point callers need: it scores the
// candidates, classifies tiers, synthesizes the group summary, and
// derives individual profiles, returning a complete result that replaces
// any prior one. With zero candidates or zero ballots it returns an empty
// result flagged for external fallback rather than an error.
func (e *Engine) Aggregate(candidates []domain.Candidate, records []domain.VoteRecord) domain.AggregateResult {
	result := domain.AggregateResult{
		ID:         uuid.NewString(),
		ComputedAt: time.Now().UTC(),
	}

	if len(candidates) == 0 || len(records) == 0 {
		result.Tiers.NeedsExternalFallback = true
		result.NeedsExternalFallback = true
		result.GroupSummary = BuildGroupSummary(result.Tiers, nil)
		return result
	}

	scored := ScoreCandidates(candidates, records)
	e.ShuffleTies(scored)

	result.Tiers = ClassifyTiers(scored)
	result.TopTags = TopTags(scored, groupTopTagsCap)
	result.GroupSummary = BuildGroupSummary(result.Tiers, result.TopTags)
	result.IndividualProfiles = DeriveIndividualProfiles(candidates, records)
	result.NeedsExternalFallback = result.Tiers.NeedsExternalFallback
	return result
}

// ShuffleTies randomizes candidate order within runs of equal boosted
// score, leaving the relative order of distinct scores intact. It first
// imposes the stable descending order so the runs are well defined, then
// permutes each run. A nil shuffle source makes this a no-op on order of
// equals (the stable sort still applies), which is the property tests
// rely on.
func (e *Engine) ShuffleTies(scored []domain.ScoredCandidate) {
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].BoostedScore > scored[j].BoostedScore
	})
	if e.rng == nil {
		return
	}

	start := 0
	for i := 1; i <= len(scored); i++ {
		if i == len(scored) || scored[i].BoostedScore != scored[start].BoostedScore {
			run := scored[start:i]
			e.rng.Shuffle(len(run), func(a, b int) {
				run[a], run[b] = run[b], run[a]
			})
			start = i
		}
	}
}
