// Package provider supplies candidate lists to sessions. The engine
// consumes provider output as an opaque list; everything here is intake
// plumbing: fanning a query out to several search sources and merging
// near-duplicate places before the voting phase opens.
package provider

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/cases"

	"github.com/palate-app/palate/internal/domain"
	"github.com/palate-app/palate/internal/ports"
)

// DefaultDedupeThreshold is the name-similarity level above which two
// candidates from different sources are considered the same place.
const DefaultDedupeThreshold = 0.85

// foldCaser is a package-level Unicode case folder; creating one per
// comparison is needlessly expensive.
var foldCaser = cases.Fold()

// MultiProvider queries several candidate sources concurrently and
// merges their results. A source failure only drops that source's
// candidates; the fetch fails outright only when every source fails.
type MultiProvider struct {
	sources   []ports.CandidateProvider
	threshold float64
	tracer    trace.Tracer
}

var _ ports.CandidateProvider = (*MultiProvider)(nil)

// NewMultiProvider wraps the given sources. A threshold outside (0, 1]
// falls back to DefaultDedupeThreshold.
func NewMultiProvider(threshold float64, sources ...ports.CandidateProvider) (*MultiProvider, error) {
	if len(sources) == 0 {
		return nil, fmt.Errorf("at least one candidate source is required")
	}
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultDedupeThreshold
	}
	return &MultiProvider{
		sources:   sources,
		threshold: threshold,
		tracer:    otel.Tracer("candidate-multi-provider"),
	}, nil
}

// Candidates fans the query out to every source, concatenates results in
// source order, merges near-duplicates, and applies the query limit.
func (m *MultiProvider) Candidates(ctx context.Context, q ports.CandidateQuery) ([]domain.Candidate, error) {
	ctx, span := m.tracer.Start(ctx, "provider.candidates",
		trace.WithAttributes(
			attribute.String("category", q.Category),
			attribute.Int("sources", len(m.sources)),
		))
	defer span.End()

	results := make([][]domain.Candidate, len(m.sources))
	var (
		mu       sync.Mutex
		failures []error
	)

	g, gctx := errgroup.WithContext(ctx)
	for i, src := range m.sources {
		g.Go(func() error {
			candidates, err := src.Candidates(gctx, q)
			if err != nil {
				mu.Lock()
				failures = append(failures, err)
				mu.Unlock()
				return nil // a single source failing is not fatal
			}
			results[i] = candidates
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if len(failures) == len(m.sources) {
		return nil, fmt.Errorf("all %d candidate sources failed: %w", len(m.sources), failures[0])
	}

	var combined []domain.Candidate
	for _, r := range results {
		combined = append(combined, r...)
	}

	merged := m.dedupe(combined)
	if q.Limit > 0 && len(merged) > q.Limit {
		merged = merged[:q.Limit]
	}
	span.SetAttributes(attribute.Int("candidates", len(merged)))
	return merged, nil
}

// dedupe merges candidates whose folded names are near-identical by
// Levenshtein similarity. The first occurrence wins and keeps its
// richness fields; tags from merged duplicates are unioned onto it.
func (m *MultiProvider) dedupe(candidates []domain.Candidate) []domain.Candidate {
	kept := make([]domain.Candidate, 0, len(candidates))
	keptNames := make([]string, 0, len(candidates))

	for _, c := range candidates {
		name := foldCaser.String(strings.TrimSpace(c.Name))
		matched := false
		for i, existing := range keptNames {
			if nameSimilarity(name, existing) >= m.threshold {
				kept[i].Tags = unionTags(kept[i].Tags, c.Tags)
				matched = true
				break
			}
		}
		if !matched {
			kept = append(kept, c)
			keptNames = append(keptNames, name)
		}
	}
	return kept
}

// nameSimilarity maps Levenshtein distance to a 0..1 similarity over the
// longer name's rune count. Two empty names are identical.
func nameSimilarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	longest := utf8.RuneCountInString(a)
	if n := utf8.RuneCountInString(b); n > longest {
		longest = n
	}
	if longest == 0 {
		return 1.0
	}
	distance := levenshtein.ComputeDistance(a, b)
	return 1.0 - float64(distance)/float64(longest)
}

func unionTags(existing, incoming []string) []string {
	seen := make(map[string]bool, len(existing))
	for _, t := range existing {
		seen[t] = true
	}
	for _, t := range incoming {
		if !seen[t] {
			existing = append(existing, t)
			seen[t] = true
		}
	}
	return existing
}
