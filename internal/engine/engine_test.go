package engine

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palate-app/palate/internal/domain"
)

func TestAggregate_SharedFavoriteScenario(t *testing.T) {
	// 3 participants, 1 candidate, all love.
	candidates := []domain.Candidate{{ID: "c1", Name: "Ramen Shop"}}
	records := []domain.VoteRecord{
		ballot("a", map[string]domain.Verdict{"c1": domain.VerdictLove}),
		ballot("b", map[string]domain.Verdict{"c1": domain.VerdictLove}),
		ballot("c", map[string]domain.Verdict{"c1": domain.VerdictLove}),
	}

	result := New().Aggregate(candidates, records)

	require.Len(t, result.Tiers.SharedFavorites, 1)
	assert.Equal(t, "Ramen Shop", result.Tiers.SharedFavorites[0].Candidate.Name)
	assert.Empty(t, result.Tiers.ToTry)
	assert.Contains(t, result.GroupSummary, "1 shared favorite")
	assert.False(t, result.NeedsExternalFallback)
	assert.Len(t, result.IndividualProfiles, 3)
	assert.NotEmpty(t, result.ID)
	assert.False(t, result.ComputedAt.IsZero())
}

func TestAggregate_NetNegativeScenario(t *testing.T) {
	// 3 participants, 1 candidate, {love, nope, nope}: score -2.
	candidates := []domain.Candidate{{ID: "c1", Name: "Divisive Diner"}}
	records := []domain.VoteRecord{
		ballot("a", map[string]domain.Verdict{"c1": domain.VerdictLove}),
		ballot("b", map[string]domain.Verdict{"c1": domain.VerdictNope}),
		ballot("c", map[string]domain.Verdict{"c1": domain.VerdictNope}),
	}

	result := New().Aggregate(candidates, records)

	assert.Empty(t, result.Tiers.SharedFavorites)
	assert.Empty(t, result.Tiers.ToTry)
	assert.Empty(t, result.Tiers.BestBets)
	require.Len(t, result.Tiers.FallbackPicks, 1)
	assert.Equal(t, -2, result.Tiers.FallbackPicks[0].Score)
	assert.True(t, result.NeedsExternalFallback,
		"2 nopes outweigh 1 love, even the least-bad pick is net negative")
}

func TestAggregate_EmptyInputs(t *testing.T) {
	tests := []struct {
		name       string
		candidates []domain.Candidate
		records    []domain.VoteRecord
	}{
		{name: "no candidates", records: []domain.VoteRecord{ballot("a", nil)}},
		{name: "no participants", candidates: []domain.Candidate{{ID: "c1"}}},
		{name: "nothing"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := New().Aggregate(tt.candidates, tt.records)

			assert.Empty(t, result.Tiers.SharedFavorites)
			assert.Empty(t, result.Tiers.ToTry)
			assert.Empty(t, result.Tiers.BestBets)
			assert.Empty(t, result.Tiers.FallbackPicks)
			assert.True(t, result.NeedsExternalFallback)
			assert.Equal(t, "Not enough votes to recommend anything yet.", result.GroupSummary)
		})
	}
}

func TestAggregate_MissingVoteEqualsExplicitUnknown(t *testing.T) {
	candidates := []domain.Candidate{{ID: "a", Name: "Place", Tags: []string{"thai"}}}

	implicit := New().Aggregate(candidates, []domain.VoteRecord{ballot("p1", nil)})
	explicit := New().Aggregate(candidates, []domain.VoteRecord{
		ballot("p1", map[string]domain.Verdict{"a": domain.VerdictUnknown}),
	})

	// Everything derived from the votes must match; only the run id and
	// timestamp may differ.
	assert.Equal(t, explicit.Tiers, implicit.Tiers)
	assert.Equal(t, explicit.GroupSummary, implicit.GroupSummary)
	assert.Equal(t, explicit.TopTags, implicit.TopTags)
	assert.Equal(t, explicit.IndividualProfiles, implicit.IndividualProfiles,
		"an empty ballot must produce the same profile as an all-unknown ballot")
	require.Len(t, implicit.IndividualProfiles, 1)
	assert.Equal(t, domain.ProfileTotals{WantToTry: 1}, implicit.IndividualProfiles[0].Totals)
}

func TestAggregate_Idempotent(t *testing.T) {
	candidates := []domain.Candidate{
		{ID: "a", Name: "One", Tags: []string{"thai"}},
		{ID: "b", Name: "Two", Tags: []string{"thai"}},
		{ID: "c", Name: "Three"},
		{ID: "d", Name: "Four", Tags: []string{"bbq"}},
	}
	records := []domain.VoteRecord{
		ballot("p1", map[string]domain.Verdict{
			"a": domain.VerdictLove, "b": domain.VerdictLike,
			"c": domain.VerdictMeh, "d": domain.VerdictNope,
		}),
		ballot("p2", map[string]domain.Verdict{
			"a": domain.VerdictLike, "b": domain.VerdictLike,
			"c": domain.VerdictUnknown, "d": domain.VerdictLove,
		}),
	}

	eng := New()
	first := eng.Aggregate(candidates, records)
	second := eng.Aggregate(candidates, records)

	// IDs and timestamps differ per run; everything derived from the
	// votes must not.
	assert.Equal(t, first.Tiers, second.Tiers, "tier ordering must be reproducible")
	assert.Equal(t, first.GroupSummary, second.GroupSummary)
	assert.Equal(t, first.TopTags, second.TopTags)
	assert.Equal(t, first.IndividualProfiles, second.IndividualProfiles)
}

func TestShuffleTies_DisabledKeepsStableOrder(t *testing.T) {
	eng := New()
	scored := []domain.ScoredCandidate{
		{Candidate: domain.Candidate{ID: "a"}, BoostedScore: 5},
		{Candidate: domain.Candidate{ID: "b"}, BoostedScore: 9},
		{Candidate: domain.Candidate{ID: "c"}, BoostedScore: 5},
		{Candidate: domain.Candidate{ID: "d"}, BoostedScore: 5},
	}

	eng.ShuffleTies(scored)

	ids := make([]string, len(scored))
	for i, sc := range scored {
		ids[i] = sc.Candidate.ID
	}
	assert.Equal(t, []string{"b", "a", "c", "d"}, ids,
		"without a shuffle source, equal scores keep input order after the stable sort")
}

func TestShuffleTies_PermutesOnlyWithinEqualRuns(t *testing.T) {
	eng := New(WithTieShuffle(rand.NewSource(42)))

	var scored []domain.ScoredCandidate
	for i := 0; i < 6; i++ {
		scored = append(scored, domain.ScoredCandidate{
			Candidate:    domain.Candidate{ID: fmt.Sprintf("hi%d", i)},
			BoostedScore: 10,
		})
	}
	for i := 0; i < 6; i++ {
		scored = append(scored, domain.ScoredCandidate{
			Candidate:    domain.Candidate{ID: fmt.Sprintf("lo%d", i)},
			BoostedScore: 1,
		})
	}

	eng.ShuffleTies(scored)

	for i, sc := range scored {
		if i < 6 {
			assert.Equal(t, 10, sc.BoostedScore,
				"high-score run must stay ahead of the low-score run")
		} else {
			assert.Equal(t, 1, sc.BoostedScore)
		}
	}
}

func TestAggregate_ShuffleDoesNotChangeMembership(t *testing.T) {
	var candidates []domain.Candidate
	choices := make(map[string]domain.Verdict)
	for i := 0; i < 10; i++ {
		id := fmt.Sprintf("c%d", i)
		candidates = append(candidates, domain.Candidate{ID: id})
		choices[id] = domain.VerdictLove
	}
	records := []domain.VoteRecord{ballot("a", choices)}

	plain := New().Aggregate(candidates, records)
	shuffled := New(WithTieShuffle(rand.NewSource(7))).Aggregate(candidates, records)

	members := func(tier []domain.ScoredCandidate) map[string]bool {
		out := make(map[string]bool)
		for _, sc := range tier {
			out[sc.Candidate.ID] = true
		}
		return out
	}
	assert.Equal(t, members(plain.Tiers.SharedFavorites), members(shuffled.Tiers.SharedFavorites),
		"shuffling reorders ties, it never changes tier membership of an uncapped tier")
	assert.Equal(t, plain.GroupSummary, shuffled.GroupSummary)
}
