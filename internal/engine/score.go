// Package engine implements the deterministic vote-aggregation and
// recommendation-ranking core. Given a session's candidate list and its
// completed ballots it derives scored candidates, tiered group
// recommendations, a synthesized summary, and per-participant taste
// profiles. The engine performs no I/O and holds no mutable state; the
// only intentional nondeterminism is the injectable tie-break shuffle
// applied when capping equal-score runs.
package engine

import (
	"sort"

	"github.com/palate-app/palate/internal/domain"
)

// Verdict weights. Love weighs double like, a veto costs more than a love
// earns, and meh/unknown are neutral.
const (
	weightLove = 4
	weightLike = 2
	weightNope = -3
)

const (
	// bestBetsCap bounds the best-bets tier.
	bestBetsCap = 5

	// fallbackCap bounds the least-harm fallback tier.
	fallbackCap = 3

	// groupTopTagsCap bounds the group tag-affinity list.
	groupTopTagsCap = 3

	// profileTopTagsCap bounds a participant's top-tags list.
	profileTopTagsCap = 5
)

// ScoreCandidates tallies every ballot over every candidate and derives
// raw and tag-boosted scores. Each candidate is scored exactly once;
// ballots missing an entry for a candidate count as unknown. The result
// preserves candidate list order, which later sorts use as the stable
// tie-break.
func ScoreCandidates(candidates []domain.Candidate, records []domain.VoteRecord) []domain.ScoredCandidate {
	participants := len(records)
	scored := make([]domain.ScoredCandidate, 0, len(candidates))

	for _, c := range candidates {
		var tally domain.VoteTally
		for _, r := range records {
			switch r.VerdictFor(c.ID) {
			case domain.VerdictLove:
				tally.Love++
			case domain.VerdictLike:
				tally.Like++
			case domain.VerdictMeh:
				tally.Meh++
			case domain.VerdictNope:
				tally.Nope++
			default:
				tally.Unknown++
			}
		}

		score := weightLove*tally.Love + weightLike*tally.Like + weightNope*tally.Nope
		scored = append(scored, domain.ScoredCandidate{
			Candidate:   c,
			Tally:       tally,
			Score:       score,
			AllLove:     participants > 0 && tally.Love == participants,
			AllPositive: participants > 0 && tally.Positive() == participants,
			NoneNope:    tally.Nope == 0,
		})
	}

	applyTagBoost(scored)
	return scored
}

// applyTagBoost raises each tagged candidate's score by the group's
// demonstrated affinity for its tags: every tag accumulates the positive
// (love+like) counts of all candidates carrying it, and a candidate's
// boost is the sum over its own tags. A candidate with mediocre direct
// votes but tags matching the group's favorites ranks above its raw
// score. Untagged candidates keep BoostedScore == Score.
func applyTagBoost(scored []domain.ScoredCandidate) {
	freq := tagAffinity(scored)
	for i := range scored {
		boost := 0
		for _, t := range scored[i].Candidate.Tags {
			boost += freq[t]
		}
		scored[i].BoostedScore = scored[i].Score + boost
	}
}

// tagAffinity builds the positive-signal frequency table over tags.
func tagAffinity(scored []domain.ScoredCandidate) map[string]int {
	freq := make(map[string]int)
	for _, sc := range scored {
		for _, t := range sc.Candidate.Tags {
			freq[t] += sc.Tally.Positive()
		}
	}
	return freq
}

// TopTags returns the group's strongest tag affinities, descending by
// positive-signal weight with ties broken alphabetically, truncated to
// limit. A limit <= 0 returns all tags.
func TopTags(scored []domain.ScoredCandidate, limit int) []domain.TagCount {
	freq := tagAffinity(scored)
	tags := make([]domain.TagCount, 0, len(freq))
	for tag, count := range freq {
		tags = append(tags, domain.TagCount{Tag: tag, Count: count})
	}
	sort.Slice(tags, func(i, j int) bool {
		if tags[i].Count != tags[j].Count {
			return tags[i].Count > tags[j].Count
		}
		return tags[i].Tag < tags[j].Tag
	})
	if limit > 0 && len(tags) > limit {
		tags = tags[:limit]
	}
	return tags
}

// BinaryDistributions tallies the binary scheme's per-candidate choice
// counts. Ranking binary sessions is the external synthesis
// collaborator's job; the engine only supplies the raw distributions.
// Ballot entries referencing unknown candidate ids are dropped.
func BinaryDistributions(candidates []domain.Candidate, records []domain.VoteRecord) []domain.BinaryTally {
	tallies := make([]domain.BinaryTally, 0, len(candidates))
	for _, c := range candidates {
		counts := make(map[string]int)
		for _, r := range records {
			if choice, ok := r.Choices[c.ID]; ok {
				counts[string(choice)]++
			}
		}
		tallies = append(tallies, domain.BinaryTally{CandidateID: c.ID, Counts: counts})
	}
	return tallies
}
