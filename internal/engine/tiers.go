package engine

import (
	"sort"

	"github.com/palate-app/palate/internal/domain"
)

// ClassifyTiers partitions scored candidates into the four recommendation
// tiers with strict precedence: shared favorites, then to-try, then best
// bets, then (only when all three are empty) fallback picks. A candidate
// lands in at most one tier. All ordering is deterministic; callers that
// need tie-break randomization apply it separately via ShuffleTies.
func ClassifyTiers(scored []domain.ScoredCandidate) domain.TierSet {
	var tiers domain.TierSet

	for _, sc := range scored {
		switch {
		case sc.AllPositive && sc.Tally.Love > 0:
			tiers.SharedFavorites = append(tiers.SharedFavorites, sc)
		case sc.NoneNope && !sc.AllPositive:
			tiers.ToTry = append(tiers.ToTry, sc)
		case sc.Score > 0:
			tiers.BestBets = append(tiers.BestBets, sc)
		}
	}

	sortByBoostedScore(tiers.SharedFavorites)
	sortByBoostedScore(tiers.ToTry)
	sortByBoostedScore(tiers.BestBets)
	if len(tiers.BestBets) > bestBetsCap {
		tiers.BestBets = tiers.BestBets[:bestBetsCap]
	}

	if len(tiers.SharedFavorites) == 0 && len(tiers.ToTry) == 0 && len(tiers.BestBets) == 0 {
		tiers.FallbackPicks = leastHarmPicks(scored)
	}

	tiers.NeedsExternalFallback = needsExternalFallback(tiers)
	return tiers
}

// sortByBoostedScore orders a tier descending by boosted score.
// The sort is stable so equal scores keep candidate list order, which is
// what makes aggregation idempotent when shuffling is disabled.
func sortByBoostedScore(tier []domain.ScoredCandidate) {
	sort.SliceStable(tier, func(i, j int) bool {
		return tier[i].BoostedScore > tier[j].BoostedScore
	})
}

// leastHarmPicks selects the least objectionable candidates when nothing
// scored positively: fewest vetoes first, then most loves, then most
// likes, top 3. The goal flips from maximizing reward to minimizing harm.
func leastHarmPicks(scored []domain.ScoredCandidate) []domain.ScoredCandidate {
	picks := make([]domain.ScoredCandidate, len(scored))
	copy(picks, scored)
	sort.SliceStable(picks, func(i, j int) bool {
		a, b := picks[i].Tally, picks[j].Tally
		if a.Nope != b.Nope {
			return a.Nope < b.Nope
		}
		if a.Love != b.Love {
			return a.Love > b.Love
		}
		return a.Like > b.Like
	})
	if len(picks) > fallbackCap {
		picks = picks[:fallbackCap]
	}
	return picks
}

// needsExternalFallback decides whether the caller should consult the
// external suggestion service: every tier is empty, or the fallback tier
// exists but even its least-bad members are net-negative. The comparison
// is strictly greater-than; a candidate with as many vetoes as
// endorsements does not trigger.
func needsExternalFallback(tiers domain.TierSet) bool {
	if len(tiers.SharedFavorites) > 0 || len(tiers.ToTry) > 0 || len(tiers.BestBets) > 0 {
		return false
	}
	if len(tiers.FallbackPicks) == 0 {
		return true
	}
	for _, sc := range tiers.FallbackPicks {
		if sc.Tally.Nope <= sc.Tally.Positive() {
			return false
		}
	}
	return true
}
