package engine

import (
	"fmt"
	"strings"

	"github.com/palate-app/palate/internal/domain"
)

// BuildGroupSummary synthesizes the human-readable group outcome from
// which tiers are populated and the group's top tag affinities. The text
// is a deterministic template cascade, first non-empty tier wins; it is
// never produced by a generative call.
func BuildGroupSummary(tiers domain.TierSet, topTags []domain.TagCount) string {
	switch {
	case len(tiers.SharedFavorites) > 0:
		return fmt.Sprintf("You have %s everyone is excited about%s.",
			countNoun(len(tiers.SharedFavorites), "shared favorite", "shared favorites"),
			tagClause(topTags))
	case len(tiers.ToTry) > 0:
		return fmt.Sprintf("No unanimous pick, but %s nobody objects to%s.",
			countNoun(len(tiers.ToTry), "place", "places"),
			tagClause(topTags))
	case len(tiers.BestBets) > 0:
		return fmt.Sprintf("Opinions are split; your %s lean%s toward %s.",
			countNoun(len(tiers.BestBets), "best bet", "best bets"),
			pluralS(len(tiers.BestBets)),
			tagSummary(topTags))
	case len(tiers.FallbackPicks) > 0:
		return fmt.Sprintf("Nothing scored well, so here %s the %s with the least pushback.",
			isAre(len(tiers.FallbackPicks)),
			countNoun(len(tiers.FallbackPicks), "option", "options"))
	default:
		return "Not enough votes to recommend anything yet."
	}
}

// FreshIdeasSummary is the override text the caller installs after the
// external suggestion service returns results for a session with no
// common ground.
func FreshIdeasSummary(count int) string {
	return fmt.Sprintf("No common ground in the votes, so here %s %s to spark fresh ideas.",
		isAre(count), countNoun(count, "new suggestion", "new suggestions"))
}

func countNoun(n int, singular, plural string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", singular)
	}
	return fmt.Sprintf("%d %s", n, plural)
}

func pluralS(n int) string {
	if n == 1 {
		return "s"
	}
	return ""
}

func isAre(n int) string {
	if n == 1 {
		return "is"
	}
	return "are"
}

// tagClause renders the top tags as a trailing clause, or nothing when
// the group showed no tag affinity.
func tagClause(topTags []domain.TagCount) string {
	if len(topTags) == 0 {
		return ""
	}
	return fmt.Sprintf(", with a clear taste for %s", tagSummary(topTags))
}

// tagSummary joins tag names into readable prose ("italian and sushi").
func tagSummary(topTags []domain.TagCount) string {
	if len(topTags) == 0 {
		return "a mix of styles"
	}
	names := make([]string, len(topTags))
	for i, tc := range topTags {
		names[i] = tc.Tag
	}
	switch len(names) {
	case 1:
		return names[0]
	case 2:
		return names[0] + " and " + names[1]
	default:
		return strings.Join(names[:len(names)-1], ", ") + " and " + names[len(names)-1]
	}
}
