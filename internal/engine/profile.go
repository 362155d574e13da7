package engine

import (
	"sort"

	"github.com/palate-app/palate/internal/domain"
)

// DeriveIndividualProfiles builds one taste profile per ballot,
// independently of group tiering. Ballot entries whose candidate id is
// not in the candidate list are silently dropped; that skew between
// provider and session is expected, never an error.
func DeriveIndividualProfiles(candidates []domain.Candidate, records []domain.VoteRecord) []domain.IndividualProfile {
	byID := make(map[string]domain.Candidate, len(candidates))
	for _, c := range candidates {
		byID[c.ID] = c
	}

	profiles := make([]domain.IndividualProfile, 0, len(records))
	for _, r := range records {
		p := domain.IndividualProfile{
			ParticipantID:   r.ParticipantID,
			ParticipantName: r.ParticipantName,
		}

		// Walk the candidate list rather than the ballot map so the
		// profile ordering is deterministic. A missing entry reads as
		// unknown, so an unvoted candidate lands in want-to-try exactly
		// like an explicit unknown vote.
		for _, c := range candidates {
			switch r.VerdictFor(c.ID) {
			case domain.VerdictLove:
				p.LovedPlaces = append(p.LovedPlaces, byID[c.ID])
			case domain.VerdictLike:
				p.LikedPlaces = append(p.LikedPlaces, byID[c.ID])
			case domain.VerdictUnknown:
				p.WantToTryPlaces = append(p.WantToTryPlaces, byID[c.ID])
			}
		}

		p.TopTags = profileTopTags(p.LovedPlaces, p.LikedPlaces)
		p.Totals = domain.ProfileTotals{
			Loved:     len(p.LovedPlaces),
			Liked:     len(p.LikedPlaces),
			WantToTry: len(p.WantToTryPlaces),
		}
		profiles = append(profiles, p)
	}
	return profiles
}

// profileTopTags counts simple tag occurrences over a participant's loved
// and liked candidates (unweighted, unlike the group affinity table),
// descending with alphabetical ties, truncated to 5.
func profileTopTags(loved, liked []domain.Candidate) []domain.TagCount {
	freq := make(map[string]int)
	for _, c := range loved {
		for _, t := range c.Tags {
			freq[t]++
		}
	}
	for _, c := range liked {
		for _, t := range c.Tags {
			freq[t]++
		}
	}

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
	if len(tags) > profileTopTagsCap {
		tags = tags[:profileTopTagsCap]
	}
	return tags
}
