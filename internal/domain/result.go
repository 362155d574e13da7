package domain

import (
	"time"
)

// VoteTally partitions a session's participant count by verdict for one
// candidate. Love+Like+Meh+Unknown+Nope always equals the number of
// ballots supplied to the scoring pass.
type VoteTally struct {
	Love    int `json:"love"`
	Like    int `json:"like"`
	Meh     int `json:"meh"`
	Unknown int `json:"unknown"`
	Nope    int `json:"nope"`
}

// Positive returns the endorsement count (love + like).
func (t VoteTally) Positive() int { return t.Love + t.Like }

// ScoredCandidate is a candidate annotated with its vote tally and the
// scores derived from it. Produced once per candidate per aggregation run.
type ScoredCandidate struct {
	Candidate Candidate `json:"candidate"`
	Tally     VoteTally `json:"tally"`

	// Score is the raw weighted score: 4*love + 2*like - 3*nope.
	// Meh and unknown are neutral.
	Score int `json:"score"`

	// BoostedScore adds the group's tag-affinity boost to Score.
	// Candidates without tags keep BoostedScore == Score.
	BoostedScore int `json:"boosted_score"`

	// AllLove is true when every participant voted love.
	AllLove bool `json:"all_love"`

	// AllPositive is true when every participant voted love or like.
	AllPositive bool `json:"all_positive"`

	// NoneNope is true when no participant voted nope.
	NoneNope bool `json:"none_nope"`
}

// TagCount pairs a tag with a frequency or affinity count.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// TierSet is the engine's tiered classification of scored candidates.
// Membership is a strict partition: a candidate appears in at most one
// tier, with precedence favorites, to-try, best bets, then fallback.
type TierSet struct {
	// SharedFavorites are candidates everyone endorsed with at least one
	// love vote. Sorted descending by boosted score.
	SharedFavorites []ScoredCandidate `json:"shared_favorites"`

	// ToTry are candidates nobody vetoed but not everyone endorsed.
	// Sorted descending by boosted score.
	ToTry []ScoredCandidate `json:"to_try"`

	// BestBets are remaining positively scored candidates, capped at 5.
	BestBets []ScoredCandidate `json:"best_bets"`

	// FallbackPicks is the least-harm selection, populated only when the
	// three tiers above are all empty: every candidate ordered by fewest
	// vetoes, then most loves, then most likes, top 3.
	FallbackPicks []ScoredCandidate `json:"fallback_picks"`

	// NeedsExternalFallback signals the caller to consult the external
	// suggestion service: true when all four tiers are empty, or when
	// every fallback pick is net-negative (more vetoes than
	// endorsements).
	NeedsExternalFallback bool `json:"needs_external_fallback"`
}

// ProfileTotals are display counts for one participant's profile.
type ProfileTotals struct {
	Loved     int `json:"loved"`
	Liked     int `json:"liked"`
	WantToTry int `json:"want_to_try"`
}

// IndividualProfile summarizes one participant's taste, derived from
// their ballot independently of group tiering.
type IndividualProfile struct {
	ParticipantID   string `json:"participant_id"`
	ParticipantName string `json:"participant_name"`

	// LovedPlaces, LikedPlaces, and WantToTryPlaces are the candidates
	// the participant rated love, like, and unknown respectively.
	// Ballot entries referencing unknown candidate ids are dropped.
	LovedPlaces     []Candidate `json:"loved_places"`
	LikedPlaces     []Candidate `json:"liked_places"`
	WantToTryPlaces []Candidate `json:"want_to_try_places"`

	// TopTags is the participant's tag frequency over loved and liked
	// candidates, descending, truncated to 5.
	TopTags []TagCount `json:"top_tags"`

	Totals ProfileTotals `json:"totals"`
}

// Suggestion is one idea returned by the external suggestion service.
type Suggestion struct {
	// Label is the suggestion's display name.
	Label string `json:"label"`

	// Rationale explains why the group might agree on it.
	Rationale string `json:"rationale"`

	// SearchHint is a query string the caller can feed back into the
	// candidate provider.
	SearchHint string `json:"search_hint"`
}

// BinaryTally is the per-candidate choice distribution for the binary
// scheme: option label to vote count. The engine passes these through to
// the external synthesis collaborator without ranking them.
type BinaryTally struct {
	CandidateID string         `json:"candidate_id"`
	Counts      map[string]int `json:"counts"`
}

// AggregateTrigger records which lifecycle event caused a recomputation.
type AggregateTrigger string

const (
	// TriggerFullCompletion fires when the last outstanding ballot lands.
	TriggerFullCompletion AggregateTrigger = "full_completion"

	// TriggerEarlyClose fires on an explicit early close with only the
	// completed ballots included.
	TriggerEarlyClose AggregateTrigger = "early_close"

	// TriggerLateJoiner fires when a ballot arrives after the session
	// already reached the complete phase; the prior result is replaced.
	TriggerLateJoiner AggregateTrigger = "late_joiner"
)

// AggregateResult is the engine's full output for one aggregation run.
// It is computed fresh on every trigger and replaces any prior result
// wholesale; no field is ever partially mutated.
type AggregateResult struct {
	// ID uniquely identifies this computation run.
	ID string `json:"id"`

	// GroupSummary is deterministic synthesized text describing the
	// outcome, keyed on which tiers are populated.
	GroupSummary string `json:"group_summary"`

	Tiers TierSet `json:"tiers"`

	IndividualProfiles []IndividualProfile `json:"individual_profiles"`

	// TopTags is the group's tag-affinity list (positive-signal
	// weighted), truncated to 3. Used in the summary and in suggestion
	// requests.
	TopTags []TagCount `json:"top_tags,omitempty"`

	// NeedsExternalFallback mirrors Tiers.NeedsExternalFallback for
	// callers that only persist the result envelope.
	NeedsExternalFallback bool `json:"needs_external_fallback"`

	// Suggestions holds external suggestions spliced in by the caller
	// after a successful fallback call. Empty otherwise.
	Suggestions []Suggestion `json:"suggestions,omitempty"`

	// BinaryTallies carries the binary scheme's raw choice
	// distributions. Nil under the five-level scheme.
	BinaryTallies []BinaryTally `json:"binary_tallies,omitempty"`

	// Trigger records the lifecycle event that produced this result.
	Trigger AggregateTrigger `json:"trigger,omitempty"`

	// ComputedAt records when this result was produced.
	ComputedAt time.Time `json:"computed_at"`
}
