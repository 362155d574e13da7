// Package domain defines the core data model for group voting sessions:
// candidates, ballots, verdicts, and the aggregate recommendation result.
// Types here are pure data with no behavior beyond small lookup helpers,
// keeping the aggregation engine free of I/O concerns.
package domain

// VotingScheme selects how a session's ballots are interpreted.
// The scheme is fixed at session creation and never changes afterward.
type VotingScheme string

const (
	// SchemeFiveLevel is place voting: each participant rates every
	// candidate on the five-level verdict scale.
	SchemeFiveLevel VotingScheme = "five_level"

	// SchemeBinary is a this-or-that quiz: each candidate defines two
	// option labels and a ballot records the chosen label verbatim.
	// Ranking for this scheme is delegated to the external synthesis
	// collaborator; the engine only tallies choice distributions.
	SchemeBinary VotingScheme = "binary"
)

// Verdict is one participant's opinion of a candidate.
//
// Under the five-level scheme it is one of the five constants below,
// ordered by favorability love > like > meh ≈ unknown > nope. Under the
// binary scheme it carries the chosen option label verbatim and has no
// strength ordering.
type Verdict string

const (
	VerdictLove    Verdict = "love"
	VerdictLike    Verdict = "like"
	VerdictMeh     Verdict = "meh"
	VerdictUnknown Verdict = "unknown"
	VerdictNope    Verdict = "nope"
)

// Normalize maps any value outside the five-level scale to VerdictUnknown.
// A malformed or missing vote is an absent opinion, never a veto.
func (v Verdict) Normalize() Verdict {
	switch v {
	case VerdictLove, VerdictLike, VerdictMeh, VerdictUnknown, VerdictNope:
		return v
	default:
		return VerdictUnknown
	}
}

// Positive reports whether the verdict is an endorsement (love or like).
func (v Verdict) Positive() bool {
	return v == VerdictLove || v == VerdictLike
}

// Candidate is a single item being voted on, typically a place.
// Candidates are produced once by the candidate provider when a session's
// voting phase opens and are immutable afterward.
type Candidate struct {
	// ID uniquely identifies this candidate within a session.
	ID string `json:"id" yaml:"id"`

	// Name is the display label shown to participants.
	Name string `json:"name" yaml:"name"`

	// Tags are category labels such as cuisine types. May be empty.
	// Order is preserved from the provider.
	Tags []string `json:"tags,omitempty" yaml:"tags,omitempty"`

	// Address, Hours, and Contact are pass-through richness fields.
	// The engine never inspects them.
	Address string `json:"address,omitempty" yaml:"address,omitempty"`
	Hours   string `json:"hours,omitempty" yaml:"hours,omitempty"`
	Contact string `json:"contact,omitempty" yaml:"contact,omitempty"`

	// Options holds the two choice labels for the binary scheme.
	// Unused under the five-level scheme.
	Options []string `json:"options,omitempty" yaml:"options,omitempty"`
}

// VoteRecord is one participant's completed ballot.
// A submission replaces the Choices map wholesale; records are immutable
// afterward unless a late joiner resubmits under the close-early policy.
type VoteRecord struct {
	ParticipantID   string `json:"participant_id" yaml:"participant_id"`
	ParticipantName string `json:"participant_name" yaml:"participant_name"`

	// Choices maps Candidate.ID to the participant's verdict.
	// Keys need not cover every candidate; an absent key is equivalent
	// to VerdictUnknown.
	Choices map[string]Verdict `json:"choices" yaml:"choices"`
}

// VerdictFor returns the participant's normalized verdict for the given
// candidate, treating absent entries as VerdictUnknown.
func (r VoteRecord) VerdictFor(candidateID string) Verdict {
	v, ok := r.Choices[candidateID]
	if !ok {
		return VerdictUnknown
	}
	return v.Normalize()
}
