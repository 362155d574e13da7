// Package session owns the voting lifecycle around the aggregation
// engine: participants joining, ballot completeness bookkeeping, the
// lobby/collecting/complete state machine, and orchestration of the
// external suggestion fallback. The engine never sees any of this state;
// it takes data in and returns data out.
package session

import (
	"time"

	"github.com/palate-app/palate/internal/domain"
)

// Phase is a session's position in the voting lifecycle.
// Valid transitions are lobby -> collecting -> complete, plus the
// complete -> complete self-loop for late-joiner resubmissions. No
// transition ever goes backward once results exist.
type Phase string

const (
	// PhaseLobby is the initial phase, before candidates are available.
	PhaseLobby Phase = "lobby"

	// PhaseCollecting means candidates are published and ballots are
	// being accepted.
	PhaseCollecting Phase = "collecting"

	// PhaseComplete means a result exists. Further ballots trigger a
	// full recompute that replaces it.
	PhaseComplete Phase = "complete"
)

// Participant is someone who joined a session.
type Participant struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Session is the caller-owned state for one voting session. The
// aggregation engine never touches a Session; the service extracts the
// candidate list and completed ballots and hands those over.
//
// Sessions are not self-synchronizing. The service serializes all access
// to a session through a per-session lock; stores only copy them in and
// out.
type Session struct {
	ID string `json:"id"`

	// Category, Location, and RadiusTier describe what the group is
	// deciding on; they are forwarded verbatim to the suggestion
	// service on fallback.
	Category   string `json:"category"`
	Location   string `json:"location"`
	RadiusTier string `json:"radius_tier"`

	Scheme domain.VotingScheme `json:"scheme"`
	Phase  Phase               `json:"phase"`

	// Participants preserves join order, which keeps ballot iteration
	// and profile ordering deterministic.
	Participants []Participant `json:"participants"`

	Candidates []domain.Candidate `json:"candidates"`

	// Ballots maps participant id to their completed ballot. A
	// participant appears here only after submitting.
	Ballots map[string]domain.VoteRecord `json:"ballots"`

	Result *domain.AggregateResult `json:"result,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// CompletedCount returns how many participants have submitted a ballot.
func (s *Session) CompletedCount() int { return len(s.Ballots) }

// AllCompleted reports whether every current participant has submitted.
// False when the session has no participants at all.
func (s *Session) AllCompleted() bool {
	return len(s.Participants) > 0 && len(s.Ballots) == len(s.Participants)
}

// completedBallots returns submitted ballots in participant join order.
func (s *Session) completedBallots() []domain.VoteRecord {
	records := make([]domain.VoteRecord, 0, len(s.Ballots))
	for _, p := range s.Participants {
		if r, ok := s.Ballots[p.ID]; ok {
			records = append(records, r)
		}
	}
	return records
}

// hasParticipant reports whether the given participant joined.
func (s *Session) hasParticipant(id string) bool {
	for _, p := range s.Participants {
		if p.ID == id {
			return true
		}
	}
	return false
}
