package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/palate-app/palate/internal/domain"
	"github.com/palate-app/palate/internal/engine"
	"github.com/palate-app/palate/internal/ports"
)

// Service coordinates the voting lifecycle for all sessions. It owns the
// state machine, ballot bookkeeping, per-session serialization of
// aggregation triggers, and the fallback call to the external suggestion
// service. Different sessions aggregate fully in parallel; within one
// session all triggers run under a single lock, last write wins.
type Service struct {
	store   Store
	engine  *engine.Engine
	suggest ports.SuggestionService
	metrics ports.MetricsCollector
	logger  *slog.Logger

	suggestionTimeout time.Duration

	// locks holds one *sync.Mutex per session id.
	locks sync.Map
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithSuggestionService wires the external AI collaborator consulted
// when aggregation finds no viable outcome. Without it, results simply
// carry NeedsExternalFallback for the caller to act on.
func WithSuggestionService(s ports.SuggestionService, timeout time.Duration) ServiceOption {
	return func(svc *Service) {
		svc.suggest = s
		if timeout > 0 {
			svc.suggestionTimeout = timeout
		}
	}
}

// WithMetrics wires a metrics collector.
func WithMetrics(m ports.MetricsCollector) ServiceOption {
	return func(svc *Service) { svc.metrics = m }
}

// WithLogger overrides the default slog logger.
func WithLogger(l *slog.Logger) ServiceOption {
	return func(svc *Service) { svc.logger = l }
}

// NewService creates a session service backed by the given store and
// aggregation engine.
func NewService(store Store, eng *engine.Engine, opts ...ServiceOption) *Service {
	svc := &Service{
		store:             store,
		engine:            eng,
		logger:            slog.Default(),
		suggestionTimeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// CreateParams describes a new session.
type CreateParams struct {
	Category   string
	Location   string
	RadiusTier string
	Scheme     domain.VotingScheme
}

// Create starts a new session in the lobby phase.
func (svc *Service) Create(ctx context.Context, params CreateParams) (*Session, error) {
	scheme := params.Scheme
	if scheme == "" {
		scheme = domain.SchemeFiveLevel
	}

	s := &Session{
		ID:         uuid.NewString(),
		Category:   params.Category,
		Location:   params.Location,
		RadiusTier: params.RadiusTier,
		Scheme:     scheme,
		Phase:      PhaseLobby,
		Ballots:    make(map[string]domain.VoteRecord),
		CreatedAt:  time.Now().UTC(),
	}
	if err := svc.store.Create(ctx, s); err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}

	svc.logger.Info("session created",
		"session_id", s.ID, "category", s.Category, "scheme", string(s.Scheme))
	return s, nil
}

// OpenVoting publishes the candidate list and moves the session from
// lobby to collecting. The candidate list is immutable afterward.
func (svc *Service) OpenVoting(ctx context.Context, sessionID string, candidates []domain.Candidate) error {
	return svc.withSession(ctx, sessionID, func(s *Session) error {
		if s.Phase != PhaseLobby {
			return &domain.TransitionError{SessionID: s.ID, From: string(s.Phase), To: string(PhaseCollecting)}
		}
		if len(candidates) == 0 {
			return domain.ErrNoCandidates
		}
		s.Candidates = candidates
		s.Phase = PhaseCollecting
		return nil
	})
}

// Join registers a participant. Joining is allowed in any phase; a
// participant who joins after completion becomes a late joiner whose
// ballot triggers a recompute.
func (svc *Service) Join(ctx context.Context, sessionID string, p Participant) error {
	return svc.withSession(ctx, sessionID, func(s *Session) error {
		if s.hasParticipant(p.ID) {
			return nil
		}
		s.Participants = append(s.Participants, p)
		return nil
	})
}

// SubmitBallot records a participant's completed ballot, replacing any
// prior submission wholesale. When the last outstanding ballot lands the
// session transitions to complete and aggregation runs; a ballot arriving
// after completion reruns aggregation as a late-joiner update. The
// returned result is nil while ballots are still outstanding.
func (svc *Service) SubmitBallot(ctx context.Context, sessionID string, record domain.VoteRecord) (*domain.AggregateResult, error) {
	var result *domain.AggregateResult
	err := svc.withSession(ctx, sessionID, func(s *Session) error {
		if s.Phase == PhaseLobby {
			return &domain.TransitionError{SessionID: s.ID, From: string(s.Phase), To: string(PhaseComplete)}
		}
		if !s.hasParticipant(record.ParticipantID) {
			return fmt.Errorf("participant %s: %w", record.ParticipantID, domain.ErrParticipantNotFound)
		}

		s.Ballots[record.ParticipantID] = record

		switch {
		case s.Phase == PhaseComplete:
			result = svc.aggregate(ctx, s, domain.TriggerLateJoiner)
		case s.AllCompleted():
			s.Phase = PhaseComplete
			result = svc.aggregate(ctx, s, domain.TriggerFullCompletion)
		}
		if result != nil {
			s.Result = result
		}
		return nil
	})
	return result, err
}

// CloseEarly finalizes the session with only the completed ballots. It
// fails without a transition when nobody has completed yet.
func (svc *Service) CloseEarly(ctx context.Context, sessionID string) (*domain.AggregateResult, error) {
	var result *domain.AggregateResult
	err := svc.withSession(ctx, sessionID, func(s *Session) error {
		if s.Phase != PhaseCollecting {
			return &domain.TransitionError{SessionID: s.ID, From: string(s.Phase), To: string(PhaseComplete)}
		}
		if s.CompletedCount() == 0 {
			return domain.ErrNoCompletedBallots
		}
		s.Phase = PhaseComplete
		result = svc.aggregate(ctx, s, domain.TriggerEarlyClose)
		s.Result = result
		return nil
	})
	return result, err
}

// Result returns the session's latest aggregation result, or nil before
// the first completion.
func (svc *Service) Result(ctx context.Context, sessionID string) (*domain.AggregateResult, error) {
	s, err := svc.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.Result, nil
}

// withSession runs fn with the session loaded, locked, and saved back.
// The per-session mutex serializes concurrent triggers; the uncontended
// path is a map lookup and two store calls.
func (svc *Service) withSession(ctx context.Context, sessionID string, fn func(*Session) error) error {
	muAny, _ := svc.locks.LoadOrStore(sessionID, &sync.Mutex{})
	mu := muAny.(*sync.Mutex)
	mu.Lock()
	defer mu.Unlock()

	s, err := svc.store.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	if err := fn(s); err != nil {
		return err
	}
	return svc.store.Save(ctx, s)
}

// aggregate runs a full engine pass over the session's completed ballots
// and, when the engine reports no viable outcome, consults the external
// suggestion service. Collaborator failure is never fatal: the engine's
// result stands with NeedsExternalFallback still set.
func (svc *Service) aggregate(ctx context.Context, s *Session, trigger domain.AggregateTrigger) *domain.AggregateResult {
	start := time.Now()
	records := s.completedBallots()

	var result domain.AggregateResult
	if s.Scheme == domain.SchemeBinary {
		// Binary sessions are synthesized externally; the engine only
		// contributes the raw choice distributions.
		result = domain.AggregateResult{
			ID:            uuid.NewString(),
			BinaryTallies: engine.BinaryDistributions(s.Candidates, records),
			ComputedAt:    time.Now().UTC(),
		}
	} else {
		result = svc.engine.Aggregate(s.Candidates, records)
	}
	result.Trigger = trigger

	if svc.metrics != nil {
		svc.metrics.RecordLatency("aggregate", time.Since(start), map[string]string{
			"trigger": string(trigger),
			"scheme":  string(s.Scheme),
		})
	}
	svc.logger.Info("aggregation complete",
		"session_id", s.ID,
		"trigger", string(trigger),
		"ballots", len(records),
		"needs_fallback", result.NeedsExternalFallback)

	if result.NeedsExternalFallback && svc.suggest != nil {
		svc.applySuggestions(ctx, s, &result)
	}
	return &result
}

// applySuggestions calls the suggestion service with a bounded timeout
// and splices successful output into the result, overriding the group
// summary. Failure and empty responses leave the result untouched.
func (svc *Service) applySuggestions(ctx context.Context, s *Session, result *domain.AggregateResult) {
	req := buildSuggestionRequest(s, result)

	ctx, cancel := context.WithTimeout(ctx, svc.suggestionTimeout)
	defer cancel()

	start := time.Now()
	suggestions, err := svc.suggest.Suggest(ctx, req)
	if svc.metrics != nil {
		outcome := "ok"
		if err != nil || len(suggestions) == 0 {
			outcome = "empty"
		}
		svc.metrics.RecordLatency("suggest", time.Since(start), map[string]string{"outcome": outcome})
	}
	if err != nil {
		svc.logger.Warn("suggestion service failed; keeping engine result",
			"session_id", s.ID, "error", err)
		return
	}
	if len(suggestions) == 0 {
		return
	}

	result.Suggestions = suggestions
	result.GroupSummary = engine.FreshIdeasSummary(len(suggestions))
}

// buildSuggestionRequest shapes the fallback request: session context,
// the group's top tag affinities, and one taste summary per participant.
func buildSuggestionRequest(s *Session, result *domain.AggregateResult) ports.SuggestionRequest {
	req := ports.SuggestionRequest{
		Category:   s.Category,
		Location:   s.Location,
		RadiusTier: s.RadiusTier,
	}
	for _, tc := range result.TopTags {
		req.TopTags = append(req.TopTags, tc.Tag)
	}
	for _, p := range result.IndividualProfiles {
		summary := ports.TasteSummary{
			ParticipantID:   p.ParticipantID,
			ParticipantName: p.ParticipantName,
			LovedCount:      p.Totals.Loved,
			LikedCount:      p.Totals.Liked,
		}
		for _, tc := range p.TopTags {
			summary.FavoredTags = append(summary.FavoredTags, tc.Tag)
		}
		req.Participants = append(req.Participants, summary)
	}
	return req
}
