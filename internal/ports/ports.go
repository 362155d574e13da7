// Package ports defines the interfaces between the aggregation core and
// the outside world: candidate provisioning, external suggestion
// generation, LLM access, and metrics. The engine itself depends on none
// of these; they exist so the session service and infrastructure adapters
// stay swappable and testable.
package ports

import (
	"context"
	"time"

	"github.com/palate-app/palate/internal/domain"
)

// CandidateQuery describes what a session wants candidates for.
type CandidateQuery struct {
	// Category is the kind of place being sought, e.g. "dinner".
	Category string `validate:"required"`

	// Location is a free-form location descriptor.
	Location string `validate:"required"`

	// RadiusTier is a coarse search radius bucket ("walking", "short
	// drive", "day trip").
	RadiusTier string

	// Limit bounds the number of candidates returned. Zero means the
	// provider's default.
	Limit int `validate:"min=0"`
}

// CandidateProvider supplies the list of items a session votes on.
// Implementations wrap external search or geocoding services; the engine
// consumes their output as an opaque list.
type CandidateProvider interface {
	// Candidates returns candidate items for the query, ordered by the
	// provider's own relevance. Implementations must respect ctx
	// cancellation.
	Candidates(ctx context.Context, q CandidateQuery) ([]domain.Candidate, error)
}

// TasteSummary condenses one participant's ballot for the suggestion
// service: which tags they favored and how much they endorsed overall.
type TasteSummary struct {
	ParticipantID   string   `json:"participant_id"`
	ParticipantName string   `json:"participant_name"`
	FavoredTags     []string `json:"favored_tags"`
	LovedCount      int      `json:"loved_count"`
	LikedCount      int      `json:"liked_count"`
}

// SuggestionRequest carries everything the external suggestion service
// needs to produce fresh ideas for a group with no voting consensus.
type SuggestionRequest struct {
	Category   string `validate:"required"`
	Location   string `validate:"required"`
	RadiusTier string

	// TopTags is the group's tag-affinity list, strongest first.
	TopTags []string

	// Participants summarizes each completed ballot.
	Participants []TasteSummary
}

// SuggestionService is the external AI collaborator consulted only when
// the deterministic engine finds zero viable outcomes. Callers must bound
// the call with a timeout and treat every failure mode, including an
// empty response, as "no suggestions" rather than as fatal to aggregation.
type SuggestionService interface {
	Suggest(ctx context.Context, req SuggestionRequest) ([]domain.Suggestion, error)
}

// LLMClient is the minimal language-model surface the suggestion adapter
// builds on. Implementations handle provider-specific authentication,
// request formatting, and response parsing.
type LLMClient interface {
	// Complete sends a prompt and returns the generated text. The
	// options map carries provider-specific settings such as
	// "temperature" (float64), "max_tokens" (int), or "model" (string).
	Complete(ctx context.Context, prompt string, options map[string]any) (string, error)

	// EstimateTokens approximates the token count of text, for cost
	// estimation and rate limiting before a request is made.
	EstimateTokens(text string) (int, error)

	// GetModel returns the model identifier in use, for logging.
	GetModel() string
}

// MetricsCollector records operational metrics for aggregation runs and
// suggestion calls. Implementations integrate with Prometheus or similar;
// a nil-safe no-op is acceptable everywhere a collector is optional.
type MetricsCollector interface {
	// RecordLatency records the duration of an operation.
	RecordLatency(operation string, duration time.Duration, labels map[string]string)

	// RecordCounter increments a counter metric by value.
	RecordCounter(metric string, value float64, labels map[string]string)

	// RecordGauge sets the current value of a gauge metric.
	RecordGauge(metric string, value float64, labels map[string]string)
}
