// Package suggest implements the external AI suggestion collaborator.
// It is consulted only when the deterministic engine finds zero viable
// outcomes; every failure mode, from transport errors to unparseable
// responses, is surfaced as an error the caller treats as "no
// suggestions".
package suggest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"text/template"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/palate-app/palate/internal/domain"
	"github.com/palate-app/palate/internal/ports"
)

const (
	// defaultMaxSuggestions bounds the number of accepted ideas.
	defaultMaxSuggestions = 5

	// defaultTemperature keeps suggestions varied; this call only
	// happens when determinism already failed the group.
	defaultTemperature = 0.7

	systemPrompt = "You help groups of friends find places to go when " +
		"their votes reached no consensus. Respond only with JSON."
)

// promptTemplate renders the suggestion request into the model prompt.
// Compiled once at package init; the inputs are data, never templates.
var promptTemplate = template.Must(template.New("suggest").
	Funcs(template.FuncMap{"join": strings.Join}).
	Parse(
	`A group is looking for {{.Category}} near {{.Location}}{{if .RadiusTier}} ({{.RadiusTier}} range){{end}}, but their votes found no common ground.
{{if .TopTags}}
Tags the group responded to most: {{join .TopTags ", "}}.
{{end}}
Participants:
{{- range .Participants}}
- {{.ParticipantName}}: loved {{.LovedCount}}, liked {{.LikedCount}}{{if .FavoredTags}}, favors {{join .FavoredTags ", "}}{{end}}
{{- end}}

Suggest up to {{.MaxSuggestions}} fresh ideas the whole group could agree on. Respond with a JSON array in exactly this format:
[{"label": "<name>", "rationale": "<why the group might agree>", "search_hint": "<search query>"}]`))

// LLMSuggester implements ports.SuggestionService on top of an LLM
// client. It is stateless and safe for concurrent use.
type LLMSuggester struct {
	client         ports.LLMClient
	validate       *validator.Validate
	tracer         trace.Tracer
	maxSuggestions int
	maxTokens      int
}

var _ ports.SuggestionService = (*LLMSuggester)(nil)

// SuggesterOption configures an LLMSuggester.
type SuggesterOption func(*LLMSuggester)

// WithMaxSuggestions caps the number of suggestions accepted from the
// model.
func WithMaxSuggestions(n int) SuggesterOption {
	return func(s *LLMSuggester) {
		if n > 0 {
			s.maxSuggestions = n
		}
	}
}

// WithMaxTokens bounds the completion length.
func WithMaxTokens(n int) SuggesterOption {
	return func(s *LLMSuggester) {
		if n > 0 {
			s.maxTokens = n
		}
	}
}

// NewLLMSuggester creates a suggestion service backed by the given LLM
// client.
func NewLLMSuggester(client ports.LLMClient, opts ...SuggesterOption) (*LLMSuggester, error) {
	if client == nil {
		return nil, fmt.Errorf("LLM client cannot be nil")
	}
	s := &LLMSuggester{
		client:         client,
		validate:       validator.New(),
		tracer:         otel.Tracer("llm-suggester"),
		maxSuggestions: defaultMaxSuggestions,
		maxTokens:      1024,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Suggest renders the request into a prompt, calls the model, and parses
// the JSON array it returns. The caller owns the timeout on ctx.
func (s *LLMSuggester) Suggest(ctx context.Context, req ports.SuggestionRequest) ([]domain.Suggestion, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("invalid suggestion request: %w", fieldErrors(err))
	}

	ctx, span := s.tracer.Start(ctx, "suggest.llm",
		trace.WithAttributes(
			attribute.String("category", req.Category),
			attribute.Int("participants", len(req.Participants)),
			attribute.String("model", s.client.GetModel()),
		))
	defer span.End()

	prompt, err := s.renderPrompt(req)
	if err != nil {
		return nil, err
	}

	response, err := s.client.Complete(ctx, prompt, map[string]any{
		"temperature": defaultTemperature,
		"max_tokens":  s.maxTokens,
		"system":      systemPrompt,
	})
	if err != nil {
		return nil, fmt.Errorf("suggestion completion failed: %w", err)
	}

	suggestions, err := parseSuggestions(response, s.maxSuggestions)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("suggestions", len(suggestions)))
	return suggestions, nil
}

// fieldErrors folds validator field failures into a domain.ValidationError
// so the caller can log which request fields were unusable.
func fieldErrors(err error) *domain.ValidationError {
	verr := domain.NewValidationError("suggestion request")
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		for _, fe := range fieldErrs {
			verr.AddError(fe.Error())
		}
		return verr
	}
	verr.AddError(err.Error())
	return verr
}

func (s *LLMSuggester) renderPrompt(req ports.SuggestionRequest) (string, error) {
	data := struct {
		ports.SuggestionRequest
		MaxSuggestions int
	}{req, s.maxSuggestions}

	var buf bytes.Buffer
	if err := promptTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering suggestion prompt: %w", err)
	}
	return buf.String(), nil
}

// parseSuggestions extracts the JSON array from the model response,
// tolerating surrounding prose and markdown fences, and drops entries
// without a label.
func parseSuggestions(response string, limit int) ([]domain.Suggestion, error) {
	jsonStr := extractJSONArray(response)
	if jsonStr == "" {
		return nil, fmt.Errorf("no JSON array found in response (%d chars)", len(response))
	}

	var raw []domain.Suggestion
	if err := json.Unmarshal([]byte(jsonStr), &raw); err != nil {
		return nil, fmt.Errorf("parsing suggestion JSON: %w", err)
	}

	suggestions := make([]domain.Suggestion, 0, len(raw))
	for _, sug := range raw {
		if strings.TrimSpace(sug.Label) == "" {
			continue
		}
		suggestions = append(suggestions, sug)
		if len(suggestions) == limit {
			break
		}
	}
	return suggestions, nil
}

// extractJSONArray locates the outermost JSON array in a model response,
// preferring fenced code blocks over bare bracket matching.
func extractJSONArray(response string) string {
	response = strings.TrimSpace(response)

	if strings.Contains(response, "```") {
		start := strings.Index(response, "```")
		start += 3
		if newline := strings.Index(response[start:], "\n"); newline != -1 {
			// Skip a language identifier such as "json".
			if !strings.HasPrefix(strings.TrimSpace(response[start:start+newline]), "[") {
				start += newline + 1
			}
		}
		if end := strings.Index(response[start:], "```"); end != -1 {
			candidate := strings.TrimSpace(response[start : start+end])
			if strings.HasPrefix(candidate, "[") {
				return candidate
			}
		}
	}

	start := strings.Index(response, "[")
	end := strings.LastIndex(response, "]")
	if start == -1 || end == -1 || end < start {
		return ""
	}
	return response[start : end+1]
}
