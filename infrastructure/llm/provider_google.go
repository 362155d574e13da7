package llm

import (
	"context"
	"errors"
	"fmt"
	"math"

	"google.golang.org/api/googleapi"
	"google.golang.org/genai"
)

// GoogleDefaultModel is used when the config does not name a model.
const GoogleDefaultModel = "gemini-2.0-flash"

func init() {
	RegisterProviderFactory("google", newGoogleProvider)
}

// googleProvider implements CoreLLM for Google's Gemini API.
type googleProvider struct {
	client *genai.Client
	model  string
}

func newGoogleProvider(config ClientConfig) (CoreLLM, error) {
	if config.APIKey == "" {
		return nil, ErrEmptyAPIKey
	}

	model := config.Model
	if model == "" {
		model = GoogleDefaultModel
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating Google client: %w", err)
	}

	return &googleProvider{client: client, model: model}, nil
}

// DoRequest sends one generation request to the Gemini API and returns
// the text response with token usage. Gemini has no separate system
// role, so a system prompt is prepended to the user prompt.
func (p *googleProvider) DoRequest(ctx context.Context, prompt string, opts map[string]any) (string, int, int, error) {
	options := parseRequestOptions(opts, p.model)

	finalPrompt := prompt
	if options.system != "" {
		finalPrompt = fmt.Sprintf("System: %s\n\nUser: %s", options.system, prompt)
	}

	config := &genai.GenerateContentConfig{}
	if options.temperature != nil {
		config.Temperature = genai.Ptr(float32(clamp(*options.temperature, 0, 2)))
	}
	if options.maxTokens > 0 && options.maxTokens <= math.MaxInt32 {
		config.MaxOutputTokens = int32(options.maxTokens)
	}

	contents := []*genai.Content{genai.NewContentFromText(finalPrompt, genai.RoleUser)}
	resp, err := p.client.Models.GenerateContent(ctx, options.model, contents, config)
	if err != nil {
		return "", 0, 0, p.wrapError(err)
	}

	content := resp.Text()
	if content == "" {
		return "", 0, 0, ErrEmptyResponse
	}

	tokensIn := estimateTokens(finalPrompt)
	tokensOut := estimateTokens(content)
	if usage := resp.UsageMetadata; usage != nil {
		if usage.PromptTokenCount > 0 {
			tokensIn = int(usage.PromptTokenCount)
		}
		if usage.CandidatesTokenCount > 0 {
			tokensOut = int(usage.CandidatesTokenCount)
		}
	}
	return content, tokensIn, tokensOut, nil
}

// GetModel returns the configured model name.
func (p *googleProvider) GetModel() string { return p.model }

func (p *googleProvider) wrapError(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return classifyHTTPError("google", apiErr.Code, apiErr.Message, err)
	}
	return &ProviderError{Provider: "google", Message: "request failed", Retryable: true, Err: err}
}
