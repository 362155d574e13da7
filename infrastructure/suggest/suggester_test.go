package suggest

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palate-app/palate/internal/domain"
	"github.com/palate-app/palate/internal/ports"
	"github.com/palate-app/palate/internal/testutils"
)

func validRequest() ports.SuggestionRequest {
	return ports.SuggestionRequest{
		Category:   "dinner",
		Location:   "Portland",
		RadiusTier: "walking",
		TopTags:    []string{"thai", "ramen"},
		Participants: []ports.TasteSummary{
			{ParticipantID: "p1", ParticipantName: "Ana", LovedCount: 2, LikedCount: 1, FavoredTags: []string{"thai"}},
			{ParticipantID: "p2", ParticipantName: "Ben"},
		},
	}
}

func TestSuggest_ParsesBareJSON(t *testing.T) {
	client := testutils.NewMockLLMClient("mock-model")
	client.SetFallbackResponse(`[
		{"label": "Night market", "rationale": "street food suits everyone", "search_hint": "night market Portland"},
		{"label": "Food hall"}
	]`)

	suggester, err := NewLLMSuggester(client)
	require.NoError(t, err)

	suggestions, err := suggester.Suggest(context.Background(), validRequest())
	require.NoError(t, err)
	require.Len(t, suggestions, 2)
	assert.Equal(t, "Night market", suggestions[0].Label)
	assert.Equal(t, "night market Portland", suggestions[0].SearchHint)
}

func TestSuggest_ParsesFencedJSON(t *testing.T) {
	client := testutils.NewMockLLMClient("mock-model")
	client.SetFallbackResponse("Here are some ideas:\n```json\n[{\"label\": \"Izakaya crawl\"}]\n```\nEnjoy!")

	suggester, err := NewLLMSuggester(client)
	require.NoError(t, err)

	suggestions, err := suggester.Suggest(context.Background(), validRequest())
	require.NoError(t, err)
	require.Len(t, suggestions, 1)
	assert.Equal(t, "Izakaya crawl", suggestions[0].Label)
}

func TestSuggest_DropsLabellessEntriesAndCaps(t *testing.T) {
	client := testutils.NewMockLLMClient("mock-model")
	client.SetFallbackResponse(`[
		{"label": ""},
		{"label": "One"}, {"label": "Two"}, {"label": "Three"}
	]`)

	suggester, err := NewLLMSuggester(client, WithMaxSuggestions(2))
	require.NoError(t, err)

	suggestions, err := suggester.Suggest(context.Background(), validRequest())
	require.NoError(t, err)
	require.Len(t, suggestions, 2, "blank labels are dropped and the cap applies after")
	assert.Equal(t, "One", suggestions[0].Label)
	assert.Equal(t, "Two", suggestions[1].Label)
}

func TestSuggest_PromptIncludesGroupContext(t *testing.T) {
	client := testutils.NewMockLLMClient("mock-model")
	client.SetFallbackResponse(`[{"label": "x"}]`)

	suggester, err := NewLLMSuggester(client)
	require.NoError(t, err)

	_, err = suggester.Suggest(context.Background(), validRequest())
	require.NoError(t, err)

	prompts := client.Prompts()
	require.Len(t, prompts, 1)
	assert.Contains(t, prompts[0], "dinner near Portland")
	assert.Contains(t, prompts[0], "thai, ramen")
	assert.Contains(t, prompts[0], "Ana: loved 2, liked 1, favors thai")
	assert.Contains(t, prompts[0], "Ben: loved 0, liked 0")
}

func TestSuggest_Failures(t *testing.T) {
	t.Run("client error", func(t *testing.T) {
		client := testutils.NewMockLLMClient("mock-model")
		client.FailWith(errors.New("rate limited"))

		suggester, err := NewLLMSuggester(client)
		require.NoError(t, err)

		_, err = suggester.Suggest(context.Background(), validRequest())
		assert.ErrorContains(t, err, "suggestion completion failed")
	})

	t.Run("no JSON in response", func(t *testing.T) {
		client := testutils.NewMockLLMClient("mock-model")
		client.SetFallbackResponse("I'm sorry, I cannot help with that.")

		suggester, err := NewLLMSuggester(client)
		require.NoError(t, err)

		_, err = suggester.Suggest(context.Background(), validRequest())
		assert.ErrorContains(t, err, "no JSON array found")
	})

	t.Run("malformed JSON", func(t *testing.T) {
		client := testutils.NewMockLLMClient("mock-model")
		client.SetFallbackResponse(`[{"label": }]`)

		suggester, err := NewLLMSuggester(client)
		require.NoError(t, err)

		_, err = suggester.Suggest(context.Background(), validRequest())
		assert.ErrorContains(t, err, "parsing suggestion JSON")
	})

	t.Run("invalid request", func(t *testing.T) {
		client := testutils.NewMockLLMClient("mock-model")
		suggester, err := NewLLMSuggester(client)
		require.NoError(t, err)

		_, err = suggester.Suggest(context.Background(), ports.SuggestionRequest{Location: "Portland"})
		assert.ErrorContains(t, err, "invalid suggestion request")
		assert.Empty(t, client.Prompts(), "validation failures never reach the model")

		var verr *domain.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.True(t, verr.HasErrors(), "the missing category is reported as a field failure")
	})

	t.Run("cancelled context", func(t *testing.T) {
		client := testutils.NewMockLLMClient("mock-model")
		suggester, err := NewLLMSuggester(client)
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err = suggester.Suggest(ctx, validRequest())
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestNewLLMSuggester_NilClient(t *testing.T) {
	_, err := NewLLMSuggester(nil)
	assert.Error(t, err)
}

func TestExtractJSONArray(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     string
	}{
		{name: "bare array", response: `[{"label": "a"}]`, want: `[{"label": "a"}]`},
		{name: "surrounded by prose", response: `Sure! [{"label": "a"}] Hope that helps.`, want: `[{"label": "a"}]`},
		{name: "fenced with language", response: "```json\n[1, 2]\n```", want: "[1, 2]"},
		{name: "fenced without language", response: "```\n[1]\n```", want: "[1]"},
		{name: "no array", response: "nothing here", want: ""},
		{name: "mismatched brackets", response: "] oops [", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractJSONArray(tt.response))
		})
	}
}
