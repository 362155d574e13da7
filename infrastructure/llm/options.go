package llm

// DefaultMaxTokens bounds completions when the caller does not specify.
const DefaultMaxTokens = 1024

// requestOptions is the normalized view of the per-call options map.
type requestOptions struct {
	model       string
	maxTokens   int
	temperature *float64
	system      string
}

// parseRequestOptions extracts the standard options, substituting the
// provider defaults for missing or malformed entries. Unknown keys are
// ignored; a bad value is treated the same as an absent one.
func parseRequestOptions(opts map[string]any, defaultModel string) requestOptions {
	options := requestOptions{
		model:     defaultModel,
		maxTokens: DefaultMaxTokens,
	}

	if m, ok := opts["model"].(string); ok && m != "" {
		options.model = m
	}
	if mt, ok := opts["max_tokens"].(int); ok && mt > 0 {
		options.maxTokens = mt
	}
	if t, ok := opts["temperature"].(float64); ok && t >= 0 && t <= 2 {
		options.temperature = &t
	}
	if s, ok := opts["system"].(string); ok {
		options.system = s
	}
	return options
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
