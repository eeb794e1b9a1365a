package providers

import "context"

// GenerateOptions tunes a single text-generation call.
type GenerateOptions struct {
	Model       string
	MaxTokens   int
	Temperature float64
	// JSONMode asks the backend for a JSON response where the API supports
	// it. Callers must still tolerate fenced or prefixed output.
	JSONMode bool
}

// TextProvider is the generative-text model boundary: one prompt in, free
// text out. The agent calls it twice per query (planning and synthesis),
// each call with its own prompt template.
type TextProvider interface {
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)
	GetDefaultModel() string
}
