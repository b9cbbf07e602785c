package llm

import "context"

// Options carries the generation tunables a caller pins per request.
type Options struct {
	Temperature     float64
	MaxOutputTokens int
}

// Client is implemented by every generation provider.
type Client interface {
	Ping(ctx context.Context) error
	Generate(ctx context.Context, prompt string, opts Options) (string, error)
}
