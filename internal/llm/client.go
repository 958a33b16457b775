package llm

import (
	"context"
	"errors"
)

var ErrInvalidJSON = errors.New("invalid json from LLM")

// ErrEmptyResponse is returned when the model produced no usable candidate.
var ErrEmptyResponse = errors.New("empty response from LLM")

// Client is the text-generation adapter every pipeline stage talks to.
// Cross-cutting concerns (logging, timeouts) are applied via Middleware.
type Client interface {
	Name() string
	Close() error
	// Generate sends one prompt and returns the trimmed text response.
	Generate(ctx context.Context, prompt string, temperature float32) (string, error)
}

// Embedder produces fixed-length vectors for retrieval. Task types follow the
// embedding API: TaskDocument when indexing, TaskQuery when searching.
type Embedder interface {
	Embed(ctx context.Context, text string, task EmbedTask) ([]float32, error)
}

type EmbedTask string

const (
	TaskDocument EmbedTask = "RETRIEVAL_DOCUMENT"
	TaskQuery    EmbedTask = "RETRIEVAL_QUERY"
)

// Middleware decorates a Client.
type Middleware func(Client) Client

// Chain applies middlewares left to right: the first listed is outermost.
func Chain(c Client, mws ...Middleware) Client {
	for i := len(mws) - 1; i >= 0; i-- {
		c = mws[i](c)
	}
	return c
}
