package llm

import (
	"context"
	"log"
	"time"
)

// WithLogging logs request size, latency and errors. Provide a custom logger
// or nil to use log.Default().
func WithLogging(logger *log.Logger) Middleware {
	if logger == nil {
		logger = log.Default()
	}
	return func(next Client) Client {
		return &logging{next: next, log: logger}
	}
}

type logging struct {
	next Client
	log  *log.Logger
}

func (l *logging) Name() string { return l.next.Name() }
func (l *logging) Close() error { return l.next.Close() }

func (l *logging) Generate(ctx context.Context, prompt string, temperature float32) (string, error) {
	start := time.Now()
	l.log.Printf("LLM request (%s): %d bytes, temp=%.2f", StageFrom(ctx), len(prompt), temperature)
	out, err := l.next.Generate(ctx, prompt, temperature)
	if err != nil {
		l.log.Printf("LLM error (%s) after %s: %v", StageFrom(ctx), time.Since(start).Round(time.Millisecond), err)
	}
	return out, err
}

// WithTimeout bounds every Generate call. The upstream service publishes no
// latency guarantee, so an unbounded call can hang a whole pipeline run.
func WithTimeout(d time.Duration) Middleware {
	return func(next Client) Client {
		return &timeout{next: next, d: d}
	}
}

type timeout struct {
	next Client
	d    time.Duration
}

func (t *timeout) Name() string { return t.next.Name() }
func (t *timeout) Close() error { return t.next.Close() }

func (t *timeout) Generate(ctx context.Context, prompt string, temperature float32) (string, error) {
	if t.d <= 0 {
		return t.next.Generate(ctx, prompt, temperature)
	}
	ctx, cancel := context.WithTimeout(ctx, t.d)
	defer cancel()
	return t.next.Generate(ctx, prompt, temperature)
}

type ctxKeyStage struct{}

// WithStage attaches the calling stage name to the context for log lines.
func WithStage(ctx context.Context, stage string) context.Context {
	return context.WithValue(ctx, ctxKeyStage{}, stage)
}

// StageFrom returns the stage name stored in the context.
func StageFrom(ctx context.Context) string {
	if v := ctx.Value(ctxKeyStage{}); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return "unknown"
}
