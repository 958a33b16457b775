package llm

import (
	"context"
	"strings"
	"sync"
)

// FakeClient is a scripted client for tests. Responses are matched against
// prompt substrings in registration order; unmatched prompts get Default.
type FakeClient struct {
	mu        sync.Mutex
	rules     []fakeRule
	Default   string
	Err       error
	ErrMatch  string // when set, only prompts containing this substring fail
	Prompts   []string
	Temps     []float32
	CallCount int
}

type fakeRule struct {
	contains string
	reply    string
}

// Respond registers a scripted reply for prompts containing the substring.
func (f *FakeClient) Respond(contains, reply string) *FakeClient {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rules = append(f.rules, fakeRule{contains: contains, reply: reply})
	return f
}

func (f *FakeClient) Name() string { return "fake" }
func (f *FakeClient) Close() error { return nil }

func (f *FakeClient) Generate(ctx context.Context, prompt string, temperature float32) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.CallCount++
	f.Prompts = append(f.Prompts, prompt)
	f.Temps = append(f.Temps, temperature)
	if f.Err != nil && (f.ErrMatch == "" || strings.Contains(prompt, f.ErrMatch)) {
		return "", f.Err
	}
	for _, r := range f.rules {
		if strings.Contains(prompt, r.contains) {
			return r.reply, nil
		}
	}
	return f.Default, nil
}

// FakeEmbedder returns deterministic pseudo-vectors derived from the text so
// identical texts embed identically and different texts rarely collide.
type FakeEmbedder struct {
	mu    sync.Mutex
	Calls int
	Err   error
}

func (f *FakeEmbedder) Embed(ctx context.Context, text string, task EmbedTask) ([]float32, error) {
	f.mu.Lock()
	f.Calls++
	err := f.Err
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	vec := make([]float32, 8)
	for i, r := range text {
		vec[i%8] += float32(r%31) / 31
	}
	return vec, nil
}
