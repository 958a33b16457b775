package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateJSONFirstTry(t *testing.T) {
	fake := &FakeClient{Default: `{"domain":"housing"}`}
	var out struct {
		Domain string `json:"domain"`
	}
	err := GenerateJSON(context.Background(), fake, "classify", 0.1, &out)
	require.NoError(t, err)
	require.Equal(t, "housing", out.Domain)
	require.Equal(t, 1, fake.CallCount)
}

func TestGenerateJSONRetriesOnceWithStricterInstruction(t *testing.T) {
	fake := &FakeClient{Default: "sorry, I cannot"}
	fake.Respond("ONLY valid JSON", `{"domain":"finance"}`)

	var out struct {
		Domain string `json:"domain"`
	}
	err := GenerateJSON(context.Background(), fake, "classify", 0.1, &out)
	require.NoError(t, err)
	require.Equal(t, "finance", out.Domain)
	require.Equal(t, 2, fake.CallCount)
}

func TestGenerateJSONGivesUpAfterSecondFailure(t *testing.T) {
	fake := &FakeClient{Default: "still not json"}
	var out map[string]any
	err := GenerateJSON(context.Background(), fake, "classify", 0.1, &out)
	require.ErrorIs(t, err, ErrInvalidJSON)
	require.Equal(t, 2, fake.CallCount)
}

func TestGenerateJSONPropagatesCallError(t *testing.T) {
	boom := errors.New("upstream down")
	fake := &FakeClient{Err: boom}
	var out map[string]any
	err := GenerateJSON(context.Background(), fake, "classify", 0.1, &out)
	require.ErrorIs(t, err, boom)
	require.Equal(t, 1, fake.CallCount)
}

func TestFencedJSONAccepted(t *testing.T) {
	fake := &FakeClient{Default: "```json\n{\"ok\":true}\n```"}
	var out struct {
		OK bool `json:"ok"`
	}
	require.NoError(t, GenerateJSON(context.Background(), fake, "p", 0, &out))
	require.True(t, out.OK)
}
