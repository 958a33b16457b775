package jsonutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStripFences(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain", `{"a":1}`, `{"a":1}`},
		{"fenced", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"fenced no tag", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"leading spaces", "  ```json\n{\"a\":1}\n```  ", `{"a":1}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, StripFences(tc.in))
		})
	}
}

func TestExtractObject(t *testing.T) {
	got := ExtractObject(`Here you go: {"domain": "housing", "note": "a {nested} \"brace\""} hope it helps`)
	require.Equal(t, `{"domain": "housing", "note": "a {nested} \"brace\""}`, got)

	require.Equal(t, "", ExtractObject("no json here"))
	require.Equal(t, "", ExtractObject(`{"unbalanced": true`))
}

func TestUnmarshalTolerant(t *testing.T) {
	var out struct {
		Domain string `json:"domain"`
	}
	require.NoError(t, Unmarshal([]byte("```json\n{\"domain\":\"visa\"}\n```"), &out))
	require.Equal(t, "visa", out.Domain)

	require.NoError(t, Unmarshal([]byte(`The answer is {"domain":"finance"} as requested.`), &out))
	require.Equal(t, "finance", out.Domain)

	require.Error(t, Unmarshal([]byte("not json at all"), &out))
}
