package llm

import (
	"context"
	"fmt"

	"campuslens/internal/jsonutil"
)

const jsonRepairSuffix = "\n\nIMPORTANT: Respond with ONLY valid JSON. No prose, no markdown fences, no comments."

// GenerateJSON sends a prompt expected to produce JSON and decodes the reply
// into v. On a parse failure it retries exactly once with a stricter
// JSON-only instruction appended; a second parse failure returns
// ErrInvalidJSON. Callers must treat that as "structure absent", not a crash.
func GenerateJSON(ctx context.Context, c Client, prompt string, temperature float32, v any) error {
	out, err := c.Generate(ctx, prompt, temperature)
	if err != nil {
		return err
	}
	if err := jsonutil.Unmarshal([]byte(out), v); err == nil {
		return nil
	}

	out, err = c.Generate(ctx, prompt+jsonRepairSuffix, temperature)
	if err != nil {
		return err
	}
	if err := jsonutil.Unmarshal([]byte(out), v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	return nil
}
