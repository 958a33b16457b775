package pipeline

import (
	"context"
	"fmt"
	"strings"

	"campuslens/internal/llm"
)

const translatePrompt = `Translate these legal/financial clauses into plain, simple language that a student can understand.

ORIGINAL CLAUSES:
%s

TARGET LANGUAGE: %s

Provide clear, simple explanations. Avoid jargon. Make sure the student understands what they're actually agreeing to.`

const translateClauseCap = 5

// TranslateStage produces a plain-language translation of the accumulated
// clause text. English targets and clause-less runs pass through unchanged.
type TranslateStage struct {
	LLM llm.Client
}

func (t *TranslateStage) Run(ctx context.Context, s State) State {
	ctx = llm.WithStage(ctx, "translate")

	source := s.Clauses
	if len(source) == 0 && s.RiskAssessment != "" {
		source = []string{s.RiskAssessment}
	}
	if s.Language == "en" || len(source) == 0 {
		return s.withStatus("translate", OutcomeSkipped, nil)
	}
	if len(source) > translateClauseCap {
		source = source[:translateClauseCap]
	}

	prompt := fmt.Sprintf(translatePrompt, strings.Join(source, "\n"), s.Language)
	translation, err := t.LLM.Generate(ctx, prompt, 0.6)
	if err != nil {
		return s.withStatus("translate", OutcomeDegraded, err)
	}
	s.Translation = translation
	return s.withStatus("translate", OutcomeOK, nil)
}
