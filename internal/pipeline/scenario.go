package pipeline

import (
	"context"
	"fmt"
	"strings"

	"campuslens/internal/llm"
)

const scenarioPrompt = `You are a scenario analyst. Create 2-3 realistic "what if" scenarios based on these document details.

FINANCIAL DETAILS: %s
HOUSING DETAILS: %s
KEY OBLIGATIONS: %s

For each scenario:
1. Describe the situation (e.g., "Student loses on-campus job in month 3")
2. Explain what happens based on the document terms
3. Show the financial/legal implications
4. Suggest what the student should do

Make scenarios concrete and actionable.`

// ScenarioStage narrates 2-3 "what if" vignettes when there is material to
// build them from; otherwise it is a no-op.
type ScenarioStage struct {
	LLM llm.Client
}

func (sc *ScenarioStage) Run(ctx context.Context, s State) State {
	ctx = llm.WithStage(ctx, "scenario")

	if s.FinancialDetails == "" && s.HousingDetails == "" && len(s.Obligations) == 0 {
		return s.withStatus("scenario", OutcomeSkipped, nil)
	}

	obligations := s.Obligations
	if len(obligations) > 3 {
		obligations = obligations[:3]
	}
	prompt := fmt.Sprintf(scenarioPrompt, s.FinancialDetails, s.HousingDetails, strings.Join(obligations, ", "))

	narrated, err := sc.LLM.Generate(ctx, prompt, 0.8)
	if err != nil {
		return s.withStatus("scenario", OutcomeDegraded, err)
	}
	s.Scenario = narrated
	return s.withStatus("scenario", OutcomeOK, nil)
}
