package pipeline

import (
	"context"
	"fmt"

	"campuslens/internal/llm"
	"campuslens/internal/simulate"
)

const simextMax = 6

const simextPromptTemplate = `You are proposing "what if" simulations for a student based on this %s document analysis.

DOCUMENT EXCERPT:
%s

ANALYSIS:
%s

Propose 2-6 concrete what-if scenarios a student could simulate. %s

Respond with ONLY this JSON:
{"scenarios": [
  {"scenario_type": "<snake_case_tag>", "label": "<short human label>", "description": "<one sentence>", "parameters": {"<name>": <number>}, "formula": "<how the result is computed>"}
]}`

var simextDomainHints = map[Domain]string{
	DomainFinance: "Focus on payment deadlines, aid eligibility, withdrawal refunds and credit-hour requirements. Prefer tags like credit_hour_reduction, withdrawal_refund, missed_deadline.",
	DomainHousing: "Focus on lease termination, late rent, and deposit return. Prefer tags like lease_termination, late_rent, deposit_return.",
	DomainVisa:    "Focus on work-hour limits and course-load requirements for F-1/J-1 status. Prefer tags like work_hours_violation, course_load_drop.",
}

// SimExtractStage asks the model to propose parameterized what-if scenarios
// for the routed domain. Descriptors missing a required key are dropped
// silently; an unknown domain short-circuits to an empty list.
type SimExtractStage struct {
	LLM llm.Client
}

func (x *SimExtractStage) Run(ctx context.Context, s State) State {
	ctx = llm.WithStage(ctx, "simulation")

	hint, ok := simextDomainHints[s.Domain]
	if !ok {
		return s.withStatus("simulation", OutcomeSkipped, nil)
	}

	detail := s.FinancialDetails + s.HousingDetails + s.VisaDetails
	prompt := fmt.Sprintf(simextPromptTemplate,
		s.Domain, truncateText(s.RawText, riskExcerptLimit), truncateText(detail, 2000), hint)

	var out struct {
		Scenarios []simulate.Descriptor `json:"scenarios"`
	}
	if err := llm.GenerateJSON(ctx, x.LLM, prompt, 0.5, &out); err != nil {
		return s.withStatus("simulation", OutcomeDegraded, err)
	}

	var valid []simulate.Descriptor
	for _, d := range out.Scenarios {
		if !d.Valid() {
			continue
		}
		if d.Domain == "" {
			d.Domain = string(s.Domain)
		}
		valid = append(valid, d)
		if len(valid) == simextMax {
			break
		}
	}
	s.SimulationOptions = valid
	return s.withStatus("simulation", OutcomeOK, nil)
}
