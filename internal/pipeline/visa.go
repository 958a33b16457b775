package pipeline

import (
	"context"
	"fmt"

	"campuslens/internal/llm"
	"campuslens/internal/retrieval"
)

const visaSeedQuery = "visa I-20 F-1 J-1 immigration compliance status international"

const visaPrompt = `You are analyzing a document for F-1/J-1 student visa compliance.

DOCUMENT TO ANALYZE:
%s

RELEVANT VISA CONTEXT:
%s

Extract KEY VISA OBLIGATIONS as concise bullet points.

OUTPUT FORMAT - Return ONLY a bulleted list:
- [Specific visa compliance action]
- [Specific visa compliance action]

EXAMPLE:
- Maintain full-time enrollment (12+ credits)
- Report address changes to ISSS within 10 days
- Renew I-20 before expiration date

RULES:
1. Each bullet = ONE actionable compliance item
2. Include specific requirements and deadlines
3. Keep each bullet under 15 words
4. Extract 3-6 most critical obligations only
5. Do NOT copy full document text

VISA OBLIGATIONS:`

const visaObligationCap = 6

// VisaStage extracts visa compliance obligations into VisaDetails and the
// shared obligations list.
type VisaStage struct {
	LLM       llm.Client
	Retriever *retrieval.Retriever
}

func (v *VisaStage) Run(ctx context.Context, s State) State {
	ctx = llm.WithStage(ctx, "visa")

	items := v.Retriever.Search(ctx, visaSeedQuery, retrieval.CollectionClauses, string(DomainVisa), 5)
	prompt := fmt.Sprintf(visaPrompt, truncateText(s.RawText, docExcerptLimit), formatContext(items))

	analysis, err := v.LLM.Generate(ctx, prompt, 0.3)
	if err != nil {
		return s.withStatus("visa", OutcomeDegraded, err)
	}

	s.VisaDetails = analysis
	s.Obligations = appendUnique(s.Obligations, extractBullets(analysis, visaObligationCap)...)
	return s.withStatus("visa", OutcomeOK, nil)
}
