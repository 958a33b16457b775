package pipeline

import (
	"context"
	"fmt"

	"campuslens/internal/llm"
	"campuslens/internal/retrieval"
)

const financeSeedQuery = "tuition fees payment deadlines penalties financial obligations"

const financePrompt = `You are analyzing a student financial document. Your goal is to identify every financial touchpoint in this document.

DOCUMENT TO ANALYZE:
%s

RELEVANT CONTEXT FROM SIMILAR DOCUMENTS:
%s

Analyze the document and extract KEY OBLIGATIONS as concise bullet points.

OUTPUT FORMAT - Return ONLY a bulleted list of obligations:
- [Action item with specific amount/deadline]
- [Action item with specific amount/deadline]

EXAMPLE:
- Pay $2,000 security deposit by March 1, 2026
- Maintain 12+ credit hours per semester
- File FAFSA renewal by April 15, 2026

RULES:
1. Each bullet point must be a SINGLE, ACTIONABLE item
2. Include specific amounts, dates, and requirements
3. Keep each bullet under 15 words
4. Extract 5-8 most critical obligations only
5. Do NOT copy full sentences from the document
6. Do NOT add explanations or context - just the action items

OBLIGATIONS:`

const financeObligationCap = 8

// FinanceStage extracts financial obligations, deadlines and costs into
// FinancialDetails and the shared obligations list.
type FinanceStage struct {
	LLM       llm.Client
	Retriever *retrieval.Retriever
}

func (f *FinanceStage) Run(ctx context.Context, s State) State {
	ctx = llm.WithStage(ctx, "finance")

	items := f.Retriever.Search(ctx, financeSeedQuery, retrieval.CollectionClauses, string(DomainFinance), 5)
	prompt := fmt.Sprintf(financePrompt, truncateText(s.RawText, docExcerptLimit), formatContext(items))

	analysis, err := f.LLM.Generate(ctx, prompt, 0.3)
	if err != nil {
		return s.withStatus("finance", OutcomeDegraded, err)
	}

	s.FinancialDetails = analysis
	s.Obligations = appendUnique(s.Obligations, extractBullets(analysis, financeObligationCap)...)
	return s.withStatus("finance", OutcomeOK, nil)
}
