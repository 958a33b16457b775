package pipeline

import (
	"context"
	"fmt"

	"campuslens/internal/llm"
	"campuslens/internal/retrieval"
)

const housingSeedQuery = "move-in move-out lease cancellation maintenance responsibilities"

const housingPrompt = `You are analyzing a residential agreement or lease for a student.

DOCUMENT TO ANALYZE:
%s

RELEVANT HOUSING CONTEXT:
%s

Your task:
1. Identify ALL move-in and move-out dates
2. Detail maintenance responsibilities and who pays for what
3. ANALYZE the cancellation policy - what is the "point of no return"?
4. Calculate any BUYOUT COSTS if the lease is broken early
5. Identify PENALTIES for damages, early termination, or policy violations
6. Flag any UNUSUAL or UNFAIR terms that disadvantage the tenant

Present your findings as a practical guide for the student.`

// HousingStage analyzes lease terms, dates and cancellation policies. Unlike
// the bullet-list stages it keeps structured prose, stored in HousingDetails
// and appended to the clause log for translation.
type HousingStage struct {
	LLM       llm.Client
	Retriever *retrieval.Retriever
}

func (h *HousingStage) Run(ctx context.Context, s State) State {
	ctx = llm.WithStage(ctx, "housing")

	items := h.Retriever.Search(ctx, housingSeedQuery, retrieval.CollectionClauses, string(DomainHousing), 5)
	prompt := fmt.Sprintf(housingPrompt, truncateText(s.RawText, docExcerptLimit), formatContext(items))

	analysis, err := h.LLM.Generate(ctx, prompt, 0.7)
	if err != nil {
		return s.withStatus("housing", OutcomeDegraded, err)
	}

	s.HousingDetails = analysis
	s.Clauses = appendUnique(s.Clauses, analysis)
	// Housing analyses are prose; only explicitly bulleted lines become
	// obligations so narrative paragraphs stay out of the report list.
	s.Obligations = appendUnique(s.Obligations, extractMarkedBullets(analysis, 6)...)
	return s.withStatus("housing", OutcomeOK, nil)
}
