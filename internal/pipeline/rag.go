package pipeline

import (
	"context"
	"sort"

	"campuslens/internal/retrieval"
)

const (
	ragAnchorLen   = 200
	ragPerQueryK   = 3
	ragContextCap  = 10
	resourceTopK   = 3
	ragFinanceSeed = "tuition payment deadline penalty financial obligation fee"
	ragHousingSeed = "lease termination move-out penalty deposit liability"
	ragVisaSeed    = "visa compliance I-20 enrollment status immigration"
)

// RAGStage enriches the state with clauses similar to the document. It is the
// convergence point of the branch: it runs for every domain, including
// unknown, and also attaches domain-matched campus resources.
type RAGStage struct {
	Retriever *retrieval.Retriever
}

func (r *RAGStage) Run(ctx context.Context, s State) State {
	queries := r.buildQueries(s)

	var merged []retrieval.Item
	seen := make(map[string]bool)
	for _, q := range queries {
		for _, item := range r.Retriever.Search(ctx, q, retrieval.CollectionClauses, "", ragPerQueryK) {
			if item.Text == "" || seen[item.Text] {
				continue
			}
			seen[item.Text] = true
			merged = append(merged, item)
		}
	}
	sort.SliceStable(merged, func(i, j int) bool { return merged[i].Score > merged[j].Score })
	if len(merged) > ragContextCap {
		merged = merged[:ragContextCap]
	}
	s.RAGContext = merged

	if s.Domain != DomainUnknown {
		s.Resources = r.Retriever.Search(ctx, string(s.Domain)+" student support office", retrieval.CollectionResources, string(s.Domain), resourceTopK)
	} else {
		s.Resources = r.Retriever.Search(ctx, truncateText(s.RawText, ragAnchorLen), retrieval.CollectionResources, "", resourceTopK)
	}

	return s.withStatus("rag", OutcomeOK, nil)
}

// buildQueries assembles a document anchor plus a seed query per populated
// domain signal.
func (r *RAGStage) buildQueries(s State) []string {
	var queries []string
	if anchor := truncateText(s.RawText, ragAnchorLen); anchor != "" {
		queries = append(queries, anchor)
	}
	if s.Domain == DomainFinance || s.FinancialDetails != "" {
		queries = append(queries, ragFinanceSeed)
	}
	if s.Domain == DomainHousing || s.HousingDetails != "" {
		queries = append(queries, ragHousingSeed)
	}
	if s.Domain == DomainVisa || s.VisaDetails != "" {
		queries = append(queries, ragVisaSeed)
	}
	return queries
}
