package pipeline

import (
	"context"
	"fmt"
	"log"
	"time"

	"campuslens/internal/llm"
	"campuslens/internal/retrieval"
	"campuslens/internal/risk"
)

// node names used by the transition table and the run trace.
const (
	nodeClassify  = "classify"
	nodeFinance   = "finance"
	nodeHousing   = "housing"
	nodeVisa      = "visa"
	nodeRAG       = "rag"
	nodeRisk      = "risk"
	nodeSimulate  = "simulation"
	nodeTranslate = "translate"
	nodeScenario  = "scenario"
	nodeEnd       = "end"
)

// Stage is one step of the analysis. Implementations never return an error;
// failures are recorded in the state trace and the run continues.
type Stage interface {
	Run(ctx context.Context, s State) State
}

// Graph wires the stages into a fixed route: classify, branch by domain,
// converge on retrieval, then risk and simulation, with translation and
// scenario narration as conditional tails.
type Graph struct {
	stages   map[string]Stage
	deadline time.Duration
}

// Options configures graph construction.
type Options struct {
	LLM       llm.Client
	Retriever *retrieval.Retriever
	Strategy  risk.Strategy

	// RunDeadline bounds one full pipeline run. Zero means no bound.
	RunDeadline time.Duration
}

func NewGraph(opts Options) *Graph {
	if opts.Strategy == nil {
		opts.Strategy = risk.ForName("")
	}
	return &Graph{
		deadline: opts.RunDeadline,
		stages: map[string]Stage{
			nodeClassify:  &ClassifyStage{LLM: opts.LLM},
			nodeFinance:   &FinanceStage{LLM: opts.LLM, Retriever: opts.Retriever},
			nodeHousing:   &HousingStage{LLM: opts.LLM, Retriever: opts.Retriever},
			nodeVisa:      &VisaStage{LLM: opts.LLM, Retriever: opts.Retriever},
			nodeRAG:       &RAGStage{Retriever: opts.Retriever},
			nodeRisk:      &RiskStage{LLM: opts.LLM, Strategy: opts.Strategy},
			nodeSimulate:  &SimExtractStage{LLM: opts.LLM},
			nodeTranslate: &TranslateStage{LLM: opts.LLM},
			nodeScenario:  &ScenarioStage{LLM: opts.LLM},
		},
	}
}

// Run executes the full route for one document. It never panics and never
// returns an error: whatever happened is in the returned state's Trace and
// Error fields.
func (g *Graph) Run(ctx context.Context, s State) State {
	if g.deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.deadline)
		defer cancel()
	}

	node := nodeClassify
	for node != nodeEnd {
		if err := ctx.Err(); err != nil {
			return s.withStatus(node, OutcomeSkipped, err)
		}
		s = g.runStage(ctx, node, s)
		node = g.next(node, s)
	}
	return s
}

// runStage executes one stage, converting a panic into a degraded trace entry
// so a single bad stage cannot take down the run.
func (g *Graph) runStage(ctx context.Context, node string, s State) (out State) {
	stage, ok := g.stages[node]
	if !ok {
		return s
	}
	defer func() {
		if r := recover(); r != nil {
			log.Printf("pipeline: stage %s panicked: %v", node, r)
			out = s.withStatus(node, OutcomeDegraded, fmt.Errorf("stage %s panicked: %v", node, r))
		}
	}()
	return stage.Run(ctx, s)
}

// next is the transition table. The domain branch is decided once after
// classification; all branches converge on retrieval.
func (g *Graph) next(node string, s State) string {
	switch node {
	case nodeClassify:
		switch s.Domain {
		case DomainFinance:
			return nodeFinance
		case DomainHousing:
			return nodeHousing
		case DomainVisa:
			return nodeVisa
		}
		return nodeRAG
	case nodeFinance, nodeHousing, nodeVisa:
		return nodeRAG
	case nodeRAG:
		return nodeRisk
	case nodeRisk:
		return nodeSimulate
	case nodeSimulate:
		if s.Language != "" && s.Language != "en" {
			return nodeTranslate
		}
		return g.afterTranslate(s)
	case nodeTranslate:
		return g.afterTranslate(s)
	case nodeScenario:
		return nodeEnd
	}
	return nodeEnd
}

func (g *Graph) afterTranslate(s State) string {
	if s.FinancialDetails != "" || s.HousingDetails != "" || len(s.Obligations) > 0 {
		return nodeScenario
	}
	return nodeEnd
}
