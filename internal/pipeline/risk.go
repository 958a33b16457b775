package pipeline

import (
	"context"
	"fmt"
	"strings"

	"campuslens/internal/llm"
	"campuslens/internal/risk"
)

const riskPrompt = `You are the final auditor of this document analysis. Your job is to identify RISKS and RED FLAGS for the student.

ORIGINAL DOCUMENT:
%s

FINANCIAL ANALYSIS:
%s

HOUSING ANALYSIS:
%s

VISA ANALYSIS:
%s

Now analyze and:
1. IDENTIFY CONFLICTS between different sections or clauses
2. FLAG HIGH-LIABILITY TERMS that could harm the student
3. Highlight PREDATORY PRACTICES (e.g., excessive penalties, waived rights)
4. Look for AMBIGUOUS LANGUAGE that could be interpreted against the student
5. Assess OVERALL RISK LEVEL based on reasoning, not math

Provide specific reasoning for each red flag, then end your response with EXACTLY these two lines:
RISK_LEVEL: <LOW|MEDIUM|HIGH>
RED_FLAGS: <first flag>; <second flag>; <third flag>`

const financeIndicatorPrompt = `Rate this financial document on three 0-1 indicators. Respond with ONLY JSON:
{"financial_exposure_indicator": <0-1>, "penalty_escalation_indicator": <0-1>, "deadline_sensitivity_indicator": <0-1>}

DOCUMENT:
%s`

const housingIndicatorPrompt = `Rate this housing agreement on three 0-1 indicators. Respond with ONLY JSON:
{"termination_penalty_indicator": <0-1>, "liability_clause_indicator": <0-1>, "payment_obligation_indicator": <0-1>}

DOCUMENT:
%s`

const riskExcerptLimit = 3000

// RiskStage assesses overall risk from the accumulated analyses. The parsed
// level and red flags come from a loose two-line textual format; any parse
// miss defaults to the MEDIUM midpoint rather than failing the run.
type RiskStage struct {
	LLM      llm.Client
	Strategy risk.Strategy
}

func (r *RiskStage) Run(ctx context.Context, s State) State {
	ctx = llm.WithStage(ctx, "risk")
	prompt := fmt.Sprintf(riskPrompt,
		truncateText(s.RawText, riskExcerptLimit),
		s.FinancialDetails, s.HousingDetails, s.VisaDetails)

	analysis, err := r.LLM.Generate(ctx, prompt, 0.7)
	if err != nil {
		s.RiskLevel = risk.LevelMedium
		s.RiskScore = 0.5
		return s.withStatus("risk", OutcomeDegraded, err)
	}

	s.RiskAssessment = analysis
	level := parseRiskLevel(analysis)
	flags := parseRedFlags(analysis)
	if len(flags) == 0 {
		flags = heuristicFlags(analysis)
	}
	s.RedFlags = appendUnique(s.RedFlags, flags...)

	score, resolved := r.Strategy.Score(level, r.indicators(ctx, s))
	s.RiskScore = score
	s.RiskLevel = resolved
	return s.withStatus("risk", OutcomeOK, nil)
}

// indicators obtains the per-domain 0-1 indicator set when the configured
// strategy wants one; any failure degrades to nil (label-mapping fallback).
func (r *RiskStage) indicators(ctx context.Context, s State) *risk.Indicators {
	if r.Strategy.Name() != "indicator" {
		return nil
	}
	switch s.Domain {
	case DomainFinance:
		var ind risk.FinanceIndicators
		prompt := fmt.Sprintf(financeIndicatorPrompt, truncateText(s.RawText, riskExcerptLimit))
		if err := llm.GenerateJSON(ctx, r.LLM, prompt, 0.2, &ind); err != nil {
			return nil
		}
		return &risk.Indicators{Finance: &ind}
	case DomainHousing:
		var ind risk.HousingIndicators
		prompt := fmt.Sprintf(housingIndicatorPrompt, truncateText(s.RawText, riskExcerptLimit))
		if err := llm.GenerateJSON(ctx, r.LLM, prompt, 0.2, &ind); err != nil {
			return nil
		}
		return &risk.Indicators{Housing: &ind}
	}
	return nil
}

func parseRiskLevel(analysis string) risk.Level {
	for _, line := range strings.Split(analysis, "\n") {
		if idx := strings.Index(line, "RISK_LEVEL:"); idx >= 0 {
			return risk.ParseLevel(line[idx+len("RISK_LEVEL:"):])
		}
	}
	return risk.LevelMedium
}

func parseRedFlags(analysis string) []string {
	for _, line := range strings.Split(analysis, "\n") {
		idx := strings.Index(line, "RED_FLAGS:")
		if idx < 0 {
			continue
		}
		var flags []string
		for _, f := range strings.Split(line[idx+len("RED_FLAGS:"):], ";") {
			if f = strings.TrimSpace(f); f != "" && !strings.EqualFold(f, "none") {
				flags = append(flags, f)
			}
		}
		return flags
	}
	return nil
}

// heuristicFlags is the fallback when the model skipped the RED_FLAGS line:
// coarse substring matches over its prose.
func heuristicFlags(analysis string) []string {
	lower := strings.ToLower(analysis)
	var flags []string
	if strings.Contains(lower, "high") {
		flags = append(flags, "Document contains high-risk terms")
	}
	if strings.Contains(lower, "predatory") {
		flags = append(flags, "Potentially predatory practices identified")
	}
	if strings.Contains(lower, "ambiguous") {
		flags = append(flags, "Ambiguous language that could harm the student")
	}
	return flags
}
