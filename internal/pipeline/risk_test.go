package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"campuslens/internal/llm"
	"campuslens/internal/risk"
)

func TestRiskParsesLevelAndFlags(t *testing.T) {
	fake := (&llm.FakeClient{}).Respond("final auditor",
		"The lease shifts all liability to the tenant.\nRISK_LEVEL: HIGH\nRED_FLAGS: Unlimited liability clause; $500 daily late fee")
	stage := &RiskStage{LLM: fake, Strategy: risk.LabelStrategy{}}

	out := stage.Run(context.Background(), NewState("s1", "lease text", "en"))

	require.Equal(t, risk.LevelHigh, out.RiskLevel)
	require.Equal(t, 0.75, out.RiskScore)
	require.Equal(t, []string{"Unlimited liability clause", "$500 daily late fee"}, out.RedFlags)
	require.NotEmpty(t, out.RiskAssessment)
}

func TestRiskDefaultsToMediumWithoutLevelLine(t *testing.T) {
	fake := &llm.FakeClient{Default: "This agreement is fairly standard with some ambiguous wording."}
	stage := &RiskStage{LLM: fake, Strategy: risk.LabelStrategy{}}

	out := stage.Run(context.Background(), NewState("s1", "doc", "en"))

	require.Equal(t, risk.LevelMedium, out.RiskLevel)
	require.Equal(t, 0.5, out.RiskScore)
	// No RED_FLAGS line, so the heuristic matcher fires on "ambiguous".
	require.Contains(t, out.RedFlags, "Ambiguous language that could harm the student")
}

func TestRiskSkipsNoneFlags(t *testing.T) {
	fake := &llm.FakeClient{Default: "All fine.\nRISK_LEVEL: LOW\nRED_FLAGS: none"}
	stage := &RiskStage{LLM: fake, Strategy: risk.LabelStrategy{}}

	out := stage.Run(context.Background(), NewState("s1", "doc", "en"))

	require.Equal(t, risk.LevelLow, out.RiskLevel)
	require.Empty(t, out.RedFlags)
}

func TestRiskDegradedOnCallFailure(t *testing.T) {
	fake := &llm.FakeClient{Err: errors.New("backend unavailable")}
	stage := &RiskStage{LLM: fake, Strategy: risk.LabelStrategy{}}

	out := stage.Run(context.Background(), NewState("s1", "doc", "en"))

	require.Equal(t, risk.LevelMedium, out.RiskLevel)
	require.Equal(t, 0.5, out.RiskScore)
	require.Equal(t, OutcomeDegraded, out.Trace[0].Outcome)
}

func TestRiskIndicatorStrategyUsesDomainIndicators(t *testing.T) {
	fake := (&llm.FakeClient{}).
		Respond("final auditor", "Risky terms.\nRISK_LEVEL: LOW\nRED_FLAGS: none").
		Respond("housing agreement on three 0-1 indicators",
			`{"termination_penalty_indicator": 1, "liability_clause_indicator": 1, "payment_obligation_indicator": 1}`)
	stage := &RiskStage{LLM: fake, Strategy: risk.IndicatorStrategy{}}

	s := NewState("s1", "lease", "en")
	s.Domain = DomainHousing
	out := stage.Run(context.Background(), s)

	require.Equal(t, risk.LevelHigh, out.RiskLevel)
	require.InDelta(t, 1.0, out.RiskScore, 1e-9)
}

func TestRiskIndicatorStrategyFallsBackWhenIndicatorsFail(t *testing.T) {
	fake := (&llm.FakeClient{
		Err:      errors.New("bad json"),
		ErrMatch: "three 0-1 indicators",
	}).Respond("final auditor", "ok\nRISK_LEVEL: HIGH\nRED_FLAGS: none")
	stage := &RiskStage{LLM: fake, Strategy: risk.IndicatorStrategy{}}

	s := NewState("s1", "aid letter", "en")
	s.Domain = DomainFinance
	out := stage.Run(context.Background(), s)

	require.Equal(t, risk.LevelHigh, out.RiskLevel)
	require.Equal(t, 0.75, out.RiskScore)
}
