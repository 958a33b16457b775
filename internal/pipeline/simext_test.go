package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"campuslens/internal/llm"
	"campuslens/internal/simulate"
)

func TestSimExtractParsesDescriptors(t *testing.T) {
	fake := (&llm.FakeClient{}).Respond("what if", `{"scenarios": [
		{"scenario_type": "late_rent", "label": "Pay rent late", "description": "Rent arrives after the 5th.", "parameters": {"days_late": 10}, "formula": "late_fee + days_late * daily_fee"},
		{"scenario_type": "", "label": "broken", "parameters": {"x": 1}, "formula": "x"},
		{"scenario_type": "lease_termination", "label": "Break the lease", "parameters": {"months_remaining": 6}, "formula": "base_penalty + months_remaining * monthly_penalty"}
	]}`)
	stage := &SimExtractStage{LLM: fake}

	s := NewState("s1", "lease text", "en")
	s.Domain = DomainHousing
	out := stage.Run(context.Background(), s)

	require.Len(t, out.SimulationOptions, 2)
	require.Equal(t, simulate.TypeLateRent, out.SimulationOptions[0].ScenarioType)
	require.Equal(t, "housing", out.SimulationOptions[0].Domain)
	require.Equal(t, OutcomeOK, out.Trace[0].Outcome)
}

func TestSimExtractSkipsUnknownDomain(t *testing.T) {
	fake := &llm.FakeClient{}
	stage := &SimExtractStage{LLM: fake}

	out := stage.Run(context.Background(), NewState("s1", "misc text", "en"))

	require.Empty(t, out.SimulationOptions)
	require.Equal(t, OutcomeSkipped, out.Trace[0].Outcome)
	require.Zero(t, fake.CallCount)
}

func TestSimExtractDegradedOnBadJSON(t *testing.T) {
	fake := &llm.FakeClient{Default: "I cannot produce JSON today."}
	stage := &SimExtractStage{LLM: fake}

	s := NewState("s1", "aid letter", "en")
	s.Domain = DomainFinance
	out := stage.Run(context.Background(), s)

	require.Empty(t, out.SimulationOptions)
	require.Equal(t, OutcomeDegraded, out.Trace[0].Outcome)
}

func TestSimExtractCapsAtSix(t *testing.T) {
	reply := `{"scenarios": [`
	for i := 0; i < 8; i++ {
		if i > 0 {
			reply += ","
		}
		reply += `{"scenario_type": "missed_deadline", "label": "d", "parameters": {"amount_due": 100}, "formula": "penalty"}`
	}
	reply += `]}`
	fake := (&llm.FakeClient{}).Respond("what if", reply)
	stage := &SimExtractStage{LLM: fake}

	s := NewState("s1", "doc", "en")
	s.Domain = DomainFinance
	out := stage.Run(context.Background(), s)

	require.Len(t, out.SimulationOptions, simextMax)
}
