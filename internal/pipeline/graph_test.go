package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"campuslens/internal/llm"
	"campuslens/internal/retrieval"
	"campuslens/internal/risk"
)

func testGraph(client llm.Client) *Graph {
	emb := &llm.FakeEmbedder{}
	return NewGraph(Options{
		LLM:       client,
		Retriever: retrieval.NewRetriever(emb, retrieval.NewMemoryStore()),
		Strategy:  risk.LabelStrategy{},
	})
}

func traceStages(s State) []string {
	stages := make([]string, len(s.Trace))
	for i, st := range s.Trace {
		stages[i] = st.Stage
	}
	return stages
}

func TestGraphHousingRoute(t *testing.T) {
	fake := (&llm.FakeClient{}).
		Respond("classifying a student document", "A lease.\nDOMAIN: housing").
		Respond("residential agreement or lease", "Findings:\n- Give 60 days notice before move-out\n- Pay $1,200 rent by the 1st").
		Respond("final auditor", "Heavy penalties.\nRISK_LEVEL: HIGH\nRED_FLAGS: Early termination buyout of 2 months rent").
		Respond("Propose 2-6", `{"scenarios": [{"scenario_type": "lease_termination", "label": "Break lease", "parameters": {"months_remaining": 6}, "formula": "base_penalty + months_remaining * monthly_penalty"}]}`).
		Respond("scenario analyst", "Scenario 1: you break the lease in month 3...")

	out := testGraph(fake).Run(context.Background(), NewState("s1", "lease text", "en"))

	require.Equal(t, DomainHousing, out.Domain)
	require.NotEmpty(t, out.HousingDetails)
	require.NotEmpty(t, out.Obligations)
	require.Equal(t, risk.LevelHigh, out.RiskLevel)
	require.Len(t, out.SimulationOptions, 1)
	require.NotEmpty(t, out.Scenario)
	require.Empty(t, out.Translation)
	require.Equal(t,
		[]string{"classify", "housing", "rag", "risk", "simulation", "scenario"},
		traceStages(out))
}

func TestGraphUnknownRouteSkipsBranchAndTails(t *testing.T) {
	fake := (&llm.FakeClient{}).
		Respond("classifying a student document", "No idea.\nDOMAIN: unknown").
		Respond("final auditor", "Nothing notable.\nRISK_LEVEL: LOW\nRED_FLAGS: none")

	out := testGraph(fake).Run(context.Background(), NewState("s1", "a grocery list", "en"))

	require.Equal(t, DomainUnknown, out.Domain)
	require.Equal(t, risk.LevelLow, out.RiskLevel)
	require.Empty(t, out.Scenario)
	require.Equal(t,
		[]string{"classify", "rag", "risk", "simulation"},
		traceStages(out))
	// simulation is skipped for unknown domains, not attempted.
	require.Equal(t, OutcomeSkipped, out.Trace[3].Outcome)
}

func TestGraphTranslateRoute(t *testing.T) {
	fake := (&llm.FakeClient{}).
		Respond("classifying a student document", "Lease.\nDOMAIN: housing").
		Respond("residential agreement or lease", "- Pay deposit by June 1").
		Respond("final auditor", "ok\nRISK_LEVEL: MEDIUM\nRED_FLAGS: none").
		Respond("Propose 2-6", `{"scenarios": []}`).
		Respond("TARGET LANGUAGE", "Traducción simple de las cláusulas.").
		Respond("scenario analyst", "Scenario: ...")

	out := testGraph(fake).Run(context.Background(), NewState("s1", "contrato de arrendamiento", "es"))

	require.Equal(t, "Traducción simple de las cláusulas.", out.Translation)
	require.Contains(t, traceStages(out), "translate")
}

func TestGraphSurvivesTotalModelFailure(t *testing.T) {
	fake := &llm.FakeClient{Err: errors.New("backend down")}

	out := testGraph(fake).Run(context.Background(), NewState("s1", "my lease and rent agreement", "en"))

	// Keyword fallback still routes; every model-backed stage degrades but the
	// run reaches the end with defaults filled in.
	require.Equal(t, DomainHousing, out.Domain)
	require.Equal(t, risk.LevelMedium, out.RiskLevel)
	require.Equal(t, 0.5, out.RiskScore)
	require.NotEmpty(t, out.Error)
	for _, st := range out.Trace {
		require.NotEqual(t, "", st.Stage)
	}
}

func TestGraphStopsOnCancelledContext(t *testing.T) {
	g := testGraph(&llm.FakeClient{Default: "DOMAIN: unknown"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := g.Run(ctx, NewState("s1", "doc", "en"))

	require.Len(t, out.Trace, 1)
	require.Equal(t, "classify", out.Trace[0].Stage)
	require.Equal(t, OutcomeSkipped, out.Trace[0].Outcome)
	require.NotEmpty(t, out.Error)
}
