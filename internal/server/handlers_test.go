package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"campuslens/internal/chat"
	"campuslens/internal/ingest"
	"campuslens/internal/llm"
	"campuslens/internal/pipeline"
	"campuslens/internal/retrieval"
	"campuslens/internal/session"
	"campuslens/internal/simulate"
)

func newTestHandlers(fake *llm.FakeClient) *Handlers {
	emb := &llm.FakeEmbedder{}
	store := retrieval.NewMemoryStore()
	retriever := retrieval.NewRetriever(emb, store)
	sessions := session.NewMemoryStore()
	return &Handlers{
		Sessions:  sessions,
		Indexer:   ingest.NewIndexer(emb, store),
		Graph:     pipeline.NewGraph(pipeline.Options{LLM: fake, Retriever: retriever}),
		Chat:      &chat.Service{LLM: fake, Sessions: sessions, Retriever: retriever},
		Engine:    simulate.NewEngine(nil, fake),
		Retriever: retriever,
		LLM:       fake,
	}
}

func doJSON(t *testing.T, mux http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestIngestThenAnalyze(t *testing.T) {
	fake := (&llm.FakeClient{}).
		Respond("classifying a student document", "A lease.\nDOMAIN: housing").
		Respond("residential agreement or lease", "- Give 60 days notice before move-out").
		Respond("final auditor", "Risky.\nRISK_LEVEL: HIGH\nRED_FLAGS: Two month buyout penalty").
		Respond("Propose 2-6", `{"scenarios": [{"scenario_type": "lease_termination", "label": "Break lease", "parameters": {"months_remaining": 4}, "formula": "base_penalty + months_remaining * monthly_penalty"}]}`).
		Respond("scenario analyst", "Scenario 1: breaking the lease in month 3 costs you the buyout.")
	h := newTestHandlers(fake)
	mux := NewMux(h)

	rec := doJSON(t, mux, http.MethodPost, "/api/ingest", map[string]string{
		"file_name": "lease.pdf",
		"text":      "Tenant must give 60 days notice. Early termination costs two months rent. The deposit is $500.",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var ing ingestResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ing))
	require.NotEmpty(t, ing.SessionID)
	require.Equal(t, "processed", ing.Status)
	require.Positive(t, ing.ClauseCount)

	rec = doJSON(t, mux, http.MethodPost, "/api/analyze", map[string]string{
		"session_id": ing.SessionID,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var an analyzeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &an))
	require.Equal(t, "housing", an.Domain)
	require.Equal(t, "HIGH", an.RiskLevel)
	require.Equal(t, 0.75, an.RiskScore)
	require.NotEmpty(t, an.Obligations)
	require.Contains(t, an.RedFlags, "Two month buyout penalty")
	require.Len(t, an.SimulationOptions, 1)
	require.Equal(t, "complete", an.Status)

	// analysis is persisted for the follow-up endpoints
	sess, err := h.Sessions.Get(t.Context(), ing.SessionID)
	require.NoError(t, err)
	require.NotEmpty(t, sess.Analysis)
	require.Equal(t, "housing", sess.Domain)
}

func TestAnalyzeUnknownSession(t *testing.T) {
	mux := NewMux(newTestHandlers(&llm.FakeClient{}))

	rec := doJSON(t, mux, http.MethodPost, "/api/analyze", map[string]string{"session_id": "missing"})

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAnalyzeUnprocessedSession(t *testing.T) {
	h := newTestHandlers(&llm.FakeClient{})
	require.NoError(t, h.Sessions.Put(t.Context(), session.Session{ID: "s1", RawText: "text"}))
	mux := NewMux(h)

	rec := doJSON(t, mux, http.MethodPost, "/api/analyze", map[string]string{"session_id": "s1"})

	require.Equal(t, http.StatusOK, rec.Code)
	var an analyzeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &an))
	require.Equal(t, "processing", an.Status)
}

func TestSimulateDeterministicScenario(t *testing.T) {
	mux := NewMux(newTestHandlers(&llm.FakeClient{}))

	rec := doJSON(t, mux, http.MethodPost, "/api/simulate", map[string]any{
		"scenario_type": simulate.TypeLeaseTermination,
		"parameters":    map[string]float64{"base_penalty": 500, "months_remaining": 6, "monthly_penalty": 200},
	})

	require.Equal(t, http.StatusOK, rec.Code)
	var res simulate.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.Equal(t, 1700.0, res.Value)
	require.False(t, res.IsRisk)
}

func TestSimulateRequiresScenarioType(t *testing.T) {
	mux := NewMux(newTestHandlers(&llm.FakeClient{}))

	rec := doJSON(t, mux, http.MethodPost, "/api/simulate", map[string]any{"parameters": map[string]float64{}})

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestResourcesEndpoint(t *testing.T) {
	fake := &llm.FakeClient{}
	h := newTestHandlers(fake)
	require.NoError(t, h.Indexer.SeedResources(t.Context(), []ingest.Resource{
		{Name: "Bursar's Office", Description: "Billing and payments", URL: "https://example.edu/bursar", Domain: "finance"},
		{Name: "Housing Office", Description: "Lease questions", URL: "https://example.edu/housing", Domain: "housing"},
	}))
	mux := NewMux(h)

	req := httptest.NewRequest(http.MethodGet, "/api/resources?query=billing&domain=finance", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var res resourcesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.Len(t, res.Results, 1)
	require.Equal(t, "Bursar's Office", res.Results[0].Name)
}

func TestTranslateWithoutAnalysis(t *testing.T) {
	mux := NewMux(newTestHandlers(&llm.FakeClient{}))

	rec := doJSON(t, mux, http.MethodPost, "/api/translate", map[string]string{
		"session_id":      "missing",
		"target_language": "es",
	})

	require.Equal(t, http.StatusOK, rec.Code)
	var res translateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.Equal(t, "es", res.Language)
	require.Equal(t, "No analysis found for this session", res.TranslatedText)
}

func TestTranslateStoredAnalysis(t *testing.T) {
	fake := (&llm.FakeClient{}).Respond("TARGET LANGUAGE", "Traducción en lenguaje sencillo.")
	h := newTestHandlers(fake)
	analysis, err := json.Marshal(pipeline.State{
		SessionID: "s1",
		Domain:    pipeline.DomainHousing,
		Clauses:   []string{"Tenant pays a $50 late fee after the 5th."},
	})
	require.NoError(t, err)
	require.NoError(t, h.Sessions.Put(t.Context(), session.Session{ID: "s1", Processed: true}))
	require.NoError(t, h.Sessions.SaveAnalysis(t.Context(), "s1", "housing", analysis))
	mux := NewMux(h)

	rec := doJSON(t, mux, http.MethodPost, "/api/translate", map[string]string{
		"session_id":      "s1",
		"target_language": "es",
	})

	require.Equal(t, http.StatusOK, rec.Code)
	var res translateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.Equal(t, "Traducción en lenguaje sencillo.", res.TranslatedText)
}

func TestScenarioWithoutAnalysis(t *testing.T) {
	mux := NewMux(newTestHandlers(&llm.FakeClient{}))

	rec := doJSON(t, mux, http.MethodPost, "/api/scenario", map[string]string{
		"session_id":           "missing",
		"scenario_description": "What if I lose my job?",
	})

	require.Equal(t, http.StatusOK, rec.Code)
	var res scenarioResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.Equal(t, "What if I lose my job?", res.Scenario)
	require.Contains(t, res.WhatHappens, "No analysis found")
}

func TestScenarioShaping(t *testing.T) {
	narration := "Student loses the job in month 3.\nThe impact is an immediate payment gap.\nYou should contact the financial aid office.\nAnother result is a hold on registration."
	res := shapeScenario("job loss", narration)

	require.Equal(t, "Student loses the job in month 3.", res.WhatHappens)
	require.Len(t, res.Implications, 2)
	require.Len(t, res.SuggestedSteps, 1)
	require.Equal(t, scenarioCaveats, res.Caveats)
}

func TestChatEndpoint(t *testing.T) {
	fake := &llm.FakeClient{Default: "Rent is due on the 1st."}
	mux := NewMux(newTestHandlers(fake))

	rec := doJSON(t, mux, http.MethodPost, "/api/chat", map[string]string{"message": "when is rent due?"})

	require.Equal(t, http.StatusOK, rec.Code)
	var res chatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.Equal(t, "Rent is due on the 1st.", res.Response)
}

func TestSessionEndpoint(t *testing.T) {
	h := newTestHandlers(&llm.FakeClient{})
	require.NoError(t, h.Sessions.Put(t.Context(), session.Session{ID: "s1", FileName: "lease.pdf"}))
	mux := NewMux(h)

	req := httptest.NewRequest(http.MethodGet, "/api/session/s1", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/session/nope", nil)
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	mux := NewMux(newTestHandlers(&llm.FakeClient{}))

	req := httptest.NewRequest(http.MethodOptions, "/api/chat", nil)
	req.Header.Set("Origin", "https://app.example.edu")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, "https://app.example.edu", rec.Header().Get("Access-Control-Allow-Origin"))
}
