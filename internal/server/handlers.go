package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"campuslens/internal/chat"
	"campuslens/internal/ingest"
	"campuslens/internal/llm"
	"campuslens/internal/pipeline"
	"campuslens/internal/retrieval"
	"campuslens/internal/session"
	"campuslens/internal/simulate"
)

// Handlers holds the service dependencies behind the HTTP surface. Objects is
// optional: without an object store only the extracted text is retained.
type Handlers struct {
	Sessions  session.Store
	Objects   *session.ObjectStore
	Indexer   *ingest.Indexer
	Graph     *pipeline.Graph
	Chat      *chat.Service
	Engine    *simulate.Engine
	Retriever *retrieval.Retriever
	LLM       llm.Client
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("server: write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func readJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return false
	}
	return true
}

// --- ingest ---

type ingestRequest struct {
	SessionID string `json:"session_id"`
	FileName  string `json:"file_name"`
	Text      string `json:"text"`
}

type ingestResponse struct {
	SessionID   string `json:"session_id"`
	FileName    string `json:"file_name"`
	ClauseCount int    `json:"clause_count"`
	Status      string `json:"status"`
}

// HandleIngest accepts extracted document text, stores the session, indexes
// clause embeddings and marks the session processed.
func (h *Handlers) HandleIngest(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if !readJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}
	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	ctx := r.Context()

	if err := h.Sessions.Put(ctx, session.Session{
		ID:         sessionID,
		FileName:   req.FileName,
		RawText:    req.Text,
		UploadedAt: time.Now().UTC(),
	}); err != nil {
		writeError(w, http.StatusInternalServerError, "store session: "+err.Error())
		return
	}

	if h.Objects != nil {
		if err := h.Objects.PutDocument(ctx, sessionID, req.FileName, []byte(req.Text)); err != nil {
			log.Printf("server: object store write failed for %s: %v", sessionID, err)
		}
	}

	count, err := h.Indexer.IndexDocument(ctx, sessionID, req.Text)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "index document: "+err.Error())
		return
	}
	if err := h.Sessions.MarkProcessed(ctx, sessionID); err != nil {
		writeError(w, http.StatusInternalServerError, "mark processed: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, ingestResponse{
		SessionID:   sessionID,
		FileName:    req.FileName,
		ClauseCount: count,
		Status:      "processed",
	})
}

// --- analyze ---

type analyzeRequest struct {
	SessionID string `json:"session_id"`
	Language  string `json:"language"`
}

type analyzeResponse struct {
	SessionID         string                 `json:"session_id"`
	Domain            string                 `json:"domain"`
	RiskScore         float64                `json:"risk_score"`
	RiskLevel         string                 `json:"risk_level"`
	Clauses           []string               `json:"clauses"`
	Obligations       []string               `json:"obligations"`
	RedFlags          []string               `json:"red_flags"`
	RAGContext        []retrieval.Item       `json:"rag_context,omitempty"`
	Resources         []retrieval.Item       `json:"resources,omitempty"`
	SimulationOptions []simulate.Descriptor  `json:"simulation_options,omitempty"`
	Summary           string                 `json:"summary"`
	Translation       string                 `json:"translation,omitempty"`
	Scenario          string                 `json:"scenario,omitempty"`
	Trace             []pipeline.StageStatus `json:"trace,omitempty"`
	Status            string                 `json:"status"`
}

// HandleAnalyze runs the full pipeline over a processed session and persists
// the resulting analysis for the translate, scenario and chat endpoints.
func (h *Handlers) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if !readJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.SessionID) == "" {
		writeError(w, http.StatusBadRequest, "session_id is required")
		return
	}
	ctx := r.Context()

	sess, err := h.Sessions.Get(ctx, req.SessionID)
	if errors.Is(err, session.ErrNotFound) {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "load session: "+err.Error())
		return
	}
	if !sess.Processed {
		writeJSON(w, http.StatusOK, analyzeResponse{
			SessionID: req.SessionID,
			Domain:    string(pipeline.DomainUnknown),
			RiskLevel: "LOW",
			Summary:   "Document still processing. Please retry in a moment.",
			Status:    "processing",
		})
		return
	}

	final := h.Graph.Run(ctx, pipeline.NewState(req.SessionID, sess.RawText, req.Language))

	if raw, err := json.Marshal(final); err == nil {
		if err := h.Sessions.SaveAnalysis(ctx, req.SessionID, string(final.Domain), raw); err != nil {
			log.Printf("server: save analysis for %s: %v", req.SessionID, err)
		}
	}

	writeJSON(w, http.StatusOK, analyzeResponse{
		SessionID:         req.SessionID,
		Domain:            string(final.Domain),
		RiskScore:         final.RiskScore,
		RiskLevel:         string(final.RiskLevel),
		Clauses:           emptyIfNil(final.Clauses),
		Obligations:       emptyIfNil(final.Obligations),
		RedFlags:          emptyIfNil(final.RedFlags),
		RAGContext:        final.RAGContext,
		Resources:         final.Resources,
		SimulationOptions: final.SimulationOptions,
		Summary:           final.RiskAssessment,
		Translation:       final.Translation,
		Scenario:          final.Scenario,
		Trace:             final.Trace,
		Status:            "complete",
	})
}

// --- translate ---

type translateRequest struct {
	SessionID      string `json:"session_id"`
	TargetLanguage string `json:"target_language"`
}

type translateResponse struct {
	Language       string `json:"language"`
	TranslatedText string `json:"translated_text"`
	ContextNote    string `json:"context_note"`
}

const translateContextNote = "Student-friendly institutional explanation translated from English."

// HandleTranslate re-runs the translation stage against a stored analysis
// with a caller-chosen target language.
func (h *Handlers) HandleTranslate(w http.ResponseWriter, r *http.Request) {
	var req translateRequest
	if !readJSON(w, r, &req) {
		return
	}
	lang := strings.TrimSpace(req.TargetLanguage)
	if lang == "" {
		writeError(w, http.StatusBadRequest, "target_language is required")
		return
	}

	state, ok := h.loadAnalysisState(r.Context(), req.SessionID)
	if !ok {
		writeJSON(w, http.StatusOK, translateResponse{
			Language:       lang,
			TranslatedText: "No analysis found for this session",
			ContextNote:    translateContextNote,
		})
		return
	}
	state.Language = lang

	stage := &pipeline.TranslateStage{LLM: h.LLM}
	out := stage.Run(r.Context(), state)
	text := out.Translation
	if text == "" {
		text = "Translation failed"
	}
	writeJSON(w, http.StatusOK, translateResponse{
		Language:       lang,
		TranslatedText: text,
		ContextNote:    translateContextNote,
	})
}

// --- simulate ---

type simulateRequest struct {
	SessionID    string             `json:"session_id"`
	ScenarioType string             `json:"scenario_type"`
	Parameters   map[string]float64 `json:"parameters"`
}

// HandleSimulate evaluates one parameterized what-if scenario.
func (h *Handlers) HandleSimulate(w http.ResponseWriter, r *http.Request) {
	var req simulateRequest
	if !readJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.ScenarioType) == "" {
		writeError(w, http.StatusBadRequest, "scenario_type is required")
		return
	}
	result, err := h.Engine.Run(r.Context(), req.ScenarioType, req.Parameters)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// --- scenario ---

type scenarioRequest struct {
	SessionID           string `json:"session_id"`
	ScenarioDescription string `json:"scenario_description"`
}

type scenarioResponse struct {
	Scenario       string   `json:"scenario"`
	WhatHappens    string   `json:"what_happens"`
	Implications   []string `json:"implications"`
	SuggestedSteps []string `json:"suggested_steps"`
	Caveats        []string `json:"caveats"`
}

var scenarioCaveats = []string{
	"This is a simulated scenario based on document analysis.",
	"Consult Student Legal Services or relevant office for formal guidance.",
}

// HandleScenario narrates a free-form what-if against the stored analysis and
// shapes the prose into implications and suggested steps.
func (h *Handlers) HandleScenario(w http.ResponseWriter, r *http.Request) {
	var req scenarioRequest
	if !readJSON(w, r, &req) {
		return
	}

	state, ok := h.loadAnalysisState(r.Context(), req.SessionID)
	if !ok {
		writeJSON(w, http.StatusOK, scenarioResponse{
			Scenario:       req.ScenarioDescription,
			WhatHappens:    "No analysis found for this session. Please upload and analyze a document first.",
			Implications:   []string{"Analysis required"},
			SuggestedSteps: []string{"Upload a document and run analysis"},
			Caveats:        []string{"Document analysis is required before scenario simulation"},
		})
		return
	}
	// Sparse analyses still produce a narration: fall back to the risk
	// summary so the stage has material to reason over.
	if state.FinancialDetails == "" && state.HousingDetails == "" && len(state.Obligations) == 0 {
		state.FinancialDetails = state.RiskAssessment
	}

	stage := &pipeline.ScenarioStage{LLM: h.LLM}
	out := stage.Run(r.Context(), state)

	writeJSON(w, http.StatusOK, shapeScenario(req.ScenarioDescription, out.Scenario))
}

func shapeScenario(description, narration string) scenarioResponse {
	lines := strings.Split(narration, "\n")
	whatHappens := "Scenario analysis complete"
	if len(lines) > 0 && strings.TrimSpace(lines[0]) != "" {
		whatHappens = strings.TrimSpace(lines[0])
	}

	var implications, steps []string
	for _, line := range lines {
		lower := strings.ToLower(line)
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if strings.Contains(lower, "impact") || strings.Contains(lower, "result") {
			implications = append(implications, trimmed)
		}
		if strings.Contains(lower, "should") || strings.Contains(lower, "recommend") {
			steps = append(steps, trimmed)
		}
	}
	if len(implications) > 3 {
		implications = implications[:3]
	}
	if len(steps) > 3 {
		steps = steps[:3]
	}
	if len(implications) == 0 {
		implications = []string{"Review your obligations carefully"}
	}
	if len(steps) == 0 {
		steps = []string{"Consult with relevant campus office"}
	}
	return scenarioResponse{
		Scenario:       description,
		WhatHappens:    whatHappens,
		Implications:   implications,
		SuggestedSteps: steps,
		Caveats:        scenarioCaveats,
	}
}

// --- chat ---

type chatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

type chatResponse struct {
	Response string `json:"response"`
}

func (h *Handlers) HandleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if !readJSON(w, r, &req) {
		return
	}
	reply, err := h.Chat.Reply(r.Context(), req.SessionID, req.Message)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, chatResponse{Response: reply})
}

// --- resources ---

type resourcesResponse struct {
	Results []retrieval.Item `json:"results"`
}

func (h *Handlers) HandleResources(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("query"))
	if query == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}
	domain := strings.TrimSpace(r.URL.Query().Get("domain"))
	topK := 3
	if raw := r.URL.Query().Get("top_k"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v >= 1 && v <= 10 {
			topK = v
		}
	}
	items := h.Retriever.Search(r.Context(), query, retrieval.CollectionResources, domain, topK)
	if items == nil {
		items = []retrieval.Item{}
	}
	writeJSON(w, http.StatusOK, resourcesResponse{Results: items})
}

// HandleSession returns the stored session record including the full
// analysis.
func (h *Handlers) HandleSession(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	sess, err := h.Sessions.Get(r.Context(), id)
	if errors.Is(err, session.ErrNotFound) {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

// loadAnalysisState reloads a stored final pipeline state. ok is false when
// the session or its analysis is missing or unreadable.
func (h *Handlers) loadAnalysisState(ctx context.Context, sessionID string) (pipeline.State, bool) {
	if strings.TrimSpace(sessionID) == "" {
		return pipeline.State{}, false
	}
	sess, err := h.Sessions.Get(ctx, sessionID)
	if err != nil || len(sess.Analysis) == 0 {
		return pipeline.State{}, false
	}
	var state pipeline.State
	if err := json.Unmarshal(sess.Analysis, &state); err != nil {
		log.Printf("server: decode analysis for %s: %v", sessionID, err)
		return pipeline.State{}, false
	}
	return state, true
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
