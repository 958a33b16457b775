// Package pipeline runs the staged document analysis: classify the domain,
// extract domain-specific obligations, retrieve similar clauses, assess risk,
// propose simulations, then optionally translate and narrate scenarios.
//
// Stages take the state by value and return a new value; the orchestrator in
// graph.go owns composition and ordering. No stage mutates shared data.
package pipeline

import (
	"campuslens/internal/retrieval"
	"campuslens/internal/risk"
	"campuslens/internal/simulate"
)

type Domain string

const (
	DomainFinance Domain = "finance"
	DomainHousing Domain = "housing"
	DomainVisa    Domain = "visa"
	DomainUnknown Domain = "unknown"
)

// ParseDomain normalizes free text to a Domain.
func ParseDomain(s string) Domain {
	switch Domain(s) {
	case DomainFinance, DomainHousing, DomainVisa:
		return Domain(s)
	}
	return DomainUnknown
}

// Outcome classifies how a stage finished. A degraded stage produced partial
// or default output after an upstream failure; a failed stage produced none.
type Outcome string

const (
	OutcomeOK       Outcome = "ok"
	OutcomeDegraded Outcome = "degraded"
	OutcomeSkipped  Outcome = "skipped"
)

// StageStatus is one entry in the run trace, letting callers distinguish
// "no red flags found" from "red-flag analysis failed".
type StageStatus struct {
	Stage   string  `json:"stage"`
	Outcome Outcome `json:"outcome"`
	Err     string  `json:"error,omitempty"`
}

// State is threaded through every stage of one run. SessionID and RawText are
// set before the run and never written by stages; Domain is written exactly
// once by classification; the list fields are append-only.
type State struct {
	SessionID string `json:"session_id"`
	RawText   string `json:"raw_text"`
	Domain    Domain `json:"domain"`
	Language  string `json:"language"`

	Clauses     []string `json:"clauses"`
	Obligations []string `json:"obligations"`
	RedFlags    []string `json:"red_flags"`

	FinancialDetails string `json:"financial_details,omitempty"`
	HousingDetails   string `json:"housing_details,omitempty"`
	VisaDetails      string `json:"visa_details,omitempty"`

	RiskAssessment string     `json:"risk_assessment,omitempty"`
	RiskLevel      risk.Level `json:"risk_level,omitempty"`
	RiskScore      float64    `json:"risk_score"`

	RAGContext []retrieval.Item `json:"rag_context,omitempty"`
	Resources  []retrieval.Item `json:"resources,omitempty"`

	SimulationOptions []simulate.Descriptor `json:"simulation_options,omitempty"`

	Translation string `json:"translation,omitempty"`
	Scenario    string `json:"scenario,omitempty"`

	// Error carries the first stage failure of the run; later failures keep
	// their trace entry but do not overwrite it. The run always continues.
	Error string        `json:"error,omitempty"`
	Trace []StageStatus `json:"trace,omitempty"`
}

// NewState builds the initial state for one run.
func NewState(sessionID, rawText, language string) State {
	if language == "" {
		language = "en"
	}
	return State{
		SessionID: sessionID,
		RawText:   rawText,
		Domain:    DomainUnknown,
		Language:  language,
	}
}

// withStatus appends a trace entry; on the first non-nil err it also sets the
// run-level Error field.
func (s State) withStatus(stage string, outcome Outcome, err error) State {
	st := StageStatus{Stage: stage, Outcome: outcome}
	if err != nil {
		st.Err = err.Error()
		if s.Error == "" {
			s.Error = err.Error()
		}
	}
	s.Trace = append(append([]StageStatus(nil), s.Trace...), st)
	return s
}

// appendUnique appends items not already present, preserving order.
func appendUnique(dst []string, items ...string) []string {
	seen := make(map[string]bool, len(dst))
	for _, v := range dst {
		seen[v] = true
	}
	out := append([]string(nil), dst...)
	for _, v := range items {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

// truncateText bounds a document excerpt for prompt embedding.
func truncateText(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
