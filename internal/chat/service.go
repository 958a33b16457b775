// Package chat answers student questions grounded in the uploaded document's
// analysis and its indexed clauses.
package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"campuslens/internal/llm"
	"campuslens/internal/retrieval"
	"campuslens/internal/session"
)

const chatPrompt = `You are CampusLens, a helpful assistant for students understanding complex documents.

%s

User question: %s

Provide a helpful, concise response (2-3 sentences) that:
- Answers their question directly
- Uses plain language (no jargon)
- Provides actionable advice when applicable
- Suggests contacting Student Legal Services for legal advice when appropriate

Response:`

const fallbackReply = "I encountered an error processing your question. Please try again or contact Student Legal Services for assistance."

const chatClauseK = 3

// analysisContext is the slice of the stored analysis the chat prompt needs.
type analysisContext struct {
	Domain         string   `json:"domain"`
	RiskLevel      string   `json:"risk_level"`
	RiskAssessment string   `json:"risk_assessment"`
	Obligations    []string `json:"obligations"`
}

type Service struct {
	LLM       llm.Client
	Sessions  session.Store
	Retriever *retrieval.Retriever
}

// Reply answers one question. A missing or unanalyzed session still gets an
// answer, just without document context; only a model failure returns the
// canned fallback.
func (s *Service) Reply(ctx context.Context, sessionID, message string) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", fmt.Errorf("message is required")
	}
	ctx = llm.WithStage(ctx, "chat")

	prompt := fmt.Sprintf(chatPrompt, s.buildContext(ctx, sessionID, message), message)
	reply, err := s.LLM.Generate(ctx, prompt, 0.7)
	if err != nil {
		return fallbackReply, nil
	}
	return strings.TrimSpace(reply), nil
}

func (s *Service) buildContext(ctx context.Context, sessionID, message string) string {
	if sessionID == "" {
		return "No document has been uploaded yet."
	}
	sess, err := s.Sessions.Get(ctx, sessionID)
	if err != nil || len(sess.Analysis) == 0 {
		if errors.Is(err, session.ErrNotFound) || err != nil {
			return "No document has been uploaded yet."
		}
		return "A document was uploaded but has not been analyzed yet."
	}

	var ac analysisContext
	if err := json.Unmarshal(sess.Analysis, &ac); err != nil {
		return "A document was uploaded but has not been analyzed yet."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Context from uploaded document:\nDocument Domain: %s\nRisk Level: %s\n", ac.Domain, ac.RiskLevel)
	if summary := truncate(ac.RiskAssessment, 600); summary != "" {
		fmt.Fprintf(&b, "Summary: %s\n", summary)
	}
	if len(ac.Obligations) > 0 {
		fmt.Fprintf(&b, "Obligations: %s\n", strings.Join(ac.Obligations, ", "))
	}
	if s.Retriever != nil {
		items := s.Retriever.Search(ctx, message, retrieval.CollectionClauses, "", chatClauseK)
		if len(items) > 0 {
			b.WriteString("Relevant clauses:\n")
			for _, item := range items {
				fmt.Fprintf(&b, "- %s\n", truncate(item.Text, 300))
			}
		}
	}
	return b.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
