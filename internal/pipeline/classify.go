package pipeline

import (
	"context"
	"fmt"
	"strings"

	"campuslens/internal/llm"
)

const classifyPrompt = `You are classifying a student document. Analyze this document and classify it.

Document excerpt:
%s

CRITICAL: You MUST end your response with EXACTLY one of these lines:
DOMAIN: finance
DOMAIN: housing
DOMAIN: visa
DOMAIN: unknown

Classify based on:
- "finance" if about: financial aid, tuition, scholarships, loans, payment plans, bursar, fees
- "housing" if about: lease, rent, apartment, dorm, residential, sublease, move-in/out
- "visa" if about: F-1, J-1, I-20, immigration, work authorization, visa status
- "unknown" if none of the above

Provide brief analysis, then end with the DOMAIN line.`

// Keyword fallbacks used when the model does not produce a DOMAIN line (or
// the call fails entirely). The lists are part of the classification
// contract; changing them changes routing.
var (
	financeKeywords = []string{"financial aid", "tuition", "scholarship", "loan", "bursar", "payment", "fafsa"}
	housingKeywords = []string{"lease", "rent", "housing", "apartment", "residential", "tenant", "sublease"}
	visaKeywords    = []string{"visa", "f-1", "j-1", "i-20", "immigration", "work authorization"}
)

const classifyExcerptLimit = 3000

// ClassifyStage assigns the document domain: a low-temperature model call
// asked to self-report a DOMAIN line, with keyword matching as fallback.
// It always produces exactly one of the four domains and never fails the run.
type ClassifyStage struct {
	LLM llm.Client
}

func (c *ClassifyStage) Run(ctx context.Context, s State) State {
	ctx = llm.WithStage(ctx, "classify")
	prompt := fmt.Sprintf(classifyPrompt, truncateText(s.RawText, classifyExcerptLimit))

	analysis, err := c.LLM.Generate(ctx, prompt, 0.3)
	if err != nil {
		s.Domain = keywordDomain(s.RawText)
		return s.withStatus("classify", OutcomeDegraded, err)
	}

	domain := domainFromLine(analysis)
	if domain == DomainUnknown {
		// Model answered but skipped the DOMAIN line: match its analysis
		// first, then the document itself.
		if d := keywordDomain(analysis); d != DomainUnknown {
			domain = d
		} else {
			domain = keywordDomain(s.RawText)
		}
	}
	s.Domain = domain
	return s.withStatus("classify", OutcomeOK, nil)
}

// domainFromLine extracts the domain from an explicit "DOMAIN:" line.
func domainFromLine(analysis string) Domain {
	for _, line := range strings.Split(analysis, "\n") {
		line = strings.TrimSpace(line)
		if rest, ok := strings.CutPrefix(line, "DOMAIN:"); ok {
			return ParseDomain(strings.ToLower(strings.TrimSpace(rest)))
		}
	}
	return DomainUnknown
}

func keywordDomain(text string) Domain {
	lower := strings.ToLower(text)
	if containsAny(lower, financeKeywords) {
		return DomainFinance
	}
	if containsAny(lower, housingKeywords) {
		return DomainHousing
	}
	if containsAny(lower, visaKeywords) {
		return DomainVisa
	}
	return DomainUnknown
}

func containsAny(haystack string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}
