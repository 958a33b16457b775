package pipeline

import (
	"strings"

	"campuslens/internal/retrieval"
)

const docExcerptLimit = 4000

// extractBullets turns a model-produced bulleted list into clean obligation
// strings: bullet markers stripped, degenerate lines (too short or heading
// stubs ending with a colon) dropped, truncated to max entries.
func extractBullets(analysis string, max int) []string {
	var out []string
	for _, line := range strings.Split(analysis, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "•◦-* \t")
		line = strings.TrimSpace(line)
		if len(line) <= 10 || strings.HasSuffix(line, ":") {
			continue
		}
		out = append(out, line)
		if max > 0 && len(out) == max {
			break
		}
	}
	return out
}

// extractMarkedBullets is the stricter variant for prose-style analyses:
// only lines that carry an explicit bullet marker are taken, so narrative
// paragraphs are not mistaken for obligations.
func extractMarkedBullets(analysis string, max int) []string {
	var marked []string
	for _, line := range strings.Split(analysis, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "•") || strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "* ") {
			marked = append(marked, trimmed)
		}
	}
	return extractBullets(strings.Join(marked, "\n"), max)
}

// formatContext renders retrieved clauses for prompt embedding.
func formatContext(items []retrieval.Item) string {
	if len(items) == 0 {
		return "No relevant context found."
	}
	var b strings.Builder
	for _, it := range items {
		b.WriteString("- ")
		b.WriteString(it.Text)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
