// Package ingest turns extracted document text into indexed clause embeddings
// and seeds the campus-resource collection.
package ingest

import (
	"strings"
	"unicode"
)

// defaultChunkSize groups consecutive sentences into one clause.
const defaultChunkSize = 3

// common abbreviations that end with a period mid-sentence.
var abbreviations = map[string]bool{
	"mr": true, "mrs": true, "ms": true, "dr": true, "prof": true,
	"inc": true, "llc": true, "st": true, "no": true, "vs": true,
	"etc": true, "e.g": true, "i.e": true, "approx": true,
}

// SplitClauses segments text into sentences and joins them in chunks of
// three. When sentence detection finds nothing it falls back to non-empty
// lines, so arbitrary text always yields at least one clause.
func SplitClauses(text string) []string {
	return splitClauses(text, defaultChunkSize)
}

func splitClauses(text string, chunkSize int) []string {
	if chunkSize < 1 {
		chunkSize = defaultChunkSize
	}
	sentences := splitSentences(text)
	if len(sentences) == 0 {
		for _, line := range strings.Split(text, "\n") {
			if line = strings.TrimSpace(line); line != "" {
				sentences = append(sentences, line)
			}
		}
	}

	var clauses []string
	for i := 0; i < len(sentences); i += chunkSize {
		end := i + chunkSize
		if end > len(sentences) {
			end = len(sentences)
		}
		clause := strings.TrimSpace(strings.Join(sentences[i:end], " "))
		if clause != "" {
			clauses = append(clauses, clause)
		}
	}
	return clauses
}

// splitSentences is a lightweight tokenizer: a sentence ends at '.', '!' or
// '?' followed by whitespace, unless the final word is a known abbreviation
// or a single initial.
func splitSentences(text string) []string {
	var sentences []string
	runes := []rune(strings.TrimSpace(text))
	start := 0
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		if i+1 < len(runes) && !unicode.IsSpace(runes[i+1]) {
			continue
		}
		if r == '.' && isAbbreviation(runes[start:i]) {
			continue
		}
		if s := strings.TrimSpace(string(runes[start : i+1])); s != "" {
			sentences = append(sentences, s)
		}
		start = i + 1
	}
	if tail := strings.TrimSpace(string(runes[start:])); tail != "" {
		sentences = append(sentences, tail)
	}
	return sentences
}

func isAbbreviation(segment []rune) bool {
	s := string(segment)
	idx := strings.LastIndexFunc(s, unicode.IsSpace)
	word := strings.ToLower(strings.Trim(s[idx+1:], "()\"'"))
	if word == "" {
		return false
	}
	if len([]rune(word)) == 1 && unicode.IsLetter([]rune(word)[0]) {
		return true
	}
	return abbreviations[word]
}
