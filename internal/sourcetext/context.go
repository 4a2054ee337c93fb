package sourcetext

import (
	"sort"
	"strings"
	"unicode"

	"github.com/calyptra/autopress/internal/domain"
)

// Caps on each extracted list so prompts stay bounded regardless of
// source volume.
const (
	maxThemes        = 10
	maxKeyInsights   = 5
	maxBestPractices = 5
	maxTopicTerms    = 3
)

// significantWordMinLen: words of length <= 3 carry no topical signal
// and are excluded from both theme extraction and uniqueness scoring.
const significantWordMinLen = 4

// bestPracticeIndicators mark sentences worth surfacing to the
// generator as actionable guidance.
var bestPracticeIndicators = []string{
	"best practice",
	"recommend",
	"tip",
	"essential",
	"important to",
	"key to",
	"make sure",
	"avoid",
}

// ContextSummary is the distilled prompt context for one generation
// task's source group.
type ContextSummary struct {
	Topic         string
	Themes        []string
	KeyInsights   []string
	BestPractices []string
}

// BuildContext derives the generator prompt context from a source
// group: the most frequent title terms become the topic, the most
// frequent body terms the themes, the first sentence of each source a
// key insight, and indicator-phrase sentences the best practices.
func BuildContext(sources []domain.SourceDocument) ContextSummary {
	var bodies, titles []string
	for i := range sources {
		bodies = append(bodies, sources[i].Content)
		titles = append(titles, sources[i].Title)
	}

	summary := ContextSummary{
		Topic:  deriveTopic(titles),
		Themes: topFrequentTerms(strings.Join(bodies, " "), maxThemes),
	}

	for i := range sources {
		if len(summary.KeyInsights) >= maxKeyInsights {
			break
		}
		if first := firstSentence(sources[i].Content); first != "" {
			summary.KeyInsights = append(summary.KeyInsights, first)
		}
	}

	for i := range sources {
		for _, sentence := range splitSentences(sources[i].Content) {
			if len(summary.BestPractices) >= maxBestPractices {
				return summary
			}
			if containsIndicator(sentence) {
				summary.BestPractices = append(summary.BestPractices, sentence)
			}
		}
	}

	return summary
}

// deriveTopic joins the most frequent significant title terms.
func deriveTopic(titles []string) string {
	terms := topFrequentTerms(strings.Join(titles, " "), maxTopicTerms)
	return strings.Join(terms, " ")
}

// topFrequentTerms returns up to limit significant non-stopword terms
// ordered by descending frequency, breaking frequency ties
// alphabetically so the result is deterministic.
func topFrequentTerms(text string, limit int) []string {
	counts := map[string]int{}
	for _, word := range tokenize(text) {
		if len(word) < significantWordMinLen || isStopword(word) {
			continue
		}
		counts[word]++
	}

	terms := make([]string, 0, len(counts))
	for term := range counts {
		terms = append(terms, term)
	}
	sort.Slice(terms, func(i, j int) bool {
		if counts[terms[i]] != counts[terms[j]] {
			return counts[terms[i]] > counts[terms[j]]
		}
		return terms[i] < terms[j]
	})

	if len(terms) > limit {
		terms = terms[:limit]
	}
	return terms
}

// tokenize lowercases and splits text on any non-letter, non-digit
// rune.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// splitSentences performs a simple terminator-based split; good
// enough for prompt context extraction.
func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder
	for _, r := range text {
		current.WriteRune(r)
		if r == '.' || r == '!' || r == '?' {
			if s := strings.TrimSpace(current.String()); s != "" {
				sentences = append(sentences, s)
			}
			current.Reset()
		}
	}
	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

func firstSentence(text string) string {
	sentences := splitSentences(text)
	if len(sentences) == 0 {
		return ""
	}
	return sentences[0]
}

func containsIndicator(sentence string) bool {
	lower := strings.ToLower(sentence)
	for _, indicator := range bestPracticeIndicators {
		if strings.Contains(lower, indicator) {
			return true
		}
	}
	return false
}
