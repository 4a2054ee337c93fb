package sourcetext

import "github.com/calyptra/autopress/internal/domain"

// UniquenessScore measures how far generated text diverges from its
// source material: 1 - |shared significant words| / |significant
// words in sources|, clamped to [0,1]. Words of length <= 3 are
// excluded from both sets. The score is deterministic for identical
// inputs; verbatim copies of the sources score near 0.
func UniquenessScore(generated string, sources []domain.SourceDocument) float64 {
	sourceWords := map[string]struct{}{}
	for i := range sources {
		for _, word := range tokenize(sources[i].Content) {
			if len(word) < significantWordMinLen {
				continue
			}
			sourceWords[word] = struct{}{}
		}
	}
	if len(sourceWords) == 0 {
		return 1
	}

	generatedWords := map[string]struct{}{}
	for _, word := range tokenize(generated) {
		if len(word) < significantWordMinLen {
			continue
		}
		generatedWords[word] = struct{}{}
	}

	shared := 0
	for word := range generatedWords {
		if _, ok := sourceWords[word]; ok {
			shared++
		}
	}

	score := 1 - float64(shared)/float64(len(sourceWords))
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
