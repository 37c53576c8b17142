package constants

import (
	"strings"
)

// Kind identifies one of the generated study artifacts.
type Kind string

const (
	KindSummary    Kind = "summary"
	KindQuiz       Kind = "quiz"
	KindFlashcards Kind = "flashcards"
)

var allKinds = []Kind{
	KindSummary,
	KindQuiz,
	KindFlashcards,
}

// Kinds returns every generation kind in pipeline order.
func Kinds() []Kind {
	out := make([]Kind, len(allKinds))
	copy(out, allKinds)
	return out
}

func AsStringSlice() []string {
	result := make([]string, len(allKinds))
	for i, k := range allKinds {
		result[i] = string(k)
	}
	return result
}

func Canonicalize(input string) (Kind, bool) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if normalized == "" {
		return "", false
	}

	synonyms := map[string]Kind{
		"summarize": KindSummary,
		"summarise": KindSummary,
		"notes":     KindSummary,
		"questions": KindQuiz,
		"test":      KindQuiz,
		"flashcard": KindFlashcards,
		"cards":     KindFlashcards,
	}

	if k, ok := synonyms[normalized]; ok {
		return k, true
	}

	for _, k := range allKinds {
		if normalized == string(k) {
			return k, true
		}
	}

	return "", false
}
