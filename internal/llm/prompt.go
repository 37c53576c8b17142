package llm

import (
	"fmt"
	"strings"

	"github.com/joseph-ayodele/studynotes/constants"
)

const (
	PlaceholderText    = "{text}"
	PlaceholderSummary = "{summary_text}"
)

// Template is the prompt and sampling settings for one generation kind.
type Template struct {
	Text        string
	Placeholder string
	Temperature float64
	MaxTokens   int
}

// Templates maps each generation kind to its template.
type Templates map[constants.Kind]Template

// DefaultTemplates returns the built-in prompt set.
func DefaultTemplates() Templates {
	return Templates{
		constants.KindSummary: {
			Text: "Summarize the following text concisely and clearly.\n" +
				"Highlight key terms, formulas, and definitions:\n\n" + PlaceholderText,
			Placeholder: PlaceholderText,
			Temperature: 0.7,
			MaxTokens:   1500,
		},
		constants.KindQuiz: {
			Text: "Generate a quiz (mix of multiple-choice and short answer questions)\n" +
				"from the following text. Provide the answers immediately after each question:\n\n" + PlaceholderText,
			Placeholder: PlaceholderText,
			Temperature: 0.7,
			MaxTokens:   2000,
		},
		constants.KindFlashcards: {
			Text: "Create flashcards from the following summarized text.\n" +
				"Format each flashcard as 'Front: [Term/Question] | Back: [Answer/Explanation]'.\n" +
				"Group flashcards by topic or concept if natural:\n\n" + PlaceholderSummary,
			Placeholder: PlaceholderSummary,
			Temperature: 0.7,
			MaxTokens:   2000,
		},
	}
}

// Get returns the template for kind.
func (t Templates) Get(kind constants.Kind) (Template, error) {
	tpl, ok := t[kind]
	if !ok {
		return Template{}, fmt.Errorf("no prompt template for %q", kind)
	}
	return tpl, nil
}

// Render interpolates input verbatim into the template's placeholder.
func (tpl Template) Render(input string) string {
	ph := tpl.Placeholder
	if ph == "" {
		ph = PlaceholderText
	}
	return strings.ReplaceAll(tpl.Text, ph, input)
}

// Request builds the completion request for input.
func (tpl Template) Request(model, input string) CompletionRequest {
	return CompletionRequest{
		Model:       model,
		Prompt:      tpl.Render(input),
		Temperature: tpl.Temperature,
		MaxTokens:   tpl.MaxTokens,
	}
}
