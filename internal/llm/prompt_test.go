package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/studynotes/constants"
)

func TestDefaultTemplatesRenderVerbatim(t *testing.T) {
	tpls := DefaultTemplates()
	input := "Alpha formula X=1Beta term Y=2 {text} $1 \\n"

	tests := []struct {
		kind      constants.Kind
		prefix    string
		maxTokens int
	}{
		{constants.KindSummary, "Summarize the following text concisely and clearly.\nHighlight key terms, formulas, and definitions:\n\n", 1500},
		{constants.KindQuiz, "Generate a quiz (mix of multiple-choice and short answer questions)\nfrom the following text. Provide the answers immediately after each question:\n\n", 2000},
		{constants.KindFlashcards, "Create flashcards from the following summarized text.\nFormat each flashcard as 'Front: [Term/Question] | Back: [Answer/Explanation]'.\nGroup flashcards by topic or concept if natural:\n\n", 2000},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			tpl, err := tpls.Get(tt.kind)
			require.NoError(t, err)

			req := tpl.Request("m", input)
			assert.Equal(t, tt.prefix+input, req.Prompt)
			assert.Equal(t, 0.7, req.Temperature)
			assert.Equal(t, tt.maxTokens, req.MaxTokens)
			assert.Equal(t, "m", req.Model)
		})
	}
}

func TestTemplatesGetUnknown(t *testing.T) {
	_, err := DefaultTemplates().Get("essay")
	assert.Error(t, err)
}
