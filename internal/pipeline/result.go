package pipeline

import (
	"github.com/google/uuid"

	"github.com/joseph-ayodele/studynotes/constants"
)

// MsgSummaryRequired is shown when flashcards are requested before a summary exists.
const MsgSummaryRequired = "Please generate a summary first to create flashcards."

var emptyInputMessages = map[constants.Kind]string{
	constants.KindSummary:    "No text provided for summarization.",
	constants.KindQuiz:       "No text provided for quiz generation.",
	constants.KindFlashcards: "No summarized text provided for flashcard generation.",
}

var failureMessages = map[constants.Kind]string{
	constants.KindSummary:    "Failed to generate summary.",
	constants.KindQuiz:       "Failed to generate quiz.",
	constants.KindFlashcards: "Failed to generate flashcards.",
}

// EmptyInputMessage is the fixed text returned when kind has nothing to work on.
func EmptyInputMessage(kind constants.Kind) string { return emptyInputMessages[kind] }

// FailureMessage is the fixed text returned when the completion for kind fails.
func FailureMessage(kind constants.Kind) string { return failureMessages[kind] }

// Result is the typed outcome of one generation.
// Text always holds something displayable: the model output, or a fixed message.
type Result struct {
	Kind   constants.Kind
	Status constants.JobStatus
	Text   string
	Err    error
	JobID  uuid.UUID
}

// OK reports whether Text is model output.
func (r Result) OK() bool { return r.Status == constants.JobStatusOK }
