package session

// State is where a session is in the study workflow.
type State string

const (
	StateIdle             State = "IDLE"
	StateDocumentUploaded State = "DOCUMENT_UPLOADED"
	StateTextExtracted    State = "TEXT_EXTRACTED"
	StateSummaryReady     State = "SUMMARY_READY"
	StateQuizReady        State = "QUIZ_READY"
	StateFlashcardsReady  State = "FLASHCARDS_READY"
	StateExtractionFailed State = "EXTRACTION_FAILED"
)

// hasText reports whether generation from extracted text is allowed in s.
func (s State) hasText() bool {
	switch s {
	case StateTextExtracted, StateSummaryReady, StateQuizReady, StateFlashcardsReady:
		return true
	}
	return false
}
