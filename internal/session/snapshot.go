package session

import (
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/studynotes/internal/common"
	"github.com/joseph-ayodele/studynotes/internal/pipeline"
)

// Snapshot is a point-in-time copy of a session for display.
type Snapshot struct {
	SessionID  uuid.UUID
	State      State
	DocumentID uuid.UUID
	Filename   string
	SizeBytes  int64
	Pages      int
	Chars      int
	Preview    string
	Warnings   []string

	ExtractionError string

	Summary    *pipeline.Result
	Quiz       *pipeline.Result
	Flashcards *pipeline.Result

	CanGenerateFlashcards bool
	ConfigWarnings        []string
	UpdatedAt             time.Time
}

// Snapshot returns the current session contents.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	out := Snapshot{
		SessionID:             s.id,
		State:                 s.state,
		CanGenerateFlashcards: s.state.hasText() && s.canFlashcardsLocked(),
		ConfigWarnings:        append([]string(nil), s.opts.ConfigWarnings...),
		UpdatedAt:             s.updatedAt,
		Summary:               copyResult(s.summary),
		Quiz:                  copyResult(s.quiz),
		Flashcards:            copyResult(s.flashcards),
	}
	if s.doc != nil {
		out.DocumentID = s.doc.ID
		out.Filename = s.doc.Filename
		out.SizeBytes = s.doc.Size
	}
	if s.extraction != nil {
		out.Pages = s.extraction.Pages
		out.Chars = len(s.extraction.Text)
		out.Preview = s.extraction.Preview(s.opts.PreviewChars)
		out.Warnings = append([]string(nil), s.extraction.Warnings...)
	}
	if s.extractErr != nil {
		out.ExtractionError = common.MessageOf(s.extractErr)
	}
	return out
}

func copyResult(r *pipeline.Result) *pipeline.Result {
	if r == nil {
		return nil
	}
	c := *r
	return &c
}
