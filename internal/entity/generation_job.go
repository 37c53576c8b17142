package entity

import (
	"time"

	"github.com/google/uuid"
)

// GenerationJob represents one extraction or generation run for data transfer between layers.
// Only sizes and outcomes are kept; prompts and model output are not.
type GenerationJob struct {
	ID           uuid.UUID  `json:"id"`
	SessionID    uuid.UUID  `json:"session_id"`
	DocumentID   uuid.UUID  `json:"document_id"`
	Filename     string     `json:"filename,omitempty"`
	Stage        string     `json:"stage"`
	Kind         string     `json:"kind,omitempty"`
	Status       string     `json:"status"`
	Model        string     `json:"model,omitempty"`
	Temperature  float64    `json:"temperature"`
	MaxTokens    int        `json:"max_tokens"`
	InputChars   int        `json:"input_chars"`
	OutputChars  int        `json:"output_chars"`
	ErrorMessage string     `json:"error_message,omitempty"`
	StartedAt    time.Time  `json:"started_at"`
	FinishedAt   *time.Time `json:"finished_at,omitempty"`
}

// Elapsed returns the run duration, or zero while it is still running.
func (j GenerationJob) Elapsed() time.Duration {
	if j.FinishedAt == nil {
		return 0
	}
	return j.FinishedAt.Sub(j.StartedAt)
}
