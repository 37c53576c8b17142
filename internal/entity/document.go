package entity

import (
	"time"

	"github.com/google/uuid"
)

// Document is the ledger row for one upload. It never carries document text.
type Document struct {
	ID         uuid.UUID `json:"id"`
	SessionID  uuid.UUID `json:"session_id"`
	Filename   string    `json:"filename"`
	SizeBytes  int64     `json:"size_bytes"`
	SHA256     string    `json:"sha256"`
	Pages      int       `json:"pages"`
	Chars      int       `json:"chars"`
	UploadedAt time.Time `json:"uploaded_at"`
}
