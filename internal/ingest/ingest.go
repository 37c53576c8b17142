package ingest

import (
	"context"
	"errors"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
)

// Document is an uploaded file staged in the scratch directory.
type Document struct {
	ID         uuid.UUID
	Filename   string // name as given by the uploader, base name only
	Path       string // staged copy
	Size       int64
	HashHex    string
	UploadedAt time.Time
}

// Remove deletes the staged copy. It is safe to call more than once.
func (d Document) Remove() error {
	if d.Path == "" {
		return nil
	}
	if err := os.Remove(d.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// FileResult is the per-file outcome of a directory walk.
type FileResult struct {
	SourcePath string
	Err        string
}

// DirStats summarizes a directory walk.
type DirStats struct {
	Scanned   uint32
	Matched   uint32
	Succeeded uint32
	Failed    uint32
}

// Ingestor is the behavior the session depends on.
type Ingestor interface {
	// Stage copies r into the scratch directory under a fresh document ID.
	Stage(ctx context.Context, filename string, r io.Reader) (Document, error)
}
