package async

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Job is one document waiting for the batch pipeline.
type Job struct {
	ID          uuid.UUID
	Path        string
	SubmittedAt time.Time
	TraceID     string
}

// Handler processes a single job. Its error is logged and reported, never retried.
type Handler func(ctx context.Context, job Job) error

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context) error
}

// ErrClosed is returned by Enqueue after Shutdown has been called.
var ErrClosed = errors.New("queue closed")
