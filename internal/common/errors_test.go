package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestAppErrorMatchesSentinel(t *testing.T) {
	cause := errors.New("xref table broken")
	err := fmt.Errorf("upload: %w", NewExtractionError("could not read pdf", cause))

	assert.True(t, errors.Is(err, ErrExtraction))
	assert.True(t, errors.Is(err, cause))
	assert.False(t, errors.Is(err, ErrCompletion))
	assert.Equal(t, CodeExtraction, CodeOf(err))
	assert.Equal(t, "could not read pdf", MessageOf(err))
}

func TestToStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want codes.Code
	}{
		{"extraction", NewExtractionError("bad pdf", nil), codes.InvalidArgument},
		{"completion", NewCompletionError("endpoint down", nil), codes.Unavailable},
		{"precondition", NewPreconditionError("summary first"), codes.FailedPrecondition},
		{"invalid", NewInvalidInputError("filename", nil), codes.InvalidArgument},
		{"plain", errors.New("boom"), codes.Internal},
		{"already status", status.Error(codes.NotFound, "gone"), codes.NotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st, ok := status.FromError(ToStatus(tt.err))
			assert.True(t, ok)
			assert.Equal(t, tt.want, st.Code())
		})
	}
	assert.NoError(t, ToStatus(nil))
}
