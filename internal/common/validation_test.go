package common

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatorUpload(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		size     int64
		wantErr  string
	}{
		{"ok", "notes.pdf", 1024, ""},
		{"upper ext", "NOTES.PDF", 1024, ""},
		{"missing name", " ", 1024, "is required"},
		{"wrong type", "notes.docx", 1024, "must be a .pdf file"},
		{"empty file", "notes.pdf", 0, "must be at least 1 bytes"},
		{"too large", "notes.pdf", 4096, "must be at most 2048 bytes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewValidator().
				Field("filename", tt.filename, Required, AllowedFileType).
				Field("size", tt.size, SizeBetween(1, 2048))
			err := v.Err()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidInput))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestMaxLength(t *testing.T) {
	v := NewValidator().Field("filename", "abcdef", MaxLength(3))
	assert.True(t, v.HasErrors())
	assert.Contains(t, v.ErrorMessage(), "at most 3 characters")
}
