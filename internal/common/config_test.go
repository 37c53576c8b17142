package common

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, k := range []string{"GEMINI_API_KEY", "OPENAI_API_KEY", "LLM_BASE_URL", "LLM_MODEL", "LLM_TIMEOUT", "MAX_UPLOAD_BYTES", "PREVIEW_CHARS"} {
		t.Setenv(k, "")
	}

	cfg := LoadConfig()

	assert.Equal(t, DefaultModel, cfg.LLM.Model)
	assert.Equal(t, DefaultBaseURL, cfg.LLM.BaseURL)
	assert.Equal(t, 60*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, int64(32<<20), cfg.Upload.MaxBytes)
	assert.Equal(t, 1000, cfg.Extract.PreviewChars)
	assert.Empty(t, cfg.LLM.APIKey)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfigAPIKeyFallback(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "sk-fallback")
	assert.Equal(t, "sk-fallback", LoadConfig().LLM.APIKey)

	t.Setenv("GEMINI_API_KEY", "gm-primary")
	assert.Equal(t, "gm-primary", LoadConfig().LLM.APIKey)
}

func TestLoadConfigIgnoresMalformedValues(t *testing.T) {
	t.Setenv("LLM_TIMEOUT", "soon")
	t.Setenv("MAX_UPLOAD_BYTES", "lots")

	cfg := LoadConfig()
	assert.Equal(t, 60*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, int64(32<<20), cfg.Upload.MaxBytes)
}

func TestConfigValidate(t *testing.T) {
	cfg := LoadConfig()
	cfg.LLM.Model = " "
	cfg.Upload.MaxBytes = 0

	err := cfg.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConfiguration))
	assert.Contains(t, err.Error(), "LLM_MODEL is required")
	assert.Contains(t, err.Error(), "MAX_UPLOAD_BYTES must be positive")
}

func TestConfigWarningsMissingKey(t *testing.T) {
	cfg := &Config{}
	warnings := cfg.Warnings()
	require.Len(t, warnings, 1)
	assert.Equal(t, CodeConfiguration, warnings[0].Code)
	assert.Contains(t, warnings[0].Message, "GEMINI_API_KEY environment variable is not set")
	assert.True(t, errors.Is(warnings[0], ErrMissingAPIKey))

	cfg.LLM.APIKey = "k"
	assert.Empty(t, cfg.Warnings())
}
