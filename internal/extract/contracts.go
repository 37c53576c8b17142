package extract

import (
	"context"
	"time"
)

// MsgExtractionFailed is shown to users when a document yields no readable structure.
const MsgExtractionFailed = "Could not extract text from the PDF. Please try another file."

// TextExtractor is stage 1: document -> text.
type TextExtractor interface {
	Extract(ctx context.Context, path string) (TextExtractionResult, error)
}

// TextExtractionResult is the immutable output of one extraction.
// Text is the page texts concatenated in page order with no separator.
type TextExtractionResult struct {
	Text      string
	PageTexts []string
	Pages     int
	Method    string // "pdf-text"
	Duration  time.Duration
	Warnings  []string
}

// Empty reports whether the document produced no non-whitespace text.
func (r TextExtractionResult) Empty() bool {
	for _, c := range r.Text {
		if c != ' ' && c != '\n' && c != '\t' && c != '\r' && c != '\f' {
			return false
		}
	}
	return true
}

// Preview returns the first n runes of the text, with "..." appended when truncated.
func (r TextExtractionResult) Preview(n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(r.Text)
	if len(runes) <= n {
		return r.Text
	}
	return string(runes[:n]) + "..."
}
