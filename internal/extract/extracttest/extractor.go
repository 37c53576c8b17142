// Package extracttest provides a scripted extract.TextExtractor for tests.
package extracttest

import (
	"context"

	"github.com/joseph-ayodele/studynotes/internal/extract"
)

// Extractor returns pages joined as a real extraction would, or Err.
type Extractor struct {
	Pages []string
	Err   error
	Paths []string
}

func (e *Extractor) Extract(_ context.Context, path string) (extract.TextExtractionResult, error) {
	e.Paths = append(e.Paths, path)
	if e.Err != nil {
		return extract.TextExtractionResult{Method: "pdf-text"}, e.Err
	}
	res := extract.TextExtractionResult{Method: "pdf-text", Pages: len(e.Pages)}
	for _, p := range e.Pages {
		res.Text += p
		res.PageTexts = append(res.PageTexts, p)
	}
	return res, nil
}
