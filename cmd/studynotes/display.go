package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/joseph-ayodele/studynotes/constants"
	"github.com/joseph-ayodele/studynotes/internal/export"
	"github.com/joseph-ayodele/studynotes/internal/pipeline"
	"github.com/joseph-ayodele/studynotes/internal/session"
	"github.com/joseph-ayodele/studynotes/internal/ui"
)

var titles = map[constants.Kind]string{
	constants.KindSummary:    "Summary",
	constants.KindQuiz:       "Quiz",
	constants.KindFlashcards: "Flashcards",
}

var spinnerText = map[constants.Kind]string{
	constants.KindSummary:    "Generating summary...",
	constants.KindQuiz:       "Generating quiz...",
	constants.KindFlashcards: "Generating flashcards...",
}

func showResult(c *ui.Console, res pipeline.Result) {
	switch res.Status {
	case constants.JobStatusOK:
		c.Block(titles[res.Kind], res.Text)
	case constants.JobStatusFailed:
		c.Error("%s", res.Text)
	default:
		c.Warning("%s", res.Text)
	}
}

func showUpload(c *ui.Console, snap session.Snapshot) {
	c.Success("%s", session.UploadedMessage(snap.Filename))
	c.Info("%d page(s), %d characters extracted", snap.Pages, snap.Chars)
	for _, w := range snap.Warnings {
		c.Warning("%s", w)
	}
	if snap.Preview != "" {
		c.Block("Extracted text preview", snap.Preview)
	}
}

func showFlashcardGate(c *ui.Console, snap session.Snapshot) {
	if snap.Chars > 0 && !snap.CanGenerateFlashcards {
		c.Info("%s", pipeline.MsgSummaryRequired)
	}
}

func writeStudyPack(exp *export.Service, path string, snap session.Snapshot) error {
	var buf bytes.Buffer
	if err := exp.WriteXLSX(&buf, export.PackFromSnapshot(snap)); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
