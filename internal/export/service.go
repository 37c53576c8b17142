package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/joseph-ayodele/studynotes/internal/common"
	"github.com/joseph-ayodele/studynotes/internal/session"
)

const (
	sheetSummary    = "Summary"
	sheetQuiz       = "Quiz"
	sheetFlashcards = "Flashcards"
)

// StudyPack is the material written to a workbook.
type StudyPack struct {
	Filename    string
	GeneratedAt time.Time
	Summary     string
	Quiz        string
	Flashcards  string
}

// Empty reports whether there is nothing to export.
func (p StudyPack) Empty() bool {
	return strings.TrimSpace(p.Summary+p.Quiz+p.Flashcards) == ""
}

// PackFromSnapshot collects the successful artifacts of a session.
func PackFromSnapshot(snap session.Snapshot) StudyPack {
	p := StudyPack{Filename: snap.Filename, GeneratedAt: snap.UpdatedAt}
	if snap.Summary != nil && snap.Summary.OK() {
		p.Summary = snap.Summary.Text
	}
	if snap.Quiz != nil && snap.Quiz.OK() {
		p.Quiz = snap.Quiz.Text
	}
	if snap.Flashcards != nil && snap.Flashcards.OK() {
		p.Flashcards = snap.Flashcards.Text
	}
	return p
}

// Service renders study packs as XLSX workbooks.
type Service struct {
	logger *zap.Logger
}

func NewService(logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{logger: logger}
}

// WriteXLSX writes the pack as a workbook with Summary, Quiz and Flashcards sheets.
func (s *Service) WriteXLSX(w io.Writer, pack StudyPack) error {
	start := time.Now()
	if pack.Empty() {
		return common.NewPreconditionError("Nothing to export yet. Generate a summary, quiz or flashcards first.")
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Warn("export.xlsx.close_failed", zap.Error(err))
		}
	}()

	if err := f.SetSheetName("Sheet1", sheetSummary); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	for _, name := range []string{sheetQuiz, sheetFlashcards} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("new sheet %s: %w", name, err)
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	wrap, err := f.NewStyle(&excelize.Style{Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"}})
	if err != nil {
		return err
	}

	title := pack.Filename
	if title == "" {
		title = "Study notes"
	}
	generated := pack.GeneratedAt
	if generated.IsZero() {
		generated = time.Now().UTC()
	}

	writeLines := func(sheet, heading, body string) int {
		_ = f.SetCellValue(sheet, "A1", heading+": "+title)
		_ = f.SetCellValue(sheet, "A2", "Generated "+generated.Format(time.RFC3339))
		_ = f.SetCellStyle(sheet, "A1", "A1", bold)
		row := 4
		for _, line := range strings.Split(strings.TrimSpace(body), "\n") {
			cell, _ := excelize.CoordinatesToCellName(1, row)
			_ = f.SetCellValue(sheet, cell, strings.TrimRight(line, " \r"))
			row++
		}
		_ = f.SetColWidth(sheet, "A", "A", 110)
		_ = f.SetCellStyle(sheet, "A4", fmt.Sprintf("A%d", row), wrap)
		return row - 4
	}
	summaryRows := writeLines(sheetSummary, "Summary", pack.Summary)
	quizRows := writeLines(sheetQuiz, "Quiz", pack.Quiz)

	cards := ParseFlashcards(pack.Flashcards)
	for i, h := range []string{"Topic", "Front", "Back"} {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheetFlashcards, cell, h)
	}
	_ = f.SetCellStyle(sheetFlashcards, "A1", "C1", bold)
	row := 2
	for _, c := range cards {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheetFlashcards, cell, v)
		}
		write(1, c.Topic)
		write(2, c.Front)
		write(3, c.Back)
		row++
	}
	_ = f.SetColWidth(sheetFlashcards, "A", "A", 24) // topic
	_ = f.SetColWidth(sheetFlashcards, "B", "B", 48) // front
	_ = f.SetColWidth(sheetFlashcards, "C", "C", 72) // back
	_ = f.SetCellStyle(sheetFlashcards, "A2", fmt.Sprintf("C%d", row), wrap)

	active, _ := f.GetSheetIndex(sheetSummary)
	f.SetActiveSheet(active)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		zap.String("filename", pack.Filename),
		zap.Int("summary_rows", summaryRows),
		zap.Int("quiz_rows", quizRows),
		zap.Int("cards", len(cards)),
		zap.Int64("elapsed_ms", time.Since(start).Milliseconds()),
	)
	return nil
}
