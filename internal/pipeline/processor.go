package pipeline

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/joseph-ayodele/studynotes/constants"
	"github.com/joseph-ayodele/studynotes/internal/common"
	"github.com/joseph-ayodele/studynotes/internal/extract"
	"github.com/joseph-ayodele/studynotes/internal/ingest"
)

// Report is the outcome of running every stage over one document.
type Report struct {
	SessionID  uuid.UUID
	Document   ingest.Document
	Extraction extract.TextExtractionResult
	Summary    Result
	Quiz       Result
	Flashcards Result
}

// Processor coordinates extraction then summary, quiz and flashcards for a single document.
type Processor struct {
	Logger   *zap.Logger
	Extract  *ExtractStage
	Generate *GenerateStage
}

func NewProcessor(logger *zap.Logger, ex *ExtractStage, gen *GenerateStage) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{Logger: logger, Extract: ex, Generate: gen}
}

// ProcessDocument runs the whole pipeline. Only an extraction failure is
// returned as an error; generation outcomes live in the report.
// Flashcards are skipped unless the summary succeeded.
func (p *Processor) ProcessDocument(ctx context.Context, doc ingest.Document) (Report, error) {
	rep := Report{SessionID: uuid.New(), Document: doc}
	ctx = common.WithSessionID(ctx, rep.SessionID.String())
	ctx = common.WithDocumentID(ctx, doc.ID.String())

	res, err := p.Extract.Run(ctx, rep.SessionID, doc)
	rep.Extraction = res
	if err != nil {
		p.Logger.Error("processor.extract.failed", zap.String("document_id", doc.ID.String()), zap.Error(err))
		return rep, err
	}

	rep.Summary = p.Generate.Summarize(ctx, res.Text)
	rep.Quiz = p.Generate.Quiz(ctx, res.Text)
	if rep.Summary.OK() {
		rep.Flashcards = p.Generate.Flashcards(ctx, rep.Summary.Text)
	} else {
		rep.Flashcards = Result{
			Kind:   constants.KindFlashcards,
			Status: constants.JobStatusSkipped,
			Text:   MsgSummaryRequired,
			Err:    common.NewPreconditionError(MsgSummaryRequired),
		}
	}

	p.Logger.Info("processor.ok",
		zap.String("document_id", doc.ID.String()),
		zap.String("summary", string(rep.Summary.Status)),
		zap.String("quiz", string(rep.Quiz.Status)),
		zap.String("flashcards", string(rep.Flashcards.Status)),
	)
	return rep, nil
}
