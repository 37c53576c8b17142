package pipeline

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/joseph-ayodele/studynotes/constants"
	"github.com/joseph-ayodele/studynotes/internal/common"
	"github.com/joseph-ayodele/studynotes/internal/llm"
	"github.com/joseph-ayodele/studynotes/internal/repository"
)

// GenerateStage turns text into study artifacts through a Completer.
type GenerateStage struct {
	Logger    *zap.Logger
	Completer llm.Completer
	Templates llm.Templates
	Model     string
	JobsRepo  repository.JobRepository // optional
}

func NewGenerateStage(logger *zap.Logger, completer llm.Completer, templates llm.Templates, model string, jobs repository.JobRepository) *GenerateStage {
	if logger == nil {
		logger = zap.NewNop()
	}
	if templates == nil {
		templates = llm.DefaultTemplates()
	}
	return &GenerateStage{
		Logger:    logger,
		Completer: completer,
		Templates: templates,
		Model:     model,
		JobsRepo:  jobs,
	}
}

// Summarize produces a summary of the extracted text.
func (g *GenerateStage) Summarize(ctx context.Context, text string) Result {
	return g.Generate(ctx, constants.KindSummary, text)
}

// Quiz produces questions with answers from the extracted text.
func (g *GenerateStage) Quiz(ctx context.Context, text string) Result {
	return g.Generate(ctx, constants.KindQuiz, text)
}

// Flashcards produces front/back cards from a summary.
func (g *GenerateStage) Flashcards(ctx context.Context, summary string) Result {
	return g.Generate(ctx, constants.KindFlashcards, summary)
}

// Generate renders kind's template over input and completes it. Empty input
// returns the kind's fixed message without calling the Completer; a failed
// completion returns the kind's fixed failure text with Err set.
func (g *GenerateStage) Generate(ctx context.Context, kind constants.Kind, input string) Result {
	res := Result{Kind: kind}
	log := g.Logger.With(
		zap.String("kind", string(kind)),
		zap.String("session_id", common.SessionIDFromContext(ctx)),
	)

	if strings.TrimSpace(input) == "" {
		log.Info("pipeline.generate.empty_input")
		res.Status = constants.JobStatusEmptyInput
		res.Text = EmptyInputMessage(kind)
		res.Err = common.NewAppError(common.CodeEmptyInput, res.Text, common.ErrEmptyInput)
		return res
	}

	tpl, err := g.Templates.Get(kind)
	if err != nil {
		log.Error("pipeline.generate.no_template", zap.Error(err))
		res.Status = constants.JobStatusFailed
		res.Text = FailureMessage(kind)
		res.Err = common.NewConfigurationError(err.Error(), err)
		return res
	}
	req := tpl.Request(g.Model, input)

	jobID := g.startJob(ctx, kind, req, len(input))
	res.JobID = jobID
	start := time.Now()

	out, err := g.Completer.Complete(ctx, req)
	if err != nil {
		log.Error("pipeline.generate.failed",
			zap.Error(err),
			zap.Int64("elapsed_ms", time.Since(start).Milliseconds()),
		)
		res.Status = constants.JobStatusFailed
		res.Text = FailureMessage(kind)
		res.Err = err
		g.finishJob(ctx, jobID, repository.JobOutcome{Status: res.Status, ErrorMessage: err.Error()})
		return res
	}

	log.Info("pipeline.generate.ok",
		zap.Int("input_chars", len(input)),
		zap.Int("output_chars", len(out)),
		zap.Int64("elapsed_ms", time.Since(start).Milliseconds()),
	)
	res.Status = constants.JobStatusOK
	res.Text = out
	g.finishJob(ctx, jobID, repository.JobOutcome{Status: res.Status, OutputChars: len(out)})
	return res
}

func (g *GenerateStage) startJob(ctx context.Context, kind constants.Kind, req llm.CompletionRequest, inputChars int) uuid.UUID {
	if g.JobsRepo == nil {
		return uuid.Nil
	}
	job, err := g.JobsRepo.Start(ctx, repository.StartJobInput{
		SessionID:   parseID(common.SessionIDFromContext(ctx)),
		DocumentID:  parseID(common.DocumentIDFromContext(ctx)),
		Stage:       constants.StageGenerate,
		Kind:        kind,
		Model:       req.Model,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		InputChars:  inputChars,
	})
	if err != nil {
		// the ledger is best effort; generation goes ahead without a row
		g.Logger.Warn("pipeline.ledger.start_failed", zap.Error(err))
		return uuid.Nil
	}
	return job.ID
}

func (g *GenerateStage) finishJob(ctx context.Context, jobID uuid.UUID, out repository.JobOutcome) {
	if g.JobsRepo == nil || jobID == uuid.Nil {
		return
	}
	if err := g.JobsRepo.Finish(ctx, jobID, out); err != nil {
		g.Logger.Warn("pipeline.ledger.finish_failed", zap.String("job_id", jobID.String()), zap.Error(err))
	}
}

func parseID(s string) uuid.UUID {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil
	}
	return id
}
