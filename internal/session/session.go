package session

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/joseph-ayodele/studynotes/constants"
	"github.com/joseph-ayodele/studynotes/internal/common"
	"github.com/joseph-ayodele/studynotes/internal/extract"
	"github.com/joseph-ayodele/studynotes/internal/ingest"
	"github.com/joseph-ayodele/studynotes/internal/pipeline"
)

const (
	MsgUploadFirst = "Please upload a PDF first."
	MsgNoText      = "No text is available. Please upload another PDF."
)

// UploadedMessage is the confirmation shown after a successful upload.
func UploadedMessage(filename string) string {
	return fmt.Sprintf("File '%s' uploaded successfully!", filename)
}

type Options struct {
	PreviewChars   int      // default 1000
	ConfigWarnings []string // shown on every snapshot, e.g. a missing API key
}

// Session is one user's workflow: a document, its text and the artifacts
// generated from it. Actions are serialized; a second action waits for the first.
type Session struct {
	mu       sync.Mutex
	logger   *zap.Logger
	ingestor ingest.Ingestor
	extract  *pipeline.ExtractStage
	generate *pipeline.GenerateStage
	opts     Options

	id         uuid.UUID
	state      State
	doc        *ingest.Document
	extraction *extract.TextExtractionResult
	extractErr error
	summary    *pipeline.Result
	quiz       *pipeline.Result
	flashcards *pipeline.Result
	updatedAt  time.Time
}

func New(logger *zap.Logger, ing ingest.Ingestor, ex *pipeline.ExtractStage, gen *pipeline.GenerateStage, opts Options) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.PreviewChars <= 0 {
		opts.PreviewChars = 1000
	}
	s := &Session{
		logger:   logger,
		ingestor: ing,
		extract:  ex,
		generate: gen,
		opts:     opts,
	}
	s.resetLocked()
	return s
}

// resetLocked discards everything and starts a fresh session ID. Caller holds mu.
func (s *Session) resetLocked() {
	if s.doc != nil {
		if err := s.doc.Remove(); err != nil {
			s.logger.Warn("session.cleanup_failed", zap.String("path", s.doc.Path), zap.Error(err))
		}
	}
	s.id = uuid.New()
	s.state = StateIdle
	s.doc = nil
	s.extraction = nil
	s.extractErr = nil
	s.summary = nil
	s.quiz = nil
	s.flashcards = nil
	s.updatedAt = time.Now().UTC()
}

func (s *Session) actionContext(ctx context.Context) context.Context {
	ctx = common.WithSessionID(ctx, s.id.String())
	if s.doc != nil {
		ctx = common.WithDocumentID(ctx, s.doc.ID.String())
	}
	return ctx
}

// Upload replaces the session's document and extracts its text. Prior text and
// artifacts are discarded once the new file is accepted. An upload that fails
// validation leaves the session untouched.
func (s *Session) Upload(ctx context.Context, filename string, r io.Reader) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.ingestor.Stage(ctx, filename, r)
	if err != nil {
		s.logger.Warn("session.upload.rejected", zap.String("filename", filename), zap.Error(err))
		return s.snapshotLocked(), err
	}

	s.resetLocked()
	s.doc = &doc
	s.state = StateDocumentUploaded
	log := s.logger.With(zap.String("session_id", s.id.String()), zap.String("document_id", doc.ID.String()))
	log.Info("session.upload.ok", zap.String("filename", doc.Filename), zap.Int64("bytes", doc.Size))

	res, err := s.extract.Run(s.actionContext(ctx), s.id, doc)
	if rmErr := doc.Remove(); rmErr != nil {
		log.Warn("session.cleanup_failed", zap.String("path", doc.Path), zap.Error(rmErr))
	}
	s.updatedAt = time.Now().UTC()
	if err != nil {
		s.state = StateExtractionFailed
		s.extractErr = err
		log.Warn("session.extract.failed", zap.Error(err))
		return s.snapshotLocked(), err
	}

	s.extraction = &res
	s.state = StateTextExtracted
	log.Info("session.extract.ok", zap.Int("pages", res.Pages), zap.Int("chars", len(res.Text)))
	return s.snapshotLocked(), nil
}

// Summarize generates (or regenerates) the summary.
func (s *Session) Summarize(ctx context.Context) (pipeline.Result, error) {
	return s.Generate(ctx, constants.KindSummary)
}

// Quiz generates (or regenerates) the quiz.
func (s *Session) Quiz(ctx context.Context) (pipeline.Result, error) {
	return s.Generate(ctx, constants.KindQuiz)
}

// Flashcards generates flashcards from the current summary.
func (s *Session) Flashcards(ctx context.Context) (pipeline.Result, error) {
	return s.Generate(ctx, constants.KindFlashcards)
}

// Generate runs one generation action. The returned error is non-nil only when
// the action is not allowed in the current state; generation outcomes,
// including failures, are reported in the Result.
func (s *Session) Generate(ctx context.Context, kind constants.Kind) (pipeline.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkLocked(kind); err != nil {
		s.logger.Info("session.generate.refused",
			zap.String("session_id", s.id.String()),
			zap.String("kind", string(kind)),
			zap.String("state", string(s.state)),
		)
		return pipeline.Result{Kind: kind, Status: constants.JobStatusSkipped, Text: common.MessageOf(err), Err: err}, err
	}

	ctx = s.actionContext(ctx)
	var res pipeline.Result
	switch kind {
	case constants.KindSummary:
		res = s.generate.Summarize(ctx, s.extraction.Text)
		s.summary = &res
		s.flashcards = nil
		switch {
		case s.canFlashcardsLocked():
			s.state = StateSummaryReady
		case s.quiz != nil && s.quiz.OK():
			s.state = StateQuizReady
		default:
			s.state = StateTextExtracted
		}
	case constants.KindQuiz:
		res = s.generate.Quiz(ctx, s.extraction.Text)
		s.quiz = &res
		if res.OK() && s.state == StateTextExtracted {
			s.state = StateQuizReady
		}
	case constants.KindFlashcards:
		res = s.generate.Flashcards(ctx, s.summary.Text)
		s.flashcards = &res
		if res.OK() {
			s.state = StateFlashcardsReady
		}
	}
	s.updatedAt = time.Now().UTC()
	return res, nil
}

func (s *Session) checkLocked(kind constants.Kind) error {
	switch kind {
	case constants.KindSummary, constants.KindQuiz, constants.KindFlashcards:
	default:
		return common.NewInvalidInputError(fmt.Sprintf("unknown generation kind %q", kind), common.ErrInvalidInput)
	}
	switch s.state {
	case StateIdle, StateDocumentUploaded:
		return common.NewPreconditionError(MsgUploadFirst)
	case StateExtractionFailed:
		return common.NewPreconditionError(common.MessageOf(s.extractErr))
	}
	if !s.state.hasText() || s.extraction == nil {
		return common.NewPreconditionError(MsgNoText)
	}
	if kind == constants.KindFlashcards && !s.canFlashcardsLocked() {
		return common.NewAppError(common.CodePrecondition, pipeline.MsgSummaryRequired, ErrSummaryRequired)
	}
	return nil
}

// ErrSummaryRequired is matched with errors.Is when flashcards are requested too early.
var ErrSummaryRequired = fmt.Errorf("summary required: %w", common.ErrPrecondition)

func (s *Session) canFlashcardsLocked() bool {
	return s.summary != nil && s.summary.OK() && strings.TrimSpace(s.summary.Text) != ""
}

// CanGenerateFlashcards reports whether a successful, non-empty summary exists.
func (s *Session) CanGenerateFlashcards() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.hasText() && s.canFlashcardsLocked()
}

// Reset discards the document and every artifact.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
	s.logger.Info("session.reset", zap.String("session_id", s.id.String()))
}

// Close releases the staged document, if any.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc == nil {
		return nil
	}
	return s.doc.Remove()
}
