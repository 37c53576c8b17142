package pipeline

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/joseph-ayodele/studynotes/constants"
	"github.com/joseph-ayodele/studynotes/internal/entity"
	"github.com/joseph-ayodele/studynotes/internal/extract"
	"github.com/joseph-ayodele/studynotes/internal/ingest"
	"github.com/joseph-ayodele/studynotes/internal/repository"
)

// ExtractStage runs text extraction for a staged document and records it in the ledger.
type ExtractStage struct {
	Logger        *zap.Logger
	TextExtractor extract.TextExtractor
	DocsRepo      repository.DocumentRepository // optional
	JobsRepo      repository.JobRepository      // optional
}

func NewExtractStage(logger *zap.Logger, tx extract.TextExtractor, docs repository.DocumentRepository, jobs repository.JobRepository) *ExtractStage {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExtractStage{Logger: logger, TextExtractor: tx, DocsRepo: docs, JobsRepo: jobs}
}

// Run extracts the text of doc. Errors are returned as produced by the extractor.
func (s *ExtractStage) Run(ctx context.Context, sessionID uuid.UUID, doc ingest.Document) (extract.TextExtractionResult, error) {
	log := s.Logger.With(
		zap.String("session_id", sessionID.String()),
		zap.String("document_id", doc.ID.String()),
	)

	s.recordDocument(ctx, sessionID, doc)
	jobID := s.startJob(ctx, sessionID, doc)

	res, err := s.TextExtractor.Extract(ctx, doc.Path)
	if err != nil {
		log.Warn("pipeline.extract.failed", zap.String("filename", doc.Filename), zap.Error(err))
		s.finishJob(ctx, jobID, repository.JobOutcome{Status: constants.JobStatusFailed, ErrorMessage: err.Error()})
		return res, err
	}

	log.Info("pipeline.extract.ok",
		zap.String("filename", doc.Filename),
		zap.Int("pages", res.Pages),
		zap.Int("chars", len(res.Text)),
		zap.Strings("warnings", res.Warnings),
	)
	if s.DocsRepo != nil {
		if err := s.DocsRepo.SetExtraction(ctx, doc.ID, res.Pages, len(res.Text)); err != nil {
			log.Warn("pipeline.ledger.document_update_failed", zap.Error(err))
		}
	}
	status := constants.JobStatusOK
	if res.Empty() {
		status = constants.JobStatusEmptyInput
	}
	s.finishJob(ctx, jobID, repository.JobOutcome{Status: status, OutputChars: len(res.Text)})
	return res, nil
}

func (s *ExtractStage) recordDocument(ctx context.Context, sessionID uuid.UUID, doc ingest.Document) {
	if s.DocsRepo == nil {
		return
	}
	err := s.DocsRepo.Create(ctx, &entity.Document{
		ID:         doc.ID,
		SessionID:  sessionID,
		Filename:   doc.Filename,
		SizeBytes:  doc.Size,
		SHA256:     doc.HashHex,
		UploadedAt: doc.UploadedAt,
	})
	if err != nil {
		s.Logger.Warn("pipeline.ledger.document_failed", zap.Error(err))
	}
}

func (s *ExtractStage) startJob(ctx context.Context, sessionID uuid.UUID, doc ingest.Document) uuid.UUID {
	if s.JobsRepo == nil {
		return uuid.Nil
	}
	job, err := s.JobsRepo.Start(ctx, repository.StartJobInput{
		SessionID:  sessionID,
		DocumentID: doc.ID,
		Stage:      constants.StageExtract,
		InputChars: int(doc.Size),
	})
	if err != nil {
		s.Logger.Warn("pipeline.ledger.start_failed", zap.Error(err))
		return uuid.Nil
	}
	return job.ID
}

func (s *ExtractStage) finishJob(ctx context.Context, jobID uuid.UUID, out repository.JobOutcome) {
	if s.JobsRepo == nil || jobID == uuid.Nil {
		return
	}
	if err := s.JobsRepo.Finish(ctx, jobID, out); err != nil {
		s.Logger.Warn("pipeline.ledger.finish_failed", zap.String("job_id", jobID.String()), zap.Error(err))
	}
}
