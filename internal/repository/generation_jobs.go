package repository

import (
	"context"
	"database/sql"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/joseph-ayodele/studynotes/constants"
	"github.com/joseph-ayodele/studynotes/internal/entity"
)

// StartJobInput describes a run about to begin.
type StartJobInput struct {
	SessionID   uuid.UUID
	DocumentID  uuid.UUID
	Stage       constants.JobStage
	Kind        constants.Kind
	Model       string
	Temperature float64
	MaxTokens   int
	InputChars  int
}

// JobOutcome is how a run ended.
type JobOutcome struct {
	Status       constants.JobStatus
	OutputChars  int
	ErrorMessage string
}

type JobRepository interface {
	Start(ctx context.Context, in StartJobInput) (*entity.GenerationJob, error)
	Finish(ctx context.Context, jobID uuid.UUID, out JobOutcome) error
	Recent(ctx context.Context, limit int) ([]*entity.GenerationJob, error)
}

type jobRepo struct {
	db  *DB
	log *zap.Logger
}

func NewJobRepository(db *DB, log *zap.Logger) JobRepository {
	if log == nil {
		log = zap.NewNop()
	}
	return &jobRepo{db: db, log: log}
}

func (r *jobRepo) Start(ctx context.Context, in StartJobInput) (*entity.GenerationJob, error) {
	job := &entity.GenerationJob{
		ID:          uuid.New(),
		SessionID:   in.SessionID,
		DocumentID:  in.DocumentID,
		Stage:       string(in.Stage),
		Kind:        string(in.Kind),
		Status:      string(constants.JobStatusRunning),
		Model:       in.Model,
		Temperature: in.Temperature,
		MaxTokens:   in.MaxTokens,
		InputChars:  in.InputChars,
		StartedAt:   time.Now().UTC(),
	}
	q, args := r.db.builder().Insert("generation_jobs").
		Columns("id", "session_id", "document_id", "stage", "kind", "status", "model", "temperature", "max_tokens", "input_chars", "started_at").
		Values(job.ID.String(), job.SessionID.String(), job.DocumentID.String(), job.Stage, job.Kind, job.Status, job.Model, job.Temperature, job.MaxTokens, job.InputChars, job.StartedAt).
		Query()
	if err := r.db.drv.Exec(ctx, q, args, nil); err != nil {
		r.log.Error("generation_job start failed", zap.String("stage", job.Stage), zap.String("kind", job.Kind), zap.Error(err))
		return nil, err
	}
	r.log.Debug("generation_job started", zap.String("job_id", job.ID.String()), zap.String("stage", job.Stage), zap.String("kind", job.Kind))
	return job, nil
}

func (r *jobRepo) Finish(ctx context.Context, jobID uuid.UUID, out JobOutcome) error {
	q, args := r.db.builder().Update("generation_jobs").
		Set("status", string(out.Status)).
		Set("output_chars", out.OutputChars).
		Set("error_message", out.ErrorMessage).
		Set("finished_at", time.Now().UTC()).
		Where(entsql.EQ("id", jobID.String())).
		Query()
	if err := r.db.drv.Exec(ctx, q, args, nil); err != nil {
		r.log.Error("generation_job finish failed", zap.String("job_id", jobID.String()), zap.Error(err))
		return err
	}
	if out.Status == constants.JobStatusFailed {
		r.log.Warn("generation_job finished (FAILED)", zap.String("job_id", jobID.String()), zap.String("error", out.ErrorMessage))
	} else {
		r.log.Debug("generation_job finished", zap.String("job_id", jobID.String()), zap.String("status", string(out.Status)))
	}
	return nil
}

// Recent returns the latest runs, newest first, with the document filename joined in.
func (r *jobRepo) Recent(ctx context.Context, limit int) ([]*entity.GenerationJob, error) {
	if limit <= 0 {
		limit = 20
	}
	j := r.db.builder().Table("generation_jobs").As("j")
	d := r.db.builder().Table("documents").As("d")
	q, args := r.db.builder().
		Select(
			j.C("id"), j.C("session_id"), j.C("document_id"), d.C("filename"),
			j.C("stage"), j.C("kind"), j.C("status"), j.C("model"),
			j.C("temperature"), j.C("max_tokens"), j.C("input_chars"), j.C("output_chars"),
			j.C("error_message"), j.C("started_at"), j.C("finished_at"),
		).
		From(j).
		LeftJoin(d).On(j.C("document_id"), d.C("id")).
		OrderBy(entsql.Desc(j.C("started_at"))).
		Limit(limit).
		Query()

	var rows entsql.Rows
	if err := r.db.drv.Query(ctx, q, args, &rows); err != nil {
		r.log.Error("generation_job recent failed", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var out []*entity.GenerationJob
	for rows.Next() {
		var (
			job      entity.GenerationJob
			filename sql.NullString
			finished sql.NullTime
		)
		if err := rows.Scan(
			&job.ID, &job.SessionID, &job.DocumentID, &filename,
			&job.Stage, &job.Kind, &job.Status, &job.Model,
			&job.Temperature, &job.MaxTokens, &job.InputChars, &job.OutputChars,
			&job.ErrorMessage, &job.StartedAt, &finished,
		); err != nil {
			return nil, err
		}
		job.Filename = filename.String
		if finished.Valid {
			t := finished.Time
			job.FinishedAt = &t
		}
		out = append(out, &job)
	}
	return out, rows.Err()
}
