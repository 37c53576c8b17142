package repository

import (
	"context"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/joseph-ayodele/studynotes/internal/common"
	"github.com/joseph-ayodele/studynotes/internal/entity"
)

type DocumentRepository interface {
	Create(ctx context.Context, doc *entity.Document) error
	SetExtraction(ctx context.Context, id uuid.UUID, pages, chars int) error
	Get(ctx context.Context, id uuid.UUID) (*entity.Document, error)
}

type documentRepo struct {
	db  *DB
	log *zap.Logger
}

func NewDocumentRepository(db *DB, log *zap.Logger) DocumentRepository {
	if log == nil {
		log = zap.NewNop()
	}
	return &documentRepo{db: db, log: log}
}

func (r *documentRepo) Create(ctx context.Context, doc *entity.Document) error {
	q, args := r.db.builder().Insert("documents").
		Columns("id", "session_id", "filename", "size_bytes", "sha256", "pages", "chars", "uploaded_at").
		Values(doc.ID.String(), doc.SessionID.String(), doc.Filename, doc.SizeBytes, doc.SHA256, doc.Pages, doc.Chars, doc.UploadedAt.UTC()).
		Query()
	if err := r.db.drv.Exec(ctx, q, args, nil); err != nil {
		r.log.Error("document create failed", zap.String("document_id", doc.ID.String()), zap.Error(err))
		return err
	}
	r.log.Debug("document recorded", zap.String("document_id", doc.ID.String()), zap.String("filename", doc.Filename))
	return nil
}

func (r *documentRepo) SetExtraction(ctx context.Context, id uuid.UUID, pages, chars int) error {
	q, args := r.db.builder().Update("documents").
		Set("pages", pages).
		Set("chars", chars).
		Where(entsql.EQ("id", id.String())).
		Query()
	if err := r.db.drv.Exec(ctx, q, args, nil); err != nil {
		r.log.Error("document set extraction failed", zap.String("document_id", id.String()), zap.Error(err))
		return err
	}
	return nil
}

func (r *documentRepo) Get(ctx context.Context, id uuid.UUID) (*entity.Document, error) {
	q, args := r.db.builder().
		Select("id", "session_id", "filename", "size_bytes", "sha256", "pages", "chars", "uploaded_at").
		From(r.db.builder().Table("documents")).
		Where(entsql.EQ("id", id.String())).
		Query()

	var rows entsql.Rows
	if err := r.db.drv.Query(ctx, q, args, &rows); err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, common.NewAppError(common.CodeNotFound, "document not found", nil)
	}
	var d entity.Document
	if err := rows.Scan(&d.ID, &d.SessionID, &d.Filename, &d.SizeBytes, &d.SHA256, &d.Pages, &d.Chars, &d.UploadedAt); err != nil {
		return nil, err
	}
	return &d, nil
}
