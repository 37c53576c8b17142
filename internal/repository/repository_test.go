package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/studynotes/constants"
	"github.com/joseph-ayodele/studynotes/internal/common"
	"github.com/joseph-ayodele/studynotes/internal/entity"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(context.Background(), Config{}, nil)
	require.NoError(t, err)
	t.Cleanup(db.Close)
	return db
}

func TestOpenInMemory(t *testing.T) {
	db := openTestDB(t)
	assert.Equal(t, "sqlite3", db.Dialect())
	assert.NoError(t, db.HealthCheck(context.Background(), time.Second))
}

func TestDocumentRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewDocumentRepository(openTestDB(t), nil)

	doc := &entity.Document{
		ID:         uuid.New(),
		SessionID:  uuid.New(),
		Filename:   "ch1.pdf",
		SizeBytes:  2048,
		SHA256:     "abc123",
		UploadedAt: time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, repo.Create(ctx, doc))
	require.NoError(t, repo.SetExtraction(ctx, doc.ID, 2, 30))

	got, err := repo.Get(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, doc.ID, got.ID)
	assert.Equal(t, doc.SessionID, got.SessionID)
	assert.Equal(t, "ch1.pdf", got.Filename)
	assert.Equal(t, 2, got.Pages)
	assert.Equal(t, 30, got.Chars)
	assert.True(t, doc.UploadedAt.Equal(got.UploadedAt))

	_, err = repo.Get(ctx, uuid.New())
	assert.True(t, errors.Is(err, common.ErrNotFound))
}

func TestJobRepositoryLifecycle(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	docs := NewDocumentRepository(db, nil)
	jobs := NewJobRepository(db, nil)

	doc := &entity.Document{ID: uuid.New(), SessionID: uuid.New(), Filename: "ch2.pdf", SizeBytes: 1, SHA256: "x", UploadedAt: time.Now()}
	require.NoError(t, docs.Create(ctx, doc))

	first, err := jobs.Start(ctx, StartJobInput{
		SessionID: doc.SessionID, DocumentID: doc.ID,
		Stage: constants.StageGenerate, Kind: constants.KindSummary,
		Model: "gemini-2.0-flash", Temperature: 0.7, MaxTokens: 1500, InputChars: 30,
	})
	require.NoError(t, err)
	assert.Equal(t, string(constants.JobStatusRunning), first.Status)
	require.NoError(t, jobs.Finish(ctx, first.ID, JobOutcome{Status: constants.JobStatusOK, OutputChars: 120}))

	time.Sleep(5 * time.Millisecond)
	second, err := jobs.Start(ctx, StartJobInput{SessionID: doc.SessionID, DocumentID: doc.ID, Stage: constants.StageGenerate, Kind: constants.KindQuiz})
	require.NoError(t, err)
	require.NoError(t, jobs.Finish(ctx, second.ID, JobOutcome{Status: constants.JobStatusFailed, ErrorMessage: "endpoint down"}))

	recent, err := jobs.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 2)

	assert.Equal(t, second.ID, recent[0].ID)
	assert.Equal(t, "FAILED", recent[0].Status)
	assert.Equal(t, "endpoint down", recent[0].ErrorMessage)
	assert.Equal(t, "ch2.pdf", recent[0].Filename)

	assert.Equal(t, first.ID, recent[1].ID)
	assert.Equal(t, "OK", recent[1].Status)
	assert.Equal(t, "summary", recent[1].Kind)
	assert.Equal(t, 1500, recent[1].MaxTokens)
	assert.Equal(t, 120, recent[1].OutputChars)
	require.NotNil(t, recent[1].FinishedAt)
	assert.GreaterOrEqual(t, recent[1].Elapsed(), time.Duration(0))
}
