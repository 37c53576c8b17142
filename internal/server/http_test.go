package server

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/studynotes/internal/common"
	"github.com/joseph-ayodele/studynotes/internal/extract"
	"github.com/joseph-ayodele/studynotes/internal/pipeline"
	"github.com/joseph-ayodele/studynotes/internal/session"
)

func newTestRouter(t *testing.T, e *env) http.Handler {
	t.Helper()
	cfg := RouterConfig{Session: e.session}
	if e.ledger != nil {
		cfg.Jobs = e.ledger.Jobs
		cfg.Health = func(ctx context.Context) error { return e.ledger.Ping(ctx, 0) }
	}
	return NewRouter(cfg, nil)
}

func do(t *testing.T, h http.Handler, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func uploadFile(t *testing.T, h http.Handler, filename, body string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte(body))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/v1/session/document", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestHealthz(t *testing.T) {
	h := newTestRouter(t, newEnv(t, true))
	rec := do(t, h, http.MethodGet, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("Content-Type"))
}

func TestHTTPStudyFlow(t *testing.T) {
	e := newEnv(t, false)
	h := newTestRouter(t, e)

	idle := decode[SessionDTO](t, do(t, h, http.MethodGet, "/v1/session"))
	assert.Equal(t, string(session.StateIdle), idle.State)

	rec := do(t, h, http.MethodPost, "/v1/session/summary")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, session.MsgUploadFirst, decode[ResultDTO](t, rec).Text)

	rec = uploadFile(t, h, "physics.pdf", pdfBody)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	up := decode[UploadDTO](t, rec)
	assert.Equal(t, "File 'physics.pdf' uploaded successfully!", up.Message)
	assert.Equal(t, string(session.StateTextExtracted), up.Session.State)
	assert.Equal(t, "Newton's second law. F = ma", up.Session.Preview)
	assert.False(t, up.Session.CanGenerateFlashcards)
	assert.Equal(t, pipeline.MsgSummaryRequired, up.Session.FlashcardsHint)

	rec = do(t, h, http.MethodPost, "/v1/session/flashcards")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, pipeline.MsgSummaryRequired, decode[ResultDTO](t, rec).Text)
	assert.Equal(t, 0, e.completer.Calls())

	rec = do(t, h, http.MethodPost, "/v1/session/summary")
	require.Equal(t, http.StatusOK, rec.Code)
	sum := decode[ResultDTO](t, rec)
	assert.Equal(t, "OK", sum.Status)
	assert.Equal(t, "Force equals mass times acceleration.", sum.Text)

	rec = do(t, h, http.MethodPost, "/v1/session/quiz")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodPost, "/v1/session/cards")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, decode[ResultDTO](t, rec).Text, "Front: Force")

	snap := decode[SessionDTO](t, do(t, h, http.MethodGet, "/v1/session"))
	assert.Equal(t, string(session.StateFlashcardsReady), snap.State)
	assert.True(t, snap.CanGenerateFlashcards)
	assert.Empty(t, snap.FlashcardsHint)
	require.NotNil(t, snap.Quiz)
	assert.Equal(t, "1. What is force?\nAnswer: ma", snap.Quiz.Text)

	rec = do(t, h, http.MethodGet, "/v1/session/export.xlsx")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, xlsxContentType, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "physics-study-pack.xlsx")

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Flashcards")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"Mechanics", "Force", "Mass times acceleration"}, rows[1])
}

func TestHTTPGenerationFailureIsAResult(t *testing.T) {
	e := newEnv(t, false)
	e.completer.Err = common.NewCompletionError("upstream 500", nil)
	h := newTestRouter(t, e)

	require.Equal(t, http.StatusOK, uploadFile(t, h, "a.pdf", pdfBody).Code)
	rec := do(t, h, http.MethodPost, "/v1/session/summary")
	require.Equal(t, http.StatusOK, rec.Code)
	res := decode[ResultDTO](t, rec)
	assert.Equal(t, "FAILED", res.Status)
	assert.Equal(t, "Failed to generate summary.", res.Text)
}

func TestHTTPUploadRejections(t *testing.T) {
	e := newEnv(t, false)
	h := newTestRouter(t, e)

	rec := uploadFile(t, h, "notes.docx", pdfBody)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/v1/session/document", bytes.NewBufferString("raw"))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Equal(t, session.StateIdle, e.session.Snapshot().State)
}

func TestHTTPUploadExtractionFailure(t *testing.T) {
	e := newEnv(t, false)
	e.extractor.Err = common.NewExtractionError(extract.MsgExtractionFailed, nil)
	h := newTestRouter(t, e)

	rec := uploadFile(t, h, "broken.pdf", pdfBody)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := decode[map[string]any](t, rec)
	assert.Equal(t, extract.MsgExtractionFailed, body["error"])
	assert.Equal(t, common.CodeExtraction, body["code"])

	rec = do(t, h, http.MethodPost, "/v1/session/quiz")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, extract.MsgExtractionFailed, decode[ResultDTO](t, rec).Text)
}

func TestHTTPUnknownKind(t *testing.T) {
	h := newTestRouter(t, newEnv(t, false))
	rec := do(t, h, http.MethodPost, "/v1/session/essay")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHTTPExportBeforeGeneration(t *testing.T) {
	h := newTestRouter(t, newEnv(t, false))
	rec := do(t, h, http.MethodGet, "/v1/session/export.xlsx")
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestHTTPReset(t *testing.T) {
	e := newEnv(t, false)
	h := newTestRouter(t, e)
	require.Equal(t, http.StatusOK, uploadFile(t, h, "a.pdf", pdfBody).Code)
	before := e.session.Snapshot().SessionID

	snap := decode[SessionDTO](t, do(t, h, http.MethodDelete, "/v1/session"))
	assert.Equal(t, string(session.StateIdle), snap.State)
	assert.NotEqual(t, before.String(), snap.SessionID)
}

func TestHTTPHistory(t *testing.T) {
	e := newEnv(t, true)
	h := newTestRouter(t, e)

	require.Equal(t, http.StatusOK, uploadFile(t, h, "bio.pdf", pdfBody).Code)
	require.Equal(t, http.StatusOK, do(t, h, http.MethodPost, "/v1/session/summary").Code)

	rec := do(t, h, http.MethodGet, "/v1/history?limit=10")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[struct {
		Jobs []JobDTO `json:"jobs"`
	}](t, rec)
	require.Len(t, body.Jobs, 2)

	var stages []string
	for _, j := range body.Jobs {
		stages = append(stages, j.Stage+"/"+j.Status)
		assert.Equal(t, "bio.pdf", j.Filename)
	}
	assert.ElementsMatch(t, []string{"EXTRACT/OK", "GENERATE/OK"}, stages)

	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/v1/history?limit=0").Code)
}

func TestHTTPHistoryDisabled(t *testing.T) {
	h := newTestRouter(t, newEnv(t, false))
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/v1/history").Code)
}
