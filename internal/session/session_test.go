package session

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/studynotes/constants"
	"github.com/joseph-ayodele/studynotes/internal/common"
	"github.com/joseph-ayodele/studynotes/internal/extract"
	"github.com/joseph-ayodele/studynotes/internal/extract/extracttest"
	"github.com/joseph-ayodele/studynotes/internal/extract/pdftest"
	"github.com/joseph-ayodele/studynotes/internal/ingest"
	"github.com/joseph-ayodele/studynotes/internal/llm"
	"github.com/joseph-ayodele/studynotes/internal/llm/llmtest"
	"github.com/joseph-ayodele/studynotes/internal/pipeline"
)

type fixture struct {
	sess      *Session
	completer *llmtest.Completer
	extractor *extracttest.Extractor
	scratch   string
}

func newFixture(t *testing.T, completer *llmtest.Completer, pages ...string) *fixture {
	t.Helper()
	scratch := t.TempDir()
	ex := &extracttest.Extractor{Pages: pages}
	sess := New(nil,
		ingest.NewFSStager(ingest.Config{ScratchDir: scratch}, nil),
		pipeline.NewExtractStage(nil, ex, nil, nil),
		pipeline.NewGenerateStage(nil, completer, nil, "m", nil),
		Options{},
	)
	return &fixture{sess: sess, completer: completer, extractor: ex, scratch: scratch}
}

func upload(t *testing.T, s *Session, name string) Snapshot {
	t.Helper()
	snap, err := s.Upload(context.Background(), name, strings.NewReader("%PDF-1.4 body"))
	require.NoError(t, err)
	return snap
}

func TestNewSessionIsIdle(t *testing.T) {
	f := newFixture(t, llmtest.Echo(""))
	snap := f.sess.Snapshot()
	assert.Equal(t, StateIdle, snap.State)
	assert.False(t, snap.CanGenerateFlashcards)

	_, err := f.sess.Summarize(context.Background())
	assert.True(t, errors.Is(err, common.ErrPrecondition))
	assert.Equal(t, 0, f.completer.Calls())
}

func TestTwoPageScenario(t *testing.T) {
	f := newFixture(t, llmtest.Echo("S:"), "Alpha formula X=1", "Beta term Y=2")
	ctx := context.Background()

	snap := upload(t, f.sess, "notes.pdf")
	assert.Equal(t, StateTextExtracted, snap.State)
	assert.Equal(t, "notes.pdf", snap.Filename)
	assert.Equal(t, 2, snap.Pages)
	assert.Equal(t, "Alpha formula X=1Beta term Y=2", snap.Preview)

	sum, err := f.sess.Summarize(ctx)
	require.NoError(t, err)
	require.True(t, sum.OK())
	assert.Contains(t, f.completer.Requests()[0].Prompt, "Alpha formula X=1Beta term Y=2")
	assert.Equal(t, StateSummaryReady, f.sess.Snapshot().State)
}

func TestFlashcardsRequireSuccessfulSummary(t *testing.T) {
	f := newFixture(t, llmtest.Echo("S:"), "text")
	ctx := context.Background()
	upload(t, f.sess, "notes.pdf")

	assert.False(t, f.sess.CanGenerateFlashcards())
	res, err := f.sess.Flashcards(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSummaryRequired))
	assert.True(t, errors.Is(err, common.ErrPrecondition))
	assert.Equal(t, pipeline.MsgSummaryRequired, res.Text)
	assert.Equal(t, 0, f.completer.Calls())

	_, err = f.sess.Summarize(ctx)
	require.NoError(t, err)
	assert.True(t, f.sess.CanGenerateFlashcards())

	cards, err := f.sess.Flashcards(ctx)
	require.NoError(t, err)
	assert.True(t, cards.OK())
	assert.Equal(t, StateFlashcardsReady, f.sess.Snapshot().State)
}

func TestFailingCompleterKeepsSessionUsable(t *testing.T) {
	f := newFixture(t, llmtest.Failing(common.NewCompletionError("down", nil)), "text")
	ctx := context.Background()
	upload(t, f.sess, "notes.pdf")

	sum, err := f.sess.Summarize(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Failed to generate summary.", sum.Text)

	quiz, err := f.sess.Quiz(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Failed to generate quiz.", quiz.Text)

	snap := f.sess.Snapshot()
	assert.Equal(t, StateTextExtracted, snap.State)
	assert.False(t, snap.CanGenerateFlashcards, "a failed summary does not unlock flashcards")
	require.NotNil(t, snap.Summary)
	assert.Equal(t, "Failed to generate summary.", snap.Summary.Text)

	f.completer.Err = nil
	f.completer.Reply = func(_ llm.CompletionRequest) string { return "ok" }
	sum, err = f.sess.Summarize(ctx)
	require.NoError(t, err)
	assert.True(t, sum.OK())
	assert.True(t, f.sess.CanGenerateFlashcards())
}

func TestEmptySummaryDoesNotUnlockFlashcards(t *testing.T) {
	f := newFixture(t, &llmtest.Completer{}, "text")
	ctx := context.Background()
	upload(t, f.sess, "notes.pdf")

	sum, err := f.sess.Summarize(ctx)
	require.NoError(t, err)
	assert.Empty(t, sum.Text)
	assert.False(t, f.sess.CanGenerateFlashcards())
	assert.Equal(t, StateTextExtracted, f.sess.Snapshot().State)

	res, err := f.sess.Flashcards(ctx)
	assert.True(t, errors.Is(err, ErrSummaryRequired))
	assert.Equal(t, pipeline.MsgSummaryRequired, res.Text)
	assert.Equal(t, 1, f.completer.Calls())
}

func TestNewSummaryClearsFlashcards(t *testing.T) {
	f := newFixture(t, llmtest.Echo("S:"), "text")
	ctx := context.Background()
	upload(t, f.sess, "notes.pdf")

	_, err := f.sess.Summarize(ctx)
	require.NoError(t, err)
	_, err = f.sess.Flashcards(ctx)
	require.NoError(t, err)
	require.NotNil(t, f.sess.Snapshot().Flashcards)

	_, err = f.sess.Summarize(ctx)
	require.NoError(t, err)
	snap := f.sess.Snapshot()
	assert.Nil(t, snap.Flashcards)
	assert.Equal(t, StateSummaryReady, snap.State)
	assert.True(t, snap.CanGenerateFlashcards)

	f.completer.Err = common.NewCompletionError("down", nil)
	_, err = f.sess.Summarize(ctx)
	require.NoError(t, err)
	snap = f.sess.Snapshot()
	assert.Equal(t, StateTextExtracted, snap.State)
	assert.False(t, snap.CanGenerateFlashcards)
}

func TestEmptyTextGivesFixedMessages(t *testing.T) {
	f := newFixture(t, llmtest.Echo(""), "", "")
	ctx := context.Background()
	snap := upload(t, f.sess, "scanned.pdf")
	assert.Equal(t, StateTextExtracted, snap.State)

	sum, err := f.sess.Summarize(ctx)
	require.NoError(t, err)
	assert.Equal(t, "No text provided for summarization.", sum.Text)
	quiz, err := f.sess.Quiz(ctx)
	require.NoError(t, err)
	assert.Equal(t, "No text provided for quiz generation.", quiz.Text)
	assert.Equal(t, 0, f.completer.Calls())
	assert.False(t, f.sess.CanGenerateFlashcards())
}

func TestExtractionFailureBlocksGeneration(t *testing.T) {
	f := newFixture(t, llmtest.Echo(""))
	f.extractor.Err = common.NewExtractionError(extract.MsgExtractionFailed, errors.New("bad xref"))

	snap, err := f.sess.Upload(context.Background(), "broken.pdf", strings.NewReader("%PDF junk"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrExtraction))
	assert.Equal(t, StateExtractionFailed, snap.State)
	assert.Equal(t, extract.MsgExtractionFailed, snap.ExtractionError)

	_, err = f.sess.Summarize(context.Background())
	assert.True(t, errors.Is(err, common.ErrPrecondition))
	assert.Equal(t, 0, f.completer.Calls())
}

func TestReuploadClearsArtifacts(t *testing.T) {
	f := newFixture(t, llmtest.Echo("S:"), "first doc")
	ctx := context.Background()

	first := upload(t, f.sess, "one.pdf")
	_, _ = f.sess.Summarize(ctx)
	_, _ = f.sess.Quiz(ctx)
	_, _ = f.sess.Flashcards(ctx)
	require.Equal(t, StateFlashcardsReady, f.sess.Snapshot().State)

	f.extractor.Pages = []string{"second doc"}
	second := upload(t, f.sess, "two.pdf")

	assert.NotEqual(t, first.SessionID, second.SessionID)
	assert.Equal(t, StateTextExtracted, second.State)
	assert.Equal(t, "two.pdf", second.Filename)
	assert.Nil(t, second.Summary)
	assert.Nil(t, second.Quiz)
	assert.Nil(t, second.Flashcards)
	assert.False(t, second.CanGenerateFlashcards)
}

func TestRejectedUploadKeepsSession(t *testing.T) {
	f := newFixture(t, llmtest.Echo(""), "text")
	before := upload(t, f.sess, "one.pdf")

	_, err := f.sess.Upload(context.Background(), "slides.pptx", strings.NewReader("x"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrInvalidInput))

	after := f.sess.Snapshot()
	assert.Equal(t, before.SessionID, after.SessionID)
	assert.Equal(t, StateTextExtracted, after.State)
}

func TestStagedFilesAreRemoved(t *testing.T) {
	f := newFixture(t, llmtest.Echo(""), "text")
	upload(t, f.sess, "one.pdf")
	require.Len(t, f.extractor.Paths, 1)

	_, err := os.Stat(f.extractor.Paths[0])
	assert.True(t, errors.Is(err, os.ErrNotExist))
	entries, err := os.ReadDir(f.scratch)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestPreviewIsTruncated(t *testing.T) {
	long := strings.Repeat("a", 1500)
	f := newFixture(t, llmtest.Echo(""), long)
	snap := upload(t, f.sess, "long.pdf")
	assert.Equal(t, strings.Repeat("a", 1000)+"...", snap.Preview)
	assert.Equal(t, 1500, snap.Chars)
}

type overlapCompleter struct {
	inFlight    int32
	maxInFlight int32
	calls       int32
}

func (c *overlapCompleter) Complete(_ context.Context, _ llm.CompletionRequest) (string, error) {
	n := atomic.AddInt32(&c.inFlight, 1)
	for {
		m := atomic.LoadInt32(&c.maxInFlight)
		if n <= m || atomic.CompareAndSwapInt32(&c.maxInFlight, m, n) {
			break
		}
	}
	time.Sleep(5 * time.Millisecond)
	atomic.AddInt32(&c.inFlight, -1)
	atomic.AddInt32(&c.calls, 1)
	return "ok", nil
}

func TestActionsAreSerialized(t *testing.T) {
	c := &overlapCompleter{}
	sess := New(nil,
		ingest.NewFSStager(ingest.Config{ScratchDir: t.TempDir()}, nil),
		pipeline.NewExtractStage(nil, &extracttest.Extractor{Pages: []string{"text"}}, nil, nil),
		pipeline.NewGenerateStage(nil, c, nil, "m", nil),
		Options{},
	)
	upload(t, sess, "one.pdf")

	var wg sync.WaitGroup
	for _, k := range []constants.Kind{constants.KindSummary, constants.KindQuiz, constants.KindSummary, constants.KindQuiz} {
		wg.Add(1)
		go func(k constants.Kind) {
			defer wg.Done()
			_, _ = sess.Generate(context.Background(), k)
		}(k)
	}
	wg.Wait()

	assert.EqualValues(t, 1, atomic.LoadInt32(&c.maxInFlight))
	assert.EqualValues(t, 4, atomic.LoadInt32(&c.calls))
}

func TestGenerateUnknownKind(t *testing.T) {
	f := newFixture(t, llmtest.Echo(""), "text")
	upload(t, f.sess, "one.pdf")
	_, err := f.sess.Generate(context.Background(), "essay")
	assert.True(t, errors.Is(err, common.ErrInvalidInput))
}

func TestRealPDFUpload(t *testing.T) {
	scratch := t.TempDir()
	sess := New(nil,
		ingest.NewFSStager(ingest.Config{ScratchDir: scratch}, nil),
		pipeline.NewExtractStage(nil, extract.NewPDFExtractor(extract.Config{}, nil), nil, nil),
		pipeline.NewGenerateStage(nil, llmtest.Echo(""), nil, "m", nil),
		Options{ConfigWarnings: []string{"key missing"}},
	)

	snap, err := sess.Upload(context.Background(), "real.pdf", strings.NewReader(string(pdftest.BuildPDF("Page one", "Page two"))))
	require.NoError(t, err)
	assert.Equal(t, 2, snap.Pages)
	assert.Contains(t, snap.Preview, "Page one")
	assert.Equal(t, []string{"key missing"}, snap.ConfigWarnings)
}
