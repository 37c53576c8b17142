package server

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/studynotes/internal/extract/extracttest"
	"github.com/joseph-ayodele/studynotes/internal/ingest"
	"github.com/joseph-ayodele/studynotes/internal/llm"
	"github.com/joseph-ayodele/studynotes/internal/llm/llmtest"
	"github.com/joseph-ayodele/studynotes/internal/pipeline"
	"github.com/joseph-ayodele/studynotes/internal/repository"
	"github.com/joseph-ayodele/studynotes/internal/session"
)

const pdfBody = "%PDF-1.4 test body"

func scriptedCompleter() *llmtest.Completer {
	return &llmtest.Completer{Reply: func(req llm.CompletionRequest) string {
		switch {
		case strings.HasPrefix(req.Prompt, "Create flashcards"):
			return "Mechanics\nFront: Force | Back: Mass times acceleration"
		case strings.HasPrefix(req.Prompt, "Generate a quiz"):
			return "1. What is force?\nAnswer: ma"
		default:
			return "Force equals mass times acceleration."
		}
	}}
}

type env struct {
	session   *session.Session
	extractor *extracttest.Extractor
	completer *llmtest.Completer
	ledger    *Ledger
}

func newEnv(t *testing.T, withLedger bool) *env {
	t.Helper()
	e := &env{
		extractor: &extracttest.Extractor{Pages: []string{"Newton's second law. ", "F = ma"}},
		completer: scriptedCompleter(),
	}
	if withLedger {
		db, err := repository.Open(context.Background(), repository.Config{}, nil)
		require.NoError(t, err)
		t.Cleanup(db.Close)
		e.ledger = &Ledger{
			DB:   db,
			Docs: repository.NewDocumentRepository(db, nil),
			Jobs: repository.NewJobRepository(db, nil),
		}
	}
	e.session = session.New(nil,
		ingest.NewFSStager(ingest.Config{ScratchDir: t.TempDir()}, nil),
		pipeline.NewExtractStage(nil, e.extractor, e.ledger.DocsRepo(), e.ledger.JobsRepo()),
		pipeline.NewGenerateStage(nil, e.completer, nil, "test-model", e.ledger.JobsRepo()),
		session.Options{},
	)
	return e
}
