package main

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/joseph-ayodele/studynotes/constants"
	"github.com/joseph-ayodele/studynotes/internal/common"
	"github.com/joseph-ayodele/studynotes/internal/session"
)

const sessionHelp = `Commands:
  upload <file.pdf>   load a PDF and extract its text
  summary             generate a summary
  quiz                generate a quiz
  flashcards          generate flashcards from the summary
  show                show the current session
  export <file.xlsx>  save the results as a workbook
  reset               discard the document and results
  help                show this help
  quit                leave`

func newSessionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "session [file.pdf]",
		Short: "Start an interactive study session",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer a.close()

			sess := a.newSession()
			defer func() {
				if err := sess.Close(); err != nil {
					logger.Warn("session.close_failed", zap.Error(err))
				}
			}()

			console.Section("Study Notes Assistant")
			for _, w := range a.warnings {
				console.Warning("%s", w)
			}
			if len(args) == 1 {
				uploadFile(ctx, sess, args[0])
			}
			console.Message("%s", sessionHelp)
			return repl(ctx, a, sess)
		},
	}
}

func repl(ctx context.Context, a *app, sess *session.Session) error {
	for {
		line, err := console.Prompt("\nstudynotes")
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		cmd, arg, _ := strings.Cut(line, " ")
		arg = strings.TrimSpace(arg)

		switch strings.ToLower(cmd) {
		case "":
		case "quit", "exit", "q":
			return nil
		case "help", "?":
			console.Message("%s", sessionHelp)
		case "upload", "open":
			if arg == "" {
				console.Warning("usage: upload <file.pdf>")
				continue
			}
			uploadFile(ctx, sess, arg)
		case "show", "status":
			showSnapshot(sess.Snapshot())
		case "export":
			if arg == "" {
				console.Warning("usage: export <file.xlsx>")
				continue
			}
			if err := writeStudyPack(a.exporter, arg, sess.Snapshot()); err != nil {
				console.Error("%s", common.MessageOf(err))
				continue
			}
			console.Success("Saved %s", arg)
		case "reset":
			sess.Reset()
			console.Info("Session cleared.")
		default:
			kind, ok := constants.Canonicalize(cmd)
			if !ok {
				console.Warning("unknown command %q, type help", cmd)
				continue
			}
			generate(ctx, sess, kind)
		}
	}
}

func uploadFile(ctx context.Context, sess *session.Session, path string) {
	f, err := os.Open(path)
	if err != nil {
		console.Error("%v", err)
		return
	}
	defer f.Close()

	spin := console.Spinner("Extracting text...")
	spin.Start()
	snap, err := sess.Upload(ctx, filepath.Base(path), f)
	spin.Stop()
	if err != nil {
		console.Error("%s", common.MessageOf(err))
		return
	}
	showUpload(console, snap)
	showFlashcardGate(console, snap)
}

func generate(ctx context.Context, sess *session.Session, kind constants.Kind) {
	spin := console.Spinner(spinnerText[kind])
	spin.Start()
	res, err := sess.Generate(ctx, kind)
	spin.Stop()
	if err != nil {
		console.Warning("%s", common.MessageOf(err))
		return
	}
	showResult(console, res)
	if kind == constants.KindSummary {
		showFlashcardGate(console, sess.Snapshot())
	}
}

func showSnapshot(snap session.Snapshot) {
	console.Info("Session %s: %s", snap.SessionID, snap.State)
	if snap.Filename != "" {
		console.Info("Document %s, %d page(s), %d characters", snap.Filename, snap.Pages, snap.Chars)
	}
	if snap.ExtractionError != "" {
		console.Error("%s", snap.ExtractionError)
	}
	if snap.Summary != nil {
		showResult(console, *snap.Summary)
	}
	if snap.Quiz != nil {
		showResult(console, *snap.Quiz)
	}
	if snap.Flashcards != nil {
		showResult(console, *snap.Flashcards)
	}
	showFlashcardGate(console, snap)
}
