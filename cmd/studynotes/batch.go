package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/joseph-ayodele/studynotes/internal/async"
	"github.com/joseph-ayodele/studynotes/internal/common"
	"github.com/joseph-ayodele/studynotes/internal/export"
	"github.com/joseph-ayodele/studynotes/internal/ingest"
	"github.com/joseph-ayodele/studynotes/internal/pipeline"
)

type batchOutcome struct {
	path   string
	report pipeline.Report
	err    error
	xlsx   string
}

func newBatchCmd() *cobra.Command {
	var (
		dir        string
		out        string
		workers    int
		skipHidden bool
	)
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Generate study packs for every PDF in a directory",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(dir) == "" {
				return common.NewInvalidInputError("--dir is required", nil)
			}
			if out == "" {
				out = dir
			}
			if err := os.MkdirAll(out, 0o755); err != nil {
				return fmt.Errorf("create output dir: %w", err)
			}
			if workers <= 0 {
				workers = cfg.Batch.Workers
			}

			ctx := cmd.Context()
			a, err := newApp(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer a.close()
			for _, w := range a.warnings {
				console.Warning("%s", w)
			}

			proc := a.processor()
			var (
				mu       sync.Mutex
				outcomes []batchOutcome
			)
			pool := async.NewPool(func(ctx context.Context, job async.Job) error {
				o := runBatchJob(ctx, a, proc, out, job)
				mu.Lock()
				outcomes = append(outcomes, o)
				mu.Unlock()
				return o.err
			}, logger,
				async.WithWorkers(workers),
				async.WithQueueSize(cfg.Batch.QueueSize),
				async.WithJobTimeout(cfg.Batch.JobTimeout),
			)

			start := time.Now()
			_, stats, walkErr := ingest.WalkDocuments(ctx, dir, skipHidden, func(ctx context.Context, path string) error {
				return pool.Enqueue(ctx, async.Job{Path: path})
			})
			if err := pool.Shutdown(context.Background()); err != nil {
				logger.Warn("batch.shutdown", zap.Error(err))
			}
			if walkErr != nil {
				return walkErr
			}

			sort.Slice(outcomes, func(i, j int) bool { return outcomes[i].path < outcomes[j].path })
			rows := make([][]string, 0, len(outcomes))
			failed := 0
			for _, o := range outcomes {
				if o.err != nil {
					failed++
					rows = append(rows, []string{filepath.Base(o.path), "FAILED", "-", "-", common.MessageOf(o.err)})
					continue
				}
				rows = append(rows, []string{
					filepath.Base(o.path),
					string(o.report.Summary.Status),
					string(o.report.Quiz.Status),
					string(o.report.Flashcards.Status),
					o.xlsx,
				})
			}
			console.Section("Batch results")
			console.Table([]string{"FILE", "SUMMARY", "QUIZ", "FLASHCARDS", "OUTPUT"}, rows)
			console.Info("%d matched, %d processed, %d failed in %s",
				stats.Matched, len(outcomes)-failed, failed, time.Since(start).Round(time.Millisecond))
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "directory to scan for PDFs (required)")
	cmd.Flags().StringVar(&out, "out", "", "directory for the workbooks (default: --dir)")
	cmd.Flags().IntVar(&workers, "workers", 0, "parallel documents (default BATCH_WORKERS)")
	cmd.Flags().BoolVar(&skipHidden, "skip-hidden", true, "skip hidden files and directories")
	return cmd
}

func runBatchJob(ctx context.Context, a *app, proc *pipeline.Processor, outDir string, job async.Job) batchOutcome {
	o := batchOutcome{path: job.Path}
	doc, err := a.stager.StagePath(ctx, job.Path)
	if err != nil {
		o.err = err
		return o
	}
	defer func() {
		if err := doc.Remove(); err != nil {
			a.logger.Warn("batch.cleanup_failed", zap.String("path", doc.Path), zap.Error(err))
		}
	}()

	o.report, o.err = proc.ProcessDocument(ctx, doc)
	if o.err != nil {
		return o
	}

	pack := export.StudyPack{
		Filename:    doc.Filename,
		GeneratedAt: time.Now().UTC(),
	}
	if o.report.Summary.OK() {
		pack.Summary = o.report.Summary.Text
	}
	if o.report.Quiz.OK() {
		pack.Quiz = o.report.Quiz.Text
	}
	if o.report.Flashcards.OK() {
		pack.Flashcards = o.report.Flashcards.Text
	}
	if pack.Empty() {
		return o
	}

	name := strings.TrimSuffix(doc.Filename, filepath.Ext(doc.Filename)) + "-study-pack.xlsx"
	path := filepath.Join(outDir, name)
	f, err := os.Create(path)
	if err != nil {
		o.err = err
		return o
	}
	defer f.Close()
	if err := a.exporter.WriteXLSX(f, pack); err != nil {
		o.err = err
		return o
	}
	o.xlsx = path
	return o
}
