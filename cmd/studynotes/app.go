package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/joseph-ayodele/studynotes/internal/common"
	"github.com/joseph-ayodele/studynotes/internal/export"
	"github.com/joseph-ayodele/studynotes/internal/extract"
	"github.com/joseph-ayodele/studynotes/internal/ingest"
	"github.com/joseph-ayodele/studynotes/internal/llm"
	"github.com/joseph-ayodele/studynotes/internal/llm/openai"
	"github.com/joseph-ayodele/studynotes/internal/pipeline"
	"github.com/joseph-ayodele/studynotes/internal/server"
	"github.com/joseph-ayodele/studynotes/internal/session"
)

// app holds the wired components shared by every command.
type app struct {
	cfg      *common.Config
	logger   *zap.Logger
	ledger   *server.Ledger
	stager   *ingest.FSStager
	extract  *pipeline.ExtractStage
	generate *pipeline.GenerateStage
	exporter *export.Service
	warnings []string
}

func newApp(ctx context.Context, cfg *common.Config, logger *zap.Logger) (*app, error) {
	templates, err := llm.LoadTemplates(cfg.Prompts.File)
	if err != nil {
		return nil, common.NewConfigurationError("invalid prompt file "+cfg.Prompts.File, err)
	}

	ledger, err := server.ConnectLedger(ctx, cfg.Ledger, logger)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}

	var warnings []string
	for _, w := range cfg.Warnings() {
		logger.Warn("config.warning", zap.String("code", w.Code), zap.String("message", w.Message))
		warnings = append(warnings, w.Message)
	}

	client := openai.NewClient(openai.Config{
		APIKey:  cfg.LLM.APIKey,
		BaseURL: cfg.LLM.BaseURL,
		Model:   cfg.LLM.Model,
		Timeout: cfg.LLM.Timeout,
	}, logger)
	extractor := extract.NewPDFExtractor(extract.Config{MaxPages: cfg.Extract.MaxPages}, logger)

	return &app{
		cfg:      cfg,
		logger:   logger,
		ledger:   ledger,
		stager:   ingest.NewFSStager(ingest.Config{ScratchDir: cfg.Upload.ScratchDir, MaxBytes: cfg.Upload.MaxBytes}, logger),
		extract:  pipeline.NewExtractStage(logger, extractor, ledger.DocsRepo(), ledger.JobsRepo()),
		generate: pipeline.NewGenerateStage(logger, client, templates, client.Model(), ledger.JobsRepo()),
		exporter: export.NewService(logger),
		warnings: warnings,
	}, nil
}

func (a *app) newSession() *session.Session {
	return session.New(a.logger, a.stager, a.extract, a.generate, session.Options{
		PreviewChars:   a.cfg.Extract.PreviewChars,
		ConfigWarnings: a.warnings,
	})
}

func (a *app) processor() *pipeline.Processor {
	return pipeline.NewProcessor(a.logger, a.extract, a.generate)
}

func (a *app) ping(ctx context.Context) error {
	return a.ledger.Ping(ctx, 3*time.Second)
}

func (a *app) close() {
	a.ledger.Close()
}
