package server

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/joseph-ayodele/studynotes/internal/common"
	repo "github.com/joseph-ayodele/studynotes/internal/repository"
)

// Ledger bundles the run ledger connection with its repositories.
// A nil *Ledger means the ledger is disabled.
type Ledger struct {
	DB   *repo.DB
	Docs repo.DocumentRepository
	Jobs repo.JobRepository
}

// ConnectLedger opens the run ledger described by cfg. It returns (nil, nil)
// when the ledger is switched off.
func ConnectLedger(ctx context.Context, cfg common.LedgerConfig, logger *zap.Logger) (*Ledger, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if strings.EqualFold(strings.TrimSpace(cfg.DSN), common.LedgerDisabled) {
		logger.Info("ledger.disabled")
		return nil, nil
	}
	db, err := repo.Open(ctx, repo.Config{
		DSN:             cfg.DSN,
		MaxConns:        cfg.MaxConns,
		MaxConnLifetime: cfg.MaxConnLifetime,
		DialTimeout:     3 * time.Second,
	}, logger)
	if err != nil {
		logger.Error("ledger.connect_failed", zap.Error(err))
		return nil, err
	}
	logger.Info("ledger.connected", zap.String("dialect", db.Dialect()))
	return &Ledger{
		DB:   db,
		Docs: repo.NewDocumentRepository(db, logger),
		Jobs: repo.NewJobRepository(db, logger),
	}, nil
}

// Ping checks the ledger store. A disabled ledger is always healthy.
func (l *Ledger) Ping(ctx context.Context, timeout time.Duration) error {
	if l == nil {
		return nil
	}
	return l.DB.HealthCheck(ctx, timeout)
}

// Close closes the ledger connections gracefully.
func (l *Ledger) Close() {
	if l == nil {
		return
	}
	l.DB.Close()
}

// DocsRepo and JobsRepo return nil interfaces when the ledger is disabled, so
// callers can hand them straight to the pipeline stages.
func (l *Ledger) DocsRepo() repo.DocumentRepository {
	if l == nil {
		return nil
	}
	return l.Docs
}

func (l *Ledger) JobsRepo() repo.JobRepository {
	if l == nil {
		return nil
	}
	return l.Jobs
}
