package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/joseph-ayodele/studynotes/internal/common"
)

type Config struct {
	ScratchDir string // default os.TempDir()/studynotes
	MaxBytes   int64  // default 32 MiB
}

// FSStager stages uploads on the local filesystem.
type FSStager struct {
	cfg    Config
	logger *zap.Logger
}

var _ Ingestor = (*FSStager)(nil)

func NewFSStager(cfg Config, logger *zap.Logger) *FSStager {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ScratchDir == "" {
		cfg.ScratchDir = filepath.Join(os.TempDir(), "studynotes")
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = 32 << 20
	}
	return &FSStager{cfg: cfg, logger: logger}
}

func (s *FSStager) Stage(ctx context.Context, filename string, r io.Reader) (Document, error) {
	var out Document
	name := filepath.Base(strings.TrimSpace(filename))
	if name == "." || name == string(filepath.Separator) {
		name = ""
	}

	if err := common.NewValidator().
		Field("filename", name, common.Required, common.MaxLength(255), common.AllowedFileType).
		Err(); err != nil {
		return out, err
	}
	if err := ctx.Err(); err != nil {
		return out, err
	}

	if err := os.MkdirAll(s.cfg.ScratchDir, 0o700); err != nil {
		s.logger.Error("ingest.scratch_dir_failed", zap.String("dir", s.cfg.ScratchDir), zap.Error(err))
		return out, fmt.Errorf("create scratch dir: %w", err)
	}

	id := uuid.New()
	path := filepath.Join(s.cfg.ScratchDir, id.String()+filepath.Ext(name))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return out, fmt.Errorf("create staged file: %w", err)
	}

	h := sha256.New()
	n, copyErr := io.Copy(io.MultiWriter(f, h), io.LimitReader(r, s.cfg.MaxBytes+1))
	closeErr := f.Close()
	if copyErr == nil {
		copyErr = closeErr
	}
	if copyErr == nil {
		copyErr = common.NewValidator().
			Field("size", n, common.SizeBetween(1, s.cfg.MaxBytes)).
			Err()
	}
	if copyErr != nil {
		if rmErr := os.Remove(path); rmErr != nil {
			s.logger.Warn("ingest.cleanup_failed", zap.String("path", path), zap.Error(rmErr))
		}
		return out, copyErr
	}

	out = Document{
		ID:         id,
		Filename:   name,
		Path:       path,
		Size:       n,
		HashHex:    hex.EncodeToString(h.Sum(nil)),
		UploadedAt: time.Now().UTC(),
	}
	s.logger.Info("ingest.staged",
		zap.String("document_id", id.String()),
		zap.String("filename", name),
		zap.Int64("bytes", n),
		zap.String("sha256", out.HashHex),
	)
	return out, nil
}

// StagePath stages a file from the local filesystem.
func (s *FSStager) StagePath(ctx context.Context, path string) (Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return Document{}, err
	}
	defer func(f *os.File) {
		if err := f.Close(); err != nil {
			s.logger.Warn("ingest.close_failed", zap.String("path", path), zap.Error(err))
		}
	}(f)
	return s.Stage(ctx, filepath.Base(path), f)
}
