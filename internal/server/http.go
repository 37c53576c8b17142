package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/joseph-ayodele/studynotes/constants"
	"github.com/joseph-ayodele/studynotes/internal/common"
	"github.com/joseph-ayodele/studynotes/internal/export"
	"github.com/joseph-ayodele/studynotes/internal/repository"
	"github.com/joseph-ayodele/studynotes/internal/session"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type RouterConfig struct {
	Session        *session.Session
	Exporter       *export.Service
	Jobs           repository.JobRepository        // optional, enables /v1/history
	Health         func(ctx context.Context) error // optional
	RequestTimeout time.Duration
	MaxUploadBytes int64
}

type handler struct {
	cfg    RouterConfig
	logger *zap.Logger
}

// NewRouter creates the HTTP API router.
func NewRouter(cfg RouterConfig, logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 2 * time.Minute
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 32 << 20
	}
	if cfg.Exporter == nil {
		cfg.Exporter = export.NewService(logger)
	}
	h := &handler{cfg: cfg, logger: logger}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(cfg.RequestTimeout))

	r.Get("/healthz", h.health)

	r.Route("/v1", func(r chi.Router) {
		r.Route("/session", func(r chi.Router) {
			r.Get("/", h.getSession)
			r.Delete("/", h.resetSession)
			r.Post("/document", h.upload)
			r.Post("/{kind}", h.generate)
			r.Get("/export.xlsx", h.exportXLSX)
		})
		r.Get("/history", h.history)
	})
	return r
}

// requestLogger copies chi's request ID into the context and logs each request.
func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := chimiddleware.GetReqID(r.Context())
			ctx := common.WithRequestID(r.Context(), reqID)
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r.WithContext(ctx))
			logger.Info("http.request",
				zap.String("req_id", reqID),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Int64("elapsed_ms", time.Since(start).Milliseconds()),
			)
		})
	}
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	if h.cfg.Health != nil {
		if err := h.cfg.Health(r.Context()); err != nil {
			h.writeError(w, http.StatusServiceUnavailable, "ledger unavailable", err.Error())
			return
		}
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) getSession(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, toSessionDTO(h.cfg.Session.Snapshot()))
}

func (h *handler) resetSession(w http.ResponseWriter, _ *http.Request) {
	h.cfg.Session.Reset()
	h.writeJSON(w, http.StatusOK, toSessionDTO(h.cfg.Session.Snapshot()))
}

// upload handles POST /v1/session/document with a multipart "file" field.
func (h *handler) upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxUploadBytes+1<<20)
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.writeError(w, http.StatusRequestEntityTooLarge, "file is too large", "")
			return
		}
		h.writeError(w, http.StatusBadRequest, "a multipart field named \"file\" is required", err.Error())
		return
	}
	defer func() {
		if err := file.Close(); err != nil {
			h.logger.Warn("http.upload.close_failed", zap.Error(err))
		}
	}()

	snap, err := h.cfg.Session.Upload(r.Context(), filepath.Base(header.Filename), file)
	if err != nil {
		h.writeJSON(w, httpStatusOf(err), map[string]any{
			"error":   common.MessageOf(err),
			"code":    common.CodeOf(err),
			"session": toSessionDTO(snap),
		})
		return
	}
	h.writeJSON(w, http.StatusOK, UploadDTO{
		Message: session.UploadedMessage(snap.Filename),
		Session: toSessionDTO(snap),
	})
}

// generate handles POST /v1/session/{kind}.
func (h *handler) generate(w http.ResponseWriter, r *http.Request) {
	kind, ok := constants.Canonicalize(chi.URLParam(r, "kind"))
	if !ok {
		h.writeError(w, http.StatusNotFound, "unknown generation kind", chi.URLParam(r, "kind"))
		return
	}
	res, err := h.cfg.Session.Generate(r.Context(), kind)
	if err != nil {
		h.writeJSON(w, httpStatusOf(err), toResultDTO(res))
		return
	}
	h.writeJSON(w, http.StatusOK, toResultDTO(res))
}

func (h *handler) exportXLSX(w http.ResponseWriter, _ *http.Request) {
	snap := h.cfg.Session.Snapshot()
	var buf bytes.Buffer
	if err := h.cfg.Exporter.WriteXLSX(&buf, export.PackFromSnapshot(snap)); err != nil {
		h.logger.Warn("export.xlsx.failed", zap.String("session_id", snap.SessionID.String()), zap.Error(err))
		h.writeError(w, httpStatusOf(err), common.MessageOf(err), "")
		return
	}
	name := "study-pack.xlsx"
	if snap.Filename != "" {
		base := snap.Filename[:len(snap.Filename)-len(filepath.Ext(snap.Filename))]
		name = base + "-study-pack.xlsx"
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logger.Warn("export.xlsx.write_failed", zap.Error(err))
	}
}

func (h *handler) history(w http.ResponseWriter, r *http.Request) {
	if h.cfg.Jobs == nil {
		h.writeError(w, http.StatusNotFound, "run ledger is disabled", "")
		return
	}
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 500 {
			h.writeError(w, http.StatusBadRequest, "limit must be between 1 and 500", "")
			return
		}
		limit = n
	}
	jobs, err := h.cfg.Jobs.Recent(r.Context(), limit)
	if err != nil {
		h.logger.Error("http.history.failed", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "could not read history", "")
		return
	}
	out := make([]JobDTO, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, toJobDTO(j))
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"jobs": out})
}

func httpStatusOf(err error) int {
	switch common.CodeOf(err) {
	case common.CodeInvalidInput, common.CodeEmptyInput:
		return http.StatusBadRequest
	case common.CodeExtraction:
		return http.StatusUnprocessableEntity
	case common.CodePrecondition, common.CodeConfiguration:
		return http.StatusConflict
	case common.CodeCompletion:
		return http.StatusBadGateway
	case common.CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("http.encode_failed", zap.Error(err))
	}
}

func (h *handler) writeError(w http.ResponseWriter, status int, message, detail string) {
	resp := map[string]string{"error": message}
	if detail != "" {
		resp["detail"] = detail
	}
	h.writeJSON(w, status, resp)
}
