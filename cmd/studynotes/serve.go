package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/joseph-ayodele/studynotes/internal/server"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve one study session over gRPC and HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer a.close()
			if err := a.ping(ctx); err != nil {
				logger.Error("ledger.ping_failed", zap.Error(err))
				return err
			}

			sess := a.newSession()
			defer func() {
				if err := sess.Close(); err != nil {
					logger.Warn("session.close_failed", zap.Error(err))
				}
			}()

			grpcServer, healthServer := server.NewGRPCServer(server.NewStudySessionService(sess, logger), logger, cfg.Upload.MaxBytes)
			lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
			if err != nil {
				logger.Error("grpc.listen_failed", zap.String("addr", cfg.Server.GRPCAddr), zap.Error(err))
				return err
			}

			httpServer := &http.Server{
				Addr: cfg.Server.HTTPAddr,
				Handler: server.NewRouter(server.RouterConfig{
					Session:        sess,
					Exporter:       a.exporter,
					Jobs:           a.ledger.JobsRepo(),
					Health:         a.ping,
					RequestTimeout: cfg.Server.RequestTimeout,
					MaxUploadBytes: cfg.Upload.MaxBytes,
				}, logger),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errc := make(chan error, 2)
			go func() {
				logger.Info("grpc.serving", zap.String("addr", cfg.Server.GRPCAddr))
				errc <- grpcServer.Serve(lis)
			}()
			go func() {
				logger.Info("http.serving", zap.String("addr", cfg.Server.HTTPAddr))
				if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errc <- err
				}
			}()

			var serveErr error
			select {
			case <-ctx.Done():
				logger.Info("server.shutting_down")
			case serveErr = <-errc:
				logger.Error("server.failed", zap.Error(serveErr))
			}

			healthServer.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer cancel()
			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				logger.Warn("http.shutdown_failed", zap.Error(err))
			}
			grpcServer.GracefulStop()
			logger.Info("server.stopped")
			return serveErr
		},
	}
}
