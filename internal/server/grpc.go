package server

import (
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// uploadFrameOverhead leaves room for the message envelope around an upload body.
const uploadFrameOverhead = 64 << 10

// NewGRPCServer builds a gRPC server with the study session, health and
// reflection services registered. maxUploadBytes raises the receive limit so
// uploads up to the configured size fit in one message; 0 keeps the default.
func NewGRPCServer(svc *StudySessionService, logger *zap.Logger, maxUploadBytes int64) (*grpc.Server, *health.Server) {
	if logger == nil {
		logger = zap.NewNop()
	}
	opts := []grpc.ServerOption{grpc.ChainUnaryInterceptor(UnaryLogging(logger))}
	if maxUploadBytes > 0 {
		opts = append(opts, grpc.MaxRecvMsgSize(int(maxUploadBytes)+uploadFrameOverhead))
	}
	gs := grpc.NewServer(opts...)

	hs := health.NewServer()
	healthpb.RegisterHealthServer(gs, hs)
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(StudySessionServiceName, healthpb.HealthCheckResponse_SERVING)

	RegisterStudySessionServer(gs, svc)
	// Reflection for grpcurl
	if err := registerSessionDescriptor(); err != nil {
		logger.Warn("grpc.descriptor_failed", zap.Error(err))
	}
	reflection.Register(gs)
	return gs, hs
}
