package server

import (
	"bytes"
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/joseph-ayodele/studynotes/constants"
	"github.com/joseph-ayodele/studynotes/internal/common"
	"github.com/joseph-ayodele/studynotes/internal/session"
)

// RequestIDMetadataKey is read from incoming gRPC metadata when present.
const RequestIDMetadataKey = "x-request-id"

// StudySessionService exposes a single session over gRPC.
type StudySessionService struct {
	session *session.Session
	logger  *zap.Logger
}

var _ StudySessionServer = (*StudySessionService)(nil)

func NewStudySessionService(sess *session.Session, logger *zap.Logger) *StudySessionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudySessionService{session: sess, logger: logger}
}

func (s *StudySessionService) Upload(ctx context.Context, req *wrapperspb.BytesValue) (*structpb.Struct, error) {
	filename := ""
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if v := md.Get(FilenameMetadataKey); len(v) > 0 {
			filename = strings.TrimSpace(v[0])
		}
	}
	v := common.NewValidator().
		Field(FilenameMetadataKey, filename, common.Required).
		Field("content", int64(len(req.GetValue())), common.SizeBetween(1, 0))
	if err := common.ValidateAndReturnError(v); err != nil {
		return nil, err
	}

	snap, err := s.session.Upload(ctx, filename, bytes.NewReader(req.GetValue()))
	if err != nil {
		s.logger.Warn("grpc.upload.failed", zap.String("filename", filename), zap.Error(err))
		return nil, common.ToStatus(err)
	}
	return toStruct(UploadDTO{Message: session.UploadedMessage(snap.Filename), Session: toSessionDTO(snap)})
}

func (s *StudySessionService) Summarize(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	return s.generate(ctx, constants.KindSummary)
}

func (s *StudySessionService) GenerateQuiz(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	return s.generate(ctx, constants.KindQuiz)
}

func (s *StudySessionService) GenerateFlashcards(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	return s.generate(ctx, constants.KindFlashcards)
}

func (s *StudySessionService) GetSession(context.Context, *emptypb.Empty) (*structpb.Struct, error) {
	return toStruct(toSessionDTO(s.session.Snapshot()))
}

// generate returns refusals as status errors. A failed completion is still a
// result, carrying the fixed failure text.
func (s *StudySessionService) generate(ctx context.Context, kind constants.Kind) (*structpb.Struct, error) {
	res, err := s.session.Generate(ctx, kind)
	if err != nil {
		return nil, common.ToStatus(err)
	}
	return toStruct(toResultDTO(res))
}

// UnaryLogging tags each call with a request ID and logs its outcome.
func UnaryLogging(logger *zap.Logger) grpc.UnaryServerInterceptor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		reqID := ""
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if v := md.Get(RequestIDMetadataKey); len(v) > 0 {
				reqID = v[0]
			}
		}
		if reqID == "" {
			reqID = uuid.NewString()
		}
		ctx = common.WithRequestID(ctx, reqID)

		start := time.Now()
		resp, err := handler(ctx, req)
		fields := []zap.Field{
			zap.String("req_id", reqID),
			zap.String("method", info.FullMethod),
			zap.Int64("elapsed_ms", time.Since(start).Milliseconds()),
		}
		if err != nil {
			logger.Warn("grpc.call.failed", append(fields, zap.Error(err))...)
		} else {
			logger.Info("grpc.call.ok", fields...)
		}
		return resp, err
	}
}
