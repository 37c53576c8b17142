package server

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	StudySessionServiceName = "studynotes.v1.StudySession"

	// FilenameMetadataKey carries the original file name of an Upload call.
	FilenameMetadataKey = "x-filename"
)

const (
	methodUpload             = "/" + StudySessionServiceName + "/Upload"
	methodSummarize          = "/" + StudySessionServiceName + "/Summarize"
	methodGenerateQuiz       = "/" + StudySessionServiceName + "/GenerateQuiz"
	methodGenerateFlashcards = "/" + StudySessionServiceName + "/GenerateFlashcards"
	methodGetSession         = "/" + StudySessionServiceName + "/GetSession"
)

// StudySessionServer is the server API for the study session service.
// Messages are well-known types; responses are Structs with the same shape as the HTTP API.
type StudySessionServer interface {
	Upload(context.Context, *wrapperspb.BytesValue) (*structpb.Struct, error)
	Summarize(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	GenerateQuiz(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	GenerateFlashcards(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	GetSession(context.Context, *emptypb.Empty) (*structpb.Struct, error)
}

func RegisterStudySessionServer(s grpc.ServiceRegistrar, srv StudySessionServer) {
	s.RegisterService(&StudySessionServiceDesc, srv)
}

func emptyHandler(
	fullMethod string,
	call func(StudySessionServer, context.Context, *emptypb.Empty) (*structpb.Struct, error),
) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(emptypb.Empty)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(StudySessionServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
			return call(srv.(StudySessionServer), ctx, req.(*emptypb.Empty))
		})
	}
}

func uploadHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.BytesValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(StudySessionServer).Upload(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodUpload}
	return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
		return srv.(StudySessionServer).Upload(ctx, req.(*wrapperspb.BytesValue))
	})
}

var StudySessionServiceDesc = grpc.ServiceDesc{
	ServiceName: StudySessionServiceName,
	HandlerType: (*StudySessionServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Upload", Handler: uploadHandler},
		{MethodName: "Summarize", Handler: emptyHandler(methodSummarize, StudySessionServer.Summarize)},
		{MethodName: "GenerateQuiz", Handler: emptyHandler(methodGenerateQuiz, StudySessionServer.GenerateQuiz)},
		{MethodName: "GenerateFlashcards", Handler: emptyHandler(methodGenerateFlashcards, StudySessionServer.GenerateFlashcards)},
		{MethodName: "GetSession", Handler: emptyHandler(methodGetSession, StudySessionServer.GetSession)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: sessionProtoFile,
}

// StudySessionClient calls the study session service.
type StudySessionClient struct {
	cc grpc.ClientConnInterface
}

func NewStudySessionClient(cc grpc.ClientConnInterface) *StudySessionClient {
	return &StudySessionClient{cc: cc}
}

func (c *StudySessionClient) Upload(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, methodUpload, in, opts...)
}

func (c *StudySessionClient) Summarize(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, methodSummarize, &emptypb.Empty{}, opts...)
}

func (c *StudySessionClient) GenerateQuiz(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, methodGenerateQuiz, &emptypb.Empty{}, opts...)
}

func (c *StudySessionClient) GenerateFlashcards(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, methodGenerateFlashcards, &emptypb.Empty{}, opts...)
}

func (c *StudySessionClient) GetSession(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, methodGetSession, &emptypb.Empty{}, opts...)
}

func (c *StudySessionClient) invoke(ctx context.Context, method string, in any, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
