package server

import (
	"sync"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/descriptorpb"
)

// sessionProtoFile is the descriptor name reported in StudySessionServiceDesc.Metadata.
const sessionProtoFile = "studynotes/v1/session.proto"

var (
	registerOnce sync.Once
	registerErr  error
)

// registerSessionDescriptor adds the StudySession file descriptor to the
// global registry so reflection clients can describe the service.
func registerSessionDescriptor() error {
	registerOnce.Do(func() {
		if _, err := protoregistry.GlobalFiles.FindFileByPath(sessionProtoFile); err == nil {
			return
		}
		fd, err := protodesc.NewFile(sessionFileProto(), protoregistry.GlobalFiles)
		if err != nil {
			registerErr = err
			return
		}
		registerErr = protoregistry.GlobalFiles.RegisterFile(fd)
	})
	return registerErr
}

func sessionFileProto() *descriptorpb.FileDescriptorProto {
	method := func(name, in string) *descriptorpb.MethodDescriptorProto {
		return &descriptorpb.MethodDescriptorProto{
			Name:       proto.String(name),
			InputType:  proto.String(in),
			OutputType: proto.String(".google.protobuf.Struct"),
		}
	}
	const empty = ".google.protobuf.Empty"
	return &descriptorpb.FileDescriptorProto{
		Name:    proto.String(sessionProtoFile),
		Package: proto.String("studynotes.v1"),
		Syntax:  proto.String("proto3"),
		Dependency: []string{
			"google/protobuf/empty.proto",
			"google/protobuf/struct.proto",
			"google/protobuf/wrappers.proto",
		},
		Options: &descriptorpb.FileOptions{
			GoPackage: proto.String("github.com/joseph-ayodele/studynotes/internal/server"),
		},
		Service: []*descriptorpb.ServiceDescriptorProto{{
			Name: proto.String("StudySession"),
			Method: []*descriptorpb.MethodDescriptorProto{
				method("Upload", ".google.protobuf.BytesValue"),
				method("Summarize", empty),
				method("GenerateQuiz", empty),
				method("GenerateFlashcards", empty),
				method("GetSession", empty),
			},
		}},
	}
}
