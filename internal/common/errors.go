package common

import (
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Error codes carried by AppError.
const (
	CodeExtraction    = "EXTRACTION_ERROR"
	CodeCompletion    = "COMPLETION_ERROR"
	CodeConfiguration = "CONFIG_ERROR"
	CodeEmptyInput    = "EMPTY_INPUT"
	CodePrecondition  = "PRECONDITION_FAILED"
	CodeInvalidInput  = "INVALID_INPUT"
	CodeNotFound      = "NOT_FOUND"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is lets errors.Is match an AppError against the sentinel for its code.
func (e *AppError) Is(target error) bool {
	s, ok := codeSentinels[e.Code]
	return ok && s == target
}

// Common application errors
var (
	ErrExtraction    = errors.New("text extraction failed")
	ErrCompletion    = errors.New("completion failed")
	ErrConfiguration = errors.New("configuration error")
	ErrEmptyInput    = errors.New("empty input")
	ErrPrecondition  = errors.New("precondition failed")
	ErrInvalidInput  = errors.New("invalid input")
	ErrNotFound      = errors.New("resource not found")
	ErrMissingAPIKey = errors.New("api key not configured")
)

var codeSentinels = map[string]error{
	CodeExtraction:    ErrExtraction,
	CodeCompletion:    ErrCompletion,
	CodeConfiguration: ErrConfiguration,
	CodeEmptyInput:    ErrEmptyInput,
	CodePrecondition:  ErrPrecondition,
	CodeInvalidInput:  ErrInvalidInput,
	CodeNotFound:      ErrNotFound,
}

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func NewExtractionError(message string, cause error) *AppError {
	return NewAppError(CodeExtraction, message, cause)
}

func NewCompletionError(message string, cause error) *AppError {
	return NewAppError(CodeCompletion, message, cause)
}

func NewConfigurationError(message string, cause error) *AppError {
	return NewAppError(CodeConfiguration, message, cause)
}

func NewPreconditionError(message string) *AppError {
	return NewAppError(CodePrecondition, message, nil)
}

func NewInvalidInputError(message string, cause error) *AppError {
	return NewAppError(CodeInvalidInput, message, cause)
}

// CodeOf returns the AppError code found in err's chain, or "" if there is none.
func CodeOf(err error) string {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return ""
}

// MessageOf returns the user-facing message of the first AppError in err's chain.
func MessageOf(err error) string {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

// gRPC error helpers
func InvalidArgumentError(message string) error {
	return status.Error(codes.InvalidArgument, message)
}

// ToStatus maps an error to a gRPC status error by its AppError code.
func ToStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok && CodeOf(err) == "" {
		return err
	}
	msg := MessageOf(err)
	switch CodeOf(err) {
	case CodeInvalidInput, CodeEmptyInput:
		return status.Error(codes.InvalidArgument, msg)
	case CodeExtraction:
		return status.Error(codes.InvalidArgument, msg)
	case CodePrecondition:
		return status.Error(codes.FailedPrecondition, msg)
	case CodeCompletion:
		return status.Error(codes.Unavailable, msg)
	case CodeConfiguration:
		return status.Error(codes.FailedPrecondition, msg)
	case CodeNotFound:
		return status.Error(codes.NotFound, msg)
	default:
		return status.Error(codes.Internal, msg)
	}
}
