package server

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/joseph-ayodele/studynotes/internal/common"
	"github.com/joseph-ayodele/studynotes/internal/entity"
	"github.com/joseph-ayodele/studynotes/internal/pipeline"
	"github.com/joseph-ayodele/studynotes/internal/session"
)

// ResultDTO is one generated artifact as sent to clients.
type ResultDTO struct {
	Kind   string `json:"kind"`
	Status string `json:"status"`
	Text   string `json:"text"`
	Code   string `json:"code,omitempty"`
	JobID  string `json:"jobId,omitempty"`
}

// SessionDTO mirrors session.Snapshot.
type SessionDTO struct {
	SessionID             string     `json:"sessionId"`
	State                 string     `json:"state"`
	DocumentID            string     `json:"documentId,omitempty"`
	Filename              string     `json:"filename,omitempty"`
	SizeBytes             int64      `json:"sizeBytes,omitempty"`
	Pages                 int        `json:"pages,omitempty"`
	Chars                 int        `json:"chars,omitempty"`
	Preview               string     `json:"preview,omitempty"`
	Warnings              []string   `json:"warnings,omitempty"`
	ExtractionError       string     `json:"extractionError,omitempty"`
	Summary               *ResultDTO `json:"summary,omitempty"`
	Quiz                  *ResultDTO `json:"quiz,omitempty"`
	Flashcards            *ResultDTO `json:"flashcards,omitempty"`
	CanGenerateFlashcards bool       `json:"canGenerateFlashcards"`
	FlashcardsHint        string     `json:"flashcardsHint,omitempty"`
	ConfigWarnings        []string   `json:"configWarnings,omitempty"`
	UpdatedAt             string     `json:"updatedAt"`
}

// UploadDTO is returned after an upload, successful or not.
type UploadDTO struct {
	Message string     `json:"message"`
	Session SessionDTO `json:"session"`
}

// JobDTO is one ledger row.
type JobDTO struct {
	ID          string  `json:"id"`
	SessionID   string  `json:"sessionId"`
	DocumentID  string  `json:"documentId"`
	Filename    string  `json:"filename,omitempty"`
	Stage       string  `json:"stage"`
	Kind        string  `json:"kind,omitempty"`
	Status      string  `json:"status"`
	Model       string  `json:"model,omitempty"`
	InputChars  int     `json:"inputChars"`
	OutputChars int     `json:"outputChars"`
	Error       string  `json:"error,omitempty"`
	StartedAt   string  `json:"startedAt"`
	ElapsedMs   int64   `json:"elapsedMs"`
	Temperature float64 `json:"temperature,omitempty"`
}

func toResultDTO(r pipeline.Result) ResultDTO {
	out := ResultDTO{
		Kind:   string(r.Kind),
		Status: string(r.Status),
		Text:   r.Text,
		Code:   common.CodeOf(r.Err),
	}
	if r.JobID != uuid.Nil {
		out.JobID = r.JobID.String()
	}
	return out
}

func toResultPtr(r *pipeline.Result) *ResultDTO {
	if r == nil {
		return nil
	}
	dto := toResultDTO(*r)
	return &dto
}

func toSessionDTO(s session.Snapshot) SessionDTO {
	out := SessionDTO{
		SessionID:             s.SessionID.String(),
		State:                 string(s.State),
		Filename:              s.Filename,
		SizeBytes:             s.SizeBytes,
		Pages:                 s.Pages,
		Chars:                 s.Chars,
		Preview:               s.Preview,
		Warnings:              s.Warnings,
		ExtractionError:       s.ExtractionError,
		Summary:               toResultPtr(s.Summary),
		Quiz:                  toResultPtr(s.Quiz),
		Flashcards:            toResultPtr(s.Flashcards),
		CanGenerateFlashcards: s.CanGenerateFlashcards,
		ConfigWarnings:        s.ConfigWarnings,
		UpdatedAt:             s.UpdatedAt.Format(time.RFC3339Nano),
	}
	if s.DocumentID != uuid.Nil {
		out.DocumentID = s.DocumentID.String()
	}
	if s.Chars > 0 && !s.CanGenerateFlashcards {
		out.FlashcardsHint = pipeline.MsgSummaryRequired
	}
	return out
}

func toJobDTO(j *entity.GenerationJob) JobDTO {
	return JobDTO{
		ID:          j.ID.String(),
		SessionID:   j.SessionID.String(),
		DocumentID:  j.DocumentID.String(),
		Filename:    j.Filename,
		Stage:       j.Stage,
		Kind:        j.Kind,
		Status:      j.Status,
		Model:       j.Model,
		InputChars:  j.InputChars,
		OutputChars: j.OutputChars,
		Error:       j.ErrorMessage,
		StartedAt:   j.StartedAt.Format(time.RFC3339Nano),
		ElapsedMs:   j.Elapsed().Milliseconds(),
		Temperature: j.Temperature,
	}
}

// toStruct converts a DTO into a protobuf Struct through its JSON form, so
// gRPC and HTTP clients see the same field names.
func toStruct(v any) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(b, out); err != nil {
		return nil, err
	}
	return out, nil
}
