package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"go.uber.org/zap"

	apperrors "github.com/acadease/backend/errors"
	"github.com/acadease/backend/internal/domain/entities"
	"github.com/acadease/backend/internal/usecase/task"
)

type stubExtractService struct {
	analysis    *entities.AudioAnalysis
	proposal    *entities.TaskProposal
	proposalErr error
	answer      *entities.ChatAnswer

	chatTasks []entities.Task
}

func (s *stubExtractService) AnalyzeAudio(context.Context, []byte) *entities.AudioAnalysis {
	return s.analysis
}

func (s *stubExtractService) AnalyzeImage(context.Context, string) (*entities.TaskProposal, error) {
	return s.proposal, s.proposalErr
}

func (s *stubExtractService) Chat(_ context.Context, _ string, tasks []entities.Task) *entities.ChatAnswer {
	s.chatTasks = tasks
	return s.answer
}

type stubTaskService struct {
	tasks   []entities.Task
	listErr error
}

func (s *stubTaskService) CreateTask(context.Context, string, task.CreateInput) (*entities.Task, error) {
	return nil, errors.New("not implemented")
}

func (s *stubTaskService) DeleteTask(context.Context, string, string) error {
	return errors.New("not implemented")
}

func (s *stubTaskService) ListTasks(context.Context, string) ([]entities.Task, error) {
	return s.tasks, s.listErr
}

func authHeader() http.Header {
	h := http.Header{}
	h.Set("Authorization", "Bearer test-token")
	return h
}

func TestAnalyzeAudio_PipelineFailureStillOK(t *testing.T) {
	svc := &stubExtractService{
		analysis: &entities.AudioAnalysis{
			Transcription: "Error transcribing audio",
			Proposal:      entities.TaskProposal{Title: "Transcription Error", Priority: entities.PriorityLow},
			ErrorSource:   entities.ErrorSourceSpeechToText,
			ErrorMessage:  "upload rejected",
		},
	}
	h := NewAI(svc, &stubTaskService{}, zap.NewNop())

	c, rec := postJSON(newEcho(), "/v1/ai/audio", `{"audio":"aGVsbG8="}`, authHeader())
	if err := h.AnalyzeAudio(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}

	// Pipeline failures ride inside a 200 response
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body struct {
		Data struct {
			ErrorSource string `json:"error_source"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if body.Data.ErrorSource != "speech_to_text" {
		t.Errorf("unexpected error source %q", body.Data.ErrorSource)
	}
}

func TestAnalyzeAudio_RejectsBadBase64(t *testing.T) {
	h := NewAI(&stubExtractService{}, &stubTaskService{}, zap.NewNop())

	c, rec := postJSON(newEcho(), "/v1/ai/audio", `{"audio":"not base64!!"}`, authHeader())
	if err := h.AnalyzeAudio(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestAnalyzeAudio_RequiresToken(t *testing.T) {
	h := NewAI(&stubExtractService{}, &stubTaskService{}, zap.NewNop())

	c, rec := postJSON(newEcho(), "/v1/ai/audio", `{"audio":"aGVsbG8="}`, nil)
	if err := h.AnalyzeAudio(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestAnalyzeImage_ErrorMapping(t *testing.T) {
	svc := &stubExtractService{proposalErr: apperrors.ErrParseFailed(errors.New("invalid response format from AI"))}
	h := NewAI(svc, &stubTaskService{}, zap.NewNop())

	c, rec := postJSON(newEcho(), "/v1/ai/image", `{"image":"aGVsbG8="}`, authHeader())
	if err := h.AnalyzeImage(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
	var body struct {
		Code int    `json:"code"`
		Info string `json:"info"`
	}
	json.Unmarshal(rec.Body.Bytes(), &body)
	if body.Code != int(apperrors.ErrorCode_AI_PARSE_FAILED) {
		t.Errorf("unexpected code %d", body.Code)
	}
}

func TestChat_ProceedsWithoutTaskContext(t *testing.T) {
	svc := &stubExtractService{answer: &entities.ChatAnswer{Success: true, Text: "hello"}}
	tasks := &stubTaskService{listErr: apperrors.ErrGatewayUnreachable(errors.New("connection refused"))}
	h := NewAI(svc, tasks, zap.NewNop())

	c, rec := postJSON(newEcho(), "/v1/ai/chat", `{"message":"what is due?"}`, authHeader())
	if err := h.Chat(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if svc.chatTasks != nil {
		t.Error("chat should run with empty context when the listing fails")
	}
}

func TestChat_PassesTaskContext(t *testing.T) {
	svc := &stubExtractService{answer: &entities.ChatAnswer{Success: true, Text: "one task"}}
	tasks := &stubTaskService{tasks: []entities.Task{{ID: "t1", Title: "Essay"}}}
	h := NewAI(svc, tasks, zap.NewNop())

	c, _ := postJSON(newEcho(), "/v1/ai/chat", `{"message":"what is due?"}`, authHeader())
	if err := h.Chat(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if len(svc.chatTasks) != 1 || svc.chatTasks[0].ID != "t1" {
		t.Errorf("task context not passed through, got %+v", svc.chatTasks)
	}
}
