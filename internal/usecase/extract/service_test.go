package extract

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	apperrors "github.com/acadease/backend/errors"
	"github.com/acadease/backend/internal/domain/entities"
	pkgai "github.com/acadease/backend/pkg/ai"
	"github.com/acadease/backend/pkg/config"
)

// speechServer stubs the transcription provider: upload, submit and a poll
// that immediately completes with the given text.
func speechServer(t *testing.T, text string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, "/upload"):
			json.NewEncoder(w).Encode(map[string]string{"upload_url": "https://cdn.example.com/audio-1"})
		case r.Method == http.MethodPost:
			json.NewEncoder(w).Encode(map[string]string{"id": "job-1", "status": "queued"})
		default:
			json.NewEncoder(w).Encode(map[string]string{"id": "job-1", "status": "completed", "text": text})
		}
	}))
}

// llmServer stubs the chat-completion endpoint with a fixed assistant reply
// and counts how many requests it received
func llmServer(t *testing.T, reply string, calls *int32, lastBody *string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		if lastBody != nil {
			b, _ := io.ReadAll(r.Body)
			*lastBody = string(b)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": reply}},
			},
		})
	}))
}

func newService(t *testing.T, speechURL, llmURL string) Service {
	t.Helper()
	speech := pkgai.NewSpeechClient(&config.AssemblyAIConfig{
		APIKey:       "test-key",
		BaseURL:      speechURL,
		PollInterval: time.Millisecond,
		MaxPolls:     5,
	})
	llm := pkgai.NewOpenRouterClient(&config.OpenRouterConfig{
		APIKey:  "test-key",
		BaseURL: llmURL,
		Model:   "test-model",
	})
	return NewExtractService(speech, llm, nil, zap.NewNop())
}

func TestAnalyzeAudio_Success(t *testing.T) {
	speech := speechServer(t, "Finish the math homework by Friday")
	defer speech.Close()

	var calls int32
	llm := llmServer(t, `{"title":"Finish math homework","description":"","priorityLevel":"HIGH","deadline":null}`, &calls, nil)
	defer llm.Close()

	svc := newService(t, speech.URL, llm.URL)
	analysis := svc.AnalyzeAudio(context.Background(), []byte("audio-bytes"))

	if analysis.Failed() {
		t.Fatalf("unexpected failure: %s %s", analysis.ErrorSource, analysis.ErrorMessage)
	}
	if analysis.Transcription != "Finish the math homework by Friday" {
		t.Errorf("unexpected transcription %q", analysis.Transcription)
	}
	if analysis.Proposal.Title != "Finish math homework" {
		t.Errorf("unexpected title %q", analysis.Proposal.Title)
	}
	if analysis.Proposal.Description != "No description generated." {
		t.Errorf("expected default description, got %q", analysis.Proposal.Description)
	}
	if analysis.Proposal.Priority != entities.PriorityHigh {
		t.Errorf("expected High priority, got %q", analysis.Proposal.Priority)
	}
}

func TestAnalyzeAudio_TranscriptionFailureSkipsAnalysis(t *testing.T) {
	speech := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"upload rejected"}`, http.StatusInternalServerError)
	}))
	defer speech.Close()

	var calls int32
	llm := llmServer(t, `{}`, &calls, nil)
	defer llm.Close()

	svc := newService(t, speech.URL, llm.URL)
	analysis := svc.AnalyzeAudio(context.Background(), []byte("audio-bytes"))

	if analysis.ErrorSource != entities.ErrorSourceSpeechToText {
		t.Fatalf("expected speech_to_text error source, got %q", analysis.ErrorSource)
	}
	if analysis.Transcription != "Error transcribing audio" {
		t.Errorf("unexpected transcription %q", analysis.Transcription)
	}
	if analysis.Proposal.Title != "Transcription Error" {
		t.Errorf("unexpected title %q", analysis.Proposal.Title)
	}
	if got := atomic.LoadInt32(&calls); got != 0 {
		t.Errorf("analysis must not run after a transcription failure, saw %d calls", got)
	}
}

func TestAnalyzeAudio_EmptyTranscriptUsesPlaceholder(t *testing.T) {
	speech := speechServer(t, "   ")
	defer speech.Close()

	var calls int32
	var body string
	llm := llmServer(t, `{"title":"Untitled","description":"n/a","priorityLevel":"Low","deadline":null}`, &calls, &body)
	defer llm.Close()

	svc := newService(t, speech.URL, llm.URL)
	analysis := svc.AnalyzeAudio(context.Background(), []byte("audio-bytes"))

	if analysis.Transcription != "[Audio transcribed as empty]" {
		t.Errorf("expected placeholder transcription, got %q", analysis.Transcription)
	}
	if !strings.Contains(body, "[Audio transcribed as empty]") {
		t.Error("analysis prompt should carry the placeholder transcription")
	}
}

func TestAnalyzeAudio_AnalysisRequestFailureKeepsTranscription(t *testing.T) {
	speech := speechServer(t, "Call the dentist tomorrow")
	defer speech.Close()

	llm := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"rate limited"}}`, http.StatusTooManyRequests)
	}))
	defer llm.Close()

	svc := newService(t, speech.URL, llm.URL)
	analysis := svc.AnalyzeAudio(context.Background(), []byte("audio-bytes"))

	if analysis.ErrorSource != entities.ErrorSourceAnalysisRequest {
		t.Fatalf("expected analysis_request error source, got %q", analysis.ErrorSource)
	}
	if analysis.Transcription != "Call the dentist tomorrow" {
		t.Errorf("transcription must survive an analysis failure, got %q", analysis.Transcription)
	}
	if analysis.Proposal.Title != "Analysis Error" {
		t.Errorf("unexpected title %q", analysis.Proposal.Title)
	}
}

func TestAnalyzeAudio_UnparseableAnalysis(t *testing.T) {
	speech := speechServer(t, "Submit the lab report")
	defer speech.Close()

	var calls int32
	llm := llmServer(t, "I could not find any task in that.", &calls, nil)
	defer llm.Close()

	svc := newService(t, speech.URL, llm.URL)
	analysis := svc.AnalyzeAudio(context.Background(), []byte("audio-bytes"))

	if analysis.ErrorSource != entities.ErrorSourceAnalysisParse {
		t.Fatalf("expected analysis_parse error source, got %q", analysis.ErrorSource)
	}
	if analysis.Transcription != "Submit the lab report" {
		t.Errorf("transcription must survive a parse failure, got %q", analysis.Transcription)
	}
	if analysis.Proposal.Description != "The system transcribed the audio but failed to analyze the content." {
		t.Errorf("unexpected fallback description %q", analysis.Proposal.Description)
	}
}

func TestAnalyzeImage_Success(t *testing.T) {
	var calls int32
	var body string
	llm := llmServer(t, `{"title":" History essay ","description":"Chapter 4 review","priority":"HIGH","deadline":"2026-09-15"}`, &calls, &body)
	defer llm.Close()

	svc := newService(t, llm.URL, llm.URL)
	proposal, err := svc.AnalyzeImage(context.Background(), "aGVsbG8=")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if proposal.Title != "History essay" {
		t.Errorf("title should be trimmed, got %q", proposal.Title)
	}
	if proposal.Priority != entities.PriorityHigh {
		t.Errorf("expected High priority, got %q", proposal.Priority)
	}
	if proposal.Deadline != "2026-09-15" {
		t.Errorf("unexpected deadline %q", proposal.Deadline)
	}
	if !strings.Contains(body, "data:image/jpeg;base64,aGVsbG8=") {
		t.Error("request should carry the image as a data URL")
	}
}

func TestAnalyzeImage_UpstreamError(t *testing.T) {
	llm := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"model overloaded"}}`, http.StatusServiceUnavailable)
	}))
	defer llm.Close()

	svc := newService(t, llm.URL, llm.URL)
	_, err := svc.AnalyzeImage(context.Background(), "aGVsbG8=")
	if err == nil {
		t.Fatal("expected error")
	}

	var appErr apperrors.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected AppError, got %T", err)
	}
	if appErr.Code != apperrors.ErrorCode_AI_ANALYSIS_FAILED {
		t.Errorf("unexpected code %v", appErr.Code)
	}
	if appErr.Details["upstream_status"] != "503" {
		t.Errorf("expected upstream status detail, got %v", appErr.Details)
	}
}

func TestAnalyzeImage_ParseFailure(t *testing.T) {
	var calls int32
	llm := llmServer(t, `{"title":"","description":"","priority":""}`, &calls, nil)
	defer llm.Close()

	svc := newService(t, llm.URL, llm.URL)
	_, err := svc.AnalyzeImage(context.Background(), "aGVsbG8=")

	var appErr apperrors.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected AppError, got %v", err)
	}
	if appErr.Code != apperrors.ErrorCode_AI_PARSE_FAILED {
		t.Errorf("unexpected code %v", appErr.Code)
	}
}

func TestChat_Success(t *testing.T) {
	var calls int32
	var body string
	llm := llmServer(t, "You have one high priority task due Friday.", &calls, &body)
	defer llm.Close()

	svc := newService(t, llm.URL, llm.URL)
	tasks := []entities.Task{
		{ID: "t1", Title: "Math homework", Priority: entities.PriorityHigh, Deadline: "2026-09-04"},
	}
	answer := svc.Chat(context.Background(), "What is due this week?", tasks)

	if !answer.Success {
		t.Fatal("expected successful answer")
	}
	if answer.Text != "You have one high priority task due Friday." {
		t.Errorf("unexpected answer %q", answer.Text)
	}
	if !strings.Contains(body, "Math homework") {
		t.Error("task context should be embedded in the prompt")
	}
}

func TestChat_NeverFailsOutward(t *testing.T) {
	llm := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer llm.Close()

	svc := newService(t, llm.URL, llm.URL)
	answer := svc.Chat(context.Background(), "hello", nil)

	if answer.Success {
		t.Fatal("expected fallback answer")
	}
	if answer.Text != "I'm sorry, I encountered an error while processing your question. Please try again." {
		t.Errorf("unexpected fallback text %q", answer.Text)
	}
	if answer.Error == "" || !strings.Contains(answer.Error, "502") {
		t.Errorf("expected the upstream failure in the error field, got %q", answer.Error)
	}
}
