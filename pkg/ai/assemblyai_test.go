package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/acadease/backend/pkg/config"
)

func newSpeechClient(url string, maxPolls int) *SpeechClient {
	return NewSpeechClient(&config.AssemblyAIConfig{
		APIKey:       "test-key",
		BaseURL:      url,
		PollInterval: time.Millisecond,
		MaxPolls:     maxPolls,
	})
}

func TestUploadAudio_RejectsEmptyUploadURL(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"upload_url": ""})
	}))
	defer ts.Close()

	_, err := newSpeechClient(ts.URL, 5).UploadAudio(context.Background(), []byte("audio"))
	if err == nil {
		t.Fatal("expected an error for a blank upload url")
	}
	if !strings.Contains(err.Error(), "no upload url") {
		t.Errorf("unexpected error %v", err)
	}
}

func TestWaitForTranscript_Completed(t *testing.T) {
	var polls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if atomic.AddInt32(&polls, 1) < 3 {
			json.NewEncoder(w).Encode(map[string]string{"id": "job-1", "status": "processing"})
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"id": "job-1", "status": "completed", "text": "Read chapter four"})
	}))
	defer ts.Close()

	text, err := newSpeechClient(ts.URL, 10).WaitForTranscript(context.Background(), "job-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "Read chapter four" {
		t.Errorf("unexpected transcript %q", text)
	}
	if atomic.LoadInt32(&polls) != 3 {
		t.Errorf("expected 3 polls, got %d", polls)
	}
}

func TestWaitForTranscript_ErrorStatusCarriesProviderReason(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"id":     "job-1",
			"status": "error",
			"error":  "Download error: unable to fetch audio",
		})
	}))
	defer ts.Close()

	_, err := newSpeechClient(ts.URL, 10).WaitForTranscript(context.Background(), "job-1")
	if err == nil {
		t.Fatal("expected an error for a failed job")
	}
	if !strings.Contains(err.Error(), "Download error: unable to fetch audio") {
		t.Errorf("provider reason missing from error %v", err)
	}
}

func TestWaitForTranscript_ErrorStatusWithoutReason(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"id": "job-1", "status": "error"})
	}))
	defer ts.Close()

	_, err := newSpeechClient(ts.URL, 10).WaitForTranscript(context.Background(), "job-1")
	if err == nil || !strings.Contains(err.Error(), "unknown reason") {
		t.Errorf("expected the unknown-reason fallback, got %v", err)
	}
}

func TestWaitForTranscript_BoundedPolling(t *testing.T) {
	var polls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		atomic.AddInt32(&polls, 1)
		json.NewEncoder(w).Encode(map[string]string{"id": "job-1", "status": "processing"})
	}))
	defer ts.Close()

	_, err := newSpeechClient(ts.URL, 3).WaitForTranscript(context.Background(), "job-1")
	if err == nil {
		t.Fatal("expected an error once the poll budget is spent")
	}
	if !strings.Contains(err.Error(), "did not complete after 3 polls") {
		t.Errorf("unexpected error %v", err)
	}
	if atomic.LoadInt32(&polls) > 4 {
		t.Errorf("poll loop ran %d times past its bound", polls)
	}
}
