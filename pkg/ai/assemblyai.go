package ai

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"time"

	aai "github.com/AssemblyAI/assemblyai-go-sdk"
	backoff "github.com/cenkalti/backoff/v4"

	"github.com/acadease/backend/pkg/config"
	"github.com/acadease/backend/pkg/metrics"
)

// JobStatus is the state of a transcription job
type JobStatus string

const (
	JobStatusQueued     JobStatus = "queued"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusError      JobStatus = "error"
)

// Terminal reports whether a job has left the queued/processing states
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusError
}

// JobResult is one poll of a transcription job
type JobResult struct {
	Status JobStatus
	Text   string
	Reason string
}

// SpeechClient wraps the AssemblyAI SDK for the upload/submit/poll contract
type SpeechClient struct {
	client       *aai.Client
	pollInterval time.Duration
	maxPolls     int
}

// NewSpeechClient creates a speech-to-text client using the provided config.
// If cfg is nil, falls back to environment variables.
func NewSpeechClient(cfg *config.AssemblyAIConfig) *SpeechClient {
	var apiKey, base string
	pollInterval := 3 * time.Second
	maxPolls := 100
	if cfg != nil {
		apiKey = cfg.APIKey
		base = cfg.BaseURL
		if cfg.PollInterval > 0 {
			pollInterval = cfg.PollInterval
		}
		if cfg.MaxPolls > 0 {
			maxPolls = cfg.MaxPolls
		}
	}
	if apiKey == "" {
		apiKey = os.Getenv("ASSEMBLYAI_API_KEY")
	}

	opts := []aai.ClientOption{aai.WithAPIKey(apiKey)}
	if base != "" {
		opts = append(opts, aai.WithBaseURL(base))
	}

	return &SpeechClient{
		client:       aai.NewClientWithOptions(opts...),
		pollInterval: pollInterval,
		maxPolls:     maxPolls,
	}
}

// UploadAudio uploads raw audio bytes and returns the provider upload URL
func (s *SpeechClient) UploadAudio(ctx context.Context, audio []byte) (string, error) {
	uploadURL, err := s.client.Upload(ctx, bytes.NewReader(audio))
	if err != nil {
		return "", fmt.Errorf("failed to upload audio: %w", err)
	}
	if uploadURL == "" {
		return "", fmt.Errorf("provider returned no upload url")
	}
	return uploadURL, nil
}

// RequestTranscription submits a transcription job for an uploaded audio URL
// and returns the job id
func (s *SpeechClient) RequestTranscription(ctx context.Context, uploadURL string) (string, error) {
	transcript, err := s.client.Transcripts.SubmitFromURL(ctx, uploadURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to request transcription: %w", err)
	}
	if transcript.ID == nil || *transcript.ID == "" {
		return "", fmt.Errorf("provider returned no transcript id")
	}
	return *transcript.ID, nil
}

// PollJob fetches the current status of a transcription job
func (s *SpeechClient) PollJob(ctx context.Context, jobID string) (JobResult, error) {
	metrics.TranscriptionPolls.Inc()

	transcript, err := s.client.Transcripts.Get(ctx, jobID)
	if err != nil {
		return JobResult{}, fmt.Errorf("failed to poll transcription job: %w", err)
	}

	res := JobResult{Status: JobStatus(transcript.Status)}
	if transcript.Text != nil {
		res.Text = *transcript.Text
	}
	if transcript.Error != nil {
		res.Reason = *transcript.Error
	}
	return res, nil
}

var errStillProcessing = fmt.Errorf("transcription still in progress")

// WaitForTranscript polls the job on a fixed interval until it reaches a
// terminal state. The loop is bounded by the configured max poll count and
// honors context cancellation between polls.
func (s *SpeechClient) WaitForTranscript(ctx context.Context, jobID string) (string, error) {
	var text string

	poll := func() error {
		res, err := s.PollJob(ctx, jobID)
		if err != nil {
			// Transport failures during polling are not retried; the
			// caller owns the retry affordance.
			return backoff.Permanent(err)
		}
		switch res.Status {
		case JobStatusCompleted:
			text = res.Text
			return nil
		case JobStatusError:
			reason := res.Reason
			if reason == "" {
				reason = "unknown reason"
			}
			return backoff.Permanent(fmt.Errorf("transcription failed: %s", reason))
		default:
			return errStillProcessing
		}
	}

	bo := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(s.pollInterval), uint64(s.maxPolls)),
		ctx,
	)
	if err := backoff.Retry(poll, bo); err != nil {
		if err == errStillProcessing {
			return "", fmt.Errorf("transcription did not complete after %d polls", s.maxPolls)
		}
		return "", err
	}
	return text, nil
}
