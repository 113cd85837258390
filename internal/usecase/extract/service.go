package extract

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	apperrors "github.com/acadease/backend/errors"
	"github.com/acadease/backend/internal/domain/entities"
	"github.com/acadease/backend/internal/infrastructure/storage"
	pkgai "github.com/acadease/backend/pkg/ai"
	"github.com/acadease/backend/pkg/metrics"
)

// emptyTranscriptText substitutes an effectively silent recording so the
// analysis step still has something to work with
const emptyTranscriptText = "[Audio transcribed as empty]"

const (
	defaultTitle       = "Untitled Task"
	defaultDescription = "No description generated."

	transcriptionErrorTitle = "Transcription Error"
	analysisErrorTitle      = "Analysis Error"

	chatFallbackText = "I'm sorry, I encountered an error while processing your question. Please try again."
)

// TranscriptionJob tracks an in-flight speech-to-text job
type TranscriptionJob struct {
	UploadRef string
	JobID     string
}

// Service defines the AI extraction pipeline operations
type Service interface {
	AnalyzeAudio(ctx context.Context, audio []byte) *entities.AudioAnalysis
	AnalyzeImage(ctx context.Context, base64Image string) (*entities.TaskProposal, error)
	Chat(ctx context.Context, message string, tasks []entities.Task) *entities.ChatAnswer
}

type extractService struct {
	speech *pkgai.SpeechClient
	llm    *pkgai.OpenRouterClient
	media  *storage.MediaStore // optional staging store, may be nil
	parser *Parser
	logger *zap.Logger
}

// NewExtractService constructs the extraction pipeline service
func NewExtractService(speech *pkgai.SpeechClient, llm *pkgai.OpenRouterClient, media *storage.MediaStore, logger *zap.Logger) Service {
	return &extractService{
		speech: speech,
		llm:    llm,
		media:  media,
		parser: NewParser(),
		logger: logger,
	}
}

// AnalyzeAudio runs the two-stage audio pipeline: transcription first, then
// task extraction over the transcribed text. The result always carries an
// explicit error source instead of a Go error; a transcription failure
// aborts before any analysis call, while an analysis failure keeps the
// transcription that was already produced.
func (s *extractService) AnalyzeAudio(ctx context.Context, audio []byte) *entities.AudioAnalysis {
	transcription, sttErr := s.transcribe(ctx, audio)
	if sttErr != nil {
		s.logger.Warn("speech-to-text failed", zap.Error(sttErr))
		metrics.Extractions.WithLabelValues("audio", "stt_error").Inc()
		return &entities.AudioAnalysis{
			Transcription: "Error transcribing audio",
			Proposal: entities.TaskProposal{
				Title:       transcriptionErrorTitle,
				Description: sttErr.Error(),
				Priority:    entities.PriorityLow,
			},
			ErrorSource:  entities.ErrorSourceSpeechToText,
			ErrorMessage: sttErr.Error(),
		}
	}

	if strings.TrimSpace(transcription) == "" {
		s.logger.Warn("transcription result is empty")
		transcription = emptyTranscriptText
	}

	content, err := s.llm.Complete(ctx, pkgai.ChatRequest{
		Messages: []pkgai.Message{
			{Role: "system", Content: audioSystemPrompt},
			{Role: "user", Content: audioUserPrompt(transcription)},
		},
		MaxTokens:      500,
		Temperature:    0.3,
		ResponseFormat: &pkgai.ResponseFormat{Type: "json_object"},
	})
	if err != nil {
		s.logger.Warn("audio analysis request failed", zap.Error(err))
		metrics.Extractions.WithLabelValues("audio", "analysis_error").Inc()
		return &entities.AudioAnalysis{
			Transcription: transcription,
			Proposal: entities.TaskProposal{
				Title:       analysisErrorTitle,
				Description: err.Error(),
				Priority:    entities.PriorityLow,
			},
			ErrorSource:  entities.ErrorSourceAnalysisRequest,
			ErrorMessage: err.Error(),
		}
	}

	resp, err := s.parser.ParseAudioResponse(content)
	if err != nil {
		s.logger.Warn("audio analysis response unparseable", zap.Error(err))
		metrics.Extractions.WithLabelValues("audio", "parse_error").Inc()
		return &entities.AudioAnalysis{
			Transcription: transcription,
			Proposal: entities.TaskProposal{
				Title:       analysisErrorTitle,
				Description: "The system transcribed the audio but failed to analyze the content.",
				Priority:    entities.PriorityLow,
			},
			ErrorSource:  entities.ErrorSourceAnalysisParse,
			ErrorMessage: err.Error(),
		}
	}

	metrics.Extractions.WithLabelValues("audio", "ok").Inc()
	return &entities.AudioAnalysis{
		Transcription: transcription,
		Proposal:      proposalFromAudio(resp),
	}
}

// AnalyzeImage extracts task details from a base64-encoded image in a
// single model call
func (s *extractService) AnalyzeImage(ctx context.Context, base64Image string) (*entities.TaskProposal, error) {
	content, err := s.llm.Complete(ctx, pkgai.ChatRequest{
		Messages: []pkgai.Message{
			{Role: "system", Content: imageSystemPrompt},
			{Role: "user", Content: []interface{}{
				pkgai.NewTextPart(imageUserText),
				pkgai.NewImagePart(base64Image),
			}},
		},
		MaxTokens:      1000,
		Temperature:    0.1,
		ResponseFormat: &pkgai.ResponseFormat{Type: "json_object"},
	})
	if err != nil {
		metrics.Extractions.WithLabelValues("image", "analysis_error").Inc()
		var ue *pkgai.UpstreamError
		if errors.As(err, &ue) {
			return nil, apperrors.ErrAnalysisFailed(err).
				WithDetail("upstream_status", fmt.Sprintf("%d", ue.Status))
		}
		return nil, apperrors.ErrAnalysisFailed(err)
	}

	resp, err := s.parser.ParseImageResponse(content)
	if err != nil {
		s.logger.Warn("image response unparseable", zap.Error(err))
		metrics.Extractions.WithLabelValues("image", "parse_error").Inc()
		return nil, apperrors.ErrParseFailed(err)
	}

	metrics.Extractions.WithLabelValues("image", "ok").Inc()
	proposal := &entities.TaskProposal{
		Title:       strings.TrimSpace(resp.Title),
		Description: strings.TrimSpace(resp.Description),
		Priority:    entities.NormalizePriority(resp.Priority),
	}
	if resp.Deadline != nil {
		proposal.Deadline = *resp.Deadline
	}
	return proposal, nil
}

// Chat answers a free-form question grounded in the caller's current task
// list. Chat never fails outward; an upstream error becomes an apologetic
// fallback answer with Success set to false.
func (s *extractService) Chat(ctx context.Context, message string, tasks []entities.Task) *entities.ChatAnswer {
	content, err := s.llm.Complete(ctx, pkgai.ChatRequest{
		Messages: []pkgai.Message{
			{Role: "system", Content: chatSystemPrompt(tasks)},
			{Role: "user", Content: message},
		},
		MaxTokens:   800,
		Temperature: 0.7,
	})
	if err != nil {
		s.logger.Warn("chat request failed", zap.Error(err))
		metrics.ChatRequests.WithLabelValues("error").Inc()
		return &entities.ChatAnswer{
			Success: false,
			Text:    chatFallbackText,
			Error:   err.Error(),
		}
	}

	metrics.ChatRequests.WithLabelValues("ok").Inc()
	return &entities.ChatAnswer{
		Success: true,
		Text:    content,
	}
}

// transcribe uploads the audio, submits the job and waits for its terminal
// state. When a staging store is configured the payload is also staged
// there so a failed run can be replayed; staged copies are cleaned up on
// success and swept by TTL otherwise.
func (s *extractService) transcribe(ctx context.Context, audio []byte) (string, error) {
	if len(audio) == 0 {
		return "", fmt.Errorf("audio payload is empty")
	}

	var stagedKey string
	if s.media != nil {
		key, err := s.media.StageMedia(ctx, audio, "application/octet-stream")
		if err != nil {
			s.logger.Warn("failed to stage audio", zap.Error(err))
		} else {
			stagedKey = key
		}
	}

	uploadURL, err := s.speech.UploadAudio(ctx, audio)
	if err != nil {
		return "", err
	}

	jobID, err := s.speech.RequestTranscription(ctx, uploadURL)
	if err != nil {
		return "", err
	}

	job := TranscriptionJob{UploadRef: uploadURL, JobID: jobID}
	s.logger.Info("transcription job submitted", zap.String("job_id", job.JobID))

	text, err := s.speech.WaitForTranscript(ctx, job.JobID)
	if err != nil {
		return "", err
	}

	if stagedKey != "" {
		if rmErr := s.media.Remove(ctx, stagedKey); rmErr != nil {
			s.logger.Warn("failed to remove staged audio", zap.String("key", stagedKey), zap.Error(rmErr))
		}
	}

	return text, nil
}

// proposalFromAudio applies the pipeline defaults for fields the model left
// empty and collapses priority onto the two supported levels
func proposalFromAudio(resp *audioResponse) entities.TaskProposal {
	proposal := entities.TaskProposal{
		Title:       resp.Title,
		Description: resp.Description,
		Priority:    entities.NormalizePriority(resp.PriorityLevel),
	}
	if proposal.Title == "" {
		proposal.Title = defaultTitle
	}
	if proposal.Description == "" {
		proposal.Description = defaultDescription
	}
	if resp.Deadline != nil {
		proposal.Deadline = *resp.Deadline
	}
	return proposal
}
