package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/acadease/backend/pkg/config"
)

// OpenRouterClient is a minimal client for OpenRouter chat-completion calls
type OpenRouterClient struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

// NewOpenRouterClient creates an OpenRouter client using values from the
// provided config. Pass a nil config to fall back to environment variables.
func NewOpenRouterClient(cfg *config.OpenRouterConfig) *OpenRouterClient {
	var apiKey, base, model string
	timeout := 30 * time.Second
	if cfg != nil {
		apiKey = cfg.APIKey
		base = cfg.BaseURL
		model = cfg.Model
		if cfg.Timeout > 0 {
			timeout = cfg.Timeout
		}
	}
	if apiKey == "" {
		apiKey = os.Getenv("OPENROUTER_API_KEY")
	}
	if base == "" {
		base = os.Getenv("OPENROUTER_API_URL")
		if base == "" {
			base = "https://openrouter.ai/api/v1"
		}
	}
	if model == "" {
		model = "meta-llama/llama-4-maverick:free"
	}

	return &OpenRouterClient{
		apiKey:  apiKey,
		baseURL: base,
		model:   model,
		client:  &http.Client{Timeout: timeout},
	}
}

// Message is one chat turn. Content is either a plain string or a slice of
// content parts for multimodal requests.
type Message struct {
	Role    string      `json:"role"`
	Content interface{} `json:"content"`
}

// TextPart is a text segment of a multimodal user message
type TextPart struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// ImagePart is an image segment of a multimodal user message
type ImagePart struct {
	Type     string   `json:"type"`
	ImageURL ImageURL `json:"image_url"`
}

// ImageURL carries the image payload as a data or remote URL
type ImageURL struct {
	URL string `json:"url"`
}

// NewTextPart builds a text content part
func NewTextPart(text string) TextPart {
	return TextPart{Type: "text", Text: text}
}

// NewImagePart builds an image content part from a base64-encoded JPEG
func NewImagePart(base64Image string) ImagePart {
	return ImagePart{
		Type:     "image_url",
		ImageURL: ImageURL{URL: "data:image/jpeg;base64," + base64Image},
	}
}

// ChatRequest is the shape for chat completion requests
type ChatRequest struct {
	Model          string          `json:"model,omitempty"`
	Messages       []Message       `json:"messages"`
	Temperature    float64         `json:"temperature,omitempty"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`
}

// ResponseFormat hints the provider at the expected output shape
type ResponseFormat struct {
	Type string `json:"type"`
}

// ChatResponse is a minimal response shape
type ChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type upstreamErrorBody struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
	Message string `json:"message"`
}

// UpstreamError carries the provider's HTTP status and error message
type UpstreamError struct {
	Status  int
	Message string
}

func (e *UpstreamError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("openrouter returned status %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("openrouter returned status %d", e.Status)
}

// Complete sends a chat completion request and returns the assistant content
func (o *OpenRouterClient) Complete(ctx context.Context, req ChatRequest) (string, error) {
	if req.Model == "" {
		req.Model = o.model
	}

	b, err := json.Marshal(req)
	if err != nil {
		return "", err
	}

	endpoint := o.baseURL + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Authorization", "Bearer "+o.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("HTTP-Referer", "https://acadease.fly.dev")
	httpReq.Header.Set("X-Title", "AcadEase")

	resp, err := o.client.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		var eb upstreamErrorBody
		msg := ""
		if json.Unmarshal(body, &eb) == nil {
			msg = eb.Error.Message
			if msg == "" {
				msg = eb.Message
			}
		}
		return "", &UpstreamError{Status: resp.StatusCode, Message: msg}
	}

	var cr ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return "", err
	}
	if len(cr.Choices) == 0 {
		return "", fmt.Errorf("empty response from openrouter")
	}
	return cr.Choices[0].Message.Content, nil
}
