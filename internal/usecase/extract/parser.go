package extract

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Parser handles parsing and validation of model responses
type Parser struct{}

// NewParser creates a new Parser instance
func NewParser() *Parser {
	return &Parser{}
}

// audioResponse mirrors the JSON shape the audio analysis prompt requests
type audioResponse struct {
	Title         string  `json:"title"`
	Description   string  `json:"description"`
	PriorityLevel string  `json:"priorityLevel"`
	Deadline      *string `json:"deadline"`
}

// imageResponse mirrors the JSON shape the image scan prompt requests
type imageResponse struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Priority    string  `json:"priority"`
	Deadline    *string `json:"deadline"`
}

// ParseAudioResponse parses the audio analysis model output
func (p *Parser) ParseAudioResponse(content string) (*audioResponse, error) {
	cleaned := extractJSON(content)

	var resp audioResponse
	if err := json.Unmarshal([]byte(cleaned), &resp); err != nil {
		return nil, fmt.Errorf("failed to parse analysis response: %w", err)
	}
	return &resp, nil
}

// ParseImageResponse parses the image scan model output and checks the
// fields the prompt marks as required
func (p *Parser) ParseImageResponse(content string) (*imageResponse, error) {
	cleaned := extractJSON(content)

	var resp imageResponse
	if err := json.Unmarshal([]byte(cleaned), &resp); err != nil {
		return nil, fmt.Errorf("failed to parse image response: %w", err)
	}

	if resp.Title == "" || resp.Description == "" || resp.Priority == "" {
		return nil, fmt.Errorf("invalid response format from AI")
	}
	return &resp, nil
}

// extractJSON pulls the JSON object out of a model reply that may be wrapped
// in markdown code fences or surrounded by prose. Takes the substring from
// the first '{' to the last '}'.
func extractJSON(content string) string {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start >= 0 && end > start {
		content = content[start : end+1]
	}

	content = strings.ReplaceAll(content, "```json", "")
	content = strings.ReplaceAll(content, "```", "")
	return strings.TrimSpace(content)
}
