package ai

// AnalyzeAudioRequest carries a base64-encoded audio recording
type AnalyzeAudioRequest struct {
	Audio string `json:"audio" validate:"required"`
}

// AnalyzeImageRequest carries a base64-encoded JPEG image
type AnalyzeImageRequest struct {
	Image string `json:"image" validate:"required"`
}

// ChatRequest carries a free-form user message for the task assistant
type ChatRequest struct {
	Message string `json:"message" validate:"required,max=4000"`
}
