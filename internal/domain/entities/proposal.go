package entities

// ErrorSource identifies which pipeline stage failed during audio analysis.
// Speech-to-text failures abort the run before any language-model call;
// analysis failures still carry the transcription that was produced.
type ErrorSource string

const (
	ErrorSourceNone            ErrorSource = ""
	ErrorSourceSpeechToText    ErrorSource = "speech_to_text"
	ErrorSourceAnalysisRequest ErrorSource = "analysis_request"
	ErrorSourceAnalysisParse   ErrorSource = "analysis_parse"
)

// TaskProposal is a draft task extracted by the language model. It is not
// persisted; the caller reviews it and creates a real task from it.
type TaskProposal struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Priority    Priority `json:"priority"`
	Deadline    string   `json:"deadline,omitempty"`
}

// AudioAnalysis is the combined output of the audio pipeline. Transcription
// is filled as soon as speech-to-text succeeds and survives a later
// extraction failure.
type AudioAnalysis struct {
	Transcription string       `json:"transcription"`
	Proposal      TaskProposal `json:"proposal"`
	ErrorSource   ErrorSource  `json:"error_source,omitempty"`
	ErrorMessage  string       `json:"error_message,omitempty"`
}

// Failed reports whether any stage of the pipeline failed
func (a *AudioAnalysis) Failed() bool {
	return a.ErrorSource != ErrorSourceNone
}

// ChatAnswer is the assistant reply for a free-form chat turn. Success is
// false when the upstream call failed; Text then holds a fallback message
// and Error the underlying failure.
type ChatAnswer struct {
	Success bool   `json:"success"`
	Text    string `json:"text"`
	Error   string `json:"error,omitempty"`
}
