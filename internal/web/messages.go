package web

// Message types exchanged over the live analysis WebSocket
const (
	MessageTypeAnalyze       = "analyze"
	MessageTypeAnalysis      = "analysis"
	MessageTypeAnalysisClear = "analysis_clear"
	MessageTypeAnalyzing     = "analyzing"
	MessageTypeError         = "error"
)

// AnalysisFailedExplanation is shown when the live analysis request fails.
const AnalysisFailedExplanation = "Analysis failed. Please try again."

// WebMessage represents a message sent over WebSocket
type WebMessage struct {
	Type        string `json:"type"`
	Content     string `json:"content,omitempty"`
	HasError    *bool  `json:"hasError,omitempty"` // pointer so false is still sent
	Explanation string `json:"explanation,omitempty"`
	Preview     string `json:"preview,omitempty"`
	Error       string `json:"error,omitempty"`
}

func analysisMessage(hasError bool, explanation string) *WebMessage {
	return &WebMessage{
		Type:        MessageTypeAnalysis,
		HasError:    &hasError,
		Explanation: explanation,
		Preview:     preview(explanation),
	}
}

// Request and response bodies of the JSON API

// HighlightRequest is the body of POST /api/highlight.
type HighlightRequest struct {
	Source string `json:"source"`
}

// HighlightResponse is the reply of POST /api/highlight.
type HighlightResponse struct {
	HTML string `json:"html"`
}

// ErrorResponse is the body of every failed API request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse is the reply of GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Model   string `json:"model"`
	Clients int    `json:"clients"`
}
