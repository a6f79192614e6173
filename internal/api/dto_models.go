package api

import "chartvision-backend-go/internal/models"

// ErrorResponse is a generic structure for returning errors via API.
type ErrorResponse struct {
	Error   string `json:"error"`             // A high-level error message or code
	Details string `json:"details,omitempty"` // More specific details about the error, if available
}

// SuccessResponse is a generic structure for simple success messages.
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// UsageResponse reports the caller's quota standing for today.
type UsageResponse struct {
	AnalysisCountToday int    `json:"analysisCountToday"`
	LastAnalysisDate   string `json:"lastAnalysisDate"`
	Limit              int    `json:"limit"`
	Remaining          int    `json:"remaining"`
	Unlimited          bool   `json:"unlimited"`
}

// AnalyzeResponse wraps a completed analysis with the caller's remaining
// quota so the client can refresh its counter without a second request.
type AnalyzeResponse struct {
	Result    *models.AnalysisResult `json:"result"`
	Remaining int                    `json:"remaining"`
	Unlimited bool                   `json:"unlimited"`
}

// HistoryResponse is a page of the caller's analysis history. Total is the
// user's all-time analysis count, independent of the page size.
type HistoryResponse struct {
	Items []*models.AnalysisHistoryItem `json:"items"`
	Total int                           `json:"total"`
}

// CheckoutSessionResponse carries the provider session ID for the upgrade
// flow.
type CheckoutSessionResponse struct {
	SessionID string `json:"sessionId"`
}
