package models

import (
	"errors"
	"fmt"
	"strings"
)

// AnalyzeRequest represents the request body for running an analysis.
// Mode selects the variant; the remaining fields are mode-specific and
// validated by BuildAnalysisRequest before dispatch.
type AnalyzeRequest struct {
	Mode         string `json:"mode" binding:"required"`
	ChartDataURI string `json:"chartDataUri,omitempty"` // required for trend and suggestion
	ChartType    string `json:"chartType,omitempty"`    // required for explanation and suggestion
	Indicators   string `json:"indicators,omitempty"`   // optional, e.g. "RSI, MACD"
}

// BuildAnalysisRequest validates the DTO and converts it into the typed
// variant for its mode. All validation failures happen here, before any
// quota check or remote call.
func (r AnalyzeRequest) BuildAnalysisRequest() (AnalysisRequest, error) {
	mode, err := ParseAnalysisMode(r.Mode)
	if err != nil {
		return nil, err
	}

	switch mode {
	case ModeTrend:
		image, err := ParseImagePayload(r.ChartDataURI)
		if err != nil {
			return nil, err
		}
		return TrendRequest{Image: image}, nil

	case ModeExplanation:
		if strings.TrimSpace(r.ChartType) == "" {
			return nil, ErrMissingChartType
		}
		return ExplanationRequest{ChartType: r.ChartType, Indicators: r.Indicators}, nil

	case ModeSuggestion:
		if strings.TrimSpace(r.ChartType) == "" {
			return nil, ErrMissingChartType
		}
		image, err := ParseImagePayload(r.ChartDataURI)
		if err != nil {
			return nil, err
		}
		return SuggestionRequest{Image: image, ChartType: r.ChartType, Indicators: r.Indicators}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownMode, r.Mode)
}

// ErrMissingChartType is returned when a mode that needs chart-type context
// is submitted without one.
var ErrMissingChartType = errors.New("chart type is required for this analysis mode")

// CreateCheckoutSessionRequest represents the request body for starting an
// upgrade-to-PRO checkout from the pricing page.
type CreateCheckoutSessionRequest struct {
	PriceID string `json:"priceId" binding:"required"`
}
