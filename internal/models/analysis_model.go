package models

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// AnalysisMode selects which remote model call is made.
type AnalysisMode string

const (
	ModeTrend       AnalysisMode = "trend"
	ModeExplanation AnalysisMode = "explanation"
	ModeSuggestion  AnalysisMode = "suggestion"
)

// ErrUnknownMode is returned when a request carries a mode outside the
// three supported variants.
var ErrUnknownMode = errors.New("unknown analysis mode")

// ParseAnalysisMode validates a client-supplied mode string.
func ParseAnalysisMode(s string) (AnalysisMode, error) {
	switch AnalysisMode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeTrend:
		return ModeTrend, nil
	case ModeExplanation:
		return ModeExplanation, nil
	case ModeSuggestion:
		return ModeSuggestion, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

// ImagePayload is an inline-encoded chart image as received from the client:
// a data URI of the form "data:<mimetype>;base64,<encoded_data>".
type ImagePayload struct {
	MIMEType string
	Data     []byte
}

// ErrInvalidImagePayload is returned when a chart image is not a well-formed
// base64 data URI.
var ErrInvalidImagePayload = errors.New("invalid chart image payload")

// ParseImagePayload decodes a data URI into its MIME type and raw bytes.
func ParseImagePayload(dataURI string) (ImagePayload, error) {
	const prefix = "data:"
	if !strings.HasPrefix(dataURI, prefix) {
		return ImagePayload{}, fmt.Errorf("%w: missing data URI prefix", ErrInvalidImagePayload)
	}
	rest := dataURI[len(prefix):]
	meta, encoded, found := strings.Cut(rest, ",")
	if !found {
		return ImagePayload{}, fmt.Errorf("%w: missing payload separator", ErrInvalidImagePayload)
	}
	mimeType, ok := strings.CutSuffix(meta, ";base64")
	if !ok {
		return ImagePayload{}, fmt.Errorf("%w: only base64 data URIs are supported", ErrInvalidImagePayload)
	}
	if mimeType == "" {
		return ImagePayload{}, fmt.Errorf("%w: missing MIME type", ErrInvalidImagePayload)
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return ImagePayload{}, fmt.Errorf("%w: %v", ErrInvalidImagePayload, err)
	}
	if len(data) == 0 {
		return ImagePayload{}, fmt.Errorf("%w: empty image data", ErrInvalidImagePayload)
	}
	return ImagePayload{MIMEType: mimeType, Data: data}, nil
}

// DataURI re-encodes the payload back into its inline form.
func (p ImagePayload) DataURI() string {
	return "data:" + p.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(p.Data)
}

// AnalysisRequest is a tagged variant over the three analysis modes. Each
// concrete request type carries exactly the inputs its mode requires, so the
// dispatcher can type-switch exhaustively instead of branching on strings.
type AnalysisRequest interface {
	Mode() AnalysisMode
	isAnalysisRequest()
}

// TrendRequest asks for trend detection on a chart image.
type TrendRequest struct {
	Image ImagePayload
}

// ExplanationRequest asks for a plain-language explanation of a chart type
// and its indicators. No image is involved.
type ExplanationRequest struct {
	ChartType  string
	Indicators string // optional, free-form list like "RSI, MACD"
}

// SuggestionRequest asks for a buy/sell/hold suggestion on a chart image,
// with the chart type (and optionally indicators) as context.
type SuggestionRequest struct {
	Image      ImagePayload
	ChartType  string
	Indicators string
}

func (TrendRequest) Mode() AnalysisMode       { return ModeTrend }
func (ExplanationRequest) Mode() AnalysisMode { return ModeExplanation }
func (SuggestionRequest) Mode() AnalysisMode  { return ModeSuggestion }

func (TrendRequest) isAnalysisRequest()       {}
func (ExplanationRequest) isAnalysisRequest() {}
func (SuggestionRequest) isAnalysisRequest()  {}

// TradeAction is the suggestion enum returned by the suggestion mode.
type TradeAction string

const (
	ActionBuy  TradeAction = "buy"
	ActionSell TradeAction = "sell"
	ActionHold TradeAction = "hold"
)

// TrendResult is the trend-detection variant of an analysis result.
type TrendResult struct {
	Trend      string  `json:"trend" firestore:"trend"` // e.g., "uptrend", "downtrend", "consolidation"
	Confidence float64 `json:"confidence" firestore:"confidence"` // in [0,1]
}

// ExplanationResult is the plain-language-explanation variant.
type ExplanationResult struct {
	Explanation string `json:"explanation" firestore:"explanation"`
}

// SuggestionResult is the trade-suggestion variant.
type SuggestionResult struct {
	Suggestion TradeAction `json:"suggestion" firestore:"suggestion"`
	Confidence float64     `json:"confidence" firestore:"confidence"` // in [0,1]
	Reason     string      `json:"reason" firestore:"reason"`
}

// AnalysisResult is the mode-tagged union of the three result variants.
// Exactly one of the variant pointers is set, matching Mode.
type AnalysisResult struct {
	Mode        AnalysisMode       `json:"mode" firestore:"mode"`
	Trend       *TrendResult       `json:"trend,omitempty" firestore:"trend,omitempty"`
	Explanation *ExplanationResult `json:"explanation,omitempty" firestore:"explanation,omitempty"`
	Suggestion  *SuggestionResult  `json:"suggestion,omitempty" firestore:"suggestion,omitempty"`
}
