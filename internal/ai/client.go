// Package ai wraps the hosted generative-model REST API behind three
// schema-validated operations, one per analysis mode. Each operation is a
// single best-effort call: no retries, no caching, and a malformed model
// output fails the whole call rather than producing a partial result.
package ai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"chartvision-backend-go/internal/models"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// Errors returned by model calls.
var (
	// ErrModelCall covers transport failures and non-2xx API responses.
	ErrModelCall = errors.New("model service call failed")
	// ErrInvalidOutput marks a model response that violates the declared
	// output schema. Schema violations are fatal for the call.
	ErrInvalidOutput = errors.New("model output violates schema")
)

// Client calls the Generative Language API over HTTP.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API endpoint, primarily for tests.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(url, "/") }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient creates a model-service client for the given API key and model
// name (e.g. "gemini-2.0-flash").
func NewClient(apiKey, model string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("model service API key is required")
	}
	if model == "" {
		return nil, errors.New("model name is required")
	}
	c := &Client{
		baseURL:    defaultBaseURL,
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Request/response wire types for the generateContent endpoint.

type generateRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type inlineData struct {
	MIMEType string `json:"mime_type"`
	Data     string `json:"data"` // base64
}

type generationConfig struct {
	ResponseMIMEType string `json:"response_mime_type,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// generate performs one generateContent call and decodes the first
// candidate's text into out, which must be a pointer to the declared output
// struct for the operation.
func (c *Client) generate(ctx context.Context, parts []part, out interface{}) error {
	body, err := json.Marshal(generateRequest{
		Contents:         []content{{Parts: parts}},
		GenerationConfig: &generationConfig{ResponseMIMEType: "application/json"},
	})
	if err != nil {
		return fmt.Errorf("failed to encode model request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build model request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrModelCall, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("%w: reading response: %v", ErrModelCall, err)
	}

	var decoded generateResponse
	if err := json.Unmarshal(respBody, &decoded); err != nil {
		return fmt.Errorf("%w: unexpected response body: %v", ErrModelCall, err)
	}
	if resp.StatusCode != http.StatusOK {
		if decoded.Error != nil && decoded.Error.Message != "" {
			return fmt.Errorf("%w: %s (HTTP %d)", ErrModelCall, decoded.Error.Message, resp.StatusCode)
		}
		return fmt.Errorf("%w: HTTP %d", ErrModelCall, resp.StatusCode)
	}
	if len(decoded.Candidates) == 0 || len(decoded.Candidates[0].Content.Parts) == 0 {
		return fmt.Errorf("%w: response contains no candidates", ErrInvalidOutput)
	}

	text := decoded.Candidates[0].Content.Parts[0].Text
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), out); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidOutput, err)
	}
	return nil
}

func imagePart(image models.ImagePayload) part {
	return part{InlineData: &inlineData{
		MIMEType: image.MIMEType,
		Data:     base64.StdEncoding.EncodeToString(image.Data),
	}}
}

// DetectTrend analyzes a chart image and returns the detected trend with a
// confidence score.
func (c *Client) DetectTrend(ctx context.Context, image models.ImagePayload) (*models.TrendResult, error) {
	var out models.TrendResult
	parts := []part{{Text: trendPrompt}, imagePart(image)}
	if err := c.generate(ctx, parts, &out); err != nil {
		return nil, err
	}
	if err := validateTrend(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ExplainChart returns a beginner-friendly explanation of a chart type and
// its technical indicators.
func (c *Client) ExplainChart(ctx context.Context, chartType, indicators string) (*models.ExplanationResult, error) {
	var out models.ExplanationResult
	parts := []part{{Text: fmt.Sprintf(explainPromptFormat, chartType, indicators)}}
	if err := c.generate(ctx, parts, &out); err != nil {
		return nil, err
	}
	if strings.TrimSpace(out.Explanation) == "" {
		return nil, fmt.Errorf("%w: empty explanation", ErrInvalidOutput)
	}
	return &out, nil
}

// SuggestTrade returns a buy/sell/hold suggestion for a chart image given
// the chart type, an identified pattern, and supporting explanation text.
func (c *Client) SuggestTrade(ctx context.Context, image models.ImagePayload, chartType, identifiedPattern, explanation string) (*models.SuggestionResult, error) {
	var out models.SuggestionResult
	parts := []part{
		{Text: fmt.Sprintf(suggestionPromptFormat, chartType, identifiedPattern, explanation)},
		imagePart(image),
	}
	if err := c.generate(ctx, parts, &out); err != nil {
		return nil, err
	}
	if err := validateSuggestion(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

func validateTrend(r *models.TrendResult) error {
	if strings.TrimSpace(r.Trend) == "" {
		return fmt.Errorf("%w: empty trend label", ErrInvalidOutput)
	}
	if r.Confidence < 0 || r.Confidence > 1 {
		return fmt.Errorf("%w: confidence %v outside [0,1]", ErrInvalidOutput, r.Confidence)
	}
	return nil
}

func validateSuggestion(r *models.SuggestionResult) error {
	// Model output is free text; normalize before checking the enum.
	r.Suggestion = models.TradeAction(strings.ToLower(strings.TrimSpace(string(r.Suggestion))))
	switch r.Suggestion {
	case models.ActionBuy, models.ActionSell, models.ActionHold:
	default:
		return fmt.Errorf("%w: suggestion %q not one of buy/sell/hold", ErrInvalidOutput, r.Suggestion)
	}
	if r.Confidence < 0 || r.Confidence > 1 {
		return fmt.Errorf("%w: confidence %v outside [0,1]", ErrInvalidOutput, r.Confidence)
	}
	if strings.TrimSpace(r.Reason) == "" {
		return fmt.Errorf("%w: empty reason", ErrInvalidOutput)
	}
	return nil
}
