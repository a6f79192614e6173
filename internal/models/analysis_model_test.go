package models

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAnalysisMode(t *testing.T) {
	tests := []struct {
		input   string
		want    AnalysisMode
		wantErr bool
	}{
		{"trend", ModeTrend, false},
		{"explanation", ModeExplanation, false},
		{"suggestion", ModeSuggestion, false},
		{" Trend ", ModeTrend, false},
		{"SUGGESTION", ModeSuggestion, false},
		{"", "", true},
		{"sentiment", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseAnalysisMode(tt.input)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrUnknownMode)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseImagePayload(t *testing.T) {
	raw := []byte{0x89, 0x50, 0x4e, 0x47}
	uri := "data:image/png;base64," + base64.StdEncoding.EncodeToString(raw)

	payload, err := ParseImagePayload(uri)
	require.NoError(t, err)
	assert.Equal(t, "image/png", payload.MIMEType)
	assert.Equal(t, raw, payload.Data)
	assert.Equal(t, uri, payload.DataURI(), "round-trips back to the same URI")
}

func TestParseImagePayload_Invalid(t *testing.T) {
	tests := []struct {
		name string
		uri  string
	}{
		{"missing prefix", "image/png;base64,AAAA"},
		{"http url instead of data uri", "https://example.com/chart.png"},
		{"no separator", "data:image/png;base64AAAA"},
		{"not base64 encoded", "data:image/png,rawbytes"},
		{"missing mime type", "data:;base64,AAAA"},
		{"bad base64", "data:image/png;base64,!!!"},
		{"empty data", "data:image/png;base64,"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseImagePayload(tt.uri)
			require.ErrorIs(t, err, ErrInvalidImagePayload)
		})
	}
}

func TestBuildAnalysisRequest(t *testing.T) {
	chartURI := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString([]byte("chart"))

	t.Run("trend", func(t *testing.T) {
		req, err := AnalyzeRequest{Mode: "trend", ChartDataURI: chartURI}.BuildAnalysisRequest()
		require.NoError(t, err)
		trend, ok := req.(TrendRequest)
		require.True(t, ok)
		assert.Equal(t, ModeTrend, trend.Mode())
		assert.Equal(t, "image/jpeg", trend.Image.MIMEType)
	})

	t.Run("explanation", func(t *testing.T) {
		req, err := AnalyzeRequest{Mode: "explanation", ChartType: "Candlestick", Indicators: "RSI"}.BuildAnalysisRequest()
		require.NoError(t, err)
		expl, ok := req.(ExplanationRequest)
		require.True(t, ok)
		assert.Equal(t, "Candlestick", expl.ChartType)
		assert.Equal(t, "RSI", expl.Indicators)
	})

	t.Run("suggestion", func(t *testing.T) {
		req, err := AnalyzeRequest{Mode: "suggestion", ChartDataURI: chartURI, ChartType: "Line"}.BuildAnalysisRequest()
		require.NoError(t, err)
		sugg, ok := req.(SuggestionRequest)
		require.True(t, ok)
		assert.Equal(t, "Line", sugg.ChartType)
		assert.NotEmpty(t, sugg.Image.Data)
	})

	t.Run("unknown mode", func(t *testing.T) {
		_, err := AnalyzeRequest{Mode: "forecast"}.BuildAnalysisRequest()
		require.ErrorIs(t, err, ErrUnknownMode)
	})

	t.Run("trend without image", func(t *testing.T) {
		_, err := AnalyzeRequest{Mode: "trend"}.BuildAnalysisRequest()
		require.ErrorIs(t, err, ErrInvalidImagePayload)
	})

	t.Run("explanation without chart type", func(t *testing.T) {
		_, err := AnalyzeRequest{Mode: "explanation", ChartType: "  "}.BuildAnalysisRequest()
		require.ErrorIs(t, err, ErrMissingChartType)
	})

	t.Run("suggestion without chart type", func(t *testing.T) {
		_, err := AnalyzeRequest{Mode: "suggestion", ChartDataURI: chartURI}.BuildAnalysisRequest()
		require.ErrorIs(t, err, ErrMissingChartType)
	})

	t.Run("suggestion without image", func(t *testing.T) {
		_, err := AnalyzeRequest{Mode: "suggestion", ChartType: "Line"}.BuildAnalysisRequest()
		require.ErrorIs(t, err, ErrInvalidImagePayload)
	})
}
