package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chartvision-backend-go/internal/models"
)

// modelTextResponse builds a generateContent response whose first candidate
// carries the given text.
func modelTextResponse(t *testing.T, text string) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]interface{}{
		"candidates": []map[string]interface{}{
			{"content": map[string]interface{}{
				"parts": []map[string]string{{"text": text}},
			}},
		},
	})
	require.NoError(t, err)
	return body
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient("test-key", "test-model", WithBaseURL(server.URL), WithHTTPClient(server.Client()))
	require.NoError(t, err)
	return client
}

func testImage() models.ImagePayload {
	return models.ImagePayload{MIMEType: "image/png", Data: []byte{1, 2, 3}}
}

func TestNewClient_Validation(t *testing.T) {
	_, err := NewClient("", "model")
	require.Error(t, err)
	_, err = NewClient("key", "")
	require.Error(t, err)
}

func TestDetectTrend_Success(t *testing.T) {
	var gotRequest generateRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/test-model:generateContent", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotRequest))
		w.Write(modelTextResponse(t, `{"trend":"uptrend","confidence":0.92}`))
	})

	out, err := client.DetectTrend(context.Background(), testImage())
	require.NoError(t, err)
	assert.Equal(t, "uptrend", out.Trend)
	assert.InDelta(t, 0.92, out.Confidence, 1e-9)

	require.Len(t, gotRequest.Contents, 1)
	require.Len(t, gotRequest.Contents[0].Parts, 2, "prompt text plus inline image")
	assert.NotEmpty(t, gotRequest.Contents[0].Parts[0].Text)
	require.NotNil(t, gotRequest.Contents[0].Parts[1].InlineData)
	assert.Equal(t, "image/png", gotRequest.Contents[0].Parts[1].InlineData.MIMEType)
	require.NotNil(t, gotRequest.GenerationConfig)
	assert.Equal(t, "application/json", gotRequest.GenerationConfig.ResponseMIMEType)
}

func TestDetectTrend_ConfidenceOutOfRange(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write(modelTextResponse(t, `{"trend":"uptrend","confidence":1.5}`))
	})

	_, err := client.DetectTrend(context.Background(), testImage())
	require.ErrorIs(t, err, ErrInvalidOutput)
}

func TestDetectTrend_APIError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"error":{"code":503,"message":"model overloaded","status":"UNAVAILABLE"}}`))
	})

	_, err := client.DetectTrend(context.Background(), testImage())
	require.ErrorIs(t, err, ErrModelCall)
	assert.Contains(t, err.Error(), "model overloaded")
}

func TestDetectTrend_MalformedCandidateJSON(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write(modelTextResponse(t, `this is not json`))
	})

	_, err := client.DetectTrend(context.Background(), testImage())
	require.ErrorIs(t, err, ErrInvalidOutput)
}

func TestDetectTrend_NoCandidates(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[]}`))
	})

	_, err := client.DetectTrend(context.Background(), testImage())
	require.ErrorIs(t, err, ErrInvalidOutput)
}

func TestExplainChart_Success(t *testing.T) {
	var gotRequest generateRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotRequest))
		w.Write(modelTextResponse(t, `{"explanation":"Candlesticks show price ranges."}`))
	})

	out, err := client.ExplainChart(context.Background(), "Candlestick", "RSI, MACD")
	require.NoError(t, err)
	assert.Equal(t, "Candlesticks show price ranges.", out.Explanation)

	require.Len(t, gotRequest.Contents[0].Parts, 1, "explanation calls carry no image")
	assert.Contains(t, gotRequest.Contents[0].Parts[0].Text, "Candlestick")
	assert.Contains(t, gotRequest.Contents[0].Parts[0].Text, "RSI, MACD")
}

func TestExplainChart_EmptyExplanationRejected(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write(modelTextResponse(t, `{"explanation":"  "}`))
	})

	_, err := client.ExplainChart(context.Background(), "Line", "")
	require.ErrorIs(t, err, ErrInvalidOutput)
}

func TestSuggestTrade_NormalizesEnum(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write(modelTextResponse(t, `{"suggestion":"BUY","confidence":0.7,"reason":"breakout"}`))
	})

	out, err := client.SuggestTrade(context.Background(), testImage(), "Candlestick", "uptrend", "context")
	require.NoError(t, err)
	assert.Equal(t, models.ActionBuy, out.Suggestion)
}

func TestSuggestTrade_UnknownActionRejected(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write(modelTextResponse(t, `{"suggestion":"short","confidence":0.7,"reason":"momentum"}`))
	})

	_, err := client.SuggestTrade(context.Background(), testImage(), "Line", "downtrend", "context")
	require.ErrorIs(t, err, ErrInvalidOutput)
}

func TestSuggestTrade_PromptCarriesContext(t *testing.T) {
	var gotRequest generateRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotRequest))
		w.Write(modelTextResponse(t, `{"suggestion":"hold","confidence":0.5,"reason":"no clear direction"}`))
	})

	_, err := client.SuggestTrade(context.Background(), testImage(), "Candlestick", "consolidation", "sideways market")
	require.NoError(t, err)

	prompt := gotRequest.Contents[0].Parts[0].Text
	assert.Contains(t, prompt, "Candlestick")
	assert.Contains(t, prompt, "consolidation")
	assert.Contains(t, prompt, "sideways market")
}
