package deepseek

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/songzhibin97/listingflux/internal/models"
)

func newTestNarrator(t *testing.T, handler http.HandlerFunc) *DeepSeekNarrator {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	n := NewDeepSeekNarrator("test-key", "")
	n.endpoint = srv.URL
	n.client = srv.Client()
	return n
}

func chatReply(t *testing.T, w http.ResponseWriter, content string) {
	t.Helper()
	resp := chatResponse{}
	resp.Choices = append(resp.Choices, struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	}{})
	resp.Choices[0].Message.Content = content
	require.NoError(t, json.NewEncoder(w).Encode(resp))
}

func TestGenerateExecutiveSummary(t *testing.T) {
	var gotReq chatRequest
	n := newTestNarrator(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		chatReply(t, w, `{"executive_summary": "Token is nearly ready for MEXC listing; liquidity is the main gap.", "key_points": ["liquidity low"]}`)
	})

	metrics := models.MetricsAggregate{LiquidityUSD: 8000, HolderCount: 300, Top10Concentration: 42}
	score := models.ReadinessScore{Grade: "C", TotalScore: 61.5}
	recs := []models.Recommendation{
		{Priority: models.PriorityHigh, Issue: "MEXC: Minimum liquidity: $10,000", Recommendation: "Current liquidity: $8,000. Refer to exchange listing documentation for details."},
	}

	summary, err := n.GenerateExecutiveSummary(context.Background(), metrics, score, recs)
	require.NoError(t, err)
	assert.Equal(t, "Token is nearly ready for MEXC listing; liquidity is the main gap.", summary)

	assert.Equal(t, defaultModel, gotReq.Model)
	assert.InDelta(t, 0.3, gotReq.Temperature, 1e-9)
	require.Len(t, gotReq.Messages, 2)
	assert.Contains(t, gotReq.Messages[1].Content, "评级: C")
	assert.Contains(t, gotReq.Messages[1].Content, "MEXC: Minimum liquidity: $10,000")
}

func TestGenerateExecutiveSummaryHTTPError(t *testing.T) {
	n := newTestNarrator(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	})

	_, err := n.GenerateExecutiveSummary(context.Background(),
		models.MetricsAggregate{}, models.ReadinessScore{Grade: "F"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status=429")
}

func TestGenerateExecutiveSummaryAPIError(t *testing.T) {
	n := newTestNarrator(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error": {"message": "invalid api key"}}`))
	})

	_, err := n.GenerateExecutiveSummary(context.Background(),
		models.MetricsAggregate{}, models.ReadinessScore{Grade: "F"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid api key")
}

func TestGenerateExecutiveSummaryInvalidJSON(t *testing.T) {
	n := newTestNarrator(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>gateway timeout</html>`))
	})

	_, err := n.GenerateExecutiveSummary(context.Background(),
		models.MetricsAggregate{}, models.ReadinessScore{Grade: "F"}, nil)
	require.Error(t, err)
}

func TestGenerateExecutiveSummaryMalformedContent(t *testing.T) {
	n := newTestNarrator(t, func(w http.ResponseWriter, r *http.Request) {
		chatReply(t, w, `not json at all`)
	})

	_, err := n.GenerateExecutiveSummary(context.Background(),
		models.MetricsAggregate{}, models.ReadinessScore{Grade: "F"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse summary results")
}

func TestGenerateExecutiveSummaryEmptySummary(t *testing.T) {
	n := newTestNarrator(t, func(w http.ResponseWriter, r *http.Request) {
		chatReply(t, w, `{"executive_summary": "", "key_points": []}`)
	})

	_, err := n.GenerateExecutiveSummary(context.Background(),
		models.MetricsAggregate{}, models.ReadinessScore{Grade: "F"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty summary")
}

func TestGenerateExecutiveSummaryNoChoices(t *testing.T) {
	n := newTestNarrator(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices": []}`))
	})

	_, err := n.GenerateExecutiveSummary(context.Background(),
		models.MetricsAggregate{}, models.ReadinessScore{Grade: "F"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no response from api")
}
