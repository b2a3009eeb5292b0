package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/songzhibin97/listingflux/internal/models"
)

func newTestNarrator(t *testing.T, handler http.HandlerFunc) *OpenAINarrator {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := openai.DefaultConfig("test-key")
	cfg.BaseURL = srv.URL + "/v1"
	cfg.HTTPClient = srv.Client()
	return &OpenAINarrator{
		client: openai.NewClientWithConfig(cfg),
		model:  openai.GPT4oMini,
	}
}

func chatReply(t *testing.T, w http.ResponseWriter, content string) {
	t.Helper()
	resp := openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{
				Role:    openai.ChatMessageRoleAssistant,
				Content: content,
			}},
		},
	}
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(resp))
}

func TestGenerateExecutiveSummary(t *testing.T) {
	var gotReq openai.ChatCompletionRequest
	n := newTestNarrator(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		chatReply(t, w, `{"executive_summary": "Strong readiness profile; close the Binance liquidity gap next."}`)
	})

	metrics := models.MetricsAggregate{LiquidityUSD: 80000, HolderCount: 900, Top10Concentration: 28}
	score := models.ReadinessScore{Grade: "B", TotalScore: 81.2}
	recs := []models.Recommendation{
		{Priority: models.PriorityHigh, Issue: "Binance: Minimum liquidity: $100,000", Recommendation: "Current liquidity: $80,000. Refer to exchange listing documentation for details."},
	}

	summary, err := n.GenerateExecutiveSummary(context.Background(), metrics, score, recs)
	require.NoError(t, err)
	assert.Equal(t, "Strong readiness profile; close the Binance liquidity gap next.", summary)

	assert.Equal(t, openai.GPT4oMini, gotReq.Model)
	assert.InDelta(t, 0.3, gotReq.Temperature, 1e-6)
	require.Len(t, gotReq.Messages, 2)
	assert.Contains(t, gotReq.Messages[1].Content, "评级: B")
	assert.Contains(t, gotReq.Messages[1].Content, "Binance: Minimum liquidity: $100,000")
}

func TestGenerateExecutiveSummaryAPIError(t *testing.T) {
	n := newTestNarrator(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error": {"message": "rate limited", "type": "requests"}}`))
	})

	_, err := n.GenerateExecutiveSummary(context.Background(),
		models.MetricsAggregate{}, models.ReadinessScore{Grade: "F"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to generate executive summary")
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
		chatReply(t, w, `{"executive_summary": ""}`)
	})

	_, err := n.GenerateExecutiveSummary(context.Background(),
		models.MetricsAggregate{}, models.ReadinessScore{Grade: "F"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty summary")
}

func TestGenerateExecutiveSummaryNoChoices(t *testing.T) {
	n := newTestNarrator(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices": []}`))
	})

	_, err := n.GenerateExecutiveSummary(context.Background(),
		models.MetricsAggregate{}, models.ReadinessScore{Grade: "F"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no response from openai")
}

func TestNewOpenAINarratorDefaultModel(t *testing.T) {
	n := NewOpenAINarrator("key", "")
	assert.Equal(t, openai.GPT4oMini, n.model)
}

func TestDescribeRecommendations(t *testing.T) {
	assert.Equal(t, "none", describeRecommendations(nil))

	recs := make([]models.Recommendation, 7)
	for i := range recs {
		recs[i] = models.Recommendation{Priority: models.PriorityMedium, Issue: "issue", Recommendation: "fix"}
	}
	out := describeRecommendations(recs)
	// 最多截取五条
	assert.Len(t, strings.Split(strings.TrimSuffix(out, "\n"), "\n"), 5)
}
