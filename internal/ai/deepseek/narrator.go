package deepseek

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/songzhibin97/listingflux/internal/models"
)

const (
	defaultAPIEndpoint = "https://api.deepseek.com/v1"
	defaultModel       = "deepseek-chat"
)

// DeepSeekNarrator implements the Narrator interface using DeepSeek
type DeepSeekNarrator struct {
	apiKey   string
	endpoint string
	model    string
	client   *http.Client
}

// NewDeepSeekNarrator creates a new DeepSeek narrator instance
func NewDeepSeekNarrator(apiKey string, model string) *DeepSeekNarrator {
	if model == "" {
		model = defaultModel
	}

	return &DeepSeekNarrator{
		apiKey:   apiKey,
		endpoint: defaultAPIEndpoint,
		model:    model,
		client:   &http.Client{},
	}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// GenerateExecutiveSummary implements the Narrator interface
func (n *DeepSeekNarrator) GenerateExecutiveSummary(ctx context.Context, metrics models.MetricsAggregate,
	score models.ReadinessScore, recs []models.Recommendation) (string, error) {

	var recText strings.Builder
	for i, r := range recs {
		if i == 5 {
			break
		}
		recText.WriteString(fmt.Sprintf("- [%s] %s: %s\n", r.Priority, r.Issue, r.Recommendation))
	}
	if recText.Len() == 0 {
		recText.WriteString("none\n")
	}

	prompt := fmt.Sprintf(`请根据以下上币就绪度分析, 用英文撰写执行摘要:

评分结果:
- 评级: %s
- 总分: %.1f/100
- 流动性: %.1f, 持仓分布: %.1f, 元数据: %.1f
- 安全: %.1f, 供应稳定性: %.1f, 市场活跃度: %.1f

链上与市场指标:
- 流动性: $%.0f
- 持有人数量: %d
- 前十持仓集中度: %.1f%%
- 24小时成交量: $%.0f
- 市场数据可用: %t

待办建议:
%s

要求:
1. 3-5句, 面向项目方管理层
2. 先给总体结论, 再点出最大缺口
3. 给出下一步的行动方向

输出格式：
{
    "executive_summary": "string",
    "key_points": ["要点1", "要点2", ...]
}`,
		score.Grade, score.TotalScore,
		score.Liquidity, score.HolderDistribution, score.Metadata,
		score.Security, score.SupplyStability, score.MarketActivity,
		metrics.LiquidityUSD, metrics.HolderCount, metrics.Top10Concentration,
		metrics.Volume24hUSD, metrics.MarketDataAvailable,
		recText.String())

	resp, err := n.createChatCompletion(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("failed to generate executive summary: %w", err)
	}

	var out struct {
		ExecutiveSummary string   `json:"executive_summary"`
		KeyPoints        []string `json:"key_points"`
	}
	if err := json.Unmarshal([]byte(resp), &out); err != nil {
		return "", fmt.Errorf("failed to parse summary results: %w", err)
	}
	if out.ExecutiveSummary == "" {
		return "", fmt.Errorf("empty summary from model")
	}
	return out.ExecutiveSummary, nil
}

// createChatCompletion sends a request to the DeepSeek API
func (n *DeepSeekNarrator) createChatCompletion(ctx context.Context, prompt string) (string, error) {
	reqBody := chatRequest{
		Model: n.model,
		Messages: []chatMessage{
			{
				Role:    "system",
				Content: "你是一个专业的加密货币上币顾问，擅长评估代币的交易所上币条件。请严格按照要求的JSON格式输出结果。",
			},
			{
				Role:    "user",
				Content: prompt,
			},
		},
		Temperature: 0.3,
	}

	reqBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST",
		fmt.Sprintf("%s/chat/completions", n.endpoint),
		bytes.NewBuffer(reqBytes))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", n.apiKey))

	resp, err := n.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("api error: status=%d, body=%s", resp.StatusCode, string(body))
	}

	if !json.Valid(body) {
		return "", fmt.Errorf("API 返回无效的 JSON 响应")
	}

	var chatResp chatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	if chatResp.Error != nil {
		return "", fmt.Errorf("api error: %s", chatResp.Error.Message)
	}

	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("no response from api")
	}

	return chatResp.Choices[0].Message.Content, nil
}
