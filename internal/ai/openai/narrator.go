package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/songzhibin97/listingflux/internal/models"
)

// OpenAINarrator implements the Narrator interface using OpenAI
type OpenAINarrator struct {
	client *openai.Client
	model  string
}

// NewOpenAINarrator creates a new OpenAI narrator instance
func NewOpenAINarrator(apiKey string, model string) *OpenAINarrator {
	client := openai.NewClient(apiKey)
	if model == "" {
		model = openai.GPT4oMini // 摘要任务用轻量模型即可
	}
	return &OpenAINarrator{
		client: client,
		model:  model,
	}
}

// GenerateExecutiveSummary implements the Narrator interface
func (n *OpenAINarrator) GenerateExecutiveSummary(ctx context.Context, metrics models.MetricsAggregate,
	score models.ReadinessScore, recs []models.Recommendation) (string, error) {

	prompt := fmt.Sprintf(`根据以下代币上币就绪度分析结果, 用英文撰写一段简洁专业的执行摘要(3-5句):

评级: %s, 总分: %.1f/100
子分: 流动性 %.1f, 持仓分布 %.1f, 元数据 %.1f, 安全 %.1f, 供应稳定性 %.1f, 市场活跃度 %.1f

链上指标:
流动性: $%.0f
持有人数量: %d
前十持仓集中度: %.1f%%
24小时成交量: $%.0f

待办建议:
%s

摘要需覆盖: 总体评级结论, 最关键的缺口, 下一步方向。

输出格式为JSON:
{
    "executive_summary": "string"
}`,
		score.Grade, score.TotalScore,
		score.Liquidity, score.HolderDistribution, score.Metadata,
		score.Security, score.SupplyStability, score.MarketActivity,
		metrics.LiquidityUSD, metrics.HolderCount, metrics.Top10Concentration, metrics.Volume24hUSD,
		describeRecommendations(recs))

	resp, err := n.createChatCompletion(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("failed to generate executive summary: %w", err)
	}

	var out struct {
		ExecutiveSummary string `json:"executive_summary"`
	}
	if err := json.Unmarshal([]byte(resp), &out); err != nil {
		return "", fmt.Errorf("failed to parse summary results: %w", err)
	}
	if out.ExecutiveSummary == "" {
		return "", fmt.Errorf("empty summary from model")
	}
	return out.ExecutiveSummary, nil
}

// describeRecommendations 最多列出前五条建议
func describeRecommendations(recs []models.Recommendation) string {
	if len(recs) == 0 {
		return "none"
	}
	var b strings.Builder
	for i, r := range recs {
		if i == 5 {
			break
		}
		fmt.Fprintf(&b, "- [%s] %s: %s\n", r.Priority, r.Issue, r.Recommendation)
	}
	return b.String()
}

// createChatCompletion is a helper function to make OpenAI API calls
func (n *OpenAINarrator) createChatCompletion(ctx context.Context, prompt string) (string, error) {
	resp, err := n.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: n.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: "你是一个专业的加密货币上币顾问，擅长评估代币的交易所上币条件。请始终以JSON格式返回结果。",
				},
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			Temperature: 0.3, // 使用较低的temperature以获得更稳定的输出
		},
	)
	if err != nil {
		return "", fmt.Errorf("openai api error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from openai")
	}

	return resp.Choices[0].Message.Content, nil
}
