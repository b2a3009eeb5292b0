package audit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/songzhibin97/listingflux/internal/models"
)

const (
	defaultAgentID = "did:masumi:agent:token-analyzer"
	// 提交是尽力而为的, 超时压短避免拖慢分析主流程
	defaultTimeout = 3 * time.Second
)

// MasumiRecorder 把决策哈希提交到 Masumi 节点, 节点不可用时退回本地凭证
type MasumiRecorder struct {
	registryURL string
	agentID     string
	httpClient  *resty.Client
	logger      Logger
}

func NewMasumiRecorder(registryURL string, logger Logger) (*MasumiRecorder, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	client := resty.New().
		SetTimeout(defaultTimeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("User-Agent", "listingflux/1.0")

	return &MasumiRecorder{
		registryURL: registryURL,
		agentID:     defaultAgentID,
		httpClient:  client,
		logger:      logger,
	}, nil
}

type logRequest struct {
	AgentDID     string `json:"agent_did"`
	DecisionType string `json:"decision_type"`
	DecisionHash string `json:"decision_hash"`
	Timestamp    string `json:"timestamp"`
}

type logResponse struct {
	TransactionID string `json:"transaction_id"`
}

func (r *MasumiRecorder) RecordDecision(ctx context.Context, decisionType string, payload interface{}) (*models.DecisionRecord, error) {
	hash, err := canonicalHash(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to hash decision payload: %w", err)
	}

	record := &models.DecisionRecord{
		AgentID:      r.agentID,
		DecisionType: decisionType,
		DecisionHash: hash,
		Timestamp:    time.Now().UTC(),
	}
	record.TransactionID = r.submit(ctx, record)

	return record, nil
}

// submit 提交日志条目, 任何失败都折算成本地交易凭证而不是错误
func (r *MasumiRecorder) submit(ctx context.Context, record *models.DecisionRecord) string {
	if r.registryURL == "" {
		return "mock_tx_" + record.DecisionHash[:16]
	}

	var result logResponse
	resp, err := r.httpClient.R().
		SetContext(ctx).
		SetBody(logRequest{
			AgentDID:     record.AgentID,
			DecisionType: record.DecisionType,
			DecisionHash: record.DecisionHash,
			Timestamp:    record.Timestamp.Format(time.RFC3339),
		}).
		SetResult(&result).
		Post(r.registryURL + "/logs")

	if err != nil {
		var opErr *net.OpError
		if errors.As(err, &opErr) {
			r.logger.Info("masumi node unreachable, using local receipt")
			return "mock_tx_" + record.DecisionHash[:16]
		}
		r.logger.Error("failed to submit decision log:", err)
		return "error_tx_" + record.DecisionHash[:16]
	}

	if resp.StatusCode() != http.StatusOK {
		r.logger.Error("masumi node returned status", resp.StatusCode())
		return "error_tx_" + record.DecisionHash[:16]
	}

	return result.TransactionID
}

// canonicalHash 取排序键规范化 JSON 的 sha256, 同一决策内容的哈希保持稳定
func canonicalHash(payload interface{}) (string, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	// 经 map 往返一次, 键按字典序输出
	var generic interface{}
	if err := json.Unmarshal(raw, &generic); err != nil {
		return "", err
	}
	canonical, err := json.Marshal(generic)
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}
