package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const (
	defaultBaseURL = "http://localhost:11434"
	defaultTimeout = 60 * time.Second
)

// Client ollama 兼容推理后端的 HTTP 客户端。
// 后端的延迟和可用性属于独立故障域，所有调用都带超时。
type Client struct {
	baseURL string
	model   string
	http    *http.Client
}

// NewClient 创建推理后端客户端
func NewClient(baseURL, model string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		http:    &http.Client{Timeout: timeout},
	}
}

// Chat 发送一轮对话，返回模型决策。
// 网络错误、非 2xx 状态或无法解析的应答都作为 error 返回。
func (c *Client) Chat(ctx context.Context, messages []Message, tools []Tool) (Decision, error) {
	if len(messages) == 0 {
		return Decision{}, fmt.Errorf("chat requires at least one message")
	}

	payload, err := json.Marshal(chatRequest{
		Model:    c.model,
		Messages: messages,
		Tools:    tools,
		Stream:   false,
	})
	if err != nil {
		return Decision{}, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(payload))
	if err != nil {
		return Decision{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return Decision{}, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Decision{}, fmt.Errorf("unexpected status: %s", resp.Status)
	}

	var decoded chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return Decision{}, fmt.Errorf("decode response: %w", err)
	}
	if decoded.Error != "" {
		return Decision{}, fmt.Errorf("backend error: %s", decoded.Error)
	}

	// 工具调用优先，其余一律视为纯文本
	if len(decoded.Message.ToolCalls) > 0 {
		call := decoded.Message.ToolCalls[0]
		if call.Function.Name == "" {
			return Decision{}, fmt.Errorf("tool call missing function name")
		}
		return Decision{
			Kind: DecisionToolCall,
			Tool: call.Function.Name,
			Args: call.Function.Arguments,
		}, nil
	}

	return Decision{
		Kind: DecisionText,
		Text: strings.TrimSpace(decoded.Message.Content),
	}, nil
}

// Phrase 将一条命令结果改写为口语化回复。
// 改写失败时调用方应退回模板文本。
func (c *Client) Phrase(ctx context.Context, utterance, summary string) (string, error) {
	messages := []Message{
		{
			Role: "system",
			Content: "You are a friendly assistant controlling an LED device over a serial link. " +
				"Rephrase the command result as one short, natural sentence for the user. " +
				"Do not invent any device state that is not in the result.",
		},
		{
			Role:    "user",
			Content: fmt.Sprintf("User said: %q\nCommand result: %q", utterance, summary),
		},
	}

	decision, err := c.Chat(ctx, messages, nil)
	if err != nil {
		return "", err
	}
	if decision.Kind != DecisionText || decision.Text == "" {
		return "", fmt.Errorf("empty phrasing response")
	}
	return decision.Text, nil
}
