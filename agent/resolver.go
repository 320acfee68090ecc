package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rehiy/chat-led/device"
	"github.com/rehiy/chat-led/llm"
)

var (
	// ErrNoMatch 话语没有映射到任何命令
	ErrNoMatch = errors.New("no matching command")
	// ErrAssistantUnavailable 推理后端不可用或输出无法解析
	ErrAssistantUnavailable = errors.New("assistant unavailable")
)

// ChatClient 意图识别依赖的推理后端
type ChatClient interface {
	Chat(ctx context.Context, messages []llm.Message, tools []llm.Tool) (llm.Decision, error)
}

// IntentResolver 把一条话语映射到封闭命令集合中的至多一条命令。
// 识别本身委托给推理后端，解析失败不在此处重试。
type IntentResolver struct {
	client   ChatClient
	commands *device.CommandSet
	tools    []llm.Tool
	prompt   string
}

// NewIntentResolver 创建意图识别器
func NewIntentResolver(client ChatClient, commands *device.CommandSet) *IntentResolver {
	var tools []llm.Tool
	var lines []string
	for _, cmd := range commands.All() {
		tools = append(tools, llm.Tool{
			Type: "function",
			Function: llm.ToolFunction{
				Name:        cmd.Tool,
				Description: cmd.Description,
				Parameters: map[string]any{
					"type":       "object",
					"properties": map[string]any{},
				},
			},
		})
		lines = append(lines, fmt.Sprintf("- %s: %s", cmd.Tool, cmd.Description))
	}

	prompt := "You control an LED device over a serial link. " +
		"When the user asks for one of the following actions, call the matching tool:\n" +
		strings.Join(lines, "\n") +
		"\nIf the request does not map to any tool, answer in plain text instead of calling a tool."

	return &IntentResolver{
		client:   client,
		commands: commands,
		tools:    tools,
		prompt:   prompt,
	}
}

// Resolve 识别话语的意图，返回命中的命令。
// 未命中返回 ErrNoMatch，后端失败返回 ErrAssistantUnavailable。
func (r *IntentResolver) Resolve(ctx context.Context, utterance string, recent []Turn) (device.Command, error) {
	messages := []llm.Message{{Role: "system", Content: r.prompt}}
	// 附带近期对话，支持 "turn it back on" 之类的指代
	for _, turn := range recent {
		messages = append(messages,
			llm.Message{Role: "user", Content: turn.Utterance},
			llm.Message{Role: "assistant", Content: turn.Response},
		)
	}
	messages = append(messages, llm.Message{Role: "user", Content: utterance})

	decision, err := r.client.Chat(ctx, messages, r.tools)
	if err != nil {
		return device.Command{}, fmt.Errorf("%w: %v", ErrAssistantUnavailable, err)
	}

	switch decision.Kind {
	case llm.DecisionToolCall:
		cmd, err := r.commands.ResolveByTool(decision.Tool)
		if err != nil {
			// 模型选择了词汇表之外的工具
			return device.Command{}, fmt.Errorf("%w: unknown tool %q", ErrNoMatch, decision.Tool)
		}
		return cmd, nil
	default:
		return device.Command{}, ErrNoMatch
	}
}
