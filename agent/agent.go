package agent

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rehiy/chat-led/device"
)

// State 调度器状态
type State int

const (
	StateIdle State = iota
	StateResolving
	StateExecuting
	StateResponding
)

// String 返回状态名称
func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateResolving:
		return "RESOLVING"
	case StateExecuting:
		return "EXECUTING"
	case StateResponding:
		return "RESPONDING"
	default:
		return "UNKNOWN"
	}
}

// 调度结果状态
const (
	StatusSuccess              = "success"
	StatusNoMatch              = "no_match"
	StatusTimeout              = "timeout"
	StatusTransportError       = "transport_error"
	StatusMalformedReply       = "malformed_reply"
	StatusAssistantUnavailable = "assistant_unavailable"
)

// Outcome 一条话语的结构化处理结果，每轮新建，不复用
type Outcome struct {
	Utterance string          `json:"utterance"`
	Command   *device.Command `json:"command,omitempty"` // 未匹配时为 nil
	RawReply  string          `json:"rawReply,omitempty"`
	Status    string          `json:"status"`
	Response  string          `json:"response"`
	Elapsed   time.Duration   `json:"elapsed"`
}

// Transport 串口执行接口，由 device.SerialService 实现
type Transport interface {
	Execute(cmd device.Command) (string, time.Duration, error)
}

// Resolver 意图识别接口，由 IntentResolver 实现
type Resolver interface {
	Resolve(ctx context.Context, utterance string, recent []Turn) (device.Command, error)
}

// Phraser 可选的口语化改写接口，由 llm.Client 实现
type Phraser interface {
	Phrase(ctx context.Context, utterance, summary string) (string, error)
}

// DispatchAgent 调度状态机：
// IDLE → RESOLVING → EXECUTING → RESPONDING → IDLE。
// 识别或执行失败进入错误分支后仍然走 RESPONDING，
// 所有失败都渲染成回复，绝不静默丢弃，也不终止进程。
// 串口会话由本调度器独占，同一时刻只处理一条话语。
type DispatchAgent struct {
	transport    Transport
	resolver     Resolver
	phraser      Phraser // 可为 nil，nil 时只用模板回复
	conversation *Conversation
	contextTurns int
	state        State
	broadcast    func(string)
	onOutcome    func(*Outcome)
	mu           sync.Mutex
}

// Option 调度器可选配置
type Option func(*DispatchAgent)

// WithPhraser 启用回复的口语化改写
func WithPhraser(p Phraser) Option {
	return func(a *DispatchAgent) { a.phraser = p }
}

// WithBroadcast 设置事件广播函数
func WithBroadcast(f func(string)) Option {
	return func(a *DispatchAgent) { a.broadcast = f }
}

// WithOutcomeHandler 设置每轮结果的处理钩子（持久化、webhook 等）
func WithOutcomeHandler(f func(*Outcome)) Option {
	return func(a *DispatchAgent) { a.onOutcome = f }
}

// WithContextTurns 设置意图识别附带的近期对话轮数
func WithContextTurns(n int) Option {
	return func(a *DispatchAgent) { a.contextTurns = n }
}

// NewDispatchAgent 创建调度器
func NewDispatchAgent(transport Transport, resolver Resolver, opts ...Option) *DispatchAgent {
	a := &DispatchAgent{
		transport:    transport,
		resolver:     resolver,
		conversation: NewConversation(),
		contextTurns: 4,
		state:        StateIdle,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// HandleUtterance 处理一条话语并返回处理结果。
// 整轮处理持锁进行，保证串口上不会出现并发命令。
func (a *DispatchAgent) HandleUtterance(ctx context.Context, utterance string) *Outcome {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := &Outcome{Utterance: utterance}

	a.setState(StateResolving)
	cmd, err := a.resolver.Resolve(ctx, utterance, a.conversation.Recent(a.contextTurns))
	switch {
	case errors.Is(err, ErrNoMatch):
		out.Status = StatusNoMatch
	case errors.Is(err, ErrAssistantUnavailable):
		out.Status = StatusAssistantUnavailable
	case err != nil:
		// 未分类的识别错误一律按后端不可用上报
		out.Status = StatusAssistantUnavailable
	default:
		out.Command = &cmd
		a.setState(StateExecuting)
		a.executeCommand(out, cmd)
	}

	a.finishTurn(ctx, out)
	return out
}

// DispatchCommand 跳过意图识别，直接调度一条具名命令。
// 与 HandleUtterance 使用同一把锁，仍然满足串口独占。
func (a *DispatchAgent) DispatchCommand(ctx context.Context, cmd device.Command) *Outcome {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := &Outcome{Utterance: cmd.WireText, Command: &cmd}
	a.setState(StateExecuting)
	a.executeCommand(out, cmd)
	a.finishTurn(ctx, out)
	return out
}

// executeCommand 执行命令并归类结果，超时重试一次
func (a *DispatchAgent) executeCommand(out *Outcome, cmd device.Command) {
	reply, elapsed, err := a.transport.Execute(cmd)
	if errors.Is(err, device.ErrTimeout) {
		// 超时重试一次，使用完全相同的线文本；第二次超时即为本轮终态
		a.emit("timeout on %q, retrying once", cmd.WireText)
		var retryElapsed time.Duration
		reply, retryElapsed, err = a.transport.Execute(cmd)
		elapsed += retryElapsed
	}
	out.Elapsed = elapsed

	switch {
	case err == nil && cmd.ValidateReply(reply):
		out.RawReply = reply
		out.Status = StatusSuccess
	case err == nil:
		// 收到应答但内容不符合应答文法，设备已经糊涂了，不再重试
		out.RawReply = reply
		out.Status = StatusMalformedReply
	case errors.Is(err, device.ErrTimeout):
		out.Status = StatusTimeout
	default:
		// 断连和 I/O 故障需要操作员处理，不重试
		out.Status = StatusTransportError
	}
}

// finishTurn 渲染回复、追加对话并回到 IDLE
func (a *DispatchAgent) finishTurn(ctx context.Context, out *Outcome) {
	a.setState(StateResponding)
	out.Response = a.render(ctx, out)

	a.conversation.Append(Turn{
		Utterance: out.Utterance,
		Status:    out.Status,
		Response:  out.Response,
	})
	if a.onOutcome != nil {
		a.onOutcome(out)
	}

	a.setState(StateIdle)
}

// State 返回当前状态
func (a *DispatchAgent) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Conversation 返回会话状态，仅供调度器空闲时查看
func (a *DispatchAgent) Conversation() *Conversation {
	return a.conversation
}

func (a *DispatchAgent) setState(s State) {
	a.state = s
	a.emit("state: %s", s)
}

func (a *DispatchAgent) emit(format string, v ...any) {
	if a.broadcast != nil {
		a.broadcast(fmt.Sprintf("[agent] "+format, v...))
	}
}
