package llm

// Message 一条对话消息
type Message struct {
	Role    string `json:"role"` // system / user / assistant
	Content string `json:"content"`
}

// Tool 暴露给模型的工具定义
type Tool struct {
	Type     string       `json:"type"` // 固定为 function
	Function ToolFunction `json:"function"`
}

// ToolFunction 工具的名称、描述和参数模式
type ToolFunction struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// ToolCall 模型请求的一次工具调用
type ToolCall struct {
	Function FunctionCall `json:"function"`
}

// FunctionCall 被调用的函数名及参数
type FunctionCall struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// DecisionKind 模型输出类别
type DecisionKind int

const (
	DecisionText     DecisionKind = iota // 纯文本回复，未选择工具
	DecisionToolCall                     // 选择了一个工具
)

// Decision 模型输出的封闭联合：要么选中一个工具，要么是纯文本。
// 后端调用失败作为 error 返回，三种情况由调用方穷尽处理。
type Decision struct {
	Kind DecisionKind
	Tool string         // Kind 为 DecisionToolCall 时的工具名称
	Args map[string]any // 工具参数，可能为空
	Text string         // Kind 为 DecisionText 时的文本内容
}

// 请求与应答的线格式，兼容 ollama /api/chat
type chatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
	Tools    []Tool    `json:"tools,omitempty"`
	Stream   bool      `json:"stream"`
}

type chatResponse struct {
	Message struct {
		Role      string     `json:"role"`
		Content   string     `json:"content"`
		ToolCalls []ToolCall `json:"tool_calls"`
	} `json:"message"`
	Error string `json:"error"`
}
