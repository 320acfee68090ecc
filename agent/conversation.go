package agent

import "time"

// Turn 一轮完整的对话：话语、处理结果和渲染后的回复
type Turn struct {
	Utterance string    `json:"utterance"`
	Status    string    `json:"status"`
	Response  string    `json:"response"`
	Time      time.Time `json:"time"`
}

// Conversation 进程内对话状态，按顺序追加，进程结束即丢弃。
// 只由 DispatchAgent 在持锁状态下访问，自身不做并发保护。
type Conversation struct {
	turns []Turn
}

// NewConversation 创建空会话
func NewConversation() *Conversation {
	return &Conversation{}
}

// Append 追加一轮对话
func (c *Conversation) Append(t Turn) {
	if t.Time.IsZero() {
		t.Time = time.Now()
	}
	c.turns = append(c.turns, t)
}

// Recent 返回最近 n 轮对话，用于指代消解
func (c *Conversation) Recent(n int) []Turn {
	if n <= 0 || len(c.turns) == 0 {
		return nil
	}
	if n > len(c.turns) {
		n = len(c.turns)
	}
	out := make([]Turn, n)
	copy(out, c.turns[len(c.turns)-n:])
	return out
}

// Len 返回对话轮数
func (c *Conversation) Len() int {
	return len(c.turns)
}
