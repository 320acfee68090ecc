package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rehiy/chat-led/agent"
)

// ChatHandler 对话处理器
type ChatHandler struct {
	agent *agent.DispatchAgent
}

// NewChatHandler 创建新的对话处理器
func NewChatHandler(a *agent.DispatchAgent) *ChatHandler {
	return &ChatHandler{agent: a}
}

// HandleChat 接收一条话语，返回处理结果
func (h *ChatHandler) HandleChat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, H{"error": err.Error()})
		return
	}

	utterance := strings.TrimSpace(req.Message)
	if utterance == "" {
		respondJSON(w, http.StatusBadRequest, H{"error": "message is empty"})
		return
	}

	out := h.agent.HandleUtterance(r.Context(), utterance)

	respondJSON(w, http.StatusOK, H{
		"utterance": out.Utterance,
		"status":    out.Status,
		"response":  out.Response,
		"rawReply":  out.RawReply,
		"elapsedMs": out.Elapsed.Milliseconds(),
	})
}
