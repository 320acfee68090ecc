package handler

import (
	"encoding/json"
	"net/http"

	"github.com/rehiy/chat-led/database"
)

// SettingHandler 设置处理器
type SettingHandler struct{}

// NewSettingHandler 创建新的设置处理器
func NewSettingHandler() *SettingHandler {
	return &SettingHandler{}
}

// GetSettings 获取所有设置
func (h *SettingHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := database.GetSettings()
	if err != nil {
		respondJSON(w, http.StatusInternalServerError, H{"error": err.Error()})
		return
	}

	respondJSON(w, http.StatusOK, settings)
}

// UpdateDispatchdbSettings 更新调度记录存储设置
func (h *SettingHandler) UpdateDispatchdbSettings(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DispatchdbEnabled bool `json:"dispatchdb_enabled"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, H{"error": err.Error()})
		return
	}

	if err := database.SetDispatchdbEnabled(req.DispatchdbEnabled); err != nil {
		respondJSON(w, http.StatusInternalServerError, H{"error": err.Error()})
		return
	}

	respondJSON(w, http.StatusOK, H{
		"status":             "updated",
		"dispatchdb_enabled": req.DispatchdbEnabled,
	})
}

// UpdateWebhookSettings 更新 Webhook 设置
func (h *SettingHandler) UpdateWebhookSettings(w http.ResponseWriter, r *http.Request) {
	var req struct {
		WebhookEnabled bool `json:"webhook_enabled"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, H{"error": err.Error()})
		return
	}

	if err := database.SetWebhookEnabled(req.WebhookEnabled); err != nil {
		respondJSON(w, http.StatusInternalServerError, H{"error": err.Error()})
		return
	}

	respondJSON(w, http.StatusOK, H{
		"status":          "updated",
		"webhook_enabled": req.WebhookEnabled,
	})
}
