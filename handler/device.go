package handler

import (
	"encoding/json"
	"net/http"

	"github.com/rehiy/chat-led/agent"
	"github.com/rehiy/chat-led/device"
	"github.com/rehiy/chat-led/models"
)

// DeviceHandler 设备处理器
type DeviceHandler struct {
	serial   *device.SerialService
	commands *device.CommandSet
	agent    *agent.DispatchAgent
}

// NewDeviceHandler 创建新的设备处理器
func NewDeviceHandler(serial *device.SerialService, commands *device.CommandSet, a *agent.DispatchAgent) *DeviceHandler {
	return &DeviceHandler{
		serial:   serial,
		commands: commands,
		agent:    a,
	}
}

// GetDeviceInfo 获取设备基本信息
func (h *DeviceHandler) GetDeviceInfo(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, models.DeviceInfo{
		Port:      h.serial.Name(),
		Baud:      h.serial.Baud(),
		Connected: h.serial.Connected(),
		Commands:  h.commands.Names(),
	})
}

// SendCommand 跳过意图识别，直接调度一条具名命令。
// 操作员排障入口，依然经过调度器以保持串口独占。
func (h *DeviceHandler) SendCommand(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, H{"error": err.Error()})
		return
	}

	cmd, err := h.commands.ResolveByName(req.Name)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, H{"error": err.Error()})
		return
	}

	out := h.agent.DispatchCommand(r.Context(), cmd)

	respondJSON(w, http.StatusOK, H{
		"command":   cmd.Name,
		"wireText":  cmd.WireText,
		"status":    out.Status,
		"rawReply":  out.RawReply,
		"response":  out.Response,
		"elapsedMs": out.Elapsed.Milliseconds(),
	})
}
