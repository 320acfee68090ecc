package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/rehiy/chat-led/database"
	"github.com/rehiy/chat-led/models"
)

// DispatchdbHandler 调度记录存储处理器
type DispatchdbHandler struct{}

// NewDispatchdbHandler 创建新的调度记录存储处理器
func NewDispatchdbHandler() *DispatchdbHandler {
	return &DispatchdbHandler{}
}

// ListDispatch 获取数据库中的调度记录列表
func (h *DispatchdbHandler) ListDispatch(w http.ResponseWriter, r *http.Request) {
	filter := &models.DispatchFilter{}

	// 解析查询参数
	if status := r.URL.Query().Get("status"); status != "" {
		filter.Status = status
	}

	if command := r.URL.Query().Get("command"); command != "" {
		filter.Command = command
	}

	if startTime := r.URL.Query().Get("start_time"); startTime != "" {
		if t, err := time.Parse(time.RFC3339, startTime); err == nil {
			filter.StartTime = t
		}
	}

	if endTime := r.URL.Query().Get("end_time"); endTime != "" {
		if t, err := time.Parse(time.RFC3339, endTime); err == nil {
			filter.EndTime = t
		}
	}

	// 分页参数
	filter.Limit = 50 // 默认每页50条
	if limit := r.URL.Query().Get("limit"); limit != "" {
		if l, err := strconv.Atoi(limit); err == nil && l > 0 && l <= 200 {
			filter.Limit = l
		}
	}

	if offset := r.URL.Query().Get("offset"); offset != "" {
		if o, err := strconv.Atoi(offset); err == nil && o >= 0 {
			filter.Offset = o
		}
	}

	dispatchList, total, err := database.GetDispatchList(filter)
	if err != nil {
		respondJSON(w, http.StatusInternalServerError, H{"error": err.Error()})
		return
	}

	respondJSON(w, http.StatusOK, H{
		"data":   dispatchList,
		"total":  total,
		"limit":  filter.Limit,
		"offset": filter.Offset,
	})
}

// DeleteDispatchBatch 批量删除数据库中的调度记录
func (h *DispatchdbHandler) DeleteDispatchBatch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IDs []int `json:"ids"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, H{"error": err.Error()})
		return
	}

	if len(req.IDs) == 0 {
		respondJSON(w, http.StatusBadRequest, H{"error": "no IDs provided"})
		return
	}

	if err := database.BatchDeleteDispatch(req.IDs); err != nil {
		respondJSON(w, http.StatusInternalServerError, H{"error": err.Error()})
		return
	}

	respondJSON(w, http.StatusOK, H{
		"status": "deleted",
		"count":  len(req.IDs),
	})
}
