package service

import (
	"log"

	"github.com/rehiy/chat-led/agent"
	"github.com/rehiy/chat-led/database"
	"github.com/rehiy/chat-led/models"
)

// DispatchRecorder 调度结果处理器：持久化并触发 webhook
type DispatchRecorder struct {
	webhookService *WebhookService
}

// NewDispatchRecorder 创建调度结果处理器
func NewDispatchRecorder() *DispatchRecorder {
	return &DispatchRecorder{
		webhookService: NewWebhookService(),
	}
}

// Handle 处理一条调度结果，异步执行以避免阻塞调度循环
func (r *DispatchRecorder) Handle(out *agent.Outcome) {
	dispatch := outcomeToDispatch(out)

	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				log.Printf("[Recorder] Panic recovered: %v", rec)
			}
		}()

		if database.IsDispatchdbEnabled() {
			if err := database.CreateDispatch(dispatch); err != nil {
				log.Printf("[Recorder] Failed to save dispatch: %v", err)
			}
		}

		if database.IsWebhookEnabled() {
			if err := r.webhookService.TriggerWebhooks(dispatch); err != nil {
				log.Printf("[Webhook] Failed to trigger webhooks: %v", err)
			}
		}
	}()
}

// outcomeToDispatch 将调度结果转换为数据库模型
func outcomeToDispatch(out *agent.Outcome) *models.Dispatch {
	dispatch := &models.Dispatch{
		Utterance: out.Utterance,
		RawReply:  out.RawReply,
		Status:    out.Status,
		Response:  out.Response,
		ElapsedMs: out.Elapsed.Milliseconds(),
	}
	if out.Command != nil {
		dispatch.Command = out.Command.Name
		dispatch.WireText = out.Command.WireText
	}
	return dispatch
}
