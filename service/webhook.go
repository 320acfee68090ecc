package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rehiy/chat-led/database"
	"github.com/rehiy/chat-led/models"
)

// WebhookService webhook服务
type WebhookService struct{}

var (
	webhookCache     []models.Webhook
	webhookCacheTime time.Time
	webhookCacheMux  sync.RWMutex
	cacheTTL         = 30 * time.Second // 缓存30秒
)

// NewWebhookService 创建webhook服务
func NewWebhookService() *WebhookService {
	return &WebhookService{}
}

// getCachedWebhooks 获取缓存的webhook列表
func (w *WebhookService) getCachedWebhooks() ([]models.Webhook, error) {
	webhookCacheMux.RLock()
	if time.Since(webhookCacheTime) < cacheTTL && len(webhookCache) > 0 {
		webhooks := webhookCache
		webhookCacheMux.RUnlock()
		return webhooks, nil
	}
	webhookCacheMux.RUnlock()

	// 缓存过期或为空，重新查询
	webhooks, err := database.GetEnabledWebhookList()
	if err != nil {
		return nil, fmt.Errorf("failed to get enabled webhooks: %w", err)
	}

	webhookCacheMux.Lock()
	webhookCache = webhooks
	webhookCacheTime = time.Now()
	webhookCacheMux.Unlock()

	return webhooks, nil
}

// TriggerWebhooks 为一条调度记录触发所有启用的webhook
func (w *WebhookService) TriggerWebhooks(dispatch *models.Dispatch) error {
	webhooks, err := w.getCachedWebhooks()
	if err != nil {
		return err
	}

	if len(webhooks) == 0 {
		return nil
	}

	// 使用并发控制触发webhook
	var wg sync.WaitGroup
	semaphore := make(chan struct{}, 5) // 限制并发数为5

	for _, webhook := range webhooks {
		wg.Add(1)
		semaphore <- struct{}{} // 获取信号量

		go func(wh models.Webhook) {
			defer wg.Done()
			defer func() { <-semaphore }() // 释放信号量

			w.triggerWebhook(&wh, dispatch)
		}(webhook)
	}

	wg.Wait()
	log.Printf("[Webhook] Triggered %d webhooks for dispatch", len(webhooks))

	return nil
}

// triggerWebhook 触发单个webhook，支持重试机制
func (w *WebhookService) triggerWebhook(webhook *models.Webhook, dispatch *models.Dispatch) error {
	maxRetries := 3
	retryDelay := 2 * time.Second

	// 准备payload，模板错误不重试
	payload, err := w.preparePayload(webhook, dispatch)
	if err != nil {
		log.Printf("[Webhook] Failed to prepare payload for %s: %v", webhook.Name, err)
		return err
	}

	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			log.Printf("[Webhook] Retry attempt %d for webhook %s", attempt, webhook.Name)
			time.Sleep(retryDelay)
			retryDelay *= 2 // 指数退避
		}

		status, err := w.deliver(webhook, payload, 30*time.Second)
		if err != nil {
			log.Printf("[Webhook] Failed to send request to %s (attempt %d): %v", webhook.Name, attempt+1, err)
			continue // 网络错误重试
		}

		if status >= 200 && status < 300 {
			log.Printf("[Webhook] Successfully triggered %s (status: %d)", webhook.Name, status)
			return nil
		}

		log.Printf("[Webhook] Failed to trigger %s (status: %d, attempt %d)", webhook.Name, status, attempt+1)

		// 如果是服务器错误(5xx)，重试
		if status >= 500 && status < 600 {
			continue
		}
		// 如果是客户端错误(4xx)，不重试
		break
	}

	log.Printf("[Webhook] All %d attempts failed for webhook %s", maxRetries, webhook.Name)
	return fmt.Errorf("failed to trigger webhook %s after %d attempts", webhook.Name, maxRetries)
}

// deliver 发送一次webhook请求，返回HTTP状态码
func (w *WebhookService) deliver(webhook *models.Webhook, payload []byte, timeout time.Duration) (int, error) {
	client := &http.Client{Timeout: timeout}

	req, err := http.NewRequest("POST", webhook.URL, bytes.NewBuffer(payload))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "Chat-LED/1.0")

	resp, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	resp.Body.Close()

	return resp.StatusCode, nil
}

// preparePayload 准备webhook payload
func (w *WebhookService) preparePayload(webhook *models.Webhook, dispatch *models.Dispatch) ([]byte, error) {
	// 如果template为空或不是有效的JSON，使用默认模板
	if webhook.Template == "" || webhook.Template == "{}" {
		return w.getDefaultPayload(dispatch)
	}

	// 尝试解析模板
	var template map[string]interface{}
	if err := json.Unmarshal([]byte(webhook.Template), &template); err != nil {
		// 如果模板解析失败，使用默认模板
		log.Printf("[Webhook] Invalid template for %s, using default: %v", webhook.Name, err)
		return w.getDefaultPayload(dispatch)
	}

	// 替换模板中的变量
	payload := w.replaceTemplateVariables(template, dispatch)

	return json.Marshal(payload)
}

// getDefaultPayload 获取默认payload
func (w *WebhookService) getDefaultPayload(dispatch *models.Dispatch) ([]byte, error) {
	payload := map[string]interface{}{
		"event": "command_dispatched",
		"data": map[string]interface{}{
			"id":         dispatch.ID,
			"utterance":  dispatch.Utterance,
			"command":    dispatch.Command,
			"wire_text":  dispatch.WireText,
			"raw_reply":  dispatch.RawReply,
			"status":     dispatch.Status,
			"response":   dispatch.Response,
			"elapsed_ms": dispatch.ElapsedMs,
		},
		"timestamp": time.Now().Unix(),
	}

	return json.Marshal(payload)
}

// replaceTemplateVariables 替换模板中的变量
func (w *WebhookService) replaceTemplateVariables(template map[string]interface{}, dispatch *models.Dispatch) map[string]interface{} {
	result := make(map[string]interface{})

	for key, value := range template {
		switch v := value.(type) {
		case string:
			result[key] = w.replaceStringVariables(v, dispatch)
		case map[string]interface{}:
			result[key] = w.replaceTemplateVariables(v, dispatch)
		default:
			result[key] = value
		}
	}

	return result
}

// replaceStringVariables 替换字符串中的变量
func (w *WebhookService) replaceStringVariables(s string, dispatch *models.Dispatch) string {
	replacements := map[string]string{
		"{{utterance}}":  dispatch.Utterance,
		"{{command}}":    dispatch.Command,
		"{{wire_text}}":  dispatch.WireText,
		"{{raw_reply}}":  dispatch.RawReply,
		"{{status}}":     dispatch.Status,
		"{{response}}":   dispatch.Response,
		"{{elapsed_ms}}": fmt.Sprintf("%d", dispatch.ElapsedMs),
	}

	for old, new := range replacements {
		s = strings.ReplaceAll(s, old, new)
	}

	return s
}

// TestWebhook 用样例数据测试webhook。
// 测试是交互操作，只发送一次且使用短超时，失败直接上报不重试。
func (w *WebhookService) TestWebhook(webhook *models.Webhook) error {
	testDispatch := &models.Dispatch{
		ID:        0,
		Utterance: "please turn on the led",
		Command:   "TURN_ON",
		WireText:  "led on",
		RawReply:  "LED ON",
		Status:    "success",
		Response:  "Done, the LED is now on.",
		ElapsedMs: 42,
		CreatedAt: time.Now(),
	}

	payload, err := w.preparePayload(webhook, testDispatch)
	if err != nil {
		return err
	}

	status, err := w.deliver(webhook, payload, 10*time.Second)
	if err != nil {
		return fmt.Errorf("failed to deliver test webhook %s: %w", webhook.Name, err)
	}
	if status < 200 || status >= 300 {
		return fmt.Errorf("test webhook %s returned status %d", webhook.Name, status)
	}
	return nil
}
