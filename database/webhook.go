package database

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/rehiy/chat-led/models"
)

// CreateWebhook 新增一条调度事件推送配置
func CreateWebhook(webhook *models.Webhook) error {
	if err := db.Create(webhook).Error; err != nil {
		return fmt.Errorf("failed to create webhook: %w", err)
	}
	return nil
}

// UpdateWebhook 覆盖保存推送配置
func UpdateWebhook(webhook *models.Webhook) error {
	ret := db.Save(webhook)
	if ret.Error != nil {
		return fmt.Errorf("failed to update webhook: %w", ret.Error)
	}
	if ret.RowsAffected == 0 {
		return fmt.Errorf("webhook not found")
	}
	return nil
}

// DeleteWebhook 根据数据库ID删除推送配置
func DeleteWebhook(id int) error {
	ret := db.Delete(&models.Webhook{}, id)
	if ret.Error != nil {
		return fmt.Errorf("failed to delete webhook: %w", ret.Error)
	}
	if ret.RowsAffected == 0 {
		return fmt.Errorf("webhook not found")
	}
	return nil
}

// GetWebhook 根据数据库ID查询推送配置
func GetWebhook(id int) (*models.Webhook, error) {
	var webhook models.Webhook
	if err := db.First(&webhook, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("webhook not found")
		}
		return nil, fmt.Errorf("failed to get webhook: %w", err)
	}
	return &webhook, nil
}

// GetWebhookList 查询全部推送配置，最新的排在最前
func GetWebhookList() ([]models.Webhook, error) {
	var webhooks []models.Webhook
	if err := db.Order("created_at DESC").Find(&webhooks).Error; err != nil {
		return nil, fmt.Errorf("failed to query webhooks: %w", err)
	}
	return webhooks, nil
}

// GetEnabledWebhookList 查询启用中的推送配置，调度结果只推给这部分
func GetEnabledWebhookList() ([]models.Webhook, error) {
	var webhooks []models.Webhook
	if err := db.Where("enabled = ?", true).Order("created_at DESC").Find(&webhooks).Error; err != nil {
		return nil, fmt.Errorf("failed to query enabled webhooks: %w", err)
	}
	return webhooks, nil
}
