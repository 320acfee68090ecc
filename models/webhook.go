package models

import "time"

// Webhook 调度事件推送配置
type Webhook struct {
	ID        int       `json:"id" gorm:"primaryKey;autoIncrement"`
	Name      string    `json:"name"`
	URL       string    `json:"url"`
	Template  string    `json:"template"` // JSON 模板，支持 {{xxx}} 变量替换
	Enabled   bool      `json:"enabled"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
