package models

import "time"

// Dispatch 一次话语调度的持久化记录
type Dispatch struct {
	ID        int       `json:"id" gorm:"primaryKey;autoIncrement"`
	Utterance string    `json:"utterance"`
	Command   string    `json:"command"`   // 命令名称，未匹配时为空
	WireText  string    `json:"wireText"`  // 实际发送的串口文本
	RawReply  string    `json:"rawReply"`  // 设备原始应答
	Status    string    `json:"status"`    // success / no_match / timeout / transport_error / malformed_reply / assistant_unavailable
	Response  string    `json:"response"`  // 渲染后的自然语言回复
	ElapsedMs int64     `json:"elapsedMs"` // 串口往返耗时（毫秒）
	CreatedAt time.Time `json:"createdAt"`
}

// DispatchFilter 调度记录查询条件
type DispatchFilter struct {
	Status    string    `json:"status"`
	Command   string    `json:"command"`
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
	Limit     int       `json:"limit"`
	Offset    int       `json:"offset"`
}
