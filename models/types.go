package models

// DeviceInfo 串口设备基本信息
type DeviceInfo struct {
	Port      string   `json:"port"`
	Baud      int      `json:"baud"`
	Connected bool     `json:"connected"`
	Commands  []string `json:"commands"`
}
