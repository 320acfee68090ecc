package device

import (
	"errors"
	"time"
)

const (
	// 命令名称
	CmdTurnOn  = "TURN_ON"
	CmdTurnOff = "TURN_OFF"
	CmdStatus  = "STATUS"

	// 串口发送文本
	wireTurnOn  = "led on"
	wireTurnOff = "led off"
	wireStatus  = "status"

	// 固件默认应答标记，可通过环境变量覆盖
	defaultReplyOn        = "LED ON"
	defaultReplyOff       = "LED OFF"
	defaultReplyStatusOn  = "ON"
	defaultReplyStatusOff = "OFF"

	// 延迟和超时
	DefaultBaudRate = 9600
	DefaultTimeout  = 3 * time.Second
	bufferSize      = 128
	readInterval    = 20 * time.Millisecond
	connectDelay    = 2 * time.Second
)

var (
	// 常用错误
	ErrPortUnavailable = errors.New("serial port unavailable")
	ErrTimeout         = errors.New("reply timeout")
	ErrTransport       = errors.New("transport failure")
	ErrSessionClosed   = errors.New("session closed")
	ErrCommandNotFound = errors.New("command not found")
)
