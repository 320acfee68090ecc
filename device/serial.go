package device

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/tarm/serial"
)

// Port 串口句柄的最小抽象，*serial.Port 满足该接口
type Port interface {
	io.ReadWriteCloser
	Flush() error
}

// SerialService 封装了与设备的单个串口会话。
// 协议是半双工的请求/应答：每发送一行命令，期待恰好一行应答，
// 命令与应答之间没有消息编号，只靠时间顺序关联，
// 因此会话在整个进程中只有一个，并且串行化所有读写。
type SerialService struct {
	name      string
	baud      int
	timeout   time.Duration
	port      Port
	broadcast func(string)
	sync.Mutex
}

// Open 打开串口并建立会话。
// 打开失败归类为 ErrPortUnavailable，由调用方在启动时视为致命错误。
func Open(name string, baud int, timeout time.Duration, broadcast func(string)) (*SerialService, error) {
	port, err := serial.OpenPort(&serial.Config{
		Name: name, Baud: baud, ReadTimeout: readInterval,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrPortUnavailable, name, err)
	}

	// 部分开发板在打开串口时复位，等待固件就绪
	time.Sleep(connectDelay)

	log.Printf("[serial] connected to %s at %d baud", name, baud)
	return NewSerialService(name, baud, timeout, port, broadcast), nil
}

// NewSerialService 基于已打开的端口创建会话
func NewSerialService(name string, baud int, timeout time.Duration, port Port, broadcast func(string)) *SerialService {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &SerialService{
		name:      name,
		baud:      baud,
		timeout:   timeout,
		port:      port,
		broadcast: broadcast,
	}
}

// Execute 发送一条命令并读取一行应答。
// 超时返回 ErrTimeout，底层读写故障返回 ErrTransport。
func (s *SerialService) Execute(cmd Command) (string, time.Duration, error) {
	s.Lock()
	defer s.Unlock()

	start := time.Now()
	if s.port == nil {
		return "", 0, ErrSessionClosed
	}

	// 丢弃残留数据，保证下一行应答对应本次命令
	_ = s.port.Flush()

	if _, err := s.port.Write([]byte(cmd.WireText + "\n")); err != nil {
		return "", time.Since(start), fmt.Errorf("%w: write: %v", ErrTransport, err)
	}
	s.emit(">> %s", cmd.WireText)

	reply, err := s.readReply(cmd, start.Add(s.timeout))
	if err != nil {
		return "", time.Since(start), err
	}
	s.emit("<< %s", reply)

	return reply, time.Since(start), nil
}

// readReply 在截止时间前读取一行有效应答。
// 固件可能回显命令本身或输出提示符，这些行会被跳过。
func (s *SerialService) readReply(cmd Command, deadline time.Time) (string, error) {
	buf := make([]byte, bufferSize)
	var acc []byte

	for {
		if time.Now().After(deadline) {
			return "", fmt.Errorf("%w: no reply to %q within %v", ErrTimeout, cmd.WireText, s.timeout)
		}

		n, err := s.port.Read(buf)
		if n > 0 {
			acc = append(acc, buf[:n]...)
			for {
				i := bytes.IndexByte(acc, '\n')
				if i < 0 {
					break
				}
				line := strings.TrimSpace(string(acc[:i]))
				acc = acc[i+1:]
				if line == "" || isEcho(line, cmd.WireText) || isPrompt(line) {
					continue
				}
				return line, nil
			}
		}
		if err != nil && err != io.EOF {
			return "", fmt.Errorf("%w: read: %v", ErrTransport, err)
		}
		if n == 0 {
			time.Sleep(readInterval)
		}
	}
}

// Check 发送命令并校验应答，用于启动自检
func (s *SerialService) Check(cmd Command) error {
	reply, _, err := s.Execute(cmd)
	if err != nil {
		return err
	}
	if !cmd.ValidateReply(reply) {
		return fmt.Errorf("%w: unexpected reply to %q: %s", ErrTransport, cmd.WireText, reply)
	}
	return nil
}

// Close 关闭串口会话，重复关闭是无操作
func (s *SerialService) Close() {
	s.Lock()
	defer s.Unlock()

	if s.port == nil {
		return
	}
	_ = s.port.Close()
	s.port = nil
	log.Printf("[serial] connection to %s closed", s.name)
}

// Name 返回串口路径
func (s *SerialService) Name() string {
	return s.name
}

// Baud 返回波特率
func (s *SerialService) Baud() int {
	return s.baud
}

// Connected 返回会话是否打开
func (s *SerialService) Connected() bool {
	s.Lock()
	defer s.Unlock()
	return s.port != nil
}

func (s *SerialService) emit(format string, v ...any) {
	if s.broadcast != nil {
		s.broadcast(fmt.Sprintf("[%s] ", s.name) + fmt.Sprintf(format, v...))
	}
}

// isEcho 判断是否为命令回显行。
// 回显逐字节重复发送内容，必须精确比较：
// 应答可能只在大小写上区别于命令（如 "led on" 对 "LED ON"），不能误吞。
func isEcho(line, wireText string) bool {
	return line == wireText
}

// isPrompt 判断是否为固件提示符行
func isPrompt(line string) bool {
	return line == ">" || line == "$" || line == "#"
}
