package device

import (
	"bytes"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePort 脚本化的串口句柄
type fakePort struct {
	mu       sync.Mutex
	chunks   [][]byte // 每次 Read 返回一块
	readErr  error
	writeErr error
	written  bytes.Buffer
	closed   int
	availAt  time.Time // 在此时刻之前没有数据
}

func (p *fakePort) Read(buf []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.readErr != nil {
		return 0, p.readErr
	}
	if !p.availAt.IsZero() && time.Now().Before(p.availAt) {
		return 0, io.EOF
	}
	if len(p.chunks) == 0 {
		return 0, io.EOF
	}
	chunk := p.chunks[0]
	p.chunks = p.chunks[1:]
	n := copy(buf, chunk)
	return n, nil
}

func (p *fakePort) Write(data []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.writeErr != nil {
		return 0, p.writeErr
	}
	return p.written.Write(data)
}

func (p *fakePort) Flush() error { return nil }

func (p *fakePort) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed++
	return nil
}

func testService(port Port, timeout time.Duration) *SerialService {
	return NewSerialService("/dev/ttyTEST", 9600, timeout, port, nil)
}

func turnOnCmd(t *testing.T) Command {
	cmd, err := NewCommandSet(testGrammar()).ResolveByName(CmdTurnOn)
	require.NoError(t, err)
	return cmd
}

func TestExecuteSuccess(t *testing.T) {
	port := &fakePort{chunks: [][]byte{[]byte("LED ON\n")}}
	s := testService(port, time.Second)

	reply, elapsed, err := s.Execute(turnOnCmd(t))
	require.NoError(t, err)
	assert.Equal(t, "LED ON", reply)
	assert.Equal(t, "led on\n", port.written.String())
	assert.Greater(t, elapsed, time.Duration(0))
}

// 固件回显命令和提示符的行要被跳过
func TestExecuteSkipsEchoAndPrompt(t *testing.T) {
	port := &fakePort{chunks: [][]byte{
		[]byte("led on\n"),
		[]byte(">\n"),
		[]byte("LED ON\n"),
	}}
	s := testService(port, time.Second)

	reply, _, err := s.Execute(turnOnCmd(t))
	require.NoError(t, err)
	assert.Equal(t, "LED ON", reply)
}

// 只有与发送内容逐字节相同的行才是回显，
// 仅大小写不同的应答（"LED ON" 对 "led on"）必须原样返回
func TestExecuteReplyDiffersOnlyInCase(t *testing.T) {
	port := &fakePort{chunks: [][]byte{
		[]byte("led on\n"),
		[]byte("LED ON\n"),
	}}
	s := testService(port, time.Second)

	reply, _, err := s.Execute(turnOnCmd(t))
	require.NoError(t, err)
	assert.Equal(t, "LED ON", reply)
}

// 应答分多次到达也能拼出完整一行
func TestExecuteFragmentedReply(t *testing.T) {
	port := &fakePort{chunks: [][]byte{
		[]byte("LED"),
		[]byte(" ON"),
		[]byte("\n"),
	}}
	s := testService(port, time.Second)

	reply, _, err := s.Execute(turnOnCmd(t))
	require.NoError(t, err)
	assert.Equal(t, "LED ON", reply)
}

// 超时之后才到达的应答不算成功
func TestExecuteTimeout(t *testing.T) {
	port := &fakePort{
		chunks:  [][]byte{[]byte("LED ON\n")},
		availAt: time.Now().Add(300 * time.Millisecond),
	}
	s := testService(port, 80*time.Millisecond)

	_, _, err := s.Execute(turnOnCmd(t))
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestExecuteWriteError(t *testing.T) {
	port := &fakePort{writeErr: errors.New("device unplugged")}
	s := testService(port, time.Second)

	_, _, err := s.Execute(turnOnCmd(t))
	assert.ErrorIs(t, err, ErrTransport)
}

func TestExecuteReadError(t *testing.T) {
	port := &fakePort{readErr: errors.New("input/output error")}
	s := testService(port, time.Second)

	_, _, err := s.Execute(turnOnCmd(t))
	assert.ErrorIs(t, err, ErrTransport)
}

func TestExecuteAfterClose(t *testing.T) {
	port := &fakePort{}
	s := testService(port, time.Second)

	s.Close()
	_, _, err := s.Execute(turnOnCmd(t))
	assert.ErrorIs(t, err, ErrSessionClosed)
}

// 重复关闭是无操作
func TestCloseIdempotent(t *testing.T) {
	port := &fakePort{}
	s := testService(port, time.Second)

	assert.True(t, s.Connected())
	s.Close()
	s.Close()
	s.Close()
	assert.False(t, s.Connected())
	assert.Equal(t, 1, port.closed)
}

func TestCheck(t *testing.T) {
	set := NewCommandSet(testGrammar())
	status, err := set.ResolveByName(CmdStatus)
	require.NoError(t, err)

	port := &fakePort{chunks: [][]byte{[]byte("LED is ON\n")}}
	s := testService(port, time.Second)
	assert.NoError(t, s.Check(status))

	bad := &fakePort{chunks: [][]byte{[]byte("garbage\n")}}
	s = testService(bad, time.Second)
	assert.Error(t, s.Check(status))
}
