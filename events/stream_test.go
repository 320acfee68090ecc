package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStream() *Stream {
	return &Stream{subscribers: make(map[chan string]struct{})}
}

func TestPublishDelivers(t *testing.T) {
	s := newStream()
	ch, unsubscribe := s.Subscribe(10)
	defer unsubscribe()

	s.Publish(">> led on")
	s.Publish("<< LED ON")

	assert.Equal(t, ">> led on", <-ch)
	assert.Equal(t, "<< LED ON", <-ch)
}

// 缓冲已满时丢弃事件而不是阻塞发布方
func TestPublishDropsWhenFull(t *testing.T) {
	s := newStream()
	slow, unsubSlow := s.Subscribe(1)
	defer unsubSlow()
	fast, unsubFast := s.Subscribe(10)
	defer unsubFast()

	s.Publish("first")
	s.Publish("second")

	assert.Equal(t, "first", <-slow)
	assert.Empty(t, slow) // 第二条被丢弃
	assert.Equal(t, "first", <-fast)
	assert.Equal(t, "second", <-fast)
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	s := newStream()
	ch, unsubscribe := s.Subscribe(1)

	unsubscribe()
	_, ok := <-ch
	assert.False(t, ok)

	// 重复取消是无操作
	unsubscribe()
	s.Publish("after unsubscribe")
}

func TestSubscribeDefaultBuffer(t *testing.T) {
	s := newStream()
	ch, unsubscribe := s.Subscribe(0)
	defer unsubscribe()

	require.Equal(t, 100, cap(ch))
}
