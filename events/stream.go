package events

import "sync"

var (
	streamOnce     sync.Once
	streamInstance *Stream
)

// Stream 调度事件的进程内广播：串口收发（">> led on"）、
// 调度器状态迁移和超时重试都以文本行的形式推给订阅者。
// 订阅者是旁观视角，收不全不影响调度本身。
type Stream struct {
	subscribers map[chan string]struct{}
	sync.RWMutex
}

// GetStream 返回事件流单例
func GetStream() *Stream {
	streamOnce.Do(func() {
		streamInstance = &Stream{subscribers: make(map[chan string]struct{})}
	})
	return streamInstance
}

// Publish 向所有订阅者推送一条事件。
// 发送不阻塞：订阅者缓冲已满时丢弃该订阅者的这条事件。
func (s *Stream) Publish(event string) {
	s.RLock()
	defer s.RUnlock()

	for ch := range s.subscribers {
		select {
		case ch <- event:
		default:
			// 订阅者跟不上，丢弃
		}
	}
}

// Subscribe 注册一个订阅者，返回事件通道和取消函数。
// 取消后通道被关闭，重复取消是无操作。
func (s *Stream) Subscribe(buffer int) (chan string, func()) {
	if buffer <= 0 {
		buffer = 100
	}
	ch := make(chan string, buffer)

	s.Lock()
	s.subscribers[ch] = struct{}{}
	s.Unlock()

	return ch, func() {
		s.Lock()
		defer s.Unlock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
	}
}
