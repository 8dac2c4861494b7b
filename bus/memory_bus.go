package bus

import (
	"fmt"
	"sync"

	"github.com/caomingyu/soulqun/message"
)

// MemoryBus is the in-memory Bus implementation. Broadcast is
// non-blocking: a subscriber whose buffer is full misses the message
// rather than stalling the session.
type MemoryBus struct {
	subscribers []chan *message.Message
	mu          sync.RWMutex
	isClosed    bool
}

func NewMemoryBus() Bus {
	return &MemoryBus{
		subscribers: make([]chan *message.Message, 0),
	}
}

func (b *MemoryBus) Broadcast(m *message.Message) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.isClosed {
		return fmt.Errorf("bus is closed")
	}
	for _, ch := range b.subscribers {
		select {
		case ch <- m:
		default:
			// Subscriber too slow, drop.
		}
	}
	return nil
}

func (b *MemoryBus) Subscribe() <-chan *message.Message {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan *message.Message, 16)
	if b.isClosed {
		close(ch)
		return ch
	}
	b.subscribers = append(b.subscribers, ch)
	return ch
}

// Close closes every subscriber channel. Further broadcasts fail.
func (b *MemoryBus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.isClosed {
		return
	}
	b.isClosed = true
	for _, ch := range b.subscribers {
		close(ch)
	}
	b.subscribers = nil
}

var _ Bus = (*MemoryBus)(nil)
