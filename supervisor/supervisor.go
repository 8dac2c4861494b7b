// Package supervisor watches the message stream and signals shutdown
// once the session has run its allotted number of turns.
package supervisor

import (
	"context"
	"sync"

	"github.com/caomingyu/soulqun/bus"
	"github.com/caomingyu/soulqun/message"
)

// Supervisor counts user turns on the bus and cancels the session
// context once the cap is reached. A cap of zero means no limit.
type Supervisor struct {
	maxTurns   int
	turnCount  int
	bus        bus.Bus
	cancelFunc context.CancelFunc
	mu         sync.Mutex
}

func NewSupervisor(maxTurns int, b bus.Bus, cancelFunc context.CancelFunc) *Supervisor {
	return &Supervisor{
		maxTurns:   maxTurns,
		bus:        b,
		cancelFunc: cancelFunc,
	}
}

// Start begins watching. The goroutine exits when the bus closes or
// the cap fires.
func (s *Supervisor) Start() {
	if s.maxTurns <= 0 {
		return
	}
	ch := s.bus.Subscribe()

	go func() {
		for msg := range ch {
			if msg.Kind != message.KindUser {
				continue
			}

			s.mu.Lock()
			s.turnCount++
			if s.turnCount >= s.maxTurns {
				s.cancelFunc()
				s.mu.Unlock()
				return
			}
			s.mu.Unlock()
		}
	}()
}

// CurrentTurn returns the number of user turns seen so far.
func (s *Supervisor) CurrentTurn() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.turnCount
}

// MaxTurns returns the configured cap.
func (s *Supervisor) MaxTurns() int {
	return s.maxTurns
}
