package renderer

import (
	"sync"

	"github.com/caomingyu/soulqun/bus"
	"github.com/caomingyu/soulqun/session"
)

// Renderer consumes the session's message stream and produces some
// form of output.
type Renderer interface {
	// Render starts consuming messages from the bus. The goroutine it
	// spawns is tracked on wg and exits when the bus closes.
	Render(bus bus.Bus, wg *sync.WaitGroup) error

	// Finalize runs after the session has ended, with the final summary.
	Finalize(sum *session.Summary) error
}
