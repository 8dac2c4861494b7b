// Package bus carries session messages to observers (renderers, log
// sinks) without giving them access to session state.
package bus

import (
	"github.com/caomingyu/soulqun/message"
)

// Bus is the message broadcast fan-out.
type Bus interface {
	Broadcast(m *message.Message) error
	Subscribe() <-chan *message.Message
	Close()
}
