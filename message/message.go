package message

import (
	"time"

	"github.com/caomingyu/soulqun/persona"
)

type Kind string

const (
	KindSystem  Kind = "system"
	KindUser    Kind = "user"
	KindPersona Kind = "persona"
	KindLog     Kind = "log"
)

// Message is one entry of a session's history. Messages are append-only
// and never mutated after creation.
type Message struct {
	Kind Kind
	// From is the speaking persona. Nil for user and system messages.
	From *persona.Persona
	Text string
	At   time.Time

	// Breakdown marks a scripted distress reply emitted when a persona's
	// emotion crossed the breakdown threshold this turn.
	Breakdown bool
	// Betrayal marks a public stance reversal.
	Betrayal bool
	// MultiPart marks one bubble of a reply that was split into several
	// sequential messages.
	MultiPart bool
}

func (m *Message) IsSystem() bool {
	return m.Kind == KindSystem || m.Kind == KindLog
}

// PersonaId returns the owning persona id, or "" for user/system messages.
func (m *Message) PersonaId() string {
	if m.From == nil {
		return ""
	}
	return m.From.PersonaId
}
