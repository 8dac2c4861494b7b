// Package llm is the persona responder capability: given a persona, a
// topic and the recent history, produce one line of dialogue. The core
// treats implementations as opaque; any transport failure must surface
// as ErrUnavailable so the session can fall back gracefully.
package llm

import (
	"context"
	"errors"

	"github.com/caomingyu/soulqun/message"
	"github.com/caomingyu/soulqun/persona"
)

// ErrUnavailable wraps any transport or timeout failure of a responder
// backend. The session substitutes a fallback line and continues; the
// error is logged, never surfaced to the end user.
var ErrUnavailable = errors.New("persona responder unavailable")

// ReplyInput carries everything a backend needs to speak in character.
type ReplyInput struct {
	Persona      *persona.Persona
	OtherName    string // the other persona in the room
	Relationship string // description of the relation to OtherName
	Topic        string
	UserText     string
	EmotionValue int
	StyleHint    string // emotion-level stylistic modifier
	Turn         int
	// RecentHistory is the last few messages, oldest first.
	RecentHistory []*message.Message
}

// Responder generates a persona's reply for one turn.
type Responder interface {
	Reply(ctx context.Context, in ReplyInput) (string, error)
}
