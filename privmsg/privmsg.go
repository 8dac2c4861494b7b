// Package privmsg implements the side-channel: a persona privately
// messages the user about another persona, the user picks one of three
// responses, and the consequences feed back into the session.
package privmsg

import (
	"errors"
	"fmt"

	"github.com/caomingyu/soulqun/persona"
	"github.com/caomingyu/soulqun/rng"
	"github.com/google/uuid"
)

// Trigger probability model. The bonuses are summed into a single
// draw, they are not rolled independently.
const (
	baseTriggerChance = 0.25
	rivalryBoost      = 0.15
	lowEmotionBoost   = 0.1
	conflictBoost     = 0.1
	lowEmotionBelow   = 40
)

// ErrStaleChoice is returned when a private message is resolved twice
// or with an out-of-range choice. Resolution is idempotent: a stale
// resolve has no side effects.
var ErrStaleChoice = errors.New("private message already resolved or invalid choice")

// Type classifies a private message.
type Type string

const (
	TypeAlliance     Type = "alliance"
	TypeGossip       Type = "gossip"
	TypeComplaint    Type = "complaint"
	TypeSecret       Type = "secret"
	TypeBetrayalHint Type = "betrayal"
	TypeManipulation Type = "manipulation"
)

var allTypes = []Type{TypeAlliance, TypeGossip, TypeComplaint, TypeSecret, TypeBetrayalHint, TypeManipulation}

// Consequence is what one choice does to the world.
type Consequence struct {
	SenderEmotion int
	TargetEmotion int
	Relation      int
	Description   string
}

// Event is a pending private message. It is consumed exactly once by
// the user's choice.
type Event struct {
	ID           string
	SenderId     string
	TargetId     string
	Type         Type
	Body         string
	Options      [3]string
	Consequences [3]Consequence

	resolved bool
}

// Result is the outcome of resolving an event.
type Result struct {
	Choice         string
	Consequence    Consequence
	Exposed        bool
	AllianceFormed bool
}

// ChoiceRecord is one entry of the immutable choice log.
type ChoiceRecord struct {
	Event  *Event
	Choice int
	Result *Result
}

// Engine generates and resolves private messages for one session.
type Engine struct {
	store *persona.Store
	rng   rng.Source

	choices   []ChoiceRecord
	alliances map[string]bool
}

func NewEngine(store *persona.Store, r rng.Source) *Engine {
	return &Engine{
		store:     store,
		rng:       r,
		alliances: make(map[string]bool),
	}
}

// MaybeTrigger rolls whether the sender slides into the user's DMs this
// turn. Rivals in the room, a low mood and fresh conflict each raise
// the summed probability; a single draw decides.
func (e *Engine) MaybeTrigger(senderId string, otherIds []string, emotionValue int, recentConflict bool) bool {
	chance := baseTriggerChance
	for _, other := range otherIds {
		if e.store.IsRival(senderId, other) {
			chance += rivalryBoost
		}
	}
	if emotionValue < lowEmotionBelow {
		chance += lowEmotionBoost
	}
	if recentConflict {
		chance += conflictBoost
	}
	return e.rng.Float64() < chance
}

// Generate builds a private message from sender about target. The
// message type is conditioned on their relationship, the body comes
// from canned templates, and the three options map onto the fixed
// consequence table.
func (e *Engine) Generate(senderId, targetId string) *Event {
	rel := e.store.Relationship(senderId, targetId)

	var pool []Type
	switch rel.Type {
	case "rivalry":
		pool = []Type{TypeAlliance, TypeGossip}
	case "mutual_respect", "sisters":
		pool = []Type{TypeGossip, TypeSecret}
	default:
		pool = allTypes
	}
	msgType := pool[e.rng.Intn(len(pool))]

	body, options := e.renderTemplate(msgType, senderId, targetId, rel)

	return &Event{
		ID:       uuid.NewString(),
		SenderId: senderId,
		TargetId: targetId,
		Type:     msgType,
		Body:     body,
		Options:  options,
		Consequences: [3]Consequence{
			{SenderEmotion: +10, Relation: +5, Description: fmt.Sprintf("你选择站在%s这边", e.store.DisplayName(senderId))},
			{Description: "你保持中立"},
			{SenderEmotion: -20, Relation: -15, TargetEmotion: +5, Description: "你选择了一个危险的选项..."},
		},
	}
}

// Resolve applies the chosen consequence and logs the choice. A second
// resolve of the same event, or a choice outside 0..2, is rejected
// with ErrStaleChoice and changes nothing.
func (e *Engine) Resolve(ev *Event, choice int) (*Result, error) {
	if ev == nil || ev.resolved || choice < 0 || choice > 2 {
		return nil, ErrStaleChoice
	}
	ev.resolved = true

	result := &Result{
		Choice:         ev.Options[choice],
		Consequence:    ev.Consequences[choice],
		Exposed:        choice == 2,
		AllianceFormed: choice == 0 && ev.Type == TypeAlliance,
	}
	if result.AllianceFormed {
		e.alliances[ev.SenderId] = true
	}
	e.choices = append(e.choices, ChoiceRecord{Event: ev, Choice: choice, Result: result})
	return result, nil
}

// AlliedWith reports whether the user has formed an alliance with the
// given persona this session.
func (e *Engine) AlliedWith(personaId string) bool {
	return e.alliances[personaId]
}

// ChoiceLog returns the session's choice records in order.
func (e *Engine) ChoiceLog() []ChoiceRecord {
	return e.choices
}

// ExposedCount returns how many private messages the user leaked to
// the group.
func (e *Engine) ExposedCount() int {
	n := 0
	for _, c := range e.choices {
		if c.Result.Exposed {
			n++
		}
	}
	return n
}

// ExposureAnnouncement renders the group-chat message shown when the
// user screenshots a private message into the room.
func (e *Engine) ExposureAnnouncement(ev *Event) string {
	sender := e.store.DisplayName(ev.SenderId)
	return fmt.Sprintf(
		"🚨 【截图警告】用户把私聊截图发到群里了！\n\n%s的私信内容：\n「%s」\n\n看来%s背后有话想说呢...",
		sender, ev.Body, sender,
	)
}
