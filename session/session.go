// Package session coordinates one active conversation: the two
// selected personas, the topic, the turn pipeline, and the engines it
// drives. Engines are owned by the session, so independent sessions
// share nothing but the read-only configuration store.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/caomingyu/soulqun/betrayal"
	"github.com/caomingyu/soulqun/bus"
	"github.com/caomingyu/soulqun/emotion"
	"github.com/caomingyu/soulqun/llm"
	"github.com/caomingyu/soulqun/message"
	"github.com/caomingyu/soulqun/persona"
	"github.com/caomingyu/soulqun/privmsg"
	"github.com/caomingyu/soulqun/rng"
	"github.com/caomingyu/soulqun/soul"
	"github.com/caomingyu/soulqun/topic"
	"github.com/caomingyu/soulqun/turn"
	"github.com/google/uuid"
)

var (
	// ErrInvalidSelection rejects a session start with anything but two
	// distinct known personas and a topic. No partial session is created.
	ErrInvalidSelection = errors.New("select exactly two distinct platforms and a topic")

	// ErrSessionNotActive rejects operations on an ended session.
	ErrSessionNotActive = errors.New("session is not active")

	// ErrStalePrivateChoice rejects resolving a private message when none
	// is pending or it was already resolved. No side effects occur.
	ErrStalePrivateChoice = errors.New("no pending private message")
)

type State string

const (
	StateActive State = "active"
	StateEnded  State = "ended"
)

// Effect is a notable per-persona outcome of a turn. Callers switch on
// the concrete type.
type Effect interface{ isEffect() }

// BreakdownEffect reports that a persona crossed the breakdown
// threshold this turn and emitted its distress line.
type BreakdownEffect struct {
	PersonaId string
	Trigger   string
	Response  string
}

// BetrayalEffect reports a public stance reversal.
type BetrayalEffect struct {
	Event *betrayal.Event
}

func (BreakdownEffect) isEffect() {}
func (BetrayalEffect) isEffect()  {}

// TurnResult is everything one user message produced.
type TurnResult struct {
	// Messages is the full batch in emission order, starting with the
	// user's own message.
	Messages []*message.Message
	// Pending is a freshly fired private message awaiting the user's
	// choice, nil otherwise. While one is pending no further rolls occur.
	Pending *privmsg.Event
	Effects []Effect
}

// Session is the live aggregate root of one conversation.
type Session struct {
	ID string

	store     *persona.Store
	responder llm.Responder
	rng       rng.Source
	turns     turn.Manager
	bus       bus.Bus

	personas [2]*persona.Persona // selection order is turn order
	topic    *topic.Topic

	state          State
	turnCount      int
	history        []*message.Message
	pending        *privmsg.Event
	recentConflict bool
	userRelations  map[string]int

	emotions  *emotion.Engine
	betrayals *betrayal.Engine
	privmsgs  *privmsg.Engine
	souls     *soul.Engine
}

// Option configures optional session collaborators.
type Option func(*Session)

// WithBus makes the session broadcast every emitted message.
func WithBus(b bus.Bus) Option {
	return func(s *Session) { s.bus = b }
}

// Start validates the selection and creates an active session,
// returning the opening message batch. Validation happens before any
// state is created: an invalid selection never leaves a partial
// session behind.
func Start(store *persona.Store, responder llm.Responder, r rng.Source, aId, bId string, t *topic.Topic, opts ...Option) (*Session, []*message.Message, error) {
	if aId == bId || t == nil || t.Title == "" {
		return nil, nil, ErrInvalidSelection
	}
	pa, err := store.Get(aId)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidSelection, err)
	}
	pb, err := store.Get(bId)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidSelection, err)
	}

	souls, err := soul.NewEngine(r, store.DisplayName)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build soul engine: %w", err)
	}

	s := &Session{
		ID:            uuid.NewString(),
		store:         store,
		responder:     responder,
		rng:           r,
		turns:         turn.NewMutexManager(),
		personas:      [2]*persona.Persona{pa, pb},
		topic:         t,
		state:         StateActive,
		userRelations: map[string]int{aId: 50, bId: 50},
		emotions:      emotion.NewEngine(store, r),
		betrayals:     betrayal.NewEngine(store, r),
		privmsgs:      privmsg.NewEngine(store, r),
		souls:         souls,
	}
	for _, o := range opts {
		o(s)
	}
	for _, p := range s.personas {
		s.emotions.Init(p.PersonaId, p.InitialEmotion)
	}

	opening := s.opening()
	s.history = append(s.history, opening...)
	s.broadcast(opening)

	slog.Info("session started", "sessionId", s.ID, "personas", []string{aId, bId}, "topic", t.Title)
	return s, opening, nil
}

func (s *Session) opening() []*message.Message {
	now := time.Now()
	msgs := []*message.Message{{
		Kind: message.KindSystem,
		Text: fmt.Sprintf("🎭 %s 和 %s 进入了群聊\n📢 今日话题: %s", s.personas[0].DisplayName, s.personas[1].DisplayName, s.topic.Title),
		At:   now,
	}}
	for _, p := range s.personas {
		line := "开始讨论吧。"
		if len(p.Openings) > 0 {
			line = p.Openings[s.rng.Intn(len(p.Openings))]
		}
		msgs = append(msgs, &message.Message{Kind: message.KindPersona, From: p, Text: line, At: now})
	}
	return msgs
}

// Send processes one user message through the full turn pipeline and
// returns the resulting batch. Turns are strictly sequential: a second
// Send blocks until the first completes.
func (s *Session) Send(ctx context.Context, text string) (*TurnResult, error) {
	if err := s.turns.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.turns.Release()

	if s.state != StateActive {
		return nil, ErrSessionNotActive
	}

	now := time.Now()
	userMsg := &message.Message{Kind: message.KindUser, Text: text, At: now}
	s.history = append(s.history, userMsg)
	batch := []*message.Message{userMsg}

	s.souls.ScoreUtterance(text)

	// Emotion pass for both personas, user as the source.
	reports := make(map[string]emotion.TurnReport, 2)
	conflict := false
	for _, p := range s.personas {
		rep := s.emotions.ProcessTurn(p.PersonaId, text, emotion.SourceUser)
		reports[p.PersonaId] = rep
		if len(rep.Triggers) > 0 {
			conflict = true
		}
		s.scoreBrokenBehavior(rep)
	}
	s.recentConflict = conflict

	// Per-persona outcome. Breakdown wins over betrayal, betrayal over a
	// normal reply. Normal replies may run concurrently; outcomes merge
	// back in selection order.
	historySnapshot := s.recentHistory(6)
	outcomes := make([]*personaOutcome, len(s.personas))
	var wg sync.WaitGroup
	for i, p := range s.personas {
		rep := reports[p.PersonaId]

		if rep.Broke {
			resp := s.emotions.BreakdownResponse(p.PersonaId)
			trigger := ""
			if len(rep.Triggers) > 0 {
				trigger = rep.Triggers[0]
			}
			s.emotions.RecordHighlight(emotion.Highlight{
				PersonaId: p.PersonaId,
				Trigger:   trigger,
				Response:  resp,
				Turn:      s.turnCount + 1,
			})
			s.emotions.Recover(p.PersonaId)
			outcomes[i] = &personaOutcome{
				effect:   BreakdownEffect{PersonaId: p.PersonaId, Trigger: trigger, Response: resp},
				messages: []*message.Message{{Kind: message.KindPersona, From: p, Text: resp, At: now, Breakdown: true}},
			}
			continue
		}

		if ev := s.betrayals.Check(p.PersonaId, s.topic.Title, rep.NewValue); ev != nil {
			outcomes[i] = &personaOutcome{
				effect:   BetrayalEffect{Event: ev},
				messages: []*message.Message{{Kind: message.KindPersona, From: p, Text: ev.Statement, At: now, Betrayal: true}},
			}
			continue
		}

		wg.Add(1)
		go func(i int, p *persona.Persona, emotionVal int) {
			defer wg.Done()
			reply := s.personaReply(ctx, p, text, emotionVal, historySnapshot)
			outcomes[i] = &personaOutcome{messages: splitReply(p, reply, now)}
		}(i, p, rep.NewValue)
	}
	wg.Wait()

	var effects []Effect
	for _, o := range outcomes {
		batch = append(batch, o.messages...)
		s.history = append(s.history, o.messages...)
		if o.effect != nil {
			effects = append(effects, o.effect)
		}
	}

	// One private-message roll per turn, blocked while one is pending.
	var pending *privmsg.Event
	if s.pending == nil {
		sender := s.personas[s.rng.Intn(len(s.personas))]
		target := s.other(sender.PersonaId)
		if s.privmsgs.MaybeTrigger(sender.PersonaId, []string{target.PersonaId}, s.emotions.Value(sender.PersonaId), s.recentConflict) {
			s.pending = s.privmsgs.Generate(sender.PersonaId, target.PersonaId)
			pending = s.pending
		}
	}

	s.betrayals.TickCooldowns()
	s.turnCount++

	s.broadcast(batch)
	return &TurnResult{Messages: batch, Pending: pending, Effects: effects}, nil
}

type personaOutcome struct {
	effect   Effect
	messages []*message.Message
}

// scoreBrokenBehavior records how the user treats a persona on the
// floor: piling onto one that just broke counts as an attack, healing
// words to one already near the bottom count as support.
func (s *Session) scoreBrokenBehavior(rep emotion.TurnReport) {
	if rep.Broke && len(rep.Triggers) > 0 {
		s.souls.ScoreBehavior(soul.BehaviorAttackBroken, map[string]string{"target": rep.PersonaId})
		return
	}
	if !rep.Broke && len(rep.Supports) > 0 && rep.OldValue <= emotion.RecoveryFloor {
		s.souls.ScoreBehavior(soul.BehaviorSupportBroken, map[string]string{"target": rep.PersonaId})
	}
}

func (s *Session) personaReply(ctx context.Context, p *persona.Persona, userText string, emotionVal int, history []*message.Message) string {
	other := s.other(p.PersonaId)
	rel := s.store.Relationship(p.PersonaId, other.PersonaId)

	reply, err := s.responder.Reply(ctx, llm.ReplyInput{
		Persona:       p,
		OtherName:     other.DisplayName,
		Relationship:  rel.Description,
		Topic:         s.topic.Title,
		UserText:      userText,
		EmotionValue:  emotionVal,
		StyleHint:     emotion.LevelFor(emotionVal, false).StyleHint(),
		Turn:          s.turnCount + 1,
		RecentHistory: history,
	})
	if err != nil {
		// Recovered locally: fixed fallback line, logged, never fatal.
		slog.Warn("responder unavailable, using fallback", "sessionId", s.ID, "personaId", p.PersonaId, "error", err)
		reply = p.Fallback
		if reply == "" {
			reply = "..."
		}
	}
	return reply
}

// splitReply turns one logical reply into message bubbles. Multi-part
// personas send newline-delimited bursts as separate flagged messages.
func splitReply(p *persona.Persona, reply string, at time.Time) []*message.Message {
	if !p.MultiPart || !strings.Contains(reply, "\n") {
		return []*message.Message{{Kind: message.KindPersona, From: p, Text: reply, At: at}}
	}
	var msgs []*message.Message
	for _, part := range strings.Split(reply, "\n") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		msgs = append(msgs, &message.Message{Kind: message.KindPersona, From: p, Text: part, At: at, MultiPart: true})
	}
	if len(msgs) == 1 {
		msgs[0].MultiPart = false
	}
	return msgs
}

func (s *Session) other(personaId string) *persona.Persona {
	if s.personas[0].PersonaId == personaId {
		return s.personas[1]
	}
	return s.personas[0]
}

func (s *Session) recentHistory(n int) []*message.Message {
	start := len(s.history) - n
	if start < 0 {
		start = 0
	}
	out := make([]*message.Message, len(s.history)-start)
	copy(out, s.history[start:])
	return out
}

func (s *Session) broadcast(msgs []*message.Message) {
	if s.bus == nil {
		return
	}
	for _, m := range msgs {
		if err := s.bus.Broadcast(m); err != nil {
			slog.Warn("broadcast failed", "sessionId", s.ID, "error", err)
		}
	}
}

// State returns the session lifecycle state.
func (s *Session) State() State { return s.state }

// Turn returns the number of completed turns.
func (s *Session) Turn() int { return s.turnCount }

// Personas returns the two active personas in selection order.
func (s *Session) Personas() [2]*persona.Persona { return s.personas }

// Topic returns the fixed session topic.
func (s *Session) Topic() *topic.Topic { return s.topic }

// Pending returns the unresolved private message, if any.
func (s *Session) Pending() *privmsg.Event { return s.pending }

// History returns a copy of the full message history.
func (s *Session) History() []*message.Message {
	out := make([]*message.Message, len(s.history))
	copy(out, s.history)
	return out
}

// EmotionStatus is a host-facing mood snapshot.
type EmotionStatus struct {
	PersonaId string
	Value     int
	Level     emotion.Level
	Display   string
}

// EmotionStatuses returns the snapshot for both personas in order.
func (s *Session) EmotionStatuses() []EmotionStatus {
	out := make([]EmotionStatus, 0, len(s.personas))
	for _, p := range s.personas {
		out = append(out, EmotionStatus{
			PersonaId: p.PersonaId,
			Value:     s.emotions.Value(p.PersonaId),
			Level:     s.emotions.LevelOf(p.PersonaId),
			Display:   s.emotions.StatusBar(p.PersonaId),
		})
	}
	return out
}
