package session

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/caomingyu/soulqun/emotion"
	"github.com/caomingyu/soulqun/message"
	"github.com/caomingyu/soulqun/privmsg"
	"github.com/caomingyu/soulqun/soul"
)

// ChoiceOutcome is what resolving a private message produced: the
// engine result plus any message made public by the choice.
type ChoiceOutcome struct {
	Result   *privmsg.Result
	Messages []*message.Message
}

// ResolvePrivateChoice applies the user's decision on the pending
// private message. Choice 0 allies with the sender, 1 stays out of it,
// 2 exposes the message to the group chat. Resolving twice, or with no
// message pending, fails with ErrStalePrivateChoice and changes
// nothing.
func (s *Session) ResolvePrivateChoice(ctx context.Context, choice int) (*ChoiceOutcome, error) {
	if err := s.turns.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.turns.Release()

	if s.state != StateActive {
		return nil, ErrSessionNotActive
	}
	if s.pending == nil {
		return nil, ErrStalePrivateChoice
	}

	ev := s.pending
	res, err := s.privmsgs.Resolve(ev, choice)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStalePrivateChoice, err)
	}
	s.pending = nil

	c := res.Consequence
	_, senderBroke := s.emotions.Apply(ev.SenderId, c.SenderEmotion)
	_, targetBroke := s.emotions.Apply(ev.TargetId, c.TargetEmotion)
	s.adjustUserRelation(ev.SenderId, c.Relation)

	switch choice {
	case 0:
		s.souls.ScoreBehavior(soul.BehaviorAlliance, map[string]string{
			"target": ev.SenderId,
			"rival":  s.configuredRival(ev.SenderId),
		})
	case 1:
		s.souls.ScoreBehavior(soul.BehaviorNeutral, nil)
	case 2:
		s.souls.ScoreBehavior(soul.BehaviorExpose, map[string]string{"target": ev.SenderId})
	}

	now := time.Now()
	out := &ChoiceOutcome{Result: res}
	if res.Exposed {
		out.Messages = append(out.Messages, &message.Message{
			Kind: message.KindSystem,
			Text: s.privmsgs.ExposureAnnouncement(ev),
			At:   now,
		})
	}

	// A consequence can push a persona over the breakdown threshold,
	// sender first, then target. Same contract as a breakdown in Send:
	// emit the distress line, record the highlight, reset to the floor.
	for _, hit := range []struct {
		personaId string
		broke     bool
	}{{ev.SenderId, senderBroke}, {ev.TargetId, targetBroke}} {
		if !hit.broke {
			continue
		}
		if m := s.consequenceBreakdown(hit.personaId, c.Description, now); m != nil {
			out.Messages = append(out.Messages, m)
		}
	}

	if len(out.Messages) > 0 {
		s.history = append(s.history, out.Messages...)
		s.broadcast(out.Messages)
	}

	slog.Info("private message resolved",
		"sessionId", s.ID, "senderId", ev.SenderId, "type", ev.Type,
		"choice", choice, "exposed", res.Exposed, "alliance", res.AllianceFormed)
	return out, nil
}

// consequenceBreakdown handles a breakdown crossing caused by a
// private-message consequence.
func (s *Session) consequenceBreakdown(personaId, trigger string, at time.Time) *message.Message {
	p, err := s.store.Get(personaId)
	if err != nil {
		return nil
	}
	resp := s.emotions.BreakdownResponse(personaId)
	s.emotions.RecordHighlight(emotion.Highlight{
		PersonaId: personaId,
		Trigger:   trigger,
		Response:  resp,
		Turn:      s.turnCount,
	})
	s.emotions.Recover(personaId)
	return &message.Message{Kind: message.KindPersona, From: p, Text: resp, At: at, Breakdown: true}
}

// UserRelation returns the user's standing with one persona, 0 to 100.
func (s *Session) UserRelation(personaId string) int {
	if v, ok := s.userRelations[personaId]; ok {
		return v
	}
	return 50
}

func (s *Session) adjustUserRelation(personaId string, delta int) {
	v := s.UserRelation(personaId) + delta
	if v < 0 {
		v = 0
	}
	if v > 100 {
		v = 100
	}
	s.userRelations[personaId] = v
}

// configuredRival finds the persona the given one feuds with, if any
// is in the current session.
func (s *Session) configuredRival(personaId string) string {
	for _, p := range s.personas {
		if p.PersonaId == personaId {
			continue
		}
		if s.store.IsRival(personaId, p.PersonaId) {
			return p.PersonaId
		}
	}
	return ""
}
