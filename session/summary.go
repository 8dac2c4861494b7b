package session

import (
	"context"
	"log/slog"
	"time"

	"github.com/caomingyu/soulqun/emotion"
	"github.com/caomingyu/soulqun/message"
	"github.com/caomingyu/soulqun/soul"
	"github.com/caomingyu/soulqun/topic"
)

// Summary is the one-shot end-of-session report. It is produced when
// the session ends and never changes afterwards.
type Summary struct {
	SessionId string
	Topic     *topic.Topic
	Turns     int

	Soul         *soul.Report
	QuickSummary string

	// Reviews maps personaId to that platform's parting verdict on the
	// user.
	Reviews map[string]string

	BetrayalSummary string
	Highlights      []emotion.Highlight
	ExposedCount    int
}

const fallbackReview = "一个普通的群友。"

// End closes the session and produces the summary. A session ends
// exactly once; later calls fail with ErrSessionNotActive. A pending
// private message is discarded unresolved.
func (s *Session) End(ctx context.Context) (*Summary, error) {
	if err := s.turns.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.turns.Release()

	if s.state != StateActive {
		return nil, ErrSessionNotActive
	}
	s.state = StateEnded
	s.pending = nil

	reviews := make(map[string]string, len(s.personas))
	for _, p := range s.personas {
		if len(p.Reviews) == 0 {
			reviews[p.PersonaId] = fallbackReview
			continue
		}
		reviews[p.PersonaId] = p.Reviews[s.rng.Intn(len(p.Reviews))]
	}

	sum := &Summary{
		SessionId:       s.ID,
		Topic:           s.topic,
		Turns:           s.turnCount,
		Soul:            s.souls.Finalize(),
		QuickSummary:    s.souls.QuickSummary(),
		Reviews:         reviews,
		BetrayalSummary: s.betrayals.Summary(),
		Highlights:      s.emotions.Highlights(),
		ExposedCount:    s.privmsgs.ExposedCount(),
	}

	s.broadcast([]*message.Message{{
		Kind: message.KindSystem,
		Text: "🏁 群聊结束，灵魂纯度报告已生成",
		At:   time.Now(),
	}})

	slog.Info("session ended", "sessionId", s.ID, "turns", s.turnCount, "soulType", sum.Soul.SoulType)
	return sum, nil
}
