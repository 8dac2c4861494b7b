package llm

import (
	"context"
	"fmt"
	"sync"

	"github.com/caomingyu/soulqun/rng"
)

// NewScripted creates the template-based responder used when no API
// key is configured. It never fails, which also makes it the backend
// of choice for tests.
func NewScripted(r rng.Source) *Scripted {
	return &Scripted{rng: r}
}

type Scripted struct {
	mu  sync.Mutex // replies for a turn may be requested concurrently
	rng rng.Source
}

func (s *Scripted) Reply(_ context.Context, in ReplyInput) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := in.Persona

	var lines []string
	if len(p.Catchphrases) > 0 {
		lines = append(lines,
			fmt.Sprintf("%s，这个话题我可太有发言权了", p.Catchphrases[s.rng.Intn(len(p.Catchphrases))]),
		)
	}
	lines = append(lines,
		fmt.Sprintf("关于「%s」，我的看法和%s完全不一样", in.Topic, in.OtherName),
		fmt.Sprintf("讲真，%s刚才那句话我记下了", in.OtherName),
	)
	if in.EmotionValue < 40 {
		lines = append(lines, "......今天不太想多说。")
	}

	reply := lines[s.rng.Intn(len(lines))]
	if p.MultiPart && s.rng.Float64() < 0.5 {
		reply = reply + "\n真的"
	}
	return reply, nil
}

var _ Responder = (*Scripted)(nil)
