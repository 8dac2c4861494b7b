// Package betrayal decides, turn by turn, whether a persona publicly
// flips its configured stance on the topic under discussion.
package betrayal

import (
	"fmt"
	"strings"

	"github.com/caomingyu/soulqun/persona"
	"github.com/caomingyu/soulqun/rng"
)

const (
	cooldownTurns = 5

	// Probability model: base + emotion modifier, clamped at 0.8, then
	// keyword bonus, clamped at 0.9. Both clamps apply in that order.
	emotionWeight    = 0.3
	keywordBonus     = 0.1
	preBonusCeiling  = 0.8
	finalCeiling     = 0.9
	defaultBaseProb  = 0.2
	baseShock        = 5
	coreTopicShock   = 3
	firstTimeShock   = 2
	maxShock         = 10
	identityTruncLen = 50
)

const genericConcession = "也许对方说的有些道理..."

// Event is one public stance reversal.
type Event struct {
	PersonaId      string
	TriggerKeyword string
	OriginalStance string // core identity, truncated
	NewStance      string
	Statement      string
	ShockValue     int // 5..10
}

// Engine holds the per-session betrayal state: cooldowns, counters and
// history. It reads config through the store and draws through the
// injected random source.
type Engine struct {
	store *persona.Store
	rng   rng.Source

	cooldowns map[string]int
	counts    map[string]int
	history   []*Event
}

func NewEngine(store *persona.Store, r rng.Source) *Engine {
	return &Engine{
		store:     store,
		rng:       r,
		cooldowns: make(map[string]int),
		counts:    make(map[string]int),
	}
}

// Check evaluates a betrayal roll for one persona. It returns nil when
// the persona is cooling down, no configured keyword appears in the
// topic text, or the roll fails. Low emotion and more keyword matches
// raise the odds.
func (e *Engine) Check(personaId, topicText string, currentEmotion int) *Event {
	if e.cooldowns[personaId] > 0 {
		return nil
	}

	cfg := e.store.Secrets(personaId).Betrayal
	lower := strings.ToLower(topicText)
	var matches []string
	for _, kw := range cfg.Keywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			matches = append(matches, kw)
		}
	}
	if len(matches) == 0 {
		return nil
	}

	base := cfg.Probability
	if base <= 0 {
		base = defaultBaseProb
	}
	emotionMod := float64(50-currentEmotion) / 100
	if emotionMod < 0 {
		emotionMod = 0
	}
	p := base + emotionMod*emotionWeight
	if p > preBonusCeiling {
		p = preBonusCeiling
	}
	p += keywordBonus * float64(len(matches))
	if p > finalCeiling {
		p = finalCeiling
	}

	if e.rng.Float64() > p {
		return nil
	}

	ev := e.newEvent(personaId, matches[0], cfg)
	e.history = append(e.history, ev)
	e.counts[personaId]++
	e.cooldowns[personaId] = cooldownTurns
	return ev
}

func (e *Engine) newEvent(personaId, keyword string, cfg persona.BetrayalConfig) *Event {
	original := ""
	if p, err := e.store.Get(personaId); err == nil {
		original = p.CoreIdentity
	}
	return &Event{
		PersonaId:      personaId,
		TriggerKeyword: keyword,
		OriginalStance: truncateIdentity(original),
		NewStance:      e.newStance(cfg, keyword),
		Statement:      cfg.Statement,
		ShockValue:     e.shockValue(personaId, keyword, cfg),
	}
}

// newStance picks the conceding line whose rule matches the triggering
// keyword, in config order, falling back to a generic concession.
func (e *Engine) newStance(cfg persona.BetrayalConfig, keyword string) string {
	for _, rule := range cfg.Stances {
		if strings.Contains(keyword, rule.Match) {
			return rule.Reply
		}
	}
	return genericConcession
}

// shockValue starts at 5, +3 when the keyword touches the persona's
// core topics, +2 on the session's first betrayal, capped at 10.
func (e *Engine) shockValue(personaId, keyword string, cfg persona.BetrayalConfig) int {
	shock := baseShock
	for _, core := range cfg.CoreTopics {
		if strings.Contains(keyword, core) {
			shock += coreTopicShock
			break
		}
	}
	if e.counts[personaId] == 0 {
		shock += firstTimeShock
	}
	if shock > maxShock {
		shock = maxShock
	}
	return shock
}

// TickCooldowns decrements every nonzero cooldown by one. Called
// exactly once per turn; calling with all cooldowns at zero is a no-op.
func (e *Engine) TickCooldowns() {
	for id, c := range e.cooldowns {
		if c > 0 {
			e.cooldowns[id] = c - 1
		}
	}
}

// Count returns how many times the persona has betrayed this session.
func (e *Engine) Count(personaId string) int {
	return e.counts[personaId]
}

// History returns every betrayal event of the session in order.
func (e *Engine) History() []*Event {
	return e.history
}

// Summary renders the session's betrayal record for the final report.
func (e *Engine) Summary() string {
	if len(e.history) == 0 {
		return "本次对话没有人叛变，大家都坚守立场！"
	}
	var b strings.Builder
	b.WriteString("本次对话的叛变记录:\n")
	for _, ev := range e.history {
		b.WriteString(fmt.Sprintf("- %s 在谈到「%s」时动摇了立场\n", e.store.DisplayName(ev.PersonaId), ev.TriggerKeyword))
	}
	return b.String()
}

func truncateIdentity(s string) string {
	runes := []rune(s)
	if len(runes) > identityTruncLen {
		return string(runes[:identityTruncLen]) + "..."
	}
	return s
}
