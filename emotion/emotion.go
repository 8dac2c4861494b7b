// Package emotion owns the per-persona mood value of a session: trigger
// evaluation, bounded deltas, breakdown detection and recovery.
package emotion

import (
	"fmt"
	"strings"

	"github.com/caomingyu/soulqun/persona"
	"github.com/caomingyu/soulqun/rng"
)

// Tuning constants for mood movement.
const (
	BaseRegen          = 2  // ambient recovery on turns without a negative trigger
	TriggerDamage      = 15 // breakdown trigger said by another persona
	RivalAttackDamage  = 20 // same, said by the configured rival
	UserAttackDamage   = 25 // same, said by the human (hurts the most)
	HealingDelta       = 10 // healing phrase, regardless of source
	BreakdownThreshold = 15
	RecoveryFloor      = 30 // hard reset value after a breakdown
	DefaultInitial     = 50
)

const fallbackBreakdownLine = "...我不想说话了。"

// SourceUser marks the human user as the origin of a message.
const SourceUser = "user"

// State is a persona's live mood within one session.
type State struct {
	Value       int
	Broken      bool
	BrokenCount int
}

// TriggerEvent is one matched phrase and the delta it contributes.
type TriggerEvent struct {
	Phrase string
	Delta  int
	Source string
}

// TurnReport summarizes the mood movement of one turn for one persona.
type TurnReport struct {
	PersonaId string
	OldValue  int
	NewValue  int
	Delta     int
	Triggers  []string // matched breakdown phrases
	Supports  []string // matched healing phrases
	Broke     bool     // crossed into broken this turn
	Level     Level
}

// Highlight records one breakdown moment for the end-of-session reel.
type Highlight struct {
	PersonaId string
	Trigger   string
	Response  string
	Turn      int
}

// Engine evaluates triggers and applies bounded mood deltas. One Engine
// belongs to exactly one session; sessions never share engines.
type Engine struct {
	store *persona.Store
	rng   rng.Source

	states     map[string]*State
	highlights []Highlight
}

func NewEngine(store *persona.Store, r rng.Source) *Engine {
	return &Engine{
		store:  store,
		rng:    r,
		states: make(map[string]*State),
	}
}

// Init creates the emotion state for a persona. Re-initialization is
// idempotent: it always resets the value, the broken flag and the
// breakdown count, whatever the prior state was.
func (e *Engine) Init(personaId string, start int) {
	if start <= 0 {
		start = DefaultInitial
	}
	e.states[personaId] = &State{Value: clamp(start)}
}

// Value returns the current mood value, defaulting to 50 for personas
// that were never initialized.
func (e *Engine) Value(personaId string) int {
	if st, ok := e.states[personaId]; ok {
		return st.Value
	}
	return DefaultInitial
}

// StateOf returns a copy of the persona's state.
func (e *Engine) StateOf(personaId string) State {
	if st, ok := e.states[personaId]; ok {
		return *st
	}
	return State{Value: DefaultInitial}
}

// EvaluateTriggers scans text for the persona's breakdown triggers and
// healing phrases. Matching is case-insensitive substring; every match
// contributes, nothing short-circuits. Damage depends on who spoke:
// base for another persona, amplified for the configured rival,
// maximal for the user.
func (e *Engine) EvaluateTriggers(personaId, text, source string) []TriggerEvent {
	sec := e.store.Secrets(personaId)
	lower := strings.ToLower(text)

	var events []TriggerEvent
	for _, trigger := range sec.BreakdownTriggers {
		if !strings.Contains(lower, strings.ToLower(trigger)) {
			continue
		}
		damage := TriggerDamage
		if source == SourceUser {
			damage = UserAttackDamage
		} else if e.store.IsRival(personaId, source) {
			damage = RivalAttackDamage
		}
		events = append(events, TriggerEvent{Phrase: trigger, Delta: -damage, Source: source})
	}
	for _, word := range sec.HealingWords {
		if strings.Contains(lower, strings.ToLower(word)) {
			events = append(events, TriggerEvent{Phrase: word, Delta: HealingDelta, Source: source})
		}
	}
	return events
}

// Apply clamps value+delta to [0,100] and reports whether the persona
// crossed into broken. Breakdown is edge-triggered: while already
// broken, further negative deltas do not re-fire.
func (e *Engine) Apply(personaId string, delta int) (int, bool) {
	st, ok := e.states[personaId]
	if !ok {
		st = &State{Value: DefaultInitial}
		e.states[personaId] = st
	}
	st.Value = clamp(st.Value + delta)

	crossed := false
	if st.Value <= BreakdownThreshold && !st.Broken {
		st.Broken = true
		st.BrokenCount++
		crossed = true
	}
	return st.Value, crossed
}

// ProcessTurn evaluates one message against one persona: all trigger
// deltas are summed, ambient regen is added when no negative trigger
// fired, and the total is applied in a single clamped step.
func (e *Engine) ProcessTurn(personaId, text, source string) TurnReport {
	events := e.EvaluateTriggers(personaId, text, source)

	total := 0
	var triggers, supports []string
	negative := false
	for _, ev := range events {
		total += ev.Delta
		if ev.Delta < 0 {
			negative = true
			triggers = append(triggers, ev.Phrase)
		} else {
			supports = append(supports, ev.Phrase)
		}
	}
	if !negative {
		total += BaseRegen
	}

	old := e.Value(personaId)
	newValue, broke := e.Apply(personaId, total)
	return TurnReport{
		PersonaId: personaId,
		OldValue:  old,
		NewValue:  newValue,
		Delta:     total,
		Triggers:  triggers,
		Supports:  supports,
		Broke:     broke,
		Level:     e.LevelOf(personaId),
	}
}

// BreakdownResponse picks one line from the persona's breakdown pool
// uniformly at random, with a fixed fallback for empty pools.
func (e *Engine) BreakdownResponse(personaId string) string {
	responses := e.store.Secrets(personaId).BreakdownResponses
	if len(responses) == 0 {
		return fallbackBreakdownLine
	}
	return responses[e.rng.Intn(len(responses))]
}

// Recover clears the broken flag and hard-resets the value to the
// recovery floor, whatever the value was before.
func (e *Engine) Recover(personaId string) {
	st, ok := e.states[personaId]
	if !ok {
		return
	}
	st.Broken = false
	st.Value = RecoveryFloor
}

// LevelOf returns the persona's current emotion band.
func (e *Engine) LevelOf(personaId string) Level {
	st := e.StateOf(personaId)
	return LevelFor(st.Value, st.Broken)
}

// RecordHighlight stores a breakdown moment for the session report.
func (e *Engine) RecordHighlight(h Highlight) {
	e.highlights = append(e.highlights, h)
}

// Highlights returns the recorded breakdown reel in order.
func (e *Engine) Highlights() []Highlight {
	return e.highlights
}

// StatusBar renders a compact mood display for console hosts.
func (e *Engine) StatusBar(personaId string) string {
	st := e.StateOf(personaId)
	level := LevelFor(st.Value, st.Broken)
	filled := st.Value / 10
	bar := strings.Repeat("█", filled) + strings.Repeat("░", 10-filled)
	return fmt.Sprintf("%s [%s] %d/100 %s", level.Emoji(), bar, st.Value, level.StatusText())
}

func clamp(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
