// Package soul scores every user utterance and recorded behavior
// against per-persona keyword and pattern tables, and aggregates the
// tallies into the end-of-session soul composition report.
package soul

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/caomingyu/soulqun/configs"
	"github.com/caomingyu/soulqun/rng"
	"gopkg.in/yaml.v3"
)

// Keyword weights and the pattern bonus.
const (
	highWeight    = 3.0
	mediumWeight  = 1.5
	lowWeight     = 0.5
	patternWeight = 2.0
)

// Behavior types recorded against the running score.
const (
	BehaviorAlliance      = "alliance_with"
	BehaviorExpose        = "expose_private"
	BehaviorNeutral       = "stay_neutral"
	BehaviorSupportBroken = "support_broken"
	BehaviorAttackBroken  = "attack_broken"
)

// Profile is one persona's scoring table, loaded from config.
type Profile struct {
	PersonaId string `yaml:"personaId"`
	Keywords  struct {
		High   []string `yaml:"high"`
		Medium []string `yaml:"medium"`
		Low    []string `yaml:"low"`
	} `yaml:"keywords"`
	Patterns     []string          `yaml:"patterns"`
	Descriptions map[string]string `yaml:"descriptions"`
	Roast        string            `yaml:"roast"`
	Advice       string            `yaml:"advice"`

	compiled []*regexp.Regexp
}

// Behavior is one recorded user behavior.
type Behavior struct {
	Type    string
	Details map[string]string
}

// Engine accumulates scores for one session. Tallies are read-only for
// callers until Finalize.
type Engine struct {
	profiles    []*Profile // config order, used for tie-breaks
	adjustments map[string]map[string]float64
	rng         rng.Source
	names       func(personaId string) string
	scores      map[string]float64
	behaviors   []Behavior
}

// NewEngine parses the embedded scoring tables. displayName resolves
// persona ids for the report; nil means ids are used as-is.
func NewEngine(r rng.Source, displayName func(string) string) (*Engine, error) {
	var sf struct {
		Profiles  []*Profile                    `yaml:"profiles"`
		Behaviors map[string]map[string]float64 `yaml:"behaviorAdjustments"`
	}
	if err := yaml.Unmarshal(configs.Soul, &sf); err != nil {
		return nil, fmt.Errorf("failed to unmarshal embedded soul profiles: %w", err)
	}
	if len(sf.Profiles) == 0 {
		return nil, fmt.Errorf("no soul profiles configured")
	}
	if displayName == nil {
		displayName = func(id string) string { return id }
	}

	scores := make(map[string]float64, len(sf.Profiles))
	for _, p := range sf.Profiles {
		for _, pat := range p.Patterns {
			re, err := regexp.Compile(pat)
			if err != nil {
				return nil, fmt.Errorf("bad soul pattern %q for %s: %w", pat, p.PersonaId, err)
			}
			p.compiled = append(p.compiled, re)
		}
		scores[p.PersonaId] = 0
	}
	return &Engine{
		profiles:    sf.Profiles,
		adjustments: sf.Behaviors,
		rng:         r,
		names:       displayName,
		scores:      scores,
	}, nil
}

// ScoreUtterance scores one user message against every profile and
// accumulates the increments. The per-persona increments are returned
// for callers that want to display them; no normalization happens here.
func (e *Engine) ScoreUtterance(text string) map[string]float64 {
	lower := strings.ToLower(text)
	increments := make(map[string]float64, len(e.profiles))
	for _, p := range e.profiles {
		score := 0.0
		for _, kw := range p.Keywords.High {
			score += highWeight * float64(strings.Count(lower, strings.ToLower(kw)))
		}
		for _, kw := range p.Keywords.Medium {
			score += mediumWeight * float64(strings.Count(lower, strings.ToLower(kw)))
		}
		for _, kw := range p.Keywords.Low {
			score += lowWeight * float64(strings.Count(lower, strings.ToLower(kw)))
		}
		for _, re := range p.compiled {
			if re.MatchString(text) {
				score += patternWeight
			}
		}
		increments[p.PersonaId] = score
		e.scores[p.PersonaId] += score
	}
	return increments
}

// ScoreBehavior applies the configured adjustment table for one
// recorded behavior. An adjustment key that appears in details (such
// as "target" or "rival") resolves through the detail map, any other
// key is a persona id. Unknown behavior types and ids are ignored.
func (e *Engine) ScoreBehavior(behaviorType string, details map[string]string) {
	e.behaviors = append(e.behaviors, Behavior{Type: behaviorType, Details: details})

	for key, delta := range e.adjustments[behaviorType] {
		personaId := key
		if resolved, ok := details[key]; ok {
			personaId = resolved
		}
		if _, ok := e.scores[personaId]; ok {
			e.scores[personaId] += delta
		}
	}
}

// Scores returns a copy of the running tallies.
func (e *Engine) Scores() map[string]float64 {
	out := make(map[string]float64, len(e.scores))
	for k, v := range e.scores {
		out[k] = v
	}
	return out
}

// round1 rounds to one decimal.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
