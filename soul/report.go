package soul

import (
	"fmt"
	"sort"
	"strings"
)

// Component is one persona's share of the soul composition.
type Component struct {
	PersonaId   string
	Name        string
	Percentage  float64
	Description string
}

// Report is the final soul composition analysis.
type Report struct {
	Components    []Component // shares above 5%, descending
	Percentages   map[string]float64
	Dominant      string
	SoulType      string
	SpecialTraits []string
	Roast         string
	Advice        string
}

// soulType is one named condition over the percentage map. The list is
// ordered and first match wins.
type soulType struct {
	name string
	cond func(p map[string]float64) bool
}

func above(id string, threshold float64) func(map[string]float64) bool {
	return func(p map[string]float64) bool { return p[id] > threshold }
}

var soulTypes = []soulType{
	{"纯粹的快乐小丑", above("douyin", 50)},
	{"知识分子（自认为）", above("zhihu", 50)},
	{"审美奴隶", above("xiaohongshu", 50)},
	{"吃瓜群众本瓜", above("weibo", 50)},
	{"精神国际人", above("x", 50)},
	{"互联网活化石", above("tieba", 50)},
	{"平衡的灵魂", func(p map[string]float64) bool {
		if len(p) == 0 {
			return false
		}
		max, min := -1.0, 101.0
		for _, v := range p {
			if v > max {
				max = v
			}
			if v < min {
				min = v
			}
		}
		return max-min < 20
	}},
	{"混沌特工", func(p map[string]float64) bool {
		n := 0
		for _, v := range p {
			if v > 20 {
				n++
			}
		}
		return n >= 4
	}},
}

const unknownSoulType = "未分类的复杂灵魂"

// Percentages normalizes the tallies. An all-zero tally returns an
// equal split so the result is defined for a session with nothing to
// score.
func (e *Engine) Percentages() map[string]float64 {
	total := 0.0
	for _, v := range e.scores {
		total += v
	}
	out := make(map[string]float64, len(e.scores))
	if total == 0 {
		share := round1(100 / float64(len(e.profiles)))
		for _, p := range e.profiles {
			out[p.PersonaId] = share
		}
		return out
	}
	for id, v := range e.scores {
		out[id] = round1(v / total * 100)
	}
	return out
}

// Finalize aggregates the session's tallies into the report. Type
// selection is deterministic; only the roast/advice text selection may
// consult randomness, and both are fixed per dominant persona here.
func (e *Engine) Finalize() *Report {
	percentages := e.Percentages()

	// Dominant: highest share, ties broken by config order.
	dominant := e.profiles[0].PersonaId
	best := -1.0
	for _, p := range e.profiles {
		if percentages[p.PersonaId] > best {
			best = percentages[p.PersonaId]
			dominant = p.PersonaId
		}
	}

	typeName := unknownSoulType
	for _, st := range soulTypes {
		if st.cond(percentages) {
			typeName = st.name
			break
		}
	}

	var components []Component
	for _, p := range e.profiles {
		pct := percentages[p.PersonaId]
		if pct < 5 {
			continue
		}
		components = append(components, Component{
			PersonaId:   p.PersonaId,
			Name:        e.names(p.PersonaId),
			Percentage:  pct,
			Description: p.componentDescription(pct),
		})
	}
	sort.SliceStable(components, func(i, j int) bool {
		return components[i].Percentage > components[j].Percentage
	})

	var roast, advice string
	for _, p := range e.profiles {
		if p.PersonaId == dominant {
			roast, advice = p.Roast, p.Advice
			break
		}
	}
	if roast == "" {
		roast = "你是一个复杂的人，我无法简单地吐槽你。"
	}
	if advice == "" {
		advice = "保持平衡，保持好奇。"
	}

	return &Report{
		Components:    components,
		Percentages:   percentages,
		Dominant:      dominant,
		SoulType:      typeName,
		SpecialTraits: e.specialTraits(percentages),
		Roast:         roast,
		Advice:        advice,
	}
}

func (p *Profile) componentDescription(pct float64) string {
	level := "low"
	if pct > 30 {
		level = "high"
	} else if pct > 15 {
		level = "medium"
	}
	if d, ok := p.Descriptions[level]; ok {
		return d
	}
	return "你与这个平台有一些联系"
}

// specialTraits derives up to five trait tags from combined score and
// behavior heuristics.
func (e *Engine) specialTraits(p map[string]float64) []string {
	var traits []string

	if p["douyin"] > 30 && p["zhihu"] > 20 {
		traits = append(traits, "🎭 双面人：既要快乐也要深度")
	}
	if p["xiaohongshu"] > 25 && p["tieba"] > 15 {
		traits = append(traits, "⚡ 反差萌：精致与抽象并存")
	}
	if p["weibo"] > 30 {
		traits = append(traits, "🍉 吃瓜体质：八卦雷达永远在线")
	}

	exposes, neutrals := 0, 0
	for _, b := range e.behaviors {
		switch b.Type {
		case BehaviorExpose:
			exposes++
		case BehaviorNeutral:
			neutrals++
		}
	}
	if exposes > 0 {
		traits = append(traits, "📢 大嘴巴：保不住秘密")
	}
	if neutrals >= 2 {
		traits = append(traits, "🧘 老滑头：从不站队")
	}

	if len(traits) > 5 {
		traits = traits[:5]
	}
	return traits
}

// QuickSummary renders the one-line version of the analysis.
func (e *Engine) QuickSummary() string {
	percentages := e.Percentages()
	type share struct {
		id  string
		pct float64
	}
	shares := make([]share, 0, len(e.profiles))
	for _, p := range e.profiles {
		shares = append(shares, share{p.PersonaId, percentages[p.PersonaId]})
	}
	sort.SliceStable(shares, func(i, j int) bool { return shares[i].pct > shares[j].pct })

	parts := make([]string, 0, 3)
	for i, s := range shares {
		if i >= 3 {
			break
		}
		parts = append(parts, fmt.Sprintf("%d%%%s", int(s.pct), e.names(s.id)))
	}
	return fmt.Sprintf("你的灵魂由 %s 炼成", strings.Join(parts, " + "))
}
