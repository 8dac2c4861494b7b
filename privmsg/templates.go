package privmsg

import (
	"fmt"

	"github.com/caomingyu/soulqun/persona"
)

// renderTemplate picks a canned body for the message type, interpolating
// the target's configured fear, shame or secret respect where the
// template calls for one, and returns the fixed three options.
func (e *Engine) renderTemplate(msgType Type, senderId, targetId string, rel *persona.Relationship) (string, [3]string) {
	targetName := e.store.DisplayName(targetId)

	switch msgType {
	case TypeAlliance:
		bodies := []string{
			fmt.Sprintf("悄悄@你：你看%s那个发言，典型的xxx，我们要不要联合起来针对ta？", targetName),
			fmt.Sprintf("私聊你：%s今天是不是有点过分了？我觉得我们应该团结一下...", targetName),
			fmt.Sprintf("小声说：那边说的话你信？%s", e.attackLine(rel)),
		}
		return bodies[e.rng.Intn(len(bodies))], [3]string{
			"同意联盟，一起针对ta",
			"保持中立，两不相帮",
			"把这条私信截图发到群里",
		}

	case TypeGossip:
		bodies := []string{
			fmt.Sprintf("偷偷告诉你：其实%s私下里%s", targetName, e.secretRespect(rel, "也没那么自信")),
			fmt.Sprintf("你知道吗？%s最怕别人说ta%s", targetName, e.fearOf(targetId)),
			fmt.Sprintf("八卦一下：%s之前被全网嘲过%s", targetName, e.publicShameOf(targetId)),
		}
		return bodies[e.rng.Intn(len(bodies))], [3]string{
			"有意思，记下了",
			"别在背后说人坏话",
			"直接在群里问ta是不是真的",
		}

	case TypeComplaint:
		bodies := []string{
			fmt.Sprintf("呜呜呜%s刚才说的话好伤人...", targetName),
			fmt.Sprintf("你有没有觉得%s今天针对我？", targetName),
			fmt.Sprintf("我是不是说错什么了？为什么%s一直怼我...", targetName),
		}
		return bodies[e.rng.Intn(len(bodies))], [3]string{
			"安慰ta",
			"确实，ta有点过分",
			"你自己也有问题吧",
		}

	case TypeSecret:
		bodies := []string{
			fmt.Sprintf("其实我有个秘密...%s", e.privateShameOf(senderId)),
			fmt.Sprintf("别跟别人说，%s其实私下%s", targetName, e.secretRespect(rel, "也挺努力的")),
			fmt.Sprintf("实话跟你说，我有时候也觉得%s", e.selfDoubtOf(senderId)),
		}
		return bodies[e.rng.Intn(len(bodies))], [3]string{
			"谢谢你的信任",
			"这个秘密我会保守的",
			"等等，让我截个图...",
		}

	case TypeBetrayalHint:
		bodies := []string{
			fmt.Sprintf("说实话，关于刚才的话题...我其实%s", e.betrayalHintOf(senderId)),
			fmt.Sprintf("你别告诉%s，但我觉得ta说的有些道理...", targetName),
			fmt.Sprintf("虽然我嘴上不承认，但%s", e.secretRespect(rel, "ta说的有些地方还是有道理的")),
		}
		return bodies[e.rng.Intn(len(bodies))], [3]string{
			"理解，每个人都有复杂的一面",
			"哦？继续说",
			"有意思，我去告诉ta",
		}

	default: // TypeManipulation
		bodies := []string{
			fmt.Sprintf("你能不能帮我问一下%s是不是对我有意见？", targetName),
			fmt.Sprintf("下次%s再说那种话，你帮我怼回去呗？", targetName),
			"我觉得你比较公正，能不能帮我评评理？",
		}
		return bodies[e.rng.Intn(len(bodies))], [3]string{
			"好的，我帮你",
			"你们的事我不想掺和",
			"你自己去说啊，别拉我下水",
		}
	}
}

func (e *Engine) attackLine(rel *persona.Relationship) string {
	if len(rel.AttackLines) == 0 {
		return "也太那啥了"
	}
	return rel.AttackLines[e.rng.Intn(len(rel.AttackLines))]
}

func (e *Engine) secretRespect(rel *persona.Relationship, fallback string) string {
	if rel.SecretRespect == "" {
		return fallback
	}
	return rel.SecretRespect
}

func (e *Engine) fearOf(personaId string) string {
	fear := e.store.Secrets(personaId).CoreFear
	if fear == "" {
		return "xxx..."
	}
	runes := []rune(fear)
	if len(runes) > 30 {
		return string(runes[:30]) + "..."
	}
	return fear
}

func (e *Engine) publicShameOf(personaId string) string {
	shames := e.store.Secrets(personaId).PublicShames
	if len(shames) == 0 {
		return "的事"
	}
	return shames[e.rng.Intn(len(shames))]
}

func (e *Engine) privateShameOf(personaId string) string {
	shames := e.store.Secrets(personaId).PrivateShames
	if len(shames) == 0 {
		return "有些事不太想提"
	}
	return shames[e.rng.Intn(len(shames))]
}

func (e *Engine) selfDoubtOf(personaId string) string {
	fear := e.store.Secrets(personaId).CoreFear
	if fear == "" {
		return "我是不是做错了什么"
	}
	return fear
}

func (e *Engine) betrayalHintOf(personaId string) string {
	stmt := e.store.Secrets(personaId).Betrayal.Statement
	if stmt == "" {
		return "也不是完全不同意对方的看法"
	}
	return stmt
}
