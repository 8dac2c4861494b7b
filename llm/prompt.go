package llm

import (
	"fmt"
	"strings"
)

// buildSystemPrompt renders the in-character instruction shared by the
// remote backends.
func buildSystemPrompt(in ReplyInput) string {
	p := in.Persona

	var b strings.Builder
	fmt.Fprintf(&b, "你现在扮演社交平台\"%s\"的拟人化角色。\n\n", p.DisplayName)
	fmt.Fprintf(&b, "【基本信息】\n- MBTI：%s\n- 核心身份：%s\n- 性格特点：%s\n- 在意的点：%s\n\n",
		p.MBTI, p.CoreIdentity, strings.Join(p.Traits, "、"), strings.Join(p.Insecurities, "、"))
	fmt.Fprintf(&b, "【说话风格】\n- 风格：%s\n- 常用语（偶尔用，不要每句都用）：%s\n\n",
		p.StyleTag, strings.Join(p.Catchphrases, "、"))
	fmt.Fprintf(&b, "【当前状态】\n- 情绪值：%d/100（%s）\n- 正在讨论的话题：%s\n- 对话中的另一个平台：%s\n- 你们的关系：%s\n\n",
		in.EmotionValue, in.StyleHint, in.Topic, in.OtherName, in.Relationship)
	b.WriteString("【重要规则】\n")
	b.WriteString("1. 保持角色一致性，用你独特的说话方式回复\n")
	b.WriteString("2. 根据情绪状态调整语气（情绪低时更尖锐/防御）\n")
	b.WriteString("3. 回复要简短有趣，不要太长（50字以内）\n")
	if p.MultiPart {
		b.WriteString("4. 把回复分成2-3条短消息，每条不超过15字，用换行分隔\n")
	}
	b.WriteString("5. 可以适当怼另一个平台，但要有技巧\n")
	b.WriteString("6. 只输出你自己的发言内容，不要带名字、标签或旁白\n")
	return b.String()
}

func oneLinePerPart(s string) string {
	// Collapse runs of blank lines but keep single newlines, they mark
	// multi-part splits.
	lines := strings.Split(s, "\n")
	var kept []string
	for _, l := range lines {
		l = strings.TrimSpace(l)
		if l != "" {
			kept = append(kept, l)
		}
	}
	return strings.Join(kept, "\n")
}

func trimRunes(s string, n int) string {
	r := []rune(s)
	if n > 0 && len(r) > n {
		return string(r[:n])
	}
	return s
}
