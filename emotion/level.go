package emotion

// Level is the qualitative band a mood value falls into.
type Level string

const (
	LevelExcited Level = "excited" // 80-100
	LevelHappy   Level = "happy"   // 60-79
	LevelNeutral Level = "neutral" // 40-59
	LevelAnnoyed Level = "annoyed" // 20-39
	LevelAngry   Level = "angry"   // 10-19
	LevelBroken  Level = "broken"
)

// LevelFor maps a mood value to its band. A broken persona is always
// reported as broken regardless of value.
func LevelFor(value int, broken bool) Level {
	switch {
	case broken:
		return LevelBroken
	case value >= 80:
		return LevelExcited
	case value >= 60:
		return LevelHappy
	case value >= 40:
		return LevelNeutral
	case value >= 20:
		return LevelAnnoyed
	case value >= 10:
		return LevelAngry
	default:
		return LevelBroken
	}
}

// StyleHint is the stylistic modifier fed into the responder prompt.
func (l Level) StyleHint() string {
	switch l {
	case LevelExcited:
		return "非常兴奋，语速加快，多用感叹号"
	case LevelHappy:
		return "心情不错，语气轻松"
	case LevelAnnoyed:
		return "有点烦躁，语气变冲"
	case LevelAngry:
		return "很生气，可能会出言不逊"
	case LevelBroken:
		return "情绪崩溃，可能会说出真心话或反击"
	default:
		return "正常状态"
	}
}

func (l Level) Emoji() string {
	switch l {
	case LevelExcited:
		return "🤩"
	case LevelHappy:
		return "😊"
	case LevelAnnoyed:
		return "😤"
	case LevelAngry:
		return "😠"
	case LevelBroken:
		return "😭💔"
	default:
		return "😐"
	}
}

func (l Level) StatusText() string {
	switch l {
	case LevelExcited:
		return "嗨起来了！"
	case LevelHappy:
		return "心情不错~"
	case LevelAnnoyed:
		return "有点烦..."
	case LevelAngry:
		return "快绷不住了"
	case LevelBroken:
		return "💔 破防了！"
	default:
		return "正常营业"
	}
}
