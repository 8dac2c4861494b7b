package persona

// Persona is the configured, anthropomorphized stand-in for a social
// platform. The definition is immutable for the process lifetime and is
// the base of every prompt sent to the responder.
type Persona struct {
	PersonaId    string   `yaml:"personaId"`
	DisplayName  string   `yaml:"displayName"`
	Avatar       string   `yaml:"avatar"`
	CoreIdentity string   `yaml:"coreIdentity"`
	MBTI         string   `yaml:"mbti"`
	Traits       []string `yaml:"traits"`
	Values       []string `yaml:"values"`
	Insecurities []string `yaml:"insecurities"`
	StyleTag     string   `yaml:"styleTag"`
	Catchphrases []string `yaml:"catchphrases"`

	// MultiPart personas split a reply containing newlines into several
	// short bubbles, preserving order.
	MultiPart bool `yaml:"multiPart"`
	// InitialEmotion is the starting mood value, typically 50..70.
	InitialEmotion int `yaml:"initialEmotion"`

	Openings []string `yaml:"openings"`
	Fallback string   `yaml:"fallback"`
	Reviews  []string `yaml:"reviews"`
}

// Relationship is a directed edge between two personas. It modulates
// trigger damage, betrayal odds and private-message phrasing.
type Relationship struct {
	From          string   `yaml:"from"`
	To            string   `yaml:"to"`
	Type          string   `yaml:"type"` // rivalry, sisters, mutual_respect, neutral
	Intensity     float64  `yaml:"intensity"`
	Description   string   `yaml:"description"`
	AttackLines   []string `yaml:"attackLines"`
	SecretRespect string   `yaml:"secretRespect"`
}

// Rivalry reports whether the edge counts as a rivalry: either the
// explicit type or any relation hot enough (intensity > 0.7).
func (r *Relationship) Rivalry() bool {
	return r.Type == "rivalry" || r.Intensity > 0.7
}

// Secrets holds a persona's hidden attributes: what breaks it, what
// heals it, and what it would rather nobody brought up.
type Secrets struct {
	BreakdownTriggers  []string       `yaml:"breakdownTriggers"`
	BreakdownResponses []string       `yaml:"breakdownResponses"`
	HealingWords       []string       `yaml:"healingWords"`
	CoreFear           string         `yaml:"coreFear"`
	PublicShames       []string       `yaml:"publicShames"`
	PrivateShames      []string       `yaml:"privateShames"`
	Betrayal           BetrayalConfig `yaml:"betrayal"`
}

// BetrayalConfig configures when and how a persona flips its stance.
type BetrayalConfig struct {
	Keywords    []string     `yaml:"keywords"`
	Probability float64      `yaml:"probability"`
	Statement   string       `yaml:"statement"`
	CoreTopics  []string     `yaml:"coreTopics"`
	Stances     []StanceRule `yaml:"stances"`
}

// StanceRule maps a triggering keyword fragment to the conceding line
// spoken after a betrayal. Rules are evaluated in order, first match wins.
type StanceRule struct {
	Match string `yaml:"match"`
	Reply string `yaml:"reply"`
}
