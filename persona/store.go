package persona

import (
	"fmt"
	"log/slog"

	"github.com/caomingyu/soulqun/configs"
	"gopkg.in/yaml.v3"
)

// Store is the read-only configuration store: persona definitions,
// pairwise relationships and secret tables, loaded once from the
// embedded config files. Missing entries degrade to documented defaults
// instead of failing the turn.
type Store struct {
	ordered []*Persona
	byId    map[string]*Persona
	rels    map[string]map[string]*Relationship
	secrets map[string]*Secrets
}

var neutralRelationship = &Relationship{Type: "neutral", Intensity: 0.3, Description: "关系一般"}
var emptySecrets = &Secrets{}

// NewStore loads the embedded persona, relationship and secret config.
func NewStore() (*Store, error) {
	var pf struct {
		Personas []*Persona `yaml:"personas"`
	}
	if err := yaml.Unmarshal(configs.Personas, &pf); err != nil {
		return nil, fmt.Errorf("failed to unmarshal embedded personas: %w", err)
	}
	if len(pf.Personas) == 0 {
		return nil, fmt.Errorf("no personas configured")
	}

	var rf struct {
		Relationships []*Relationship `yaml:"relationships"`
	}
	if err := yaml.Unmarshal(configs.Relationships, &rf); err != nil {
		return nil, fmt.Errorf("failed to unmarshal embedded relationships: %w", err)
	}

	var sf struct {
		Secrets map[string]*Secrets `yaml:"secrets"`
	}
	if err := yaml.Unmarshal(configs.Secrets, &sf); err != nil {
		return nil, fmt.Errorf("failed to unmarshal embedded secrets: %w", err)
	}

	s := &Store{
		ordered: pf.Personas,
		byId:    make(map[string]*Persona, len(pf.Personas)),
		rels:    make(map[string]map[string]*Relationship),
		secrets: sf.Secrets,
	}
	if s.secrets == nil {
		s.secrets = make(map[string]*Secrets)
	}
	for _, p := range pf.Personas {
		s.byId[p.PersonaId] = p
	}
	for _, r := range rf.Relationships {
		if _, ok := s.rels[r.From]; !ok {
			s.rels[r.From] = make(map[string]*Relationship)
		}
		s.rels[r.From][r.To] = r
	}
	return s, nil
}

// All returns every persona in config order. The order is fixed and is
// used as the tie-break order for scoring.
func (s *Store) All() []*Persona {
	return s.ordered
}

// Get returns the persona with the given id.
func (s *Store) Get(personaId string) (*Persona, error) {
	p, ok := s.byId[personaId]
	if !ok {
		return nil, fmt.Errorf("persona with id '%s' not found", personaId)
	}
	return p, nil
}

// DisplayName returns the display name for an id, falling back to the
// id itself when the persona is unknown.
func (s *Store) DisplayName(personaId string) string {
	if p, ok := s.byId[personaId]; ok {
		return p.DisplayName
	}
	return personaId
}

// Relationship returns the directed relationship from a to b. Unknown
// pairs get a neutral default rather than an error.
func (s *Store) Relationship(from, to string) *Relationship {
	if m, ok := s.rels[from]; ok {
		if r, ok := m[to]; ok {
			return r
		}
	}
	slog.Debug("relationship not configured, using neutral default", "from", from, "to", to)
	return neutralRelationship
}

// IsRival reports whether b counts as a's rival.
func (s *Store) IsRival(from, to string) bool {
	return s.Relationship(from, to).Rivalry()
}

// Secrets returns a persona's secret table, or an empty table when none
// is configured. Callers must treat the result as read-only.
func (s *Store) Secrets(personaId string) *Secrets {
	if sec, ok := s.secrets[personaId]; ok && sec != nil {
		return sec
	}
	slog.Debug("secrets not configured, using empty default", "personaId", personaId)
	return emptySecrets
}
