package persona

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStoreLoadsEmbeddedConfig(t *testing.T) {
	s, err := NewStore()
	require.NoError(t, err)

	all := s.All()
	require.Len(t, all, 6)
	assert.Equal(t, "douyin", all[0].PersonaId, "config order is preserved")

	p, err := s.Get("zhihu")
	require.NoError(t, err)
	assert.NotEmpty(t, p.DisplayName)
	assert.NotEmpty(t, p.Openings)
	assert.NotEmpty(t, p.Fallback)
	assert.NotEmpty(t, p.Reviews)
	assert.Greater(t, p.InitialEmotion, 0)

	_, err = s.Get("myspace")
	assert.Error(t, err)
}

func TestRelationshipDefaults(t *testing.T) {
	s, err := NewStore()
	require.NoError(t, err)

	rel := s.Relationship("douyin", "zhihu")
	assert.Equal(t, "rivalry", rel.Type)
	assert.True(t, s.IsRival("douyin", "zhihu"))
	assert.True(t, s.IsRival("zhihu", "douyin"))

	// Unconfigured pairs degrade to the neutral default.
	rel = s.Relationship("douyin", "myspace")
	assert.Equal(t, "neutral", rel.Type)
	assert.False(t, s.IsRival("douyin", "myspace"))
}

func TestRivalryByIntensity(t *testing.T) {
	r := &Relationship{Type: "mutual_respect", Intensity: 0.8}
	assert.True(t, r.Rivalry(), "hot enough counts as rivalry")

	r = &Relationship{Type: "mutual_respect", Intensity: 0.6}
	assert.False(t, r.Rivalry())
}

func TestSecretsDefaults(t *testing.T) {
	s, err := NewStore()
	require.NoError(t, err)

	sec := s.Secrets("douyin")
	assert.NotEmpty(t, sec.BreakdownTriggers)
	assert.NotEmpty(t, sec.Betrayal.Keywords)
	assert.NotEmpty(t, sec.Betrayal.Stances)

	// Unknown personas get an empty table, never nil.
	sec = s.Secrets("myspace")
	require.NotNil(t, sec)
	assert.Empty(t, sec.BreakdownTriggers)
}

func TestDisplayNameFallsBackToId(t *testing.T) {
	s, err := NewStore()
	require.NoError(t, err)
	assert.NotEqual(t, "douyin", s.DisplayName("douyin"))
	assert.Equal(t, "myspace", s.DisplayName("myspace"))
}
