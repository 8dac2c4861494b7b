package topic

import (
	"testing"

	"github.com/caomingyu/soulqun/rng"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCatalogLoadsEmbeddedTopics(t *testing.T) {
	c, err := NewCatalog()
	require.NoError(t, err)

	all := c.All()
	require.NotEmpty(t, all)
	for _, topic := range all {
		assert.NotEmpty(t, topic.Title)
		assert.NotEmpty(t, topic.Category)
	}
}

func TestPickNReturnsDistinctTopics(t *testing.T) {
	c, err := NewCatalog()
	require.NoError(t, err)

	picked := c.PickN(rng.New(1), 3)
	require.Len(t, picked, 3)

	seen := map[string]bool{}
	for _, topic := range picked {
		assert.False(t, seen[topic.Title], "no duplicate picks")
		seen[topic.Title] = true
	}
}

func TestPickNClampsN(t *testing.T) {
	c, err := NewCatalog()
	require.NoError(t, err)

	assert.Len(t, c.PickN(rng.New(1), 0), len(c.All()))
	assert.Len(t, c.PickN(rng.New(1), 999), len(c.All()))
}
