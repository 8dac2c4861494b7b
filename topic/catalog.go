package topic

import (
	"fmt"

	"github.com/caomingyu/soulqun/configs"
	"github.com/caomingyu/soulqun/rng"
	"gopkg.in/yaml.v3"
)

// Catalog is the embedded topic catalog, grouped into weighted
// categories. Loaded once, read-only afterwards.
type Catalog struct {
	topics  []*Topic
	weights []float64
}

// NewCatalog loads the embedded topic config.
func NewCatalog() (*Catalog, error) {
	var cf struct {
		Categories []struct {
			Name   string   `yaml:"name"`
			Weight float64  `yaml:"weight"`
			Topics []*Topic `yaml:"topics"`
		} `yaml:"categories"`
	}
	if err := yaml.Unmarshal(configs.Topics, &cf); err != nil {
		return nil, fmt.Errorf("failed to unmarshal embedded topics: %w", err)
	}

	c := &Catalog{}
	for _, cat := range cf.Categories {
		w := cat.Weight
		if w <= 0 {
			w = 0.2
		}
		for _, t := range cat.Topics {
			t.Category = cat.Name
			c.topics = append(c.topics, t)
			c.weights = append(c.weights, w)
		}
	}
	if len(c.topics) == 0 {
		return nil, fmt.Errorf("no topics configured")
	}
	return c, nil
}

// All returns every topic in catalog order.
func (c *Catalog) All() []*Topic {
	return c.topics
}

// PickN draws n topics at random, weighted by category weight. Draws
// are independent, so duplicates are possible when n approaches the
// catalog size; callers wanting a menu keep n small.
func (c *Catalog) PickN(r rng.Source, n int) []*Topic {
	if n <= 0 || n > len(c.topics) {
		n = len(c.topics)
	}
	total := 0.0
	for _, w := range c.weights {
		total += w
	}

	picked := make([]*Topic, 0, n)
	used := make(map[int]struct{})
	for len(picked) < n {
		x := r.Float64() * total
		idx := len(c.topics) - 1
		for i, w := range c.weights {
			if x < w {
				idx = i
				break
			}
			x -= w
		}
		if _, seen := used[idx]; seen {
			continue
		}
		used[idx] = struct{}{}
		picked = append(picked, c.topics[idx])
	}
	return picked
}
