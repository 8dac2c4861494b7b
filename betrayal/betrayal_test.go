package betrayal

import (
	"strings"
	"testing"

	"github.com/caomingyu/soulqun/persona"
	"github.com/caomingyu/soulqun/rng"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T, r rng.Source) *Engine {
	t.Helper()
	store, err := persona.NewStore()
	require.NoError(t, err)
	return NewEngine(store, r)
}

func TestCheckNoKeywordMatch(t *testing.T) {
	e := newTestEngine(t, &rng.Sequence{Floats: []float64{0}})
	assert.Nil(t, e.Check("douyin", "今天吃什么", 50))
}

func TestCheckFiresOnKeyword(t *testing.T) {
	// Draw of 0 always passes the roll.
	e := newTestEngine(t, &rng.Sequence{Floats: []float64{0}, Ints: []int{0}})

	ev := e.Check("douyin", "算法危害青少年", 50)
	require.NotNil(t, ev)
	assert.Equal(t, "douyin", ev.PersonaId)
	assert.Equal(t, "青少年", ev.TriggerKeyword) // first configured match wins
	assert.Equal(t, "好吧...我承认，有时候我也觉得大家刷得太久了。", ev.Statement)
	assert.Equal(t, "也许...算法确实应该对青少年更负责任", ev.NewStance)
	assert.Equal(t, 1, e.Count("douyin"))
}

func TestCheckProbabilityModel(t *testing.T) {
	// douyin base 0.25, one keyword, emotion 50: p = 0.25 + 0 + 0.1 = 0.35.
	// A draw just above must fail, a draw just below must fire.
	e := newTestEngine(t, &rng.Sequence{Floats: []float64{0.351}})
	assert.Nil(t, e.Check("douyin", "戒不掉的沉迷", 50))

	e = newTestEngine(t, &rng.Sequence{Floats: []float64{0.349}})
	assert.NotNil(t, e.Check("douyin", "戒不掉的沉迷", 50))
}

func TestCheckLowEmotionRaisesOdds(t *testing.T) {
	// Emotion 0: p = 0.25 + 0.5*0.3 + 0.1 = 0.5.
	e := newTestEngine(t, &rng.Sequence{Floats: []float64{0.49}})
	assert.NotNil(t, e.Check("douyin", "戒不掉的沉迷", 0))

	// High emotion contributes nothing, never lowers the base.
	e = newTestEngine(t, &rng.Sequence{Floats: []float64{0.349}})
	assert.NotNil(t, e.Check("douyin", "戒不掉的沉迷", 100))
}

func TestCheckKeywordBonusStacks(t *testing.T) {
	// All four keywords match at emotion 0:
	// 0.25 + 0.5*0.3 = 0.4, then +0.1*4 = 0.8.
	topic := "青少年沉迷是算法危害还是内容同质化"
	e := newTestEngine(t, &rng.Sequence{Floats: []float64{0.799}})
	assert.NotNil(t, e.Check("douyin", topic, 0))

	e = newTestEngine(t, &rng.Sequence{Floats: []float64{0.801}})
	assert.Nil(t, e.Check("douyin", topic, 0))
}

func TestCooldownBlocksAndExpires(t *testing.T) {
	e := newTestEngine(t, &rng.Sequence{Floats: []float64{0}})

	require.NotNil(t, e.Check("douyin", "青少年沉迷", 50))
	assert.Nil(t, e.Check("douyin", "青少年沉迷", 50), "cooling down")

	// Still blocked until five ticks have passed.
	for i := 0; i < 4; i++ {
		e.TickCooldowns()
		assert.Nil(t, e.Check("douyin", "青少年沉迷", 50))
	}
	e.TickCooldowns()
	assert.NotNil(t, e.Check("douyin", "青少年沉迷", 50))
}

func TestTickCooldownsNeverGoesNegative(t *testing.T) {
	e := newTestEngine(t, &rng.Sequence{Floats: []float64{0}})
	for i := 0; i < 10; i++ {
		e.TickCooldowns()
	}
	assert.NotNil(t, e.Check("douyin", "青少年沉迷", 50))
}

func TestShockValue(t *testing.T) {
	e := newTestEngine(t, &rng.Sequence{Floats: []float64{0}})

	// First betrayal on a core topic: 5+3+2, capped at 10.
	ev := e.Check("douyin", "算法危害", 50)
	require.NotNil(t, ev)
	assert.Equal(t, 10, ev.ShockValue)

	// Second betrayal, non-core keyword: base 5 only.
	for i := 0; i < 5; i++ {
		e.TickCooldowns()
	}
	ev = e.Check("douyin", "青少年沉迷", 50)
	require.NotNil(t, ev)
	assert.Equal(t, 5, ev.ShockValue)
}

func TestOriginalStanceTruncated(t *testing.T) {
	e := newTestEngine(t, &rng.Sequence{Floats: []float64{0}})
	ev := e.Check("douyin", "青少年沉迷", 50)
	require.NotNil(t, ev)
	assert.LessOrEqual(t, len([]rune(strings.TrimSuffix(ev.OriginalStance, "..."))), 50)
}

func TestSummary(t *testing.T) {
	e := newTestEngine(t, &rng.Sequence{Floats: []float64{0}})
	assert.Contains(t, e.Summary(), "没有人叛变")

	require.NotNil(t, e.Check("douyin", "青少年沉迷", 50))
	sum := e.Summary()
	assert.Contains(t, sum, "叛变记录")
	assert.Contains(t, sum, "青少年")
}
