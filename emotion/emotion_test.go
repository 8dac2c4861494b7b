package emotion

import (
	"testing"

	"github.com/caomingyu/soulqun/persona"
	"github.com/caomingyu/soulqun/rng"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	store, err := persona.NewStore()
	require.NoError(t, err)
	return NewEngine(store, &rng.Sequence{})
}

func TestProcessTurnDamageBySource(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   int
	}{
		{"user hurts the most", SourceUser, 50 - UserAttackDamage},
		{"rival hurts more", "zhihu", 50 - RivalAttackDamage},
		{"other persona base damage", "tieba", 50 - TriggerDamage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(t)
			e.Init("douyin", 50)

			rep := e.ProcessTurn("douyin", "短视频就是没内涵", tt.source)
			assert.Equal(t, tt.want, rep.NewValue)
			assert.Equal(t, []string{"没内涵"}, rep.Triggers)
			assert.False(t, rep.Broke)
		})
	}
}

func TestProcessTurnHealingAndRegen(t *testing.T) {
	e := newTestEngine(t)
	e.Init("douyin", 50)

	// Two healing phrases plus ambient regen, no negative trigger.
	rep := e.ProcessTurn("douyin", "很接地气，有意思", SourceUser)
	assert.Equal(t, 50+2*HealingDelta+BaseRegen, rep.NewValue)
	assert.Len(t, rep.Supports, 2)

	// A plain message only regenerates.
	rep = e.ProcessTurn("douyin", "今天天气不错", SourceUser)
	assert.Equal(t, 72+BaseRegen, rep.NewValue)
}

func TestProcessTurnNoRegenWithNegativeTrigger(t *testing.T) {
	e := newTestEngine(t)
	e.Init("douyin", 50)

	// Healing and trigger in the same message: both apply, no regen.
	rep := e.ProcessTurn("douyin", "虽然接地气，但是没内涵", SourceUser)
	assert.Equal(t, 50-UserAttackDamage+HealingDelta, rep.NewValue)
}

func TestApplyClampsToBounds(t *testing.T) {
	e := newTestEngine(t)
	e.Init("douyin", 95)

	v, _ := e.Apply("douyin", 40)
	assert.Equal(t, 100, v)

	v, _ = e.Apply("douyin", -150)
	assert.Equal(t, 0, v)
}

func TestBreakdownIsEdgeTriggered(t *testing.T) {
	e := newTestEngine(t)
	e.Init("douyin", 50)

	_, crossed := e.Apply("douyin", -20) // 30
	assert.False(t, crossed)
	_, crossed = e.Apply("douyin", -20) // 10, crosses
	assert.True(t, crossed)
	_, crossed = e.Apply("douyin", -20) // 0, already broken
	assert.False(t, crossed)

	st := e.StateOf("douyin")
	assert.True(t, st.Broken)
	assert.Equal(t, 1, st.BrokenCount)
}

func TestRecoverResetsToFloor(t *testing.T) {
	e := newTestEngine(t)
	e.Init("douyin", 50)
	e.Apply("douyin", -45) // 5, broken

	e.Recover("douyin")
	st := e.StateOf("douyin")
	assert.Equal(t, RecoveryFloor, st.Value)
	assert.False(t, st.Broken)

	// A second breakdown counts again.
	_, crossed := e.Apply("douyin", -20)
	assert.True(t, crossed)
	assert.Equal(t, 2, e.StateOf("douyin").BrokenCount)
}

func TestRepeatedUserAttacksBreakOnSecondHit(t *testing.T) {
	e := newTestEngine(t)
	e.Init("douyin", 50)

	rep := e.ProcessTurn("douyin", "全是没内涵的东西", SourceUser)
	assert.Equal(t, 25, rep.NewValue)
	assert.False(t, rep.Broke)

	rep = e.ProcessTurn("douyin", "还是没内涵", SourceUser)
	assert.Equal(t, 0, rep.NewValue)
	assert.True(t, rep.Broke)
}

func TestInitResetsState(t *testing.T) {
	e := newTestEngine(t)
	e.Init("douyin", 70)
	e.Apply("douyin", -60) // 10, broken

	e.Init("douyin", 70)
	st := e.StateOf("douyin")
	assert.Equal(t, 70, st.Value)
	assert.False(t, st.Broken)
	assert.Equal(t, 0, st.BrokenCount)
}

func TestUnknownPersonaDefaults(t *testing.T) {
	e := newTestEngine(t)
	assert.Equal(t, DefaultInitial, e.Value("nobody"))

	// Unknown personas have no triggers, only regen applies.
	rep := e.ProcessTurn("nobody", "没内涵", SourceUser)
	assert.Empty(t, rep.Triggers)
	assert.Equal(t, DefaultInitial+BaseRegen, rep.NewValue)
}

func TestBreakdownResponseFromPool(t *testing.T) {
	store, err := persona.NewStore()
	require.NoError(t, err)
	e := NewEngine(store, &rng.Sequence{Ints: []int{1}})

	resp := e.BreakdownResponse("douyin")
	assert.Equal(t, "你们都觉得我肤浅是吧...行，我肤浅", resp)

	// Unknown persona falls back to the generic line.
	assert.Equal(t, "...我不想说话了。", e.BreakdownResponse("nobody"))
}

func TestLevelFor(t *testing.T) {
	assert.Equal(t, LevelExcited, LevelFor(80, false))
	assert.Equal(t, LevelHappy, LevelFor(60, false))
	assert.Equal(t, LevelNeutral, LevelFor(40, false))
	assert.Equal(t, LevelAnnoyed, LevelFor(20, false))
	assert.Equal(t, LevelAngry, LevelFor(10, false))
	assert.Equal(t, LevelBroken, LevelFor(9, false))
	assert.Equal(t, LevelBroken, LevelFor(90, true))
}
