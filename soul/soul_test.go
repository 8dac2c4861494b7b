package soul

import (
	"testing"

	"github.com/caomingyu/soulqun/rng"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewEngine(&rng.Sequence{}, nil)
	require.NoError(t, err)
	return e
}

func TestScoreUtteranceKeywords(t *testing.T) {
	e := newTestEngine(t)

	inc := e.ScoreUtterance("家人们，这也太离谱了")
	// 家人们 and 离谱 are high-weight douyin keywords.
	assert.GreaterOrEqual(t, inc["douyin"], 6.0)
	assert.Greater(t, inc["douyin"], inc["zhihu"])
}

func TestScoreUtteranceCountsRepeats(t *testing.T) {
	e := newTestEngine(t)

	once := e.ScoreUtterance("谢邀")["zhihu"]
	twice := newFresh(t).ScoreUtterance("谢邀，谢邀")["zhihu"]
	assert.Equal(t, once*2, twice)
}

func newFresh(t *testing.T) *Engine {
	t.Helper()
	return newTestEngine(t)
}

func TestScoreUtterancePatternBonus(t *testing.T) {
	e := newTestEngine(t)

	// 哈{3,} matches the douyin laugh pattern on top of the 哈哈哈
	// medium keyword.
	withPattern := e.ScoreUtterance("哈哈哈哈哈")["douyin"]
	assert.GreaterOrEqual(t, withPattern, patternWeight)
}

func TestScoreUtteranceAccumulates(t *testing.T) {
	e := newTestEngine(t)
	e.ScoreUtterance("谢邀")
	e.ScoreUtterance("谢邀")
	assert.Equal(t, 6.0, e.Scores()["zhihu"])
}

func TestScoreBehaviorTable(t *testing.T) {
	tests := []struct {
		name     string
		behavior string
		details  map[string]string
		want     map[string]float64
	}{
		{"alliance boosts target and dings rival", BehaviorAlliance,
			map[string]string{"target": "douyin", "rival": "zhihu"},
			map[string]float64{"douyin": 10, "zhihu": -5}},
		{"expose feeds the gossip score", BehaviorExpose, nil,
			map[string]float64{"weibo": 5, "zhihu": -3}},
		{"neutrality reads as detachment", BehaviorNeutral, nil,
			map[string]float64{"zhihu": 3, "x": 3}},
		{"supporting the broken", BehaviorSupportBroken, nil,
			map[string]float64{"xiaohongshu": 3}},
		{"kicking the broken", BehaviorAttackBroken, nil,
			map[string]float64{"tieba": 5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(t)
			e.ScoreBehavior(tt.behavior, tt.details)
			for id, want := range tt.want {
				assert.Equal(t, want, e.Scores()[id], id)
			}
		})
	}
}

func TestScoreBehaviorIgnoresUnknownTarget(t *testing.T) {
	e := newTestEngine(t)
	e.ScoreBehavior(BehaviorAlliance, map[string]string{"target": "nobody", "rival": ""})
	for id, v := range e.Scores() {
		assert.Zero(t, v, id)
	}
}

func TestScoreBehaviorUnconfiguredTypeNoop(t *testing.T) {
	e := newTestEngine(t)
	e.ScoreBehavior("lurk_silently", nil)
	for id, v := range e.Scores() {
		assert.Zero(t, v, id)
	}
}

func TestPercentagesZeroTallyEqualSplit(t *testing.T) {
	e := newTestEngine(t)
	p := e.Percentages()
	require.Len(t, p, 6)
	for id, share := range p {
		assert.InDelta(t, 16.7, share, 0.01, id)
	}
}

func TestPercentagesNormalize(t *testing.T) {
	e := newTestEngine(t)
	e.scores["douyin"] = 30
	e.scores["zhihu"] = 10

	p := e.Percentages()
	assert.Equal(t, 75.0, p["douyin"])
	assert.Equal(t, 25.0, p["zhihu"])
	assert.Equal(t, 0.0, p["tieba"])
}

func TestFinalizeDominantSoulType(t *testing.T) {
	e := newTestEngine(t)
	e.scores["douyin"] = 60
	e.scores["zhihu"] = 40

	rep := e.Finalize()
	assert.Equal(t, "douyin", rep.Dominant)
	assert.Equal(t, "纯粹的快乐小丑", rep.SoulType)
	assert.Equal(t, "你的注意力可能撑不过15秒，但没关系，快乐最重要对吧？", rep.Roast)
	assert.NotEmpty(t, rep.Advice)

	// Components are the shares above 5%, descending.
	require.Len(t, rep.Components, 2)
	assert.Equal(t, "douyin", rep.Components[0].PersonaId)
	assert.Equal(t, 60.0, rep.Components[0].Percentage)
}

func TestFinalizeBalancedSoul(t *testing.T) {
	e := newTestEngine(t)
	// Everything within a 20-point spread and nothing above 50.
	for id := range e.scores {
		e.scores[id] = 10
	}
	rep := e.Finalize()
	assert.Equal(t, "平衡的灵魂", rep.SoulType)
}

func TestFinalizeChaoticSoul(t *testing.T) {
	e := newTestEngine(t)
	// Four shares above 20% with a spread too wide for balance.
	e.scores["douyin"] = 30
	e.scores["zhihu"] = 25
	e.scores["weibo"] = 24
	e.scores["tieba"] = 21
	// 30+25+24+21 = 100, others zero: spread 30 > 20, four above 20.
	rep := e.Finalize()
	assert.Equal(t, "混沌特工", rep.SoulType)
}

func TestFinalizeIsDeterministic(t *testing.T) {
	build := func() *Report {
		e := newTestEngine(t)
		e.ScoreUtterance("谢邀，先问是不是再问为什么")
		e.ScoreBehavior(BehaviorNeutral, nil)
		return e.Finalize()
	}
	a, b := build(), build()
	assert.Equal(t, a.SoulType, b.SoulType)
	assert.Equal(t, a.Dominant, b.Dominant)
	assert.Equal(t, a.Percentages, b.Percentages)
}

func TestSpecialTraits(t *testing.T) {
	e := newTestEngine(t)
	e.scores["weibo"] = 40
	e.scores["douyin"] = 60
	e.ScoreBehavior(BehaviorExpose, nil)
	e.ScoreBehavior(BehaviorNeutral, nil)
	e.ScoreBehavior(BehaviorNeutral, nil)

	rep := e.Finalize()
	assert.Contains(t, rep.SpecialTraits, "📢 大嘴巴：保不住秘密")
	assert.Contains(t, rep.SpecialTraits, "🧘 老滑头：从不站队")
	assert.LessOrEqual(t, len(rep.SpecialTraits), 5)
}

func TestQuickSummaryTopThree(t *testing.T) {
	e := newTestEngine(t)
	e.scores["douyin"] = 50
	e.scores["zhihu"] = 30
	e.scores["weibo"] = 20

	s := e.QuickSummary()
	assert.Contains(t, s, "50%douyin")
	assert.Contains(t, s, "30%zhihu")
	assert.Contains(t, s, "20%weibo")
}
