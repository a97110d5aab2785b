package gamification

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevelForTotalExp(t *testing.T) {
	cases := []struct {
		totalExp int
		level    int
	}{
		{0, 1},
		{99, 1},
		{100, 2},   // level 2 needs 100
		{249, 2},   // level 3 needs 100 + 150
		{250, 3},
		{474, 3},   // level 4 needs 100 + 150 + 225
		{475, 4},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.level, LevelForTotalExp(tc.totalExp), "totalExp=%d", tc.totalExp)
	}
}

func TestRequiredForLevel(t *testing.T) {
	assert.Equal(t, 100, RequiredForLevel(1))
	assert.Equal(t, 150, RequiredForLevel(2))
	assert.Equal(t, 225, RequiredForLevel(3))
	// Integer truncation at each step: 225 * 1.5 = 337.5 -> 337
	assert.Equal(t, 337, RequiredForLevel(4))
}

func TestAddExp(t *testing.T) {
	// Fresh user earns a generation reward.
	p := AddExp(1, 0, 0, ExpCodeGenerated)
	assert.Equal(t, 1, p.Level)
	assert.Equal(t, 20, p.Exp)
	assert.Equal(t, 20, p.TotalExp)
	assert.False(t, p.LeveledUp)

	// Crossing the first threshold levels up and carries the remainder.
	p = AddExp(1, 95, 95, 10)
	assert.Equal(t, 2, p.Level)
	assert.Equal(t, 5, p.Exp)
	assert.Equal(t, 105, p.TotalExp)
	assert.True(t, p.LeveledUp)

	// Large award can skip levels.
	p = AddExp(1, 0, 0, 300)
	assert.Equal(t, 3, p.Level)
	assert.Equal(t, 50, p.Exp)
	assert.True(t, p.LeveledUp)
}

func TestAddExpConsistentWithRepeatedAwards(t *testing.T) {
	// Many small awards land in the same state as one big award.
	level, exp, total := 1, 0, 0
	for i := 0; i < 20; i++ {
		p := AddExp(level, exp, total, ExpCodeAnalyzed)
		level, exp, total = p.Level, p.Exp, p.TotalExp
	}

	once := AddExp(1, 0, 0, 20*ExpCodeAnalyzed)
	assert.Equal(t, once.Level, level)
	assert.Equal(t, once.Exp, exp)
	assert.Equal(t, once.TotalExp, total)
}

func TestLevelProgress(t *testing.T) {
	assert.InDelta(t, 50.0, LevelProgress(1, 50), 0.001)
	assert.InDelta(t, 100.0, LevelProgress(1, 150), 0.001) // capped
	assert.InDelta(t, 0.0, LevelProgress(1, 0), 0.001)
}
