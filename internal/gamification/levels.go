// Package gamification computes experience points and levels for platform
// users and records the activity log entries that earn them.
package gamification

// Leveling constants. Each level requires 1.5x the previous level's
// experience, starting at 100 for level 1 -> 2.
const (
	XPPerLevel   = 100
	XPMultiplier = 1.5
)

// Event types and their experience rewards.
const (
	EventCodeGenerated = "code_generated"
	EventCodeAnalyzed  = "code_analyzed"

	ExpCodeGenerated = 20
	ExpCodeAnalyzed  = 5
)

// Progress holds a user's recomputed leveling state after an award.
type Progress struct {
	Level     int  `json:"level"`
	Exp       int  `json:"exp"`
	TotalExp  int  `json:"total_exp"`
	LeveledUp bool `json:"leveled_up"`
}

// thresholdExp returns the cumulative experience needed to finish the given
// number of levels. Per-level requirements grow geometrically with integer
// truncation at each step.
func thresholdExp(levels int) int {
	required := XPPerLevel
	total := 0
	for i := 0; i < levels; i++ {
		total += required
		required = int(float64(required) * XPMultiplier)
	}
	return total
}

// LevelForTotalExp converts lifetime experience into a level.
func LevelForTotalExp(totalExp int) int {
	required := XPPerLevel
	level := 1
	needed := 0
	for needed <= totalExp {
		level++
		needed += required
		required = int(float64(required) * XPMultiplier)
	}
	return level - 1
}

// RequiredForLevel returns the experience needed to advance past the given
// level.
func RequiredForLevel(level int) int {
	required := XPPerLevel
	for i := 1; i < level; i++ {
		required = int(float64(required) * XPMultiplier)
	}
	return required
}

// AddExp applies an experience gain to a user's current state and returns
// the recomputed progress. Level is always derived from total experience, so
// repeated awards stay consistent no matter the starting state.
func AddExp(level, exp, totalExp, amount int) Progress {
	newTotal := totalExp + amount
	newLevel := LevelForTotalExp(newTotal)
	newExp := newTotal - thresholdExp(newLevel-1)

	return Progress{
		Level:     newLevel,
		Exp:       newExp,
		TotalExp:  newTotal,
		LeveledUp: newLevel > level,
	}
}

// LevelProgress reports how far a user is into their current level as a
// percentage, capped at 100.
func LevelProgress(level, exp int) float64 {
	required := RequiredForLevel(level)
	if required <= 0 {
		return 0
	}
	progress := float64(exp) / float64(required) * 100
	if progress > 100 {
		progress = 100
	}
	return progress
}
