package game

import "math"

const (
	xpCurveBase     = 50.0
	xpCurveExponent = 1.8

	// MaxLevel caps the leveling curve. XP beyond the cap still accumulates
	// in total_xp but never raises the level further.
	MaxLevel = 100
)

var titleSteps = []struct {
	minLevel int
	title    string
}{
	{1, "Novice"},
	{5, "Apprentice"},
	{10, "Adept"},
	{20, "Journeyman"},
	{30, "Veteran"},
	{40, "Expert"},
	{50, "Master"},
	{65, "Grandmaster"},
	{80, "Legend"},
	{100, "Mythic"},
}

// XPForLevel returns the cumulative XP required to reach level. Level 1 costs
// nothing; each step from level k to k+1 costs floor(50 * k^1.8), so the
// cumulative curve is strictly increasing.
func XPForLevel(level int) int64 {
	if level > MaxLevel {
		level = MaxLevel
	}
	var total int64
	for k := 1; k < level; k++ {
		total += int64(math.Floor(xpCurveBase * math.Pow(float64(k), xpCurveExponent)))
	}
	return total
}

// LevelForXP inverts the curve: the highest level whose cumulative
// requirement fits within xp, capped at MaxLevel.
func LevelForXP(xp int64) int {
	level := 1
	for level < MaxLevel && XPForLevel(level+1) <= xp {
		level++
	}
	return level
}

// TitleForLevel is a step function over the fixed ordered title list.
func TitleForLevel(level int) string {
	title := titleSteps[0].title
	for _, step := range titleSteps {
		if level < step.minLevel {
			break
		}
		title = step.title
	}
	return title
}
