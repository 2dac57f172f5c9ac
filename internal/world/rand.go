package world

import "github.com/KirkDiggler/rpg-toolkit/dice"

// RollRange returns a uniform integer in [lo, hi]. A failing roller yields lo.
func RollRange(r dice.Roller, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	v, err := r.Roll(hi - lo + 1)
	if err != nil {
		return lo
	}
	return lo + v - 1
}

// Chance rolls a d100 against percent.
func Chance(r dice.Roller, percent int) bool {
	if percent <= 0 {
		return false
	}
	if percent >= 100 {
		return true
	}
	v, err := r.Roll(100)
	if err != nil {
		return false
	}
	return v <= percent
}

// Pick returns a uniform index in [0, n).
func Pick(r dice.Roller, n int) int {
	if n <= 1 {
		return 0
	}
	return RollRange(r, 0, n-1)
}
