package engine

import "unicode"

// Chebyshev returns the king-move distance between two coordinates.
func Chebyshev(a, b Coord) int {
	return max(abs(a.Row-b.Row), abs(a.Col-b.Col))
}

// LetterCount counts the runes of s that are not whitespace.
func LetterCount(s string) int {
	count := 0
	for _, r := range s {
		if !unicode.IsSpace(r) {
			count++
		}
	}
	return count
}

// DisplayMultiplier is the informational combo multiplier shown to players.
// It never feeds into point calculations.
func DisplayMultiplier(combo int, step, ceiling float64) float64 {
	m := 1 + float64(combo)*step
	if m > ceiling {
		return ceiling
	}
	return m
}

// abs returns the absolute value of x
func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
