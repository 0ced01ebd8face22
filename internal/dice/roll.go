// Package dice implements the dice-rolling engine and the public roll endpoint.
package dice

import "math/rand/v2"

// Bounds enforced at the request layer. Values outside these ranges must
// never reach Roll.
const (
	MinDice  = 1
	MaxDice  = 100
	MinSides = 2
	MaxSides = 1000
)

// Result captures a single roll. It is ephemeral and never persisted.
type Result struct {
	Rolls    []int `json:"rolls"`
	Total    int   `json:"total"`
	Modifier int   `json:"modifier"`
	Final    int   `json:"final"`
	Sides    int   `json:"sides"`
}

// Roll produces numDice independent uniform values in [1, sides], their sum,
// and the modifier-adjusted final total. The package-level generator in
// math/rand/v2 is seeded from system entropy and safe for concurrent use, so
// Roll needs no shared mutable state of its own.
func Roll(numDice, sides, modifier int) Result {
	rolls := make([]int, numDice)
	total := 0
	for i := range rolls {
		value := rand.IntN(sides) + 1
		rolls[i] = value
		total += value
	}
	return Result{
		Rolls:    rolls,
		Total:    total,
		Modifier: modifier,
		Final:    total + modifier,
		Sides:    sides,
	}
}
