// Package dice provides the randomness abstraction behind every probability
// gate and random tie-break in the engine. Production code uses a crypto or
// seeded source; tests inject a fixed sequence so outcomes are deterministic.
package dice

import "math"

// ChanceResolution is the number of equally likely outcomes a Chance draw
// distinguishes between. Probabilities are rounded to 1/ChanceResolution.
const ChanceResolution = 10_000

// Source is the randomness provider for the engine.
//
// Implementations MUST be safe for concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}

// Chance draws once from src and reports whether an event of probability p fires.
// p <= 0 never fires and p >= 1 always fires; neither consumes a draw.
//
// Precondition: src must be non-nil.
// Postcondition: Returns true with probability p (to ChanceResolution precision).
func Chance(src Source, p float64) bool {
	switch {
	case p <= 0 || math.IsNaN(p):
		return false
	case p >= 1:
		return true
	}
	threshold := int(math.Round(p * ChanceResolution))
	return src.Intn(ChanceResolution) < threshold
}

// Pick returns a uniformly random index in [0, n).
//
// Precondition: n > 0; src must be non-nil.
func Pick(src Source, n int) int {
	if n == 1 {
		return 0
	}
	return src.Intn(n)
}
