package dice

import "go.uber.org/zap"

// Roller wraps a Source and logger so every draw is logged at debug level.
// A Roller is itself a Source and can be injected wherever one is expected.
type Roller struct {
	src    Source
	logger *zap.Logger
}

// NewLoggedRoller creates a Roller that draws from src and logs each draw to logger.
//
// Precondition: src and logger must be non-nil.
func NewLoggedRoller(src Source, logger *zap.Logger) *Roller {
	return &Roller{src: src, logger: logger}
}

// Intn draws from the wrapped source and logs the bound and result.
//
// Precondition: n > 0.
func (r *Roller) Intn(n int) int {
	v := r.src.Intn(n)
	r.logger.Debug("random draw",
		zap.Int("n", n),
		zap.Int("value", v),
	)
	return v
}

// Chance performs a labelled probability draw and logs its outcome.
//
// Postcondition: result logged; returns the same value Chance(r.src, p) would.
func (r *Roller) Chance(label string, p float64) bool {
	ok := Chance(r.src, p)
	r.logger.Debug("chance",
		zap.String("label", label),
		zap.Float64("probability", p),
		zap.Bool("fired", ok),
	)
	return ok
}
