package ebisu

// Tuned constants of the update and percentile search. They are empirical
// and can be overridden per Engine through EngineConfig.
const (
	DefaultSkewThreshold      = 2.0   // rebalance when alpha > 2·beta or beta > 2·alpha
	DefaultCoarseBracketWidth = 1.0   // log-time width of the coarse halflife bracket
	DefaultBracketWidth       = 6.0   // log-time width of the precise bracket
	DefaultTolerance          = 1e-4  // final bracket width, log-time units
	DefaultMaxIterations      = 10000 // bisection steps before giving up
	DefaultMaxBracketSteps    = 1000  // bracket slides before giving up
	DefaultPercentile         = 0.5   // halflife
)

// ValidateConfig checks a fully defaulted config.
func ValidateConfig(cfg EngineConfig) error {
	switch {
	case !(cfg.SkewThreshold >= 1):
		return invalidArgf("skew threshold %g must be >= 1", cfg.SkewThreshold)
	case !positive(cfg.CoarseBracketWidth):
		return invalidArgf("coarse bracket width %g must be positive", cfg.CoarseBracketWidth)
	case !positive(cfg.BracketWidth):
		return invalidArgf("bracket width %g must be positive", cfg.BracketWidth)
	case !positive(cfg.Tolerance):
		return invalidArgf("tolerance %g must be positive", cfg.Tolerance)
	case cfg.MaxIterations < 1:
		return invalidArgf("max iterations %d must be positive", cfg.MaxIterations)
	case cfg.MaxBracketSteps < 1:
		return invalidArgf("max bracket steps %d must be positive", cfg.MaxBracketSteps)
	case cfg.Workers < 0:
		return invalidArgf("workers %d must not be negative", cfg.Workers)
	}
	return nil
}
