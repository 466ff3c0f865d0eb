// Package config loads the ebisu command's configuration.
//
// Values are layered from defaults, an optional YAML file named by
// EBISU_CONFIG, and EBISU_-prefixed environment variables.
package config

import (
	"runtime"

	"github.com/sky-flux/ebisu"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Engine tuning, see ebisu.EngineConfig.
	SkewThreshold      float64 `koanf:"skew_threshold"`
	CoarseBracketWidth float64 `koanf:"coarse_bracket_width"`
	BracketWidth       float64 `koanf:"bracket_width"`
	Tolerance          float64 `koanf:"tolerance"`
	MaxIterations      int     `koanf:"max_iterations"`
	MaxBracketSteps    int     `koanf:"max_bracket_steps"`

	// CacheEntries bounds the log-gamma cache; negative means unbounded.
	CacheEntries int `koanf:"cache_entries"`

	// Workers bounds batch scoring and calibration parallelism.
	Workers int `koanf:"workers"`

	// DefaultHalflife anchors models created by the CLI without explicit parameters.
	DefaultHalflife float64 `koanf:"default_halflife"`

	// RefineSteps sets calibration gradient steps; negative disables refinement.
	RefineSteps int `koanf:"refine_steps"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:           "info",
		SkewThreshold:      ebisu.DefaultSkewThreshold,
		CoarseBracketWidth: ebisu.DefaultCoarseBracketWidth,
		BracketWidth:       ebisu.DefaultBracketWidth,
		Tolerance:          ebisu.DefaultTolerance,
		MaxIterations:      ebisu.DefaultMaxIterations,
		MaxBracketSteps:    ebisu.DefaultMaxBracketSteps,
		CacheEntries:       ebisu.DefaultCacheEntries,
		Workers:            runtime.GOMAXPROCS(0),
		DefaultHalflife:    24,
		RefineSteps:        30,
	}
}

// EngineConfig returns the engine settings of c.
func (c *Config) EngineConfig() ebisu.EngineConfig {
	return ebisu.EngineConfig{
		SkewThreshold:      c.SkewThreshold,
		CoarseBracketWidth: c.CoarseBracketWidth,
		BracketWidth:       c.BracketWidth,
		Tolerance:          c.Tolerance,
		MaxIterations:      c.MaxIterations,
		MaxBracketSteps:    c.MaxBracketSteps,
		CacheEntries:       c.CacheEntries,
		Workers:            c.Workers,
	}
}
