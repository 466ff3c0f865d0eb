package ebisu

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/sky-flux/ebisu/logger"
)

// EngineConfig configures an Engine.
// Zero values produce the defaults in parameters.go; see field comments.
type EngineConfig struct {
	SkewThreshold      float64 `json:"skew_threshold"`       // zero → 2
	CoarseBracketWidth float64 `json:"coarse_bracket_width"` // zero → 1.0
	BracketWidth       float64 `json:"bracket_width"`        // zero → 6.0
	Tolerance          float64 `json:"tolerance"`            // zero → 1e-4
	MaxIterations      int     `json:"max_iterations"`       // zero → 10000
	MaxBracketSteps    int     `json:"max_bracket_steps"`    // zero → 1000
	CacheEntries       int     `json:"cache_entries"`        // zero → DefaultCacheEntries; negative → unbounded
	Workers            int     `json:"workers"`              // zero → GOMAXPROCS, for PredictBatch

	Cache  *LogGammaCache `json:"-"` // nil → fresh cache bounded by CacheEntries
	Logger logger.Logger  `json:"-"` // nil → discard
}

// withDefaults fills zero-valued fields.
func (cfg EngineConfig) withDefaults() EngineConfig {
	if cfg.SkewThreshold == 0 {
		cfg.SkewThreshold = DefaultSkewThreshold
	}
	if cfg.CoarseBracketWidth == 0 {
		cfg.CoarseBracketWidth = DefaultCoarseBracketWidth
	}
	if cfg.BracketWidth == 0 {
		cfg.BracketWidth = DefaultBracketWidth
	}
	if cfg.Tolerance == 0 {
		cfg.Tolerance = DefaultTolerance
	}
	if cfg.MaxIterations == 0 {
		cfg.MaxIterations = DefaultMaxIterations
	}
	if cfg.MaxBracketSteps == 0 {
		cfg.MaxBracketSteps = DefaultMaxBracketSteps
	}
	if cfg.CacheEntries == 0 {
		cfg.CacheEntries = DefaultCacheEntries
	}
	if cfg.Workers == 0 {
		cfg.Workers = runtime.GOMAXPROCS(0)
	}
	return cfg
}

// Stats counts engine outcomes since construction.
type Stats struct {
	Updates        uint64 // successful posteriors returned
	Rebalances     uint64 // posteriors re-anchored near their halflife
	Breakdowns     uint64 // ErrNumericalBreakdown returned
	NonConvergence uint64 // ErrNonConvergence returned
}

// Engine predicts and updates Ebisu models. It is safe for concurrent use;
// its only shared state is the log-gamma cache and the outcome counters.
type Engine struct {
	algo    algo
	cfg     EngineConfig
	log     logger.Logger
	workers int
	counts  *counters
}

type counters struct {
	updates        atomic.Uint64
	rebalances     atomic.Uint64
	breakdowns     atomic.Uint64
	nonConvergence atomic.Uint64
}

// NewEngine creates an Engine from the given config.
// Zero-value fields are filled with defaults; invalid values return ErrInvalidArgument.
func NewEngine(cfg EngineConfig) (*Engine, error) {
	cfg = cfg.withDefaults()
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}

	cache := cfg.Cache
	if cache == nil {
		cache = NewLogGammaCache(WithMaxEntries(cfg.CacheEntries))
	}
	log := cfg.Logger
	if log == nil {
		log = logger.Nop()
	}

	return &Engine{
		algo: algo{
			gamma:       cache,
			skew:        cfg.SkewThreshold,
			coarseWidth: cfg.CoarseBracketWidth,
			width:       cfg.BracketWidth,
			tolerance:   cfg.Tolerance,
			maxIter:     cfg.MaxIterations,
			maxBracket:  cfg.MaxBracketSteps,
		},
		cfg:     cfg,
		log:     log.Named("ebisu"),
		workers: cfg.Workers,
		counts:  &counters{},
	}, nil
}

// Config returns the defaulted configuration the engine was built with.
func (e *Engine) Config() EngineConfig {
	return e.cfg
}

// Cache returns the engine's log-gamma cache.
func (e *Engine) Cache() *LogGammaCache {
	return e.algo.gamma
}

// Stats returns the outcome counters.
func (e *Engine) Stats() Stats {
	return Stats{
		Updates:        e.counts.updates.Load(),
		Rebalances:     e.counts.rebalances.Load(),
		Breakdowns:     e.counts.breakdowns.Load(),
		NonConvergence: e.counts.nonConvergence.Load(),
	}
}

// PredictRecall estimates the recall probability of m after tnow has elapsed
// since its last review. It returns the log-probability, or the probability
// in (0, 1] when exact is set. Recall never increases with tnow.
func (e *Engine) PredictRecall(m Model, tnow float64, exact bool) float64 {
	return e.algo.predict(m, tnow, exact)
}

// UpdateRecall returns the posterior of prior after a pass/fail quiz at tnow,
// anchored at prior.Time and rebalanced if its shapes are skewed.
func (e *Engine) UpdateRecall(prior Model, passed bool, tnow float64) (Model, error) {
	q := Failed(tnow)
	if passed {
		q = Passed(tnow)
	}
	return e.UpdateRecallWith(prior, q, UpdateOptions{})
}

// UpdateRecallBinomial returns the posterior of prior after successes out of
// total independent trials at tnow.
func (e *Engine) UpdateRecallBinomial(prior Model, successes, total int, tnow float64) (Model, error) {
	return e.UpdateRecallWith(prior, Binomial(successes, total, tnow), UpdateOptions{})
}

// UpdateOptions tunes a single update.
type UpdateOptions struct {
	Tback            float64 // zero → prior.Time
	DisableRebalance bool
}

// UpdateRecallWith is the general update: q is applied to prior and the
// posterior anchored at opts.Tback, followed by at most one rebalance pass.
func (e *Engine) UpdateRecallWith(prior Model, q Quiz, opts UpdateOptions) (Model, error) {
	if err := prior.Validate(); err != nil {
		return Model{}, err
	}
	if err := q.Validate(); err != nil {
		return Model{}, err
	}
	tback := opts.Tback
	if tback == 0 {
		tback = prior.Time
	}
	if !positive(tback) {
		return Model{}, invalidArgf("tback = %g, must be positive and finite", tback)
	}

	proposed, err := e.algo.posterior(prior, q, tback)
	if err != nil {
		return Model{}, e.failed(prior, q, err)
	}
	if !opts.DisableRebalance {
		var moved bool
		proposed, moved, err = e.algo.rebalance(prior, q, proposed)
		if err != nil {
			return Model{}, e.failed(prior, q, err)
		}
		if moved {
			e.counts.rebalances.Add(1)
			e.log.Debug(context.Background(), "rebalanced posterior",
				logger.String("prior", prior.String()),
				logger.String("posterior", proposed.String()))
		}
	}
	e.counts.updates.Add(1)
	return proposed, nil
}

// failed counts and logs a fatal update error before it is returned.
func (e *Engine) failed(prior Model, q Quiz, err error) error {
	switch KindOf(err) {
	case KindNumericalBreakdown:
		e.counts.breakdowns.Add(1)
	case KindNonConvergence:
		e.counts.nonConvergence.Add(1)
	}
	e.log.Warn(context.Background(), "update failed",
		logger.String("prior", prior.String()),
		logger.Int("successes", q.Successes),
		logger.Int("total", q.Total),
		logger.Float64("elapsed", q.Elapsed),
		logger.Error(err))
	return err
}

// DecayOptions tunes a percentile search.
type DecayOptions struct {
	Percentile float64 // zero → 0.5 (halflife)
	Coarse     bool    // order-of-magnitude estimate only
	Tolerance  float64 // zero → engine tolerance
}

// PercentileDecay returns the elapsed time at which m predicts opts.Percentile.
// It returns ErrInvalidArgument for a percentile outside (0, 1) and a
// *ConvergenceError when the search fails.
func (e *Engine) PercentileDecay(m Model, opts DecayOptions) (float64, error) {
	if err := m.Validate(); err != nil {
		return 0, err
	}
	p := opts.Percentile
	if p == 0 {
		p = DefaultPercentile
	}
	if opts.Tolerance < 0 {
		return 0, invalidArgf("tolerance = %g, must be positive", opts.Tolerance)
	}
	t, err := e.algo.percentileDecay(m, p, opts.Coarse, opts.Tolerance)
	if err != nil && KindOf(err) == KindNonConvergence {
		e.counts.nonConvergence.Add(1)
	}
	return t, err
}

// Halflife returns the elapsed time at which m predicts 50% recall.
func (e *Engine) Halflife(m Model) (float64, error) {
	return e.PercentileDecay(m, DecayOptions{})
}

// Preview holds the posteriors for both outcomes of a pending quiz.
type Preview struct {
	Pass Model `json:"pass"`
	Fail Model `json:"fail"`
}

// Preview returns what m would become if quizzed at tnow, for each outcome.
func (e *Engine) Preview(m Model, tnow float64) (Preview, error) {
	pass, err := e.UpdateRecall(m, true, tnow)
	if err != nil {
		return Preview{}, err
	}
	fail, err := e.UpdateRecall(m, false, tnow)
	if err != nil {
		return Preview{}, err
	}
	return Preview{Pass: pass, Fail: fail}, nil
}

// Replay applies quizzes to m in order and returns the final model.
func (e *Engine) Replay(m Model, quizzes []Quiz) (Model, error) {
	for i, q := range quizzes {
		next, err := e.UpdateRecallWith(m, q, UpdateOptions{})
		if err != nil {
			return Model{}, fmt.Errorf("quiz %d: %w", i, err)
		}
		m = next
	}
	return m, nil
}

// PredictBatch scores models[i] at elapsed[i] in parallel, bounded by the
// configured worker count. It stops early if ctx is cancelled.
func (e *Engine) PredictBatch(ctx context.Context, models []Model, elapsed []float64, exact bool) ([]float64, error) {
	if len(models) != len(elapsed) {
		return nil, invalidArgf("%d models but %d elapsed times", len(models), len(elapsed))
	}
	out := make([]float64, len(models))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i := range models {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out[i] = e.algo.predict(models[i], elapsed[i], exact)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// MarshalJSON implements json.Marshaler. The cache and logger are not serialized.
func (e *Engine) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.cfg)
}

// UnmarshalJSON implements json.Unmarshaler.
// It rebuilds the engine, with a fresh cache, from the serialized config.
func (e *Engine) UnmarshalJSON(data []byte) error {
	var cfg EngineConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return err
	}
	rebuilt, err := NewEngine(cfg)
	if err != nil {
		return err
	}
	*e = *rebuilt
	return nil
}

var defaultEngine = sync.OnceValue(func() *Engine {
	e, err := NewEngine(EngineConfig{})
	if err != nil {
		panic(err)
	}
	return e
})

// Default returns the shared engine used by the package-level functions.
func Default() *Engine {
	return defaultEngine()
}

// PredictRecall is Default().PredictRecall.
func PredictRecall(m Model, tnow float64, exact bool) float64 {
	return Default().PredictRecall(m, tnow, exact)
}

// UpdateRecall is Default().UpdateRecall.
func UpdateRecall(prior Model, passed bool, tnow float64) (Model, error) {
	return Default().UpdateRecall(prior, passed, tnow)
}

// UpdateRecallBinomial is Default().UpdateRecallBinomial.
func UpdateRecallBinomial(prior Model, successes, total int, tnow float64) (Model, error) {
	return Default().UpdateRecallBinomial(prior, successes, total, tnow)
}

// ModelToPercentileDecay returns the elapsed time at which m predicts
// percentile, refined to tolerance (log-time units). Unlike
// Engine.PercentileDecay, zero arguments are not replaced by defaults.
func ModelToPercentileDecay(m Model, percentile, tolerance float64) (float64, error) {
	if err := m.Validate(); err != nil {
		return 0, err
	}
	if !positive(tolerance) {
		return 0, invalidArgf("tolerance = %g, must be positive", tolerance)
	}
	return Default().algo.percentileDecay(m, percentile, false, tolerance)
}

// Halflife is Default().Halflife.
func Halflife(m Model) (float64, error) {
	return Default().Halflife(m)
}
