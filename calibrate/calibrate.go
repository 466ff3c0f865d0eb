package calibrate

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/sky-flux/ebisu"
	"github.com/sky-flux/ebisu/logger"
)

var (
	// ErrEmptyHistories is returned when the histories contain no quizzes.
	ErrEmptyHistories = errors.New("calibrate: no quizzes to fit")

	// ErrNoCandidate is returned when every candidate prior failed to replay.
	ErrNoCandidate = errors.New("calibrate: no candidate prior could replay the histories")
)

// Default search grid. Halflives are in the caller's time units.
var (
	DefaultHalflives = []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32, 64, 128, 256, 512}
	DefaultShapes    = []float64{1.5, 2, 3, 4, 6, 8}
)

// Config configures a Calibrator.
// Zero values are replaced with defaults.
type Config struct {
	Halflives    []float64 `json:"halflives"`     // default DefaultHalflives
	Shapes       []float64 `json:"shapes"`        // default DefaultShapes
	RefineSteps  int       `json:"refine_steps"`  // default 30; negative disables refinement
	LearningRate float64   `json:"learning_rate"` // default 0.1, in log units
	MaxSeqLen    int       `json:"max_seq_len"`   // default 64 quizzes per history
	Workers      int       `json:"workers"`       // default GOMAXPROCS

	Logger logger.Logger `json:"-"` // nil → discard
}

// Result is the outcome of a fit.
type Result struct {
	Model     ebisu.Model `json:"model"`
	Loss      float64     `json:"loss"`      // average cross-entropy of Model
	GridLoss  float64     `json:"grid_loss"` // best loss before refinement
	Evaluated int         `json:"evaluated"` // grid candidates that replayed
	Quizzes   int         `json:"quizzes"`
}

// Calibrator searches for the prior that best predicts recorded histories.
type Calibrator struct {
	engine       *ebisu.Engine
	halflives    []float64
	shapes       []float64
	refineSteps  int
	learningRate float64
	maxSeqLen    int
	workers      int
	log          logger.Logger
}

// New creates a Calibrator that replays through e (nil → ebisu.Default()).
// It returns ebisu.ErrInvalidArgument for a non-positive grid value.
func New(e *ebisu.Engine, cfg Config) (*Calibrator, error) {
	if e == nil {
		e = ebisu.Default()
	}
	c := &Calibrator{
		engine:       e,
		halflives:    cfg.Halflives,
		shapes:       cfg.Shapes,
		refineSteps:  cfg.RefineSteps,
		learningRate: cfg.LearningRate,
		maxSeqLen:    cfg.MaxSeqLen,
		workers:      cfg.Workers,
		log:          cfg.Logger,
	}
	if len(c.halflives) == 0 {
		c.halflives = DefaultHalflives
	}
	if len(c.shapes) == 0 {
		c.shapes = DefaultShapes
	}
	if c.refineSteps == 0 {
		c.refineSteps = 30
	}
	if c.learningRate == 0 {
		c.learningRate = 0.1
	}
	if c.maxSeqLen == 0 {
		c.maxSeqLen = 64
	}
	if c.workers <= 0 {
		c.workers = runtime.GOMAXPROCS(0)
	}
	if c.log == nil {
		c.log = logger.Nop()
	}
	c.log = c.log.Named("calibrate")

	for _, v := range append(append([]float64(nil), c.halflives...), c.shapes...) {
		if !(v > 0) || math.IsInf(v, 1) {
			return nil, fmt.Errorf("%w: grid value %g must be positive and finite", ebisu.ErrInvalidArgument, v)
		}
	}
	if !(c.learningRate > 0) {
		return nil, fmt.Errorf("%w: learning rate %g must be positive", ebisu.ErrInvalidArgument, c.learningRate)
	}
	return c, nil
}

// Fit returns the prior with the lowest replay loss over histories.
//
// Every grid candidate is evaluated in parallel; candidates whose replay
// fails are skipped. The winner is refined by gradient descent and the
// refined model is kept only if it lowers the loss. The context can be used
// to cancel a long fit.
func (c *Calibrator) Fit(ctx context.Context, histories []History) (Result, error) {
	histories = truncate(histories, c.maxSeqLen)
	quizzes := countQuizzes(histories)
	if quizzes == 0 {
		return Result{}, ErrEmptyHistories
	}

	grid := make([][2]float64, 0, len(c.halflives)*len(c.shapes))
	for _, h := range c.halflives {
		for _, ab := range c.shapes {
			grid = append(grid, [2]float64{math.Log(h), math.Log(ab)})
		}
	}

	losses := make([]float64, len(grid))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)
	for i, x := range grid {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			l, err := Loss(c.engine, candidate(x), histories)
			if err != nil {
				c.log.Debug(gctx, "candidate skipped",
					logger.String("prior", candidate(x).String()),
					logger.Error(err))
				l = math.Inf(1)
			}
			losses[i] = l
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	best, evaluated := -1, 0
	for i, l := range losses {
		if math.IsInf(l, 1) {
			continue
		}
		evaluated++
		if best < 0 || l < losses[best] {
			best = i
		}
	}
	if best < 0 {
		return Result{}, ErrNoCandidate
	}

	res := Result{
		Model:     candidate(grid[best]),
		Loss:      losses[best],
		GridLoss:  losses[best],
		Evaluated: evaluated,
		Quizzes:   quizzes,
	}
	x, loss, err := c.refine(ctx, grid[best], losses[best], histories)
	if err != nil {
		return res, err
	}
	res.Model, res.Loss = candidate(x), loss

	c.log.Info(ctx, "calibrated prior",
		logger.String("model", res.Model.String()),
		logger.Float64("loss", res.Loss),
		logger.Float64("grid_loss", res.GridLoss),
		logger.Int("quizzes", quizzes))
	return res, nil
}

// refine runs Adam with cosine annealing from x and returns the best point
// visited, clamped to the grid's bounding box.
func (c *Calibrator) refine(ctx context.Context, x [2]float64, loss float64, histories []History) ([2]float64, float64, error) {
	if c.refineSteps < 0 {
		return x, loss, nil
	}
	lo, hi := c.bounds()
	adam := NewAdam(c.learningRate)
	ca := NewCosineAnnealing(c.learningRate, c.refineSteps)

	bestX, bestLoss := x, loss
	for step := 0; step < c.refineSteps; step++ {
		if err := ctx.Err(); err != nil {
			return bestX, bestLoss, err
		}
		grad, err := numericalGradient(c.engine, x, histories)
		if err != nil || math.IsNaN(grad[0]) || math.IsNaN(grad[1]) {
			c.log.Debug(ctx, "refinement stopped", logger.Int("step", step), logger.Error(err))
			break
		}
		adam.SetLR(ca.LR())
		x = clampParams(adam.Update(x, grad), lo, hi)
		ca.Step()

		l, err := Loss(c.engine, candidate(x), histories)
		if err == nil && l < bestLoss {
			bestX, bestLoss = x, l
		}
	}
	return bestX, bestLoss, nil
}

// bounds returns the log-space bounding box of the search grid.
func (c *Calibrator) bounds() (lo, hi [2]float64) {
	lo = [2]float64{math.Inf(1), math.Inf(1)}
	hi = [2]float64{math.Inf(-1), math.Inf(-1)}
	for i, vals := range [2][]float64{c.halflives, c.shapes} {
		for _, v := range vals {
			lo[i] = math.Min(lo[i], math.Log(v))
			hi[i] = math.Max(hi[i], math.Log(v))
		}
	}
	return lo, hi
}

// clampParams constrains each parameter to [lo, hi].
func clampParams(x, lo, hi [2]float64) [2]float64 {
	for i := range x {
		x[i] = math.Max(lo[i], math.Min(x[i], hi[i]))
	}
	return x
}
