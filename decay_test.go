package ebisu

import (
	"errors"
	"math"
	"testing"
)

func TestHalflifeEqualShapes(t *testing.T) {
	e := mustEngine(t, EngineConfig{})
	h, err := e.PercentileDecay(Model{Alpha: 2, Beta: 2, Time: 20}, DecayOptions{Tolerance: 1e-6})
	if err != nil {
		t.Fatalf("PercentileDecay: %v", err)
	}
	if rel := math.Abs(h-20) / 20; rel > 1e-3 {
		t.Errorf("halflife = %g, want ~20 (rel err %g)", h, rel)
	}
}

func TestPercentileDecayRoundTrip(t *testing.T) {
	e := mustEngine(t, EngineConfig{})
	models := []Model{
		NewModel(1),
		NewModel(24),
		{Alpha: 3, Beta: 2, Time: 7},
		{Alpha: 1.5, Beta: 2.5, Time: 0.25},
		{Alpha: 40, Beta: 50, Time: 1000},
	}
	for _, m := range models {
		for _, p := range []float64{0.01, 0.1, 0.5, 0.8, 0.99} {
			tp, err := e.PercentileDecay(m, DecayOptions{Percentile: p, Tolerance: 1e-6})
			if err != nil {
				t.Fatalf("%v p=%g: %v", m, p, err)
			}
			got := e.PredictRecall(m, tp, true)
			if rel := math.Abs(got-p) / p; rel > 1e-4 {
				t.Errorf("%v: P(%g) = %g, want %g (rel err %g)", m, tp, got, p, rel)
			}
		}
	}
}

func TestPercentileDecayOrdering(t *testing.T) {
	e := mustEngine(t, EngineConfig{})
	m := NewModel(10)
	prev := math.Inf(1)
	for _, p := range []float64{0.05, 0.25, 0.5, 0.75, 0.95} {
		tp, err := e.PercentileDecay(m, DecayOptions{Percentile: p})
		if err != nil {
			t.Fatalf("p=%g: %v", p, err)
		}
		if tp >= prev {
			t.Errorf("p=%g: t = %g, want < %g", p, tp, prev)
		}
		prev = tp
	}
}

func TestPercentileDecayCoarse(t *testing.T) {
	e := mustEngine(t, EngineConfig{})
	m := NewModel(1)
	precise, err := e.Halflife(m)
	if err != nil {
		t.Fatalf("Halflife: %v", err)
	}
	coarse, err := e.PercentileDecay(m, DecayOptions{Coarse: true})
	if err != nil {
		t.Fatalf("coarse: %v", err)
	}
	if coarse == precise {
		t.Errorf("coarse = precise = %g, want an unrefined estimate", coarse)
	}
	// The coarse bracket is one log unit wide.
	if r := math.Abs(math.Log(coarse / precise)); r > 1 {
		t.Errorf("coarse %g vs precise %g: log ratio %g > 1", coarse, precise, r)
	}
}

func TestPercentileDecayInvalidPercentile(t *testing.T) {
	e := mustEngine(t, EngineConfig{})
	for _, p := range []float64{1.5, -0.1, 1, math.NaN()} {
		_, err := e.PercentileDecay(NewModel(1), DecayOptions{Percentile: p})
		if !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("p=%g: err = %v, want ErrInvalidArgument", p, err)
		}
	}
}

func TestPercentileDecayInvalidModel(t *testing.T) {
	e := mustEngine(t, EngineConfig{})
	_, err := e.Halflife(Model{Alpha: 1, Beta: 0, Time: 1})
	if !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("err = %v, want ErrInvalidArgument", err)
	}
}

func TestPercentileDecayRefineNonConvergence(t *testing.T) {
	e := mustEngine(t, EngineConfig{})
	// The root sits away from lndelta = 0, where float spacing stops the
	// bracket long before it narrows to 1e-150.
	_, err := e.PercentileDecay(Model{Alpha: 3, Beta: 2, Time: 1}, DecayOptions{Tolerance: 1e-150})
	var ce *ConvergenceError
	if !errors.As(err, &ce) {
		t.Fatalf("err = %v, want *ConvergenceError", err)
	}
	if ce.Op != "refine" {
		t.Errorf("Op = %q, want refine", ce.Op)
	}
	if ce.Iterations != DefaultMaxIterations {
		t.Errorf("Iterations = %d, want %d", ce.Iterations, DefaultMaxIterations)
	}
	if !errors.Is(err, ErrNonConvergence) || KindOf(err) != KindNonConvergence {
		t.Errorf("err = %v, want NonConvergence", err)
	}
	if n := e.Stats().NonConvergence; n != 1 {
		t.Errorf("Stats().NonConvergence = %d, want 1", n)
	}
}

func TestPercentileDecayBracketNonConvergence(t *testing.T) {
	e := mustEngine(t, EngineConfig{MaxBracketSteps: 1})
	_, err := e.PercentileDecay(NewModel(1), DecayOptions{Percentile: 1e-6, Coarse: true})
	var ce *ConvergenceError
	if !errors.As(err, &ce) {
		t.Fatalf("err = %v, want *ConvergenceError", err)
	}
	if ce.Op != "bracket" {
		t.Errorf("Op = %q, want bracket", ce.Op)
	}
	if ce.Iterations != 1 {
		t.Errorf("Iterations = %d, want 1", ce.Iterations)
	}
}

func TestModelToPercentileDecay(t *testing.T) {
	h, err := ModelToPercentileDecay(Model{Alpha: 2, Beta: 2, Time: 20}, 0.5, 1e-6)
	if err != nil {
		t.Fatalf("ModelToPercentileDecay: %v", err)
	}
	if rel := math.Abs(h-20) / 20; rel > 1e-3 {
		t.Errorf("halflife = %g, want ~20", h)
	}

	_, err = ModelToPercentileDecay(Model{Alpha: 3, Beta: 2, Time: 1}, 0.5, 1e-150)
	var ce *ConvergenceError
	if !errors.As(err, &ce) || ce.Op != "refine" {
		t.Errorf("tolerance 1e-150: err = %v, want refine ConvergenceError", err)
	}

	for _, tt := range []struct {
		name   string
		p, tol float64
	}{
		{"zero percentile", 0, 1e-4},
		{"percentile above one", 1.5, 1e-4},
		{"zero tolerance", 0.5, 0},
		{"negative tolerance", 0.5, -1},
	} {
		if _, err := ModelToPercentileDecay(NewModel(1), tt.p, tt.tol); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("%s: err = %v, want ErrInvalidArgument", tt.name, err)
		}
	}
}

func TestHalflifePackageLevel(t *testing.T) {
	h, err := Halflife(NewModel(7))
	if err != nil {
		t.Fatalf("Halflife: %v", err)
	}
	if rel := math.Abs(h-7) / 7; rel > 1e-3 {
		t.Errorf("Halflife = %g, want ~7", h)
	}
}
