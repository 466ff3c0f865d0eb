package calibrate

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sky-flux/ebisu"
)

func TestBceLoss(t *testing.T) {
	tests := []struct {
		name string
		p, y float64
		want float64
	}{
		{"recalled", 0.9, 1, 0.10536},
		{"forgotten", 0.9, 0, 2.30259},
		{"half", 0.5, 1, 0.69315},
		{"fractional", 0.5, 0.5, 0.69315},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, bceLoss(tt.p, tt.y), 1e-4)
		})
	}
}

func TestBceLossClamp(t *testing.T) {
	for _, got := range []float64{bceLoss(0, 1), bceLoss(1, 0)} {
		assert.False(t, math.IsInf(got, 0) || math.IsNaN(got), "got %v", got)
		assert.InDelta(t, -math.Log(bceClamp), got, 1e-6)
	}
}

func TestLossEmpty(t *testing.T) {
	l, err := Loss(ebisu.Default(), ebisu.NewModel(1), nil)
	require.NoError(t, err)
	assert.Zero(t, l)
}

func TestLossSingleQuizAtHalflife(t *testing.T) {
	// Equal shapes predict exactly 0.5 at the model's own time.
	l, err := Loss(ebisu.Default(), ebisu.NewModel(4), []History{{ebisu.Passed(4)}})
	require.NoError(t, err)
	assert.InDelta(t, math.Ln2, l, 1e-9)
}

func TestLossReplaysPosterior(t *testing.T) {
	e := ebisu.Default()
	prior := ebisu.NewModel(4)
	h := History{ebisu.Passed(4), ebisu.Passed(8)}

	post, err := e.UpdateRecall(prior, true, 4)
	require.NoError(t, err)
	want := (bceLoss(e.PredictRecall(prior, 4, true), 1) + bceLoss(e.PredictRecall(post, 8, true), 1)) / 2

	got, err := Loss(e, prior, []History{h})
	require.NoError(t, err)
	assert.InDelta(t, want, got, 1e-12)
}

func TestLossFailuresCostMore(t *testing.T) {
	e := ebisu.Default()
	pass, err := Loss(e, ebisu.NewModel(10), []History{{ebisu.Passed(2)}})
	require.NoError(t, err)
	fail, err := Loss(e, ebisu.NewModel(10), []History{{ebisu.Failed(2)}})
	require.NoError(t, err)
	assert.Greater(t, fail, pass)
}

func TestLossErrors(t *testing.T) {
	_, err := Loss(ebisu.Default(), ebisu.Model{}, []History{{ebisu.Passed(1)}})
	assert.ErrorIs(t, err, ebisu.ErrInvalidArgument)

	_, err = Loss(ebisu.Default(), ebisu.NewModel(1), []History{{ebisu.Passed(1)}, {{Successes: 1, Total: 0, Elapsed: 1}}})
	require.ErrorIs(t, err, ebisu.ErrInvalidArgument)
	assert.Contains(t, err.Error(), "history 1 quiz 0")
}

func TestNumericalGradientDirection(t *testing.T) {
	// Every fact is recalled long after a short prior halflife, so a longer
	// halflife lowers the loss.
	hs := []History{{ebisu.Passed(10)}, {ebisu.Passed(12)}, {ebisu.Passed(8)}}
	x := [2]float64{math.Log(1), math.Log(4)}

	grad, err := numericalGradient(ebisu.Default(), x, hs)
	require.NoError(t, err)
	assert.Less(t, grad[0], 0.0)
}

func TestCandidate(t *testing.T) {
	m := candidate([2]float64{math.Log(8), math.Log(3)})
	assert.InDelta(t, 8, m.Time, 1e-12)
	assert.InDelta(t, 3, m.Alpha, 1e-12)
	assert.Equal(t, m.Alpha, m.Beta)
}
