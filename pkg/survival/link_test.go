package survival

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var chfBeta = []float64{0.068, 0.012, 0.072, -0.22, 0.771, 0.658}
var chfX = []float64{62, 30, 32, 5, 1, 1}

func TestCoxFraminghamWomen(t *testing.T) {
	beta := []float64{2.32888, 1.20904, -0.70833, 2.76157, 2.82263, 0.52873, 0.69154}
	x := []float64{math.Log(61), math.Log(180), math.Log(47), math.Log(124), 0, 1, 0}

	p, err := Cox(x, beta, 0.95012, 26.1931, 1)
	require.NoError(t, err)
	assert.InDelta(t, 0.1048, p, 1e-4)
}

func TestCoxBaselineOneIsZeroRisk(t *testing.T) {
	for _, x := range [][]float64{{0, 0}, {1, 2}, {-50, 80}, {1e3, 1e3}} {
		p, err := CoxSurv(x, []float64{0.5, 3}, 1.0)
		require.NoError(t, err)
		assert.Equal(t, 0.0, p, "x=%v", x)
	}
}

func TestCoxSaturates(t *testing.T) {
	p, err := CoxSurv([]float64{1e4}, []float64{1}, 0.9)
	require.NoError(t, err)
	assert.Equal(t, 1.0, p)
}

func TestCoxShrinkage(t *testing.T) {
	full, err := Cox([]float64{2}, []float64{1}, 0.9, 1, 1)
	require.NoError(t, err)
	half, err := Cox([]float64{2}, []float64{1}, 0.9, 1, 0.5)
	require.NoError(t, err)
	assert.InDelta(t, 1-math.Pow(0.9, math.E), full, 1e-12)
	assert.InDelta(t, 1-math.Pow(0.9, math.Exp(0.5)), half, 1e-12)
}

func TestDimensionMismatch(t *testing.T) {
	_, err := CoxSurv([]float64{1, 2, 3}, []float64{1, 2}, 0.9)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDimensionMismatch))

	_, err = WeibullATF([]float64{1}, nil, 1, 1, 1)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
	_, err = WeibullHazard(nil, []float64{1}, 1, 1, 1)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
	_, err = WeibullSurv([]float64{1, 2}, []float64{1}, 1, 1, 2, 1)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestWeibullHazard(t *testing.T) {
	h8, err := WeibullHazard(chfX, chfBeta, -12.332, 8, 1.514)
	require.NoError(t, err)
	assert.InDelta(t, 0.1388, h8, 1e-4)

	h9, err := WeibullHazard(chfX, chfBeta, -12.332, 9, 1.514)
	require.NoError(t, err)
	assert.InDelta(t, 0.1659, h9, 1e-4)
	assert.GreaterOrEqual(t, h9, h8)
}

func TestWeibullSurv(t *testing.T) {
	p, err := WeibullSurv(chfX, chfBeta, -12.332, 8, 9, 1.514)
	require.NoError(t, err)
	assert.InDelta(t, 0.0267, p, 1e-4)
}

func TestWeibullSurvZeroWidthWindow(t *testing.T) {
	for _, ts := range []float64{0, 1, 7.5, 40} {
		p, err := WeibullSurv(chfX, chfBeta, -12.332, ts, ts, 1.514)
		require.NoError(t, err)
		assert.Equal(t, 0.0, p, "t=%v", ts)
	}
}

func TestWeibullATF(t *testing.T) {
	alpha := []float64{-0.287, -0.026, -0.149, 0.011, -0.268, -0.308, 0.438, -0.712, -0.010, -1.292, 0.009, 1.241}
	x := []float64{math.Log(6), 59, 5.8, 0, 1, 1, math.Log(8), math.Log(8), 160, 0, 0, 1.7}

	p, err := WeibullATF(x, alpha, 11.262, 0.587, 5)
	require.NoError(t, err)
	assert.InDelta(t, 0.54, p, 0.005)
}

func TestWeibullATFNonPositiveScaleIsNaN(t *testing.T) {
	p, err := WeibullATF([]float64{1}, []float64{-10}, 5, 0.587, 5)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(p))
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 0.0, Clamp(-0.2))
	assert.Equal(t, 1.0, Clamp(1.7))
	assert.Equal(t, 0.3, Clamp(0.3))
	assert.True(t, math.IsNaN(Clamp(math.NaN())))
}
