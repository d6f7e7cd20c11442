// Package survival holds the link functions that turn a linear predictor into
// an event probability. Every clinical model in pkg/risk funnels through one of
// these.
package survival

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// ErrDimensionMismatch is returned when a feature vector and its coefficient
// table disagree in length.
var ErrDimensionMismatch = errors.New("feature vector and coefficients differ in length")

// Dot returns x·beta.
func Dot(x, beta []float64) (float64, error) {
	if len(x) != len(beta) {
		return 0, fmt.Errorf("%w: %d features, %d coefficients", ErrDimensionMismatch, len(x), len(beta))
	}
	return floats.Dot(x, beta), nil
}

// Cox evaluates 1 - s0^exp(shrink*(x·beta - b0)).
//
// The result is not clamped. s0 == 1 always yields 0, and an overflowing
// exponent saturates to 1 for s0 < 1.
func Cox(x, beta []float64, s0, b0, shrink float64) (float64, error) {
	xb, err := Dot(x, beta)
	if err != nil {
		return 0, err
	}
	return 1 - math.Pow(s0, math.Exp(shrink*(xb-b0))), nil
}

// CoxSurv is Cox with no centring constant and no shrinkage.
func CoxSurv(x, beta []float64, s0 float64) (float64, error) {
	return Cox(x, beta, s0, 0, 1)
}

// WeibullATF evaluates the accelerated failure time form
// 1 - exp(-(t/a)^sigma) with a = x·beta + mu.
//
// a must be positive. For a <= 0 with a non-integer sigma the power is
// undefined and the result is NaN; callers are expected to keep inputs in
// range through pkg/sanitize.
func WeibullATF(x, beta []float64, mu, sigma, t float64) (float64, error) {
	xb, err := Dot(x, beta)
	if err != nil {
		return 0, err
	}
	a := xb + mu
	return 1 - math.Exp(-math.Pow(t/a, sigma)), nil
}

// WeibullHazard returns the cumulative hazard exp(lambda + x·beta) * t^rho.
func WeibullHazard(x, beta []float64, lambda, t, rho float64) (float64, error) {
	xb, err := Dot(x, beta)
	if err != nil {
		return 0, err
	}
	return math.Exp(lambda+xb) * math.Pow(t, rho), nil
}

// WeibullSurv returns the probability of an event in the window (t1, t2]:
// 1 - exp(H(t1) - H(t2)). t2 must not be before t1.
func WeibullSurv(x, beta []float64, lambda, t1, t2, rho float64) (float64, error) {
	h1, err := WeibullHazard(x, beta, lambda, t1, rho)
	if err != nil {
		return 0, err
	}
	h2, err := WeibullHazard(x, beta, lambda, t2, rho)
	if err != nil {
		return 0, err
	}
	return 1 - math.Exp(h1-h2), nil
}

// Clamp bounds p to [0, 1]. NaN is passed through unchanged.
func Clamp(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}
