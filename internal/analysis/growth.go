package analysis

import (
	"math"

	"github.com/san-kum/swsim/internal/dynamo"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// GrowthRate estimates the exponential growth rate of an energy series, in
// e-foldings per simulated day, by a least-squares fit of ln(energy)
// against time. Non-positive or non-finite samples are skipped. A stable
// run gives a rate near zero or negative; an unstable one a large positive
// rate.
func GrowthRate(times, energy []float64) float64 {
	xs := make([]float64, 0, len(times))
	ys := make([]float64, 0, len(times))
	for i := range times {
		if i >= len(energy) {
			break
		}
		e := energy[i]
		if e <= 0 || math.IsNaN(e) || math.IsInf(e, 0) {
			continue
		}
		xs = append(xs, times[i]/dynamo.SecondsPerDay)
		ys = append(ys, math.Log(e))
	}
	if len(xs) < 2 || floats.Max(xs) == floats.Min(xs) {
		return 0
	}
	_, beta := stat.LinearRegression(xs, ys, nil, false)
	return beta
}
