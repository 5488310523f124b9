package analysis

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/floats"
)

// PowerSpectrum returns the one-sided power |X_k|²/n for k = 0..n/2 of the
// mean-removed series.
func PowerSpectrum(series []float64) []float64 {
	n := len(series)
	if n == 0 {
		return nil
	}

	centered := make([]float64, n)
	copy(centered, series)
	mean := floats.Sum(centered) / float64(n)
	floats.AddConst(-mean, centered)

	coeffs := fft.FFTReal(centered)
	ps := make([]float64, n/2+1)
	for k := range ps {
		a := cmplx.Abs(coeffs[k])
		ps[k] = a * a / float64(n)
	}
	return ps
}

// DominantPeriod returns the period, in the units of sampleSpacing, of the
// strongest non-zero frequency in series. It is 0 when the series is too
// short, flat, or not finite.
func DominantPeriod(series []float64, sampleSpacing float64) float64 {
	n := len(series)
	if n < 4 || !finite(series) {
		return 0
	}
	ps := PowerSpectrum(series)
	k := floats.MaxIdx(ps[1:]) + 1
	if ps[k] == 0 || math.IsNaN(ps[k]) {
		return 0
	}
	return float64(n) * sampleSpacing / float64(k)
}

func finite(s []float64) bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
