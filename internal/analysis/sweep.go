package analysis

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/swsim/internal/physics"
)

// SweepPoint is the outcome of one time step in a stability sweep.
type SweepPoint struct {
	TimeStep float64
	Courant  float64
	// Growth is the largest energy over the run relative to the initial
	// energy. It is +Inf once the fields stop being finite.
	Growth float64
	Stable bool
}

// StabilitySweep runs base for steps steps at n time steps spaced
// logarithmically between minStep and maxStep, recording how far the energy
// grows at each. A point is stable when its growth stays below limit.
//
// The explicit scheme has no closed-form bound for every forcing mix, so
// this is the way to find a usable time step for a new configuration.
func StabilitySweep(base physics.Params, minStep, maxStep float64, n, steps int, limit float64) ([]SweepPoint, error) {
	if n < 2 {
		n = 2
	}
	if minStep <= 0 || maxStep <= minStep {
		return nil, fmt.Errorf("sweep range [%g, %g] must be positive and increasing", minStep, maxStep)
	}

	ratio := math.Pow(maxStep/minStep, 1/float64(n-1))
	points := make([]SweepPoint, 0, n)
	for i := 0; i < n; i++ {
		p := base
		p.TimeStep = minStep * math.Pow(ratio, float64(i))

		eng, err := physics.NewEngine(p)
		if err != nil {
			return nil, err
		}
		g, err := eng.NewGrid()
		if err != nil {
			return nil, err
		}

		initial := physics.Energy(g.Snapshot())
		peak := initial
		for k := 0; k < steps; k++ {
			if err := eng.Advance(g); err != nil {
				return nil, err
			}
			s := g.Snapshot()
			if !s.IsFinite() {
				peak = math.Inf(1)
				break
			}
			peak = math.Max(peak, physics.Energy(s))
		}

		growth := peak
		if initial > 0 {
			growth = peak / initial
		}
		points = append(points, SweepPoint{
			TimeStep: p.TimeStep,
			Courant:  p.Courant(),
			Growth:   growth,
			Stable:   growth < limit,
		})
	}
	return points, nil
}

// CriticalTimeStep returns the largest time step before the first unstable
// point, or 0 when even the smallest step was unstable.
func CriticalTimeStep(points []SweepPoint) float64 {
	best := 0.0
	for _, pt := range points {
		if !pt.Stable {
			break
		}
		best = pt.TimeStep
	}
	return best
}

// SweepTable formats sweep points as aligned text columns.
func SweepTable(points []SweepPoint) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%-12s %-10s %-12s %s\n", "time_step", "courant", "growth", "stable")
	for _, pt := range points {
		fmt.Fprintf(&sb, "%-12.4g %-10.4g %-12.4g %v\n", pt.TimeStep, pt.Courant, pt.Growth, pt.Stable)
	}
	return sb.String()
}
