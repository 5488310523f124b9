package dynamo

import (
	"errors"
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/mat"
)

const SecondsPerDay = 86400.0

// Snapshot is a deep copy of the prognostic fields.
// Shapes: H and U are rows×(cols+1), V is (rows+1)×cols.
type Snapshot struct {
	Step int
	Time float64
	H    *mat.Dense
	U    *mat.Dense
	V    *mat.Dense
}

// Days returns the simulated time truncated to a tenth of a day.
func (s Snapshot) Days() float64 {
	return Days(s.Time)
}

// Days converts seconds of simulated time to days, truncated to a tenth.
func Days(seconds float64) float64 {
	return math.Floor(seconds/SecondsPerDay*10) / 10
}

// Dims returns the interior grid extents.
func (s Snapshot) Dims() (rows, cols int) {
	if s.V == nil {
		return 0, 0
	}
	r, c := s.V.Dims()
	return r - 1, c
}

// IsFinite reports whether no field holds NaN or Inf.
func (s Snapshot) IsFinite() bool {
	for _, m := range []*mat.Dense{s.H, s.U, s.V} {
		if m == nil {
			continue
		}
		r, c := m.Dims()
		for i := 0; i < r; i++ {
			for j := 0; j < c; j++ {
				if v := m.At(i, j); math.IsNaN(v) || math.IsInf(v, 0) {
					return false
				}
			}
		}
	}
	return true
}

func (s Snapshot) String() string {
	rows, cols := s.Dims()
	return fmt.Sprintf("snapshot{step=%d days=%.1f grid=%dx%d}", s.Step, s.Days(), rows, cols)
}

// Fields holds copies of every array the stepper touches, scratch included.
type Fields struct {
	Step int
	Time float64

	H, U, V                *mat.Dense
	DHDX, DHDY, DUDX, DVDY *mat.Dense
	RotU, RotV             *mat.Dense
	DUDT, DVDT, DHDT       *mat.Dense
}

type Observer interface {
	OnStep(s Snapshot)
}

type Metric interface {
	Name() string
	Observe(s Snapshot)
	Value() float64
	Reset()
}

// RunConfig controls a driving loop. StepsPerFrame steps are taken between snapshots.
type RunConfig struct {
	Frames           int
	StepsPerFrame    int
	ValidateState    bool
	StopOnDivergence bool
	KeepSnapshots    bool
}

func DefaultRunConfig() RunConfig {
	return RunConfig{
		Frames:        1000,
		StepsPerFrame: 1,
		ValidateState: true,
	}
}

type Result struct {
	Snapshots  []Snapshot
	Steps      []int
	Times      []float64
	Energy     []float64
	Probe      []float64
	Metrics    map[string]float64
	StepsTaken int
	Errors     []error
	Elapsed    time.Duration
}

// Diverged reports whether any recorded error is ErrUnstable.
func (r *Result) Diverged() bool {
	for _, err := range r.Errors {
		if errors.Is(err, ErrUnstable) {
			return true
		}
	}
	return false
}
