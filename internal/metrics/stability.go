package metrics

import (
	"math"

	"github.com/san-kum/swsim/internal/dynamo"
	"github.com/san-kum/swsim/internal/physics"
)

// Stability is the fraction of frames whose height stayed finite and
// within threshold.
type Stability struct {
	name       string
	threshold  float64
	violations int
	samples    int
}

func NewStability(threshold float64) *Stability {
	return &Stability{
		name:      "stability",
		threshold: threshold,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(snap dynamo.Snapshot) {
	s.samples++
	peak := physics.PeakHeight(snap)
	if !snap.IsFinite() || math.IsNaN(peak) || peak > s.threshold {
		s.violations++
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}

// PeakHeight is the largest |H| seen over the run.
type PeakHeight struct {
	name string
	peak float64
}

func NewPeakHeight() *PeakHeight {
	return &PeakHeight{name: "peak_height"}
}

func (p *PeakHeight) Name() string { return p.name }

func (p *PeakHeight) Observe(s dynamo.Snapshot) {
	p.peak = math.Max(p.peak, physics.PeakHeight(s))
}

func (p *PeakHeight) Value() float64 { return p.peak }

func (p *PeakHeight) Reset() { p.peak = 0 }
