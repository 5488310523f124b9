package physics

import (
	"math"
	"strings"

	"github.com/san-kum/swsim/internal/dynamo"
)

const (
	DefaultSize         = 5
	DefaultSpacing      = 1.0e4 // meters
	DefaultTimeStep     = 600.0 // seconds
	DefaultGravity      = 9.8e-4
	DefaultDepth        = 4000.0 // meters
	DefaultDrag         = 1.0e-6 // about 10 days decay time
	DefaultMeanLatitude = 30.0   // degrees
)

type RotationScheme int

const (
	RotationNone RotationScheme = iota
	RotationWithLatitude
	RotationPlusMinus
	RotationUniform
)

var rotationNames = []string{"None", "WithLatitude", "PlusMinus", "Uniform"}

func (r RotationScheme) String() string {
	if r < 0 || int(r) >= len(rotationNames) {
		return rotationNames[RotationNone]
	}
	return rotationNames[r]
}

// ParseRotationScheme never fails: unknown names disable rotation.
func ParseRotationScheme(name string) RotationScheme {
	return RotationScheme(lookup(rotationNames, name))
}

type WindScheme int

const (
	WindNone WindScheme = iota
	WindCurled
	WindUniform
)

var windNames = []string{"None", "Curled", "Uniform"}

func (w WindScheme) String() string {
	if w < 0 || int(w) >= len(windNames) {
		return windNames[WindNone]
	}
	return windNames[w]
}

// ParseWindScheme never fails: unknown names disable wind.
func ParseWindScheme(name string) WindScheme {
	return WindScheme(lookup(windNames, name))
}

type Perturbation int

const (
	PerturbationNone Perturbation = iota
	PerturbationTower
	PerturbationNSGradient
	PerturbationEWGradient
)

var perturbationNames = []string{"None", "Tower", "NSGradient", "EWGradient"}

func (p Perturbation) String() string {
	if p < 0 || int(p) >= len(perturbationNames) {
		return perturbationNames[PerturbationNone]
	}
	return perturbationNames[p]
}

// ParsePerturbation never fails: unknown names leave the field flat.
func ParsePerturbation(name string) Perturbation {
	return Perturbation(lookup(perturbationNames, name))
}

// RotationSchemes, WindSchemes and Perturbations list the known names in
// enum order.
func RotationSchemes() []string { return append([]string(nil), rotationNames...) }
func WindSchemes() []string     { return append([]string(nil), windNames...) }
func Perturbations() []string   { return append([]string(nil), perturbationNames...) }

func lookup(names []string, name string) int {
	for i, n := range names {
		if strings.EqualFold(n, strings.TrimSpace(name)) {
			return i
		}
	}
	return 0
}

// Params is the immutable description of a run.
type Params struct {
	Rows, Cols          int
	DX, DY              float64
	TimeStep            float64
	Gravity             float64
	Depth               float64
	Drag                float64
	MeanLatitude        float64
	Rotation            RotationScheme
	Wind                WindScheme
	Perturbation        Perturbation
	HorizontalWrap      bool
	InterpolateRotation bool
}

func DefaultParams() Params {
	return Params{
		Rows:           DefaultSize,
		Cols:           DefaultSize,
		DX:             DefaultSpacing,
		DY:             DefaultSpacing,
		TimeStep:       DefaultTimeStep,
		Gravity:        DefaultGravity,
		Depth:          DefaultDepth,
		Drag:           DefaultDrag,
		MeanLatitude:   DefaultMeanLatitude,
		Rotation:       RotationPlusMinus,
		Wind:           WindNone,
		Perturbation:   PerturbationTower,
		HorizontalWrap: true,
	}
}

// Validate checks geometry and spacing only. Scheme values outside the
// known set are not errors; they behave as None.
func (p Params) Validate() error {
	if p.Rows < 1 {
		return &dynamo.ConfigError{Field: "rows", Value: p.Rows, Reason: "must be at least 1"}
	}
	if p.Cols < 1 {
		return &dynamo.ConfigError{Field: "cols", Value: p.Cols, Reason: "must be at least 1"}
	}
	positive := []struct {
		name string
		v    float64
	}{
		{"dx", p.DX},
		{"dy", p.DY},
		{"time_step", p.TimeStep},
	}
	for _, f := range positive {
		if !(f.v > 0) || math.IsInf(f.v, 0) {
			return &dynamo.ConfigError{Field: f.name, Value: f.v, Reason: "must be positive and finite"}
		}
	}
	finite := []struct {
		name string
		v    float64
	}{
		{"gravity", p.Gravity},
		{"depth", p.Depth},
		{"drag", p.Drag},
		{"mean_latitude", p.MeanLatitude},
	}
	for _, f := range finite {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return &dynamo.ConfigError{Field: f.name, Value: f.v, Reason: "must be finite"}
		}
	}
	return nil
}

// WaveSpeed is the gravity-wave speed implied by the discrete height
// tendency, which carries an extra 1/dX factor.
func (p Params) WaveSpeed() float64 {
	if p.Gravity <= 0 || p.Depth <= 0 {
		return 0
	}
	return math.Sqrt(p.Gravity * p.Depth / p.DX)
}

// Courant is a diagnostic only. Values well below 1 have been stable in
// practice; nothing adjusts the step based on it.
func (p Params) Courant() float64 {
	return p.WaveSpeed() * p.TimeStep * math.Sqrt(1/(p.DX*p.DX)+1/(p.DY*p.DY))
}
