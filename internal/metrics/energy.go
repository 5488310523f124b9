package metrics

import (
	"math"

	"github.com/san-kum/swsim/internal/dynamo"
	"github.com/san-kum/swsim/internal/physics"
)

// Energy reports the sum of squared field values of the latest frame.
type Energy struct {
	name    string
	current float64
	samples int
}

func NewEnergy() *Energy {
	return &Energy{name: "energy"}
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) Observe(s dynamo.Snapshot) {
	e.current = physics.Energy(s)
	e.samples++
}

func (e *Energy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.current
}

func (e *Energy) Reset() {
	e.current = 0
	e.samples = 0
}

// EnergyGrowth is the largest ratio of frame energy to initial energy.
// When the run starts flat it falls back to the largest absolute energy.
type EnergyGrowth struct {
	name          string
	initialEnergy float64
	maxEnergy     float64
	samples       int
}

func NewEnergyGrowth() *EnergyGrowth {
	return &EnergyGrowth{name: "energy_growth"}
}

func (e *EnergyGrowth) Name() string { return e.name }

func (e *EnergyGrowth) Observe(s dynamo.Snapshot) {
	energy := physics.Energy(s)
	if e.samples == 0 {
		e.initialEnergy = energy
	}
	if math.IsNaN(energy) {
		energy = math.Inf(1)
	}
	e.maxEnergy = math.Max(e.maxEnergy, energy)
	e.samples++
}

func (e *EnergyGrowth) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	if e.initialEnergy == 0 {
		return e.maxEnergy
	}
	return e.maxEnergy / e.initialEnergy
}

func (e *EnergyGrowth) Reset() {
	e.initialEnergy = 0
	e.maxEnergy = 0
	e.samples = 0
}

// MassDrift is the largest |mass - initial mass| seen.
type MassDrift struct {
	name        string
	initialMass float64
	maxDrift    float64
	samples     int
}

func NewMassDrift() *MassDrift {
	return &MassDrift{name: "mass_drift"}
}

func (m *MassDrift) Name() string { return m.name }

func (m *MassDrift) Observe(s dynamo.Snapshot) {
	mass := physics.Mass(s)
	if m.samples == 0 {
		m.initialMass = mass
	}
	m.maxDrift = math.Max(m.maxDrift, math.Abs(mass-m.initialMass))
	m.samples++
}

func (m *MassDrift) Value() float64 { return m.maxDrift }

func (m *MassDrift) Reset() {
	m.initialMass = 0
	m.maxDrift = 0
	m.samples = 0
}
