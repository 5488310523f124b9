package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/swsim/internal/dynamo"
	"github.com/san-kum/swsim/internal/physics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func towerSnapshot(t *testing.T) (*physics.Engine, *physics.Grid) {
	t.Helper()
	eng, err := physics.NewEngine(physics.DefaultParams())
	require.NoError(t, err)
	g, err := eng.NewGrid()
	require.NoError(t, err)
	return eng, g
}

func TestEnergyTracksLatestFrame(t *testing.T) {
	m := NewEnergy()
	assert.Equal(t, "energy", m.Name())
	assert.Zero(t, m.Value())

	_, g := towerSnapshot(t)
	m.Observe(g.Snapshot())
	assert.Equal(t, 1.0, m.Value())

	m.Reset()
	assert.Zero(t, m.Value())
}

func TestEnergyGrowth(t *testing.T) {
	m := NewEnergyGrowth()
	eng, g := towerSnapshot(t)

	m.Observe(g.Snapshot())
	assert.Equal(t, 1.0, m.Value())

	for i := 0; i < 20; i++ {
		require.NoError(t, eng.Advance(g))
		m.Observe(g.Snapshot())
	}
	assert.GreaterOrEqual(t, m.Value(), 1.0)
	assert.Less(t, m.Value(), 1.5)

	m.Reset()
	assert.Zero(t, m.Value())
}

func TestEnergyGrowthFlatStart(t *testing.T) {
	p := physics.DefaultParams()
	p.Perturbation = physics.PerturbationNone
	p.Wind = physics.WindUniform
	eng, err := physics.NewEngine(p)
	require.NoError(t, err)
	g, err := eng.NewGrid()
	require.NoError(t, err)

	m := NewEnergyGrowth()
	m.Observe(g.Snapshot())
	require.NoError(t, eng.Advance(g))
	m.Observe(g.Snapshot())

	assert.Greater(t, m.Value(), 0.0)
	assert.Equal(t, physics.Energy(g.Snapshot()), m.Value())
}

func TestMassDrift(t *testing.T) {
	m := NewMassDrift()
	eng, g := towerSnapshot(t)

	for i := 0; i < 50; i++ {
		m.Observe(g.Snapshot())
		require.NoError(t, eng.Advance(g))
	}
	assert.Less(t, m.Value(), 1e-9, "periodic basin should keep its volume")

	m.Reset()
	assert.Zero(t, m.Value())
}

func TestStability(t *testing.T) {
	s := NewStability(0.5)
	assert.Equal(t, 1.0, s.Value())

	_, g := towerSnapshot(t)
	s.Observe(g.Snapshot())
	assert.Equal(t, 0.0, s.Value(), "tower of height 1 exceeds threshold")

	s.Reset()
	flat := dynamo.Snapshot{
		H: mat.NewDense(2, 3, nil),
		U: mat.NewDense(2, 3, nil),
		V: mat.NewDense(3, 2, nil),
	}
	s.Observe(flat)
	assert.Equal(t, 1.0, s.Value())

	bad := dynamo.Snapshot{
		H: mat.NewDense(2, 3, []float64{0, math.NaN(), 0, 0, 0, 0}),
		U: mat.NewDense(2, 3, nil),
		V: mat.NewDense(3, 2, nil),
	}
	s.Observe(bad)
	assert.Equal(t, 0.5, s.Value())
}

func TestPeakHeight(t *testing.T) {
	p := NewPeakHeight()
	_, g := towerSnapshot(t)
	p.Observe(g.Snapshot())
	assert.Equal(t, 1.0, p.Value())
	p.Reset()
	assert.Zero(t, p.Value())
}
