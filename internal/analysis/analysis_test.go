package analysis

import (
	"math"
	"strings"
	"testing"

	"github.com/san-kum/swsim/internal/dynamo"
	"github.com/san-kum/swsim/internal/physics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestPowerSpectrum(t *testing.T) {
	n := 64
	series := make([]float64, n)
	for i := range series {
		series[i] = 3 + math.Sin(2*math.Pi*float64(i)*4/float64(n))
	}

	ps := PowerSpectrum(series)
	require.Len(t, ps, n/2+1)
	assert.InDelta(t, 0, ps[0], 1e-9, "mean should be removed")
	assert.InDelta(t, float64(n)/4, ps[4], 1e-9)
	for k, v := range ps {
		if k != 4 {
			assert.InDelta(t, 0, v, 1e-9, "bin %d", k)
		}
	}

	assert.Nil(t, PowerSpectrum(nil))
}

func TestDominantPeriod(t *testing.T) {
	n := 128
	series := make([]float64, n)
	for i := range series {
		series[i] = math.Cos(2 * math.Pi * float64(i) / 16)
	}
	assert.InDelta(t, 16*600.0, DominantPeriod(series, 600), 1e-9)

	assert.Zero(t, DominantPeriod([]float64{1, 2}, 1))
	assert.Zero(t, DominantPeriod(make([]float64, 32), 1))

	series[3] = math.NaN()
	assert.Zero(t, DominantPeriod(series, 1))
}

func TestDominantPeriodOfTowerProbe(t *testing.T) {
	eng, err := physics.NewEngine(physics.DefaultParams())
	require.NoError(t, err)
	g, err := eng.NewGrid()
	require.NoError(t, err)

	probe := []float64{physics.Probe(g.Snapshot())}
	for i := 0; i < 255; i++ {
		require.NoError(t, eng.Advance(g))
		probe = append(probe, physics.Probe(g.Snapshot()))
	}

	period := DominantPeriod(probe, physics.DefaultTimeStep)
	assert.Greater(t, period, 2*physics.DefaultTimeStep)
	assert.LessOrEqual(t, period, 256*physics.DefaultTimeStep)
}

func TestGrowthRate(t *testing.T) {
	times := make([]float64, 20)
	energy := make([]float64, 20)
	for i := range times {
		times[i] = float64(i) * dynamo.SecondsPerDay / 4
		energy[i] = 5 * math.Exp(0.7*times[i]/dynamo.SecondsPerDay)
	}
	assert.InDelta(t, 0.7, GrowthRate(times, energy), 1e-9)

	energy[5] = math.Inf(1)
	energy[6] = 0
	assert.InDelta(t, 0.7, GrowthRate(times, energy), 1e-9)

	assert.Zero(t, GrowthRate([]float64{0}, []float64{1}))

	same := GrowthRate([]float64{600, 600, 600}, []float64{1, 2, 4})
	assert.False(t, math.IsNaN(same))
	assert.Zero(t, same)
}

func TestStabilitySweep(t *testing.T) {
	p := physics.DefaultParams()
	points, err := StabilitySweep(p, 60, 6e6, 6, 200, 2)
	require.NoError(t, err)
	require.Len(t, points, 6)

	assert.Equal(t, 60.0, points[0].TimeStep)
	assert.InEpsilon(t, 6e6, points[5].TimeStep, 1e-9)
	assert.True(t, points[0].Stable)
	assert.False(t, points[5].Stable)
	for i := 1; i < len(points); i++ {
		assert.Greater(t, points[i].Courant, points[i-1].Courant)
	}

	crit := CriticalTimeStep(points)
	assert.GreaterOrEqual(t, crit, 60.0)
	assert.Less(t, crit, 6e6)

	table := SweepTable(points)
	assert.Equal(t, 7, strings.Count(table, "\n"))

	_, err = StabilitySweep(p, 10, 5, 3, 10, 2)
	assert.Error(t, err)
}

func TestCriticalTimeStepAllUnstable(t *testing.T) {
	assert.Zero(t, CriticalTimeStep([]SweepPoint{{TimeStep: 1, Stable: false}, {TimeStep: 2, Stable: true}}))
}

func TestHovmoller(t *testing.T) {
	p := physics.DefaultParams()
	eng, err := physics.NewEngine(p)
	require.NoError(t, err)
	g, err := eng.NewGrid()
	require.NoError(t, err)

	snaps := []dynamo.Snapshot{g.Snapshot()}
	for i := 0; i < 9; i++ {
		require.NoError(t, eng.Advance(g))
		snaps = append(snaps, g.Snapshot())
	}

	m := Hovmoller(snaps, 2)
	require.NotNil(t, m)
	r, c := m.Dims()
	assert.Equal(t, 10, r)
	assert.Equal(t, 5, c)
	assert.Equal(t, 1.0, m.At(0, 2))
	assert.Equal(t, snaps[9].H.At(2, 4), m.At(9, 4))

	art := HovmollerToASCII(m)
	lines := strings.Split(strings.TrimRight(art, "\n"), "\n")
	require.Len(t, lines, 10)
	assert.Equal(t, "  @  ", lines[0])

	assert.Nil(t, Hovmoller(snaps, 5))
	assert.Nil(t, Hovmoller(nil, 0))
	assert.Empty(t, HovmollerToASCII(nil))
}

func TestHovmollerFrames(t *testing.T) {
	frames := []*mat.Dense{
		mat.NewDense(2, 3, []float64{1, 2, 3, 4, 5, 6}),
		mat.NewDense(2, 3, []float64{7, 8, 9, 10, 11, 12}),
	}
	m := HovmollerFrames(frames, 1)
	require.NotNil(t, m)
	assert.Equal(t, []float64{4, 5, 6}, m.RawRowView(0))
	assert.Equal(t, []float64{10, 11, 12}, m.RawRowView(1))
	assert.Nil(t, HovmollerFrames(frames, 2))
}
