package physics

import (
	"errors"
	"math"
	"testing"

	"github.com/onsi/gomega"
	"github.com/san-kum/swsim/internal/dynamo"
)

func stillParams() Params {
	p := DefaultParams()
	p.Rotation = RotationNone
	p.Wind = WindNone
	p.Perturbation = PerturbationNone
	return p
}

func advanceN(t *testing.T, eng *Engine, g *Grid, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		if err := eng.Advance(g); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}
}

func TestStillWaterIsFixedPoint(t *testing.T) {
	g := gomega.NewWithT(t)

	for _, wrap := range []bool{true, false} {
		p := stillParams()
		p.HorizontalWrap = wrap
		eng, err := NewEngine(p)
		g.Expect(err).NotTo(gomega.HaveOccurred())
		grid, err := eng.NewGrid()
		g.Expect(err).NotTo(gomega.HaveOccurred())

		advanceN(t, eng, grid, 50)

		s := grid.Snapshot()
		g.Expect(Energy(s)).To(gomega.Equal(0.0), "wrap=%v", wrap)
		g.Expect(grid.Steps()).To(gomega.Equal(50))
	}
}

func TestWrapColumnMatchesColumnZero(t *testing.T) {
	g := gomega.NewWithT(t)

	p := DefaultParams()
	p.Perturbation = PerturbationEWGradient
	p.Wind = WindCurled
	p.HorizontalWrap = true
	eng, err := NewEngine(p)
	g.Expect(err).NotTo(gomega.HaveOccurred())
	grid, err := eng.NewGrid()
	g.Expect(err).NotTo(gomega.HaveOccurred())

	for i := 0; i < 20; i++ {
		g.Expect(eng.Advance(grid)).To(gomega.Succeed())
		s := grid.Snapshot()
		for r := 0; r < p.Rows; r++ {
			g.Expect(s.H.At(r, p.Cols)).To(gomega.Equal(s.H.At(r, 0)))
			g.Expect(s.U.At(r, p.Cols)).To(gomega.Equal(s.U.At(r, 0)))
		}
	}
}

func TestClosedBasinPinsEastWestU(t *testing.T) {
	g := gomega.NewWithT(t)

	p := DefaultParams()
	p.Perturbation = PerturbationEWGradient
	p.Wind = WindUniform
	p.HorizontalWrap = false
	eng, err := NewEngine(p)
	g.Expect(err).NotTo(gomega.HaveOccurred())
	grid, err := eng.NewGrid()
	g.Expect(err).NotTo(gomega.HaveOccurred())

	for i := 0; i < 20; i++ {
		g.Expect(eng.Advance(grid)).To(gomega.Succeed())
		s := grid.Snapshot()
		for r := 0; r < p.Rows; r++ {
			g.Expect(s.U.At(r, 0)).To(gomega.BeZero())
			g.Expect(s.U.At(r, p.Cols)).To(gomega.BeZero())
		}
	}
}

func TestNorthSouthVPinned(t *testing.T) {
	g := gomega.NewWithT(t)

	for _, rot := range []RotationScheme{RotationNone, RotationWithLatitude, RotationPlusMinus, RotationUniform} {
		for _, interp := range []bool{false, true} {
			p := DefaultParams()
			p.Rotation = rot
			p.InterpolateRotation = interp
			p.Perturbation = PerturbationNSGradient
			eng, err := NewEngine(p)
			g.Expect(err).NotTo(gomega.HaveOccurred())
			grid, err := eng.NewGrid()
			g.Expect(err).NotTo(gomega.HaveOccurred())

			for i := 0; i < 10; i++ {
				g.Expect(eng.Advance(grid)).To(gomega.Succeed())
				s := grid.Snapshot()
				for c := 0; c < p.Cols; c++ {
					g.Expect(s.V.At(0, c)).To(gomega.BeZero(), "rot=%v interp=%v", rot, interp)
					g.Expect(s.V.At(p.Rows, c)).To(gomega.BeZero(), "rot=%v interp=%v", rot, interp)
				}
			}
		}
	}
}

// First and second step of a 5x5 tower with zero initial velocity. The
// first step only moves U and V; H reacts on the second.
func TestTowerFirstTwoSteps(t *testing.T) {
	g := gomega.NewWithT(t)

	p := DefaultParams()
	p.Rows, p.Cols = 5, 5
	p.Rotation = RotationPlusMinus
	p.InterpolateRotation = false
	p.Wind = WindNone
	p.Perturbation = PerturbationTower
	eng, err := NewEngine(p)
	g.Expect(err).NotTo(gomega.HaveOccurred())
	grid, err := eng.NewGrid()
	g.Expect(err).NotTo(gomega.HaveOccurred())

	g.Expect(eng.Advance(grid)).To(gomega.Succeed())
	s := grid.Snapshot()
	g.Expect(s.H.At(2, 2)).To(gomega.Equal(1.0))

	push := p.Gravity * p.TimeStep
	g.Expect(s.U.At(2, 2)).To(gomega.BeNumerically("~", -push/p.DX, 1e-18))
	g.Expect(s.U.At(2, 3)).To(gomega.BeNumerically("~", push/p.DX, 1e-18))
	g.Expect(s.V.At(2, 2)).To(gomega.BeNumerically("~", -push/p.DY, 1e-18))
	g.Expect(s.V.At(3, 2)).To(gomega.BeNumerically("~", push/p.DY, 1e-18))

	divergence := (s.U.At(2, 3)-s.U.At(2, 2))/p.DX + (s.V.At(3, 2)-s.V.At(2, 2))/p.DY
	want := 1 - divergence*p.Depth/p.DX*p.TimeStep

	g.Expect(eng.Advance(grid)).To(gomega.Succeed())
	s = grid.Snapshot()
	g.Expect(s.H.At(2, 2)).To(gomega.BeNumerically("~", want, 1e-15))
	g.Expect(s.H.At(2, 2)).To(gomega.BeNumerically("<", 1.0))
}

func TestTowerScratchAfterFirstStep(t *testing.T) {
	g := gomega.NewWithT(t)

	p := DefaultParams()
	p.HorizontalWrap = false
	eng, err := NewEngine(p)
	g.Expect(err).NotTo(gomega.HaveOccurred())
	grid, err := eng.NewGrid()
	g.Expect(err).NotTo(gomega.HaveOccurred())
	g.Expect(eng.Advance(grid)).To(gomega.Succeed())

	f := grid.Fields()
	g.Expect(f.DHDX.At(2, 2)).To(gomega.Equal(1 / p.DX))
	g.Expect(f.DHDX.At(2, 3)).To(gomega.Equal(-1 / p.DX))
	g.Expect(f.DHDY.At(2, 2)).To(gomega.Equal(1 / p.DY))
	g.Expect(f.DHDT.At(2, 2)).To(gomega.BeZero())
	g.Expect(f.RotU.At(2, 2)).To(gomega.BeZero())
}

func TestInterpolatedRotationAveragesNeighbours(t *testing.T) {
	g := gomega.NewWithT(t)

	p := DefaultParams()
	p.Rotation = RotationUniform
	p.InterpolateRotation = true
	p.HorizontalWrap = false
	eng, err := NewEngine(p)
	g.Expect(err).NotTo(gomega.HaveOccurred())
	grid, err := eng.NewGrid()
	g.Expect(err).NotTo(gomega.HaveOccurred())
	g.Expect(eng.Advance(grid)).To(gomega.Succeed())

	before := grid.Snapshot()
	g.Expect(eng.Advance(grid)).To(gomega.Succeed())
	f := grid.Fields()

	coef := eng.Forcing().Rotation
	tempU := func(r, c int) float64 {
		return (before.U.At(r, c) + before.U.At(r, c+1)) / 2 * coef[r]
	}
	tempV := func(r, c int) float64 {
		return (before.V.At(r, c) + before.V.At(r+1, c)) / 2 * coef[r]
	}

	g.Expect(f.RotU.At(3, 1)).To(gomega.BeNumerically("~", (tempU(3, 1)+tempU(2, 1))/2, 1e-20))
	g.Expect(f.RotV.At(1, 3)).To(gomega.BeNumerically("~", (tempV(1, 3)+tempV(1, 2))/2, 1e-20))
	g.Expect(f.RotU.At(3, 1)).NotTo(gomega.BeZero())
	g.Expect(f.RotV.At(1, 3)).NotTo(gomega.BeZero())
}

func TestInterpolatedAndDirectDiffer(t *testing.T) {
	g := gomega.NewWithT(t)

	run := func(interp bool) float64 {
		p := DefaultParams()
		p.Rotation = RotationUniform
		p.InterpolateRotation = interp
		eng, err := NewEngine(p)
		g.Expect(err).NotTo(gomega.HaveOccurred())
		grid, err := eng.NewGrid()
		g.Expect(err).NotTo(gomega.HaveOccurred())
		advanceN(t, eng, grid, 10)
		return grid.Snapshot().U.At(2, 2)
	}

	g.Expect(run(true)).NotTo(gomega.Equal(run(false)))
}

func TestEnergyBoundedWhenStable(t *testing.T) {
	g := gomega.NewWithT(t)

	p := DefaultParams()
	p.Wind = WindCurled
	g.Expect(p.Courant()).To(gomega.BeNumerically("<", 0.01))

	eng, err := NewEngine(p)
	g.Expect(err).NotTo(gomega.HaveOccurred())
	grid, err := eng.NewGrid()
	g.Expect(err).NotTo(gomega.HaveOccurred())

	initial := Energy(grid.Snapshot())
	for i := 0; i < 100; i++ {
		g.Expect(eng.Advance(grid)).To(gomega.Succeed())
		s := grid.Snapshot()
		g.Expect(s.IsFinite()).To(gomega.BeTrue(), "step %d", i)
		g.Expect(Energy(s)).To(gomega.BeNumerically("<", 2*initial), "step %d", i)
	}
}

func TestEnergyNotBoundedWhenUnstable(t *testing.T) {
	g := gomega.NewWithT(t)

	p := DefaultParams()
	p.TimeStep = DefaultTimeStep * 1e4
	g.Expect(p.Courant()).To(gomega.BeNumerically(">", 1))

	eng, err := NewEngine(p)
	g.Expect(err).NotTo(gomega.HaveOccurred())
	grid, err := eng.NewGrid()
	g.Expect(err).NotTo(gomega.HaveOccurred())

	initial := Energy(grid.Snapshot())
	advanceN(t, eng, grid, 100)

	s := grid.Snapshot()
	e := Energy(s)
	blewUp := !s.IsFinite() || math.IsNaN(e) || e > 1e6*initial
	g.Expect(blewUp).To(gomega.BeTrue(), "energy %g", e)
}

func TestDeterministicRuns(t *testing.T) {
	g := gomega.NewWithT(t)

	p := DefaultParams()
	p.Rows, p.Cols = 8, 6
	p.Rotation = RotationWithLatitude
	p.Wind = WindCurled
	p.InterpolateRotation = true

	run := func() (h, u, v []float64) {
		eng, err := NewEngine(p)
		g.Expect(err).NotTo(gomega.HaveOccurred())
		grid, err := eng.NewGrid()
		g.Expect(err).NotTo(gomega.HaveOccurred())
		advanceN(t, eng, grid, 75)
		s := grid.Snapshot()
		return s.H.RawMatrix().Data, s.U.RawMatrix().Data, s.V.RawMatrix().Data
	}

	h1, u1, v1 := run()
	h2, u2, v2 := run()
	g.Expect(h1).To(gomega.Equal(h2))
	g.Expect(u1).To(gomega.Equal(u2))
	g.Expect(v1).To(gomega.Equal(v2))
}

func TestAdvanceBeforeInitialize(t *testing.T) {
	g := gomega.NewWithT(t)

	p := DefaultParams()
	err := Advance(&Grid{}, p, BuildForcing(p))
	g.Expect(errors.Is(err, dynamo.ErrNotInitialized)).To(gomega.BeTrue())

	err = Advance(nil, p, BuildForcing(p))
	g.Expect(errors.Is(err, dynamo.ErrNotInitialized)).To(gomega.BeTrue())
}

func TestAdvanceRejectsMismatchedParams(t *testing.T) {
	g := gomega.NewWithT(t)

	p := DefaultParams()
	grid, err := NewGrid(p)
	g.Expect(err).NotTo(gomega.HaveOccurred())

	other := p
	other.Rows = 7
	err = Advance(grid, other, BuildForcing(other))
	g.Expect(errors.Is(err, dynamo.ErrInvalidConfig)).To(gomega.BeTrue())
	g.Expect(grid.Steps()).To(gomega.BeZero())

	err = Advance(grid, p, Forcing{})
	g.Expect(errors.Is(err, dynamo.ErrInvalidConfig)).To(gomega.BeTrue())
}

func TestSnapshotDoesNotAlias(t *testing.T) {
	g := gomega.NewWithT(t)

	eng, err := NewEngine(DefaultParams())
	g.Expect(err).NotTo(gomega.HaveOccurred())
	grid, err := eng.NewGrid()
	g.Expect(err).NotTo(gomega.HaveOccurred())

	s := grid.Snapshot()
	advanceN(t, eng, grid, 5)

	g.Expect(s.H.At(2, 2)).To(gomega.Equal(1.0))
	g.Expect(s.U.At(2, 2)).To(gomega.BeZero())
	g.Expect(s.Step).To(gomega.BeZero())

	s.H.Set(2, 2, 42)
	g.Expect(grid.Snapshot().H.At(2, 2)).NotTo(gomega.Equal(42.0))
}

func TestTimeAdvancesByStep(t *testing.T) {
	g := gomega.NewWithT(t)

	eng, err := NewEngine(DefaultParams())
	g.Expect(err).NotTo(gomega.HaveOccurred())
	grid, err := eng.NewGrid()
	g.Expect(err).NotTo(gomega.HaveOccurred())
	advanceN(t, eng, grid, 144)

	s := grid.Snapshot()
	g.Expect(s.Time).To(gomega.Equal(144 * DefaultTimeStep))
	g.Expect(s.Days()).To(gomega.Equal(1.0))
}
