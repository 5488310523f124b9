package physics

import (
	"github.com/san-kum/swsim/internal/dynamo"
	"gonum.org/v1/gonum/mat"
)

const gradientOffset = 0.1

// Grid is the staggered C-grid state. H and U carry one extra column and V
// one extra row; the extra column doubles as the wrap-around copy of
// column 0. A Grid is owned by a single driving loop.
type Grid struct {
	rows, cols int
	ready      bool
	step       int
	time       float64

	h, u, v *mat.Dense

	dHdX, dHdY *mat.Dense
	dUdX, dVdY *mat.Dense
	rotU, rotV *mat.Dense
	tempU      *mat.Dense
	tempV      *mat.Dense
	dUdT, dVdT *mat.Dense
	dHdT       *mat.Dense
}

// NewGrid allocates and initializes a grid for p.
func NewGrid(p Params) (*Grid, error) {
	g := &Grid{}
	if err := g.Initialize(p); err != nil {
		return nil, err
	}
	return g, nil
}

// Initialize zero-fills every array at its staggered shape and applies the
// configured perturbation. Calling it again restarts the run.
func (g *Grid) Initialize(p Params) error {
	if err := p.Validate(); err != nil {
		return err
	}
	rows, cols := p.Rows, p.Cols

	g.rows, g.cols = rows, cols
	g.step, g.time = 0, 0

	g.h = mat.NewDense(rows, cols+1, nil)
	g.u = mat.NewDense(rows, cols+1, nil)
	g.v = mat.NewDense(rows+1, cols, nil)

	scratch := func() *mat.Dense { return mat.NewDense(rows, cols, nil) }
	g.dHdX, g.dHdY = scratch(), scratch()
	g.dUdX, g.dVdY = scratch(), scratch()
	g.rotU, g.rotV = scratch(), scratch()
	g.tempU, g.tempV = scratch(), scratch()
	g.dUdT, g.dVdT, g.dHdT = scratch(), scratch(), scratch()

	g.perturb(p.Perturbation)
	g.ready = true
	return nil
}

func (g *Grid) perturb(kind Perturbation) {
	switch kind {
	case PerturbationTower:
		g.h.Set(g.rows/2, g.cols/2, 1)
	case PerturbationNSGradient:
		for r := 0; r < g.rows/2; r++ {
			for c := 0; c <= g.cols; c++ {
				g.h.Set(r, c, gradientOffset)
			}
		}
	case PerturbationEWGradient:
		for r := 0; r < g.rows; r++ {
			for c := 0; c < g.cols/2; c++ {
				g.h.Set(r, c, gradientOffset)
			}
		}
	}
}

// ApplyBoundaryConditions pins the north/south rows of V and either copies
// column 0 into the spare column (wrap) or closes the east/west faces of U.
func (g *Grid) ApplyBoundaryConditions(p Params) {
	for c := 0; c < g.cols; c++ {
		g.v.Set(0, c, 0)
		g.v.Set(g.rows, c, 0)
	}
	for r := 0; r < g.rows; r++ {
		if p.HorizontalWrap {
			g.u.Set(r, g.cols, g.u.At(r, 0))
			g.h.Set(r, g.cols, g.h.At(r, 0))
		} else {
			g.u.Set(r, 0, 0)
			g.u.Set(r, g.cols, 0)
		}
	}
}

func (g *Grid) Ready() bool            { return g != nil && g.ready }
func (g *Grid) Dims() (rows, cols int) { return g.rows, g.cols }
func (g *Grid) Steps() int             { return g.step }
func (g *Grid) Time() float64          { return g.time }

// Snapshot copies H, U and V. The copies never share storage with the grid.
func (g *Grid) Snapshot() dynamo.Snapshot {
	return dynamo.Snapshot{
		Step: g.step,
		Time: g.time,
		H:    mat.DenseCopyOf(g.h),
		U:    mat.DenseCopyOf(g.u),
		V:    mat.DenseCopyOf(g.v),
	}
}

// Fields copies every array including the scratch buffers of the last step.
func (g *Grid) Fields() dynamo.Fields {
	return dynamo.Fields{
		Step: g.step,
		Time: g.time,
		H:    mat.DenseCopyOf(g.h),
		U:    mat.DenseCopyOf(g.u),
		V:    mat.DenseCopyOf(g.v),
		DHDX: mat.DenseCopyOf(g.dHdX),
		DHDY: mat.DenseCopyOf(g.dHdY),
		DUDX: mat.DenseCopyOf(g.dUdX),
		DVDY: mat.DenseCopyOf(g.dVdY),
		RotU: mat.DenseCopyOf(g.rotU),
		RotV: mat.DenseCopyOf(g.rotV),
		DUDT: mat.DenseCopyOf(g.dUdT),
		DVDT: mat.DenseCopyOf(g.dVdT),
		DHDT: mat.DenseCopyOf(g.dHdT),
	}
}

// prev returns i-1, with -1 resolving to the last index of an axis of
// length n. This is how the padded arrays supply west and north neighbours.
func prev(i, n int) int {
	if i == 0 {
		return n - 1
	}
	return i - 1
}
