package physics

import (
	"fmt"

	"github.com/san-kum/swsim/internal/dynamo"
)

// Advance performs one forward-Euler step. Boundary conditions are
// enforced, every tendency is computed from the pre-step arrays into
// scratch, and only then are the fields updated. The boundaries are
// enforced once more afterwards so a snapshot always shows them.
//
// Stability is the caller's responsibility: a TimeStep that is large
// against DX, Gravity and Depth grows without bound, and nothing here
// detects or damps that.
func Advance(g *Grid, p Params, f Forcing) error {
	if !g.Ready() {
		return dynamo.ErrNotInitialized
	}
	if p.Rows != g.rows || p.Cols != g.cols {
		return &dynamo.ConfigError{
			Field:  "grid",
			Value:  fmt.Sprintf("%dx%d", p.Rows, p.Cols),
			Reason: fmt.Sprintf("does not match initialized grid %dx%d", g.rows, g.cols),
		}
	}
	if len(f.Rotation) != g.rows || len(f.Wind) != g.rows {
		return &dynamo.ConfigError{Field: "forcing", Value: len(f.Rotation), Reason: "must have one coefficient per row"}
	}

	g.ApplyBoundaryConditions(p)
	if p.InterpolateRotation {
		g.centerVelocities(f.Rotation)
	}
	g.tendencies(p, f)
	g.integrate(p.TimeStep)
	g.ApplyBoundaryConditions(p)

	g.step++
	g.time += p.TimeStep
	return nil
}

// centerVelocities averages U and V onto cell centres, scaled by the row's
// rotation coefficient. The whole table is filled before any rotU/rotV read.
func (g *Grid) centerVelocities(rot []float64) {
	for r := 0; r < g.rows; r++ {
		for c := 0; c < g.cols; c++ {
			g.tempU.Set(r, c, (g.u.At(r, c)+g.u.At(r, c+1))/2*rot[r])
			g.tempV.Set(r, c, (g.v.At(r, c)+g.v.At(r+1, c))/2*rot[r])
		}
	}
}

func (g *Grid) tendencies(p Params, f Forcing) {
	h, u, v := g.h, g.u, g.v
	for r := 0; r < g.rows; r++ {
		north := prev(r, g.rows)
		for c := 0; c < g.cols; c++ {
			west := prev(c, g.cols+1)

			dHdX := (h.At(r, c) - h.At(r, west)) / p.DX
			dUdX := (u.At(r, c+1) - u.At(r, c)) / p.DX
			dHdY := (h.At(r, c) - h.At(north, c)) / p.DY
			dVdY := (v.At(r+1, c) - v.At(r, c)) / p.DY

			var rotU, rotV float64
			if p.InterpolateRotation {
				rotU = (g.tempU.At(r, c) + g.tempU.At(north, c)) / 2
				rotV = (g.tempV.At(r, c) + g.tempV.At(r, prev(c, g.cols))) / 2
			} else {
				rotU = f.Rotation[r] * u.At(r, c)
				rotV = f.Rotation[r] * v.At(r, c)
			}

			g.dHdX.Set(r, c, dHdX)
			g.dUdX.Set(r, c, dUdX)
			g.dHdY.Set(r, c, dHdY)
			g.dVdY.Set(r, c, dVdY)
			g.rotU.Set(r, c, rotU)
			g.rotV.Set(r, c, rotV)

			g.dUdT.Set(r, c, rotV-p.Gravity*dHdX-p.Drag*u.At(r, c)+f.Wind[r])
			g.dVdT.Set(r, c, -rotU-p.Gravity*dHdY-p.Drag*v.At(r, c))
			g.dHdT.Set(r, c, -(dUdX+dVdY)*p.Depth/p.DX)
		}
	}
}

func (g *Grid) integrate(dt float64) {
	for r := 0; r < g.rows; r++ {
		for c := 0; c < g.cols; c++ {
			g.u.Set(r, c, g.u.At(r, c)+g.dUdT.At(r, c)*dt)
			g.v.Set(r, c, g.v.At(r, c)+g.dVdT.At(r, c)*dt)
			g.h.Set(r, c, g.h.At(r, c)+g.dHdT.At(r, c)*dt)
		}
	}
}

// Engine pairs immutable Params with the Forcing built from them.
type Engine struct {
	params  Params
	forcing Forcing
}

// NewEngine validates p and resolves its forcing tables once.
func NewEngine(p Params) (*Engine, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &Engine{params: p, forcing: BuildForcing(p)}, nil
}

func (e *Engine) Params() Params   { return e.params }
func (e *Engine) Forcing() Forcing { return e.forcing.clone() }

// NewGrid returns a grid initialized for the engine's params.
func (e *Engine) NewGrid() (*Grid, error) {
	return NewGrid(e.params)
}

func (e *Engine) Advance(g *Grid) error {
	return Advance(g, e.params, e.forcing)
}
