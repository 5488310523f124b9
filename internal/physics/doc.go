// Package physics implements an explicit finite-difference solver for the
// linear shallow-water equations on a staggered (Arakawa C) grid.
//
// The pieces are built once and then stepped:
//
//   - [Params]: grid geometry, constants and the selected schemes
//   - [Forcing]: per-row rotation and wind coefficients from [BuildForcing]
//   - [Grid]: height and velocity fields plus per-step scratch arrays
//   - [Advance] / [Engine]: one forward-Euler step
//
// # Example
//
//	eng, _ := physics.NewEngine(physics.DefaultParams())
//	g, _ := eng.NewGrid()
//	for i := 0; i < 100; i++ {
//	    eng.Advance(g)
//	}
//	snap := g.Snapshot()
//
// # Stability
//
// The integrator is forward Euler with a fixed step. A step that is too
// long for the grid spacing diverges; see [Params.Courant] for a rough
// indicator. Divergence is not reported as an error.
package physics
