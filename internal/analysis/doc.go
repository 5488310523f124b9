// Package analysis provides diagnostics over recorded runs.
//
//   - [PowerSpectrum] and [DominantPeriod]: oscillation content of the
//     centre-cell probe series
//   - [GrowthRate]: e-folding rate of the energy series
//   - [StabilitySweep]: energy growth across a range of time steps
//   - [Hovmoller]: height along one row stacked over time
//
// # Finding a stable time step
//
// The explicit scheme blows up once the time step is large against the
// grid spacing, gravity and depth. A sweep shows where:
//
//	points, _ := analysis.StabilitySweep(p, 60, 6e6, 12, 100, 2)
//	dt := analysis.CriticalTimeStep(points)
package analysis
