// Package dynamo provides the types shared between the shallow-water core
// and everything that consumes it.
//
// The package defines the read-only views and hooks a driving loop uses:
//
//   - [Snapshot]: deep copy of the H, U and V grids at one instant
//   - [Fields]: deep copy of every field and scratch array, for diagnostics
//   - [Observer]: receives a snapshot after every frame
//   - [Metric]: accumulates a scalar over the snapshots of a run
//   - [RunConfig] and [Result]: inputs and outputs of a driving loop
//
// # Thread Safety
//
// Snapshots never alias live grid storage, so they may be handed to a
// renderer on another goroutine while the next step runs. Everything else
// assumes a single owner.
package dynamo
