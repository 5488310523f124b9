// Package viz is the terminal front end for shallow-water runs, built on
// Bubble Tea and Lip Gloss.
//
// [Model] steps a grid from the tick and draws H as a coloured cell map
// with optional velocity glyphs next to energy and probe charts.
// [NewInteractiveApp] adds a preset menu and a config screen in front of it.
//
// # Key Bindings
//
//	Space - Pause/Resume
//	R     - Reset to the initial state
//	+/-   - Double/halve steps per frame
//	[ ]   - Replay through recent frames
//	A     - Toggle velocity glyphs
//	T     - Cycle color themes
//	G     - Toggle GIF recording
//	?     - Show help overlay
//
// Recordings are written to swsim.gif in the current directory.
package viz
