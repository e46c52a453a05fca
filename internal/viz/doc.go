// Package viz provides the terminal viewer for the particle engine.
//
// The package implements an interactive TUI using the Bubble Tea framework:
//
//   - [Model]: live viewer that advances a [sim.Engine] once per frame
//   - [Canvas]: Braille-based pixel canvas with per-cell colour
//   - [Camera]: orbiting perspective projection of the simulation volume
//   - a preset picker started by [RunInteractive]
//
// # Key Bindings
//
//	1-6   - Trigger hover, click, success, navigation, error, toggle
//	Space - Pause/Resume
//	C     - Clear particles
//	R     - Reset scene and parameters
//	T     - Cycle color themes
//	G     - Toggle GIF recording
//	?     - Show help overlay
//	[]    - Time travel (rewind/forward)
//
// # Recording
//
// G records the braille canvas as a GIF animation, written on the second
// press.
package viz
