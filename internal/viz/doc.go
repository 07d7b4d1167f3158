// Package viz renders a running particle world in the terminal.
//
// The live view is a Bubble Tea program that steps a [dynamo.World] once per
// tick and draws it on a braille [Canvas]:
//
//   - [Model]: the live view, one world step per tick
//   - [Picker]: preset menu that starts a live view
//   - [Canvas]: braille pixel canvas with per-cell color
//
// # Key Bindings
//
//	Space  - Pause/Resume
//	N      - Single step while paused
//	R      - Reset to the starting particles
//	P      - Pin or release particle 0
//	Arrows - Move the pinned particle
//	T      - Cycle color themes
//	?      - Show help overlay
//	Q      - Quit
package viz
