// Package viz hosts the lab in a terminal using the Bubble Tea framework.
//
//   - [Lab]: the interactive host. Each frame message ticks the scheduler
//     once; the scene arena is drawn onto a braille canvas beside a
//     lipgloss data panel.
//   - [Canvas]: Braille-based pixel canvas for high-fidelity rendering
//   - [Render]: draws a scene arena onto a canvas through a [Viewport]
//   - Theme selection with 6 built-in color schemes
//
// # Key Bindings
//
//	Tab     - Next experiment
//	Up/Down - Select parameter
//	Lt/Rt   - Adjust parameter by one slider step
//	Space   - Primary action (launch, start/pause, power)
//	R       - Reset
//	C       - Keep the current shot for comparison
//	P       - Next preset
//	G       - Next challenge
//	T       - Cycle color themes
//	?       - Show help overlay
package viz
