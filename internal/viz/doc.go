// Package viz is the terminal render context: papers are drawn on a braille
// canvas and shot with the mouse.
//
// # Key Bindings
//
//	Space - Show/hide the confetti layer
//	A     - Autofire a burst (only when no papers are live)
//	F     - Toggle the FPS readout
//	I     - Invert colors
//	Q     - Quit
//
// Drag with the left mouse button and release to fire. The burst flies
// opposite to the drag, like a slingshot.
package viz
