package main

import "image"

// View receives input from mouse, keyboard and paints on screen.
// Views stack up: a view may return another view to show on top of it.
type View interface {
	// Connect connects the view with the display. Used for initialization.
	Connect(dctl *DisplayControl)

	// Handle runs the event loop of the view until it exits or
	// returns a View to push.
	Handle() View

	// Attach should be called to reattach to display after a resize
	// or when the view is uncovered.
	Attach(image.Rectangle)

	// Free releases the view resources, like loaded covers.
	Free()
}
