package main

import (
	"image"

	draw9 "9fans.net/go/draw"
)

// PointerKind is the kind of a decoded pointer event.
type PointerKind int

const (
	PointerNone PointerKind = iota
	PointerDown
	PointerUp
	PointerMove
)

// PointerEvent is a pointer event in screen coordinates.
type PointerEvent struct {
	Kind   PointerKind
	Global image.Point
}

// KeyEvent is a released key.
type KeyEvent struct {
	Rune rune
}

// Propagation tells the dispatcher whether an input handler used the event.
type Propagation int

const (
	// Forward leaves the event to the enclosing view.
	Forward Propagation = iota
	// Consumed stops the event.
	Consumed
)

// InputSession is the input state of one event loop. Plan 9 mouse
// devices report samples, not transitions, so the session remembers
// the previous buttons to derive pointer down, up and move. It also
// keeps the last press point and the tile that grabbed the pointer.
type InputSession struct {
	lastPress image.Point
	buttons   int
	at        image.Point
	grab      *ContentView
}

// LastPress returns the screen point of the latest pointer-down.
func (s *InputSession) LastPress() image.Point {
	return s.lastPress
}

// RecordPress stores p as the latest press point.
func (s *InputSession) RecordPress(p image.Point) {
	s.lastPress = p
}

// Decode turns a mouse sample into a button 1 pointer event.
// Other buttons are reported as PointerNone and handled by the views.
func (s *InputSession) Decode(m draw9.Mouse) PointerEvent {
	prev, prevAt := s.buttons, s.at
	s.buttons, s.at = m.Buttons, m.Point

	ev := PointerEvent{Global: m.Point}
	switch {
	case prev&1 == 0 && m.Buttons&1 != 0:
		ev.Kind = PointerDown
		s.RecordPress(m.Point)
	case prev&1 != 0 && m.Buttons&1 == 0:
		ev.Kind = PointerUp
	case m.Buttons&1 != 0 && !m.Point.Eq(prevAt):
		ev.Kind = PointerMove
	}
	return ev
}

// Grab returns the tile that received the current press, if any.
func (s *InputSession) Grab() *ContentView {
	return s.grab
}

// SetGrab routes the following moves and the release to v.
func (s *InputSession) SetGrab(v *ContentView) {
	s.grab = v
}

// Release drops the pointer grab and returns the tile that had it.
func (s *InputSession) Release() *ContentView {
	v := s.grab
	s.grab = nil
	return v
}
