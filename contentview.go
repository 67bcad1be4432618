package main

import (
	"image"

	draw9 "9fans.net/go/draw"
)

// enterKey confirms the focused tile.
const enterKey = '\n'

// TileHost is the part of the window that paints tiles.
type TileHost interface {
	// Update schedules a paint of v for the end of the current event.
	Update(v *ContentView)
	// Repaint paints v now.
	Repaint(v *ContentView)
}

// TileListener receives the notifications of tiles.
type TileListener interface {
	// Activated is sent when a bound tile is chosen.
	Activated(v *ContentView, userData int)
	// Mouse is sent for a release without a press on the same tile.
	Mouse(press, release image.Point)
	// KeyReleased is sent for keys the tile does not handle.
	KeyReleased(v *ContentView, k KeyEvent)
}

// Theme holds the look of tiles.
type Theme struct {
	Background    draw9.Color
	Highlight     draw9.Color
	Border        draw9.Color
	Text          draw9.Color
	TextHighlight draw9.Color // text over the highlight fill
	Radius        int         // of the focus border corners
	CoverMargin   int         // left of the cover
	CoverWidth    int         // width reserved for the cover
	FontSize      func() int  // point size of titles
}

// TileEnv is what a tile needs from its surroundings.
type TileEnv struct {
	Host     TileHost
	Refresh  Enqueuer
	Listener TileListener
	Theme    *Theme
	PenWidth int
}

// tileStyle paints a tile and reacts to new data.
type tileStyle interface {
	paint(v *ContentView, p Painter)
	dataChanged(v *ContentView)
}

// ContentView is a focusable tile bound to a Record. It turns pointer and
// key input into activations and asks for coalesced screen refreshes.
// All methods must be called from the event loop.
type ContentView struct {
	id       WidgetID
	rect     image.Rectangle
	data     Record
	pressed  bool
	checked  bool
	focused  bool
	penWidth int

	env   TileEnv
	style tileStyle
}

// NewContentView returns an unbound tile in the plain style.
func NewContentView(env TileEnv) *ContentView {
	return newContentView(env, plainStyle{})
}

func newContentView(env TileEnv, style tileStyle) *ContentView {
	return &ContentView{
		id:       newWidgetID(),
		penWidth: env.PenWidth,
		env:      env,
		style:    style,
	}
}

func (v *ContentView) ID() WidgetID { return v.id }

func (v *ContentView) Rect() image.Rectangle { return v.rect }

// SetRect moves the tile. It is the resize notification.
func (v *ContentView) SetRect(r image.Rectangle) {
	if r.Eq(v.rect) {
		return
	}
	v.rect = r
	v.env.Host.Update(v)
}

func (v *ContentView) PenWidth() int { return v.penWidth }

// Data returns the bound record, or nil.
func (v *ContentView) Data() Record {
	if !v.bound() {
		return nil
	}
	return v.data
}

func (v *ContentView) bound() bool {
	if v.data == nil {
		return false
	}
	if e, ok := v.data.(expirer); ok && e.Expired() {
		return false
	}
	return true
}

func (v *ContentView) IsChecked() bool { return v.checked }

func (v *ContentView) SetChecked(checked bool) {
	if v.checked == checked {
		return
	}
	v.checked = checked
	v.env.Host.Update(v)
}

func (v *ContentView) IsPressed() bool { return v.pressed }

func (v *ContentView) SetPressed(pressed bool) {
	v.pressed = pressed
}

func (v *ContentView) IsFocused() bool { return v.focused }

// UpdateData binds r. It returns false, doing nothing, if r is already
// bound and force is false. Otherwise the tile is repainted at once.
func (v *ContentView) UpdateData(r Record, force bool) bool {
	if r == v.data && !force {
		return false
	}
	v.data = r
	v.style.dataChanged(v)
	v.env.Host.Repaint(v)
	return true
}

// Activate sends the Activated notification if the tile is bound.
func (v *ContentView) Activate(userData int) {
	if !v.bound() {
		return
	}
	v.env.Listener.Activated(v, userData)
}

// settle enforces that only a bound tile may stay pressed.
func (v *ContentView) settle() bool {
	if !v.bound() {
		v.pressed = false
		return false
	}
	return true
}

// changed schedules a repaint and a fast screen refresh.
func (v *ContentView) changed() {
	v.env.Host.Update(v)
	v.env.Refresh.Enqueue(v.id, QualityFast)
}

// PointerDown presses a bound tile.
func (v *ContentView) PointerDown(s *InputSession, e PointerEvent) {
	if !v.settle() {
		return
	}
	s.RecordPress(e.Global)
	v.pressed = true
	v.changed()
}

// PointerUp activates a pressed tile. A release on a tile that is not
// pressed is reported with the Mouse notification.
func (v *ContentView) PointerUp(s *InputSession, e PointerEvent) {
	if !v.settle() {
		return
	}
	if v.pressed {
		v.Activate(0)
	} else {
		v.env.Listener.Mouse(s.LastPress(), e.Global)
	}
	v.pressed = false
	if v.bound() {
		v.changed()
	}
}

// PointerMove cancels the press when the pointer leaves the tile.
func (v *ContentView) PointerMove(s *InputSession, e PointerEvent) {
	if !v.settle() || !v.pressed {
		return
	}
	if e.Global.In(v.rect) {
		return
	}
	v.pressed = false
	v.changed()
}

// KeyRelease activates the tile on Enter. Enter is consumed even
// without data. Other keys are forwarded.
func (v *ContentView) KeyRelease(k KeyEvent) Propagation {
	v.settle()
	if k.Rune == enterKey {
		v.Activate(0)
		return Consumed
	}
	v.env.Listener.KeyReleased(v, k)
	return Forward
}

func (v *ContentView) FocusIn() {
	v.focused = true
	v.changed()
}

func (v *ContentView) FocusOut() {
	v.focused = false
	v.changed()
}

// Paint draws the tile in its style.
func (v *ContentView) Paint(p Painter) {
	v.style.paint(v, p)
}

// borderRect is where the focus border is stroked. The trailing edges
// are pulled in by the pen width so the stroke is not clipped.
func (v *ContentView) borderRect() image.Rectangle {
	r := v.rect
	r.Max = r.Max.Sub(image.Pt(v.penWidth, v.penWidth))
	return r
}

func (v *ContentView) paintFocus(p Painter) {
	if v.focused {
		p.StrokeRoundRect(v.borderRect(), v.env.Theme.Radius, v.penWidth, v.env.Theme.Border)
	}
}

// plainStyle draws a blank tile with a focus border. Pressing has no
// visual feedback in this style.
type plainStyle struct{}

func (plainStyle) paint(v *ContentView, p Painter) {
	p.FillRect(v.rect, v.env.Theme.Background)
	if !v.bound() {
		return
	}
	v.paintFocus(p)
}

func (plainStyle) dataChanged(*ContentView) {}
