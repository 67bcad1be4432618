package main

import (
	"fmt"
	"image"

	draw9 "9fans.net/go/draw"
)

// memRecord is a Record backed by a map.
type memRecord struct {
	fields  map[string]any
	expired bool
}

func newRecord(kv ...any) *memRecord {
	r := &memRecord{fields: make(map[string]any)}
	for i := 0; i+1 < len(kv); i += 2 {
		r.fields[kv[i].(string)] = kv[i+1]
	}
	return r
}

func (r *memRecord) Contains(key string) bool {
	_, ok := r.fields[key]
	return ok
}

func (r *memRecord) Value(key string) any { return r.fields[key] }

func (r *memRecord) Expired() bool { return r.expired }

// activation is an Activated notification.
type activation struct {
	view     *ContentView
	userData int
}

// mouseNote is a Mouse notification.
type mouseNote struct {
	press, release image.Point
}

// keyNote is a KeyReleased notification.
type keyNote struct {
	view *ContentView
	key  KeyEvent
}

// recorder plays host, refresh queue and listener for tiles.
type recorder struct {
	updates     []*ContentView
	repaints    []*ContentView
	enqueued    []refreshRequest
	activations []activation
	mice        []mouseNote
	keys        []keyNote
}

func (r *recorder) Update(v *ContentView)  { r.updates = append(r.updates, v) }
func (r *recorder) Repaint(v *ContentView) { r.repaints = append(r.repaints, v) }

func (r *recorder) Enqueue(id WidgetID, q Quality) {
	r.enqueued = append(r.enqueued, refreshRequest{id, q})
}

func (r *recorder) Activated(v *ContentView, userData int) {
	r.activations = append(r.activations, activation{v, userData})
}

func (r *recorder) Mouse(press, release image.Point) {
	r.mice = append(r.mice, mouseNote{press, release})
}

func (r *recorder) KeyReleased(v *ContentView, k KeyEvent) {
	r.keys = append(r.keys, keyNote{v, k})
}

func (r *recorder) notifications() int {
	return len(r.activations) + len(r.mice) + len(r.keys)
}

// paintOp is a recorded Painter call.
type paintOp struct {
	kind  string
	rect  image.Rectangle
	color draw9.Color
	text  string
	size  int
	width int
	sp    image.Point
}

func (op paintOp) String() string {
	return fmt.Sprintf("%s %v %08x %q", op.kind, op.rect, uint32(op.color), op.text)
}

// opsPainter records painting.
type opsPainter struct {
	ops []paintOp
}

func (p *opsPainter) FillRect(r image.Rectangle, c draw9.Color) {
	p.ops = append(p.ops, paintOp{kind: "fill", rect: r, color: c})
}

func (p *opsPainter) StrokeRoundRect(r image.Rectangle, radius, width int, c draw9.Color) {
	p.ops = append(p.ops, paintOp{kind: "stroke", rect: r, color: c, width: width})
}

func (p *opsPainter) DrawImage(r image.Rectangle, img Thumbnail, sp image.Point) {
	p.ops = append(p.ops, paintOp{kind: "image", rect: r, sp: sp})
}

func (p *opsPainter) DrawText(r image.Rectangle, s string, size int, c draw9.Color) {
	p.ops = append(p.ops, paintOp{kind: "text", rect: r, color: c, text: s, size: size})
}

func (p *opsPainter) kinds() []string {
	var k []string
	for _, op := range p.ops {
		k = append(k, op.kind)
	}
	return k
}

const (
	testBackground    draw9.Color = 0xFFFFFFFF
	testHighlight     draw9.Color = 0x333333FF
	testBorder        draw9.Color = 0x000000FF
	testText          draw9.Color = 0x111111FF
	testTextHighlight draw9.Color = 0xEEEEEEFF
)

func testTheme() *Theme {
	return &Theme{
		Background:    testBackground,
		Highlight:     testHighlight,
		Border:        testBorder,
		Text:          testText,
		TextHighlight: testTextHighlight,
		Radius:        8,
		CoverMargin:   8,
		CoverWidth:    100,
		FontSize:      func() int { return 14 },
	}
}

// newTestTile returns a tile at (10,10)-(410,150) with pen width 3.
func newTestTile(checkBox bool) (*ContentView, *recorder) {
	rec := &recorder{}
	env := TileEnv{Host: rec, Refresh: rec, Listener: rec, Theme: testTheme(), PenWidth: 3}
	var v *ContentView
	if checkBox {
		v = NewCheckBoxView(env).ContentView
	} else {
		v = NewContentView(env)
	}
	v.SetRect(image.Rect(10, 10, 410, 150))
	rec.updates = nil
	return v, rec
}

func down(p image.Point) PointerEvent { return PointerEvent{Kind: PointerDown, Global: p} }
func up(p image.Point) PointerEvent   { return PointerEvent{Kind: PointerUp, Global: p} }
func move(p image.Point) PointerEvent { return PointerEvent{Kind: PointerMove, Global: p} }
