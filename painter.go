package main

import (
	"fmt"
	"image"
	"log"

	draw9 "9fans.net/go/draw"
)

// Painter provides the drawing primitives used to paint tiles.
type Painter interface {
	// FillRect fills r with c.
	FillRect(r image.Rectangle, c draw9.Color)
	// StrokeRoundRect strokes a rounded rectangle of the given width
	// that stays inside r.
	StrokeRoundRect(r image.Rectangle, radius, width int, c draw9.Color)
	// DrawImage draws the part of img that starts at offset sp from its
	// top left corner into r.
	DrawImage(r image.Rectangle, img Thumbnail, sp image.Point)
	// DrawText draws s centered in r at the given point size.
	DrawText(r image.Rectangle, s string, size int, c draw9.Color)
}

// drawPainter paints on a 9fans draw image.
type drawPainter struct {
	display     *draw9.Display
	dst         *draw9.Image
	fontPattern string
	colors      map[draw9.Color]*draw9.Image
	fonts       map[int]*draw9.Font
}

func newDrawPainter(display *draw9.Display, fontPattern string) *drawPainter {
	return &drawPainter{
		display:     display,
		dst:         display.Image,
		fontPattern: fontPattern,
		colors:      make(map[draw9.Color]*draw9.Image),
		fonts:       make(map[int]*draw9.Font),
	}
}

// attach should be called after the display is reattached.
func (p *drawPainter) attach() {
	p.dst = p.display.Image
}

func (p *drawPainter) color(c draw9.Color) *draw9.Image {
	img, ok := p.colors[c]
	if !ok {
		img = p.display.AllocImageMix(c, c)
		p.colors[c] = img
	}
	return img
}

// font returns the font for size. Fonts that cannot be opened fall back
// to the display font, and the failure is remembered.
func (p *drawPainter) font(size int) *draw9.Font {
	if f, ok := p.fonts[size]; ok {
		return f
	}
	f := p.display.Font
	if p.fontPattern != "" {
		name := fmt.Sprintf(p.fontPattern, size)
		if sf, err := p.display.OpenFont(name); err == nil {
			f = sf
		} else {
			log.Printf("painter: font %s: %v", name, err)
		}
	}
	p.fonts[size] = f
	return f
}

func (p *drawPainter) FillRect(r image.Rectangle, c draw9.Color) {
	p.dst.Draw(r, p.color(c), nil, image.Point{})
}

// squareEnd is the square line end of the draw device.
const squareEnd = 0

// strokePass is one pixel wide rounded outline. Its Max is inclusive.
type strokePass struct {
	r      image.Rectangle
	radius int
}

// strokePasses returns the outlines, outermost first, that make up a
// stroke of width pixels inside r.
func strokePasses(r image.Rectangle, radius, width int) []strokePass {
	var passes []strokePass
	for i := range width {
		if 2*i >= r.Dx() || 2*i >= r.Dy() {
			break
		}
		in := r.Inset(i)
		in.Max = in.Max.Sub(image.Pt(1, 1))
		passes = append(passes, strokePass{in, max(0, min(radius-i, in.Dx()/2, in.Dy()/2))})
	}
	return passes
}

func (p *drawPainter) StrokeRoundRect(r image.Rectangle, radius, width int, c draw9.Color) {
	if width <= 0 {
		return
	}
	src := p.color(c)
	zp := image.Point{}

	if min(radius, r.Dx()/2, r.Dy()/2) <= 0 {
		p.dst.Border(r, width, src, zp)
		return
	}
	for _, ps := range strokePasses(r, radius, width) {
		in, rad := ps.r, ps.radius
		tl := in.Min.Add(image.Pt(rad, rad))
		tr := image.Pt(in.Max.X-rad, in.Min.Y+rad)
		bl := image.Pt(in.Min.X+rad, in.Max.Y-rad)
		br := in.Max.Sub(image.Pt(rad, rad))

		p.dst.Line(image.Pt(tl.X, in.Min.Y), image.Pt(tr.X, in.Min.Y), squareEnd, squareEnd, 0, src, zp)
		p.dst.Line(image.Pt(bl.X, in.Max.Y), image.Pt(br.X, in.Max.Y), squareEnd, squareEnd, 0, src, zp)
		p.dst.Line(image.Pt(in.Min.X, tl.Y), image.Pt(in.Min.X, bl.Y), squareEnd, squareEnd, 0, src, zp)
		p.dst.Line(image.Pt(in.Max.X, tr.Y), image.Pt(in.Max.X, br.Y), squareEnd, squareEnd, 0, src, zp)
		if rad == 0 {
			continue
		}
		p.dst.Arc(tl, rad, rad, 0, src, zp, 90, 90)
		p.dst.Arc(tr, rad, rad, 0, src, zp, 0, 90)
		p.dst.Arc(bl, rad, rad, 0, src, zp, 180, 90)
		p.dst.Arc(br, rad, rad, 0, src, zp, 270, 90)
	}
}

func (p *drawPainter) DrawImage(r image.Rectangle, img Thumbnail, sp image.Point) {
	src, ok := img.(*draw9.Image)
	if !ok {
		log.Printf("painter: cannot draw %T", img)
		return
	}
	p.dst.Draw(r, src, nil, src.Bounds().Min.Add(sp))
}

func (p *drawPainter) DrawText(r image.Rectangle, s string, size int, c draw9.Color) {
	f := p.font(size)
	s = elide(s, r.Dx(), f.StringWidth)
	w := f.StringWidth(s)
	at := image.Pt(r.Min.X+(r.Dx()-w)/2, r.Min.Y+(r.Dy()-f.Height)/2)
	p.dst.String(at, p.color(c), image.Point{}, f, s)
}

// elide shortens s with a trailing ellipsis until width(s) fits in w.
func elide(s string, w int, width func(string) int) string {
	if width(s) <= w {
		return s
	}
	const ellipsis = "…"
	runes := []rune(s)
	for n := len(runes) - 1; n > 0; n-- {
		if t := string(runes[:n]) + ellipsis; width(t) <= w {
			return t
		}
	}
	return ellipsis
}
