package main

import (
	"image"
	"strconv"
	"strings"
)

// center centers sr inside dr. If sr does not fit, dr is returned.
func center(dr, sr image.Rectangle) image.Rectangle {
	d := dr.Size().Sub(sr.Size())
	if d.X < 0 || d.Y < 0 {
		return dr
	}
	return sr.Sub(sr.Min).Add(dr.Min.Add(d.Div(2)))
}

// bestFit scales sr down to fit in dr, keeping the aspect ratio, and
// centers it. Smaller rectangles are not scaled up.
func bestFit(dr, sr image.Rectangle) image.Rectangle {
	return center(dr, image.Rectangle{Max: fitSize(dr.Size(), sr.Size())})
}

// fitSize returns the largest size with the aspect of src that fits in box,
// or src if it already fits.
func fitSize(box, src image.Point) image.Point {
	if src.X <= box.X && src.Y <= box.Y {
		return src
	}
	scale := max(float32(src.Y)/float32(box.Y), float32(src.X)/float32(box.X))
	return image.Pt(int(float32(src.X)/scale), int(float32(src.Y)/scale))
}

// intCeil returns the ceiling of a/b
func intCeil(a, b int) int {
	n := a / b
	if a%b > 0 {
		n++
	}
	return n
}

// stringToPoint parses sizes written as WxH.
func stringToPoint(s string) (image.Point, bool) {
	ws, hs, ok := strings.Cut(s, "x")
	if !ok {
		return image.Point{}, false
	}
	x, err := strconv.Atoi(ws)
	if err != nil {
		return image.Point{}, false
	}
	y, err := strconv.Atoi(hs)
	if err != nil {
		return image.Point{}, false
	}
	return image.Pt(x, y), true
}
