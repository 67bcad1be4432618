package main

import "image"

// CheckBoxView is a tile that shows a checked state, a cover and a title.
type CheckBoxView struct {
	*ContentView
}

// NewCheckBoxView returns an unbound, unchecked tile.
func NewCheckBoxView(env TileEnv) *CheckBoxView {
	return &CheckBoxView{newContentView(env, checkBoxStyle{})}
}

// checkBoxStyle paints, in order: background, selection fill, focus
// border, cover and title. The title color depends on the selection fill.
type checkBoxStyle struct{}

func (checkBoxStyle) paint(v *ContentView, p Painter) {
	theme := v.env.Theme
	p.FillRect(v.rect, theme.Background)
	if !v.bound() {
		return
	}

	selected := v.pressed || v.checked
	if selected {
		p.FillRect(v.selectionRect(), theme.Highlight)
	}
	v.paintFocus(p)

	if v.data.Contains(keyCover) {
		if th, ok := v.data.Value(keyCover).(Thumbnail); ok && th != nil {
			r, sp := v.coverRect(th)
			p.DrawImage(r, th, sp)
		}
	}

	color := theme.Text
	if selected {
		color = theme.TextHighlight
	}
	if v.data.Contains(keyTitle) {
		if title, ok := v.data.Value(keyTitle).(string); ok {
			p.DrawText(v.titleRect(), title, theme.FontSize(), color)
		}
	}
}

func (checkBoxStyle) dataChanged(v *ContentView) {
	v.env.Host.Update(v)
}

// selectionRect is the highlight area, one pixel further in on the
// trailing edges than the focus border.
func (v *ContentView) selectionRect() image.Rectangle {
	pw := v.penWidth
	return image.Rect(v.rect.Min.X+pw, v.rect.Min.Y+pw,
		v.rect.Max.X-pw-1, v.rect.Max.Y-pw-1)
}

// coverRect places a cover of th's size left aligned and vertically
// centered. It returns the part inside the tile and the offset of that
// part in the cover, so oversized covers lose equal top and bottom bands.
func (v *ContentView) coverRect(th Thumbnail) (image.Rectangle, image.Point) {
	size := th.Bounds().Size()
	at := image.Pt(v.rect.Min.X+v.env.Theme.CoverMargin, v.rect.Min.Y+(v.rect.Dy()-size.Y)/2)
	r := image.Rectangle{at, at.Add(size)}.Intersect(v.rect)
	if r.Empty() {
		return r, image.Point{}
	}
	return r, r.Min.Sub(at)
}

// titleRect is the tile area right of the cover slot.
func (v *ContentView) titleRect() image.Rectangle {
	r := v.rect
	r.Min.X = min(r.Max.X, r.Min.X+2*v.env.Theme.CoverMargin+v.env.Theme.CoverWidth)
	return r
}
