package main

import "image"

// Grid lays out the largest rows x cols arrangement of tiles of tileSize,
// separated by padding, that fits in area. Slots are numbered row by row.
type Grid struct {
	area     image.Rectangle
	tileSize image.Point
	padding  int
}

// Offset tracks which items of an implicit slice a grid shows.
// A grid with n slots shows items [pos, pos+n).
type Offset struct {
	grid  *Grid
	pos   int
	limit int
}

// NewGrid returns a new grid.
func NewGrid(area image.Rectangle, tileSize image.Point, padding int) *Grid {
	return &Grid{
		area:     area,
		tileSize: tileSize,
		padding:  padding,
	}
}

// Attach should be called when the grid area changes.
func (g *Grid) Attach(r image.Rectangle) {
	g.area = r
}

// Dimensions returns the grid dimensions, rows x columns.
func (g *Grid) Dimensions() (rows int, cols int) {
	rows = max(0, (g.area.Dy()-g.padding)/(g.tileSize.Y+g.padding))
	cols = max(0, (g.area.Dx()-g.padding)/(g.tileSize.X+g.padding))
	return
}

// Area returns the number of slots, rows * columns.
func (g *Grid) Area() int {
	rows, cols := g.Dimensions()
	return rows * cols
}

// PaintableArea is the part of the grid area covered by slots, centered.
func (g *Grid) PaintableArea() image.Rectangle {
	rows, cols := g.Dimensions()
	ir := image.Rect(0, 0,
		cols*(g.tileSize.X+g.padding)+g.padding, rows*(g.tileSize.Y+g.padding)+g.padding)
	return center(g.area, ir)
}

// SlotRect returns the tile rectangle of slot i.
func (g *Grid) SlotRect(i int) image.Rectangle {
	_, cols := g.Dimensions()
	if cols == 0 || i < 0 || i >= g.Area() {
		return image.Rectangle{}
	}
	step := g.tileSize.Add(image.Pt(g.padding, g.padding))
	at := g.PaintableArea().Min.Add(image.Pt(g.padding, g.padding))
	at = at.Add(image.Pt(i%cols*step.X, i/cols*step.Y))
	return image.Rectangle{at, at.Add(g.tileSize)}
}

// Slot returns the slot whose tile contains p.
func (g *Grid) Slot(p image.Point) (int, bool) {
	for i := range g.Area() {
		if p.In(g.SlotRect(i)) {
			return i, true
		}
	}
	return -1, false
}

// NewOffset returns a new offset with limit and grid.
func NewOffset(grid *Grid, limit int) *Offset {
	return &Offset{grid: grid, limit: limit}
}

// Visible returns the visible items for the current grid page.
func (o *Offset) Visible() (int, int) {
	return o.pos, min(o.limit, o.pos+o.grid.Area())
}

// CurrentPage return the current page.
func (o *Offset) CurrentPage() int {
	return o.PageOfItem(o.pos)
}

// NumPages returns the number of grid pages.
func (o *Offset) NumPages() int {
	if o.grid.Area() == 0 {
		return 0
	}
	return intCeil(o.limit, o.grid.Area())
}

// PageOfItem returns the screen page of the item.
func (o *Offset) PageOfItem(i int) int {
	if 0 <= i && i < o.limit && o.grid.Area() > 0 {
		return i / o.grid.Area()
	}
	return -1
}

// MoveUpRow scrolls the page one grid row up.
func (o *Offset) MoveUpRow() {
	_, cols := o.grid.Dimensions()
	o.pos = max(0, o.pos-cols)
}

// MoveDownRow scrolls the page one grid row down.
func (o *Offset) MoveDownRow() {
	rows, cols := o.grid.Dimensions()
	// allow one empty row at the end of the books
	o.pos = min(o.pos+cols, max(0, o.limit-(rows*cols)+cols))
}

// GotoPage moves view to page.
func (o *Offset) GotoPage(page int) {
	if 0 <= page && page < o.NumPages() {
		o.pos = page * o.grid.Area()
	}
}

// At returns the item shown in slot i.
func (o *Offset) At(slot int) (int, bool) {
	if slot < 0 || slot >= o.grid.Area() {
		return -1, false
	}
	item := o.pos + slot
	return item, item < o.limit
}
