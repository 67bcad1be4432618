package main

// NewMarkedShelf returns a Shelf that shows the marked books on a copy of
// grid. Its menu has a back item instead of the navigation between marks.
func NewMarkedShelf(books []*Book, grid *Grid, pageSize int, theme *Theme, penWidth int) *Shelf {
	g := *grid
	sh := NewShelf("marked", books, &g, pageSize, theme, penWidth)
	sh.marked = true
	return sh
}
