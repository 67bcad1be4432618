package main

import (
	"image"
	"log"
	"slices"

	draw9 "9fans.net/go/draw"
)

// Menu items of the button 2 menu.
const (
	itemMark     = "mark"
	itemOpen     = "open"
	itemCover    = "cover"
	itemPrevPage = "prev page"
	itemNextPage = "next page"
	itemMarked   = "marked"
	itemPrevMark = "prev mark"
	itemNextMark = "next mark"
	itemBack     = "back"
	itemExit     = "exit"
)

// Shelf shows books as a grid of CheckBoxView tiles. One screen of tiles
// is a page. It scrolls pages, marks books and opens them. Tiles are
// rebound to the visible books after every scroll.
type Shelf struct {
	name            string
	books           []*Book
	cache           CachedSlice[*BookImage]
	offset          *Offset
	pageSize        int
	pagesWithMarked []int // the pages with marked books. Used for moving up/down.
	marked          bool  // the shelf shows the marked books

	theme    *Theme
	penWidth int
	tiles    []*CheckBoxView
	focus    int // slot of the focused tile or -1
	dirty    []*ContentView
	pending  []func() // work deferred to the end of the event
	session  InputSession
	painter  Painter
	refresh  *RefreshQueue

	dctl *DisplayControl
}

// NewShelf returns a Shelf for books laid out on grid.
func NewShelf(name string, books []*Book, grid *Grid, pageSize int, theme *Theme, penWidth int) *Shelf {
	if pageSize == 0 {
		pageSize = grid.Area()
	}
	return &Shelf{
		name:     name,
		books:    books,
		offset:   NewOffset(grid, len(books)),
		pageSize: pageSize,
		theme:    theme,
		penWidth: penWidth,
		focus:    -1,
	}
}

func (sh *Shelf) Connect(dctl *DisplayControl) {
	sh.dctl = dctl
	if sh.cache != nil {
		sh.cache.Free()
	}
	coverBox := image.Rect(0, 0, sh.theme.CoverWidth, sh.offset.grid.tileSize.Y-2*sh.theme.CoverMargin)
	images := NewBookImages(sh.books, func(img image.Image) (*draw9.Image, error) {
		return FitFast(dctl.display, img, coverBox)
	})
	sh.wire(NewPagedCache[*BookImage](sh.name, images, sh.pageSize), dctl.painter, dctl.refresh)
}

// wire connects the shelf with its cache, painter and refresh queue.
func (sh *Shelf) wire(cache CachedSlice[*BookImage], p Painter, rq *RefreshQueue) {
	sh.cache = cache
	sh.painter = p
	sh.refresh = rq
	sh.layout()
}

func (sh *Shelf) Attach(r image.Rectangle) {
	if r.Eq(sh.offset.grid.area) {
		return
	}
	sh.offset.grid.Attach(r)
	sh.resetPagesWithMarked()
	sh.layout()
}

func (sh *Shelf) Free() {
	sh.painter = nil
	for _, t := range sh.tiles {
		t.UpdateData(nil, false)
	}
	if sh.cache != nil {
		sh.cache.Free()
	}
}

// layout creates a tile per grid slot and places the tiles.
func (sh *Shelf) layout() {
	n := sh.offset.grid.Area()
	for len(sh.tiles) < n {
		sh.tiles = append(sh.tiles, NewCheckBoxView(TileEnv{
			Host:     sh,
			Refresh:  sh.refresh,
			Listener: sh,
			Theme:    sh.theme,
			PenWidth: sh.penWidth,
		}))
	}
	for _, t := range sh.tiles[n:] {
		t.UpdateData(nil, false)
	}
	sh.tiles = sh.tiles[:n]
	for i, t := range sh.tiles {
		t.SetRect(sh.offset.grid.SlotRect(i))
	}
	if sh.focus >= n {
		sh.focus = -1
	}
	sh.session.SetGrab(nil)
}

// Update schedules a paint of v at the end of the event.
func (sh *Shelf) Update(v *ContentView) {
	if !slices.Contains(sh.dirty, v) {
		sh.dirty = append(sh.dirty, v)
	}
}

// Repaint paints v now.
func (sh *Shelf) Repaint(v *ContentView) {
	if sh.painter != nil {
		v.Paint(sh.painter)
	}
}

// Activated opens the book of the tile.
func (sh *Shelf) Activated(v *ContentView, userData int) {
	if r := v.Data(); r != nil && r.Contains(keyPath) {
		if path, ok := r.Value(keyPath).(string); ok {
			sh.later(func() { openBook(path) })
		}
	}
}

// Mouse turns a long vertical drag into a page turn.
func (sh *Shelf) Mouse(press, release image.Point) {
	dy := release.Y - press.Y
	if *verbose {
		log.Printf("shelf %s: release %v after press %v", sh.name, release, press)
	}
	switch swipe := sh.offset.grid.tileSize.Y; {
	case dy < -swipe:
		sh.later(func() { sh.gotoPage(sh.offset.CurrentPage() + 1) })
	case dy > swipe:
		sh.later(func() { sh.gotoPage(sh.offset.CurrentPage() - 1) })
	}
}

// KeyReleased toggles the mark of a tile with space or m.
func (sh *Shelf) KeyReleased(v *ContentView, k KeyEvent) {
	switch k.Rune {
	case ' ', 'm':
		if slot := sh.slotOf(v); slot >= 0 {
			sh.later(func() { sh.toggleMarked(slot) })
		}
	}
}

func (sh *Shelf) later(fn func()) {
	sh.pending = append(sh.pending, fn)
}

// Handle handles mouse and keyboard actions.
func (sh *Shelf) Handle() View {
	items := []string{itemMark, itemOpen, itemCover, "", itemPrevPage, itemNextPage, ""}
	if sh.marked {
		items = append(items, itemBack)
	} else {
		items = append(items, itemMarked, itemPrevMark, itemNextMark, "", itemExit)
	}
	menu := &draw9.Menu{Item: items}

	dctl := sh.dctl
	sh.showPage()
	sh.finish()
	for {
		var next View
		var exit bool
		select {
		case err := <-dctl.errch:
			log.Printf("display: %v", err)
		case k := <-dctl.kctl.C:
			next, exit = sh.handleKey(k)
		case dctl.mctl.Mouse = <-dctl.mctl.C:
			m := dctl.mctl.Mouse
			if m.Buttons == 2 {
				hit := draw9.MenuHit(2, dctl.mctl, menu, nil)
				if hit >= 0 {
					next, exit = sh.handleMenu(menu.Item[hit], m.Point)
				}
				// the menu swallowed the release
				sh.session.Decode(draw9.Mouse{Point: m.Point})
			} else {
				next = sh.handleMouse(m)
			}
		case <-dctl.mctl.Resize:
			if err := dctl.display.Attach(draw9.RefNone); err != nil {
				log.Fatalf("display: failed to attach: %v", err)
			}
			dctl.painter.attach()
			sh.Attach(dctl.display.Image.Bounds())
			sh.showPage()
		}
		sh.finish()
		if exit {
			return nil
		}
		if next != nil {
			return next
		}
	}
}

// handleKey handles a typed key. It returns a view to push, or exit.
func (sh *Shelf) handleKey(k rune) (View, bool) {
	switch k {
	case 'q', escKey:
		return nil, true
	case 'b':
		return nil, sh.marked
	case leftArrowKey:
		sh.moveFocus(-1)
	case rightArrowKey:
		sh.moveFocus(1)
	case upArrowKey:
		_, cols := sh.offset.grid.Dimensions()
		sh.moveFocus(-cols)
	case downArrowKey:
		_, cols := sh.offset.grid.Dimensions()
		sh.moveFocus(cols)
	case pageUpKey:
		sh.gotoPage(sh.offset.CurrentPage() - 1)
	case pageDownKey:
		sh.gotoPage(sh.offset.CurrentPage() + 1)
	case 'i':
		if sh.focus >= 0 {
			return sh.coverView(sh.focus), false
		}
	default:
		if sh.focus >= 0 {
			sh.tiles[sh.focus].KeyRelease(KeyEvent{Rune: k})
		}
	}
	return nil, false
}

// handleMouse drives the tiles with button 1 and handles the other buttons.
func (sh *Shelf) handleMouse(m draw9.Mouse) View {
	ev := sh.session.Decode(m)
	switch ev.Kind {
	case PointerDown:
		if slot, ok := sh.offset.grid.Slot(m.Point); ok {
			t := sh.tiles[slot]
			if t.Data() != nil {
				sh.setFocus(slot)
				sh.session.SetGrab(t.ContentView)
			}
			t.PointerDown(&sh.session, ev)
		}
		return nil
	case PointerMove:
		if t := sh.session.Grab(); t != nil {
			t.PointerMove(&sh.session, ev)
		}
		return nil
	case PointerUp:
		t := sh.session.Release()
		if t == nil {
			if slot, ok := sh.offset.grid.Slot(m.Point); ok {
				t = sh.tiles[slot].ContentView
			}
		}
		if t != nil {
			t.PointerUp(&sh.session, ev)
		}
		return nil
	}

	switch m.Buttons {
	case 4: // mark book
		if slot, ok := sh.offset.grid.Slot(m.Point); ok {
			sh.toggleMarked(slot)
		}
	case scrollWheelUp:
		sh.scroll(sh.offset.MoveUpRow)
	case scrollWheelDown:
		sh.scroll(sh.offset.MoveDownRow)
	}
	return nil
}

func (sh *Shelf) handleMenu(item string, at image.Point) (View, bool) {
	slot, onTile := sh.offset.grid.Slot(at)
	switch item {
	case itemMark:
		if onTile {
			sh.toggleMarked(slot)
		}
	case itemOpen:
		if onTile {
			sh.tiles[slot].Activate(0)
		}
	case itemCover:
		if onTile {
			return sh.coverView(slot), false
		}
	case itemPrevPage:
		sh.gotoPage(sh.offset.CurrentPage() - 1)
	case itemNextPage:
		sh.gotoPage(sh.offset.CurrentPage() + 1)
	case itemMarked:
		if marked := sh.collectMarkedBooks(); len(marked) > 0 {
			return NewMarkedShelf(marked, sh.offset.grid, sh.offset.grid.Area(), sh.theme, sh.penWidth), false
		}
	case itemPrevMark:
		sh.moveUpToNextPageWithMarked()
	case itemNextMark:
		sh.moveDownToNextPageWithMarked()
	case itemBack, itemExit:
		return nil, true
	}
	return nil, false
}

func (sh *Shelf) coverView(slot int) View {
	if i, ok := sh.offset.At(slot); ok {
		return NewCoverView(sh.books, i, sh.offset.grid.area)
	}
	return nil
}

// finish runs the deferred work, paints the scheduled tiles and
// flushes the refresh queue.
func (sh *Shelf) finish() {
	for len(sh.pending) > 0 {
		fn := sh.pending[0]
		sh.pending = sh.pending[1:]
		fn()
	}
	for _, v := range sh.dirty {
		sh.Repaint(v)
	}
	sh.dirty = sh.dirty[0:0]
	if err := sh.refresh.Flush(); err != nil {
		log.Printf("display: flush: %v", err)
	}
}

// showPage clears the grid, binds the visible books to the tiles and
// asks for a full refresh.
func (sh *Shelf) showPage() {
	if sh.painter != nil {
		sh.painter.FillRect(sh.offset.grid.area, sh.theme.Background)
	}
	from, to := sh.offset.Visible()
	var images []*BookImage
	if from < to {
		images = slices.Collect(Get(sh.cache, from, to))
	}
	for slot, t := range sh.tiles {
		var r Record
		if slot < len(images) {
			r = images[slot]
		}
		if !t.UpdateData(r, false) {
			sh.Update(t.ContentView)
		}
		t.SetChecked(r != nil && images[slot].marked)
		sh.refresh.Enqueue(t.ID(), QualityFull)
	}
	if sh.focus >= 0 && sh.tiles[sh.focus].Data() == nil {
		sh.setFocus(-1)
	}
}

func (sh *Shelf) gotoPage(page int) {
	if page == sh.offset.CurrentPage() {
		return
	}
	sh.offset.GotoPage(page)
	sh.showPage()
}

func (sh *Shelf) scroll(move func()) {
	pos := sh.offset.pos
	move()
	if sh.offset.pos != pos {
		sh.showPage()
	}
}

// setFocus moves the focus to slot, or nowhere for -1.
func (sh *Shelf) setFocus(slot int) {
	if slot == sh.focus {
		return
	}
	if sh.focus >= 0 {
		sh.tiles[sh.focus].FocusOut()
	}
	sh.focus = slot
	if slot >= 0 {
		sh.tiles[slot].FocusIn()
	}
}

// moveFocus moves the focus by delta slots, scrolling a row at the edges.
func (sh *Shelf) moveFocus(delta int) {
	if len(sh.tiles) == 0 {
		return
	}
	if sh.focus < 0 {
		sh.setFocus(0)
		return
	}
	_, cols := sh.offset.grid.Dimensions()
	target := sh.focus + delta
	pos := sh.offset.pos
	switch {
	case target < 0:
		sh.scroll(sh.offset.MoveUpRow)
		if sh.offset.pos != pos {
			target += cols
		}
	case target >= len(sh.tiles):
		sh.scroll(sh.offset.MoveDownRow)
		if sh.offset.pos != pos {
			target -= cols
		}
	}
	target = max(0, min(target, len(sh.tiles)-1))
	if _, ok := sh.offset.At(target); !ok {
		return
	}
	sh.setFocus(target)
}

func (sh *Shelf) slotOf(v *ContentView) int {
	return slices.IndexFunc(sh.tiles, func(t *CheckBoxView) bool {
		return t.ContentView == v
	})
}

func (sh *Shelf) toggleMarked(slot int) {
	i, ok := sh.offset.At(slot)
	if !ok {
		return
	}
	b := sh.books[i]
	b.ToggleMarked()
	t := sh.tiles[slot]
	t.SetChecked(b.marked)
	sh.refresh.Enqueue(t.ID(), QualityFast)
	sh.resetPagesWithMarked()
}

// moveUpToNextPageWithMarked moves up to the next page with a marked book.
func (sh *Shelf) moveUpToNextPageWithMarked() {
	i, _ := slices.BinarySearch(sh.pagesWithMarked, sh.offset.CurrentPage())
	if i > 0 {
		sh.gotoPage(sh.pagesWithMarked[i-1])
	}
}

// moveDownToNextPageWithMarked moves down to the next page with a marked book.
func (sh *Shelf) moveDownToNextPageWithMarked() {
	i, found := slices.BinarySearch(sh.pagesWithMarked, sh.offset.CurrentPage())
	if found {
		i++
	}
	if i < len(sh.pagesWithMarked) {
		sh.gotoPage(sh.pagesWithMarked[i])
	}
}

func (sh *Shelf) resetPagesWithMarked() {
	sh.pagesWithMarked = sh.pagesWithMarked[0:0]
	for i, b := range sh.books {
		if b.marked {
			if p := sh.offset.PageOfItem(i); !slices.Contains(sh.pagesWithMarked, p) {
				sh.pagesWithMarked = append(sh.pagesWithMarked, p)
			}
		}
	}
}

func (sh *Shelf) collectMarkedBooks() []*Book {
	var books []*Book
	for _, b := range sh.books {
		if b.marked {
			books = append(books, b)
		}
	}
	return books
}
