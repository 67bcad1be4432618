package main

import (
	"fmt"
	"image"
	"log"

	draw9 "9fans.net/go/draw"
)

// CoverView is a View that shows the cover of one book at large scale
// together with its details.
type CoverView struct {
	books      []*Book
	coverCache CachedSlice[*BookImage]
	at         int
	area       image.Rectangle

	dctl *DisplayControl
}

func NewCoverView(books []*Book, at int, r image.Rectangle) *CoverView {
	return &CoverView{
		books: books,
		at:    at,
		area:  r,
	}
}

func (cv *CoverView) resetCache() {
	if cv.coverCache != nil {
		cv.coverCache.Free()
	}
	images := NewBookImages(cv.books, func(img image.Image) (*draw9.Image, error) {
		return FitBest(cv.dctl.display, img, cv.area)
	})
	cv.coverCache = NewPagedCache[*BookImage]("cover", images, 2)
}

func (cv *CoverView) Connect(dctl *DisplayControl) {
	cv.dctl = dctl
	cv.resetCache()
}

func (cv *CoverView) Attach(r image.Rectangle) {
	if r.Eq(cv.area) {
		return
	}

	cv.dctl.showWaitingAndCall(func() {
		cv.dctl.cls()
		cv.area = r
		cv.resetCache()
	})
}

func (cv *CoverView) Free() {
	if cv.coverCache != nil {
		cv.coverCache.Free()
	}
}

func (cv *CoverView) Handle() View {
	bt2menu := &draw9.Menu{
		Item: []string{itemMark, itemOpen, itemBack},
	}

	dctl := cv.dctl
	cv.paint(dctl)
	for {
		select {
		case err := <-dctl.errch:
			log.Printf("display: %v", err)
		case k := <-dctl.kctl.C:
			switch k {
			case 'q', 'b', escKey: // back
				return nil
			case leftArrowKey:
				cv.move(-1)
			case rightArrowKey:
				cv.move(1)
			case 'm':
				cv.toggleMarked()
			case 'p', enterKey:
				cv.open()
			}
		case dctl.mctl.Mouse = <-dctl.mctl.C:
			switch dctl.mctl.Mouse.Buttons {
			case 1: // prev book
				cv.move(-1)
			case 2:
				switch draw9.MenuHit(2, dctl.mctl, bt2menu, nil) {
				case 0:
					cv.toggleMarked()
				case 1:
					cv.open()
				case 2:
					return nil
				}
			case 4: // next book
				cv.move(1)
			}
		case <-dctl.mctl.Resize:
			if err := dctl.display.Attach(draw9.RefNone); err != nil {
				log.Fatalf("display: failed to attach: %v", err)
			}
			dctl.painter.attach()
			cv.Attach(dctl.display.Image.Bounds())
			cv.paint(dctl)
		}
	}
}

func (cv *CoverView) move(delta int) {
	if at := cv.at + delta; 0 <= at && at < len(cv.books) {
		cv.at = at
		cv.paint(cv.dctl)
	}
}

func (cv *CoverView) toggleMarked() {
	cv.books[cv.at].ToggleMarked()
	cv.paint(cv.dctl)
}

func (cv *CoverView) open() {
	openBook(cv.books[cv.at].path)
}

// paint draws the details line, the cover below it and the mark box.
// Covers are large, so every paint is a full refresh.
func (cv *CoverView) paint(dctl *DisplayControl) {
	window := dctl.display.Image
	window.Draw(window.Bounds(), dctl.bgColor, nil, image.Point{})

	var book *BookImage
	var img *draw9.Image
	var err error
	dctl.showWaitingAndCall(func() {
		var ok bool
		if book, ok = cv.coverCache.At(cv.at); ok {
			img, err = book.ForDisplay()
		}
	})
	if err != nil {
		log.Printf("coverView: cover not ready: %v", err)
	}
	if book == nil {
		return
	}

	font := dctl.display.Font
	lines := []string{fmt.Sprintf("%d/%d %s [%s] %s",
		cv.at+1, len(cv.books), book.title, book.format, book.path)}
	if book.Contains(keyInfo) {
		lines = append(lines, book.Value(keyInfo).(string))
	}
	at := cv.area.Min
	for _, s := range lines {
		window.String(at, dctl.fontColor, image.Point{}, font, s)
		at.Y += font.Height
	}

	if img != nil {
		cr := cv.area
		cr.Min.Y = at.Y + font.Height
		window.Draw(bestFit(cr, img.Bounds()), img, nil, img.Bounds().Min)
	}
	if book.marked {
		mr := image.Rect(window.Bounds().Max.X-50, window.Bounds().Min.Y,
			window.Bounds().Max.X, window.Bounds().Min.Y+font.Height)
		window.Draw(mr, dctl.borderColor, nil, image.Point{})
	}

	dctl.refresh.Enqueue(screenID, QualityFull)
	if err := dctl.refresh.Flush(); err != nil {
		log.Printf("display: flush: %v", err)
	}
}
