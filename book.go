package main

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	draw9 "9fans.net/go/draw"
	"github.com/disintegration/imaging"
	"github.com/xor-gate/goexif2/exif"
	"github.com/xor-gate/goexif2/tiff"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// Record keys of a BookImage besides keyCover and keyTitle.
const (
	keyPath   = "path"
	keyFormat = "format"
	keyInfo   = "info"
)

var (
	bookFormats  = []string{".epub", ".pdf", ".djvu", ".mobi", ".azw3", ".cbz", ".fb2", ".txt"}
	coverFormats = []string{".jpg", ".jpeg", ".png", ".gif", ".webp"}
)

var (
	// fastScaler is used to scale tile covers.
	fastScaler xdraw.Scaler = xdraw.BiLinear
	// bestScaler is used to scale covers for the cover view.
	bestScaler xdraw.Scaler = xdraw.CatmullRom
	// grayCovers converts covers to grayscale before scaling.
	grayCovers bool
)

var (
	errNotSupportedFormat = errors.New("not supported format")
	errNoCover            = errors.New("no cover")
)

// Displayer returns the display version of a cover.
type Displayer func(image.Image) (*draw9.Image, error)

// Book is a book file of the library.
type Book struct {
	path   string // path of the book file
	title  string // derived from the file name
	format string // file extension without the dot
	cover  string // path of a cover image next to the book, if any
	marked bool   // true if marked by the user
}

// BookImage is a Book with its cover loaded for display.
// It is the Record bound to tiles.
type BookImage struct {
	*Book
	displayer Displayer

	mu    sync.Mutex
	data  []byte       // the cover file contents
	thumb *draw9.Image // cover for display
	info  string       // a summary of the cover EXIF data if present
	bare  bool         // the book has no cover
}

// NewBook returns a new Book for path and looks for its cover.
func NewBook(path string) *Book {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	return &Book{
		path:   path,
		title:  titleOf(stem),
		format: strings.TrimPrefix(strings.ToLower(ext), "."),
		cover:  findCover(filepath.Dir(path), stem),
	}
}

// titleOf turns a file stem into a title.
func titleOf(stem string) string {
	t := strings.Join(strings.Fields(strings.NewReplacer("_", " ", ".", " ").Replace(stem)), " ")
	if t == "" {
		return stem
	}
	return t
}

// findCover looks for stem.ext and then cover.ext in dir.
func findCover(dir, stem string) string {
	for _, name := range []string{stem, "cover"} {
		for _, ext := range coverFormats {
			p := filepath.Join(dir, name+ext)
			if info, err := os.Stat(p); err == nil && info.Mode().IsRegular() {
				return p
			}
		}
	}
	return ""
}

// ToggleMarked marks/unmarks the book
func (b *Book) ToggleMarked() {
	b.marked = !b.marked
}

// NewBookImage returns a new instance for the cover of b.
func (b *Book) NewBookImage(displayer Displayer) *BookImage {
	return &BookImage{Book: b, displayer: displayer}
}

// NewBookImages is the slice version of Book.NewBookImage.
func NewBookImages(books []*Book, displayer Displayer) []*BookImage {
	var images []*BookImage
	for _, b := range books {
		images = append(images, b.NewBookImage(displayer))
	}
	return images
}

func (bi *BookImage) Contains(key string) bool {
	switch key {
	case keyTitle, keyPath:
		return true
	case keyFormat:
		return bi.format != ""
	case keyCover:
		bi.mu.Lock()
		defer bi.mu.Unlock()
		return bi.thumb != nil
	case keyInfo:
		bi.mu.Lock()
		defer bi.mu.Unlock()
		return bi.info != ""
	}
	return false
}

func (bi *BookImage) Value(key string) any {
	switch key {
	case keyTitle:
		return bi.title
	case keyPath:
		return bi.path
	case keyFormat:
		return bi.format
	case keyCover:
		bi.mu.Lock()
		defer bi.mu.Unlock()
		if bi.thumb == nil {
			return nil
		}
		return bi.thumb
	case keyInfo:
		bi.mu.Lock()
		defer bi.mu.Unlock()
		return bi.info
	}
	return nil
}

// String returns the path of the book.
func (bi *BookImage) String() string {
	return bi.path
}

// ForDisplay loads the cover and returns it.
func (bi *BookImage) ForDisplay() (*draw9.Image, error) {
	if err := bi.Load(); err != nil {
		return nil, err
	}
	bi.mu.Lock()
	defer bi.mu.Unlock()
	return bi.thumb, nil
}

// Load reads and prepares the cover. Books without a cover load fine
// and have no keyCover.
func (bi *BookImage) Load() error {
	bi.mu.Lock()
	defer bi.mu.Unlock()

	if bi.bare {
		return nil
	}
	if bi.data == nil {
		data, err := bi.readCover()
		if errors.Is(err, errNoCover) {
			bi.bare = true
			return nil
		}
		if err != nil {
			return fmt.Errorf("load: %w", err)
		}

		switch ct := http.DetectContentType(data); ct {
		case "image/gif", "image/jpeg", "image/png", "image/webp":
			// supported format
		default:
			return fmt.Errorf("load: cannot handle %s: %w", ct, errNotSupportedFormat)
		}

		bi.info = getExifInfo(bytes.NewReader(data))
		bi.data = data
	}

	if bi.thumb == nil {
		img, _, err := image.Decode(bytes.NewReader(bi.data))
		if err != nil {
			return fmt.Errorf("load: decode cover: %w", err)
		}
		if grayCovers {
			img = imaging.Grayscale(img)
		}
		thumb, err := bi.displayer(img)
		if err != nil {
			return fmt.Errorf("load: display cover: %w", err)
		}
		bi.thumb = thumb
	}

	return nil
}

// Unload frees the cover. To use it again, call Load first.
func (bi *BookImage) Unload() {
	bi.mu.Lock()
	defer bi.mu.Unlock()

	if bi.data == nil {
		return
	}

	bi.data = nil
	bi.info = ""
	if bi.thumb != nil {
		if err := bi.thumb.Free(); err != nil {
			log.Printf("unload: failed to free cover %s: %v", bi.path, err)
		}
		bi.thumb = nil
	}
}

// readCover returns the cover file contents, looking inside EPUBs
// for books without a cover file.
func (bi *BookImage) readCover() ([]byte, error) {
	if bi.cover != "" {
		return os.ReadFile(bi.cover)
	}
	if bi.format == "epub" || bi.format == "cbz" {
		return readZipCover(bi.path)
	}
	return nil, errNoCover
}

// readZipCover returns the first image of the archive whose name contains
// "cover", or for comics the first image.
func readZipCover(path string) ([]byte, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	isImage := func(f *zip.File) bool {
		return slices.Contains(coverFormats, strings.ToLower(filepath.Ext(f.Name)))
	}
	var first *zip.File
	for _, f := range zr.File {
		if !isImage(f) {
			continue
		}
		if first == nil {
			first = f
		}
		if strings.Contains(strings.ToLower(filepath.Base(f.Name)), "cover") {
			return readZipFile(f)
		}
	}
	if first != nil && strings.EqualFold(filepath.Ext(path), ".cbz") {
		return readZipFile(first)
	}
	return nil, errNoCover
}

func readZipFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// FitFast fits img in r using a fast algorithm and an acceptable result.
func FitFast(disp *draw9.Display, img image.Image, r image.Rectangle) (*draw9.Image, error) {
	return fit(disp, img, r, fastScaler)
}

// FitBest fits img in r produces the best result but it is slow.
func FitBest(disp *draw9.Display, img image.Image, r image.Rectangle) (*draw9.Image, error) {
	return fit(disp, img, r, bestScaler)
}

func fit(disp *draw9.Display, img image.Image, r image.Rectangle, scaler xdraw.Scaler) (*draw9.Image, error) {
	dr := image.Rectangle{Max: fitSize(r.Size(), img.Bounds().Size())}
	dimg := image.NewRGBA(dr)
	scaler.Scale(dimg, dr, img, img.Bounds(), xdraw.Src, nil)
	return disp.ReadImage(toPlan9Bitmap(dimg))
}

// toPlan9Bitmap converts an image to the plan9 format for display.
func toPlan9Bitmap(img *image.RGBA) *bytes.Buffer {
	n := 60 + img.Bounds().Dx()*img.Bounds().Dy()*4
	b := bytes.NewBuffer(make([]byte, 0, n))
	fmt.Fprintf(b, "%11s %11d %11d %11d %11d ",
		"r8g8b8a8", 0, 0, img.Bounds().Dx(), img.Bounds().Dy())
	for data := img.Pix; len(data) > 0; data = data[4:] {
		b.WriteByte(data[3])
		b.WriteByte(data[2])
		b.WriteByte(data[1])
		b.WriteByte(data[0])
	}
	return b
}

// getExifInfo returns a one line summary of the exif data of a cover.
func getExifInfo(r tiff.ReadAtReaderSeeker) string {
	ex, err := exif.Decode(r)
	if err != nil {
		return ""
	}

	labels := []struct {
		pat  string
		name exif.FieldName
	}{
		{"Artist: %s", exif.Artist},
		{"Date: %s", exif.DateTime},
		{"Software: %s", exif.Software},
		{"Copyright: %s", exif.Copyright},
	}

	var parts []string
	for _, label := range labels {
		if tag, err := ex.Get(label.name); err == nil {
			s, err := tag.StringVal()
			if err != nil {
				s = tag.String()
			}
			parts = append(parts, fmt.Sprintf(label.pat, strings.TrimSpace(s)))
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return "Cover: " + strings.Join(parts, " ")
}
