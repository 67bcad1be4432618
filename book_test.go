package main

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	draw9 "9fans.net/go/draw"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTitleOf(t *testing.T) {
	assert.Equal(t, "The Great Gatsby", titleOf("The_Great.Gatsby"))
	assert.Equal(t, "dune", titleOf("dune"))
	assert.Equal(t, "__", titleOf("__"))
}

func TestNewBookFindsCover(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "moby_dick.epub"), nil)
	touch(t, filepath.Join(dir, "moby_dick.png"), nil)
	touch(t, filepath.Join(dir, "cover.jpg"), nil)
	touch(t, filepath.Join(dir, "ulysses.PDF"), nil)

	b := NewBook(filepath.Join(dir, "moby_dick.epub"))
	assert.Equal(t, "moby dick", b.title)
	assert.Equal(t, "epub", b.format)
	assert.Equal(t, filepath.Join(dir, "moby_dick.png"), b.cover)

	b = NewBook(filepath.Join(dir, "ulysses.PDF"))
	assert.Equal(t, "pdf", b.format)
	assert.Equal(t, filepath.Join(dir, "cover.jpg"), b.cover, "falls back to the folder cover")

	assert.Empty(t, NewBook(filepath.Join(t.TempDir(), "x.pdf")).cover)
}

func TestBookToggleMarked(t *testing.T) {
	b := NewBook("/books/x.pdf")
	b.ToggleMarked()
	assert.True(t, b.marked)
	b.ToggleMarked()
	assert.False(t, b.marked)
}

func TestBareBookRecord(t *testing.T) {
	b := NewBook(filepath.Join(t.TempDir(), "war_and_peace.pdf"))
	bi := b.NewBookImage(nil)

	require.NoError(t, bi.Load())
	require.NoError(t, bi.Load())
	assert.True(t, bi.bare)

	assert.True(t, bi.Contains(keyTitle))
	assert.Equal(t, "war and peace", bi.Value(keyTitle))
	assert.True(t, bi.Contains(keyPath))
	assert.Equal(t, b.path, bi.Value(keyPath))
	assert.Equal(t, "pdf", bi.Value(keyFormat))
	assert.False(t, bi.Contains(keyCover))
	assert.Nil(t, bi.Value(keyCover))
	assert.False(t, bi.Contains(keyInfo))
	assert.False(t, bi.Contains("author"))
	assert.Nil(t, bi.Value("author"))

	bi.Unload()
	assert.NoError(t, bi.Load())
	assert.Equal(t, b.path, fmt.Sprint(bi))
}

func TestLoadRejectsUnknownCover(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "notes.txt"), nil)
	touch(t, filepath.Join(dir, "notes.png"), []byte("plain text, not an image"))

	bi := NewBook(filepath.Join(dir, "notes.txt")).NewBookImage(nil)
	assert.ErrorIs(t, bi.Load(), errNotSupportedFormat)
}

func TestLoadPassesCoverToDisplayer(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "atlas.pdf"), nil)
	touch(t, filepath.Join(dir, "atlas.png"), pngBytes(t, 30, 20))

	errNoDisplay := errors.New("no display")
	var got image.Image
	bi := NewBook(filepath.Join(dir, "atlas.pdf")).NewBookImage(func(img image.Image) (*draw9.Image, error) {
		got = img
		return nil, errNoDisplay
	})

	assert.ErrorIs(t, bi.Load(), errNoDisplay)
	require.NotNil(t, got)
	assert.Equal(t, image.Pt(30, 20), got.Bounds().Size())
	assert.False(t, bi.Contains(keyCover))
	assert.False(t, bi.Contains(keyInfo), "png covers carry no exif")
}

func TestLoadGrayscale(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "atlas.pdf"), nil)
	touch(t, filepath.Join(dir, "atlas.png"), pngBytes(t, 4, 4))

	grayCovers = true
	t.Cleanup(func() { grayCovers = false })

	var got image.Image
	bi := NewBook(filepath.Join(dir, "atlas.pdf")).NewBookImage(func(img image.Image) (*draw9.Image, error) {
		got = img
		return nil, errors.New("no display")
	})
	assert.Error(t, bi.Load())
	require.NotNil(t, got)
	r, g, b, _ := got.At(1, 1).RGBA()
	assert.Equal(t, r, g)
	assert.Equal(t, g, b)
}

func TestReadZipCover(t *testing.T) {
	dir := t.TempDir()

	epub := filepath.Join(dir, "book.epub")
	writeZip(t, epub, map[string]string{
		"mimetype":               "application/epub+zip",
		"OEBPS/images/fig1.png":  "figure",
		"OEBPS/images/Cover.jpg": "the cover",
	})
	data, err := readZipCover(epub)
	require.NoError(t, err)
	assert.Equal(t, "the cover", string(data))

	noCover := filepath.Join(dir, "plain.epub")
	writeZip(t, noCover, map[string]string{"OEBPS/images/fig1.png": "figure"})
	_, err = readZipCover(noCover)
	assert.ErrorIs(t, err, errNoCover)

	comic := filepath.Join(dir, "comic.cbz")
	writeZip(t, comic, map[string]string{"001.png": "page one"})
	data, err = readZipCover(comic)
	require.NoError(t, err)
	assert.Equal(t, "page one", string(data))

	_, err = readZipCover(filepath.Join(dir, "missing.epub"))
	assert.Error(t, err)
}

func TestGetExifInfoWithoutExif(t *testing.T) {
	assert.Empty(t, getExifInfo(bytes.NewReader(pngBytes(t, 2, 2))))
}

func TestToPlan9Bitmap(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 1))
	img.Set(0, 0, color.RGBA{1, 2, 3, 4})
	b := toPlan9Bitmap(img).Bytes()

	require.Len(t, b, 60+2*4)
	assert.Equal(t, "   r8g8b8a8 ", string(b[:12]))
	assert.Equal(t, []byte{4, 3, 2, 1}, b[60:64])
}

func touch(t *testing.T, path string, data []byte) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, data, 0o644))
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := range w {
		for y := range h {
			img.Set(x, y, color.RGBA{200, uint8(10 * x), 40, 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func writeZip(t *testing.T, path string, files map[string]string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	zw := zip.NewWriter(f)
	for name, body := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
}
