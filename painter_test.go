package main

import (
	"image"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestElide(t *testing.T) {
	width := utf8.RuneCountInString

	assert.Equal(t, "Book A", elide("Book A", 6, width))
	assert.Equal(t, "Book…", elide("Book A", 5, width))
	assert.Equal(t, "B…", elide("Book A", 2, width))
	assert.Equal(t, "…", elide("Book A", 1, width))
	assert.Equal(t, "…", elide("Book A", 0, width))
	assert.Equal(t, "Ελλη…", elide("Ελληνικά", 5, width))
}

func TestStrokePassesCoverWidth(t *testing.T) {
	r := image.Rect(10, 10, 110, 60)

	assert.Equal(t, []strokePass{
		{image.Rect(10, 10, 109, 59), 8},
		{image.Rect(11, 11, 108, 58), 7},
		{image.Rect(12, 12, 107, 57), 6},
	}, strokePasses(r, 8, 3))

	// even widths are not rounded down
	assert.Len(t, strokePasses(r, 8, 2), 2)
	assert.Len(t, strokePasses(r, 8, 4), 4)

	passes := strokePasses(r, 1, 3)
	assert.Equal(t, 0, passes[2].radius)
}

func TestStrokePassesSmallRect(t *testing.T) {
	passes := strokePasses(image.Rect(0, 0, 3, 3), 8, 3)
	assert.Equal(t, []strokePass{
		{image.Rect(0, 0, 2, 2), 1},
		{image.Rect(1, 1, 1, 1), 0},
	}, passes)
}
