package main

import "image"

// Keys of the record fields painted by the tiles.
const (
	keyCover = "cover"
	keyTitle = "title"
)

// Record is the data a tile renders. Tiles only read it, with a
// Contains check before each Value. Implementations must be comparable,
// pointers in practice, since tiles compare records by identity.
//
// A tile borrows its record: the owner keeps it alive for as long as it
// stays bound, and rebinds the tile (UpdateData) before releasing it.
type Record interface {
	Contains(key string) bool
	Value(key string) any
}

// expirer is implemented by records that can be released by their owner
// while a tile still refers to them. An expired record counts as unbound.
type expirer interface {
	Expired() bool
}

// Thumbnail is a drawable image value stored under keyCover.
type Thumbnail interface {
	Bounds() image.Rectangle
}
