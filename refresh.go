package main

import (
	"fmt"
	"log"
	"sync/atomic"
)

// WidgetID identifies a widget to the refresh queue.
type WidgetID uint64

// screenID stands for the whole screen.
const screenID WidgetID = 0

var nextWidgetID atomic.Uint64

func newWidgetID() WidgetID {
	return WidgetID(nextWidgetID.Add(1))
}

// Quality is the kind of physical screen update requested.
type Quality int

const (
	// QualityFast is a fast partial update of the widget area.
	QualityFast Quality = iota
	// QualityFull is a full, flashing redraw that clears ghosting.
	QualityFull
)

func (q Quality) String() string {
	switch q {
	case QualityFast:
		return "fast"
	case QualityFull:
		return "full"
	}
	return "unknown"
}

// Enqueuer accepts screen refresh requests.
type Enqueuer interface {
	Enqueue(id WidgetID, q Quality)
}

// refreshRequest is a pending refresh for one widget.
type refreshRequest struct {
	id      WidgetID
	quality Quality
}

// RefreshQueue coalesces refresh requests until the next Flush.
// There is at most one pending request per widget; a later request for
// the same widget upgrades its quality but keeps its position.
// It is used only from the event loop.
type RefreshQueue struct {
	pending []refreshRequest
	index   map[WidgetID]int
	flush   func(full bool) error
}

// NewRefreshQueue returns a queue that performs the physical update with flush.
func NewRefreshQueue(flush func(full bool) error) *RefreshQueue {
	return &RefreshQueue{
		index: make(map[WidgetID]int),
		flush: flush,
	}
}

func (rq *RefreshQueue) Enqueue(id WidgetID, q Quality) {
	if i, ok := rq.index[id]; ok {
		rq.pending[i].quality = max(rq.pending[i].quality, q)
		return
	}
	rq.index[id] = len(rq.pending)
	rq.pending = append(rq.pending, refreshRequest{id, q})
}

// Pending returns the number of widgets waiting for a refresh.
func (rq *RefreshQueue) Pending() int {
	return len(rq.pending)
}

// QualityOf returns the pending quality for id, if any.
func (rq *RefreshQueue) QualityOf(id WidgetID) (Quality, bool) {
	i, ok := rq.index[id]
	if !ok {
		return 0, false
	}
	return rq.pending[i].quality, true
}

// Flush performs one physical update for all pending requests and empties
// the queue. The update is full if any request asked for it.
func (rq *RefreshQueue) Flush() error {
	if len(rq.pending) == 0 {
		return nil
	}
	full := false
	for _, r := range rq.pending {
		if r.quality == QualityFull {
			full = true
			break
		}
	}
	if *verbose {
		log.Printf("refresh: %d widgets, full %v", len(rq.pending), full)
	}
	rq.pending = rq.pending[0:0]
	clear(rq.index)
	return rq.flush(full)
}

// displayFlusher performs the physical updates of a RefreshQueue on a
// draw device. The device has one update mode, so the quality of each
// update is only counted and reported in verbose mode.
type displayFlusher struct {
	flush func() error
	full  int
	fast  int
}

func (f *displayFlusher) Flush(full bool) error {
	if full {
		f.full++
		if *verbose {
			log.Printf("display: full refresh %d", f.full)
		}
	} else {
		f.fast++
	}
	return f.flush()
}

// String reports the updates done so far.
func (f *displayFlusher) String() string {
	return fmt.Sprintf("%d full, %d fast refreshes", f.full, f.fast)
}
