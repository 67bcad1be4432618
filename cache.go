package main

import (
	"fmt"
	"iter"
	"log"
	"slices"
	"sync"
	"sync/atomic"
	"time"
)

// CachedItem is anything that can be lazily loaded and unloaded.
type CachedItem interface {
	// Load loads the item and prepares it for use.
	Load() error
	// Unload releases the resources of the item. To use it again,
	// the caller must call Load.
	Unload()
}

// CachedSlice is a slice of CachedItems. It maintains a cache of loaded items.
type CachedSlice[E CachedItem] interface {
	// At returns the ith item and ensures it is loaded. It also returns a bool
	// saying whether the slice contains the item.
	At(i int) (E, bool)
	// Len returns the length of the slice.
	Len() int
	// Free clears the cache and unloads all items. The cache cannot be reused after this.
	Free()
}

// Get returns the items in [from, to) as an iterator.
func Get[E CachedItem](c CachedSlice[E], from, to int) iter.Seq[E] {
	return func(yield func(E) bool) {
		for ; from < to; from++ {
			i, ok := c.At(from)
			if !ok || !yield(i) {
				return
			}
		}
	}
}

// PagedCache is a CachedSlice split into pages. A few pages stay loaded,
// and the neighbours of a requested page are loaded in the background.
type PagedCache[E CachedItem] struct {
	name     string
	items    []E
	pageSize int
	requests chan<- pageRequest
}

// NewPagedCache returns a PagedCache over items. It starts a goroutine
// that loads pages. Callers must call Free to stop it.
func NewPagedCache[E CachedItem](name string, items []E, pageSize int) *PagedCache[E] {
	pageSize = max(1, pageSize)
	c := &PagedCache[E]{
		name:     name,
		items:    items,
		pageSize: pageSize,
	}
	c.logf("%d pages", c.numPages())
	c.requests = c.startLoader()
	return c
}

func (c *PagedCache[E]) At(pos int) (E, bool) {
	if pos < 0 || pos >= len(c.items) {
		var z E
		return z, false
	}
	page := pos / c.pageSize
	c.prefetch(page-1, page+1)
	c.fetch(page)
	return c.items[pos], true
}

func (c *PagedCache[E]) Len() int {
	return len(c.items)
}

func (c *PagedCache[E]) Free() {
	if c.requests == nil {
		return
	}
	close(c.requests)
	c.requests = nil
	for _, item := range c.items {
		go item.Unload()
	}
}

func (c *PagedCache[E]) logf(format string, args ...any) {
	if *verbose {
		prefix := fmt.Sprintf("cache %s(%d/%d): ", c.name, len(c.items), c.pageSize)
		log.Printf(prefix+format, args...)
	}
}

func (c *PagedCache[E]) numPages() int {
	return intCeil(len(c.items), c.pageSize)
}

func (c *PagedCache[E]) validPage(p int) bool {
	return 0 <= p && p < c.numPages()
}

// pageRequest asks the loader for a page.
type pageRequest struct {
	page int
	// done, if not nil, receives the page after it is loaded. Should be buffered.
	done chan int
}

// fetch loads page p and waits for it.
func (c *PagedCache[E]) fetch(p int) {
	if c.validPage(p) {
		r := pageRequest{p, make(chan int, 1)}
		c.requests <- r
		<-r.done
	}
}

// prefetch asks for pages without waiting.
func (c *PagedCache[E]) prefetch(pages ...int) {
	for _, p := range pages {
		if c.validPage(p) {
			c.requests <- pageRequest{p, nil}
		}
	}
}

// startLoader launches the goroutine that owns the set of loaded pages.
// It serves requests until the returned channel is closed.
func (c *PagedCache[E]) startLoader() chan<- pageRequest {
	in := make(chan pageRequest)
	go func() {
		var loaded pageSet
		var inflight loader

		ready := make(chan int)
		for {
			select {
			case req, ok := <-in:
				if !ok {
					return
				}
				if loaded.contains(req.page) {
					if req.done != nil {
						req.done <- req.page
					}
				} else if inflight.track(req) {
					go func(p int) {
						start := time.Now()
						failed := c.loadPage(p)
						c.logf("load page %d time %v failed %d", p, time.Since(start), failed)
						ready <- p
					}(req.page)
				}
			case page := <-ready:
				if !inflight.isActive(page) {
					panic(fmt.Sprintf("cache: ready page %d not in progress", page))
				}
				if ep, evicted := loaded.add(page); evicted {
					go func(p int) {
						c.logf("evicted page %d", p)
						c.mapPage(p, func(item E) { item.Unload() })
					}(ep)
				}
				c.logf("pages %v", loaded.pages)
				inflight.done(page)
			}
		}
	}()
	return in
}

// loadPage loads the items of page p and returns how many failed.
// The page counts as loaded even if some items failed.
func (c *PagedCache[E]) loadPage(p int) int {
	var failed atomic.Int32
	c.mapPage(p, func(item E) {
		if err := item.Load(); err != nil {
			failed.Add(1)
			log.Printf("cache %s: %v: %v", c.name, item, err)
		}
	})
	return int(failed.Load())
}

// mapPage applies fn to all the items of page p in parallel.
func (c *PagedCache[E]) mapPage(p int, fn func(item E)) {
	begin := p * c.pageSize
	end := min(len(c.items), begin+c.pageSize)
	var wg sync.WaitGroup
	for i := begin; i < end; i++ {
		wg.Add(1)
		go func(item E) {
			defer wg.Done()
			fn(item)
		}(c.items[i])
	}
	wg.Wait()
}

// pageSet is the set of loaded pages, kept sorted.
type pageSet struct {
	pages []int
}

const loadedPages = 5

func (ps *pageSet) contains(page int) bool {
	_, found := slices.BinarySearch(ps.pages, page)
	return found
}

// add adds page. When the set is full it evicts the page at the end
// farther from the new one and returns it.
func (ps *pageSet) add(page int) (int, bool) {
	i, found := slices.BinarySearch(ps.pages, page)
	if found {
		return 0, false
	}
	ps.pages = slices.Insert(ps.pages, i, page)
	if len(ps.pages) <= loadedPages {
		return 0, false
	}

	var evicted int
	if i >= len(ps.pages)-1-i {
		evicted = ps.pages[0]
		ps.pages = ps.pages[1:]
	} else {
		evicted = ps.pages[len(ps.pages)-1]
		ps.pages = ps.pages[:len(ps.pages)-1]
	}
	return evicted, true
}

// inProgress is a page being loaded.
type inProgress struct {
	page    int
	waiters []chan int
}

// loader tracks the pages being loaded.
type loader struct {
	loading []inProgress
}

func (l *loader) index(page int) int {
	return slices.IndexFunc(l.loading, func(ip inProgress) bool {
		return ip.page == page
	})
}

// isActive returns whether page is being loaded.
func (l *loader) isActive(page int) bool {
	return l.index(page) >= 0
}

// track records a request. It returns true for a page not being loaded yet.
func (l *loader) track(req pageRequest) bool {
	i := l.index(req.page)
	fresh := i < 0
	if fresh {
		l.loading = append(l.loading, inProgress{page: req.page})
		i = len(l.loading) - 1
	}
	if req.done != nil {
		l.loading[i].waiters = append(l.loading[i].waiters, req.done)
	}
	return fresh
}

// done stops tracking page and wakes its waiters.
func (l *loader) done(page int) {
	if i := l.index(page); i >= 0 {
		for _, c := range l.loading[i].waiters {
			c <- page
		}
		l.loading = slices.Delete(l.loading, i, i+1)
	}
}
