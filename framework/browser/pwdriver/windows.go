package pwdriver

import (
	"sync"

	"github.com/google/uuid"

	"github.com/qaharness/uiharness/framework/browser"
)

// windowRegistry gives each page a stable window handle. Playwright has no handles of its
// own. The opening order is kept by a browser.WindowOrder.
type windowRegistry[P comparable] struct {
	order   browser.WindowOrder[P]
	handles map[P]string
	current P
	lock    sync.Mutex
}

func newWindowRegistry[P comparable](first P) *windowRegistry[P] {
	r := &windowRegistry[P]{handles: make(map[P]string)}
	r.track(first)
	r.current = first
	return r
}

// track registers a page if it is new and returns its handle.
func (r *windowRegistry[P]) track(page P) string {
	r.order.Add(page)
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.handleOf(page)
}

func (r *windowRegistry[P]) handleOf(page P) string {
	h, ok := r.handles[page]
	if !ok {
		h = uuid.NewString()
		r.handles[page] = h
	}
	return h
}

// sync forgets pages that are no longer open, then registers any that are new.
func (r *windowRegistry[P]) sync(open []P) {
	ordered := r.order.Observe(open)
	r.lock.Lock()
	defer r.lock.Unlock()
	stillOpen := make(map[P]bool, len(ordered))
	for _, p := range ordered {
		stillOpen[p] = true
		r.handleOf(p)
	}
	for p := range r.handles {
		if !stillOpen[p] {
			delete(r.handles, p)
		}
	}
}

// list returns the handles in the order the pages were opened.
func (r *windowRegistry[P]) list() []string {
	pages := r.order.List()
	r.lock.Lock()
	defer r.lock.Unlock()
	ret := make([]string, 0, len(pages))
	for _, p := range pages {
		ret = append(ret, r.handleOf(p))
	}
	return ret
}

func (r *windowRegistry[P]) lookup(handle string) (P, bool) {
	r.lock.Lock()
	defer r.lock.Unlock()
	for p, h := range r.handles {
		if h == handle {
			return p, true
		}
	}
	var empty P
	return empty, false
}

func (r *windowRegistry[P]) setCurrent(p P) {
	r.lock.Lock()
	r.current = p
	r.lock.Unlock()
}

func (r *windowRegistry[P]) currentPage() (P, string) {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.current, r.handles[r.current]
}
