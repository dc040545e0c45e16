package browser

import (
	"slices"
	"sync"
)

// WindowOrder remembers the order in which a session's windows were first seen, so that
// Session.Windows can list them oldest first no matter how the driver enumerates them.
// Windows that first show up in the same Observe call keep the order they were given in.
type WindowOrder[W comparable] struct {
	seen []W
	lock sync.Mutex
}

// Add records w as the newest window unless it is already known.
func (o *WindowOrder[W]) Add(w W) {
	o.lock.Lock()
	defer o.lock.Unlock()
	if !slices.Contains(o.seen, w) {
		o.seen = append(o.seen, w)
	}
}

// Observe takes the full set of open windows. Known windows that are no longer open are
// forgotten and new ones are added after the known ones. It returns the open windows, oldest
// first.
func (o *WindowOrder[W]) Observe(open []W) []W {
	o.lock.Lock()
	defer o.lock.Unlock()
	kept := make([]W, 0, len(open))
	for _, w := range o.seen {
		if slices.Contains(open, w) {
			kept = append(kept, w)
		}
	}
	for _, w := range open {
		if !slices.Contains(kept, w) {
			kept = append(kept, w)
		}
	}
	o.seen = kept
	return slices.Clone(kept)
}

// List returns the known windows, oldest first.
func (o *WindowOrder[W]) List() []W {
	o.lock.Lock()
	defer o.lock.Unlock()
	return slices.Clone(o.seen)
}
