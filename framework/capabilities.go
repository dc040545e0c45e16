package framework

import "strings"

// Capabilities is a list of strings describing optional features of the environment under
// test, such as "selfcheck". They come from the "capabilities" configuration key.
type Capabilities []string

// ParseCapabilities splits a comma-separated list, ignoring blanks.
func ParseCapabilities(s string) Capabilities {
	var ret Capabilities
	for _, part := range strings.Split(s, ",") {
		if c := strings.TrimSpace(part); c != "" {
			ret = append(ret, c)
		}
	}
	return ret
}

// Has returns true if the specified string appears in the list.
func (cs Capabilities) Has(name string) bool {
	for _, c := range cs {
		if c == name {
			return true
		}
	}
	return false
}

// HasAny returns true if at least one of the names appears in the list.
func (cs Capabilities) HasAny(names ...string) bool {
	for _, n := range names {
		if cs.Has(n) {
			return true
		}
	}
	return false
}
