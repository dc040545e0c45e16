package suites

import (
	"github.com/qaharness/uiharness/framework/harness"
	"github.com/qaharness/uiharness/framework/uitest"
	"github.com/qaharness/uiharness/pages"
)

// SuiteContext is the uitest.TestConfiguration context for one suite entry.
type SuiteContext struct {
	Harness  *harness.Harness
	Browser  string
	Headless bool
}

func requireContext(t *uitest.T) SuiteContext {
	if c, ok := t.Context().(SuiteContext); ok {
		return c
	}
	panic("SuiteContext was not included in the global test configuration!" +
		" This is a basic mistake in the initialization logic.")
}

// openBrowser starts the session for the current test, with the application's start page
// loaded. The browser is closed when the test ends.
func openBrowser(t *uitest.T) *pages.Registry {
	c := requireContext(t)
	s := c.Harness.StartSession(t, c.Browser, c.Headless)
	return pages.NewRegistry(s.Page())
}
