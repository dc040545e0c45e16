package suites

import (
	"github.com/qaharness/uiharness/framework"
	"github.com/qaharness/uiharness/framework/browser"
	"github.com/qaharness/uiharness/framework/harness"
	"github.com/qaharness/uiharness/framework/uitest"
	"github.com/qaharness/uiharness/suitedef"
)

// CapabilitySelfCheck enables the tests that exercise every browser interaction against the
// mock site. The application under test does not have those pages.
const CapabilitySelfCheck = "selfcheck"

// AllCapabilities lists every capability that some test requires.
func AllCapabilities() framework.Capabilities {
	return framework.Capabilities{CapabilitySelfCheck}
}

// EntryConfig holds the run-wide settings for RunEntry.
type EntryConfig struct {
	// Filter selects tests in addition to the entry's own include patterns. Like those, it sees
	// test IDs without the leading entry name, so "login/signIn" selects that test in every
	// entry.
	Filter     uitest.Filter
	TestLogger uitest.TestLogger
	Retries    int
}

// RunEntry runs the suite once with the parameters of one suite entry. The harness must be
// configured for the entry's environment. Every test ID starts with the entry name.
func RunEntry(h *harness.Harness, entry suitedef.Entry, config EntryConfig) *uitest.Results {
	kind := entry.Parameters.Browser
	if kind == "" {
		kind = string(browser.Chrome)
	}
	var capabilities framework.Capabilities
	if cfg := h.Config(); cfg != nil {
		capabilities = cfg.Capabilities()
	}
	return uitest.Run(uitest.TestConfiguration{
		Filter:     allOf(entry.Filter(), withinEntry(config.Filter)),
		TestLogger: config.TestLogger,
		Retry:      uitest.MaxRetries(config.Retries),
		Context: SuiteContext{
			Harness:  h,
			Browser:  kind,
			Headless: entry.Parameters.Headless.OrElse(false),
		},
		Capabilities: capabilities,
	}, func(t *uitest.T) {
		t.Run(entry.Name, DoAllTests)
	})
}

// DoAllTests runs every test group in the current scope.
func DoAllTests(t *uitest.T) {
	t.Run("login", doLoginTests)
	t.Run("facade", doFacadeTests)
}

func allOf(filters ...uitest.Filter) uitest.Filter {
	var defined []uitest.Filter
	for _, f := range filters {
		if f != nil {
			defined = append(defined, f)
		}
	}
	if len(defined) == 0 {
		return nil
	}
	return func(id uitest.TestID) bool {
		for _, f := range defined {
			if !f(id) {
				return false
			}
		}
		return true
	}
}

// withinEntry applies f to test IDs with the entry name removed. The entry scope itself
// becomes the empty ID, which every filter lets through so that its subtests get a chance.
func withinEntry(f uitest.Filter) uitest.Filter {
	if f == nil {
		return nil
	}
	return func(id uitest.TestID) bool {
		return f(id[min(1, len(id)):])
	}
}
