// Package suitedef reads suite definition files, which say which browsers and environments a
// run covers. A suite file is YAML (or JSON, which is a subset of it):
//
//	name: regression
//	threadCount: 2
//	retries: 1
//	tests:
//	  - name: chrome-dev
//	    parameters: {env: dev, browser: chrome, headless: true}
//	    include: ["login/.*"]
//	  - name: firefox-dev
//	    parameters: {env: dev, browser: firefox}
//
// Each entry in tests runs the whole suite, or the part of it selected by include, with its
// own parameters. Entries run concurrently, up to threadCount at a time.
package suitedef

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"

	yaml "gopkg.in/yaml.v3"

	"github.com/qaharness/uiharness/framework/browser"
	"github.com/qaharness/uiharness/framework/opt"
	"github.com/qaharness/uiharness/framework/uitest"
)

const (
	DefaultName        = "uiharness"
	DefaultEntryName   = "default"
	DefaultThreadCount = 1
)

// Suite is a parsed suite definition.
type Suite struct {
	Name        string         `yaml:"name"`
	ThreadCount int            `yaml:"threadCount"`
	Retries     opt.Maybe[int] `yaml:"retries"`
	Tests       []Entry        `yaml:"tests"`
}

// Entry is one parameterized run of the suite.
type Entry struct {
	Name       string     `yaml:"name"`
	Parameters Parameters `yaml:"parameters"`
	Include    []string   `yaml:"include"`
}

// Parameters are the per-entry settings. Anything left out comes from the command line.
type Parameters struct {
	Env      string          `yaml:"env"`
	Browser  string          `yaml:"browser"`
	Headless opt.Maybe[bool] `yaml:"headless"`
}

// Overrides are command-line settings. A defined value replaces the one in the file.
type Overrides struct {
	Env         opt.Maybe[string]
	Browser     opt.Maybe[string]
	Headless    opt.Maybe[bool]
	Retries     opt.Maybe[int]
	ThreadCount opt.Maybe[int]
}

// Default builds the single-entry suite used when no suite file is given.
func Default(params Parameters) *Suite {
	return &Suite{
		Name:        DefaultName,
		ThreadCount: DefaultThreadCount,
		Tests:       []Entry{{Name: DefaultEntryName, Parameters: params}},
	}
}

// LoadFile reads and validates a suite file.
func LoadFile(path string) (*Suite, error) {
	data, err := os.ReadFile(path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("failed to read suite file %q: %w", path, err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("error in suite file %q: %w", filepath.Base(path), err)
	}
	return s, nil
}

// Parse decodes a suite definition and checks it. Unknown keys are errors, since a misspelled
// key would otherwise be silently ignored.
func Parse(data []byte) (*Suite, error) {
	var s Suite
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("suite definition is empty")
		}
		return nil, err
	}
	if s.Name == "" {
		s.Name = DefaultName
	}
	if s.ThreadCount == 0 {
		s.ThreadCount = DefaultThreadCount
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks everything that can be checked before a browser is started.
func (s *Suite) Validate() error {
	if s.ThreadCount < 0 {
		return fmt.Errorf("threadCount must not be negative (was %d)", s.ThreadCount)
	}
	if r, ok := s.Retries.Get(); ok && r < 0 {
		return fmt.Errorf("retries must not be negative (was %d)", r)
	}
	if len(s.Tests) == 0 {
		return errors.New("suite has no tests")
	}
	names := make(map[string]bool, len(s.Tests))
	for i, e := range s.Tests {
		if e.Name == "" {
			return fmt.Errorf("test %d has no name", i+1)
		}
		if names[e.Name] {
			return fmt.Errorf("duplicate test name %q", e.Name)
		}
		names[e.Name] = true
		if e.Parameters.Browser != "" {
			if _, err := browser.ParseKind(e.Parameters.Browser); err != nil {
				return fmt.Errorf("test %q: %w", e.Name, err)
			}
		}
		if _, err := e.includePatterns(); err != nil {
			return fmt.Errorf("test %q: %w", e.Name, err)
		}
	}
	return nil
}

// Apply returns a copy of the suite with the overrides applied to it and to every entry.
func (s *Suite) Apply(o Overrides) *Suite {
	ret := *s
	ret.Tests = make([]Entry, len(s.Tests))
	if r, ok := o.Retries.Get(); ok {
		ret.Retries = opt.Some(r)
	}
	ret.ThreadCount = o.ThreadCount.OrElse(s.ThreadCount)
	for i, e := range s.Tests {
		if env, ok := o.Env.Get(); ok {
			e.Parameters.Env = env
		}
		if b, ok := o.Browser.Get(); ok {
			e.Parameters.Browser = b
		}
		e.Parameters.Headless = o.Headless.Or(e.Parameters.Headless)
		ret.Tests[i] = e
	}
	return &ret
}

// Filter selects the tests of this entry named by Include. Patterns are relative to the
// entry, so "login/.*" matches the test "<entry>/login/signIn". With no patterns, every test
// is selected and Filter returns nil.
func (e Entry) Filter() uitest.Filter {
	patterns, err := e.includePatterns()
	if err != nil || !patterns.IsDefined() {
		return nil
	}
	return func(id uitest.TestID) bool {
		return patterns.AnyMatch(id, true)
	}
}

func (e Entry) includePatterns() (uitest.TestIDPatternList, error) {
	var ret uitest.TestIDPatternList
	prefix := regexp.MustCompile("^" + regexp.QuoteMeta(e.Name) + "$")
	for _, include := range e.Include {
		p, err := uitest.ParseTestIDPattern(include)
		if err != nil {
			return nil, fmt.Errorf("include %q: %w", include, err)
		}
		ret = append(ret, append(uitest.TestIDPattern{prefix}, p...))
	}
	return ret, nil
}
