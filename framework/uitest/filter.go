package uitest

import (
	"fmt"
	"io"
	"regexp"
	"slices"
	"strings"
)

// Filter is a function that can determine whether to run a specific test or not.
type Filter func(TestID) bool

// RegexFilters implements the -run and -skip options. A test runs if it matches one of the
// MustMatch patterns (or there are none) and none of the MustNotMatch patterns.
type RegexFilters struct {
	MustMatch    TestIDPatternList
	MustNotMatch TestIDPatternList
}

func (r RegexFilters) Match(id TestID) bool {
	return (!r.MustMatch.IsDefined() || r.MustMatch.AnyMatch(id, true)) &&
		!r.MustNotMatch.AnyMatch(id, false)
}

// AsFilter returns nil when there are no patterns, so that the runner does no filtering work.
func (r RegexFilters) AsFilter() Filter {
	if !r.MustMatch.IsDefined() && !r.MustNotMatch.IsDefined() {
		return nil
	}
	return r.Match
}

// TestIDPattern has one regex per component of a TestID, written with slashes between them
// like the ID itself. Each regex may match anywhere within its component.
type TestIDPattern []*regexp.Regexp

// Match compares the pattern with the leading components of id. With includeParents, an ID
// shorter than the pattern also matches if its components agree, since a parent scope has to
// run for any of its subtests to run.
func (p TestIDPattern) Match(id TestID, includeParents bool) bool {
	if len(id) < len(p) && !includeParents {
		return false
	}
	for i, component := range id[:min(len(id), len(p))] {
		if !p[i].MatchString(component) {
			return false
		}
	}
	return true
}

func (p TestIDPattern) String() string {
	var b strings.Builder
	for i, rx := range p {
		if i > 0 {
			b.WriteByte('/')
		}
		b.WriteString(rx.String())
	}
	return b.String()
}

func ParseTestIDPattern(s string) (TestIDPattern, error) {
	var ret TestIDPattern
	for i, part := range strings.Split(s, "/") {
		rx, err := regexp.Compile(part)
		if err != nil {
			return nil, fmt.Errorf("invalid regex in component %d of %q: %w", i+1, s, err)
		}
		ret = append(ret, rx)
	}
	return ret, nil
}

// TestIDPatternList is a flag.Value that collects one pattern per use of the flag.
type TestIDPatternList []TestIDPattern

func (l TestIDPatternList) String() string {
	quoted := make([]string, len(l))
	for i, p := range l {
		quoted[i] = `"` + p.String() + `"`
	}
	return strings.Join(quoted, " or ")
}

func (l *TestIDPatternList) Set(value string) error {
	p, err := ParseTestIDPattern(value)
	if err == nil {
		*l = append(*l, p)
	}
	return err
}

func (l TestIDPatternList) IsDefined() bool { return len(l) > 0 }

func (l TestIDPatternList) AnyMatch(id TestID, includeParents bool) bool {
	return slices.ContainsFunc(l, func(p TestIDPattern) bool { return p.Match(id, includeParents) })
}

// PrintFilterDescription explains up front which tests will be skipped and why.
func PrintFilterDescription(w io.Writer, filters RegexFilters, allCapabilities, enabledCapabilities []string) {
	if filters.MustMatch.IsDefined() || filters.MustNotMatch.IsDefined() {
		fmt.Fprintln(w, "Some tests will be skipped based on the filter criteria for this test run:")
		if filters.MustMatch.IsDefined() {
			fmt.Fprintf(w, "  skip any not matching %s\n", filters.MustMatch)
		}
		if filters.MustNotMatch.IsDefined() {
			fmt.Fprintf(w, "  skip any matching %s\n", filters.MustNotMatch)
		}
		fmt.Fprintln(w)
	}

	enabled := make(map[string]bool)
	for _, c := range enabledCapabilities {
		enabled[c] = true
	}
	var missing []string
	for _, c := range allCapabilities {
		if !enabled[c] {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		fmt.Fprintln(w, "Some tests may be skipped because the run does not have these capabilities:")
		fmt.Fprintf(w, "  %s\n", strings.Join(missing, ", "))
		fmt.Fprintln(w)
	}
}
