package uitest

import (
	"fmt"
	"strings"
	"sync"
)

// Outcome is the final state of one test method invocation.
type Outcome string

const (
	OutcomePassed  Outcome = "passed"
	OutcomeFailed  Outcome = "failed"
	OutcomeSkipped Outcome = "skipped"

	// OutcomeFailedWithinSuccessPercentage is a failure that was marked with T.NonCritical.
	// It is reported but does not fail the run.
	OutcomeFailedWithinSuccessPercentage Outcome = "failed-within-success-percentage"
)

type TestResult struct {
	TestID      TestID
	Outcome     Outcome
	Errors      []error
	Explanation string
	NonCritical bool
	Attachments []Attachment

	// Attempts is how many times the scope ran, including the first time.
	Attempts int

	// RetriesExhausted is true if the test failed after using every retry it was allowed.
	RetriesExhausted bool

	// HasSubtests is true for a scope that called Run, even if every subtest was filtered out.
	HasSubtests bool
}

func (r TestResult) Failed() bool {
	return r.Outcome == OutcomeFailed || r.Outcome == OutcomeFailedWithinSuccessPercentage
}

// Results accumulates the results of a run. It is safe for concurrent use through Add and
// Merge; the exported slices should only be read once the run is over.
type Results struct {
	Tests               []TestResult
	Failures            []TestResult
	NonCriticalFailures []TestResult
	lock                sync.Mutex
}

func (r *Results) Add(result TestResult) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.add(result)
}

func (r *Results) add(result TestResult) {
	switch result.Outcome {
	case OutcomeFailed:
		r.Failures = append(r.Failures, result)
	case OutcomeFailedWithinSuccessPercentage:
		r.NonCriticalFailures = append(r.NonCriticalFailures, result)
	}
	r.Tests = append(r.Tests, result)
}

// Merge adds all the results of another run, such as a suite entry that ran on another
// goroutine.
func (r *Results) Merge(other *Results) {
	other.lock.Lock()
	tests := append([]TestResult(nil), other.Tests...)
	other.lock.Unlock()
	r.lock.Lock()
	defer r.lock.Unlock()
	for _, t := range tests {
		r.add(t)
	}
}

// MethodCount is the number of test methods that ran, not counting scopes that only group
// other tests.
func (r *Results) MethodCount() int {
	r.lock.Lock()
	defer r.lock.Unlock()
	n := 0
	for _, t := range r.Tests {
		if !t.HasSubtests {
			n++
		}
	}
	return n
}

func (r *Results) OK() bool {
	r.lock.Lock()
	defer r.lock.Unlock()
	return len(r.Failures) == 0
}

type TestID []string

func (t TestID) String() string {
	return strings.Join(t, "/")
}

func (t TestID) Plus(name string) TestID {
	return append(append(TestID(nil), t...), name)
}

// MethodName is the last component of the ID, which is what a test method is called in
// file names such as screenshots.
func (t TestID) MethodName() string {
	if len(t) == 0 {
		return ""
	}
	return t[len(t)-1]
}

type TestFailure struct {
	ID  TestID
	Err error
}

func (f TestFailure) Error() string {
	return fmt.Sprintf("[%s]: %s", f.ID, f.Err)
}

func (f TestFailure) Unwrap() error { return f.Err }
