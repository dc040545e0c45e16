package uitest

import (
	"errors"
	"fmt"
	"runtime"
	"runtime/debug"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/qaharness/uiharness/framework"
)

type environment struct {
	config  TestConfiguration
	results *Results
}

// T represents a test scope. It is very similar to Go's testing.T type.
//
// A T belongs to the goroutine running its action. Errorf, Attach and the debug logger may also
// be called from other goroutines, such as a browser event callback.
type T struct {
	env         *environment
	id          TestID
	debugLogger framework.CapturingLogger
	nonCritical string
	failed      bool
	skipped     bool
	skipReason  string
	hasSubtests bool
	cleanups    []func()
	errors      []error
	attachments []Attachment
	helperFns   []string
	lock        sync.Mutex
}

// Attachment is a file produced by a test, such as a screenshot taken when it failed.
type Attachment struct {
	Name        string
	ContentType string
	Data        []byte
}

// TestConfiguration contains options for the entire test run.
type TestConfiguration struct {
	// Filter is an optional function for determining which tests to run based on their names.
	Filter Filter

	// TestLogger receives status information about each test.
	TestLogger TestLogger

	// Retry creates the RetryAnalyzer for each test method. If nil, failed tests are not retried.
	Retry RetryPolicy

	// Context is an optional value of any type defined by the application which can be accessed from tests.
	Context interface{}

	// Capabilities is a list of strings which are used by T.Capabilities and T.RequireCapability.
	Capabilities framework.Capabilities
}

// Run starts a top-level test scope and returns the results of everything that ran in it.
func Run(
	config TestConfiguration,
	action func(*T),
) *Results {
	if config.TestLogger == nil {
		config.TestLogger = nullTestLogger{}
	}
	env := &environment{
		config:  config,
		results: &Results{},
	}
	t := &T{env: env}
	result := t.run(action)
	if result.Outcome != OutcomeSkipped {
		env.results.Add(result)
	}
	return env.results
}

// run executes one attempt of a scope. Cleanup functions run before the result is built, so
// that anything they record, such as a failure screenshot, is part of it.
func (t *T) run(action func(*T)) TestResult {
	func() {
		defer func() {
			if r := recover(); r != nil {
				t.recoverFrom(r)
			}
		}()
		action(t)
	}()
	t.runCleanups()
	return t.result()
}

func (t *T) recoverFrom(r interface{}) {
	var addError error
	t.lock.Lock()
	if _, ok := r.(*T); ok {
		if t.skipped {
			t.lock.Unlock()
			return
		}
		if len(t.errors) == 0 {
			addError = errors.New("test failed with no failure message")
		}
	} else {
		addError = fmt.Errorf("unexpected panic in test: %+v\n%s", r, string(debug.Stack()))
	}
	t.failed = true
	if addError != nil {
		t.errors = append(t.errors, addError)
	}
	t.lock.Unlock()
	if addError != nil {
		t.env.config.TestLogger.TestError(t.id, addError)
	}
}

func (t *T) runCleanups() {
	for i := len(t.cleanups) - 1; i >= 0; i-- {
		func() {
			defer func() {
				if r := recover(); r != nil {
					if _, ok := r.(*T); !ok {
						t.Errorf("unexpected panic in cleanup: %+v", r)
					}
				}
			}()
			t.cleanups[i]()
		}()
	}
	t.cleanups = nil
}

func (t *T) result() TestResult {
	t.lock.Lock()
	defer t.lock.Unlock()
	result := TestResult{
		TestID:      t.id,
		Errors:      t.errors,
		Attachments: t.attachments,
		Attempts:    1,
		HasSubtests: t.hasSubtests,
	}
	switch {
	case t.skipped:
		result.Outcome = OutcomeSkipped
	case t.failed && t.nonCritical != "":
		result.Outcome = OutcomeFailedWithinSuccessPercentage
		result.Explanation = t.nonCritical
		result.NonCritical = true
	case t.failed:
		result.Outcome = OutcomeFailed
	default:
		result.Outcome = OutcomePassed
	}
	return result
}

// ID returns the full name of the current test.
func (t *T) ID() TestID {
	return t.id
}

// Run runs a subtest in its own scope.
//
// This is equivalent to Go's testing.T.Run, plus retry: if the configuration has a RetryPolicy
// and the subtest fails without having run subtests of its own, it is run again from the
// start in a brand new scope, until it passes or its RetryAnalyzer says no. Listeners see
// TestStarted once, TestRetrying before each extra attempt, and TestFinished once with the
// result of the last attempt.
func (t *T) Run(name string, action func(*T)) {
	t.lock.Lock()
	t.hasSubtests = true
	t.lock.Unlock()

	id := t.id.Plus(name)
	logger := t.env.config.TestLogger

	logger.TestStarted(id)
	if t.env.config.Filter != nil && !t.env.config.Filter(id) {
		logger.TestSkipped(id, "excluded by filter parameters")
		return
	}

	var retry *RetryAnalyzer
	if t.env.config.Retry != nil {
		retry = t.env.config.Retry(id)
	}

	for attempt := 1; ; attempt++ {
		c := &T{
			id:  id,
			env: t.env,
		}
		t.debugLogger.AddChildLogger(&c.debugLogger) // see comments on t.DebugLogger()
		result := c.run(action)
		t.debugLogger.RemoveChildLogger(&c.debugLogger)
		result.Attempts = attempt

		if result.Outcome == OutcomeFailed && retry != nil && !c.hasSubtests {
			if retry.Retry() {
				logger.TestRetrying(id, retry.Count(), retry.Max())
				continue
			}
			result.RetriesExhausted = retry.Max() > 0
		}

		if result.Outcome == OutcomeSkipped {
			logger.TestSkipped(id, c.skipReason)
			return
		}
		t.env.results.Add(result)
		logger.TestFinished(id, result, c.debugLogger.Output())
		return
	}
}

// NonCritical indicates that if this test fails, we would like to know about it but we're willing to
// live with it. The failure is reported as failed within success percentage, with this
// explanation, and does not make the run fail. Such failures are not retried.
func (t *T) NonCritical(explanation string) {
	t.lock.Lock()
	t.nonCritical = explanation
	t.lock.Unlock()
}

// Errorf reports a test failure. It is equivalent to Go's testing.T.Errorf. It does not cause the test
// to terminate, but adds the failure message to the output and marks the test as failed.
//
// You will rarely use this method directly; it is part of this type's implementation of
// assert.TestingT and require.TestingT.
func (t *T) Errorf(format string, args ...interface{}) {
	err := fmt.Errorf(format, args...)

	t.lock.Lock()
	stacktrace := getStacktrace(false, t.helperFns)
	err = transformError(err, stacktrace)
	t.failed = true
	t.errors = append(t.errors, err)
	t.lock.Unlock()

	t.env.config.TestLogger.TestError(t.id, err)
}

// FailNow causes the test to immediately terminate and be marked as failed.
func (t *T) FailNow() {
	panic(t)
}

// Failed reports whether the test has failed so far. Cleanup functions use this to decide
// whether to collect diagnostics.
func (t *T) Failed() bool {
	t.lock.Lock()
	defer t.lock.Unlock()
	return t.failed
}

// Skip causes the test to immediately terminate and be marked as skipped. Cleanup functions
// still run.
func (t *T) Skip() {
	t.lock.Lock()
	t.skipped = true
	t.lock.Unlock()
	panic(t)
}

// SkipWithReason is equivalent to Skip but provides a message.
func (t *T) SkipWithReason(reason string) {
	t.lock.Lock()
	t.skipReason = reason
	t.lock.Unlock()
	t.Skip()
}

// Attach adds a file to the result of this test. It can be called from a cleanup function.
func (t *T) Attach(name, contentType string, data []byte) {
	t.lock.Lock()
	t.attachments = append(t.attachments, Attachment{Name: name, ContentType: contentType, Data: data})
	t.lock.Unlock()
	t.debugLogger.Printf("attached %s (%s, %d bytes)", name, contentType, len(data))
}

// Debug writes a message to the output for this test scope.
func (t *T) Debug(message string, args ...interface{}) {
	t.debugLogger.Printf(message, args...)
}

// DebugLogger returns a Logger instance for writing output for this test scope.
//
// The output that is captured for a test will be passed to TestLogger.TestFinished at the end of
// the test. The test runner can choose whether to display this or not based on command-line options.
//
// When a test has subtests (created with t.Run), the logger for a subtest starts out with a copy of
// any output that was already logged for the parent test. During the lifetime of the subtest, any
// further output that is sent to the parent test's logger will go to the child test's logger
// instead. This matters when a parent scope owns something, such as a mock page, that many
// subtests use.
func (t *T) DebugLogger() framework.Logger {
	return &t.debugLogger
}

// ZapLogger returns a zap logger that writes into this scope's debug output.
func (t *T) ZapLogger() *zap.Logger {
	return framework.NewZapLogger(&t.debugLogger, zapcore.DebugLevel).
		With(zap.String("test", t.id.String()))
}

// Defer schedules a cleanup function which is guaranteed to be called when this test scope
// exits for any reason. Unlike a Go defer statement, Defer can be used from within helper
// functions. Cleanups run in reverse order of registration.
func (t *T) Defer(cleanupFn func()) {
	t.cleanups = append(t.cleanups, cleanupFn)
}

// Context returns the application-defined context value, if any, that was specified in the
// TestConfiguration.
func (t *T) Context() interface{} {
	return t.env.config.Context
}

// Capabilities returns the capabilities that were configured for the run.
func (t *T) Capabilities() framework.Capabilities {
	return append(framework.Capabilities(nil), t.env.config.Capabilities...)
}

// RequireCapability causes the test to be skipped if the run does not have the named capability.
func (t *T) RequireCapability(name string) {
	if !t.Capabilities().Has(name) {
		t.SkipWithReason(fmt.Sprintf("run does not have capability %q", name))
	}
}

// Helper marks the function that calls it as a test helper that shouldn't appear in stacktraces.
// Equivalent to Go's testing.T.Helper().
func (t *T) Helper() {
	pc, _, _, ok := runtime.Caller(1) // 0 is Helper() itself, 1 is who called it
	if !ok {
		return
	}
	f := runtime.FuncForPC(pc)
	if f == nil {
		return
	}
	t.lock.Lock()
	t.helperFns = append(t.helperFns, f.Name())
	t.lock.Unlock()
}
