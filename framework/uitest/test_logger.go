package uitest

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/qaharness/uiharness/framework"
)

var consoleTestErrorColor = color.New(color.FgYellow)              //nolint:gochecknoglobals
var consoleTestFailedColor = color.New(color.FgRed)                //nolint:gochecknoglobals
var consoleTestRetryColor = color.New(color.FgMagenta)             //nolint:gochecknoglobals
var consoleTestSkippedColor = color.New(color.Faint, color.FgBlue) //nolint:gochecknoglobals
var consoleDebugOutputColor = color.New(color.Faint)               //nolint:gochecknoglobals
var consoleNonCriticalColor = color.New(color.FgCyan)              //nolint:gochecknoglobals
var allTestsPassedColor = color.New(color.FgGreen)                 //nolint:gochecknoglobals

// TestLogger is the listener interface for test execution events. Implementations must be
// safe for concurrent use, since suite entries run on separate goroutines.
type TestLogger interface {
	TestStarted(id TestID)
	TestError(id TestID, err error)
	// TestRetrying is called after a failed attempt when another one is about to start.
	// retry counts from 1.
	TestRetrying(id TestID, retry int, maxRetries int)
	TestFinished(id TestID, result TestResult, debugOutput framework.CapturedOutput)
	TestSkipped(id TestID, reason string)
}

type nullTestLogger struct{}

func (n nullTestLogger) TestStarted(TestID)                                        {}
func (n nullTestLogger) TestError(TestID, error)                                   {}
func (n nullTestLogger) TestRetrying(TestID, int, int)                             {}
func (n nullTestLogger) TestFinished(TestID, TestResult, framework.CapturedOutput) {}
func (n nullTestLogger) TestSkipped(TestID, string)                                {}

// MultiTestLogger passes every event to each of its loggers in order.
type MultiTestLogger []TestLogger

func (m MultiTestLogger) TestStarted(id TestID) {
	for _, l := range m {
		l.TestStarted(id)
	}
}

func (m MultiTestLogger) TestError(id TestID, err error) {
	for _, l := range m {
		l.TestError(id, err)
	}
}

func (m MultiTestLogger) TestRetrying(id TestID, retry int, maxRetries int) {
	for _, l := range m {
		l.TestRetrying(id, retry, maxRetries)
	}
}

func (m MultiTestLogger) TestFinished(id TestID, result TestResult, debugOutput framework.CapturedOutput) {
	for _, l := range m {
		l.TestFinished(id, result, debugOutput)
	}
}

func (m MultiTestLogger) TestSkipped(id TestID, reason string) {
	for _, l := range m {
		l.TestSkipped(id, reason)
	}
}

// ConsoleTestLogger prints test progress to standard output.
type ConsoleTestLogger struct {
	DebugOutputOnFailure bool
	DebugOutputOnSuccess bool
}

func (c ConsoleTestLogger) TestStarted(id TestID) {
	fmt.Printf("[%s]\n", id)
}

func (c ConsoleTestLogger) TestError(id TestID, err error) {
	for _, line := range strings.Split(errorDetail(err), "\n") {
		_, _ = consoleTestErrorColor.Printf("  %s\n", line)
	}
}

func (c ConsoleTestLogger) TestRetrying(id TestID, retry int, maxRetries int) {
	_, _ = consoleTestRetryColor.Printf("  RETRYING (%d of %d): %s\n", retry, maxRetries, id)
}

func (c ConsoleTestLogger) TestFinished(id TestID, result TestResult, debugOutput framework.CapturedOutput) {
	failed := result.Failed()
	switch {
	case result.NonCritical:
		_, _ = consoleNonCriticalColor.Printf("  FAILED (non-critical): %s (%s)\n", id, result.Explanation)
	case failed && result.RetriesExhausted:
		_, _ = consoleTestFailedColor.Printf("  FAILED after %d attempts: %s\n", result.Attempts, id)
	case failed:
		_, _ = consoleTestFailedColor.Printf("  FAILED: %s\n", id)
	}
	if len(debugOutput) > 0 &&
		((failed && c.DebugOutputOnFailure) || (!failed && c.DebugOutputOnSuccess)) {
		_, _ = consoleDebugOutputColor.Println(debugOutput.ToString("    DEBUG "))
	}
}

func (c ConsoleTestLogger) TestSkipped(id TestID, reason string) {
	if reason == "" {
		_, _ = consoleTestSkippedColor.Printf("  SKIPPED: %s\n", id)
	} else {
		_, _ = consoleTestSkippedColor.Printf("  SKIPPED: %s (%s)\n", id, reason)
	}
}

// PrintResults prints the end-of-run summary.
func PrintResults(results *Results) {
	printResults(os.Stdout, os.Stderr, results)
}

func printResults(out, errOut io.Writer, results *Results) {
	if len(results.NonCriticalFailures) > 0 {
		_, _ = consoleNonCriticalColor.Fprintf(out, "NON-CRITICAL FAILURES (%d):\n", len(results.NonCriticalFailures))
		for _, f := range results.NonCriticalFailures {
			_, _ = consoleNonCriticalColor.Fprintf(out, "  * %s (%s)\n", f.TestID, f.Explanation)
		}
	}
	if results.OK() {
		if n := results.MethodCount(); n > 0 {
			_, _ = allTestsPassedColor.Fprintf(out, "All tests passed (%d)\n", n)
		} else {
			_, _ = consoleTestSkippedColor.Fprintln(out, "No tests were run")
		}
		return
	}
	_, _ = consoleTestFailedColor.Fprintf(errOut, "FAILED TESTS (%d):\n", len(results.Failures))
	for _, f := range results.Failures {
		if f.Attempts > 1 {
			_, _ = consoleTestFailedColor.Fprintf(errOut, "  * %s (%d attempts)\n", f.TestID, f.Attempts)
		} else {
			_, _ = consoleTestFailedColor.Fprintf(errOut, "  * %s\n", f.TestID)
		}
	}
}
