package uitest

import (
	"errors"
	"fmt"
	"path"
	"regexp"
	"runtime"
	"slices"
	"strings"
)

// ErrorWithStacktrace is a test failure along with the call stack of the test code that
// reported it. Frames from this package and from Helper functions are left out.
type ErrorWithStacktrace struct {
	Message    string
	Stacktrace []StacktraceInfo
}

type StacktraceInfo struct {
	FileName string
	Package  string
	Function string
	Line     int
}

func (e ErrorWithStacktrace) Error() string { return e.Message }

// Detail is the message followed by one line per stack frame.
func (e ErrorWithStacktrace) Detail() string {
	lines := []string{e.Message}
	if len(e.Stacktrace) != 0 {
		lines = append(lines, "  Stacktrace:")
		for _, s := range e.Stacktrace {
			lines = append(lines, "    "+s.String())
		}
	}
	return strings.Join(lines, "\n")
}

func (s StacktraceInfo) String() string {
	return fmt.Sprintf("%s.%s (%s:%d)", path.Base(s.Package), s.Function, s.FileName, s.Line)
}

var testifyTracePrefix = regexp.MustCompile(`^(?s:\s*Error Trace:.*\sError:\s*)`)

// transformError swaps testify's own "Error Trace" text for a stacktrace that skips runner
// and helper frames.
func transformError(err error, stacktrace []StacktraceInfo) error {
	message := strings.TrimSpace(testifyTracePrefix.ReplaceAllLiteralString(err.Error(), ""))
	if len(stacktrace) == 0 {
		return errors.New(message)
	}
	return ErrorWithStacktrace{Message: message, Stacktrace: stacktrace}
}

// errorDetail renders an error the way listeners print it.
func errorDetail(err error) string {
	if es := (ErrorWithStacktrace{}); errors.As(err, &es) {
		return es.Detail()
	}
	return err.Error()
}

var thisPackage = func() string {
	pc, _, _, _ := runtime.Caller(0)
	pkg, _ := splitFunctionName(runtime.FuncForPC(pc).Name())
	return pkg
}()

func currentPackageName() string { return thisPackage }

// getStacktrace walks the caller's stack up to the top-level Run. Frames belonging to this
// package are dropped unless includeRunnerCode is set, and so are the functions whose full
// names are in helperFns.
func getStacktrace(includeRunnerCode bool, helperFns []string) []StacktraceInfo {
	pcs := make([]uintptr, 64)
	pcs = pcs[:runtime.Callers(2, pcs)]
	frames := runtime.CallersFrames(pcs)

	ret := []StacktraceInfo{}
	for {
		frame, more := frames.Next()
		if frame.Function != "" {
			pkg, fn := splitFunctionName(frame.Function)
			if pkg == thisPackage && fn == "Run" {
				break
			}
			runnerFrame := pkg == thisPackage && !includeRunnerCode
			if !runnerFrame && !slices.Contains(helperFns, frame.Function) {
				ret = append(ret, StacktraceInfo{
					FileName: path.Base(frame.File),
					Package:  pkg,
					Function: fn,
					Line:     frame.Line,
				})
			}
		}
		if !more {
			break
		}
	}
	return ret
}

// splitFunctionName turns "example.com/a/b.(*T).Method" into "example.com/a/b" and "(*T).Method".
func splitFunctionName(fullName string) (string, string) {
	dir, last := "", fullName
	if slash := strings.LastIndex(fullName, "/"); slash >= 0 {
		dir, last = fullName[:slash+1], fullName[slash+1:]
	}
	pkg, fn, _ := strings.Cut(last, ".")
	return dir + pkg, fn
}
