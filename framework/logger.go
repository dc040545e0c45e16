package framework

import (
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"
)

const capturedTimeFormat = "15:04:05.000"

// Logger is the minimal output interface used for per-test debug output. Component logging
// goes through zap; see NewZapLogger for how the two are joined.
type Logger interface {
	Println(args ...interface{})
	Printf(message string, args ...interface{})
}

// CapturedMessage is one line of a test's debug output.
type CapturedMessage struct {
	Time    time.Time
	Message string
}

type CapturedOutput []CapturedMessage

// ToString formats the output one message per line, each starting with prefix and the time.
func (output CapturedOutput) ToString(prefix string) string {
	var b strings.Builder
	for i, m := range output {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%s[%s] %s", prefix, m.Time.Format(capturedTimeFormat), m.Message)
	}
	return b.String()
}

// CapturingLogger keeps the debug output of a test scope.
//
// While a scope runs a subtest, the subtest's logger is attached as a child and messages go to
// it instead. A browser session opened by an outer scope therefore logs into whichever test
// is currently driving it, and each retry attempt of that test starts with a clean logger.
type CapturingLogger struct {
	output   CapturedOutput
	children []*CapturingLogger
	lock     sync.Mutex
}

func (l *CapturingLogger) Println(args ...interface{}) {
	l.capture(strings.TrimRight(fmt.Sprintln(args...), "\r\n"))
}

func (l *CapturingLogger) Printf(message string, args ...interface{}) {
	l.capture(fmt.Sprintf(message, args...))
}

func (l *CapturingLogger) capture(message string) {
	l.deliver(CapturedMessage{Time: time.Now(), Message: message})
}

func (l *CapturingLogger) deliver(m CapturedMessage) {
	l.lock.Lock()
	children := slices.Clone(l.children)
	if len(children) == 0 {
		l.output = append(l.output, m)
	}
	l.lock.Unlock()
	for _, c := range children {
		c.deliver(m)
	}
}

// Output returns a copy of everything captured so far.
func (l *CapturingLogger) Output() CapturedOutput {
	l.lock.Lock()
	defer l.lock.Unlock()
	return slices.Clone(l.output)
}

// AddChildLogger starts forwarding to child. What the parent captured before the child was
// attached is copied to the front of the child's output, so the subtest's output shows the
// setup that led up to it.
func (l *CapturingLogger) AddChildLogger(child *CapturingLogger) {
	l.lock.Lock()
	l.children = append(l.children, child)
	earlier := slices.Clone(l.output)
	l.lock.Unlock()

	child.lock.Lock()
	child.output = append(earlier, child.output...)
	child.lock.Unlock()
}

func (l *CapturingLogger) RemoveChildLogger(child *CapturingLogger) {
	l.lock.Lock()
	defer l.lock.Unlock()
	if i := slices.Index(l.children, child); i >= 0 {
		l.children = slices.Delete(l.children, i, i+1)
	}
}
