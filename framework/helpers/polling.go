package helpers

import (
	"context"
	"time"
)

// PollUntil calls check immediately and then once per interval until check reports done, the
// timeout elapses, or ctx is done. It returns the value from the call that reported done and
// true; otherwise the zero value, false, and the last error check returned (which may be nil).
//
// Errors from check do not stop the polling. A page element that cannot be found yet is the
// usual case: callers report the timeout, not the lookup error.
func PollUntil[V any](
	ctx context.Context,
	timeout time.Duration,
	interval time.Duration,
	check func() (V, bool, error),
) (V, bool, error) {
	var empty V
	var lastErr error
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		value, done, err := check()
		if err == nil && done {
			return value, true, nil
		}
		if err != nil {
			lastErr = err
		}
		select {
		case <-ctx.Done():
			return empty, false, lastErr
		case <-deadline.C:
			return empty, false, lastErr
		case <-ticker.C:
		}
	}
}

// AssertEventually calls testFn at intervals until it returns true; if the timeout elapses
// first, the test fails. Unlike assert.Eventually it runs on the calling goroutine, which the
// uitest scope requires since FailNow panics.
func AssertEventually(
	t TestContext,
	testFn func() bool,
	timeout time.Duration,
	interval time.Duration,
	failureMsgFormat string,
	failureMsgArgs ...interface{},
) bool {
	_, ok, _ := PollUntil(context.Background(), timeout, interval, func() (struct{}, bool, error) {
		return struct{}{}, testFn(), nil
	})
	if !ok {
		t.Errorf(failureMsgFormat, failureMsgArgs...)
	}
	return ok
}

// RequireEventually is AssertEventually followed by FailNow on failure.
func RequireEventually(
	t TestContext,
	testFn func() bool,
	timeout time.Duration,
	interval time.Duration,
	failureMsgFormat string,
	failureMsgArgs ...interface{},
) {
	if !AssertEventually(t, testFn, timeout, interval, failureMsgFormat, failureMsgArgs...) {
		t.FailNow()
	}
}
