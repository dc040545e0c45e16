package browser

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrTimeout is matched by every *TimeoutError.
	ErrTimeout = errors.New("timed out")

	// ErrElementNotFound means a locator matched nothing at the moment it was looked up.
	ErrElementNotFound = errors.New("element not found")

	// ErrElementNotInteractable means the element was found but the browser refused the action,
	// for instance because another element covers it.
	ErrElementNotInteractable = errors.New("element not interactable")

	// ErrInvalidSelectOption means a dropdown has no option with the requested text, value or index.
	ErrInvalidSelectOption = errors.New("no such option in dropdown")

	// ErrNoAlert means no JavaScript dialog is open.
	ErrNoAlert = errors.New("no alert present")

	// ErrUnsupportedBrowser is returned by ParseKind and ParseEngine.
	ErrUnsupportedBrowser = errors.New("unsupported browser")
)

// TimeoutError reports a wait that expired. It matches ErrTimeout and nothing else; the lookup
// errors seen while polling are not part of it.
type TimeoutError struct {
	Waiting string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("timed out after %s waiting for %s", e.Timeout, e.Waiting)
}

func (e *TimeoutError) Is(target error) bool { return target == ErrTimeout }

// ElementError is a failed action on the element a locator points to.
type ElementError struct {
	Op      string
	Locator Locator
	Err     error
}

func (e *ElementError) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Op, e.Locator, e.Err)
}

func (e *ElementError) Unwrap() error { return e.Err }

// AssertionFailure is returned by page checks when the page shows something other than what
// was expected.
type AssertionFailure struct {
	What     string
	Expected string
	Actual   string
}

func (e *AssertionFailure) Error() string {
	return fmt.Sprintf("%s: expected %q but was %q", e.What, e.Expected, e.Actual)
}
