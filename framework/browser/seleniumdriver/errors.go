package seleniumdriver

import (
	"errors"
	"fmt"

	"github.com/tebeka/selenium"

	"github.com/qaharness/uiharness/framework/browser"
)

// translateError maps W3C WebDriver error codes onto the browser package's errors. Anything
// it does not recognize is returned unchanged.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	var se *selenium.Error
	if !errors.As(err, &se) {
		return err
	}
	var sentinel error
	switch se.Err {
	case "no such element", "stale element reference":
		sentinel = browser.ErrElementNotFound
	case "no such alert":
		sentinel = browser.ErrNoAlert
	case "element not interactable", "element click intercepted", "invalid element state":
		sentinel = browser.ErrElementNotInteractable
	default:
		return err
	}
	return fmt.Errorf("%w: %s", sentinel, se.Message)
}
