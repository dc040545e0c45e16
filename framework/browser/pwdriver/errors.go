package pwdriver

import (
	"errors"
	"fmt"

	"github.com/playwright-community/playwright-go"

	"github.com/qaharness/uiharness/framework/browser"
)

// translateActionError maps a Playwright failure from an element action. Actions on a
// located element only time out when the element never became actionable.
func translateActionError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, playwright.ErrTimeout) {
		return fmt.Errorf("%w: %s", browser.ErrElementNotInteractable, err)
	}
	return err
}
