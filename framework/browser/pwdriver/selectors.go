package pwdriver

import (
	"fmt"
	"strconv"

	"github.com/qaharness/uiharness/framework/browser"
)

// Selector converts a Locator into a Playwright selector string.
func Selector(loc browser.Locator) (string, error) {
	switch loc.Strategy {
	case browser.ByID:
		return "id=" + loc.Selector, nil
	case browser.ByXPath:
		return "xpath=" + loc.Selector, nil
	case browser.ByCSS, browser.ByTagName:
		return "css=" + loc.Selector, nil
	case browser.ByName:
		return fmt.Sprintf("css=[name=%s]", strconv.Quote(loc.Selector)), nil
	case browser.ByClassName:
		return "css=." + loc.Selector, nil
	case browser.ByLinkText:
		return fmt.Sprintf("css=a:text-is(%s)", strconv.Quote(loc.Selector)), nil
	default:
		return "", fmt.Errorf("unsupported locator strategy %q", loc.Strategy)
	}
}
