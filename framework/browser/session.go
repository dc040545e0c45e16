package browser

import (
	"time"

	"github.com/qaharness/uiharness/framework/opt"
)

// Session is one live browser under automation. The selenium and playwright packages
// implement it; Page builds the waits and conveniences on top.
//
// A Session belongs to a single test and is not safe for concurrent use. Lookups that match
// nothing return an error matching ErrElementNotFound, and dialog operations with no dialog
// open return one matching ErrNoAlert.
type Session interface {
	Navigate(url string) error
	CurrentURL() (string, error)
	Refresh() error
	Back() error
	Forward() error

	MaximizeWindow() error
	// SetImplicitWait sets how long a lookup keeps trying before reporting that nothing matched.
	SetImplicitWait(d time.Duration) error

	FindElement(locator Locator) (Element, error)
	FindElements(locator Locator) ([]Element, error)

	// ReadyState is document.readyState of the current page.
	ReadyState() (string, error)
	Screenshot() ([]byte, error)

	CurrentWindow() (string, error)
	// Windows lists the open window handles in the order the windows were opened.
	Windows() ([]string, error)
	SwitchToWindow(handle string) error
	SwitchToFrame(frame Element) error
	SwitchToDefaultContent() error

	AcceptAlert() error
	DismissAlert() error
	AlertText() (string, error)

	// Pointer gestures, performed at the center of the element.
	MoveTo(el Element) error
	RightClick(el Element) error
	MouseDown(el Element) error
	MouseUp(el Element) error

	Quit() error
}

// Element is a found element. It may go stale if the page changes, so it should be used right
// after it is found.
type Element interface {
	Click() error
	Clear() error
	SendKeys(text string) error
	Text() (string, error)
	Attribute(name string) (opt.Maybe[string], error)
	IsDisplayed() (bool, error)
	IsEnabled() (bool, error)
	ScrollIntoView() error
	FindElements(locator Locator) ([]Element, error)

	// SelectIndex selects the option at index i of a <select> element.
	SelectIndex(i int) error
}
