package seleniumdriver

import (
	"fmt"
	"strings"

	"github.com/tebeka/selenium"

	"github.com/qaharness/uiharness/framework/browser"
	"github.com/qaharness/uiharness/framework/opt"
)

type element struct {
	wd selenium.WebDriver
	el selenium.WebElement
}

func wrapElements(wd selenium.WebDriver, els []selenium.WebElement) []browser.Element {
	ret := make([]browser.Element, 0, len(els))
	for _, el := range els {
		ret = append(ret, &element{wd: wd, el: el})
	}
	return ret
}

func (e *element) Click() error               { return translateError(e.el.Click()) }
func (e *element) Clear() error               { return translateError(e.el.Clear()) }
func (e *element) SendKeys(text string) error { return translateError(e.el.SendKeys(text)) }

func (e *element) Text() (string, error) {
	t, err := e.el.Text()
	return t, translateError(err)
}

func (e *element) IsDisplayed() (bool, error) {
	b, err := e.el.IsDisplayed()
	return b, translateError(err)
}

func (e *element) IsEnabled() (bool, error) {
	b, err := e.el.IsEnabled()
	return b, translateError(err)
}

// Attribute reports an unset attribute as None. The WebDriver protocol returns null for it,
// which tebeka/selenium v0.9.9 reports as an error with the text "nil return value".
func (e *element) Attribute(name string) (opt.Maybe[string], error) {
	v, err := e.el.GetAttribute(name)
	if err != nil {
		if strings.Contains(err.Error(), "nil return value") {
			return opt.None[string](), nil
		}
		return opt.None[string](), translateError(err)
	}
	return opt.Some(v), nil
}

func (e *element) ScrollIntoView() error {
	_, err := e.wd.ExecuteScript("arguments[0].scrollIntoView(true);", []interface{}{e.el})
	return translateError(err)
}

func (e *element) FindElements(loc browser.Locator) ([]browser.Element, error) {
	els, err := e.el.FindElements(string(loc.Strategy), loc.Selector)
	if err != nil {
		return nil, translateError(err)
	}
	return wrapElements(e.wd, els), nil
}

// SelectIndex clicks the option, which is how WebDriver selects in a <select>.
func (e *element) SelectIndex(i int) error {
	options, err := e.el.FindElements(selenium.ByTagName, "option")
	if err != nil {
		return translateError(err)
	}
	if i < 0 || i >= len(options) {
		return fmt.Errorf("%w: index %d of %d", browser.ErrInvalidSelectOption, i, len(options))
	}
	return translateError(options[i].Click())
}

func (e *element) center() (selenium.Point, error) {
	loc, err := e.el.LocationInView()
	if err != nil {
		return selenium.Point{}, translateError(err)
	}
	size, err := e.el.Size()
	if err != nil {
		return selenium.Point{}, translateError(err)
	}
	return selenium.Point{X: loc.X + size.Width/2, Y: loc.Y + size.Height/2}, nil
}
