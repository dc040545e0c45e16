package pwdriver

import (
	"fmt"

	"github.com/playwright-community/playwright-go"

	"github.com/qaharness/uiharness/framework/browser"
	"github.com/qaharness/uiharness/framework/opt"
)

type element struct {
	session *session
	loc     playwright.Locator
}

func (e *element) Click() error               { return translateActionError(e.loc.Click()) }
func (e *element) Clear() error               { return translateActionError(e.loc.Clear()) }
func (e *element) SendKeys(text string) error { return translateActionError(e.loc.PressSequentially(text)) }
func (e *element) Text() (string, error)      { return e.loc.InnerText() }
func (e *element) IsDisplayed() (bool, error) { return e.loc.IsVisible() }
func (e *element) IsEnabled() (bool, error)   { return e.loc.IsEnabled() }
func (e *element) ScrollIntoView() error      { return translateActionError(e.loc.ScrollIntoViewIfNeeded()) }

func (e *element) Attribute(name string) (opt.Maybe[string], error) {
	v, err := e.loc.Evaluate("(el, name) => el.getAttribute(name)", name)
	if err != nil {
		return opt.None[string](), err
	}
	if s, ok := v.(string); ok {
		return opt.Some(s), nil
	}
	return opt.None[string](), nil
}

func (e *element) FindElements(loc browser.Locator) ([]browser.Element, error) {
	sel, err := Selector(loc)
	if err != nil {
		return nil, err
	}
	return e.session.all(e.loc.Locator(sel))
}

func (e *element) SelectIndex(i int) error {
	n, err := e.loc.Locator("option").Count()
	if err != nil {
		return err
	}
	if i < 0 || i >= n {
		return fmt.Errorf("%w: index %d of %d", browser.ErrInvalidSelectOption, i, n)
	}
	_, err = e.loc.SelectOption(playwright.SelectOptionValues{Indexes: &[]int{i}})
	return translateActionError(err)
}
