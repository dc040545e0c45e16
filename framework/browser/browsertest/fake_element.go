package browsertest

import (
	"fmt"

	"github.com/qaharness/uiharness/framework/browser"
	"github.com/qaharness/uiharness/framework/opt"
)

// Element is a fake browser.Element. Its fields may be set before it is registered with
// Session.Put; after that, use the methods, which take the session lock.
type Element struct {
	Name      string
	Content   string
	Attrs     map[string]string
	Hidden    bool
	Disabled  bool
	FrameName string

	// HiddenForPolls makes the element report itself hidden for this many visibility checks.
	HiddenForPolls int

	// Options are the <option> children of a <select>.
	Options  []*Element
	Selected int

	ClickErr error
	OnClick  func()

	Value  string
	Clicks int

	session *Session
}

func NewElement(name string) *Element {
	return &Element{Name: name, Attrs: map[string]string{}, Selected: -1}
}

func (e *Element) WithText(text string) *Element {
	e.Content = text
	return e
}

func (e *Element) WithAttr(name, value string) *Element {
	e.Attrs[name] = value
	return e
}

// Option is a convenience for building <select> children.
func Option(value, text string) *Element {
	return NewElement("option " + value).WithAttr("value", value).WithText(text)
}

func (e *Element) lock() func() {
	if e.session == nil {
		return func() {}
	}
	e.session.lock.Lock()
	return e.session.lock.Unlock
}

// SetHidden changes visibility while a test is running.
func (e *Element) SetHidden(hidden bool) {
	defer e.lock()()
	e.Hidden = hidden
}

func (e *Element) TypedValue() string {
	defer e.lock()()
	return e.Value
}

func (e *Element) ClickCount() int {
	defer e.lock()()
	return e.Clicks
}

func (e *Element) SelectedIndex() int {
	defer e.lock()()
	return e.Selected
}

func (e *Element) Click() error {
	unlock := e.lock()
	if e.ClickErr != nil {
		unlock()
		return e.ClickErr
	}
	e.Clicks++
	if e.session != nil {
		e.session.record("click:%s", e.Name)
	}
	onClick := e.OnClick
	unlock()
	if onClick != nil {
		onClick()
	}
	return nil
}

func (e *Element) Clear() error {
	defer e.lock()()
	e.Value = ""
	return nil
}

func (e *Element) SendKeys(text string) error {
	defer e.lock()()
	e.Value += text
	return nil
}

func (e *Element) Text() (string, error) {
	defer e.lock()()
	return e.Content, nil
}

func (e *Element) Attribute(name string) (opt.Maybe[string], error) {
	defer e.lock()()
	v, ok := e.Attrs[name]
	if !ok {
		return opt.None[string](), nil
	}
	return opt.Some(v), nil
}

func (e *Element) IsDisplayed() (bool, error) {
	defer e.lock()()
	if e.HiddenForPolls > 0 {
		e.HiddenForPolls--
		return false, nil
	}
	return !e.Hidden, nil
}

func (e *Element) IsEnabled() (bool, error) {
	defer e.lock()()
	return !e.Disabled, nil
}

func (e *Element) ScrollIntoView() error {
	defer e.lock()()
	if e.session != nil {
		e.session.record("scroll:%s", e.Name)
	}
	return nil
}

func (e *Element) FindElements(loc browser.Locator) ([]browser.Element, error) {
	defer e.lock()()
	if loc != browser.TagName("option") {
		return nil, nil
	}
	ret := make([]browser.Element, 0, len(e.Options))
	for _, o := range e.Options {
		ret = append(ret, o)
	}
	return ret, nil
}

func (e *Element) SelectIndex(i int) error {
	defer e.lock()()
	if i < 0 || i >= len(e.Options) {
		return fmt.Errorf("option index %d out of range", i)
	}
	e.Selected = i
	return nil
}
