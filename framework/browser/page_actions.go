package browser

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/qaharness/uiharness/framework/helpers"
)

// The gesture and dropdown operations look their elements up once, without waiting.

func (p *Page) HoverOver(loc Locator) error {
	p.logger.Info("hovering over element", zap.Stringer("locator", loc))
	el, err := p.find("hover over", loc)
	if err != nil {
		return err
	}
	if err := p.session.MoveTo(el); err != nil {
		return &ElementError{Op: "hover over", Locator: loc, Err: err}
	}
	return nil
}

// HoverAndClick hovers over one element, typically a menu, and then clicks another that the
// hover revealed.
func (p *Page) HoverAndClick(hover, click Locator) error {
	p.logger.Info("hovering and clicking", zap.Stringer("hover", hover), zap.Stringer("click", click))
	if err := p.HoverOver(hover); err != nil {
		return err
	}
	el, err := p.find("click", click)
	if err != nil {
		return err
	}
	if err := el.Click(); err != nil {
		return &ElementError{Op: "click", Locator: click, Err: fmt.Errorf("%w: %s", ErrElementNotInteractable, err)}
	}
	return nil
}

func (p *Page) RightClick(loc Locator) error {
	p.logger.Info("right-clicking on element", zap.Stringer("locator", loc))
	return p.gesture("right-click", loc, p.session.RightClick)
}

func (p *Page) ClickAndHold(loc Locator) error {
	p.logger.Info("clicking and holding element", zap.Stringer("locator", loc))
	return p.gesture("click and hold", loc, p.session.MouseDown)
}

func (p *Page) Release(loc Locator) error {
	p.logger.Info("releasing element", zap.Stringer("locator", loc))
	return p.gesture("release", loc, p.session.MouseUp)
}

func (p *Page) gesture(op string, loc Locator, action func(Element) error) error {
	el, err := p.find(op, loc)
	if err != nil {
		return err
	}
	if err := action(el); err != nil {
		return &ElementError{Op: op, Locator: loc, Err: err}
	}
	return nil
}

// SelectByVisibleText selects the first option whose text, with surrounding space trimmed,
// equals text.
func (p *Page) SelectByVisibleText(loc Locator, text string) error {
	p.logger.Info("selecting dropdown option by visible text", zap.Stringer("locator", loc), zap.String("text", text))
	return p.selectOption(loc, "text "+strconv.Quote(text), func(i int, option Element) (bool, error) {
		t, err := option.Text()
		return strings.TrimSpace(t) == text, err
	})
}

func (p *Page) SelectByValue(loc Locator, value string) error {
	p.logger.Info("selecting dropdown option by value", zap.Stringer("locator", loc), zap.String("value", value))
	return p.selectOption(loc, "value "+strconv.Quote(value), func(i int, option Element) (bool, error) {
		v, err := option.Attribute("value")
		return v.IsDefined() && v.Value() == value, err
	})
}

func (p *Page) SelectByIndex(loc Locator, index int) error {
	p.logger.Info("selecting dropdown option by index", zap.Stringer("locator", loc), zap.Int("index", index))
	return p.selectOption(loc, "index "+strconv.Itoa(index), func(i int, _ Element) (bool, error) {
		return i == index, nil
	})
}

func (p *Page) selectOption(loc Locator, want string, match func(int, Element) (bool, error)) error {
	dropdown, err := p.find("select from", loc)
	if err != nil {
		return err
	}
	options, err := dropdown.FindElements(TagName("option"))
	if err != nil {
		return &ElementError{Op: "list options of", Locator: loc, Err: err}
	}
	for i, option := range options {
		ok, err := match(i, option)
		if err != nil {
			return &ElementError{Op: "read option of", Locator: loc, Err: err}
		}
		if ok {
			if err := dropdown.SelectIndex(i); err != nil {
				return &ElementError{Op: "select option of", Locator: loc, Err: err}
			}
			return nil
		}
	}
	return &ElementError{Op: "select from", Locator: loc, Err: fmt.Errorf("%w: %s", ErrInvalidSelectOption, want)}
}

// SwitchToFrame makes later lookups apply inside the frame element.
func (p *Page) SwitchToFrame(loc Locator) error {
	p.logger.Info("switching to frame", zap.Stringer("locator", loc))
	frame, err := p.find("switch to frame", loc)
	if err != nil {
		return err
	}
	if err := p.session.SwitchToFrame(frame); err != nil {
		return &ElementError{Op: "switch to frame", Locator: loc, Err: err}
	}
	return nil
}

func (p *Page) SwitchToDefaultContent() error {
	p.logger.Info("switching to default content")
	return p.session.SwitchToDefaultContent()
}

// SwitchToNewWindow switches to the most recently opened window other than the current one
// and returns the handle of the window it switched away from. If there is no other window it
// stays put and still returns the current handle.
func (p *Page) SwitchToNewWindow() (string, error) {
	parent, err := p.session.CurrentWindow()
	if err != nil {
		return "", err
	}
	handles, err := p.session.Windows()
	if err != nil {
		return "", err
	}
	for i := len(handles) - 1; i >= 0; i-- {
		if handles[i] != parent {
			p.logger.Info("switching to new window", zap.String("parent", parent), zap.String("window", handles[i]))
			if err := p.session.SwitchToWindow(handles[i]); err != nil {
				return "", err
			}
			return parent, nil
		}
	}
	p.logger.Warn("no new window to switch to", zap.String("current", parent))
	return parent, nil
}

func (p *Page) SwitchToParentWindow(handle string) error {
	p.logger.Info("switching to parent window", zap.String("window", handle))
	return p.session.SwitchToWindow(handle)
}

func (p *Page) AcceptAlert() error {
	p.logger.Info("accepting alert")
	_, err := onAlert(p, "accept", func() (struct{}, error) { return struct{}{}, p.session.AcceptAlert() })
	return err
}

func (p *Page) DismissAlert() error {
	p.logger.Info("dismissing alert")
	_, err := onAlert(p, "dismiss", func() (struct{}, error) { return struct{}{}, p.session.DismissAlert() })
	return err
}

func (p *Page) AlertText() (string, error) {
	p.logger.Info("getting alert text")
	return onAlert(p, "read", p.session.AlertText)
}

// onAlert retries action while no dialog is open, up to the interaction timeout.
func onAlert[V any](p *Page, what string, action func() (V, error)) (V, error) {
	var empty V
	var failure error
	value, ok, _ := helpers.PollUntil(context.Background(), p.timeouts.Interaction, p.timeouts.Poll, func() (V, bool, error) {
		v, err := action()
		if err == nil {
			return v, true, nil
		}
		if !errors.Is(err, ErrNoAlert) {
			failure = err
			return v, true, nil
		}
		return v, false, err
	})
	if failure != nil {
		return empty, fmt.Errorf("%s alert: %w", what, failure)
	}
	if !ok {
		return empty, &TimeoutError{Waiting: "alert to be present", Timeout: p.timeouts.Interaction}
	}
	return value, nil
}
