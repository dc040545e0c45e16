package browser

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/qaharness/uiharness/framework/helpers"
	"github.com/qaharness/uiharness/framework/opt"
)

// Timeouts used by Page. The zero value of a field means the default.
type Timeouts struct {
	Interaction time.Duration
	PageLoad    time.Duration
	Implicit    time.Duration
	Poll        time.Duration
}

const (
	DefaultInteractionTimeout = 10 * time.Second
	DefaultPageLoadTimeout    = 30 * time.Second
	DefaultImplicitWait       = 20 * time.Second
	DefaultPollInterval       = 500 * time.Millisecond
)

func (t Timeouts) withDefaults() Timeouts {
	if t.Interaction <= 0 {
		t.Interaction = DefaultInteractionTimeout
	}
	if t.PageLoad <= 0 {
		t.PageLoad = DefaultPageLoadTimeout
	}
	if t.Implicit <= 0 {
		t.Implicit = DefaultImplicitWait
	}
	if t.Poll <= 0 {
		t.Poll = DefaultPollInterval
	}
	return t
}

// Visibility is the result of Presence.
type Visibility int

const (
	NotPresent Visibility = iota
	Hidden
	Displayed
)

func (v Visibility) String() string {
	switch v {
	case Hidden:
		return "hidden"
	case Displayed:
		return "displayed"
	default:
		return "not present"
	}
}

// Page is the facade that page objects use to drive a Session: every interaction waits for
// its element the same way, reports failures as the errors in this package, and is logged.
type Page struct {
	session  Session
	logger   *zap.Logger
	timeouts Timeouts
}

// PageOption configures NewPage.
type PageOption = helpers.ConfigOption[Page]

// WithTimeouts overrides the default timeouts. Zero fields keep their defaults.
func WithTimeouts(t Timeouts) PageOption {
	return helpers.ConfigOptionFunc[Page](func(p *Page) error {
		p.timeouts = t.withDefaults()
		return nil
	})
}

func WithLogger(logger *zap.Logger) PageOption {
	return helpers.ConfigOptionFunc[Page](func(p *Page) error {
		if logger == nil {
			return errors.New("nil logger")
		}
		p.logger = logger
		return nil
	})
}

func NewPage(session Session, options ...PageOption) (*Page, error) {
	p := &Page{
		session:  session,
		logger:   zap.NewNop(),
		timeouts: Timeouts{}.withDefaults(),
	}
	if err := helpers.ApplyOptions(p, options...); err != nil {
		return nil, err
	}
	return p, nil
}

// Session is the underlying driver session.
func (p *Page) Session() Session { return p.session }

func (p *Page) Timeouts() Timeouts { return p.timeouts }

// WaitVisible polls until the locator matches an element that is displayed. Lookup failures
// while polling are not reported; if time runs out the result is a *TimeoutError.
func (p *Page) WaitVisible(loc Locator, timeout time.Duration) (Element, error) {
	p.logger.Info("waiting for element to be visible", zap.Stringer("locator", loc), zap.Duration("timeout", timeout))
	return p.waitFor(loc, timeout, "visibility of "+loc.String(), false)
}

// WaitClickable is WaitVisible that also requires the element to be enabled.
func (p *Page) WaitClickable(loc Locator, timeout time.Duration) (Element, error) {
	p.logger.Info("waiting for element to be clickable", zap.Stringer("locator", loc), zap.Duration("timeout", timeout))
	return p.waitFor(loc, timeout, "element to be clickable: "+loc.String(), true)
}

func (p *Page) waitFor(loc Locator, timeout time.Duration, waiting string, enabled bool) (Element, error) {
	el, ok, lastErr := helpers.PollUntil(context.Background(), timeout, p.timeouts.Poll, func() (Element, bool, error) {
		el, err := p.session.FindElement(loc)
		if err != nil {
			return nil, false, err
		}
		if shown, err := el.IsDisplayed(); err != nil || !shown {
			return nil, false, err
		}
		if enabled {
			if ok, err := el.IsEnabled(); err != nil || !ok {
				return nil, false, err
			}
		}
		return el, true, nil
	})
	if !ok {
		p.logger.Debug("wait expired", zap.String("waiting", waiting), zap.NamedError("lastError", lastErr))
		return nil, &TimeoutError{Waiting: waiting, Timeout: timeout}
	}
	return el, nil
}

// Click waits for the element to be clickable and clicks it.
func (p *Page) Click(loc Locator) error {
	p.logger.Info("clicking on element", zap.Stringer("locator", loc))
	el, err := p.WaitClickable(loc, p.timeouts.Interaction)
	if err != nil {
		return err
	}
	if err := el.Click(); err != nil {
		if !errors.Is(err, ErrElementNotInteractable) {
			err = fmt.Errorf("%w: %s", ErrElementNotInteractable, err)
		}
		return &ElementError{Op: "click", Locator: loc, Err: err}
	}
	return nil
}

// EnterText waits for the element to be visible, clears it and types text into it.
func (p *Page) EnterText(loc Locator, text string) error {
	p.logger.Info("entering text", zap.Stringer("locator", loc))
	el, err := p.WaitVisible(loc, p.timeouts.Interaction)
	if err != nil {
		return err
	}
	if err := el.Clear(); err != nil {
		return &ElementError{Op: "clear", Locator: loc, Err: err}
	}
	if err := el.SendKeys(text); err != nil {
		return &ElementError{Op: "type into", Locator: loc, Err: err}
	}
	return nil
}

// SendKeysToElement types into an element that was already found.
func (p *Page) SendKeysToElement(el Element, keys string) error {
	p.logger.Info("sending keys to element")
	return el.SendKeys(keys)
}

// Text waits for the element to be visible and returns its visible text.
func (p *Page) Text(loc Locator) (string, error) {
	p.logger.Info("getting text", zap.Stringer("locator", loc))
	el, err := p.WaitVisible(loc, p.timeouts.Interaction)
	if err != nil {
		return "", err
	}
	text, err := el.Text()
	if err != nil {
		return "", &ElementError{Op: "read text of", Locator: loc, Err: err}
	}
	return text, nil
}

// Attribute waits for the element to be visible and returns the attribute, if it is set.
func (p *Page) Attribute(loc Locator, name string) (opt.Maybe[string], error) {
	p.logger.Info("getting attribute", zap.Stringer("locator", loc), zap.String("attribute", name))
	el, err := p.WaitVisible(loc, p.timeouts.Interaction)
	if err != nil {
		return opt.None[string](), err
	}
	value, err := el.Attribute(name)
	if err != nil {
		return opt.None[string](), &ElementError{Op: "read attribute " + name + " of", Locator: loc, Err: err}
	}
	return value, nil
}

// Presence tells apart an element that is missing from one that is there but hidden. Only
// failures other than not finding the element are returned as errors.
func (p *Page) Presence(loc Locator) (Visibility, error) {
	el, err := p.session.FindElement(loc)
	if errors.Is(err, ErrElementNotFound) {
		return NotPresent, nil
	}
	if err != nil {
		return NotPresent, &ElementError{Op: "find", Locator: loc, Err: err}
	}
	shown, err := el.IsDisplayed()
	if err != nil {
		return NotPresent, &ElementError{Op: "check visibility of", Locator: loc, Err: err}
	}
	if shown {
		return Displayed, nil
	}
	return Hidden, nil
}

// IsDisplayed is false for an element that is not there at all.
func (p *Page) IsDisplayed(loc Locator) (bool, error) {
	v, err := p.Presence(loc)
	return v == Displayed, err
}

// find is an immediate lookup, for the operations that do not wait.
func (p *Page) find(op string, loc Locator) (Element, error) {
	el, err := p.session.FindElement(loc)
	if err != nil {
		if !errors.Is(err, ErrElementNotFound) {
			err = fmt.Errorf("%w: %s", ErrElementNotFound, err)
		}
		return nil, &ElementError{Op: op, Locator: loc, Err: err}
	}
	return el, nil
}

func (p *Page) ScrollTo(loc Locator) error {
	p.logger.Info("scrolling to element", zap.Stringer("locator", loc))
	el, err := p.find("scroll to", loc)
	if err != nil {
		return err
	}
	if err := el.ScrollIntoView(); err != nil {
		return &ElementError{Op: "scroll to", Locator: loc, Err: err}
	}
	return nil
}

// WaitForPageLoad waits for document.readyState to become "complete".
func (p *Page) WaitForPageLoad() error {
	p.logger.Info("waiting for page to load completely")
	_, ok, lastErr := helpers.PollUntil(context.Background(), p.timeouts.PageLoad, p.timeouts.Poll, func() (string, bool, error) {
		state, err := p.session.ReadyState()
		return state, err == nil && state == "complete", err
	})
	if !ok {
		p.logger.Debug("page did not finish loading", zap.NamedError("lastError", lastErr))
		return &TimeoutError{Waiting: "document.readyState to be complete", Timeout: p.timeouts.PageLoad}
	}
	return nil
}

// WaitForLoaderToDisappear waits until the loader is absent or hidden. A loader that is still
// showing when time runs out is logged as a warning and otherwise ignored.
func (p *Page) WaitForLoaderToDisappear(loc Locator, timeout time.Duration) {
	p.logger.Info("waiting for loader to disappear", zap.Stringer("locator", loc))
	_, ok, _ := helpers.PollUntil(context.Background(), timeout, p.timeouts.Poll, func() (Visibility, bool, error) {
		v, err := p.Presence(loc)
		return v, err == nil && v != Displayed, err
	})
	if !ok {
		p.logger.Warn("loader did not disappear within timeout", zap.Stringer("locator", loc), zap.Duration("timeout", timeout))
		return
	}
	p.logger.Info("loader disappeared", zap.Stringer("locator", loc))
}

// WaitForLoaderAndContent gives the loader a chance to appear and then waits for it to go away.
// A loader that never appears is only worth a warning, since the content may have loaded
// before we looked.
func (p *Page) WaitForLoaderAndContent(loc Locator, timeout time.Duration) {
	if _, err := p.waitFor(loc, timeout, "loader "+loc.String()+" to appear", false); err != nil {
		p.logger.Warn("loader did not appear", zap.Stringer("locator", loc), zap.Error(err))
	}
	p.WaitForLoaderToDisappear(loc, timeout)
}

// StaticWait sleeps for d. If ctx is cancelled first it stops early; that is logged, not
// returned as an error.
func (p *Page) StaticWait(ctx context.Context, d time.Duration) {
	p.logger.Debug("static wait", zap.Duration("duration", d))
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
		p.logger.Warn("static wait interrupted", zap.Error(ctx.Err()))
	}
}

func (p *Page) Refresh() error {
	p.logger.Info("refreshing page")
	return p.session.Refresh()
}

func (p *Page) NavigateBack() error {
	p.logger.Info("navigating back")
	return p.session.Back()
}

func (p *Page) NavigateForward() error {
	p.logger.Info("navigating forward")
	return p.session.Forward()
}

func (p *Page) NavigateTo(url string) error {
	p.logger.Info("navigating", zap.String("url", url))
	return p.session.Navigate(url)
}
