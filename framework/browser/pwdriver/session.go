package pwdriver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/playwright-community/playwright-go"
	"go.uber.org/zap"

	"github.com/qaharness/uiharness/framework/browser"
	"github.com/qaharness/uiharness/framework/helpers"
)

const lookupPollInterval = 100 * time.Millisecond

type session struct {
	browser      playwright.Browser
	bctx         playwright.BrowserContext
	windows      *windowRegistry[playwright.Page]
	dialogs      *dialogQueue[playwright.Dialog]
	frame        playwright.Frame
	implicitWait time.Duration
	logger       *zap.Logger
}

func newSession(b playwright.Browser, bctx playwright.BrowserContext, first playwright.Page, logger *zap.Logger) *session {
	s := &session{
		browser: b,
		bctx:    bctx,
		windows: newWindowRegistry(first),
		dialogs: newDialogQueue[playwright.Dialog](),
		logger:  logger,
	}
	s.watch(first)
	bctx.OnPage(func(p playwright.Page) {
		s.windows.track(p)
		s.watch(p)
	})
	return s
}

func (s *session) watch(p playwright.Page) {
	p.OnDialog(func(d playwright.Dialog) {
		if !s.dialogs.push(d) {
			s.logger.Warn("too many unhandled dialogs, dismissing", zap.String("message", d.Message()))
			_ = d.Dismiss()
		}
	})
}

func (s *session) page() playwright.Page {
	p, _ := s.windows.currentPage()
	return p
}

// scope is the frame that lookups run in.
func (s *session) scope() playwright.Frame {
	if s.frame != nil {
		return s.frame
	}
	return s.page().MainFrame()
}

func (s *session) Navigate(url string) error {
	s.frame = nil
	_, err := s.page().Goto(url)
	return err
}

func (s *session) CurrentURL() (string, error) { return s.page().URL(), nil }

func (s *session) Refresh() error {
	s.frame = nil
	_, err := s.page().Reload()
	return err
}

func (s *session) Back() error {
	s.frame = nil
	_, err := s.page().GoBack()
	return err
}

func (s *session) Forward() error {
	s.frame = nil
	_, err := s.page().GoForward()
	return err
}

func (s *session) MaximizeWindow() error {
	return s.page().SetViewportSize(browser.WindowWidth, browser.WindowHeight)
}

// SetImplicitWait makes FindElement keep polling for up to d, the way a WebDriver implicit
// wait does. Playwright lookups never wait on their own.
func (s *session) SetImplicitWait(d time.Duration) error {
	s.implicitWait = d
	return nil
}

func (s *session) FindElement(loc browser.Locator) (browser.Element, error) {
	sel, err := Selector(loc)
	if err != nil {
		return nil, err
	}
	all := s.scope().Locator(sel)
	found, ok, err := helpers.PollUntil(context.Background(), s.implicitWait, lookupPollInterval,
		func() (playwright.Locator, bool, error) {
			n, err := all.Count()
			return all.First(), n > 0, err
		})
	if !ok {
		if err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s", browser.ErrElementNotFound, loc)
	}
	return &element{session: s, loc: found}, nil
}

func (s *session) FindElements(loc browser.Locator) ([]browser.Element, error) {
	sel, err := Selector(loc)
	if err != nil {
		return nil, err
	}
	return s.all(s.scope().Locator(sel))
}

func (s *session) all(l playwright.Locator) ([]browser.Element, error) {
	n, err := l.Count()
	if err != nil {
		return nil, err
	}
	ret := make([]browser.Element, 0, n)
	for i := 0; i < n; i++ {
		ret = append(ret, &element{session: s, loc: l.Nth(i)})
	}
	return ret, nil
}

func (s *session) ReadyState() (string, error) {
	v, err := s.scope().Evaluate("() => document.readyState")
	if err != nil {
		return "", err
	}
	state, _ := v.(string)
	return state, nil
}

func (s *session) Screenshot() ([]byte, error) {
	return s.page().Screenshot()
}

func (s *session) CurrentWindow() (string, error) {
	_, h := s.windows.currentPage()
	return h, nil
}

func (s *session) Windows() ([]string, error) {
	s.windows.sync(s.bctx.Pages())
	return s.windows.list(), nil
}

func (s *session) SwitchToWindow(handle string) error {
	p, ok := s.windows.lookup(handle)
	if !ok {
		return fmt.Errorf("no window with handle %q", handle)
	}
	s.windows.setCurrent(p)
	s.frame = nil
	return p.BringToFront()
}

func (s *session) SwitchToFrame(frame browser.Element) error {
	el, ok := frame.(*element)
	if !ok {
		return fmt.Errorf("frame %T is not a playwright element", frame)
	}
	handle, err := el.loc.ElementHandle()
	if err != nil {
		return err
	}
	f, err := handle.ContentFrame()
	if err != nil {
		return err
	}
	if f == nil {
		return fmt.Errorf("%w: element is not a frame", browser.ErrElementNotFound)
	}
	s.frame = f
	return nil
}

func (s *session) SwitchToDefaultContent() error {
	s.frame = nil
	return nil
}

func (s *session) AcceptAlert() error {
	d := s.dialogs.take()
	if !d.IsDefined() {
		return browser.ErrNoAlert
	}
	return d.Value().Accept()
}

func (s *session) DismissAlert() error {
	d := s.dialogs.take()
	if !d.IsDefined() {
		return browser.ErrNoAlert
	}
	return d.Value().Dismiss()
}

func (s *session) AlertText() (string, error) {
	d := s.dialogs.peek()
	if !d.IsDefined() {
		return "", browser.ErrNoAlert
	}
	return d.Value().Message(), nil
}

func (s *session) MoveTo(el browser.Element) error {
	_, _, err := s.moveTo(el)
	return err
}

func (s *session) RightClick(el browser.Element) error {
	x, y, err := s.moveTo(el)
	if err != nil {
		return err
	}
	return s.page().Mouse().Click(x, y, playwright.MouseClickOptions{Button: playwright.MouseButtonRight})
}

func (s *session) MouseDown(el browser.Element) error {
	if _, _, err := s.moveTo(el); err != nil {
		return err
	}
	return s.page().Mouse().Down()
}

func (s *session) MouseUp(el browser.Element) error {
	if _, _, err := s.moveTo(el); err != nil {
		return err
	}
	return s.page().Mouse().Up()
}

// moveTo puts the mouse at the center of the element.
func (s *session) moveTo(target browser.Element) (float64, float64, error) {
	el, ok := target.(*element)
	if !ok {
		return 0, 0, fmt.Errorf("element %T is not a playwright element", target)
	}
	box, err := el.loc.BoundingBox()
	if err != nil {
		return 0, 0, translateActionError(err)
	}
	if box == nil {
		return 0, 0, fmt.Errorf("%w: element has no box", browser.ErrElementNotInteractable)
	}
	x, y := box.X+box.Width/2, box.Y+box.Height/2
	return x, y, s.page().Mouse().Move(x, y)
}

func (s *session) Quit() error {
	s.logger.Info("closing playwright browser")
	return errors.Join(s.bctx.Close(), s.browser.Close())
}
