package seleniumdriver

import (
	"fmt"
	"time"

	"github.com/tebeka/selenium"
	"go.uber.org/zap"

	"github.com/qaharness/uiharness/framework/browser"
)

type session struct {
	wd      selenium.WebDriver
	windows browser.WindowOrder[string]
	logger  *zap.Logger
}

func newSession(wd selenium.WebDriver, logger *zap.Logger) *session {
	s := &session{wd: wd, logger: logger}
	if _, err := s.CurrentWindow(); err != nil {
		logger.Warn("could not read the initial window handle", zap.Error(err))
	}
	return s
}

func (s *session) Navigate(url string) error { return translateError(s.wd.Get(url)) }

func (s *session) CurrentURL() (string, error) {
	u, err := s.wd.CurrentURL()
	return u, translateError(err)
}

func (s *session) Refresh() error        { return translateError(s.wd.Refresh()) }
func (s *session) Back() error           { return translateError(s.wd.Back()) }
func (s *session) Forward() error        { return translateError(s.wd.Forward()) }
func (s *session) MaximizeWindow() error { return translateError(s.wd.MaximizeWindow("")) }

func (s *session) Screenshot() ([]byte, error) {
	b, err := s.wd.Screenshot()
	return b, translateError(err)
}

func (s *session) CurrentWindow() (string, error) {
	h, err := s.wd.CurrentWindowHandle()
	if err != nil {
		return "", translateError(err)
	}
	s.windows.Add(h)
	return h, nil
}

func (s *session) SwitchToWindow(h string) error { return translateError(s.wd.SwitchWindow(h)) }
func (s *session) SwitchToDefaultContent() error { return translateError(s.wd.SwitchFrame(nil)) }
func (s *session) AcceptAlert() error            { return translateError(s.wd.AcceptAlert()) }
func (s *session) DismissAlert() error           { return translateError(s.wd.DismissAlert()) }

func (s *session) AlertText() (string, error) {
	t, err := s.wd.AlertText()
	return t, translateError(err)
}

func (s *session) SetImplicitWait(d time.Duration) error {
	return translateError(s.wd.SetImplicitWaitTimeout(d))
}

func (s *session) FindElement(loc browser.Locator) (browser.Element, error) {
	el, err := s.wd.FindElement(string(loc.Strategy), loc.Selector)
	if err != nil {
		return nil, translateError(err)
	}
	return &element{wd: s.wd, el: el}, nil
}

func (s *session) FindElements(loc browser.Locator) ([]browser.Element, error) {
	els, err := s.wd.FindElements(string(loc.Strategy), loc.Selector)
	if err != nil {
		return nil, translateError(err)
	}
	return wrapElements(s.wd, els), nil
}

func (s *session) ReadyState() (string, error) {
	v, err := s.wd.ExecuteScript("return document.readyState", nil)
	if err != nil {
		return "", translateError(err)
	}
	state, _ := v.(string)
	return state, nil
}

// Windows lists the open windows in the order this session first saw them. The protocol does
// not define the order of the driver's own list.
func (s *session) Windows() ([]string, error) {
	handles, err := s.wd.WindowHandles()
	if err != nil {
		return nil, translateError(err)
	}
	return s.windows.Observe(handles), nil
}

func (s *session) SwitchToFrame(frame browser.Element) error {
	el, ok := frame.(*element)
	if !ok {
		return fmt.Errorf("frame %T is not a selenium element", frame)
	}
	return translateError(s.wd.SwitchFrame(el.el))
}

func (s *session) MoveTo(el browser.Element) error {
	return s.pointer(el)
}

func (s *session) RightClick(el browser.Element) error {
	return s.pointer(el, selenium.PointerDownAction(selenium.RightButton), selenium.PointerUpAction(selenium.RightButton))
}

func (s *session) MouseDown(el browser.Element) error {
	return s.pointer(el, selenium.PointerDownAction(selenium.LeftButton))
}

func (s *session) MouseUp(el browser.Element) error {
	return s.pointer(el, selenium.PointerUpAction(selenium.LeftButton))
}

// pointer moves the mouse to the center of the element and then performs the given actions.
func (s *session) pointer(target browser.Element, then ...selenium.PointerAction) error {
	el, ok := target.(*element)
	if !ok {
		return fmt.Errorf("element %T is not a selenium element", target)
	}
	center, err := el.center()
	if err != nil {
		return err
	}
	actions := append([]selenium.PointerAction{
		selenium.PointerMoveAction(0, center, selenium.FromViewport),
	}, then...)
	s.wd.StorePointerActions("mouse", selenium.MousePointer, actions...)
	return translateError(s.wd.PerformActions())
}

func (s *session) Quit() error {
	s.logger.Info("quitting WebDriver session")
	return translateError(s.wd.Quit())
}
