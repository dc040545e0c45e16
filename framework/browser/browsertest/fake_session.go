// Package browsertest provides an in-memory browser.Session for testing page objects and the
// browser facade without a real browser.
package browsertest

import (
	"fmt"
	"sync"
	"time"

	"github.com/qaharness/uiharness/framework/browser"
)

// Session is a fake browser.Session. Elements are registered per frame under the locator that
// finds them; a lookup for any other locator fails with browser.ErrElementNotFound. All state
// is guarded by one mutex, so a test may change the page while the code under test polls it.
type Session struct {
	URLs         []string
	Actions      []string
	Quits        int
	ImplicitWait time.Duration
	Maximized    bool

	// Errors to return from the corresponding operations, if set.
	NavigateErr   error
	MaximizeErr   error
	ScreenshotErr error
	QuitErr       error
	FindErr       error

	ScreenshotData []byte

	elements   map[string]map[browser.Locator]*Element
	lookups    map[browser.Locator]int
	frame      string
	windows    []string
	current    string
	alert      *string
	alertAfter int
	readyState []string
	lock       sync.Mutex
}

func NewSession() *Session {
	return &Session{
		elements:       map[string]map[browser.Locator]*Element{"": {}},
		lookups:        make(map[browser.Locator]int),
		windows:        []string{"main"},
		current:        "main",
		readyState:     []string{"complete"},
		ScreenshotData: []byte("\x89PNG fake"),
	}
}

// Put makes loc find el in the top-level document.
func (s *Session) Put(loc browser.Locator, el *Element) *Element {
	return s.PutInFrame("", loc, el)
}

// PutInFrame makes loc find el while the session is switched to the frame with that name.
func (s *Session) PutInFrame(frame string, loc browser.Locator, el *Element) *Element {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.elements[frame] == nil {
		s.elements[frame] = make(map[browser.Locator]*Element)
	}
	el.session = s
	s.elements[frame][loc] = el
	return el
}

func (s *Session) Remove(loc browser.Locator) {
	s.lock.Lock()
	defer s.lock.Unlock()
	for _, els := range s.elements {
		delete(els, loc)
	}
}

// Lookups is how many times loc has been looked up.
func (s *Session) Lookups(loc browser.Locator) int {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.lookups[loc]
}

// OpenWindow adds a window, as if the page had opened a popup. It does not switch to it.
func (s *Session) OpenWindow(handle string) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.windows = append(s.windows, handle)
}

// OpenAlert shows a dialog once the page has asked for it afterPolls times.
func (s *Session) OpenAlert(text string, afterPolls int) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.alert = &text
	s.alertAfter = afterPolls
}

// SetReadyStates makes ReadyState return these values in order, repeating the last one.
func (s *Session) SetReadyStates(states ...string) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.readyState = states
}

func (s *Session) Frame() string {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.frame
}

func (s *Session) Current() string {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.current
}

func (s *Session) ActionLog() []string {
	s.lock.Lock()
	defer s.lock.Unlock()
	return append([]string(nil), s.Actions...)
}

func (s *Session) record(format string, args ...interface{}) {
	s.Actions = append(s.Actions, fmt.Sprintf(format, args...))
}

func (s *Session) Navigate(url string) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.NavigateErr != nil {
		return s.NavigateErr
	}
	s.URLs = append(s.URLs, url)
	s.record("navigate:%s", url)
	return nil
}

func (s *Session) CurrentURL() (string, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if len(s.URLs) == 0 {
		return "about:blank", nil
	}
	return s.URLs[len(s.URLs)-1], nil
}

func (s *Session) Refresh() error { return s.simple("refresh") }
func (s *Session) Back() error    { return s.simple("back") }
func (s *Session) Forward() error { return s.simple("forward") }

func (s *Session) simple(action string) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.record("%s", action)
	return nil
}

func (s *Session) MaximizeWindow() error {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.MaximizeErr != nil {
		return s.MaximizeErr
	}
	s.Maximized = true
	return nil
}

func (s *Session) SetImplicitWait(d time.Duration) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.ImplicitWait = d
	return nil
}

func (s *Session) FindElement(loc browser.Locator) (browser.Element, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.lookups[loc]++
	if s.FindErr != nil {
		return nil, s.FindErr
	}
	el, ok := s.elements[s.frame][loc]
	if !ok {
		return nil, fmt.Errorf("%w: %s", browser.ErrElementNotFound, loc)
	}
	return el, nil
}

func (s *Session) FindElements(loc browser.Locator) ([]browser.Element, error) {
	el, err := s.FindElement(loc)
	if err != nil {
		return nil, nil //nolint:nilerr
	}
	return []browser.Element{el}, nil
}

func (s *Session) ReadyState() (string, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	state := s.readyState[0]
	if len(s.readyState) > 1 {
		s.readyState = s.readyState[1:]
	}
	return state, nil
}

func (s *Session) Screenshot() ([]byte, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.record("screenshot")
	if s.ScreenshotErr != nil {
		return nil, s.ScreenshotErr
	}
	return s.ScreenshotData, nil
}

func (s *Session) CurrentWindow() (string, error) {
	return s.Current(), nil
}

func (s *Session) Windows() ([]string, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	return append([]string(nil), s.windows...), nil
}

func (s *Session) SwitchToWindow(handle string) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	for _, w := range s.windows {
		if w == handle {
			s.current = handle
			s.frame = ""
			return nil
		}
	}
	return fmt.Errorf("no such window: %s", handle)
}

func (s *Session) SwitchToFrame(frame browser.Element) error {
	el, ok := frame.(*Element)
	if !ok || el.FrameName == "" {
		return fmt.Errorf("element is not a frame")
	}
	s.lock.Lock()
	defer s.lock.Unlock()
	s.frame = el.FrameName
	return nil
}

func (s *Session) SwitchToDefaultContent() error {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.frame = ""
	return nil
}

func (s *Session) pendingAlert() (*string, error) {
	if s.alert == nil {
		return nil, browser.ErrNoAlert
	}
	if s.alertAfter > 0 {
		s.alertAfter--
		return nil, browser.ErrNoAlert
	}
	return s.alert, nil
}

func (s *Session) AcceptAlert() error {
	s.lock.Lock()
	defer s.lock.Unlock()
	text, err := s.pendingAlert()
	if err != nil {
		return err
	}
	s.record("accept:%s", *text)
	s.alert = nil
	return nil
}

func (s *Session) DismissAlert() error {
	s.lock.Lock()
	defer s.lock.Unlock()
	text, err := s.pendingAlert()
	if err != nil {
		return err
	}
	s.record("dismiss:%s", *text)
	s.alert = nil
	return nil
}

func (s *Session) AlertText() (string, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	text, err := s.pendingAlert()
	if err != nil {
		return "", err
	}
	return *text, nil
}

func (s *Session) MoveTo(el browser.Element) error     { return s.gesture("move", el) }
func (s *Session) RightClick(el browser.Element) error { return s.gesture("contextclick", el) }
func (s *Session) MouseDown(el browser.Element) error  { return s.gesture("down", el) }
func (s *Session) MouseUp(el browser.Element) error    { return s.gesture("up", el) }

func (s *Session) gesture(action string, el browser.Element) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.record("%s:%s", action, el.(*Element).Name)
	return nil
}

func (s *Session) Quit() error {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.Quits++
	return s.QuitErr
}
