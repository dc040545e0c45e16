package harness

import (
	"sync"

	"go.uber.org/zap"

	"github.com/qaharness/uiharness/framework/browser"
	"github.com/qaharness/uiharness/framework/uitest"
)

// ScreenshotAttachment is the attachment name used for the failure screenshot.
const ScreenshotAttachment = "screenshot.png"

// Session is a browser opened by the harness. It belongs to the test scope that created it.
type Session struct {
	browser browser.Session
	page    *browser.Page
	kind    browser.Kind
	logger  *zap.Logger
	closing sync.Once
	err     error
}

func (s *Session) Page() *browser.Page { return s.page }

func (s *Session) Browser() browser.Session { return s.browser }

func (s *Session) Kind() browser.Kind { return s.kind }

// Screenshot captures the current viewport as PNG.
func (s *Session) Screenshot() ([]byte, error) {
	return s.browser.Screenshot()
}

// Close quits the browser. Only the first call does anything; it is safe on a nil Session.
func (s *Session) Close() error {
	if s == nil {
		return nil
	}
	s.closing.Do(func() {
		s.logger.Info("closing browser session")
		s.err = s.browser.Quit()
	})
	return s.err
}

// StartSession is Setup for use inside a test. A setup failure fails the test immediately.
// The browser is closed when the test scope ends, however it ends; if the test has failed by
// then, a screenshot is attached to its result first.
func (h *Harness) StartSession(t *uitest.T, kind string, headless bool) *Session {
	s, err := h.setup(h.ctx, kind, headless, t.ZapLogger())
	if err != nil {
		t.Errorf("browser setup failed: %s", err)
		t.FailNow()
	}
	t.Defer(func() {
		if t.Failed() {
			if png, err := s.Screenshot(); err != nil {
				t.Debug("could not capture screenshot: %s", err)
			} else {
				t.Attach(ScreenshotAttachment, "image/png", png)
			}
		}
		if err := s.Close(); err != nil {
			t.Debug("error quitting browser: %s", err)
		}
	})
	return s
}
