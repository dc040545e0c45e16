package pwdriver

import (
	"sync"
	"testing"
	"time"

	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/qaharness/uiharness/framework/browser"
)

// The fakes embed the playwright interfaces and implement only what the session calls; any
// other call panics on the nil embedded value.

// pwLocator lets fakeLocator embed playwright.Locator without the embedded field's name
// hiding the interface's own Locator method.
type pwLocator = playwright.Locator

type fakeLocator struct {
	pwLocator
	appearsAfter int
	counts       int
	frame        playwright.Frame
	lock         sync.Mutex
}

func (l *fakeLocator) Count() (int, error) {
	l.lock.Lock()
	defer l.lock.Unlock()
	l.counts++
	if l.appearsAfter >= 0 && l.counts > l.appearsAfter {
		return 1, nil
	}
	return 0, nil
}

func (l *fakeLocator) First() playwright.Locator { return l }

func (l *fakeLocator) ElementHandle(...playwright.LocatorElementHandleOptions) (playwright.ElementHandle, error) {
	return &fakeElementHandle{frame: l.frame}, nil
}

func (l *fakeLocator) countCalls() int {
	l.lock.Lock()
	defer l.lock.Unlock()
	return l.counts
}

type fakeElementHandle struct {
	playwright.ElementHandle
	frame playwright.Frame
}

func (h *fakeElementHandle) ContentFrame() (playwright.Frame, error) { return h.frame, nil }

type fakeFrame struct {
	playwright.Frame
	locators map[string]*fakeLocator
}

func (f *fakeFrame) Locator(selector string, _ ...playwright.FrameLocatorOptions) playwright.Locator {
	if l, ok := f.locators[selector]; ok {
		return l
	}
	return &fakeLocator{appearsAfter: -1}
}

type fakePage struct {
	playwright.Page
	main           *fakeFrame
	onDialog       func(playwright.Dialog)
	broughtToFront int
}

func newFakePage() *fakePage {
	return &fakePage{main: &fakeFrame{locators: make(map[string]*fakeLocator)}}
}

func (p *fakePage) MainFrame() playwright.Frame              { return p.main }
func (p *fakePage) OnDialog(handler func(playwright.Dialog)) { p.onDialog = handler }

func (p *fakePage) BringToFront() error {
	p.broughtToFront++
	return nil
}

type fakeContext struct {
	playwright.BrowserContext
	pages  []playwright.Page
	onPage func(playwright.Page)
}

func (c *fakeContext) Pages() []playwright.Page             { return c.pages }
func (c *fakeContext) OnPage(handler func(playwright.Page)) { c.onPage = handler }

type fakeDialog struct {
	playwright.Dialog
	message   string
	accepted  bool
	dismissed bool
}

func (d *fakeDialog) Message() string { return d.message }

func (d *fakeDialog) Accept(...string) error {
	d.accepted = true
	return nil
}

func (d *fakeDialog) Dismiss() error {
	d.dismissed = true
	return nil
}

func newFakeSession() (*session, *fakeContext, *fakePage) {
	first := newFakePage()
	ctx := &fakeContext{pages: []playwright.Page{first}}
	return newSession(nil, ctx, first, zap.NewNop()), ctx, first
}

func TestFindElementPollsForImplicitWait(t *testing.T) {
	s, _, first := newFakeSession()
	loader := &fakeLocator{appearsAfter: 2}
	first.main.locators["id=loader"] = loader

	require.NoError(t, s.SetImplicitWait(5*time.Second))
	el, err := s.FindElement(browser.ID("loader"))
	require.NoError(t, err)
	assert.NotNil(t, el)
	assert.Equal(t, 3, loader.countCalls())
}

func TestFindElementWithoutImplicitWaitReportsNotFound(t *testing.T) {
	s, _, _ := newFakeSession()

	_, err := s.FindElement(browser.ID("missing"))
	assert.ErrorIs(t, err, browser.ErrElementNotFound)
}

func TestSwitchToFrame(t *testing.T) {
	s, _, first := newFakeSession()
	inner := &fakeFrame{locators: map[string]*fakeLocator{"id=in-frame": {appearsAfter: 0}}}
	first.main.locators["id=content-frame"] = &fakeLocator{appearsAfter: 0, frame: inner}
	first.main.locators["id=not-a-frame"] = &fakeLocator{appearsAfter: 0}

	notFrame, err := s.FindElement(browser.ID("not-a-frame"))
	require.NoError(t, err)
	assert.ErrorIs(t, s.SwitchToFrame(notFrame), browser.ErrElementNotFound)

	frame, err := s.FindElement(browser.ID("content-frame"))
	require.NoError(t, err)
	require.NoError(t, s.SwitchToFrame(frame))
	_, err = s.FindElement(browser.ID("in-frame"))
	assert.NoError(t, err)

	require.NoError(t, s.SwitchToDefaultContent())
	_, err = s.FindElement(browser.ID("in-frame"))
	assert.ErrorIs(t, err, browser.ErrElementNotFound)
}

func TestWindowsFollowBrowserContextPages(t *testing.T) {
	s, ctx, first := newFakeSession()
	mainHandle, err := s.CurrentWindow()
	require.NoError(t, err)

	popup := newFakePage()
	ctx.onPage(popup)
	ctx.pages = []playwright.Page{popup, first}

	handles, err := s.Windows()
	require.NoError(t, err)
	require.Len(t, handles, 2)
	assert.Equal(t, mainHandle, handles[0])

	require.NoError(t, s.SwitchToWindow(handles[1]))
	assert.Equal(t, 1, popup.broughtToFront)
	current, err := s.CurrentWindow()
	require.NoError(t, err)
	assert.Equal(t, handles[1], current)

	ctx.pages = []playwright.Page{first}
	handles, err = s.Windows()
	require.NoError(t, err)
	assert.Equal(t, []string{mainHandle}, handles)
	assert.Error(t, s.SwitchToWindow(current))
}

func TestAlertTextLeavesDialogOpen(t *testing.T) {
	s, ctx, first := newFakeSession()
	_, err := s.AlertText()
	assert.ErrorIs(t, err, browser.ErrNoAlert)

	alert := &fakeDialog{message: "Hello from the mock site"}
	first.onDialog(alert)
	for i := 0; i < 2; i++ {
		text, err := s.AlertText()
		require.NoError(t, err)
		assert.Equal(t, "Hello from the mock site", text)
	}
	require.NoError(t, s.AcceptAlert())
	assert.True(t, alert.accepted)
	_, err = s.AlertText()
	assert.ErrorIs(t, err, browser.ErrNoAlert)

	popup := newFakePage()
	ctx.onPage(popup)
	confirm := &fakeDialog{message: "Are you sure?"}
	popup.onDialog(confirm)
	require.NoError(t, s.DismissAlert())
	assert.True(t, confirm.dismissed)
	assert.ErrorIs(t, s.DismissAlert(), browser.ErrNoAlert)
}

func TestTooManyDialogsAreDismissed(t *testing.T) {
	s, _, first := newFakeSession()
	var dialogs []*fakeDialog
	for i := 0; i <= maxQueuedDialogs; i++ {
		d := &fakeDialog{message: "alert"}
		dialogs = append(dialogs, d)
		first.onDialog(d)
	}
	assert.True(t, dialogs[maxQueuedDialogs].dismissed)
	assert.False(t, dialogs[0].dismissed)
	require.NoError(t, s.AcceptAlert())
	assert.True(t, dialogs[0].accepted)
}
