package seleniumdriver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gorilla/mux"
	"github.com/launchdarkly/go-test-helpers/v2/httphelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tebeka/selenium"
	"github.com/tebeka/selenium/chrome"
	"github.com/tebeka/selenium/firefox"

	"github.com/qaharness/uiharness/framework/browser"
	"github.com/qaharness/uiharness/framework/opt"
)

const w3cElementKey = "element-6066-11e4-a52e-4f735466cecf"

func writeValue(w http.ResponseWriter, status int, value interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{"value": value})
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeValue(w, status, map[string]string{"error": code, "message": message, "stacktrace": ""})
}

// fakeWindows is the window state of the fake WebDriver. Each request for the handle list
// returns the next entry of lists, repeating the last one.
type fakeWindows struct {
	lists    [][]string
	calls    int
	switched []string
	lock     sync.Mutex
}

func (f *fakeWindows) next() []string {
	f.lock.Lock()
	defer f.lock.Unlock()
	if len(f.lists) == 0 {
		return []string{"main"}
	}
	list := f.lists[min(f.calls, len(f.lists)-1)]
	f.calls++
	return list
}

func (f *fakeWindows) switchedTo() []string {
	f.lock.Lock()
	defer f.lock.Unlock()
	return append([]string(nil), f.switched...)
}

// fakeWebDriver answers just enough of the W3C protocol for one session with one element.
func fakeWebDriver(windows *fakeWindows) http.Handler {
	r := mux.NewRouter()
	hub := r.PathPrefix("/wd/hub").Subrouter()
	hub.HandleFunc("/session", func(w http.ResponseWriter, _ *http.Request) {
		writeValue(w, 200, map[string]interface{}{
			"sessionId":    "s1",
			"capabilities": map[string]interface{}{"browserName": "chrome"},
		})
	}).Methods("POST")
	hub.HandleFunc("/session/s1", func(w http.ResponseWriter, _ *http.Request) {
		writeValue(w, 200, nil)
	}).Methods("DELETE")
	hub.HandleFunc("/session/s1/element", func(w http.ResponseWriter, req *http.Request) {
		var body struct{ Using, Value string }
		_ = json.NewDecoder(req.Body).Decode(&body)
		if body.Value == "//a[text()='Sign out']" {
			writeValue(w, 200, map[string]string{w3cElementKey: "e1"})
			return
		}
		writeError(w, 404, "no such element", "Unable to locate element: "+body.Value)
	}).Methods("POST")
	hub.HandleFunc("/session/s1/element/e1/text", func(w http.ResponseWriter, _ *http.Request) {
		writeValue(w, 200, "Sign out")
	}).Methods("GET")
	hub.HandleFunc("/session/s1/element/e1/click", func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, 400, "element click intercepted", "another element would receive the click")
	}).Methods("POST")
	hub.HandleFunc("/session/s1/element/e1/attribute/{name}", func(w http.ResponseWriter, req *http.Request) {
		if mux.Vars(req)["name"] == "href" {
			writeValue(w, 200, "login")
			return
		}
		writeValue(w, 200, nil)
	}).Methods("GET")
	hub.HandleFunc("/session/s1/window", func(w http.ResponseWriter, _ *http.Request) {
		writeValue(w, 200, "main")
	}).Methods("GET")
	hub.HandleFunc("/session/s1/window", func(w http.ResponseWriter, req *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(req.Body).Decode(&body)
		windows.lock.Lock()
		windows.switched = append(windows.switched, body["handle"]+body["name"])
		windows.lock.Unlock()
		writeValue(w, 200, nil)
	}).Methods("POST")
	hub.HandleFunc("/session/s1/window/handles", func(w http.ResponseWriter, _ *http.Request) {
		writeValue(w, 200, windows.next())
	}).Methods("GET")
	hub.HandleFunc("/session/s1/alert/text", func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, 404, "no such alert", "no such alert")
	}).Methods("GET")
	return r
}

func TestCapabilitiesForChrome(t *testing.T) {
	caps := Capabilities(browser.LaunchOptions{Kind: browser.Chrome, Headless: true})
	assert.Equal(t, "chrome", caps["browserName"])
	chromeCaps, ok := caps[chrome.CapabilitiesKey].(chrome.Capabilities)
	require.True(t, ok)
	assert.Equal(t, []string{"--headless", "--disable-gpu", "--window-size=1920,1080"}, chromeCaps.Args)
	assert.True(t, chromeCaps.W3C)
}

func TestCapabilitiesForFirefox(t *testing.T) {
	caps := Capabilities(browser.LaunchOptions{Kind: browser.Firefox})
	assert.Equal(t, "firefox", caps["browserName"])
	ffCaps, ok := caps[firefox.CapabilitiesKey].(firefox.Capabilities)
	require.True(t, ok)
	assert.Empty(t, ffCaps.Args)
}

func TestTranslateError(t *testing.T) {
	assert.Nil(t, translateError(nil))

	plain := errors.New("connection refused")
	assert.Equal(t, plain, translateError(plain))

	for code, expected := range map[string]error{
		"no such element":           browser.ErrElementNotFound,
		"stale element reference":   browser.ErrElementNotFound,
		"no such alert":             browser.ErrNoAlert,
		"element not interactable":  browser.ErrElementNotInteractable,
		"element click intercepted": browser.ErrElementNotInteractable,
	} {
		err := translateError(&selenium.Error{Err: code, Message: "details"})
		assert.ErrorIs(t, err, expected, code)
		assert.Contains(t, err.Error(), "details")
	}

	unknown := &selenium.Error{Err: "javascript error"}
	assert.Equal(t, error(unknown), translateError(unknown))
}

func TestLaunchFailureIsWrapped(t *testing.T) {
	l := &Launcher{newRemote: func(selenium.Capabilities, string) (selenium.WebDriver, error) {
		return nil, errors.New("dial tcp: connection refused")
	}}
	_, err := l.Launch(context.Background(), browser.LaunchOptions{Kind: browser.Chrome, WebDriverURL: "http://grid:4444"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "could not start chrome session at http://grid:4444")
}

func TestLaunchHonorsCanceledContext(t *testing.T) {
	called := false
	l := &Launcher{newRemote: func(selenium.Capabilities, string) (selenium.WebDriver, error) {
		called = true
		return nil, nil
	}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := l.Launch(ctx, browser.LaunchOptions{Kind: browser.Chrome})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func launchAgainst(t *testing.T, server *httptest.Server) browser.Session {
	s, err := NewLauncher().Launch(context.Background(), browser.LaunchOptions{
		Kind:         browser.Chrome,
		WebDriverURL: server.URL + "/wd/hub",
	})
	require.NoError(t, err)
	return s
}

func TestSessionAgainstWebDriverEndpoint(t *testing.T) {
	httphelpers.WithServer(fakeWebDriver(&fakeWindows{}), func(server *httptest.Server) {
		s := launchAgainst(t, server)

		el, err := s.FindElement(browser.XPath("//a[text()='Sign out']"))
		require.NoError(t, err)
		text, err := el.Text()
		require.NoError(t, err)
		assert.Equal(t, "Sign out", text)

		assert.ErrorIs(t, el.Click(), browser.ErrElementNotInteractable)

		href, err := el.Attribute("href")
		require.NoError(t, err)
		assert.Equal(t, opt.Some("login"), href)
		title, err := el.Attribute("title")
		require.NoError(t, err, "an unset attribute is not an error")
		assert.False(t, title.IsDefined())

		_, err = s.FindElement(browser.XPath("//missing"))
		assert.ErrorIs(t, err, browser.ErrElementNotFound)

		_, err = s.AlertText()
		assert.ErrorIs(t, err, browser.ErrNoAlert)

		assert.NoError(t, s.Quit())
	})
}

func TestWindowsAreListedInOpeningOrder(t *testing.T) {
	windows := &fakeWindows{lists: [][]string{
		{"popup1", "main"},
		{"main", "popup2", "popup1"},
	}}
	httphelpers.WithServer(fakeWebDriver(windows), func(server *httptest.Server) {
		s := launchAgainst(t, server)

		handles, err := s.Windows()
		require.NoError(t, err)
		assert.Equal(t, []string{"main", "popup1"}, handles)

		page, err := browser.NewPage(s)
		require.NoError(t, err)
		parent, err := page.SwitchToNewWindow()
		require.NoError(t, err)
		assert.Equal(t, "main", parent)
		assert.Equal(t, []string{"popup2"}, windows.switchedTo())
	})
}
