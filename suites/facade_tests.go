package suites

import (
	"strings"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qaharness/uiharness/config"
	"github.com/qaharness/uiharness/framework/browser"
	"github.com/qaharness/uiharness/framework/helpers"
	"github.com/qaharness/uiharness/framework/uitest"
)

const (
	loaderTimeout    = 5 * time.Second
	newWindowTimeout = 5 * time.Second
)

// These run only against the mock site, whose pages are at fixed paths under the base URL.
func doFacadeTests(t *uitest.T) {
	t.RequireCapability(CapabilitySelfCheck)

	t.Run("alerts", doAlertTests)
	t.Run("windows", doWindowTests)
	t.Run("frames", doFrameTests)
	t.Run("dropdowns", doDropdownTests)
	t.Run("loader", doLoaderTests)
	t.Run("gestures", doGestureTests)
	t.Run("navigation", doNavigationTests)
}

func openMockPage(t *uitest.T, path string) *browser.Page {
	base, err := requireContext(t).Harness.Config().Require(config.KeyURL)
	require.NoError(t, err)
	page := openBrowser(t).Page()
	require.NoError(t, page.NavigateTo(strings.TrimSuffix(base, "/")+"/"+path))
	require.NoError(t, page.WaitForPageLoad())
	return page
}

func doAlertTests(t *uitest.T) {
	t.Run("accept alert", func(t *uitest.T) {
		page := openMockPage(t, "alert")
		require.NoError(t, page.Click(browser.ID("show-alert")))
		text, err := page.AlertText()
		require.NoError(t, err)
		assert.Equal(t, "Hello from the mock site", text)
		require.NoError(t, page.AcceptAlert())
	})

	for _, accept := range []bool{true, false} {
		expected := helpers.IfElse(accept, "accepted", "dismissed")
		t.Run("confirm "+expected, func(t *uitest.T) {
			page := openMockPage(t, "alert")
			require.NoError(t, page.Click(browser.ID("show-confirm")))
			if accept {
				require.NoError(t, page.AcceptAlert())
			} else {
				require.NoError(t, page.DismissAlert())
			}
			result, err := page.Text(browser.ID("confirm-result"))
			require.NoError(t, err)
			assert.Equal(t, expected, result)
		})
	}

	t.Run("no alert open", func(t *uitest.T) {
		page := openMockPage(t, "alert")
		_, err := page.AlertText()
		assert.ErrorIs(t, err, browser.ErrTimeout)
	})
}

func doWindowTests(t *uitest.T) {
	t.Run("switch to new window and back", func(t *uitest.T) {
		page := openMockPage(t, "popup")
		require.NoError(t, page.Click(browser.ID("open-popup")))
		helpers.RequireEventually(t, func() bool {
			handles, err := page.Session().Windows()
			return err == nil && len(handles) == 2
		}, newWindowTimeout, 100*time.Millisecond, "popup window did not open")

		parent, err := page.SwitchToNewWindow()
		require.NoError(t, err)
		title, err := page.Text(browser.ID("popup-title"))
		require.NoError(t, err)
		assert.Equal(t, "New window", title)

		require.NoError(t, page.SwitchToParentWindow(parent))
		shown, err := page.IsDisplayed(browser.ID("open-popup"))
		require.NoError(t, err)
		assert.True(t, shown)
	})

	t.Run("no other window", func(t *uitest.T) {
		page := openMockPage(t, "popup")
		current, err := page.Session().CurrentWindow()
		require.NoError(t, err)
		parent, err := page.SwitchToNewWindow()
		require.NoError(t, err)
		assert.Equal(t, current, parent)
	})
}

func doFrameTests(t *uitest.T) {
	page := openMockPage(t, "frame")

	require.NoError(t, page.SwitchToFrame(browser.ID("content-frame")))
	inside, err := page.Text(browser.ID("in-frame"))
	require.NoError(t, err)
	assert.Equal(t, "Inside the frame", inside)

	require.NoError(t, page.SwitchToDefaultContent())
	outside, err := page.Text(browser.ID("outside-frame"))
	require.NoError(t, err)
	assert.Equal(t, "Outside the frame", outside)
}

func doDropdownTests(t *uitest.T) {
	fruit, selected := browser.ID("fruit"), browser.ID("selected")

	for _, p := range []struct {
		name     string
		action   func(*browser.Page) error
		expected string
	}{
		{
			"by visible text",
			func(page *browser.Page) error { return page.SelectByVisibleText(fruit, "Cherry") },
			"cherry",
		},
		{"by value", func(page *browser.Page) error { return page.SelectByValue(fruit, "banana") }, "banana"},
		{"by index", func(page *browser.Page) error { return page.SelectByIndex(fruit, 1) }, "apple"},
	} {
		t.Run(p.name, func(t *uitest.T) {
			page := openMockPage(t, "dropdown")
			require.NoError(t, p.action(page))
			value, err := page.Text(selected)
			require.NoError(t, err)
			assert.Equal(t, p.expected, value)
		})
	}

	t.Run("missing option", func(t *uitest.T) {
		page := openMockPage(t, "dropdown")
		assert.ErrorIs(t, page.SelectByVisibleText(fruit, "Durian"), browser.ErrInvalidSelectOption)
		assert.ErrorIs(t, page.SelectByIndex(fruit, 10), browser.ErrInvalidSelectOption)
	})
}

func doLoaderTests(t *uitest.T) {
	page := openMockPage(t, "loader")
	page.WaitForLoaderAndContent(browser.CSS("div.loader"), loaderTimeout)

	shown, err := page.IsDisplayed(browser.ID("content"))
	require.NoError(t, err)
	assert.True(t, shown)
	loader, err := page.Presence(browser.ID("loader"))
	require.NoError(t, err)
	assert.Equal(t, browser.Hidden, loader)
}

func doGestureTests(t *uitest.T) {
	result := browser.ID("gesture-result")
	expectResult := func(t *uitest.T, page *browser.Page, expected string) {
		text, err := page.Text(result)
		require.NoError(t, err)
		assert.Equal(t, expected, text)
	}

	t.Run("hover and click", func(t *uitest.T) {
		page := openMockPage(t, "gestures")
		require.NoError(t, page.HoverAndClick(browser.ID("menu-title"), browser.ID("submenu-item")))
		expectResult(t, page, "submenu")
	})

	t.Run("right click", func(t *uitest.T) {
		page := openMockPage(t, "gestures")
		require.NoError(t, page.RightClick(browser.ID("context-target")))
		expectResult(t, page, "context")
	})

	t.Run("click and hold", func(t *uitest.T) {
		page := openMockPage(t, "gestures")
		hold := browser.ID("hold-target")
		require.NoError(t, page.ClickAndHold(hold))
		expectResult(t, page, "down")
		require.NoError(t, page.Release(hold))
		expectResult(t, page, "up")
	})
}

func doNavigationTests(t *uitest.T) {
	page := openMockPage(t, "dropdown")
	url, err := page.Session().CurrentURL()
	require.NoError(t, err)

	require.NoError(t, page.NavigateTo(strings.TrimSuffix(url, "dropdown")+"frame"))
	require.NoError(t, page.WaitForPageLoad())
	require.NoError(t, page.ScrollTo(browser.ID("content-frame")))

	require.NoError(t, page.NavigateBack())
	require.NoError(t, page.WaitForPageLoad())
	_, err = page.WaitVisible(browser.ID("fruit"), page.Timeouts().Interaction)
	require.NoError(t, err)

	require.NoError(t, page.NavigateForward())
	require.NoError(t, page.Refresh())
	require.NoError(t, page.WaitForPageLoad())
	src, err := page.Attribute(browser.ID("content-frame"), "src")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(src.Value(), "frame-content"), "src was %s", src)
}
