package browser

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	for input, expected := range map[string]Kind{"chrome": Chrome, "Chrome": Chrome, " FIREFOX ": Firefox} {
		k, err := ParseKind(input)
		require.NoError(t, err, input)
		assert.Equal(t, expected, k)
	}
	_, err := ParseKind("safari")
	assert.ErrorIs(t, err, ErrUnsupportedBrowser)
	assert.Contains(t, err.Error(), "safari")
}

func TestParseEngine(t *testing.T) {
	e, err := ParseEngine("")
	require.NoError(t, err)
	assert.Equal(t, EngineSelenium, e)

	e, err = ParseEngine("Playwright")
	require.NoError(t, err)
	assert.Equal(t, EnginePlaywright, e)

	_, err = ParseEngine("puppeteer")
	assert.ErrorIs(t, err, ErrUnsupportedBrowser)
}

func TestLaunchArgs(t *testing.T) {
	assert.Nil(t, LaunchOptions{Kind: Chrome}.Args())
	assert.Equal(t, []string{"--headless", "--disable-gpu", "--window-size=1920,1080"},
		LaunchOptions{Kind: Chrome, Headless: true}.Args())
	assert.Equal(t, []string{"-headless", "--width=1920", "--height=1080"},
		LaunchOptions{Kind: Firefox, Headless: true}.Args())
}

func TestLocatorString(t *testing.T) {
	assert.Equal(t, "By.xpath: //*[@id='sidebar']/div/div/a[3]", XPath("//*[@id='sidebar']/div/div/a[3]").String())
	assert.Equal(t, "By.css selector: input[name='userName']", CSS("input[name='userName']").String())
	assert.Equal(t, Locator{ByID, "x"}, ID("x"))
}

func TestErrorTypes(t *testing.T) {
	te := &TimeoutError{Waiting: "alert to be present", Timeout: 10 * time.Second}
	assert.Equal(t, "timed out after 10s waiting for alert to be present", te.Error())
	assert.True(t, errors.Is(te, ErrTimeout))
	assert.False(t, errors.Is(te, ErrNoAlert))

	ee := &ElementError{Op: "click", Locator: ID("go"), Err: ErrElementNotInteractable}
	assert.Equal(t, "click By.id: go: element not interactable", ee.Error())
	assert.ErrorIs(t, ee, ErrElementNotInteractable)

	af := &AssertionFailure{What: "sign-out label", Expected: "Sign out", Actual: "Log in"}
	assert.Equal(t, `sign-out label: expected "Sign out" but was "Log in"`, af.Error())

	assert.Equal(t, "hidden", Hidden.String())
	assert.Equal(t, "not present", NotPresent.String())
}
