package suites

import (
	"errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qaharness/uiharness/config"
	"github.com/qaharness/uiharness/framework/browser"
	"github.com/qaharness/uiharness/framework/uitest"
)

func doLoginTests(t *uitest.T) {
	t.Run("signIn", func(t *uitest.T) {
		username, password := requireCredentials(t)
		p := openBrowser(t)

		t.Debug("signing in as %s", username)
		require.NoError(t, p.LoginPage().SignIn(username, password))
		require.NoError(t, p.HomePage().VerifyLandingPage())
	})

	t.Run("signOut", func(t *uitest.T) {
		username, password := requireCredentials(t)
		p := openBrowser(t)

		require.NoError(t, p.LoginPage().SignIn(username, password))
		require.NoError(t, p.HomePage().VerifyLandingPage())
		require.NoError(t, p.HomePage().SignOut())
		require.NoError(t, p.LoginPage().WaitUntilShown())
	})

	t.Run("wrong password is rejected", func(t *uitest.T) {
		t.RequireCapability(CapabilitySelfCheck)
		username, password := requireCredentials(t)
		p := openBrowser(t)

		require.NoError(t, p.LoginPage().SignIn(username, password+"-wrong"))
		message, err := p.Page().Text(browser.ID("login-error"))
		require.NoError(t, err)
		assert.Equal(t, "Invalid user name or password", message)
	})
}

func requireCredentials(t *uitest.T) (username, password string) {
	cfg := requireContext(t).Harness.Config()
	username, userErr := cfg.Require(config.KeyUsername)
	password, passErr := cfg.Require(config.KeyPassword)
	if err := errors.Join(userErr, passErr); err != nil {
		t.Errorf("username or password is missing in the configuration: %s", err)
		t.FailNow()
	}
	return username, password
}
