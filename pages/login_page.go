// Package pages contains the page objects of the application under test. Each one knows the
// locators of one page and expresses user actions on it through browser.Page.
package pages

import (
	"fmt"

	"github.com/qaharness/uiharness/framework/browser"
)

var (
	UsernameField = browser.CSS("input[name='userName']")
	PasswordField = browser.CSS("input[name='passWord']")
	SignInButton  = browser.XPath("//*[@id='loginAdvDivId']/div[2]/div/button")
)

type LoginPage struct {
	page *browser.Page
}

func NewLoginPage(page *browser.Page) *LoginPage {
	return &LoginPage{page: page}
}

// SignIn fills in the login form and submits it. It stops at the first step that fails and
// returns that step's error unchanged apart from context.
func (l *LoginPage) SignIn(username, password string) error {
	if err := l.page.EnterText(UsernameField, username); err != nil {
		return fmt.Errorf("entering username: %w", err)
	}
	if err := l.page.EnterText(PasswordField, password); err != nil {
		return fmt.Errorf("entering password: %w", err)
	}
	if err := l.page.Click(SignInButton); err != nil {
		return fmt.Errorf("clicking sign in: %w", err)
	}
	return nil
}

// WaitUntilShown waits for the login form, as after signing out.
func (l *LoginPage) WaitUntilShown() error {
	_, err := l.page.WaitVisible(UsernameField, l.page.Timeouts().Interaction)
	return err
}
