package pages

import "github.com/qaharness/uiharness/framework/browser"

// SignOutText is the label of the sign-out link that is shown once a user is signed in.
const SignOutText = "Sign out"

var SignOutLabel = browser.XPath("//*[@id='sidebar']/div/div/a[3]")

type HomePage struct {
	page *browser.Page
}

func NewHomePage(page *browser.Page) *HomePage {
	return &HomePage{page: page}
}

// VerifyLandingPage checks that the signed-in landing page is showing. If the sign-out label
// has any other text the result is a *browser.AssertionFailure.
func (h *HomePage) VerifyLandingPage() error {
	text, err := h.page.Text(SignOutLabel)
	if err != nil {
		return err
	}
	if text != SignOutText {
		return &browser.AssertionFailure{What: "sign-out label", Expected: SignOutText, Actual: text}
	}
	return nil
}

func (h *HomePage) SignOut() error {
	return h.page.Click(SignOutLabel)
}
