package pages

import (
	"sync"

	"github.com/qaharness/uiharness/framework/browser"
)

// Registry hands out the page objects of one browser session. Each is created the first time
// it is asked for and the same instance is returned after that, from any goroutine.
type Registry struct {
	page *browser.Page

	login     *LoginPage
	loginOnce sync.Once
	home      *HomePage
	homeOnce  sync.Once
}

func NewRegistry(page *browser.Page) *Registry {
	return &Registry{page: page}
}

func (r *Registry) Page() *browser.Page { return r.page }

func (r *Registry) LoginPage() *LoginPage {
	r.loginOnce.Do(func() { r.login = NewLoginPage(r.page) })
	return r.login
}

func (r *Registry) HomePage() *HomePage {
	r.homeOnce.Do(func() { r.home = NewHomePage(r.page) })
	return r.home
}
