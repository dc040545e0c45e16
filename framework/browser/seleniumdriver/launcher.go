// Package seleniumdriver runs browsers through a W3C WebDriver server (selenium standalone,
// chromedriver or geckodriver) using github.com/tebeka/selenium.
package seleniumdriver

import (
	"context"
	"fmt"

	"github.com/tebeka/selenium"
	"github.com/tebeka/selenium/chrome"
	"github.com/tebeka/selenium/firefox"
	"go.uber.org/zap"

	"github.com/qaharness/uiharness/framework/browser"
)

// DefaultWebDriverURL is the usual address of a local selenium standalone server.
const DefaultWebDriverURL = "http://localhost:4444/wd/hub"

// Launcher opens WebDriver sessions.
type Launcher struct {
	newRemote func(selenium.Capabilities, string) (selenium.WebDriver, error)
}

func NewLauncher() *Launcher {
	return &Launcher{newRemote: selenium.NewRemote}
}

// Capabilities builds the session request for the browser kind. Headless sessions get the
// switches from LaunchOptions.Args.
func Capabilities(options browser.LaunchOptions) selenium.Capabilities {
	caps := selenium.Capabilities{"browserName": string(options.Kind)}
	switch options.Kind {
	case browser.Firefox:
		caps.AddFirefox(firefox.Capabilities{Args: options.Args()})
	default:
		caps.AddChrome(chrome.Capabilities{Args: options.Args(), W3C: true})
	}
	return caps
}

func (l *Launcher) Launch(ctx context.Context, options browser.LaunchOptions) (browser.Session, error) {
	logger := options.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	url := options.WebDriverURL
	if url == "" {
		url = DefaultWebDriverURL
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	logger.Info("starting WebDriver session",
		zap.String("browser", string(options.Kind)),
		zap.Bool("headless", options.Headless),
		zap.String("url", url))
	wd, err := l.newRemote(Capabilities(options), url)
	if err != nil {
		return nil, fmt.Errorf("could not start %s session at %s: %w", options.Kind, url, translateError(err))
	}
	return newSession(wd, logger), nil
}
