package browser

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Kind is a browser family.
type Kind string

const (
	Chrome  Kind = "chrome"
	Firefox Kind = "firefox"
)

// ParseKind accepts a browser name in any letter case.
func ParseKind(name string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(name))); k {
	case Chrome, Firefox:
		return k, nil
	default:
		return "", fmt.Errorf("%w: %q (expected chrome or firefox)", ErrUnsupportedBrowser, name)
	}
}

// Engine is the automation library that drives the browser.
type Engine string

const (
	EngineSelenium   Engine = "selenium"
	EnginePlaywright Engine = "playwright"
)

// ParseEngine accepts an engine name in any letter case. An empty name means selenium.
func ParseEngine(name string) (Engine, error) {
	switch e := Engine(strings.ToLower(strings.TrimSpace(name))); e {
	case "":
		return EngineSelenium, nil
	case EngineSelenium, EnginePlaywright:
		return e, nil
	default:
		return "", fmt.Errorf("%w: engine %q (expected selenium or playwright)", ErrUnsupportedBrowser, name)
	}
}

const (
	WindowWidth  = 1920
	WindowHeight = 1080
)

// LaunchOptions is what a Launcher needs to start a browser.
type LaunchOptions struct {
	Kind     Kind
	Headless bool

	// WebDriverURL is the remote end for selenium, such as http://localhost:4444/wd/hub.
	WebDriverURL string

	Logger *zap.Logger
}

// Args are the command-line switches for the browser process.
func (o LaunchOptions) Args() []string {
	if !o.Headless {
		return nil
	}
	switch o.Kind {
	case Firefox:
		return []string{"-headless", fmt.Sprintf("--width=%d", WindowWidth), fmt.Sprintf("--height=%d", WindowHeight)}
	default:
		return []string{"--headless", "--disable-gpu", fmt.Sprintf("--window-size=%d,%d", WindowWidth, WindowHeight)}
	}
}

// Launcher starts browsers for one engine.
type Launcher interface {
	Launch(ctx context.Context, options LaunchOptions) (Session, error)
}

// LauncherFunc lets a function be used as a Launcher.
type LauncherFunc func(ctx context.Context, options LaunchOptions) (Session, error)

func (f LauncherFunc) Launch(ctx context.Context, options LaunchOptions) (Session, error) {
	return f(ctx, options)
}
