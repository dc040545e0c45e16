// Package pwdriver runs browsers through Playwright (github.com/playwright-community/playwright-go)
// instead of a WebDriver server.
package pwdriver

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/playwright-community/playwright-go"
	"go.uber.org/zap"

	"github.com/qaharness/uiharness/framework/browser"
)

// Launcher starts browsers on a Playwright driver process that is shared by all of its
// sessions. The driver starts with the first Launch and stops on Close.
type Launcher struct {
	pw   *playwright.Playwright
	lock sync.Mutex
}

func NewLauncher() *Launcher {
	return &Launcher{}
}

func (l *Launcher) driver() (*playwright.Playwright, error) {
	l.lock.Lock()
	defer l.lock.Unlock()
	if l.pw == nil {
		pw, err := playwright.Run()
		if err != nil {
			return nil, fmt.Errorf("could not start playwright: %w", err)
		}
		l.pw = pw
	}
	return l.pw, nil
}

func (l *Launcher) Launch(ctx context.Context, options browser.LaunchOptions) (browser.Session, error) {
	logger := options.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	pw, err := l.driver()
	if err != nil {
		return nil, err
	}
	browserType := pw.Chromium
	if options.Kind == browser.Firefox {
		browserType = pw.Firefox
	}
	logger.Info("launching browser with playwright",
		zap.String("browser", string(options.Kind)),
		zap.Bool("headless", options.Headless))
	b, err := browserType.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(options.Headless),
		Args:     options.Args(),
	})
	if err != nil {
		return nil, fmt.Errorf("could not launch %s: %w", options.Kind, err)
	}
	bctx, err := b.NewContext(playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{Width: browser.WindowWidth, Height: browser.WindowHeight},
	})
	if err != nil {
		_ = b.Close()
		return nil, fmt.Errorf("could not create browser context: %w", err)
	}
	page, err := bctx.NewPage()
	if err != nil {
		_ = b.Close()
		return nil, fmt.Errorf("could not open page: %w", err)
	}
	return newSession(b, bctx, page, logger), nil
}

// Close stops the Playwright driver. Sessions should be quit first.
func (l *Launcher) Close() error {
	l.lock.Lock()
	defer l.lock.Unlock()
	if l.pw == nil {
		return nil
	}
	err := l.pw.Stop()
	l.pw = nil
	if err != nil {
		return errors.Join(errors.New("could not stop playwright"), err)
	}
	return nil
}
