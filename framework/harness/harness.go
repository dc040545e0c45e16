package harness

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/qaharness/uiharness/config"
	"github.com/qaharness/uiharness/framework/browser"
	"github.com/qaharness/uiharness/framework/browser/pwdriver"
	"github.com/qaharness/uiharness/framework/browser/seleniumdriver"
	"github.com/qaharness/uiharness/framework/helpers"
)

// ImplicitWait is how long element lookups in a new session keep trying before they report
// that nothing matched.
const ImplicitWait = 20 * time.Second

// Harness opens browser sessions against the application under test described by the current
// configuration. It can also host mock pages on its own HTTP listener (see NewMockEndpoint).
//
// It contains no knowledge of any particular application; page objects and suites build on
// the sessions it provides.
type Harness struct {
	config        *config.Store
	launchers     map[browser.Engine]browser.Launcher
	engine        browser.Engine
	timeouts      browser.Timeouts
	ctx           context.Context
	mockEndpoints *mockEndpointsManager
	logger        *zap.Logger
}

// Option configures New.
type Option = helpers.ConfigOption[Harness]

// WithLauncher replaces the launcher used for an engine.
func WithLauncher(engine browser.Engine, launcher browser.Launcher) Option {
	return helpers.ConfigOptionFunc[Harness](func(h *Harness) error {
		h.launchers[engine] = launcher
		return nil
	})
}

// WithEngine fixes the engine, instead of taking it from the "engine" configuration key.
func WithEngine(engine browser.Engine) Option {
	return helpers.ConfigOptionFunc[Harness](func(h *Harness) error {
		h.engine = engine
		return nil
	})
}

// WithTimeouts sets the timeouts of the Page that each session gets.
func WithTimeouts(t browser.Timeouts) Option {
	return helpers.ConfigOptionFunc[Harness](func(h *Harness) error {
		h.timeouts = t
		return nil
	})
}

// WithContext sets the context that browser launches run under. Canceling it stops new
// sessions from being started.
func WithContext(ctx context.Context) Option {
	return helpers.ConfigOptionFunc[Harness](func(h *Harness) error {
		h.ctx = ctx
		return nil
	})
}

func WithLogger(logger *zap.Logger) Option {
	return helpers.ConfigOptionFunc[Harness](func(h *Harness) error {
		if logger == nil {
			return errors.New("nil logger")
		}
		h.logger = logger
		return nil
	})
}

// WithMockEndpoints sets the externally visible base URL of the harness's own listener, such
// as http://localhost:8111, which mock endpoint URLs are built from.
func WithMockEndpoints(externalBaseURL string) Option {
	return helpers.ConfigOptionFunc[Harness](func(h *Harness) error {
		h.mockEndpoints.externalBaseURL = externalBaseURL
		return nil
	})
}

func New(store *config.Store, options ...Option) (*Harness, error) {
	h := &Harness{
		config: store,
		launchers: map[browser.Engine]browser.Launcher{
			browser.EngineSelenium:   seleniumdriver.NewLauncher(),
			browser.EnginePlaywright: pwdriver.NewLauncher(),
		},
		ctx:    context.Background(),
		logger: zap.NewNop(),
	}
	h.mockEndpoints = newMockEndpointsManager("", h.logger)
	if err := helpers.ApplyOptions(h, options...); err != nil {
		return nil, err
	}
	h.mockEndpoints.logger = h.logger
	return h, nil
}

// ForEnvironment returns a Harness that opens sessions using another configuration store. It
// shares everything else, including launchers and mock endpoints, with h.
func (h *Harness) ForEnvironment(store *config.Store) *Harness {
	ret := *h
	ret.config = store
	return &ret
}

// Config returns the configuration snapshot that new sessions will use.
func (h *Harness) Config() *config.Config {
	return h.config.Current()
}

// Setup starts a browser and opens the application under test in it.
//
// The base URL is checked before anything is launched, so a missing "url" key, an unknown
// browser name, or an unknown engine are all reported as a *config.ConfigurationError with no
// browser left running. If the browser starts but cannot be prepared, it is quit before Setup
// returns.
func (h *Harness) Setup(ctx context.Context, kind string, headless bool) (*Session, error) {
	return h.setup(ctx, kind, headless, h.logger)
}

func (h *Harness) setup(ctx context.Context, kind string, headless bool, logger *zap.Logger) (*Session, error) {
	cfg := h.config.Current()
	if cfg == nil {
		return nil, config.Errorf("configuration has not been loaded")
	}
	url, err := cfg.Require(config.KeyURL)
	if err != nil {
		return nil, err
	}
	browserKind, err := browser.ParseKind(kind)
	if err != nil {
		return nil, config.Errorf("invalid browser: %w", err)
	}
	engine := h.engine
	if engine == "" {
		if engine, err = browser.ParseEngine(cfg.Get(config.KeyEngine).OrElse("")); err != nil {
			return nil, config.Errorf("invalid engine: %w", err)
		}
	}
	launcher := h.launchers[engine]
	if launcher == nil {
		return nil, config.Errorf("no launcher for engine %q", engine)
	}

	bs, err := launcher.Launch(ctx, browser.LaunchOptions{
		Kind:         browserKind,
		Headless:     headless,
		WebDriverURL: cfg.Get(config.KeyWebDriverURL).OrElse(""),
		Logger:       logger,
	})
	if err != nil {
		return nil, err
	}

	if err := prepare(bs, url); err != nil {
		if quitErr := bs.Quit(); quitErr != nil {
			logger.Warn("could not quit browser after failed setup", zap.Error(quitErr))
		}
		return nil, err
	}
	page, err := browser.NewPage(bs, browser.WithTimeouts(h.timeouts), browser.WithLogger(logger))
	if err != nil {
		_ = bs.Quit()
		return nil, err
	}
	logger.Info("browser session ready",
		zap.String("browser", string(browserKind)),
		zap.String("engine", string(engine)),
		zap.String("url", url))
	return &Session{browser: bs, page: page, kind: browserKind, logger: logger}, nil
}

func prepare(bs browser.Session, url string) error {
	if err := bs.MaximizeWindow(); err != nil {
		return fmt.Errorf("could not maximize window: %w", err)
	}
	if err := bs.Navigate(url); err != nil {
		return fmt.Errorf("could not open %s: %w", url, err)
	}
	if err := bs.SetImplicitWait(ImplicitWait); err != nil {
		return fmt.Errorf("could not set implicit wait: %w", err)
	}
	return nil
}

// Close releases what the harness holds that outlives sessions, such as the Playwright driver.
func (h *Harness) Close() error {
	var errs []error
	for _, l := range h.launchers {
		if c, ok := l.(interface{ Close() error }); ok {
			errs = append(errs, c.Close())
		}
	}
	return errors.Join(errs...)
}
