package main

import (
	"bufio"
	"context"
	_ "embed" // this is required in order for go:embed to work
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"github.com/qaharness/uiharness/config"
	"github.com/qaharness/uiharness/framework"
	"github.com/qaharness/uiharness/framework/browser"
	"github.com/qaharness/uiharness/framework/browser/seleniumdriver"
	"github.com/qaharness/uiharness/framework/harness"
	"github.com/qaharness/uiharness/framework/uitest"
	"github.com/qaharness/uiharness/mocksite"
	"github.com/qaharness/uiharness/suitedef"
	"github.com/qaharness/uiharness/suites"
)

const (
	defaultPort            = 8111
	webDriverStatusTimeout = time.Second * 30
	demoEnv                = "demo"
	demoCredential         = "demo"
)

//go:embed VERSION
var versionString string // comes from the VERSION file which we update for each release

func main() {
	fmt.Printf("uiharness v%s\n", strings.TrimSpace(versionString))

	var params commandParams
	if !params.Read(os.Args) {
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	results, err := run(ctx, params)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if !results.OK() {
		os.Exit(1)
	}
}

func run(ctx context.Context, params commandParams) (*uitest.Results, error) {
	if params.skipFile != "" {
		if err := loadSuppressions(&params); err != nil {
			return nil, err
		}
	}

	logger := zap.NewNop()
	if params.debugAll {
		logger = framework.NewZapLogger(log.New(os.Stdout, "", log.LstdFlags), zapcore.DebugLevel)
	}

	suite := suitedef.Default(suitedef.Parameters{})
	if params.suiteFile != "" {
		var err error
		if suite, err = suitedef.LoadFile(params.suiteFile); err != nil {
			return nil, err
		}
	}
	suite = suite.Apply(params.overrides)

	configDir := params.configDir
	if params.demo {
		dir, err := os.MkdirTemp("", "uiharness-demo")
		if err != nil {
			return nil, err
		}
		defer func() { _ = os.RemoveAll(dir) }()
		configDir = dir
		for i := range suite.Tests {
			suite.Tests[i].Parameters.Env = demoEnv
		}
	}
	loader := config.NewDirLoader(configDir, logger)

	options := []harness.Option{harness.WithLogger(logger), harness.WithContext(ctx)}
	if engine, ok := params.engine.Get(); ok {
		options = append(options, harness.WithEngine(engine))
	}
	if params.port != 0 {
		options = append(options, harness.WithMockEndpoints(fmt.Sprintf("http://%s:%d", params.host, params.port)))
	}
	h, err := harness.New(config.NewStore(loader), options...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := h.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to shut down browser engine: %s\n", err)
		}
	}()

	if params.demo {
		if err := startDemoSite(ctx, h, params.port, configDir); err != nil {
			return nil, err
		}
	}

	stores, err := loadEnvironments(loader, suite)
	if err != nil {
		return nil, err
	}
	if err := waitForWebDrivers(ctx, stores, params); err != nil {
		return nil, err
	}

	firstStore := stores[entryEnv(suite.Tests[0])]
	fmt.Println()
	uitest.PrintFilterDescription(os.Stdout, params.filters, suites.AllCapabilities(), firstStore.Current().Capabilities())

	attachmentLogger := uitest.NewAttachmentTestLogger(params.screenshotsDir, logger)
	testLoggers := uitest.MultiTestLogger{
		uitest.ConsoleTestLogger{
			DebugOutputOnFailure: params.debug || params.debugAll,
			DebugOutputOnSuccess: params.debugAll,
		},
		attachmentLogger,
	}
	runID := uuid.NewString()
	var jUnitLogger *uitest.JUnitTestLogger
	if params.jUnitFile != "" {
		jUnitLogger = uitest.NewJUnitTestLogger(params.jUnitFile, suiteInfo(suite, runID, params), params.filters).
			WithAttachments(attachmentLogger)
		testLoggers = append(testLoggers, jUnitLogger)
	}
	var metricsLogger *uitest.MetricsTestLogger
	if params.metricsFile != "" {
		metricsLogger = uitest.NewMetricsTestLogger(prometheus.Labels{"run_id": runID})
		testLoggers = append(testLoggers, metricsLogger)
	}

	results := &uitest.Results{}
	g := new(errgroup.Group)
	g.SetLimit(suite.ThreadCount)
	for _, entry := range suite.Tests {
		entry := entry
		entryHarness := h.ForEnvironment(stores[entryEnv(entry)])
		g.Go(func() error {
			results.Merge(suites.RunEntry(entryHarness, entry, suites.EntryConfig{
				Filter:     params.filters.AsFilter(),
				TestLogger: testLoggers,
				Retries:    suite.Retries.OrElse(0),
			}))
			return nil
		})
	}
	_ = g.Wait()

	fmt.Println()
	uitest.PrintResults(results)

	if jUnitLogger != nil {
		if err := jUnitLogger.EndLog(); err != nil {
			return nil, fmt.Errorf("error writing log: %v", err)
		}
	}
	if metricsLogger != nil {
		if err := metricsLogger.WriteTextfile(params.metricsFile); err != nil {
			return nil, fmt.Errorf("error writing metrics: %v", err)
		}
	}

	if params.recordFailures != "" {
		f, err := os.Create(params.recordFailures)
		if err != nil {
			return nil, fmt.Errorf("cannot create suppression file: %v", err)
		}
		for _, name := range failedTestNames(results) {
			fmt.Fprintln(f, name)
		}
		_ = f.Close()
	}

	if results.MethodCount() == 0 {
		return nil, errNoTestsSelected
	}
	return results, nil
}

var errNoTestsSelected = errors.New("no tests were selected; -run and -skip patterns are matched" +
	" against test names without the suite entry name, such as login/signIn")

// failedTestNames lists the failed tests by their names within a suite entry, which is the
// form -skip and -skip-file take.
func failedTestNames(results *uitest.Results) []string {
	var names []string
	for _, test := range results.Failures {
		name := test.TestID[min(1, len(test.TestID)):].String()
		if name != "" && !slices.Contains(names, name) {
			names = append(names, name)
		}
	}
	return names
}

func entryEnv(entry suitedef.Entry) string {
	if entry.Parameters.Env == "" {
		return config.DefaultEnv
	}
	return entry.Parameters.Env
}

// loadEnvironments reads the configuration of every environment the suite uses, so that a
// missing file is reported before any browser starts.
func loadEnvironments(loader *config.Loader, suite *suitedef.Suite) (map[string]*config.Store, error) {
	stores := make(map[string]*config.Store)
	for _, entry := range suite.Tests {
		env := entryEnv(entry)
		if stores[env] != nil {
			continue
		}
		store := config.NewStore(loader)
		if err := store.Reload(env); err != nil {
			return nil, err
		}
		stores[env] = store
	}
	return stores, nil
}

// waitForWebDrivers checks that every Selenium server the suite needs is up.
func waitForWebDrivers(ctx context.Context, stores map[string]*config.Store, params commandParams) error {
	checked := make(map[string]bool)
	for _, store := range stores {
		cfg := store.Current()
		engine, ok := params.engine.Get()
		if !ok {
			var err error
			if engine, err = browser.ParseEngine(cfg.Get(config.KeyEngine).OrElse("")); err != nil {
				return config.Errorf("invalid engine in config_%s.properties: %w", cfg.Env(), err)
			}
		}
		if engine != browser.EngineSelenium {
			continue
		}
		url := cfg.Get(config.KeyWebDriverURL).OrElse(seleniumdriver.DefaultWebDriverURL)
		if checked[url] {
			continue
		}
		checked[url] = true
		if _, err := harness.WaitForWebDriver(ctx, url, webDriverStatusTimeout, os.Stdout); err != nil {
			return err
		}
	}
	return nil
}

func suiteInfo(suite *suitedef.Suite, runID string, params commandParams) uitest.SuiteInfo {
	var envs, browsers []string
	seen := make(map[string]bool)
	for _, e := range suite.Tests {
		if env := entryEnv(e); !seen["env:"+env] {
			seen["env:"+env] = true
			envs = append(envs, env)
		}
		b := e.Parameters.Browser
		if b == "" {
			b = string(browser.Chrome)
		}
		if !seen["browser:"+b] {
			seen["browser:"+b] = true
			browsers = append(browsers, b)
		}
	}
	return uitest.SuiteInfo{
		Name:        suite.Name,
		RunID:       runID,
		Environment: strings.Join(envs, ","),
		Browser:     strings.Join(browsers, ","),
		Engine:      string(params.engine.OrElse("")),
	}
}

// startDemoSite serves the mock site from the harness listener and writes the demo
// environment's configuration, which points at it.
func startDemoSite(ctx context.Context, h *harness.Harness, port int, configDir string) error {
	if _, err := h.Serve(ctx, port); err != nil {
		return err
	}
	site := mocksite.New(mocksite.Options{Username: demoCredential, Password: demoCredential})
	endpoint := h.NewMockEndpoint(site, harness.MockEndpointDescription("demo site"))
	fmt.Printf("Serving the demo site at %s/\n", endpoint.BaseURL())
	return writeDemoConfig(configDir, endpoint.BaseURL()+"/")
}

func writeDemoConfig(dir, url string) error {
	properties := strings.Join([]string{
		config.KeyURL + "=" + url,
		config.KeyUsername + "=" + demoCredential,
		config.KeyPassword + "=" + demoCredential,
		config.KeyCapabilities + "=" + suites.CapabilitySelfCheck,
		"",
	}, "\n")
	return os.WriteFile(filepath.Join(dir, config.ResourceName(demoEnv)), []byte(properties), 0o600)
}

func loadSuppressions(params *commandParams) error {
	file, err := os.Open(params.skipFile)
	if err != nil {
		return fmt.Errorf("cannot open provided suppression file: %v", err)
	}
	defer func() { _ = file.Close() }()
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		// Ignore blank lines
		if strings.TrimSpace(line) == "" {
			continue
		}
		escaped := regexp.QuoteMeta(line)
		if err := params.filters.MustNotMatch.Set(escaped); err != nil {
			return fmt.Errorf("cannot parse suppression: %v", err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("while processing suppression file: %v", err)
	}
	return nil
}
