package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/qaharness/uiharness/framework/browser"
	"github.com/qaharness/uiharness/framework/opt"
	"github.com/qaharness/uiharness/framework/uitest"
	"github.com/qaharness/uiharness/suitedef"
)

type commandParams struct {
	suiteFile      string
	configDir      string
	overrides      suitedef.Overrides
	engine         opt.Maybe[browser.Engine]
	filters        uitest.RegexFilters
	jUnitFile      string
	screenshotsDir string
	metricsFile    string
	debug          bool
	debugAll       bool
	demo           bool
	port           int
	host           string
	recordFailures string
	skipFile       string
}

func (c *commandParams) Read(args []string) bool {
	var (
		env, browserName, engineName string
		headless                     bool
		retries, threads             int
	)

	fs := flag.NewFlagSet("", flag.ExitOnError)
	fs.StringVar(&c.suiteFile, "suite", "", "suite definition file (YAML or JSON)")
	fs.StringVar(&env, "env", "dev", "environment name; configuration is read from config_<env>.properties")
	fs.StringVar(&browserName, "browser", "chrome", "browser to run: chrome or firefox")
	fs.BoolVar(&headless, "headless", false, "run the browser without a window")
	fs.StringVar(&engineName, "engine", "", "browser automation engine: selenium or playwright (default from config)")
	fs.StringVar(&c.configDir, "config-dir", "", "directory containing config_<env>.properties files (default built-in)")
	fs.IntVar(&retries, "retries", 0, "number of times to rerun a failed test method")
	fs.IntVar(&threads, "threads", suitedef.DefaultThreadCount, "number of suite entries to run at once")
	fs.Var(&c.filters.MustMatch, "run", "regex pattern(s) to select tests to run, matched against test names"+
		" without the suite entry name (e.g. login/signIn)")
	fs.Var(&c.filters.MustNotMatch, "skip", "regex pattern(s) to select tests not to run, matched like -run")
	fs.StringVar(&c.jUnitFile, "junit", "", "write JUnit XML output to the specified path")
	fs.StringVar(&c.screenshotsDir, "screenshots", ".", "directory under which failure screenshots are saved")
	fs.StringVar(&c.metricsFile, "metrics", "", "write Prometheus metrics in textfile format to the specified path")
	fs.BoolVar(&c.debug, "debug", false, "enable debug logging for failed tests")
	fs.BoolVar(&c.debugAll, "debug-all", false, "enable debug logging for all tests")
	fs.BoolVar(&c.demo, "demo", false, "serve the built-in mock site and run the suite against it")
	fs.IntVar(&c.port, "port", defaultPort, "port that the harness listens on for mock pages")
	fs.StringVar(&c.host, "host", "localhost", "external hostname of the harness, as seen by the browser")
	fs.StringVar(&c.recordFailures, "record-failures", "", "record failed test names to the given file")
	fs.StringVar(&c.skipFile, "skip-file", "", "file containing test names to skip, one per line, matched like -run")

	if err := fs.Parse(args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		fs.Usage()
		return false
	}

	var problems []string
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "env":
			c.overrides.Env = opt.Some(env)
		case "browser":
			if _, err := browser.ParseKind(browserName); err != nil {
				problems = append(problems, err.Error())
			}
			c.overrides.Browser = opt.Some(browserName)
		case "headless":
			c.overrides.Headless = opt.Some(headless)
		case "engine":
			engine, err := browser.ParseEngine(engineName)
			if err != nil {
				problems = append(problems, err.Error())
			}
			c.engine = opt.Some(engine)
		case "retries":
			if retries < 0 {
				problems = append(problems, "-retries must not be negative")
			}
			c.overrides.Retries = opt.Some(retries)
		case "threads":
			if threads < 1 {
				problems = append(problems, "-threads must be at least 1")
			}
			c.overrides.ThreadCount = opt.Some(threads)
		}
	})
	if c.demo && c.configDir != "" {
		problems = append(problems, "-demo cannot be used with -config-dir")
	}
	if len(problems) > 0 {
		for _, p := range problems {
			fmt.Fprintln(os.Stderr, p)
		}
		fs.Usage()
		return false
	}
	return true
}
