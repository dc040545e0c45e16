package suitedef

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qaharness/uiharness/framework/browser"
	"github.com/qaharness/uiharness/framework/opt"
	"github.com/qaharness/uiharness/framework/uitest"
)

const regressionSuite = `---
name: regression
threadCount: 2
retries: 1
tests:
  - name: chrome-dev
    parameters:
      env: dev
      browser: chrome
      headless: true
    include:
      - login/.*
  - name: firefox-qa
    parameters: {env: qa, browser: firefox}
`

func TestParseYAML(t *testing.T) {
	s, err := Parse([]byte(regressionSuite))
	require.NoError(t, err)

	assert.Equal(t, "regression", s.Name)
	assert.Equal(t, 2, s.ThreadCount)
	assert.Equal(t, opt.Some(1), s.Retries)
	require.Len(t, s.Tests, 2)
	assert.Equal(t, Entry{
		Name:       "chrome-dev",
		Parameters: Parameters{Env: "dev", Browser: "chrome", Headless: opt.Some(true)},
		Include:    []string{"login/.*"},
	}, s.Tests[0])
	assert.Equal(t, Parameters{Env: "qa", Browser: "firefox"}, s.Tests[1].Parameters)
	assert.False(t, s.Tests[1].Parameters.Headless.IsDefined())
}

func TestParseJSON(t *testing.T) {
	s, err := Parse([]byte(`{"name": "smoke", "tests": [{"name": "one", "parameters": {"browser": "Chrome"}}]}`))
	require.NoError(t, err)
	assert.Equal(t, "smoke", s.Name)
	assert.Equal(t, DefaultThreadCount, s.ThreadCount)
	assert.False(t, s.Retries.IsDefined())
}

func TestParseErrors(t *testing.T) {
	for _, p := range []struct {
		desc, input, message string
	}{
		{"empty", "", "empty"},
		{"no tests", "name: x\n", "no tests"},
		{"unknown key", "name: x\nthreads: 2\ntests: [{name: a}]\n", "threads"},
		{"unnamed test", "tests: [{parameters: {env: dev}}]\n", "test 1 has no name"},
		{"duplicate test", "tests: [{name: a}, {name: a}]\n", `duplicate test name "a"`},
		{"bad browser", "tests: [{name: a, parameters: {browser: safari}}]\n", "unsupported browser"},
		{"bad include", "tests: [{name: a, include: ['(']}]\n", "invalid regex"},
		{"negative threads", "threadCount: -1\ntests: [{name: a}]\n", "threadCount"},
		{"negative retries", "retries: -2\ntests: [{name: a}]\n", "retries"},
	} {
		t.Run(p.desc, func(t *testing.T) {
			_, err := Parse([]byte(p.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), p.message)
		})
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "regression.yaml")
	require.NoError(t, os.WriteFile(path, []byte(regressionSuite), 0o600))

	s, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "regression", s.Name)

	_, err = LoadFile(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("tests: []\n"), 0o600))
	_, err = LoadFile(bad)
	assert.ErrorContains(t, err, `"bad.yaml"`)
}

func TestApplyOverrides(t *testing.T) {
	s, err := Parse([]byte(regressionSuite))
	require.NoError(t, err)

	out := s.Apply(Overrides{
		Browser:     opt.Some("firefox"),
		Headless:    opt.Some(false),
		ThreadCount: opt.Some(4),
	})
	assert.Equal(t, 4, out.ThreadCount)
	assert.Equal(t, opt.Some(1), out.Retries)
	for _, e := range out.Tests {
		assert.Equal(t, "firefox", e.Parameters.Browser)
		assert.Equal(t, opt.Some(false), e.Parameters.Headless)
	}
	assert.Equal(t, "dev", out.Tests[0].Parameters.Env)
	assert.Equal(t, "qa", out.Tests[1].Parameters.Env)

	assert.Equal(t, "chrome", s.Tests[0].Parameters.Browser, "original suite must not change")
}

func TestApplyWithoutOverridesKeepsFileValues(t *testing.T) {
	s, err := Parse([]byte(regressionSuite))
	require.NoError(t, err)

	out := s.Apply(Overrides{})
	assert.Equal(t, s, out)
	assert.NotSame(t, s, out)
}

func TestDefault(t *testing.T) {
	s := Default(Parameters{Env: "dev", Browser: string(browser.Chrome)})
	require.NoError(t, s.Validate())
	require.Len(t, s.Tests, 1)
	assert.Equal(t, DefaultEntryName, s.Tests[0].Name)
	assert.Nil(t, s.Tests[0].Filter())
}

func TestEntryFilterIsRelativeToEntry(t *testing.T) {
	e := Entry{Name: "chrome-dev", Include: []string{"login/signIn", "facade/.*"}}
	filter := e.Filter()
	require.NotNil(t, filter)

	for id, expected := range map[string]bool{
		"chrome-dev":                 true,
		"chrome-dev/login":           true,
		"chrome-dev/login/signIn":    true,
		"chrome-dev/facade/alerts":   true,
		"chrome-dev/home/navigation": false,
		"firefox-qa/login/signIn":    false,
	} {
		assert.Equal(t, expected, filter(splitID(id)), id)
	}
}

func splitID(s string) uitest.TestID {
	return uitest.TestID(strings.Split(s, "/"))
}
