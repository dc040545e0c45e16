// Package config loads the per-environment settings of the application under test from
// config_<env>.properties resources.
package config

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/qaharness/uiharness/framework"
	"github.com/qaharness/uiharness/framework/opt"
)

const (
	DefaultEnv = "dev"

	// EnvPrefix is prepended to a key, with dots replaced by underscores, to form the name of
	// the environment variable that overrides it: UIHARNESS_WEBDRIVER_URL for webdriver.url.
	EnvPrefix = "UIHARNESS"
)

// Well-known keys.
const (
	KeyURL          = "url"
	KeyUsername     = "username"
	KeyPassword     = "password"
	KeyWebDriverURL = "webdriver.url"
	KeyEngine       = "engine"
	KeyCapabilities = "capabilities"
)

var knownKeys = []string{KeyURL, KeyUsername, KeyPassword, KeyWebDriverURL, KeyEngine, KeyCapabilities}

//go:embed resources/*.properties
var embedded embed.FS

// Embedded returns the properties resources built into the binary.
func Embedded() fs.FS {
	sub, _ := fs.Sub(embedded, "resources")
	return sub
}

// ResourceName is the name of the properties resource for an environment.
func ResourceName(env string) string {
	return "config_" + env + ".properties"
}

// Config is an immutable snapshot of one environment's settings. Keys are case-insensitive.
type Config struct {
	env    string
	values map[string]string
	logger *zap.Logger
}

// NewConfig builds a snapshot directly from values, for tests and generated environments.
func NewConfig(env string, values map[string]string, logger *zap.Logger) *Config {
	c := &Config{env: env, values: make(map[string]string, len(values)), logger: logger}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	for k, v := range values {
		c.values[strings.ToLower(k)] = v
	}
	return c
}

func (c *Config) Env() string { return c.env }

// Get returns the value of a key, or None if it is not defined.
func (c *Config) Get(key string) opt.Maybe[string] {
	v, ok := c.values[strings.ToLower(key)]
	if !ok {
		c.logger.Warn("configuration key not found", zap.String("key", key), zap.String("env", c.env))
		return opt.None[string]()
	}
	c.logger.Debug("read configuration key", zap.String("key", key), zap.String("env", c.env))
	return opt.Some(v)
}

// Require is Get for keys the caller cannot do without. An absent or empty value is a
// *ConfigurationError.
func (c *Config) Require(key string) (string, error) {
	v := c.Get(key)
	if v.Value() == "" {
		return "", Errorf("%s not defined in %s", key, ResourceName(c.env))
	}
	return v.Value(), nil
}

// Bool interprets a key as a boolean, returning false if it is absent or not a boolean.
func (c *Config) Bool(key string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(c.Get(key).Value()))
	return err == nil && b
}

func (c *Config) Capabilities() framework.Capabilities {
	return framework.ParseCapabilities(c.values[KeyCapabilities])
}

// Keys returns the defined keys in sorted order.
func (c *Config) Keys() []string {
	ret := make([]string, 0, len(c.values))
	for k := range c.values {
		ret = append(ret, k)
	}
	sort.Strings(ret)
	return ret
}

// Loader reads properties resources from a filesystem.
type Loader struct {
	fsys   fs.FS
	logger *zap.Logger
}

func NewLoader(fsys fs.FS, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{fsys: fsys, logger: logger}
}

// NewDirLoader reads resources from a directory on disk, or from the embedded resources if
// dir is empty.
func NewDirLoader(dir string, logger *zap.Logger) *Loader {
	if dir == "" {
		return NewLoader(Embedded(), logger)
	}
	return NewLoader(os.DirFS(dir), logger)
}

// Load reads config_<env>.properties; an empty env means DefaultEnv. Values can be overridden
// by environment variables (see EnvPrefix).
func (l *Loader) Load(env string) (*Config, error) {
	if env == "" {
		env = DefaultEnv
	}
	name := ResourceName(env)
	data, err := fs.ReadFile(l.fsys, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &ConfigurationError{
				Message: fmt.Sprintf("no configuration for environment %q (%s not found)", env, name),
				Err:     ErrConfigNotFound,
			}
		}
		return nil, &LoadError{Resource: name, Err: err}
	}

	v := viper.New()
	v.SetConfigType("properties")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, k := range knownKeys {
		_ = v.BindEnv(k)
	}
	if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
		return nil, &LoadError{Resource: name, Err: err}
	}

	values := make(map[string]string)
	for _, k := range v.AllKeys() {
		if v.IsSet(k) {
			values[k] = v.GetString(k)
		}
	}
	l.logger.Info("loaded configuration", zap.String("env", env), zap.Int("keys", len(values)))
	return NewConfig(env, values, l.logger), nil
}
