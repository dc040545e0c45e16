package config

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration matches every *ConfigurationError.
	ErrConfiguration = errors.New("configuration error")

	// ErrConfigNotFound means there is no properties resource for the requested environment.
	ErrConfigNotFound = errors.New("configuration resource not found")
)

// ConfigurationError reports configuration that is missing or unusable, such as an absent
// resource, a required key with no value, or an unknown browser name.
type ConfigurationError struct {
	Message string
	Err     error
}

func (e *ConfigurationError) Error() string { return e.Message }

func (e *ConfigurationError) Is(target error) bool { return target == ErrConfiguration }

func (e *ConfigurationError) Unwrap() error { return e.Err }

// Errorf returns a *ConfigurationError. A %w verb in the format makes the wrapped error
// reachable through errors.Is and errors.As.
func Errorf(format string, args ...interface{}) error {
	err := fmt.Errorf(format, args...)
	return &ConfigurationError{Message: err.Error(), Err: errors.Unwrap(err)}
}

// LoadError means a properties resource exists but could not be read or parsed.
type LoadError struct {
	Resource string
	Err      error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("could not load %s: %s", e.Resource, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }
