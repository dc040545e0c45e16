package config

import (
	"sync"
	"sync/atomic"

	"github.com/qaharness/uiharness/framework/opt"
)

// Store holds the current configuration snapshot. Reloads are serialized, and readers
// always see a complete snapshot, either the old one or the new one.
type Store struct {
	loader  *Loader
	current atomic.Pointer[Config]
	lock    sync.Mutex
}

func NewStore(loader *Loader) *Store {
	return &Store{loader: loader}
}

// Reload loads the environment and publishes it. If loading fails the previous snapshot stays
// current.
func (s *Store) Reload(env string) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	c, err := s.loader.Load(env)
	if err != nil {
		return err
	}
	s.current.Store(c)
	return nil
}

// Current returns the published snapshot, or nil before the first successful Reload.
func (s *Store) Current() *Config {
	return s.current.Load()
}

func (s *Store) Get(key string) opt.Maybe[string] {
	c := s.current.Load()
	if c == nil {
		return opt.None[string]()
	}
	return c.Get(key)
}

// Require is Config.Require on the current snapshot.
func (s *Store) Require(key string) (string, error) {
	c := s.current.Load()
	if c == nil {
		return "", Errorf("configuration has not been loaded")
	}
	return c.Require(key)
}
