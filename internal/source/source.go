// Package source provides the data-source capability for the scope: a
// registry of named factories, each building a producer whose constructor
// configures the scope and whose ProduceData loop feeds it sample batches
// until Submit reports that the scope has stopped.
package source

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/sigview/sigview/internal/scope"
)

// Config carries the user-facing source parameters. Zero values fall back
// to per-source defaults.
type Config struct {
	SampleRate float64 `yaml:"sampleRate"`
	Channels   int     `yaml:"channels"`
	Frequency  float64 `yaml:"frequency"`
	BatchSize  int     `yaml:"batchSize"`
	FFTRef     float64 `yaml:"fftRef"`
}

// Factory builds a data source bound to the given scope. The factory must
// issue exactly one scope.Configure call before returning.
type Factory func(sc *scope.Scope, cfg Config, logger *slog.Logger) (scope.DataSource, error)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Factory)
)

// Register adds a named source factory. Registering a duplicate name
// panics, mirroring database/sql driver registration.
func Register(name string, f Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, dup := registry[name]; dup {
		panic(fmt.Sprintf("source: Register called twice for %q", name))
	}
	registry[name] = f
}

// New resolves a factory by name and builds the source. An unknown name
// is a contract violation surfaced before any goroutine starts.
func New(name string, sc *scope.Scope, cfg Config, logger *slog.Logger) (scope.DataSource, error) {
	registryMu.RLock()
	f, ok := registry[name]
	registryMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unknown source type %q: %w", name, scope.ErrCapabilityViolation)
	}
	return f(sc, cfg, logger)
}

// Names lists the registered source types in lexical order.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
