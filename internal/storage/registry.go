package storage

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"report-router/internal/common/errors"
)

// Registry maps backend names to the factories that open them. Backend
// packages register themselves from init, so a binary only offers the
// backends it imports.
type Registry struct {
	mu       sync.RWMutex
	backends map[string]StorageFactory
}

func NewRegistry() *Registry {
	return &Registry{backends: make(map[string]StorageFactory)}
}

// Register makes factory available under name. A second registration for
// the same name replaces the first.
func (r *Registry) Register(name string, factory StorageFactory) {
	if factory == nil {
		panic("storage: Register factory is nil for " + name)
	}

	r.mu.Lock()
	r.backends[name] = factory
	r.mu.Unlock()
}

// Create opens the backend registered under name.
func (r *Registry) Create(name string, config StorageConfig) (Storage, error) {
	r.mu.RLock()
	factory, ok := r.backends[name]
	r.mu.RUnlock()

	if !ok {
		available := r.GetAvailableTypes()
		return nil, errors.ConfigError(fmt.Sprintf("storage backend %q is not available (registered: %s)",
			name, strings.Join(available, ", ")))
	}
	return factory.Create(config)
}

// GetAvailableTypes returns the registered backend names, sorted.
func (r *Registry) GetAvailableTypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.backends))
	for name := range r.backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) IsRegistered(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.backends[name]
	return ok
}

// DefaultRegistry holds the backends registered by imported adapter packages.
var DefaultRegistry = NewRegistry()

func Register(name string, factory StorageFactory) {
	DefaultRegistry.Register(name, factory)
}

func Create(name string, config StorageConfig) (Storage, error) {
	return DefaultRegistry.Create(name, config)
}

func GetAvailableTypes() []string {
	return DefaultRegistry.GetAvailableTypes()
}
