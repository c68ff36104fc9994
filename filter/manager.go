package filter

import (
	"fmt"
	"sort"
	"sync"
)

const defaultCacheSize = 100

// Manager compiles expressions through a cache and keeps named presets
type Manager struct {
	cache   *lruCache
	presets map[string]*ExprFilter
	mu      sync.RWMutex
}

// NewManager creates a new filter manager
func NewManager() *Manager {
	return &Manager{
		cache:   newLRUCache(defaultCacheSize),
		presets: make(map[string]*ExprFilter),
	}
}

// Compile returns a compiled filter, reusing a cached program when possible
func (m *Manager) Compile(expression string) (*ExprFilter, error) {
	if f, ok := m.cache.Get(expression); ok {
		return f, nil
	}

	f, err := CompileExprFilter(expression)
	if err != nil {
		return nil, err
	}

	m.cache.Put(expression, f)
	return f, nil
}

// RegisterPresets compiles every preset; nothing is registered if one fails
func (m *Manager) RegisterPresets(presets map[string]string) error {
	compiled := make(map[string]*ExprFilter, len(presets))
	for name, expression := range presets {
		f, err := m.Compile(expression)
		if err != nil {
			return fmt.Errorf("failed to compile preset '%s': %w", name, err)
		}
		compiled[name] = f
	}

	m.mu.Lock()
	for name, f := range compiled {
		m.presets[name] = f
	}
	m.mu.Unlock()

	return nil
}

// Preset returns a registered preset
func (m *Manager) Preset(name string) (*ExprFilter, error) {
	m.mu.RLock()
	f, ok := m.presets[name]
	m.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("preset '%s' not found", name)
	}
	return f, nil
}

// Presets returns the registered preset names, sorted
func (m *Manager) Presets() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.presets))
	for name := range m.presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
