package apps

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

var (
	ErrAppExists   = errors.New("apps: app already registered")
	ErrAppNotFound = errors.New("apps: app not registered")
	ErrInvalidName = errors.New("apps: invalid app name")
)

// Entry is the registry view of one running micro app.
type Entry struct {
	Name     string `json:"name"`
	Prefetch bool   `json:"prefetch"`
}

// Lookup resolves an app name to its registry entry.
type Lookup interface {
	Lookup(name string) (Entry, bool)
}

// LookupFunc adapts a function to Lookup.
type LookupFunc func(name string) (Entry, bool)

func (f LookupFunc) Lookup(name string) (Entry, bool) {
	return f(name)
}

// IsEffective reports whether name is registered and not a prefetch
// instance. Only effective apps may write to the shared URL or state.
func IsEffective(l Lookup, name string) bool {
	if l == nil {
		return false
	}
	entry, ok := l.Lookup(name)
	return ok && !entry.Prefetch
}

// Registry stores app entries by name.
type Registry struct {
	mu    sync.RWMutex
	items map[string]Entry
}

// NewRegistry creates an empty app registry.
func NewRegistry() *Registry {
	return &Registry{items: make(map[string]Entry)}
}

// ValidateName checks that name can be used raw as a query key.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidName)
	}
	if strings.ContainsAny(name, "&=?#% \t\r\n") {
		return fmt.Errorf("%w: %q contains a reserved character", ErrInvalidName, name)
	}
	return nil
}

// Register adds an app entry.
func (r *Registry) Register(entry Entry) error {
	if err := ValidateName(entry.Name); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[entry.Name]; ok {
		return ErrAppExists
	}
	r.items[entry.Name] = entry
	return nil
}

// Upsert adds or replaces an app entry and reports whether it was new.
func (r *Registry) Upsert(entry Entry) (bool, error) {
	if err := ValidateName(entry.Name); err != nil {
		return false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	_, existed := r.items[entry.Name]
	r.items[entry.Name] = entry
	return !existed, nil
}

// Unregister removes an app entry.
func (r *Registry) Unregister(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[name]; !ok {
		return ErrAppNotFound
	}
	delete(r.items, name)
	return nil
}

// SetPrefetch flips the prefetch flag, e.g. when a prefetched app is shown.
func (r *Registry) SetPrefetch(name string, prefetch bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.items[name]
	if !ok {
		return ErrAppNotFound
	}
	entry.Prefetch = prefetch
	r.items[name] = entry
	return nil
}

// Lookup returns an app entry by name.
func (r *Registry) Lookup(name string) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.items[name]
	return entry, ok
}

// List returns entries ordered by name.
func (r *Registry) List() []Entry {
	r.mu.RLock()
	list := make([]Entry, 0, len(r.items))
	for _, entry := range r.items {
		list = append(list, entry)
	}
	r.mu.RUnlock()
	sort.Slice(list, func(i, j int) bool {
		return list[i].Name < list[j].Name
	})
	return list
}
