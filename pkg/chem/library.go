package chem

import (
	"slices"
	"sync"

	"github.com/topoforge/topoforge/pkg/errors"
)

// Library is a registry of building units keyed by name. Lookups return
// the stored template; callers copy before mutating. A Library is safe for
// concurrent readers once populated; Register calls must not race with
// lookups.
type Library struct {
	mu    sync.RWMutex
	units map[string]*BuildingUnit
}

// NewLibrary creates an empty building-unit library.
func NewLibrary() *Library {
	return &Library{units: make(map[string]*BuildingUnit)}
}

// Register validates and adds a unit to the library.
// Registering a name twice replaces the previous entry.
func (l *Library) Register(u *BuildingUnit) error {
	if err := u.Validate(); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidUnit, err, "register %q", u.Name)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.units[u.Name] = u
	return nil
}

// Lookup returns the unit registered under name.
func (l *Library) Lookup(name string) (*BuildingUnit, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	u, ok := l.units[name]
	if !ok {
		return nil, errors.New(errors.ErrCodeUnitNotFound, "building unit %q not in library", name)
	}
	return u, nil
}

// Names returns all registered unit names in sorted order.
func (l *Library) Names() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	names := make([]string, 0, len(l.units))
	for name := range l.units {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Len returns the number of registered units.
func (l *Library) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.units)
}
