// internal/membership/implementation.go
package membership

import (
	"fmt"

	"librarysim/internal/catalog"
)

// Registry holds the patrons known to the library, keyed by name.
// It is not safe for concurrent use.
type Registry struct {
	order  []*catalog.Patron
	byName map[string]*catalog.Patron
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]*catalog.Patron)}
}

// Register adds p. Names must be unique.
func (r *Registry) Register(p *catalog.Patron) error {
	if p.Name == "" {
		return ErrEmptyName
	}
	if _, ok := r.byName[p.Name]; ok {
		return fmt.Errorf("%w: %s", ErrPatronExists, p.Name)
	}
	r.order = append(r.order, p)
	r.byName[p.Name] = p
	return nil
}

// Get looks a patron up by name.
func (r *Registry) Get(name string) (*catalog.Patron, error) {
	p, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoPatron, name)
	}
	return p, nil
}

// List returns the patrons in registration order.
func (r *Registry) List() []*catalog.Patron {
	return append([]*catalog.Patron(nil), r.order...)
}
