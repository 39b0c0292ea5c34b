// internal/membership/service.go
package membership

import "librarysim/internal/catalog"

// NewPatron builds a patron for the given role.
func NewPatron(role Role, name string) *catalog.Patron {
	return &catalog.Patron{
		Name:  name,
		Kind:  role.String(),
		Limit: role.Limit(),
	}
}

// Create builds a patron from a role name such as "student".
func Create(kind, name string) (*catalog.Patron, error) {
	role, err := ParseRole(kind)
	if err != nil {
		return nil, err
	}
	if name == "" {
		return nil, ErrEmptyName
	}
	return NewPatron(role, name), nil
}
