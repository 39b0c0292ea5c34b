// internal/library/domain.go
package library

import (
	"errors"

	"librarysim/internal/catalog"
)

var (
	ErrEmptyCatalog = errors.New("catalog is empty")
	ErrNoWishlist   = errors.New("patron has no wishlist")
)

// PatronView is a read-only copy of a patron.
type PatronView struct {
	Name  string         `json:"name"`
	Kind  string         `json:"kind"`
	Limit int            `json:"limit"`
	Held  []catalog.Hold `json:"held"`
}

func viewOf(p *catalog.Patron) PatronView {
	return PatronView{
		Name:  p.Name,
		Kind:  p.Kind,
		Limit: p.Limit,
		Held:  append([]catalog.Hold{}, p.Held...),
	}
}

// BookEvent is the journal payload for catalog and circulation events.
type BookEvent struct {
	Book      catalog.Book `json:"book"`
	Patron    string       `json:"patron,omitempty"`
	Available int          `json:"available"`
	Total     int          `json:"total"`
}

// PatronEvent is the journal payload for PatronRegistered.
type PatronEvent struct {
	Name  string `json:"name"`
	Kind  string `json:"kind"`
	Limit int    `json:"limit"`
}

// NotificationEvent is the journal payload for WishlistNotified.
type NotificationEvent struct {
	Book    catalog.Book `json:"book"`
	Message string       `json:"message"`
}
