// internal/wishlist/domain.go
package wishlist

import "librarysim/internal/catalog"

// Entry is one patron's wishlist. Patron is the patron's name; the
// notifier does not own the patron.
type Entry struct {
	Patron        string         `json:"patron"`
	Books         []catalog.Book `json:"books"`
	Notifications []string       `json:"notifications"`
}

func (e *Entry) watching(id int) int {
	for i, b := range e.Books {
		if b.ID == id {
			return i
		}
	}
	return -1
}

func (e Entry) clone() Entry {
	out := Entry{Patron: e.Patron}
	out.Books = append([]catalog.Book(nil), e.Books...)
	out.Notifications = append([]string(nil), e.Notifications...)
	return out
}
