// internal/wishlist/notifier.go
package wishlist

import (
	"fmt"

	"librarysim/internal/catalog"
)

// Notifier keeps per-patron wishlists and their notification logs.
// It is not safe for concurrent use.
type Notifier struct {
	entries []*Entry
	byName  map[string]*Entry
}

var _ catalog.Notifier = (*Notifier)(nil)

// New creates a notifier with no wishlists.
func New() *Notifier {
	return &Notifier{byName: make(map[string]*Entry)}
}

// Attach puts b on p's wishlist, creating the wishlist on first use.
func (n *Notifier) Attach(p *catalog.Patron, b catalog.Book) catalog.AttachResult {
	e, ok := n.byName[p.Name]
	if !ok {
		e = &Entry{Patron: p.Name, Books: []catalog.Book{b}}
		e.Notifications = append(e.Notifications, fmt.Sprintf("User %s wishlisted book %s.", p.Name, b))
		n.entries = append(n.entries, e)
		n.byName[p.Name] = e
		return catalog.AttachCreated
	}

	if e.watching(b.ID) >= 0 {
		e.Notifications = append(e.Notifications, fmt.Sprintf("User %s already wishlisted book %s.", p.Name, b))
		return catalog.AttachDuplicate
	}

	e.Books = append(e.Books, b)
	e.Notifications = append(e.Notifications, fmt.Sprintf("User %s added book %s to wishlist.", p.Name, b))
	return catalog.AttachAdded
}

// Detach takes b off p's wishlist. The wishlist itself is kept.
func (n *Notifier) Detach(p *catalog.Patron, b catalog.Book) catalog.DetachResult {
	e, ok := n.byName[p.Name]
	if !ok {
		return catalog.DetachNoEntry
	}
	if len(e.Books) == 0 {
		return catalog.DetachEmpty
	}

	i := e.watching(b.ID)
	if i < 0 {
		return catalog.DetachNotWatched
	}

	e.Books = append(e.Books[:i], e.Books[i+1:]...)
	return catalog.DetachRemoved
}

// Notify tells every patron watching b that it is available. Watchers stay
// on the wishlist until they order the book.
func (n *Notifier) Notify(b catalog.Book) {
	for _, e := range n.entries {
		if e.watching(b.ID) < 0 {
			continue
		}
		e.Notifications = append(e.Notifications, fmt.Sprintf("User %s - book %s is available.", e.Patron, b))
	}
}

// Entry returns a copy of the named patron's wishlist.
func (n *Notifier) Entry(name string) (Entry, bool) {
	e, ok := n.byName[name]
	if !ok {
		return Entry{}, false
	}
	return e.clone(), true
}

// Entries returns copies of all wishlists in the order they were created.
func (n *Notifier) Entries() []Entry {
	out := make([]Entry, 0, len(n.entries))
	for _, e := range n.entries {
		out = append(out, e.clone())
	}
	return out
}
