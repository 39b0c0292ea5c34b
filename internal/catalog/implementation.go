// internal/catalog/implementation.go
package catalog

// Catalog is the library's inventory. Create one with New at start-up and
// pass it to whatever needs it. It is not safe for concurrent use.
type Catalog struct {
	entries []Entry      // insertion order
	index   map[Book]int // (name, id, year) -> slot in entries
	current int
}

// New creates an empty catalog.
func New() *Catalog {
	return &Catalog{
		index: make(map[Book]int),
	}
}

// Add inserts a book, or counts one more copy when the same name, id and
// year are already catalogued.
func (c *Catalog) Add(b Book) AddResult {
	if i, ok := c.index[b]; ok {
		c.entries[i].Available++
		c.entries[i].Total++
		return AddedCopy
	}

	c.index[b] = len(c.entries)
	c.entries = append(c.entries, Entry{Book: b, Available: 1, Total: 1})
	return AddedNew
}

// Get returns the row for exactly this name, id and year.
func (c *Catalog) Get(b Book) (Entry, bool) {
	i, ok := c.index[b]
	if !ok {
		return Entry{}, false
	}
	return c.entries[i], true
}

// Len returns the number of distinct catalog rows.
func (c *Catalog) Len() int {
	return len(c.entries)
}

// Entries returns a copy of all rows in insertion order.
func (c *Catalog) Entries() []Entry {
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Next returns the summary of the entry under the cursor and advances it,
// wrapping to the first entry after the last. It reports false when the
// catalog is empty.
//
// The wrap happens lazily on the following call, so a row added right
// after the last one was shown is returned next instead of the first row.
func (c *Catalog) Next() (string, bool) {
	if len(c.entries) == 0 {
		return "", false
	}
	if c.current < 0 || c.current >= len(c.entries) {
		c.current = 0
	}

	summary := c.entries[c.current].String()
	c.current++
	return summary, true
}

// FindByID returns the first row whose book has the given ID.
func (c *Catalog) FindByID(id int) (*Entry, bool) {
	for i := range c.entries {
		if c.entries[i].Book.ID == id {
			return &c.entries[i], true
		}
	}
	return nil, false
}

// Borrow reserves a copy of book id for p. When no copy is free the patron
// is put on the notifier's wishlist instead.
func (c *Catalog) Borrow(p *Patron, id int, n Notifier) BorrowResult {
	if len(p.Held) >= p.Limit {
		return BorrowLimitReached
	}

	entry, ok := c.FindByID(id)
	if !ok {
		return BorrowNotFound
	}

	if p.holdIndex(id) >= 0 {
		return BorrowDuplicate
	}

	if entry.Available < 1 {
		n.Attach(p, entry.Book)
		return BorrowUnavailable
	}

	p.Held = append(p.Held, Hold{Book: entry.Book, Status: Ordered})
	entry.Available--
	n.Detach(p, entry.Book)
	return BorrowOK
}

// Return gives p's copy of book id back to the catalog. Watchers are told
// only when the book goes from no free copies to one.
func (c *Catalog) Return(p *Patron, id int, n Notifier) ReturnResult {
	if len(p.Held) == 0 {
		return ReturnNothingHeld
	}

	entry, ok := c.FindByID(id)
	if !ok {
		return ReturnNotFound
	}

	i := p.holdIndex(id)
	if i < 0 {
		return ReturnNotBorrowed
	}

	p.Held = append(p.Held[:i], p.Held[i+1:]...)
	entry.Available++
	if entry.Available == 1 {
		n.Notify(entry.Book)
	}
	return ReturnOK
}

// ConfirmCollection marks an ordered copy as picked up.
func (c *Catalog) ConfirmCollection(p *Patron, id int) ConfirmResult {
	i := p.holdIndex(id)
	if i < 0 {
		return ConfirmNotHeld
	}
	if p.Held[i].Status != Ordered {
		return ConfirmNotOrdered
	}

	p.Held[i].Status = Borrowed
	return ConfirmOK
}
