// internal/catalog/domain.go
package catalog

import (
	"errors"
	"fmt"
)

// Book identifies a title in the catalog.
type Book struct {
	Name string `json:"name" yaml:"name" xml:"name"`
	ID   int    `json:"id" yaml:"id" xml:"id"`
	Year int    `json:"year" yaml:"year" xml:"year"`
}

func (b Book) String() string {
	return fmt.Sprintf("%s, %d, id %d", b.Name, b.Year, b.ID)
}

// Entry is a catalog row: a book and its copy counts.
type Entry struct {
	Book      Book `json:"book"`
	Available int  `json:"available"`
	Total     int  `json:"total"`
}

func (e Entry) String() string {
	return fmt.Sprintf("%s, count: %d/%d", e.Book, e.Available, e.Total)
}

// HoldStatus tracks whether a reserved copy has been picked up.
type HoldStatus int

const (
	Ordered HoldStatus = iota
	Borrowed
)

func (s HoldStatus) String() string {
	switch s {
	case Ordered:
		return "Ordered"
	case Borrowed:
		return "Borrowed"
	default:
		return "Unknown"
	}
}

func (s HoldStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Hold is one book a patron has ordered or borrowed.
type Hold struct {
	Book   Book       `json:"book"`
	Status HoldStatus `json:"status"`
}

// Patron is a named borrower with a limit on simultaneous holds.
type Patron struct {
	Name  string `json:"name"`
	Kind  string `json:"kind"`
	Limit int    `json:"limit"`
	Held  []Hold `json:"held"`
}

func (p *Patron) holdIndex(id int) int {
	for i, h := range p.Held {
		if h.Book.ID == id {
			return i
		}
	}
	return -1
}

var (
	ErrLimitReached   = errors.New("borrowing limit reached")
	ErrNotFound       = errors.New("book not found")
	ErrDuplicateOrder = errors.New("book already ordered by patron")
	ErrUnavailable    = errors.New("no copies available, added to wishlist")
	ErrNothingHeld    = errors.New("patron holds no books")
	ErrNotBorrowed    = errors.New("book not borrowed by patron")
	ErrNotOrdered     = errors.New("book is not in ordered state")
)

// AddResult reports whether Add created a row or counted another copy.
type AddResult int

const (
	AddedNew AddResult = iota + 1
	AddedCopy
)

func (r AddResult) String() string {
	switch r {
	case AddedNew:
		return "added"
	case AddedCopy:
		return "copy_added"
	default:
		return "unknown"
	}
}

// BorrowResult is the outcome of Catalog.Borrow.
type BorrowResult int

const (
	BorrowOK BorrowResult = iota + 1
	BorrowLimitReached
	BorrowNotFound
	BorrowDuplicate
	BorrowUnavailable
)

func (r BorrowResult) String() string {
	switch r {
	case BorrowOK:
		return "ordered"
	case BorrowLimitReached:
		return "limit_reached"
	case BorrowNotFound:
		return "not_found"
	case BorrowDuplicate:
		return "duplicate_order"
	case BorrowUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// Err maps a failed outcome to its sentinel error.
func (r BorrowResult) Err() error {
	switch r {
	case BorrowLimitReached:
		return ErrLimitReached
	case BorrowNotFound:
		return ErrNotFound
	case BorrowDuplicate:
		return ErrDuplicateOrder
	case BorrowUnavailable:
		return ErrUnavailable
	default:
		return nil
	}
}

// ReturnResult is the outcome of Catalog.Return.
type ReturnResult int

const (
	ReturnOK ReturnResult = iota + 1
	ReturnNothingHeld
	ReturnNotFound
	ReturnNotBorrowed
)

func (r ReturnResult) String() string {
	switch r {
	case ReturnOK:
		return "returned"
	case ReturnNothingHeld:
		return "nothing_held"
	case ReturnNotFound:
		return "not_found"
	case ReturnNotBorrowed:
		return "not_borrowed"
	default:
		return "unknown"
	}
}

func (r ReturnResult) Err() error {
	switch r {
	case ReturnNothingHeld:
		return ErrNothingHeld
	case ReturnNotFound:
		return ErrNotFound
	case ReturnNotBorrowed:
		return ErrNotBorrowed
	default:
		return nil
	}
}

// ConfirmResult is the outcome of Catalog.ConfirmCollection.
type ConfirmResult int

const (
	ConfirmOK ConfirmResult = iota + 1
	ConfirmNotHeld
	ConfirmNotOrdered
)

func (r ConfirmResult) String() string {
	switch r {
	case ConfirmOK:
		return "collected"
	case ConfirmNotHeld:
		return "not_held"
	case ConfirmNotOrdered:
		return "not_ordered"
	default:
		return "unknown"
	}
}

func (r ConfirmResult) Err() error {
	switch r {
	case ConfirmNotHeld:
		return ErrNotBorrowed
	case ConfirmNotOrdered:
		return ErrNotOrdered
	default:
		return nil
	}
}
