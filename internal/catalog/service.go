// internal/catalog/service.go
package catalog

// Notifier is the wishlist side of the borrow/return protocol. The catalog
// attaches a patron when a book is out, detaches on a successful order and
// asks for a notification when the last copy comes back.
type Notifier interface {
	Attach(p *Patron, b Book) AttachResult
	Detach(p *Patron, b Book) DetachResult
	Notify(b Book)
}

// AttachResult is the outcome of Notifier.Attach.
type AttachResult int

const (
	AttachCreated AttachResult = iota + 1
	AttachAdded
	AttachDuplicate
)

func (r AttachResult) String() string {
	switch r {
	case AttachCreated:
		return "created"
	case AttachAdded:
		return "added"
	case AttachDuplicate:
		return "duplicate"
	default:
		return "unknown"
	}
}

// DetachResult is the outcome of Notifier.Detach.
type DetachResult int

const (
	DetachRemoved DetachResult = iota + 1
	DetachNoEntry
	DetachEmpty
	DetachNotWatched
)

func (r DetachResult) String() string {
	switch r {
	case DetachRemoved:
		return "removed"
	case DetachNoEntry:
		return "no_entry"
	case DetachEmpty:
		return "empty"
	case DetachNotWatched:
		return "not_watched"
	default:
		return "unknown"
	}
}
