// internal/library/service.go
package library

import (
	"context"
	"io"

	"librarysim/internal/audit"
	"librarysim/internal/catalog"
	"librarysim/internal/importer"
	"librarysim/internal/wishlist"
)

// Service is the simplified front to the catalog, the patrons and their
// wishlists. Every call is serialised.
type Service interface {
	AddBook(ctx context.Context, b catalog.Book) (catalog.AddResult, error)
	ShowCatalog(ctx context.Context) []catalog.Entry
	ShowAnyBook(ctx context.Context) (string, error)
	BorrowBook(ctx context.Context, patron string, id int) (catalog.BorrowResult, error)
	ConfirmCollection(ctx context.Context, patron string, id int) (catalog.ConfirmResult, error)
	ReturnBook(ctx context.Context, patron string, id int) (catalog.ReturnResult, error)

	RegisterPatron(ctx context.Context, kind, name string) (PatronView, error)
	Patron(ctx context.Context, name string) (PatronView, error)
	Patrons(ctx context.Context) []PatronView

	Wishlist(ctx context.Context, patron string) (wishlist.Entry, error)
	Wishlists(ctx context.Context) []wishlist.Entry

	Import(ctx context.Context, format string, r io.Reader) (importer.Report, error)
	ImportFile(ctx context.Context, path string) (importer.Report, error)
	Audit(ctx context.Context) []audit.Violation
}
