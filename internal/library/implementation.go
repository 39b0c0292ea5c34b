// internal/library/implementation.go
package library

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"librarysim/internal/audit"
	"librarysim/internal/catalog"
	"librarysim/internal/importer"
	"librarysim/internal/journal"
	"librarysim/internal/membership"
	"librarysim/internal/wishlist"
)

// service implements the Service interface.
type service struct {
	mu       sync.Mutex
	catalog  *catalog.Catalog
	wishlist *wishlist.Notifier
	patrons  *membership.Registry
	journal  journal.Journal
	logger   *slog.Logger
	tracer   trace.Tracer
	outcomes metric.Int64Counter
}

// Option configures NewService.
type Option func(*options)

type options struct {
	meters metric.MeterProvider
}

// WithMeterProvider sets where operation counts are reported. The global
// provider is used otherwise.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *options) {
		o.meters = mp
	}
}

// NewService creates the library front. The catalog, notifier and registry
// are owned by the caller and must not be used elsewhere concurrently.
func NewService(c *catalog.Catalog, n *wishlist.Notifier, r *membership.Registry, j journal.Journal, logger *slog.Logger, opts ...Option) Service {
	if logger == nil {
		logger = slog.Default()
	}
	o := options{meters: otel.GetMeterProvider()}
	for _, opt := range opts {
		opt(&o)
	}

	outcomes, err := o.meters.Meter("librarysim/library").Int64Counter("library.operations",
		metric.WithDescription("Library operations by outcome"),
	)
	if err != nil {
		logger.Warn("Failed to create operations counter", "err", err)
	}

	return &service{
		catalog:  c,
		wishlist: n,
		patrons:  r,
		journal:  j,
		logger:   logger,
		tracer:   otel.Tracer("librarysim/library"),
		outcomes: outcomes,
	}
}

func (s *service) start(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, "library."+op, trace.WithAttributes(attrs...))
}

func (s *service) count(ctx context.Context, op, outcome string) {
	if s.outcomes == nil {
		return
	}
	s.outcomes.Add(ctx, 1, metric.WithAttributes(
		attribute.String("op", op),
		attribute.String("outcome", outcome),
	))
}

// record appends events to the journal. The journal is an audit trail, so
// a failed append is logged and counted but never undoes or fails the
// operation that produced the events.
func (s *service) record(ctx context.Context, events ...journal.Event) {
	if len(events) == 0 {
		return
	}
	if err := s.journal.Append(ctx, events...); err != nil {
		trace.SpanFromContext(ctx).RecordError(err)
		s.count(ctx, "journal_append", "failed")
		s.logger.Error("Failed to record journal events", "type", events[0].Type, "count", len(events), "err", err)
	}
}

// recordBook journals one book event for entry.
func (s *service) recordBook(ctx context.Context, stream, eventType string, e *catalog.Entry, patron string) {
	ev, ok := s.bookEvent(stream, eventType, e, patron)
	if ok {
		s.record(ctx, ev)
	}
}

func (s *service) bookEvent(stream, eventType string, e *catalog.Entry, patron string) (journal.Event, bool) {
	ev, err := journal.NewEvent(stream, eventType, BookEvent{
		Book:      e.Book,
		Patron:    patron,
		Available: e.Available,
		Total:     e.Total,
	})
	if err != nil {
		s.logger.Error("Failed to build journal event", "type", eventType, "err", err)
		return journal.Event{}, false
	}
	return ev, true
}

// AddBook catalogs a book or one more copy of it.
func (s *service) AddBook(ctx context.Context, b catalog.Book) (catalog.AddResult, error) {
	ctx, span := s.start(ctx, "add_book", attribute.Int("book.id", b.ID))
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	res, ev, ok := s.add(b)
	s.count(ctx, "add_book", res.String())
	s.logger.Debug("Book added", "book", b.String(), "outcome", res.String())
	if ok {
		s.record(ctx, ev)
	}
	return res, nil
}

// add must be called with s.mu held.
func (s *service) add(b catalog.Book) (catalog.AddResult, journal.Event, bool) {
	res := s.catalog.Add(b)
	eventType := journal.BookAdded
	if res == catalog.AddedCopy {
		eventType = journal.BookCopyAdded
	}

	row, _ := s.catalog.Get(b)
	ev, ok := s.bookEvent(journal.BookStream(b.ID), eventType, &row, "")
	return res, ev, ok
}

// ShowCatalog returns every catalog row in insertion order.
func (s *service) ShowCatalog(ctx context.Context) []catalog.Entry {
	_, span := s.start(ctx, "show_catalog")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.catalog.Entries()
}

// ShowAnyBook returns the next book under the catalog cursor.
func (s *service) ShowAnyBook(ctx context.Context) (string, error) {
	_, span := s.start(ctx, "show_any_book")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	summary, ok := s.catalog.Next()
	if !ok {
		return "", ErrEmptyCatalog
	}
	return summary, nil
}

// BorrowBook orders book id for the named patron, or wishlists it when no
// copy is free.
func (s *service) BorrowBook(ctx context.Context, name string, id int) (catalog.BorrowResult, error) {
	ctx, span := s.start(ctx, "borrow_book",
		attribute.String("patron", name),
		attribute.Int("book.id", id),
	)
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.patrons.Get(name)
	if err != nil {
		return 0, err
	}

	res := s.catalog.Borrow(p, id, s.wishlist)
	span.SetAttributes(attribute.String("outcome", res.String()))
	s.count(ctx, "borrow_book", res.String())
	s.logger.Info("Borrow", "patron", name, "book_id", id, "outcome", res.String())

	var eventType string
	switch res {
	case catalog.BorrowOK:
		eventType = journal.BookOrdered
	case catalog.BorrowUnavailable:
		eventType = journal.BookWishlisted
	default:
		return res, nil
	}

	entry, _ := s.catalog.FindByID(id)
	s.recordBook(ctx, journal.PatronStream(name), eventType, entry, name)
	return res, nil
}

// ConfirmCollection marks an ordered book as picked up.
func (s *service) ConfirmCollection(ctx context.Context, name string, id int) (catalog.ConfirmResult, error) {
	ctx, span := s.start(ctx, "confirm_collection",
		attribute.String("patron", name),
		attribute.Int("book.id", id),
	)
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.patrons.Get(name)
	if err != nil {
		return 0, err
	}

	res := s.catalog.ConfirmCollection(p, id)
	span.SetAttributes(attribute.String("outcome", res.String()))
	s.count(ctx, "confirm_collection", res.String())
	s.logger.Info("Confirm collection", "patron", name, "book_id", id, "outcome", res.String())
	if res != catalog.ConfirmOK {
		return res, nil
	}

	entry, _ := s.catalog.FindByID(id)
	s.recordBook(ctx, journal.PatronStream(name), journal.BookCollected, entry, name)
	return res, nil
}

// ReturnBook gives the patron's copy back and tells waiting patrons when
// the book becomes available again.
func (s *service) ReturnBook(ctx context.Context, name string, id int) (catalog.ReturnResult, error) {
	ctx, span := s.start(ctx, "return_book",
		attribute.String("patron", name),
		attribute.Int("book.id", id),
	)
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.patrons.Get(name)
	if err != nil {
		return 0, err
	}

	res := s.catalog.Return(p, id, s.wishlist)
	span.SetAttributes(attribute.String("outcome", res.String()))
	s.count(ctx, "return_book", res.String())
	s.logger.Info("Return", "patron", name, "book_id", id, "outcome", res.String())
	if res != catalog.ReturnOK {
		return res, nil
	}

	entry, _ := s.catalog.FindByID(id)
	var events []journal.Event
	if ev, ok := s.bookEvent(journal.PatronStream(name), journal.BookReturned, entry, name); ok {
		events = append(events, ev)
	}

	if entry.Available == 1 {
		for _, w := range s.wishlist.Entries() {
			if !watches(w, id) {
				continue
			}
			msg := w.Notifications[len(w.Notifications)-1]
			nev, err := journal.NewEvent(journal.PatronStream(w.Patron), journal.WishlistNotified, NotificationEvent{
				Book:    entry.Book,
				Message: msg,
			})
			if err != nil {
				s.logger.Error("Failed to build journal event", "type", journal.WishlistNotified, "err", err)
				continue
			}
			events = append(events, nev)
			s.logger.Info("Wishlist notified", "patron", w.Patron, "book_id", id)
		}
	}
	s.record(ctx, events...)
	return res, nil
}

func watches(e wishlist.Entry, id int) bool {
	for _, b := range e.Books {
		if b.ID == id {
			return true
		}
	}
	return false
}

// RegisterPatron creates a patron of the given kind.
func (s *service) RegisterPatron(ctx context.Context, kind, name string) (PatronView, error) {
	ctx, span := s.start(ctx, "register_patron", attribute.String("patron", name))
	defer span.End()

	p, err := membership.Create(kind, name)
	if err != nil {
		return PatronView{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.patrons.Register(p); err != nil {
		return PatronView{}, err
	}
	s.logger.Info("Patron registered", "patron", name, "kind", p.Kind, "limit", p.Limit)

	ev, err := journal.NewEvent(journal.PatronStream(name), journal.PatronRegistered, PatronEvent{
		Name:  p.Name,
		Kind:  p.Kind,
		Limit: p.Limit,
	})
	if err != nil {
		s.logger.Error("Failed to build journal event", "type", journal.PatronRegistered, "err", err)
		return viewOf(p), nil
	}
	s.record(ctx, ev)
	return viewOf(p), nil
}

// Patron returns a copy of the named patron.
func (s *service) Patron(ctx context.Context, name string) (PatronView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.patrons.Get(name)
	if err != nil {
		return PatronView{}, err
	}
	return viewOf(p), nil
}

// Patrons returns copies of all patrons in registration order.
func (s *service) Patrons(ctx context.Context) []PatronView {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.patrons.List()
	out := make([]PatronView, 0, len(list))
	for _, p := range list {
		out = append(out, viewOf(p))
	}
	return out
}

// Wishlist returns a copy of the named patron's wishlist.
func (s *service) Wishlist(ctx context.Context, name string) (wishlist.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.patrons.Get(name); err != nil {
		return wishlist.Entry{}, err
	}
	e, ok := s.wishlist.Entry(name)
	if !ok {
		return wishlist.Entry{}, fmt.Errorf("%w: %s", ErrNoWishlist, name)
	}
	return e, nil
}

// Wishlists returns copies of all wishlists.
func (s *service) Wishlists(ctx context.Context) []wishlist.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.wishlist.Entries()
}

// Import adds every record in r to the catalog.
func (s *service) Import(ctx context.Context, format string, r io.Reader) (importer.Report, error) {
	ctx, span := s.start(ctx, "import", attribute.String("format", format))
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	rec := &recordingAdder{s: s}
	rep, err := importer.Read(rec, format, r)
	if err != nil {
		span.RecordError(err)
		s.count(ctx, "import", "failed")
		return rep, fmt.Errorf("import %s: %w", format, err)
	}
	s.finishImport(ctx, rep, rec)
	return rep, nil
}

// ImportFile adds every record in the file at path to the catalog.
func (s *service) ImportFile(ctx context.Context, path string) (importer.Report, error) {
	ctx, span := s.start(ctx, "import_file", attribute.String("path", path))
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	rec := &recordingAdder{s: s}
	rep, err := importer.ReadFile(rec, path)
	if err != nil {
		span.RecordError(err)
		s.count(ctx, "import", "failed")
		return rep, fmt.Errorf("import %s: %w", path, err)
	}
	s.finishImport(ctx, rep, rec)
	return rep, nil
}

func (s *service) finishImport(ctx context.Context, rep importer.Report, rec *recordingAdder) {
	s.count(ctx, "import", "ok")
	s.logger.Info("Imported books", "titles", rep.Titles, "copies", rep.Copies)
	s.record(ctx, rec.events...)
}

// recordingAdder adds to the catalog and collects one journal event per
// record. It runs with s.mu held.
type recordingAdder struct {
	s      *service
	events []journal.Event
}

func (r *recordingAdder) Add(b catalog.Book) catalog.AddResult {
	res, ev, ok := r.s.add(b)
	if ok {
		r.events = append(r.events, ev)
	}
	return res
}

// Audit checks the current state against the library invariants.
func (s *service) Audit(ctx context.Context) []audit.Violation {
	_, span := s.start(ctx, "audit")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	v := audit.Run(audit.Snapshot{
		Entries: s.catalog.Entries(),
		Patrons: s.patrons.List(),
	})
	span.SetAttributes(attribute.Int("violations", len(v)))
	return v
}
