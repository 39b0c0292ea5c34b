package catalog_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"librarysim/internal/catalog"
	"librarysim/internal/wishlist"
)

// recorder is a Notifier that only counts calls.
type recorder struct {
	attached []catalog.Book
	detached []catalog.Book
	notified []catalog.Book
}

func (r *recorder) Attach(_ *catalog.Patron, b catalog.Book) catalog.AttachResult {
	r.attached = append(r.attached, b)
	return catalog.AttachCreated
}

func (r *recorder) Detach(_ *catalog.Patron, b catalog.Book) catalog.DetachResult {
	r.detached = append(r.detached, b)
	return catalog.DetachNoEntry
}

func (r *recorder) Notify(b catalog.Book) {
	r.notified = append(r.notified, b)
}

func seeded(t *testing.T) *catalog.Catalog {
	t.Helper()
	c := catalog.New()
	for _, b := range []catalog.Book{
		{Name: "A", ID: 0, Year: 1999},
		{Name: "B", ID: 1, Year: 2002},
		{Name: "C", ID: 2, Year: 2004},
		{Name: "D", ID: 3, Year: 2020},
	} {
		require.Equal(t, catalog.AddedNew, c.Add(b))
	}
	return c
}

func TestAddCountsCopiesOfSameTitle(t *testing.T) {
	c := seeded(t)

	assert.Equal(t, catalog.AddedCopy, c.Add(catalog.Book{Name: "D", ID: 3, Year: 2020}))
	assert.Equal(t, catalog.AddedCopy, c.Add(catalog.Book{Name: "D", ID: 3, Year: 2020}))
	assert.Equal(t, 4, c.Len())

	entry, ok := c.FindByID(3)
	require.True(t, ok)
	assert.Equal(t, 3, entry.Available)
	assert.Equal(t, 3, entry.Total)
}

func TestAddSameIDDifferentYearIsNewRow(t *testing.T) {
	c := seeded(t)

	assert.Equal(t, catalog.AddedNew, c.Add(catalog.Book{Name: "D", ID: 3, Year: 2021}))
	assert.Equal(t, 5, c.Len())

	// lookups by ID still hit the first row
	entry, ok := c.FindByID(3)
	require.True(t, ok)
	assert.Equal(t, 2020, entry.Book.Year)
}

func TestNextCyclesInInsertionOrder(t *testing.T) {
	c := seeded(t)

	var got string
	for i := 0; i < 7; i++ {
		var ok bool
		got, ok = c.Next()
		require.True(t, ok)
	}
	assert.Equal(t, "C, 2004, id 2, count: 1/1", got)

	c.Add(catalog.Book{Name: "D", ID: 3, Year: 2020})
	got, _ = c.Next()
	assert.Equal(t, "D, 2020, id 3, count: 2/2", got)

	got, _ = c.Next()
	assert.Equal(t, "A, 1999, id 0, count: 1/1", got)
}

func TestNextShowsRowAddedAfterLastShown(t *testing.T) {
	c := seeded(t)
	for i := 0; i < 4; i++ {
		c.Next()
	}

	c.Add(catalog.Book{Name: "E", ID: 4, Year: 1999})
	got, ok := c.Next()
	require.True(t, ok)
	assert.Equal(t, "E, 1999, id 4, count: 1/1", got)
}

func TestNextOnEmptyCatalog(t *testing.T) {
	_, ok := catalog.New().Next()
	assert.False(t, ok)
}

func TestFindByIDMissing(t *testing.T) {
	_, ok := seeded(t).FindByID(42)
	assert.False(t, ok)
}

func TestBorrowConfirmReturnLifecycle(t *testing.T) {
	c := seeded(t)
	n := &recorder{}
	p := &catalog.Patron{Name: "P1", Limit: 5}

	require.Equal(t, catalog.BorrowOK, c.Borrow(p, 3, n))
	require.Len(t, p.Held, 1)
	assert.Equal(t, catalog.Hold{Book: catalog.Book{Name: "D", ID: 3, Year: 2020}, Status: catalog.Ordered}, p.Held[0])
	entry, _ := c.FindByID(3)
	assert.Equal(t, 0, entry.Available)
	assert.Equal(t, 1, entry.Total)
	assert.Len(t, n.detached, 1)

	assert.Equal(t, catalog.BorrowDuplicate, c.Borrow(p, 3, n))

	assert.Equal(t, catalog.ConfirmOK, c.ConfirmCollection(p, 3))
	assert.Equal(t, catalog.Borrowed, p.Held[0].Status)
	assert.Equal(t, catalog.ConfirmNotOrdered, c.ConfirmCollection(p, 3))

	assert.Equal(t, catalog.ReturnOK, c.Return(p, 3, n))
	assert.Empty(t, p.Held)
	assert.Equal(t, 1, entry.Available)
	assert.Equal(t, 1, entry.Total)
	assert.Len(t, n.notified, 1)
}

func TestBorrowChecksInOrder(t *testing.T) {
	c := seeded(t)
	n := &recorder{}

	full := &catalog.Patron{Name: "full", Limit: 1, Held: []catalog.Hold{{Book: catalog.Book{Name: "A"}}}}
	assert.Equal(t, catalog.BorrowLimitReached, c.Borrow(full, 99, n))
	assert.Len(t, full.Held, 1)

	p := &catalog.Patron{Name: "p", Limit: 2}
	assert.Equal(t, catalog.BorrowNotFound, c.Borrow(p, 99, n))
	assert.Empty(t, p.Held)

	other := &catalog.Patron{Name: "other", Limit: 2}
	require.Equal(t, catalog.BorrowOK, c.Borrow(other, 1, n))
	assert.Equal(t, catalog.BorrowUnavailable, c.Borrow(p, 1, n))
	assert.Empty(t, p.Held)
	require.Len(t, n.attached, 1)
	assert.Equal(t, 1, n.attached[0].ID)

	entry, _ := c.FindByID(1)
	assert.Equal(t, 0, entry.Available)
}

func TestReturnChecksInOrder(t *testing.T) {
	c := seeded(t)
	n := &recorder{}
	p := &catalog.Patron{Name: "p", Limit: 3}

	assert.Equal(t, catalog.ReturnNothingHeld, c.Return(p, 0, n))

	require.Equal(t, catalog.BorrowOK, c.Borrow(p, 0, n))
	assert.Equal(t, catalog.ReturnNotFound, c.Return(p, 99, n))
	assert.Equal(t, catalog.ReturnNotBorrowed, c.Return(p, 2, n))
	assert.Len(t, p.Held, 1)
	assert.Empty(t, n.notified)
}

func TestReturnNotifiesOnlyWhenFirstCopyComesBack(t *testing.T) {
	c := seeded(t)
	c.Add(catalog.Book{Name: "B", ID: 1, Year: 2002})
	n := &recorder{}
	p1 := &catalog.Patron{Name: "P1", Limit: 5}
	p2 := &catalog.Patron{Name: "P2", Limit: 5}

	require.Equal(t, catalog.BorrowOK, c.Borrow(p1, 1, n))
	require.Equal(t, catalog.BorrowOK, c.Borrow(p2, 1, n))

	require.Equal(t, catalog.ReturnOK, c.Return(p1, 1, n)) // 0 -> 1
	require.Equal(t, catalog.ReturnOK, c.Return(p2, 1, n)) // 1 -> 2
	assert.Len(t, n.notified, 1)
}

func TestConfirmCollectionNotHeld(t *testing.T) {
	c := seeded(t)
	p := &catalog.Patron{Name: "p", Limit: 1}
	assert.Equal(t, catalog.ConfirmNotHeld, c.ConfirmCollection(p, 0))
}

func TestEntriesIsACopy(t *testing.T) {
	c := seeded(t)
	entries := c.Entries()
	entries[0].Available = 100

	entry, _ := c.FindByID(0)
	assert.Equal(t, 1, entry.Available)
}

func TestWaitingPatronIsNotified(t *testing.T) {
	c := seeded(t)
	n := wishlist.New()
	p1 := &catalog.Patron{Name: "AAA", Limit: 5}
	p2 := &catalog.Patron{Name: "BBB", Limit: 10}

	require.Equal(t, catalog.BorrowOK, c.Borrow(p1, 1, n))
	require.Equal(t, catalog.BorrowUnavailable, c.Borrow(p2, 1, n))

	e, ok := n.Entry("BBB")
	require.True(t, ok)
	assert.Equal(t, []string{"User BBB wishlisted book B, 2002, id 1."}, e.Notifications)

	require.Equal(t, catalog.ReturnOK, c.Return(p1, 1, n))
	e, _ = n.Entry("BBB")
	assert.Equal(t, "User BBB - book B, 2002, id 1 is available.", e.Notifications[len(e.Notifications)-1])

	require.Equal(t, catalog.BorrowOK, c.Borrow(p2, 1, n))
	e, _ = n.Entry("BBB")
	assert.Empty(t, e.Books)
}

func TestOutcomeErrors(t *testing.T) {
	assert.NoError(t, catalog.BorrowOK.Err())
	assert.ErrorIs(t, catalog.BorrowLimitReached.Err(), catalog.ErrLimitReached)
	assert.ErrorIs(t, catalog.BorrowUnavailable.Err(), catalog.ErrUnavailable)
	assert.NoError(t, catalog.ReturnOK.Err())
	assert.ErrorIs(t, catalog.ReturnNotBorrowed.Err(), catalog.ErrNotBorrowed)
	assert.ErrorIs(t, catalog.ConfirmNotOrdered.Err(), catalog.ErrNotOrdered)
	assert.Equal(t, "duplicate_order", catalog.BorrowDuplicate.String())
}
