package clients_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"librarysim/internal/catalog"
	"librarysim/internal/clients"
	"librarysim/internal/journal"
	"librarysim/internal/library"
	"librarysim/internal/membership"
	"librarysim/internal/wishlist"
)

func newClient(t *testing.T) *clients.LibraryClient {
	t.Helper()
	ctx := context.Background()
	svc := library.NewService(catalog.New(), wishlist.New(), membership.NewRegistry(), journal.NewMemory(), nil)
	_, err := svc.AddBook(ctx, catalog.Book{Name: "B", ID: 1, Year: 2002})
	require.NoError(t, err)

	srv := httptest.NewServer(library.NewHandler(svc, nil).Routes(nil))
	t.Cleanup(srv.Close)
	return clients.NewLibraryClient(srv.URL+"/", srv.Client())
}

func TestLibraryClientRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := newClient(t)

	_, err := c.RegisterPatron(ctx, "student", "AAA")
	require.NoError(t, err)
	p, err := c.RegisterPatron(ctx, "teacher", "BBB")
	require.NoError(t, err)
	assert.Equal(t, membership.TeacherLimit, p.Limit)

	out, err := c.Borrow(ctx, "AAA", 1)
	require.NoError(t, err)
	assert.Equal(t, "ordered", out.Outcome)

	out, err = c.Borrow(ctx, "BBB", 1)
	require.NoError(t, err)
	assert.Equal(t, "unavailable", out.Outcome)
	assert.NotEmpty(t, out.Error)

	out, err = c.Confirm(ctx, "AAA", 1)
	require.NoError(t, err)
	assert.Equal(t, "collected", out.Outcome)

	out, err = c.Return(ctx, "AAA", 1)
	require.NoError(t, err)
	assert.Equal(t, "returned", out.Outcome)

	w, err := c.Wishlist(ctx, "BBB")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"User BBB wishlisted book B, 2002, id 1.",
		"User BBB - book B, 2002, id 1 is available.",
	}, w.Notifications)

	next, err := c.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, "B, 2002, id 1, count: 1/1", next)
}

func TestLibraryClientErrors(t *testing.T) {
	ctx := context.Background()
	c := newClient(t)

	_, err := c.Borrow(ctx, "ghost", 1)
	var apiErr *clients.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Contains(t, apiErr.Message, "not registered")

	_, err = c.RegisterPatron(ctx, "janitor", "J")
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
}

func TestLibraryClientPlainTextGatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream unavailable", http.StatusBadGateway)
	}))
	t.Cleanup(srv.Close)
	c := clients.NewLibraryClient(srv.URL+"/", srv.Client())

	_, err := c.Borrow(context.Background(), "AAA", 1)
	var apiErr *clients.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Equal(t, "upstream unavailable", apiErr.Message)
}
