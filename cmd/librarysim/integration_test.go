package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"librarysim/internal/catalog"
	"librarysim/internal/clients"
	"librarysim/internal/journal"
	"librarysim/internal/library"
	"librarysim/internal/membership"
	"librarysim/internal/wishlist"
)

type testSuite struct {
	server  *httptest.Server
	client  *clients.LibraryClient
	journal journal.Journal
}

// setupTestSuite serves a fresh library over HTTP. Events go to Postgres
// when LIBRARYSIM_TEST_DATABASE_URL is set.
func setupTestSuite(t *testing.T) *testSuite {
	t.Helper()
	ctx := context.Background()

	j, closeJournal, err := openJournal(ctx, os.Getenv("LIBRARYSIM_TEST_DATABASE_URL"))
	require.NoError(t, err)
	t.Cleanup(closeJournal)

	svc := library.NewService(catalog.New(), wishlist.New(), membership.NewRegistry(), j, nil)
	srv := httptest.NewServer(library.NewHandler(svc, nil).Routes(nil))
	t.Cleanup(srv.Close)

	return &testSuite{
		server:  srv,
		client:  clients.NewLibraryClient(srv.URL, srv.Client()),
		journal: j,
	}
}

func (ts *testSuite) addBook(t *testing.T, b catalog.Book) {
	t.Helper()
	body, _ := json.Marshal(b)
	resp, err := http.Post(ts.server.URL+"/books", "application/json", bytes.NewBuffer(body))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)
}

func (ts *testSuite) entry(t *testing.T, id int) catalog.Entry {
	t.Helper()
	resp, err := http.Get(ts.server.URL + "/books")
	require.NoError(t, err)
	defer resp.Body.Close()

	var entries []catalog.Entry
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&entries))
	for _, e := range entries {
		if e.Book.ID == id {
			return e
		}
	}
	t.Fatalf("book %d not in catalog", id)
	return catalog.Entry{}
}

func TestCheckoutFlow(t *testing.T) {
	ts := setupTestSuite(t)
	ctx := context.Background()

	// names are unique per run so a shared Postgres journal stays readable
	name := "member-" + uuid.NewString()[:8]
	_, err := ts.client.RegisterPatron(ctx, "student", name)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		ts.addBook(t, catalog.Book{Name: "Pride and Prejudice", ID: 10, Year: 1813})
	}

	out, err := ts.client.Borrow(ctx, name, 10)
	require.NoError(t, err)
	require.Equal(t, "ordered", out.Outcome)
	assert.Equal(t, 4, ts.entry(t, 10).Available)

	out, err = ts.client.Confirm(ctx, name, 10)
	require.NoError(t, err)
	require.Equal(t, "collected", out.Outcome)

	out, err = ts.client.Return(ctx, name, 10)
	require.NoError(t, err)
	require.Equal(t, "returned", out.Outcome)
	assert.Equal(t, 5, ts.entry(t, 10).Available)

	events, err := ts.journal.Load(ctx, journal.PatronStream(name))
	require.NoError(t, err)
	require.Len(t, events, 4)
	assert.Equal(t, journal.BookReturned, events[3].Type)
}

func TestConcurrentCheckoutPreventsDoubleBooking(t *testing.T) {
	ts := setupTestSuite(t)
	ctx := context.Background()

	ts.addBook(t, catalog.Book{Name: "The Great Gatsby", ID: 20, Year: 1925})

	prefix := uuid.NewString()[:8]
	var names []string
	for i := 0; i < 10; i++ {
		name := fmt.Sprintf("%s-member-%d", prefix, i)
		_, err := ts.client.RegisterPatron(ctx, "teacher", name)
		require.NoError(t, err)
		names = append(names, name)
	}

	var (
		wg           sync.WaitGroup
		mu           sync.Mutex
		successCount int
		wishlisted   int
	)
	for _, name := range names {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			out, err := ts.client.Borrow(ctx, name, 20)
			if err != nil {
				return
			}
			mu.Lock()
			defer mu.Unlock()
			switch out.Outcome {
			case "ordered":
				successCount++
			case "unavailable":
				wishlisted++
			}
		}(name)
	}
	wg.Wait()

	assert.Equal(t, 1, successCount, "Only one concurrent checkout should succeed")
	assert.Equal(t, len(names)-1, wishlisted)
	assert.Equal(t, 0, ts.entry(t, 20).Available)
}
