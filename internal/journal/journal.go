// Package journal records an append-only audit trail of library activity.
// The trail is write-mostly; library state is never rebuilt from it.
package journal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	ErrConflict    = errors.New("journal conflict: event already recorded")
	ErrEmptyStream = errors.New("event has no stream")
)

// Event types written by the library service.
const (
	BookAdded        = "BookAdded"
	BookCopyAdded    = "BookCopyAdded"
	BookOrdered      = "BookOrdered"
	BookCollected    = "BookCollected"
	BookReturned     = "BookReturned"
	BookWishlisted   = "BookWishlisted"
	WishlistNotified = "WishlistNotified"
	PatronRegistered = "PatronRegistered"
)

// Event is one recorded state change.
type Event struct {
	ID        uuid.UUID       `json:"id" db:"id"`
	Stream    string          `json:"stream" db:"stream"`
	Type      string          `json:"type" db:"event_type"`
	Data      json.RawMessage `json:"data" db:"event_data"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
}

// Journal stores events grouped by stream, e.g. "book-3" or "patron-AAA".
type Journal interface {
	Append(ctx context.Context, events ...Event) error
	Load(ctx context.Context, stream string) ([]Event, error)
}

// NewEvent builds an event with a fresh ID, marshalling data as JSON.
func NewEvent(stream, eventType string, data any) (Event, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return Event{}, fmt.Errorf("marshal %s data: %w", eventType, err)
	}
	return Event{
		ID:        uuid.New(),
		Stream:    stream,
		Type:      eventType,
		Data:      raw,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// BookStream names the stream for a catalog book ID.
func BookStream(id int) string {
	return fmt.Sprintf("book-%d", id)
}

// PatronStream names the stream for a patron.
func PatronStream(name string) string {
	return "patron-" + name
}
