package journal

import (
	"context"
	"sync"
)

// Memory is an in-process Journal.
type Memory struct {
	mu     sync.Mutex
	seen   map[string]bool
	events []Event
}

func NewMemory() *Memory {
	return &Memory{seen: make(map[string]bool)}
}

func (m *Memory) Append(ctx context.Context, events ...Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	batch := make(map[string]bool, len(events))
	for _, e := range events {
		if e.Stream == "" {
			return ErrEmptyStream
		}
		id := e.ID.String()
		if m.seen[id] || batch[id] {
			return ErrConflict
		}
		batch[id] = true
	}
	for _, e := range events {
		m.seen[e.ID.String()] = true
		m.events = append(m.events, e)
	}
	return nil
}

func (m *Memory) Load(ctx context.Context, stream string) ([]Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []Event
	for _, e := range m.events {
		if e.Stream == stream {
			out = append(out, e)
		}
	}
	return out, nil
}

// All returns every recorded event in append order.
func (m *Memory) All() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Event(nil), m.events...)
}
