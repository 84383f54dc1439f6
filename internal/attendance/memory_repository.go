package attendance

import (
	"context"
	"sort"
	"sync"
)

type inMemoryRepository struct {
	mu     sync.RWMutex
	nextID int64
	events []Event
	index  map[int64]int
}

// NewInMemory creates a concurrency-safe in-memory ledger useful for unit tests.
func NewInMemory() Repository {
	return &inMemoryRepository{index: make(map[int64]int)}
}

func (r *inMemoryRepository) Insert(_ context.Context, e Event) (Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	e.ID = r.nextID
	r.index[e.ID] = len(r.events)
	r.events = append(r.events, e)
	return e, nil
}

func (r *inMemoryRepository) ListByUser(_ context.Context, userID int64) ([]Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Event
	for _, e := range r.events {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (r *inMemoryRepository) ListAll(_ context.Context) ([]Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	sortNewestFirst(out)
	return out, nil
}

func (r *inMemoryRepository) SetVerified(_ context.Context, id int64, verified bool) (Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i, ok := r.index[id]
	if !ok {
		return Event{}, ErrNotFound
	}
	r.events[i].Verified = verified
	return r.events[i], nil
}

func sortNewestFirst(events []Event) {
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].Timestamp != events[j].Timestamp {
			return events[i].Timestamp > events[j].Timestamp
		}
		return events[i].ID > events[j].ID
	})
}
