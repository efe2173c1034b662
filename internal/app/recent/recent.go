package recent

import (
	"context"
	"sync"

	"eventflow/internal/logging"
	"eventflow/internal/store"
)

// Limit is how many recently viewed events are remembered.
const Limit = 10

// Viewed tracks recently viewed event ids, newest first.
type Viewed struct {
	mu  sync.Mutex
	kv  store.KV
	ids []int
}

// New hydrates the list from kv.
func New(ctx context.Context, kv store.KV) *Viewed {
	v := &Viewed{kv: kv}
	if _, err := store.LoadJSON(ctx, kv, store.KeyRecentlyViewed, &v.ids); err != nil {
		logging.PersistenceError(ctx, "load", store.KeyRecentlyViewed, err)
		v.ids = nil
	}
	if len(v.ids) > Limit {
		v.ids = v.ids[:Limit]
	}
	return v
}

// Record moves eventID to the front, dropping any earlier occurrence and
// anything past Limit.
func (v *Viewed) Record(ctx context.Context, eventID int) {
	v.mu.Lock()
	defer v.mu.Unlock()

	next := make([]int, 0, Limit)
	next = append(next, eventID)
	for _, id := range v.ids {
		if len(next) == Limit {
			break
		}
		if id != eventID {
			next = append(next, id)
		}
	}
	v.ids = next

	if err := store.SaveJSON(ctx, v.kv, store.KeyRecentlyViewed, v.ids); err != nil {
		logging.PersistenceError(ctx, "save", store.KeyRecentlyViewed, err)
	}
}

// IDs returns the ids newest first.
func (v *Viewed) IDs() []int {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]int, len(v.ids))
	copy(out, v.ids)
	return out
}
