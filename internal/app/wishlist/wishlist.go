package wishlist

import (
	"context"
	"sync"

	"eventflow/internal/logging"
	"eventflow/internal/store"
)

// List is a profile's saved event ids, in the order they were added.
type List struct {
	mu  sync.Mutex
	kv  store.KV
	ids []int
}

// New hydrates the wishlist from kv.
func New(ctx context.Context, kv store.KV) *List {
	l := &List{kv: kv}
	if _, err := store.LoadJSON(ctx, kv, store.KeyWishlist, &l.ids); err != nil {
		logging.PersistenceError(ctx, "load", store.KeyWishlist, err)
		l.ids = nil
	}
	return l
}

// Toggle adds the id if absent and removes it otherwise. It reports whether
// the id is now saved.
func (l *List) Toggle(ctx context.Context, eventID int) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	next := make([]int, 0, len(l.ids)+1)
	removed := false
	for _, id := range l.ids {
		if id == eventID {
			removed = true
			continue
		}
		next = append(next, id)
	}
	if !removed {
		next = append(next, eventID)
	}
	l.ids = next

	if err := store.SaveJSON(ctx, l.kv, store.KeyWishlist, l.ids); err != nil {
		logging.PersistenceError(ctx, "save", store.KeyWishlist, err)
	}
	return !removed
}

// Contains reports whether the id is saved.
func (l *List) Contains(eventID int) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, id := range l.ids {
		if id == eventID {
			return true
		}
	}
	return false
}

// IDs returns a copy of the saved ids.
func (l *List) IDs() []int {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]int, len(l.ids))
	copy(out, l.ids)
	return out
}
