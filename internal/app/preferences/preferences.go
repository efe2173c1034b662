package preferences

import (
	"context"
	"sync"

	"eventflow/internal/app/catalog"
	"eventflow/internal/logging"
	"eventflow/internal/store"
)

// Filters remembers a profile's last catalog filter.
type Filters struct {
	mu    sync.Mutex
	kv    store.KV
	state catalog.FilterState
}

// New hydrates saved filters from kv, falling back to the defaults.
func New(ctx context.Context, kv store.KV) *Filters {
	f := &Filters{kv: kv, state: catalog.DefaultFilters()}

	saved := catalog.DefaultFilters()
	ok, err := store.LoadJSON(ctx, kv, store.KeyFilters, &saved)
	if err != nil {
		logging.PersistenceError(ctx, "load", store.KeyFilters, err)
		return f
	}
	if ok {
		f.state = saved
	}
	return f
}

// Load returns the saved filter.
func (f *Filters) Load() catalog.FilterState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Save stores s as the profile's filter.
func (f *Filters) Save(ctx context.Context, s catalog.FilterState) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.state = s
	if err := store.SaveJSON(ctx, f.kv, store.KeyFilters, s); err != nil {
		logging.PersistenceError(ctx, "save", store.KeyFilters, err)
	}
}

// Reset restores the defaults and forgets the saved filter.
func (f *Filters) Reset(ctx context.Context) catalog.FilterState {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.state = catalog.DefaultFilters()
	if err := f.kv.Remove(ctx, store.KeyFilters); err != nil {
		logging.PersistenceError(ctx, "remove", store.KeyFilters, err)
	}
	return f.state
}
