package analytics

import (
	"context"
	"fmt"
	"sync"

	"eventflow/internal/logging"
	"eventflow/internal/store"
)

// Boost weights applied by PopularityBoost.
const (
	ViewWeight      = 0.5
	AddToCartWeight = 2.0
)

// Tracker keeps view and add-to-cart counters for one profile.
type Tracker struct {
	mu     sync.Mutex
	kv     store.KV
	counts map[string]int
}

// New hydrates a tracker from kv. Unreadable counters start from zero.
func New(ctx context.Context, kv store.KV) *Tracker {
	t := &Tracker{kv: kv, counts: map[string]int{}}
	if _, err := store.LoadJSON(ctx, kv, store.KeyAnalytics, &t.counts); err != nil {
		logging.PersistenceError(ctx, "load", store.KeyAnalytics, err)
		t.counts = map[string]int{}
	}
	if t.counts == nil {
		t.counts = map[string]int{}
	}
	return t
}

func viewKey(id int) string { return fmt.Sprintf("view_%d", id) }
func atcKey(id int) string  { return fmt.Sprintf("atc_%d", id) }

// TrackView counts a detail page view.
func (t *Tracker) TrackView(ctx context.Context, eventID int) {
	t.bump(ctx, viewKey(eventID))
}

// TrackAddToCart counts an add-to-cart.
func (t *Tracker) TrackAddToCart(ctx context.Context, eventID int) {
	t.bump(ctx, atcKey(eventID))
}

func (t *Tracker) bump(ctx context.Context, key string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.counts[key]++
	if err := store.SaveJSON(ctx, t.kv, store.KeyAnalytics, t.counts); err != nil {
		logging.PersistenceError(ctx, "save", store.KeyAnalytics, err)
	}
}

// ViewCount returns the number of recorded views.
func (t *Tracker) ViewCount(eventID int) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.counts[viewKey(eventID)]
}

// AddToCartCount returns the number of recorded add-to-carts.
func (t *Tracker) AddToCartCount(eventID int) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.counts[atcKey(eventID)]
}

// PopularityBoost is views*0.5 + add-to-carts*2. It satisfies catalog.BoostFunc.
func (t *Tracker) PopularityBoost(eventID int) float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return float64(t.counts[viewKey(eventID)])*ViewWeight +
		float64(t.counts[atcKey(eventID)])*AddToCartWeight
}
