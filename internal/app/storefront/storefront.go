package storefront

import (
	"container/list"
	"context"
	"sync"
	"time"

	"eventflow/internal/app/analytics"
	"eventflow/internal/app/auth"
	"eventflow/internal/app/cart"
	"eventflow/internal/app/catalog"
	"eventflow/internal/app/checkout"
	"eventflow/internal/app/preferences"
	"eventflow/internal/app/recent"
	"eventflow/internal/app/wishlist"
	"eventflow/internal/logging"
	"eventflow/internal/store"
)

// DefaultProfile serves requests that do not name a profile.
const DefaultProfile = "default"

// DefaultMaxProfiles bounds the profiles a Registry keeps in memory.
const DefaultMaxProfiles = 1024

// Config wires a Registry.
type Config struct {
	Store     store.KV
	Catalog   *catalog.Catalog
	Users     *auth.Directory
	Payments  checkout.Charger
	Issuer    auth.TokenIssuer
	AuthDelay time.Duration
	Clock     func() time.Time

	// MaxProfiles caps the cached profiles. The least recently used one is
	// dropped past the cap and rebuilt from the store on its next request.
	MaxProfiles int
}

// Registry hands out one Profile per client id. Every profile shares the
// backend store under its own key prefix; the user table is shared.
type Registry struct {
	cfg Config

	mu       sync.Mutex
	profiles map[string]*list.Element
	lru      *list.List // front is most recently used
}

// NewRegistry builds a registry.
func NewRegistry(cfg Config) *Registry {
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if cfg.MaxProfiles < 1 {
		cfg.MaxProfiles = DefaultMaxProfiles
	}
	return &Registry{cfg: cfg, profiles: make(map[string]*list.Element), lru: list.New()}
}

// Catalog exposes the shared catalog.
func (r *Registry) Catalog() *catalog.Catalog {
	return r.cfg.Catalog
}

// Profile returns the profile for id, hydrating it from the store the first
// time it is seen. An empty id selects DefaultProfile.
func (r *Registry) Profile(ctx context.Context, id string) *Profile {
	if id == "" {
		id = DefaultProfile
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if el, ok := r.profiles[id]; ok {
		r.lru.MoveToFront(el)
		return el.Value.(*Profile)
	}

	// The profile outlives the request that first asks for it, so a
	// cancelled request must not leave it hydrated with defaults.
	loadCtx := context.WithoutCancel(ctx)
	kv := store.WithPrefix(r.cfg.Store, id)
	c := cart.NewManager(loadCtx, kv)
	p := &Profile{
		ID:        id,
		Cart:      c,
		Analytics: analytics.New(loadCtx, kv),
		Wishlist:  wishlist.New(loadCtx, kv),
		Recent:    recent.New(loadCtx, kv),
		Filters:   preferences.New(loadCtx, kv),
		Auth: auth.NewManager(loadCtx, auth.Config{
			Users:    r.cfg.Users,
			Sessions: kv,
			Issuer:   r.cfg.Issuer,
			Delay:    r.cfg.AuthDelay,
		}),
		Checkout: checkout.New(c, r.cfg.Payments, kv),
		catalog:  r.cfg.Catalog,
		clock:    r.cfg.Clock,
	}
	r.profiles[id] = r.lru.PushFront(p)

	for r.lru.Len() > r.cfg.MaxProfiles {
		oldest := r.lru.Back()
		evicted := r.lru.Remove(oldest).(*Profile)
		delete(r.profiles, evicted.ID)
		logging.WithContext(ctx).Debug().Str("evicted", evicted.ID).Msg("profile evicted")
	}
	return p
}
