package storefront

import (
	"context"
	"time"

	"eventflow/internal/app/analytics"
	"eventflow/internal/app/auth"
	"eventflow/internal/app/cart"
	"eventflow/internal/app/catalog"
	"eventflow/internal/app/checkout"
	"eventflow/internal/app/preferences"
	"eventflow/internal/app/recent"
	"eventflow/internal/app/wishlist"
)

// Listing sizes used by the storefront pages.
const (
	RelatedCount   = 4
	SuggestedCount = 4
	FeaturedCount  = 3
	TrendingCount  = 6
)

// Profile bundles the state of one shopper.
type Profile struct {
	ID        string
	Cart      *cart.Manager
	Analytics *analytics.Tracker
	Wishlist  *wishlist.List
	Recent    *recent.Viewed
	Filters   *preferences.Filters
	Auth      *auth.Manager
	Checkout  *checkout.Service

	catalog *catalog.Catalog
	clock   func() time.Time
}

// Browse filters and pages the catalog, ranking popular events with this
// profile's analytics. The filter is remembered for the next visit.
func (p *Profile) Browse(ctx context.Context, f catalog.FilterState, page, size int) catalog.Page {
	p.Filters.Save(ctx, f)
	events := catalog.Filter(p.catalog.All(), f, p.Analytics.PopularityBoost, catalog.DateOf(p.clock()))
	return catalog.Paginate(events, page, size)
}

// EventDetail is an event with its related events.
type EventDetail struct {
	Event      catalog.Event   `json:"event"`
	Related    []catalog.Event `json:"related"`
	Wishlisted bool            `json:"wishlisted"`
}

// View loads an event and records the view.
func (p *Profile) View(ctx context.Context, id int) (EventDetail, error) {
	e, err := p.catalog.Get(id)
	if err != nil {
		return EventDetail{}, err
	}
	related, err := p.catalog.Related(id, RelatedCount)
	if err != nil {
		return EventDetail{}, err
	}

	p.Analytics.TrackView(ctx, id)
	p.Recent.Record(ctx, id)
	return EventDetail{Event: e, Related: related, Wishlisted: p.Wishlist.Contains(id)}, nil
}

// AddToCart adds tickets for a catalog zone and counts the add-to-cart.
func (p *Profile) AddToCart(ctx context.Context, eventID int, zone string, qty int) (cart.State, error) {
	e, err := p.catalog.Get(eventID)
	if err != nil {
		return cart.State{}, err
	}
	s, err := p.Cart.AddTickets(ctx, e, zone, qty)
	if err != nil {
		return s, err
	}
	p.Analytics.TrackAddToCart(ctx, eventID)
	return s, nil
}

// SetQuantity changes a line's quantity within the zone's stock.
func (p *Profile) SetQuantity(ctx context.Context, eventID int, zone string, qty int) (cart.State, error) {
	if qty <= 0 {
		return p.Cart.RemoveItem(ctx, eventID, zone), nil
	}
	e, err := p.catalog.Get(eventID)
	if err != nil {
		return cart.State{}, err
	}
	return p.Cart.SetTickets(ctx, e, zone, qty)
}

// Suggestions lists popular events not already in the cart.
func (p *Profile) Suggestions() []catalog.Event {
	return p.catalog.Suggested(p.Cart.State().EventIDs(), SuggestedCount)
}

// RecentlyViewed resolves the recently viewed ids, skipping any that are no
// longer in the catalog.
func (p *Profile) RecentlyViewed() []catalog.Event {
	return p.resolve(p.Recent.IDs())
}

// WishlistEvents resolves the wishlist.
func (p *Profile) WishlistEvents() []catalog.Event {
	return p.resolve(p.Wishlist.IDs())
}

// ToggleWishlist saves or unsaves a catalog event.
func (p *Profile) ToggleWishlist(ctx context.Context, id int) (bool, error) {
	if _, err := p.catalog.Get(id); err != nil {
		return false, err
	}
	return p.Wishlist.Toggle(ctx, id), nil
}

func (p *Profile) resolve(ids []int) []catalog.Event {
	out := make([]catalog.Event, 0, len(ids))
	for _, id := range ids {
		if e, err := p.catalog.Get(id); err == nil {
			out = append(out, e)
		}
	}
	return out
}
