package cart

import (
	"context"
	"errors"
	"sync"

	"eventflow/internal/app/catalog"
	"eventflow/internal/app/pricing"
	"eventflow/internal/logging"
	"eventflow/internal/metrics"
	"eventflow/internal/store"
)

var (
	// ErrCouponRequired is returned when a blank coupon code is applied.
	ErrCouponRequired = errors.New(MsgCouponRequired)
	// ErrInvalidCoupon is returned for unknown coupon codes.
	ErrInvalidCoupon = errors.New(MsgCouponInvalid)
	// ErrSoldOut is returned when adding tickets from an exhausted zone.
	ErrSoldOut = errors.New("This zone is sold out.")
	// ErrInsufficientStock is returned when a line would exceed the zone's remaining tickets.
	ErrInsufficientStock = errors.New("Not enough tickets left in this zone.")
)

// Manager owns one profile's cart. Transitions run one at a time in the
// order they are dispatched and every resulting state is written back to the
// store.
type Manager struct {
	mu    sync.Mutex
	kv    store.KV
	state State
}

// NewManager hydrates the cart from kv. A missing or unreadable snapshot
// yields an empty cart.
func NewManager(ctx context.Context, kv store.KV) *Manager {
	m := &Manager{kv: kv, state: Empty()}

	var snapshot State
	ok, err := store.LoadJSON(ctx, kv, store.KeyCart, &snapshot)
	if err != nil {
		logging.PersistenceError(ctx, "load", store.KeyCart, err)
		return m
	}
	if ok {
		m.state = Reduce(m.state, Hydrate{Snapshot: snapshot})
	}
	return m
}

// State returns a copy of the current cart.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.clone()
}

// Pricing prices the current cart.
func (m *Manager) Pricing() pricing.Breakdown {
	return m.State().Pricing()
}

// Dispatch applies cmd and persists the result. A failed write is logged and
// the in-memory state still advances.
func (m *Manager) Dispatch(ctx context.Context, cmd Command) State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dispatchLocked(ctx, cmd)
}

func (m *Manager) dispatchLocked(ctx context.Context, cmd Command) State {
	m.state = Reduce(m.state, cmd)
	metrics.TrackCartCommand(cmd.Name())

	if err := store.SaveJSON(ctx, m.kv, store.KeyCart, m.state); err != nil {
		logging.PersistenceError(ctx, "save", store.KeyCart, err)
	}
	return m.state.clone()
}

// AddItem adds item without stock checks.
func (m *Manager) AddItem(ctx context.Context, item Item) State {
	return m.Dispatch(ctx, AddItem{Item: item})
}

// AddTickets adds qty tickets for a catalog zone, snapshotting the zone price.
// It fails with ErrSoldOut or ErrInsufficientStock when the zone cannot cover
// the requested quantity on top of what is already in the cart.
func (m *Manager) AddTickets(ctx context.Context, event catalog.Event, zoneName string, qty int) (State, error) {
	zone, ok := event.FindZone(zoneName)
	if !ok {
		return State{}, catalog.ErrZoneNotFound
	}
	if qty <= 0 {
		qty = 1
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := checkStock(zone, m.state.Quantity(event.ID, zone.Name)+qty); err != nil {
		return m.state.clone(), err
	}
	return m.dispatchLocked(ctx, AddItem{Item: Item{
		EventID:  event.ID,
		Title:    event.Title,
		Zone:     zone.Name,
		Price:    zone.Price,
		Quantity: qty,
		Image:    event.Image(),
	}}), nil
}

// RemoveItem drops a line.
func (m *Manager) RemoveItem(ctx context.Context, eventID int, zone string) State {
	return m.Dispatch(ctx, RemoveItem{EventID: eventID, Zone: zone})
}

// UpdateQuantity sets a line's quantity. Zero or less removes the line.
func (m *Manager) UpdateQuantity(ctx context.Context, eventID int, zone string, qty int) State {
	return m.Dispatch(ctx, UpdateQuantity{EventID: eventID, Zone: zone, Quantity: qty})
}

// SetTickets is UpdateQuantity bounded by the zone's remaining tickets.
func (m *Manager) SetTickets(ctx context.Context, event catalog.Event, zoneName string, qty int) (State, error) {
	zone, ok := event.FindZone(zoneName)
	if !ok {
		return State{}, catalog.ErrZoneNotFound
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if qty > 0 {
		if err := checkStock(zone, qty); err != nil {
			return m.state.clone(), err
		}
	}
	return m.dispatchLocked(ctx, UpdateQuantity{EventID: event.ID, Zone: zone.Name, Quantity: qty}), nil
}

// ApplyCoupon applies a code. The returned error mirrors the coupon error
// recorded on the cart.
func (m *Manager) ApplyCoupon(ctx context.Context, code string) (State, error) {
	s := m.Dispatch(ctx, ApplyCoupon{Code: code})
	switch s.CouponError {
	case MsgCouponRequired:
		return s, ErrCouponRequired
	case MsgCouponInvalid:
		return s, ErrInvalidCoupon
	}
	return s, nil
}

// RemoveCoupon clears any coupon.
func (m *Manager) RemoveCoupon(ctx context.Context) State {
	return m.Dispatch(ctx, RemoveCoupon{})
}

// Clear empties the cart.
func (m *Manager) Clear(ctx context.Context) State {
	return m.Dispatch(ctx, Clear{})
}

// Settle removes the lines of a charged cart snapshot, keeping anything
// dispatched after the snapshot was taken.
func (m *Manager) Settle(ctx context.Context, charged State) State {
	return m.Dispatch(ctx, Settle{Items: charged.Items, CouponCode: charged.CouponCode})
}

func checkStock(zone catalog.Zone, want int) error {
	if zone.SoldOut() {
		return ErrSoldOut
	}
	if want > zone.Available {
		return ErrInsufficientStock
	}
	return nil
}
