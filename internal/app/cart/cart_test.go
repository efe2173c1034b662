package cart

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventflow/internal/app/catalog"
	"eventflow/internal/store"
)

func item(eventID int, zone string, price float64, qty int) Item {
	return Item{EventID: eventID, Title: "Event", Zone: zone, Price: price, Quantity: qty}
}

func TestAddItemMergesAndPreservesOrder(t *testing.T) {
	s := Empty()
	s = Reduce(s, AddItem{Item: item(1, "Main Floor", 65, 1)})
	s = Reduce(s, AddItem{Item: item(2, "Standard", 35, 0)})
	s = Reduce(s, AddItem{Item: item(1, "Main Floor", 65, 2)})
	s = Reduce(s, AddItem{Item: item(1, "Balcony", 38, 1)})

	require.Len(t, s.Items, 3)
	assert.Equal(t, 3, s.Items[0].Quantity)
	assert.Equal(t, 1, s.Items[1].Quantity, "default quantity is one")
	assert.Equal(t, "Balcony", s.Items[2].Zone)
}

func TestAddItemAccumulatesRegardlessOfOrder(t *testing.T) {
	a := item(1, "VIP", 120, 2)
	b := item(1, "VIP", 120, 5)
	other := item(3, "Standard", 149, 1)

	first := Reduce(Reduce(Reduce(Empty(), AddItem{Item: a}), AddItem{Item: other}), AddItem{Item: b})
	second := Reduce(Reduce(Reduce(Empty(), AddItem{Item: b}), AddItem{Item: a}), AddItem{Item: other})

	assert.Equal(t, 7, first.Quantity(1, "VIP"))
	assert.Equal(t, 7, second.Quantity(1, "VIP"))
	assert.Len(t, first.Items, 2)
	assert.Len(t, second.Items, 2)
}

func TestUpdateQuantityZeroIsRemove(t *testing.T) {
	base := Reduce(Reduce(Empty(), AddItem{Item: item(1, "A", 10, 2)}), AddItem{Item: item(2, "B", 20, 1)})

	for _, q := range []int{0, -3} {
		assert.Equal(t,
			Reduce(base, RemoveItem{EventID: 1, Zone: "A"}),
			Reduce(base, UpdateQuantity{EventID: 1, Zone: "A", Quantity: q}))
	}

	set := Reduce(base, UpdateQuantity{EventID: 1, Zone: "A", Quantity: 5})
	assert.Equal(t, 5, set.Quantity(1, "A"), "quantity is set, not incremented")
}

func TestRemoveMissingIsNoop(t *testing.T) {
	base := Reduce(Empty(), AddItem{Item: item(1, "A", 10, 2)})
	assert.Equal(t, base, Reduce(base, RemoveItem{EventID: 9, Zone: "A"}))
}

func TestReduceDoesNotMutateInput(t *testing.T) {
	base := Reduce(Empty(), AddItem{Item: item(1, "A", 10, 2)})
	_ = Reduce(base, AddItem{Item: item(1, "A", 10, 4)})
	_ = Reduce(base, UpdateQuantity{EventID: 1, Zone: "A", Quantity: 9})

	assert.Equal(t, 2, base.Items[0].Quantity)
}

func TestApplyCoupon(t *testing.T) {
	base := Reduce(Empty(), AddItem{Item: item(1, "Main Floor", 65, 1)})

	blank := Reduce(base, ApplyCoupon{Code: "   "})
	assert.Equal(t, MsgCouponRequired, blank.CouponError)
	assert.Empty(t, blank.CouponCode)
	assert.Nil(t, blank.AppliedCoupon)

	ok := Reduce(base, ApplyCoupon{Code: "save10"})
	require.NotNil(t, ok.AppliedCoupon)
	assert.Equal(t, "SAVE10", ok.CouponCode)
	assert.Empty(t, ok.CouponError)

	p := ok.Pricing()
	assert.InDelta(t, 70.2, p.GrandTotal, 1e-9)

	bad := Reduce(ok, ApplyCoupon{Code: "nope"})
	assert.Equal(t, ok.Items, bad.Items, "unknown coupons leave items alone")
	assert.Nil(t, bad.AppliedCoupon)
	assert.Equal(t, "NOPE", bad.CouponCode)
	assert.Equal(t, MsgCouponInvalid, bad.CouponError)
	assert.InDelta(t, 78.0, bad.Pricing().GrandTotal, 1e-9)

	cleared := Reduce(bad, RemoveCoupon{})
	assert.Equal(t, "", cleared.CouponCode)
	assert.Empty(t, cleared.CouponError)
	assert.Nil(t, cleared.AppliedCoupon)
}

func TestClear(t *testing.T) {
	s := Reduce(Reduce(Empty(), AddItem{Item: item(1, "A", 10, 2)}), ApplyCoupon{Code: "FEST20"})
	assert.Equal(t, Empty(), Reduce(s, Clear{}))
}

func TestSettleKeepsLaterChanges(t *testing.T) {
	charged := Reduce(Reduce(Empty(), AddItem{Item: item(1, "A", 10, 2)}), ApplyCoupon{Code: "SAVE10"})

	assert.Equal(t, Empty(), Reduce(charged, Settle{Items: charged.Items, CouponCode: charged.CouponCode}))

	later := Reduce(Reduce(charged, AddItem{Item: item(1, "A", 10, 1)}), AddItem{Item: item(2, "B", 5, 1)})
	s := Reduce(later, Settle{Items: charged.Items, CouponCode: charged.CouponCode})
	assert.Equal(t, []Item{item(1, "A", 10, 1), item(2, "B", 5, 1)}, s.Items)
	assert.Nil(t, s.AppliedCoupon, "the charged coupon is spent")

	swapped := Reduce(later, ApplyCoupon{Code: "FEST20"})
	s = Reduce(swapped, Settle{Items: charged.Items, CouponCode: charged.CouponCode})
	assert.Equal(t, "FEST20", s.CouponCode)
	require.NotNil(t, s.AppliedCoupon)
}

func TestHydrateDropsEmptyLines(t *testing.T) {
	snap := State{Items: []Item{item(1, "A", 10, 0), item(2, "B", 5, 3)}, CouponCode: "SAVE10"}
	s := Reduce(Empty(), Hydrate{Snapshot: snap})

	require.Len(t, s.Items, 1)
	assert.Equal(t, 2, s.Items[0].EventID)
	assert.Equal(t, "SAVE10", s.CouponCode)
	assert.Len(t, snap.Items, 2)
}

type flakyKV struct {
	*store.Memory
	failWrites bool
}

func (f *flakyKV) Set(ctx context.Context, key string, value []byte) error {
	if f.failWrites {
		return errors.New("disk full")
	}
	return f.Memory.Set(ctx, key, value)
}

func TestManagerPersistsEveryTransition(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemory()

	m := NewManager(ctx, kv)
	m.AddItem(ctx, item(1, "Main Floor", 65, 1))
	_, err := m.ApplyCoupon(ctx, "save10")
	require.NoError(t, err)

	reloaded := NewManager(ctx, kv)
	assert.Equal(t, m.State(), reloaded.State())
	assert.InDelta(t, 70.2, reloaded.Pricing().GrandTotal, 1e-9)
}

func TestManagerSurvivesStoreFailures(t *testing.T) {
	ctx := context.Background()
	kv := &flakyKV{Memory: store.NewMemory()}
	require.NoError(t, kv.Memory.Set(ctx, store.KeyCart, []byte(`{"items": 7}`)))

	m := NewManager(ctx, kv)
	assert.True(t, m.State().IsEmpty())

	kv.failWrites = true
	s := m.AddItem(ctx, item(4, "Lower Bowl", 480, 1))
	assert.Len(t, s.Items, 1, "state advances even when the write fails")
}

func TestManagerCouponErrors(t *testing.T) {
	ctx := context.Background()
	m := NewManager(ctx, store.NewMemory())

	_, err := m.ApplyCoupon(ctx, "")
	assert.ErrorIs(t, err, ErrCouponRequired)

	s, err := m.ApplyCoupon(ctx, "bogus")
	assert.ErrorIs(t, err, ErrInvalidCoupon)
	assert.Equal(t, "BOGUS", s.CouponCode)

	s = m.RemoveCoupon(ctx)
	assert.Empty(t, s.CouponCode)
}

func TestAddTicketsChecksStock(t *testing.T) {
	ctx := context.Background()
	m := NewManager(ctx, store.NewMemory())
	event := catalog.Event{
		ID:     2,
		Title:  "Comedy Night",
		Images: []string{"img.jpg"},
		Zones: []catalog.Zone{
			{Name: "Front Row", Price: 55, Available: 3},
			{Name: "Back Section", Price: 25, Available: 0},
		},
	}

	s, err := m.AddTickets(ctx, event, "Front Row", 2)
	require.NoError(t, err)
	assert.Equal(t, Item{EventID: 2, Title: "Comedy Night", Zone: "Front Row", Price: 55, Quantity: 2, Image: "img.jpg"}, s.Items[0])

	_, err = m.AddTickets(ctx, event, "Front Row", 2)
	assert.ErrorIs(t, err, ErrInsufficientStock)

	_, err = m.AddTickets(ctx, event, "Back Section", 1)
	assert.ErrorIs(t, err, ErrSoldOut)

	_, err = m.AddTickets(ctx, event, "Balcony", 1)
	assert.ErrorIs(t, err, catalog.ErrZoneNotFound)

	_, err = m.SetTickets(ctx, event, "Front Row", 4)
	assert.ErrorIs(t, err, ErrInsufficientStock)

	s, err = m.SetTickets(ctx, event, "Front Row", 0)
	require.NoError(t, err)
	assert.True(t, s.IsEmpty())
}

func TestEventIDs(t *testing.T) {
	s := Reduce(Empty(), AddItem{Item: item(3, "A", 1, 1)})
	s = Reduce(s, AddItem{Item: item(1, "A", 1, 1)})
	s = Reduce(s, AddItem{Item: item(3, "B", 1, 1)})
	assert.Equal(t, []int{3, 1}, s.EventIDs())
}
