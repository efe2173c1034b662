package checkout

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventflow/internal/app/cart"
	"eventflow/internal/app/payment"
	"eventflow/internal/app/validation"
	"eventflow/internal/store"
)

var address = validation.Address{
	FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com",
	Address: "1 Main St", City: "Austin", State: "TX", Zip: "73301",
}

var goodCard = Card{Number: "4242 4242 4242 4242", Expiry: "12/49", CVC: "123"}

func setup(t *testing.T) (*Service, *cart.Manager, store.KV) {
	t.Helper()
	ctx := context.Background()
	kv := store.NewMemory()
	c := cart.NewManager(ctx, kv)
	c.AddItem(ctx, cart.Item{EventID: 1, Title: "Midnight Jazz", Zone: "Main Floor", Price: 65, Quantity: 1})
	_, err := c.ApplyCoupon(ctx, "SAVE10")
	require.NoError(t, err)

	svc := New(c, payment.NewProcessor(payment.Config{}), kv)
	svc.now = func() time.Time { return time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC) }
	return svc, c, kv
}

func TestCheckoutPlacesOrder(t *testing.T) {
	ctx := context.Background()
	svc, c, kv := setup(t)

	order, err := svc.Checkout(ctx, address, goodCard, "usr_abc")
	require.NoError(t, err)

	assert.Regexp(t, regexp.MustCompile(`^ORD-[A-Z0-9]{8}$`), order.ID)
	assert.Equal(t, 70.2, order.Pricing.GrandTotal)
	assert.Equal(t, "SAVE10", order.CouponCode)
	assert.Equal(t, "usr_abc", order.UserID)
	assert.NotEmpty(t, order.PaymentIntentID)
	assert.True(t, c.State().IsEmpty(), "cart is cleared after a successful charge")

	second := cart.NewManager(ctx, kv)
	assert.True(t, second.State().IsEmpty(), "cleared cart is persisted")

	history := svc.Orders(ctx)
	require.Len(t, history, 1)
	assert.Equal(t, order.ID, history[0].ID)
}

func TestCheckoutNewestFirst(t *testing.T) {
	ctx := context.Background()
	svc, c, _ := setup(t)

	first, err := svc.Checkout(ctx, address, goodCard, "")
	require.NoError(t, err)
	c.AddItem(ctx, cart.Item{EventID: 2, Zone: "Standard", Price: 35, Quantity: 2})
	second, err := svc.Checkout(ctx, address, goodCard, "")
	require.NoError(t, err)

	history := svc.Orders(ctx)
	require.Len(t, history, 2)
	assert.Equal(t, []string{second.ID, first.ID}, []string{history[0].ID, history[1].ID})
}

func TestCheckoutDeclineKeepsCart(t *testing.T) {
	ctx := context.Background()
	svc, c, _ := setup(t)

	_, err := svc.Checkout(ctx, address, Card{Number: "4000000000000002", Expiry: "12/49", CVC: "123"}, "")

	var perr *PaymentError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "Your card was declined.", perr.Message)
	assert.Len(t, c.State().Items, 1)
	assert.Empty(t, svc.Orders(ctx))
}

func TestCheckoutValidation(t *testing.T) {
	ctx := context.Background()
	svc, c, _ := setup(t)

	_, err := svc.Checkout(ctx, validation.Address{FirstName: "Ada"}, goodCard, "")
	var fields validation.Errors
	require.True(t, errors.As(err, &fields))
	assert.Equal(t, "ZIP code is required", fields["zip"])
	assert.NotContains(t, fields, "firstName")

	c.Clear(ctx)
	_, err = svc.Checkout(ctx, address, goodCard, "")
	assert.ErrorIs(t, err, ErrEmptyCart)
}

type stubCharger struct {
	req payment.ChargeRequest
}

func (s *stubCharger) Charge(_ context.Context, req payment.ChargeRequest) (payment.Result, error) {
	s.req = req
	return payment.Result{Success: true, PaymentIntentID: "pi_mock_test"}, nil
}

func TestCheckoutChargesRoundedTotalInCents(t *testing.T) {
	ctx := context.Background()
	_, c, kv := setup(t)
	charger := &stubCharger{}
	svc := New(c, charger, kv)

	_, err := svc.Checkout(ctx, address, goodCard, "")
	require.NoError(t, err)
	assert.Equal(t, int64(7020), charger.req.AmountCents)
	assert.Equal(t, goodCard.Number, charger.req.CardNumber)
}

type slowCharger struct {
	started chan struct{}
	release chan struct{}
}

func (s *slowCharger) Charge(ctx context.Context, req payment.ChargeRequest) (payment.Result, error) {
	close(s.started)
	select {
	case <-s.release:
	case <-ctx.Done():
		return payment.Result{}, ctx.Err()
	}
	return payment.Result{Success: true, PaymentIntentID: "pi_mock_slow"}, nil
}

func TestCheckoutKeepsItemsAddedDuringCharge(t *testing.T) {
	ctx := context.Background()
	_, c, kv := setup(t)
	charger := &slowCharger{started: make(chan struct{}), release: make(chan struct{})}
	svc := New(c, charger, kv)

	type result struct {
		order Order
		err   error
	}
	done := make(chan result, 1)
	go func() {
		order, err := svc.Checkout(ctx, address, goodCard, "")
		done <- result{order, err}
	}()

	<-charger.started
	c.AddItem(ctx, cart.Item{EventID: 2, Zone: "Standard", Price: 35, Quantity: 1})
	close(charger.release)

	res := <-done
	require.NoError(t, res.err)
	require.Len(t, res.order.Items, 1)
	assert.Equal(t, 1, res.order.Items[0].EventID)

	left := c.State()
	require.Len(t, left.Items, 1)
	assert.Equal(t, 2, left.Items[0].EventID)
	assert.Nil(t, left.AppliedCoupon)

	assert.Equal(t, left.Items, cart.NewManager(ctx, kv).State().Items, "kept line is persisted")
}
