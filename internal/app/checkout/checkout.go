package checkout

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"sync"
	"time"

	"eventflow/internal/app/cart"
	"eventflow/internal/app/payment"
	"eventflow/internal/app/pricing"
	"eventflow/internal/app/validation"
	"eventflow/internal/logging"
	"eventflow/internal/metrics"
	"eventflow/internal/store"
)

// ErrEmptyCart is returned when checking out with nothing in the cart.
var ErrEmptyCart = errors.New("Your cart is empty.")

// PaymentError carries the processor's message for a failed charge.
type PaymentError struct {
	Message string
}

func (e *PaymentError) Error() string {
	return e.Message
}

// Card is the payment form.
type Card struct {
	Number string `json:"cardNumber"`
	Expiry string `json:"expiry"`
	CVC    string `json:"cvc"`
}

// Order is an immutable record of a completed purchase.
type Order struct {
	ID              string             `json:"id"`
	Items           []cart.Item        `json:"items"`
	Pricing         pricing.Breakdown  `json:"pricing"`
	CouponCode      string             `json:"couponCode,omitempty"`
	Address         validation.Address `json:"address"`
	CreatedAt       time.Time          `json:"createdAt"`
	PaymentIntentID string             `json:"paymentIntentId"`
	UserID          string             `json:"userId,omitempty"`
}

// Charger charges a card.
type Charger interface {
	Charge(ctx context.Context, req payment.ChargeRequest) (payment.Result, error)
}

// Service turns a profile's cart into orders.
type Service struct {
	cart     *cart.Manager
	payments Charger
	kv       store.KV
	now      func() time.Time

	mu sync.Mutex
}

// New builds a checkout service over a profile's cart and store.
func New(c *cart.Manager, payments Charger, kv store.KV) *Service {
	return &Service{cart: c, payments: payments, kv: kv, now: time.Now}
}

// Checkout validates the address, charges the cart total and records the
// order. Only the charged lines leave the cart, and only after a successful
// charge; changes made while the charge is in flight are kept.
func (s *Service) Checkout(ctx context.Context, addr validation.Address, card Card, userID string) (Order, error) {
	if err := ctx.Err(); err != nil {
		return Order{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.cart.State()
	if state.IsEmpty() {
		return Order{}, ErrEmptyCart
	}
	if err := validation.CheckoutAddress(addr).Err(); err != nil {
		return Order{}, err
	}

	breakdown := state.Pricing().Rounded()
	res, err := s.payments.Charge(ctx, payment.ChargeRequest{
		CardNumber:  card.Number,
		Expiry:      card.Expiry,
		CVC:         card.CVC,
		AmountCents: pricing.AmountCents(breakdown.GrandTotal),
	})
	if err != nil {
		return Order{}, fmt.Errorf("charge: %w", err)
	}
	if !res.Success {
		return Order{}, &PaymentError{Message: res.Error}
	}

	id, err := newOrderID()
	if err != nil {
		return Order{}, fmt.Errorf("create order id: %w", err)
	}
	order := Order{
		ID:              id,
		Items:           state.Items,
		Pricing:         breakdown,
		CouponCode:      couponCode(state),
		Address:         addr,
		CreatedAt:       s.now().UTC(),
		PaymentIntentID: res.PaymentIntentID,
		UserID:          userID,
	}

	history := s.load(ctx)
	history = append([]Order{order}, history...)
	if err := store.SaveJSON(ctx, s.kv, store.KeyOrders, history); err != nil {
		logging.PersistenceError(ctx, "save", store.KeyOrders, err)
	}

	s.cart.Settle(ctx, state)
	metrics.TrackOrder(pricing.AmountCents(breakdown.GrandTotal))
	logging.WithContext(ctx).Info().
		Str("order_id", order.ID).
		Str("payment_intent", order.PaymentIntentID).
		Str("total", pricing.FormatUSD(breakdown.GrandTotal)).
		Msg("order placed")
	return order, nil
}

// Orders returns the order history, newest first.
func (s *Service) Orders(ctx context.Context) []Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

func (s *Service) load(ctx context.Context) []Order {
	var history []Order
	if _, err := store.LoadJSON(ctx, s.kv, store.KeyOrders, &history); err != nil {
		logging.PersistenceError(ctx, "load", store.KeyOrders, err)
		return []Order{}
	}
	if history == nil {
		history = []Order{}
	}
	return history
}

func couponCode(s cart.State) string {
	if s.AppliedCoupon == nil {
		return ""
	}
	return s.AppliedCoupon.Code
}

const orderAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func newOrderID() (string, error) {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	for i := range b {
		b[i] = orderAlphabet[int(b[i])%len(orderAlphabet)]
	}
	return "ORD-" + string(b), nil
}
