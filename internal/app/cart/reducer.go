package cart

import (
	"strings"

	"eventflow/internal/app/pricing"
)

// Coupon feedback shown to the shopper.
const (
	MsgCouponRequired = "Please enter a coupon code."
	MsgCouponInvalid  = "Invalid coupon code."
)

// Command is a cart transition.
type Command interface {
	Name() string
	apply(State) State
}

// AddItem merges into an existing (event, zone) line or appends a new one.
// A non-positive quantity adds one ticket.
type AddItem struct {
	Item Item
}

// RemoveItem drops the (event, zone) line. Missing lines are ignored.
type RemoveItem struct {
	EventID int
	Zone    string
}

// UpdateQuantity sets a line's quantity exactly. Zero or less removes it.
type UpdateQuantity struct {
	EventID  int
	Zone     string
	Quantity int
}

// ApplyCoupon looks up a code and records the outcome on the cart.
type ApplyCoupon struct {
	Code string
}

// RemoveCoupon clears the code, the coupon and any coupon error.
type RemoveCoupon struct{}

// Clear resets the cart to Empty.
type Clear struct{}

// Settle removes lines that were paid for. Each charged line's quantity is
// subtracted from the matching cart line; anything added since the charge
// stays. The coupon is dropped if it is still the one that was charged, and a
// cart left with no lines resets to Empty.
type Settle struct {
	Items      []Item
	CouponCode string
}

// Hydrate replaces the cart with a persisted snapshot.
type Hydrate struct {
	Snapshot State
}

func (AddItem) Name() string        { return "add_item" }
func (RemoveItem) Name() string     { return "remove_item" }
func (UpdateQuantity) Name() string { return "update_quantity" }
func (ApplyCoupon) Name() string    { return "apply_coupon" }
func (RemoveCoupon) Name() string   { return "remove_coupon" }
func (Clear) Name() string          { return "clear" }
func (Settle) Name() string         { return "settle" }
func (Hydrate) Name() string        { return "hydrate" }

// Reduce applies cmd to s and returns the next state. s is left untouched.
func Reduce(s State, cmd Command) State {
	return cmd.apply(s.clone())
}

func (c AddItem) apply(s State) State {
	qty := c.Item.Quantity
	if qty <= 0 {
		qty = 1
	}
	for i := range s.Items {
		if s.Items[i].EventID == c.Item.EventID && s.Items[i].Zone == c.Item.Zone {
			s.Items[i].Quantity += qty
			return s
		}
	}
	item := c.Item
	item.Quantity = qty
	s.Items = append(s.Items, item)
	return s
}

func (c RemoveItem) apply(s State) State {
	s.Items = without(s.Items, c.EventID, c.Zone)
	return s
}

func (c UpdateQuantity) apply(s State) State {
	if c.Quantity <= 0 {
		s.Items = without(s.Items, c.EventID, c.Zone)
		return s
	}
	for i := range s.Items {
		if s.Items[i].EventID == c.EventID && s.Items[i].Zone == c.Zone {
			s.Items[i].Quantity = c.Quantity
		}
	}
	return s
}

func (c ApplyCoupon) apply(s State) State {
	if strings.TrimSpace(c.Code) == "" {
		s.CouponError = MsgCouponRequired
		return s
	}
	code := pricing.NormalizeCode(c.Code)
	s.CouponCode = code
	coupon, ok := pricing.LookupCoupon(code)
	if !ok {
		s.AppliedCoupon = nil
		s.CouponError = MsgCouponInvalid
		return s
	}
	s.AppliedCoupon = &coupon
	s.CouponError = ""
	return s
}

func (RemoveCoupon) apply(s State) State {
	s.CouponCode = ""
	s.AppliedCoupon = nil
	s.CouponError = ""
	return s
}

func (Clear) apply(State) State {
	return Empty()
}

func (c Settle) apply(s State) State {
	for _, paid := range c.Items {
		for i := range s.Items {
			if s.Items[i].EventID == paid.EventID && s.Items[i].Zone == paid.Zone {
				s.Items[i].Quantity -= paid.Quantity
			}
		}
	}
	items := s.Items[:0]
	for _, it := range s.Items {
		if it.Quantity > 0 {
			items = append(items, it)
		}
	}
	s.Items = items
	if len(s.Items) == 0 {
		return Empty()
	}
	if c.CouponCode != "" && s.CouponCode == c.CouponCode {
		s.CouponCode = ""
		s.AppliedCoupon = nil
		s.CouponError = ""
	}
	return s
}

func (c Hydrate) apply(State) State {
	next := c.Snapshot.clone()
	items := next.Items[:0]
	for _, it := range next.Items {
		if it.Quantity > 0 {
			items = append(items, it)
		}
	}
	next.Items = items
	return next
}

func without(items []Item, eventID int, zone string) []Item {
	out := make([]Item, 0, len(items))
	for _, it := range items {
		if it.EventID == eventID && it.Zone == zone {
			continue
		}
		out = append(out, it)
	}
	return out
}
