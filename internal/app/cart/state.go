package cart

import (
	"eventflow/internal/app/pricing"
)

// Item is one (event, zone) line. Price, title and image are captured when the
// item is added and do not follow later catalog changes.
type Item struct {
	EventID  int     `json:"eventId"`
	Title    string  `json:"title"`
	Zone     string  `json:"zone"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
	Image    string  `json:"image,omitempty"`
}

// State is the full cart snapshot that gets persisted.
type State struct {
	Items         []Item          `json:"items"`
	CouponCode    string          `json:"couponCode"`
	AppliedCoupon *pricing.Coupon `json:"appliedCoupon"`
	CouponError   string          `json:"couponError"`
}

// Empty is the initial cart.
func Empty() State {
	return State{Items: []Item{}}
}

// Lines adapts the items for pricing.Compute.
func (s State) Lines() []pricing.Line {
	lines := make([]pricing.Line, len(s.Items))
	for i, it := range s.Items {
		lines[i] = pricing.Line{Price: it.Price, Quantity: it.Quantity}
	}
	return lines
}

// Pricing computes the unrounded breakdown of the cart.
func (s State) Pricing() pricing.Breakdown {
	return pricing.Compute(s.Lines(), s.AppliedCoupon)
}

// Quantity returns the quantity held for (eventID, zone), or 0.
func (s State) Quantity(eventID int, zone string) int {
	for _, it := range s.Items {
		if it.EventID == eventID && it.Zone == zone {
			return it.Quantity
		}
	}
	return 0
}

// EventIDs lists the distinct events in the cart in item order.
func (s State) EventIDs() []int {
	seen := make(map[int]struct{}, len(s.Items))
	out := make([]int, 0, len(s.Items))
	for _, it := range s.Items {
		if _, ok := seen[it.EventID]; ok {
			continue
		}
		seen[it.EventID] = struct{}{}
		out = append(out, it.EventID)
	}
	return out
}

// IsEmpty reports whether the cart has no items.
func (s State) IsEmpty() bool {
	return len(s.Items) == 0
}

func (s State) clone() State {
	out := s
	out.Items = make([]Item, len(s.Items))
	copy(out.Items, s.Items)
	if s.AppliedCoupon != nil {
		c := *s.AppliedCoupon
		out.AppliedCoupon = &c
	}
	return out
}
