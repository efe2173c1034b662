package pricing

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Fee and tax rates applied to the discounted subtotal.
const (
	ServiceFeeRate = 0.12
	TaxRate        = 0.08
)

// Line is the priced portion of a cart entry.
type Line struct {
	Price    float64
	Quantity int
}

// Breakdown is the full price of a cart. Values are unrounded; call Rounded
// for display.
type Breakdown struct {
	Subtotal       float64 `json:"subtotal"`
	DiscountAmount float64 `json:"discountAmount"`
	AfterDiscount  float64 `json:"afterDiscount"`
	ServiceFee     float64 `json:"serviceFee"`
	Tax            float64 `json:"tax"`
	GrandTotal     float64 `json:"grandTotal"`
	ItemCount      int     `json:"itemCount"`
}

// Compute prices lines with an optional coupon. It has no side effects.
func Compute(lines []Line, coupon *Coupon) Breakdown {
	var b Breakdown
	for _, l := range lines {
		b.Subtotal += l.Price * float64(l.Quantity)
		b.ItemCount += l.Quantity
	}
	if coupon != nil {
		b.DiscountAmount = b.Subtotal * coupon.Discount
	}
	b.AfterDiscount = b.Subtotal - b.DiscountAmount
	b.ServiceFee = b.AfterDiscount * ServiceFeeRate
	b.Tax = b.AfterDiscount * TaxRate
	b.GrandTotal = b.AfterDiscount + b.ServiceFee + b.Tax
	return b
}

// Rounded returns a copy with every monetary field rounded to cents.
func (b Breakdown) Rounded() Breakdown {
	return Breakdown{
		Subtotal:       round2(b.Subtotal),
		DiscountAmount: round2(b.DiscountAmount),
		AfterDiscount:  round2(b.AfterDiscount),
		ServiceFee:     round2(b.ServiceFee),
		Tax:            round2(b.Tax),
		GrandTotal:     round2(b.GrandTotal),
		ItemCount:      b.ItemCount,
	}
}

// AmountCents converts a dollar amount to whole cents, rounding half away
// from zero.
func AmountCents(amount float64) int64 {
	return decimal.NewFromFloat(amount).Shift(2).Round(0).IntPart()
}

// FormatUSD renders amount as "$1,234.50".
func FormatUSD(amount float64) string {
	d := decimal.NewFromFloat(amount).Round(2)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}

	fixed := d.StringFixed(2)
	whole, frac, _ := strings.Cut(fixed, ".")

	var grouped strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			grouped.WriteByte(',')
		}
		grouped.WriteRune(r)
	}
	return sign + "$" + grouped.String() + "." + frac
}

func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
