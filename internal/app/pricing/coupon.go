package pricing

import "strings"

// Coupon grants a percentage discount on the cart subtotal.
type Coupon struct {
	Code     string  `json:"code"`
	Discount float64 `json:"discount"`
	Label    string  `json:"label"`
}

var coupons = map[string]Coupon{
	"SAVE10":  {Code: "SAVE10", Discount: 0.10, Label: "10% Off"},
	"FEST20":  {Code: "FEST20", Discount: 0.20, Label: "20% Off"},
	"WELCOME": {Code: "WELCOME", Discount: 0.15, Label: "15% Welcome Discount"},
	"HALF50":  {Code: "HALF50", Discount: 0.50, Label: "50% Off"},
}

// NormalizeCode trims and upper-cases a user-entered coupon code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// LookupCoupon finds a coupon by code, case-insensitively.
func LookupCoupon(code string) (Coupon, bool) {
	c, ok := coupons[NormalizeCode(code)]
	return c, ok
}
