package payment

import (
	"context"
	"math/rand"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"eventflow/internal/metrics"
)

// Shopper-facing failure messages.
const (
	MsgCardIncomplete    = "Card number is incomplete."
	MsgCardInvalid       = "Card number is invalid."
	MsgExpiryIncomplete  = "Expiry date is incomplete."
	MsgExpiryMonth       = "Invalid expiry month."
	MsgCardExpired       = "Your card has expired."
	MsgCVCIncomplete     = "CVC is incomplete."
	MsgDeclined          = "Your card was declined."
	MsgInsufficientFunds = "Insufficient funds on your card."
)

// Default simulated latency.
const (
	DefaultDelay  = 1200 * time.Millisecond
	DefaultJitter = 800 * time.Millisecond
)

var declines = map[string]string{
	"4000000000000002": MsgDeclined,
	"4000000000009995": MsgInsufficientFunds,
}

// TestCard documents a card number with a fixed outcome.
type TestCard struct {
	Number string `json:"number"`
	Label  string `json:"label"`
	Result string `json:"result"`
}

// TestCards lists the cards with deterministic outcomes.
var TestCards = []TestCard{
	{Number: "4242 4242 4242 4242", Label: "Visa (Success)", Result: "success"},
	{Number: "4111 1111 1111 1111", Label: "Visa (Success)", Result: "success"},
	{Number: "4000 0000 0000 0002", Label: "Visa (Declined)", Result: "decline"},
	{Number: "4000 0000 0000 9995", Label: "Visa (Insufficient Funds)", Result: "decline"},
}

// ChargeRequest is a card charge. AmountCents is echoed back on success.
type ChargeRequest struct {
	CardNumber  string `json:"cardNumber"`
	Expiry      string `json:"expiry"`
	CVC         string `json:"cvc"`
	AmountCents int64  `json:"amount"`
}

// Result is the outcome of a charge. Exactly one of Error or
// PaymentIntentID is set.
type Result struct {
	Success         bool   `json:"success"`
	Error           string `json:"error,omitempty"`
	PaymentIntentID string `json:"paymentIntentId,omitempty"`
	AmountCharged   int64  `json:"amountCharged,omitempty"`
}

// Config tunes the processor.
type Config struct {
	Delay  time.Duration
	Jitter time.Duration
	Now    func() time.Time
}

// Processor simulates a card processor. No network I/O takes place.
type Processor struct {
	delay  time.Duration
	jitter time.Duration
	now    func() time.Time
}

// NewProcessor builds a processor. Zero delay and jitter make charges
// return immediately.
func NewProcessor(cfg Config) *Processor {
	p := &Processor{delay: cfg.Delay, jitter: cfg.Jitter, now: cfg.Now}
	if p.now == nil {
		p.now = time.Now
	}
	return p
}

// Charge validates the card and simulates the charge. A non-nil error means
// ctx ended during the simulated latency; card problems are reported in
// Result.Error.
func (p *Processor) Charge(ctx context.Context, req ChargeRequest) (Result, error) {
	if wait := p.latency(); wait > 0 {
		select {
		case <-ctx.Done():
			return Result{}, ctx.Err()
		case <-time.After(wait):
		}
	} else if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	card := stripSpaces(req.CardNumber)
	if msg := Validate(card, req.Expiry, req.CVC, p.now()); msg != "" {
		metrics.TrackCharge("invalid")
		return Result{Error: msg}, nil
	}
	if msg, ok := declines[card]; ok {
		metrics.TrackCharge("declined")
		return Result{Error: msg}, nil
	}

	metrics.TrackCharge("success")
	return Result{
		Success:         true,
		PaymentIntentID: newIntentID(),
		AmountCharged:   req.AmountCents,
	}, nil
}

func (p *Processor) latency() time.Duration {
	wait := p.delay
	if p.jitter > 0 {
		wait += time.Duration(rand.Int63n(int64(p.jitter)))
	}
	return wait
}

// Validate checks the card fields in order and returns the first failure
// message, or "" when the card is acceptable.
func Validate(card, expiry, cvc string, now time.Time) string {
	card = stripSpaces(card)
	if len(card) < 12 {
		return MsgCardIncomplete
	}
	if !Luhn(card) {
		return MsgCardInvalid
	}

	expiry = strings.TrimSpace(expiry)
	if len(expiry) < 5 {
		return MsgExpiryIncomplete
	}
	mm, yy, ok := strings.Cut(expiry, "/")
	if !ok {
		return MsgExpiryIncomplete
	}
	month, err := strconv.Atoi(strings.TrimSpace(mm))
	if err != nil {
		return MsgExpiryIncomplete
	}
	if month < 1 || month > 12 {
		return MsgExpiryMonth
	}
	year, err := strconv.Atoi(strings.TrimSpace(yy))
	if err != nil {
		return MsgExpiryIncomplete
	}
	if year < 100 {
		year += 2000
	}
	if year < now.Year() || (year == now.Year() && month < int(now.Month())) {
		return MsgCardExpired
	}

	cvc = strings.TrimSpace(cvc)
	if len(cvc) < 3 || !allDigits(cvc) {
		return MsgCVCIncomplete
	}
	return ""
}

// Luhn reports whether number passes the mod-10 checksum. Any non-digit
// fails.
func Luhn(number string) bool {
	if number == "" {
		return false
	}
	sum := 0
	double := false
	for i := len(number) - 1; i >= 0; i-- {
		c := number[i]
		if c < '0' || c > '9' {
			return false
		}
		d := int(c - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}

func stripSpaces(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func newIntentID() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "pi_mock_" + id[:16]
}
