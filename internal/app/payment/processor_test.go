package payment

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = func() time.Time { return time.Date(2026, time.March, 15, 10, 0, 0, 0, time.UTC) }

func TestLuhn(t *testing.T) {
	assert.True(t, Luhn("4242424242424242"))
	assert.True(t, Luhn("4111111111111111"))
	assert.True(t, Luhn("4000000000000002"))
	assert.False(t, Luhn("4242424242424241"))
	assert.False(t, Luhn("42424242x4242424"))
	assert.False(t, Luhn(""))
}

func TestValidateOrder(t *testing.T) {
	now := fixedNow()
	cases := []struct {
		name, card, expiry, cvc, want string
	}{
		{"short card", "4242 4242", "12/30", "123", MsgCardIncomplete},
		{"bad checksum", "4242 4242 4242 4241", "", "", MsgCardInvalid},
		{"missing expiry", "4242424242424242", "", "", MsgExpiryIncomplete},
		{"garbled expiry", "4242424242424242", "ab/cd", "", MsgExpiryIncomplete},
		{"month 13", "4242424242424242", "13/30", "", MsgExpiryMonth},
		{"month 00", "4242424242424242", "00/30", "", MsgExpiryMonth},
		{"month checked before year", "4242424242424242", "13/ab", "", MsgExpiryMonth},
		{"last year", "4242424242424242", "12/25", "123", MsgCardExpired},
		{"last month", "4242424242424242", "02/26", "123", MsgCardExpired},
		{"this month", "4242424242424242", "03/26", "12", MsgCVCIncomplete},
		{"letters in cvc", "4242424242424242", "03/26", "12a", MsgCVCIncomplete},
		{"ok", "4242 4242 4242 4242", "03/26", "123", ""},
		{"four digit year", "4242424242424242", "04/2027", "1234", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Validate(tc.card, tc.expiry, tc.cvc, now))
		})
	}
}

func TestChargeOutcomes(t *testing.T) {
	p := NewProcessor(Config{Now: fixedNow})
	ctx := context.Background()

	res, err := p.Charge(ctx, ChargeRequest{CardNumber: "4000 0000 0000 0002", Expiry: "12/30", CVC: "123", AmountCents: 7020})
	require.NoError(t, err)
	assert.Equal(t, Result{Error: MsgDeclined}, res)

	res, err = p.Charge(ctx, ChargeRequest{CardNumber: "4000000000009995", Expiry: "12/30", CVC: "123", AmountCents: 7020})
	require.NoError(t, err)
	assert.Equal(t, MsgInsufficientFunds, res.Error)
	assert.False(t, res.Success)

	res, err = p.Charge(ctx, ChargeRequest{CardNumber: "4242 4242 4242 4242", Expiry: "12/30", CVC: "123", AmountCents: 7020})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Empty(t, res.Error)
	assert.Equal(t, int64(7020), res.AmountCharged)
	assert.True(t, strings.HasPrefix(res.PaymentIntentID, "pi_mock_"))
	assert.Len(t, res.PaymentIntentID, len("pi_mock_")+16)

	again, err := p.Charge(ctx, ChargeRequest{CardNumber: "4111111111111111", Expiry: "12/30", CVC: "123", AmountCents: 100})
	require.NoError(t, err)
	assert.NotEqual(t, res.PaymentIntentID, again.PaymentIntentID)
}

func TestChargeHonoursCancellation(t *testing.T) {
	p := NewProcessor(Config{Delay: time.Minute, Now: fixedNow})
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := p.Charge(ctx, ChargeRequest{CardNumber: "4242424242424242", Expiry: "12/30", CVC: "123"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestTestCardsMatchOutcomes(t *testing.T) {
	p := NewProcessor(Config{Now: fixedNow})
	for _, c := range TestCards {
		res, err := p.Charge(context.Background(), ChargeRequest{CardNumber: c.Number, Expiry: "12/30", CVC: "123"})
		require.NoError(t, err)
		assert.Equal(t, c.Result == "success", res.Success, c.Number)
	}
}
