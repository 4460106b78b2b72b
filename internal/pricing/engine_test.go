package pricing

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/attarhouse/attarhouse-backend/pkg/config"
	pkgerrors "github.com/attarhouse/attarhouse-backend/pkg/errors"
)

func testConfig() config.PricingConfig {
	return config.PricingConfig{
		FreeShippingThreshold:    decimal.NewFromInt(30000),
		ReducedShippingThreshold: decimal.NewFromInt(6000),
		ReducedShippingFee:       decimal.NewFromInt(600),
		StandardShippingFee:      decimal.NewFromInt(250),
		Coupons:                  "SAVE10:10,DIS10:10",
		DonationPercents:         []int{2, 3, 4, 5, 6},
		GiftThreshold:            decimal.NewFromInt(10000),
	}
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	engine, err := NewEngine(testConfig())
	if err != nil {
		t.Fatalf("building engine: %v", err)
	}
	return engine
}

func TestDiscountedUnitPrice(t *testing.T) {
	t.Parallel()
	engine := newTestEngine(t)

	base := decimal.NewFromInt(1000)
	if got := engine.DiscountedUnitPrice(base, decimal.Zero); !got.Equal(base) {
		t.Fatalf("zero discount should leave price unchanged, got %s", got)
	}
	if got := engine.DiscountedUnitPrice(base, decimal.NewFromInt(10)); !got.Equal(decimal.NewFromInt(900)) {
		t.Fatalf("expected 900, got %s", got)
	}
	if got := engine.DiscountedUnitPrice(base, decimal.NewFromInt(100)); !got.Equal(decimal.Zero) {
		t.Fatalf("expected 0 at full discount, got %s", got)
	}

	// higher discount never yields a higher price
	prev := base
	for d := 0; d <= 100; d += 5 {
		got := engine.DiscountedUnitPrice(base, decimal.NewFromInt(int64(d)))
		if got.GreaterThan(prev) {
			t.Fatalf("price increased at discount %d: %s > %s", d, got, prev)
		}
		prev = got
	}
}

func TestSubtotal(t *testing.T) {
	t.Parallel()
	engine := newTestEngine(t)

	if got := engine.Subtotal(nil); !got.Equal(decimal.Zero) {
		t.Fatalf("empty cart subtotal should be 0, got %s", got)
	}

	lines := []Line{
		{UnitPrice: decimal.NewFromInt(1000), DiscountPercent: decimal.NewFromInt(10), Quantity: 2},
		{UnitPrice: decimal.NewFromInt(500), Quantity: 1},
	}
	if got := engine.Subtotal(lines); !got.Equal(decimal.NewFromInt(2300)) {
		t.Fatalf("expected 2300, got %s", got)
	}
}

func TestShippingFeeTiers(t *testing.T) {
	t.Parallel()
	engine := newTestEngine(t)

	cases := []struct {
		subtotal int64
		want     int64
	}{
		{0, 250},
		{5999, 250},
		{6000, 600},
		{29999, 600},
		{30000, 0},
		{45000, 0},
	}
	for _, tc := range cases {
		got := engine.ShippingFee(decimal.NewFromInt(tc.subtotal))
		if !got.Equal(decimal.NewFromInt(tc.want)) {
			t.Fatalf("subtotal %d: expected fee %d, got %s", tc.subtotal, tc.want, got)
		}
	}
}

func TestCouponDiscount(t *testing.T) {
	t.Parallel()
	engine := newTestEngine(t)

	subtotal := decimal.NewFromInt(2300)
	for _, code := range []string{"SAVE10", "save10", " Dis10 "} {
		got, err := engine.CouponDiscount(code, subtotal)
		if err != nil {
			t.Fatalf("code %q: %v", code, err)
		}
		if !got.Equal(decimal.NewFromInt(230)) {
			t.Fatalf("code %q: expected 230, got %s", code, got)
		}
	}

	_, err := engine.CouponDiscount("NOPE", subtotal)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for unknown code, got %v", err)
	}
}

func TestDonationAmount(t *testing.T) {
	t.Parallel()
	engine := newTestEngine(t)

	subtotal := decimal.NewFromInt(10000)

	got, err := engine.DonationAmount(subtotal, true, 5)
	if err != nil {
		t.Fatalf("donation: %v", err)
	}
	if !got.Equal(decimal.NewFromInt(500)) {
		t.Fatalf("expected 500, got %s", got)
	}

	got, err = engine.DonationAmount(subtotal, false, 5)
	if err != nil {
		t.Fatalf("disabled donation: %v", err)
	}
	if !got.Equal(decimal.Zero) {
		t.Fatalf("disabled donation should be 0, got %s", got)
	}

	if _, err := engine.DonationAmount(subtotal, true, 7); err == nil {
		t.Fatal("expected error for percent outside the offered set")
	}
}

func TestTotalDoesNotClamp(t *testing.T) {
	t.Parallel()
	engine := newTestEngine(t)

	total := engine.Total(decimal.NewFromInt(100), decimal.Zero, decimal.NewFromInt(500), decimal.Zero)
	if !total.Equal(decimal.NewFromInt(-400)) {
		t.Fatalf("total must not clamp, got %s", total)
	}
}

func TestQuoteEndToEnd(t *testing.T) {
	t.Parallel()
	engine := newTestEngine(t)

	lines := []Line{
		{UnitPrice: decimal.NewFromInt(1000), DiscountPercent: decimal.NewFromInt(10), Quantity: 2},
		{UnitPrice: decimal.NewFromInt(500), Quantity: 1},
	}

	quote, err := engine.Quote(QuoteInput{Lines: lines})
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	if !quote.Subtotal.Equal(decimal.NewFromInt(2300)) {
		t.Fatalf("expected subtotal 2300, got %s", quote.Subtotal)
	}
	if !quote.Shipping.Equal(decimal.NewFromInt(250)) {
		t.Fatalf("expected shipping 250, got %s", quote.Shipping)
	}
	if !quote.Total.Equal(decimal.NewFromInt(2550)) {
		t.Fatalf("expected total 2550, got %s", quote.Total)
	}
	if quote.GiftEligible {
		t.Fatal("subtotal below gift threshold should not be eligible")
	}

	withCoupon, err := engine.Quote(QuoteInput{Lines: lines, CouponCode: "SAVE10"})
	if err != nil {
		t.Fatalf("quote with coupon: %v", err)
	}
	if !withCoupon.CouponDiscount.Equal(decimal.NewFromInt(230)) {
		t.Fatalf("expected coupon discount 230, got %s", withCoupon.CouponDiscount)
	}
	if !withCoupon.Total.Equal(decimal.NewFromInt(2320)) {
		t.Fatalf("expected total 2320, got %s", withCoupon.Total)
	}
}

func TestQuoteGiftEligibility(t *testing.T) {
	t.Parallel()
	engine := newTestEngine(t)

	lines := []Line{{UnitPrice: decimal.NewFromInt(10000), Quantity: 1}}
	quote, err := engine.Quote(QuoteInput{Lines: lines})
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	if !quote.GiftEligible {
		t.Fatal("subtotal at the gift threshold should be eligible")
	}
}
