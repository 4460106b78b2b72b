package pricing

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/attarhouse/attarhouse-backend/pkg/config"
	pkgerrors "github.com/attarhouse/attarhouse-backend/pkg/errors"
)

var oneHundred = decimal.NewFromInt(100)

// Line is the pricing view of a single cart line.
type Line struct {
	UnitPrice       decimal.Decimal
	DiscountPercent decimal.Decimal
	Quantity        int
}

// QuoteInput carries the cart snapshot plus the transient coupon/donation
// selections.
type QuoteInput struct {
	Lines           []Line
	CouponCode      string
	DonationEnabled bool
	DonationPercent int
}

// Quote holds the derived figures. Values are unrounded; callers round for
// display only.
type Quote struct {
	Subtotal       decimal.Decimal
	Shipping       decimal.Decimal
	CouponDiscount decimal.Decimal
	Donation       decimal.Decimal
	Total          decimal.Decimal
	GiftEligible   bool
}

// Engine derives prices from a cart snapshot. It is pure: no side effects,
// no I/O, every rate comes from configuration.
type Engine struct {
	cfg              config.PricingConfig
	coupons          map[string]decimal.Decimal
	donationPercents map[int]struct{}
}

// NewEngine parses the configured coupon table and donation set.
func NewEngine(cfg config.PricingConfig) (*Engine, error) {
	coupons, err := cfg.CouponTable()
	if err != nil {
		return nil, fmt.Errorf("parsing coupon table: %w", err)
	}
	percents := make(map[int]struct{}, len(cfg.DonationPercents))
	for _, p := range cfg.DonationPercents {
		percents[p] = struct{}{}
	}
	return &Engine{
		cfg:              cfg,
		coupons:          coupons,
		donationPercents: percents,
	}, nil
}

// DiscountedUnitPrice applies the product discount percent to the base price.
// A zero percent leaves the price unchanged.
func (e *Engine) DiscountedUnitPrice(base, discountPercent decimal.Decimal) decimal.Decimal {
	if discountPercent.IsZero() {
		return base
	}
	factor := decimal.NewFromInt(1).Sub(discountPercent.Div(oneHundred))
	return base.Mul(factor)
}

// Subtotal sums discounted unit price times quantity over all lines. An empty
// cart yields zero.
func (e *Engine) Subtotal(lines []Line) decimal.Decimal {
	subtotal := decimal.Zero
	for _, line := range lines {
		unit := e.DiscountedUnitPrice(line.UnitPrice, line.DiscountPercent)
		subtotal = subtotal.Add(unit.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return subtotal
}

// ShippingFee returns the tiered flat rate for the given subtotal.
func (e *Engine) ShippingFee(subtotal decimal.Decimal) decimal.Decimal {
	switch {
	case subtotal.GreaterThanOrEqual(e.cfg.FreeShippingThreshold):
		return decimal.Zero
	case subtotal.GreaterThanOrEqual(e.cfg.ReducedShippingThreshold):
		return e.cfg.ReducedShippingFee
	default:
		return e.cfg.StandardShippingFee
	}
}

// CouponPercent resolves a coupon code case-insensitively against the
// configured table.
func (e *Engine) CouponPercent(code string) (decimal.Decimal, bool) {
	percent, ok := e.coupons[strings.ToUpper(strings.TrimSpace(code))]
	return percent, ok
}

// CouponDiscount computes the discount for the given code against the current
// subtotal. Unknown codes yield a validation error.
func (e *Engine) CouponDiscount(code string, subtotal decimal.Decimal) (decimal.Decimal, error) {
	percent, ok := e.CouponPercent(code)
	if !ok {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "invalid coupon code")
	}
	return subtotal.Mul(percent).Div(oneHundred), nil
}

// DonationAmount returns subtotal * percent/100 when enabled. Percents outside
// the configured set are rejected.
func (e *Engine) DonationAmount(subtotal decimal.Decimal, enabled bool, percent int) (decimal.Decimal, error) {
	if !enabled {
		return decimal.Zero, nil
	}
	if _, ok := e.donationPercents[percent]; !ok {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("donation percent %d is not offered", percent))
	}
	return subtotal.Mul(decimal.NewFromInt(int64(percent))).Div(oneHundred), nil
}

// Total composes the final figure. It does not clamp; a negative total is the
// orchestrator's condition to report.
func (e *Engine) Total(subtotal, shipping, couponDiscount, donation decimal.Decimal) decimal.Decimal {
	return subtotal.Add(shipping).Sub(couponDiscount).Add(donation)
}

// GiftEligible reports whether the subtotal qualifies for the free-gift scheme.
func (e *Engine) GiftEligible(subtotal decimal.Decimal) bool {
	return subtotal.GreaterThanOrEqual(e.cfg.GiftThreshold)
}

// Quote derives every figure for one cart snapshot.
func (e *Engine) Quote(in QuoteInput) (Quote, error) {
	subtotal := e.Subtotal(in.Lines)
	shipping := e.ShippingFee(subtotal)

	couponDiscount := decimal.Zero
	if in.CouponCode != "" {
		discount, err := e.CouponDiscount(in.CouponCode, subtotal)
		if err != nil {
			return Quote{}, err
		}
		couponDiscount = discount
	}

	donation, err := e.DonationAmount(subtotal, in.DonationEnabled, in.DonationPercent)
	if err != nil {
		return Quote{}, err
	}

	return Quote{
		Subtotal:       subtotal,
		Shipping:       shipping,
		CouponDiscount: couponDiscount,
		Donation:       donation,
		Total:          e.Total(subtotal, shipping, couponDiscount, donation),
		GiftEligible:   e.GiftEligible(subtotal),
	}, nil
}
