package cart

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/attarhouse/attarhouse-backend/internal/pricing"
)

// Direction names the two quantity adjustments the storefront offers.
type Direction string

const (
	DirectionIncrease Direction = "increase"
	DirectionDecrease Direction = "decrease"
)

// IsValid reports whether the direction is one of the supported values.
func (d Direction) IsValid() bool {
	return d == DirectionIncrease || d == DirectionDecrease
}

// Line is one product entry in the session cart. There is at most one line
// per product id; adding the same product again increments the quantity.
type Line struct {
	ProductID       uuid.UUID       `json:"product_id"`
	Title           string          `json:"title"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	Quantity        int             `json:"quantity"`
	SizeLabel       *string         `json:"size_label,omitempty"`
}

// Coupon is the transient coupon selection for a session.
type Coupon struct {
	Code    string `json:"code,omitempty"`
	Applied bool   `json:"applied"`
}

// Donation is the transient donation selection for a session.
type Donation struct {
	Enabled bool `json:"enabled"`
	Percent int  `json:"percent,omitempty"`
}

// Cart is the session-scoped mutable state, stored as JSON in Redis.
type Cart struct {
	Lines    []Line   `json:"lines"`
	Coupon   Coupon   `json:"coupon"`
	Donation Donation `json:"donation"`
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return c == nil || len(c.Lines) == 0
}

// FindLine returns the index of the line for the product, or -1.
func (c *Cart) FindLine(productID uuid.UUID) int {
	for i, line := range c.Lines {
		if line.ProductID == productID {
			return i
		}
	}
	return -1
}

// PricingLines maps the cart lines into the pricing engine's input shape.
func (c *Cart) PricingLines() []pricing.Line {
	lines := make([]pricing.Line, 0, len(c.Lines))
	for _, line := range c.Lines {
		lines = append(lines, pricing.Line{
			UnitPrice:       line.UnitPrice,
			DiscountPercent: line.DiscountPercent,
			Quantity:        line.Quantity,
		})
	}
	return lines
}

// QuoteLine is one priced line of a cart quote.
type QuoteLine struct {
	ProductID           uuid.UUID
	Title               string
	SizeLabel           *string
	UnitPrice           decimal.Decimal
	DiscountPercent     decimal.Decimal
	DiscountedUnitPrice decimal.Decimal
	Quantity            int
	LineTotal           decimal.Decimal
}

// QuoteResult is the fully priced view of a session cart. All figures are
// unrounded; display rounding happens at the API edge.
type QuoteResult struct {
	Lines          []QuoteLine
	Coupon         Coupon
	Donation       Donation
	Subtotal       decimal.Decimal
	Shipping       decimal.Decimal
	CouponDiscount decimal.Decimal
	DonationAmount decimal.Decimal
	Total          decimal.Decimal
	GiftEligible   bool
}
