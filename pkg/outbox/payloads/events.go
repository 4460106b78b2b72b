package payloads

import (
	"time"

	"github.com/google/uuid"

	"github.com/attarhouse/attarhouse-backend/pkg/enums"
)

// OrderPlacedLine is one purchased line inside an order-placed event.
type OrderPlacedLine struct {
	ProductID uuid.UUID `json:"product_id"`
	Title     string    `json:"title"`
	SizeLabel string    `json:"size_label,omitempty"`
	Quantity  int       `json:"quantity"`
	UnitPrice string    `json:"unit_price"`
	LineTotal string    `json:"line_total"`
}

// OrderPlacedEvent is emitted after a checkout submission persists an order.
// Monetary fields are formatted with two decimal places.
type OrderPlacedEvent struct {
	OrderID        uuid.UUID           `json:"order_id"`
	OrderNumber    string              `json:"order_number"`
	OrderDate      time.Time           `json:"order_date"`
	CustomerName   string              `json:"customer_name"`
	CustomerEmail  string              `json:"customer_email"`
	PaymentMethod  enums.PaymentMethod `json:"payment_method"`
	Subtotal       string              `json:"subtotal"`
	Shipping       string              `json:"shipping"`
	CouponDiscount string              `json:"coupon_discount"`
	Donation       string              `json:"donation"`
	Total          string              `json:"total"`
	CouponCode     string              `json:"coupon_code,omitempty"`
	Items          []OrderPlacedLine   `json:"items"`
}
