package analytics

import (
	"encoding/json"
	"time"

	cbigquery "cloud.google.com/go/bigquery"
	"github.com/shopspring/decimal"

	"github.com/attarhouse/attarhouse-backend/pkg/outbox"
	"github.com/attarhouse/attarhouse-backend/pkg/outbox/payloads"
)

// OrderPlacedRow mirrors the order_placed_events BigQuery schema. One row per
// placed order; line items travel as a JSON column.
type OrderPlacedRow struct {
	EventID        string             `bigquery:"event_id"`
	OccurredAt     time.Time          `bigquery:"occurred_at"`
	OrderID        string             `bigquery:"order_id"`
	OrderNumber    string             `bigquery:"order_number"`
	OrderDate      time.Time          `bigquery:"order_date"`
	PaymentMethod  string             `bigquery:"payment_method"`
	CouponCode     *string            `bigquery:"coupon_code"`
	Subtotal       float64            `bigquery:"subtotal"`
	Shipping       float64            `bigquery:"shipping"`
	CouponDiscount float64            `bigquery:"coupon_discount"`
	Donation       float64            `bigquery:"donation"`
	Total          float64            `bigquery:"total"`
	ItemCount      int64              `bigquery:"item_count"`
	Items          cbigquery.NullJSON `bigquery:"items"`
}

func buildOrderPlacedRow(envelope outbox.PayloadEnvelope, event *payloads.OrderPlacedEvent) (OrderPlacedRow, error) {
	row := OrderPlacedRow{
		EventID:       envelope.EventID,
		OccurredAt:    envelope.OccurredAt,
		OrderID:       event.OrderID.String(),
		OrderNumber:   event.OrderNumber,
		OrderDate:     event.OrderDate,
		PaymentMethod: string(event.PaymentMethod),
	}
	if event.CouponCode != "" {
		code := event.CouponCode
		row.CouponCode = &code
	}

	var itemCount int64
	for _, item := range event.Items {
		itemCount += int64(item.Quantity)
	}
	row.ItemCount = itemCount

	for _, field := range []struct {
		value string
		dst   *float64
	}{
		{event.Subtotal, &row.Subtotal},
		{event.Shipping, &row.Shipping},
		{event.CouponDiscount, &row.CouponDiscount},
		{event.Donation, &row.Donation},
		{event.Total, &row.Total},
	} {
		parsed, err := decimal.NewFromString(field.value)
		if err != nil {
			return OrderPlacedRow{}, err
		}
		*field.dst = parsed.InexactFloat64()
	}

	items, err := json.Marshal(event.Items)
	if err != nil {
		return OrderPlacedRow{}, err
	}
	row.Items = cbigquery.NullJSON{Valid: true, JSONVal: string(items)}
	return row, nil
}
