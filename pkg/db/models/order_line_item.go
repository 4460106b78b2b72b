package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderLineItem snapshots one cart line at the moment the order was placed.
// UnitPrice is the discounted price-at-time-of-order, not the list price.
type OrderLineItem struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID   uuid.UUID       `gorm:"column:order_id;type:uuid;not null"`
	ProductID uuid.UUID       `gorm:"column:product_id;type:uuid;not null"`
	Title     string          `gorm:"column:title;not null"`
	SizeLabel *string         `gorm:"column:size_label"`
	UnitPrice decimal.Decimal `gorm:"column:unit_price;type:numeric(14,6);not null"`
	Quantity  int             `gorm:"column:quantity;not null"`
	LineTotal decimal.Decimal `gorm:"column:line_total;type:numeric(14,6);not null"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
}
