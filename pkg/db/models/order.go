package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/attarhouse/attarhouse-backend/pkg/enums"
	"github.com/attarhouse/attarhouse-backend/pkg/types"
)

// Order is the immutable order document written at checkout. The monetary
// columns store unrounded engine output; rounding happens at display time.
type Order struct {
	ID             uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderNumber    string              `gorm:"column:order_number;not null;uniqueIndex"`
	OrderDate      time.Time           `gorm:"column:order_date;not null"`
	Status         enums.OrderStatus   `gorm:"column:status;not null;default:'pending'"`
	Customer       types.Customer      `gorm:"column:customer;type:jsonb;serializer:json;not null"`
	PaymentMethod  enums.PaymentMethod `gorm:"column:payment_method;not null"`
	Subtotal       decimal.Decimal     `gorm:"column:subtotal;type:numeric(14,6);not null"`
	Shipping       decimal.Decimal     `gorm:"column:shipping;type:numeric(14,6);not null"`
	CouponDiscount decimal.Decimal     `gorm:"column:coupon_discount;type:numeric(14,6);not null;default:0"`
	Donation       decimal.Decimal     `gorm:"column:donation;type:numeric(14,6);not null;default:0"`
	Total          decimal.Decimal     `gorm:"column:total;type:numeric(14,6);not null"`
	CouponCode     *string             `gorm:"column:coupon_code"`
	Notes          *string             `gorm:"column:notes"`
	Items          []OrderLineItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt      time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
