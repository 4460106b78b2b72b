package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/attarhouse/attarhouse-backend/pkg/enums"
	"github.com/attarhouse/attarhouse-backend/pkg/types"
)

// Product is the canonical catalog document. The service only reads it; the
// merchandising pipeline owns writes.
type Product struct {
	ID              uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Slug            string                `gorm:"column:slug;not null;uniqueIndex"`
	Title           string                `gorm:"column:title;not null"`
	Subtitle        *string               `gorm:"column:subtitle"`
	Description     *string               `gorm:"column:description"`
	Category        enums.ProductCategory `gorm:"column:category;not null"`
	SubCategory     *string               `gorm:"column:sub_category"`
	Price           decimal.Decimal       `gorm:"column:price;type:numeric(12,2);not null"`
	DiscountPercent decimal.Decimal       `gorm:"column:discount_percent;type:numeric(5,2);not null;default:0"`
	Sizes           types.ProductSizes    `gorm:"column:sizes;type:jsonb;serializer:json"`
	Tags            pq.StringArray        `gorm:"column:tags;type:text[]"`
	ImageURL        *string               `gorm:"column:image_url"`
	IsActive        bool                  `gorm:"column:is_active;not null;default:true"`
	CreatedAt       time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}
