package models

import (
	"time"

	"github.com/google/uuid"
)

// Review is a shopper-submitted product review document.
type Review struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID  uuid.UUID `gorm:"column:product_id;type:uuid;not null;index"`
	Rating     int       `gorm:"column:rating;not null"`
	Comment    string    `gorm:"column:comment;not null"`
	AuthorName string    `gorm:"column:author_name;not null"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
}
