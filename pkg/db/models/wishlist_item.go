package models

import (
	"time"

	"github.com/google/uuid"
)

// WishlistItem marks a product saved for later by a browsing session.
type WishlistItem struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SessionID string    `gorm:"column:session_id;not null;uniqueIndex:ux_wishlist_session_product"`
	ProductID uuid.UUID `gorm:"column:product_id;type:uuid;not null;uniqueIndex:ux_wishlist_session_product"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
