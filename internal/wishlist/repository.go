package wishlist

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/attarhouse/attarhouse-backend/pkg/db/models"
)

// Repository encapsulates session wishlist persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a wishlist repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// AddItem inserts a wishlist entry and ignores duplicates.
func (r *Repository) AddItem(ctx context.Context, sessionID string, productID uuid.UUID) error {
	if sessionID == "" || productID == uuid.Nil {
		return gorm.ErrInvalidValue
	}
	return r.db.WithContext(ctx).
		Exec(`INSERT INTO wishlist_items (session_id, product_id) VALUES (?, ?) ON CONFLICT (session_id, product_id) DO NOTHING`, sessionID, productID).
		Error
}

// RemoveItem deletes the session-product entry if it exists.
func (r *Repository) RemoveItem(ctx context.Context, sessionID string, productID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("session_id = ? AND product_id = ?", sessionID, productID).
		Delete(&models.WishlistItem{}).
		Error
}

// Entry is one wishlist row joined to its product.
type Entry struct {
	Product models.Product
	AddedAt time.Time
}

// ListItems returns the session's saved products, newest first.
func (r *Repository) ListItems(ctx context.Context, sessionID string) ([]Entry, error) {
	var items []models.WishlistItem
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return []Entry{}, nil
	}

	ids := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}

	var products []models.Product
	err = r.db.WithContext(ctx).
		Where("id IN ? AND is_active", ids).
		Find(&products).Error
	if err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]models.Product, len(products))
	for _, product := range products {
		byID[product.ID] = product
	}

	entries := make([]Entry, 0, len(items))
	for _, item := range items {
		product, ok := byID[item.ProductID]
		if !ok {
			// product deactivated since it was saved
			continue
		}
		entries = append(entries, Entry{Product: product, AddedAt: item.CreatedAt})
	}
	return entries, nil
}
