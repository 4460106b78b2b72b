package products

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/attarhouse/attarhouse-backend/pkg/db/models"
	"github.com/attarhouse/attarhouse-backend/pkg/enums"
	pkgerrors "github.com/attarhouse/attarhouse-backend/pkg/errors"
)

// Repository reads the product catalog.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a catalog repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindByID returns the active product with the given id.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	var product models.Product
	err := r.db.WithContext(ctx).
		Where("id = ? AND is_active", id).
		First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, err
	}
	return &product, nil
}

// FindBySlug returns the active product with the given slug.
func (r *Repository) FindBySlug(ctx context.Context, slug string) (*models.Product, error) {
	if slug == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product slug required")
	}
	var product models.Product
	err := r.db.WithContext(ctx).
		Where("slug = ? AND is_active", slug).
		First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, err
	}
	return &product, nil
}

// List returns active products, optionally filtered by category.
func (r *Repository) List(ctx context.Context, category *enums.ProductCategory) ([]models.Product, error) {
	query := r.db.WithContext(ctx).
		Where("is_active").
		Order("created_at DESC").
		Order("id DESC")
	if category != nil {
		query = query.Where("category = ?", *category)
	}
	var rows []models.Product
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// CountExistingTx counts how many of the given ids exist inside the
// transaction. Used by order submission to validate references. The count
// deliberately ignores is_active: a product deactivated while it sits in a
// cart can still be ordered, only a deleted row blocks submission.
func (r *Repository) CountExistingTx(tx *gorm.DB, ids []uuid.UUID) (int64, error) {
	if tx == nil {
		return 0, errors.New("transaction required")
	}
	if len(ids) == 0 {
		return 0, nil
	}
	var count int64
	err := tx.Model(&models.Product{}).
		Where("id IN ?", ids).
		Count(&count).Error
	return count, err
}
