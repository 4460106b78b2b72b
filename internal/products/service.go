package products

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/attarhouse/attarhouse-backend/pkg/db/models"
	"github.com/attarhouse/attarhouse-backend/pkg/enums"
	pkgerrors "github.com/attarhouse/attarhouse-backend/pkg/errors"
)

type repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	FindBySlug(ctx context.Context, slug string) (*models.Product, error)
	List(ctx context.Context, category *enums.ProductCategory) ([]models.Product, error)
}

// Service exposes the read-only catalog surface.
type Service struct {
	repo repository
}

// NewService builds the catalog service.
func NewService(repo repository) (*Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "product repository required")
	}
	return &Service{repo: repo}, nil
}

// GetByID fetches one product by id.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	return s.repo.FindByID(ctx, id)
}

// GetBySlug fetches one product by slug.
func (s *Service) GetBySlug(ctx context.Context, slug string) (*models.Product, error) {
	return s.repo.FindBySlug(ctx, strings.TrimSpace(slug))
}

// List returns the catalog, optionally filtered by a category string.
func (s *Service) List(ctx context.Context, category string) ([]models.Product, error) {
	trimmed := strings.TrimSpace(category)
	if trimmed == "" {
		return s.repo.List(ctx, nil)
	}
	cat := enums.ProductCategory(strings.ToLower(trimmed))
	if !cat.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown product category")
	}
	return s.repo.List(ctx, &cat)
}
