package wishlist

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/attarhouse/attarhouse-backend/pkg/db/models"
)

type repository interface {
	AddItem(ctx context.Context, sessionID string, productID uuid.UUID) error
	RemoveItem(ctx context.Context, sessionID string, productID uuid.UUID) error
	ListItems(ctx context.Context, sessionID string) ([]Entry, error)
}

type productChecker interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// Service manages the session's saved-for-later products.
type Service struct {
	repo     repository
	products productChecker
}

// NewService builds the wishlist service.
func NewService(repo repository, products productChecker) (*Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("wishlist repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	return &Service{repo: repo, products: products}, nil
}

// Add saves a product for the session. Duplicate saves are idempotent.
func (s *Service) Add(ctx context.Context, sessionID string, productID uuid.UUID) error {
	if _, err := s.products.FindByID(ctx, productID); err != nil {
		return err
	}
	return s.repo.AddItem(ctx, sessionID, productID)
}

// Remove drops the saved product if present.
func (s *Service) Remove(ctx context.Context, sessionID string, productID uuid.UUID) error {
	return s.repo.RemoveItem(ctx, sessionID, productID)
}

// List returns the session's saved products.
func (s *Service) List(ctx context.Context, sessionID string) ([]Entry, error) {
	return s.repo.ListItems(ctx, sessionID)
}
