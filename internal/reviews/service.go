package reviews

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/attarhouse/attarhouse-backend/pkg/db/models"
	pkgerrors "github.com/attarhouse/attarhouse-backend/pkg/errors"
)

type repository interface {
	Create(ctx context.Context, review *models.Review) error
	ListByProduct(ctx context.Context, productID uuid.UUID, cursor string, limit int) (Page, error)
}

type productChecker interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// CreateInput carries the review submission.
type CreateInput struct {
	ProductID  uuid.UUID
	Rating     int
	Comment    string
	AuthorName string
}

// Service validates and stores product reviews.
type Service struct {
	repo     repository
	products productChecker
}

// NewService builds the review service.
func NewService(repo repository, products productChecker) (*Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("review repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	return &Service{repo: repo, products: products}, nil
}

// Create validates the submission and persists it. The referenced product
// must exist.
func (s *Service) Create(ctx context.Context, input CreateInput) (*models.Review, error) {
	if input.Rating < 1 || input.Rating > 5 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rating must be between 1 and 5")
	}
	comment := strings.TrimSpace(input.Comment)
	if comment == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "comment is required")
	}
	author := strings.TrimSpace(input.AuthorName)
	if author == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "author name is required")
	}

	if _, err := s.products.FindByID(ctx, input.ProductID); err != nil {
		return nil, err
	}

	review := &models.Review{
		ProductID:  input.ProductID,
		Rating:     input.Rating,
		Comment:    comment,
		AuthorName: author,
	}
	if err := s.repo.Create(ctx, review); err != nil {
		return nil, err
	}
	return review, nil
}

// ListByProduct returns a cursor page of reviews for the product.
func (s *Service) ListByProduct(ctx context.Context, productID uuid.UUID, cursor string, limit int) (Page, error) {
	if _, err := s.products.FindByID(ctx, productID); err != nil {
		return Page{}, err
	}
	return s.repo.ListByProduct(ctx, productID, cursor, limit)
}
