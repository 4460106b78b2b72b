package controllers

import (
	"net/http"

	"github.com/attarhouse/attarhouse-backend/api/responses"
	"github.com/attarhouse/attarhouse-backend/api/validators"
	reviewsvc "github.com/attarhouse/attarhouse-backend/internal/reviews"
	"github.com/attarhouse/attarhouse-backend/pkg/logger"
	"github.com/attarhouse/attarhouse-backend/pkg/pagination"
)

type createReviewRequest struct {
	Rating     int    `json:"rating" validate:"required,min=1,max=5"`
	Comment    string `json:"comment" validate:"required"`
	AuthorName string `json:"author_name" validate:"required"`
}

// ReviewCreate records a shopper review for a product.
func ReviewCreate(svc *reviewsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := productIDFromPath(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createReviewRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		review, err := svc.Create(r.Context(), reviewsvc.CreateInput{
			ProductID:  productID,
			Rating:     payload.Rating,
			Comment:    payload.Comment,
			AuthorName: payload.AuthorName,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newReviewDTO(review))
	}
}

type reviewPageDTO struct {
	Reviews    []reviewDTO `json:"reviews"`
	NextCursor string      `json:"next_cursor,omitempty"`
}

// ReviewsList returns a product's reviews newest first, cursor paginated.
func ReviewsList(svc *reviewsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := productIDFromPath(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		cursor := validators.ParseQueryString(r, "cursor", "")

		page, err := svc.ListByProduct(r.Context(), productID, cursor, limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dtos := make([]reviewDTO, 0, len(page.Reviews))
		for i := range page.Reviews {
			dtos = append(dtos, newReviewDTO(&page.Reviews[i]))
		}
		responses.WriteSuccess(w, reviewPageDTO{Reviews: dtos, NextCursor: page.NextCursor})
	}
}
