package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/attarhouse/attarhouse-backend/api/responses"
	"github.com/attarhouse/attarhouse-backend/api/validators"
	productsvc "github.com/attarhouse/attarhouse-backend/internal/products"
	pkgerrors "github.com/attarhouse/attarhouse-backend/pkg/errors"
	"github.com/attarhouse/attarhouse-backend/pkg/logger"
)

// ProductsList returns the active catalog, optionally filtered by category.
func ProductsList(svc *productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		category := validators.ParseQueryString(r, "category", "")

		products, err := svc.List(r.Context(), category)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dtos := make([]productDTO, 0, len(products))
		for i := range products {
			dtos = append(dtos, newProductDTO(&products[i]))
		}
		responses.WriteSuccess(w, dtos)
	}
}

// ProductGetBySlug returns a single active product by its slug.
func ProductGetBySlug(svc *productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug := strings.TrimSpace(chi.URLParam(r, "slug"))
		if slug == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "product slug required"))
			return
		}

		product, err := svc.GetBySlug(r.Context(), slug)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newProductDTO(product))
	}
}
