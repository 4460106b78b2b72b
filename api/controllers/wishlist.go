package controllers

import (
	"net/http"
	"time"

	"github.com/attarhouse/attarhouse-backend/api/responses"
	wishlistsvc "github.com/attarhouse/attarhouse-backend/internal/wishlist"
	"github.com/attarhouse/attarhouse-backend/pkg/logger"
)

// WishlistAdd saves a product for later in the session wishlist.
func WishlistAdd(svc *wishlistsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, err := sessionIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := productIDFromPath(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Add(r.Context(), sessionID, productID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]string{"status": "saved"})
	}
}

// WishlistRemove drops a product from the session wishlist.
func WishlistRemove(svc *wishlistsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, err := sessionIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := productIDFromPath(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Remove(r.Context(), sessionID, productID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "removed"})
	}
}

type wishlistEntryDTO struct {
	Product productDTO `json:"product"`
	AddedAt time.Time  `json:"added_at"`
}

// WishlistList returns the session's saved products, skipping any that have
// been deactivated since they were saved.
func WishlistList(svc *wishlistsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, err := sessionIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entries, err := svc.List(r.Context(), sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dtos := make([]wishlistEntryDTO, 0, len(entries))
		for i := range entries {
			dtos = append(dtos, wishlistEntryDTO{
				Product: newProductDTO(&entries[i].Product),
				AddedAt: entries[i].AddedAt,
			})
		}
		responses.WriteSuccess(w, dtos)
	}
}
