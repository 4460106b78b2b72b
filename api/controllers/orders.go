package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/attarhouse/attarhouse-backend/api/responses"
	ordersvc "github.com/attarhouse/attarhouse-backend/internal/orders"
	pkgerrors "github.com/attarhouse/attarhouse-backend/pkg/errors"
	"github.com/attarhouse/attarhouse-backend/pkg/logger"
)

// OrderGetByNumber returns a placed order by its public order number.
func OrderGetByNumber(svc *ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderNumber := strings.TrimSpace(chi.URLParam(r, "orderNumber"))
		if orderNumber == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "order number required"))
			return
		}

		order, err := svc.GetByOrderNumber(r.Context(), orderNumber)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newOrderDTO(order, nil))
	}
}
