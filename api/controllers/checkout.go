package controllers

import (
	"net/http"

	"github.com/attarhouse/attarhouse-backend/api/responses"
	"github.com/attarhouse/attarhouse-backend/api/validators"
	checkoutsvc "github.com/attarhouse/attarhouse-backend/internal/checkout"
	"github.com/attarhouse/attarhouse-backend/pkg/enums"
	pkgerrors "github.com/attarhouse/attarhouse-backend/pkg/errors"
	"github.com/attarhouse/attarhouse-backend/pkg/logger"
	"github.com/attarhouse/attarhouse-backend/pkg/types"
)

type checkoutRequest struct {
	FirstName     string  `json:"first_name" validate:"required"`
	LastName      string  `json:"last_name" validate:"required"`
	Email         string  `json:"email" validate:"required,email"`
	Phone         string  `json:"phone" validate:"required"`
	Address1      string  `json:"address1" validate:"required"`
	Address2      *string `json:"address2,omitempty"`
	City          string  `json:"city" validate:"required"`
	Country       string  `json:"country"`
	Notes         *string `json:"notes,omitempty"`
	Subscribe     bool    `json:"subscribe"`
	PaymentMethod string  `json:"payment_method" validate:"required"`
}

func (req checkoutRequest) toInput() checkoutsvc.Input {
	return checkoutsvc.Input{
		Customer: types.Customer{
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Email:     req.Email,
			Phone:     req.Phone,
			Address1:  req.Address1,
			Address2:  req.Address2,
			City:      req.City,
			Country:   req.Country,
			Notes:     req.Notes,
			Subscribe: req.Subscribe,
		},
		PaymentMethod: enums.PaymentMethod(req.PaymentMethod),
	}
}

// CheckoutSubmit turns the session cart into a persisted order.
func CheckoutSubmit(svc *checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, err := sessionIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Submit(r.Context(), sessionID, payload.toInput())
		if err != nil {
			// a failed write still returns the built snapshot; surface it so
			// the shopper keeps the order figures for retry
			if result != nil && result.Order != nil {
				if typed := pkgerrors.As(err); typed != nil && typed.Details() == nil {
					err = typed.WithDetails(map[string]any{"order": newCheckoutResultDTO(result)})
				}
			}
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newCheckoutResultDTO(result))
	}
}
