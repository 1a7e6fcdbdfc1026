package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Alioune4002/boutique-caisse/api/responses"
	"github.com/Alioune4002/boutique-caisse/api/validators"
	restocksvc "github.com/Alioune4002/boutique-caisse/internal/restock"
	pkgerrors "github.com/Alioune4002/boutique-caisse/pkg/errors"
	"github.com/Alioune4002/boutique-caisse/pkg/logger"
)

type restockRequest struct {
	Quantity int     `json:"quantity" validate:"required"`
	Actor    *string `json:"actor,omitempty"`
}

// RestockProduct adds stock to one product and records the event.
func RestockProduct(svc restocksvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "productId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.Wrap(pkgerrors.CodeMalformedInput, err, "invalid product id"))
			return
		}

		var payload restockRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		event, err := svc.Restock(r.Context(), id, payload.Quantity, payload.Actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, event)
	}
}

// AutoRestock tops up every product below the threshold.
func AutoRestock(svc restocksvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		count, err := svc.AutoRestock(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]int{"restocked": count})
	}
}

// RestockHistory returns a product's replenishment trail.
func RestockHistory(svc restocksvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "productId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.Wrap(pkgerrors.CodeMalformedInput, err, "invalid product id"))
			return
		}
		events, err := svc.History(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, events)
	}
}
