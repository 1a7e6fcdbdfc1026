package controllers

import (
	"bytes"
	"encoding/json"
	"html/template"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Alioune4002/boutique-caisse/api/middleware"
	"github.com/Alioune4002/boutique-caisse/api/responses"
	"github.com/Alioune4002/boutique-caisse/api/validators"
	checkoutsvc "github.com/Alioune4002/boutique-caisse/internal/checkout"
	"github.com/Alioune4002/boutique-caisse/pkg/enums"
	pkgerrors "github.com/Alioune4002/boutique-caisse/pkg/errors"
	"github.com/Alioune4002/boutique-caisse/pkg/logger"
)

const ajaxHeader = "XMLHttpRequest"

// cartTemplate renders the legacy cart fragment returned to ajax callers.
var cartTemplate = template.Must(template.New("panier").Parse(`<ul class="panier">
{{- range .Lines }}
<li data-index="{{ .Index }}">{{ .Name }} x{{ .Quantity }} — {{ .Subtotal.StringFixed 2 }} €</li>
{{- end }}
</ul>
<p class="total">Total : {{ .Total.StringFixed 2 }} €</p>`))

type addLineRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
}

type discountRequest struct {
	Kind  string          `json:"kind" validate:"required,oneof=percentage fixed"`
	Value decimal.Decimal `json:"value" validate:"required"`
}

type payRequest struct {
	Payments []paymentPair `json:"payments" validate:"required,min=1"`
}

type paymentPair struct {
	Mode   string          `json:"mode"`
	Amount decimal.Decimal `json:"amount"`
}

// ajaxCartBody is the legacy response contract of the add-to-cart path.
type ajaxCartBody struct {
	Success    bool   `json:"success"`
	Total      string `json:"total,omitempty"`
	PanierHTML string `json:"panier_html,omitempty"`
	Error      string `json:"error,omitempty"`
}

// CartFetch returns the current session cart.
func CartFetch(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, err := svc.View(r.Context(), middleware.SessionIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// CartAddLine adds one unit of a product to the session cart. Callers
// sending the ajax marker get the legacy flat body with the rendered
// cart fragment instead of the standard envelope.
func CartAddLine(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		isAjax := r.Header.Get("X-Requested-With") == ajaxHeader

		var payload addLineRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			if isAjax {
				writeAjax(w, http.StatusOK, ajaxCartBody{Success: false, Error: publicMessage(err)})
				return
			}
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.AddLine(r.Context(), middleware.SessionIDFromContext(r.Context()), payload.ProductID)
		if err != nil {
			if isAjax {
				writeAjax(w, http.StatusOK, ajaxCartBody{Success: false, Error: publicMessage(err)})
				return
			}
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if isAjax {
			var fragment bytes.Buffer
			if err := cartTemplate.Execute(&fragment, view); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to render cart"))
				return
			}
			writeAjax(w, http.StatusOK, ajaxCartBody{
				Success:    true,
				Total:      view.Total.StringFixed(2),
				PanierHTML: fragment.String(),
			})
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// CartRemoveLine takes one unit off the referenced cart line.
func CartRemoveLine(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		index, err := strconv.Atoi(chi.URLParam(r, "index"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.Wrap(pkgerrors.CodeMalformedInput, err, "line index must be an integer"))
			return
		}

		view, err := svc.RemoveLine(r.Context(), middleware.SessionIDFromContext(r.Context()), index)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// CartClear empties the cart and restores reserved stock.
func CartClear(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.ClearCart(r.Context(), middleware.SessionIDFromContext(r.Context())); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "cleared"})
	}
}

// CartApplyGlobalDiscount registers a discount on the whole cart total.
func CartApplyGlobalDiscount(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload discountRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		kind := enums.DiscountKind(payload.Kind)
		if err := svc.ApplyGlobalDiscount(r.Context(), kind, payload.Value); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]string{"status": "applied"})
	}
}

// CartApplyLineDiscount registers a discount on one cart line's product.
func CartApplyLineDiscount(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		index, err := strconv.Atoi(chi.URLParam(r, "index"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.Wrap(pkgerrors.CodeMalformedInput, err, "line index must be an integer"))
			return
		}

		var payload discountRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		kind := enums.DiscountKind(payload.Kind)
		if err := svc.ApplyLineDiscount(r.Context(), middleware.SessionIDFromContext(r.Context()), index, kind, payload.Value); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]string{"status": "applied"})
	}
}

// CartPay settles the cart against the tendered payment pairs.
func CartPay(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload payRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		pairs := make([]checkoutsvc.PaymentInput, 0, len(payload.Payments))
		for _, pair := range payload.Payments {
			pairs = append(pairs, checkoutsvc.PaymentInput{Mode: pair.Mode, Amount: pair.Amount})
		}

		receipt, err := svc.Pay(r.Context(), middleware.SessionIDFromContext(r.Context()), pairs)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, receipt)
	}
}

func writeAjax(w http.ResponseWriter, status int, body ajaxCartBody) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func publicMessage(err error) string {
	if typed := pkgerrors.As(err); typed != nil {
		if m := typed.Message(); m != "" {
			return m
		}
		return pkgerrors.MetadataFor(typed.Code()).PublicMessage
	}
	return "unexpected error"
}
