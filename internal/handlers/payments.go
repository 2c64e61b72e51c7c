package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/turboost/api/internal/domain"
	"github.com/turboost/api/internal/platform/auth"
	"github.com/turboost/api/internal/platform/httpx"
	"github.com/turboost/api/internal/services"
)

const maxPaymentBodySize = 64 * 1024

// PaymentHandlers exposes the checkout preparation endpoint.
type PaymentHandlers struct {
	payments services.PaymentService
}

// NewPaymentHandlers constructs payment handlers.
func NewPaymentHandlers(payments services.PaymentService) *PaymentHandlers {
	return &PaymentHandlers{payments: payments}
}

// Routes registers the checkout endpoints; the router mounts them behind the
// authentication middleware.
func (h *PaymentHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Post("/create_payment", h.createPayment)
}

type createPaymentRequest struct {
	Items []cartLineRequest `json:"items"`
	Payer payerRequest      `json:"payer"`
}

type cartLineRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type payerRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type createPaymentResponse struct {
	PreferenceID string `json:"preference_id"`
	OrderID      string `json:"order_id"`
	PublicKey    string `json:"public_key,omitempty"`
}

func (h *PaymentHandlers) createPayment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	identity, ok := auth.IdentityFromContext(ctx)
	if !ok || identity == nil || strings.TrimSpace(identity.UID) == "" {
		httpx.WriteError(ctx, w, httpx.NewError("unauthenticated", "authentication required", http.StatusUnauthorized))
		return
	}

	body, err := readLimitedBody(r, maxPaymentBodySize)
	if err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	var req createPaymentRequest
	if err := json.Unmarshal(body, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "request body must be valid JSON", http.StatusBadRequest))
		return
	}

	items := make([]domain.CartLineItem, 0, len(req.Items))
	for _, line := range req.Items {
		items = append(items, domain.CartLineItem{
			ProductID: strings.TrimSpace(line.ProductID),
			Quantity:  line.Quantity,
		})
	}
	payer := domain.PayerInfo{
		Name:  strings.TrimSpace(req.Payer.Name),
		Email: strings.TrimSpace(req.Payer.Email),
	}

	intent, err := h.payments.CreatePayment(ctx, identity.UID, items, payer)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, createPaymentResponse{
		PreferenceID: intent.PreferenceID,
		OrderID:      intent.OrderID,
		PublicKey:    intent.PublicKey,
	})
}
