package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/turboost/api/internal/domain"
	"github.com/turboost/api/internal/platform/httpx"
	"github.com/turboost/api/internal/services"
)

const maxShippingBodySize = 32 * 1024

// ShippingHandlers exposes the shipping quote endpoint.
type ShippingHandlers struct {
	shipping services.ShippingService
}

// NewShippingHandlers constructs shipping handlers.
func NewShippingHandlers(shipping services.ShippingService) *ShippingHandlers {
	return &ShippingHandlers{shipping: shipping}
}

// Routes registers the shipping endpoints.
func (h *ShippingHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Post("/shipping/quote", h.quote)
}

type shippingQuoteRequest struct {
	CEP   string                `json:"cep"`
	Items []shippingItemRequest `json:"items"`
}

type shippingItemRequest struct {
	Quantity int        `json:"quantity"`
	Weight   *flexFloat `json:"weight"`
	Length   *flexFloat `json:"length"`
	Width    *flexFloat `json:"width"`
	Height   *flexFloat `json:"height"`
}

func (h *ShippingHandlers) quote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	body, err := readLimitedBody(r, maxShippingBodySize)
	if err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	var req shippingQuoteRequest
	if err := json.Unmarshal(body, &req); err != nil {
		// Non-numeric item fields fail the whole request, matching the
		// estimator's fail-the-batch contract.
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			httpx.WriteError(ctx, w, httpx.NewError("invalid_input", "cart item fields must be numeric", http.StatusBadRequest))
			return
		}
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "request body must be valid JSON", http.StatusBadRequest))
		return
	}

	items := make([]domain.ShippingItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, domain.ShippingItem{
			Quantity: item.Quantity,
			WeightKg: item.Weight.ptr(),
			LengthCm: item.Length.ptr(),
			WidthCm:  item.Width.ptr(),
			HeightCm: item.Height.ptr(),
		})
	}

	options, err := h.shipping.Quote(ctx, req.CEP, items)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"options": options})
}
