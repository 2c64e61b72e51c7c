package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/turboost/api/internal/services"
)

const maxWebhookBodySize = 64 * 1024

// WebhookHandlers receives payment-provider notifications. The endpoint acks
// every delivery with 200 regardless of internal outcome; a non-2xx would only
// trigger provider redelivery of a payload we already could not process.
type WebhookHandlers struct {
	webhooks services.WebhookService
}

// NewWebhookHandlers constructs webhook handlers.
func NewWebhookHandlers(webhooks services.WebhookService) *WebhookHandlers {
	return &WebhookHandlers{webhooks: webhooks}
}

// Routes registers the provider notification endpoints.
func (h *WebhookHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Post("/webhooks/mercadopago", h.mercadoPago)
}

type webhookPayload struct {
	Type   string `json:"type"`
	Action string `json:"action"`
	Data   struct {
		ID json.Number `json:"id"`
	} `json:"data"`
}

func (h *WebhookHandlers) mercadoPago(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	notification := services.WebhookNotification{
		// Older notification formats carry everything in query parameters.
		Type:      firstNonEmpty(r.URL.Query().Get("type"), r.URL.Query().Get("topic")),
		PaymentID: firstNonEmpty(r.URL.Query().Get("data.id"), r.URL.Query().Get("id")),
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBodySize))
	if err == nil && len(strings.TrimSpace(string(body))) > 0 {
		var payload webhookPayload
		if err := json.Unmarshal(body, &payload); err == nil {
			if t := strings.TrimSpace(payload.Type); t != "" {
				notification.Type = t
			}
			if id := strings.TrimSpace(payload.Data.ID.String()); id != "" {
				notification.PaymentID = id
			}
		}
	}

	if h.webhooks != nil {
		h.webhooks.HandleNotification(ctx, notification)
	}

	writeJSONResponse(w, http.StatusOK, map[string]any{"status": "received"})
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
