package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/turboost/api/internal/payments"
	"github.com/turboost/api/internal/repositories"
)

// WebhookDeps carries the collaborators of the webhook reconciler.
type WebhookDeps struct {
	Orders   repositories.OrderRepository
	Provider payments.Provider
	// Events is optional; when set, a message is published after every
	// successful order update.
	Events OrderEventPublisher
	Clock  Clock
	Logger Logger
}

type webhookService struct {
	orders   repositories.OrderRepository
	provider payments.Provider
	events   OrderEventPublisher
	now      Clock
	log      Logger
}

// NewWebhookService constructs the payment-notification reconciler.
func NewWebhookService(deps WebhookDeps) (WebhookService, error) {
	if deps.Orders == nil {
		return nil, errors.New("webhook service: order repository is required")
	}
	if deps.Provider == nil {
		return nil, errors.New("webhook service: payment provider is required")
	}
	now := deps.Clock
	if now == nil {
		now = time.Now
	}
	log := deps.Logger
	if log == nil {
		log = func(context.Context, string, map[string]any) {}
	}
	return &webhookService{
		orders:   deps.Orders,
		provider: deps.Provider,
		events:   deps.Events,
		now:      now,
		log:      log,
	}, nil
}

// HandleNotification reconciles the referenced order from the provider's
// current payment state. The provider is the source of truth: the notification
// body is only a pointer, never trusted for status. All failures are logged
// and swallowed so the HTTP layer can always ack; the provider retries on its
// own schedule.
func (s *webhookService) HandleNotification(ctx context.Context, notification WebhookNotification) {
	if !strings.EqualFold(strings.TrimSpace(notification.Type), "payment") {
		s.log(ctx, "webhook.skipped", map[string]any{"type": notification.Type})
		return
	}
	paymentID := strings.TrimSpace(notification.PaymentID)
	if paymentID == "" {
		s.log(ctx, "webhook.skipped", map[string]any{"reason": "missing payment id"})
		return
	}

	info, err := s.provider.GetPayment(ctx, paymentID)
	if err != nil {
		s.log(ctx, "webhook.payment_lookup_failed", map[string]any{
			"payment_id": paymentID,
			"error":      err.Error(),
		})
		return
	}

	orderID := strings.TrimSpace(info.ExternalReference)
	status := strings.TrimSpace(info.Status)
	if orderID == "" || status == "" {
		s.log(ctx, "webhook.payment_incomplete", map[string]any{
			"payment_id": paymentID,
			"order_id":   orderID,
			"status":     status,
		})
		return
	}

	update := repositories.OrderUpdate{
		Status:        status,
		PaymentID:     info.ID,
		PaymentDetail: info.Raw,
		UpdatedAt:     s.now().UTC(),
	}
	if err := s.orders.ApplyPaymentUpdate(ctx, orderID, update); err != nil {
		if repositories.IsNotFound(err) {
			// A notification can reference an order we never persisted, e.g.
			// a preference created against a different environment.
			s.log(ctx, "webhook.order_missing", map[string]any{
				"order_id":   orderID,
				"payment_id": paymentID,
			})
			return
		}
		s.log(ctx, "webhook.order_update_failed", map[string]any{
			"order_id":   orderID,
			"payment_id": paymentID,
			"error":      err.Error(),
		})
		return
	}

	s.log(ctx, "webhook.order_updated", map[string]any{
		"order_id":   orderID,
		"payment_id": paymentID,
		"status":     status,
	})

	if s.events == nil {
		return
	}
	message := OrderEventMessage{
		OrderID:    orderID,
		Status:     status,
		PaymentID:  info.ID,
		OccurredAt: s.now().UTC(),
	}
	if _, err := s.events.PublishOrderEvent(ctx, message); err != nil {
		s.log(ctx, "webhook.event_publish_failed", map[string]any{
			"order_id": orderID,
			"error":    err.Error(),
		})
	}
}
