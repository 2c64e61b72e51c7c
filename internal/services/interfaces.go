// Package services contains the business flows behind the HTTP surface.
package services

import (
	"context"
	"time"

	"github.com/turboost/api/internal/domain"
)

// Logger is the event logging func services accept; observability.EventLogger
// adapts a zap logger to it.
type Logger func(ctx context.Context, event string, fields map[string]any)

// Clock supplies the current time; injected for tests.
type Clock func() time.Time

// ShippingService estimates carrier costs for a cart.
type ShippingService interface {
	Quote(ctx context.Context, destinationCEP string, items []domain.ShippingItem) ([]domain.ShippingOption, error)
}

// PaymentIntent is the result of preparing a checkout.
type PaymentIntent struct {
	PreferenceID string
	OrderID      string
	PublicKey    string
}

// PaymentService prepares provider checkouts from client carts.
type PaymentService interface {
	CreatePayment(ctx context.Context, userID string, items []domain.CartLineItem, payer domain.PayerInfo) (PaymentIntent, error)
}

// WebhookNotification is the decoded provider notification payload.
type WebhookNotification struct {
	Type      string
	PaymentID string
}

// WebhookService reconciles orders from provider notifications. Errors are
// logged, never surfaced; the HTTP layer always acks.
type WebhookService interface {
	HandleNotification(ctx context.Context, notification WebhookNotification)
}

// CatalogService exposes the product catalog and its admin mutations.
type CatalogService interface {
	ListProducts(ctx context.Context, includeInactive bool) ([]domain.Product, error)
	GetProduct(ctx context.Context, productID string) (domain.Product, error)
	CreateProduct(ctx context.Context, product domain.Product, image *ProductImage) (domain.Product, error)
	UpdateProduct(ctx context.Context, product domain.Product, image *ProductImage) (domain.Product, error)
	DeleteProduct(ctx context.Context, productID string) error
}

// ProductImage is an uploaded image attached to a product mutation.
type ProductImage struct {
	FileName    string
	ContentType string
	Data        []byte
}

// OrderService exposes order history views.
type OrderService interface {
	ListOrdersForUser(ctx context.Context, userID string) ([]domain.Order, error)
	ListAllOrders(ctx context.Context) ([]domain.Order, error)
}

// SettingsService owns the site settings document and static pages.
type SettingsService interface {
	GetSettings(ctx context.Context) (domain.SiteSettings, error)
	UpdateSettings(ctx context.Context, settings domain.SiteSettings) (domain.SiteSettings, error)
	GetPage(ctx context.Context, slug string) (domain.Page, error)
	UpdatePage(ctx context.Context, page domain.Page) (domain.Page, error)
}

// OrderEventMessage is published after a webhook successfully updates an order.
type OrderEventMessage struct {
	OrderID    string    `json:"orderId"`
	Status     string    `json:"status"`
	PaymentID  string    `json:"paymentId,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

// OrderEventPublisher dispatches order-status events for downstream fulfillment.
type OrderEventPublisher interface {
	PublishOrderEvent(ctx context.Context, message OrderEventMessage) (string, error)
}
