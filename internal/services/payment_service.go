package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/turboost/api/internal/domain"
	"github.com/turboost/api/internal/payments"
	"github.com/turboost/api/internal/repositories"
)

// PaymentDeps carries the collaborators of the payment service.
type PaymentDeps struct {
	Products repositories.ProductRepository
	Orders   repositories.OrderRepository
	Provider payments.Provider

	// PublicKey is the provider's publishable key returned to the client for
	// the wallet widget.
	PublicKey string
	// CheckoutBaseURL is the storefront origin the buyer returns to.
	CheckoutBaseURL string
	// NotificationURL receives provider webhooks.
	NotificationURL string
	Currency        string

	// NewID mints order ids; defaults to ULIDs.
	NewID  func() string
	Clock  Clock
	Logger Logger
}

type paymentService struct {
	products repositories.ProductRepository
	orders   repositories.OrderRepository
	provider payments.Provider

	publicKey       string
	checkoutBaseURL string
	notificationURL string
	currency        string

	newID func() string
	now   Clock
	log   Logger
}

// NewPaymentService constructs the payment preparer.
func NewPaymentService(deps PaymentDeps) (PaymentService, error) {
	if deps.Products == nil {
		return nil, errors.New("payment service: product repository is required")
	}
	if deps.Orders == nil {
		return nil, errors.New("payment service: order repository is required")
	}
	if deps.Provider == nil {
		return nil, errors.New("payment service: payment provider is required")
	}
	base := strings.TrimRight(strings.TrimSpace(deps.CheckoutBaseURL), "/")
	if base == "" {
		return nil, errors.New("payment service: checkout base URL is required")
	}

	currency := strings.ToUpper(strings.TrimSpace(deps.Currency))
	if currency == "" {
		currency = "BRL"
	}
	newID := deps.NewID
	if newID == nil {
		newID = func() string { return ulid.MustNew(ulid.Now(), rand.Reader).String() }
	}
	now := deps.Clock
	if now == nil {
		now = time.Now
	}
	log := deps.Logger
	if log == nil {
		log = func(context.Context, string, map[string]any) {}
	}

	return &paymentService{
		products:        deps.Products,
		orders:          deps.Orders,
		provider:        deps.Provider,
		publicKey:       strings.TrimSpace(deps.PublicKey),
		checkoutBaseURL: base,
		notificationURL: strings.TrimSpace(deps.NotificationURL),
		currency:        currency,
		newID:           newID,
		now:             now,
		log:             log,
	}, nil
}

// CreatePayment reprices the cart from the catalog, creates a provider
// preference, and only then persists the pending order. A provider failure
// leaves no order behind; the order id is fresh on every attempt.
func (s *paymentService) CreatePayment(ctx context.Context, userID string, items []domain.CartLineItem, payer domain.PayerInfo) (PaymentIntent, error) {
	if len(items) == 0 {
		return PaymentIntent{}, ErrEmptyCart
	}

	orderItems := make([]domain.OrderItem, 0, len(items))
	prefItems := make([]payments.PreferenceItem, 0, len(items))
	var total float64
	for _, line := range items {
		productID := strings.TrimSpace(line.ProductID)
		if productID == "" {
			return PaymentIntent{}, fmt.Errorf("%w: missing product id", ErrProductNotFound)
		}
		qty := line.Quantity
		if qty < 1 {
			qty = 1
		}

		product, err := s.products.FindByID(ctx, productID)
		if err != nil {
			if repositories.IsNotFound(err) {
				return PaymentIntent{}, fmt.Errorf("%w: %s", ErrProductNotFound, productID)
			}
			return PaymentIntent{}, fmt.Errorf("load product %s: %w", productID, err)
		}

		// Client-submitted prices and names are discarded; the catalog is
		// the only pricing authority.
		orderItems = append(orderItems, domain.OrderItem{
			ProductID: product.ID,
			Name:      product.Name,
			UnitPrice: product.Price,
			Quantity:  qty,
		})
		prefItems = append(prefItems, payments.PreferenceItem{
			ID:         product.ID,
			Title:      product.Name,
			Quantity:   qty,
			UnitPrice:  product.Price,
			CurrencyID: s.currency,
		})
		total += product.Price * float64(qty)
	}

	orderID := s.newID()
	preference, err := s.provider.CreatePreference(ctx, payments.PreferenceRequest{
		Items: prefItems,
		Payer: payments.Payer{Name: payer.Name, Email: payer.Email},
		BackURLs: payments.BackURLs{
			Success: s.checkoutBaseURL + "/payment-success",
			Failure: s.checkoutBaseURL + "/payment-failure",
			Pending: s.checkoutBaseURL + "/payment-pending",
		},
		AutoReturn:        true,
		ExternalReference: orderID,
		NotificationURL:   s.notificationURL,
	})
	if err != nil {
		s.log(ctx, "payment.preference.failed", map[string]any{"order_id": orderID, "error": err.Error()})
		var provErr *payments.Error
		if errors.As(err, &provErr) && provErr.IsUnavailable() {
			return PaymentIntent{}, fmt.Errorf("%w: %v", ErrPaymentUnavailable, err)
		}
		return PaymentIntent{}, fmt.Errorf("%w: %v", ErrPaymentProviderError, err)
	}

	now := s.now().UTC()
	order := domain.Order{
		ID:           orderID,
		UserID:       strings.TrimSpace(userID),
		Status:       domain.OrderStatusPending,
		Total:        total,
		Currency:     s.currency,
		Items:        orderItems,
		Payer:        payer,
		PreferenceID: preference.ID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.orders.Insert(ctx, order); err != nil {
		s.log(ctx, "payment.order.persist_failed", map[string]any{
			"order_id":      orderID,
			"preference_id": preference.ID,
			"error":         err.Error(),
		})
		return PaymentIntent{}, fmt.Errorf("persist order %s: %w", orderID, err)
	}

	s.log(ctx, "payment.preference.created", map[string]any{
		"order_id":      orderID,
		"preference_id": preference.ID,
		"total":         total,
	})
	return PaymentIntent{
		PreferenceID: preference.ID,
		OrderID:      orderID,
		PublicKey:    s.publicKey,
	}, nil
}
