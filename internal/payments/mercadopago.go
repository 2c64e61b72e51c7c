package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	mpconfig "github.com/mercadopago/sdk-go/pkg/config"
	"github.com/mercadopago/sdk-go/pkg/payment"
	"github.com/mercadopago/sdk-go/pkg/preference"
)

const autoReturnApproved = "approved"

// MercadoPagoProvider adapts the Mercado Pago SDK to the Provider contract.
type MercadoPagoProvider struct {
	preferences preference.Client
	payments    payment.Client
	publicKey   string
}

// NewMercadoPagoProvider constructs the adapter from an access token.
func NewMercadoPagoProvider(accessToken, publicKey string) (*MercadoPagoProvider, error) {
	if strings.TrimSpace(accessToken) == "" {
		return nil, errors.New("mercadopago: access token is required")
	}
	cfg, err := mpconfig.New(accessToken)
	if err != nil {
		return nil, fmt.Errorf("mercadopago: configure sdk: %w", err)
	}
	return &MercadoPagoProvider{
		preferences: preference.NewClient(cfg),
		payments:    payment.NewClient(cfg),
		publicKey:   strings.TrimSpace(publicKey),
	}, nil
}

// PublicKey returns the publishable key the wallet widget needs.
func (p *MercadoPagoProvider) PublicKey() string {
	if p == nil {
		return ""
	}
	return p.publicKey
}

// CreatePreference creates a checkout preference for the given request.
func (p *MercadoPagoProvider) CreatePreference(ctx context.Context, req PreferenceRequest) (Preference, error) {
	if p == nil || p.preferences == nil {
		return Preference{}, NewError("mercadopago.create_preference", errors.New("provider not initialised"))
	}
	if len(req.Items) == 0 {
		return Preference{}, NewError("mercadopago.create_preference", errors.New("at least one item is required"))
	}

	items := make([]preference.ItemRequest, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, preference.ItemRequest{
			ID:         item.ID,
			Title:      item.Title,
			Quantity:   item.Quantity,
			UnitPrice:  item.UnitPrice,
			CurrencyID: item.CurrencyID,
		})
	}

	request := preference.Request{
		Items:             items,
		ExternalReference: req.ExternalReference,
		NotificationURL:   req.NotificationURL,
	}
	if req.Payer.Name != "" || req.Payer.Email != "" {
		request.Payer = &preference.PayerRequest{
			Name:  req.Payer.Name,
			Email: req.Payer.Email,
		}
	}
	if req.BackURLs != (BackURLs{}) {
		request.BackURLs = &preference.BackURLsRequest{
			Success: req.BackURLs.Success,
			Failure: req.BackURLs.Failure,
			Pending: req.BackURLs.Pending,
		}
	}
	if req.AutoReturn {
		request.AutoReturn = autoReturnApproved
	}

	resource, err := p.preferences.Create(ctx, request)
	if err != nil {
		return Preference{}, wrapProviderError("mercadopago.create_preference", err)
	}
	if resource == nil || strings.TrimSpace(resource.ID) == "" {
		return Preference{}, NewError("mercadopago.create_preference", errors.New("empty preference response"))
	}

	return Preference{
		ID:        resource.ID,
		InitPoint: resource.InitPoint,
	}, nil
}

// GetPayment fetches the authoritative payment record by provider payment ID.
func (p *MercadoPagoProvider) GetPayment(ctx context.Context, paymentID string) (PaymentInfo, error) {
	if p == nil || p.payments == nil {
		return PaymentInfo{}, NewError("mercadopago.get_payment", errors.New("provider not initialised"))
	}
	id, err := strconv.Atoi(strings.TrimSpace(paymentID))
	if err != nil {
		return PaymentInfo{}, NewError("mercadopago.get_payment", fmt.Errorf("invalid payment id %q", paymentID))
	}

	resource, err := p.payments.Get(ctx, id)
	if err != nil {
		return PaymentInfo{}, wrapProviderError("mercadopago.get_payment", err)
	}
	if resource == nil {
		return PaymentInfo{}, NewError("mercadopago.get_payment", errors.New("empty payment response"))
	}

	return PaymentInfo{
		ID:                strconv.Itoa(resource.ID),
		Status:            resource.Status,
		StatusDetail:      resource.StatusDetail,
		ExternalReference: resource.ExternalReference,
		TransactionAmount: resource.TransactionAmount,
		Raw:               rawPaymentDetail(resource),
	}, nil
}

// rawPaymentDetail flattens the SDK response into a generic map for audit storage.
func rawPaymentDetail(resource *payment.Response) map[string]any {
	data, err := json.Marshal(resource)
	if err != nil {
		return nil
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil
	}
	return raw
}

func wrapProviderError(op string, err error) *Error {
	if isTransportError(err) {
		return NewUnavailableError(op, err)
	}
	return NewError(op, err)
}

func isTransportError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}

// Ensure interface compliance.
var _ Provider = (*MercadoPagoProvider)(nil)
