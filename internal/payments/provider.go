// Package payments defines the payment-provider contract and its Mercado Pago
// adapter.
package payments

import (
	"context"
	"fmt"
)

// PreferenceItem is a server-priced line item included in a checkout preference.
type PreferenceItem struct {
	ID         string
	Title      string
	Quantity   int
	UnitPrice  float64
	CurrencyID string
}

// Payer carries buyer contact details forwarded to the provider.
type Payer struct {
	Name  string
	Email string
}

// BackURLs are the storefront return URLs for each payment outcome.
type BackURLs struct {
	Success string
	Failure string
	Pending string
}

// PreferenceRequest captures the payload required to create a checkout preference.
type PreferenceRequest struct {
	Items             []PreferenceItem
	Payer             Payer
	BackURLs          BackURLs
	AutoReturn        bool
	ExternalReference string
	NotificationURL   string
}

// Preference is the provider session returned to the client.
type Preference struct {
	ID        string
	InitPoint string
}

// PaymentInfo normalises provider payment details for reconciliation.
type PaymentInfo struct {
	ID                string
	Status            string
	StatusDetail      string
	ExternalReference string
	TransactionAmount float64
	Raw               map[string]any
}

// Provider is the contract payment adapters implement.
type Provider interface {
	CreatePreference(ctx context.Context, req PreferenceRequest) (Preference, error)
	GetPayment(ctx context.Context, paymentID string) (PaymentInfo, error)
}

// Error wraps provider failures with the categorisation services act on:
// unavailable means the provider could not be reached and the attempt may be
// retried; everything else is a semantic rejection.
type Error struct {
	op          string
	err         error
	unavailable bool
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.op != "" {
		return fmt.Sprintf("%s: %v", e.op, e.err)
	}
	return e.err.Error()
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.err
}

// IsUnavailable reports whether the failure was transport-level.
func (e *Error) IsUnavailable() bool {
	return e != nil && e.unavailable
}

// NewError builds a semantic provider error.
func NewError(op string, err error) *Error {
	return &Error{op: op, err: err}
}

// NewUnavailableError builds a transport-level provider error.
func NewUnavailableError(op string, err error) *Error {
	return &Error{op: op, err: err, unavailable: true}
}
