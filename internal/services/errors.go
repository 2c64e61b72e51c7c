package services

import "errors"

// Sentinel errors translated by the handlers into the HTTP error envelope.
var (
	// ErrShippingInvalidInput covers malformed CEPs and invalid item attributes.
	ErrShippingInvalidInput = errors.New("shipping: invalid input")
	// ErrCarrierRejected means the carrier answered but produced no usable quote.
	ErrCarrierRejected = errors.New("shipping: carrier rejected request")
	// ErrCarrierUnavailable means the carrier could not be reached.
	ErrCarrierUnavailable = errors.New("shipping: carrier unavailable")

	// ErrEmptyCart rejects checkout attempts without items.
	ErrEmptyCart = errors.New("payment: cart is empty")
	// ErrProductNotFound means a cart line references an unknown product.
	ErrProductNotFound = errors.New("payment: product not found")
	// ErrPaymentProviderError means the provider rejected the preference.
	ErrPaymentProviderError = errors.New("payment: provider rejected request")
	// ErrPaymentUnavailable means the provider could not be reached.
	ErrPaymentUnavailable = errors.New("payment: provider unavailable")

	// ErrInvalidInput covers malformed catalog and settings payloads.
	ErrInvalidInput = errors.New("services: invalid input")
)
