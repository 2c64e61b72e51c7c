// Package handlers exposes the HTTP surface: chi route registrars per concern
// plus the router assembly.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/turboost/api/internal/platform/httpx"
	"github.com/turboost/api/internal/platform/requestctx"
	"github.com/turboost/api/internal/repositories"
	"github.com/turboost/api/internal/services"

	"go.uber.org/zap"
)

var (
	errEmptyBody    = errors.New("request body is empty")
	errBodyTooLarge = errors.New("request body too large")
)

func readLimitedBody(r *http.Request, limit int64) ([]byte, error) {
	if r == nil || r.Body == nil {
		return nil, errEmptyBody
	}
	if limit <= 0 {
		limit = 64 * 1024
	}
	reader := io.LimitReader(r.Body, limit+1)
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, errEmptyBody
	}
	if int64(len(data)) > limit {
		return nil, errBodyTooLarge
	}
	return data, nil
}

func writeJSONResponse(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeBodyError(ctx context.Context, w http.ResponseWriter, err error) {
	status := http.StatusBadRequest
	if errors.Is(err, errBodyTooLarge) {
		status = http.StatusRequestEntityTooLarge
	}
	httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), status))
}

// writeServiceError maps service sentinel errors onto the JSON error envelope.
// Unmatched errors become a generic 500 with the detail logged, never leaked.
func writeServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrShippingInvalidInput), errors.Is(err, services.ErrInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_input", err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrEmptyCart):
		httpx.WriteError(ctx, w, httpx.NewError("empty_cart", "cart must contain at least one item", http.StatusBadRequest))
	case errors.Is(err, services.ErrProductNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("product_not_found", err.Error(), http.StatusNotFound))
	case errors.Is(err, services.ErrPageNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("page_not_found", err.Error(), http.StatusNotFound))
	case errors.Is(err, services.ErrCarrierRejected):
		httpx.WriteError(ctx, w, httpx.NewError("carrier_rejected", err.Error(), http.StatusBadGateway))
	case errors.Is(err, services.ErrCarrierUnavailable):
		httpx.WriteError(ctx, w, httpx.NewError("carrier_unavailable", "shipping carrier is unavailable", http.StatusServiceUnavailable))
	case errors.Is(err, services.ErrPaymentProviderError):
		httpx.WriteError(ctx, w, httpx.NewError("payment_provider_error", "payment provider rejected the request", http.StatusBadGateway))
	case errors.Is(err, services.ErrPaymentUnavailable):
		httpx.WriteError(ctx, w, httpx.NewError("payment_unavailable", "payment provider is unavailable", http.StatusServiceUnavailable))
	case repositories.IsNotFound(err):
		httpx.WriteError(ctx, w, httpx.NewError("not_found", "resource not found", http.StatusNotFound))
	case repositories.IsUnavailable(err):
		httpx.WriteError(ctx, w, httpx.NewError("backend_unavailable", "backend is unavailable", http.StatusServiceUnavailable))
	default:
		requestctx.Logger(ctx).Error("request failed", zap.Error(err))
		httpx.WriteError(ctx, w, httpx.NewError("internal_error", "request processing failed", http.StatusInternalServerError))
	}
}

// flexFloat accepts JSON numbers and numeric strings, tolerating a comma
// decimal separator the way the storefront clients submit them.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "" || raw == "null" {
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if strings.TrimSpace(s) == "" {
			return nil
		}
		value, err := parseFlexibleNumber(s)
		if err != nil {
			return errors.New("value is not numeric")
		}
		*f = flexFloat(value)
		return nil
	}
	var value float64
	if err := json.Unmarshal(data, &value); err != nil {
		return errors.New("value is not numeric")
	}
	*f = flexFloat(value)
	return nil
}

// parseFlexibleNumber reads "1.200,50" and "0,5" as well as plain "2.5": a
// comma marks the decimal separator and demotes any points to thousands marks.
func parseFlexibleNumber(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}
	return strconv.ParseFloat(s, 64)
}

func (f *flexFloat) ptr() *float64 {
	if f == nil {
		return nil
	}
	value := float64(*f)
	return &value
}
