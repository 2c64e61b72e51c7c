package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/turboost/api/internal/domain"
	"github.com/turboost/api/internal/shipping"
)

// Fallbacks and floors applied when aggregating the cart into one parcel.
// Values are the carrier's accepted minimums.
const (
	fallbackWeightKg = 0.3
	fallbackLengthCm = 16.0
	fallbackWidthCm  = 11.0
	fallbackHeightCm = 5.0

	floorWeightKg = 0.3
	floorLengthCm = 16.0
	floorWidthCm  = 11.0
	floorHeightCm = 2.0
)

// serviceNames maps carrier service codes to customer-facing labels.
var serviceNames = map[string]string{
	"04014": "SEDEX",
	"04510": "PAC",
}

// ShippingDeps carries the collaborators of the shipping service.
type ShippingDeps struct {
	Rates        shipping.RateClient
	OriginCEP    string
	ServiceCodes []string
	Logger       Logger
}

type shippingService struct {
	rates        shipping.RateClient
	originCEP    string
	serviceCodes []string
	log          Logger
}

// NewShippingService constructs the shipping estimator.
func NewShippingService(deps ShippingDeps) (ShippingService, error) {
	if deps.Rates == nil {
		return nil, errors.New("shipping service: rate client is required")
	}
	origin, err := NormalizeCEP(deps.OriginCEP)
	if err != nil {
		return nil, fmt.Errorf("shipping service: invalid origin CEP %q", deps.OriginCEP)
	}
	if len(deps.ServiceCodes) == 0 {
		return nil, errors.New("shipping service: service codes are required")
	}
	log := deps.Logger
	if log == nil {
		log = func(context.Context, string, map[string]any) {}
	}
	return &shippingService{
		rates:        deps.Rates,
		originCEP:    origin,
		serviceCodes: append([]string(nil), deps.ServiceCodes...),
		log:          log,
	}, nil
}

// Quote aggregates the cart into a single parcel and asks the carrier for
// every configured service in one call.
func (s *shippingService) Quote(ctx context.Context, destinationCEP string, items []domain.ShippingItem) ([]domain.ShippingOption, error) {
	cep, err := NormalizeCEP(destinationCEP)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrShippingInvalidInput, err)
	}

	if len(items) == 0 {
		return []domain.ShippingOption{}, nil
	}

	pkg, err := aggregatePackage(items)
	if err != nil {
		return nil, err
	}

	quotes, err := s.rates.Rates(ctx, s.originCEP, cep, pkg, s.serviceCodes)
	if err != nil {
		if errors.Is(err, shipping.ErrCarrierUnreachable) {
			s.log(ctx, "shipping.quote.carrier_unreachable", map[string]any{"cep": cep, "error": err.Error()})
			return nil, fmt.Errorf("%w: %v", ErrCarrierUnavailable, err)
		}
		return nil, err
	}

	options := make([]domain.ShippingOption, 0, len(quotes))
	var carrierMessage string
	for _, quote := range quotes {
		if quote.ErrorCode != "0" {
			if carrierMessage == "" && quote.ErrorMessage != "" {
				carrierMessage = quote.ErrorMessage
			}
			continue
		}
		options = append(options, domain.ShippingOption{
			Carrier:      carrierLabel(quote.ServiceCode),
			ServiceCode:  quote.ServiceCode,
			Price:        quote.Price,
			DeliveryDays: quote.DeliveryDays,
		})
	}

	if len(options) == 0 {
		s.log(ctx, "shipping.quote.rejected", map[string]any{"cep": cep, "message": carrierMessage})
		if carrierMessage != "" {
			return nil, fmt.Errorf("%w: %s", ErrCarrierRejected, carrierMessage)
		}
		return nil, ErrCarrierRejected
	}

	s.log(ctx, "shipping.quote.ok", map[string]any{"cep": cep, "options": len(options)})
	return options, nil
}

// NormalizeCEP strips separators and validates the 8-digit postal code format.
func NormalizeCEP(cep string) (string, error) {
	var digits strings.Builder
	for _, r := range strings.TrimSpace(cep) {
		switch {
		case r >= '0' && r <= '9':
			digits.WriteRune(r)
		case r == '-' || r == '.' || r == ' ':
			// separators are tolerated
		default:
			return "", fmt.Errorf("cep contains invalid character %q", r)
		}
	}
	normalized := digits.String()
	if len(normalized) != 8 {
		return "", fmt.Errorf("cep must have 8 digits, got %d", len(normalized))
	}
	return normalized, nil
}

// aggregatePackage folds all cart lines into one parcel: weights and heights
// accumulate (items stack), footprint takes the largest item.
func aggregatePackage(items []domain.ShippingItem) (shipping.Package, error) {
	var pkg shipping.Package
	for i, item := range items {
		qty := item.Quantity
		if qty < 0 {
			return shipping.Package{}, fmt.Errorf("%w: item %d has negative quantity", ErrShippingInvalidInput, i)
		}
		if qty == 0 {
			qty = 1
		}

		weight, err := attributeOrFallback(item.WeightKg, fallbackWeightKg, i, "weight")
		if err != nil {
			return shipping.Package{}, err
		}
		length, err := attributeOrFallback(item.LengthCm, fallbackLengthCm, i, "length")
		if err != nil {
			return shipping.Package{}, err
		}
		width, err := attributeOrFallback(item.WidthCm, fallbackWidthCm, i, "width")
		if err != nil {
			return shipping.Package{}, err
		}
		height, err := attributeOrFallback(item.HeightCm, fallbackHeightCm, i, "height")
		if err != nil {
			return shipping.Package{}, err
		}

		pkg.WeightKg += weight * float64(qty)
		pkg.HeightCm += height * float64(qty)
		if length > pkg.LengthCm {
			pkg.LengthCm = length
		}
		if width > pkg.WidthCm {
			pkg.WidthCm = width
		}
	}

	if pkg.WeightKg < floorWeightKg {
		pkg.WeightKg = floorWeightKg
	}
	if pkg.LengthCm < floorLengthCm {
		pkg.LengthCm = floorLengthCm
	}
	if pkg.WidthCm < floorWidthCm {
		pkg.WidthCm = floorWidthCm
	}
	if pkg.HeightCm < floorHeightCm {
		pkg.HeightCm = floorHeightCm
	}
	return pkg, nil
}

func attributeOrFallback(value *float64, fallback float64, index int, name string) (float64, error) {
	if value == nil || *value == 0 {
		return fallback, nil
	}
	if *value < 0 {
		return 0, fmt.Errorf("%w: item %d has negative %s", ErrShippingInvalidInput, index, name)
	}
	return *value, nil
}

func carrierLabel(serviceCode string) string {
	if name, ok := serviceNames[serviceCode]; ok {
		return name
	}
	return "Correios " + serviceCode
}
