package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/turboost/api/internal/domain"
	"github.com/turboost/api/internal/services"
)

type stubShippingService struct {
	quoteFunc func(ctx context.Context, destinationCEP string, items []domain.ShippingItem) ([]domain.ShippingOption, error)
}

func (s *stubShippingService) Quote(ctx context.Context, destinationCEP string, items []domain.ShippingItem) ([]domain.ShippingOption, error) {
	return s.quoteFunc(ctx, destinationCEP, items)
}

func newShippingRouter(service services.ShippingService) chi.Router {
	router := chi.NewRouter()
	NewShippingHandlers(service).Routes(router)
	return router
}

func TestShippingQuoteSuccess(t *testing.T) {
	var gotCEP string
	var gotItems []domain.ShippingItem
	router := newShippingRouter(&stubShippingService{
		quoteFunc: func(_ context.Context, cep string, items []domain.ShippingItem) ([]domain.ShippingOption, error) {
			gotCEP = cep
			gotItems = items
			return []domain.ShippingOption{
				{Carrier: "SEDEX", ServiceCode: "04014", Price: "23.50", DeliveryDays: 5},
			}, nil
		},
	})

	payload := `{"cep":"20040-020","items":[{"quantity":2,"weight":"0,5","length":30,"width":20,"height":10}]}`
	req := httptest.NewRequest(http.MethodPost, "/shipping/quote", bytes.NewBufferString(payload))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if gotCEP != "20040-020" {
		t.Fatalf("cep = %q", gotCEP)
	}
	if len(gotItems) != 1 || gotItems[0].Quantity != 2 {
		t.Fatalf("items = %+v", gotItems)
	}
	if gotItems[0].WeightKg == nil || *gotItems[0].WeightKg != 0.5 {
		t.Fatalf("weight = %v, want comma decimal parsed", gotItems[0].WeightKg)
	}

	var resp struct {
		Options []domain.ShippingOption `json:"options"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Options) != 1 || resp.Options[0].Carrier != "SEDEX" {
		t.Fatalf("options = %+v", resp.Options)
	}
	// Prices travel as decimal strings so the cent digits survive.
	if !bytes.Contains(rr.Body.Bytes(), []byte(`"price":"23.50"`)) {
		t.Fatalf("body = %s, want string price with two decimals", rr.Body.String())
	}
}

func TestShippingQuoteNonNumericField(t *testing.T) {
	router := newShippingRouter(&stubShippingService{
		quoteFunc: func(context.Context, string, []domain.ShippingItem) ([]domain.ShippingOption, error) {
			t.Fatal("service should not be called for malformed input")
			return nil, nil
		},
	})

	payload := `{"cep":"20040020","items":[{"quantity":1,"weight":"heavy"}]}`
	req := httptest.NewRequest(http.MethodPost, "/shipping/quote", bytes.NewBufferString(payload))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}
}

func TestShippingQuoteErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"invalid input", services.ErrShippingInvalidInput, http.StatusBadRequest},
		{"carrier rejected", services.ErrCarrierRejected, http.StatusBadGateway},
		{"carrier unavailable", services.ErrCarrierUnavailable, http.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router := newShippingRouter(&stubShippingService{
				quoteFunc: func(context.Context, string, []domain.ShippingItem) ([]domain.ShippingOption, error) {
					return nil, tc.err
				},
			})

			req := httptest.NewRequest(http.MethodPost, "/shipping/quote", bytes.NewBufferString(`{"cep":"20040020","items":[{"quantity":1}]}`))
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)

			if rr.Code != tc.status {
				t.Fatalf("expected status %d, got %d", tc.status, rr.Code)
			}
		})
	}
}

func TestShippingQuoteEmptyBody(t *testing.T) {
	router := newShippingRouter(&stubShippingService{
		quoteFunc: func(context.Context, string, []domain.ShippingItem) ([]domain.ShippingOption, error) {
			t.Fatal("service should not be called without a body")
			return nil, nil
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/shipping/quote", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}
}
