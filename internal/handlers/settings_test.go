package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/turboost/api/internal/domain"
	"github.com/turboost/api/internal/services"
)

type stubSettingsService struct {
	getSettingsFunc    func(ctx context.Context) (domain.SiteSettings, error)
	updateSettingsFunc func(ctx context.Context, settings domain.SiteSettings) (domain.SiteSettings, error)
	getPageFunc        func(ctx context.Context, slug string) (domain.Page, error)
	updatePageFunc     func(ctx context.Context, page domain.Page) (domain.Page, error)
}

func (s *stubSettingsService) GetSettings(ctx context.Context) (domain.SiteSettings, error) {
	if s.getSettingsFunc == nil {
		return domain.SiteSettings{}, errors.New("unexpected GetSettings")
	}
	return s.getSettingsFunc(ctx)
}

func (s *stubSettingsService) UpdateSettings(ctx context.Context, settings domain.SiteSettings) (domain.SiteSettings, error) {
	if s.updateSettingsFunc == nil {
		return domain.SiteSettings{}, errors.New("unexpected UpdateSettings")
	}
	return s.updateSettingsFunc(ctx, settings)
}

func (s *stubSettingsService) GetPage(ctx context.Context, slug string) (domain.Page, error) {
	if s.getPageFunc == nil {
		return domain.Page{}, errors.New("unexpected GetPage")
	}
	return s.getPageFunc(ctx, slug)
}

func (s *stubSettingsService) UpdatePage(ctx context.Context, page domain.Page) (domain.Page, error) {
	if s.updatePageFunc == nil {
		return domain.Page{}, errors.New("unexpected UpdatePage")
	}
	return s.updatePageFunc(ctx, page)
}

func TestGetSettings(t *testing.T) {
	router := chi.NewRouter()
	NewSettingsHandlers(&stubSettingsService{
		getSettingsFunc: func(context.Context) (domain.SiteSettings, error) {
			return domain.SiteSettings{StoreName: "Turboost"}, nil
		},
	}).PublicRoutes(router)

	req := httptest.NewRequest(http.MethodGet, "/settings", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	var resp domain.SiteSettings
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.StoreName != "Turboost" {
		t.Fatalf("settings = %+v", resp)
	}
}

func TestUpdateSettingsForwardsBody(t *testing.T) {
	router := chi.NewRouter()
	NewSettingsHandlers(&stubSettingsService{
		updateSettingsFunc: func(_ context.Context, settings domain.SiteSettings) (domain.SiteSettings, error) {
			if settings.StoreName != "Turboost" || settings.ContactEmail != "contato@turboost.com.br" {
				t.Fatalf("settings = %+v", settings)
			}
			return settings, nil
		},
	}).AdminRoutes(router)

	payload := `{"store_name":"Turboost","contact_email":"contato@turboost.com.br"}`
	req := httptest.NewRequest(http.MethodPut, "/settings", bytes.NewBufferString(payload))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestGetPageNotFoundMapsTo404(t *testing.T) {
	router := chi.NewRouter()
	NewSettingsHandlers(&stubSettingsService{
		getPageFunc: func(context.Context, string) (domain.Page, error) {
			return domain.Page{}, services.ErrPageNotFound
		},
	}).PublicRoutes(router)

	req := httptest.NewRequest(http.MethodGet, "/pages/missing", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rr.Code)
	}
}

func TestUpdatePageTakesSlugFromPath(t *testing.T) {
	router := chi.NewRouter()
	NewSettingsHandlers(&stubSettingsService{
		updatePageFunc: func(_ context.Context, page domain.Page) (domain.Page, error) {
			if page.Slug != "privacy" {
				t.Fatalf("slug = %q, want path value", page.Slug)
			}
			if page.Title != "Privacy" {
				t.Fatalf("title = %q", page.Title)
			}
			return page, nil
		},
	}).AdminRoutes(router)

	payload := `{"title":"Privacy","html":"<p>ok</p>"}`
	req := httptest.NewRequest(http.MethodPut, "/pages/privacy", bytes.NewBufferString(payload))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
}
