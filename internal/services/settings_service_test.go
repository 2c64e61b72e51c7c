package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/turboost/api/internal/domain"
)

type stubSettingsRepository struct {
	getSettingsFunc  func(ctx context.Context) (domain.SiteSettings, error)
	saveSettingsFunc func(ctx context.Context, settings domain.SiteSettings) error
	getPageFunc      func(ctx context.Context, slug string) (domain.Page, error)
	savePageFunc     func(ctx context.Context, page domain.Page) error
}

func (s *stubSettingsRepository) GetSettings(ctx context.Context) (domain.SiteSettings, error) {
	if s.getSettingsFunc == nil {
		return domain.SiteSettings{}, errors.New("unexpected GetSettings")
	}
	return s.getSettingsFunc(ctx)
}

func (s *stubSettingsRepository) SaveSettings(ctx context.Context, settings domain.SiteSettings) error {
	if s.saveSettingsFunc == nil {
		return errors.New("unexpected SaveSettings")
	}
	return s.saveSettingsFunc(ctx, settings)
}

func (s *stubSettingsRepository) GetPage(ctx context.Context, slug string) (domain.Page, error) {
	if s.getPageFunc == nil {
		return domain.Page{}, errors.New("unexpected GetPage")
	}
	return s.getPageFunc(ctx, slug)
}

func (s *stubSettingsRepository) SavePage(ctx context.Context, page domain.Page) error {
	if s.savePageFunc == nil {
		return errors.New("unexpected SavePage")
	}
	return s.savePageFunc(ctx, page)
}

func TestGetSettingsMissingDocument(t *testing.T) {
	repo := &stubSettingsRepository{
		getSettingsFunc: func(context.Context) (domain.SiteSettings, error) {
			return domain.SiteSettings{}, notFoundRepoError{}
		},
	}
	svc, err := NewSettingsService(SettingsDeps{Settings: repo})
	if err != nil {
		t.Fatalf("NewSettingsService: %v", err)
	}

	settings, err := svc.GetSettings(context.Background())
	if err != nil {
		t.Fatalf("GetSettings: %v", err)
	}
	if settings.StoreName != "" {
		t.Errorf("settings = %+v, want zero value", settings)
	}
}

func TestUpdateSettingsValidation(t *testing.T) {
	svc, err := NewSettingsService(SettingsDeps{Settings: &stubSettingsRepository{}})
	if err != nil {
		t.Fatalf("NewSettingsService: %v", err)
	}

	if _, err := svc.UpdateSettings(context.Background(), domain.SiteSettings{StoreName: "  "}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("missing store name error = %v, want ErrInvalidInput", err)
	}
	if _, err := svc.UpdateSettings(context.Background(), domain.SiteSettings{StoreName: "Turboost", ContactEmail: "not-an-email"}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("bad email error = %v, want ErrInvalidInput", err)
	}
}

func TestUpdateSettingsPersistsAndReloads(t *testing.T) {
	var saved domain.SiteSettings
	repo := &stubSettingsRepository{
		saveSettingsFunc: func(_ context.Context, settings domain.SiteSettings) error {
			saved = settings
			return nil
		},
		getSettingsFunc: func(context.Context) (domain.SiteSettings, error) {
			return saved, nil
		},
	}
	svc, err := NewSettingsService(SettingsDeps{Settings: repo})
	if err != nil {
		t.Fatalf("NewSettingsService: %v", err)
	}

	result, err := svc.UpdateSettings(context.Background(), domain.SiteSettings{
		StoreName:    "  Turboost  ",
		ContactEmail: "contato@turboost.com.br",
	})
	if err != nil {
		t.Fatalf("UpdateSettings: %v", err)
	}
	if result.StoreName != "Turboost" {
		t.Errorf("store name = %q, want trimmed", result.StoreName)
	}
}

func TestUpdatePageSanitizesHTML(t *testing.T) {
	var saved domain.Page
	repo := &stubSettingsRepository{
		savePageFunc: func(_ context.Context, page domain.Page) error {
			saved = page
			return nil
		},
		getPageFunc: func(context.Context, string) (domain.Page, error) {
			return saved, nil
		},
	}
	svc, err := NewSettingsService(SettingsDeps{Settings: repo})
	if err != nil {
		t.Fatalf("NewSettingsService: %v", err)
	}

	page := domain.Page{
		Slug:  "Privacy",
		Title: "Privacy Policy",
		HTML:  `<p>Hello</p><script>alert("xss")</script><a href="javascript:evil()">x</a>`,
	}
	result, err := svc.UpdatePage(context.Background(), page)
	if err != nil {
		t.Fatalf("UpdatePage: %v", err)
	}

	if result.Slug != "privacy" {
		t.Errorf("slug = %q, want lowercased", result.Slug)
	}
	if strings.Contains(saved.HTML, "<script") || strings.Contains(saved.HTML, "javascript:") {
		t.Errorf("HTML not sanitized: %q", saved.HTML)
	}
	if !strings.Contains(saved.HTML, "<p>Hello</p>") {
		t.Errorf("benign markup stripped: %q", saved.HTML)
	}
}

func TestUpdatePageValidation(t *testing.T) {
	svc, err := NewSettingsService(SettingsDeps{Settings: &stubSettingsRepository{}})
	if err != nil {
		t.Fatalf("NewSettingsService: %v", err)
	}

	if _, err := svc.UpdatePage(context.Background(), domain.Page{Slug: "", Title: "x"}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("empty slug error = %v, want ErrInvalidInput", err)
	}
	if _, err := svc.UpdatePage(context.Background(), domain.Page{Slug: "pri vacy", Title: "x"}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("invalid slug error = %v, want ErrInvalidInput", err)
	}
	if _, err := svc.UpdatePage(context.Background(), domain.Page{Slug: "privacy", Title: " "}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("missing title error = %v, want ErrInvalidInput", err)
	}
}

func TestGetPageNotFound(t *testing.T) {
	repo := &stubSettingsRepository{
		getPageFunc: func(context.Context, string) (domain.Page, error) {
			return domain.Page{}, notFoundRepoError{}
		},
	}
	svc, err := NewSettingsService(SettingsDeps{Settings: repo})
	if err != nil {
		t.Fatalf("NewSettingsService: %v", err)
	}

	if _, err := svc.GetPage(context.Background(), "privacy"); !errors.Is(err, ErrPageNotFound) {
		t.Errorf("error = %v, want ErrPageNotFound", err)
	}
}
