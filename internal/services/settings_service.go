package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/turboost/api/internal/domain"
	"github.com/turboost/api/internal/repositories"
)

// ErrPageNotFound is returned when a static page slug has no document.
var ErrPageNotFound = errors.New("page not found")

// SettingsDeps carries the collaborators of the settings service.
type SettingsDeps struct {
	Settings repositories.SettingsRepository
	Logger   Logger
}

type settingsService struct {
	settings repositories.SettingsRepository
	sanitize *bluemonday.Policy
	log      Logger
}

// NewSettingsService constructs the site settings and static pages service.
// Page HTML is sanitized with a user-generated-content policy before it is
// persisted, so stored markup is always safe to render.
func NewSettingsService(deps SettingsDeps) (SettingsService, error) {
	if deps.Settings == nil {
		return nil, errors.New("settings service: settings repository is required")
	}
	log := deps.Logger
	if log == nil {
		log = func(context.Context, string, map[string]any) {}
	}
	return &settingsService{
		settings: deps.Settings,
		sanitize: bluemonday.UGCPolicy(),
		log:      log,
	}, nil
}

// GetSettings returns the settings document; a missing document yields the
// zero value so a fresh deployment still serves the endpoint.
func (s *settingsService) GetSettings(ctx context.Context) (domain.SiteSettings, error) {
	settings, err := s.settings.GetSettings(ctx)
	if err != nil {
		if repositories.IsNotFound(err) {
			return domain.SiteSettings{}, nil
		}
		return domain.SiteSettings{}, err
	}
	return settings, nil
}

func (s *settingsService) UpdateSettings(ctx context.Context, settings domain.SiteSettings) (domain.SiteSettings, error) {
	settings.StoreName = strings.TrimSpace(settings.StoreName)
	settings.ContactEmail = strings.TrimSpace(settings.ContactEmail)
	settings.Phone = strings.TrimSpace(settings.Phone)
	settings.Address = strings.TrimSpace(settings.Address)

	if settings.StoreName == "" {
		return domain.SiteSettings{}, fmt.Errorf("%w: store name is required", ErrInvalidInput)
	}
	if settings.ContactEmail != "" {
		if _, err := mail.ParseAddress(settings.ContactEmail); err != nil {
			return domain.SiteSettings{}, fmt.Errorf("%w: invalid contact email", ErrInvalidInput)
		}
	}

	if err := s.settings.SaveSettings(ctx, settings); err != nil {
		return domain.SiteSettings{}, err
	}
	s.log(ctx, "settings.updated", map[string]any{"store": settings.StoreName})
	return s.settings.GetSettings(ctx)
}

func (s *settingsService) GetPage(ctx context.Context, slug string) (domain.Page, error) {
	slug, err := normalizeSlug(slug)
	if err != nil {
		return domain.Page{}, err
	}
	page, err := s.settings.GetPage(ctx, slug)
	if err != nil {
		if repositories.IsNotFound(err) {
			return domain.Page{}, fmt.Errorf("%w: %s", ErrPageNotFound, slug)
		}
		return domain.Page{}, err
	}
	return page, nil
}

func (s *settingsService) UpdatePage(ctx context.Context, page domain.Page) (domain.Page, error) {
	slug, err := normalizeSlug(page.Slug)
	if err != nil {
		return domain.Page{}, err
	}
	page.Slug = slug
	page.Title = strings.TrimSpace(page.Title)
	if page.Title == "" {
		return domain.Page{}, fmt.Errorf("%w: page title is required", ErrInvalidInput)
	}
	page.HTML = s.sanitize.Sanitize(page.HTML)

	if err := s.settings.SavePage(ctx, page); err != nil {
		return domain.Page{}, err
	}
	s.log(ctx, "settings.page.updated", map[string]any{"slug": slug})
	return s.settings.GetPage(ctx, slug)
}

// normalizeSlug lowercases and validates a page slug.
func normalizeSlug(slug string) (string, error) {
	slug = strings.ToLower(strings.TrimSpace(slug))
	if slug == "" {
		return "", fmt.Errorf("%w: page slug is required", ErrInvalidInput)
	}
	for _, r := range slug {
		valid := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-'
		if !valid {
			return "", fmt.Errorf("%w: page slug contains invalid character %q", ErrInvalidInput, r)
		}
	}
	return slug, nil
}
