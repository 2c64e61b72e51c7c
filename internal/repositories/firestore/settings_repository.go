package firestore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/turboost/api/internal/domain"
	pfirestore "github.com/turboost/api/internal/platform/firestore"
	"github.com/turboost/api/internal/repositories"
)

const (
	settingsCollection = "settings"
	settingsDocumentID = "site"
	pageCollection     = "pages"
)

// SettingsRepository persists the site settings singleton and static pages.
type SettingsRepository struct {
	settings *pfirestore.BaseRepository[settingsDocument]
	pages    *pfirestore.BaseRepository[pageDocument]
}

// NewSettingsRepository constructs a Firestore-backed settings repository.
func NewSettingsRepository(provider *pfirestore.Provider) (*SettingsRepository, error) {
	if provider == nil {
		return nil, errors.New("settings repository requires firestore provider")
	}
	return &SettingsRepository{
		settings: pfirestore.NewBaseRepository[settingsDocument](provider, settingsCollection, nil, nil),
		pages:    pfirestore.NewBaseRepository[pageDocument](provider, pageCollection, nil, nil),
	}, nil
}

// GetSettings loads the settings document.
func (r *SettingsRepository) GetSettings(ctx context.Context) (domain.SiteSettings, error) {
	doc, err := r.settings.Get(ctx, settingsDocumentID)
	if err != nil {
		return domain.SiteSettings{}, err
	}
	return doc.Data.toDomain(), nil
}

// SaveSettings upserts the settings document.
func (r *SettingsRepository) SaveSettings(ctx context.Context, settings domain.SiteSettings) error {
	doc := settingsDocumentFrom(settings)
	doc.UpdatedAt = time.Now().UTC()
	_, err := r.settings.Set(ctx, settingsDocumentID, doc)
	return err
}

// GetPage loads a static page by slug.
func (r *SettingsRepository) GetPage(ctx context.Context, slug string) (domain.Page, error) {
	doc, err := r.pages.Get(ctx, strings.TrimSpace(slug))
	if err != nil {
		return domain.Page{}, err
	}
	return doc.Data.toDomain(doc.ID), nil
}

// SavePage upserts a static page keyed by its slug.
func (r *SettingsRepository) SavePage(ctx context.Context, page domain.Page) error {
	slug := strings.TrimSpace(page.Slug)
	if slug == "" {
		return errors.New("settings repository: page slug is required")
	}
	doc := pageDocument{
		Title:     strings.TrimSpace(page.Title),
		HTML:      page.HTML,
		UpdatedAt: time.Now().UTC(),
	}
	_, err := r.pages.Set(ctx, slug, doc)
	return err
}

type settingsDocument struct {
	StoreName    string            `firestore:"storeName,omitempty"`
	ContactEmail string            `firestore:"contactEmail,omitempty"`
	Phone        string            `firestore:"phone,omitempty"`
	Address      string            `firestore:"address,omitempty"`
	SocialLinks  map[string]string `firestore:"socialLinks,omitempty"`
	UpdatedAt    time.Time         `firestore:"updatedAt"`
}

func settingsDocumentFrom(s domain.SiteSettings) settingsDocument {
	return settingsDocument{
		StoreName:    strings.TrimSpace(s.StoreName),
		ContactEmail: strings.TrimSpace(s.ContactEmail),
		Phone:        strings.TrimSpace(s.Phone),
		Address:      strings.TrimSpace(s.Address),
		SocialLinks:  s.SocialLinks,
		UpdatedAt:    s.UpdatedAt,
	}
}

func (d settingsDocument) toDomain() domain.SiteSettings {
	return domain.SiteSettings{
		StoreName:    d.StoreName,
		ContactEmail: d.ContactEmail,
		Phone:        d.Phone,
		Address:      d.Address,
		SocialLinks:  d.SocialLinks,
		UpdatedAt:    d.UpdatedAt,
	}
}

type pageDocument struct {
	Title     string    `firestore:"title,omitempty"`
	HTML      string    `firestore:"html"`
	UpdatedAt time.Time `firestore:"updatedAt"`
}

func (d pageDocument) toDomain(slug string) domain.Page {
	return domain.Page{
		Slug:      slug,
		Title:     d.Title,
		HTML:      d.HTML,
		UpdatedAt: d.UpdatedAt,
	}
}

// Ensure interface compliance.
var _ repositories.SettingsRepository = (*SettingsRepository)(nil)
