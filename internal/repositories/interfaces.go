// Package repositories defines the persistence contracts consumed by the
// service layer.
package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/turboost/api/internal/domain"
)

// RepositoryError wraps low-level persistence failures with categorisation used by services.
type RepositoryError interface {
	error
	IsNotFound() bool
	IsConflict() bool
	IsUnavailable() bool
}

// IsNotFound reports whether err categorises as a missing record.
func IsNotFound(err error) bool {
	var repoErr RepositoryError
	return errors.As(err, &repoErr) && repoErr.IsNotFound()
}

// IsUnavailable reports whether err categorises as a transient backend outage.
func IsUnavailable(err error) bool {
	var repoErr RepositoryError
	return errors.As(err, &repoErr) && repoErr.IsUnavailable()
}

// ProductRepository persists the catalog.
type ProductRepository interface {
	List(ctx context.Context, includeInactive bool) ([]domain.Product, error)
	FindByID(ctx context.Context, productID string) (domain.Product, error)
	Insert(ctx context.Context, product domain.Product) (domain.Product, error)
	Update(ctx context.Context, product domain.Product) (domain.Product, error)
	Delete(ctx context.Context, productID string) error
}

// OrderUpdate carries the fields mutated when a webhook reconciles an order.
type OrderUpdate struct {
	Status        string
	PaymentID     string
	PaymentDetail map[string]any
	UpdatedAt     time.Time
}

// OrderRepository persists checkout orders.
type OrderRepository interface {
	Insert(ctx context.Context, order domain.Order) error
	FindByID(ctx context.Context, orderID string) (domain.Order, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
	ListAll(ctx context.Context) ([]domain.Order, error)
	ApplyPaymentUpdate(ctx context.Context, orderID string, update OrderUpdate) error
}

// SettingsRepository persists the single site settings document and pages.
type SettingsRepository interface {
	GetSettings(ctx context.Context) (domain.SiteSettings, error)
	SaveSettings(ctx context.Context, settings domain.SiteSettings) error
	GetPage(ctx context.Context, slug string) (domain.Page, error)
	SavePage(ctx context.Context, page domain.Page) error
}

// HealthRepository reports backend reachability for readiness checks.
type HealthRepository interface {
	Ping(ctx context.Context) error
}
