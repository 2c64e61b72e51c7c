package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/turboost/api/internal/domain"
	"github.com/turboost/api/internal/platform/storage"
	"github.com/turboost/api/internal/repositories"
)

// ImageStore persists uploaded binaries and returns their public URLs.
// storage.Uploader satisfies it.
type ImageStore interface {
	Upload(ctx context.Context, object, contentType string, body io.Reader) (string, error)
	Delete(ctx context.Context, object string) error
}

// CatalogDeps carries the collaborators of the catalog service.
type CatalogDeps struct {
	Products repositories.ProductRepository
	// Images is optional; without it product mutations reject image uploads.
	Images ImageStore
	Clock  Clock
	Logger Logger
}

type catalogService struct {
	products repositories.ProductRepository
	images   ImageStore
	now      Clock
	log      Logger
}

// NewCatalogService constructs the product catalog service.
func NewCatalogService(deps CatalogDeps) (CatalogService, error) {
	if deps.Products == nil {
		return nil, errors.New("catalog service: product repository is required")
	}
	now := deps.Clock
	if now == nil {
		now = time.Now
	}
	log := deps.Logger
	if log == nil {
		log = func(context.Context, string, map[string]any) {}
	}
	return &catalogService{
		products: deps.Products,
		images:   deps.Images,
		now:      now,
		log:      log,
	}, nil
}

func (s *catalogService) ListProducts(ctx context.Context, includeInactive bool) ([]domain.Product, error) {
	return s.products.List(ctx, includeInactive)
}

func (s *catalogService) GetProduct(ctx context.Context, productID string) (domain.Product, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return domain.Product{}, fmt.Errorf("%w: missing product id", ErrProductNotFound)
	}
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return domain.Product{}, fmt.Errorf("%w: %s", ErrProductNotFound, productID)
		}
		return domain.Product{}, err
	}
	return product, nil
}

// CreateProduct inserts the product and, when an image is attached, uploads it
// under the freshly assigned id and stamps the resulting URL on the document.
func (s *catalogService) CreateProduct(ctx context.Context, product domain.Product, image *ProductImage) (domain.Product, error) {
	if err := validateProduct(&product); err != nil {
		return domain.Product{}, err
	}
	if err := validateImage(image); err != nil {
		return domain.Product{}, err
	}
	if image != nil && s.images == nil {
		return domain.Product{}, fmt.Errorf("%w: image uploads are not configured", ErrInvalidInput)
	}

	created, err := s.products.Insert(ctx, product)
	if err != nil {
		return domain.Product{}, err
	}

	if image == nil {
		s.log(ctx, "catalog.product.created", map[string]any{"product_id": created.ID})
		return created, nil
	}

	url, err := s.uploadImage(ctx, created.ID, image)
	if err != nil {
		return domain.Product{}, err
	}
	created.ImageURL = url
	updated, err := s.products.Update(ctx, created)
	if err != nil {
		return domain.Product{}, fmt.Errorf("attach image to product %s: %w", created.ID, err)
	}
	s.log(ctx, "catalog.product.created", map[string]any{"product_id": updated.ID, "image": true})
	return updated, nil
}

func (s *catalogService) UpdateProduct(ctx context.Context, product domain.Product, image *ProductImage) (domain.Product, error) {
	product.ID = strings.TrimSpace(product.ID)
	if product.ID == "" {
		return domain.Product{}, fmt.Errorf("%w: missing product id", ErrProductNotFound)
	}
	if err := validateProduct(&product); err != nil {
		return domain.Product{}, err
	}
	if err := validateImage(image); err != nil {
		return domain.Product{}, err
	}
	if image != nil && s.images == nil {
		return domain.Product{}, fmt.Errorf("%w: image uploads are not configured", ErrInvalidInput)
	}

	existing, err := s.products.FindByID(ctx, product.ID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return domain.Product{}, fmt.Errorf("%w: %s", ErrProductNotFound, product.ID)
		}
		return domain.Product{}, err
	}

	if image != nil {
		url, err := s.uploadImage(ctx, product.ID, image)
		if err != nil {
			return domain.Product{}, err
		}
		product.ImageURL = url
	} else if product.ImageURL == "" {
		product.ImageURL = existing.ImageURL
	}

	updated, err := s.products.Update(ctx, product)
	if err != nil {
		if repositories.IsNotFound(err) {
			return domain.Product{}, fmt.Errorf("%w: %s", ErrProductNotFound, product.ID)
		}
		return domain.Product{}, err
	}
	s.log(ctx, "catalog.product.updated", map[string]any{"product_id": updated.ID})
	return updated, nil
}

func (s *catalogService) DeleteProduct(ctx context.Context, productID string) error {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return fmt.Errorf("%w: missing product id", ErrProductNotFound)
	}
	existing, err := s.products.FindByID(ctx, productID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return fmt.Errorf("%w: %s", ErrProductNotFound, productID)
		}
		return err
	}
	if err := s.products.Delete(ctx, productID); err != nil {
		return err
	}
	s.deleteImage(ctx, productID, existing.ImageURL)
	s.log(ctx, "catalog.product.deleted", map[string]any{"product_id": productID})
	return nil
}

// deleteImage removes the product's stored image object. The product document
// is already gone, so failures only leave an orphaned object and are logged
// rather than surfaced.
func (s *catalogService) deleteImage(ctx context.Context, productID, imageURL string) {
	if s.images == nil || strings.TrimSpace(imageURL) == "" {
		return
	}
	object := storage.ObjectFromURL(imageURL)
	if object == "" {
		return
	}
	if err := s.images.Delete(ctx, object); err != nil {
		s.log(ctx, "catalog.product.image_delete_failed", map[string]any{
			"product_id": productID,
			"object":     object,
			"error":      err.Error(),
		})
	}
}

func (s *catalogService) uploadImage(ctx context.Context, productID string, image *ProductImage) (string, error) {
	object, err := storage.ProductImagePath(productID, image.FileName)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	url, err := s.images.Upload(ctx, object, image.ContentType, bytes.NewReader(image.Data))
	if err != nil {
		return "", fmt.Errorf("upload product image %s: %w", object, err)
	}
	return url, nil
}

func validateProduct(product *domain.Product) error {
	product.Name = strings.TrimSpace(product.Name)
	product.Description = strings.TrimSpace(product.Description)
	if product.Name == "" {
		return fmt.Errorf("%w: product name is required", ErrInvalidInput)
	}
	if product.Price < 0 {
		return fmt.Errorf("%w: product price must not be negative", ErrInvalidInput)
	}
	if product.WeightKg < 0 || product.LengthCm < 0 || product.WidthCm < 0 || product.HeightCm < 0 {
		return fmt.Errorf("%w: product dimensions must not be negative", ErrInvalidInput)
	}
	return nil
}

func validateImage(image *ProductImage) error {
	if image == nil {
		return nil
	}
	if strings.TrimSpace(image.FileName) == "" {
		return fmt.Errorf("%w: image file name is required", ErrInvalidInput)
	}
	if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(image.ContentType)), "image/") {
		return fmt.Errorf("%w: image content type must be image/*", ErrInvalidInput)
	}
	if len(image.Data) == 0 {
		return fmt.Errorf("%w: image payload is empty", ErrInvalidInput)
	}
	return nil
}
