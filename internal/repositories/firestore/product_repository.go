package firestore

import (
	"context"
	"errors"
	"strings"
	"time"

	"cloud.google.com/go/firestore"

	"github.com/turboost/api/internal/domain"
	pfirestore "github.com/turboost/api/internal/platform/firestore"
	"github.com/turboost/api/internal/repositories"
)

const productCollection = "products"

// ProductRepository persists catalog products in Firestore.
type ProductRepository struct {
	base *pfirestore.BaseRepository[productDocument]
}

// NewProductRepository constructs a Firestore-backed product repository.
func NewProductRepository(provider *pfirestore.Provider) (*ProductRepository, error) {
	if provider == nil {
		return nil, errors.New("product repository requires firestore provider")
	}
	return &ProductRepository{
		base: pfirestore.NewBaseRepository[productDocument](provider, productCollection, nil, nil),
	}, nil
}

// List returns catalog products ordered by creation time descending. Inactive
// products are filtered out unless includeInactive is set (admin views).
func (r *ProductRepository) List(ctx context.Context, includeInactive bool) ([]domain.Product, error) {
	docs, err := r.base.Query(ctx, func(q firestore.Query) firestore.Query {
		if !includeInactive {
			q = q.Where("active", "==", true)
		}
		return q.OrderBy("createdAt", firestore.Desc)
	})
	if err != nil {
		return nil, err
	}

	products := make([]domain.Product, 0, len(docs))
	for _, doc := range docs {
		products = append(products, doc.Data.toDomain(doc.ID))
	}
	return products, nil
}

// FindByID loads a single product.
func (r *ProductRepository) FindByID(ctx context.Context, productID string) (domain.Product, error) {
	doc, err := r.base.Get(ctx, strings.TrimSpace(productID))
	if err != nil {
		return domain.Product{}, err
	}
	return doc.Data.toDomain(doc.ID), nil
}

// Insert stores a new product under a fresh document ID.
func (r *ProductRepository) Insert(ctx context.Context, product domain.Product) (domain.Product, error) {
	now := time.Now().UTC()
	doc := productDocumentFrom(product)
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	doc.UpdatedAt = now

	result, err := r.base.Create(ctx, doc)
	if err != nil {
		return domain.Product{}, err
	}
	return doc.toDomain(result.ID), nil
}

// Update overwrites an existing product. The product must already exist.
func (r *ProductRepository) Update(ctx context.Context, product domain.Product) (domain.Product, error) {
	id := strings.TrimSpace(product.ID)
	if id == "" {
		return domain.Product{}, errors.New("product repository: id is required")
	}

	existing, err := r.base.Get(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}

	doc := productDocumentFrom(product)
	doc.CreatedAt = existing.Data.CreatedAt
	doc.UpdatedAt = time.Now().UTC()

	if _, err := r.base.Set(ctx, id, doc); err != nil {
		return domain.Product{}, err
	}
	return doc.toDomain(id), nil
}

// Delete removes the product document.
func (r *ProductRepository) Delete(ctx context.Context, productID string) error {
	id := strings.TrimSpace(productID)
	if id == "" {
		return errors.New("product repository: id is required")
	}
	return r.base.Delete(ctx, id)
}

type productDocument struct {
	Name        string    `firestore:"name"`
	Description string    `firestore:"description,omitempty"`
	Price       float64   `firestore:"price"`
	ImageURL    string    `firestore:"imageUrl,omitempty"`
	WeightKg    float64   `firestore:"weightKg,omitempty"`
	LengthCm    float64   `firestore:"lengthCm,omitempty"`
	WidthCm     float64   `firestore:"widthCm,omitempty"`
	HeightCm    float64   `firestore:"heightCm,omitempty"`
	Active      bool      `firestore:"active"`
	CreatedAt   time.Time `firestore:"createdAt"`
	UpdatedAt   time.Time `firestore:"updatedAt"`
}

func productDocumentFrom(p domain.Product) productDocument {
	return productDocument{
		Name:        strings.TrimSpace(p.Name),
		Description: strings.TrimSpace(p.Description),
		Price:       p.Price,
		ImageURL:    strings.TrimSpace(p.ImageURL),
		WeightKg:    p.WeightKg,
		LengthCm:    p.LengthCm,
		WidthCm:     p.WidthCm,
		HeightCm:    p.HeightCm,
		Active:      p.Active,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func (d productDocument) toDomain(id string) domain.Product {
	return domain.Product{
		ID:          id,
		Name:        d.Name,
		Description: d.Description,
		Price:       d.Price,
		ImageURL:    d.ImageURL,
		WeightKg:    d.WeightKg,
		LengthCm:    d.LengthCm,
		WidthCm:     d.WidthCm,
		HeightCm:    d.HeightCm,
		Active:      d.Active,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

// Ensure interface compliance.
var _ repositories.ProductRepository = (*ProductRepository)(nil)
