package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/turboost/api/internal/domain"
	"github.com/turboost/api/internal/services"
)

type stubCatalogService struct {
	listFunc   func(ctx context.Context, includeInactive bool) ([]domain.Product, error)
	getFunc    func(ctx context.Context, productID string) (domain.Product, error)
	createFunc func(ctx context.Context, product domain.Product, image *services.ProductImage) (domain.Product, error)
	updateFunc func(ctx context.Context, product domain.Product, image *services.ProductImage) (domain.Product, error)
	deleteFunc func(ctx context.Context, productID string) error
}

func (s *stubCatalogService) ListProducts(ctx context.Context, includeInactive bool) ([]domain.Product, error) {
	if s.listFunc == nil {
		return nil, errors.New("unexpected ListProducts")
	}
	return s.listFunc(ctx, includeInactive)
}

func (s *stubCatalogService) GetProduct(ctx context.Context, productID string) (domain.Product, error) {
	if s.getFunc == nil {
		return domain.Product{}, errors.New("unexpected GetProduct")
	}
	return s.getFunc(ctx, productID)
}

func (s *stubCatalogService) CreateProduct(ctx context.Context, product domain.Product, image *services.ProductImage) (domain.Product, error) {
	if s.createFunc == nil {
		return domain.Product{}, errors.New("unexpected CreateProduct")
	}
	return s.createFunc(ctx, product, image)
}

func (s *stubCatalogService) UpdateProduct(ctx context.Context, product domain.Product, image *services.ProductImage) (domain.Product, error) {
	if s.updateFunc == nil {
		return domain.Product{}, errors.New("unexpected UpdateProduct")
	}
	return s.updateFunc(ctx, product, image)
}

func (s *stubCatalogService) DeleteProduct(ctx context.Context, productID string) error {
	if s.deleteFunc == nil {
		return errors.New("unexpected DeleteProduct")
	}
	return s.deleteFunc(ctx, productID)
}

func TestListProductsPublicExcludesInactive(t *testing.T) {
	router := chi.NewRouter()
	NewProductHandlers(&stubCatalogService{
		listFunc: func(_ context.Context, includeInactive bool) ([]domain.Product, error) {
			if includeInactive {
				t.Fatal("public listing must exclude inactive products")
			}
			return []domain.Product{{ID: "prod-1", Name: "Turbo Kit", Price: 1200}}, nil
		},
	}).PublicRoutes(router)

	req := httptest.NewRequest(http.MethodGet, "/products", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	var resp struct {
		Products []domain.Product `json:"products"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Products) != 1 || resp.Products[0].ID != "prod-1" {
		t.Fatalf("products = %+v", resp.Products)
	}
}

func TestGetProductNotFound(t *testing.T) {
	router := chi.NewRouter()
	NewProductHandlers(&stubCatalogService{
		getFunc: func(context.Context, string) (domain.Product, error) {
			return domain.Product{}, services.ErrProductNotFound
		},
	}).PublicRoutes(router)

	req := httptest.NewRequest(http.MethodGet, "/products/missing", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rr.Code)
	}
}

func TestCreateProductJSON(t *testing.T) {
	var got domain.Product
	router := chi.NewRouter()
	NewProductHandlers(&stubCatalogService{
		createFunc: func(_ context.Context, product domain.Product, image *services.ProductImage) (domain.Product, error) {
			got = product
			if image != nil {
				t.Fatal("no image expected for JSON body")
			}
			product.ID = "prod-new"
			return product, nil
		},
	}).AdminRoutes(router)

	payload := `{"name":"Turbo Kit","description":"Stage 1","price":"1.200,50","weight_kg":2.5,"active":true}`
	req := httptest.NewRequest(http.MethodPost, "/products", bytes.NewBufferString(payload))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rr.Code, rr.Body.String())
	}
	if got.Name != "Turbo Kit" || got.WeightKg != 2.5 {
		t.Fatalf("product = %+v", got)
	}
	if got.Price != 1200.50 {
		t.Fatalf("price = %v, want comma decimal parsed", got.Price)
	}
}

func TestCreateProductMultipartWithImage(t *testing.T) {
	var gotProduct domain.Product
	var gotImage *services.ProductImage
	router := chi.NewRouter()
	NewProductHandlers(&stubCatalogService{
		createFunc: func(_ context.Context, product domain.Product, image *services.ProductImage) (domain.Product, error) {
			gotProduct = product
			gotImage = image
			product.ID = "prod-new"
			return product, nil
		},
	}).AdminRoutes(router)

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	_ = form.WriteField("name", "Turbo Kit")
	_ = form.WriteField("price", "1200,50")
	_ = form.WriteField("weight_kg", "2.5")
	part, err := form.CreateFormFile("image", "kit.png")
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	if _, err := part.Write([]byte("\x89PNG\r\n\x1a\nimage-bytes")); err != nil {
		t.Fatalf("write image: %v", err)
	}
	_ = form.Close()

	req := httptest.NewRequest(http.MethodPost, "/products", &buf)
	req.Header.Set("Content-Type", form.FormDataContentType())
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rr.Code, rr.Body.String())
	}
	if gotProduct.Name != "Turbo Kit" || gotProduct.Price != 1200.50 || gotProduct.WeightKg != 2.5 {
		t.Fatalf("product = %+v", gotProduct)
	}
	if gotImage == nil || gotImage.FileName != "kit.png" || len(gotImage.Data) == 0 {
		t.Fatalf("image = %+v", gotImage)
	}
}

func TestCreateProductInvalidInput(t *testing.T) {
	router := chi.NewRouter()
	NewProductHandlers(&stubCatalogService{
		createFunc: func(context.Context, domain.Product, *services.ProductImage) (domain.Product, error) {
			return domain.Product{}, services.ErrInvalidInput
		},
	}).AdminRoutes(router)

	req := httptest.NewRequest(http.MethodPost, "/products", bytes.NewBufferString(`{"name":""}`))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}
}

func TestUpdateProductTakesIDFromPath(t *testing.T) {
	router := chi.NewRouter()
	NewProductHandlers(&stubCatalogService{
		updateFunc: func(_ context.Context, product domain.Product, _ *services.ProductImage) (domain.Product, error) {
			if product.ID != "prod-1" {
				t.Fatalf("product id = %q, want path value", product.ID)
			}
			return product, nil
		},
	}).AdminRoutes(router)

	req := httptest.NewRequest(http.MethodPut, "/products/prod-1", bytes.NewBufferString(`{"name":"Turbo Kit","price":1}`))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestDeleteProduct(t *testing.T) {
	deleted := ""
	router := chi.NewRouter()
	NewProductHandlers(&stubCatalogService{
		deleteFunc: func(_ context.Context, productID string) error {
			deleted = productID
			return nil
		},
	}).AdminRoutes(router)

	req := httptest.NewRequest(http.MethodDelete, "/products/prod-1", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if deleted != "prod-1" {
		t.Fatalf("deleted = %q", deleted)
	}
}
