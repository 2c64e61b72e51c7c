package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/turboost/api/internal/domain"
	"github.com/turboost/api/internal/platform/httpx"
	"github.com/turboost/api/internal/services"
)

const (
	maxProductBodySize  = 64 * 1024
	maxProductImageSize = 5 << 20
)

// ProductHandlers exposes the public catalog and its admin mutations.
type ProductHandlers struct {
	catalog services.CatalogService
}

// NewProductHandlers constructs catalog handlers.
func NewProductHandlers(catalog services.CatalogService) *ProductHandlers {
	return &ProductHandlers{catalog: catalog}
}

// PublicRoutes registers the unauthenticated catalog endpoints.
func (h *ProductHandlers) PublicRoutes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/products", h.listProducts)
	r.Get("/products/{productID}", h.getProduct)
}

// AdminRoutes registers the catalog mutations; the router mounts them behind
// the admin-role middleware.
func (h *ProductHandlers) AdminRoutes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/products", h.listAllProducts)
	r.Post("/products", h.createProduct)
	r.Put("/products/{productID}", h.updateProduct)
	r.Delete("/products/{productID}", h.deleteProduct)
}

func (h *ProductHandlers) listProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	products, err := h.catalog.ListProducts(ctx, false)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"products": products})
}

func (h *ProductHandlers) listAllProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	products, err := h.catalog.ListProducts(ctx, true)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"products": products})
}

func (h *ProductHandlers) getProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	product, err := h.catalog.GetProduct(ctx, chi.URLParam(r, "productID"))
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, product)
}

func (h *ProductHandlers) createProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	product, image, err := decodeProductRequest(r)
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		return
	}

	created, err := h.catalog.CreateProduct(ctx, product, image)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusCreated, created)
}

func (h *ProductHandlers) updateProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	product, image, err := decodeProductRequest(r)
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		return
	}
	product.ID = chi.URLParam(r, "productID")

	updated, err := h.catalog.UpdateProduct(ctx, product, image)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, updated)
}

func (h *ProductHandlers) deleteProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.catalog.DeleteProduct(ctx, chi.URLParam(r, "productID")); err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"status": "deleted"})
}

// decodeProductRequest reads a product mutation from either a JSON body or a
// multipart form carrying an optional image file under the "image" field.
func decodeProductRequest(r *http.Request) (domain.Product, *services.ProductImage, error) {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		mediaType = ""
	}
	if strings.HasPrefix(mediaType, "multipart/") {
		return decodeProductForm(r)
	}

	body, err := readLimitedBody(r, maxProductBodySize)
	if err != nil {
		return domain.Product{}, nil, err
	}
	var req productRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return domain.Product{}, nil, errors.New("request body must be valid JSON")
	}
	return req.toDomain(), nil, nil
}

type productRequest struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       flexFloat `json:"price"`
	WeightKg    flexFloat `json:"weight_kg"`
	LengthCm    flexFloat `json:"length_cm"`
	WidthCm     flexFloat `json:"width_cm"`
	HeightCm    flexFloat `json:"height_cm"`
	Active      *bool     `json:"active"`
	ImageURL    string    `json:"image_url"`
}

func (req productRequest) toDomain() domain.Product {
	active := true
	if req.Active != nil {
		active = *req.Active
	}
	return domain.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       float64(req.Price),
		WeightKg:    float64(req.WeightKg),
		LengthCm:    float64(req.LengthCm),
		WidthCm:     float64(req.WidthCm),
		HeightCm:    float64(req.HeightCm),
		Active:      active,
		ImageURL:    strings.TrimSpace(req.ImageURL),
	}
}

func decodeProductForm(r *http.Request) (domain.Product, *services.ProductImage, error) {
	if err := r.ParseMultipartForm(maxProductImageSize); err != nil {
		return domain.Product{}, nil, errors.New("invalid multipart form")
	}

	product := domain.Product{
		Name:        strings.TrimSpace(r.FormValue("name")),
		Description: strings.TrimSpace(r.FormValue("description")),
		Active:      true,
	}
	if raw := strings.TrimSpace(r.FormValue("active")); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			return domain.Product{}, nil, errors.New("active must be a boolean")
		}
		product.Active = active
	}

	fields := []struct {
		name   string
		target *float64
	}{
		{"price", &product.Price},
		{"weight_kg", &product.WeightKg},
		{"length_cm", &product.LengthCm},
		{"width_cm", &product.WidthCm},
		{"height_cm", &product.HeightCm},
	}
	for _, field := range fields {
		raw := strings.TrimSpace(r.FormValue(field.name))
		if raw == "" {
			continue
		}
		value, err := parseFlexibleNumber(raw)
		if err != nil {
			return domain.Product{}, nil, errors.New(field.name + " must be numeric")
		}
		*field.target = value
	}

	image, err := readImageFile(r)
	if err != nil {
		return domain.Product{}, nil, err
	}
	return product, image, nil
}

func readImageFile(r *http.Request) (*services.ProductImage, error) {
	file, header, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.New("invalid image upload")
	}
	defer func() {
		_ = file.Close()
	}()

	data, err := io.ReadAll(io.LimitReader(file, maxProductImageSize+1))
	if err != nil {
		return nil, errors.New("unable to read image upload")
	}
	if len(data) > maxProductImageSize {
		return nil, errors.New("image upload exceeds size limit")
	}
	return &services.ProductImage{
		FileName:    header.Filename,
		ContentType: imageContentType(header, data),
		Data:        data,
	}, nil
}

func imageContentType(header *multipart.FileHeader, data []byte) string {
	if ct := strings.TrimSpace(header.Header.Get("Content-Type")); ct != "" && ct != "application/octet-stream" {
		return ct
	}
	return http.DetectContentType(data)
}
