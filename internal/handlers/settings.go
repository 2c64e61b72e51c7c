package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/turboost/api/internal/domain"
	"github.com/turboost/api/internal/platform/httpx"
	"github.com/turboost/api/internal/services"
)

const maxSettingsBodySize = 256 * 1024

// SettingsHandlers exposes the site settings document and static pages.
type SettingsHandlers struct {
	settings services.SettingsService
}

// NewSettingsHandlers constructs settings handlers.
func NewSettingsHandlers(settings services.SettingsService) *SettingsHandlers {
	return &SettingsHandlers{settings: settings}
}

// PublicRoutes registers the read-only endpoints.
func (h *SettingsHandlers) PublicRoutes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/settings", h.getSettings)
	r.Get("/pages/{slug}", h.getPage)
}

// AdminRoutes registers the write endpoints.
func (h *SettingsHandlers) AdminRoutes(r chi.Router) {
	if r == nil {
		return
	}
	r.Put("/settings", h.updateSettings)
	r.Put("/pages/{slug}", h.updatePage)
}

func (h *SettingsHandlers) getSettings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	settings, err := h.settings.GetSettings(ctx)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, settings)
}

func (h *SettingsHandlers) updateSettings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	body, err := readLimitedBody(r, maxSettingsBodySize)
	if err != nil {
		writeBodyError(ctx, w, err)
		return
	}
	var settings domain.SiteSettings
	if err := json.Unmarshal(body, &settings); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "request body must be valid JSON", http.StatusBadRequest))
		return
	}

	updated, err := h.settings.UpdateSettings(ctx, settings)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, updated)
}

func (h *SettingsHandlers) getPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	page, err := h.settings.GetPage(ctx, chi.URLParam(r, "slug"))
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, page)
}

type pageRequest struct {
	Title string `json:"title"`
	HTML  string `json:"html"`
}

func (h *SettingsHandlers) updatePage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	body, err := readLimitedBody(r, maxSettingsBodySize)
	if err != nil {
		writeBodyError(ctx, w, err)
		return
	}
	var req pageRequest
	if err := json.Unmarshal(body, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "request body must be valid JSON", http.StatusBadRequest))
		return
	}

	page := domain.Page{
		Slug:  chi.URLParam(r, "slug"),
		Title: strings.TrimSpace(req.Title),
		HTML:  req.HTML,
	}
	updated, err := h.settings.UpdatePage(ctx, page)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, updated)
}
