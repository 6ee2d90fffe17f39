package statuspage

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/statusloops/statusloops/internal/pkg/httputil"
)

// Handler handles HTTP requests for the status page module.
type Handler struct {
	service   *Service
	validator *validator.Validate
}

// NewHandler creates a new status page handler.
func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(),
	}
}

// RegisterRoutes registers operator routes for page management.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/pages", func(r chi.Router) {
		r.Get("/", h.ListPages)
		r.Post("/", h.CreatePage)
		r.Get("/{slug}", h.GetPage)
		r.Delete("/{slug}", h.DeletePage)
	})
}

// RegisterPublicRoutes registers the public read endpoint.
func (h *Handler) RegisterPublicRoutes(r chi.Router) {
	r.Get("/pages/{slug}/status", h.GetOverview)
}

// CreatePageRequest represents the request body for creating a page.
type CreatePageRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=255"`
	Slug        string `json:"slug" validate:"omitempty,min=1,max=255"`
	Description string `json:"description"`
}

// CreatePage handles POST /pages.
func (h *Handler) CreatePage(w http.ResponseWriter, r *http.Request) {
	var req CreatePageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	page, err := h.service.CreatePage(r.Context(), CreatePageInput{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
	})
	if err != nil {
		h.handleError(r.Context(), w, err)
		return
	}

	httputil.Success(w, http.StatusCreated, page)
}

// ListPages handles GET /pages.
func (h *Handler) ListPages(w http.ResponseWriter, r *http.Request) {
	pages, err := h.service.ListPages(r.Context())
	if err != nil {
		h.handleError(r.Context(), w, err)
		return
	}

	httputil.Success(w, http.StatusOK, pages)
}

// GetPage handles GET /pages/{slug}.
func (h *Handler) GetPage(w http.ResponseWriter, r *http.Request) {
	page, err := h.service.GetPage(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		h.handleError(r.Context(), w, err)
		return
	}

	httputil.Success(w, http.StatusOK, page)
}

// DeletePage handles DELETE /pages/{slug}.
func (h *Handler) DeletePage(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeletePage(r.Context(), chi.URLParam(r, "slug")); err != nil {
		h.handleError(r.Context(), w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetOverview handles GET /pages/{slug}/status.
func (h *Handler) GetOverview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.service.Overview(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		h.handleError(r.Context(), w, err)
		return
	}

	httputil.Success(w, http.StatusOK, overview)
}

func (h *Handler) handleError(ctx context.Context, w http.ResponseWriter, err error) {
	httputil.HandleError(ctx, w, err, []httputil.ErrorMapping{
		{Error: ErrPageNotFound, Status: http.StatusNotFound},
		{Error: ErrSlugTaken, Status: http.StatusConflict},
	})
}
