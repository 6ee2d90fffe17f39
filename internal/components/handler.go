// Package components provides the component registry: per-component
// status held on behalf of a status page, mutated through a single
// status-change path that feeds the broadcast dispatcher.
package components

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/statusloops/statusloops/internal/domain"
	"github.com/statusloops/statusloops/internal/pkg/httputil"
	"github.com/statusloops/statusloops/internal/statuspage"
)

// PageResolver resolves a status page slug to its id.
type PageResolver interface {
	PageIDBySlug(ctx context.Context, slug string) (string, error)
}

// Handler handles HTTP requests for the components module.
type Handler struct {
	service   *Service
	pages     PageResolver
	validator *validator.Validate
}

// NewHandler creates a new components handler.
func NewHandler(service *Service, pages PageResolver) *Handler {
	return &Handler{
		service:   service,
		pages:     pages,
		validator: validator.New(),
	}
}

// RegisterRoutes registers operator routes for the components module.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/pages/{slug}/components", func(r chi.Router) {
		r.Get("/", h.ListComponents)
		r.Post("/", h.CreateComponent)
	})

	r.Route("/components/{id}", func(r chi.Router) {
		r.Get("/", h.GetComponent)
		r.Patch("/", h.UpdateComponent)
		r.Patch("/status", h.UpdateComponentStatus)
		r.Delete("/", h.DeleteComponent)
	})
}

// CreateComponentRequest represents the request body for creating a component.
type CreateComponentRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=255"`
	Slug        string `json:"slug" validate:"omitempty,min=1,max=255"`
	Description string `json:"description"`
	GroupLabel  string `json:"group_label"`
	Status      string `json:"status" validate:"omitempty,oneof=operational degraded partial_outage major_outage"`
	Order       int    `json:"order"`
}

// UpdateComponentRequest represents the request body for updating a component.
type UpdateComponentRequest struct {
	Name        string   `json:"name" validate:"required,min=1,max=255"`
	Description string   `json:"description"`
	GroupLabel  string   `json:"group_label"`
	Uptime      *float64 `json:"uptime" validate:"omitempty,gte=0,lte=100"`
	Order       int      `json:"order"`
}

// UpdateComponentStatusRequest represents the request body for a status change.
type UpdateComponentStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=operational degraded partial_outage major_outage"`
}

// CreateComponent handles POST /pages/{slug}/components.
func (h *Handler) CreateComponent(w http.ResponseWriter, r *http.Request) {
	pageID, ok := h.resolvePage(w, r)
	if !ok {
		return
	}

	var req CreateComponentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	component, err := h.service.CreateComponent(r.Context(), CreateComponentInput{
		PageID:      pageID,
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		GroupLabel:  req.GroupLabel,
		Status:      domain.ComponentStatus(req.Status),
		Order:       req.Order,
	})
	if err != nil {
		h.handleError(r.Context(), w, err)
		return
	}

	httputil.Success(w, http.StatusCreated, component)
}

// ListComponents handles GET /pages/{slug}/components.
func (h *Handler) ListComponents(w http.ResponseWriter, r *http.Request) {
	pageID, ok := h.resolvePage(w, r)
	if !ok {
		return
	}

	list, err := h.service.ListByPage(r.Context(), pageID)
	if err != nil {
		h.handleError(r.Context(), w, err)
		return
	}

	httputil.Success(w, http.StatusOK, list)
}

// GetComponent handles GET /components/{id}.
func (h *Handler) GetComponent(w http.ResponseWriter, r *http.Request) {
	component, err := h.service.GetComponent(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.handleError(r.Context(), w, err)
		return
	}

	httputil.Success(w, http.StatusOK, component)
}

// UpdateComponent handles PATCH /components/{id}.
func (h *Handler) UpdateComponent(w http.ResponseWriter, r *http.Request) {
	var req UpdateComponentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	component, err := h.service.UpdateComponent(r.Context(), chi.URLParam(r, "id"), UpdateComponentInput{
		Name:        req.Name,
		Description: req.Description,
		GroupLabel:  req.GroupLabel,
		Uptime:      req.Uptime,
		Order:       req.Order,
	})
	if err != nil {
		h.handleError(r.Context(), w, err)
		return
	}

	httputil.Success(w, http.StatusOK, component)
}

// UpdateComponentStatus handles PATCH /components/{id}/status.
func (h *Handler) UpdateComponentStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateComponentStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	component, err := h.service.UpdateComponentStatus(r.Context(), chi.URLParam(r, "id"), domain.ComponentStatus(req.Status))
	if err != nil {
		h.handleError(r.Context(), w, err)
		return
	}

	httputil.Success(w, http.StatusOK, component)
}

// DeleteComponent handles DELETE /components/{id}.
func (h *Handler) DeleteComponent(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteComponent(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.handleError(r.Context(), w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) resolvePage(w http.ResponseWriter, r *http.Request) (string, bool) {
	pageID, err := h.pages.PageIDBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		h.handleError(r.Context(), w, err)
		return "", false
	}
	return pageID, true
}

func (h *Handler) handleError(ctx context.Context, w http.ResponseWriter, err error) {
	httputil.HandleError(ctx, w, err, []httputil.ErrorMapping{
		{Error: ErrComponentNotFound, Status: http.StatusNotFound},
		{Error: ErrInvalidStatus, Status: http.StatusBadRequest},
		{Error: ErrSlugTaken, Status: http.StatusConflict},
		{Error: statuspage.ErrPageNotFound, Status: http.StatusNotFound},
	})
}
