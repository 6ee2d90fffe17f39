// Package incidents provides the incident store: incidents and their
// append-only update logs, mutated through a single writer path that
// feeds the broadcast dispatcher.
package incidents

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

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

// Handler handles HTTP requests for the incidents module.
type Handler struct {
	service   *Service
	pages     PageResolver
	validator *validator.Validate
}

// NewHandler creates a new incidents handler.
func NewHandler(service *Service, pages PageResolver) *Handler {
	return &Handler{
		service:   service,
		pages:     pages,
		validator: validator.New(),
	}
}

// RegisterRoutes registers operator routes for the incidents module.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/pages/{slug}/incidents", func(r chi.Router) {
		r.Get("/", h.ListIncidents)
		r.Post("/", h.CreateIncident)
	})

	r.Route("/incidents/{id}", func(r chi.Router) {
		r.Get("/", h.GetIncident)
		r.Get("/updates", h.ListUpdates)
		r.Post("/updates", h.AppendUpdate)
	})
}

// CreateIncidentRequest represents the request body for creating an incident.
type CreateIncidentRequest struct {
	Title        string   `json:"title" validate:"required,min=1,max=255"`
	Description  string   `json:"description"`
	Severity     string   `json:"severity" validate:"required,oneof=minor major critical"`
	Status       string   `json:"status" validate:"omitempty,oneof=investigating identified monitoring resolved"`
	ComponentIDs []string `json:"component_ids" validate:"omitempty,dive,uuid"`
}

// AppendUpdateRequest represents the request body for appending an
// incident update.
type AppendUpdateRequest struct {
	Status  string `json:"status" validate:"required,oneof=investigating identified monitoring resolved"`
	Message string `json:"message" validate:"required"`
}

// CreateIncident handles POST /pages/{slug}/incidents.
func (h *Handler) CreateIncident(w http.ResponseWriter, r *http.Request) {
	pageID, ok := h.resolvePage(w, r)
	if !ok {
		return
	}

	var req CreateIncidentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	incident, err := h.service.CreateIncident(r.Context(), CreateIncidentInput{
		PageID:       pageID,
		Title:        req.Title,
		Description:  req.Description,
		Severity:     domain.IncidentSeverity(req.Severity),
		Status:       domain.IncidentStatus(req.Status),
		ComponentIDs: req.ComponentIDs,
	})
	if err != nil {
		h.handleError(r.Context(), w, err)
		return
	}

	httputil.Success(w, http.StatusCreated, incident)
}

// ListIncidents handles GET /pages/{slug}/incidents. Supports
// ?status=, ?limit= and ?offset= query parameters.
func (h *Handler) ListIncidents(w http.ResponseWriter, r *http.Request) {
	pageID, ok := h.resolvePage(w, r)
	if !ok {
		return
	}

	var filter Filter
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := domain.IncidentStatus(raw)
		if !status.IsValid() {
			httputil.Error(w, http.StatusBadRequest, "invalid status filter")
			return
		}
		filter.Status = &status
	}
	filter.Limit = queryInt(r, "limit")
	filter.Offset = queryInt(r, "offset")

	list, err := h.service.ListIncidents(r.Context(), pageID, filter)
	if err != nil {
		h.handleError(r.Context(), w, err)
		return
	}

	httputil.Success(w, http.StatusOK, list)
}

// GetIncident handles GET /incidents/{id}. The response includes the
// incident's full update log.
func (h *Handler) GetIncident(w http.ResponseWriter, r *http.Request) {
	incident, err := h.service.GetIncident(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.handleError(r.Context(), w, err)
		return
	}

	httputil.Success(w, http.StatusOK, incident)
}

// AppendUpdate handles POST /incidents/{id}/updates.
func (h *Handler) AppendUpdate(w http.ResponseWriter, r *http.Request) {
	var req AppendUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	incident, err := h.service.AppendUpdate(r.Context(), AppendUpdateInput{
		IncidentID: chi.URLParam(r, "id"),
		Status:     domain.IncidentStatus(req.Status),
		Message:    req.Message,
	})
	if err != nil {
		h.handleError(r.Context(), w, err)
		return
	}

	httputil.Success(w, http.StatusCreated, incident)
}

// ListUpdates handles GET /incidents/{id}/updates.
func (h *Handler) ListUpdates(w http.ResponseWriter, r *http.Request) {
	updates, err := h.service.ListUpdates(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.handleError(r.Context(), w, err)
		return
	}

	httputil.Success(w, http.StatusOK, updates)
}

func queryInt(r *http.Request, name string) int {
	v, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil || v < 0 {
		return 0
	}
	return v
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
		{Error: ErrIncidentNotFound, Status: http.StatusNotFound},
		{Error: ErrInvalidStatus, Status: http.StatusBadRequest},
		{Error: ErrInvalidSeverity, Status: http.StatusBadRequest},
		{Error: ErrMessageRequired, Status: http.StatusBadRequest},
		{Error: statuspage.ErrPageNotFound, Status: http.StatusNotFound},
	})
}
