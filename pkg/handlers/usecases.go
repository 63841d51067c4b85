package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/genailabs-inc/usecase-portal/pkg/apperrors"
	"github.com/genailabs-inc/usecase-portal/pkg/auth"
	"github.com/genailabs-inc/usecase-portal/pkg/filter"
	"github.com/genailabs-inc/usecase-portal/pkg/models"
	"github.com/genailabs-inc/usecase-portal/pkg/services"
)

// SetStatusRequest for PUT /api/usecases/{id}/status
type SetStatusRequest struct {
	Status string `json:"status"`
}

// UsecaseHandler handles submission and moderation HTTP requests.
type UsecaseHandler struct {
	usecaseService services.UsecaseService
	logger         *zap.Logger
}

// NewUsecaseHandler creates a new usecase handler.
func NewUsecaseHandler(usecaseService services.UsecaseService, logger *zap.Logger) *UsecaseHandler {
	return &UsecaseHandler{
		usecaseService: usecaseService,
		logger:         logger,
	}
}

// RegisterRoutes registers the usecase handler's routes on the given mux.
//
// The route bodies stay wire-compatible with existing clients: list and
// single fetch return bare records, delete returns 204 with no body.
func (h *UsecaseHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	moderator := auth.RequireRole(models.RoleSuperuser, models.RoleModerator)

	mux.HandleFunc("GET /api/usecases", authMiddleware.Resolve(h.List))
	mux.HandleFunc("POST /api/usecases", authMiddleware.RequireAuth(h.Create))
	mux.HandleFunc("GET /api/usecases/browse", h.Browse)
	mux.HandleFunc("GET /api/usecases/mine", authMiddleware.RequireAuth(h.Mine))
	mux.HandleFunc("GET /api/usecases/{id}", authMiddleware.Resolve(h.Get))
	mux.HandleFunc("PUT /api/usecases/{id}", authMiddleware.RequireAuth(h.Update))
	mux.HandleFunc("PUT /api/usecases/{id}/status",
		authMiddleware.RequireAuth(moderator(h.SetStatus)))
	mux.HandleFunc("DELETE /api/usecases/{id}",
		authMiddleware.RequireAuth(moderator(h.Delete)))
}

// List handles GET /api/usecases
//
// A failing store degrades to an empty listing rather than an error page;
// the frontend depends on always receiving an array here.
func (h *UsecaseHandler) List(w http.ResponseWriter, r *http.Request) {
	records, err := h.usecaseService.ListAll(r.Context())
	if err != nil {
		if errors.Is(err, apperrors.ErrStorage) {
			h.logger.Error("Listing degraded to empty, store unreadable", zap.Error(err))
			records = []models.UseCase{}
		} else {
			h.logger.Error("Failed to list usecases", zap.Error(err))
			if err := WriteError(w, err); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return
		}
	}
	if records == nil {
		records = []models.UseCase{}
	}

	if err := WriteJSON(w, http.StatusOK, records); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Get handles GET /api/usecases/{id}
func (h *UsecaseHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseRecordID(w, r, h.logger)
	if !ok {
		return
	}
	viewer, _ := auth.GetViewer(r.Context())

	record, err := h.usecaseService.Get(r.Context(), viewer, id)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			h.logger.Error("Failed to fetch usecase", zap.Int64("id", id), zap.Error(err))
		}
		if err := WriteError(w, err); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, record); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Create handles POST /api/usecases
func (h *UsecaseHandler) Create(w http.ResponseWriter, r *http.Request) {
	viewer, err := auth.RequireViewer(r.Context())
	if err != nil {
		writeViewerError(w, h.logger)
		return
	}

	var input services.UsecaseInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	record, err := h.usecaseService.Submit(r.Context(), viewer, input)
	if err != nil {
		if !errors.Is(err, apperrors.ErrValidation) {
			h.logger.Error("Failed to create usecase", zap.Error(err))
		}
		if err := WriteError(w, err); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusCreated, record); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Update handles PUT /api/usecases/{id}
func (h *UsecaseHandler) Update(w http.ResponseWriter, r *http.Request) {
	viewer, err := auth.RequireViewer(r.Context())
	if err != nil {
		writeViewerError(w, h.logger)
		return
	}
	id, ok := parseRecordID(w, r, h.logger)
	if !ok {
		return
	}

	var input services.UsecaseInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	record, err := h.usecaseService.Update(r.Context(), viewer, id, input)
	if err != nil {
		if !errors.Is(err, apperrors.ErrValidation) &&
			!errors.Is(err, apperrors.ErrNotFound) &&
			!errors.Is(err, apperrors.ErrUnauthorized) {
			h.logger.Error("Failed to update usecase", zap.Int64("id", id), zap.Error(err))
		}
		if err := WriteError(w, err); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, record); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// SetStatus handles PUT /api/usecases/{id}/status
func (h *UsecaseHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	viewer, err := auth.RequireViewer(r.Context())
	if err != nil {
		writeViewerError(w, h.logger)
		return
	}
	id, ok := parseRecordID(w, r, h.logger)
	if !ok {
		return
	}

	var req SetStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	record, err := h.usecaseService.SetStatus(r.Context(), viewer, id, req.Status)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) &&
			!errors.Is(err, apperrors.ErrInvalidTransition) {
			h.logger.Error("Failed to set usecase status",
				zap.Int64("id", id),
				zap.String("status", req.Status),
				zap.Error(err))
		}
		if err := WriteError(w, err); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, record); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Delete handles DELETE /api/usecases/{id}
func (h *UsecaseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	viewer, err := auth.RequireViewer(r.Context())
	if err != nil {
		writeViewerError(w, h.logger)
		return
	}
	id, ok := parseRecordID(w, r, h.logger)
	if !ok {
		return
	}

	if err := h.usecaseService.Delete(r.Context(), viewer, id); err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			h.logger.Error("Failed to delete usecase", zap.Int64("id", id), zap.Error(err))
		}
		if err := WriteError(w, err); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Mine handles GET /api/usecases/mine
func (h *UsecaseHandler) Mine(w http.ResponseWriter, r *http.Request) {
	viewer, err := auth.RequireViewer(r.Context())
	if err != nil {
		writeViewerError(w, h.logger)
		return
	}

	records, err := h.usecaseService.ListForUser(r.Context(), viewer)
	if err != nil {
		h.logger.Error("Failed to list own usecases",
			zap.Int64("user_id", viewer.ID),
			zap.Error(err))
		if err := WriteError(w, err); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}
	if records == nil {
		records = []models.UseCase{}
	}

	if err := WriteJSON(w, http.StatusOK, records); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Browse handles GET /api/usecases/browse
//
// Query parameters: q (search text), sort (newest|oldest|a-z|z-a), page, and
// one comma-separated list per facet category (service_line, sdlc_phase,
// tools_used).
func (h *UsecaseHandler) Browse(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	page := 1
	if raw := query.Get("page"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			if err := ErrorResponse(w, http.StatusBadRequest, "invalid_page", "Page must be a number"); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return
		}
		page = parsed
	}

	params := filter.Params{
		Query:  query.Get("q"),
		Sort:   filter.SortKey(query.Get("sort")),
		Facets: make(map[string][]string, len(filter.FacetCategories)),
	}
	for _, category := range filter.FacetCategories {
		if raw := query.Get(category); raw != "" {
			params.Facets[category] = splitFacetValues(raw)
		}
	}

	result, err := h.usecaseService.Browse(r.Context(), params, page)
	if err != nil {
		h.logger.Error("Failed to browse usecases", zap.Error(err))
		if err := WriteError(w, err); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, result); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

func splitFacetValues(raw string) []string {
	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			values = append(values, trimmed)
		}
	}
	return values
}

// parseRecordID reads the {id} path segment. Malformed ids are reported as
// not found so probing the id space reveals nothing.
func parseRecordID(w http.ResponseWriter, r *http.Request, logger *zap.Logger) (int64, bool) {
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		if err := ErrorResponse(w, http.StatusNotFound, "not_found", "usecase not found"); err != nil {
			logger.Error("Failed to write error response", zap.Error(err))
		}
		return 0, false
	}
	return id, true
}

func writeViewerError(w http.ResponseWriter, logger *zap.Logger) {
	if err := ErrorResponse(w, http.StatusUnauthorized, "unauthorized", "Authentication required"); err != nil {
		logger.Error("Failed to write error response", zap.Error(err))
	}
}
