package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/genailabs-inc/usecase-portal/pkg/apperrors"
	"github.com/genailabs-inc/usecase-portal/pkg/auth"
	"github.com/genailabs-inc/usecase-portal/pkg/services"
)

// AddToolRequest for POST /api/tools
type AddToolRequest struct {
	Name string `json:"name"`
}

// ToolHandler handles tool vocabulary HTTP requests.
type ToolHandler struct {
	toolService services.ToolService
	logger      *zap.Logger
}

// NewToolHandler creates a new tool handler.
func NewToolHandler(toolService services.ToolService, logger *zap.Logger) *ToolHandler {
	return &ToolHandler{
		toolService: toolService,
		logger:      logger,
	}
}

// RegisterRoutes registers the tool handler's routes on the given mux.
func (h *ToolHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("GET /api/tools", h.List)
	mux.HandleFunc("POST /api/tools", authMiddleware.RequireAuth(h.Add))
}

// List handles GET /api/tools
func (h *ToolHandler) List(w http.ResponseWriter, r *http.Request) {
	vocab, err := h.toolService.Vocabulary(r.Context())
	if err != nil {
		h.logger.Error("Failed to load tool vocabulary", zap.Error(err))
		if err := WriteError(w, err); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, vocab); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Add handles POST /api/tools
func (h *ToolHandler) Add(w http.ResponseWriter, r *http.Request) {
	viewer, err := auth.RequireViewer(r.Context())
	if err != nil {
		writeViewerError(w, h.logger)
		return
	}

	var req AddToolRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	tool, err := h.toolService.Add(r.Context(), viewer, req.Name)
	if err != nil {
		if !errors.Is(err, apperrors.ErrValidation) && !errors.Is(err, apperrors.ErrConflict) {
			h.logger.Error("Failed to add custom tool", zap.String("name", req.Name), zap.Error(err))
		}
		if err := WriteError(w, err); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusCreated, tool); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
