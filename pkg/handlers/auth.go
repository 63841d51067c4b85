package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/sessions"
	"go.uber.org/zap"

	"github.com/genailabs-inc/usecase-portal/pkg/apperrors"
	"github.com/genailabs-inc/usecase-portal/pkg/auth"
	"github.com/genailabs-inc/usecase-portal/pkg/models"
	"github.com/genailabs-inc/usecase-portal/pkg/services"
)

// LoginRequest for POST /api/auth/login
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse for POST /api/auth/login
type LoginResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// AuthHandler handles login, logout, and viewer introspection.
type AuthHandler struct {
	authService services.AuthService
	store       sessions.Store
	logger      *zap.Logger
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authService services.AuthService, store sessions.Store, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		store:       store,
		logger:      logger,
	}
}

// RegisterRoutes registers the auth handler's routes on the given mux.
func (h *AuthHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("POST /api/auth/login", h.Login)
	mux.HandleFunc("POST /api/auth/logout", h.Logout)
	mux.HandleFunc("GET /api/auth/me", authMiddleware.RequireAuth(h.Me))
}

// Login handles POST /api/auth/login
//
// On success the token is returned in the body for API clients and also
// stored in the cookie session so the browser SPA stays logged in.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	user, token, err := h.authService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, apperrors.ErrUnauthorized) {
			if err := ErrorResponse(w, http.StatusUnauthorized, "unauthorized", "Invalid username or password"); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return
		}
		h.logger.Error("Login failed", zap.Error(err))
		if err := WriteError(w, err); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := auth.SaveSession(h.store, w, r, token); err != nil {
		h.logger.Error("Failed to save session", zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "session_error", "Failed to establish session"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	h.logger.Info("User logged in",
		zap.Int64("user_id", user.ID),
		zap.String("role", user.Role))

	if err := WriteJSON(w, http.StatusOK, LoginResponse{Token: token, User: user.Public()}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Logout handles POST /api/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := auth.ClearSession(h.store, w, r); err != nil {
		h.logger.Error("Failed to clear session", zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "session_error", "Failed to clear session"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Me handles GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	viewer, err := auth.RequireViewer(r.Context())
	if err != nil {
		writeViewerError(w, h.logger)
		return
	}

	if err := WriteJSON(w, http.StatusOK, viewer.Public()); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
