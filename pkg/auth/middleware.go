package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/sessions"
	"go.uber.org/zap"

	"github.com/genailabs-inc/usecase-portal/pkg/models"
)

// UserSource resolves token subjects to user records.
type UserSource interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

// Middleware resolves the current viewer from a bearer token or the browser
// session cookie and injects it into the request context.
type Middleware struct {
	users  UserSource
	store  sessions.Store
	secret string
	logger *zap.Logger
}

// NewMiddleware creates the auth middleware.
func NewMiddleware(users UserSource, store sessions.Store, secret string, logger *zap.Logger) *Middleware {
	return &Middleware{
		users:  users,
		store:  store,
		secret: secret,
		logger: logger,
	}
}

// Resolve attaches the viewer to the context when the request carries valid
// credentials, and passes the request through anonymously otherwise. Use for
// endpoints whose results merely narrow by viewer.
func (m *Middleware) Resolve(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if user := m.resolveViewer(r); user != nil {
			r = r.WithContext(WithViewer(r.Context(), user))
		}
		next(w, r)
	}
}

// RequireAuth rejects requests without a resolvable viewer.
func (m *Middleware) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := m.resolveViewer(r)
		if user == nil {
			writeAuthError(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
			return
		}
		next(w, r.WithContext(WithViewer(r.Context(), user)))
	}
}

func (m *Middleware) resolveViewer(r *http.Request) *models.User {
	token := bearerToken(r)
	if token == "" {
		token = SessionToken(m.store, r)
	}
	if token == "" {
		return nil
	}

	claims, err := ParseToken(token, m.secret)
	if err != nil {
		m.logger.Debug("Rejected login token", zap.Error(err))
		return nil
	}

	id, err := claims.UserID()
	if err != nil {
		m.logger.Debug("Malformed token subject", zap.Error(err))
		return nil
	}

	user, err := m.users.GetByID(r.Context(), id)
	if err != nil {
		m.logger.Debug("Token subject no longer resolves to a user",
			zap.Int64("user_id", id),
			zap.Error(err))
		return nil
	}
	return user
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// RequireRole guards a handler behind one of the given roles. It expects a
// viewer already resolved by RequireAuth.
func RequireRole(roles ...string) func(http.HandlerFunc) http.HandlerFunc {
	allowed := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}

	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			viewer, ok := GetViewer(r.Context())
			if !ok {
				writeAuthError(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
				return
			}
			if _, ok := allowed[viewer.Role]; !ok {
				writeAuthError(w, http.StatusForbidden, "forbidden", "Insufficient permissions")
				return
			}
			next(w, r)
		}
	}
}

func writeAuthError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":   code,
		"message": message,
	})
}
