package auth

import (
	"context"
	"fmt"

	"github.com/genailabs-inc/usecase-portal/pkg/models"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// ViewerKey is the context key for the resolved current user.
const ViewerKey contextKey = "viewer"

// WithViewer returns a context carrying the resolved user.
func WithViewer(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, ViewerKey, user)
}

// GetViewer retrieves the current user from the request context.
// Returns nil and false for anonymous requests.
func GetViewer(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(ViewerKey).(*models.User)
	return user, ok && user != nil
}

// RequireViewer retrieves the current user or fails for anonymous requests.
func RequireViewer(ctx context.Context) (*models.User, error) {
	user, ok := GetViewer(ctx)
	if !ok {
		return nil, fmt.Errorf("authentication required: no viewer in context")
	}
	return user, nil
}
