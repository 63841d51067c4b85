package repositories

import (
	"context"

	"github.com/genailabs-inc/usecase-portal/pkg/models"
)

// UsecaseRepository provides data access for use case records.
//
// Create assigns the record id: millisecond creation time, disambiguated
// under the backend's write lock so rapid successive calls still get unique
// ids. Implementations return apperrors sentinels for the failure modes the
// service layer maps to HTTP codes.
type UsecaseRepository interface {
	// ListAll returns every record. A corrupt backing store surfaces
	// apperrors.ErrStorage; callers decide whether to degrade to empty.
	ListAll(ctx context.Context) ([]models.UseCase, error)

	// GetByID returns one record or apperrors.ErrNotFound.
	GetByID(ctx context.Context, id int64) (*models.UseCase, error)

	// Create persists a new record and fills in its assigned ID.
	Create(ctx context.Context, uc *models.UseCase) error

	// Update replaces the stored record with the given one, matched by ID.
	Update(ctx context.Context, uc *models.UseCase) error

	// Delete removes the record. Deleting an unknown id is ErrNotFound.
	Delete(ctx context.Context, id int64) error
}

// UserRepository provides read access to the portal's user accounts.
type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
}

// CustomToolRepository stores user-contributed tool vocabulary entries.
type CustomToolRepository interface {
	List(ctx context.Context) ([]models.CustomTool, error)

	// Create persists a new tool. A name already present (case-insensitive)
	// is apperrors.ErrConflict.
	Create(ctx context.Context, tool *models.CustomTool) error
}
