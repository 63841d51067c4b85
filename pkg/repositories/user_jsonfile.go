package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/genailabs-inc/usecase-portal/pkg/apperrors"
	"github.com/genailabs-inc/usecase-portal/pkg/models"
)

// jsonFileUserRepository serves the seeded user accounts from a JSON file.
// Accounts are read once at startup; the portal has no self-registration.
type jsonFileUserRepository struct {
	users []models.User
}

// NewJSONFileUserRepository loads the user collection from path.
func NewJSONFileUserRepository(path string) (UserRepository, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", apperrors.ErrStorage, path, err)
	}

	var users []models.User
	if err := json.Unmarshal(data, &users); err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %v", apperrors.ErrStorage, path, err)
	}

	for i := range users {
		if !models.IsValidRole(users[i].Role) {
			return nil, fmt.Errorf("%w: user %q has unknown role %q",
				apperrors.ErrValidation, users[i].Username, users[i].Role)
		}
	}

	return &jsonFileUserRepository{users: users}, nil
}

// NewStaticUserRepository serves the given accounts directly. Used by tests
// and by deployments that inject users programmatically.
func NewStaticUserRepository(users []models.User) UserRepository {
	return &jsonFileUserRepository{users: users}
}

var _ UserRepository = (*jsonFileUserRepository)(nil)

func (r *jsonFileUserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	for i := range r.users {
		if r.users[i].ID == id {
			u := r.users[i]
			return &u, nil
		}
	}
	return nil, fmt.Errorf("user %d: %w", id, apperrors.ErrNotFound)
}

func (r *jsonFileUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	for i := range r.users {
		if strings.EqualFold(r.users[i].Username, username) {
			u := r.users[i]
			return &u, nil
		}
	}
	return nil, fmt.Errorf("user %q: %w", username, apperrors.ErrNotFound)
}

func (r *jsonFileUserRepository) List(ctx context.Context) ([]models.User, error) {
	out := make([]models.User, len(r.users))
	copy(out, r.users)
	return out, nil
}
