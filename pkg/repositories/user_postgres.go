package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/genailabs-inc/usecase-portal/pkg/apperrors"
	"github.com/genailabs-inc/usecase-portal/pkg/database"
	"github.com/genailabs-inc/usecase-portal/pkg/models"
)

// postgresUserRepository reads accounts from the portal_users table.
type postgresUserRepository struct {
	db *database.DB
}

// NewPostgresUserRepository creates a Postgres-backed user repository.
func NewPostgresUserRepository(db *database.DB) UserRepository {
	return &postgresUserRepository{db: db}
}

var _ UserRepository = (*postgresUserRepository)(nil)

const userColumns = `id, username, firstname, lastname, employee_id, email, role, password_hash`

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Username, &u.Firstname, &u.Lastname,
		&u.EmployeeID, &u.Email, &u.Role, &u.PasswordHash)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *postgresUserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM portal_users WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user %d: %w", id, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("%w: loading user %d: %v", apperrors.ErrStorage, id, err)
	}
	return u, nil
}

func (r *postgresUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM portal_users WHERE lower(username) = lower($1)`, username))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user %q: %w", username, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("%w: loading user %q: %v", apperrors.ErrStorage, username, err)
	}
	return u, nil
}

func (r *postgresUserRepository) List(ctx context.Context) ([]models.User, error) {
	rows, err := r.db.Query(ctx, `SELECT `+userColumns+` FROM portal_users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("%w: querying users: %v", apperrors.ErrStorage, err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning user: %v", apperrors.ErrStorage, err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: reading users: %v", apperrors.ErrStorage, err)
	}
	return users, nil
}
