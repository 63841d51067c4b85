package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/genailabs-inc/usecase-portal/pkg/apperrors"
	"github.com/genailabs-inc/usecase-portal/pkg/database"
	"github.com/genailabs-inc/usecase-portal/pkg/models"
)

// postgresCustomToolRepository stores custom tools in portal_custom_tools.
// The unique index on lower(name) enforces the case-insensitive vocabulary.
type postgresCustomToolRepository struct {
	db *database.DB
}

// NewPostgresCustomToolRepository creates a Postgres-backed tool repository.
func NewPostgresCustomToolRepository(db *database.DB) CustomToolRepository {
	return &postgresCustomToolRepository{db: db}
}

var _ CustomToolRepository = (*postgresCustomToolRepository)(nil)

func (r *postgresCustomToolRepository) List(ctx context.Context) ([]models.CustomTool, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, name, created_by, created_at FROM portal_custom_tools ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("%w: querying custom tools: %v", apperrors.ErrStorage, err)
	}
	defer rows.Close()

	tools := []models.CustomTool{}
	for rows.Next() {
		var t models.CustomTool
		if err := rows.Scan(&t.ID, &t.Name, &t.CreatedBy, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: scanning custom tool: %v", apperrors.ErrStorage, err)
		}
		tools = append(tools, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: reading custom tools: %v", apperrors.ErrStorage, err)
	}
	return tools, nil
}

func (r *postgresCustomToolRepository) Create(ctx context.Context, tool *models.CustomTool) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO portal_custom_tools (id, name, created_by, created_at) VALUES ($1, $2, $3, $4)`,
		tool.ID, tool.Name, tool.CreatedBy, tool.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return fmt.Errorf("tool %q: %w", tool.Name, apperrors.ErrConflict)
		}
		return fmt.Errorf("%w: creating custom tool: %v", apperrors.ErrStorage, err)
	}
	return nil
}
