package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/genailabs-inc/usecase-portal/pkg/apperrors"
	"github.com/genailabs-inc/usecase-portal/pkg/database"
	"github.com/genailabs-inc/usecase-portal/pkg/models"
)

const pgUniqueViolation = "23505"

// postgresUsecaseRepository stores use cases in the portal_usecases table.
// Tag sets persist as jsonb so the column layout matches the JSON file
// representation field for field.
type postgresUsecaseRepository struct {
	db *database.DB
}

// NewPostgresUsecaseRepository creates a Postgres-backed repository.
func NewPostgresUsecaseRepository(db *database.DB) UsecaseRepository {
	return &postgresUsecaseRepository{db: db}
}

var _ UsecaseRepository = (*postgresUsecaseRepository)(nil)

const usecaseColumns = `id, usecase, project, prompts_used, service_line, sdlc_phase,
	tools_used, estimated_efforts, actual_hours, comments, status, user_id,
	submitted_at, moderated_at`

func jsonbValue(s models.StringSet) []byte {
	data, err := json.Marshal(s)
	if err != nil {
		return []byte("[]")
	}
	return data
}

func scanUsecase(row pgx.Row) (*models.UseCase, error) {
	var (
		uc          models.UseCase
		serviceLine []byte
		sdlcPhase   []byte
		toolsUsed   []byte
		moderatedAt *time.Time
	)
	err := row.Scan(
		&uc.ID, &uc.Title, &uc.Project, &uc.PromptsUsed,
		&serviceLine, &sdlcPhase, &toolsUsed,
		&uc.EstimatedEfforts, &uc.ActualHours, &uc.Comments,
		&uc.Status, &uc.UserID, &uc.SubmittedAt, &moderatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(serviceLine, &uc.ServiceLine); err != nil {
		return nil, fmt.Errorf("decoding service_line: %w", err)
	}
	if err := json.Unmarshal(sdlcPhase, &uc.SDLCPhase); err != nil {
		return nil, fmt.Errorf("decoding sdlc_phase: %w", err)
	}
	if err := json.Unmarshal(toolsUsed, &uc.ToolsUsed); err != nil {
		return nil, fmt.Errorf("decoding tools_used: %w", err)
	}
	uc.ModeratedAt = moderatedAt
	return &uc, nil
}

func (r *postgresUsecaseRepository) ListAll(ctx context.Context) ([]models.UseCase, error) {
	query := `SELECT ` + usecaseColumns + ` FROM portal_usecases ORDER BY submitted_at DESC, id DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: querying usecases: %v", apperrors.ErrStorage, err)
	}
	defer rows.Close()

	records := []models.UseCase{}
	for rows.Next() {
		uc, err := scanUsecase(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning usecase: %v", apperrors.ErrStorage, err)
		}
		records = append(records, *uc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: reading usecases: %v", apperrors.ErrStorage, err)
	}
	return records, nil
}

func (r *postgresUsecaseRepository) GetByID(ctx context.Context, id int64) (*models.UseCase, error) {
	query := `SELECT ` + usecaseColumns + ` FROM portal_usecases WHERE id = $1`

	uc, err := scanUsecase(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("usecase %d: %w", id, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("%w: loading usecase %d: %v", apperrors.ErrStorage, id, err)
	}
	return uc, nil
}

func (r *postgresUsecaseRepository) Create(ctx context.Context, uc *models.UseCase) error {
	query := `
		INSERT INTO portal_usecases (` + usecaseColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	// Creation-time ids can collide under rapid submissions; bump and retry
	// on the primary key conflict.
	id := time.Now().UnixMilli()
	for {
		_, err := r.db.Exec(ctx, query,
			id, uc.Title, uc.Project, uc.PromptsUsed,
			jsonbValue(uc.ServiceLine), jsonbValue(uc.SDLCPhase), jsonbValue(uc.ToolsUsed),
			uc.EstimatedEfforts, uc.ActualHours, uc.Comments,
			uc.Status, uc.UserID, uc.SubmittedAt, uc.ModeratedAt,
		)
		if err == nil {
			uc.ID = id
			return nil
		}

		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			id++
			continue
		}
		return fmt.Errorf("%w: creating usecase: %v", apperrors.ErrStorage, err)
	}
}

func (r *postgresUsecaseRepository) Update(ctx context.Context, uc *models.UseCase) error {
	query := `
		UPDATE portal_usecases
		SET usecase = $2, project = $3, prompts_used = $4, service_line = $5,
		    sdlc_phase = $6, tools_used = $7, estimated_efforts = $8,
		    actual_hours = $9, comments = $10, status = $11, moderated_at = $12
		WHERE id = $1`

	tag, err := r.db.Exec(ctx, query,
		uc.ID, uc.Title, uc.Project, uc.PromptsUsed,
		jsonbValue(uc.ServiceLine), jsonbValue(uc.SDLCPhase), jsonbValue(uc.ToolsUsed),
		uc.EstimatedEfforts, uc.ActualHours, uc.Comments,
		uc.Status, uc.ModeratedAt,
	)
	if err != nil {
		return fmt.Errorf("%w: updating usecase %d: %v", apperrors.ErrStorage, uc.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("usecase %d: %w", uc.ID, apperrors.ErrNotFound)
	}
	return nil
}

func (r *postgresUsecaseRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM portal_usecases WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%w: deleting usecase %d: %v", apperrors.ErrStorage, id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("usecase %d: %w", id, apperrors.ErrNotFound)
	}
	return nil
}
