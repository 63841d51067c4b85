package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/genailabs-inc/usecase-portal/pkg/apperrors"
	"github.com/genailabs-inc/usecase-portal/pkg/filter"
	"github.com/genailabs-inc/usecase-portal/pkg/logging"
	"github.com/genailabs-inc/usecase-portal/pkg/models"
	"github.com/genailabs-inc/usecase-portal/pkg/repositories"
)

// UsecaseInput carries the editable fields of a submission.
type UsecaseInput struct {
	Title            string           `json:"usecase"`
	Project          string           `json:"project"`
	PromptsUsed      string           `json:"prompts_used"`
	ServiceLine      models.StringSet `json:"service_line"`
	SDLCPhase        models.StringSet `json:"sdlc_phase"`
	ToolsUsed        models.StringSet `json:"tools_used"`
	EstimatedEfforts float64          `json:"estimated_efforts"`
	ActualHours      float64          `json:"actual_hours"`
	Comments         string           `json:"comments"`
}

// BrowseResult is one page of the public browse listing together with the
// facet tallies of its base collection.
type BrowseResult struct {
	filter.Page
	Facets map[string]map[string]int `json:"facets"`
}

// UsecaseService owns the submission lifecycle: validation, moderation
// transitions, visibility, and the browse derivation.
type UsecaseService interface {
	// ListAll returns every record unfiltered, the wire-compatible dump the
	// SPA bootstraps from.
	ListAll(ctx context.Context) ([]models.UseCase, error)

	// Get returns one record if the viewer may see it; hidden records are
	// indistinguishable from missing ones.
	Get(ctx context.Context, viewer *models.User, id int64) (*models.UseCase, error)

	// Submit creates a pending record owned by the viewer.
	Submit(ctx context.Context, viewer *models.User, input UsecaseInput) (*models.UseCase, error)

	// Update replaces the editable fields. The record returns to pending
	// because its content changed; only moderators and the owner may edit.
	Update(ctx context.Context, viewer *models.User, id int64, input UsecaseInput) (*models.UseCase, error)

	// SetStatus approves or rejects a record. Moderators only.
	SetStatus(ctx context.Context, viewer *models.User, id int64, status string) (*models.UseCase, error)

	// Delete removes a record. Moderators only.
	Delete(ctx context.Context, viewer *models.User, id int64) error

	// ListForUser returns the viewer's own submissions, any status.
	ListForUser(ctx context.Context, viewer *models.User) ([]models.UseCase, error)

	// Browse derives the public listing: approved records only, filtered,
	// sorted, and paginated, with facet tallies of the approved collection.
	Browse(ctx context.Context, params filter.Params, page int) (*BrowseResult, error)
}

type usecaseService struct {
	usecases repositories.UsecaseRepository
	tools    repositories.CustomToolRepository
	logger   *zap.Logger
}

// NewUsecaseService creates a UsecaseService.
func NewUsecaseService(
	usecases repositories.UsecaseRepository,
	tools repositories.CustomToolRepository,
	logger *zap.Logger,
) UsecaseService {
	return &usecaseService{
		usecases: usecases,
		tools:    tools,
		logger:   logger,
	}
}

var _ UsecaseService = (*usecaseService)(nil)

func (s *usecaseService) ListAll(ctx context.Context) ([]models.UseCase, error) {
	return s.usecases.ListAll(ctx)
}

func (s *usecaseService) Get(ctx context.Context, viewer *models.User, id int64) (*models.UseCase, error) {
	uc, err := s.usecases.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !uc.VisibleTo(viewer) {
		return nil, fmt.Errorf("usecase %d: %w", id, apperrors.ErrNotFound)
	}
	return uc, nil
}

// knownTools is the current tool vocabulary: the base list plus every
// custom entry.
func (s *usecaseService) knownTools(ctx context.Context) ([]string, error) {
	custom, err := s.tools.List(ctx)
	if err != nil {
		return nil, err
	}
	known := make([]string, 0, len(models.BaseTools)+len(custom))
	known = append(known, models.BaseTools...)
	for _, t := range custom {
		known = append(known, t.Name)
	}
	return known, nil
}

func (s *usecaseService) Submit(ctx context.Context, viewer *models.User, input UsecaseInput) (*models.UseCase, error) {
	known, err := s.knownTools(ctx)
	if err != nil {
		return nil, err
	}

	uc := &models.UseCase{
		Title:            input.Title,
		Project:          input.Project,
		PromptsUsed:      input.PromptsUsed,
		ServiceLine:      input.ServiceLine,
		SDLCPhase:        input.SDLCPhase,
		ToolsUsed:        input.ToolsUsed,
		EstimatedEfforts: input.EstimatedEfforts,
		ActualHours:      input.ActualHours,
		Comments:         input.Comments,
		Status:           models.StatusPending,
		UserID:           viewer.ID,
		SubmittedAt:      time.Now().UTC(),
	}

	if err := uc.Validate(known); err != nil {
		return nil, err
	}
	if err := s.usecases.Create(ctx, uc); err != nil {
		return nil, err
	}

	s.logger.Info("Usecase submitted",
		zap.Int64("id", uc.ID),
		zap.Int64("user_id", viewer.ID),
		zap.String("title", logging.TruncateString(uc.Title, 80)))
	return uc, nil
}

func (s *usecaseService) Update(ctx context.Context, viewer *models.User, id int64, input UsecaseInput) (*models.UseCase, error) {
	uc, err := s.usecases.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !viewer.CanModerate() && uc.UserID != viewer.ID {
		return nil, fmt.Errorf("editing usecase %d: %w", id, apperrors.ErrUnauthorized)
	}

	known, err := s.knownTools(ctx)
	if err != nil {
		return nil, err
	}

	uc.Title = input.Title
	uc.Project = input.Project
	uc.PromptsUsed = input.PromptsUsed
	uc.ServiceLine = input.ServiceLine
	uc.SDLCPhase = input.SDLCPhase
	uc.ToolsUsed = input.ToolsUsed
	uc.EstimatedEfforts = input.EstimatedEfforts
	uc.ActualHours = input.ActualHours
	uc.Comments = input.Comments

	// Edited content has not been reviewed, so the record re-enters the
	// moderation queue.
	uc.Status = models.StatusPending
	uc.ModeratedAt = nil

	if err := uc.Validate(known); err != nil {
		return nil, err
	}
	if err := s.usecases.Update(ctx, uc); err != nil {
		return nil, err
	}

	s.logger.Info("Usecase updated",
		zap.Int64("id", uc.ID),
		zap.Int64("editor_id", viewer.ID))
	return uc, nil
}

func (s *usecaseService) SetStatus(ctx context.Context, viewer *models.User, id int64, status string) (*models.UseCase, error) {
	if !viewer.CanModerate() {
		return nil, fmt.Errorf("moderating usecase %d: %w", id, apperrors.ErrUnauthorized)
	}
	if !models.IsTerminalStatus(status) {
		return nil, fmt.Errorf("status %q: %w", status, apperrors.ErrInvalidTransition)
	}

	uc, err := s.usecases.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	uc.Status = status
	uc.ModeratedAt = &now

	if err := s.usecases.Update(ctx, uc); err != nil {
		return nil, err
	}

	s.logger.Info("Usecase moderated",
		zap.Int64("id", uc.ID),
		zap.String("status", status),
		zap.Int64("moderator_id", viewer.ID))
	return uc, nil
}

func (s *usecaseService) Delete(ctx context.Context, viewer *models.User, id int64) error {
	if !viewer.CanModerate() {
		return fmt.Errorf("deleting usecase %d: %w", id, apperrors.ErrUnauthorized)
	}
	if err := s.usecases.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Usecase deleted",
		zap.Int64("id", id),
		zap.Int64("moderator_id", viewer.ID))
	return nil
}

func (s *usecaseService) ListForUser(ctx context.Context, viewer *models.User) ([]models.UseCase, error) {
	records, err := s.usecases.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	mine := []models.UseCase{}
	for i := range records {
		if records[i].UserID == viewer.ID {
			mine = append(mine, records[i])
		}
	}
	return mine, nil
}

func (s *usecaseService) Browse(ctx context.Context, params filter.Params, page int) (*BrowseResult, error) {
	records, err := s.usecases.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	// The public browse only ever shows approved records, for moderators too.
	approved := []models.UseCase{}
	for i := range records {
		if records[i].Status == models.StatusApproved {
			approved = append(approved, records[i])
		}
	}

	filtered := filter.Apply(approved, params)
	return &BrowseResult{
		Page:   filter.Paginate(filtered, page),
		Facets: filter.FacetCounts(approved),
	}, nil
}
