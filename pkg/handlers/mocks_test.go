package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/genailabs-inc/usecase-portal/pkg/apperrors"
	"github.com/genailabs-inc/usecase-portal/pkg/auth"
	"github.com/genailabs-inc/usecase-portal/pkg/filter"
	"github.com/genailabs-inc/usecase-portal/pkg/models"
	"github.com/genailabs-inc/usecase-portal/pkg/services"
)

// mockUsecaseService backs handler tests with canned data and recorded calls.
type mockUsecaseService struct {
	records []models.UseCase

	listErr error

	lastSetStatus struct {
		id     int64
		status string
	}
	deletedID int64
}

var _ services.UsecaseService = (*mockUsecaseService)(nil)

func (m *mockUsecaseService) ListAll(ctx context.Context) ([]models.UseCase, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.records, nil
}

func (m *mockUsecaseService) Get(ctx context.Context, viewer *models.User, id int64) (*models.UseCase, error) {
	for i := range m.records {
		if m.records[i].ID == id && m.records[i].VisibleTo(viewer) {
			uc := m.records[i]
			return &uc, nil
		}
	}
	return nil, fmt.Errorf("usecase %d: %w", id, apperrors.ErrNotFound)
}

func (m *mockUsecaseService) Submit(ctx context.Context, viewer *models.User, input services.UsecaseInput) (*models.UseCase, error) {
	uc := models.UseCase{
		ID:          time.Now().UnixMilli(),
		Title:       input.Title,
		Project:     input.Project,
		PromptsUsed: input.PromptsUsed,
		ServiceLine: input.ServiceLine,
		SDLCPhase:   input.SDLCPhase,
		ToolsUsed:   input.ToolsUsed,
		Status:      models.StatusPending,
		UserID:      viewer.ID,
		SubmittedAt: time.Now().UTC(),
	}
	if err := uc.Validate(models.BaseTools); err != nil {
		return nil, err
	}
	m.records = append(m.records, uc)
	return &uc, nil
}

func (m *mockUsecaseService) Update(ctx context.Context, viewer *models.User, id int64, input services.UsecaseInput) (*models.UseCase, error) {
	for i := range m.records {
		if m.records[i].ID != id {
			continue
		}
		if !viewer.CanModerate() && m.records[i].UserID != viewer.ID {
			return nil, fmt.Errorf("editing usecase %d: %w", id, apperrors.ErrUnauthorized)
		}
		m.records[i].Title = input.Title
		m.records[i].Status = models.StatusPending
		m.records[i].ModeratedAt = nil
		uc := m.records[i]
		return &uc, nil
	}
	return nil, fmt.Errorf("usecase %d: %w", id, apperrors.ErrNotFound)
}

func (m *mockUsecaseService) SetStatus(ctx context.Context, viewer *models.User, id int64, status string) (*models.UseCase, error) {
	if !models.IsTerminalStatus(status) {
		return nil, fmt.Errorf("status %q: %w", status, apperrors.ErrInvalidTransition)
	}
	m.lastSetStatus.id = id
	m.lastSetStatus.status = status
	for i := range m.records {
		if m.records[i].ID == id {
			now := time.Now().UTC()
			m.records[i].Status = status
			m.records[i].ModeratedAt = &now
			uc := m.records[i]
			return &uc, nil
		}
	}
	return nil, fmt.Errorf("usecase %d: %w", id, apperrors.ErrNotFound)
}

func (m *mockUsecaseService) Delete(ctx context.Context, viewer *models.User, id int64) error {
	for i := range m.records {
		if m.records[i].ID == id {
			m.deletedID = id
			m.records = append(m.records[:i], m.records[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("usecase %d: %w", id, apperrors.ErrNotFound)
}

func (m *mockUsecaseService) ListForUser(ctx context.Context, viewer *models.User) ([]models.UseCase, error) {
	mine := []models.UseCase{}
	for i := range m.records {
		if m.records[i].UserID == viewer.ID {
			mine = append(mine, m.records[i])
		}
	}
	return mine, nil
}

func (m *mockUsecaseService) Browse(ctx context.Context, params filter.Params, page int) (*services.BrowseResult, error) {
	approved := []models.UseCase{}
	for i := range m.records {
		if m.records[i].Status == models.StatusApproved {
			approved = append(approved, m.records[i])
		}
	}
	filtered := filter.Apply(approved, params)
	return &services.BrowseResult{
		Page:   filter.Paginate(filtered, page),
		Facets: filter.FacetCounts(approved),
	}, nil
}

// mockToolService implements services.ToolService.
type mockToolService struct {
	custom []models.CustomTool
	addErr error
}

var _ services.ToolService = (*mockToolService)(nil)

func (m *mockToolService) Vocabulary(ctx context.Context) (*services.ToolVocabulary, error) {
	return &services.ToolVocabulary{Base: models.BaseTools, Custom: m.custom}, nil
}

func (m *mockToolService) Add(ctx context.Context, viewer *models.User, name string) (*models.CustomTool, error) {
	if m.addErr != nil {
		return nil, m.addErr
	}
	tool := models.CustomTool{ID: uuid.New(), Name: name, CreatedBy: viewer.ID, CreatedAt: time.Now().UTC()}
	m.custom = append(m.custom, tool)
	return &tool, nil
}

// mockAuthService implements services.AuthService against one fixed credential.
type mockAuthService struct {
	user     *models.User
	password string
	token    string
}

var _ services.AuthService = (*mockAuthService)(nil)

func (m *mockAuthService) Login(ctx context.Context, username, password string) (*models.User, string, error) {
	if m.user == nil || username != m.user.Username || password != m.password {
		return nil, "", fmt.Errorf("login failed: %w", apperrors.ErrUnauthorized)
	}
	return m.user, m.token, nil
}

// mockStatsService implements services.StatsService.
type mockStatsService struct {
	stats *services.DashboardStats
	err   error
}

var _ services.StatsService = (*mockStatsService)(nil)

func (m *mockStatsService) Dashboard(ctx context.Context) (*services.DashboardStats, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.stats, nil
}

// stubUsers adapts a fixed user set to auth.UserSource for middleware wiring.
type stubUsers struct {
	users map[int64]*models.User
}

var _ auth.UserSource = (*stubUsers)(nil)

func (s *stubUsers) GetByID(ctx context.Context, id int64) (*models.User, error) {
	if u, ok := s.users[id]; ok {
		return u, nil
	}
	return nil, fmt.Errorf("user %d: %w", id, apperrors.ErrNotFound)
}
