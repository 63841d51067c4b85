package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/genailabs-inc/usecase-portal/pkg/apperrors"
	"github.com/genailabs-inc/usecase-portal/pkg/models"
)

// mockUsecaseRepo is an in-memory UsecaseRepository, newest record first
// like the file-backed implementation.
type mockUsecaseRepo struct {
	mu      sync.Mutex
	records []models.UseCase

	listErr   error
	createErr error
	updateErr error
	deleteErr error
}

func newMockUsecaseRepo(records ...models.UseCase) *mockUsecaseRepo {
	return &mockUsecaseRepo{records: records}
}

func (m *mockUsecaseRepo) ListAll(ctx context.Context) ([]models.UseCase, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]models.UseCase, len(m.records))
	copy(out, m.records)
	return out, nil
}

func (m *mockUsecaseRepo) GetByID(ctx context.Context, id int64) (*models.UseCase, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.records {
		if m.records[i].ID == id {
			uc := m.records[i]
			return &uc, nil
		}
	}
	return nil, fmt.Errorf("usecase %d: %w", id, apperrors.ErrNotFound)
}

func (m *mockUsecaseRepo) Create(ctx context.Context, uc *models.UseCase) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	id := time.Now().UnixMilli()
	for m.hasID(id) {
		id++
	}
	uc.ID = id
	m.records = append([]models.UseCase{*uc}, m.records...)
	return nil
}

func (m *mockUsecaseRepo) hasID(id int64) bool {
	for i := range m.records {
		if m.records[i].ID == id {
			return true
		}
	}
	return false
}

func (m *mockUsecaseRepo) Update(ctx context.Context, uc *models.UseCase) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateErr != nil {
		return m.updateErr
	}
	for i := range m.records {
		if m.records[i].ID == uc.ID {
			m.records[i] = *uc
			return nil
		}
	}
	return fmt.Errorf("usecase %d: %w", uc.ID, apperrors.ErrNotFound)
}

func (m *mockUsecaseRepo) Delete(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return m.deleteErr
	}
	for i := range m.records {
		if m.records[i].ID == id {
			m.records = append(m.records[:i], m.records[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("usecase %d: %w", id, apperrors.ErrNotFound)
}

// mockToolRepo is an in-memory CustomToolRepository.
type mockToolRepo struct {
	mu    sync.Mutex
	tools []models.CustomTool

	listErr   error
	createErr error
}

func newMockToolRepo(names ...string) *mockToolRepo {
	m := &mockToolRepo{}
	for _, name := range names {
		m.tools = append(m.tools, models.CustomTool{Name: name})
	}
	return m
}

func (m *mockToolRepo) List(ctx context.Context) ([]models.CustomTool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]models.CustomTool, len(m.tools))
	copy(out, m.tools)
	return out, nil
}

func (m *mockToolRepo) Create(ctx context.Context, tool *models.CustomTool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	for _, existing := range m.tools {
		if existing.Name == tool.Name {
			return fmt.Errorf("tool %q: %w", tool.Name, apperrors.ErrConflict)
		}
	}
	m.tools = append(m.tools, *tool)
	return nil
}

// mockUserRepo is an in-memory UserRepository.
type mockUserRepo struct {
	users []models.User
}

func (m *mockUserRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	for i := range m.users {
		if m.users[i].ID == id {
			u := m.users[i]
			return &u, nil
		}
	}
	return nil, fmt.Errorf("user %d: %w", id, apperrors.ErrNotFound)
}

func (m *mockUserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	for i := range m.users {
		if m.users[i].Username == username {
			u := m.users[i]
			return &u, nil
		}
	}
	return nil, fmt.Errorf("user %q: %w", username, apperrors.ErrNotFound)
}

func (m *mockUserRepo) List(ctx context.Context) ([]models.User, error) {
	out := make([]models.User, len(m.users))
	copy(out, m.users)
	return out, nil
}
