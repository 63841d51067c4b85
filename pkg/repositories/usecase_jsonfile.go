package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/genailabs-inc/usecase-portal/pkg/apperrors"
	"github.com/genailabs-inc/usecase-portal/pkg/models"
)

// jsonFileUsecaseRepository keeps the whole collection as one JSON array on
// disk, the portal's canonical simplest deployment. Every mutation is a full
// read-modify-write under the mutex, which is the entire concurrency story
// the collection needs at this size.
type jsonFileUsecaseRepository struct {
	path string
	mu   sync.Mutex
}

// NewJSONFileUsecaseRepository creates a repository backed by the JSON array
// file at path. The file is created on first write.
func NewJSONFileUsecaseRepository(path string) UsecaseRepository {
	return &jsonFileUsecaseRepository{path: path}
}

var _ UsecaseRepository = (*jsonFileUsecaseRepository)(nil)

func (r *jsonFileUsecaseRepository) load() ([]models.UseCase, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []models.UseCase{}, nil
		}
		return nil, fmt.Errorf("%w: reading %s: %v", apperrors.ErrStorage, r.path, err)
	}

	var records []models.UseCase
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %v", apperrors.ErrStorage, r.path, err)
	}
	return records, nil
}

func (r *jsonFileUsecaseRepository) save(records []models.UseCase) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encoding records: %v", apperrors.ErrStorage, err)
	}
	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return fmt.Errorf("%w: creating data directory: %v", apperrors.ErrStorage, err)
	}
	if err := os.WriteFile(r.path, data, 0o644); err != nil {
		return fmt.Errorf("%w: writing %s: %v", apperrors.ErrStorage, r.path, err)
	}
	return nil
}

func (r *jsonFileUsecaseRepository) ListAll(ctx context.Context) ([]models.UseCase, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.load()
}

func (r *jsonFileUsecaseRepository) GetByID(ctx context.Context, id int64) (*models.UseCase, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.load()
	if err != nil {
		return nil, err
	}
	for i := range records {
		if records[i].ID == id {
			uc := records[i]
			return &uc, nil
		}
	}
	return nil, fmt.Errorf("usecase %d: %w", id, apperrors.ErrNotFound)
}

func (r *jsonFileUsecaseRepository) Create(ctx context.Context, uc *models.UseCase) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.load()
	if err != nil {
		return err
	}

	uc.ID = nextID(records, time.Now().UnixMilli())

	// Newest first, matching the historical file layout.
	records = append([]models.UseCase{*uc}, records...)
	return r.save(records)
}

// nextID derives a creation-time id, bumping past collisions so rapid
// successive creates stay unique.
func nextID(records []models.UseCase, candidate int64) int64 {
	taken := make(map[int64]struct{}, len(records))
	for i := range records {
		taken[records[i].ID] = struct{}{}
	}
	for {
		if _, exists := taken[candidate]; !exists {
			return candidate
		}
		candidate++
	}
}

func (r *jsonFileUsecaseRepository) Update(ctx context.Context, uc *models.UseCase) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.load()
	if err != nil {
		return err
	}
	for i := range records {
		if records[i].ID == uc.ID {
			records[i] = *uc
			return r.save(records)
		}
	}
	return fmt.Errorf("usecase %d: %w", uc.ID, apperrors.ErrNotFound)
}

func (r *jsonFileUsecaseRepository) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.load()
	if err != nil {
		return err
	}
	for i := range records {
		if records[i].ID == id {
			records = append(records[:i], records[i+1:]...)
			return r.save(records)
		}
	}
	return fmt.Errorf("usecase %d: %w", id, apperrors.ErrNotFound)
}
