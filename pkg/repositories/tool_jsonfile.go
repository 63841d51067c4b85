package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/genailabs-inc/usecase-portal/pkg/apperrors"
	"github.com/genailabs-inc/usecase-portal/pkg/models"
)

// jsonFileCustomToolRepository persists user-contributed tools as a JSON
// array file, same discipline as the usecase file.
type jsonFileCustomToolRepository struct {
	path string
	mu   sync.Mutex
}

// NewJSONFileCustomToolRepository creates a repository backed by the JSON
// array file at path. The file is created on first write.
func NewJSONFileCustomToolRepository(path string) CustomToolRepository {
	return &jsonFileCustomToolRepository{path: path}
}

var _ CustomToolRepository = (*jsonFileCustomToolRepository)(nil)

func (r *jsonFileCustomToolRepository) load() ([]models.CustomTool, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []models.CustomTool{}, nil
		}
		return nil, fmt.Errorf("%w: reading %s: %v", apperrors.ErrStorage, r.path, err)
	}

	var tools []models.CustomTool
	if err := json.Unmarshal(data, &tools); err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %v", apperrors.ErrStorage, r.path, err)
	}
	return tools, nil
}

func (r *jsonFileCustomToolRepository) save(tools []models.CustomTool) error {
	data, err := json.MarshalIndent(tools, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encoding tools: %v", apperrors.ErrStorage, err)
	}
	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return fmt.Errorf("%w: creating data directory: %v", apperrors.ErrStorage, err)
	}
	if err := os.WriteFile(r.path, data, 0o644); err != nil {
		return fmt.Errorf("%w: writing %s: %v", apperrors.ErrStorage, r.path, err)
	}
	return nil
}

func (r *jsonFileCustomToolRepository) List(ctx context.Context) ([]models.CustomTool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.load()
}

func (r *jsonFileCustomToolRepository) Create(ctx context.Context, tool *models.CustomTool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tools, err := r.load()
	if err != nil {
		return err
	}
	for i := range tools {
		if strings.EqualFold(tools[i].Name, tool.Name) {
			return fmt.Errorf("tool %q: %w", tool.Name, apperrors.ErrConflict)
		}
	}
	return r.save(append(tools, *tool))
}
