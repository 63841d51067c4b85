package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/genailabs-inc/usecase-portal/pkg/apperrors"
	"github.com/genailabs-inc/usecase-portal/pkg/models"
	"github.com/genailabs-inc/usecase-portal/pkg/repositories"
)

// ToolVocabulary is the full tool list a submission form offers.
type ToolVocabulary struct {
	Base   []string            `json:"base"`
	Custom []models.CustomTool `json:"custom"`
}

// All returns the flattened vocabulary, base tools first.
func (v *ToolVocabulary) All() []string {
	out := make([]string, 0, len(v.Base)+len(v.Custom))
	out = append(out, v.Base...)
	for _, t := range v.Custom {
		out = append(out, t.Name)
	}
	return out
}

// ToolService manages the extensible tool vocabulary.
type ToolService interface {
	Vocabulary(ctx context.Context) (*ToolVocabulary, error)

	// Add contributes a new tool on behalf of the viewer. Names already in
	// the vocabulary (base or custom, case-insensitive) are ErrConflict.
	Add(ctx context.Context, viewer *models.User, name string) (*models.CustomTool, error)
}

type toolService struct {
	tools  repositories.CustomToolRepository
	logger *zap.Logger
}

// NewToolService creates a ToolService.
func NewToolService(tools repositories.CustomToolRepository, logger *zap.Logger) ToolService {
	return &toolService{tools: tools, logger: logger}
}

var _ ToolService = (*toolService)(nil)

func (s *toolService) Vocabulary(ctx context.Context) (*ToolVocabulary, error) {
	custom, err := s.tools.List(ctx)
	if err != nil {
		return nil, err
	}
	return &ToolVocabulary{Base: models.BaseTools, Custom: custom}, nil
}

func (s *toolService) Add(ctx context.Context, viewer *models.User, name string) (*models.CustomTool, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > models.CustomToolMaxLen {
		return nil, fmt.Errorf("tool name must be 1-%d characters: %w",
			models.CustomToolMaxLen, apperrors.ErrValidation)
	}

	for _, base := range models.BaseTools {
		if strings.EqualFold(base, name) {
			return nil, fmt.Errorf("tool %q: %w", name, apperrors.ErrConflict)
		}
	}

	tool := &models.CustomTool{
		ID:        uuid.New(),
		Name:      name,
		CreatedBy: viewer.ID,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.tools.Create(ctx, tool); err != nil {
		return nil, err
	}

	s.logger.Info("Custom tool added",
		zap.String("name", tool.Name),
		zap.Int64("user_id", viewer.ID))
	return tool, nil
}
