package services

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/genailabs-inc/usecase-portal/pkg/models"
	"github.com/genailabs-inc/usecase-portal/pkg/repositories"
)

// topToolsLimit caps the tools distribution shown on the dashboard.
const topToolsLimit = 5

// ToolCount is one slice of the tools distribution.
type ToolCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// DashboardStats aggregates the approved collection for the dashboard
// charts.
type DashboardStats struct {
	StatusCounts    map[string]int `json:"status_counts"`
	SDLCPhaseCounts map[string]int `json:"sdlc_phase_counts"`
	TopTools        []ToolCount    `json:"top_tools"`

	// MeanEfficiency is the average of ((estimated/actual)-1)*100 over
	// approved records with non-zero actual hours; nil when none qualify.
	MeanEfficiency *float64 `json:"mean_efficiency,omitempty"`
}

// StatsService computes dashboard aggregates.
type StatsService interface {
	Dashboard(ctx context.Context) (*DashboardStats, error)
}

type statsService struct {
	usecases repositories.UsecaseRepository
	logger   *zap.Logger
}

// NewStatsService creates a StatsService.
func NewStatsService(usecases repositories.UsecaseRepository, logger *zap.Logger) StatsService {
	return &statsService{usecases: usecases, logger: logger}
}

var _ StatsService = (*statsService)(nil)

func (s *statsService) Dashboard(ctx context.Context) (*DashboardStats, error) {
	records, err := s.usecases.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	stats := &DashboardStats{
		StatusCounts:    map[string]int{},
		SDLCPhaseCounts: map[string]int{},
	}

	toolCounts := map[string]int{}
	var efficiencySum float64
	var efficiencyN int

	for i := range records {
		uc := &records[i]
		stats.StatusCounts[uc.Status]++

		if uc.Status != models.StatusApproved {
			continue
		}
		for _, phase := range uc.SDLCPhase {
			stats.SDLCPhaseCounts[phase]++
		}
		for _, tool := range uc.ToolsUsed {
			toolCounts[tool]++
		}
		if pct, ok := uc.Efficiency(); ok {
			efficiencySum += pct
			efficiencyN++
		}
	}

	stats.TopTools = topTools(toolCounts, topToolsLimit)
	if efficiencyN > 0 {
		mean := efficiencySum / float64(efficiencyN)
		stats.MeanEfficiency = &mean
	}
	return stats, nil
}

// topTools returns the n most used tools, count descending with name as the
// deterministic tie-break.
func topTools(counts map[string]int, n int) []ToolCount {
	out := make([]ToolCount, 0, len(counts))
	for name, count := range counts {
		out = append(out, ToolCount{Name: name, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
