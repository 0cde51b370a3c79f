package service

import (
	"context"

	"packslip/internal/domain"
	"packslip/internal/parser"
	"packslip/internal/port"
)

// StatsService provides aggregate statistics.
type StatsService interface {
	GetStats(ctx context.Context, platform domain.Platform) (*domain.Stats, error)
}

type statsService struct {
	statsRepo port.StatsRepository
	profiles  *parser.Profiles
}

// NewStatsService creates a new StatsService implementation.
func NewStatsService(statsRepo port.StatsRepository, profiles *parser.Profiles) StatsService {
	if profiles == nil {
		profiles = parser.DefaultProfiles()
	}
	return &statsService{statsRepo: statsRepo, profiles: profiles}
}

// GetStats returns counts across all platforms, or for one configured platform.
func (s *statsService) GetStats(ctx context.Context, platform domain.Platform) (*domain.Stats, error) {
	if platform != "" {
		if _, err := s.profiles.Get(platform); err != nil {
			return nil, err
		}
	}
	return s.statsRepo.GetStats(ctx, platform)
}
