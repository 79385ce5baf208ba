package services

import (
	"context"

	"github.com/sm8ta/ridewise/internal/core/domain"
	"github.com/sm8ta/ridewise/internal/core/ports"
	"github.com/sm8ta/ridewise/internal/core/query"
)

type StatsService struct {
	repo   ports.MaintenanceRepository
	logger ports.LoggerPort
}

type BikeSummary struct {
	Bike  domain.Bike `json:"bike"`
	Stats query.Stats `json:"stats"`
}

// Dashboard is the fleet overview: totals plus one summary per bike.
type Dashboard struct {
	Fleet       query.FleetStats   `json:"fleet"`
	Bikes       []BikeSummary      `json:"bikes"`
	Preferences domain.Preferences `json:"preferences"`
}

func NewStatsService(repo ports.MaintenanceRepository, logger ports.LoggerPort) *StatsService {
	return &StatsService{
		repo:   repo,
		logger: logger,
	}
}

// Dashboard builds the overview from one consistent snapshot. A non-empty
// typeID limits the bike list to bikes that had that service.
func (s *StatsService) Dashboard(_ context.Context, typeID string) Dashboard {
	doc := s.repo.Snapshot()

	bikes := query.BikesWithServiceType(doc.Bikes, doc.Services, typeID)
	summaries := make([]BikeSummary, 0, len(bikes))
	for _, b := range bikes {
		entries := query.ServicesForBike(doc.Services, b.ID)
		summaries = append(summaries, BikeSummary{
			Bike:  b,
			Stats: query.StatsForBike(b, entries),
		})
	}

	s.logger.Debug("Built dashboard", map[string]interface{}{
		"bikes":    len(summaries),
		"services": len(doc.Services),
	})

	return Dashboard{
		Fleet:       query.StatsForFleet(doc.Bikes, doc.Services),
		Bikes:       summaries,
		Preferences: doc.Preferences,
	}
}
