package services

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/sm8ta/ridewise/internal/core/domain"
	"github.com/sm8ta/ridewise/internal/core/ports"
	"github.com/sm8ta/ridewise/internal/core/query"
)

type BikeService struct {
	repo     ports.MaintenanceRepository
	logger   ports.LoggerPort
	validate *validator.Validate
	now      func() time.Time
}

// BikeDetail is a bike together with its statistics and filtered, sorted log.
type BikeDetail struct {
	Bike     domain.Bike           `json:"bike"`
	Stats    query.Stats           `json:"stats"`
	Services []domain.ServiceEntry `json:"services"`
}

func NewBikeService(
	repo ports.MaintenanceRepository,
	logger ports.LoggerPort,
	validate *validator.Validate,
) *BikeService {
	return &BikeService{
		repo:     repo,
		logger:   logger,
		validate: validate,
		now:      time.Now,
	}
}

// ListBikes returns all bikes, or only those with a service of typeID when set.
func (s *BikeService) ListBikes(_ context.Context, typeID string) []domain.Bike {
	bikes := s.repo.ListBikes()
	if typeID == "" {
		return bikes
	}
	return query.BikesWithServiceType(bikes, s.repo.ListServices(), typeID)
}

func (s *BikeService) GetBike(_ context.Context, bikeID string) (domain.Bike, error) {
	bike, ok := s.repo.GetBike(bikeID)
	if !ok {
		s.logger.Warn("Bike not found", map[string]interface{}{
			"bike_id": bikeID,
		})
		return domain.Bike{}, fmt.Errorf("bike %s: %w", bikeID, domain.ErrNotFound)
	}
	return bike, nil
}

func (s *BikeService) CreateBike(ctx context.Context, patch domain.BikePatch) (domain.Bike, error) {
	candidate := domain.NormalizeNewBike(patch, s.now())
	if err := s.validate.Struct(candidate); err != nil {
		s.logger.Error("Bike validation failed", map[string]interface{}{
			"error": err.Error(),
		})
		return domain.Bike{}, validationError(err)
	}

	bike, err := s.repo.AddBike(ctx, patch)
	if err != nil {
		s.logger.Error("Failed to create bike", map[string]interface{}{
			"error": err.Error(),
		})
		return domain.Bike{}, err
	}

	s.logger.Info("Bike created successfully", map[string]interface{}{
		"bike_id": bike.ID,
		"make":    bike.Make,
		"model":   bike.Model,
	})

	return bike, nil
}

// SaveBike updates the bike with bikeID, creating it when it does not exist.
func (s *BikeService) SaveBike(ctx context.Context, bikeID string, patch domain.BikePatch) (domain.Bike, error) {
	patch.ID = &bikeID

	var candidate domain.Bike
	if existing, ok := s.repo.GetBike(bikeID); ok {
		candidate = domain.MergeBike(existing, patch)
	} else {
		candidate = domain.NormalizeNewBike(patch, s.now())
	}
	if err := s.validate.Struct(candidate); err != nil {
		s.logger.Error("Bike validation failed", map[string]interface{}{
			"error":   err.Error(),
			"bike_id": bikeID,
		})
		return domain.Bike{}, validationError(err)
	}

	bike, err := s.repo.UpsertBike(ctx, patch)
	if err != nil {
		s.logger.Error("Failed to update bike", map[string]interface{}{
			"error":   err.Error(),
			"bike_id": bikeID,
		})
		return domain.Bike{}, err
	}

	s.logger.Info("Bike updated successfully", map[string]interface{}{
		"bike_id": bike.ID,
	})

	return bike, nil
}

// GetBikeDetail builds the single-bike view. Stats cover the whole history;
// the service log is narrowed by filter and ordered by mode.
func (s *BikeService) GetBikeDetail(ctx context.Context, bikeID string, filter query.Filter, mode query.SortMode) (BikeDetail, error) {
	bike, err := s.GetBike(ctx, bikeID)
	if err != nil {
		return BikeDetail{}, err
	}

	all := query.ServicesForBike(s.repo.ListServices(), bike.ID)
	filter.BikeID = ""
	entries := query.SortServices(query.FilterEntries(all, filter), mode)

	s.logger.Debug("Retrieved bike detail", map[string]interface{}{
		"bike_id":        bikeID,
		"services_count": len(entries),
	})

	return BikeDetail{
		Bike:     bike,
		Stats:    query.StatsForBike(bike, all),
		Services: entries,
	}, nil
}
