package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/sm8ta/ridewise/internal/core/domain"
	"github.com/sm8ta/ridewise/internal/core/ports"
	"github.com/sm8ta/ridewise/internal/core/query"
)

type ServiceLogService struct {
	repo     ports.MaintenanceRepository
	catalog  ports.ServiceTypeCatalog
	logger   ports.LoggerPort
	validate *validator.Validate
}

func NewServiceLogService(
	repo ports.MaintenanceRepository,
	catalog ports.ServiceTypeCatalog,
	logger ports.LoggerPort,
	validate *validator.Validate,
) *ServiceLogService {
	return &ServiceLogService{
		repo:     repo,
		catalog:  catalog,
		logger:   logger,
		validate: validate,
	}
}

// ListServices returns the log narrowed by filter and ordered by mode.
func (s *ServiceLogService) ListServices(_ context.Context, filter query.Filter, mode query.SortMode) []domain.ServiceEntry {
	entries := query.FilterEntries(s.repo.ListServices(), filter)
	return query.SortServices(entries, mode)
}

func (s *ServiceLogService) GetService(_ context.Context, serviceID string) (domain.ServiceEntry, error) {
	entry, ok := s.repo.GetService(serviceID)
	if !ok {
		return domain.ServiceEntry{}, fmt.Errorf("service %s: %w", serviceID, domain.ErrNotFound)
	}
	return entry, nil
}

func (s *ServiceLogService) CreateService(ctx context.Context, patch domain.ServicePatch) (domain.ServiceEntry, error) {
	if patch.ID != nil && strings.TrimSpace(*patch.ID) != "" {
		if _, exists := s.repo.GetService(*patch.ID); exists {
			return domain.ServiceEntry{}, fmt.Errorf("%w: service %s already exists", domain.ErrValidation, *patch.ID)
		}
	}
	s.resolveTypeLabel(ctx, &patch)

	candidate := domain.NormalizeNewService(patch)
	if err := s.check(candidate, true); err != nil {
		return domain.ServiceEntry{}, err
	}

	entry, err := s.repo.UpsertService(ctx, patch)
	if err != nil {
		s.logger.Error("Failed to create service entry", map[string]interface{}{
			"error":   err.Error(),
			"bike_id": candidate.BikeID,
		})
		return domain.ServiceEntry{}, err
	}

	s.logger.Info("Service entry created successfully", map[string]interface{}{
		"service_id":      entry.ID,
		"bike_id":         entry.BikeID,
		"service_type_id": entry.ServiceTypeID,
	})

	return entry, nil
}

func (s *ServiceLogService) UpdateService(ctx context.Context, serviceID string, patch domain.ServicePatch) (domain.ServiceEntry, error) {
	existing, ok := s.repo.GetService(serviceID)
	if !ok {
		s.logger.Warn("Service entry not found", map[string]interface{}{
			"service_id": serviceID,
		})
		return domain.ServiceEntry{}, fmt.Errorf("service %s: %w", serviceID, domain.ErrNotFound)
	}
	patch.ID = &serviceID
	if patch.ServiceTypeID != nil && *patch.ServiceTypeID != existing.ServiceTypeID {
		s.resolveTypeLabel(ctx, &patch)
	}

	candidate := domain.MergeService(existing, patch)
	movedBike := candidate.BikeID != existing.BikeID
	if err := s.check(candidate, movedBike); err != nil {
		return domain.ServiceEntry{}, err
	}

	entry, err := s.repo.UpsertService(ctx, patch)
	if err != nil {
		s.logger.Error("Failed to update service entry", map[string]interface{}{
			"error":      err.Error(),
			"service_id": serviceID,
		})
		return domain.ServiceEntry{}, err
	}

	s.logger.Info("Service entry updated successfully", map[string]interface{}{
		"service_id": entry.ID,
	})

	return entry, nil
}

// DeleteService removes an entry. Deleting an unknown id succeeds.
func (s *ServiceLogService) DeleteService(ctx context.Context, serviceID string) error {
	if err := s.repo.RemoveService(ctx, serviceID); err != nil {
		s.logger.Error("Failed to delete service entry", map[string]interface{}{
			"error":      err.Error(),
			"service_id": serviceID,
		})
		return err
	}

	s.logger.Info("Service entry deleted", map[string]interface{}{
		"service_id": serviceID,
	})
	return nil
}

// check validates a would-be entry. Stored entries may point at bikes that
// no longer exist, so the bike is only looked up when it is being set.
func (s *ServiceLogService) check(candidate domain.ServiceEntry, requireBike bool) error {
	if err := s.validate.Struct(candidate); err != nil {
		s.logger.Error("Service entry validation failed", map[string]interface{}{
			"error": err.Error(),
		})
		return validationError(err)
	}
	if !requireBike {
		return nil
	}
	if _, ok := s.repo.GetBike(candidate.BikeID); !ok {
		s.logger.Error("Service entry references unknown bike", map[string]interface{}{
			"bike_id": candidate.BikeID,
		})
		return fmt.Errorf("%w: unknown bike %s", domain.ErrValidation, candidate.BikeID)
	}
	return nil
}

// resolveTypeLabel copies the catalog label into the patch unless the caller
// supplied one. A catalog outage leaves the label as is.
func (s *ServiceLogService) resolveTypeLabel(ctx context.Context, patch *domain.ServicePatch) {
	if s.catalog == nil || patch.ServiceTypeID == nil || patch.TypeLabel != nil {
		return
	}
	types, err := s.catalog.ServiceTypes(ctx)
	if err != nil {
		s.logger.Warn("Service type catalog unavailable", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	for _, t := range types {
		if t.ID == strings.TrimSpace(*patch.ServiceTypeID) {
			label := t.Label
			patch.TypeLabel = &label
			return
		}
	}
}
