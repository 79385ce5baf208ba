package services

import (
	"context"

	"github.com/go-playground/validator/v10"

	"github.com/sm8ta/ridewise/internal/core/domain"
	"github.com/sm8ta/ridewise/internal/core/ports"
)

type PreferencesService struct {
	repo     ports.MaintenanceRepository
	logger   ports.LoggerPort
	validate *validator.Validate
}

func NewPreferencesService(
	repo ports.MaintenanceRepository,
	logger ports.LoggerPort,
	validate *validator.Validate,
) *PreferencesService {
	return &PreferencesService{
		repo:     repo,
		logger:   logger,
		validate: validate,
	}
}

func (s *PreferencesService) GetPreferences(_ context.Context) domain.Preferences {
	return s.repo.Preferences()
}

func (s *PreferencesService) UpdatePreferences(ctx context.Context, patch domain.PreferencesPatch) (domain.Preferences, error) {
	candidate := domain.MergePreferences(s.repo.Preferences(), patch)
	if err := s.validate.Struct(candidate); err != nil {
		s.logger.Error("Preferences validation failed", map[string]interface{}{
			"error": err.Error(),
		})
		return domain.Preferences{}, validationError(err)
	}

	prefs, err := s.repo.UpdatePreferences(ctx, patch)
	if err != nil {
		s.logger.Error("Failed to update preferences", map[string]interface{}{
			"error": err.Error(),
		})
		return domain.Preferences{}, err
	}

	s.logger.Info("Preferences updated", map[string]interface{}{
		"distance": prefs.Distance,
		"currency": prefs.Currency,
		"theme":    prefs.Theme,
	})
	return prefs, nil
}
