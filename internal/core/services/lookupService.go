package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sm8ta/ridewise/internal/core/domain"
	"github.com/sm8ta/ridewise/internal/core/ports"
)

const lookupCacheTTL = 24 * time.Hour

// LookupService answers reference-data questions: the service-type catalog
// and the public vehicle registry. None of it is needed to log maintenance.
type LookupService struct {
	catalog ports.ServiceTypeCatalog
	decoder ports.VehicleDecoder
	cache   ports.CachePort
	logger  ports.LoggerPort
}

func NewLookupService(
	catalog ports.ServiceTypeCatalog,
	decoder ports.VehicleDecoder,
	cache ports.CachePort,
	logger ports.LoggerPort,
) *LookupService {
	return &LookupService{
		catalog: catalog,
		decoder: decoder,
		cache:   cache,
		logger:  logger,
	}
}

func (s *LookupService) ServiceTypes(ctx context.Context, refresh bool) ([]domain.ServiceType, error) {
	if refresh {
		s.catalog.Invalidate()
	}
	types, err := s.catalog.ServiceTypes(ctx)
	if err != nil {
		s.logger.Error("Failed to load service types", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, err
	}
	return types, nil
}

func (s *LookupService) DecodeVIN(ctx context.Context, vin string) (domain.VehicleSummary, error) {
	vin = strings.ToUpper(strings.TrimSpace(vin))
	cacheKey := fmt.Sprintf("vin:%s", vin)

	var cached []domain.VINField
	if s.fromCache(cacheKey, &cached) {
		return domain.SummarizeVIN(vin, cached), nil
	}

	fields, err := s.decoder.DecodeVIN(ctx, vin)
	if err != nil {
		s.logger.Error("Failed to decode VIN", map[string]interface{}{
			"error": err.Error(),
			"vin":   vin,
		})
		return domain.VehicleSummary{}, err
	}

	s.toCache(cacheKey, fields)
	return domain.SummarizeVIN(vin, fields), nil
}

func (s *LookupService) MakesForYear(ctx context.Context, year int) ([]domain.VehicleMake, error) {
	cacheKey := fmt.Sprintf("makes:%d", year)

	var cached []domain.VehicleMake
	if s.fromCache(cacheKey, &cached) {
		return cached, nil
	}

	makes, err := s.decoder.MakesForYear(ctx, year)
	if err != nil {
		s.logger.Error("Failed to load makes", map[string]interface{}{
			"error": err.Error(),
			"year":  year,
		})
		return nil, err
	}

	s.toCache(cacheKey, makes)
	return makes, nil
}

func (s *LookupService) fromCache(key string, out interface{}) bool {
	if s.cache == nil {
		return false
	}
	data, err := s.cache.Get(key)
	if err != nil {
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		return false
	}
	s.logger.Debug("Lookup served from cache", map[string]interface{}{
		"key": key,
	})
	return true
}

func (s *LookupService) toCache(key string, value interface{}) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		s.logger.Warn("Failed to marshal lookup for cache", map[string]interface{}{
			"error": err.Error(),
			"key":   key,
		})
		return
	}
	if err := s.cache.Set(key, data, lookupCacheTTL); err != nil {
		s.logger.Warn("Failed to cache lookup", map[string]interface{}{
			"error": err.Error(),
			"key":   key,
		})
	}
}
