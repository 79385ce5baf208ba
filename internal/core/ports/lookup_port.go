package ports

import (
	"context"

	"github.com/sm8ta/ridewise/internal/core/domain"
)

type ServiceTypeCatalog interface {
	ServiceTypes(ctx context.Context) ([]domain.ServiceType, error)
	Invalidate()
}

type VehicleDecoder interface {
	DecodeVIN(ctx context.Context, vin string) ([]domain.VINField, error)
	MakesForYear(ctx context.Context, year int) ([]domain.VehicleMake, error)
}
