package ports

import (
	"context"

	"github.com/sm8ta/ridewise/internal/core/domain"
)

type MaintenanceRepository interface {
	ListBikes() []domain.Bike
	GetBike(id string) (domain.Bike, bool)
	AddBike(ctx context.Context, patch domain.BikePatch) (domain.Bike, error)
	UpsertBike(ctx context.Context, patch domain.BikePatch) (domain.Bike, error)

	ListServices() []domain.ServiceEntry
	GetService(id string) (domain.ServiceEntry, bool)
	UpsertService(ctx context.Context, patch domain.ServicePatch) (domain.ServiceEntry, error)
	RemoveService(ctx context.Context, id string) error

	Preferences() domain.Preferences
	UpdatePreferences(ctx context.Context, patch domain.PreferencesPatch) (domain.Preferences, error)

	Snapshot() domain.Document
	Reload(ctx context.Context) domain.Document
	Reset(ctx context.Context) (domain.Document, error)
	Import(ctx context.Context, data string) (domain.Document, error)
	Export(ctx context.Context) (string, error)
}
