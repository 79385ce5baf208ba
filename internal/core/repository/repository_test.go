package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sm8ta/ridewise/internal/adapter/logger"
	"github.com/sm8ta/ridewise/internal/adapter/memory"
	"github.com/sm8ta/ridewise/internal/core/domain"
	"github.com/sm8ta/ridewise/internal/core/storage"
)

func newRepo(t *testing.T) (*Repository, *storage.Store) {
	t.Helper()
	ctx := context.Background()
	log := logger.NewNopLogger()
	store := storage.Open(ctx, memory.New(), storage.Options{Logger: log})
	repo := New(store, log, WithClock(func() time.Time {
		return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	}))
	repo.Init(ctx)
	return repo, store
}

func str(s string) *string {
	return &s
}

func TestRepository_InitLoadsSeed(t *testing.T) {
	repo, _ := newRepo(t)

	bikes := repo.ListBikes()
	require.Len(t, bikes, 2)
	assert.Equal(t, "bike_01", bikes[0].ID)
	assert.Equal(t, "bike_02", bikes[1].ID)

	svc, ok := repo.GetService("svc_seed_1")
	require.True(t, ok)
	assert.Equal(t, 64.99, *svc.Cost)
}

func TestRepository_AddBikeWritesThrough(t *testing.T) {
	ctx := context.Background()
	repo, store := newRepo(t)

	bike, err := repo.AddBike(ctx, domain.BikePatch{Make: str("Ducati"), Year: domain.ParseNumeric("")})
	require.NoError(t, err)

	assert.Equal(t, domain.DefaultBikeName, bike.Name)
	assert.Equal(t, 2025, bike.Year)
	assert.Equal(t, "", bike.Model)

	persisted := store.Load(ctx)
	require.Len(t, persisted.Bikes, 3)
	assert.Equal(t, bike, persisted.Bikes[2])
}

func TestRepository_AddBikeKeepsIDsUnique(t *testing.T) {
	ctx := context.Background()
	repo, _ := newRepo(t)

	bike, err := repo.AddBike(ctx, domain.BikePatch{ID: str("bike_01"), Name: str("Clone")})
	require.NoError(t, err)
	assert.NotEqual(t, "bike_01", bike.ID)

	seen := map[string]bool{}
	for _, b := range repo.ListBikes() {
		assert.False(t, seen[b.ID], b.ID)
		seen[b.ID] = true
	}
}

func TestRepository_UpsertBikeMergesExisting(t *testing.T) {
	ctx := context.Background()
	repo, _ := newRepo(t)

	bike, err := repo.UpsertBike(ctx, domain.BikePatch{ID: str("bike_02"), Odometer: domain.NumberOf(12000)})
	require.NoError(t, err)

	assert.Equal(t, "Midnight Torque", bike.Name)
	assert.Equal(t, int64(12000), *bike.Odometer)
	assert.Len(t, repo.ListBikes(), 2)
}

func TestRepository_UpsertBikeAppendsUnknown(t *testing.T) {
	ctx := context.Background()
	repo, _ := newRepo(t)

	bike, err := repo.UpsertBike(ctx, domain.BikePatch{ID: str("bike_99"), Make: str("KTM")})
	require.NoError(t, err)

	assert.Equal(t, "bike_99", bike.ID)
	assert.Equal(t, domain.DefaultBikeName, bike.Name)
	assert.Len(t, repo.ListBikes(), 3)
}

func TestRepository_UpsertServiceMergesAndCoerces(t *testing.T) {
	ctx := context.Background()
	repo, store := newRepo(t)

	entry, err := repo.UpsertService(ctx, domain.ServicePatch{
		ID:   str("svc_seed_1"),
		Cost: domain.ParseNumeric(""),
	})
	require.NoError(t, err)

	assert.Nil(t, entry.Cost)
	assert.Equal(t, "DIY", entry.Vendor)
	assert.Nil(t, store.Load(ctx).Services[0].Cost)
}

func TestRepository_UpsertServiceAppendsNew(t *testing.T) {
	ctx := context.Background()
	repo, _ := newRepo(t)

	entry, err := repo.UpsertService(ctx, domain.ServicePatch{
		BikeID:        str("bike_02"),
		Date:          str("2024-06-01"),
		ServiceTypeID: str("chain_lube"),
		Cost:          domain.ParseNumeric("35.00"),
	})
	require.NoError(t, err)

	assert.NotEmpty(t, entry.ID)
	assert.Equal(t, 35.0, *entry.Cost)
	assert.Nil(t, entry.Hours)

	services := repo.ListServices()
	require.Len(t, services, 2)
	assert.Equal(t, entry.ID, services[1].ID)
}

func TestRepository_RemoveService(t *testing.T) {
	ctx := context.Background()
	repo, store := newRepo(t)

	require.NoError(t, repo.RemoveService(ctx, "missing"))
	assert.Len(t, repo.ListServices(), 1)

	require.NoError(t, repo.RemoveService(ctx, "svc_seed_1"))
	assert.Empty(t, repo.ListServices())
	assert.Empty(t, store.Load(ctx).Services)
}

func TestRepository_ReturnsCopies(t *testing.T) {
	repo, _ := newRepo(t)

	bikes := repo.ListBikes()
	bikes[0].Name = "mutated"
	*bikes[0].Odometer = 1

	snap := repo.Snapshot()
	snap.Services[0].Vendor = "mutated"

	again, _ := repo.GetBike("bike_01")
	assert.Equal(t, "Adventure Twin", again.Name)
	assert.Equal(t, int64(8200), *again.Odometer)
	svc, _ := repo.GetService("svc_seed_1")
	assert.Equal(t, "DIY", svc.Vendor)
}

func TestRepository_UpdatePreferences(t *testing.T) {
	ctx := context.Background()
	repo, store := newRepo(t)
	theme := domain.ThemeDark

	prefs, err := repo.UpdatePreferences(ctx, domain.PreferencesPatch{Theme: &theme})
	require.NoError(t, err)

	assert.Equal(t, domain.ThemeDark, prefs.Theme)
	assert.Equal(t, "USD", prefs.Currency)
	assert.Equal(t, domain.ThemeDark, store.Load(ctx).Preferences.Theme)
}

func TestRepository_ImportExportReset(t *testing.T) {
	ctx := context.Background()
	repo, _ := newRepo(t)

	_, err := repo.AddBike(ctx, domain.BikePatch{Name: str("Extra")})
	require.NoError(t, err)
	exported, err := repo.Export(ctx)
	require.NoError(t, err)

	_, err = repo.Reset(ctx)
	require.NoError(t, err)
	assert.Len(t, repo.ListBikes(), 2)

	_, err = repo.Import(ctx, "{broken")
	assert.ErrorIs(t, err, domain.ErrMalformedImport)
	assert.Len(t, repo.ListBikes(), 2)

	_, err = repo.Import(ctx, exported)
	require.NoError(t, err)
	assert.Len(t, repo.ListBikes(), 3)

	again, err := repo.Export(ctx)
	require.NoError(t, err)
	assert.Equal(t, exported, again)
}

func TestRepository_ReloadPicksUpExternalWrites(t *testing.T) {
	ctx := context.Background()
	repo, store := newRepo(t)

	doc := store.Load(ctx)
	doc.Bikes = doc.Bikes[:1]
	require.NoError(t, store.Save(ctx, doc))

	assert.Len(t, repo.ListBikes(), 2)
	repo.Reload(ctx)
	assert.Len(t, repo.ListBikes(), 1)
}
