package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sm8ta/ridewise/internal/adapter/logger"
	"github.com/sm8ta/ridewise/internal/adapter/memory"
	"github.com/sm8ta/ridewise/internal/core/domain"
	"github.com/sm8ta/ridewise/internal/core/ports"
	"github.com/sm8ta/ridewise/internal/core/query"
	"github.com/sm8ta/ridewise/internal/core/repository"
	"github.com/sm8ta/ridewise/internal/core/storage"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type stubCatalog struct {
	types []domain.ServiceType
	err   error
	calls int
}

func (c *stubCatalog) ServiceTypes(context.Context) ([]domain.ServiceType, error) {
	c.calls++
	return c.types, c.err
}

func (c *stubCatalog) Invalidate() {}

type memoryBackups struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (b *memoryBackups) Upload(_ context.Context, key string, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.objects == nil {
		b.objects = map[string][]byte{}
	}
	b.objects[key] = append([]byte(nil), data...)
	return nil
}

func (b *memoryBackups) Download(_ context.Context, key string) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	data, ok := b.objects[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return data, nil
}

func (b *memoryBackups) List(_ context.Context, prefix string) ([]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	var keys []string
	for k := range b.objects {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

type fixture struct {
	repo    *repository.Repository
	bikes   *BikeService
	log     *ServiceLogService
	stats   *StatsService
	prefs   *PreferencesService
	data    *DataService
	catalog *stubCatalog
	backups *memoryBackups
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	log := logger.NewNopLogger()

	store := storage.Open(ctx, memory.New(), storage.Options{Logger: log, Clock: func() time.Time { return testNow }})
	repo := repository.New(store, log, repository.WithClock(func() time.Time { return testNow }))
	repo.Init(ctx)

	validate := newValidator(func() time.Time { return testNow })
	catalog := &stubCatalog{types: []domain.ServiceType{
		{ID: "oil_change", Label: "Oil change"},
		{ID: "chain_lube", Label: "Chain clean & lube"},
	}}
	backups := &memoryBackups{}

	bikes := NewBikeService(repo, log, validate)
	bikes.now = func() time.Time { return testNow }
	data := NewDataService(repo, backups, log)
	data.now = func() time.Time { return testNow }

	return &fixture{
		repo:    repo,
		bikes:   bikes,
		log:     NewServiceLogService(repo, catalog, log, validate),
		stats:   NewStatsService(repo, log),
		prefs:   NewPreferencesService(repo, log, validate),
		data:    data,
		catalog: catalog,
		backups: backups,
	}
}

func str(s string) *string {
	return &s
}

func TestBikeService_CreateBike(t *testing.T) {
	f := newFixture(t)

	bike, err := f.bikes.CreateBike(context.Background(), domain.BikePatch{
		Make:  str("Triumph"),
		Model: str("Bonneville"),
		Year:  domain.NumberOf(2023),
	})
	require.NoError(t, err)

	assert.Equal(t, "Triumph", bike.Make)
	assert.Len(t, f.repo.ListBikes(), 3)
}

func TestBikeService_CreateBikeRejectsInvalidInput(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name  string
		patch domain.BikePatch
	}{
		{name: "year too old", patch: domain.BikePatch{Year: domain.NumberOf(1700)}},
		{name: "year too far ahead", patch: domain.BikePatch{Year: domain.NumberOf(2030)}},
		{name: "negative odometer", patch: domain.BikePatch{Odometer: domain.NumberOf(-5)}},
		{name: "bad vin", patch: domain.BikePatch{VIN: str("ab")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.bikes.CreateBike(context.Background(), tt.patch)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
	assert.Len(t, f.repo.ListBikes(), 2)
}

func TestBikeService_SaveBike(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	bike, err := f.bikes.SaveBike(ctx, "bike_01", domain.BikePatch{Nickname: str("Big Red")})
	require.NoError(t, err)
	assert.Equal(t, "Big Red", bike.Nickname)
	assert.Equal(t, "Honda", bike.Make)

	created, err := f.bikes.SaveBike(ctx, "garage_3", domain.BikePatch{Make: str("Vespa")})
	require.NoError(t, err)
	assert.Equal(t, "garage_3", created.ID)
	assert.Equal(t, 2025, created.Year)
}

func TestBikeService_GetBikeNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.bikes.GetBike(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestBikeService_GetBikeDetail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.log.CreateService(ctx, domain.ServicePatch{
		BikeID:        str("bike_01"),
		Date:          str("2024-04-05"),
		Odometer:      domain.NumberOf(8300),
		ServiceTypeID: str("chain_lube"),
		Cost:          domain.ParseNumeric("35.00"),
	})
	require.NoError(t, err)

	detail, err := f.bikes.GetBikeDetail(ctx, "bike_01", query.Filter{}, query.SortDateDesc)
	require.NoError(t, err)

	require.Len(t, detail.Services, 2)
	assert.Equal(t, "svc_seed_1", detail.Services[0].ID)
	assert.Equal(t, 99.99, detail.Stats.TotalCost)
	assert.Equal(t, 8200.0, *detail.Stats.LastOdometer)

	filtered, err := f.bikes.GetBikeDetail(ctx, "bike_01", query.Filter{ServiceTypeID: "chain_lube"}, query.SortDateDesc)
	require.NoError(t, err)
	require.Len(t, filtered.Services, 1)
	assert.Equal(t, 2, filtered.Stats.EntryCount)
	assert.Equal(t, 99.99, filtered.Stats.TotalCost)
}

func TestBikeService_ListBikesByServiceType(t *testing.T) {
	f := newFixture(t)

	bikes := f.bikes.ListBikes(context.Background(), "oil_change")
	require.Len(t, bikes, 1)
	assert.Equal(t, "bike_01", bikes[0].ID)
}

func TestServiceLogService_CreateResolvesLabel(t *testing.T) {
	f := newFixture(t)

	entry, err := f.log.CreateService(context.Background(), domain.ServicePatch{
		BikeID:        str("bike_02"),
		Date:          str("2024-05-01"),
		ServiceTypeID: str("chain_lube"),
	})
	require.NoError(t, err)

	assert.Equal(t, "Chain clean & lube", entry.TypeLabel)
	assert.Nil(t, entry.Cost)
}

func TestServiceLogService_CatalogOutageKeepsLabel(t *testing.T) {
	f := newFixture(t)
	f.catalog.err = errors.New("offline")

	entry, err := f.log.CreateService(context.Background(), domain.ServicePatch{
		BikeID:        str("bike_02"),
		Date:          str("2024-05-01"),
		ServiceTypeID: str("chain_lube"),
	})
	require.NoError(t, err)
	assert.Empty(t, entry.TypeLabel)
}

func TestServiceLogService_CreateRejectsInvalidInput(t *testing.T) {
	f := newFixture(t)
	valid := func() domain.ServicePatch {
		return domain.ServicePatch{
			BikeID:        str("bike_01"),
			Date:          str("2024-05-01"),
			ServiceTypeID: str("oil_change"),
		}
	}

	tests := []struct {
		name   string
		mutate func(p *domain.ServicePatch)
	}{
		{name: "missing bike", mutate: func(p *domain.ServicePatch) { p.BikeID = nil }},
		{name: "unknown bike", mutate: func(p *domain.ServicePatch) { p.BikeID = str("ghost") }},
		{name: "missing date", mutate: func(p *domain.ServicePatch) { p.Date = nil }},
		{name: "bad date", mutate: func(p *domain.ServicePatch) { p.Date = str("05/01/2024") }},
		{name: "missing type", mutate: func(p *domain.ServicePatch) { p.ServiceTypeID = nil }},
		{name: "negative cost", mutate: func(p *domain.ServicePatch) { p.Cost = domain.NumberOf(-1) }},
		{name: "fractional cents", mutate: func(p *domain.ServicePatch) { p.Cost = domain.NumberOf(1.005) }},
		{name: "negative hours", mutate: func(p *domain.ServicePatch) { p.Hours = domain.NumberOf(-2) }},
		{name: "duplicate id", mutate: func(p *domain.ServicePatch) { p.ID = str("svc_seed_1") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid()
			tt.mutate(&p)
			_, err := f.log.CreateService(context.Background(), p)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
	assert.Len(t, f.repo.ListServices(), 1)
}

func TestServiceLogService_UpdateService(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	entry, err := f.log.UpdateService(ctx, "svc_seed_1", domain.ServicePatch{Notes: str("Also checked chain slack")})
	require.NoError(t, err)
	assert.Equal(t, "Also checked chain slack", entry.Notes)
	assert.Equal(t, 64.99, *entry.Cost)

	_, err = f.log.UpdateService(ctx, "missing", domain.ServicePatch{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestServiceLogService_UpdateToleratesDanglingBike(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.repo.UpsertService(ctx, domain.ServicePatch{
		ID:            str("orphan"),
		BikeID:        str("sold_bike"),
		Date:          str("2020-01-01"),
		ServiceTypeID: str("oil_change"),
	})
	require.NoError(t, err)

	entry, err := f.log.UpdateService(ctx, "orphan", domain.ServicePatch{Vendor: str("Dealer")})
	require.NoError(t, err)
	assert.Equal(t, "Dealer", entry.Vendor)
}

func TestServiceLogService_ListAndDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	entries := f.log.ListServices(ctx, query.Filter{Query: "synthetic"}, query.SortDateDesc)
	require.Len(t, entries, 1)

	require.NoError(t, f.log.DeleteService(ctx, "svc_seed_1"))
	require.NoError(t, f.log.DeleteService(ctx, "svc_seed_1"))
	assert.Empty(t, f.log.ListServices(ctx, query.Filter{}, query.SortDateDesc))

	_, err := f.log.GetService(ctx, "svc_seed_1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStatsService_Dashboard(t *testing.T) {
	f := newFixture(t)

	dash := f.stats.Dashboard(context.Background(), "")

	assert.Equal(t, 2, dash.Fleet.BikeCount)
	assert.Equal(t, 1, dash.Fleet.ServiceCount)
	assert.Equal(t, 64.99, dash.Fleet.TotalCost)
	require.Len(t, dash.Bikes, 2)
	assert.Equal(t, 1, dash.Bikes[0].Stats.EntryCount)
	assert.Equal(t, 0, dash.Bikes[1].Stats.EntryCount)

	assert.Len(t, f.stats.Dashboard(context.Background(), "oil_change").Bikes, 1)
}

func TestPreferencesService_Update(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	km := domain.Kilometers

	prefs, err := f.prefs.UpdatePreferences(ctx, domain.PreferencesPatch{Distance: &km, Currency: str("EUR")})
	require.NoError(t, err)
	assert.Equal(t, domain.Kilometers, prefs.Distance)
	assert.Equal(t, "EUR", f.prefs.GetPreferences(ctx).Currency)

	celsius := domain.Celsius
	prefs, err = f.prefs.UpdatePreferences(ctx, domain.PreferencesPatch{Temperature: &celsius})
	require.NoError(t, err)
	assert.Equal(t, domain.Celsius, prefs.Temperature)
	assert.Equal(t, domain.Kilometers, prefs.Distance)

	kelvin := domain.TemperatureUnit("kelvin")
	_, err = f.prefs.UpdatePreferences(ctx, domain.PreferencesPatch{Temperature: &kelvin})
	assert.ErrorIs(t, err, domain.ErrValidation)

	bad := domain.Theme("neon")
	_, err = f.prefs.UpdatePreferences(ctx, domain.PreferencesPatch{Theme: &bad})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.prefs.UpdatePreferences(ctx, domain.PreferencesPatch{Currency: str("DOLLARS")})
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, "EUR", f.prefs.GetPreferences(ctx).Currency)
}

func TestDataService_BackupAndRestore(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	key, err := f.data.Backup(ctx)
	require.NoError(t, err)
	assert.Equal(t, "backups/ridewise-20250601T120000Z.json", key)

	require.NoError(t, f.log.DeleteService(ctx, "svc_seed_1"))
	assert.Empty(t, f.repo.ListServices())

	_, err = f.data.Restore(ctx, "")
	require.NoError(t, err)
	assert.Len(t, f.repo.ListServices(), 1)
}

func TestDataService_BackupUnavailable(t *testing.T) {
	f := newFixture(t)
	data := NewDataService(f.repo, nil, logger.NewNopLogger())

	_, err := data.Backup(context.Background())
	assert.ErrorIs(t, err, domain.ErrBackupUnavailable)
	_, err = data.Restore(context.Background(), "x")
	assert.ErrorIs(t, err, domain.ErrBackupUnavailable)
}

func TestDataService_ImportRejectsMalformed(t *testing.T) {
	f := newFixture(t)

	_, err := f.data.Import(context.Background(), "[]")
	assert.ErrorIs(t, err, domain.ErrMalformedImport)
	assert.Len(t, f.repo.ListBikes(), 2)
}

func TestDataService_ImportDefaultsLegacyYear(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.data.Import(ctx, `{"schemaVersion":1,"bikes":[{"id":"old","name":"Old","year":"unknown"}],"services":[]}`)
	require.NoError(t, err)

	bike, err := f.bikes.SaveBike(ctx, "old", domain.BikePatch{Name: str("Renamed")})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", bike.Name)
	assert.Equal(t, testNow.Year(), bike.Year)
}

var _ ports.BackupStorage = (*memoryBackups)(nil)
