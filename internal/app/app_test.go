package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sm8ta/ridewise/internal/config"
	"github.com/sm8ta/ridewise/internal/core/domain"
)

func testConfig(driver, dir string) *config.Container {
	return &config.Container{
		App: config.App{Name: "ridewise", Env: "test"},
		Log: config.Log{Level: "error"},
		Storage: config.Storage{
			Driver:     driver,
			Key:        "ridewise-data",
			DataDir:    dir,
			SQLitePath: filepath.Join(dir, "ridewise.db"),
		},
		HTTP:  config.HTTP{Env: "test", Port: "0"},
		NHTSA: config.NHTSA{URL: "https://vpic.nhtsa.dot.gov/api/vehicles"},
	}
}

func TestNewCore_MemoryDriver(t *testing.T) {
	a, err := NewCore(context.Background(), testConfig(config.DriverMemory, t.TempDir()))
	require.NoError(t, err)
	defer a.Close()

	assert.False(t, a.Store.Degraded())
	assert.Len(t, a.Services.Bikes.ListBikes(context.Background(), ""), 2)
	assert.Nil(t, a.HTTPRouter)
}

func TestNewCore_FileDriverPersists(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	first, err := NewCore(ctx, testConfig(config.DriverFile, dir))
	require.NoError(t, err)
	bike, err := first.Services.Bikes.CreateBike(ctx, domain.BikePatch{Make: strPtr("Triumph"), Model: strPtr("Bonneville")})
	require.NoError(t, err)
	first.Close()

	second, err := NewCore(ctx, testConfig(config.DriverFile, dir))
	require.NoError(t, err)
	defer second.Close()

	got, err := second.Services.Bikes.GetBike(ctx, bike.ID)
	require.NoError(t, err)
	assert.Equal(t, "Bonneville", got.Model)
}

func TestNewCore_SQLiteDriver(t *testing.T) {
	a, err := NewCore(context.Background(), testConfig(config.DriverSQLite, t.TempDir()))
	require.NoError(t, err)
	defer a.Close()

	assert.False(t, a.Store.Degraded())
	assert.NotNil(t, a.SQLite)
}

func TestNew_WiresRouter(t *testing.T) {
	a, err := New(context.Background(), testConfig(config.DriverMemory, t.TempDir()))
	require.NoError(t, err)
	defer a.Close()

	require.NotNil(t, a.HTTPRouter)
	assert.NotEmpty(t, a.HTTPRouter.Engine().Routes())
}

func strPtr(s string) *string { return &s }
