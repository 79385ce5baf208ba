package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "production")

	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, "ridewise", cfg.App.Name)
	assert.Equal(t, DriverFile, cfg.Storage.Driver)
	assert.Equal(t, "ridewise-data", cfg.Storage.Key)
	assert.Equal(t, "8081", cfg.HTTP.Port)
	assert.Equal(t, "production", cfg.HTTP.Env)
	assert.Equal(t, ":8081", cfg.HTTP.Addr())
	assert.Empty(t, cfg.Token.Secret)
	assert.Equal(t, "ridewise-backups", cfg.Minio.Bucket)
}

func TestNew_EnvOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("STORAGE_DRIVER", "Postgres")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_NAME", "ridewise")
	t.Setenv("DB_USER", "rider")
	t.Setenv("DB_PASSWORD", "p@ss")

	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, DriverPostgres, cfg.Storage.Driver)
	assert.Equal(t, "postgres://rider:p%40ss@db:5432/ridewise?sslmode=disable", cfg.DB.DSN())
}

func TestNew_RejectsIncompleteDriver(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("STORAGE_DRIVER", "redis")

	_, err := New()
	assert.Error(t, err)

	t.Setenv("STORAGE_DRIVER", "floppy")
	_, err = New()
	assert.Error(t, err)
}

func TestNew_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ridewise.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
storage:
  driver: sqlite
  sqlite_path: /var/lib/ridewise/ridewise.db
http:
  port: "9090"
`), 0o644))
	t.Setenv("APP_ENV", "production")
	t.Setenv("CONFIG_PATH", path)

	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, DriverSQLite, cfg.Storage.Driver)
	assert.Equal(t, "/var/lib/ridewise/ridewise.db", cfg.Storage.SQLitePath)
	assert.Equal(t, "9090", cfg.HTTP.Port)
}
