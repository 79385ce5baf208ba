package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const (
	DriverFile     = "file"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
	DriverMemory   = "memory"
)

type (
	Container struct {
		App     App     `yaml:"app"`
		Log     Log     `yaml:"log"`
		Storage Storage `yaml:"storage"`
		DB      DB      `yaml:"db"`
		Redis   Redis   `yaml:"redis"`
		HTTP    HTTP    `yaml:"http"`
		Token   Token   `yaml:"token"`
		Catalog Catalog `yaml:"catalog"`
		NHTSA   NHTSA   `yaml:"nhtsa"`
		Minio   Minio   `yaml:"minio"`
	}

	App struct {
		Name string `yaml:"name" env:"APP_NAME" env-default:"ridewise"`
		Env  string `yaml:"env"  env:"APP_ENV"  env-default:"development"`
	}

	Log struct {
		Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
		Output string `yaml:"output" env:"LOG_OUTPUT" env-default:"stdout"`
	}

	// Storage selects where the document lives.
	Storage struct {
		Driver     string `yaml:"driver"      env:"STORAGE_DRIVER" env-default:"file"`
		Key        string `yaml:"key"         env:"STORAGE_KEY"    env-default:"ridewise-data"`
		DataDir    string `yaml:"data_dir"    env:"STORAGE_DIR"    env-default:"./data"`
		SQLitePath string `yaml:"sqlite_path" env:"SQLITE_PATH"    env-default:"./data/ridewise.db"`
	}

	DB struct {
		Host          string `yaml:"host"           env:"DB_HOST"`
		Port          string `yaml:"port"           env:"DB_PORT"           env-default:"5432"`
		User          string `yaml:"user"           env:"DB_USER"`
		Password      string `yaml:"password"       env:"DB_PASSWORD"`
		Name          string `yaml:"name"           env:"DB_NAME"`
		SSLMode       string `yaml:"ssl_mode"       env:"DB_SSLMODE"        env-default:"disable"`
		MigrationsDir string `yaml:"migrations_dir" env:"DB_MIGRATIONS_DIR" env-default:"./internal/adapter/postgres/migrations"`
	}

	HTTP struct {
		Env            string `yaml:"-"               env:"APP_ENV"         env-default:"development"`
		URL            string `yaml:"url"             env:"HTTP_URL"`
		Port           string `yaml:"port"            env:"HTTP_PORT"       env-default:"8081"`
		AllowedOrigins string `yaml:"allowed_origins" env:"ALLOWED_ORIGINS" env-default:"http://localhost:5173"`
	}

	Redis struct {
		Address  string `yaml:"address"  env:"REDIS_ADDRESS"`
		Password string `yaml:"password" env:"REDIS_PASSWORD"`
		DB       int    `yaml:"db"       env:"REDIS_DB" env-default:"0"`
	}

	// Token enables bearer auth when Secret is set.
	Token struct {
		Secret string `yaml:"secret" env:"TOKEN_SECRET"`
	}

	Catalog struct {
		URL  string `yaml:"url"  env:"SERVICE_TYPES_URL"`
		Path string `yaml:"path" env:"SERVICE_TYPES_PATH"`
	}

	NHTSA struct {
		URL string `yaml:"url" env:"NHTSA_URL" env-default:"https://vpic.nhtsa.dot.gov/api/vehicles"`
	}

	// Minio enables backups when Endpoint is set.
	Minio struct {
		Endpoint        string `yaml:"endpoint"   env:"MINIO_ENDPOINT"`
		AccessKeyID     string `yaml:"access_key" env:"MINIO_ACCESS_KEY"`
		SecretAccessKey string `yaml:"secret_key" env:"MINIO_SECRET_KEY"`
		UseSSL          bool   `yaml:"use_ssl"    env:"MINIO_USE_SSL"  env-default:"false"`
		Bucket          string `yaml:"bucket"     env:"MINIO_BUCKET"   env-default:"ridewise-backups"`
		Region          string `yaml:"region"     env:"MINIO_REGION"`
	}
)

// New loads .env outside production, then the optional YAML file named by
// CONFIG_PATH, then the environment.
func New() (*Container, error) {
	if os.Getenv("APP_ENV") != "production" {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load .env: %w", err)
		}
	}

	var cfg Container
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}

func (c *Container) Validate() error {
	c.Storage.Driver = strings.ToLower(strings.TrimSpace(c.Storage.Driver))
	switch c.Storage.Driver {
	case DriverFile, DriverSQLite, DriverMemory:
	case DriverPostgres:
		if c.DB.Host == "" || c.DB.Name == "" {
			return errors.New("storage driver postgres needs DB_HOST and DB_NAME")
		}
	case DriverRedis:
		if c.Redis.Address == "" {
			return errors.New("storage driver redis needs REDIS_ADDRESS")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if strings.TrimSpace(c.Storage.Key) == "" {
		return errors.New("storage key must not be empty")
	}
	if c.Minio.Endpoint != "" && c.Minio.Bucket == "" {
		return errors.New("minio bucket must not be empty")
	}
	return nil
}

func (d DB) DSN() string {
	dsn := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     d.Host + ":" + d.Port,
		Path:     d.Name,
		RawQuery: url.Values{"sslmode": {d.SSLMode}}.Encode(),
	}
	return dsn.String()
}

func (h HTTP) Addr() string {
	return fmt.Sprintf("%s:%s", h.URL, h.Port)
}
