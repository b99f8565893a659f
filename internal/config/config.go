package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	devJWTSecret = "default_super_secret_key"
)

var Module = fx.Module("config",
	fx.Provide(Load),
)

// Config holds everything read from configs/.env and the process environment.
type Config struct {
	Env      string
	Port     string
	LogLevel string

	Database DatabaseConfig

	JWTSecret   []byte
	CORSOrigins []string

	SnowflakeNode int64

	Orders  OrderConfig
	Clients ClientConfig
}

type DatabaseConfig struct {
	Driver   string
	DSN      string
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

type OrderConfig struct {
	CodePrefix          string
	CodePad             int
	MaxServicesPerOrder int
}

type ClientConfig struct {
	// RequireSearch rejects client listings that carry no search term.
	RequireSearch bool
}

// Load reads configs/.env when present and then the environment.
func Load() (Config, error) {
	_ = godotenv.Load("configs/.env")

	cfg := Config{
		Env:      getenv("APP_ENV", EnvDevelopment),
		Port:     getenv("PORT", "8080"),
		LogLevel: getenv("LOG_LEVEL", "info"),
		Database: DatabaseConfig{
			Driver:   getenv("DB_DRIVER", DriverPostgres),
			DSN:      os.Getenv("DATABASE_DSN"),
			Host:     getenv("DB_HOST", "localhost"),
			Port:     getenv("DB_PORT", "5432"),
			User:     getenv("DB_USER", "postgres"),
			Password: getenv("DB_PASSWORD", "postgres"),
			Name:     getenv("DB_NAME", "postgres"),
			SSLMode:  getenv("DB_SSLMODE", "disable"),
		},
		CORSOrigins: splitList(getenv("CORS_ORIGINS", "http://localhost:5173,http://127.0.0.1:5173")),
		Orders: OrderConfig{
			CodePrefix: getenv("ORDER_CODE_PREFIX", "RO"),
		},
	}

	var err error
	if cfg.SnowflakeNode, err = getInt64("SNOWFLAKE_NODE", 1); err != nil {
		return Config{}, err
	}
	if cfg.SnowflakeNode < 0 || cfg.SnowflakeNode > 1023 {
		return Config{}, fmt.Errorf("SNOWFLAKE_NODE must be between 0 and 1023, got %d", cfg.SnowflakeNode)
	}
	if cfg.Orders.CodePad, err = getInt("ORDER_CODE_PAD", 6); err != nil {
		return Config{}, err
	}
	if cfg.Orders.MaxServicesPerOrder, err = getInt("MAX_SERVICES_PER_ORDER", 10); err != nil {
		return Config{}, err
	}
	if cfg.Clients.RequireSearch, err = getBool("CLIENT_LIST_REQUIRE_SEARCH", true); err != nil {
		return Config{}, err
	}

	switch cfg.Database.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return Config{}, fmt.Errorf("unsupported DB_DRIVER %q", cfg.Database.Driver)
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		if cfg.IsProduction() {
			return Config{}, errors.New("JWT_SECRET environment variable is required in production mode")
		}
		secret = devJWTSecret
	}
	cfg.JWTSecret = []byte(secret)

	return cfg, nil
}

func (c Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// PostgresDSN returns DATABASE_DSN when set, otherwise builds one from the DB_* keys.
func (d DatabaseConfig) PostgresDSN() string {
	if d.DSN != "" {
		return d.DSN
	}
	return "postgres://" + d.User + ":" + d.Password + "@" + d.Host + ":" + d.Port + "/" + d.Name + "?sslmode=" + d.SSLMode
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}

func getInt64(key string, def int64) (int64, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}

func getBool(key string, def bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
