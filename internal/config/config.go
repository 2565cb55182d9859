package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Matching MatchingConfig
}

type AppConfig struct {
	AppName     string
	Environment string
	HTTPPort    string
	LogJSON     bool
	Debug       bool
}

type DatabaseConfig struct {
	Driver     string
	DBHost     string
	DBPort     string
	DBName     string
	DBUser     string
	DBPassword string
	DBSSLMode  string

	ConnectTimeout        time.Duration
	PoolMaxConns          int32
	PoolMinConns          int32
	PoolMaxConnLifetime   time.Duration
	PoolMaxConnIdleTime   time.Duration
	PoolHealthCheckPeriod time.Duration

	MigrationsDir string
}

type RedisConfig struct {
	URL     string
	LockTTL time.Duration
}

type JWTConfig struct {
	AccessSecret     string
	RefreshSecret    string
	AccessExpiresIn  time.Duration
	RefreshExpiresIn time.Duration
}

type MatchingConfig struct {
	WeightsFile string
	RadiusKm    float64
	Workers     int
	QueueSize   int
	PairTimeout time.Duration
	BatchSize   int
	SweepSpec   string
	SweepRPS    float64
}

var errMissingRequiredEnv = errors.New("missing required environment variables")

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_NAME", "parttime-match")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("HTTP_PORT", "8080")
	v.SetDefault("STORAGE_DRIVER", DriverPostgres)
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_CONNECT_TIMEOUT", "5s")
	v.SetDefault("MIGRATIONS_DIR", "migrations")
	v.SetDefault("REDIS_LOCK_TTL", "30s")
	v.SetDefault("JWT_ACCESS_TTL", "15m")
	v.SetDefault("JWT_REFRESH_TTL", "168h")
	v.SetDefault("MATCH_WORKERS", 4)
	v.SetDefault("MATCH_QUEUE_SIZE", 1024)
	v.SetDefault("MATCH_PAIR_TIMEOUT", "2s")
	v.SetDefault("MATCH_BATCH_SIZE", 500)
	v.SetDefault("MATCH_SWEEP_SPEC", "@every 6h")
	v.SetDefault("MATCH_SWEEP_RPS", 50.0)
}

// Load reads configuration from the environment and, when set on v, a config
// file. A nil v reads the environment only.
func Load(v *viper.Viper) (Config, error) {
	if v == nil {
		v = viper.New()
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	cfg := Config{}

	var missing []string
	req := func(key string) string {
		s := strings.TrimSpace(v.GetString(key))
		if s == "" {
			missing = append(missing, key)
		}
		return s
	}
	opt := func(key string) string {
		return strings.TrimSpace(v.GetString(key))
	}

	cfg.App = AppConfig{
		AppName:     req("APP_NAME"),
		Environment: req("APP_ENV"),
		HTTPPort:    req("HTTP_PORT"),
		LogJSON:     v.GetBool("json"),
		Debug:       v.GetBool("debug"),
	}

	driver := strings.ToLower(opt("STORAGE_DRIVER"))
	if driver != DriverPostgres && driver != DriverMemory {
		return Config{}, fmt.Errorf("unsupported STORAGE_DRIVER %q", driver)
	}
	dbField := opt
	if driver == DriverPostgres {
		dbField = req
	}

	cfg.Database = DatabaseConfig{
		Driver:                driver,
		DBHost:                dbField("DB_HOST"),
		DBPort:                dbField("DB_PORT"),
		DBName:                dbField("DB_NAME"),
		DBUser:                dbField("DB_USER"),
		DBPassword:            opt("DB_PASSWORD"),
		DBSSLMode:             opt("DB_SSL_MODE"),
		ConnectTimeout:        v.GetDuration("DB_CONNECT_TIMEOUT"),
		PoolMaxConns:          v.GetInt32("DB_POOL_MAX_CONNS"),
		PoolMinConns:          v.GetInt32("DB_POOL_MIN_CONNS"),
		PoolMaxConnLifetime:   v.GetDuration("DB_POOL_MAX_CONN_LIFETIME"),
		PoolMaxConnIdleTime:   v.GetDuration("DB_POOL_MAX_CONN_IDLE_TIME"),
		PoolHealthCheckPeriod: v.GetDuration("DB_POOL_HEALTH_CHECK_PERIOD"),
		MigrationsDir:         opt("MIGRATIONS_DIR"),
	}

	cfg.Redis = RedisConfig{
		URL:     opt("REDIS_URL"),
		LockTTL: v.GetDuration("REDIS_LOCK_TTL"),
	}

	cfg.JWT = JWTConfig{
		AccessSecret:     req("JWT_ACCESS_SECRET"),
		RefreshSecret:    req("JWT_REFRESH_SECRET"),
		AccessExpiresIn:  v.GetDuration("JWT_ACCESS_TTL"),
		RefreshExpiresIn: v.GetDuration("JWT_REFRESH_TTL"),
	}

	cfg.Matching = MatchingConfig{
		WeightsFile: opt("MATCH_WEIGHTS_FILE"),
		RadiusKm:    v.GetFloat64("MATCH_RADIUS_KM"),
		Workers:     v.GetInt("MATCH_WORKERS"),
		QueueSize:   v.GetInt("MATCH_QUEUE_SIZE"),
		PairTimeout: v.GetDuration("MATCH_PAIR_TIMEOUT"),
		BatchSize:   v.GetInt("MATCH_BATCH_SIZE"),
		SweepSpec:   opt("MATCH_SWEEP_SPEC"),
		SweepRPS:    v.GetFloat64("MATCH_SWEEP_RPS"),
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("%w: %s", errMissingRequiredEnv, strings.Join(missing, ", "))
	}
	if cfg.Matching.Workers <= 0 {
		return Config{}, fmt.Errorf("MATCH_WORKERS must be positive, got %d", cfg.Matching.Workers)
	}

	return cfg, nil
}
