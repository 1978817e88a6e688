package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// AppConfig holds file and environment driven configuration values.
// Sensitive data should never have defaults inside code and must be provided via the config file or the environment.
type AppConfig struct {
	App       AppSection       `mapstructure:"app"`
	Gin       GinSection       `mapstructure:"gin"`
	Database  DatabaseSection  `mapstructure:"database"`
	Redis     RedisSection     `mapstructure:"redis"`
	Log       LogSection       `mapstructure:"log"`
	Storage   StorageSection   `mapstructure:"storage"`
	Board     BoardSection     `mapstructure:"board"`
	Telemetry TelemetrySection `mapstructure:"telemetry"`
}

type AppSection struct {
	Name               string   `mapstructure:"name"`
	Port               string   `mapstructure:"port"`
	JWTSecret          string   `mapstructure:"jwt_secret"`
	RateLimitPerMinute int      `mapstructure:"rate_limit_per_minute"`
	AllowedOrigins     []string `mapstructure:"allowed_origins"`
}

type GinSection struct {
	Mode    string `mapstructure:"mode"`
	LogPath string `mapstructure:"log_path"`
}

// DatabaseSection selects the gorm dialect. URI wins over the discrete fields when set.
type DatabaseSection struct {
	Driver   string `mapstructure:"driver"` // mysql | postgres | sqlite
	URI      string `mapstructure:"uri"`
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
}

type RedisSection struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	DB       int    `mapstructure:"db"`
	Password string `mapstructure:"password"`
}

type LogSection struct {
	Level      string `mapstructure:"level"`
	Path       string `mapstructure:"path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// StorageSection configures the object store that keeps post media.
type StorageSection struct {
	Driver          string `mapstructure:"driver"` // local | gcs
	LocalDir        string `mapstructure:"local_dir"`
	PublicBaseURL   string `mapstructure:"public_base_url"`
	Bucket          string `mapstructure:"bucket"`
	CredentialsFile string `mapstructure:"credentials_file"`
	StagingDir      string `mapstructure:"staging_dir"`
	MaxUploadMB     int    `mapstructure:"max_upload_mb"`
	StagingMaxAge   int    `mapstructure:"staging_max_age_minutes"`
}

type BoardSection struct {
	DefaultPageSize int `mapstructure:"default_page_size"`
	MaxPageSize     int `mapstructure:"max_page_size"`
}

type TelemetrySection struct {
	SentryDSN    string `mapstructure:"sentry_dsn"`
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
}

// envBindings keeps the historical flat variable names working.
var envBindings = map[string]string{
	"app.port":                        "APP_PORT",
	"app.jwt_secret":                  "JWT_SECRET",
	"app.rate_limit_per_minute":       "RATE_LIMIT_PER_MINUTE",
	"app.allowed_origins":             "CORS_ALLOWED_ORIGINS",
	"gin.mode":                        "GIN_MODE",
	"gin.log_path":                    "GIN_PATH",
	"database.driver":                 "DB_DRIVER",
	"database.uri":                    "DATABASE_URI",
	"database.host":                   "DB_HOST",
	"database.port":                   "DB_PORT",
	"database.user":                   "DB_USER",
	"database.password":               "DB_PASSWORD",
	"database.name":                   "DB_NAME",
	"redis.host":                      "REDIS_HOST",
	"redis.port":                      "REDIS_PORT",
	"redis.db":                        "REDIS_DB",
	"redis.password":                  "REDIS_PASSWORD",
	"log.level":                       "LOG_LEVEL",
	"log.path":                        "LOG_PATH",
	"log.max_size_mb":                 "LOG_MAX_SIZE_MB",
	"log.max_backups":                 "LOG_MAX_BACKUPS",
	"log.max_age_days":                "LOG_MAX_AGE_DAYS",
	"log.compress":                    "LOG_COMPRESS",
	"storage.driver":                  "STORAGE_DRIVER",
	"storage.local_dir":               "STORAGE_LOCAL_DIR",
	"storage.public_base_url":         "STORAGE_PUBLIC_BASE_URL",
	"storage.bucket":                  "STORAGE_BUCKET",
	"storage.credentials_file":        "STORAGE_CREDENTIALS_FILE",
	"storage.staging_dir":             "STORAGE_STAGING_DIR",
	"storage.max_upload_mb":           "STORAGE_MAX_UPLOAD_MB",
	"storage.staging_max_age_minutes": "STORAGE_STAGING_MAX_AGE_MINUTES",
	"board.default_page_size":         "BOARD_DEFAULT_PAGE_SIZE",
	"board.max_page_size":             "BOARD_MAX_PAGE_SIZE",
	"telemetry.sentry_dsn":            "SENTRY_DSN",
	"telemetry.otlp_endpoint":         "OTEL_EXPORTER_OTLP_ENDPOINT",
}

// Load reads configuration with precedence: defaults -> config file (optional) -> environment variables.
func Load(path string) (AppConfig, error) {
	v := viper.New()
	applyDefaults(v)

	// a missing file is fine, a broken one is not
	if _, err := os.Stat(path); path != "" && err == nil {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return AppConfig{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return AppConfig{}, fmt.Errorf("bind env %s: %w", env, err)
		}
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return AppConfig{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.App.AllowedOrigins = splitAndTrim(cfg.App.AllowedOrigins)

	if cfg.App.JWTSecret == "" {
		return AppConfig{}, errors.New("JWT_SECRET must be set in config or environment")
	}
	return cfg, nil
}

// applyDefaults sets sane defaults for every known key so env overrides can be decoded.
func applyDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "prierboard")
	v.SetDefault("app.port", "8080")
	v.SetDefault("app.jwt_secret", "")
	v.SetDefault("app.rate_limit_per_minute", 60)
	v.SetDefault("app.allowed_origins", []string{"*"})

	v.SetDefault("gin.mode", "release")
	v.SetDefault("gin.log_path", "logs/go_gin.log")

	v.SetDefault("database.driver", "mysql")
	v.SetDefault("database.uri", "")
	v.SetDefault("database.host", "127.0.0.1")
	v.SetDefault("database.port", "3306")
	v.SetDefault("database.user", "root")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "prierboard")

	v.SetDefault("redis.host", "127.0.0.1")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.password", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.path", "")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 7)
	v.SetDefault("log.compress", false)

	v.SetDefault("storage.driver", "local")
	v.SetDefault("storage.local_dir", "static/uploads")
	v.SetDefault("storage.public_base_url", "/static/uploads")
	v.SetDefault("storage.bucket", "")
	v.SetDefault("storage.credentials_file", "")
	v.SetDefault("storage.staging_dir", filepath.Join(os.TempDir(), "prierboard-staging"))
	v.SetDefault("storage.max_upload_mb", 50)
	v.SetDefault("storage.staging_max_age_minutes", 60)

	v.SetDefault("board.default_page_size", 20)
	v.SetDefault("board.max_page_size", 100)

	v.SetDefault("telemetry.sentry_dsn", "")
	v.SetDefault("telemetry.otlp_endpoint", "")
}

// splitAndTrim flattens comma separated entries (env values arrive as one string).
func splitAndTrim(raw []string) []string {
	items := []string{}
	for _, entry := range raw {
		for _, item := range strings.Split(entry, ",") {
			if trimmed := strings.TrimSpace(item); trimmed != "" {
				items = append(items, trimmed)
			}
		}
	}
	return items
}
