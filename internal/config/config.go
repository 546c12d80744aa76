// Package config - конфигурация StoreHub (viper).
//
// Приоритет: STOREHUB_* и короткие алиасы (DATABASE_URL, PORT, ...),
// затем configs/config.yaml, затем setDefaults.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "STOREHUB"

// ============================================
// Main Configuration
// ============================================

// Config - главная структура конфигурации приложения.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Auth      AuthConfig      `mapstructure:"auth"`
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Log       LogConfig       `mapstructure:"log"`
	Storage   StorageConfig   `mapstructure:"storage"`
	NATS      NATSConfig      `mapstructure:"nats"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Tracing   TracingConfig   `mapstructure:"tracing"`
	Users     UsersConfig     `mapstructure:"users"`
}

// ============================================
// App Configuration
// ============================================

// AppConfig - конфигурация приложения.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"` // development, staging, production
	Debug       bool   `mapstructure:"debug"`
}

// IsDevelopment возвращает true если окружение development.
func (c *AppConfig) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction возвращает true если окружение production.
func (c *AppConfig) IsProduction() bool {
	return c.Environment == "production"
}

// ============================================
// Server Configuration
// ============================================

// ServerConfig - конфигурация HTTP сервера.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout"`
	MaxUploadSize     int64         `mapstructure:"max_upload_size"` // bytes, multipart photos
	MaxHeaderBytes    int           `mapstructure:"max_header_bytes"`
}

// Address возвращает полный адрес сервера.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// ============================================
// Database Configuration
// ============================================

// Database drivers.
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// DatabaseConfig - конфигурация хранилища.
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"` // postgres, memory
	URL             string        `mapstructure:"url"`    // перекрывает host/port/...
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Database        string        `mapstructure:"database"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxConnections  int32         `mapstructure:"max_connections"`
	MinConnections  int32         `mapstructure:"min_connections"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `mapstructure:"max_conn_idle_time"`
	MaxRetries      int           `mapstructure:"max_retries"` // serialization failure retries
	ConnectAttempts int           `mapstructure:"connect_attempts"`
}

// DSN возвращает строку подключения к PostgreSQL.
func (c *DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Database,
		c.SSLMode,
	)
}

// ============================================
// Auth Configuration
// ============================================

// AuthConfig - конфигурация аутентификации.
// Токены выпускает внешний сервис; здесь только проверка подписи.
type AuthConfig struct {
	JWTSecret      string `mapstructure:"jwt_secret"`
	JWTIssuer      string `mapstructure:"jwt_issuer"`
	EnableMockAuth bool   `mapstructure:"enable_mock_auth"` // Только для development!
}

// ============================================
// CORS Configuration
// ============================================

// CORSConfig - конфигурация CORS.
type CORSConfig struct {
	AllowedOrigins   []string      `mapstructure:"allowed_origins"`
	AllowedMethods   []string      `mapstructure:"allowed_methods"`
	AllowedHeaders   []string      `mapstructure:"allowed_headers"`
	ExposedHeaders   []string      `mapstructure:"exposed_headers"`
	AllowCredentials bool          `mapstructure:"allow_credentials"`
	MaxAge           time.Duration `mapstructure:"max_age"`
}

// ============================================
// Rate Limit Configuration
// ============================================

// RateLimitConfig - конфигурация rate limiting.
type RateLimitConfig struct {
	Enabled           bool          `mapstructure:"enabled"`
	RequestsPerMinute int           `mapstructure:"requests_per_minute"`
	WriteOpsPerMin    int           `mapstructure:"write_ops_per_min"` // create/update/delete
	CleanupInterval   time.Duration `mapstructure:"cleanup_interval"` // in-memory store, без Redis
}

// ============================================
// Log Configuration
// ============================================

// LogConfig - конфигурация логирования.
type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, text
	Output string `mapstructure:"output"` // stdout, stderr
}

// ============================================
// Storage Configuration
// ============================================

// Storage drivers.
const (
	StorageLocal = "local"
	StorageS3    = "s3"
)

// StorageConfig - где хранятся байты фотографий.
type StorageConfig struct {
	Driver  string   `mapstructure:"driver"` // local, s3
	Dir     string   `mapstructure:"dir"`
	BaseURL string   `mapstructure:"base_url"`
	S3      S3Config `mapstructure:"s3"`
}

// S3Config - S3 или совместимое хранилище (MinIO).
type S3Config struct {
	Bucket       string `mapstructure:"bucket"`
	Region       string `mapstructure:"region"`
	Endpoint     string `mapstructure:"endpoint"`
	AccessKey    string `mapstructure:"access_key"`
	SecretKey    string `mapstructure:"secret_key"`
	UsePathStyle bool   `mapstructure:"use_path_style"`
	PublicURL    string `mapstructure:"public_url"`
}

// ============================================
// Messaging / Cache / Tracing
// ============================================

// NATSConfig - публикация domain events и очередь писем.
// Пустой URL = события не публикуются.
type NATSConfig struct {
	URL           string `mapstructure:"url"`
	SubjectPrefix string `mapstructure:"subject_prefix"`
	MailSubject   string `mapstructure:"mail_subject"`
}

// RedisConfig - кэш карточек товаров.
type RedisConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	URL     string        `mapstructure:"url"`
	TTL     time.Duration `mapstructure:"ttl"`
}

// TracingConfig - OTLP exporter.
type TracingConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	Endpoint    string  `mapstructure:"endpoint"`
	Insecure    bool    `mapstructure:"insecure"`
	SampleRatio float64 `mapstructure:"sample_ratio"`
}

// UsersConfig - параметры пользовательского workflow.
type UsersConfig struct {
	ActivationURL string `mapstructure:"activation_url"` // префикс ссылки активации
	BcryptCost    int    `mapstructure:"bcrypt_cost"`
}

// ============================================
// Configuration Loading
// ============================================

// Load загружает конфигурацию из файла и переменных окружения.
//
// configPath - путь к директории с конфигурацией (например, "configs")
// configName - имя файла конфигурации без расширения (например, "config")
func Load(configPath, configName string) (*Config, error) {
	v := newViper()

	v.SetConfigName(configName)
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	v.AddConfigPath("/etc/storehub")

	// без файла работаем на defaults и env
	if err := v.ReadInConfig(); err != nil && !errors.As(err, new(viper.ConfigFileNotFoundError)) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return decode(v)
}

// LoadFromEnv загружает конфигурацию только из переменных окружения.
func LoadFromEnv() (*Config, error) {
	return decode(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnvVars(v)
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// setDefaults устанавливает значения по умолчанию.
func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "StoreHub")
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.debug", true)

	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.read_header_timeout", "5s")
	v.SetDefault("server.max_header_bytes", 1<<20)
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "60s")
	v.SetDefault("server.shutdown_timeout", "30s")
	v.SetDefault("server.max_upload_size", 10<<20)

	// Database defaults
	v.SetDefault("database.driver", DriverPostgres)
	v.SetDefault("database.url", "")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.database", "storehub")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_connections", 25)
	v.SetDefault("database.min_connections", 2)
	v.SetDefault("database.max_conn_lifetime", "1h")
	v.SetDefault("database.max_conn_idle_time", "30m")
	v.SetDefault("database.max_retries", 0)
	v.SetDefault("database.connect_attempts", 5)

	// Auth defaults
	v.SetDefault("auth.jwt_secret", "change-me-in-production")
	v.SetDefault("auth.jwt_issuer", "storehub")
	v.SetDefault("auth.enable_mock_auth", true)

	// CORS defaults
	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("cors.allowed_methods", []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"})
	v.SetDefault("cors.allowed_headers", []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"})
	v.SetDefault("cors.exposed_headers", []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"})
	v.SetDefault("cors.allow_credentials", true)
	v.SetDefault("cors.max_age", "12h")

	// Rate Limit defaults
	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests_per_minute", 100)
	v.SetDefault("rate_limit.write_ops_per_min", 30)
	v.SetDefault("rate_limit.cleanup_interval", "1m")

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.output", "stdout")

	// Storage defaults
	v.SetDefault("storage.driver", StorageLocal)
	v.SetDefault("storage.dir", "./static")
	v.SetDefault("storage.base_url", "/static")
	v.SetDefault("storage.s3.bucket", "")
	v.SetDefault("storage.s3.region", "us-east-1")
	v.SetDefault("storage.s3.endpoint", "")
	v.SetDefault("storage.s3.access_key", "")
	v.SetDefault("storage.s3.secret_key", "")
	v.SetDefault("storage.s3.use_path_style", false)
	v.SetDefault("storage.s3.public_url", "")

	// Messaging / cache / tracing
	v.SetDefault("nats.url", "")
	v.SetDefault("nats.subject_prefix", "storehub")
	v.SetDefault("nats.mail_subject", "")
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.url", "redis://localhost:6379/0")
	v.SetDefault("redis.ttl", "5m")
	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.endpoint", "")
	v.SetDefault("tracing.insecure", true)
	v.SetDefault("tracing.sample_ratio", 1.0)

	// Users
	v.SetDefault("users.activation_url", "http://localhost:8080/api/v1/users/activate/")
	v.SetDefault("users.bcrypt_cost", 0)
}

// bindEnvVars привязывает переменные окружения с короткими алиасами.
func bindEnvVars(v *viper.Viper) {
	// Database (обычно передаётся через env в production)
	_ = v.BindEnv("database.url", "STOREHUB_DATABASE_URL", "DATABASE_URL")
	_ = v.BindEnv("database.host", "STOREHUB_DATABASE_HOST", "DB_HOST")
	_ = v.BindEnv("database.port", "STOREHUB_DATABASE_PORT", "DB_PORT")
	_ = v.BindEnv("database.user", "STOREHUB_DATABASE_USER", "DB_USER")
	_ = v.BindEnv("database.password", "STOREHUB_DATABASE_PASSWORD", "DB_PASSWORD")
	_ = v.BindEnv("database.database", "STOREHUB_DATABASE_DATABASE", "DB_NAME")

	// Auth
	_ = v.BindEnv("auth.jwt_secret", "STOREHUB_AUTH_JWT_SECRET", "JWT_SECRET")

	// Server
	_ = v.BindEnv("server.port", "STOREHUB_SERVER_PORT", "PORT")

	// App
	_ = v.BindEnv("app.environment", "STOREHUB_APP_ENVIRONMENT", "ENVIRONMENT", "ENV")

	// Infra
	_ = v.BindEnv("nats.url", "STOREHUB_NATS_URL", "NATS_URL")
	_ = v.BindEnv("redis.url", "STOREHUB_REDIS_URL", "REDIS_URL")
	_ = v.BindEnv("tracing.endpoint", "STOREHUB_TRACING_ENDPOINT", "OTEL_EXPORTER_OTLP_ENDPOINT")
}

// ============================================
// Configuration Validation
// ============================================

// Validate возвращает все найденные проблемы разом (errors.Join).
func (c *Config) Validate() error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if c.App.IsProduction() {
		if c.Auth.JWTSecret == "change-me-in-production" {
			fail("JWT secret must be changed in production")
		}
		if c.Auth.EnableMockAuth {
			fail("mock auth must be disabled in production")
		}
		if c.Database.Driver == DriverMemory {
			fail("memory database driver is not allowed in production")
		}
	}

	switch c.Database.Driver {
	case DriverPostgres:
		if c.Database.URL == "" && c.Database.Host == "" {
			fail("database host is required")
		}
	case DriverMemory:
	default:
		fail("unknown database driver: %q", c.Database.Driver)
	}

	switch c.Storage.Driver {
	case StorageLocal:
		if c.Storage.Dir == "" {
			fail("storage dir is required")
		}
	case StorageS3:
		if c.Storage.S3.Bucket == "" {
			fail("storage s3 bucket is required")
		}
	default:
		fail("unknown storage driver: %q", c.Storage.Driver)
	}

	if c.Redis.Enabled && c.Redis.URL == "" {
		fail("redis url is required when redis is enabled")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		fail("invalid server port: %d", c.Server.Port)
	}
	if c.Tracing.SampleRatio < 0 || c.Tracing.SampleRatio > 1 {
		fail("tracing sample_ratio must be within [0, 1], got %v", c.Tracing.SampleRatio)
	}

	return errors.Join(errs...)
}

// ============================================
// Development Helpers
// ============================================

// Development - defaults из setDefaults без env и файла, плюс локальные
// поправки. Паникует только если defaults не декодируются в Config.
func Development() *Config {
	v := viper.New()
	setDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("config: defaults do not decode: %v", err))
	}

	cfg.App.Version = "dev"
	cfg.Server.Host = "localhost"
	cfg.Database.MaxConnections = 10
	cfg.Auth.JWTSecret = "dev-secret-key"
	cfg.Auth.JWTIssuer = "storehub-dev"
	cfg.Log.Level = "debug"
	cfg.Log.Format = "text"
	return &cfg
}

// Test возвращает конфигурацию для тестов: in-memory store, без внешних сервисов.
func Test() *Config {
	cfg := Development()
	cfg.App.Environment = "test"
	cfg.Database.Driver = DriverMemory
	cfg.Database.Database = "storehub_test"
	cfg.Storage.Dir = "/static"
	cfg.Log.Level = "error" // Меньше шума в тестах
	cfg.Users.BcryptCost = 4
	return cfg
}
