package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config корневая структура конфигурации сервиса карт
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Cache     CacheConfig     `yaml:"cache"`
	EventBus  EventBusConfig  `yaml:"eventbus"`
	Loader    LoaderConfig    `yaml:"loader"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Auth      AuthConfig      `yaml:"auth"`
	Catalog   CatalogConfig   `yaml:"catalog"`
	Logging   LoggingConfig   `yaml:"logging"`
}

type ServerConfig struct {
	RESTPort    int    `yaml:"rest_port"`
	MetricsPort int    `yaml:"metrics_port"`
	NodeID      string `yaml:"node_id"`
}

// StorageConfig выбор и параметры хранилища карт.
// Backend: file | badger | maria | mongo | memory
type StorageConfig struct {
	Backend string `yaml:"backend"`
	Root    string `yaml:"root"` // каталог для file и badger
	DSN     string `yaml:"dsn"`  // MariaDB/MySQL
	Table   string `yaml:"table"`

	MongoURI        string `yaml:"mongo_uri"`
	MongoDatabase   string `yaml:"mongo_database"`
	MongoCollection string `yaml:"mongo_collection"`
}

type CacheConfig struct {
	Enabled  bool          `yaml:"enabled"`
	RedisURL string        `yaml:"redis_url"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
	Prefix   string        `yaml:"prefix"`
}

type EventBusConfig struct {
	URL       string `yaml:"url"` // пустой URL: in-memory шина
	Stream    string `yaml:"stream"`
	Retention int    `yaml:"retention_hours"`
	Buffer    int    `yaml:"buffer"`
}

type LoaderConfig struct {
	Workers   int `yaml:"workers"`
	QueueSize int `yaml:"queue_size"`
}

type TelemetryConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Endpoint    string `yaml:"endpoint"`
	Insecure    bool   `yaml:"insecure"`
	ServiceName string `yaml:"service_name"`
}

// AuthConfig секрет JWT и учётные записи операторов.
// Users: имя -> bcrypt-хэш пароля (map-cli -cmd hash-password).
type AuthConfig struct {
	JWTSecret string            `yaml:"jwt_secret"`
	TokenTTL  time.Duration     `yaml:"token_ttl"`
	Users     map[string]string `yaml:"users"`
	Admins    []string          `yaml:"admins"`
}

type CatalogConfig struct {
	Path   string `yaml:"path"`
	Strict bool   `yaml:"strict"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Default возвращает конфигурацию по умолчанию
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Storage.Backend == "" {
		c.Storage.Backend = "file"
	}
	if c.Storage.Root == "" {
		c.Storage.Root = "data/maps"
	}
	if c.Storage.Table == "" {
		c.Storage.Table = "arena_maps"
	}
	if c.Storage.MongoDatabase == "" {
		c.Storage.MongoDatabase = "arena"
	}
	if c.Storage.MongoCollection == "" {
		c.Storage.MongoCollection = "maps"
	}
	if c.Cache.TTL == 0 {
		c.Cache.TTL = 10 * time.Minute
	}
	if c.Cache.Prefix == "" {
		c.Cache.Prefix = "mapblob"
	}
	if c.EventBus.Stream == "" {
		c.EventBus.Stream = "MAPS"
	}
	if c.EventBus.Retention == 0 {
		c.EventBus.Retention = 24
	}
	if c.EventBus.Buffer == 0 {
		c.EventBus.Buffer = 256
	}
	if c.Loader.QueueSize == 0 {
		c.Loader.QueueSize = 16
	}
	if c.Telemetry.ServiceName == "" {
		c.Telemetry.ServiceName = "arena-maps"
	}
	if c.Auth.TokenTTL == 0 {
		c.Auth.TokenTTL = 24 * time.Hour
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

// GetRESTPort возвращает REST API порт с поддержкой fallback значений
func (s *ServerConfig) GetRESTPort() int {
	return getPortWithEnvFallback(s.RESTPort, "ARENA_REST_PORT", 8088)
}

// GetMetricsPort возвращает порт Prometheus метрик с поддержкой fallback значений
func (s *ServerConfig) GetMetricsPort() int {
	return getPortWithEnvFallback(s.MetricsPort, "ARENA_METRICS_PORT", 2112)
}

// GetJWTSecret возвращает секрет JWT: config -> env ARENA_JWT_SECRET -> пусто
func (a *AuthConfig) GetJWTSecret() string {
	if a.JWTSecret != "" {
		return a.JWTSecret
	}
	return os.Getenv("ARENA_JWT_SECRET")
}

// IsAdmin проверяет, входит ли пользователь в список администраторов
func (a *AuthConfig) IsAdmin(username string) bool {
	for _, name := range a.Admins {
		if name == username {
			return true
		}
	}
	return false
}

// RetentionDuration срок хранения событий в стриме
func (e *EventBusConfig) RetentionDuration() time.Duration {
	return time.Duration(e.Retention) * time.Hour
}

// getPortWithEnvFallback возвращает порт с приоритетом: config -> env -> default
func getPortWithEnvFallback(configPort int, envVar string, defaultPort int) int {
	if configPort > 0 {
		return configPort
	}

	if envVal := os.Getenv(envVar); envVal != "" {
		if port, err := strconv.Atoi(envVal); err == nil && port > 0 {
			return port
		}
	}

	return defaultPort
}

// Load читает YAML файл конфигурации.
// Если path == "", пытается прочитать из ENV ARENA_CONFIG; без файла возвращает Default().
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("ARENA_CONFIG")
		if path == "" {
			return Default(), nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения конфигурации %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("ошибка разбора конфигурации %s: %w", path, err)
	}
	cfg.applyDefaults()

	return &cfg, nil
}
