// config - загрузка конфигурации для dogctl и directory-gateway.
//
// Источники (по убыванию приоритета):
//  1. явный путь --config;
//  2. CONFIG_PATH;
//  3. ./local.yaml;
//  4. только ENV (cleanenv).
package config

import (
	"fmt"
	"net"
	"os"
	"slices"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Драйверы хранилища токенов.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreRedis  = "redis"
)

type Config struct {
	Env      string        `yaml:"env" env:"ENV" env-default:"local"`
	API      APIConfig     `yaml:"api"`
	Store    StoreConfig   `yaml:"store"`
	HTTP     HTTPConfig    `yaml:"http"`
	Timeouts TimeoutConfig `yaml:"timeouts"`
	Cache    CacheConfig   `yaml:"cache"`
	Media    MediaConfig   `yaml:"media"`
}

// APIConfig — REST-бэкенд каталога.
type APIConfig struct {
	BaseURL   string        `yaml:"base_url"   env:"API_URL"        env-default:"http://localhost:8000"`
	Timeout   time.Duration `yaml:"timeout"    env:"API_TIMEOUT"    env-default:"15s"`
	UserAgent string        `yaml:"user_agent" env:"API_USER_AGENT" env-default:"dog-directory/1.0"`
}

// StoreConfig — где живёт пара токенов.
// Path пустой — файл в пользовательском каталоге конфигурации.
type StoreConfig struct {
	Driver   string `yaml:"driver"    env:"STORE_DRIVER"    env-default:"file"`
	Path     string `yaml:"path"      env:"STORE_PATH"`
	RedisURL string `yaml:"redis_url" env:"STORE_REDIS_URL" env-default:"redis://localhost:6379/0"`
	Prefix   string `yaml:"prefix"    env:"STORE_PREFIX"    env-default:"dogdir:"`
}

// HTTPConfig — сервер directory-gateway.
// StoreDriver — хранилище токенов шлюза; не зависит от store.driver, чтобы
// публичный шлюз не подхватил токены пользователя dogctl с той же машины.
type HTTPConfig struct {
	Host        string `yaml:"host"         env:"HTTP_HOST"         env-default:"0.0.0.0"`
	Port        string `yaml:"port"         env:"HTTP_PORT"         env-default:"8090"`
	StoreDriver string `yaml:"store_driver" env:"HTTP_STORE_DRIVER" env-default:"memory"`
}

func (h HTTPConfig) Addr() string { return net.JoinHostPort(h.Host, h.Port) }

// TimeoutConfig — таймаут обработки входящего запроса шлюзом.
type TimeoutConfig struct {
	Service time.Duration `yaml:"service" env:"SERVICE" env-default:"15s"`
}

// CacheConfig — время "свежести" данных: 0 — всегда перезапрашивать.
type CacheConfig struct {
	DataTTL    time.Duration `yaml:"data_ttl"    env:"CACHE_DATA_TTL"    env-default:"0s"`
	BreedsTTL  time.Duration `yaml:"breeds_ttl"  env:"CACHE_BREEDS_TTL"  env-default:"10m"`
	MaxEntries int           `yaml:"max_entries" env:"CACHE_MAX_ENTRIES" env-default:"10000"`
}

// MediaConfig — S3/MinIO для фото собак и аватаров. Endpoint пустой — загрузка выключена.
type MediaConfig struct {
	Endpoint            string   `yaml:"endpoint"              env:"MEDIA_ENDPOINT"`
	AccessKey           string   `yaml:"access_key"            env:"MEDIA_ACCESS_KEY"`
	SecretKey           string   `yaml:"secret_key"            env:"MEDIA_SECRET_KEY"`
	Bucket              string   `yaml:"bucket"                env:"MEDIA_BUCKET"                env-default:"dog-directory"`
	PublicBaseURL       string   `yaml:"public_base_url"       env:"MEDIA_PUBLIC_BASE_URL"`
	MaxSizeBytes        int64    `yaml:"max_size_bytes"        env:"MEDIA_MAX_SIZE_BYTES"        env-default:"5242880"`
	AllowedContentTypes []string `yaml:"allowed_content_types" env:"MEDIA_ALLOWED_CONTENT_TYPES" env-default:"image/jpeg,image/png,image/webp" env-separator:","`
}

func (m MediaConfig) Enabled() bool { return m.Endpoint != "" }

// Gateway — копия конфигурации для directory-gateway: хранилище токенов
// берётся из http.store_driver.
func (c Config) Gateway() Config {
	c.Store.Driver = c.HTTP.StoreDriver
	return c
}

// MustLoad — паника при ошибке загрузки.
func MustLoad(path string) *Config {
	cfg, err := Load(path)

	if err != nil {
		panic(err)
	}

	return cfg
}

func Load(path string) (*Config, error) {
	var cfg Config

	tryRead := func(p string) (*Config, error) {
		if p == "" {
			return nil, fmt.Errorf("empty config path")
		}

		if _, err := os.Stat(p); err != nil {
			return nil, fmt.Errorf("config file %q stat failed: %w", p, err)
		}

		if err := cleanenv.ReadConfig(p, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}

		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("failed to overlay env: %w", err)
		}

		return &cfg, cfg.validate()
	}

	// 1) --config
	if path != "" {
		return tryRead(path)
	}

	// 2) CONFIG_PATH
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		return tryRead(envPath)
	}

	// 3) ./local.yaml
	if _, err := os.Stat("local.yaml"); err == nil {
		if err := cleanenv.ReadConfig("local.yaml", &cfg); err != nil {
			return nil, fmt.Errorf("failed to read local.yaml: %w", err)
		}

		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("failed to overlay env: %w", err)
		}

		return &cfg, cfg.validate()
	}

	// 4) только ENV
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config not found: provide --config, CONFIG_PATH, local.yaml or env vars: %w", err)
	}

	return &cfg, cfg.validate()
}

func (c *Config) validate() error {
	if !slices.Contains([]string{StoreMemory, StoreFile, StoreRedis}, c.Store.Driver) {
		return fmt.Errorf("invalid store.driver %q: want memory, file or redis", c.Store.Driver)
	}

	if !slices.Contains([]string{StoreMemory, StoreFile, StoreRedis}, c.HTTP.StoreDriver) {
		return fmt.Errorf("invalid http.store_driver %q: want memory, file or redis", c.HTTP.StoreDriver)
	}

	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url is required")
	}

	if c.API.Timeout <= 0 {
		return fmt.Errorf("api.timeout must be positive")
	}

	if c.Media.Enabled() && c.Media.MaxSizeBytes <= 0 {
		return fmt.Errorf("media.max_size_bytes must be positive")
	}

	return nil
}
