// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	ReviewPath      string        `yaml:"review_path"` // where the UI goes once KYC is complete
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type DatabaseConfig struct {
	URL      string `yaml:"url"`
	MaxConns int32  `yaml:"max_conns"`
}

type RedisConfig struct {
	URL      string        `yaml:"url"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

// StorageConfig selects the snapshot backend: redis | postgres | memory.
type StorageConfig struct {
	Driver string `yaml:"driver"`
}

type AccountConfig struct {
	BaseURL string        `yaml:"base_url"`
	Token   string        `yaml:"token"`
	Timeout time.Duration `yaml:"timeout"`
}

type KYCConfig struct {
	RemoteTimeout   time.Duration `yaml:"remote_timeout"`
	SessionIdleTTL  time.Duration `yaml:"session_idle_ttl"`
	ReapInterval    time.Duration `yaml:"reap_interval"`
	SubmitLockTTL   time.Duration `yaml:"submit_lock_ttl"`
	AuditWorkers    int           `yaml:"audit_workers"`
	DefaultLanguage string        `yaml:"default_language"`
}

type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
	Issuer    string `yaml:"issuer"`
}

type SecurityConfig struct {
	EncryptionKey string `yaml:"encryption_key"`
}

type ReferenceConfig struct {
	TTL      time.Duration `yaml:"ttl"`
	MaxItems int           `yaml:"max_items"`
}

type RateLimitConfig struct {
	Submissions int           `yaml:"submissions"`
	Window      time.Duration `yaml:"window"`
}

type JanitorConfig struct {
	Interval time.Duration `yaml:"interval"`
}

// SecretsConfig points at an AWS Secrets Manager secret that overlays credentials.
type SecretsConfig struct {
	AWSSecretName string `yaml:"aws_secret_name"`
}

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Log       LogConfig       `yaml:"log"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Storage   StorageConfig   `yaml:"storage"`
	Account   AccountConfig   `yaml:"account"`
	KYC       KYCConfig       `yaml:"kyc"`
	Auth      AuthConfig      `yaml:"auth"`
	Security  SecurityConfig  `yaml:"security"`
	Reference ReferenceConfig `yaml:"reference"`
	RateLimit RateLimitConfig `yaml:"ratelimit"`
	Janitor   JanitorConfig   `yaml:"janitor"`
	Secrets   SecretsConfig   `yaml:"secrets"`

	Runtime RuntimeConfig `yaml:"-"`
}

const (
	StorageRedis    = "redis"
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// LoadConfig reads the YAML file at path, applies defaults and validates it.
func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(b, dev)
}

// Parse is LoadConfig without the file read.
func Parse(b []byte, dev bool) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.Runtime.Dev = dev
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (cfg *Config) applyDefaults() {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.ReadTimeout <= 0 {
		cfg.Server.ReadTimeout = 10 * time.Second
	}
	if cfg.Server.WriteTimeout <= 0 {
		cfg.Server.WriteTimeout = 30 * time.Second
	}
	if cfg.Server.ShutdownTimeout <= 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}
	if cfg.Server.ReviewPath == "" {
		cfg.Server.ReviewPath = "/account/review"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Database.MaxConns <= 0 {
		cfg.Database.MaxConns = 10
	}
	cfg.Redis.TTL = normalizeTTL(cfg.Redis.TTL)
	cfg.Storage.Driver = strings.ToLower(strings.TrimSpace(cfg.Storage.Driver))
	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = StorageRedis
	}
	if cfg.Account.Timeout <= 0 {
		cfg.Account.Timeout = 15 * time.Second
	}
	if cfg.KYC.RemoteTimeout <= 0 {
		cfg.KYC.RemoteTimeout = cfg.Account.Timeout
	}
	if cfg.KYC.SessionIdleTTL <= 0 {
		cfg.KYC.SessionIdleTTL = 30 * time.Minute
	}
	if cfg.KYC.ReapInterval <= 0 {
		cfg.KYC.ReapInterval = time.Minute
	}
	if cfg.KYC.SubmitLockTTL <= 0 {
		cfg.KYC.SubmitLockTTL = cfg.KYC.RemoteTimeout + 5*time.Second
	}
	if cfg.KYC.AuditWorkers <= 0 {
		cfg.KYC.AuditWorkers = 2
	}
	if cfg.KYC.DefaultLanguage == "" {
		cfg.KYC.DefaultLanguage = "en"
	}
	if cfg.Reference.TTL <= 0 {
		cfg.Reference.TTL = 6 * time.Hour
	}
	if cfg.Reference.MaxItems <= 0 {
		cfg.Reference.MaxItems = 1000
	}
	if cfg.RateLimit.Submissions <= 0 {
		cfg.RateLimit.Submissions = 20
	}
	if cfg.RateLimit.Window <= 0 {
		cfg.RateLimit.Window = time.Minute
	}
	if cfg.Janitor.Interval <= 0 {
		cfg.Janitor.Interval = time.Hour
	}
}

// Validate performs the minimal checks needed to start the service.
func (cfg *Config) Validate() error {
	switch cfg.Storage.Driver {
	case StorageRedis:
		if cfg.Redis.URL == "" {
			return errors.New("redis.url is required for storage.driver=redis")
		}
	case StoragePostgres:
		if cfg.Database.URL == "" {
			return errors.New("database.url is required for storage.driver=postgres")
		}
	case StorageMemory:
		if !cfg.Runtime.Dev {
			return errors.New("storage.driver=memory is only allowed with -dev")
		}
	default:
		return fmt.Errorf("unknown storage.driver %q", cfg.Storage.Driver)
	}
	if cfg.Account.BaseURL == "" {
		return errors.New("account.base_url is required")
	}
	if cfg.Auth.JWTSecret == "" && cfg.Secrets.AWSSecretName == "" {
		return errors.New("auth.jwt_secret is required")
	}
	if k := len(cfg.Security.EncryptionKey); k != 0 && k != 16 && k != 24 && k != 32 {
		return fmt.Errorf("security.encryption_key must be 16, 24 or 32 bytes; got %d", k)
	}
	return nil
}

func normalizeTTL(d time.Duration) time.Duration {
	if d <= 0 {
		return time.Hour
	}
	return d
}
