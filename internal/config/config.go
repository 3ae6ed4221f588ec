package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App        AppConfig        `yaml:"app"`
	Database   DatabaseConfig   `yaml:"database"`
	Backup     BackupConfig     `yaml:"backup"`
	Redis      RedisConfig      `yaml:"redis"`
	Checkout   CheckoutConfig   `yaml:"checkout"`
	Catalog    CatalogConfig    `yaml:"catalog"`
	Wizard     WizardConfig     `yaml:"wizard"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Logging    LoggingConfig    `yaml:"logging"`
	API        APIConfig        `yaml:"api"`
	Exports    ExportConfig     `yaml:"exports"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type BackupConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Interval      string `yaml:"interval"` // Go duration string, default 24h
	StoragePath   string `yaml:"storage_path"`
	RetentionDays int    `yaml:"retention_days"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

// CheckoutConfig selects the checkout path for the whole process. Mode and
// currency are read once at startup and treated as immutable for the
// session; the wizard never re-branches on them per request.
type CheckoutConfig struct {
	Mode       string `yaml:"mode"`     // direct | gateway
	Currency   string `yaml:"currency"` // ISO 4217 code
	DirectURL  string `yaml:"direct_url"`
	GatewayURL string `yaml:"gateway_url"`
	Timeout    int    `yaml:"timeout"` // seconds
}

type CatalogConfig struct {
	BaseURL         string `yaml:"base_url"`
	Timeout         int    `yaml:"timeout"`          // seconds
	CacheTTL        int    `yaml:"cache_ttl"`        // seconds
	RefreshInterval int    `yaml:"refresh_interval"` // seconds, 0 disables the worker
}

type WizardConfig struct {
	DraftTTL         int `yaml:"draft_ttl"` // seconds
	SubmitRateLimit  int `yaml:"submit_rate_limit"`
	SubmitRateWindow int `yaml:"submit_rate_window"` // seconds
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

type APIConfig struct {
	HTTP      APIHTTPConfig      `yaml:"http"`
	Auth      APIAuthConfig      `yaml:"auth"`
	RateLimit APIRateLimitConfig `yaml:"rate_limit"`
}

type APIHTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeout     int `yaml:"read_timeout"`     // seconds
	WriteTimeout    int `yaml:"write_timeout"`    // seconds
	ShutdownTimeout int `yaml:"shutdown_timeout"` // seconds
}

type APIAuthConfig struct {
	Enabled      bool           `yaml:"enabled"`
	HeaderAPIKey string         `yaml:"header_api_key"`
	APIKeys      []APIClientKey `yaml:"api_keys"`
}

type APIClientKey struct {
	Key         string   `yaml:"key"`
	Name        string   `yaml:"name"`
	Permissions []string `yaml:"permissions"`
}

type APIRateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

type ExportConfig struct {
	Path string `yaml:"path"`
}

func Load(configPath string) (*Config, error) {
	// .env is optional; environment already set wins either way.
	_ = godotenv.Load(".env")

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	// Подстановка переменных окружения в YAML перед разбором
	expandedData := []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(expandedData, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return errors.New("database path is required")
	}
	if c.Checkout.Mode != ModeDirect && c.Checkout.Mode != ModeGateway {
		return fmt.Errorf("checkout mode must be %q or %q, got %q", ModeDirect, ModeGateway, c.Checkout.Mode)
	}
	if c.Checkout.Currency == "" {
		return errors.New("checkout currency is required")
	}
	if c.Checkout.Mode == ModeGateway && c.Checkout.GatewayURL == "" {
		return errors.New("gateway checkout mode requires checkout.gateway_url")
	}
	if c.Catalog.BaseURL == "" {
		return errors.New("catalog base_url is required")
	}
	return nil
}

const (
	ModeDirect  = "direct"
	ModeGateway = "gateway"
)

// NormalizeMode maps loose mode spellings onto the two supported checkout
// modes. Unrecognized values pass through unchanged so Validate rejects them
// instead of a typo silently selecting a checkout path.
func NormalizeMode(mode string) string {
	trimmed := strings.ToLower(strings.TrimSpace(mode))
	switch trimmed {
	case "gateway", "payment-gateway", "intent":
		return ModeGateway
	case "direct", "educational", "":
		return ModeDirect
	default:
		return trimmed
	}
}

func (c *Config) applyDefaults() {
	c.Checkout.Mode = NormalizeMode(c.Checkout.Mode)

	if c.Checkout.Currency == "" {
		c.Checkout.Currency = "USD"
	}
	if c.Checkout.Timeout == 0 {
		c.Checkout.Timeout = 10
	}
	if c.Catalog.Timeout == 0 {
		c.Catalog.Timeout = 10
	}
	if c.Catalog.CacheTTL == 0 {
		c.Catalog.CacheTTL = 30 * 60
	}
	if c.Wizard.DraftTTL == 0 {
		c.Wizard.DraftTTL = 24 * 60 * 60
	}
	if c.Wizard.SubmitRateLimit == 0 {
		c.Wizard.SubmitRateLimit = 5
	}
	if c.Wizard.SubmitRateWindow == 0 {
		c.Wizard.SubmitRateWindow = 60
	}
	if c.API.HTTP.Port == 0 {
		c.API.HTTP.Port = 8080
	}
	if c.API.HTTP.ReadTimeout == 0 {
		c.API.HTTP.ReadTimeout = 5
	}
	if c.API.HTTP.WriteTimeout == 0 {
		c.API.HTTP.WriteTimeout = 15
	}
	if c.API.HTTP.ShutdownTimeout == 0 {
		c.API.HTTP.ShutdownTimeout = 10
	}
	if c.API.Auth.HeaderAPIKey == "" {
		c.API.Auth.HeaderAPIKey = "x-api-key"
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}
	if c.Exports.Path == "" {
		c.Exports.Path = "exports"
	}
	if c.Backup.Enabled && c.Backup.StoragePath == "" {
		c.Backup.StoragePath = "backups"
	}
}
