package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Log       LogConfig
	HTTP      HTTPConfig
	Catalog   CatalogConfig
	Pricing   PricingConfig
	Handoff   HandoffConfig
	Toast     ToastConfig
	Session   SessionConfig
	Telemetry TelemetryConfig
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// IsProduction reports whether the app runs in production
func (a AppConfig) IsProduction() bool {
	return a.Env == "production"
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	IdleTimeout      time.Duration
	ShutdownTimeout  time.Duration
	MaxHeaderBytes   int
	MaxBodySize      int64
	CORSAllowOrigins []string
	CORSAllowMethods []string
	CORSAllowHeaders []string
	TrustedProxies   []string
	RateLimitRPS     float64 // session creations per second per client IP
	RateLimitBurst   int
	ReloadLimitRPS   float64 // catalog reloads per second per client IP
	ReloadLimitBurst int
}

// CatalogConfig holds the remote catalog source settings
type CatalogConfig struct {
	Endpoint        string
	Timeout         time.Duration
	MaxResponseSize int64
	CardTitleWidth  int  // runes of title shown on a grid card
	LoadOnStart     bool // fetch the catalog when the server starts
}

// PricingConfig holds the display currency conversion
type PricingConfig struct {
	Rate          decimal.Decimal // display units per source unit
	Currency      string          // ISO code of the display currency
	CurrencyLabel string          // prefix used in formatted prices
	Locale        string          // BCP 47 tag driving digit grouping
}

// HandoffConfig holds the messaging channel the order is handed to
type HandoffConfig struct {
	BaseURL    string
	Recipient  string
	TitleWidth int // runes of title kept per order line
}

// ToastConfig holds transient notification settings
type ToastConfig struct {
	Duration time.Duration
}

// SessionConfig holds visitor session settings
type SessionConfig struct {
	IdleTTL       time.Duration
	SweepInterval time.Duration
	MaxSessions   int // 0 = unlimited
	// Strict surfaces defect-class errors to clients. Defaults to true
	// outside production.
	Strict *bool
}

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled           bool          // Export traces and metrics over OTLP
	ServiceName       string        // Service name for traces
	CollectorEndpoint string        // OTLP gRPC endpoint (host:port)
	Insecure          bool          // Plaintext gRPC to the collector
	SamplingRatio     float64       // 0.0 to 1.0
	MetricsInterval   time.Duration // Metric export interval
	ExportLogs        bool          // Also ship zap logs to the collector
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with STOREFRONT_ prefix (e.g., STOREFRONT_PRICING_RATE)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	v.SetEnvPrefix("STOREFRONT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	rate := decimal.Zero
	if raw := strings.TrimSpace(v.GetString("pricing.rate")); raw != "" {
		parsed, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("pricing.rate is not a number: %w", err)
		}
		rate = parsed
	}

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:      v.GetDuration("http.read_timeout"),
			WriteTimeout:     v.GetDuration("http.write_timeout"),
			IdleTimeout:      v.GetDuration("http.idle_timeout"),
			ShutdownTimeout:  v.GetDuration("http.shutdown_timeout"),
			MaxHeaderBytes:   v.GetInt("http.max_header_bytes"),
			MaxBodySize:      v.GetInt64("http.max_body_size"),
			CORSAllowOrigins: v.GetStringSlice("http.cors_allow_origins"),
			CORSAllowMethods: v.GetStringSlice("http.cors_allow_methods"),
			CORSAllowHeaders: v.GetStringSlice("http.cors_allow_headers"),
			TrustedProxies:   v.GetStringSlice("http.trusted_proxies"),
			RateLimitRPS:     v.GetFloat64("http.rate_limit_rps"),
			RateLimitBurst:   v.GetInt("http.rate_limit_burst"),
			ReloadLimitRPS:   v.GetFloat64("http.reload_limit_rps"),
			ReloadLimitBurst: v.GetInt("http.reload_limit_burst"),
		},
		Catalog: CatalogConfig{
			Endpoint:        v.GetString("catalog.endpoint"),
			Timeout:         v.GetDuration("catalog.timeout"),
			MaxResponseSize: v.GetInt64("catalog.max_response_size"),
			CardTitleWidth:  v.GetInt("catalog.card_title_width"),
			LoadOnStart:     true,
		},
		Pricing: PricingConfig{
			Rate:          rate,
			Currency:      v.GetString("pricing.currency"),
			CurrencyLabel: v.GetString("pricing.currency_label"),
			Locale:        v.GetString("pricing.locale"),
		},
		Handoff: HandoffConfig{
			BaseURL:    v.GetString("handoff.base_url"),
			Recipient:  v.GetString("handoff.recipient"),
			TitleWidth: v.GetInt("handoff.title_width"),
		},
		Toast: ToastConfig{
			Duration: v.GetDuration("toast.duration"),
		},
		Session: SessionConfig{
			IdleTTL:       v.GetDuration("session.idle_ttl"),
			SweepInterval: v.GetDuration("session.sweep_interval"),
			MaxSessions:   v.GetInt("session.max_sessions"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			ServiceName:       v.GetString("telemetry.service_name"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			Insecure:          v.GetBool("telemetry.insecure"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			MetricsInterval:   v.GetDuration("telemetry.metrics_interval"),
			ExportLogs:        v.GetBool("telemetry.export_logs"),
		},
	}
	if !v.IsSet("telemetry.sampling_ratio") {
		cfg.Telemetry.SamplingRatio = 1.0
	}
	if v.IsSet("catalog.load_on_start") {
		cfg.Catalog.LoadOnStart = v.GetBool("catalog.load_on_start")
	}
	if v.IsSet("session.strict") {
		strict := v.GetBool("session.strict")
		cfg.Session.Strict = &strict
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "storefront-backend"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 30 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.ShutdownTimeout == 0 {
		cfg.HTTP.ShutdownTimeout = 30 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 64 << 10 // 64KB, intents are tiny
	}
	if cfg.HTTP.RateLimitRPS == 0 {
		cfg.HTTP.RateLimitRPS = 1
	}
	if cfg.HTTP.RateLimitBurst == 0 {
		cfg.HTTP.RateLimitBurst = 5
	}
	if cfg.HTTP.ReloadLimitRPS == 0 {
		cfg.HTTP.ReloadLimitRPS = 0.1 // one reload per 10s
	}
	if cfg.HTTP.ReloadLimitBurst == 0 {
		cfg.HTTP.ReloadLimitBurst = 2
	}
	// CORS origins get no "*" fallback; cross-origin requests are refused
	// until origins are configured.
	if len(cfg.HTTP.CORSAllowMethods) == 0 {
		cfg.HTTP.CORSAllowMethods = []string{"GET", "POST", "OPTIONS"}
	}
	if len(cfg.HTTP.CORSAllowHeaders) == 0 {
		cfg.HTTP.CORSAllowHeaders = []string{"Content-Type", "X-Request-ID", "X-Session-ID"}
	}
	if cfg.Catalog.Endpoint == "" {
		cfg.Catalog.Endpoint = "https://fakestoreapi.com/products"
	}
	if cfg.Catalog.Timeout == 0 {
		cfg.Catalog.Timeout = 15 * time.Second
	}
	if cfg.Catalog.MaxResponseSize == 0 {
		cfg.Catalog.MaxResponseSize = 5 << 20 // 5MB
	}
	if cfg.Catalog.CardTitleWidth == 0 {
		cfg.Catalog.CardTitleWidth = 40
	}
	if cfg.Pricing.Rate.IsZero() {
		cfg.Pricing.Rate = decimal.NewFromInt(15000)
	}
	if cfg.Pricing.Currency == "" {
		cfg.Pricing.Currency = "IDR"
	}
	if cfg.Pricing.CurrencyLabel == "" {
		cfg.Pricing.CurrencyLabel = "Rp"
	}
	if cfg.Pricing.Locale == "" {
		cfg.Pricing.Locale = "id"
	}
	if cfg.Handoff.BaseURL == "" {
		cfg.Handoff.BaseURL = "https://wa.me"
	}
	if cfg.Handoff.Recipient == "" {
		cfg.Handoff.Recipient = "6288991162533"
	}
	if cfg.Handoff.TitleWidth == 0 {
		cfg.Handoff.TitleWidth = 30
	}
	if cfg.Toast.Duration == 0 {
		cfg.Toast.Duration = 3 * time.Second
	}
	if cfg.Session.IdleTTL == 0 {
		cfg.Session.IdleTTL = 30 * time.Minute
	}
	if cfg.Session.SweepInterval == 0 {
		cfg.Session.SweepInterval = time.Minute
	}
	if cfg.Session.Strict == nil {
		strict := !cfg.App.IsProduction()
		cfg.Session.Strict = &strict
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = cfg.App.Name
	}
	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317"
	}
	if cfg.Telemetry.MetricsInterval == 0 {
		cfg.Telemetry.MetricsInterval = 60 * time.Second
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.Pricing.Rate.IsNegative() {
		return fmt.Errorf("pricing.rate must be positive, got %s", c.Pricing.Rate)
	}
	if err := validateHTTPURL("catalog.endpoint", c.Catalog.Endpoint); err != nil {
		return err
	}
	if err := validateHTTPURL("handoff.base_url", c.Handoff.BaseURL); err != nil {
		return err
	}
	for _, r := range c.Handoff.Recipient {
		if r < '0' || r > '9' {
			return fmt.Errorf("handoff.recipient must contain digits only, got %q", c.Handoff.Recipient)
		}
	}
	if c.Catalog.CardTitleWidth < 0 || c.Handoff.TitleWidth < 0 {
		return fmt.Errorf("title widths cannot be negative")
	}
	if c.Session.MaxSessions < 0 {
		return fmt.Errorf("session.max_sessions cannot be negative")
	}
	if c.HTTP.RateLimitRPS < 0 || c.HTTP.RateLimitBurst < 0 ||
		c.HTTP.ReloadLimitRPS < 0 || c.HTTP.ReloadLimitBurst < 0 {
		return fmt.Errorf("http rate limit cannot be negative")
	}
	if c.Toast.Duration < 0 {
		return fmt.Errorf("toast.duration cannot be negative")
	}
	if c.Telemetry.SamplingRatio < 0 || c.Telemetry.SamplingRatio > 1 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0 and 1, got %v", c.Telemetry.SamplingRatio)
	}

	// Production-specific validations
	if c.App.IsProduction() {
		if len(c.HTTP.CORSAllowOrigins) == 0 {
			return fmt.Errorf("http.cors_allow_origins is required in production")
		}
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
			}
		}
	}

	return nil
}

func validateHTTPURL(key, raw string) error {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%s must be an absolute http(s) URL, got %q", key, raw)
	}
	return nil
}
