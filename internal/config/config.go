package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Addr               string
	DataDir            string
	ClientDist         string
	SiteURL            string
	AdsensePublisherID string
	Production         bool
	CacheTTL           time.Duration
	CacheSize          int
	JWTSecret          string
	AdminUser          string
	AdminPassword      string
	RateLimitPerMinute int
	RateLimitBurst     int
	LogLevel           string
	LogFormat          string
	HistoryCron        string
	RatesCron          string
	AlertsCron         string
	RatesURL           string
	RatesTimeout       time.Duration
	PushInterval       time.Duration
	TLSCertFile        string
	TLSKeyFile         string
}

// New returns a viper instance with every default registered, so CLI flags
// can be bound to it before Load reads files and env.
func New() *viper.Viper {
	v := viper.New()

	v.SetDefault("addr", ":6002")
	v.SetDefault("data_dir", "data")
	v.SetDefault("client_dist", "client/dist")
	v.SetDefault("site_url", "https://shakilabs.com")
	v.SetDefault("adsense_publisher_id", "")
	v.SetDefault("node_env", "development")
	v.SetDefault("cache_ttl", "5m")
	v.SetDefault("cache_size", 128)
	v.SetDefault("admin_user", "admin")
	v.SetDefault("admin_pass", "")
	v.SetDefault("rate_limit_per_minute", 100)
	v.SetDefault("rate_limit_burst", 20)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")
	v.SetDefault("history_cron", "0 10 0 * * *")
	v.SetDefault("rates_cron", "0 0 6 * * *")
	v.SetDefault("alerts_cron", "0 30 6 * * *")
	v.SetDefault("rates_url", "https://open.er-api.com/v6/latest/USD")
	v.SetDefault("rates_timeout", "15s")
	v.SetDefault("push_interval", "30s")

	return v
}

func Load() (*Config, error) {
	return LoadFrom(New())
}

func LoadFrom(v *viper.Viper) (*Config, error) {
	if path := os.Getenv("OTT_CONFIG"); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/ott-price-compare")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && os.Getenv("OTT_CONFIG") != "" {
			return nil, fmt.Errorf("read config: %w", err)
		}
		log.Printf("no config file found, using defaults + env vars: %v", err)
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cacheTTL, err := time.ParseDuration(v.GetString("cache_ttl"))
	if err != nil {
		return nil, fmt.Errorf("bad cache_ttl: %w", err)
	}
	ratesTimeout, err := time.ParseDuration(v.GetString("rates_timeout"))
	if err != nil {
		return nil, fmt.Errorf("bad rates_timeout: %w", err)
	}
	push, err := time.ParseDuration(v.GetString("push_interval"))
	if err != nil {
		return nil, fmt.Errorf("bad push_interval: %w", err)
	}

	addr := v.GetString("addr")
	if port := v.GetString("port"); port != "" {
		addr = ":" + port
	}
	adsense := v.GetString("adsense_publisher_id")
	if adsense == "" {
		adsense = v.GetString("vite_adsense_publisher_id")
	}

	cfg := &Config{
		Addr:               addr,
		DataDir:            v.GetString("data_dir"),
		ClientDist:         v.GetString("client_dist"),
		SiteURL:            v.GetString("site_url"),
		AdsensePublisherID: adsense,
		Production:         v.GetString("node_env") == "production",
		CacheTTL:           cacheTTL,
		CacheSize:          v.GetInt("cache_size"),
		JWTSecret:          v.GetString("jwt_secret"),
		AdminUser:          v.GetString("admin_user"),
		AdminPassword:      v.GetString("admin_pass"),
		RateLimitPerMinute: v.GetInt("rate_limit_per_minute"),
		RateLimitBurst:     v.GetInt("rate_limit_burst"),
		LogLevel:           v.GetString("log_level"),
		LogFormat:          v.GetString("log_format"),
		HistoryCron:        v.GetString("history_cron"),
		RatesCron:          v.GetString("rates_cron"),
		AlertsCron:         v.GetString("alerts_cron"),
		RatesURL:           v.GetString("rates_url"),
		RatesTimeout:       ratesTimeout,
		PushInterval:       push,
		TLSCertFile:        v.GetString("tls_cert_file"),
		TLSKeyFile:         v.GetString("tls_key_file"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data_dir cannot be empty")
	}
	if c.CacheSize <= 0 {
		return fmt.Errorf("cache_size must be positive")
	}
	if c.RateLimitPerMinute <= 0 || c.RateLimitBurst <= 0 {
		return fmt.Errorf("rate limit values must be positive")
	}
	if c.PushInterval <= 0 {
		return fmt.Errorf("push_interval must be positive")
	}
	switch strings.ToLower(c.LogFormat) {
	case "json", "text":
	default:
		return fmt.Errorf("invalid log format %q, must be json or text", c.LogFormat)
	}
	return nil
}

// AdminEnabled reports whether admin login can issue tokens.
func (c *Config) AdminEnabled() bool {
	return c.JWTSecret != "" && c.AdminPassword != ""
}
