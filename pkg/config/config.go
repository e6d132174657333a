package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the client
type Config struct {
	API        APIConfig
	Search     SearchConfig
	Engagement EngagementConfig
	Redis      RedisConfig
	Server     ServerConfig
	Logging    LoggingConfig
	Telemetry  TelemetryConfig
}

// ServerConfig holds the dev server listen address
type ServerConfig struct {
	Host string
	Port int
}

// APIConfig holds backend connection configuration
type APIConfig struct {
	BaseURL    string
	Timeout    time.Duration
	CookieName string
}

// SearchConfig holds search stream configuration
type SearchConfig struct {
	DebounceMS      int
	PageSize        int
	FriendProbeSize int
}

// EngagementConfig holds like/save behavior configuration
type EngagementConfig struct {
	// RollbackOnError reverts the optimistic toggle when the server call
	// fails. Off matches the original client behavior.
	RollbackOnError bool
}

// RedisConfig holds session cache configuration
type RedisConfig struct {
	URL        string
	Enabled    bool
	SessionTTL time.Duration
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string // "json" or "text"
}

// TelemetryConfig holds observability configuration
type TelemetryConfig struct {
	Enabled           bool
	JaegerURL         string
	PrometheusEnabled bool
	PrometheusPort    int
	ServiceName       string
}

// Load loads configuration from environment variables and config file
func Load() (*Config, error) {
	setDefaults()

	viper.SetEnvPrefix("CHALAD")
	viper.AutomaticEnv()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME/.chaladshare")
	viper.AddConfigPath("/etc/chaladshare")

	if err := viper.ReadInConfig(); err != nil {
		// Config file not found; this is OK if we have env vars
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{
		API: APIConfig{
			BaseURL:    getString("api_base_url", "http://localhost:8080"),
			Timeout:    time.Duration(getInt("api_timeout_seconds", 15)) * time.Second,
			CookieName: getString("cookie_name", "access_token"),
		},
		Search: SearchConfig{
			DebounceMS:      getInt("search_debounce_ms", 300),
			PageSize:        getInt("search_page_size", 20),
			FriendProbeSize: getInt("friend_probe_size", 500),
		},
		Engagement: EngagementConfig{
			RollbackOnError: getBool("engagement_rollback_on_error", false),
		},
		Redis: RedisConfig{
			URL:        getString("redis_url", ""),
			Enabled:    getString("redis_url", "") != "",
			SessionTTL: time.Duration(getInt("session_ttl_minutes", 30)) * time.Minute,
		},
		Server: ServerConfig{
			Host: getString("server_host", "0.0.0.0"),
			Port: getInt("server_port", 8080),
		},
		Logging: LoggingConfig{
			Level:  getString("log_level", "INFO"),
			Format: getString("log_format", "json"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           getBool("telemetry_enabled", false),
			JaegerURL:         getString("jaeger_url", ""),
			PrometheusEnabled: getBool("prometheus_enabled", false),
			PrometheusPort:    getInt("prometheus_port", 9090),
			ServiceName:       getString("service_name", "chaladshare-client"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func setDefaults() {
	viper.SetDefault("api_base_url", "http://localhost:8080")
	viper.SetDefault("api_timeout_seconds", 15)
	viper.SetDefault("cookie_name", "access_token")
	viper.SetDefault("search_debounce_ms", 300)
	viper.SetDefault("search_page_size", 20)
	viper.SetDefault("friend_probe_size", 500)
	viper.SetDefault("engagement_rollback_on_error", false)
	viper.SetDefault("session_ttl_minutes", 30)
	viper.SetDefault("server_host", "0.0.0.0")
	viper.SetDefault("server_port", 8080)
	viper.SetDefault("log_level", "INFO")
	viper.SetDefault("log_format", "json")
	viper.SetDefault("telemetry_enabled", false)
	viper.SetDefault("prometheus_enabled", false)
	viper.SetDefault("prometheus_port", 9090)
	viper.SetDefault("service_name", "chaladshare-client")
}

func getString(key, defaultValue string) string {
	if viper.IsSet(key) {
		return viper.GetString(key)
	}
	// Also check environment variable directly
	if val := os.Getenv("CHALAD_" + toEnvKey(key)); val != "" {
		return val
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if viper.IsSet(key) {
		return viper.GetInt(key)
	}
	if val := os.Getenv("CHALAD_" + toEnvKey(key)); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	if viper.IsSet(key) {
		return viper.GetBool(key)
	}
	if val := os.Getenv("CHALAD_" + toEnvKey(key)); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultValue
}

func toEnvKey(key string) string {
	// Convert snake_case to UPPER_SNAKE_CASE
	result := ""
	for i, r := range key {
		if i > 0 && r >= 'A' && r <= 'Z' {
			result += "_"
		}
		if r == '-' || r == '_' {
			result += "_"
		} else {
			result += string(r)
		}
	}
	return result
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api_base_url is required")
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("api_timeout_seconds must be positive")
	}
	if c.Search.DebounceMS < 0 {
		return fmt.Errorf("search_debounce_ms must not be negative")
	}
	if c.Search.PageSize <= 0 || c.Search.PageSize > 500 {
		return fmt.Errorf("search_page_size must be between 1 and 500")
	}
	if c.Search.FriendProbeSize <= 0 || c.Search.FriendProbeSize > 1000 {
		return fmt.Errorf("friend_probe_size must be between 1 and 1000")
	}
	return nil
}

// Debounce returns the search debounce window as a duration
func (c *SearchConfig) Debounce() time.Duration {
	return time.Duration(c.DebounceMS) * time.Millisecond
}
