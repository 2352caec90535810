package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/0xvlm/nftsearch-go/internal/constants"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the service
type Config struct {
	Upstream UpstreamConfig `yaml:"upstream"`
	Search   SearchConfig   `yaml:"search"`
	Log      LogConfig      `yaml:"log"`
	API      APIConfig      `yaml:"api"`
	Cache    CacheConfig    `yaml:"cache"`
}

// UpstreamConfig holds the NFT indexing service client configuration
type UpstreamConfig struct {
	// BaseURL is the root URL of the indexing API
	BaseURL string `yaml:"base_url"`
	// APIKey is appended to every request when set
	APIKey string `yaml:"api_key"`
	// Timeout is the per-request timeout
	Timeout time.Duration `yaml:"timeout"`
	// RatePerSecond is the outbound request budget
	RatePerSecond float64 `yaml:"rate_per_second"`
	// RateBurst is the outbound request burst allowance
	RateBurst int `yaml:"rate_burst"`
}

// SearchConfig holds search and pagination configuration
type SearchConfig struct {
	// PageSize is the number of tokens requested per listing page
	PageSize int `yaml:"page_size"`
	// SuggestLimit is the maximum number of collection suggestions returned
	SuggestLimit int `yaml:"suggest_limit"`
	// SuggestMinChars is the minimum query length before suggestions fire
	SuggestMinChars int `yaml:"suggest_min_chars"`
	// SuggestDebounce is the delay between a query change and the request
	SuggestDebounce time.Duration `yaml:"suggest_debounce"`
	// SessionTTL is how long an idle search session is retained
	SessionTTL time.Duration `yaml:"session_ttl"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// APIConfig holds API server configuration
type APIConfig struct {
	Host            string   `yaml:"host"`
	Port            int      `yaml:"port"`
	EnableGraphQL   bool     `yaml:"enable_graphql"`
	EnableWebSocket bool     `yaml:"enable_websocket"`
	EnableCORS      bool     `yaml:"enable_cors"`
	AllowedOrigins  []string `yaml:"allowed_origins"`
	EnableRateLimit bool     `yaml:"enable_rate_limit"`
}

// CacheConfig holds in-memory cache configuration
type CacheConfig struct {
	// MetadataTTL is how long contract metadata lookups are cached
	MetadataTTL time.Duration `yaml:"metadata_ttl"`
	// CleanupPeriod is how often expired entries are evicted
	CleanupPeriod time.Duration `yaml:"cleanup_period"`
}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	cfg := &Config{}
	cfg.SetDefaults()
	return cfg
}

// SetDefaults sets default values for the configuration
func (c *Config) SetDefaults() {
	// Upstream defaults
	if c.Upstream.Timeout == 0 {
		c.Upstream.Timeout = constants.DefaultUpstreamTimeout
	}
	if c.Upstream.RatePerSecond == 0 {
		c.Upstream.RatePerSecond = constants.DefaultUpstreamRatePerSecond
	}
	if c.Upstream.RateBurst == 0 {
		c.Upstream.RateBurst = constants.DefaultUpstreamRateBurst
	}

	// Search defaults
	if c.Search.PageSize == 0 {
		c.Search.PageSize = constants.DefaultPageSize
	}
	if c.Search.SuggestLimit == 0 {
		c.Search.SuggestLimit = constants.DefaultSuggestLimit
	}
	if c.Search.SuggestMinChars == 0 {
		c.Search.SuggestMinChars = constants.DefaultSuggestMinChars
	}
	if c.Search.SuggestDebounce == 0 {
		c.Search.SuggestDebounce = constants.DefaultSuggestDebounce
	}
	if c.Search.SessionTTL == 0 {
		c.Search.SessionTTL = constants.DefaultSessionTTL
	}

	// Log defaults
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}

	// API defaults
	if c.API.Host == "" {
		c.API.Host = constants.DefaultAPIHost
	}
	if c.API.Port == 0 {
		c.API.Port = constants.DefaultAPIPort
	}
	if c.API.AllowedOrigins == nil {
		c.API.AllowedOrigins = []string{"*"}
	}

	// Cache defaults
	if c.Cache.MetadataTTL == 0 {
		c.Cache.MetadataTTL = constants.DefaultMetadataTTL
	}
	if c.Cache.CleanupPeriod == 0 {
		c.Cache.CleanupPeriod = constants.DefaultMetadataCleanupPeriod
	}
}

// LoadFromEnv loads configuration from environment variables
// Environment variables take precedence over file configuration
func (c *Config) LoadFromEnv() error {
	if baseURL := os.Getenv("NFTSEARCH_UPSTREAM_URL"); baseURL != "" {
		c.Upstream.BaseURL = baseURL
	}
	if apiKey := os.Getenv("NFTSEARCH_UPSTREAM_API_KEY"); apiKey != "" {
		c.Upstream.APIKey = apiKey
	}
	if timeout := os.Getenv("NFTSEARCH_UPSTREAM_TIMEOUT"); timeout != "" {
		duration, err := time.ParseDuration(timeout)
		if err != nil {
			return fmt.Errorf("invalid NFTSEARCH_UPSTREAM_TIMEOUT: %w", err)
		}
		c.Upstream.Timeout = duration
	}

	if pageSize := os.Getenv("NFTSEARCH_PAGE_SIZE"); pageSize != "" {
		val, err := strconv.Atoi(pageSize)
		if err != nil {
			return fmt.Errorf("invalid NFTSEARCH_PAGE_SIZE: %w", err)
		}
		c.Search.PageSize = val
	}
	if ttl := os.Getenv("NFTSEARCH_SESSION_TTL"); ttl != "" {
		duration, err := time.ParseDuration(ttl)
		if err != nil {
			return fmt.Errorf("invalid NFTSEARCH_SESSION_TTL: %w", err)
		}
		c.Search.SessionTTL = duration
	}

	if level := os.Getenv("NFTSEARCH_LOG_LEVEL"); level != "" {
		c.Log.Level = level
	}
	if format := os.Getenv("NFTSEARCH_LOG_FORMAT"); format != "" {
		c.Log.Format = format
	}

	if host := os.Getenv("NFTSEARCH_API_HOST"); host != "" {
		c.API.Host = host
	}
	if port := os.Getenv("NFTSEARCH_API_PORT"); port != "" {
		val, err := strconv.Atoi(port)
		if err != nil {
			return fmt.Errorf("invalid NFTSEARCH_API_PORT: %w", err)
		}
		c.API.Port = val
	}
	if enableGraphQL := os.Getenv("NFTSEARCH_API_GRAPHQL"); enableGraphQL != "" {
		val, err := strconv.ParseBool(enableGraphQL)
		if err != nil {
			return fmt.Errorf("invalid NFTSEARCH_API_GRAPHQL: %w", err)
		}
		c.API.EnableGraphQL = val
	}
	if enableWS := os.Getenv("NFTSEARCH_API_WEBSOCKET"); enableWS != "" {
		val, err := strconv.ParseBool(enableWS)
		if err != nil {
			return fmt.Errorf("invalid NFTSEARCH_API_WEBSOCKET: %w", err)
		}
		c.API.EnableWebSocket = val
	}

	return nil
}

// Validate checks the configuration for consistency
func (c *Config) Validate() error {
	if c.Upstream.BaseURL == "" {
		return fmt.Errorf("upstream base URL is required")
	}
	if c.Upstream.Timeout <= 0 {
		return fmt.Errorf("upstream timeout must be positive")
	}
	if c.Search.PageSize < constants.MinPageSize || c.Search.PageSize > constants.MaxPageSize {
		return fmt.Errorf("page size must be between %d and %d", constants.MinPageSize, constants.MaxPageSize)
	}
	if c.Search.SuggestLimit <= 0 {
		return fmt.Errorf("suggest limit must be positive")
	}
	if c.Search.SuggestMinChars <= 0 {
		return fmt.Errorf("suggest min chars must be positive")
	}
	if c.Search.SessionTTL <= 0 {
		return fmt.Errorf("session TTL must be positive")
	}
	if c.API.Port < constants.MinPort || c.API.Port > constants.MaxPort {
		return fmt.Errorf("API port must be between %d and %d", constants.MinPort, constants.MaxPort)
	}
	return nil
}

// Load reads configuration from an optional YAML file, applies environment
// overrides, then defaults
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := cfg.LoadFromEnv(); err != nil {
		return nil, err
	}

	cfg.SetDefaults()

	return cfg, nil
}
