package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
)

// Config aggregates every configuration section of the service.
type Config struct {
	Server    ServerConfig
	AI        AIConfig
	Catalog   CatalogConfig
	Redis     RedisConfig
	Log       LogConfig
	RateLimit RateLimitConfig
}

// Load reads the configuration from environment variables.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	ai, err := loadAIConfig()
	if err != nil {
		return nil, err
	}

	catalog, err := loadCatalogConfig()
	if err != nil {
		return nil, err
	}

	redis, err := loadRedisConfig()
	if err != nil {
		return nil, err
	}

	rateLimit, err := loadRateLimitConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		Server:    server,
		AI:        ai,
		Catalog:   catalog,
		Redis:     redis,
		Log:       loadLogConfig(),
		RateLimit: rateLimit,
	}, nil
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr string
}

func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// Accept ":8080" or "127.0.0.1:8080" as-is.
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// Supported generation providers.
const (
	ProviderArk    = "ark"
	ProviderOpenAI = "openai"
)

// AIConfig describes the generation collaborator.
type AIConfig struct {
	Provider     string
	APIKey       string
	AccessKey    string
	SecretKey    string
	Model        string
	BaseURL      string
	Region       string
	Temperature  *float64
	TopP         *float64
	MaxTokens    *int
	Timeout      time.Duration
	HistoryLimit int
}

// Enabled reports whether the credentials required by the provider are present.
func (c AIConfig) Enabled() bool {
	if c.Model == "" {
		return false
	}
	if c.Provider == ProviderOpenAI {
		return c.APIKey != ""
	}
	return c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != "")
}

// NewChatModel creates a chat model for the configured provider.
func (c AIConfig) NewChatModel(ctx context.Context) (model.ChatModel, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("%s credentials or model are missing", c.Provider)
	}

	var temperature *float32
	if c.Temperature != nil {
		val := float32(*c.Temperature)
		temperature = &val
	}

	var topP *float32
	if c.TopP != nil {
		val := float32(*c.TopP)
		topP = &val
	}

	var maxTokens *int
	if c.MaxTokens != nil {
		val := *c.MaxTokens
		maxTokens = &val
	}

	switch c.Provider {
	case ProviderOpenAI:
		return openai.NewChatModel(ctx, &openai.ChatModelConfig{
			BaseURL:     c.BaseURL,
			APIKey:      c.APIKey,
			Model:       c.Model,
			MaxTokens:   maxTokens,
			Temperature: temperature,
			TopP:        topP,
		})
	case ProviderArk:
		return ark.NewChatModel(ctx, &ark.ChatModelConfig{
			BaseURL:     c.BaseURL,
			Region:      c.Region,
			APIKey:      c.APIKey,
			AccessKey:   c.AccessKey,
			SecretKey:   c.SecretKey,
			Model:       c.Model,
			MaxTokens:   maxTokens,
			Temperature: temperature,
			TopP:        topP,
		})
	default:
		return nil, fmt.Errorf("unsupported AI_PROVIDER %q", c.Provider)
	}
}

func loadAIConfig() (AIConfig, error) {
	provider := strings.ToLower(getEnvOrDefault("AI_PROVIDER", ProviderOpenAI))
	if provider != ProviderArk && provider != ProviderOpenAI {
		return AIConfig{}, fmt.Errorf("invalid AI_PROVIDER value %q", provider)
	}

	temperature, err := parseOptionalFloatEnv("AI_TEMPERATURE")
	if err != nil {
		return AIConfig{}, err
	}

	topP, err := parseOptionalFloatEnv("AI_TOP_P")
	if err != nil {
		return AIConfig{}, err
	}

	maxTokens, err := parseOptionalIntEnv("AI_MAX_TOKENS")
	if err != nil {
		return AIConfig{}, err
	}

	timeout, err := parseDurationEnv("AI_TIMEOUT", 30*time.Second)
	if err != nil {
		return AIConfig{}, err
	}

	historyLimit := 0
	if override, err := parseOptionalIntEnv("AI_HISTORY_LIMIT"); err != nil {
		return AIConfig{}, err
	} else if override != nil && *override > 0 {
		historyLimit = *override
	}

	cfg := AIConfig{
		Provider:     provider,
		Temperature:  temperature,
		TopP:         topP,
		MaxTokens:    maxTokens,
		Timeout:      timeout,
		HistoryLimit: historyLimit,
	}

	if provider == ProviderArk {
		cfg.APIKey = strings.TrimSpace(os.Getenv("ARK_API_KEY"))
		cfg.AccessKey = strings.TrimSpace(os.Getenv("ARK_ACCESS_KEY"))
		cfg.SecretKey = strings.TrimSpace(os.Getenv("ARK_SECRET_KEY"))
		cfg.Model = strings.TrimSpace(os.Getenv("ARK_MODEL"))
		cfg.BaseURL = getEnvOrDefault("ARK_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3")
		cfg.Region = getEnvOrDefault("ARK_REGION", "cn-beijing")
		return cfg, nil
	}

	cfg.APIKey = strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
	cfg.Model = getEnvOrDefault("OPENAI_MODEL", "gpt-4o-mini")
	cfg.BaseURL = getEnvOrDefault("OPENAI_BASE_URL", "https://api.openai.com/v1")
	return cfg, nil
}

// Catalog drivers.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// CatalogConfig selects the product catalog backend.
type CatalogConfig struct {
	Driver   string
	DSN      string
	Seed     bool
	CacheTTL time.Duration
}

func loadCatalogConfig() (CatalogConfig, error) {
	driver := strings.ToLower(getEnvOrDefault("CATALOG_DRIVER", DriverMemory))
	if driver == "sqlite" {
		driver = DriverSQLite
	}
	switch driver {
	case DriverMemory, DriverSQLite, DriverPostgres:
	default:
		return CatalogConfig{}, fmt.Errorf("invalid CATALOG_DRIVER value %q", driver)
	}

	dsn := strings.TrimSpace(os.Getenv("CATALOG_DSN"))
	if driver == DriverSQLite && dsn == "" {
		dsn = "data/catalog.db"
	}
	if driver == DriverPostgres && dsn == "" {
		return CatalogConfig{}, fmt.Errorf("CATALOG_DSN is required for the postgres driver")
	}

	seed, err := parseBoolEnv("CATALOG_SEED", true)
	if err != nil {
		return CatalogConfig{}, err
	}

	ttl, err := parseDurationEnv("CATALOG_CACHE_TTL", time.Minute)
	if err != nil {
		return CatalogConfig{}, err
	}

	return CatalogConfig{Driver: driver, DSN: dsn, Seed: seed, CacheTTL: ttl}, nil
}

// RedisConfig describes the optional catalog cache. An empty Addr disables Redis.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// Enabled reports whether a Redis address was configured.
func (c RedisConfig) Enabled() bool {
	return c.Addr != ""
}

func loadRedisConfig() (RedisConfig, error) {
	db := 0
	if override, err := parseOptionalIntEnv("REDIS_DB"); err != nil {
		return RedisConfig{}, err
	} else if override != nil {
		db = *override
	}

	return RedisConfig{
		Addr:     strings.TrimSpace(os.Getenv("REDIS_ADDR")),
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       db,
		Prefix:   getEnvOrDefault("REDIS_PREFIX", "loanmatch:"),
	}, nil
}

// LogConfig describes structured logging output.
type LogConfig struct {
	Level  string
	Format string
}

func loadLogConfig() LogConfig {
	return LogConfig{
		Level:  getEnvOrDefault("LOG_LEVEL", "info"),
		Format: getEnvOrDefault("LOG_FORMAT", "json"),
	}
}

// RateLimitConfig bounds /ask requests per client IP.
type RateLimitConfig struct {
	Capacity int
	Window   time.Duration
}

func loadRateLimitConfig() (RateLimitConfig, error) {
	capacity := 10
	if override, err := parseOptionalIntEnv("RATE_LIMIT_CAPACITY"); err != nil {
		return RateLimitConfig{}, err
	} else if override != nil {
		capacity = *override
	}

	window, err := parseDurationEnv("RATE_LIMIT_WINDOW", time.Minute)
	if err != nil {
		return RateLimitConfig{}, err
	}

	return RateLimitConfig{Capacity: capacity, Window: window}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseBoolEnv(key string, defaultValue bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}

func parseDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	if val <= 0 {
		return 0, fmt.Errorf("invalid %s value %q: must be positive", key, raw)
	}
	return val, nil
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
