package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config 聚合客户端与 mock 服务的配置项。
type Config struct {
	Client  ClientConfig
	Storage StorageConfig
	Locale  LocaleConfig
	Log     LogConfig
	Server  ServerConfig
}

// Load 从环境变量加载配置。
func Load() (*Config, error) {
	client, err := loadClientConfig()
	if err != nil {
		return nil, err
	}

	storage, err := loadStorageConfig()
	if err != nil {
		return nil, err
	}

	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		Client:  client,
		Storage: storage,
		Locale:  loadLocaleConfig(),
		Log:     loadLogConfig(),
		Server:  server,
	}, nil
}

// ClientConfig 描述聊天流接口的位置与超时。
type ClientConfig struct {
	BaseURL     string
	Endpoint    string
	IdleTimeout time.Duration
}

const (
	defaultBaseURL  = "http://localhost:8081"
	defaultEndpoint = "/api/ai/chat"
)

func loadClientConfig() (ClientConfig, error) {
	baseURL := getEnvOrDefault("CHAT_BASE_URL", defaultBaseURL)
	parsed, err := url.Parse(baseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return ClientConfig{}, fmt.Errorf("invalid CHAT_BASE_URL value %q", baseURL)
	}

	endpoint := getEnvOrDefault("CHAT_ENDPOINT", defaultEndpoint)
	if !strings.HasPrefix(endpoint, "/") {
		endpoint = "/" + endpoint
	}

	idle, err := parseDurationEnv("CHAT_IDLE_TIMEOUT", 0)
	if err != nil {
		return ClientConfig{}, err
	}
	if idle < 0 {
		return ClientConfig{}, fmt.Errorf("invalid CHAT_IDLE_TIMEOUT value %q: must not be negative", idle)
	}

	return ClientConfig{
		BaseURL:     strings.TrimRight(baseURL, "/"),
		Endpoint:    endpoint,
		IdleTimeout: idle,
	}, nil
}

// Storage drivers.
const (
	DriverMemory = "memory"
	DriverFile   = "file"
	DriverRedis  = "redis"
)

// StorageConfig 描述持久化语言设置所用的存储。
type StorageConfig struct {
	Driver        string
	Path          string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string
}

func loadStorageConfig() (StorageConfig, error) {
	driver := strings.ToLower(getEnvOrDefault("STORAGE_DRIVER", DriverFile))
	switch driver {
	case DriverMemory, DriverFile, DriverRedis:
	default:
		return StorageConfig{}, fmt.Errorf("invalid STORAGE_DRIVER value %q", driver)
	}

	db := 0
	if override, err := parseOptionalIntEnv("REDIS_DB"); err != nil {
		return StorageConfig{}, err
	} else if override != nil {
		db = *override
	}

	cfg := StorageConfig{
		Driver:        driver,
		Path:          getEnvOrDefault("STORAGE_PATH", defaultStatePath()),
		RedisAddr:     getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       db,
		RedisPrefix:   getEnvOrDefault("REDIS_PREFIX", "ai-code-helper:"),
	}

	if cfg.Driver == DriverFile && cfg.Path == "" {
		return StorageConfig{}, fmt.Errorf("STORAGE_PATH is required for the file driver")
	}
	return cfg, nil
}

// defaultStatePath 位于用户配置目录下；无法确定时返回空串。
func defaultStatePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "ai-code-helper", "state.json")
}

// LocaleConfig 描述语言包配置。
type LocaleConfig struct {
	Default string
	Dir     string
}

func loadLocaleConfig() LocaleConfig {
	return LocaleConfig{
		Default: getEnvOrDefault("LOCALE_DEFAULT", "en"),
		Dir:     strings.TrimSpace(os.Getenv("LOCALE_DIR")),
	}
}

// LogConfig 描述日志输出。
type LogConfig struct {
	Level   string
	NoColor bool
}

func loadLogConfig() LogConfig {
	_, noColor := os.LookupEnv("NO_COLOR")
	return LogConfig{
		Level:   getEnvOrDefault("LOG_LEVEL", "info"),
		NoColor: noColor,
	}
}

// ServerConfig 描述 mock HTTP 服务配置。
type ServerConfig struct {
	Addr       string
	ChunkDelay time.Duration
}

// loadServerConfig 解析服务器监听地址。
func loadServerConfig() (ServerConfig, error) {
	delay, err := parseDurationEnv("MOCK_CHUNK_DELAY", 0)
	if err != nil {
		return ServerConfig{}, err
	}

	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8081"
	}

	if strings.Contains(port, ":") {
		// 允许用户直接传入 ":8081" 或 "127.0.0.1:8081"。
		return ServerConfig{Addr: port, ChunkDelay: delay}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port, ChunkDelay: delay}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
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
	return val, nil
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
