package server

import (
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// RateLimitConfig defines the parameters for per-session message rate limiting.
type RateLimitConfig struct {
	Burst          int
	RefillInterval time.Duration
}

// Config holds the server configuration settings including security controls.
type Config struct {
	// TCPAddr is the host:port the plaintext chat listener binds to.
	TCPAddr string
	// HTTPAddr is the host:port of the HTTP side (health check, WebSocket gateway).
	HTTPAddr string
	// AllowedOrigins restricts which origins may open WebSocket connections.
	AllowedOrigins []string
	// MaxMessageSize bounds a single inbound read in bytes.
	MaxMessageSize int64
	// HistorySize is how many broadcast lines the hub retains for replay.
	HistorySize int
	// HistoryGreets is how many retained lines a newly joined session receives.
	HistoryGreets int
	RateLimit     RateLimitConfig
}

var (
	configMu        sync.RWMutex
	activeConfig    Config
	allowedOrigins  map[string]struct{}
	allowAllOrigins bool
)

func init() {
	SetConfig(nil)
}

func defaultConfig() Config {
	return Config{
		TCPAddr:  "localhost:8080",
		HTTPAddr: ":8081",
		AllowedOrigins: []string{
			"http://localhost:8081",
		},
		MaxMessageSize: 1024,
		HistorySize:    50,
		HistoryGreets:  10,
		RateLimit: RateLimitConfig{
			Burst:          5,
			RefillInterval: time.Second,
		},
	}
}

func sanitizeConfig(cfg Config) Config {
	if cfg.TCPAddr == "" {
		cfg.TCPAddr = "localhost:8080"
	}

	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8081"
	}

	if cfg.MaxMessageSize <= 0 {
		cfg.MaxMessageSize = 1024
	}

	if cfg.HistorySize < 0 {
		cfg.HistorySize = 0
	}

	if cfg.HistoryGreets < 0 {
		cfg.HistoryGreets = 0
	}
	if cfg.HistoryGreets > cfg.HistorySize {
		cfg.HistoryGreets = cfg.HistorySize
	}

	if cfg.RateLimit.Burst <= 0 {
		cfg.RateLimit.Burst = 5
	}

	if cfg.RateLimit.RefillInterval <= 0 {
		cfg.RateLimit.RefillInterval = time.Second
	}

	normalizedOrigins, allowAll := normalizeOrigins(cfg.AllowedOrigins)
	cfg.AllowedOrigins = normalizedOrigins

	configMu.Lock()
	defer configMu.Unlock()

	activeConfig = cfg
	allowAllOrigins = allowAll
	allowedOrigins = make(map[string]struct{}, len(normalizedOrigins))
	for _, origin := range normalizedOrigins {
		allowedOrigins[origin] = struct{}{}
	}

	return cfg
}

// SetConfig applies the provided configuration. Passing nil resets to defaults.
func SetConfig(cfg *Config) {
	if cfg == nil {
		defaultCfg := defaultConfig()
		sanitizeConfig(defaultCfg)
		return
	}

	sanitized := Config{
		TCPAddr:        cfg.TCPAddr,
		HTTPAddr:       cfg.HTTPAddr,
		AllowedOrigins: append([]string(nil), cfg.AllowedOrigins...),
		MaxMessageSize: cfg.MaxMessageSize,
		HistorySize:    cfg.HistorySize,
		HistoryGreets:  cfg.HistoryGreets,
		RateLimit: RateLimitConfig{
			Burst:          cfg.RateLimit.Burst,
			RefillInterval: cfg.RateLimit.RefillInterval,
		},
	}
	sanitizeConfig(sanitized)
}

// CurrentConfig returns a copy of the active, sanitized configuration.
func CurrentConfig() Config {
	configMu.RLock()
	defer configMu.RUnlock()

	cfg := activeConfig
	cfg.AllowedOrigins = append([]string(nil), cfg.AllowedOrigins...)
	return cfg
}

// NewConfig creates a Config instance populated with default values for all settings.
func NewConfig() *Config {
	cfg := defaultConfig()
	return &cfg
}

// NewConfigFromEnv creates a Config instance from environment variables.
// Falls back to default values if environment variables are not set.
func NewConfigFromEnv() *Config {
	cfg := defaultConfig()

	if addr := os.Getenv("CHAT_TCP_ADDR"); addr != "" {
		cfg.TCPAddr = addr
	}

	if addr := os.Getenv("CHAT_HTTP_ADDR"); addr != "" {
		cfg.HTTPAddr = addr
	}

	if origins := os.Getenv("CHAT_ALLOWED_ORIGINS"); origins != "" {
		cfg.AllowedOrigins = parseOrigins(origins)
	}

	if maxSize := os.Getenv("CHAT_MAX_MESSAGE_SIZE"); maxSize != "" {
		cfg.MaxMessageSize = parseMaxMessageSize(maxSize, cfg.MaxMessageSize)
	}

	if size := os.Getenv("CHAT_HISTORY_SIZE"); size != "" {
		cfg.HistorySize = parseIntValue(size, cfg.HistorySize)
	}

	if greets := os.Getenv("CHAT_HISTORY_GREETS"); greets != "" {
		cfg.HistoryGreets = parseIntValue(greets, cfg.HistoryGreets)
	}

	if burst := os.Getenv("CHAT_RATE_LIMIT_BURST"); burst != "" {
		cfg.RateLimit.Burst = parseIntValue(burst, cfg.RateLimit.Burst)
	}

	if interval := os.Getenv("CHAT_RATE_LIMIT_REFILL_INTERVAL"); interval != "" {
		cfg.RateLimit.RefillInterval = parseRefillInterval(interval, cfg.RateLimit.RefillInterval)
	}

	return &cfg
}

// fileConfig mirrors Config for YAML decoding; durations are given in seconds.
type fileConfig struct {
	TCPAddr            string   `yaml:"tcp_addr"`
	HTTPAddr           string   `yaml:"http_addr"`
	AllowedOrigins     []string `yaml:"allowed_origins"`
	MaxMessageSize     int64    `yaml:"max_message_size"`
	HistorySize        int      `yaml:"history_size"`
	HistoryGreets      int      `yaml:"history_greets"`
	RateLimitBurst     int      `yaml:"rate_limit_burst"`
	RateLimitRefillSec int      `yaml:"rate_limit_refill_seconds"`
}

// LoadConfigFile reads a YAML configuration file. Settings absent from the
// file keep their default values.
func LoadConfigFile(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var fc fileConfig
	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(&fc); err != nil {
		return nil, err
	}

	cfg := defaultConfig()
	if fc.TCPAddr != "" {
		cfg.TCPAddr = fc.TCPAddr
	}
	if fc.HTTPAddr != "" {
		cfg.HTTPAddr = fc.HTTPAddr
	}
	if len(fc.AllowedOrigins) > 0 {
		cfg.AllowedOrigins = fc.AllowedOrigins
	}
	if fc.MaxMessageSize > 0 {
		cfg.MaxMessageSize = fc.MaxMessageSize
	}
	if fc.HistorySize > 0 {
		cfg.HistorySize = fc.HistorySize
	}
	if fc.HistoryGreets > 0 {
		cfg.HistoryGreets = fc.HistoryGreets
	}
	if fc.RateLimitBurst > 0 {
		cfg.RateLimit.Burst = fc.RateLimitBurst
	}
	if fc.RateLimitRefillSec > 0 {
		cfg.RateLimit.RefillInterval = time.Duration(fc.RateLimitRefillSec) * time.Second
	}

	return &cfg, nil
}

func parseOrigins(origins string) []string {
	parts := strings.Split(origins, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func parseMaxMessageSize(value string, defaultValue int64) int64 {
	if size, err := strconv.ParseInt(value, 10, 64); err == nil && size > 0 {
		return size
	}
	return defaultValue
}

func parseIntValue(value string, defaultValue int) int {
	if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
		return parsed
	}
	return defaultValue
}

func parseRefillInterval(value string, defaultValue time.Duration) time.Duration {
	if seconds, err := strconv.Atoi(value); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	return defaultValue
}
