package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the stmtconv.yaml configuration.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Parse  ParseConfig  `yaml:"parse"`
	Log    LogConfig    `yaml:"log"`
}

// ServerConfig controls the web UI.
type ServerConfig struct {
	Host        string `yaml:"host"`
	Port        int    `yaml:"port"`
	MaxUploadMB int    `yaml:"max_upload_mb"`
	// RateLimitPerSecond is the sustained conversion rate per server. Zero disables limiting.
	RateLimitPerSecond float64  `yaml:"rate_limit_per_second"`
	RateLimitBurst     int      `yaml:"rate_limit_burst"`
	AllowedOrigins     []string `yaml:"allowed_origins,omitempty"`
	MetricsEnabled     bool     `yaml:"metrics_enabled"`
}

// ParseConfig holds extraction defaults.
type ParseConfig struct {
	Layout        string   `yaml:"layout,omitempty"` // empty means auto-detect
	PositiveHints []string `yaml:"positive_hints,omitempty"`
	NegativeHints []string `yaml:"negative_hints,omitempty"`
	Strict        bool     `yaml:"strict"`
}

// LogConfig controls the logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "text" or "json"
}

// Load reads a stmtconv.yaml file from disk. Missing fields keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:               "0.0.0.0",
			Port:               3000,
			MaxUploadMB:        20,
			RateLimitPerSecond: 5,
			RateLimitBurst:     10,
			MetricsEnabled:     true,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// LoadDotEnv loads a .env file into the process environment when one exists.
// Variables already set are not overridden.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	var existing []string
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			existing = append(existing, p)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("loading env file: %w", err)
	}
	return nil
}

// ApplyEnv overlays environment variables on cfg.
func (c *Config) ApplyEnv() {
	c.Server.Host = getEnv("STMTCONV_HOST", c.Server.Host)
	c.Server.Port = getEnvAsInt("PORT", c.Server.Port)
	c.Server.MaxUploadMB = getEnvAsInt("STMTCONV_MAX_UPLOAD_MB", c.Server.MaxUploadMB)
	c.Server.MetricsEnabled = getEnvAsBool("STMTCONV_METRICS_ENABLED", c.Server.MetricsEnabled)
	if origins := getEnv("STMTCONV_ALLOWED_ORIGINS", ""); origins != "" {
		c.Server.AllowedOrigins = splitList(origins)
	}
	c.Log.Level = getEnv("STMTCONV_LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnv("STMTCONV_LOG_FORMAT", c.Log.Format)
}

// Validate checks values that would otherwise fail later at startup.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Server.MaxUploadMB <= 0 {
		return fmt.Errorf("server.max_upload_mb must be positive, got %d", c.Server.MaxUploadMB)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	return nil
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// MaxUploadBytes returns the upload cap in bytes.
func (s ServerConfig) MaxUploadBytes() int64 {
	return int64(s.MaxUploadMB) << 20
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
