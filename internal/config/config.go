package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

var ErrMissingCredentials = errors.New("SUPABASE_URL and SUPABASE_ANON_KEY are required")

type Config struct {
	SupabaseURL        string   `yaml:"supabase_url"`
	AnonKey            string   `yaml:"supabase_anon_key"`
	JWTSecret          string   `yaml:"supabase_jwt_secret"`
	RedisURL           string   `yaml:"redis_url"`
	DatabaseURL        string   `yaml:"database_url"`
	Timezone           string   `yaml:"timezone"`
	Port               string   `yaml:"port"`
	HTTPTimeoutSeconds int      `yaml:"http_timeout_seconds"`
	LogLevelName       string   `yaml:"log_level"`
	CORSOrigins        []string `yaml:"cors_origins"`

	HTTPTimeout time.Duration  `yaml:"-"`
	LogLevel    slog.Level     `yaml:"-"`
	Location    *time.Location `yaml:"-"`
}

// FromEnv builds the config from an optional YAML file (CRM_CONFIG), then
// the environment, which wins. A local .env is loaded first if present.
func FromEnv() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if path := os.Getenv("CRM_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.SupabaseURL = strings.TrimRight(envOr("SUPABASE_URL", cfg.SupabaseURL), "/")
	cfg.AnonKey = envOr("SUPABASE_ANON_KEY", cfg.AnonKey)
	cfg.JWTSecret = envOr("SUPABASE_JWT_SECRET", cfg.JWTSecret)
	cfg.RedisURL = envOr("REDIS_URL", cfg.RedisURL)
	cfg.DatabaseURL = envOr("DATABASE_URL", cfg.DatabaseURL)
	cfg.Timezone = envOr("CRM_TIMEZONE", cfg.Timezone)
	cfg.Port = envOr("PORT", cfg.Port)
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	cfg.LogLevelName = envOr("LOG_LEVEL", cfg.LogLevelName)
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		cfg.CORSOrigins = splitList(v)
	}
	if len(cfg.CORSOrigins) == 0 {
		cfg.CORSOrigins = []string{"http://localhost:5173", "http://localhost:3000"}
	}

	if v := os.Getenv("HTTP_TIMEOUT_SECONDS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("HTTP_TIMEOUT_SECONDS: %w", err)
		}
		cfg.HTTPTimeoutSeconds = n
	}
	cfg.HTTPTimeout = 15 * time.Second
	if cfg.HTTPTimeoutSeconds > 0 {
		cfg.HTTPTimeout = time.Duration(cfg.HTTPTimeoutSeconds) * time.Second
	}

	cfg.LogLevel = slog.LevelInfo
	switch strings.ToLower(cfg.LogLevelName) {
	case "debug":
		cfg.LogLevel = slog.LevelDebug
	case "warn":
		cfg.LogLevel = slog.LevelWarn
	case "error":
		cfg.LogLevel = slog.LevelError
	}

	cfg.Location = time.Local
	if cfg.Timezone != "" {
		loc, err := time.LoadLocation(cfg.Timezone)
		if err != nil {
			return Config{}, fmt.Errorf("CRM_TIMEZONE: %w", err)
		}
		cfg.Location = loc
	}
	return cfg, nil
}

// Validate reports missing row store credentials. The server refuses to start without them.
func (c Config) Validate() error {
	if c.SupabaseURL == "" || c.AnonKey == "" {
		return ErrMissingCredentials
	}
	return nil
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
