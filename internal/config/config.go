package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port          string
	DBPath        string
	MigrationsDir string
	CORSOrigins   []string
	APIPassphrase string
	JWTSecret     string
	TokenTTL      time.Duration
	TickInterval  time.Duration
}

// fileConfig mirrors the optional YAML config file. Every field is a
// pointer so an absent key leaves the default untouched.
type fileConfig struct {
	Port           *string   `yaml:"port"`
	DBPath         *string   `yaml:"dbPath"`
	MigrationsDir  *string   `yaml:"migrationsDir"`
	CORSOrigins    *[]string `yaml:"corsOrigins"`
	APIPassphrase  *string   `yaml:"apiPassphrase"`
	JWTSecret      *string   `yaml:"jwtSecret"`
	TokenTTLHours  *int      `yaml:"tokenTtlHours"`
	TickIntervalMS *int      `yaml:"tickIntervalMs"`
}

// Load builds the configuration from defaults, then the optional YAML
// file named by CONFIG_PATH, then environment variable overrides.
func Load() Config {
	cfg := Config{
		Port:          "8080",
		DBPath:        "./data/focusloop.db",
		MigrationsDir: "./migrations",
		CORSOrigins:   []string{"http://localhost:5173", "http://127.0.0.1:5173"},
		JWTSecret:     "change-this-secret",
		TokenTTL:      72 * time.Hour,
		TickInterval:  250 * time.Millisecond,
	}

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		applyFile(&cfg, path)
	}

	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.DBPath = getEnv("DB_PATH", cfg.DBPath)
	cfg.MigrationsDir = getEnv("MIGRATIONS_DIR", cfg.MigrationsDir)
	cfg.CORSOrigins = getEnvList("CORS_ORIGINS", cfg.CORSOrigins)
	cfg.APIPassphrase = getEnv("API_PASSPHRASE", cfg.APIPassphrase)
	cfg.JWTSecret = getEnv("JWT_SECRET", cfg.JWTSecret)
	cfg.TokenTTL = time.Duration(getEnvInt("TOKEN_TTL_HOURS", int(cfg.TokenTTL/time.Hour))) * time.Hour
	cfg.TickInterval = time.Duration(getEnvInt("TICK_INTERVAL_MS", int(cfg.TickInterval/time.Millisecond))) * time.Millisecond

	return cfg
}

func applyFile(cfg *Config, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return
	}

	if fc.Port != nil {
		cfg.Port = *fc.Port
	}
	if fc.DBPath != nil {
		cfg.DBPath = *fc.DBPath
	}
	if fc.MigrationsDir != nil {
		cfg.MigrationsDir = *fc.MigrationsDir
	}
	if fc.CORSOrigins != nil {
		cfg.CORSOrigins = *fc.CORSOrigins
	}
	if fc.APIPassphrase != nil {
		cfg.APIPassphrase = *fc.APIPassphrase
	}
	if fc.JWTSecret != nil {
		cfg.JWTSecret = *fc.JWTSecret
	}
	if fc.TokenTTLHours != nil {
		cfg.TokenTTL = time.Duration(*fc.TokenTTLHours) * time.Hour
	}
	if fc.TickIntervalMS != nil && *fc.TickIntervalMS > 0 {
		cfg.TickInterval = time.Duration(*fc.TickIntervalMS) * time.Millisecond
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvList(key string, fallback []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}

	parts := strings.Split(value, ",")
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			items = append(items, trimmed)
		}
	}
	if len(items) == 0 {
		return fallback
	}
	return items
}
