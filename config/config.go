package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type R2Config struct {
	AccountID       string
	AccessKeyID     string
	AccessKeySecret string
	Bucket          string
	CDNBaseURL      string
}

// Enabled reports whether leaderboard snapshot export has somewhere to go.
func (r R2Config) Enabled() bool {
	return r.Bucket != "" && r.AccountID != ""
}

type Config struct {
	Port           int
	DatabaseURL    string
	GatewayToken   string
	AllowedOrigins []string
	LogMode        string

	RedisAddr    string
	RedisChannel string

	SyncServiceURL string
	SyncInterval   time.Duration

	LeaderboardRefreshInterval time.Duration

	R2 R2Config

	// false when no .env was found and only the process environment was read
	EnvFileLoaded bool
}

// Load reads .env when present, then the process environment.
func Load() (*Config, error) {
	envErr := godotenv.Load()

	cfg := &Config{
		EnvFileLoaded:              envErr == nil,
		Port:                       intEnv("PORT", 5200),
		DatabaseURL:                strings.TrimSpace(os.Getenv("DATABASE_URL")),
		GatewayToken:               strings.TrimSpace(os.Getenv("GAME_SERVICE_TOKEN")),
		AllowedOrigins:             splitCSV(stringEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
		LogMode:                    stringEnv("LOG_MODE", "dev"),
		RedisAddr:                  strings.TrimSpace(os.Getenv("REDIS_ADDR")),
		RedisChannel:               stringEnv("REDIS_CHANNEL", "attempts"),
		SyncServiceURL:             strings.TrimSpace(os.Getenv("SYNC_SERVICE_URL")),
		SyncInterval:               durationEnv("SYNC_INTERVAL", time.Minute),
		LeaderboardRefreshInterval: durationEnv("LEADERBOARD_REFRESH_INTERVAL", 5*time.Minute),
		R2: R2Config{
			AccountID:       strings.TrimSpace(os.Getenv("CLOUDFLARE_ACCOUNT_ID")),
			AccessKeyID:     strings.TrimSpace(os.Getenv("R2_ACCESS_KEY_ID")),
			AccessKeySecret: strings.TrimSpace(os.Getenv("R2_ACCESS_KEY_SECRET")),
			Bucket:          strings.TrimSpace(os.Getenv("R2_BUCKET_NAME")),
			CDNBaseURL:      strings.TrimSpace(os.Getenv("CDN_BASE_URL")),
		},
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var errs []error
	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL environment variable not set"))
	}
	if c.GatewayToken == "" {
		errs = append(errs, errors.New("GAME_SERVICE_TOKEN environment variable not set"))
	}
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT out of range: %d", c.Port))
	}
	if c.LeaderboardRefreshInterval <= 0 {
		errs = append(errs, errors.New("LEADERBOARD_REFRESH_INTERVAL must be positive"))
	}
	return errors.Join(errs...)
}

// Addr is the fiber listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func (c *Config) OriginsHeader() string {
	return strings.Join(c.AllowedOrigins, ",")
}

func stringEnv(name, def string) string {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	return v
}

func intEnv(name string, def int) int {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func durationEnv(name string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
