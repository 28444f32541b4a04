// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// PostgresConfig holds the connection settings of the Postgres pool.
type PostgresConfig struct {
	User     string
	Password string
	Host     string
	Port     string
	Database string
	Disabled bool
}

// ConnString renders the settings as a postgres:// URL.
func (p PostgresConfig) ConnString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s", p.User, p.Password, p.Host, p.Port, p.Database)
}

// RedisConfig holds the Redis client settings.
type RedisConfig struct {
	Addr     string
	DB       int
	Disabled bool
}

// Config is the runtime configuration of the server and the historian, read from the environment.
type Config struct {
	Port     string
	LogLevel string

	Postgres PostgresConfig
	Redis    RedisConfig

	HistorianQueue      string
	HistorianBatchSize  int
	HistorianFlushDelay time.Duration

	SnapshotTTL time.Duration

	// TokenExpire of 0 issues tokens without an exp claim.
	TokenExpire       time.Duration
	JWTPrivateKeyPath string
	JWTPublicKeyPath  string

	TickInterval      time.Duration
	SpeakerPause      time.Duration
	LobbyAbandonAfter time.Duration
	JanitorInterval   time.Duration

	WordsFile      string
	AllowedOrigins []string
}

// Load reads the configuration from environment variables, applying defaults for unset keys.
func Load() (*Config, error) {
	cfg := &Config{
		Port:     getEnv("PORT", "8080"),
		LogLevel: getEnv("LOG_LEVEL", "debug"),
		Postgres: PostgresConfig{
			User:     getEnv("POSTGRES_USER", "postgres"),
			Password: getEnv("POSTGRES_PASSWORD", ""),
			Host:     getEnv("PG_HOST", "localhost"),
			Port:     getEnv("PG_PORT", "5432"),
			Database: getEnv("PG_DATABASE", "imposter"),
			Disabled: getEnvBool("DATABASE_DISABLED", false),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			DB:       getEnvInt("REDIS_DB", 0),
			Disabled: getEnvBool("REDIS_DISABLED", false),
		},
		HistorianQueue:     getEnv("HISTORIAN_QUEUE_NAME", "imposter_lobby_events"),
		HistorianBatchSize: getEnvInt("HISTORIAN_BATCH_SIZE", 20),
		JWTPrivateKeyPath:  os.Getenv("JWT_PRIVATE_KEY_PATH"),
		JWTPublicKeyPath:   os.Getenv("JWT_PUBLIC_KEY_PATH"),
		WordsFile:          os.Getenv("WORDS_FILE"),
		AllowedOrigins:     splitList(os.Getenv("ALLOWED_ORIGINS")),
	}

	var err error
	if cfg.HistorianFlushDelay, err = getEnvMillis("HISTORIAN_FLUSH_MS", 500*time.Millisecond); err != nil {
		return nil, err
	}
	if cfg.SnapshotTTL, err = getEnvDuration("SNAPSHOT_TTL", time.Hour); err != nil {
		return nil, err
	}
	if cfg.TokenExpire, err = parseTokenExpire(os.Getenv("TOKEN_EXPIRE_TIME")); err != nil {
		return nil, err
	}
	if cfg.TickInterval, err = getEnvDuration("TICK_INTERVAL", time.Second); err != nil {
		return nil, err
	}
	if cfg.SpeakerPause, err = getEnvDuration("SPEAKER_PAUSE", time.Second); err != nil {
		return nil, err
	}
	if cfg.LobbyAbandonAfter, err = getEnvDuration("LOBBY_ABANDON_AFTER", 10*time.Minute); err != nil {
		return nil, err
	}
	if cfg.JanitorInterval, err = getEnvDuration("JANITOR_INTERVAL", time.Minute); err != nil {
		return nil, err
	}
	return cfg, nil
}

// parseTokenExpire accepts a Go duration, or "never", "0" or nothing for tokens without expiry.
func parseTokenExpire(s string) (time.Duration, error) {
	if s == "" || s == "never" || s == "0" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("failed to parse TOKEN_EXPIRE_TIME: %w", err)
	}
	return d, nil
}

// getEnv is a helper to read an environment variable or return a default value.
func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

// getEnvInt is a helper to parse an environment variable as integer, else a default value.
func getEnvInt(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}

func getEnvBool(key string, def bool) bool {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return def
	}
	return v
}

func getEnvDuration(key string, def time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("failed to parse %s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", key, s)
	}
	return d, nil
}

func getEnvMillis(key string, def time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	ms, err := strconv.Atoi(s)
	if err != nil || ms <= 0 {
		return 0, fmt.Errorf("%s must be a positive number of milliseconds, got %q", key, s)
	}
	return time.Duration(ms) * time.Millisecond, nil
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
