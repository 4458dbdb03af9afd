package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config captures all runtime configuration derived from environment variables.
type Config struct {
	Port                  string
	AdminToken            string
	JWTSecret             string
	DBURL                 string
	RedisAddr             string
	RedisPassword         string
	RedisDB               int
	MediaStoreURL         string
	MediaStoreAPIKey      string
	MediaStoreTimeoutSecs int
	LeaderboardSize       int
	LeaderboardTTLSecs    int
	SnapshotIntervalSecs  int
	ReadTimeoutSecs       int
	WriteTimeoutSecs      int
	IdleTimeoutSecs       int
	DBMaxConns            int
	DBMinConns            int
	DBMaxIdleSecs         int
	DBMaxLifeSecs         int
	DBConnTimeoutSecs     int
	DBStatementCache      int
	TxMaxAttempts         int
}

// Load reads configuration from environment variables, applying defaults and
// validation. A local .env file, if present, is loaded first but never
// overrides the real environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Port:                  getEnv("PORT", "8080"),
		AdminToken:            os.Getenv("ADMIN_TOKEN"),
		JWTSecret:             os.Getenv("JWT_SECRET"),
		DBURL:                 os.Getenv("DB_URL"),
		RedisAddr:             getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:         os.Getenv("REDIS_PASSWORD"),
		RedisDB:               getEnvInt("REDIS_DB", 0),
		MediaStoreURL:         os.Getenv("MEDIASTORE_URL"),
		MediaStoreAPIKey:      os.Getenv("MEDIASTORE_API_KEY"),
		MediaStoreTimeoutSecs: getEnvInt("MEDIASTORE_TIMEOUT_SECS", 5),
		LeaderboardSize:       getEnvInt("LEADERBOARD_SIZE", 3),
		LeaderboardTTLSecs:    getEnvInt("LEADERBOARD_TTL_SECS", 15),
		SnapshotIntervalSecs:  getEnvInt("SNAPSHOT_INTERVAL_SECS", 10),
		ReadTimeoutSecs:       getEnvInt("SERVER_READ_TIMEOUT", 15),
		WriteTimeoutSecs:      getEnvInt("SERVER_WRITE_TIMEOUT", 15),
		IdleTimeoutSecs:       getEnvInt("SERVER_IDLE_TIMEOUT", 60),
		DBMaxConns:            getEnvInt("DB_MAX_CONNS", 20),
		DBMinConns:            getEnvInt("DB_MIN_CONNS", 2),
		DBMaxIdleSecs:         getEnvInt("DB_MAX_CONN_IDLE_SECS", 300),
		DBMaxLifeSecs:         getEnvInt("DB_MAX_CONN_LIFETIME_SECS", 3600),
		DBConnTimeoutSecs:     getEnvInt("DB_CONN_TIMEOUT_SECS", 10),
		DBStatementCache:      getEnvInt("DB_STATEMENT_CACHE_CAPACITY", 256),
		TxMaxAttempts:         getEnvInt("TX_MAX_ATTEMPTS", 3),
	}

	if cfg.AdminToken == "" {
		return Config{}, fmt.Errorf("ADMIN_TOKEN is required")
	}
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.DBURL == "" {
		return Config{}, fmt.Errorf("DB_URL is required")
	}
	if cfg.MediaStoreURL == "" {
		return Config{}, fmt.Errorf("MEDIASTORE_URL is required")
	}
	if cfg.MediaStoreAPIKey == "" {
		return Config{}, fmt.Errorf("MEDIASTORE_API_KEY is required")
	}
	if cfg.MediaStoreTimeoutSecs <= 0 {
		return Config{}, fmt.Errorf("MEDIASTORE_TIMEOUT_SECS must be positive")
	}
	if cfg.LeaderboardSize <= 0 {
		return Config{}, fmt.Errorf("LEADERBOARD_SIZE must be positive")
	}
	if cfg.LeaderboardTTLSecs <= 0 {
		return Config{}, fmt.Errorf("LEADERBOARD_TTL_SECS must be positive")
	}
	if cfg.SnapshotIntervalSecs <= 0 {
		return Config{}, fmt.Errorf("SNAPSHOT_INTERVAL_SECS must be positive")
	}
	if cfg.DBMaxConns <= 0 {
		return Config{}, fmt.Errorf("DB_MAX_CONNS must be positive")
	}
	if cfg.DBMinConns < 0 {
		return Config{}, fmt.Errorf("DB_MIN_CONNS must be non-negative")
	}
	if cfg.DBMaxConns > 0 && cfg.DBMinConns > cfg.DBMaxConns {
		return Config{}, fmt.Errorf("DB_MIN_CONNS cannot exceed DB_MAX_CONNS")
	}
	if cfg.DBStatementCache < 0 {
		return Config{}, fmt.Errorf("DB_STATEMENT_CACHE_CAPACITY must be non-negative")
	}
	if cfg.TxMaxAttempts <= 0 {
		return Config{}, fmt.Errorf("TX_MAX_ATTEMPTS must be positive")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}
