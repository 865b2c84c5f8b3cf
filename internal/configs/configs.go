package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
)

type Config struct {
	AppURL                 string
	DatabaseDSN            string
	StorageRoot            string
	StoragePublicPrefix    string
	RedisAddr              string
	RedisEventsChannel     string
	RateLimit              int
	SweepIntervalSeconds   int
	SweepGraceSeconds      int
	ShutdownTimeoutSeconds int
	LogFile                string
	LogLevel               string
}

func Load() Config {
	appHost := getEnv("APP_HOST", "127.0.0.1")
	appPort := getEnv("APP_PORT", "8080")
	redisHost := getEnv("REDIS_HOST", "127.0.0.1")
	redisPort := getEnv("REDIS_PORT", "6379")

	cfg := Config{
		AppURL:                 fmt.Sprintf("%s:%s", appHost, appPort),
		DatabaseDSN:            getEnv("DATABASE_DSN", "taskhub.db"),
		StorageRoot:            getEnv("STORAGE_ROOT", "storage"),
		StoragePublicPrefix:    getEnv("STORAGE_PUBLIC_PREFIX", "/storage"),
		RedisAddr:              fmt.Sprintf("%s:%s", redisHost, redisPort),
		RedisEventsChannel:     getEnv("REDIS_EVENTS_CHANNEL", "taskhub_events"),
		RateLimit:              getEnvAsInt("RATE_LIMIT_PER_MINUTE", 60),
		SweepIntervalSeconds:   getEnvAsInt("SWEEP_INTERVAL_SECONDS", 300),
		SweepGraceSeconds:      getEnvAsInt("SWEEP_GRACE_SECONDS", 3600),
		ShutdownTimeoutSeconds: getEnvAsInt("SHUTDOWN_TIMEOUT_SECONDS", 20),
		LogFile:                getEnv("LOG_FILE", ""),
		LogLevel:               getEnv("LOG_LEVEL", "info"),
	}

	validate(cfg)
	return cfg
}

func validate(cfg Config) {
	if cfg.AppURL == "" {
		log.Fatal("APP_URL must not be empty (e.g. 127.0.0.1:8080)")
	}
	if cfg.DatabaseDSN == "" {
		log.Fatal("DATABASE_DSN must not be empty")
	}
	if cfg.StorageRoot == "" {
		log.Fatal("STORAGE_ROOT must not be empty")
	}
	if cfg.RateLimit <= 0 {
		log.Fatal("RATE_LIMIT_PER_MINUTE must be greater than 0")
	}
	if cfg.SweepIntervalSeconds <= 0 {
		log.Fatal("SWEEP_INTERVAL_SECONDS must be greater than 0")
	}
	if cfg.SweepGraceSeconds < 0 {
		log.Fatal("SWEEP_GRACE_SECONDS must not be negative")
	}
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err != nil {
			log.Fatalf("invalid integer value for %s", key)
		}
		return i
	}
	return defaultVal
}
