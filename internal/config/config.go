// Package config loads and validates environment variables at startup.
// Fail-fast: if a required variable is missing, the process exits with an error.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration for the trust service.
type Config struct {
	Port               string
	GRPCPort           string
	DatabaseURL        string
	RedisURL           string
	JWTSecret          string
	ReviewSweepMinutes int  // How often the review-queue gauges are refreshed
	MigrateOnStart     bool // Apply embedded migrations before serving
	DBMaxConns         int32
}

// Load reads environment variables and returns a validated Config.
// A .env file in the working directory is loaded first when present;
// variables already set in the environment win.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		return nil, fmt.Errorf("REDIS_URL is required")
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	sweep := 15
	if s := os.Getenv("REVIEW_SWEEP_MINUTES"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 {
			return nil, fmt.Errorf("REVIEW_SWEEP_MINUTES must be a positive integer, got %q", s)
		}
		sweep = v
	}

	migrateOnStart := true
	if s := os.Getenv("MIGRATE_ON_START"); s != "" {
		v, err := strconv.ParseBool(s)
		if err != nil {
			return nil, fmt.Errorf("MIGRATE_ON_START must be a boolean, got %q", s)
		}
		migrateOnStart = v
	}

	var maxConns int32
	if s := os.Getenv("DB_MAX_CONNS"); s != "" {
		v, err := strconv.ParseInt(s, 10, 32)
		if err != nil || v < 1 {
			return nil, fmt.Errorf("DB_MAX_CONNS must be a positive integer, got %q", s)
		}
		maxConns = int32(v)
	}

	port := os.Getenv("TRUST_PORT")
	if port == "" {
		port = "8083"
	}

	grpcPort := os.Getenv("TRUST_GRPC_PORT")
	if grpcPort == "" {
		grpcPort = "9093"
	}

	return &Config{
		Port:               port,
		GRPCPort:           grpcPort,
		DatabaseURL:        dbURL,
		RedisURL:           redisURL,
		JWTSecret:          secret,
		ReviewSweepMinutes: sweep,
		MigrateOnStart:     migrateOnStart,
		DBMaxConns:         maxConns,
	}, nil
}
