package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Auth     AuthConfig
	Images   ImagesConfig
}

type DatabaseConfig struct {
	Host              string
	Port              int
	User              string
	Password          string
	Name              string
	SSLMode           string
	MaxConns          int32
	MinConns          int32
	MaxConnLifetime   time.Duration
	MaxConnIdleTime   time.Duration
	HealthCheckPeriod time.Duration
}

type ServerConfig struct {
	Port     string
	Env      string
	LogLevel string
}

type AuthConfig struct {
	// RSA key material for token signing/verification (PEM file paths)
	PrivateKeyPath string
	PublicKeyPath  string
	Issuer         string
	Audience       string
	TokenExpiry    time.Duration

	// Login throttle knobs
	MaxAttemptsPerWindow int
	AttemptWindow        time.Duration
}

type ImagesConfig struct {
	Dir string
}

// requiredVars must all be present in the environment; startup fails otherwise
var requiredVars = []string{
	"DB_HOST",
	"DB_USER",
	"DB_PASSWORD",
	"DB_NAME",
	"RSA_PRIVATE_KEY",
	"RSA_PUBLIC_KEY",
	"JWT_ISSUER",
	"JWT_AUDIENCE",
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	// Collect every missing variable so the operator sees the full list at once
	var missing []string
	for _, name := range requiredVars {
		if os.Getenv(name) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("environment not complete (missing: %s)", strings.Join(missing, ", "))
	}

	cfg := &Config{
		Database: DatabaseConfig{
			Host:              getEnv("DB_HOST", "localhost"),
			Port:              getEnvAsInt("DB_PORT", 5432),
			User:              getEnv("DB_USER", "postgres"),
			Password:          getEnv("DB_PASSWORD", ""),
			Name:              getEnv("DB_NAME", "piiquante"),
			SSLMode:           getEnv("DB_SSLMODE", "disable"),
			MaxConns:          int32(getEnvAsInt("DB_MAX_CONNS", 25)),
			MinConns:          int32(getEnvAsInt("DB_MIN_CONNS", 5)),
			MaxConnLifetime:   getEnvAsDuration("DB_MAX_CONN_LIFETIME", 5*time.Minute),
			MaxConnIdleTime:   getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 1*time.Minute),
			HealthCheckPeriod: getEnvAsDuration("DB_HEALTH_CHECK_PERIOD", 1*time.Minute),
		},
		Server: ServerConfig{
			Port:     getEnv("PORT", "3000"),
			Env:      getEnv("ENV", "development"),
			LogLevel: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			PrivateKeyPath:       getEnv("RSA_PRIVATE_KEY", ""),
			PublicKeyPath:        getEnv("RSA_PUBLIC_KEY", ""),
			Issuer:               getEnv("JWT_ISSUER", ""),
			Audience:             getEnv("JWT_AUDIENCE", ""),
			TokenExpiry:          getEnvAsDuration("TOKEN_EXPIRY", 12*time.Hour),
			MaxAttemptsPerWindow: getEnvAsInt("LOGIN_MAX_ATTEMPTS", 5),
			AttemptWindow:        getEnvAsDuration("LOGIN_ATTEMPT_WINDOW", 60*time.Second),
		},
		Images: ImagesConfig{
			Dir: getEnv("IMAGES_DIR", "images"),
		},
	}

	return cfg, nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultVal
}
