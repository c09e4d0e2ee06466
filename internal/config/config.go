package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBConnStr  string // overrides the individual DB fields when set

	Port     int
	LogLevel string
	Pretty   bool

	JWTSecret      string
	CORSOrigins    []string
	RateLimitPerIP float64 // requests per second
	RateLimitBurst int

	// DevMode bypasses token verification and acts as DevUserID.
	// Never enable in production.
	DevMode   bool
	DevUserID int64
}

// Load reads configuration from the environment, with an optional .env file
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		DBHost:         getEnv("DB_HOST", "localhost"),
		DBPort:         getEnv("DB_PORT", "5432"),
		DBUser:         getEnv("DB_USER", "postgres"),
		DBPassword:     getEnv("DB_PASSWORD", "postgres"),
		DBName:         getEnv("DB_NAME", "fundledger"),
		DBConnStr:      getEnv("DB_CONN_STR", ""),
		Port:           getEnvAsInt("PORT", 8080),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		Pretty:         getEnvAsBool("LOG_PRETTY", false),
		JWTSecret:      getEnv("JWT_SECRET", ""),
		RateLimitPerIP: getEnvAsFloat("RATE_LIMIT_PER_IP", 10),
		RateLimitBurst: getEnvAsInt("RATE_LIMIT_BURST", 20),
		DevMode:        getEnvAsBool("DEV_MODE", false),
		DevUserID:      int64(getEnvAsInt("DEV_USER_ID", 0)),
	}

	for _, origin := range strings.Split(getEnv("CORS_ORIGINS", "http://localhost:3000"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, origin)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if !c.DevMode && c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required unless DEV_MODE is enabled")
	}
	if c.DevMode && c.DevUserID == 0 {
		return fmt.Errorf("DEV_USER_ID is required when DEV_MODE is enabled")
	}
	return nil
}

// ConnectionString builds the postgres DSN
func (c *Config) ConnectionString() string {
	if c.DBConnStr != "" {
		return c.DBConnStr
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName)
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
