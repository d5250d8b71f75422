package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	HTTPAddr    string

	// DefaultOwnerID is the user stamped on records written without an
	// authenticated actor. Recognized option: default_owner_id.
	DefaultOwnerID int64
	// TimeZone drives date defaults such as "today" for generation readings.
	TimeZone string

	OTLPEndpoint  string
	SnowflakeNode int64

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int
	DBConnMaxIdleTime int
	DBAutoMigrate     bool

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	TokenRatePerMinute float64
	TokenBurst         int

	Bootstrap BootstrapConfig
}

type BootstrapConfig struct {
	EnsureAdmin   bool
	AdminEmail    string
	AdminPassword string
	AdminName     string
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	environment := getenv("ENVIRONMENT", "development")

	cfg := Config{
		AppName:            getenv("APP_SERVICE", "solarops"),
		AppVersion:         getenv("APP_VERSION", "0.1.0"),
		Environment:        environment,
		HTTPAddr:           getenv("HTTP_ADDR", ":8080"),
		DefaultOwnerID:     getenvInt64("DEFAULT_OWNER_ID", 1),
		TimeZone:           getenv("TIME_ZONE", "Asia/Tokyo"),
		OTLPEndpoint:       getenv("OTLP_ENDPOINT", "localhost:4317"),
		SnowflakeNode:      getenvInt64("SNOWFLAKE_NODE", 1),
		DBType:             getenv("DATABASE_TYPE", "postgres"),
		DBHost:             getenv("DATABASE_HOST", "localhost"),
		DBPort:             getenv("DATABASE_PORT", "5432"),
		DBName:             getenv("DATABASE_NAME", "solar_data"),
		DBUser:             getenv("DATABASE_USER", "postgres"),
		DBPassword:         getenv("DATABASE_PASSWORD", ""),
		DBSSLMode:          getenv("DATABASE_SSLMODE", "disable"),
		DBMaxIdleConn:      getenvInt("DATABASE_MAX_IDLE_CONN", 5),
		DBMaxOpenConn:      getenvInt("DATABASE_MAX_OPEN_CONN", 20),
		DBConnMaxLifetime:  getenvInt("DATABASE_CONN_MAX_LIFETIME", 300),
		DBConnMaxIdleTime:  getenvInt("DATABASE_CONN_MAX_IDLE_TIME", 60),
		DBAutoMigrate:      getenvBool("DATABASE_AUTO_MIGRATE", true),
		RedisAddr:          strings.TrimSpace(getenv("REDIS_ADDR", "")),
		RedisPassword:      getenv("REDIS_PASSWORD", ""),
		RedisDB:            getenvInt("REDIS_DB", 0),
		TokenRatePerMinute: getenvFloat("TOKEN_RATE_PER_MINUTE", 10),
		TokenBurst:         getenvInt("TOKEN_BURST", 5),
		Bootstrap: BootstrapConfig{
			EnsureAdmin:   getenvBool("BOOTSTRAP_ADMIN", environment != "production"),
			AdminEmail:    strings.TrimSpace(getenv("BOOTSTRAP_ADMIN_EMAIL", "admin@solarops.local")),
			AdminPassword: getenv("BOOTSTRAP_ADMIN_PASSWORD", "change-me-now"),
			AdminName:     getenv("BOOTSTRAP_ADMIN_NAME", "Administrator"),
		},
	}

	return cfg
}

// Location resolves TimeZone, falling back to UTC when it cannot be loaded.
func (c Config) Location() *time.Location {
	name := strings.TrimSpace(c.TimeZone)
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(c.Environment), "production")
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return def
	}
	switch value {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

func getenvInt64(key string, def int64) int64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return def
	}
	return parsed
}

func getenvInt(key string, def int) int {
	return int(getenvInt64(key, int64(def)))
}

func getenvFloat(key string, def float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return def
	}
	return parsed
}
