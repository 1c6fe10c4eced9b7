package config

import (
	"os"      // For environment variables
	"strconv" // For string to int conversion
	"strings" // For list parsing
	"time"    // For durations

	"github.com/joho/godotenv" // For loading .env files
)

// Supported database drivers
const (
	DriverMySQL    = "mysql"    // MySQL through gorm.io/driver/mysql
	DriverPostgres = "postgres" // PostgreSQL through gorm.io/driver/postgres
	DriverSQLite   = "sqlite"   // SQLite through github.com/glebarez/sqlite
)

// Config holds the application configuration
type Config struct {
	AppPort           string        // Application port
	DBDriver          string        // Database driver: mysql, postgres or sqlite
	DBUser            string        // Database user
	DBPassword        string        // Database password
	DBHost            string        // Database host
	DBPort            string        // Database port
	DBName            string        // Database name
	DBPath            string        // SQLite database file
	JWTSecret         string        // JWT secret key
	JWTTTL            time.Duration // Token lifetime
	RedisAddr         string        // Redis server address, empty for in-process cache and broker
	RedisPass         string        // Redis password
	RedisDB           int           // Redis database number
	IsProd            bool          // Is production environment
	AssetUploadURL    string        // Image host upload endpoint
	AssetUploadPreset string        // Image host unsigned upload preset
	AssetTimeout      time.Duration // Image upload timeout
	CORSOrigins       []string      // Allowed CORS origins
	CacheTTL          time.Duration // Read cache lifetime
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	_ = godotenv.Load() // Load .env file if present
	redisDB, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
	return &Config{
		AppPort:           getenv("APP_PORT", "8080"),                        // Application port
		DBDriver:          strings.ToLower(getenv("DB_DRIVER", DriverMySQL)), // Database driver
		DBUser:            os.Getenv("DB_USER"),                              // Database user
		DBPassword:        os.Getenv("DB_PASSWORD"),                          // Database password
		DBHost:            getenv("DB_HOST", "127.0.0.1"),                    // Database host
		DBPort:            os.Getenv("DB_PORT"),                              // Database port
		DBName:            os.Getenv("DB_NAME"),                              // Database name
		DBPath:            getenv("DB_PATH", "expense_tracker.db"),           // SQLite file
		JWTSecret:         os.Getenv("JWT_SECRET"),                           // JWT secret key
		JWTTTL:            getDuration("JWT_TTL", 24*time.Hour),              // Token lifetime
		RedisAddr:         os.Getenv("REDIS_ADDR"),                           // Redis server address
		RedisPass:         os.Getenv("REDIS_PASS"),                           // Redis password
		RedisDB:           redisDB,                                           // Redis database number
		IsProd:            os.Getenv("IS_PROD") == "true",                    // Is production environment
		AssetUploadURL:    os.Getenv("ASSET_UPLOAD_URL"),                     // Image host endpoint
		AssetUploadPreset: os.Getenv("ASSET_UPLOAD_PRESET"),                  // Upload preset
		AssetTimeout:      getDuration("ASSET_TIMEOUT", 30*time.Second),      // Upload timeout
		CORSOrigins:       splitList(os.Getenv("CORS_ORIGINS")),              // Allowed origins
		CacheTTL:          getDuration("CACHE_TTL", 60*time.Second),          // Read cache lifetime
	}
}

// DSN builds the Data Source Name for the configured driver
func (c *Config) DSN() string {
	switch c.DBDriver {
	case DriverPostgres:
		port := c.DBPort
		if port == "" {
			port = "5432" // Default PostgreSQL port
		}
		return "host=" + c.DBHost + " user=" + c.DBUser + " password=" + c.DBPassword + " dbname=" + c.DBName + " port=" + port + " sslmode=disable"
	case DriverSQLite:
		return c.DBPath // SQLite only needs a file path
	default:
		port := c.DBPort
		if port == "" {
			port = "3306" // Default MySQL port
		}
		return c.DBUser + ":" + c.DBPassword + "@tcp(" + c.DBHost + ":" + port + ")/" + c.DBName + "?parseTime=true"
	}
}

// getenv returns the variable or a fallback when it is unset
func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getDuration parses a Go duration, falling back on empty or invalid values
func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// splitList splits a comma separated list, dropping blanks
func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
