package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Config holds all configuration for the application.
type Config struct {
	API      APIConfig
	Geocoder GeocoderConfig
	Router   RouterConfig
	Session  SessionConfig
	Geo      GeoConfig
	Redis    RedisConfig
	NewRelic NewRelicConfig
	Server   ServerConfig
}

// APIConfig holds backend REST API configuration.
type APIConfig struct {
	BaseURL string
	Timeout time.Duration
}

// GeocoderConfig holds geocoding provider configuration.
type GeocoderConfig struct {
	URL       string
	UserAgent string
	Timeout   time.Duration
}

// RouterConfig holds routing provider configuration.
type RouterConfig struct {
	URL     string
	Timeout time.Duration
}

// SessionConfig holds local session storage configuration.
type SessionConfig struct {
	Path string
}

// GeoConfig holds location tracking configuration.
type GeoConfig struct {
	WatchInterval   time.Duration
	HeadingDelta    float64
	HeadingDebounce time.Duration
}

// RedisConfig holds Redis configuration for the shared geocode cache.
// An empty Addr selects the in-memory cache.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRelicConfig holds New Relic configuration.
type NewRelicConfig struct {
	AppName    string
	LicenseKey string
	Enabled    bool
}

// ServerConfig holds HTTP server configuration for the devserver.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Load loads configuration from environment variables.
func Load() *Config {
	return &Config{
		API: APIConfig{
			BaseURL: getEnv("BASE_URL", "http://localhost:3000"),
			Timeout: getDurationEnv("API_TIMEOUT", 10*time.Second),
		},
		Geocoder: GeocoderConfig{
			URL:       getEnv("GEOCODER_URL", "https://nominatim.openstreetmap.org/search"),
			UserAgent: getEnv("GEOCODER_USER_AGENT", "KarsDriveApp/1.0 (support@example.com)"),
			Timeout:   getDurationEnv("GEOCODER_TIMEOUT", 10*time.Second),
		},
		Router: RouterConfig{
			URL:     getEnv("ROUTER_URL", "https://router.project-osrm.org/route/v1/driving"),
			Timeout: getDurationEnv("ROUTER_TIMEOUT", 15*time.Second),
		},
		Session: SessionConfig{
			Path: getEnv("SESSION_PATH", defaultSessionPath()),
		},
		Geo: GeoConfig{
			WatchInterval:   getDurationEnv("GEO_WATCH_INTERVAL", 500*time.Millisecond),
			HeadingDelta:    getFloatEnv("GEO_HEADING_DELTA", 3),
			HeadingDebounce: getDurationEnv("GEO_HEADING_DEBOUNCE", 1500*time.Millisecond),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		NewRelic: NewRelicConfig{
			AppName:    getEnv("NEW_RELIC_APP_NAME", "karsdrive"),
			LicenseKey: getEnv("NEW_RELIC_LICENSE_KEY", ""),
			Enabled:    getBoolEnv("NEW_RELIC_ENABLED", false),
		},
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "3000"),
			ReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 10*time.Second),
		},
	}
}

func defaultSessionPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "karsdrive", "session.json")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
