package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	ListenAddr      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	DBPath   string // path to the SQLite database file
	SeedFile string // path to the YAML seed file for POST /api/places/import

	BaseURL string // public base URL used to build share links, ex: https://weekender.example

	// Extraction (Anthropic). Empty API key disables the live extractor.
	AnthropicAPIKey string
	ExtractTimeout  time.Duration

	// Provider photo proxy.
	PhotoProviderURL string        // format string with one %s for the token
	PhotoAPIKey      string        // appended as &key= when set
	PhotoCacheTTL    time.Duration // how long resolved photo URLs stay cached

	// Redis photo-URL cache (optional; empty addr => in-process cache).
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

func Load() *Config {
	return &Config{
		ListenAddr:      getenv("WKND_LISTEN_ADDR", ":8080"),
		ShutdownTimeout: mustDuration("WKND_SHUTDOWN_TIMEOUT", 5*time.Second),

		LogLevel:  getenv("WKND_LOG_LEVEL", "info"),
		PrettyLog: mustBool("WKND_PRETTY_LOG", false),

		DBPath:   getenv("WKND_DB_PATH", "weekender.db"),
		SeedFile: getenv("WKND_SEED_FILE", "seed/places.yaml"),

		BaseURL: getenv("WKND_BASE_URL", "http://localhost:8080"),

		AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),
		ExtractTimeout:  mustDuration("WKND_EXTRACT_TIMEOUT", 60*time.Second),

		PhotoProviderURL: getenv("WKND_PHOTO_PROVIDER_URL",
			"https://maps.googleapis.com/maps/api/place/photo?maxwidth=800&photo_reference=%s"),
		PhotoAPIKey:   os.Getenv("WKND_PHOTO_API_KEY"),
		PhotoCacheTTL: mustDuration("WKND_PHOTO_CACHE_TTL", 6*time.Hour),

		RedisAddr:     getenv("WKND_REDIS_ADDR", ""),
		RedisPassword: getenv("WKND_REDIS_PASSWORD", ""),
		RedisDB:       getenvInt("WKND_REDIS_DB", 0),
	}
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
