package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s
	RequestTimeout  time.Duration // per-request deadline applied by the router

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	// AI backend
	GeminiAPIKey    string        // required, never logged
	SearchModel     string        // model used for grounded search, weather and chat
	LiveModel       string        // model used for live voice sessions
	AITimeout       time.Duration // deadline for one AI round trip
	WeatherCacheTTL time.Duration // how long a weather lookup is reused for the same area
	ChatSessionTTL  time.Duration // idle expiry of concierge chat sessions

	// Geolocation
	GeoTimeout time.Duration // bound on a single position request (default 5s)

	// Catalog
	CatalogFile    string        // path to catalog.yaml (categories, suggestions, merchants seed)
	ReloadInterval time.Duration // interval to reload the catalog (default: 24h)
	WatchCatalog   bool          // reload as soon as the file changes on disk

	// Voice
	VoiceIdleTimeout time.Duration // idle voice sessions are reaped after this
	ReapInterval     time.Duration // how often the reaper runs

	// Admin
	AdminPasskey string // shared secret for the admin surface

	// Redis (optional, memory store used when disabled)
	RedisEnabled        bool
	RedisAddr           string        // ex: "localhost:6379"
	RedisUser           string        // optional
	RedisPassword       string        // optional
	RedisDB             int           // Redis DB number
	RedisDT             time.Duration // Redis dial timeout (ex: 5s)
	RedisRT             time.Duration // Redis read timeout (ex: 3s)
	RedisWT             time.Duration // Redis write timeout (ex: 3s)
	RedisMaxWait        time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout    time.Duration // timeout for each ping attempt (ex: 5s)
	RedisPoolSize       int           // Redis connection pool size
	RedisConnectTimeout time.Duration // Total time to retry connecting (ex: 30s)
	RedisRetryInterval  time.Duration // Initial wait between retries (ex: 2s, grows exponentially)
	RedisWarnThreshold  int           // warn after this many attempts

	AllowedHosts []string // optional, restrict access to specific Host headers
	AllowedCIDRS []string // optional, restrict access to specific IP (e.g. "1.2.3.4, 5.6.7.8")
	TrustProxy   bool     // true => trust X-Forwarded-For headers (e.g. cloudflared)

	// Search rate limiting (token bucket per client IP)
	RateLimitRPS   float64
	RateLimitBurst int
}

// Load reads the configuration from the environment. A .env file in the
// working directory is loaded first when present; real env vars win.
func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		// Server settings
		ListenPort:      getenv("NEARBY_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("NEARBY_SHUTDOWN_TIMEOUT", 5*time.Second),
		RequestTimeout:  mustDuration("NEARBY_REQUEST_TIMEOUT", 30*time.Second),

		// Logging
		LogLevel:  getenv("NEARBY_LOG_LEVEL", "info"),
		PrettyLog: mustBool("NEARBY_PRETTY_LOG", true),

		// AI
		GeminiAPIKey:    requireEnv("NEARBY_GEMINI_API_KEY"),
		SearchModel:     getenv("NEARBY_SEARCH_MODEL", "gemini-2.5-flash"),
		LiveModel:       getenv("NEARBY_LIVE_MODEL", "gemini-2.5-flash-native-audio-preview-09-2025"),
		AITimeout:       mustDuration("NEARBY_AI_TIMEOUT", 20*time.Second),
		WeatherCacheTTL: mustDuration("NEARBY_WEATHER_CACHE_TTL", 30*time.Minute),
		ChatSessionTTL:  mustDuration("NEARBY_CHAT_SESSION_TTL", time.Hour),

		GeoTimeout: mustDuration("NEARBY_GEO_TIMEOUT", 5*time.Second),

		CatalogFile:    getenv("NEARBY_CATALOG_FILE", "/app/catalog.yaml"),
		ReloadInterval: mustDuration("NEARBY_RELOAD_CATALOG_INTERVAL", 24*time.Hour),
		WatchCatalog:   mustBool("NEARBY_WATCH_CATALOG", true),

		VoiceIdleTimeout: mustDuration("NEARBY_VOICE_IDLE_TIMEOUT", 10*time.Minute),
		ReapInterval:     mustDuration("NEARBY_REAP_INTERVAL", time.Minute),

		AdminPasskey: requireEnv("NEARBY_ADMIN_PASSKEY"),

		// Redis settings
		RedisEnabled:        mustBool("NEARBY_REDIS_ENABLED", false),
		RedisAddr:           getenv("NEARBY_REDIS_ADDR", "localhost:6379"),
		RedisUser:           getenv("NEARBY_REDIS_USERNAME", "default"),
		RedisPassword:       getenv("NEARBY_REDIS_PASSWORD", ""),
		RedisDB:             getenvInt("NEARBY_REDIS_DB", 0),
		RedisDT:             mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:             mustDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:             mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:        mustDuration("REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:    mustDuration("REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:       getenvInt("REDIS_POOL_SIZE", 10),
		RedisConnectTimeout: mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:  mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisWarnThreshold:  getenvInt("REDIS_WARN_THRESHOLD", 3),

		// Access restrictions
		AllowedHosts: splitAndTrim(getenv("NEARBY_ALLOWED_HOSTS", "")),
		AllowedCIDRS: parseAllowedIPs(getenv("NEARBY_ALLOWED_CIDRS", "")),
		TrustProxy:   mustBool("NEARBY_TRUST_PROXY", true),

		RateLimitRPS:   mustFloat("NEARBY_RATE_LIMIT_RPS", 2),
		RateLimitBurst: getenvInt("NEARBY_RATE_LIMIT_BURST", 10),
	}

	if cfg.RedisEnabled && cfg.RedisAddr == "" {
		panic("❌ FATAL: NEARBY_REDIS_ADDR is required when NEARBY_REDIS_ENABLED=true")
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		log.Printf("[DEBUG] cfg: %+v\n", cfg.Redacted())
	}

	return cfg
}

// Redacted returns a copy safe to print.
func (c Config) Redacted() Config {
	const mask = "***REDACTED***"
	c.GeminiAPIKey = mask
	c.AdminPasskey = mask
	if c.RedisPassword != "" {
		c.RedisPassword = mask
	}
	if c.RedisUser != "" {
		c.RedisUser = mask
	}
	return c
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func requireEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	return v
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			return f
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

func parseAllowedIPs(allowed string) []string {
	if allowed == "" {
		return nil
	}
	ips := make([]string, 0, 4)
	for _, ip := range splitAndTrim(allowed) {
		if ip != "" {
			ips = append(ips, ip)
		}
	}
	return ips
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
