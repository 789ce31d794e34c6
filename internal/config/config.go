package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	// Lighthouse audit API
	AuditAPIURL     string        // endpoint of the external audit builder
	AuditAPIKey     string        // fixed API key sent as X-API-KEY
	AuditTimeout    time.Duration // per-audit HTTP timeout (a Lighthouse run is slow)
	ReferenceReport string        // path to the bundled reference lhr.json

	// Report retention
	MaxStoredReports int // trim each URL's history to the newest N after append (0 = unbounded)

	// Refresh fan-out
	WatchlistFile   string        // optional YAML list of URLs to keep audited ("" = disabled)
	RefreshInterval time.Duration // periodic refresh interval (0 = cron endpoint only)
	TaskTargetURL   string        // where refresh tasks POST their {url} payload
	TaskTimeout     time.Duration // per-submission HTTP timeout

	// Redis
	RedisAddr           string
	RedisUser           string
	RedisPassword       string
	RedisDB             int
	RedisDialTimeout    time.Duration
	RedisReadTimeout    time.Duration
	RedisWriteTimeout   time.Duration
	RedisPoolSize       int
	RedisConnectTimeout time.Duration // total time to retry connecting
	RedisRetryInterval  time.Duration // initial wait between retries (grows exponentially)
	RedisMaxWait        time.Duration // cap on the wait between retries
	RedisPingTimeout    time.Duration // timeout for each ping attempt
	RedisWarnThreshold  int           // warn after this many attempts

	// Rate limiting for POST /lh/newaudit
	RateLimitBurst     int
	RateLimitPerMinute int

	TrustProxy bool // true => trust X-Forwarded-* headers (e.g. GAE / reverse proxy)
}

func Load() *Config {
	cfg := &Config{
		// Server settings
		ListenPort:      getenv("LIGHTKEEP_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("LIGHTKEEP_SHUTDOWN_TIMEOUT", 5*time.Second),

		// Logging
		LogLevel:  getenv("LIGHTKEEP_LOG_LEVEL", "info"),
		PrettyLog: mustBool("LIGHTKEEP_PRETTY_LOG", true),

		// Audit API
		AuditAPIURL:     getenv("LIGHTKEEP_AUDIT_API_URL", "https://builder-dot-lighthouse-ci.appspot.com/ci"),
		AuditAPIKey:     getenv("LIGHTKEEP_AUDIT_API_KEY", "webdev"),
		AuditTimeout:    mustDuration("LIGHTKEEP_AUDIT_TIMEOUT", 90*time.Second),
		ReferenceReport: getenv("LIGHTKEEP_REFERENCE_REPORT", "./lhr.json"),

		// Retention
		MaxStoredReports: getenvInt("LIGHTKEEP_MAX_STORED_REPORTS", 0),

		// Refresh
		WatchlistFile:   getenv("LIGHTKEEP_WATCHLIST_FILE", ""),
		RefreshInterval: mustDuration("LIGHTKEEP_REFRESH_INTERVAL", 0),
		TaskTargetURL:   getenv("LIGHTKEEP_TASK_TARGET_URL", "http://localhost:8080/lh/newaudit"),
		TaskTimeout:     mustDuration("LIGHTKEEP_TASK_TIMEOUT", 10*time.Second),

		// Redis settings
		RedisAddr:           requireEnv("LIGHTKEEP_REDIS_ADDR"),
		RedisUser:           getenv("LIGHTKEEP_REDIS_USERNAME", "default"),
		RedisPassword:       getenv("LIGHTKEEP_REDIS_PASSWORD", ""),
		RedisDB:             getenvInt("LIGHTKEEP_REDIS_DB", 0),
		RedisDialTimeout:    mustDuration("LIGHTKEEP_REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisReadTimeout:    mustDuration("LIGHTKEEP_REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWriteTimeout:   mustDuration("LIGHTKEEP_REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisPoolSize:       getenvInt("LIGHTKEEP_REDIS_POOL_SIZE", 10),
		RedisConnectTimeout: mustDuration("LIGHTKEEP_REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:  mustDuration("LIGHTKEEP_REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisMaxWait:        mustDuration("LIGHTKEEP_REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:    mustDuration("LIGHTKEEP_REDIS_PING_TIMEOUT", 5*time.Second),
		RedisWarnThreshold:  getenvInt("LIGHTKEEP_REDIS_WARN_THRESHOLD", 3),

		// Rate limiting
		RateLimitBurst:     getenvInt("LIGHTKEEP_RATE_LIMIT_BURST", 5),
		RateLimitPerMinute: getenvInt("LIGHTKEEP_RATE_LIMIT_PER_MINUTE", 10),

		TrustProxy: mustBool("LIGHTKEEP_TRUST_PROXY", true),
	}

	if cfg.MaxStoredReports < 0 {
		panic(fmt.Sprintf("❌ FATAL: LIGHTKEEP_MAX_STORED_REPORTS must be >= 0, got %d", cfg.MaxStoredReports))
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		cfgCopy := *cfg
		cfgCopy.AuditAPIKey = "***REDACTED***"
		if cfg.RedisPassword != "" {
			cfgCopy.RedisPassword = "***REDACTED***"
		}
		log.Printf("[DEBUG] cfg: %+v\n", cfgCopy)
	}

	return cfg
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
