// internal/config/config.go
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

// Config holds everything the processes read from the environment.
type Config struct {
	DatabaseURL     string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	StoreTimeout    time.Duration

	HTTPAddr        string
	ShutdownTimeout time.Duration

	CORSAllowedOrigins []string
	RateLimitRPS       int
	RateLimitBurst     int

	LogLevel  string
	LogFormat string

	AMQPURL     string
	EventsQueue string

	PageSizeDefault int
	PageSizeMax     int
}

// Load reads .env (if present) and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ No .env file found, relying on OS environment variables")
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function so tests don't have to touch os env.
func FromEnv(getenv func(string) string) (*Config, error) {
	p := parser{getenv: getenv}

	cfg := &Config{
		DatabaseURL:        p.str("DATABASE_URL", ""),
		MaxOpenConns:       p.num("DB_MAX_OPEN_CONNS", 10),
		MaxIdleConns:       p.num("DB_MAX_IDLE_CONNS", 5),
		ConnMaxLifetime:    p.duration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		StoreTimeout:       p.duration("STORE_TIMEOUT", 5*time.Second),
		HTTPAddr:           p.str("HTTP_ADDR", ":5000"),
		ShutdownTimeout:    p.duration("SHUTDOWN_TIMEOUT", 10*time.Second),
		CORSAllowedOrigins: splitList(p.str("CORS_ALLOWED_ORIGINS", "*")),
		RateLimitRPS:       p.num("RATE_LIMIT_RPS", 0),
		RateLimitBurst:     p.num("RATE_LIMIT_BURST", 20),
		LogLevel:           p.str("LOG_LEVEL", "info"),
		LogFormat:          p.str("LOG_FORMAT", "json"),
		AMQPURL:            p.str("AMQP_URL", ""),
		EventsQueue:        p.str("EVENTS_QUEUE", "customer_events"),
		PageSizeDefault:    p.num("PAGE_SIZE_DEFAULT", 10),
		PageSizeMax:        p.num("PAGE_SIZE_MAX", 100),
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = fmt.Sprintf(
			"postgres://%s:%s@%s:%s/%s?sslmode=%s",
			p.str("DB_USER", "postgres"),
			p.str("DB_PASSWORD", ""),
			p.str("DB_HOST", "localhost"),
			p.str("DB_PORT", "5432"),
			p.str("DB_NAME", "customers"),
			p.str("DB_SSLMODE", "disable"),
		)
	}

	if len(p.errs) > 0 {
		return nil, fmt.Errorf("invalid configuration: %s", strings.Join(p.errs, "; "))
	}
	if cfg.PageSizeDefault < 1 || cfg.PageSizeMax < cfg.PageSizeDefault {
		return nil, fmt.Errorf("invalid configuration: PAGE_SIZE_DEFAULT must be between 1 and PAGE_SIZE_MAX")
	}
	if cfg.StoreTimeout <= 0 {
		return nil, fmt.Errorf("invalid configuration: STORE_TIMEOUT must be positive")
	}
	return cfg, nil
}

type parser struct {
	getenv func(string) string
	errs   []string
}

func (p *parser) str(key, def string) string {
	if v := strings.TrimSpace(p.getenv(key)); v != "" {
		return v
	}
	return def
}

func (p *parser) num(key string, def int) int {
	v := strings.TrimSpace(p.getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Sprintf("%s: %v", key, err))
		return def
	}
	return n
}

func (p *parser) duration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(p.getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Sprintf("%s: %v", key, err))
		return def
	}
	return d
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
