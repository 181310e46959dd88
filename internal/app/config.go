package app

import (
	"errors"
	"flag"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port      int
	Env       string
	Otel      OtelConfig
	DB        DBConfig
	Redis     RedisConfig
	SMTP      SMTPConfig
	AMQP      AMQPConfig
	Ticket    TicketConfig
	RateLimit RateLimitConfig
	Admin     AdminConfig
}

// OtelConfig controls export to an OTLP collector. Telemetry is off when
// CollectorURL is empty.
type OtelConfig struct {
	CollectorURL   string
	SampleRatio    float64
	MetricInterval time.Duration
}

type DBConfig struct {
	DSN          string
	MaxOpenConns int
	MaxIdleTime  time.Duration
}

type RedisConfig struct {
	URL          string
	MaxOpenConns int
	MaxIdleConns int
	MaxIdleTime  time.Duration
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	Sender   string
}

type AMQPConfig struct {
	URL string
}

type TicketConfig struct {
	Secret string
	Issuer string
	TTL    time.Duration
}

// RateLimitConfig drives the token bucket guarding reservation writes.
type RateLimitConfig struct {
	Enabled        bool
	Capacity       int
	RefillTokens   int
	RefillInterval time.Duration
	TTL            time.Duration
	Prefix         string
}

type AdminConfig struct {
	Email    string
	Password string
}

// loadDotEnv reads a local .env file into the process environment when one
// exists. Variables already set win.
func loadDotEnv() error {
	err := godotenv.Load()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	return nil
}

// parseConfig reads flags from args. Every flag defaults to its environment
// variable so deployments can configure the service either way.
func parseConfig(args []string) (Config, bool, error) {
	var cfg Config

	flags := flag.NewFlagSet("api", flag.ContinueOnError)

	flags.IntVar(&cfg.Port, "port", envInt("PORT", 3000), "server port")
	flags.StringVar(&cfg.Env, "env", envString("ENV", "dev"), "Environment (dev|staging|prod)")
	flags.StringVar(&cfg.Otel.CollectorURL, "otel-collector-url", envString("OTEL_COLLECTOR_URL", ""), "OpenTelemetry collector gRPC endpoint")
	flags.Float64Var(&cfg.Otel.SampleRatio, "otel-sample-ratio", envFloat("OTEL_SAMPLE_RATIO", 1), "Fraction of root spans sampled")
	flags.DurationVar(&cfg.Otel.MetricInterval, "otel-metric-interval", envDuration("OTEL_METRIC_INTERVAL", 15*time.Second), "Metric export interval")

	flags.StringVar(&cfg.DB.DSN, "db-dsn", envString("DB_DSN", ""), "PostgreSQL DSN")
	flags.IntVar(&cfg.DB.MaxOpenConns, "db-max-open-conns", envInt("DB_MAX_OPEN_CONNS", 25), "PostgreSQL max open connections")
	flags.DurationVar(&cfg.DB.MaxIdleTime, "db-max-idle-time", envDuration("DB_MAX_IDLE_TIME", 15*time.Minute), "PostgreSQL max idle time for connections")

	flags.StringVar(&cfg.Redis.URL, "redis-url", envString("REDIS_URL", ""), "Redis URL")
	flags.IntVar(&cfg.Redis.MaxOpenConns, "redis-max-open-conns", envInt("REDIS_MAX_OPEN_CONNS", 25), "Redis max open connections")
	flags.IntVar(&cfg.Redis.MaxIdleConns, "redis-max-idle-conns", envInt("REDIS_MAX_IDLE_CONNS", 10), "Redis max idle connections")
	flags.DurationVar(&cfg.Redis.MaxIdleTime, "redis-max-idle-time", envDuration("REDIS_MAX_IDLE_TIME", 2*time.Minute), "Redis max idle time for connections")

	flags.StringVar(&cfg.SMTP.Host, "smtp-host", envString("SMTP_HOST", "sandbox.smtp.mailtrap.io"), "SMTP host")
	flags.IntVar(&cfg.SMTP.Port, "smtp-port", envInt("SMTP_PORT", 2525), "SMTP port")
	flags.StringVar(&cfg.SMTP.Username, "smtp-username", envString("SMTP_USERNAME", ""), "SMTP username")
	flags.StringVar(&cfg.SMTP.Password, "smtp-password", envString("SMTP_PASSWORD", ""), "SMTP password")
	flags.StringVar(&cfg.SMTP.Sender, "smtp-sender", envString("SMTP_SENDER", "Cinema <no-reply@cinema.local>"), "SMTP sender")

	flags.StringVar(&cfg.AMQP.URL, "amqp-url", envString("AMQP_URL", ""), "RabbitMQ URL, events are dropped when empty")

	flags.StringVar(&cfg.Ticket.Secret, "ticket-secret", envString("TICKET_SECRET", ""), "HMAC secret for ticket tokens")
	flags.StringVar(&cfg.Ticket.Issuer, "ticket-issuer", envString("TICKET_ISSUER", "cinema-api"), "Issuer claim of ticket tokens")
	flags.DurationVar(&cfg.Ticket.TTL, "ticket-ttl", envDuration("TICKET_TTL", 0), "Ticket token lifetime, 0 for no expiry")

	flags.BoolVar(&cfg.RateLimit.Enabled, "rate-limit-enabled", envBool("RATE_LIMIT_ENABLED", true), "Throttle reservation requests")
	flags.IntVar(&cfg.RateLimit.Capacity, "rate-limit-capacity", envInt("RATE_LIMIT_CAPACITY", 10), "Token bucket capacity")
	flags.IntVar(&cfg.RateLimit.RefillTokens, "rate-limit-refill-tokens", envInt("RATE_LIMIT_REFILL_TOKENS", 1), "Tokens added per refill interval")
	flags.DurationVar(&cfg.RateLimit.RefillInterval, "rate-limit-refill-interval", envDuration("RATE_LIMIT_REFILL_INTERVAL", 6*time.Second), "Token bucket refill interval")
	flags.DurationVar(&cfg.RateLimit.TTL, "rate-limit-ttl", envDuration("RATE_LIMIT_TTL", 10*time.Minute), "Idle bucket expiry")
	flags.StringVar(&cfg.RateLimit.Prefix, "rate-limit-prefix", envString("RATE_LIMIT_PREFIX", "rl"), "Redis key prefix for buckets")

	flags.StringVar(&cfg.Admin.Email, "admin-email", envString("ADMIN_EMAIL", ""), "Email of the admin account created at startup")
	flags.StringVar(&cfg.Admin.Password, "admin-password", envString("ADMIN_PASSWORD", ""), "Password of the admin account created at startup")

	displayVersion := flags.Bool("version", false, "Display version and exit")

	err := flags.Parse(args)
	if err != nil {
		return Config{}, false, err
	}

	if !*displayVersion && cfg.Ticket.Secret == "" {
		return Config{}, false, errors.New("a ticket secret is required (-ticket-secret or TICKET_SECRET)")
	}

	return cfg, *displayVersion, nil
}

func envString(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}

	return fallback
}

func envInt(key string, fallback int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}

	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if f, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return f
	}

	return fallback
}

func envBool(key string, fallback bool) bool {
	if b, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return b
	}

	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return d
	}

	return fallback
}
