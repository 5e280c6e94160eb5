// Package config loads application configuration from environment
// variables, optionally seeded from a .env file.
package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Store drivers accepted in STORE_DRIVER.
const (
	DriverMySQL  = "mysql"
	DriverMemory = "memory"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.
type Config struct {
	Env            string // APP_ENV
	Port           string // APP_PORT
	StoreDriver    string // STORE_DRIVER: mysql (default) or memory
	DBUser         string
	DBPass         string // empty allowed
	DBHost         string
	DBPort         string
	DBName         string
	JWTSecret      string
	AccessTTLMin   int
	RefreshTTLDays int
	BcryptCost     int

	// Queue engine.
	Location        *time.Location // APP_TIMEZONE; day boundaries of token numbers
	MinutesPerToken int            // QUEUE_MINUTES_PER_TOKEN
	IssueAttempts   int            // QUEUE_ISSUE_ATTEMPTS

	// Side channels.  Empty URLs disable the integration.
	RabbitURL string
	NATSURL   string
	SMTP      SMTPConfig

	// Optional admin account created at startup.
	AdminName     string
	AdminEmail    string
	AdminPassword string
}

// SMTPConfig configures receipt email.  Host empty disables SMTP.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
}

// Load reads .env when present, then the environment.  Required variables
// are enforced by must(); missing values exit the program.
func Load() Config {
	if err := godotenv.Load(); err == nil {
		log.Printf("config: loaded .env")
	}

	cfg := Config{
		Env:            must("APP_ENV"),
		Port:           must("APP_PORT"),
		StoreDriver:    envStr("STORE_DRIVER", DriverMySQL),
		JWTSecret:      must("JWT_SECRET"),
		AccessTTLMin:   mustInt("ACCESS_TOKEN_TTL_MIN"),
		RefreshTTLDays: mustInt("REFRESH_TOKEN_TTL_DAYS"),
		BcryptCost:     mustInt("BCRYPT_COST"),

		Location:        loadLocation(envStr("APP_TIMEZONE", "Local")),
		MinutesPerToken: envInt("QUEUE_MINUTES_PER_TOKEN", 10),
		IssueAttempts:   envInt("QUEUE_ISSUE_ATTEMPTS", 5),

		RabbitURL: envStr("RABBITMQ_URL", os.Getenv("AMQP_URL")),
		NATSURL:   os.Getenv("NATS_URL"),
		SMTP: SMTPConfig{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     envInt("SMTP_PORT", 587),
			Username: os.Getenv("SMTP_USER"),
			Password: os.Getenv("SMTP_PASS"),
			From:     envStr("MAIL_FROM", "no-reply@queuepro.local"),
			FromName: envStr("MAIL_FROM_NAME", "QueuePro"),
		},

		AdminName:     envStr("ADMIN_NAME", "Administrator"),
		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
	}

	switch cfg.StoreDriver {
	case DriverMySQL:
		cfg.DBUser = must("DB_USER")
		cfg.DBPass = os.Getenv("DB_PASS")
		cfg.DBHost = must("DB_HOST")
		cfg.DBPort = must("DB_PORT")
		cfg.DBName = must("DB_NAME")
	case DriverMemory:
	default:
		log.Fatalf("invalid STORE_DRIVER: %q", cfg.StoreDriver)
	}
	if cfg.MinutesPerToken < 1 {
		cfg.MinutesPerToken = 10
	}
	if cfg.IssueAttempts < 2 {
		cfg.IssueAttempts = 2
	}
	return cfg
}

// PerToken is the estimated service time of one queued token.
func (c Config) PerToken() time.Duration {
	return time.Duration(c.MinutesPerToken) * time.Minute
}

// Now returns the current time in the configured location.
func (c Config) Now() time.Time {
	if c.Location == nil {
		return time.Now()
	}
	return time.Now().In(c.Location)
}

func loadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Fatalf("invalid APP_TIMEZONE %q: %v", name, err)
	}
	return loc
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts the retrieved string into an integer.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}
