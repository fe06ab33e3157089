package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Server holds the HTTP server knobs shared by the relay and the authority.
type Server struct {
	Port           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	RequestTimeout time.Duration
	CORSOrigins    []string
	RateLimitRPM   int
	AuthRateLimit  int
}

type Logging struct {
	Format string
	Level  string
}

// Database is the pgx pool configuration used when a Postgres backend is
// selected.
type Database struct {
	URL      string
	MaxConns int32
	MinConns int32
}

func loadDotenv() {
	_ = godotenv.Load()
}

func loadServer(portKey string, defaultPort string, defaultAuthRPM int) Server {
	return Server{
		Port:           getEnv(portKey, defaultPort),
		ReadTimeout:    getDuration("SERVER_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:   getDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
		IdleTimeout:    getDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
		RequestTimeout: getDuration("REQUEST_TIMEOUT", 30*time.Second),
		CORSOrigins:    splitCSV(getEnv("CORS_ORIGINS", "*")),
		RateLimitRPM:   getInt("RATE_LIMIT_RPM", 100),
		AuthRateLimit:  getInt("AUTH_RATE_LIMIT_RPM", defaultAuthRPM),
	}
}

func loadLogging() Logging {
	return Logging{
		Format: getEnv("LOG_FORMAT", "pretty"),
		Level:  getEnv("LOG_LEVEL", "info"),
	}
}

func loadDatabase() Database {
	return Database{
		URL:      strings.TrimSpace(os.Getenv("DATABASE_URL")),
		MaxConns: int32(getInt("DB_MAX_CONNS", 10)),
		MinConns: int32(getInt("DB_MIN_CONNS", 1)),
	}
}

func (s Server) validate(portKey string) error {
	if s.Port == "" {
		return fmt.Errorf("%s cannot be empty", portKey)
	}

	if s.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive")
	}

	if s.RateLimitRPM <= 0 || s.AuthRateLimit <= 0 {
		return fmt.Errorf("RATE_LIMIT_RPM and AUTH_RATE_LIMIT_RPM must be positive")
	}

	return nil
}

func (d Database) validate(required bool) error {
	if required && d.URL == "" {
		return fmt.Errorf("DATABASE_URL is required for the postgres backend")
	}

	if d.MaxConns <= 0 || d.MinConns < 0 || d.MinConns > d.MaxConns {
		return fmt.Errorf("DB_MIN_CONNS/DB_MAX_CONNS must satisfy 0 <= min <= max, max > 0")
	}

	return nil
}

func getEnv(key string, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}

	return v
}

func getInt(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}

	return v
}

func getUint32(key string, fallback uint32) uint32 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return fallback
	}

	return uint32(v)
}

func getBool(key string, fallback bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	v, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}

	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	v, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return v
}

func splitCSV(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
	}

	return out
}
