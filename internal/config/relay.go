package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

const (
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

type Relay struct {
	Server  Server
	Logging Logging

	AuthorityURL    string
	UpstreamTimeout time.Duration

	CredentialStore string
	SQLitePath      string
	Database        Database
	BcryptCost      int

	RegistrationPolicy string
	MetricsEnabled     bool
	// RequestDump logs every request with secrets redacted.
	RequestDump bool
}

func LoadRelay() (*Relay, error) {
	loadDotenv()

	cfg := &Relay{
		Server:             loadServer("RELAY_PORT", "3000", 30),
		Logging:            loadLogging(),
		AuthorityURL:       getEnv("AUTHORITY_URL", "http://localhost:8000"),
		UpstreamTimeout:    getDuration("UPSTREAM_TIMEOUT", 5*time.Second),
		CredentialStore:    strings.ToLower(getEnv("CREDENTIAL_STORE", StoreSQLite)),
		SQLitePath:         getEnv("SQLITE_PATH", "./users.db"),
		Database:           loadDatabase(),
		BcryptCost:         getInt("BCRYPT_COST", 10),
		RegistrationPolicy: getEnv("REGISTRATION_POLICY", "eager"),
		MetricsEnabled:     getBool("METRICS_ENABLED", true),
		RequestDump:        getBool("REQUEST_DUMP", true),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Relay) Validate() error {
	if err := c.Server.validate("RELAY_PORT"); err != nil {
		return err
	}

	u, err := url.Parse(c.AuthorityURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("AUTHORITY_URL must be an absolute http(s) URL, got %q", c.AuthorityURL)
	}

	if c.UpstreamTimeout <= 0 {
		return fmt.Errorf("UPSTREAM_TIMEOUT must be positive")
	}
	if c.Server.RequestTimeout <= c.UpstreamTimeout {
		return fmt.Errorf("REQUEST_TIMEOUT (%s) must be greater than UPSTREAM_TIMEOUT (%s)", c.Server.RequestTimeout, c.UpstreamTimeout)
	}

	switch c.CredentialStore {
	case StoreSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH cannot be empty")
		}
	case StorePostgres:
		if err := c.Database.validate(true); err != nil {
			return err
		}
	case StoreMemory:
	default:
		return fmt.Errorf("CREDENTIAL_STORE must be sqlite, postgres or memory, got %q", c.CredentialStore)
	}

	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		return fmt.Errorf("BCRYPT_COST must be between 4 and 31")
	}

	return nil
}
