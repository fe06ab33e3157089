package config

import (
	"fmt"
	"os"
	"strings"
)

type Authority struct {
	Server  Server
	Logging Logging

	Store    string
	Database Database

	TokenSecret string

	Argon2Memory      uint32
	Argon2Iterations  uint32
	Argon2Parallelism uint8
}

func LoadAuthority() (*Authority, error) {
	loadDotenv()

	cfg := &Authority{
		Server:            loadServer("AUTHORITY_PORT", "8000", 30),
		Logging:           loadLogging(),
		Store:             strings.ToLower(getEnv("AUTHORITY_STORE", StorePostgres)),
		Database:          loadDatabase(),
		TokenSecret:       strings.TrimSpace(os.Getenv("TOKEN_SECRET")),
		Argon2Memory:      getUint32("ARGON2_MEMORY_KIB", 64*1024),
		Argon2Iterations:  getUint32("ARGON2_ITERATIONS", 3),
		Argon2Parallelism: uint8(getUint32("ARGON2_PARALLELISM", 2)),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Authority) Validate() error {
	if err := c.Server.validate("AUTHORITY_PORT"); err != nil {
		return err
	}

	if len(c.TokenSecret) < 16 {
		return fmt.Errorf("TOKEN_SECRET is required and must be at least 16 bytes")
	}

	switch c.Store {
	case StorePostgres:
		if err := c.Database.validate(true); err != nil {
			return err
		}
	case StoreMemory:
	default:
		return fmt.Errorf("AUTHORITY_STORE must be postgres or memory, got %q", c.Store)
	}

	if c.Argon2Memory == 0 || c.Argon2Iterations == 0 || c.Argon2Parallelism == 0 {
		return fmt.Errorf("ARGON2_* parameters must be positive")
	}

	return nil
}
