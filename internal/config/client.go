package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"
)

// Client configures the taskctl command line client.
type Client struct {
	RelayURL   string
	TasksURL   string
	StatePath  string
	AuthScheme string
	Timeout    time.Duration
	Logging    Logging
}

func LoadClient() (*Client, error) {
	loadDotenv()

	cfg := &Client{
		RelayURL:   getEnv("TASKCTL_RELAY_URL", "http://localhost:3000"),
		TasksURL:   getEnv("TASKCTL_TASKS_URL", "http://localhost:8000"),
		StatePath:  getEnv("TASKCTL_STATE", defaultStatePath()),
		AuthScheme: getEnv("TASKCTL_AUTH_SCHEME", "Token"),
		Timeout:    getDuration("TASKCTL_TIMEOUT", 15*time.Second),
		Logging: Logging{
			Format: getEnv("LOG_FORMAT", "pretty"),
			Level:  getEnv("LOG_LEVEL", "warn"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Client) Validate() error {
	for key, raw := range map[string]string{"TASKCTL_RELAY_URL": c.RelayURL, "TASKCTL_TASKS_URL": c.TasksURL} {
		u, err := url.Parse(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("%s must be an absolute http(s) URL, got %q", key, raw)
		}
	}

	if c.StatePath == "" {
		return fmt.Errorf("TASKCTL_STATE cannot be empty")
	}

	if c.AuthScheme != "Token" && c.AuthScheme != "Bearer" {
		return fmt.Errorf("TASKCTL_AUTH_SCHEME must be Token or Bearer")
	}

	if c.Timeout <= 0 {
		return fmt.Errorf("TASKCTL_TIMEOUT must be positive")
	}

	return nil
}

func defaultStatePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".taskctl", "state.db")
	}
	return filepath.Join(home, ".taskctl", "state.db")
}
