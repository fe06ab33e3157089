// Package cli contains the taskctl commands.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"go-task-relay/internal/config"
	"go-task-relay/internal/logger"
	"go-task-relay/internal/session"
)

var version = "dev"

// ErrLoginRequired is returned by task commands when there is no session.
var ErrLoginRequired = errors.New("not logged in, run 'taskctl login' first")

// ConfigLoader produces the base configuration before flags are applied.
type ConfigLoader func() (*config.Client, error)

type cli struct {
	loadConfig ConfigLoader

	relayURL   string
	tasksURL   string
	statePath  string
	authScheme string
	timeout    time.Duration
	verbose    bool

	cfg     *config.Client
	store   session.TokenStore
	session *session.Session
	relay   *session.RelayClient
	tasks   *session.TaskClient
}

func newCLI(load ConfigLoader) *cli {
	return &cli{loadConfig: load}
}

// Execute runs taskctl with args.
func Execute(ctx context.Context, args []string, stdout io.Writer, stderr io.Writer) error {
	c := newCLI(config.LoadClient)
	defer c.close()

	root := c.rootCommand()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return root.ExecuteContext(ctx)
}

// SetVersion sets the version string for the CLI
func SetVersion(v string) {
	version = v
}

func (c *cli) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "taskctl",
		Short: "Task tracker command line client",
		Long: `taskctl registers and logs in through the credential relay and manages
tasks on the task service with the issued token.

Example usage:
  taskctl register -u alice         # Create an account (prompts for password)
  taskctl login -u alice            # Log in and remember the token
  taskctl tasks list                # Show your tasks
  taskctl tasks add --title "Write report" --effort 2 --due 2026-12-01
  taskctl status --verify           # Check the stored token with the server
  taskctl logout                    # Forget the token`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.init(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&c.relayURL, "relay-url", "", "credential relay base URL (env TASKCTL_RELAY_URL)")
	flags.StringVar(&c.tasksURL, "tasks-url", "", "task service base URL (env TASKCTL_TASKS_URL)")
	flags.StringVar(&c.statePath, "state", "", "session state file (env TASKCTL_STATE)")
	flags.StringVar(&c.authScheme, "auth-scheme", "", "Authorization keyword, Token or Bearer (env TASKCTL_AUTH_SCHEME)")
	flags.DurationVar(&c.timeout, "timeout", 0, "per request timeout (env TASKCTL_TIMEOUT)")
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "verbose output")

	root.AddCommand(
		c.registerCommand(),
		c.loginCommand(),
		c.logoutCommand(),
		c.statusCommand(),
		c.tasksCommand(),
	)
	return root
}

// init loads configuration, applies flag overrides and opens the session.
func (c *cli) init(cmd *cobra.Command) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("relay-url") {
		cfg.RelayURL = c.relayURL
	}
	if flags.Changed("tasks-url") {
		cfg.TasksURL = c.tasksURL
	}
	if flags.Changed("state") {
		cfg.StatePath = c.statePath
	}
	if flags.Changed("auth-scheme") {
		cfg.AuthScheme = c.authScheme
	}
	if flags.Changed("timeout") {
		cfg.Timeout = c.timeout
	}
	if c.verbose {
		cfg.Logging.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	slog.SetDefault(logger.New(cmd.ErrOrStderr(), cfg.Logging.Format, cfg.Logging.Level))

	store, err := session.OpenSQLiteTokenStore(cmd.Context(), cfg.StatePath)
	if err != nil {
		return err
	}

	sess, err := session.Open(cmd.Context(), store)
	if err != nil {
		_ = store.Close()
		return err
	}

	c.cfg = cfg
	c.store = store
	c.session = sess
	c.relay = session.NewRelayClient(cfg.RelayURL, cfg.Timeout)
	c.tasks = session.NewTaskClient(cfg.TasksURL, sess, cfg.AuthScheme, cfg.Timeout)

	slog.Debug("session opened", "state", sess.State().String(), "state_path", cfg.StatePath)
	return nil
}

func (c *cli) close() {
	if c.store != nil {
		if err := c.store.Close(); err != nil {
			slog.Warn("failed to close session store", "error", err)
		}
		c.store = nil
	}
}

// FormatError renders err for the terminal. Validation failures list every
// field message.
func FormatError(err error) string {
	var respErr *session.ResponseError
	if !errors.As(err, &respErr) || len(respErr.Fields) < 2 {
		switch {
		case errors.Is(err, session.ErrUnauthorized):
			return "session expired, run 'taskctl login' again"
		case errors.Is(err, session.ErrNotAuthenticated):
			return ErrLoginRequired.Error()
		}
		return err.Error()
	}

	keys := make([]string, 0, len(respErr.Fields))
	for key := range respErr.Fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("request rejected:")
	for _, key := range keys {
		for _, msg := range respErr.Fields[key] {
			fmt.Fprintf(&b, "\n  %s: %s", key, msg)
		}
	}
	return b.String()
}
