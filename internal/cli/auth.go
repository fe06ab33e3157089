package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"go-task-relay/internal/session"
)

func credentialFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("username", "u", "", "account username")
	cmd.Flags().StringP("password", "p", "", "account password (read from stdin when omitted)")
}

// credentials reads the username and password flags, falling back to one
// line of stdin per missing value.
func credentials(cmd *cobra.Command) (string, string, error) {
	username, _ := cmd.Flags().GetString("username")
	password, _ := cmd.Flags().GetString("password")

	in := bufio.NewReader(cmd.InOrStdin())
	var err error
	if username == "" {
		if username, err = prompt(cmd, in, "Username: "); err != nil {
			return "", "", err
		}
	}
	if password == "" {
		if password, err = promptPassword(cmd, in); err != nil {
			return "", "", err
		}
	}
	return username, password, nil
}

// promptPassword reads without echo when stdin is a terminal.
func promptPassword(cmd *cobra.Command, in *bufio.Reader) (string, error) {
	file, ok := cmd.InOrStdin().(*os.File)
	if !ok || !term.IsTerminal(int(file.Fd())) {
		return prompt(cmd, in, "Password: ")
	}

	fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
	raw, err := term.ReadPassword(int(file.Fd()))
	fmt.Fprintln(cmd.ErrOrStderr())
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(raw), nil
}

func prompt(cmd *cobra.Command, in *bufio.Reader, label string) (string, error) {
	fmt.Fprint(cmd.ErrOrStderr(), label)
	line, err := in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read %s: %w", strings.TrimSuffix(strings.ToLower(label), ": "), err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (c *cli) registerCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account through the credential relay",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.session.Route(session.ViewRegister) != session.ViewRegister {
				return c.alreadyLoggedIn(cmd)
			}

			username, password, err := credentials(cmd)
			if err != nil {
				return err
			}

			message, err := c.relay.Register(cmd.Context(), username, password)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), message)
			return nil
		},
	}
	credentialFlags(cmd)
	return cmd
}

func (c *cli) loginCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the issued token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.session.Route(session.ViewLogin) != session.ViewLogin {
				return c.alreadyLoggedIn(cmd)
			}

			username, password, err := credentials(cmd)
			if err != nil {
				return err
			}

			token, err := c.relay.Login(cmd.Context(), username, password)
			if err != nil {
				return err
			}
			if err := c.session.Authenticate(cmd.Context(), token); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", token.Username)
			return nil
		},
	}
	credentialFlags(cmd)
	return cmd
}

func (c *cli) logoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.session.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func (c *cli) statusCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the session state",
		Long: `Show whether a token is stored. The stored token is trusted as is unless
--verify is given, which asks the task service and logs out if it is rejected.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			verify, _ := cmd.Flags().GetBool("verify")
			out := cmd.OutOrStdout()

			if verify && c.session.State() == session.Authenticated {
				err := c.tasks.Revalidate(cmd.Context())
				switch {
				case errors.Is(err, session.ErrUnauthorized):
					fmt.Fprintln(out, "Stored token was rejected and has been cleared")
				case err != nil:
					return err
				}
			}

			if c.session.State() == session.Authenticated {
				fmt.Fprintf(out, "%s as %s\n", c.session.State(), c.session.Username())
			} else {
				fmt.Fprintln(out, c.session.State())
			}
			return nil
		},
	}
	cmd.Flags().Bool("verify", false, "check the token against the task service")
	return cmd
}

func (c *cli) alreadyLoggedIn(cmd *cobra.Command) error {
	fmt.Fprintf(cmd.OutOrStdout(), "Already logged in as %s, run 'taskctl logout' to switch accounts\n", c.session.Username())
	return nil
}
