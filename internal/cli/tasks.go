package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"go-task-relay/internal/model"
	"go-task-relay/internal/session"
)

func (c *cli) tasksCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "Manage your tasks",
		Long: `Manage tasks on the task service. Every subcommand needs a login; a token the
service rejects is cleared and you are asked to log in again.

Examples:
  taskctl tasks list
  taskctl tasks add --title "Write report" --effort 2 --due 2026-12-01
  taskctl tasks update 3 --effort 4
  taskctl tasks delete 3
  taskctl tasks export -o tasks.xlsx`,
	}

	cmd.AddCommand(
		c.tasksListCommand(),
		c.tasksAddCommand(),
		c.tasksUpdateCommand(),
		c.tasksDeleteCommand(),
		c.tasksExportCommand(),
	)
	return cmd
}

// requireLogin applies the routing rule for the task view.
func (c *cli) requireLogin() error {
	if c.session.Route(session.ViewTasks) != session.ViewTasks {
		return ErrLoginRequired
	}
	return nil
}

func (c *cli) tasksListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List your tasks, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.requireLogin(); err != nil {
				return err
			}

			tasks, err := c.tasks.List(cmd.Context())
			if err != nil {
				return err
			}

			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(tasks)
			}
			if len(tasks) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No tasks")
				return nil
			}
			return renderTasks(cmd.OutOrStdout(), tasks)
		},
	}
	cmd.Flags().Bool("json", false, "output as JSON")
	return cmd
}

func taskFlags(cmd *cobra.Command) {
	cmd.Flags().String("title", "", "task title")
	cmd.Flags().String("description", "", "task description")
	cmd.Flags().Int("effort", 0, "effort in days")
	cmd.Flags().String("due", "", "due date, YYYY-MM-DD")
}

// taskRequest builds a payload from the flags the user actually set, so the
// server sees absent fields as absent.
func taskRequest(cmd *cobra.Command) (model.TaskRequest, int) {
	var (
		req   model.TaskRequest
		count int
	)
	flags := cmd.Flags()
	if flags.Changed("title") {
		v, _ := flags.GetString("title")
		req.Title = &v
		count++
	}
	if flags.Changed("description") {
		v, _ := flags.GetString("description")
		req.Description = &v
		count++
	}
	if flags.Changed("effort") {
		v, _ := flags.GetInt("effort")
		req.Effort = &v
		count++
	}
	if flags.Changed("due") {
		v, _ := flags.GetString("due")
		req.DueDate = &v
		count++
	}
	return req, count
}

func (c *cli) tasksAddCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a task",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.requireLogin(); err != nil {
				return err
			}

			req, _ := taskRequest(cmd)
			task, err := c.tasks.Create(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created task %d\n", task.ID)
			return nil
		},
	}
	taskFlags(cmd)
	return cmd
}

func (c *cli) tasksUpdateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Change a task",
		Long: `Change a task. With all of --title, --description, --effort and --due the task
is replaced; with fewer only the given fields change.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.requireLogin(); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			req, count := taskRequest(cmd)
			if count == 0 {
				return fmt.Errorf("nothing to update, pass at least one of --title, --description, --effort, --due")
			}

			var task model.Task
			if count == 4 {
				task, err = c.tasks.Update(cmd.Context(), id, req)
			} else {
				task, err = c.tasks.Patch(cmd.Context(), id, req)
			}
			if err != nil {
				return err
			}
			return renderTasks(cmd.OutOrStdout(), []model.Task{task})
		},
	}
	taskFlags(cmd)
	return cmd
}

func (c *cli) tasksDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.requireLogin(); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			if err := c.tasks.Delete(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted task %d\n", id)
			return nil
		},
	}
}

func (c *cli) tasksExportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Download your tasks as a spreadsheet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.requireLogin(); err != nil {
				return err
			}
			path, _ := cmd.Flags().GetString("output")

			n, err := writeExport(path, func(w io.Writer) (int64, error) {
				return c.tasks.Export(cmd.Context(), w)
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d bytes to %s\n", n, path)
			return nil
		},
	}
	cmd.Flags().StringP("output", "o", "tasks.xlsx", "output file")
	return cmd
}

// writeExport fills a temp file next to path and renames it into place, so
// a failed download leaves any previous export untouched.
func writeExport(path string, export func(io.Writer) (int64, error)) (int64, error) {
	tmpFile, err := os.CreateTemp(filepath.Dir(path), ".taskctl-export-*.xlsx")
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", path, err)
	}
	tmpPath := tmpFile.Name()
	defer os.Remove(tmpPath)

	n, err := export(tmpFile)
	if closeErr := tmpFile.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return 0, err
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return 0, fmt.Errorf("write %s: %w", path, err)
	}
	return n, nil
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid task id %q", raw)
	}
	return id, nil
}
