package cli

import (
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"go-task-relay/internal/model"
)

var taskHeaders = []string{"ID", "Title", "Effort (days)", "Due", "Description"}

func newTable(w io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(w,
		tablewriter.WithConfig(tablewriter.Config{
			Row: tw.CellConfig{
				Formatting: tw.CellFormatting{
					AutoWrap: tw.WrapNone,
				},
				Alignment: tw.CellAlignment{
					Global: tw.AlignLeft,
				},
			},
			Header: tw.CellConfig{
				Formatting: tw.CellFormatting{
					AutoFormat: tw.On,
				},
				Alignment: tw.CellAlignment{
					Global: tw.AlignLeft,
				},
			},
		}),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.BorderNone,
			Settings: tw.Settings{
				Separators: tw.Separators{
					ShowHeader: tw.Off,
				},
			},
		}),
	)
}

func renderTasks(w io.Writer, tasks []model.Task) error {
	rows := make([][]string, 0, len(tasks))
	for _, task := range tasks {
		rows = append(rows, taskRow(task))
	}

	table := newTable(w)
	table.Header(taskHeaders)
	if err := table.Bulk(rows); err != nil {
		return err
	}
	return table.Render()
}

func taskRow(task model.Task) []string {
	return []string{
		strconv.FormatInt(task.ID, 10),
		task.Title,
		strconv.Itoa(task.Effort),
		task.DueDate.String(),
		task.Description,
	}
}
