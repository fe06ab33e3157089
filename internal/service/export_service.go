package service

import (
	"context"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const (
	ExportSheet       = "Tasks"
	ExportContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ExportFilename    = "tasks.xlsx"
)

var exportHeaders = []any{"ID", "Title", "Description", "Effort (Days)", "Due Date", "Created At"}

// Export writes the caller's tasks as an xlsx workbook with a single
// "Tasks" sheet.
func (s *TaskService) Export(ctx context.Context, userID int64, w io.Writer) error {
	tasks, err := s.tasks.ListByUser(ctx, userID)
	if err != nil {
		return err
	}

	book := excelize.NewFile()
	defer book.Close()

	if err := book.SetSheetName(book.GetSheetName(0), ExportSheet); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}

	dateStyle, err := book.NewStyle(&excelize.Style{NumFmt: 14})
	if err != nil {
		return fmt.Errorf("date style: %w", err)
	}
	stampStyle, err := book.NewStyle(&excelize.Style{NumFmt: 22})
	if err != nil {
		return fmt.Errorf("timestamp style: %w", err)
	}

	if err := book.SetSheetRow(ExportSheet, "A1", &exportHeaders); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, task := range tasks {
		row := i + 2
		cell, _ := excelize.CoordinatesToCellName(1, row)
		values := []any{
			task.ID,
			task.Title,
			task.Description,
			task.Effort,
			task.DueDate.Time,
			task.CreatedAt.UTC(),
		}
		if err := book.SetSheetRow(ExportSheet, cell, &values); err != nil {
			return fmt.Errorf("write task %d: %w", task.ID, err)
		}

		dueCell, _ := excelize.CoordinatesToCellName(5, row)
		createdCell, _ := excelize.CoordinatesToCellName(6, row)
		if err := book.SetCellStyle(ExportSheet, dueCell, dueCell, dateStyle); err != nil {
			return fmt.Errorf("style due date: %w", err)
		}
		if err := book.SetCellStyle(ExportSheet, createdCell, createdCell, stampStyle); err != nil {
			return fmt.Errorf("style created at: %w", err)
		}
	}

	if _, err := book.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
