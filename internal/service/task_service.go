package service

import (
	"context"
	"slices"
	"strings"
	"time"

	"go-task-relay/internal/model"
)

const (
	msgRequired   = "This field is required."
	msgBlankTitle = "Title cannot be empty"
	msgLongTitle  = "Ensure this field has no more than 200 characters."
	msgEffortMin  = "Ensure this value is greater than or equal to 1."
	msgDateFormat = "Date has wrong format. Use one of these formats instead: YYYY-MM-DD."
	msgPastDate   = "Due date cannot be in the past"
)

// ValidationError carries per-field messages for a rejected task payload.
type ValidationError struct {
	Fields model.FieldErrors
}

func (e *ValidationError) Error() string {
	return "invalid task: " + strings.Join(sortedKeys(e.Fields), ", ")
}

func (e *ValidationError) Unwrap() error {
	return model.ErrInvalidInput
}

type TaskRepository interface {
	Create(ctx context.Context, t model.Task) (model.Task, error)
	ListByUser(ctx context.Context, userID int64) ([]model.Task, error)
	FindByID(ctx context.Context, userID int64, id int64) (model.Task, error)
	Update(ctx context.Context, t model.Task) (model.Task, error)
	Delete(ctx context.Context, userID int64, id int64) error
}

type TaskService struct {
	tasks TaskRepository
	rules *taskRules
	now   func() time.Time
}

func NewTaskService(tasks TaskRepository) *TaskService {
	return &TaskService{tasks: tasks, rules: newTaskRules(), now: time.Now}
}

func (s *TaskService) List(ctx context.Context, userID int64) ([]model.Task, error) {
	return s.tasks.ListByUser(ctx, userID)
}

func (s *TaskService) Get(ctx context.Context, userID int64, id int64) (model.Task, error) {
	return s.tasks.FindByID(ctx, userID, id)
}

func (s *TaskService) Create(ctx context.Context, userID int64, req model.TaskRequest) (model.Task, error) {
	task := model.Task{UserID: userID}
	if err := s.apply(&task, req, false); err != nil {
		return model.Task{}, err
	}
	return s.tasks.Create(ctx, task)
}

// Update replaces a task. With partial set, absent fields keep their
// current value.
func (s *TaskService) Update(ctx context.Context, userID int64, id int64, req model.TaskRequest, partial bool) (model.Task, error) {
	task, err := s.tasks.FindByID(ctx, userID, id)
	if err != nil {
		return model.Task{}, err
	}

	if !partial {
		task.Description = ""
	}
	if err := s.apply(&task, req, partial); err != nil {
		return model.Task{}, err
	}
	return s.tasks.Update(ctx, task)
}

func (s *TaskService) Delete(ctx context.Context, userID int64, id int64) error {
	return s.tasks.Delete(ctx, userID, id)
}

func (s *TaskService) apply(task *model.Task, req model.TaskRequest, partial bool) error {
	fields := model.FieldErrors{}
	today := model.NewDate(s.now().UTC())

	if req.Title == nil {
		if !partial {
			fields.Add("title", msgRequired)
		}
	} else if msg := s.rules.check("title", *req.Title, titleRule); msg != "" {
		fields.Add("title", msg)
	} else {
		task.Title = *req.Title
	}

	if req.Description != nil {
		task.Description = *req.Description
	}

	if req.Effort == nil {
		if !partial {
			fields.Add("effort", msgRequired)
		}
	} else if msg := s.rules.check("effort", *req.Effort, effortRule); msg != "" {
		fields.Add("effort", msg)
	} else {
		task.Effort = *req.Effort
	}

	if req.DueDate == nil {
		if !partial {
			fields.Add("due_date", msgRequired)
		}
	} else if raw := strings.TrimSpace(*req.DueDate); s.rules.check("due_date", raw, dueDateRule) != "" {
		fields.Add("due_date", msgDateFormat)
	} else if due, _ := model.ParseDate(raw); due.Before(today) {
		fields.Add("due_date", msgPastDate)
	} else {
		task.DueDate = due
	}

	if !fields.Empty() {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func sortedKeys(fields model.FieldErrors) []string {
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys
}
