package session

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go-task-relay/internal/model"
)

const tasksPath = "/api/tasks/"

// TaskClient calls the task service as the session's user. Every request goes
// through Transport, so a 401 anywhere clears the session.
type TaskClient struct {
	api api
}

func NewTaskClient(baseURL string, s *Session, scheme string, timeout time.Duration) *TaskClient {
	client := &http.Client{
		Timeout:   timeout,
		Transport: &Transport{Session: s, Scheme: scheme},
	}
	return &TaskClient{api: newAPI(baseURL, client, ErrUnauthorized)}
}

func (c *TaskClient) List(ctx context.Context) ([]model.Task, error) {
	var tasks []model.Task
	if err := c.api.call(ctx, http.MethodGet, tasksPath, nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (c *TaskClient) Get(ctx context.Context, id int64) (model.Task, error) {
	var task model.Task
	err := c.api.call(ctx, http.MethodGet, taskPath(id), nil, &task)
	return task, err
}

func (c *TaskClient) Create(ctx context.Context, req model.TaskRequest) (model.Task, error) {
	var task model.Task
	err := c.api.call(ctx, http.MethodPost, tasksPath, req, &task)
	return task, err
}

// Update replaces every field of the task.
func (c *TaskClient) Update(ctx context.Context, id int64, req model.TaskRequest) (model.Task, error) {
	var task model.Task
	err := c.api.call(ctx, http.MethodPut, taskPath(id), req, &task)
	return task, err
}

// Patch changes only the fields set in req.
func (c *TaskClient) Patch(ctx context.Context, id int64, req model.TaskRequest) (model.Task, error) {
	var task model.Task
	err := c.api.call(ctx, http.MethodPatch, taskPath(id), req, &task)
	return task, err
}

func (c *TaskClient) Delete(ctx context.Context, id int64) error {
	return c.api.call(ctx, http.MethodDelete, taskPath(id), nil, nil)
}

// Export streams the spreadsheet into w and returns the number of bytes
// written.
func (c *TaskClient) Export(ctx context.Context, w io.Writer) (int64, error) {
	resp, err := c.api.send(ctx, http.MethodGet, tasksPath+"export/", nil)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, fmt.Errorf("read export: %w", err)
	}
	return n, nil
}

// Revalidate asks the task service whether the current token is still
// accepted. A rejected token leaves the session Unauthenticated.
func (c *TaskClient) Revalidate(ctx context.Context) error {
	return c.api.call(ctx, http.MethodGet, tasksPath, nil, nil)
}

func taskPath(id int64) string {
	return fmt.Sprintf("%s%d/", tasksPath, id)
}
