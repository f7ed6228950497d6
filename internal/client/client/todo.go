package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/dmitrijs2005/gophtodo/internal/client/models"
)

func (c *HTTPClient) ListTodos(ctx context.Context) ([]models.Item, error) {
	var env models.TodoListEnvelope
	if err := c.todoCall(ctx, http.MethodGet, "/todo", nil, &env); err != nil {
		return nil, err
	}
	if env.Data == nil {
		return []models.Item{}, nil
	}
	return env.Data, nil
}

func (c *HTTPClient) GetTodo(ctx context.Context, id string) (models.Item, error) {
	var env models.TodoEnvelope
	if err := c.todoCall(ctx, http.MethodGet, todoPath(id), nil, &env); err != nil {
		return models.Item{}, err
	}
	return env.Data, nil
}

func (c *HTTPClient) CreateTodo(ctx context.Context, title string) (models.Item, error) {
	var env models.TodoEnvelope
	if err := c.todoCall(ctx, http.MethodPost, "/todo", createTodoRequest{Title: title}, &env); err != nil {
		return models.Item{}, err
	}
	return env.Data, nil
}

func (c *HTTPClient) UpdateTodo(ctx context.Context, id string, patch models.TodoPatch) (models.Item, error) {
	var env models.TodoEnvelope
	if err := c.todoCall(ctx, http.MethodPut, todoPath(id), patch, &env); err != nil {
		return models.Item{}, err
	}
	return env.Data, nil
}

func (c *HTTPClient) DeleteTodo(ctx context.Context, id string) error {
	return c.todoCall(ctx, http.MethodDelete, todoPath(id), nil, nil)
}

func todoPath(id string) string {
	return "/todo/" + url.PathEscape(id)
}

// todoCall maps non-2xx statuses onto errors and decodes the envelope into
// out. An envelope that says success:false is an APIError too.
func (c *HTTPClient) todoCall(ctx context.Context, method, path string, body, out any) error {
	status, data, err := c.do(ctx, method, path, body)
	if err != nil {
		return err
	}
	if status >= http.StatusBadRequest {
		return statusError(status, data)
	}

	var head struct {
		Success *bool  `json:"success"`
		Message string `json:"message"`
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &head); err != nil {
			return fmt.Errorf("%w: %w", ErrMalformedResponse, err)
		}
	}
	if head.Success != nil && !*head.Success {
		return APIError{Status: status, Message: head.Message}
	}

	if out == nil {
		return nil
	}
	if len(data) == 0 {
		return fmt.Errorf("%w: empty body for %s %s", ErrMalformedResponse, method, path)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	return nil
}
