// Package api is the typed HTTP wrapper over the task service REST API. It
// maps each remote operation to one call and folds HTTP failures into a small
// error taxonomy the reconciler can act on.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"todoapp/internal/model"
)

const (
	// DefaultBaseURL matches the server's local-development default port.
	DefaultBaseURL = "http://localhost:4000"

	// APITimeout bounds every remote call.
	APITimeout = 5 * time.Second
)

var (
	ErrUnauthorized = errors.New("api: missing or invalid token")
	ErrNotFound     = errors.New("api: not found")
)

// RequestError is a non-auth rejection from the service, carrying the
// server's message verbatim.
type RequestError struct {
	Status  int
	Message string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("api: %s (status %d)", e.Message, e.Status)
}

// Session is the authentication result returned by Register and Login.
type Session struct {
	Token string `json:"token"`
	User  struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"user"`
}

// TaskPatch is a partial update; nil fields are left unchanged server-side.
type TaskPatch struct {
	Title       *string         `json:"title,omitempty"`
	Description *string         `json:"description,omitempty"`
	DueDate     *time.Time      `json:"dueDate,omitempty"`
	Priority    *model.Priority `json:"priority,omitempty"`
	Done        *bool           `json:"done,omitempty"`
}

// createPayload strips client-only fields (ID, SyncStatus) from a task
// before it crosses the wire.
type createPayload struct {
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	DueDate     *time.Time     `json:"dueDate,omitempty"`
	Priority    model.Priority `json:"priority,omitempty"`
	Done        bool           `json:"done"`
}

// Client talks to one task service instance.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
	}
}

// NewClientWithHTTP creates a client with a custom HTTP client (for testing).
func NewClientWithHTTP(baseURL string, httpClient *http.Client) *Client {
	c := NewClient(baseURL)
	if httpClient != nil {
		c.http = httpClient
	}
	return c
}

// Register creates an account and returns the issued session.
func (c *Client) Register(ctx context.Context, email, password string) (Session, error) {
	return c.authenticate(ctx, "/api/auth/register", email, password)
}

// Login exchanges credentials for a session.
func (c *Client) Login(ctx context.Context, email, password string) (Session, error) {
	return c.authenticate(ctx, "/api/auth/login", email, password)
}

func (c *Client) authenticate(ctx context.Context, path, email, password string) (Session, error) {
	body := map[string]string{"email": email, "password": password}
	var out Session
	if err := c.do(ctx, http.MethodPost, path, "", body, &out); err != nil {
		return Session{}, err
	}
	return out, nil
}

// ListTasks returns all tasks owned by the token's user, newest first.
func (c *Client) ListTasks(ctx context.Context, token string) ([]model.Task, error) {
	var out []model.Task
	if err := c.do(ctx, http.MethodGet, "/api/tasks", token, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateTask stores a new task remotely and returns the server's copy,
// including the assigned identifier.
func (c *Client) CreateTask(ctx context.Context, token string, task model.Task) (model.Task, error) {
	payload := createPayload{
		Title:       task.Title,
		Description: task.Description,
		DueDate:     task.DueDate,
		Priority:    task.Priority,
		Done:        task.Done,
	}
	var out model.Task
	if err := c.do(ctx, http.MethodPost, "/api/tasks", token, payload, &out); err != nil {
		return model.Task{}, err
	}
	return out, nil
}

// UpdateTask applies a partial field set and returns the updated task.
func (c *Client) UpdateTask(ctx context.Context, token, id string, patch TaskPatch) (model.Task, error) {
	var out model.Task
	if err := c.do(ctx, http.MethodPut, "/api/tasks/"+id, token, patch, &out); err != nil {
		return model.Task{}, err
	}
	return out, nil
}

// DeleteTask removes a task from the user's collection.
func (c *Client) DeleteTask(ctx context.Context, token, id string) error {
	var ack struct {
		OK bool `json:"ok"`
	}
	return c.do(ctx, http.MethodDelete, "/api/tasks/"+id, token, nil, &ack)
}

func (c *Client) do(ctx context.Context, method, path, token string, body, out any) error {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("api: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	var payload struct {
		Message string `json:"message"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&payload)

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusNotFound:
		return ErrNotFound
	default:
		if payload.Message == "" {
			payload.Message = http.StatusText(resp.StatusCode)
		}
		return &RequestError{Status: resp.StatusCode, Message: payload.Message}
	}
}
