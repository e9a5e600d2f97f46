// Package client is a typed HTTP client for the task-sphere API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/yukikurage/task-sphere/internal/constants"
	"github.com/yukikurage/task-sphere/internal/dto"
	"github.com/yukikurage/task-sphere/internal/models"
)

// APIError is a non-2xx response decoded from the server's error body.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("HTTP %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("HTTP %d %s: %s", e.Status, e.Code, e.Message)
}

// IsStatus reports whether err is an *APIError with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// Client talks to one server and keeps the session cookie in a jar.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
}

// New creates a client for baseURL, e.g. "http://localhost:8080".
func New(baseURL string) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base URL %q must include scheme and host", baseURL)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	return &Client{
		baseURL: u,
		httpClient: &http.Client{
			Jar:     jar,
			Timeout: 30 * time.Second,
			// Page redirects from the session gate are not followed; API
			// callers want the status.
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}, nil
}

// BaseURL returns the server address the client was created with.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Token returns the current session token, or "" when logged out.
func (c *Client) Token() string {
	for _, cookie := range c.httpClient.Jar.Cookies(c.baseURL) {
		if cookie.Name == constants.AuthCookieName {
			return cookie.Value
		}
	}
	return ""
}

// SetToken restores a session token saved from an earlier run.
func (c *Client) SetToken(token string) {
	c.httpClient.Jar.SetCookies(c.baseURL, []*http.Cookie{{
		Name:  constants.AuthCookieName,
		Value: token,
		Path:  "/",
	}})
}

// Signup creates an account and stores the session.
func (c *Client) Signup(ctx context.Context, name, email, password string) (*dto.UserDTO, error) {
	var user dto.UserDTO
	req := dto.SignupRequest{Name: name, Email: email, Password: password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/signup", req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Login authenticates and stores the session.
func (c *Client) Login(ctx context.Context, email, password string) (*dto.UserDTO, error) {
	var user dto.UserDTO
	req := dto.LoginRequest{Email: email, Password: password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Logout clears the session on both sides.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil)
}

// Me returns the identity of the current session.
func (c *Client) Me(ctx context.Context) (*dto.UserDTO, error) {
	var user dto.UserDTO
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ListTasks returns tasks ordered by position, all timeframes when timeframe is nil.
func (c *Client) ListTasks(ctx context.Context, timeframe *models.Timeframe) ([]dto.TaskDTO, error) {
	path := "/api/tasks"
	if timeframe != nil {
		path += "?timeframe=" + url.QueryEscape(string(*timeframe))
	}

	var tasks []dto.TaskDTO
	if err := c.do(ctx, http.MethodGet, path, nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// CreateTask appends a task to the end of timeframe.
func (c *Client) CreateTask(ctx context.Context, text string, timeframe models.Timeframe) (*dto.TaskDTO, error) {
	var task dto.TaskDTO
	req := dto.CreateTaskRequest{Text: text, Timeframe: timeframe}
	if err := c.do(ctx, http.MethodPost, "/api/tasks", req, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// GetTask fetches one task.
func (c *Client) GetTask(ctx context.Context, id string) (*dto.TaskDTO, error) {
	var task dto.TaskDTO
	if err := c.do(ctx, http.MethodGet, "/api/tasks/"+url.PathEscape(id), nil, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// UpdateTask applies a partial update.
func (c *Client) UpdateTask(ctx context.Context, id string, req dto.UpdateTaskRequest) (*dto.TaskDTO, error) {
	var task dto.TaskDTO
	if err := c.do(ctx, http.MethodPut, "/api/tasks/"+url.PathEscape(id), req, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// DeleteTask removes a task.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/tasks/"+url.PathEscape(id), nil, nil)
}

// ReorderTasks persists ids as the full order of timeframe.
func (c *Client) ReorderTasks(ctx context.Context, timeframe models.Timeframe, ids []string) (int64, error) {
	req := dto.ReorderTasksRequest{Tasks: make([]dto.TaskRef, len(ids)), Timeframe: timeframe}
	for i, id := range ids {
		req.Tasks[i] = dto.TaskRef{ID: id}
	}

	var resp dto.ReorderTasksResponse
	if err := c.do(ctx, http.MethodPut, "/api/tasks/reorder", req, &resp); err != nil {
		return 0, err
	}
	return resp.Count, nil
}

// SuggestTasks asks the server for AI task suggestions. Nothing is persisted.
func (c *Client) SuggestTasks(ctx context.Context, text string, timeframe models.Timeframe) ([]dto.SuggestionDTO, error) {
	var resp dto.SuggestTasksResponse
	req := dto.SuggestTasksRequest{Text: text, Timeframe: timeframe}
	if err := c.do(ctx, http.MethodPost, "/api/tasks/suggest", req, &resp); err != nil {
		return nil, err
	}
	return resp.Suggestions, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if in != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		apiErr := &APIError{Status: resp.StatusCode}
		var errBody struct {
			Code  string `json:"code"`
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &errBody) == nil && errBody.Error != "" {
			apiErr.Code = errBody.Code
			apiErr.Message = errBody.Error
		} else {
			apiErr.Message = strings.TrimSpace(string(data))
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("unmarshal response: %w (body: %s)", err, string(data))
	}
	return nil
}
