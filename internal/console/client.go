package console

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go-jobboard-backend/internal/domain"

	"github.com/goccy/go-json"
)

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server answered %d %s", e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

// Client talks to the job board HTTP API. The bearer token lives only in memory.
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *Client) SetToken(token string) { c.token = token }

func (c *Client) HasToken() bool { return c.token != "" }

type messageBody struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (c *Client) Signup(ctx context.Context, username, email, password string, roles []string) (string, error) {
	var out messageBody
	body := map[string]interface{}{"username": username, "email": email, "password": password, "role": roles}
	if err := c.do(ctx, http.MethodPost, "/api/auth/signup", nil, body, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

// Signin stores the returned token for subsequent calls.
func (c *Client) Signin(ctx context.Context, username, password string) (*domain.SigninResult, error) {
	var out domain.SigninResult
	body := map[string]string{"username": username, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/signin", nil, body, &out); err != nil {
		return nil, err
	}
	c.token = out.AccessToken
	return &out, nil
}

func (c *Client) Me(ctx context.Context) (*domain.User, error) {
	var out domain.User
	return &out, c.do(ctx, http.MethodGet, "/api/auth/me", nil, nil, &out)
}

func (c *Client) Jobs(ctx context.Context, page int) (*domain.JobPage, error) {
	var out domain.JobPage
	q := url.Values{"page": {strconv.Itoa(page)}}
	return &out, c.do(ctx, http.MethodGet, "/api/jobs", q, nil, &out)
}

func (c *Client) Job(ctx context.Context, id string) (*domain.Job, error) {
	var out domain.Job
	return &out, c.do(ctx, http.MethodGet, "/api/jobs/"+url.PathEscape(id), nil, nil, &out)
}

func (c *Client) Apply(ctx context.Context, jobID, coverLetter string) (*domain.Application, error) {
	var out domain.Application
	body := map[string]string{"jobId": jobID, "coverLetter": coverLetter}
	return &out, c.do(ctx, http.MethodPost, "/api/applications", nil, body, &out)
}

func (c *Client) MyApplications(ctx context.Context) ([]domain.Application, error) {
	var out []domain.Application
	if err := c.do(ctx, http.MethodGet, "/api/applications/me", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) UpdateStatus(ctx context.Context, appID, status, notes string) (*domain.Application, error) {
	var out domain.Application
	q := url.Values{"status": {status}}
	if notes != "" {
		q.Set("reviewNotes", notes)
	}
	return &out, c.do(ctx, http.MethodPut, "/api/applications/"+url.PathEscape(appID)+"/status", q, nil, &out)
}

func (c *Client) Withdraw(ctx context.Context, appID string) (string, error) {
	var out messageBody
	if err := c.do(ctx, http.MethodDelete, "/api/applications/"+url.PathEscape(appID), nil, nil, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

func (c *Client) Stats(ctx context.Context, jobID string) (*domain.ApplicationStats, error) {
	var out domain.ApplicationStats
	return &out, c.do(ctx, http.MethodGet, "/api/applications/stats/job/"+url.PathEscape(jobID), nil, nil, &out)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{Status: resp.StatusCode}
		var msg messageBody
		if json.Unmarshal(raw, &msg) == nil {
			apiErr.Message = msg.Message
		}
		return apiErr
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
