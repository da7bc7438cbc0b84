package loadgen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPClient wraps http.Client with timeout.
type HTTPClient struct {
	client  *http.Client
	baseURL string
}

func newHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

// envelope is the common response shape of the board API.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
	Counted *bool           `json:"counted"`
}

// do sends body as JSON (when non-nil) and decodes the envelope.
func (c *HTTPClient) do(ctx context.Context, method, path string, body any) (int, envelope, error) {
	var (
		env    envelope
		reader io.Reader
	)
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, env, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, env, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, env, err
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, env, fmt.Errorf("failed to read response: %w", err)
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil {
			return resp.StatusCode, env, fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return resp.StatusCode, env, nil
}

// health probes /healthz.
func (c *HTTPClient) health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/healthz", nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}
	return nil
}

type createdJob struct {
	ID        string `json:"id"`
	Analytics Counts `json:"analytics"`
}

func (c *HTTPClient) createJob(ctx context.Context, in jobInput) (string, error) {
	status, env, err := c.do(ctx, http.MethodPost, "/jobs", in)
	if err != nil {
		return "", err
	}
	if status != http.StatusCreated {
		return "", fmt.Errorf("create job: status %d: %s", status, env.Error)
	}
	var job createdJob
	if err := json.Unmarshal(env.Data, &job); err != nil {
		return "", fmt.Errorf("create job: %w", err)
	}
	return job.ID, nil
}

func (c *HTTPClient) jobCounts(ctx context.Context, id string) (Counts, error) {
	status, env, err := c.do(ctx, http.MethodGet, "/jobs/"+id, nil)
	if err != nil {
		return Counts{}, err
	}
	if status != http.StatusOK {
		return Counts{}, fmt.Errorf("get job %s: status %d: %s", id, status, env.Error)
	}
	var job createdJob
	if err := json.Unmarshal(env.Data, &job); err != nil {
		return Counts{}, fmt.Errorf("get job %s: %w", id, err)
	}
	return job.Analytics, nil
}

// track reports whether the event was counted.
func (c *HTTPClient) track(ctx context.Context, a Action) (bool, error) {
	status, env, err := c.do(ctx, http.MethodPost, "/analytics/track", a)
	if err != nil {
		return false, err
	}
	if status != http.StatusOK {
		return false, fmt.Errorf("track %s %s: status %d: %s", a.EventType, a.JobID, status, env.Error)
	}
	return env.Counted == nil || *env.Counted, nil
}

func (c *HTTPClient) deleteJob(ctx context.Context, id string) error {
	status, env, err := c.do(ctx, http.MethodDelete, "/jobs/"+id, nil)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("delete job %s: status %d: %s", id, status, env.Error)
	}
	return nil
}
