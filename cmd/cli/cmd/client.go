package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"cardbase/pkg/api"
)

// AdminClient handles API calls to the cardbase admin server.
type AdminClient struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
}

// NewAdminClient creates a new client with the given base URL and token.
func NewAdminClient(baseURL, token string) *AdminClient {
	return &AdminClient{
		BaseURL: baseURL,
		Token:   token,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// APIError represents an error response from the API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (%d): %s", e.StatusCode, e.Message)
}

func (c *AdminClient) do(method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequest(method, c.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Add("Authorization", fmt.Sprintf("Bearer %s", c.Token))
	req.Header.Add("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		return &APIError{StatusCode: resp.StatusCode, Message: string(respBody)}
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}
	return nil
}

// ListJobs sends GET /jobs to list the registered import jobs.
func (c *AdminClient) ListJobs() ([]api.JobResponse, error) {
	var resp api.ListJobsResponse
	if err := c.do(http.MethodGet, "/jobs", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Jobs, nil
}

// TriggerRun sends POST /jobs/{name}/run to start a run.
func (c *AdminClient) TriggerRun(jobName, dataPath string) (*api.TriggerRunResponse, error) {
	req := api.TriggerRunRequest{DataPath: dataPath}
	var resp api.TriggerRunResponse
	if err := c.do(http.MethodPost, fmt.Sprintf("/jobs/%s/run", jobName), req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetRun sends GET /runs/{id} to retrieve run details.
func (c *AdminClient) GetRun(runID string) (*api.RunResponse, error) {
	var resp api.RunResponse
	if err := c.do(http.MethodGet, "/runs/"+runID, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListRuns sends GET /runs to retrieve run history.
func (c *AdminClient) ListRuns(limit, offset int) ([]api.RunResponse, error) {
	var resp api.ListRunsResponse
	path := fmt.Sprintf("/runs?limit=%d&offset=%d", limit, offset)
	if err := c.do(http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Runs, nil
}

// GetLogs sends GET /runs/{id}/logs to retrieve captured run output.
func (c *AdminClient) GetLogs(runID string, afterID int64) ([]api.LogEntry, error) {
	var resp api.GetLogsResponse
	path := fmt.Sprintf("/runs/%s/logs?after_id=%d", runID, afterID)
	if err := c.do(http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Logs, nil
}
