// Package api contains shared JSON request/response structs.
// This package is shared between the CLI and the admin server.
package api

import "time"

// JobResponse describes a registered import job.
type JobResponse struct {
	Name       string `json:"name"`
	Script     string `json:"script"`
	Activation string `json:"activation"`
}

// ListJobsResponse is the response body for listing jobs.
type ListJobsResponse struct {
	Jobs []JobResponse `json:"jobs"`
}

// TriggerRunRequest is the request body for triggering a job run.
type TriggerRunRequest struct {
	// DataPath overrides the default data file/directory for the job.
	DataPath string `json:"data_path,omitempty"`
}

// TriggerRunResponse is the response body after triggering a run.
type TriggerRunResponse struct {
	RunID string `json:"run_id"`
}

// RunResponse represents a run in API responses.
type RunResponse struct {
	ID           string     `json:"id"`
	JobName      string     `json:"job_name"`
	Status       string     `json:"status"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
	FinishedAt   *time.Time `json:"finished_at,omitempty"`
	ExitCode     *int       `json:"exit_code,omitempty"`
	ErrorMessage *string    `json:"error_message,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// ListRunsResponse is the response body for listing run history.
type ListRunsResponse struct {
	Runs []RunResponse `json:"runs"`
}

// LogEntry represents a single log line in the response.
type LogEntry struct {
	ID        int64     `json:"id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// GetLogsResponse is the response body for fetching run logs.
type GetLogsResponse struct {
	Logs []LogEntry `json:"logs"`
}

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}
