package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"cardbase/internal/runner"
	"cardbase/pkg/api"
)

// ListJobs handles GET /jobs.
// It returns the registered import jobs and their activation profiles.
func (h *Handlers) ListJobs(w http.ResponseWriter, r *http.Request) {
	jobs := h.registry.List()

	resp := api.ListJobsResponse{Jobs: make([]api.JobResponse, len(jobs))}
	for i, job := range jobs {
		resp.Jobs[i] = api.JobResponse{
			Name:       job.Name,
			Script:     job.Script,
			Activation: string(job.Activation),
		}
	}
	h.respondJson(w, http.StatusOK, resp)
}

// TriggerRun handles POST /jobs/{name}/run.
// It creates a run for the named job and starts it in the background.
// Scheduled jobs are triggered through this same endpoint by an external
// scheduler.
func (h *Handlers) TriggerRun(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	name := r.PathValue("name")

	var req api.TriggerRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		h.httpError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	runID, err := h.runner.Trigger(ctx, name, req.DataPath)
	switch {
	case errors.Is(err, runner.ErrUnknownJob):
		h.httpError(w, "Job not found", http.StatusNotFound)
		return
	case errors.Is(err, runner.ErrBusy):
		h.httpError(w, "All run slots are busy", http.StatusConflict)
		return
	case err != nil:
		h.httpError(w, "Failed to start run", http.StatusInternalServerError)
		return
	}

	h.respondJson(w, http.StatusAccepted, api.TriggerRunResponse{RunID: runID.String()})
}
