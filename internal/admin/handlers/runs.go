package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"cardbase/internal/store"
	"cardbase/pkg/api"

	"github.com/google/uuid"
)

// ListRuns handles GET /runs.
// It returns recent runs, newest first.
func (h *Handlers) ListRuns(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()

	limit := 50
	if l := query.Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= 500 {
			limit = parsed
		}
	}
	offset := 0
	if o := query.Get("offset"); o != "" {
		if parsed, err := strconv.Atoi(o); err == nil && parsed >= 0 {
			offset = parsed
		}
	}

	runs, err := h.store.ListRuns(ctx, limit, offset)
	if err != nil {
		h.httpError(w, "Failed to fetch runs", http.StatusInternalServerError)
		return
	}

	resp := api.ListRunsResponse{Runs: make([]api.RunResponse, len(runs))}
	for i, run := range runs {
		resp.Runs[i] = runResponse(run)
	}
	h.respondJson(w, http.StatusOK, resp)
}

// GetRun handles GET /runs/{id}.
func (h *Handlers) GetRun(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	runID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.httpError(w, "Invalid run id", http.StatusBadRequest)
		return
	}

	run, err := h.store.GetRun(ctx, runID)
	if errors.Is(err, sql.ErrNoRows) {
		h.httpError(w, "Run not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.httpError(w, "Failed to fetch run", http.StatusInternalServerError)
		return
	}

	h.respondJson(w, http.StatusOK, runResponse(*run))
}

func runResponse(run store.Run) api.RunResponse {
	return api.RunResponse{
		ID:           run.ID.String(),
		JobName:      run.JobName,
		Status:       string(run.Status),
		StartedAt:    run.StartedAt,
		FinishedAt:   run.FinishedAt,
		ExitCode:     run.ExitCode,
		ErrorMessage: run.ErrorMessage,
		CreatedAt:    run.CreatedAt,
	}
}
