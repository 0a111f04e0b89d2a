package handlers

import (
	"net/http"
	"strconv"

	"cardbase/pkg/api"

	"github.com/google/uuid"
)

// GetRunLogs handles GET /runs/{id}/logs.
// Called by the CLI to view captured run output.
func (h *Handlers) GetRunLogs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	runID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.httpError(w, "Invalid run id", http.StatusBadRequest)
		return
	}

	query := r.URL.Query()
	limit := 1000
	if l := query.Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= 10000 {
			limit = parsed
		}
	}
	var afterID int64
	if after := query.Get("after_id"); after != "" {
		if parsed, err := strconv.ParseInt(after, 10, 64); err == nil {
			afterID = parsed
		}
	}

	logs, err := h.store.ListLogs(ctx, runID, afterID, limit)
	if err != nil {
		h.httpError(w, "Failed to fetch logs", http.StatusInternalServerError)
		return
	}

	resp := api.GetLogsResponse{Logs: make([]api.LogEntry, len(logs))}
	for i, l := range logs {
		resp.Logs[i] = api.LogEntry{
			ID:        l.ID,
			Content:   l.Content,
			CreatedAt: l.CreatedAt,
		}
	}
	h.respondJson(w, http.StatusOK, resp)
}
