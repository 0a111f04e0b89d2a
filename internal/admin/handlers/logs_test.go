package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"cardbase/internal/store"
	"cardbase/pkg/api"

	"github.com/google/uuid"
)

func TestGetRunLogs(t *testing.T) {
	runID := uuid.New()
	mock := &mockStore{logs: []store.RunLog{
		{ID: 1, RunID: runID, Content: "importing set swsh1", CreatedAt: time.Now()},
		{ID: 2, RunID: runID, Content: "run completed", CreatedAt: time.Now()},
	}}
	h := New(mock, testRegistry(t), &mockRunner{})

	req := httptest.NewRequest(http.MethodGet, "/runs/"+runID.String()+"/logs?after_id=0", nil)
	req.SetPathValue("id", runID.String())

	rr := httptest.NewRecorder()
	h.GetRunLogs(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}

	var resp api.GetLogsResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Logs) != 2 {
		t.Fatalf("expected 2 log entries, got %d", len(resp.Logs))
	}
	if resp.Logs[0].Content != "importing set swsh1" {
		t.Errorf("unexpected first log line: %q", resp.Logs[0].Content)
	}
}

func TestGetRunLogs_InvalidID(t *testing.T) {
	h := New(&mockStore{}, testRegistry(t), &mockRunner{})

	req := httptest.NewRequest(http.MethodGet, "/runs/nope/logs", nil)
	req.SetPathValue("id", "nope")

	rr := httptest.NewRecorder()
	h.GetRunLogs(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rr.Code)
	}
}
