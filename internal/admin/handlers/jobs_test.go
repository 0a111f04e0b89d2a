package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"cardbase/internal/runner"
	"cardbase/pkg/api"

	"github.com/google/uuid"
)

func testRegistry(t *testing.T) *runner.Registry {
	t.Helper()
	reg := runner.NewRegistry()
	jobs := []runner.Descriptor{
		{Name: runner.JobImportSets, Script: "src/import_sets.py", Activation: runner.ActivationManual},
		{Name: runner.JobImportCards, Script: "src/import_cards.py", Activation: runner.ActivationManual},
		{Name: runner.JobImportPrices, Script: "src/run_price_imports.py", Activation: runner.ActivationScheduled},
	}
	for _, d := range jobs {
		if err := reg.Register(d); err != nil {
			t.Fatalf("failed to register %s: %v", d.Name, err)
		}
	}
	return reg
}

func TestListJobs(t *testing.T) {
	h := New(&mockStore{}, testRegistry(t), &mockRunner{})

	req := httptest.NewRequest(http.MethodGet, "/jobs", nil)
	rr := httptest.NewRecorder()
	h.ListJobs(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}

	var resp api.ListJobsResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Jobs) != 3 {
		t.Fatalf("expected 3 jobs, got %d", len(resp.Jobs))
	}
	if resp.Jobs[2].Name != runner.JobImportPrices || resp.Jobs[2].Activation != "scheduled" {
		t.Errorf("unexpected third job: %+v", resp.Jobs[2])
	}
	if resp.Jobs[0].Script != "src/import_sets.py" {
		t.Errorf("unexpected script path: %q", resp.Jobs[0].Script)
	}
}

func TestTriggerRun(t *testing.T) {
	runID := uuid.New()

	tests := []struct {
		name           string
		jobName        string
		body           string
		runnerErr      error
		expectedStatus int
		expectedInBody string
	}{
		{
			name:           "Success",
			jobName:        runner.JobImportCards,
			body:           `{"data_path": "/data/cards"}`,
			expectedStatus: http.StatusAccepted,
			expectedInBody: runID.String(),
		},
		{
			name:           "Empty Body",
			jobName:        runner.JobImportSets,
			expectedStatus: http.StatusAccepted,
			expectedInBody: "run_id",
		},
		{
			name:           "Invalid JSON",
			jobName:        runner.JobImportSets,
			body:           `{invalid-json}`,
			expectedStatus: http.StatusBadRequest,
			expectedInBody: "Invalid request body",
		},
		{
			name:           "Unknown Job",
			jobName:        "import-nothing",
			runnerErr:      runner.ErrUnknownJob,
			expectedStatus: http.StatusNotFound,
			expectedInBody: "Job not found",
		},
		{
			name:           "Busy",
			jobName:        runner.JobImportPrices,
			runnerErr:      runner.ErrBusy,
			expectedStatus: http.StatusConflict,
			expectedInBody: "busy",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockRunner{runID: runID, err: tt.runnerErr}
			h := New(&mockStore{}, testRegistry(t), mock)

			req := httptest.NewRequest(http.MethodPost, "/jobs/"+tt.jobName+"/run",
				bytes.NewReader([]byte(tt.body)))
			req.SetPathValue("name", tt.jobName)

			rr := httptest.NewRecorder()
			h.TriggerRun(rr, req)

			if rr.Code != tt.expectedStatus {
				t.Errorf("handler returned wrong status code: got %v want %v",
					rr.Code, tt.expectedStatus)
			}
			if tt.expectedInBody != "" && !strings.Contains(rr.Body.String(), tt.expectedInBody) {
				t.Errorf("handler returned unexpected body: got %v want substring %v",
					rr.Body.String(), tt.expectedInBody)
			}
		})
	}
}

func TestTriggerRun_PassesDataPath(t *testing.T) {
	mock := &mockRunner{runID: uuid.New()}
	h := New(&mockStore{}, testRegistry(t), mock)

	req := httptest.NewRequest(http.MethodPost, "/jobs/import-sets/run",
		strings.NewReader(`{"data_path": "/data/sets.json"}`))
	req.SetPathValue("name", runner.JobImportSets)

	rr := httptest.NewRecorder()
	h.TriggerRun(rr, req)

	if mock.gotName != runner.JobImportSets {
		t.Errorf("runner got job %q, want import-sets", mock.gotName)
	}
	if mock.gotPath != "/data/sets.json" {
		t.Errorf("runner got data path %q, want /data/sets.json", mock.gotPath)
	}
}
