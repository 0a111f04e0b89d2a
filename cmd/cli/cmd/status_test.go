package cmd

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"cardbase/pkg/api"

	"github.com/spf13/viper"
)

func TestStatusCommand_CompletedRun(t *testing.T) {
	resetViper()

	started := time.Now().Add(-2 * time.Minute)
	finished := started.Add(90 * time.Second)
	code := 0

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/runs/") {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(api.RunResponse{
			ID:         "run-123",
			JobName:    "import-cards",
			Status:     "completed",
			StartedAt:  &started,
			FinishedAt: &finished,
			ExitCode:   &code,
		})
	}))
	defer server.Close()

	viper.Set("url", server.URL)
	viper.Set("token", "test-token")

	output, err := execute(t, "status", "run-123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"run-123", "import-cards", "completed"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output, got: %s", want, output)
		}
	}
}

func TestStatusCommand_FailedRunShowsError(t *testing.T) {
	resetViper()

	code := 2
	msg := "set \"swsh1\" not found in database"
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(api.RunResponse{
			ID:           "run-456",
			JobName:      "import-cards",
			Status:       "failed",
			ExitCode:     &code,
			ErrorMessage: &msg,
		})
	}))
	defer server.Close()

	viper.Set("url", server.URL)
	viper.Set("token", "test-token")

	output, err := execute(t, "status", "run-456")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(output, "not found in database") {
		t.Errorf("expected error message in output, got: %s", output)
	}
}

func TestStatusCommand_RunNotFound(t *testing.T) {
	resetViper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error": "Run not found"}`))
	}))
	defer server.Close()

	viper.Set("url", server.URL)
	viper.Set("token", "test-token")

	output, err := execute(t, "status", "does-not-exist")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(output, "404") {
		t.Errorf("expected 404 in output, got: %s", output)
	}
}
