package admin

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"cardbase/internal/runner"
	"cardbase/internal/store"

	"github.com/google/uuid"
)

type stubStore struct{}

func (stubStore) Ping(ctx context.Context) error                         { return nil }
func (stubStore) CreateRun(ctx context.Context, run *store.Run) error    { return nil }
func (stubStore) MarkRunning(ctx context.Context, runID uuid.UUID) error { return nil }
func (stubStore) CompleteRun(ctx context.Context, runID uuid.UUID, exitCode int) error {
	return nil
}
func (stubStore) FailRun(ctx context.Context, runID uuid.UUID, exitCode *int, errMsg string) error {
	return nil
}
func (stubStore) GetRun(ctx context.Context, runID uuid.UUID) (*store.Run, error) {
	return &store.Run{ID: runID}, nil
}
func (stubStore) ListRuns(ctx context.Context, limit, offset int) ([]store.Run, error) {
	return nil, nil
}
func (stubStore) AppendLog(ctx context.Context, runID uuid.UUID, content string) error {
	return nil
}
func (stubStore) ListLogs(ctx context.Context, runID uuid.UUID, afterID int64, limit int) ([]store.RunLog, error) {
	return nil, nil
}
func (stubStore) CountActive(ctx context.Context) (int64, error) { return 0, nil }

type stubRunner struct{}

func (stubRunner) Trigger(ctx context.Context, name, dataPath string) (uuid.UUID, error) {
	return uuid.New(), nil
}

func newTestServer(t *testing.T, opts Options) *Server {
	t.Helper()
	reg := runner.NewRegistry()
	if err := reg.Register(runner.Descriptor{Name: runner.JobImportSets, Activation: runner.ActivationManual}); err != nil {
		t.Fatal(err)
	}
	return New(opts, stubStore{}, reg, stubRunner{})
}

func TestServer_AuthRequired(t *testing.T) {
	s := newTestServer(t, Options{Token: "secret"})

	req := httptest.NewRequest(http.MethodGet, "/jobs", nil)
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("unauthenticated request: status = %d, want 401", rr.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/jobs", nil)
	req.Header.Set("Authorization", "Bearer secret")
	rr = httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Errorf("authenticated request: status = %d, want 200", rr.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/jobs", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	rr = httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("wrong token: status = %d, want 401", rr.Code)
	}
}

func TestServer_ProbesSkipAuth(t *testing.T) {
	s := newTestServer(t, Options{Token: "secret"})

	for _, path := range []string{"/healthz", "/readyz"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rr := httptest.NewRecorder()
		s.Handler().ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Errorf("%s: status = %d, want 200", path, rr.Code)
		}
	}
}

func TestServer_RateLimit(t *testing.T) {
	s := newTestServer(t, Options{RateLimit: 1, RateLimitBurst: 1})

	var saw429 bool
	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodGet, "/jobs", nil)
		rr := httptest.NewRecorder()
		s.Handler().ServeHTTP(rr, req)
		if rr.Code == http.StatusTooManyRequests {
			saw429 = true
		}
	}
	if !saw429 {
		t.Error("expected at least one 429 after exhausting the burst")
	}
}

func TestServer_MetricsRoute(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("# HELP\n"))
	})
	s := newTestServer(t, Options{Metrics: metrics})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Errorf("metrics: status = %d, want 200", rr.Code)
	}
}
