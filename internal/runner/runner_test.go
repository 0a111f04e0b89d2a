package runner

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"sync"
	"testing"

	"cardbase/internal/store"

	"github.com/google/uuid"
)

type fakeRunStore struct {
	mu sync.Mutex

	created   []store.Run
	running   []uuid.UUID
	completed map[uuid.UUID]int
	failed    map[uuid.UUID]string
	logs      map[uuid.UUID][]string
}

func newFakeRunStore() *fakeRunStore {
	return &fakeRunStore{
		completed: map[uuid.UUID]int{},
		failed:    map[uuid.UUID]string{},
		logs:      map[uuid.UUID][]string{},
	}
}

func (f *fakeRunStore) CreateRun(ctx context.Context, run *store.Run) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, *run)
	return nil
}

func (f *fakeRunStore) MarkRunning(ctx context.Context, runID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.running = append(f.running, runID)
	return nil
}

func (f *fakeRunStore) CompleteRun(ctx context.Context, runID uuid.UUID, exitCode int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.completed[runID] = exitCode
	return nil
}

func (f *fakeRunStore) FailRun(ctx context.Context, runID uuid.UUID, exitCode *int, errMsg string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failed[runID] = errMsg
	return nil
}

func (f *fakeRunStore) AppendLog(ctx context.Context, runID uuid.UUID, content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logs[runID] = append(f.logs[runID], content)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

func TestRunner_BuiltinSuccess(t *testing.T) {
	rs := newFakeRunStore()
	reg := NewRegistry()
	reg.Register(Descriptor{
		Name:       JobImportSets,
		Activation: ActivationManual,
		Task: func(ctx context.Context, log *slog.Logger, dataPath string) error {
			log.Info("importing", "path", dataPath)
			return nil
		},
	})

	r := New(rs, reg, nil, testLogger(), Config{Mode: ModeBuiltin})
	runID, err := r.Trigger(context.Background(), JobImportSets, "/data/sets.json")
	if err != nil {
		t.Fatalf("Trigger failed: %v", err)
	}
	r.Wait()

	if len(rs.created) != 1 || rs.created[0].JobName != JobImportSets {
		t.Fatalf("expected one created run for %s", JobImportSets)
	}
	if len(rs.running) != 1 {
		t.Errorf("run was never marked running")
	}
	if code, ok := rs.completed[runID]; !ok || code != 0 {
		t.Errorf("expected run to complete with exit code 0, got (%d, %v)", code, ok)
	}
	logged := strings.Join(rs.logs[runID], "\n")
	if !strings.Contains(logged, "/data/sets.json") {
		t.Errorf("task log output was not captured, got %q", logged)
	}
}

func TestRunner_BuiltinFailure(t *testing.T) {
	rs := newFakeRunStore()
	reg := NewRegistry()
	reg.Register(Descriptor{
		Name: JobImportCards,
		Task: func(ctx context.Context, log *slog.Logger, dataPath string) error {
			return errors.New("set \"swsh1\" not found in database")
		},
	})

	r := New(rs, reg, nil, testLogger(), Config{})
	runID, err := r.Trigger(context.Background(), JobImportCards, "")
	if err != nil {
		t.Fatalf("Trigger failed: %v", err)
	}
	r.Wait()

	msg, ok := rs.failed[runID]
	if !ok {
		t.Fatal("expected run to be marked failed")
	}
	if !strings.Contains(msg, "not found") {
		t.Errorf("failure message should carry the task error, got %q", msg)
	}
	if _, ok := rs.completed[runID]; ok {
		t.Error("failed run must not be marked completed")
	}
}

func TestRunner_UnknownJob(t *testing.T) {
	r := New(newFakeRunStore(), NewRegistry(), nil, testLogger(), Config{})
	if _, err := r.Trigger(context.Background(), "import-nothing", ""); !errors.Is(err, ErrUnknownJob) {
		t.Errorf("expected ErrUnknownJob, got %v", err)
	}
}

func TestRunner_BusyWhenSlotsFull(t *testing.T) {
	release := make(chan struct{})
	rs := newFakeRunStore()
	reg := NewRegistry()
	reg.Register(Descriptor{
		Name: JobImportPrices,
		Task: func(ctx context.Context, log *slog.Logger, dataPath string) error {
			<-release
			return nil
		},
	})

	r := New(rs, reg, nil, testLogger(), Config{Concurrency: 1})
	if _, err := r.Trigger(context.Background(), JobImportPrices, ""); err != nil {
		t.Fatalf("first Trigger failed: %v", err)
	}
	if _, err := r.Trigger(context.Background(), JobImportPrices, ""); !errors.Is(err, ErrBusy) {
		t.Errorf("expected ErrBusy while a run holds the slot, got %v", err)
	}

	close(release)
	r.Wait()

	// The channel is closed, so this run returns immediately.
	if _, err := r.Trigger(context.Background(), JobImportPrices, ""); err != nil {
		t.Errorf("slot should be free again after the run, got %v", err)
	}
	r.Wait()
}

func TestRunner_ScriptMode(t *testing.T) {
	scriptsDir := t.TempDir()
	writeScript(t, scriptsDir, "src/import_sets.py", "#!/bin/sh\necho importing sets\n")

	rs := newFakeRunStore()
	reg := NewRegistry()
	reg.Register(Descriptor{
		Name:       JobImportSets,
		Script:     "src/import_sets.py",
		Activation: ActivationManual,
	})

	rt := &ScriptRuntime{Interpreter: "/bin/sh", ScriptsDir: scriptsDir}
	r := New(rs, reg, rt, testLogger(), Config{Mode: ModeScript})

	runID, err := r.Trigger(context.Background(), JobImportSets, "")
	if err != nil {
		t.Fatalf("Trigger failed: %v", err)
	}
	r.Wait()

	if code, ok := rs.completed[runID]; !ok || code != 0 {
		t.Fatalf("expected completed run, got (%d, %v); failed: %v", code, ok, rs.failed[runID])
	}
	logged := strings.Join(rs.logs[runID], "\n")
	if !strings.Contains(logged, "importing sets") {
		t.Errorf("script output was not captured, got %q", logged)
	}
}

func TestRunner_ScriptExitCodeFailure(t *testing.T) {
	scriptsDir := t.TempDir()
	writeScript(t, scriptsDir, "broken.sh", "#!/bin/sh\necho boom >&2\nexit 2\n")

	rs := newFakeRunStore()
	reg := NewRegistry()
	reg.Register(Descriptor{Name: "broken", Script: "broken.sh"})

	rt := &ScriptRuntime{Interpreter: "/bin/sh", ScriptsDir: scriptsDir}
	r := New(rs, reg, rt, testLogger(), Config{Mode: ModeScript})

	runID, err := r.Trigger(context.Background(), "broken", "")
	if err != nil {
		t.Fatalf("Trigger failed: %v", err)
	}
	r.Wait()

	msg, ok := rs.failed[runID]
	if !ok {
		t.Fatal("expected run to be marked failed")
	}
	if !strings.Contains(msg, "exit code 2") {
		t.Errorf("failure message = %q, want exit code 2", msg)
	}
	logged := strings.Join(rs.logs[runID], "\n")
	if !strings.Contains(logged, "boom") {
		t.Errorf("stderr was not captured, got %q", logged)
	}
}
