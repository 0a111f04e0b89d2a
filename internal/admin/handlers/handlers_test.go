package handlers

import (
	"context"

	"cardbase/internal/store"

	"github.com/google/uuid"
)

// mockStore implements Store with canned results per test.
type mockStore struct {
	pingErr error

	runs       []store.Run
	run        *store.Run
	getRunErr  error
	listErr    error
	logs       []store.RunLog
	listLogErr error

	listLimit  int
	listOffset int
}

func (m *mockStore) Ping(ctx context.Context) error { return m.pingErr }

func (m *mockStore) CreateRun(ctx context.Context, run *store.Run) error { return nil }
func (m *mockStore) MarkRunning(ctx context.Context, runID uuid.UUID) error {
	return nil
}
func (m *mockStore) CompleteRun(ctx context.Context, runID uuid.UUID, exitCode int) error {
	return nil
}
func (m *mockStore) FailRun(ctx context.Context, runID uuid.UUID, exitCode *int, errMsg string) error {
	return nil
}

func (m *mockStore) GetRun(ctx context.Context, runID uuid.UUID) (*store.Run, error) {
	if m.getRunErr != nil {
		return nil, m.getRunErr
	}
	return m.run, nil
}

func (m *mockStore) ListRuns(ctx context.Context, limit, offset int) ([]store.Run, error) {
	m.listLimit = limit
	m.listOffset = offset
	return m.runs, m.listErr
}

func (m *mockStore) AppendLog(ctx context.Context, runID uuid.UUID, content string) error {
	return nil
}

func (m *mockStore) ListLogs(ctx context.Context, runID uuid.UUID, afterID int64, limit int) ([]store.RunLog, error) {
	return m.logs, m.listLogErr
}

func (m *mockStore) CountActive(ctx context.Context) (int64, error) { return 0, nil }

// mockRunner implements JobRunner.
type mockRunner struct {
	runID   uuid.UUID
	err     error
	gotName string
	gotPath string
}

func (m *mockRunner) Trigger(ctx context.Context, name, dataPath string) (uuid.UUID, error) {
	m.gotName = name
	m.gotPath = dataPath
	if m.err != nil {
		return uuid.Nil, m.err
	}
	return m.runID, nil
}
