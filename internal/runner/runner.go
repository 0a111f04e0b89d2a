package runner

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"cardbase/internal/store"

	"github.com/google/uuid"
)

// ErrBusy is returned by Trigger when every run slot is taken.
var ErrBusy = errors.New("all run slots are busy")

// ErrUnknownJob is returned by Trigger for names not in the registry.
var ErrUnknownJob = errors.New("unknown job")

// RunStore is the persistence surface the runner needs.
type RunStore interface {
	CreateRun(ctx context.Context, run *store.Run) error
	MarkRunning(ctx context.Context, runID uuid.UUID) error
	CompleteRun(ctx context.Context, runID uuid.UUID, exitCode int) error
	FailRun(ctx context.Context, runID uuid.UUID, exitCode *int, errMsg string) error
	AppendLog(ctx context.Context, runID uuid.UUID, content string) error
}

// Mode selects how jobs execute.
type Mode string

const (
	// ModeBuiltin runs the native Go implementation of a job.
	ModeBuiltin Mode = "builtin"

	// ModeScript runs the job's interpreter script as a subprocess.
	ModeScript Mode = "script"
)

// Config holds runner settings.
type Config struct {
	Mode        Mode
	Concurrency int           // max simultaneous runs (default: 2)
	Timeout     time.Duration // per-run timeout (default: 30m)
}

// Runner starts job runs, captures their output into the store and
// records their final state. In-flight runs survive shutdown requests
// until Wait returns.
type Runner struct {
	runs     RunStore
	registry *Registry
	runtime  *ScriptRuntime
	log      *slog.Logger
	cfg      Config

	sem chan struct{}
	wg  sync.WaitGroup
}

func New(runs RunStore, registry *Registry, rt *ScriptRuntime, log *slog.Logger, cfg Config) *Runner {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 2
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Minute
	}
	if cfg.Mode == "" {
		cfg.Mode = ModeBuiltin
	}
	return &Runner{
		runs:     runs,
		registry: registry,
		runtime:  rt,
		log:      log,
		cfg:      cfg,
		sem:      make(chan struct{}, cfg.Concurrency),
	}
}

// Trigger creates a run for the named job and starts it in the
// background. It returns ErrBusy when no run slot is free. Scheduled
// jobs go through this same path; the caller is the schedule.
func (r *Runner) Trigger(ctx context.Context, name, dataPath string) (uuid.UUID, error) {
	job, ok := r.registry.Lookup(name)
	if !ok {
		return uuid.Nil, fmt.Errorf("%w: %s", ErrUnknownJob, name)
	}

	select {
	case r.sem <- struct{}{}:
	default:
		return uuid.Nil, ErrBusy
	}

	run := &store.Run{
		ID:        uuid.New(),
		JobName:   job.Name,
		Status:    store.RunStatusPending,
		CreatedAt: time.Now().UTC(),
	}
	if err := r.runs.CreateRun(ctx, run); err != nil {
		<-r.sem
		return uuid.Nil, fmt.Errorf("failed to create run: %w", err)
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer func() { <-r.sem }()
		r.execute(run.ID, job, dataPath)
	}()

	return run.ID, nil
}

// Wait blocks until all in-flight runs have finished.
func (r *Runner) Wait() {
	r.wg.Wait()
}

// execute drives one run to completion. It deliberately uses a fresh
// context so a shutdown of the trigger path does not kill the run.
func (r *Runner) execute(runID uuid.UUID, job Descriptor, dataPath string) {
	ctx, cancel := context.WithTimeout(context.Background(), r.cfg.Timeout)
	defer cancel()

	log := r.log.With("run_id", runID, "job", job.Name)

	if err := r.runs.MarkRunning(ctx, runID); err != nil {
		log.Error("failed to mark run as running", "error", err)
	}
	log.Info("run started", "mode", r.cfg.Mode)

	var exitCode int
	var runErr error
	if r.cfg.Mode == ModeScript || job.Task == nil {
		exitCode, runErr = r.runScript(ctx, runID, job, log)
	} else {
		exitCode, runErr = r.runBuiltin(ctx, runID, job, dataPath)
	}

	switch {
	case runErr != nil:
		log.Error("run failed", "error", runErr)
		code := exitCode
		if err := r.runs.FailRun(context.Background(), runID, &code, runErr.Error()); err != nil {
			log.Error("failed to record run failure", "error", err)
		}
	case exitCode != 0:
		log.Error("run exited non-zero", "exit_code", exitCode)
		code := exitCode
		msg := fmt.Sprintf("exit code %d", exitCode)
		if err := r.runs.FailRun(context.Background(), runID, &code, msg); err != nil {
			log.Error("failed to record run failure", "error", err)
		}
	default:
		log.Info("run completed")
		if err := r.runs.CompleteRun(context.Background(), runID, 0); err != nil {
			log.Error("failed to record run completion", "error", err)
		}
	}
}

func (r *Runner) runScript(ctx context.Context, runID uuid.UUID, job Descriptor, log *slog.Logger) (int, error) {
	if r.runtime == nil {
		return 1, fmt.Errorf("no script runtime configured")
	}

	handle, err := r.runtime.Start(ctx, StartOptions{
		Script:  job.Script,
		EnvFile: job.EnvFile,
	})
	if err != nil {
		return 1, err
	}

	var logWG sync.WaitGroup
	logWG.Add(1)
	go func() {
		defer logWG.Done()
		r.captureLogs(ctx, runID, handle.Logs())
	}()

	exitCode, waitErr := handle.Wait(ctx)
	logWG.Wait()

	if waitErr != nil {
		if ctx.Err() == context.DeadlineExceeded {
			handle.Stop()
			return 1, fmt.Errorf("run timed out after %v", r.cfg.Timeout)
		}
		return 1, waitErr
	}
	return exitCode, nil
}

func (r *Runner) runBuiltin(ctx context.Context, runID uuid.UUID, job Descriptor, dataPath string) (int, error) {
	pr, pw := io.Pipe()

	var logWG sync.WaitGroup
	logWG.Add(1)
	go func() {
		defer logWG.Done()
		r.captureLogs(ctx, runID, pr)
	}()

	taskLog := slog.New(slog.NewJSONHandler(pw, nil))
	err := job.Task(ctx, taskLog, dataPath)
	pw.Close()
	logWG.Wait()

	if err != nil {
		return 1, err
	}
	return 0, nil
}

// captureLogs batches run output into the store, flushing every 100
// lines or every second, whichever comes first.
func (r *Runner) captureLogs(ctx context.Context, runID uuid.UUID, rc io.ReadCloser) {
	const (
		batchSize     = 100
		flushInterval = time.Second
	)
	defer rc.Close()

	lineChan := make(chan string, batchSize)
	go func() {
		defer close(lineChan)
		scanner := bufio.NewScanner(rc)
		for scanner.Scan() {
			line := scanner.Text()
			// Postgres rejects NUL bytes in text columns.
			if strings.Contains(line, "\x00") {
				line = strings.ReplaceAll(line, "\x00", "")
			}
			select {
			case lineChan <- line:
			case <-ctx.Done():
				return
			}
		}
	}()

	var batch []string
	flush := func() {
		if len(batch) == 0 {
			return
		}
		content := strings.Join(batch, "\n")
		if err := r.runs.AppendLog(context.Background(), runID, content); err != nil {
			r.log.Error("failed to persist run logs", "run_id", runID, "error", err)
		}
		batch = batch[:0]
	}

	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()

	for {
		select {
		case line, ok := <-lineChan:
			if !ok {
				flush()
				return
			}
			batch = append(batch, line)
			if len(batch) >= batchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-ctx.Done():
			flush()
			return
		}
	}
}
