package runner

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/joho/godotenv"
)

// ScriptRuntime executes jobs as interpreter subprocesses. The process is
// always started as `interpreter <script>` with the scripts directory as
// working directory and module search path.
type ScriptRuntime struct {
	// Interpreter is the program that runs the scripts, e.g. python3.
	Interpreter string

	// ScriptsDir is the directory scripts live in. It becomes the
	// process working directory and is exported as PYTHONPATH so
	// scripts can import sibling modules.
	ScriptsDir string
}

// StartOptions are the per-job parameters for a script execution.
type StartOptions struct {
	// Script is the script path relative to the scripts directory.
	Script string

	// EnvFile, when set, names an env file whose variables are added to
	// the process environment. A missing file is an error.
	EnvFile string

	// Env holds additional variables declared by the job.
	Env map[string]string
}

// Handle represents a started script process.
type Handle interface {
	// Wait blocks until the process exits and returns its exit code.
	Wait(ctx context.Context) (int, error)

	// Stop forcefully terminates the process.
	Stop() error

	// Logs returns the combined stdout/stderr stream.
	Logs() io.ReadCloser
}

// Start launches the script. The process environment is the parent
// environment plus the env file variables, the declared variables and
// PYTHONPATH; the argument vector is exactly the interpreter followed by
// the script path.
func (r *ScriptRuntime) Start(ctx context.Context, opts StartOptions) (Handle, error) {
	if opts.Script == "" {
		return nil, fmt.Errorf("script path must not be empty")
	}

	env := os.Environ()
	if opts.EnvFile != "" {
		fileVars, err := godotenv.Read(opts.EnvFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read env file %s: %w", opts.EnvFile, err)
		}
		for k, v := range fileVars {
			env = append(env, k+"="+v)
		}
	}
	for k, v := range opts.Env {
		env = append(env, k+"="+v)
	}
	env = append(env, "PYTHONPATH="+r.ScriptsDir)

	cmd := exec.Command(r.Interpreter, opts.Script)
	cmd.Dir = r.ScriptsDir
	cmd.Env = env

	pr, pw := io.Pipe()
	cmd.Stdout = pw
	cmd.Stderr = pw

	if err := cmd.Start(); err != nil {
		pw.Close()
		pr.Close()
		return nil, fmt.Errorf("failed to start %s %s: %w", r.Interpreter, opts.Script, err)
	}

	h := &scriptHandle{cmd: cmd, logs: pr, done: make(chan struct{})}
	go func() {
		h.err = cmd.Wait()
		// Unblocks log readers once the process is gone.
		pw.Close()
		close(h.done)
	}()

	return h, nil
}

type scriptHandle struct {
	cmd  *exec.Cmd
	logs *io.PipeReader
	done chan struct{}
	err  error
}

func (h *scriptHandle) Wait(ctx context.Context) (int, error) {
	select {
	case <-ctx.Done():
		return -1, ctx.Err()
	case <-h.done:
	}

	if h.err == nil {
		return 0, nil
	}
	if exitErr, ok := h.err.(*exec.ExitError); ok {
		return exitErr.ExitCode(), nil
	}
	return -1, h.err
}

func (h *scriptHandle) Stop() error {
	if h.cmd.Process == nil {
		return nil
	}
	return h.cmd.Process.Kill()
}

func (h *scriptHandle) Logs() io.ReadCloser {
	return h.logs
}
