// Package runner executes import jobs, either as native Go tasks or as
// interpreter scripts, and records every run in the store.
package runner

import (
	"context"
	"fmt"
	"log/slog"
)

// Activation describes how a job is meant to be started. Manual jobs are
// run on demand. Scheduled jobs carry a schedule tag for an external
// trigger; the runner itself never starts them on its own.
type Activation string

const (
	ActivationManual    Activation = "manual"
	ActivationScheduled Activation = "scheduled"
)

// Names of the built-in import jobs.
const (
	JobImportSets   = "import-sets"
	JobImportCards  = "import-cards"
	JobImportPrices = "import-prices"
)

// TaskFunc is the native implementation of a job. dataPath points at the
// input file or directory for jobs that read local data; jobs that do not
// ignore it.
type TaskFunc func(ctx context.Context, log *slog.Logger, dataPath string) error

// Descriptor declares a runnable job: its script form, its activation
// profile and, optionally, a native implementation.
type Descriptor struct {
	// Name is the job's unique identifier.
	Name string

	// Script is the interpreter script path, relative to the scripts
	// directory, used when the runner executes jobs as subprocesses.
	Script string

	// Activation is the job's activation profile.
	Activation Activation

	// EnvFile is an optional env file whose variables are injected into
	// the script's environment.
	EnvFile string

	// Task is the native implementation. Nil means the job only exists
	// in script form.
	Task TaskFunc
}

// Registry holds the known jobs in registration order.
type Registry struct {
	order []string
	jobs  map[string]Descriptor
}

func NewRegistry() *Registry {
	return &Registry{jobs: make(map[string]Descriptor)}
}

// Register adds a job. Registering the same name twice is an error.
func (r *Registry) Register(d Descriptor) error {
	if d.Name == "" {
		return fmt.Errorf("job name must not be empty")
	}
	if _, exists := r.jobs[d.Name]; exists {
		return fmt.Errorf("job %q already registered", d.Name)
	}
	r.jobs[d.Name] = d
	r.order = append(r.order, d.Name)
	return nil
}

// Lookup returns the job with the given name.
func (r *Registry) Lookup(name string) (Descriptor, bool) {
	d, ok := r.jobs[name]
	return d, ok
}

// List returns all jobs in registration order.
func (r *Registry) List() []Descriptor {
	out := make([]Descriptor, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.jobs[name])
	}
	return out
}
