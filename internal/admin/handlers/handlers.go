// Package handlers contains HTTP handlers for the admin API.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"cardbase/internal/runner"
	"cardbase/internal/store"
	"cardbase/pkg/api"

	"github.com/google/uuid"
)

// Store combines the interfaces the admin API needs.
type Store interface {
	Ping(ctx context.Context) error
	store.RunStore
}

// JobRunner starts job runs. Implemented by runner.Runner.
type JobRunner interface {
	Trigger(ctx context.Context, name, dataPath string) (uuid.UUID, error)
}

// Handlers holds all HTTP handlers and their dependencies.
type Handlers struct {
	store    Store
	registry *runner.Registry
	runner   JobRunner
}

// New creates a new Handlers instance.
func New(s Store, registry *runner.Registry, r JobRunner) *Handlers {
	return &Handlers{store: s, registry: registry, runner: r}
}

// A helper function to write standard JSON responses.
func (h *Handlers) respondJson(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		json.NewEncoder(w).Encode(payload)
	}
}

// A helper function to return consistent error messages.
func (h *Handlers) httpError(w http.ResponseWriter, message string, code int) {
	h.respondJson(w, code, api.ErrorResponse{
		Error: message,
		Code:  strconv.Itoa(code),
	})
}
