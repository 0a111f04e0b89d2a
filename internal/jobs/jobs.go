// Package jobs wires the import job registry to the native importer
// implementations.
package jobs

import (
	"context"
	"log/slog"
	"path/filepath"

	"cardbase/internal/config"
	"cardbase/internal/importer/cards"
	"cardbase/internal/importer/prices"
	"cardbase/internal/importer/sets"
	"cardbase/internal/pricefeed"
	"cardbase/internal/runner"
)

// Store combines the persistence surfaces of all import jobs.
type Store interface {
	sets.Store
	cards.Store
	prices.Store
}

// NewRegistry builds the registry of the three import jobs. envFile, when
// set, is injected into script-mode executions of every job.
func NewRegistry(db Store, cfg *config.Config, envFile string) (*runner.Registry, error) {
	feed := pricefeed.New(cfg.PriceAPIToken, 0)

	reg := runner.NewRegistry()

	descriptors := []runner.Descriptor{
		{
			Name:       runner.JobImportSets,
			Script:     "src/import_sets.py",
			Activation: runner.ActivationManual,
			EnvFile:    envFile,
			Task: func(ctx context.Context, log *slog.Logger, dataPath string) error {
				if dataPath == "" {
					dataPath = filepath.Join(cfg.DataDir, "sets.json")
				}
				return sets.New(db, log).ImportFile(ctx, dataPath)
			},
		},
		{
			Name:       runner.JobImportCards,
			Script:     "src/import_cards.py",
			Activation: runner.ActivationManual,
			EnvFile:    envFile,
			Task: func(ctx context.Context, log *slog.Logger, dataPath string) error {
				if dataPath == "" {
					dataPath = filepath.Join(cfg.DataDir, "cards")
				}
				return cards.New(db, log).ImportPath(ctx, dataPath)
			},
		},
		{
			Name:       runner.JobImportPrices,
			Script:     "src/run_price_imports.py",
			Activation: runner.ActivationScheduled,
			EnvFile:    envFile,
			Task: func(ctx context.Context, log *slog.Logger, dataPath string) error {
				imp := prices.New(db, feed, log, prices.Options{
					Endpoint:   cfg.PriceAPIURL,
					Workers:    cfg.PriceWorkers,
					MaxRetries: cfg.PriceMaxRetries,
					RetryDelay: cfg.PriceRetryDelay,
					Retention:  cfg.HistoryRetention,
				})
				return imp.Run(ctx)
			},
		},
	}

	for _, d := range descriptors {
		if err := reg.Register(d); err != nil {
			return nil, err
		}
	}
	return reg, nil
}
