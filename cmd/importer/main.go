// Package main is the entry point for the one-shot importer.
// It runs a single import job to completion and exits with the job's
// exit code, which makes it suitable for cron and container jobs.
package main

import (
	"context"
	"flag"
	"log"
	"os"

	"cardbase/internal/config"
	"cardbase/internal/jobs"
	"cardbase/internal/logger"
	"cardbase/internal/observability"
	"cardbase/internal/runner"
	"cardbase/internal/store"
	"cardbase/internal/store/postgres"
)

func main() {
	jobName := flag.String("job", "", "Job to run: import-sets, import-cards or import-prices")
	mode := flag.String("mode", "builtin", "Job execution mode: builtin or script")
	dataPath := flag.String("data", "", "Input file or directory (defaults to the data dir)")
	envFile := flag.String("env", "", "Path to env file (default: .env in current directory)")
	migrateFlag := flag.Bool("migrate", false, "Run database migrations before the job")
	metricsAddr := flag.String("metrics-addr", ":9091", "Address for the /metrics listener (empty disables)")
	flag.Parse()

	if *jobName == "" {
		log.Fatal("-job is required")
	}

	cfg, err := config.Load(*envFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	slogger := logger.New()

	ctx := context.Background()
	db, err := postgres.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer db.Close()

	if *migrateFlag {
		log.Println("Running database migrations...")
		if err := postgres.Migrate(db.DB()); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
		log.Println("Migrations completed successfully")
	}

	shutdownTracer, err := observability.InitTracer(ctx, "cardbase-importer", cfg.OTELEndpoint)
	if err != nil {
		log.Fatalf("Failed to init tracing: %v", err)
	}
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			log.Printf("Failed to shutdown tracer: %v", err)
		}
	}()

	// Scheduled runs can take a while; expose metrics on a side port so
	// they stay scrapeable for the duration of the job.
	metricsHandler, shutdownMetrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatalf("Failed to init metrics: %v", err)
	}
	defer func() {
		if err := shutdownMetrics(context.Background()); err != nil {
			log.Printf("Failed to shutdown metrics: %v", err)
		}
	}()

	if *metricsAddr != "" {
		metricsSrv := observability.ServeMetrics(*metricsAddr, metricsHandler)
		defer metricsSrv.Shutdown(context.Background())
	}

	registry, err := jobs.NewRegistry(db, cfg, *envFile)
	if err != nil {
		log.Fatalf("Failed to build job registry: %v", err)
	}

	scriptRT := &runner.ScriptRuntime{
		Interpreter: cfg.Interpreter,
		ScriptsDir:  cfg.ScriptsDir,
	}
	jobRunner := runner.New(db, registry, scriptRT, slogger, runner.Config{
		Mode:        runner.Mode(*mode),
		Concurrency: 1,
	})

	runID, err := jobRunner.Trigger(ctx, *jobName, *dataPath)
	if err != nil {
		log.Fatalf("Failed to start job %s: %v", *jobName, err)
	}
	log.Printf("Started run %s for job %s", runID, *jobName)

	jobRunner.Wait()

	run, err := db.GetRun(ctx, runID)
	if err != nil {
		log.Fatalf("Failed to read run result: %v", err)
	}

	switch run.Status {
	case store.RunStatusCompleted:
		log.Printf("Run %s completed", runID)
	case store.RunStatusFailed:
		msg := "unknown error"
		if run.ErrorMessage != nil {
			msg = *run.ErrorMessage
		}
		log.Printf("Run %s failed: %s", runID, msg)
		if run.ExitCode != nil && *run.ExitCode > 0 {
			os.Exit(*run.ExitCode)
		}
		os.Exit(1)
	default:
		log.Printf("Run %s ended in unexpected state %s", runID, run.Status)
		os.Exit(1)
	}
}
