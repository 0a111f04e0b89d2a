// Package main is the entry point for the cardbase admin server.
// It serves the admin API and executes import jobs in the background.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cardbase/internal/admin"
	"cardbase/internal/config"
	"cardbase/internal/jobs"
	"cardbase/internal/logger"
	"cardbase/internal/observability"
	"cardbase/internal/runner"
	"cardbase/internal/store/postgres"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

func main() {
	migrateFlag := flag.Bool("migrate", false, "Run database migrations before starting")
	envFile := flag.String("env", "", "Path to env file (default: .env in current directory)")
	mode := flag.String("mode", "builtin", "Job execution mode: builtin or script")
	flag.Parse()

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

	// Tracing
	shutdownTracer, err := observability.InitTracer(ctx, "cardbase-admin", cfg.OTELEndpoint)
	if err != nil {
		log.Fatalf("Failed to init tracing: %v", err)
	}
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			log.Printf("Failed to shutdown tracer: %v", err)
		}
	}()

	// Metrics
	metricsHandler, shutdownMetrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatalf("Failed to init metrics: %v", err)
	}
	defer func() {
		if err := shutdownMetrics(context.Background()); err != nil {
			log.Printf("Failed to shutdown metrics: %v", err)
		}
	}()

	// Use an Observable Gauge (Async) that queries the DB only when scraped.
	meter := otel.Meter("cardbase-admin")
	_, err = meter.Int64ObservableGauge("cardbase.runs.active",
		metric.WithDescription("Number of runs currently pending or running"),
		metric.WithInt64Callback(func(ctx context.Context, obs metric.Int64Observer) error {
			count, err := db.CountActive(ctx)
			if err != nil {
				log.Printf("Failed to count active runs: %v", err)
				return nil // Don't crash metrics scrape on DB error
			}
			obs.Observe(count)
			return nil
		}),
	)
	if err != nil {
		log.Printf("Failed to register active runs metric: %v", err)
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
		Mode: runner.Mode(*mode),
	})

	addr := fmt.Sprintf(":%d", cfg.HTTPPort)
	srv := admin.New(admin.Options{
		Addr:           addr,
		Token:          cfg.AdminToken,
		RateLimit:      cfg.RateLimit,
		RateLimitBurst: cfg.RateLimitBurst,
		Metrics:        metricsHandler,
	}, db, registry, jobRunner)

	go func() {
		log.Printf("Cardbase admin server starting on %s", addr)
		if err := srv.Run(ctx); err != nil {
			log.Printf("Server stopped: %v", err)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down admin server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	// Let in-flight runs finish before closing the DB.
	log.Println("Waiting for in-flight runs...")
	jobRunner.Wait()
	log.Println("Server exited properly")
}
