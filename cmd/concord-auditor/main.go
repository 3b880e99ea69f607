package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"

	"github.com/concordhq/concord/pkg/audit"
)

var (
	dbURL           = flag.String("db-url", getEnv("CONCORD_AUDIT_POSTGRES_URL", "postgres://localhost/concord_audit?sslmode=disable"), "PostgreSQL connection URL for the audit database")
	cleanupSchedule = flag.String("cleanup-schedule", "30 0 * * *", "Cron schedule for retention cleanup (default: 00:30 UTC)")
	retentionDays   = flag.Int("retention-days", 90, "Number of days to keep audit events")
	archivePath     = flag.String("archive-path", "", "Archive expired events to this directory instead of deleting them")
	runOnce         = flag.Bool("run-once", false, "Run cleanup once and exit (for testing)")
)

func main() {
	flag.Parse()

	if *retentionDays <= 0 {
		log.Fatalf("Retention must be positive, got %d days", *retentionDays)
	}

	// Connect to database
	db, err := sql.Open("postgres", *dbURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Verify connection
	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}

	logger, err := audit.NewDBLogger(db)
	if err != nil {
		log.Fatalf("Failed to initialize audit logger: %v", err)
	}
	store := audit.NewDBStore(logger)

	policy := audit.RetentionPolicy{
		RetentionDays:  *retentionDays,
		ArchiveEnabled: *archivePath != "",
		ArchivePath:    *archivePath,
	}

	// Run once mode (for testing or manual cleanup)
	if *runOnce {
		log.Printf("Running cleanup, retaining %d days", *retentionDays)
		if err := runCleanup(store, policy); err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
		log.Println("Cleanup completed successfully")
		return
	}

	// Scheduled mode
	c := cron.New()

	_, err = c.AddFunc(*cleanupSchedule, func() {
		log.Printf("Starting retention cleanup, retaining %d days", *retentionDays)
		if err := runCleanup(store, policy); err != nil {
			log.Printf("Retention cleanup failed: %v", err)
		} else {
			log.Println("Retention cleanup completed successfully")
		}
	})
	if err != nil {
		log.Fatalf("Failed to schedule retention cleanup: %v", err)
	}

	c.Start()
	log.Println("Concord audit retention worker started")
	log.Printf("Cleanup schedule: %s", *cleanupSchedule)
	log.Printf("Retention: %d days", *retentionDays)
	if policy.ArchiveEnabled {
		log.Printf("Archive path: %s", policy.ArchivePath)
	}

	// Wait for termination signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	log.Println("Shutting down gracefully...")

	// Stop the cron scheduler
	ctx := c.Stop()
	<-ctx.Done()

	log.Println("Retention worker stopped")
}

func runCleanup(store audit.Store, policy audit.RetentionPolicy) error {
	ctx := context.Background()

	removed, err := store.Cleanup(ctx, policy)
	if err != nil {
		return err
	}
	log.Printf("Removed %d expired audit events", removed)
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
