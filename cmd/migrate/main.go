package main

import (
	"flag"
	"log"

	"boardmart/config"
	"boardmart/internal/database"
	"boardmart/internal/service"
)

// Normalizes legacy user records outside the request path. Safe to rerun:
// already-normalized users are skipped.
func main() {
	dryRun := flag.Bool("dry-run", false, "count users needing migration without changing anything")
	flag.Parse()

	cfg := config.Load()
	db, err := database.NewDB(&cfg.Database)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("migrate schema: %v", err)
	}

	svc := service.NewMigrationService(db, service.NewWalletService(db))

	if *dryRun {
		report, err := svc.DryRun()
		if err != nil {
			log.Fatalf("dry run: %v", err)
		}
		log.Printf("dry run: %d of %d users need migration", report.Migrated, report.Scanned)
		return
	}

	report, err := svc.Run()
	if err != nil {
		log.Fatalf("run: %v", err)
	}
	log.Printf("migrated=%d skipped=%d errors=%d", report.Migrated, report.Skipped, len(report.Errors))
	for _, e := range report.Errors {
		log.Printf("  user %d: %s", e.UserID, e.Err)
	}
	if len(report.Errors) > 0 {
		log.Fatal("migration finished with errors")
	}
}
