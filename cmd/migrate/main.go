// ABOUTME: Schema migration utility for command center databases
// ABOUTME: Reports the schema version, applies pending migrations, and snapshots first

package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/remotearmz/commandcenter/db"
)

// Tables left behind by the contact/deal CRM this database may have started as.
var legacyTables = []string{
	"interactions", "followup_queue", "contact_cadence",
	"notes", "deals", "contacts", "companies",
	"sync_log", "sync_state", "objects", "relationships",
}

func main() {
	dbPath := flag.String("db", "", "Path to database file (required)")
	dryRun := flag.Bool("dry-run", false, "Show what would happen without making changes")
	backup := flag.Bool("backup", true, "Snapshot the database before migrating")
	dropLegacy := flag.Bool("drop-legacy", false, "Drop tables from the old contact CRM schema")
	flag.Parse()

	if *dbPath == "" {
		log.Fatal("Error: -db flag is required")
	}

	if err := migrate(context.Background(), *dbPath, *dryRun, *backup, *dropLegacy); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
}

func migrate(ctx context.Context, dbPath string, dryRun, createBackup, dropLegacy bool) error {
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return fmt.Errorf("database file does not exist: %s", dbPath)
	}

	database, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = database.Close() }()
	database.SetMaxOpenConns(1)

	current, err := db.SchemaVersion(ctx, database)
	if err != nil {
		return err
	}
	pending, err := db.PendingMigrations(ctx, database)
	if err != nil {
		return err
	}
	legacy, err := presentLegacyTables(ctx, database)
	if err != nil {
		return err
	}

	log.Printf("Schema version %d (latest %d)", current, db.LatestSchemaVersion())
	if len(pending) == 0 && (len(legacy) == 0 || !dropLegacy) {
		log.Println("Database is up to date")
		if len(legacy) > 0 {
			log.Printf("Legacy tables present: %v (use -drop-legacy to remove)", legacy)
		}
		return nil
	}

	if dryRun {
		for _, m := range pending {
			log.Printf("[DRY RUN] Would apply migration %d: %s", m.Version, m.Description)
		}
		if dropLegacy {
			for _, t := range legacy {
				log.Printf("[DRY RUN] Would drop legacy table %s", t)
			}
		}
		return nil
	}

	if createBackup {
		backupPath := fmt.Sprintf("%s.backup.%s", dbPath, time.Now().Format("20060102-150405"))
		data, err := db.Snapshot(ctx, database)
		if err != nil {
			return fmt.Errorf("failed to snapshot database: %w", err)
		}
		if err := os.WriteFile(backupPath, data, 0600); err != nil {
			return fmt.Errorf("failed to write backup: %w", err)
		}
		log.Printf("Backup written to %s", backupPath)
	}

	if err := db.Migrate(ctx, database); err != nil {
		return err
	}
	for _, m := range pending {
		log.Printf("Applied migration %d: %s", m.Version, m.Description)
	}

	if dropLegacy {
		for _, t := range legacy {
			if _, err := database.ExecContext(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", t)); err != nil {
				return fmt.Errorf("failed to drop table %s: %w", t, err)
			}
			log.Printf("Dropped table: %s", t)
		}
	}

	log.Println("Migration completed successfully")
	return nil
}

func presentLegacyTables(ctx context.Context, database *sql.DB) ([]string, error) {
	tables, err := db.Tables(ctx, database)
	if err != nil {
		return nil, err
	}
	existing := make(map[string]bool, len(tables))
	for _, t := range tables {
		existing[t] = true
	}
	var found []string
	for _, t := range legacyTables {
		if existing[t] {
			found = append(found, t)
		}
	}
	return found, nil
}
