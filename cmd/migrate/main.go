// CLI tool to run pending database migrations from db/.
// Files already recorded in the migrations table are skipped; each migration
// and its record insert share one transaction.
// Usage: go run ./cmd/migrate [-dir db] [-dry-run]
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
)

var migrationPrefix = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}-\d{3}-`)

func main() {
	dbDir := flag.String("dir", "db", "directory holding the *.sql migrations")
	dryRun := flag.Bool("dry-run", false, "list pending migrations without applying them")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		fmt.Printf("No .env loaded (%v), using environment\n", err)
	}

	ctx := context.Background()
	conn, err := pgx.Connect(ctx, os.Getenv("DB_URL"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer conn.Close(ctx)

	files, err := filepath.Glob(filepath.Join(*dbDir, "*.sql"))
	if err != nil || len(files) == 0 {
		fmt.Fprintf(os.Stderr, "No migration files found in %s\n", *dbDir)
		os.Exit(1)
	}

	// The table doesn't exist before the first migration runs.
	applied := make(map[string]bool)
	rows, err := conn.Query(ctx, "SELECT migration FROM migrations")
	if err == nil {
		for rows.Next() {
			var name string
			rows.Scan(&name)
			applied[name] = true
		}
		rows.Close()
	}

	pending := pendingMigrations(files, applied)
	if len(pending) == 0 {
		fmt.Println("No pending migrations.")
		return
	}
	if *dryRun {
		for _, f := range pending {
			fmt.Printf("  pending: %s (%s)\n", filepath.Base(f), descriptionFromFilename(filepath.Base(f)))
		}
		return
	}

	for _, f := range pending {
		if err := applyMigration(ctx, conn, f); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
		fmt.Printf("  applied: %s\n", filepath.Base(f))
	}
	fmt.Printf("\n%d migration(s) applied.\n", len(pending))
}

// pendingMigrations returns files not yet in applied, in filename order.
func pendingMigrations(files []string, applied map[string]bool) []string {
	sorted := append([]string(nil), files...)
	sort.Strings(sorted)

	pending := []string{}
	for _, f := range sorted {
		if applied[filepath.Base(f)] {
			continue
		}
		pending = append(pending, f)
	}
	return pending
}

// applyMigration runs one file and records it in a single transaction.
func applyMigration(ctx context.Context, conn *pgx.Conn, path string) error {
	filename := filepath.Base(path)
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", filename, err)
	}

	tx, err := conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, string(content)); err != nil {
		return fmt.Errorf("running %s: %w", filename, err)
	}
	if _, err := tx.Exec(ctx, "INSERT INTO migrations (migration, description) VALUES ($1, $2)",
		filename, descriptionFromFilename(filename)); err != nil {
		return fmt.Errorf("recording %s: %w", filename, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing %s: %w", filename, err)
	}
	return nil
}

// descriptionFromFilename strips the YYYY-MM-DD-NNN- prefix and .sql suffix.
func descriptionFromFilename(filename string) string {
	name := strings.TrimSuffix(filename, ".sql")
	name = migrationPrefix.ReplaceAllString(name, "")
	return strings.ReplaceAll(name, "-", " ")
}
