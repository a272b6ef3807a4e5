package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/killallgit/persona-api/internal/database"
	"github.com/killallgit/persona-api/pkg/config"
)

// migrateCmd represents the migrate command
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
	Long: `Manage the metadata database schema for the Persona API.

Tables are created and extended with GORM auto migration, which only adds
tables, columns and indexes and never drops data.

Available subcommands:
  up      - Create or update every table
  status  - Show which tables exist`,
}

// migrateUpCmd applies pending migrations
var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Create or update every table",
	Long: `Apply database migrations.

Creates the creators, entitlements and chunk document tables and their
indexes, or adds any columns and indexes they are missing.`,
	RunE: runMigrateUp,
}

// migrateStatusCmd shows migration status
var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show migration status",
	Long: `Display the current status of database migrations.

Lists every table the service owns and whether it exists.`,
	RunE: runMigrateStatus,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateStatusCmd)

	migrateCmd.PersistentFlags().Bool("dry-run", false, "show what would be done without making changes")
}

func openDatabase() (*database.DB, error) {
	cfg, err := config.GetConfig()
	if err != nil {
		return nil, err
	}
	return database.Initialize(cfg.Database.Path, cfg.Database.LogQueries)
}

func runMigrateUp(cmd *cobra.Command, args []string) error {
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	out := cmd.OutOrStdout()

	db, err := openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	if dryRun {
		fmt.Fprintln(out, "Dry run mode - no changes will be made")
		return printMigrationStatus(cmd, db)
	}

	if err := db.AutoMigrate(database.Models()...); err != nil {
		return err
	}
	fmt.Fprintf(out, "Applied migrations for %d table(s)\n", len(database.Models()))
	return nil
}

func runMigrateStatus(cmd *cobra.Command, args []string) error {
	db, err := openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	return printMigrationStatus(cmd, db)
}

func printMigrationStatus(cmd *cobra.Command, db *database.DB) error {
	status, err := db.MigrationStatus()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Database Migration Status")
	fmt.Fprintln(out, strings.Repeat("=", 50))

	pending := 0
	for _, s := range status {
		state := "applied"
		if !s.Exists {
			state = "pending"
			pending++
		}
		fmt.Fprintf(out, "  %-20s %s\n", s.Table, state)
	}
	fmt.Fprintf(out, "\n%d of %d table(s) pending\n", pending, len(status))
	return nil
}
