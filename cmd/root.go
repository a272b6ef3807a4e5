package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/killallgit/persona-api/pkg/config"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "persona-api",
	Short: "Persona API server",
	Long: `Persona API - creator transcript ingestion and hybrid retrieval

Persona ingests a creator's captioned videos, splits the transcripts into
timestamped chunks, embeds them and serves fused semantic and keyword search
over the result.

Features:
  • Channel ingestion jobs with per-channel locking and progress tracking
  • Local, Qdrant or pgvector vector indexes
  • Full-text keyword index for exact-term matching
  • Hybrid search that fuses both result sets`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// NewRootCmd creates a new root command (exported for testing)
func NewRootCmd() *cobra.Command {
	return rootCmd
}

func init() {
	// Add persistent flags for logging configuration
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("json-logs", false, "enable JSON formatted logs")
}

// loadConfig configures logging and loads the configuration before any
// command that needs it. The version command runs without configuration.
func loadConfig(cmd *cobra.Command, args []string) error {
	level, _ := cmd.Flags().GetString("log-level")
	jsonLogs, _ := cmd.Flags().GetBool("json-logs")
	if err := setupLogging(os.Stderr, level, jsonLogs); err != nil {
		return err
	}

	if cmd.Name() == "version" {
		return nil
	}

	if err := config.Init(); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}
