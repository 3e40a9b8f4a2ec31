// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/datasheet-engine/internal/progress"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the job states of a batch run",
	Long: `Status reads the progress database written by batch and prints the
latest state of every job of the most recent run (or of --run).`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().String("progress-db", "", "SQLite progress file (default: batch.progress_db)")
	statusCmd.Flags().String("run", "", "run id (default: the latest run)")
	statusCmd.Flags().String("format", "text", "output format: text, yaml or json")

	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	bindFlags(cmd.Flags(), map[string]string{"progress-db": "batch.progress_db"})
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Batch.ProgressDB == "" {
		return fmt.Errorf("no progress database configured (use --progress-db or batch.progress_db)")
	}
	if _, err := os.Stat(cfg.Batch.ProgressDB); err != nil {
		return fmt.Errorf("opening progress database: %w", err)
	}

	store, err := progress.OpenSQLite(cfg.Batch.ProgressDB)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := cmd.Context()
	runID, _ := cmd.Flags().GetString("run")
	if runID == "" {
		if runID, err = store.LatestRun(ctx); err != nil {
			return err
		}
	}
	jobs, err := store.Snapshot(ctx, runID)
	if err != nil {
		return err
	}
	format, _ := cmd.Flags().GetString("format")
	return progress.Export(os.Stdout, progress.RunStatus{RunID: runID, Jobs: jobs}, format)
}
