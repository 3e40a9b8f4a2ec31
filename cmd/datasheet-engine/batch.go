// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/datasheet-engine/internal/batch"
	"github.com/pdiddy/datasheet-engine/internal/metrics"
	"github.com/pdiddy/datasheet-engine/internal/progress"
	"github.com/pdiddy/datasheet-engine/internal/workspace"
	"github.com/pdiddy/datasheet-engine/pkg/types"
)

var batchCmd = &cobra.Command{
	Use:   "batch [documents or directories...]",
	Short: "Convert many datasheets concurrently",
	Long: `Batch converts every given document (directories contribute their .docx
files) with a bounded pool of workers. A document that fails is reported and
the rest of the batch continues. Jobs with per-document overrides can be
listed in a YAML manifest instead.

Interrupting the command stops new jobs from starting; jobs already running
finish and the rest are reported as skipped.`,
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().String("template", "", "template document (default: render.template)")
	batchCmd.Flags().String("output-dir", "", "directory for rendered documents (default: batch.output_dir)")
	batchCmd.Flags().Int("workers", 0, "number of concurrent workers (default: batch.workers)")
	batchCmd.Flags().Bool("sequential", false, "process one document at a time")
	batchCmd.Flags().String("manifest", "", "YAML file listing jobs and their overrides")
	batchCmd.Flags().String("progress-db", "", "SQLite file recording job progress (default: batch.progress_db)")
	batchCmd.Flags().String("metrics-file", "", "Prometheus textfile written after the run (default: batch.metrics_file)")
	batchCmd.Flags().Bool("json", false, "print the batch report as JSON")
	addOverrideFlags(batchCmd)

	rootCmd.AddCommand(batchCmd)
}

var batchKeys = map[string]string{
	"template":     "render.template",
	"output-dir":   "batch.output_dir",
	"workers":      "batch.workers",
	"progress-db":  "batch.progress_db",
	"metrics-file": "batch.metrics_file",
}

func runBatch(cmd *cobra.Command, args []string) error {
	bindFlags(cmd.Flags(), batchKeys)
	bindFlags(cmd.Flags(), overrideKeys)
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if sequential, _ := cmd.Flags().GetBool("sequential"); sequential {
		cfg.Batch.Parallel = false
	}

	jobs, err := batchJobs(cmd, args, cfg.Overrides)
	if err != nil {
		return err
	}
	if len(jobs) == 0 {
		return fmt.Errorf("provide one or more documents, directories or --manifest")
	}

	tpl, err := loadTemplate(cfg.Render.Template)
	if err != nil {
		return err
	}
	p, err := newPipeline(cfg, tpl)
	if err != nil {
		return err
	}

	var store progress.Store = progress.NewMemoryStore()
	if cfg.Batch.ProgressDB != "" {
		s, err := progress.OpenSQLite(cfg.Batch.ProgressDB)
		if err != nil {
			return err
		}
		store = s
	}
	defer store.Close()

	m, err := metrics.NewBatch()
	if err != nil {
		return err
	}

	asJSON, _ := cmd.Flags().GetBool("json")
	logTo := os.Stdout
	if asJSON {
		logTo = os.Stderr
	}
	o := batch.New(cfg.Batch, p, batch.Deps{
		Source:   workspace.DirSource{},
		Sink:     workspace.DirSink{Dir: cfg.Batch.OutputDir},
		Progress: store,
		Metrics:  m,
		Log:      logTo,
	})
	report := o.Run(cmd.Context(), jobs)

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return fmt.Errorf("encoding report: %w", err)
		}
	}
	if report.HasFailures() {
		return fmt.Errorf("%d document(s) failed conversion", len(report.Failed))
	}
	return nil
}

func batchJobs(cmd *cobra.Command, args []string, ov types.Overrides) ([]types.Job, error) {
	manifest, _ := cmd.Flags().GetString("manifest")
	var jobs []types.Job
	if manifest != "" {
		mj, err := batch.LoadManifest(manifest)
		if err != nil {
			return nil, err
		}
		for _, j := range mj {
			j.Overrides = batch.WithDefaults(j.Overrides, ov)
			jobs = append(jobs, j)
		}
	}
	sources, err := workspace.ExpandSources(args)
	if err != nil {
		return nil, err
	}
	return append(jobs, batch.JobsFor(sources, ov)...), nil
}
